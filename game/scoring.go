// Package game holds the pure scoring rules: which messages qualify,
// how a timestamp maps to a score, and which period buckets a date
// belongs to. Nothing here touches shared state or the clock.
package game

import (
	"regexp"
	"time"
)

// Scoring constants. The target instant is 13:37:37.000000 local time;
// the score falls off linearly to the participation floor over 13 seconds.
const (
	TargetHour   = 13
	TargetMinute = 37
	TargetSecond = 37

	// MaxScore is awarded for hitting the target instant exactly.
	MaxScore = 100.0
	// FloorScore is the participation floor: every qualifying attempt
	// inside the window is worth at least this much.
	FloorScore = 1.0

	falloff = 13 * time.Second
)

// Window bounds, both inclusive. Messages outside it are never scored.
const (
	WindowStartMinute = 37
	WindowEndMinute   = 38
)

// leetPattern matches a whole-word leetspeak "1337": one of {1,i,l},
// two of {3,e}, one of {7,t}. "113375" has no word boundary around the
// embedded token and must not match.
var leetPattern = regexp.MustCompile(`(?i)\b(1|i|l)(3|e){2}(7|t)\b`)

// IsQualifying reports whether text contains a leet token as a whole word.
func IsQualifying(text string) bool {
	return leetPattern.MatchString(text)
}

// Score converts a timestamp into a score against that day's target
// instant. Exactly on target scores MaxScore; the score decreases
// linearly with distance and is clamped at FloorScore, which also
// applies to anything 13 seconds or more away. The clamp keeps the
// result in [FloorScore, MaxScore] for every input.
func Score(ts time.Time) float64 {
	target := time.Date(ts.Year(), ts.Month(), ts.Day(), TargetHour, TargetMinute, TargetSecond, 0, ts.Location())
	d := ts.Sub(target)
	if d < 0 {
		d = -d
	}
	if d >= falloff {
		return FloorScore
	}
	s := MaxScore * (1 - d.Seconds()/falloff.Seconds())
	if s < FloorScore {
		return FloorScore
	}
	return s
}

// InWindow reports whether ts falls inside the scoring minute,
// 13:37:00.000000 through 13:38:00.000000 local time, both ends
// inclusive.
func InWindow(ts time.Time) bool {
	start := time.Date(ts.Year(), ts.Month(), ts.Day(), TargetHour, WindowStartMinute, 0, 0, ts.Location())
	end := time.Date(ts.Year(), ts.Month(), ts.Day(), TargetHour, WindowEndMinute, 0, 0, ts.Location())
	return !ts.Before(start) && !ts.After(end)
}
