// Package store owns the persisted scoring state: per-period best-score
// records and the raw per-day attempt log. All access goes through one
// mutex; every mutation is followed by a whole-snapshot write to disk.
// The in-memory state is the source of truth; a failed write is logged
// and retried implicitly on the next mutation.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mbhooden/leetbot/game"
	"github.com/mbhooden/leetbot/telemetry"
)

// TimestampLayout formats attempt times for display and for the
// best-score records, microsecond precision.
const TimestampLayout = "15:04:05.000000"

// Entry is the best score a nick has posted inside one period bucket.
// Timestamp is empty for records carried over from the legacy snapshot
// format, which stored a bare number.
type Entry struct {
	Score     float64 `json:"score"`
	Timestamp string  `json:"timestamp,omitempty"`
}

// UnmarshalJSON accepts both the current object shape and the legacy
// bare-number shape. Legacy entries are normalized on load; the next
// snapshot write persists them in the current shape.
func (e *Entry) UnmarshalJSON(b []byte) error {
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		*e = Entry{Score: n}
		return nil
	}
	type plain Entry
	var v plain
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*e = Entry(v)
	return nil
}

// Attempt is one qualifying message, appended to the log of the day it
// occurred on and never removed.
type Attempt struct {
	Nick  string    `json:"nick"`
	Time  time.Time `json:"time"`
	Score float64   `json:"score"`
}

// state is the whole persisted structure. Period buckets are keyed by
// game.KeysFor-derived strings; the log is keyed by the daily key.
type state struct {
	Periods map[game.Period]map[string]map[string]Entry `json:"periods"`
	Log     map[string][]Attempt                        `json:"log"`
}

func emptyState() state {
	st := state{
		Periods: make(map[game.Period]map[string]map[string]Entry, 4),
		Log:     make(map[string][]Attempt),
	}
	for _, p := range game.Periods() {
		st.Periods[p] = make(map[string]map[string]Entry)
	}
	return st
}

// Store holds the scoring state behind a process-wide mutex.
type Store struct {
	path string

	mu sync.Mutex
	st state
}

// Open returns a store persisting to path. Call Load before first use.
func Open(path string) *Store {
	return &Store{path: path, st: emptyState()}
}

// Load reads the snapshot file. A missing, empty, or corrupt file is
// not an error: the store starts over with an empty structure.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("score snapshot unreadable; starting empty", slog.String("path", s.path), slog.Any("err", err))
		}
		s.st = emptyState()
		return
	}
	if len(b) == 0 {
		s.st = emptyState()
		return
	}
	var st state
	if err := json.Unmarshal(b, &st); err != nil {
		slog.Warn("score snapshot corrupt; starting empty", slog.String("path", s.path), slog.Any("err", err))
		s.st = emptyState()
		return
	}
	if st.Periods == nil {
		st.Periods = make(map[game.Period]map[string]map[string]Entry, 4)
	}
	for _, p := range game.Periods() {
		if st.Periods[p] == nil {
			st.Periods[p] = make(map[string]map[string]Entry)
		}
	}
	if st.Log == nil {
		st.Log = make(map[string][]Attempt)
	}
	s.st = st
	slog.Info("score snapshot loaded", slog.String("path", s.path), slog.Int("days", len(st.Log)))
}

// save writes the whole state to a temp file and renames it into place,
// so the snapshot is replaced only on a complete successful write.
// Caller must hold s.mu.
func (s *Store) save() error {
	b, err := json.MarshalIndent(s.st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir snapshot dir: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Save persists the current state. Exposed for shutdown flushes; every
// mutation already persists on its own.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// RecordAttempt appends the attempt to the day's log and upserts the
// nick's best-score record in all four buckets, replacing an existing
// record only when the new score is strictly greater. Concurrent calls
// serialize on the store mutex, so same-nick attempts converge to the
// maximum regardless of arrival order. The snapshot write happens
// inside the critical section; a write failure keeps the in-memory
// update and is surfaced as a warning only.
func (s *Store) RecordAttempt(nick string, score float64, ts time.Time) {
	keys := game.KeysFor(ts)
	stamp := ts.Format(TimestampLayout)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.st.Log[keys.Daily] = append(s.st.Log[keys.Daily], Attempt{Nick: nick, Time: ts, Score: score})
	for _, p := range game.Periods() {
		key := keys.For(p)
		bucket := s.st.Periods[p][key]
		if bucket == nil {
			bucket = make(map[string]Entry)
			s.st.Periods[p][key] = bucket
		}
		if score > bucket[nick].Score {
			bucket[nick] = Entry{Score: score, Timestamp: stamp}
			if telemetry.BestScoreUpdates != nil {
				telemetry.BestScoreUpdates.Inc()
			}
		}
	}

	if telemetry.AttemptsRecorded != nil {
		telemetry.AttemptsRecorded.Inc()
	}
	distinct := make(map[string]struct{})
	for _, a := range s.st.Log[keys.Daily] {
		distinct[a.Nick] = struct{}{}
	}
	telemetry.SetParticipantsToday(len(distinct))

	start := time.Now()
	if err := s.save(); err != nil {
		slog.Warn("score snapshot write failed; in-memory state kept", slog.String("nick", nick), slog.Any("err", err))
		if telemetry.SnapshotFailures != nil {
			telemetry.SnapshotFailures.Inc()
		}
		return
	}
	if telemetry.SnapshotDuration != nil {
		telemetry.SnapshotDuration.Observe(time.Since(start).Seconds())
	}
}

// Snapshot returns a copy of one bucket's best-score records.
func (s *Store) Snapshot(p game.Period, key string) map[string]Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket := s.st.Periods[p][key]
	out := make(map[string]Entry, len(bucket))
	for nick, e := range bucket {
		out[nick] = e
	}
	return out
}

// DayLog returns a copy of one day's attempts in chronological order.
func (s *Store) DayLog(dayKey string) []Attempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.st.Log[dayKey]
	out := make([]Attempt, len(log))
	copy(out, log)
	return out
}

// EachDayLog calls fn once per recorded day. The log is copied under
// the lock first so fn never runs inside the critical section.
func (s *Store) EachDayLog(fn func(dayKey string, attempts []Attempt)) {
	s.mu.Lock()
	days := make(map[string][]Attempt, len(s.st.Log))
	for day, log := range s.st.Log {
		cp := make([]Attempt, len(log))
		copy(cp, log)
		days[day] = cp
	}
	s.mu.Unlock()

	for day, log := range days {
		fn(day, log)
	}
}
