// Package announce drives the daily announcement cycle: a pre-game
// heads-up shortly before the scoring minute and a post-game rollover
// that summarizes the day and, on period boundaries, the closing week,
// month, or year. Announcement lines go out on a channel the chat
// adapter drains; the scheduler never talks to the transport directly.
package announce

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mbhooden/leetbot/game"
	"github.com/mbhooden/leetbot/leaderboard"
	"github.com/mbhooden/leetbot/store"
	"github.com/mbhooden/leetbot/telemetry"
)

// Fixed daily wake times, local clock.
const (
	PregameHour   = 13
	PregameMinute = 36

	PostgameHour   = 13
	PostgameMinute = 38
	PostgameSecond = 30
)

type Scheduler struct {
	query *leaderboard.Query
	lines chan string

	// Clock seams for tests; Run recomputes wall-clock targets every
	// cycle instead of using a fixed-interval ticker, so wake times do
	// not drift across DST transitions.
	now   func() time.Time
	after func(time.Duration) <-chan time.Time
}

func New(q *leaderboard.Query) *Scheduler {
	return &Scheduler{
		query: q,
		lines: make(chan string, 64),
		now:   time.Now,
		after: time.After,
	}
}

// Lines is the outbound announcement stream. The chat adapter sends
// each line to the shared channel.
func (s *Scheduler) Lines() <-chan string {
	return s.lines
}

// Run loops until ctx is canceled: compute the next strictly-future
// pre-game and post-game instants, sleep to the earlier one, announce,
// repeat. A backward clock jump across a wake is not handled.
func (s *Scheduler) Run(ctx context.Context) {
	slog.Info("announcement scheduler starting")
	for {
		now := s.now()
		pregame := nextOccurrence(now, PregameHour, PregameMinute, 0)
		postgame := nextOccurrence(now, PostgameHour, PostgameMinute, PostgameSecond)
		next := pregame
		if postgame.Before(pregame) {
			next = postgame
		}
		slog.Debug("scheduler sleeping", slog.Time("until", next))
		select {
		case <-ctx.Done():
			slog.Info("announcement scheduler stopped")
			return
		case <-s.after(next.Sub(now)):
		}
		if next.Equal(pregame) {
			s.emit(ctx, fmt.Sprintf("The game of games is about to begin! Server time is: %s", next.Format("15:04:05.000")))
		} else {
			s.rollover(ctx, s.now())
		}
	}
}

// nextOccurrence returns the next instant with the given local
// hour:min:sec that is strictly after now (today or tomorrow).
func nextOccurrence(now time.Time, hour, min, sec int) time.Time {
	t := time.Date(now.Year(), now.Month(), now.Day(), hour, min, sec, 0, now.Location())
	if !t.After(now) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// rollover emits the daily summary plus the day's attempt listing, and
// the closing weekly, monthly, and yearly summaries when now sits on
// the matching boundary. The previous month and year are found by
// stepping back one day from the first of the current month.
func (s *Scheduler) rollover(ctx context.Context, now time.Time) {
	keys := game.KeysFor(now)

	for _, line := range s.periodSummary("Today", game.Daily, keys.Daily) {
		s.emit(ctx, line)
	}
	attempts := s.query.DayAttempts(keys.Daily)
	if len(attempts) > 0 {
		s.emit(ctx, "Today's attempts in chronological order:")
		for _, a := range attempts {
			s.emit(ctx, fmt.Sprintf("%s at %s - Score: %.2f", a.Nick, a.Time.Format(store.TimestampLayout), a.Score))
		}
	}

	if now.Weekday() == time.Sunday {
		for _, line := range s.periodSummary("This week", game.Weekly, keys.Weekly) {
			s.emit(ctx, line)
		}
	}
	if now.Day() == 1 {
		prev := now.AddDate(0, 0, -1)
		for _, line := range s.periodSummary("Last month", game.Monthly, game.KeysFor(prev).Monthly) {
			s.emit(ctx, line)
		}
		if now.Month() == time.January {
			for _, line := range s.periodSummary("Last year", game.Yearly, game.KeysFor(prev).Yearly) {
				s.emit(ctx, line)
			}
		}
	}
}

// periodSummary formats one bucket: a winner line with totals, then the
// full standings. An empty bucket yields a single no-participants line.
func (s *Scheduler) periodSummary(label string, p game.Period, key string) []string {
	rows := s.query.Standings(p, key)
	if len(rows) == 0 {
		return []string{fmt.Sprintf("No participants %s.", strings.ToLower(label))}
	}
	totals := s.query.Totals(p, key)
	winner := rows[0]
	at := ""
	if winner.Timestamp != "" {
		at = fmt.Sprintf(" at %s", winner.Timestamp)
	}
	summary := fmt.Sprintf("%s's winner is %s with a score of %.2f%s! Total score: %.2f, Average: %.2f, Participants: %d",
		label, winner.Nick, winner.Score, at, totals.Sum, totals.Average, totals.Count)

	parts := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.Timestamp != "" {
			parts = append(parts, fmt.Sprintf("%s: %.2f at %s", r.Nick, r.Score, r.Timestamp))
		} else {
			parts = append(parts, fmt.Sprintf("%s: %.2f", r.Nick, r.Score))
		}
	}
	return []string{summary, "All scores: " + strings.Join(parts, ", ")}
}

func (s *Scheduler) emit(ctx context.Context, line string) {
	if telemetry.AnnouncementsEmitted != nil {
		telemetry.AnnouncementsEmitted.Inc()
	}
	select {
	case s.lines <- line:
	case <-ctx.Done():
	}
}
