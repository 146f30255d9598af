// Package bot is the boundary between the chat transport and the
// scoring core. The adapter hands it (nick, text, timestamp) for plain
// messages and (command, args, timestamp) for queries; it returns the
// reply lines to send. It owns no transport and no clock.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/mbhooden/leetbot/game"
	"github.com/mbhooden/leetbot/leaderboard"
	"github.com/mbhooden/leetbot/store"
	"github.com/mbhooden/leetbot/telemetry"
)

// topN is how many rows the !top* commands show.
const topN = 5

type Bot struct {
	store *store.Store
	query *leaderboard.Query
}

func New(st *store.Store) *Bot {
	return &Bot{store: st, query: leaderboard.New(st)}
}

// Query exposes the read-only view, shared with the scheduler and the
// HTTP status handler.
func (b *Bot) Query() *leaderboard.Query {
	return b.query
}

// OnMessage scores a plain channel message. Only messages inside the
// 13:37 scoring minute that contain a qualifying token are recorded;
// everything else is ignored. The caller supplies the receive time.
func (b *Bot) OnMessage(ctx context.Context, nick, text string, ts time.Time) {
	if !game.InWindow(ts) || !game.IsQualifying(text) {
		return
	}
	score := game.Score(ts)
	_, span := telemetry.StartSpan(ctx, "bot", "record-attempt",
		attribute.String("nick", nick),
		attribute.Float64("score", score),
	)
	defer span.End()
	b.store.RecordAttempt(nick, score, ts)
	telemetry.SetSpanSuccess(span)
	slog.Info("attempt recorded",
		slog.String("nick", nick),
		slog.Float64("score", score),
		slog.String("time", ts.Format(store.TimestampLayout)))
}

// OnQuery answers a chat command. Unrecognized commands return nil so
// the adapter stays silent.
func (b *Bot) OnQuery(command string, args []string, ts time.Time) []string {
	var lines []string
	switch strings.ToLower(command) {
	case "help":
		lines = b.helpLines()
	case "time", "timetest":
		lines = []string{fmt.Sprintf("Current server time: %s", ts.Format("15:04:05.000"))}
	case "highscores":
		lines = b.highscoreLines(ts)
	case "toptoday":
		lines = b.topLines(game.Daily, ts)
	case "topweek":
		lines = b.topLines(game.Weekly, ts)
	case "topmonth":
		lines = b.topLines(game.Monthly, ts)
	case "topyear":
		lines = b.topLines(game.Yearly, ts)
	case "statistics":
		lines = b.statisticsLines()
	default:
		return nil
	}
	if telemetry.CommandsHandled != nil {
		telemetry.CommandsHandled.Inc()
	}
	return lines
}

func (b *Bot) helpLines() []string {
	return []string{
		"Commands:",
		"!help - Show this help message.",
		"!time - Show current server time.",
		"!highscores - Display current high scores.",
		"!toptoday - Show top 5 players today (score and participation).",
		"!topweek - Show top 5 players this week.",
		"!topmonth - Show top 5 players this month.",
		"!topyear - Show top 5 players this year.",
		"!statistics - Show lifetime statistics for all players.",
		"Type '1337' or similar between 13:37:00 and 13:38:00 to participate.",
	}
}

// Titles for the !highscores listing.
var highscoreTitles = map[game.Period]string{
	game.Daily:   "Daily High Scores",
	game.Weekly:  "Weekly High Scores",
	game.Monthly: "Monthly High Scores",
	game.Yearly:  "Yearly High Scores",
}

func (b *Bot) highscoreLines(ts time.Time) []string {
	keys := game.KeysFor(ts)
	lines := make([]string, 0, 4)
	for _, p := range game.Periods() {
		title := highscoreTitles[p]
		rows := b.query.Standings(p, keys.For(p))
		if len(rows) == 0 {
			lines = append(lines, fmt.Sprintf("%s: No participants.", title))
			continue
		}
		totals := b.query.Totals(p, keys.For(p))
		parts := make([]string, 0, len(rows))
		for _, r := range rows {
			if r.Timestamp != "" {
				parts = append(parts, fmt.Sprintf("%s: %.2f (%s)", r.Nick, r.Score, r.Timestamp))
			} else {
				parts = append(parts, fmt.Sprintf("%s: %.2f", r.Nick, r.Score))
			}
		}
		lines = append(lines, fmt.Sprintf("%s: %s (Total: %.2f, Avg: %.2f, Participants: %d)",
			title, strings.Join(parts, ", "), totals.Sum, totals.Average, totals.Count))
	}
	return lines
}

var topTitles = map[game.Period]string{
	game.Daily:   "Today's",
	game.Weekly:  "This week's",
	game.Monthly: "This month's",
	game.Yearly:  "This year's",
}

var noParticipants = map[game.Period]string{
	game.Daily:   "No participants today.",
	game.Weekly:  "No participants this week.",
	game.Monthly: "No participants this month.",
	game.Yearly:  "No participants this year.",
}

func (b *Bot) topLines(p game.Period, ts time.Time) []string {
	key := game.KeysFor(ts).For(p)
	rows := b.query.TopN(p, key, topN)
	if len(rows) == 0 {
		return []string{noParticipants[p]}
	}
	counts := b.query.ParticipationCounts(p, key)
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, fmt.Sprintf("%s Top %d:", topTitles[p], topN))
	for i, r := range rows {
		at := ""
		if r.Timestamp != "" {
			at = fmt.Sprintf(" at %s", r.Timestamp)
		}
		lines = append(lines, fmt.Sprintf("%d. %s - Score: %.2f%s, Participations: %d",
			i+1, r.Nick, r.Score, at, counts[r.Nick]))
	}
	return lines
}

func (b *Bot) statisticsLines() []string {
	stats := b.query.LifetimeStats()
	lines := make([]string, 0, len(stats)+1)
	lines = append(lines, "Lifetime Statistics:")
	for _, st := range stats {
		lines = append(lines, fmt.Sprintf("%s: %d tries, Max score: %.2f, Average score: %.2f",
			st.Nick, st.Tries, st.Max, st.Average))
	}
	return lines
}
