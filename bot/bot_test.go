package bot

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mbhooden/leetbot/game"
	"github.com/mbhooden/leetbot/store"
)

func newBot(t *testing.T) *Bot {
	t.Helper()
	st := store.Open(filepath.Join(t.TempDir(), "scores.json"))
	st.Load()
	return New(st)
}

func TestOnMessageScenario(t *testing.T) {
	b := newBot(t)
	ctx := context.Background()

	exact := time.Date(2024, 6, 10, 13, 37, 37, 0, time.Local)
	b.OnMessage(ctx, "alice", "1337", exact)
	b.OnMessage(ctx, "bob", "leet", time.Date(2024, 6, 10, 13, 37, 50, 0, time.Local))

	keys := game.KeysFor(exact)
	for _, p := range game.Periods() {
		rows := b.Query().Standings(p, keys.For(p))
		if len(rows) != 2 {
			t.Fatalf("period %s: %d rows, want 2", p, len(rows))
		}
		if rows[0].Nick != "alice" || rows[0].Score != 100 {
			t.Errorf("period %s: winner = %s %.2f, want alice 100.00", p, rows[0].Nick, rows[0].Score)
		}
		if rows[1].Nick != "bob" || rows[1].Score != 1 {
			t.Errorf("period %s: runner-up = %s %.2f, want bob 1.00", p, rows[1].Nick, rows[1].Score)
		}
	}

	top := b.Query().TopN(game.Daily, keys.Daily, 5)
	if len(top) != 2 || top[0].Nick != "alice" || top[1].Nick != "bob" {
		t.Errorf("TopN = %+v, want [alice, bob]", top)
	}
}

func TestOnMessageIgnoresOutsideWindow(t *testing.T) {
	b := newBot(t)
	ts := time.Date(2024, 6, 10, 14, 0, 0, 0, time.Local)
	b.OnMessage(context.Background(), "alice", "1337", ts)

	if rows := b.Query().Standings(game.Daily, game.KeysFor(ts).Daily); len(rows) != 0 {
		t.Errorf("message outside window was scored: %+v", rows)
	}
}

func TestOnMessageIgnoresNonQualifying(t *testing.T) {
	b := newBot(t)
	ts := time.Date(2024, 6, 10, 13, 37, 37, 0, time.Local)
	b.OnMessage(context.Background(), "alice", "hello everyone", ts)
	b.OnMessage(context.Background(), "bob", "113375", ts)

	if rows := b.Query().Standings(game.Daily, game.KeysFor(ts).Daily); len(rows) != 0 {
		t.Errorf("non-qualifying message was scored: %+v", rows)
	}
}

func TestOnQueryUnknownCommand(t *testing.T) {
	b := newBot(t)
	if lines := b.OnQuery("frobnicate", nil, time.Now()); lines != nil {
		t.Errorf("unknown command replied: %v", lines)
	}
}

func TestOnQueryHelp(t *testing.T) {
	b := newBot(t)
	lines := b.OnQuery("help", nil, time.Now())
	if len(lines) == 0 || lines[0] != "Commands:" {
		t.Fatalf("help lines = %v", lines)
	}
	joined := strings.Join(lines, "\n")
	for _, want := range []string{"!help", "!time", "!highscores", "!toptoday", "!statistics"} {
		if !strings.Contains(joined, want) {
			t.Errorf("help missing %q", want)
		}
	}
}

func TestOnQueryTime(t *testing.T) {
	b := newBot(t)
	ts := time.Date(2024, 6, 10, 13, 37, 37, 123000000, time.Local)
	lines := b.OnQuery("time", nil, ts)
	if len(lines) != 1 || lines[0] != "Current server time: 13:37:37.123" {
		t.Errorf("time reply = %v", lines)
	}
	// Legacy alias.
	if alias := b.OnQuery("timetest", nil, ts); len(alias) != 1 || alias[0] != lines[0] {
		t.Errorf("timetest reply = %v, want same as time", alias)
	}
}

func TestOnQueryHighscores(t *testing.T) {
	b := newBot(t)
	ts := time.Date(2024, 6, 10, 13, 37, 37, 0, time.Local)
	b.OnMessage(context.Background(), "alice", "1337", ts)

	lines := b.OnQuery("highscores", nil, ts)
	if len(lines) != 4 {
		t.Fatalf("highscores lines = %d, want 4", len(lines))
	}
	if !strings.HasPrefix(lines[0], "Daily High Scores: alice: 100.00 (13:37:37.000000)") {
		t.Errorf("daily line = %q", lines[0])
	}
	if !strings.Contains(lines[0], "Total: 100.00, Avg: 100.00, Participants: 1") {
		t.Errorf("daily line missing totals: %q", lines[0])
	}

	// A different day has no records in any bucket.
	empty := b.OnQuery("highscores", nil, time.Date(2025, 3, 3, 12, 0, 0, 0, time.Local))
	if empty[0] != "Daily High Scores: No participants." {
		t.Errorf("empty daily line = %q", empty[0])
	}
}

func TestOnQueryTopToday(t *testing.T) {
	b := newBot(t)
	ctx := context.Background()
	ts := time.Date(2024, 6, 10, 13, 37, 37, 0, time.Local)
	b.OnMessage(ctx, "alice", "1337", ts)
	b.OnMessage(ctx, "alice", "1337", ts.Add(10*time.Second))
	b.OnMessage(ctx, "bob", "leet", ts.Add(13*time.Second))

	lines := b.OnQuery("toptoday", nil, ts)
	if lines[0] != "Today's Top 5:" {
		t.Fatalf("header = %q", lines[0])
	}
	if len(lines) != 3 {
		t.Fatalf("toptoday lines = %d, want 3", len(lines))
	}
	if !strings.HasPrefix(lines[1], "1. alice - Score: 100.00 at 13:37:37.000000, Participations: 2") {
		t.Errorf("rank 1 = %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "2. bob - Score: 1.00 at 13:37:50.000000, Participations: 1") {
		t.Errorf("rank 2 = %q", lines[2])
	}
}

func TestOnQueryTopEmptyPeriods(t *testing.T) {
	b := newBot(t)
	ts := time.Now()
	cases := map[string]string{
		"toptoday": "No participants today.",
		"topweek":  "No participants this week.",
		"topmonth": "No participants this month.",
		"topyear":  "No participants this year.",
	}
	for cmd, want := range cases {
		lines := b.OnQuery(cmd, nil, ts)
		if len(lines) != 1 || lines[0] != want {
			t.Errorf("%s = %v, want [%q]", cmd, lines, want)
		}
	}
}

func TestOnQueryStatistics(t *testing.T) {
	b := newBot(t)
	ctx := context.Background()
	ts := time.Date(2024, 6, 10, 13, 37, 37, 0, time.Local)
	b.OnMessage(ctx, "alice", "1337", ts)
	b.OnMessage(ctx, "alice", "1337", time.Date(2024, 6, 11, 13, 37, 47, 0, time.Local))

	lines := b.OnQuery("statistics", nil, ts)
	if lines[0] != "Lifetime Statistics:" {
		t.Fatalf("header = %q", lines[0])
	}
	if len(lines) != 2 {
		t.Fatalf("statistics lines = %d, want 2", len(lines))
	}
	if !strings.HasPrefix(lines[1], "alice: 2 tries, Max score: 100.00, Average score: ") {
		t.Errorf("stats line = %q", lines[1])
	}
}

func TestOnQueryCaseInsensitive(t *testing.T) {
	b := newBot(t)
	if lines := b.OnQuery("HELP", nil, time.Now()); len(lines) == 0 {
		t.Error("uppercase command not recognized")
	}
}
