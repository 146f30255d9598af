// Package leaderboard provides read-only views over the score store:
// rankings, per-period totals, participation counts, and lifetime
// statistics. It holds no state of its own.
package leaderboard

import (
	"sort"

	"github.com/mbhooden/leetbot/game"
	"github.com/mbhooden/leetbot/store"
)

// Row is one ranked leaderboard line.
type Row struct {
	Nick      string
	Score     float64
	Timestamp string
}

// Totals aggregates one period bucket.
type Totals struct {
	Sum     float64
	Average float64
	Count   int
}

// NickStats aggregates one nick's lifetime participation.
type NickStats struct {
	Nick    string
	Tries   int
	Total   float64
	Max     float64
	Average float64
}

// Query answers leaderboard and statistics questions against a store.
type Query struct {
	store *store.Store
}

func New(s *store.Store) *Query {
	return &Query{store: s}
}

// Standings returns every record in the bucket sorted by score
// descending. Ties keep a stable, deterministic order (nick ascending
// before the stable sort).
func (q *Query) Standings(p game.Period, key string) []Row {
	snap := q.store.Snapshot(p, key)
	rows := make([]Row, 0, len(snap))
	for nick, e := range snap {
		rows = append(rows, Row{Nick: nick, Score: e.Score, Timestamp: e.Timestamp})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Nick < rows[j].Nick })
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Score > rows[j].Score })
	return rows
}

// TopN returns at most n rows of Standings.
func (q *Query) TopN(p game.Period, key string, n int) []Row {
	rows := q.Standings(p, key)
	if len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

// Totals sums one bucket's best scores.
func (q *Query) Totals(p game.Period, key string) Totals {
	rows := q.Standings(p, key)
	t := Totals{Count: len(rows)}
	for _, r := range rows {
		t.Sum += r.Score
	}
	if t.Count > 0 {
		t.Average = t.Sum / float64(t.Count)
	}
	return t
}

// ParticipationCounts tallies attempts per nick inside the bucket's
// span. The daily bucket reads its own log; wider buckets scan every
// recorded day and keep those whose date maps into the bucket. The
// scan is linear in total attempts, which stays small at one scoring
// minute per day.
func (q *Query) ParticipationCounts(p game.Period, key string) map[string]int {
	counts := make(map[string]int)
	if p == game.Daily {
		for _, a := range q.store.DayLog(key) {
			counts[a.Nick]++
		}
		return counts
	}
	q.store.EachDayLog(func(dayKey string, attempts []store.Attempt) {
		day, err := game.DayOf(dayKey)
		if err != nil {
			return
		}
		if game.KeysFor(day).For(p) != key {
			return
		}
		for _, a := range attempts {
			counts[a.Nick]++
		}
	})
	return counts
}

// DayAttempts returns one day's attempts in chronological order.
func (q *Query) DayAttempts(dayKey string) []store.Attempt {
	return q.store.DayLog(dayKey)
}

// LifetimeStats aggregates every attempt ever logged, sorted by tries
// descending, then max score descending.
func (q *Query) LifetimeStats() []NickStats {
	byNick := make(map[string]*NickStats)
	q.store.EachDayLog(func(_ string, attempts []store.Attempt) {
		for _, a := range attempts {
			st := byNick[a.Nick]
			if st == nil {
				st = &NickStats{Nick: a.Nick}
				byNick[a.Nick] = st
			}
			st.Tries++
			st.Total += a.Score
			if a.Score > st.Max {
				st.Max = a.Score
			}
		}
	})
	out := make([]NickStats, 0, len(byNick))
	for _, st := range byNick {
		st.Average = st.Total / float64(st.Tries)
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Tries != out[j].Tries {
			return out[i].Tries > out[j].Tries
		}
		if out[i].Max != out[j].Max {
			return out[i].Max > out[j].Max
		}
		return out[i].Nick < out[j].Nick
	})
	return out
}
