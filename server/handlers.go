package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/mbhooden/leetbot/game"
	"github.com/mbhooden/leetbot/leaderboard"
)

// Handlers carries the read-only dependencies of the HTTP endpoints.
type Handlers struct {
	query   *leaderboard.Query
	channel string
	started time.Time
}

func NewHandlers(q *leaderboard.Query, channel string) *Handlers {
	return &Handlers{query: q, channel: channel, started: time.Now()}
}

// HandleHealthz responds to liveness probe requests.
func (h *Handlers) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// HandleStatus reports uptime and today's standings as JSON.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	key := game.KeysFor(now).Daily
	attempts := h.query.DayAttempts(key)
	counts := h.query.ParticipationCounts(game.Daily, key)

	type rankedRow struct {
		Nick      string  `json:"nick"`
		Score     float64 `json:"score"`
		Timestamp string  `json:"timestamp,omitempty"`
	}
	rows := h.query.Standings(game.Daily, key)
	ranked := make([]rankedRow, 0, len(rows))
	for _, r := range rows {
		ranked = append(ranked, rankedRow{Nick: r.Nick, Score: r.Score, Timestamp: r.Timestamp})
	}

	resp := map[string]any{
		"channel":        h.channel,
		"uptime_seconds": int(now.Sub(h.started).Seconds()),
		"today": map[string]any{
			"date":         key,
			"participants": len(counts),
			"attempts":     len(attempts),
			"standings":    ranked,
		},
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
