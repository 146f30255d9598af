// Package telemetry provides Prometheus metrics and correlation-id aware logging helpers.
package telemetry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Counters
	AttemptsRecorded     prometheus.Counter
	BestScoreUpdates     prometheus.Counter
	CommandsHandled      prometheus.Counter
	AnnouncementsEmitted prometheus.Counter
	SnapshotFailures     prometheus.Counter

	// Histograms (seconds)
	SnapshotDuration prometheus.Observer

	// Gauges
	ParticipantsTodayGauge prometheus.Gauge
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		AttemptsRecorded = promauto.NewCounter(prometheus.CounterOpts{Name: "leetbot_attempts_recorded_total", Help: "Number of qualifying attempts recorded"})
		BestScoreUpdates = promauto.NewCounter(prometheus.CounterOpts{Name: "leetbot_best_score_updates_total", Help: "Number of period-bucket best-score records replaced"})
		CommandsHandled = promauto.NewCounter(prometheus.CounterOpts{Name: "leetbot_commands_handled_total", Help: "Number of chat commands answered"})
		AnnouncementsEmitted = promauto.NewCounter(prometheus.CounterOpts{Name: "leetbot_announcements_emitted_total", Help: "Number of scheduled announcement lines emitted"})
		SnapshotFailures = promauto.NewCounter(prometheus.CounterOpts{Name: "leetbot_snapshot_write_failures_total", Help: "Number of failed score snapshot writes"})
		SnapshotDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "leetbot_snapshot_write_duration_seconds", Help: "Score snapshot write duration seconds", Buckets: prometheus.DefBuckets})
		ParticipantsTodayGauge = promauto.NewGauge(prometheus.GaugeOpts{Name: "leetbot_participants_today", Help: "Distinct nicks with at least one attempt today"})
	})
}

// SetParticipantsToday records the current distinct participant count.
func SetParticipantsToday(n int) {
	if ParticipantsTodayGauge != nil {
		ParticipantsTodayGauge.Set(float64(n))
	}
}

// TimeFunc measures the duration of fn and records in observer if non-nil.
func TimeFunc(obs prometheus.Observer, fn func()) time.Duration {
	start := time.Now()
	fn()
	d := time.Since(start)
	if obs != nil {
		obs.Observe(d.Seconds())
	}
	return d
}

// Correlation ID helpers ----------------------------------------------------
type corrKeyType struct{}

var corrKey corrKeyType

// WithCorrelation returns a new context embedding correlation id (if absent) and the id.
func WithCorrelation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, corrKey, id)
}

// GetCorrelation returns correlation id or empty string.
func GetCorrelation(ctx context.Context) string {
	v := ctx.Value(corrKey)
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// LoggerWithCorr returns a logger with corr attribute if present.
func LoggerWithCorr(ctx context.Context) *slog.Logger {
	if id := GetCorrelation(ctx); id != "" {
		return slog.Default().With(slog.String("corr", id))
	}
	return slog.Default()
}
