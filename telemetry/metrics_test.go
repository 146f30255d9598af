package telemetry

import (
	"context"
	"testing"
	"time"
)

func TestInitIdempotent(t *testing.T) {
	Init()
	Init() // second call must not re-register collectors

	if AttemptsRecorded == nil || SnapshotFailures == nil || AnnouncementsEmitted == nil {
		t.Fatal("counters not initialized")
	}
	if SnapshotDuration == nil || ParticipantsTodayGauge == nil {
		t.Fatal("histogram or gauge not initialized")
	}
}

func TestSetParticipantsToday(t *testing.T) {
	Init()
	SetParticipantsToday(3) // must not panic
}

func TestTimeFunc(t *testing.T) {
	Init()
	d := TimeFunc(SnapshotDuration, func() { time.Sleep(5 * time.Millisecond) })
	if d < 5*time.Millisecond {
		t.Errorf("TimeFunc duration = %v, want at least 5ms", d)
	}
	// nil observer is allowed
	if d := TimeFunc(nil, func() {}); d < 0 {
		t.Errorf("negative duration %v", d)
	}
}

func TestCorrelation(t *testing.T) {
	ctx := context.Background()
	if got := GetCorrelation(ctx); got != "" {
		t.Errorf("empty context correlation = %q", got)
	}
	ctx = WithCorrelation(ctx, "abc-123")
	if got := GetCorrelation(ctx); got != "abc-123" {
		t.Errorf("correlation = %q, want abc-123", got)
	}
	if LoggerWithCorr(ctx) == nil {
		t.Error("LoggerWithCorr returned nil")
	}
}
