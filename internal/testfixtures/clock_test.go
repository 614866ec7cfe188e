package testfixtures

import (
	"testing"
	"time"
)

func TestClockZeroStartAnchorsAtReferenceTime(t *testing.T) {
	t.Parallel()

	clock := NewClock(time.Time{})
	if !clock.Now().Equal(ReferenceTime()) {
		t.Fatalf("expected %v, got %v", ReferenceTime(), clock.Now())
	}
}

func TestClockAdvance(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, time.February, 1, 9, 0, 0, 0, time.UTC)
	clock := NewClock(start)

	if got := clock.Advance(45 * time.Minute); !got.Equal(start.Add(45 * time.Minute)) {
		t.Fatalf("Advance returned %v", got)
	}
	if got := clock.AdvanceDays(7); !got.Equal(start.AddDate(0, 0, 7).Add(45 * time.Minute)) {
		t.Fatalf("AdvanceDays returned %v, time of day should be kept", got)
	}
}

func TestClockNowFuncTracksAdvances(t *testing.T) {
	t.Parallel()

	clock := NewClock(ReferenceTime())
	now := clock.NowFunc()

	before := now()
	clock.Advance(time.Hour)
	if after := now(); !after.Equal(before.Add(time.Hour)) {
		t.Fatalf("expected %v, got %v", before.Add(time.Hour), after)
	}
}
