package recurrence

import (
	"errors"
	"testing"
	"time"

	"github.com/example/classroom-reserve/internal/booking"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func TestExpandNone(t *testing.T) {
	t.Parallel()

	got, err := Expand(Request{
		Date:   date(2025, time.March, 3),
		Start:  9 * 60,
		End:    10 * 60,
		Policy: PolicyNone,
	})
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected one interval, got %d", len(got))
	}
	if !got[0].Date.Equal(date(2025, time.March, 3)) || got[0].Start != 9*60 || got[0].End != 10*60 {
		t.Fatalf("unexpected interval %+v", got[0])
	}
}

func TestExpandDaily(t *testing.T) {
	t.Parallel()

	got, err := Expand(Request{
		Date:      date(2025, time.March, 3),
		Start:     9 * 60,
		End:       10 * 60,
		Policy:    PolicyDaily,
		RepeatEnd: datePtr(2025, time.March, 5),
	})
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected three days inclusive of the bound, got %d", len(got))
	}
	for i, interval := range got {
		want := date(2025, time.March, 3+i)
		if !interval.Date.Equal(want) {
			t.Fatalf("interval %d lands on %v, want %v", i, interval.Date, want)
		}
		if interval.Start != 9*60 || interval.End != 10*60 {
			t.Fatalf("interval %d carries slot %v-%v", i, interval.Start, interval.End)
		}
	}
}

func TestExpandWeekly(t *testing.T) {
	t.Parallel()

	var weekly WeeklySchedule
	weekly[time.Monday] = DaySlot{Enabled: true, Start: 9 * 60, End: 10 * 60}
	weekly[time.Wednesday] = DaySlot{Enabled: true, Start: 13 * 60, End: 15 * 60}

	// 2025-03-03 is a Monday.
	got, err := Expand(Request{
		Date:      date(2025, time.March, 3),
		Policy:    PolicyWeekly,
		RepeatEnd: datePtr(2025, time.March, 12),
		Weekly:    weekly,
	})
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}

	want := []struct {
		date       time.Time
		start, end booking.TimeOfDay
	}{
		{date(2025, time.March, 3), 9 * 60, 10 * 60},
		{date(2025, time.March, 5), 13 * 60, 15 * 60},
		{date(2025, time.March, 10), 9 * 60, 10 * 60},
		{date(2025, time.March, 12), 13 * 60, 15 * 60},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d occurrences, got %d: %+v", len(want), len(got), got)
	}
	for i, w := range want {
		if !got[i].Date.Equal(w.date) || got[i].Start != w.start || got[i].End != w.end {
			t.Fatalf("occurrence %d = %+v, want %v %v-%v", i, got[i], w.date, w.start, w.end)
		}
	}
}

func TestExpandWeeklySkipsWeekBeforeFirstEnabledDay(t *testing.T) {
	t.Parallel()

	var weekly WeeklySchedule
	weekly[time.Friday] = DaySlot{Enabled: true, Start: 9 * 60, End: 10 * 60}

	// Anchor on a Monday with only Friday enabled: the first occurrence is
	// the Friday of the anchor week, not the anchor itself.
	got, err := Expand(Request{
		Date:      date(2025, time.March, 3),
		Policy:    PolicyWeekly,
		RepeatEnd: datePtr(2025, time.March, 14),
		Weekly:    weekly,
	})
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected two Fridays, got %d: %+v", len(got), got)
	}
	if !got[0].Date.Equal(date(2025, time.March, 7)) || !got[1].Date.Equal(date(2025, time.March, 14)) {
		t.Fatalf("unexpected dates %v and %v", got[0].Date, got[1].Date)
	}
}

func TestExpandNormalizesZonedInputs(t *testing.T) {
	t.Parallel()

	est := time.FixedZone("EST", -5*3600)
	anchor := time.Date(2025, time.March, 3, 23, 30, 0, 0, est) // 2025-03-04 UTC

	got, err := Expand(Request{
		Date:   anchor,
		Start:  9 * 60,
		End:    10 * 60,
		Policy: PolicyNone,
	})
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	if !got[0].Date.Equal(date(2025, time.March, 4)) {
		t.Fatalf("expected the UTC date, got %v", got[0].Date)
	}
}

func TestExpandIsDeterministic(t *testing.T) {
	t.Parallel()

	req := Request{
		Date:      date(2025, time.March, 3),
		Start:     9 * 60,
		End:       10 * 60,
		Policy:    PolicyDaily,
		RepeatEnd: datePtr(2025, time.March, 10),
	}

	first, err := Expand(req)
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	second, err := Expand(req)
	if err != nil {
		t.Fatalf("Expand returned error: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("occurrence %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestExpandErrors(t *testing.T) {
	t.Parallel()

	var noDays WeeklySchedule
	var inverted WeeklySchedule
	inverted[time.Monday] = DaySlot{Enabled: true, Start: 10 * 60, End: 9 * 60}

	cases := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{
			name: "end not after start",
			req: Request{
				Date:   date(2025, time.March, 3),
				Start:  10 * 60,
				End:    10 * 60,
				Policy: PolicyNone,
			},
			wantErr: ErrInvalidInterval,
		},
		{
			name: "daily without repeat end",
			req: Request{
				Date:   date(2025, time.March, 3),
				Start:  9 * 60,
				End:    10 * 60,
				Policy: PolicyDaily,
			},
			wantErr: ErrMissingRepeatEnd,
		},
		{
			name: "repeat end on the anchor date",
			req: Request{
				Date:      date(2025, time.March, 3),
				Start:     9 * 60,
				End:       10 * 60,
				Policy:    PolicyDaily,
				RepeatEnd: datePtr(2025, time.March, 3),
			},
			wantErr: ErrRepeatEndBeforeDate,
		},
		{
			name: "weekly without any enabled day",
			req: Request{
				Date:      date(2025, time.March, 3),
				Policy:    PolicyWeekly,
				RepeatEnd: datePtr(2025, time.March, 17),
				Weekly:    noDays,
			},
			wantErr: ErrNoWeekdayEnabled,
		},
		{
			name: "weekly slot with inverted times",
			req: Request{
				Date:      date(2025, time.March, 3),
				Policy:    PolicyWeekly,
				RepeatEnd: datePtr(2025, time.March, 17),
				Weekly:    inverted,
			},
			wantErr: ErrInvalidInterval,
		},
		{
			name: "unknown policy",
			req: Request{
				Date:   date(2025, time.March, 3),
				Start:  9 * 60,
				End:    10 * 60,
				Policy: Policy("monthly"),
			},
			wantErr: ErrUnknownPolicy,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := Expand(tc.req)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("Expand error = %v, want %v", err, tc.wantErr)
			}
			if got != nil {
				t.Fatalf("expected no intervals on error, got %+v", got)
			}
		})
	}
}
