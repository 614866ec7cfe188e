package booking

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time expressed in minutes since midnight. Start
// and end selectors in the booking flow are time-of-day pickers layered onto
// a separately chosen calendar date, so validity and overlap checks operate
// on this type rather than on full timestamps.
type TimeOfDay int

// MinutesPerDay bounds valid TimeOfDay values; the exclusive upper bound
// (24:00) is permitted as an interval end.
const MinutesPerDay = 24 * 60

// ParseTimeOfDay parses "HH:MM" into a TimeOfDay.
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(value, "%d:%d", &hour, &minute); err != nil {
		return 0, fmt.Errorf("booking: invalid time of day %q", value)
	}
	tod := TimeOfDay(hour*60 + minute)
	if hour < 0 || minute < 0 || minute > 59 || tod > MinutesPerDay {
		return 0, fmt.Errorf("booking: invalid time of day %q", value)
	}
	return tod, nil
}

// TimeOfDayOf extracts the wall-clock component of a timestamp.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*60 + t.Minute())
}

// Hour returns the hour component.
func (t TimeOfDay) Hour() int { return int(t) / 60 }

// Minute returns the minute component.
func (t TimeOfDay) Minute() int { return int(t) % 60 }

// Valid reports whether t falls within a single day.
func (t TimeOfDay) Valid() bool { return t >= 0 && t <= MinutesPerDay }

// String renders the time as "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// On anchors the time of day to a calendar date in the date's location.
func (t TimeOfDay) On(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, date.Location())
}

// MarshalJSON renders the "HH:MM" form.
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts the "HH:MM" form.
func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// DateOf normalizes a timestamp to its calendar date at UTC midnight. All
// occurrence dates are stored in this form so date equality never depends on
// the zone a caller happened to supply.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDate reports whether two timestamps fall on the same UTC calendar date.
func SameDate(a, b time.Time) bool {
	return DateOf(a).Equal(DateOf(b))
}

// Interval is a half-open reservable slot anchored to a calendar date.
type Interval struct {
	Date  time.Time
	Start TimeOfDay
	End   TimeOfDay
}

// Valid reports whether the interval is well formed (End strictly after
// Start, both within a day).
func (i Interval) Valid() bool {
	return i.Start.Valid() && i.End.Valid() && i.End > i.Start
}

// Overlaps decides whether two intervals on the same resource collide.
// Intervals are half-open: sharing a boundary (a.End == b.Start) is not an
// overlap. Inputs are assumed pre-validated (Start < End).
func Overlaps(a, b Interval) bool {
	if !SameDate(a.Date, b.Date) {
		return false
	}
	return a.Start < b.End && b.Start < a.End
}
