package recurrence

import (
	"errors"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/example/classroom-reserve/internal/booking"
)

// Policy selects how a reservation request repeats.
type Policy string

const (
	// PolicyNone books a single occurrence on the anchor date.
	PolicyNone Policy = "none"
	// PolicyDaily books every calendar day through the repeat end date.
	PolicyDaily Policy = "daily"
	// PolicyWeekly books the enabled weekdays through the repeat end date,
	// each weekday with its own time slot.
	PolicyWeekly Policy = "weekly"
)

// Known reports whether p is a recognised policy.
func (p Policy) Known() bool {
	switch p {
	case PolicyNone, PolicyDaily, PolicyWeekly:
		return true
	}
	return false
}

// DaySlot is one weekday's entry in a weekly schedule.
type DaySlot struct {
	Enabled bool
	Start   booking.TimeOfDay
	End     booking.TimeOfDay
}

// WeeklySchedule holds exactly one slot per weekday, indexed by
// time.Weekday. The fixed size keeps weekday handling exhaustive instead of
// relying on an open-ended string-keyed map.
type WeeklySchedule [7]DaySlot

// EnabledDays returns the enabled weekdays in time.Weekday order.
func (w WeeklySchedule) EnabledDays() []time.Weekday {
	days := make([]time.Weekday, 0, len(w))
	for day := time.Sunday; day <= time.Saturday; day++ {
		if w[day].Enabled {
			days = append(days, day)
		}
	}
	return days
}

// Request captures the recurrence-relevant fields of a reservation request.
// Start/End apply to the none and daily policies; the weekly policy carries
// per-day times in Weekly.
type Request struct {
	Date      time.Time
	Start     booking.TimeOfDay
	End       booking.TimeOfDay
	Policy    Policy
	RepeatEnd *time.Time
	Weekly    WeeklySchedule
}

var (
	// ErrUnknownPolicy indicates an unrecognised repeat policy.
	ErrUnknownPolicy = errors.New("recurrence: unknown repeat policy")
	// ErrMissingRepeatEnd indicates a repeating policy without an end bound.
	ErrMissingRepeatEnd = errors.New("recurrence: repeat end date is required")
	// ErrRepeatEndBeforeDate indicates the repeat window ends before it starts.
	ErrRepeatEndBeforeDate = errors.New("recurrence: repeat end date must be after the booking date")
	// ErrNoWeekdayEnabled indicates a weekly request with no day selected.
	ErrNoWeekdayEnabled = errors.New("recurrence: no day selected")
	// ErrInvalidInterval indicates an end time that is not after its start.
	ErrInvalidInterval = errors.New("recurrence: end time must be after start time")
)

var rruleWeekdays = [7]rrule.Weekday{
	time.Sunday:    rrule.SU,
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
}

// Expand turns a request into the ordered sequence of concrete intervals it
// reserves. Expansion is deterministic: the same request always yields the
// same sequence, ascending by date. Dates are normalized to UTC midnight
// before any arithmetic so the weekday of an occurrence never shifts with
// the caller's zone.
func Expand(req Request) ([]booking.Interval, error) {
	anchor := booking.DateOf(req.Date)

	switch req.Policy {
	case PolicyNone:
		if err := validateTimes(req.Start, req.End); err != nil {
			return nil, err
		}
		return []booking.Interval{{Date: anchor, Start: req.Start, End: req.End}}, nil

	case PolicyDaily:
		if err := validateTimes(req.Start, req.End); err != nil {
			return nil, err
		}
		until, err := repeatWindow(anchor, req.RepeatEnd)
		if err != nil {
			return nil, err
		}
		dates, err := expandDates(rrule.ROption{
			Freq:    rrule.DAILY,
			Dtstart: anchor,
			Until:   until,
		})
		if err != nil {
			return nil, err
		}
		out := make([]booking.Interval, 0, len(dates))
		for _, date := range dates {
			out = append(out, booking.Interval{Date: date, Start: req.Start, End: req.End})
		}
		return out, nil

	case PolicyWeekly:
		until, err := repeatWindow(anchor, req.RepeatEnd)
		if err != nil {
			return nil, err
		}
		enabled := req.Weekly.EnabledDays()
		if len(enabled) == 0 {
			return nil, ErrNoWeekdayEnabled
		}
		byweekday := make([]rrule.Weekday, 0, len(enabled))
		for _, day := range enabled {
			slot := req.Weekly[day]
			if err := validateTimes(slot.Start, slot.End); err != nil {
				return nil, fmt.Errorf("%w for %s", ErrInvalidInterval, weekdayName(day))
			}
			byweekday = append(byweekday, rruleWeekdays[day])
		}
		dates, err := expandDates(rrule.ROption{
			Freq:      rrule.WEEKLY,
			Dtstart:   anchor,
			Until:     until,
			Byweekday: byweekday,
		})
		if err != nil {
			return nil, err
		}
		out := make([]booking.Interval, 0, len(dates))
		for _, date := range dates {
			slot := req.Weekly[date.Weekday()]
			out = append(out, booking.Interval{Date: date, Start: slot.Start, End: slot.End})
		}
		return out, nil
	}

	return nil, ErrUnknownPolicy
}

func validateTimes(start, end booking.TimeOfDay) error {
	if !start.Valid() || !end.Valid() || end <= start {
		return ErrInvalidInterval
	}
	return nil
}

// repeatWindow validates the repeat bound and returns it as an inclusive
// UNTIL instant.
func repeatWindow(anchor time.Time, repeatEnd *time.Time) (time.Time, error) {
	if repeatEnd == nil || repeatEnd.IsZero() {
		return time.Time{}, ErrMissingRepeatEnd
	}
	until := booking.DateOf(*repeatEnd)
	if !until.After(anchor) {
		return time.Time{}, ErrRepeatEndBeforeDate
	}
	return until, nil
}

// expandDates runs the RRULE and normalizes the produced instants back to
// UTC midnight dates.
func expandDates(opt rrule.ROption) ([]time.Time, error) {
	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, fmt.Errorf("recurrence: %w", err)
	}
	instants := rule.All()
	dates := make([]time.Time, 0, len(instants))
	for _, instant := range instants {
		dates = append(dates, booking.DateOf(instant))
	}
	return dates, nil
}

func weekdayName(day time.Weekday) string {
	switch day {
	case time.Sunday:
		return "sunday"
	case time.Monday:
		return "monday"
	case time.Tuesday:
		return "tuesday"
	case time.Wednesday:
		return "wednesday"
	case time.Thursday:
		return "thursday"
	case time.Friday:
		return "friday"
	case time.Saturday:
		return "saturday"
	}
	return "unknown"
}
