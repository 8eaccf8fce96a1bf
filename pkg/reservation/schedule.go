package reservation

import (
	"errors"
	"fmt"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// ErrInvalidSchedule is returned when the date or time fields do not parse
var ErrInvalidSchedule = errors.New("invalid reservation schedule")

// Schedule is the concrete span a booking occupies
type Schedule struct {
	Start time.Time
	End   time.Time
}

// Reconcile turns the raw date/time fields of an intent into instants in loc.
//
// Days reservations start and end at midnight of their calendar dates.
// Hours reservations sit on a single calendar date; an end time earlier than
// the start time is not rolled over to the next day.
func Reconcile(intent Intent, loc *time.Location) (Schedule, error) {
	if loc == nil {
		loc = time.Local
	}

	switch intent.Kind {
	case KindDays:
		start, err := time.ParseInLocation(DateLayout, intent.StartDate, loc)
		if err != nil {
			return Schedule{}, fmt.Errorf("%w: startDate %q", ErrInvalidSchedule, intent.StartDate)
		}
		end, err := time.ParseInLocation(DateLayout, intent.EndDate, loc)
		if err != nil {
			return Schedule{}, fmt.Errorf("%w: endDate %q", ErrInvalidSchedule, intent.EndDate)
		}
		return Schedule{Start: start, End: end}, nil

	case KindHours:
		start, err := time.ParseInLocation(DateLayout+" "+ClockLayout, intent.ReservationDate+" "+intent.StartTime, loc)
		if err != nil {
			return Schedule{}, fmt.Errorf("%w: reservationDate %q startTime %q", ErrInvalidSchedule, intent.ReservationDate, intent.StartTime)
		}
		end, err := time.ParseInLocation(DateLayout+" "+ClockLayout, intent.ReservationDate+" "+intent.EndTime, loc)
		if err != nil {
			return Schedule{}, fmt.Errorf("%w: reservationDate %q endTime %q", ErrInvalidSchedule, intent.ReservationDate, intent.EndTime)
		}
		return Schedule{Start: start, End: end}, nil
	}

	return Schedule{}, fmt.Errorf("%w: unknown reservation type %q", ErrInvalidSchedule, intent.Kind)
}
