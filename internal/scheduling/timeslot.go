package scheduling

import (
	"fmt"
	"time"
)

// ValidDurations lists the only slot lengths, in minutes, the system books.
var ValidDurations = []int{15, 30, 45, 60}

func ValidDuration(minutes int) bool {
	for _, d := range ValidDurations {
		if d == minutes {
			return true
		}
	}
	return false
}

// TimeSlot is an immutable [start, end) window within a single day.
// The zero value is not a valid slot; use NewTimeSlot or TimeSlotBetween.
type TimeSlot struct {
	start TimeOfDay
	end   TimeOfDay
}

// NewTimeSlot builds a slot of durationMinutes starting at start.
func NewTimeSlot(start TimeOfDay, durationMinutes int) (TimeSlot, error) {
	if !ValidDuration(durationMinutes) {
		return TimeSlot{}, ErrInvalidDuration
	}
	if !start.Valid() {
		return TimeSlot{}, ErrInvalidTimeOfDay
	}
	end := start + TimeOfDay(durationMinutes)
	// a slot running past midnight wraps around and ends before it starts
	if end >= MinutesPerDay {
		return TimeSlot{}, ErrInvalidRange
	}
	return TimeSlot{start: start, end: end}, nil
}

// TimeSlotBetween builds a slot from explicit bounds.
func TimeSlotBetween(start, end TimeOfDay) (TimeSlot, error) {
	if !start.Valid() || !end.Valid() {
		return TimeSlot{}, ErrInvalidTimeOfDay
	}
	if end <= start {
		return TimeSlot{}, ErrInvalidRange
	}
	return NewTimeSlot(start, int(end-start))
}

func (s TimeSlot) Start() TimeOfDay     { return s.start }
func (s TimeSlot) End() TimeOfDay       { return s.end }
func (s TimeSlot) DurationMinutes() int { return int(s.end - s.start) }

func (s TimeSlot) Duration() time.Duration {
	return time.Duration(s.DurationMinutes()) * time.Minute
}

// Overlaps uses half-open semantics: slots that only touch do not overlap.
func (s TimeSlot) Overlaps(other TimeSlot) bool {
	return s.start < other.end && s.end > other.start
}

// StartOn and EndOn anchor the slot to a calendar date.
func (s TimeSlot) StartOn(date time.Time) time.Time { return s.start.On(date) }
func (s TimeSlot) EndOn(date time.Time) time.Time   { return s.end.On(date) }

func (s TimeSlot) String() string {
	return fmt.Sprintf("%s - %s", s.start, s.end)
}
