package scheduling

import "time"

// GridStepMinutes is the stepping between candidate start times. It does not
// depend on the requested duration, so a 60 minute query still returns
// starts every 15 minutes.
const GridStepMinutes = 15

// AvailableSlots returns every grid-aligned slot of durationMinutes on date
// that fits the provider's active working hours for that weekday and does not
// overlap a non-cancelled appointment or a blocked interval.
//
// appointments and blocked may contain entries for other days; they are
// filtered here. Results are in ascending start order.
func AvailableSlots(date time.Time, durationMinutes int, hours []WorkingHours, appointments []*Appointment, blocked []BlockedTime) ([]TimeSlot, error) {
	if !ValidDuration(durationMinutes) {
		return nil, ErrInvalidDuration
	}
	date = DateOf(date)

	var window *WorkingHours
	for i := range hours {
		if hours[i].Active && hours[i].DayOfWeek == date.Weekday() {
			window = &hours[i]
			break
		}
	}
	if window == nil {
		return []TimeSlot{}, nil
	}

	var busy []TimeSlot
	for _, a := range appointments {
		if a.Status() == StatusCancelled || !a.Date().Equal(date) {
			continue
		}
		busy = append(busy, a.Slot())
	}

	slots := []TimeSlot{}
	for start := window.Start; start+TimeOfDay(durationMinutes) <= window.End; start += GridStepMinutes {
		candidate, err := NewTimeSlot(start, durationMinutes)
		if err != nil {
			// runs past midnight; no later start can fit either
			break
		}
		if overlapsAny(candidate, busy) || blockedAny(date, candidate, blocked) {
			continue
		}
		slots = append(slots, candidate)
	}
	return slots, nil
}

func overlapsAny(slot TimeSlot, busy []TimeSlot) bool {
	for _, b := range busy {
		if slot.Overlaps(b) {
			return true
		}
	}
	return false
}

func blockedAny(date time.Time, slot TimeSlot, blocked []BlockedTime) bool {
	for _, bt := range blocked {
		if bt.ConflictsWith(date, slot) {
			return true
		}
	}
	return false
}
