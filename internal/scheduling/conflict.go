package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// ConflictQuery describes a candidate booking to check. ExcludeID skips one
// appointment, which is how a reschedule ignores its own current slot.
type ConflictQuery struct {
	ProviderID uuid.UUID
	Date       time.Time
	Slot       TimeSlot
	ExcludeID  uuid.UUID
}

// FindConflict returns ErrSlotConflict when the candidate overlaps a
// scheduled appointment of the same provider on the same date, or
// ErrBlockedConflict when it falls inside a blocked interval. Cancelled,
// completed and no-show appointments never conflict.
func FindConflict(q ConflictQuery, appointments []*Appointment, blocked []BlockedTime) error {
	date := DateOf(q.Date)
	for _, a := range appointments {
		if a.ProviderID() != q.ProviderID || a.ID() == q.ExcludeID {
			continue
		}
		if a.ConflictsWith(date, q.Slot) {
			return ErrSlotConflict
		}
	}
	for _, bt := range blocked {
		if bt.ProviderID == q.ProviderID && bt.ConflictsWith(date, q.Slot) {
			return ErrBlockedConflict
		}
	}
	return nil
}
