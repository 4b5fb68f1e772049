package appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/provider-booking/internal/scheduling"
)

// MaxOccurrences bounds a recurring series, the parent included.
const MaxOccurrences = 52

type BookingRequest struct {
	ProviderID      uuid.UUID
	Customer        scheduling.Customer
	Date            time.Time
	Start           scheduling.TimeOfDay
	DurationMinutes int
	Recurrence      *scheduling.RecurrenceRule
}

// BookingResult describes what a booking materialized. When Partial is set the
// recurring series stopped early because of ExpansionErr; everything listed
// was still committed.
type BookingResult struct {
	Appointment             *scheduling.Appointment
	RecurringAppointmentIDs []uuid.UUID
	TotalCreated            int
	Partial                 bool
	ExpansionErr            error
}

type RescheduleRequest struct {
	AppointmentID   uuid.UUID
	NewDate         time.Time
	NewStart        scheduling.TimeOfDay
	DurationMinutes int
}

// ListFilter narrows ListAppointments. Zero values mean "any".
type ListFilter struct {
	ProviderID    uuid.NullUUID
	From          *time.Time
	To            *time.Time
	CustomerEmail string
	Status        scheduling.Status
	Limit         int
	Offset        int
}

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

func (f ListFilter) normalized() ListFilter {
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
