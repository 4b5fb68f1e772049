package scheduling

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
	StatusNoShow    Status = "no_show"
)

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusCancelled, StatusCompleted, StatusNoShow:
		return true
	}
	return false
}

// Terminal states allow no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted || s == StatusNoShow
}

const (
	LeadTime      = 24 * time.Hour
	HorizonMonths = 3
	NoShowGrace   = 15 * time.Minute
)

type Customer struct {
	Name  string
	Email string
	Phone string
}

func (c Customer) normalized() Customer {
	return Customer{
		Name:  strings.TrimSpace(c.Name),
		Email: strings.ToLower(strings.TrimSpace(c.Email)),
		Phone: strings.TrimSpace(c.Phone),
	}
}

func (c Customer) Validate() error {
	c = c.normalized()
	switch {
	case c.Name == "":
		return ErrInvalidCustomer.WithMessage("customer name is required")
	case c.Email == "":
		return ErrInvalidCustomer.WithMessage("customer email is required")
	case c.Phone == "":
		return ErrInvalidCustomer.WithMessage("customer phone is required")
	case !strings.Contains(c.Email, "@"):
		return ErrInvalidCustomer.WithMessage("invalid customer email format")
	}
	return nil
}

// Horizon is the last date bookable relative to now.
func Horizon(now time.Time) time.Time {
	return AddMonths(DateOf(now), HorizonMonths)
}

// ValidateSchedule applies the lead-time, horizon and past-date rules to a
// slot on date, evaluated at now.
func ValidateSchedule(date time.Time, slot TimeSlot, now time.Time) error {
	date = DateOf(date)
	today := DateOf(now)

	if !slot.StartOn(date).After(now.Add(LeadTime)) {
		return ErrLeadTime
	}
	if date.After(Horizon(now)) {
		return ErrHorizon
	}
	if date.Before(today) {
		return ErrPastDate
	}
	return nil
}

// Appointment is the booking aggregate. It is mutated only through its
// lifecycle methods, each of which takes the current time explicitly.
type Appointment struct {
	id                 uuid.UUID
	providerID         uuid.UUID
	customer           Customer
	date               time.Time
	slot               TimeSlot
	status             Status
	cancellationReason string
	recurrence         *RecurrenceRule
	parentID           uuid.NullUUID
	createdAt          time.Time
	updatedAt          time.Time
}

// NewAppointment carries the inputs of CreateAppointment.
type NewAppointment struct {
	ProviderID uuid.UUID
	Customer   Customer
	Date       time.Time
	Slot       TimeSlot
	Recurrence *RecurrenceRule
	ParentID   uuid.NullUUID
}

// AppointmentRecord is the flat, storage-facing form of an Appointment.
type AppointmentRecord struct {
	ID                 uuid.UUID
	ProviderID         uuid.UUID
	Customer           Customer
	Date               time.Time
	Start              TimeOfDay
	End                TimeOfDay
	Status             Status
	CancellationReason string
	Recurrence         *RecurrenceRule
	ParentID           uuid.NullUUID
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func CreateAppointment(in NewAppointment, now time.Time) (*Appointment, error) {
	if err := ValidateSchedule(in.Date, in.Slot, now); err != nil {
		return nil, err
	}
	if err := in.Customer.Validate(); err != nil {
		return nil, err
	}
	var rule *RecurrenceRule
	if in.Recurrence != nil {
		if err := in.Recurrence.Validate(); err != nil {
			return nil, err
		}
		r := *in.Recurrence
		rule = &r
	}
	return &Appointment{
		id:         uuid.New(),
		providerID: in.ProviderID,
		customer:   in.Customer.normalized(),
		date:       DateOf(in.Date),
		slot:       in.Slot,
		status:     StatusScheduled,
		recurrence: rule,
		parentID:   in.ParentID,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// RestoreAppointment rebuilds an appointment loaded from storage.
func RestoreAppointment(rec AppointmentRecord) (*Appointment, error) {
	slot, err := TimeSlotBetween(rec.Start, rec.End)
	if err != nil {
		return nil, err
	}
	a := &Appointment{
		id:                 rec.ID,
		providerID:         rec.ProviderID,
		customer:           rec.Customer,
		date:               DateOf(rec.Date),
		slot:               slot,
		status:             rec.Status,
		cancellationReason: rec.CancellationReason,
		parentID:           rec.ParentID,
		createdAt:          rec.CreatedAt,
		updatedAt:          rec.UpdatedAt,
	}
	if rec.Recurrence != nil {
		r := *rec.Recurrence
		a.recurrence = &r
	}
	return a, nil
}

func (a *Appointment) Record() AppointmentRecord {
	return AppointmentRecord{
		ID:                 a.id,
		ProviderID:         a.providerID,
		Customer:           a.customer,
		Date:               a.date,
		Start:              a.slot.Start(),
		End:                a.slot.End(),
		Status:             a.status,
		CancellationReason: a.cancellationReason,
		Recurrence:         a.Recurrence(),
		ParentID:           a.parentID,
		CreatedAt:          a.createdAt,
		UpdatedAt:          a.updatedAt,
	}
}

func (a *Appointment) ID() uuid.UUID              { return a.id }
func (a *Appointment) ProviderID() uuid.UUID      { return a.providerID }
func (a *Appointment) Customer() Customer         { return a.customer }
func (a *Appointment) Date() time.Time            { return a.date }
func (a *Appointment) Slot() TimeSlot             { return a.slot }
func (a *Appointment) Status() Status             { return a.status }
func (a *Appointment) CancellationReason() string { return a.cancellationReason }
func (a *Appointment) ParentID() uuid.NullUUID    { return a.parentID }
func (a *Appointment) IsRecurring() bool          { return a.recurrence != nil }
func (a *Appointment) CreatedAt() time.Time       { return a.createdAt }
func (a *Appointment) UpdatedAt() time.Time       { return a.updatedAt }
func (a *Appointment) StartsAt() time.Time        { return a.slot.StartOn(a.date) }
func (a *Appointment) EndsAt() time.Time          { return a.slot.EndOn(a.date) }

func (a *Appointment) Recurrence() *RecurrenceRule {
	if a.recurrence == nil {
		return nil
	}
	r := *a.recurrence
	return &r
}

// ConflictsWith reports whether a scheduled appointment overlaps slot on date.
func (a *Appointment) ConflictsWith(date time.Time, slot TimeSlot) bool {
	return a.status == StatusScheduled && a.date.Equal(DateOf(date)) && a.slot.Overlaps(slot)
}

func (a *Appointment) Cancel(reason string, now time.Time) error {
	if a.status != StatusScheduled {
		return ErrInvalidTransition.WithMessage("can only cancel scheduled appointments")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrMissingReason
	}
	a.status = StatusCancelled
	a.cancellationReason = reason
	a.updatedAt = now
	return nil
}

// Reschedule moves the appointment in place; identity and customer are kept.
func (a *Appointment) Reschedule(date time.Time, slot TimeSlot, now time.Time) error {
	if a.status != StatusScheduled {
		return ErrInvalidTransition.WithMessage("can only reschedule scheduled appointments")
	}
	if err := ValidateSchedule(date, slot, now); err != nil {
		return err
	}
	a.date = DateOf(date)
	a.slot = slot
	a.updatedAt = now
	return nil
}

func (a *Appointment) Complete(now time.Time) error {
	if a.status != StatusScheduled {
		return ErrInvalidTransition.WithMessage("can only complete scheduled appointments")
	}
	if now.Before(a.StartsAt()) {
		return ErrFutureCompletion
	}
	a.status = StatusCompleted
	a.updatedAt = now
	return nil
}

func (a *Appointment) MarkNoShow(now time.Time) error {
	if a.status != StatusScheduled {
		return ErrInvalidTransition.WithMessage("can only mark scheduled appointments as no-show")
	}
	if now.Before(a.StartsAt().Add(NoShowGrace)) {
		return ErrTooEarlyForNoShow
	}
	a.status = StatusNoShow
	a.updatedAt = now
	return nil
}
