package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/provider-booking/internal/appointment"
	"github.com/hackgods/provider-booking/internal/scheduling"
)

// Requests

type ProviderRequest struct {
	Name      string `json:"name" validate:"required,max=200"`
	Email     string `json:"email" validate:"required,email"`
	Specialty string `json:"specialty" validate:"required,max=200"`
}

type WorkingHoursRequest struct {
	DayOfWeek *int   `json:"day_of_week" validate:"required,min=0,max=6"`
	StartTime string `json:"start_time" validate:"required,datetime=15:04"`
	EndTime   string `json:"end_time" validate:"required,datetime=15:04"`
}

type BlockTimeRequest struct {
	Start  time.Time `json:"start" validate:"required"`
	End    time.Time `json:"end" validate:"required"`
	Reason string    `json:"reason" validate:"required"`
}

type CustomerRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required"`
}

type RecurrenceRequest struct {
	Type     string `json:"type" validate:"required,oneof=weekly monthly"`
	Interval int    `json:"interval" validate:"required,min=1"`
	EndDate  string `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type BookAppointmentRequest struct {
	ProviderID      string             `json:"provider_id" validate:"required,uuid"`
	Customer        CustomerRequest    `json:"customer"`
	Date            string             `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime       string             `json:"start_time" validate:"required,datetime=15:04"`
	DurationMinutes int                `json:"duration_minutes" validate:"required"`
	Recurrence      *RecurrenceRequest `json:"recurrence,omitempty"`
}

type CancelRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type RescheduleRequest struct {
	NewDate         string `json:"new_date" validate:"required,datetime=2006-01-02"`
	NewStartTime    string `json:"new_start_time" validate:"required,datetime=15:04"`
	DurationMinutes int    `json:"duration_minutes" validate:"required"`
}

// Responses

type WorkingHoursResponse struct {
	ID        uuid.UUID `json:"id"`
	DayOfWeek int       `json:"day_of_week"`
	Day       string    `json:"day"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
}

type BlockedTimeResponse struct {
	ID     uuid.UUID `json:"id"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Reason string    `json:"reason"`
}

type ProviderResponse struct {
	ID           uuid.UUID              `json:"id"`
	Name         string                 `json:"name"`
	Email        string                 `json:"email"`
	Specialty    string                 `json:"specialty"`
	Active       bool                   `json:"is_active"`
	WorkingHours []WorkingHoursResponse `json:"working_hours"`
	BlockedTimes []BlockedTimeResponse  `json:"blocked_times"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

type SlotResponse struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Display   string `json:"display"`
}

type AvailabilityResponse struct {
	ProviderID      uuid.UUID      `json:"provider_id"`
	Date            string         `json:"date"`
	DurationMinutes int            `json:"duration_minutes"`
	Slots           []SlotResponse `json:"slots"`
}

type RecurrenceResponse struct {
	Type     string `json:"type"`
	Interval int    `json:"interval"`
	EndDate  string `json:"end_date,omitempty"`
}

type AppointmentResponse struct {
	ID                 uuid.UUID           `json:"id"`
	ProviderID         uuid.UUID           `json:"provider_id"`
	CustomerName       string              `json:"customer_name"`
	CustomerEmail      string              `json:"customer_email"`
	CustomerPhone      string              `json:"customer_phone"`
	Date               string              `json:"date"`
	StartTime          string              `json:"start_time"`
	EndTime            string              `json:"end_time"`
	DurationMinutes    int                 `json:"duration_minutes"`
	Status             string              `json:"status"`
	CancellationReason string              `json:"cancellation_reason,omitempty"`
	Recurrence         *RecurrenceResponse `json:"recurrence,omitempty"`
	ParentID           *uuid.UUID          `json:"parent_id,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

type BookingResponse struct {
	Appointment             AppointmentResponse `json:"appointment"`
	RecurringAppointmentIDs []uuid.UUID         `json:"recurring_appointment_ids"`
	TotalCreated            int                 `json:"total_created"`
	Partial                 bool                `json:"partial"`
	Warning                 string              `json:"warning,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Mapping

func toProviderResponse(p *scheduling.ServiceProvider) ProviderResponse {
	resp := ProviderResponse{
		ID:           p.ID(),
		Name:         p.Name(),
		Email:        p.Email(),
		Specialty:    p.Specialty(),
		Active:       p.Active(),
		WorkingHours: []WorkingHoursResponse{},
		BlockedTimes: []BlockedTimeResponse{},
		CreatedAt:    p.CreatedAt(),
		UpdatedAt:    p.UpdatedAt(),
	}
	for _, wh := range p.WorkingHours() {
		if !wh.Active {
			continue
		}
		resp.WorkingHours = append(resp.WorkingHours, toWorkingHoursResponse(wh))
	}
	for _, bt := range p.BlockedTimes() {
		resp.BlockedTimes = append(resp.BlockedTimes, toBlockedTimeResponse(bt))
	}
	return resp
}

func toWorkingHoursResponse(wh scheduling.WorkingHours) WorkingHoursResponse {
	return WorkingHoursResponse{
		ID:        wh.ID,
		DayOfWeek: int(wh.DayOfWeek),
		Day:       wh.DayOfWeek.String(),
		StartTime: wh.Start.String(),
		EndTime:   wh.End.String(),
	}
}

func toBlockedTimeResponse(bt scheduling.BlockedTime) BlockedTimeResponse {
	return BlockedTimeResponse{ID: bt.ID, Start: bt.Start, End: bt.End, Reason: bt.Reason}
}

func toSlotResponses(slots []scheduling.TimeSlot) []SlotResponse {
	out := make([]SlotResponse, 0, len(slots))
	for _, s := range slots {
		out = append(out, SlotResponse{
			StartTime: s.Start().String(),
			EndTime:   s.End().String(),
			Display:   s.String(),
		})
	}
	return out
}

func toAppointmentResponse(a *scheduling.Appointment) AppointmentResponse {
	c := a.Customer()
	resp := AppointmentResponse{
		ID:                 a.ID(),
		ProviderID:         a.ProviderID(),
		CustomerName:       c.Name,
		CustomerEmail:      c.Email,
		CustomerPhone:      c.Phone,
		Date:               a.Date().Format(scheduling.DateLayout),
		StartTime:          a.Slot().Start().String(),
		EndTime:            a.Slot().End().String(),
		DurationMinutes:    a.Slot().DurationMinutes(),
		Status:             string(a.Status()),
		CancellationReason: a.CancellationReason(),
		CreatedAt:          a.CreatedAt(),
		UpdatedAt:          a.UpdatedAt(),
	}
	if r := a.Recurrence(); r != nil {
		rr := &RecurrenceResponse{Type: string(r.Type), Interval: r.Interval}
		if r.EndDate != nil {
			rr.EndDate = r.EndDate.Format(scheduling.DateLayout)
		}
		resp.Recurrence = rr
	}
	if p := a.ParentID(); p.Valid {
		id := p.UUID
		resp.ParentID = &id
	}
	return resp
}

func toAppointmentResponses(appts []*scheduling.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(appts))
	for _, a := range appts {
		out = append(out, toAppointmentResponse(a))
	}
	return out
}

func toBookingResponse(res *appointment.BookingResult) BookingResponse {
	resp := BookingResponse{
		Appointment:             toAppointmentResponse(res.Appointment),
		RecurringAppointmentIDs: res.RecurringAppointmentIDs,
		TotalCreated:            res.TotalCreated,
		Partial:                 res.Partial,
	}
	if resp.RecurringAppointmentIDs == nil {
		resp.RecurringAppointmentIDs = []uuid.UUID{}
	}
	if res.Partial {
		resp.Warning = "recurring series stopped early; only the listed appointments were created"
	}
	return resp
}
