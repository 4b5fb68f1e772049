package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/provider-booking/internal/appointment"
	"github.com/hackgods/provider-booking/internal/scheduling"
)

func bookAppointmentHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BookAppointmentRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		providerID, err := uuid.Parse(req.ProviderID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_provider_id", "provider_id must be a valid UUID")
			return
		}
		date, err := scheduling.ParseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
		start, err := scheduling.ParseTimeOfDay(req.StartTime)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		booking := appointment.BookingRequest{
			ProviderID: providerID,
			Customer: scheduling.Customer{
				Name:  req.Customer.Name,
				Email: req.Customer.Email,
				Phone: req.Customer.Phone,
			},
			Date:            date,
			Start:           start,
			DurationMinutes: req.DurationMinutes,
		}
		if req.Recurrence != nil {
			rule, err := recurrenceFromRequest(*req.Recurrence)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			booking.Recurrence = &rule
		}

		res, err := svc.Book(r.Context(), booking)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toBookingResponse(res))
	}
}

func recurrenceFromRequest(req RecurrenceRequest) (scheduling.RecurrenceRule, error) {
	var end *time.Time
	if req.EndDate != "" {
		d, err := scheduling.ParseDate(req.EndDate)
		if err != nil {
			return scheduling.RecurrenceRule{}, scheduling.ErrInvalidRecurrence.WithMessage(err.Error())
		}
		end = &d
	}
	return scheduling.NewRecurrenceRule(scheduling.RecurrenceType(req.Type), req.Interval, end)
}

func listAppointmentsHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, msg := parseListFilter(r)
		if msg != "" {
			writeError(w, http.StatusBadRequest, "invalid_query", msg)
			return
		}

		appts, err := svc.List(r.Context(), f)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponses(appts))
	}
}

// parseListFilter returns a non-empty message describing the first bad parameter.
func parseListFilter(r *http.Request) (appointment.ListFilter, string) {
	q := r.URL.Query()
	var f appointment.ListFilter

	if v := q.Get("provider_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return f, "provider_id must be a valid UUID"
		}
		f.ProviderID = uuid.NullUUID{UUID: id, Valid: true}
	}
	for _, p := range []struct {
		name string
		dst  **time.Time
	}{{"from", &f.From}, {"to", &f.To}} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		d, err := scheduling.ParseDate(v)
		if err != nil {
			return f, p.name + " must be formatted as YYYY-MM-DD"
		}
		*p.dst = &d
	}
	if v := q.Get("status"); v != "" {
		s := scheduling.Status(v)
		if !s.Valid() {
			return f, "status must be one of scheduled, cancelled, completed, no_show"
		}
		f.Status = s
	}
	f.CustomerEmail = q.Get("customer_email")

	for _, p := range []struct {
		name string
		dst  *int
	}{{"limit", &f.Limit}, {"offset", &f.Offset}} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, p.name + " must be a non-negative integer"
		}
		*p.dst = n
	}
	return f, ""
}

func getAppointmentHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "invalid_appointment_id")
		if !ok {
			return
		}

		appt, err := svc.Get(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func cancelAppointmentHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "invalid_appointment_id")
		if !ok {
			return
		}
		var req CancelRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		appt, err := svc.Cancel(r.Context(), id, req.Reason)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func rescheduleAppointmentHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "invalid_appointment_id")
		if !ok {
			return
		}
		var req RescheduleRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		date, err := scheduling.ParseDate(req.NewDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
		start, err := scheduling.ParseTimeOfDay(req.NewStartTime)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		appt, err := svc.Reschedule(r.Context(), appointment.RescheduleRequest{
			AppointmentID:   id,
			NewDate:         date,
			NewStart:        start,
			DurationMinutes: req.DurationMinutes,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func completeAppointmentHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "invalid_appointment_id")
		if !ok {
			return
		}

		appt, err := svc.Complete(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func noShowAppointmentHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "invalid_appointment_id")
		if !ok {
			return
		}

		appt, err := svc.MarkNoShow(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}
