package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/hackgods/provider-booking/internal/provider"
	"github.com/hackgods/provider-booking/internal/scheduling"
)

func createProviderHandler(svc ProviderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ProviderRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		p, err := svc.Create(r.Context(), provider.Details{Name: req.Name, Email: req.Email, Specialty: req.Specialty})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toProviderResponse(p))
	}
}

func listProvidersHandler(svc ProviderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		includeInactive := false
		if v := r.URL.Query().Get("include_inactive"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_query", "include_inactive must be a boolean")
				return
			}
			includeInactive = b
		}

		ps, err := svc.List(r.Context(), includeInactive)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		resp := make([]ProviderResponse, 0, len(ps))
		for _, p := range ps {
			resp = append(resp, toProviderResponse(p))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func getProviderHandler(svc ProviderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "invalid_provider_id")
		if !ok {
			return
		}

		p, err := svc.Get(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toProviderResponse(p))
	}
}

func updateProviderHandler(svc ProviderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "invalid_provider_id")
		if !ok {
			return
		}
		var req ProviderRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		p, err := svc.Update(r.Context(), id, provider.Details{Name: req.Name, Email: req.Email, Specialty: req.Specialty})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toProviderResponse(p))
	}
}

func deactivateProviderHandler(svc ProviderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "invalid_provider_id")
		if !ok {
			return
		}

		p, err := svc.Deactivate(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toProviderResponse(p))
	}
}

func activateProviderHandler(svc ProviderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "invalid_provider_id")
		if !ok {
			return
		}

		p, err := svc.Activate(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toProviderResponse(p))
	}
}

func addWorkingHoursHandler(svc ProviderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "invalid_provider_id")
		if !ok {
			return
		}
		var req WorkingHoursRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		start, err := scheduling.ParseTimeOfDay(req.StartTime)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		end, err := scheduling.ParseTimeOfDay(req.EndTime)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		wh, err := svc.AddWorkingHours(r.Context(), id, time.Weekday(*req.DayOfWeek), start, end)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toWorkingHoursResponse(wh))
	}
}

func blockTimeHandler(svc ProviderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "invalid_provider_id")
		if !ok {
			return
		}
		var req BlockTimeRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		bt, err := svc.BlockTime(r.Context(), id, req.Start, req.End, req.Reason)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toBlockedTimeResponse(bt))
	}
}

func availabilityHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "invalid_provider_id")
		if !ok {
			return
		}

		q := r.URL.Query()
		date, err := scheduling.ParseDate(q.Get("date"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_query", "date must be formatted as YYYY-MM-DD")
			return
		}
		duration := 30
		if v := q.Get("duration_minutes"); v != "" {
			duration, err = strconv.Atoi(v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_query", "duration_minutes must be an integer")
				return
			}
		}

		slots, err := svc.AvailableSlots(r.Context(), id, date, duration)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, AvailabilityResponse{
			ProviderID:      id,
			Date:            date.Format(scheduling.DateLayout),
			DurationMinutes: duration,
			Slots:           toSlotResponses(slots),
		})
	}
}
