package api

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/hackgods/provider-booking/internal/appointment"
	"github.com/hackgods/provider-booking/internal/scheduling"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report json field names instead of Go ones
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

// decodeAndValidate reads a JSON body into dst and runs its validate tags.
// On failure the response has already been written.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", formatValidationError(err))
		return false
	}
	return true
}

func formatValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Namespace())
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "email":
			msgs = append(msgs, field+" must be a valid email")
		case "uuid":
			msgs = append(msgs, field+" must be a valid UUID")
		case "datetime":
			msgs = append(msgs, field+" must match "+fe.Param())
		case "oneof":
			msgs = append(msgs, field+" must be one of "+strings.Join(strings.Fields(fe.Param()), ", "))
		case "min", "max":
			msgs = append(msgs, field+" must be "+fe.Tag()+" "+fe.Param())
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return strings.Join(msgs, ", ")
}

// statusForCode maps a business error code to its HTTP status.
func statusForCode(code string) int {
	switch code {
	case scheduling.ErrProviderNotFound.Code, scheduling.ErrAppointmentMissing.Code:
		return http.StatusNotFound
	case scheduling.ErrSlotConflict.Code,
		scheduling.ErrBlockedConflict.Code,
		scheduling.ErrInvalidTransition.Code,
		scheduling.ErrDuplicateEmail.Code,
		scheduling.ErrProviderActive.Code,
		scheduling.ErrProviderDeactive.Code,
		appointment.ErrSlotBeingBooked.Code:
		return http.StatusConflict
	default:
		return http.StatusUnprocessableEntity
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	if be, ok := scheduling.AsBusinessError(err); ok {
		writeError(w, statusForCode(be.Code), be.Code, be.Message)
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", "an unexpected error occurred")
}
