package scheduling

import "errors"

// BusinessError is an expected, user-facing rule violation. Code is stable and
// machine-checkable; Message is safe to show to clients.
type BusinessError struct {
	Code    string
	Message string
}

func (e *BusinessError) Error() string {
	return e.Message
}

// Is matches any BusinessError carrying the same code, so a sentinel still
// matches after WithMessage gave it a more specific text.
func (e *BusinessError) Is(target error) bool {
	t, ok := target.(*BusinessError)
	return ok && t.Code == e.Code
}

// WithMessage returns a copy of e with a more specific message.
func (e *BusinessError) WithMessage(msg string) *BusinessError {
	return &BusinessError{Code: e.Code, Message: msg}
}

var (
	ErrInvalidDuration    = &BusinessError{Code: "invalid_duration", Message: "duration must be 15, 30, 45 or 60 minutes"}
	ErrInvalidRange       = &BusinessError{Code: "invalid_range", Message: "end time must be after start time"}
	ErrInvalidTimeOfDay   = &BusinessError{Code: "invalid_time_of_day", Message: "time of day must be between 00:00 and 23:59"}
	ErrInvalidRecurrence  = &BusinessError{Code: "invalid_recurrence", Message: "recurrence must be weekly or monthly with an interval of at least 1"}
	ErrLeadTime           = &BusinessError{Code: "lead_time_violation", Message: "appointments must be booked at least 24 hours in advance"}
	ErrHorizon            = &BusinessError{Code: "horizon_violation", Message: "cannot book more than 3 months in advance"}
	ErrPastDate           = &BusinessError{Code: "past_date_violation", Message: "cannot book appointments in the past"}
	ErrInvalidCustomer    = &BusinessError{Code: "invalid_customer_info", Message: "customer name, email and phone are required"}
	ErrInvalidTransition  = &BusinessError{Code: "invalid_transition", Message: "appointment is not in a state that allows this operation"}
	ErrMissingReason      = &BusinessError{Code: "missing_reason", Message: "cancellation reason is required"}
	ErrFutureCompletion   = &BusinessError{Code: "future_completion_violation", Message: "cannot complete an appointment before it starts"}
	ErrTooEarlyForNoShow  = &BusinessError{Code: "too_early_violation", Message: "cannot mark as no-show until 15 minutes after the appointment start"}
	ErrSlotConflict       = &BusinessError{Code: "slot_conflict", Message: "time slot conflicts with an existing appointment"}
	ErrBlockedConflict    = &BusinessError{Code: "blocked_time_conflict", Message: "time slot falls inside a blocked period"}
	ErrOutsideHours       = &BusinessError{Code: "outside_working_hours", Message: "selected time is outside the provider's working hours"}
	ErrInvalidProvider    = &BusinessError{Code: "invalid_provider_info", Message: "provider name, email and specialty are required"}
	ErrInvalidHours       = &BusinessError{Code: "invalid_working_hours", Message: "working hours end must be after start"}
	ErrInvalidBlocked     = &BusinessError{Code: "invalid_blocked_time", Message: "blocked time needs an end after its start and a reason"}
	ErrProviderActive     = &BusinessError{Code: "provider_already_active", Message: "provider is already active"}
	ErrProviderDeactive   = &BusinessError{Code: "provider_already_inactive", Message: "provider is already deactivated"}
	ErrProviderInactive   = &BusinessError{Code: "provider_inactive", Message: "provider is not accepting bookings"}
	ErrProviderNotFound   = &BusinessError{Code: "provider_not_found", Message: "provider not found"}
	ErrAppointmentMissing = &BusinessError{Code: "appointment_not_found", Message: "appointment not found"}
	ErrDuplicateEmail     = &BusinessError{Code: "duplicate_provider_email", Message: "a provider with this email already exists"}
)

// AsBusinessError unwraps err to a BusinessError when it is one.
func AsBusinessError(err error) (*BusinessError, bool) {
	var be *BusinessError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// IsBusinessError reports whether err is an expected rule violation rather
// than a system failure.
func IsBusinessError(err error) bool {
	_, ok := AsBusinessError(err)
	return ok
}
