package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/provider-booking/internal/scheduling"
)

// Repository contains all appointment storage needed by the service.
// Writes carry the notification logs that must commit with them.
type Repository interface {
	GetAppointment(ctx context.Context, id uuid.UUID) (*scheduling.Appointment, error)
	ListAppointments(ctx context.Context, f ListFilter) ([]*scheduling.Appointment, error)

	// Every appointment of the provider on date, whatever its status
	ListByProviderDate(ctx context.Context, providerID uuid.UUID, date time.Time) ([]*scheduling.Appointment, error)

	// CreateAppointment fails with scheduling.ErrSlotConflict when storage
	// detects an overlapping scheduled appointment.
	CreateAppointment(ctx context.Context, appt *scheduling.Appointment, logs ...scheduling.NotificationLog) error
	// UpdateAppointment persists appt only if the stored status is still from.
	UpdateAppointment(ctx context.Context, appt *scheduling.Appointment, from scheduling.Status, logs ...scheduling.NotificationLog) error
}

// ProviderReader loads a provider with its working hours and blocked times.
type ProviderReader interface {
	GetProvider(ctx context.Context, id uuid.UUID) (*scheduling.ServiceProvider, error)
}
