package notification

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/provider-booking/internal/scheduling"
)

// Delivery is a claimed notification log together with what is needed to
// render it.
type Delivery struct {
	Log                scheduling.NotificationLog
	Customer           scheduling.Customer
	ProviderName       string
	Date               time.Time
	Slot               scheduling.TimeSlot
	AppointmentStatus  scheduling.Status
	CancellationReason string
}

type Store interface {
	// WithDueBatch locks up to limit due logs, hands them to fn and stores
	// whatever fn recorded on each Log once fn returns nil.
	WithDueBatch(ctx context.Context, now time.Time, limit, maxAttempts int, fn func(ctx context.Context, batch []Delivery) error) error

	// ScheduledWithoutReminder lists scheduled appointments on date that have
	// no reminder log yet.
	ScheduledWithoutReminder(ctx context.Context, date time.Time) ([]uuid.UUID, error)

	// Enqueue inserts logs, ignoring ones that already exist, and reports how
	// many were added.
	Enqueue(ctx context.Context, logs ...scheduling.NotificationLog) (int, error)
}
