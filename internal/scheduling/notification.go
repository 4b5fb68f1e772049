package scheduling

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationConfirmation NotificationType = "confirmation"
	NotificationReminder     NotificationType = "reminder"
	NotificationCancellation NotificationType = "cancellation"
	NotificationRescheduled  NotificationType = "rescheduled"
)

type NotificationStatus string

const (
	NotificationPending NotificationStatus = "pending"
	NotificationSent    NotificationStatus = "sent"
	NotificationFailed  NotificationStatus = "failed"
)

// NotificationLog is a delivery intent for one appointment and type, plus its
// attempt bookkeeping. It is written in the same commit as the change that
// caused it and consumed by the dispatcher.
type NotificationLog struct {
	ID            uuid.UUID
	AppointmentID uuid.UUID
	Type          NotificationType
	Status        NotificationStatus
	SentAt        *time.Time
	ErrorMessage  string
	RetryCount    int
	NextAttemptAt time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func NewNotificationLog(appointmentID uuid.UUID, typ NotificationType, now time.Time) NotificationLog {
	return NotificationLog{
		ID:            uuid.New(),
		AppointmentID: appointmentID,
		Type:          typ,
		Status:        NotificationPending,
		NextAttemptAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (n *NotificationLog) MarkSent(at time.Time) {
	n.Status = NotificationSent
	n.SentAt = &at
	n.ErrorMessage = ""
	n.UpdatedAt = at
}

// MarkFailed records a failed attempt and schedules the next one after
// backoff multiplied by the number of attempts so far.
func (n *NotificationLog) MarkFailed(msg string, at time.Time, backoff time.Duration) {
	n.Status = NotificationFailed
	n.ErrorMessage = msg
	n.RetryCount++
	n.NextAttemptAt = at.Add(backoff * time.Duration(n.RetryCount))
	n.UpdatedAt = at
}

// Exhausted reports whether no further attempts should be made.
func (n NotificationLog) Exhausted(maxAttempts int) bool {
	return n.Status == NotificationFailed && n.RetryCount >= maxAttempts
}

// Due reports whether the log should be attempted at now.
func (n NotificationLog) Due(now time.Time, maxAttempts int) bool {
	if n.Status == NotificationSent || n.Exhausted(maxAttempts) {
		return false
	}
	return !n.NextAttemptAt.After(now)
}

// Abandon gives up on the log without another attempt, e.g. when the
// appointment it announces is no longer scheduled.
func (n *NotificationLog) Abandon(msg string, at time.Time, maxAttempts int) {
	n.Status = NotificationFailed
	n.ErrorMessage = msg
	if n.RetryCount < maxAttempts {
		n.RetryCount = maxAttempts
	}
	n.UpdatedAt = at
}
