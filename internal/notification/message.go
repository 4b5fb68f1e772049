package notification

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/hackgods/provider-booking/internal/scheduling"
)

// Message is the channel independent rendering of a Delivery.
type Message struct {
	NotificationID uuid.UUID                   `json:"notification_id"`
	AppointmentID  uuid.UUID                   `json:"appointment_id"`
	Type           scheduling.NotificationType `json:"type"`
	To             string                      `json:"to"`
	Phone          string                      `json:"phone,omitempty"`
	Subject        string                      `json:"subject"`
	Body           string                      `json:"body"`
}

func BuildMessage(d Delivery) Message {
	when := fmt.Sprintf("%s, %s at %s",
		d.Date.Weekday(), d.Date.Format("January 2, 2006"), d.Slot.String())

	var subject string
	var body strings.Builder
	fmt.Fprintf(&body, "Hello %s,\n\n", d.Customer.Name)

	switch d.Log.Type {
	case scheduling.NotificationConfirmation:
		subject = "Appointment confirmed"
		fmt.Fprintf(&body, "Your appointment with %s is confirmed for %s.\n", d.ProviderName, when)
	case scheduling.NotificationReminder:
		subject = "Appointment reminder"
		fmt.Fprintf(&body, "This is a reminder of your appointment with %s tomorrow, %s.\n", d.ProviderName, when)
	case scheduling.NotificationCancellation:
		subject = "Appointment cancelled"
		fmt.Fprintf(&body, "Your appointment with %s on %s has been cancelled.\n", d.ProviderName, when)
		if d.CancellationReason != "" {
			fmt.Fprintf(&body, "Reason: %s\n", d.CancellationReason)
		}
	case scheduling.NotificationRescheduled:
		subject = "Appointment rescheduled"
		fmt.Fprintf(&body, "Your appointment with %s has been moved to %s.\n", d.ProviderName, when)
	default:
		subject = "Appointment update"
		fmt.Fprintf(&body, "There is an update to your appointment with %s on %s.\n", d.ProviderName, when)
	}

	return Message{
		NotificationID: d.Log.ID,
		AppointmentID:  d.Log.AppointmentID,
		Type:           d.Log.Type,
		To:             d.Customer.Email,
		Phone:          d.Customer.Phone,
		Subject:        subject,
		Body:           body.String(),
	}
}
