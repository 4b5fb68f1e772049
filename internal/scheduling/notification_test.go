package scheduling

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationLog_RetryBookkeeping(t *testing.T) {
	n := NewNotificationLog(uuid.New(), NotificationReminder, testNow)
	assert.Equal(t, NotificationPending, n.Status)
	assert.True(t, n.Due(testNow, 3))

	n.MarkFailed("smtp down", testNow, time.Minute)
	assert.Equal(t, NotificationFailed, n.Status)
	assert.Equal(t, 1, n.RetryCount)
	assert.Equal(t, testNow.Add(time.Minute), n.NextAttemptAt)
	assert.False(t, n.Due(testNow, 3))
	assert.True(t, n.Due(testNow.Add(time.Minute), 3))

	n.MarkFailed("smtp down", testNow.Add(time.Minute), time.Minute)
	assert.Equal(t, testNow.Add(3*time.Minute), n.NextAttemptAt)

	n.MarkFailed("smtp down", testNow.Add(3*time.Minute), time.Minute)
	assert.True(t, n.Exhausted(3))
	assert.False(t, n.Due(testNow.Add(time.Hour), 3))
}

func TestNotificationLog_MarkSent(t *testing.T) {
	n := NewNotificationLog(uuid.New(), NotificationConfirmation, testNow)
	n.MarkFailed("boom", testNow, time.Second)

	at := testNow.Add(time.Minute)
	n.MarkSent(at)
	assert.Equal(t, NotificationSent, n.Status)
	require.NotNil(t, n.SentAt)
	assert.Equal(t, at, *n.SentAt)
	assert.Empty(t, n.ErrorMessage)
	assert.False(t, n.Due(at.Add(time.Hour), 5))
}

func TestNotificationLog_Abandon(t *testing.T) {
	n := NewNotificationLog(uuid.New(), NotificationReminder, testNow)
	n.Abandon("appointment is no longer scheduled", testNow, 5)

	assert.True(t, n.Exhausted(5))
	assert.False(t, n.Due(testNow.Add(24*time.Hour), 5))
	assert.Equal(t, "appointment is no longer scheduled", n.ErrorMessage)
}
