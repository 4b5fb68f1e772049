package scheduling

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Monday 2026-10-19.
var monday = time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

func mondayHours(t *testing.T, providerID uuid.UUID, start, end string) []WorkingHours {
	t.Helper()
	wh, err := NewWorkingHours(providerID, time.Monday, mustTime(t, start), mustTime(t, end), testNow)
	require.NoError(t, err)
	return []WorkingHours{wh}
}

func bookedOn(t *testing.T, providerID uuid.UUID, date time.Time, start string, minutes int) *Appointment {
	t.Helper()
	appt, err := CreateAppointment(NewAppointment{
		ProviderID: providerID,
		Customer:   testCustomer(),
		Date:       date,
		Slot:       mustSlot(t, start, minutes),
	}, testNow)
	require.NoError(t, err)
	return appt
}

func starts(slots []TimeSlot) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.Start().String())
	}
	return out
}

func TestAvailableSlots_GridAroundExistingAppointment(t *testing.T) {
	pid := uuid.New()
	hours := mondayHours(t, pid, "09:00", "12:00")
	existing := bookedOn(t, pid, monday, "10:00", 30)

	slots, err := AvailableSlots(monday, 30, hours, []*Appointment{existing}, nil)
	require.NoError(t, err)

	// every grid point in [09:00, 11:30] except c with c.start < 10:30 && c.end > 10:00
	assert.Equal(t, []string{"09:00", "09:15", "09:30", "10:30", "10:45", "11:00", "11:15", "11:30"}, starts(slots))
	for _, s := range slots {
		assert.Equal(t, 30, s.DurationMinutes())
		assert.False(t, s.Overlaps(existing.Slot()))
	}
}

func TestAvailableSlots_FineGridForLongSlots(t *testing.T) {
	pid := uuid.New()
	hours := mondayHours(t, pid, "09:00", "11:00")

	slots, err := AvailableSlots(monday, 60, hours, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:15", "09:30", "09:45", "10:00"}, starts(slots))
}

func TestAvailableSlots_NoWorkingHours(t *testing.T) {
	pid := uuid.New()
	hours := mondayHours(t, pid, "09:00", "17:00")

	slots, err := AvailableSlots(monday.AddDate(0, 0, 1), 30, hours, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, slots)

	hours[0].Active = false
	slots, err = AvailableSlots(monday, 30, hours, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestAvailableSlots_CancelledDoesNotBlock(t *testing.T) {
	pid := uuid.New()
	hours := mondayHours(t, pid, "09:00", "10:00")

	cancelled := bookedOn(t, pid, monday, "09:00", 60)
	require.NoError(t, cancelled.Cancel("moved", testNow))

	completed := bookedOn(t, pid, monday, "09:30", 30)
	require.NoError(t, completed.Complete(completed.StartsAt()))

	slots, err := AvailableSlots(monday, 30, hours, []*Appointment{cancelled, completed}, nil)
	require.NoError(t, err)
	// completed appointments still occupy the calendar
	assert.Equal(t, []string{"09:00"}, starts(slots))
}

func TestAvailableSlots_IgnoresOtherDates(t *testing.T) {
	pid := uuid.New()
	hours := mondayHours(t, pid, "09:00", "10:00")
	other := bookedOn(t, pid, monday.AddDate(0, 0, 7), "09:00", 60)

	slots, err := AvailableSlots(monday, 60, hours, []*Appointment{other}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00"}, starts(slots))
}

func TestAvailableSlots_BlockedTimeUsesAbsoluteTimes(t *testing.T) {
	pid := uuid.New()
	hours := mondayHours(t, pid, "09:00", "12:00")

	// spans from the previous evening into Monday 10:00
	overnight, err := NewBlockedTime(pid, monday.Add(-3*time.Hour), monday.Add(10*time.Hour), "travel", testNow)
	require.NoError(t, err)
	// same wall-clock hours on a different day must not matter
	nextDay, err := NewBlockedTime(pid, monday.AddDate(0, 0, 1).Add(11*time.Hour), monday.AddDate(0, 0, 1).Add(12*time.Hour), "training", testNow)
	require.NoError(t, err)

	slots, err := AvailableSlots(monday, 60, hours, nil, []BlockedTime{overnight, nextDay})
	require.NoError(t, err)
	assert.Equal(t, []string{"10:00", "10:15", "10:30", "10:45", "11:00"}, starts(slots))
}

func TestAvailableSlots_InvalidDuration(t *testing.T) {
	_, err := AvailableSlots(monday, 20, nil, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestAvailableSlots_WindowShorterThanDuration(t *testing.T) {
	pid := uuid.New()
	hours := mondayHours(t, pid, "09:00", "09:45")

	slots, err := AvailableSlots(monday, 60, hours, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, slots)
}
