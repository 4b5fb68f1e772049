package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T) *ServiceProvider {
	t.Helper()
	p, err := NewServiceProvider(" Dr. Strange ", " Strange@Sanctum.ORG ", " Neurology ", testNow)
	require.NoError(t, err)
	return p
}

func TestNewServiceProvider(t *testing.T) {
	p := newTestProvider(t)
	assert.Equal(t, "Dr. Strange", p.Name())
	assert.Equal(t, "strange@sanctum.org", p.Email())
	assert.Equal(t, "Neurology", p.Specialty())
	assert.True(t, p.Active())

	_, err := NewServiceProvider("", "a@b.c", "x", testNow)
	assert.ErrorIs(t, err, ErrInvalidProvider)
	_, err = NewServiceProvider("a", "nope", "x", testNow)
	assert.ErrorIs(t, err, ErrInvalidProvider)
	_, err = NewServiceProvider("a", "a@b.c", " ", testNow)
	assert.ErrorIs(t, err, ErrInvalidProvider)
}

func TestServiceProvider_ActivationToggles(t *testing.T) {
	p := newTestProvider(t)
	assert.ErrorIs(t, p.Activate(testNow), ErrProviderActive)

	require.NoError(t, p.Deactivate(testNow))
	assert.False(t, p.Active())
	assert.ErrorIs(t, p.Deactivate(testNow), ErrProviderDeactive)

	require.NoError(t, p.Activate(testNow))
	assert.True(t, p.Active())
}

func TestServiceProvider_AddWorkingHoursDeactivatesPrevious(t *testing.T) {
	p := newTestProvider(t)

	first, err := p.AddWorkingHours(time.Monday, mustTime(t, "09:00"), mustTime(t, "12:00"), testNow)
	require.NoError(t, err)
	_, err = p.AddWorkingHours(time.Tuesday, mustTime(t, "09:00"), mustTime(t, "17:00"), testNow)
	require.NoError(t, err)

	later := testNow.Add(time.Hour)
	second, err := p.AddWorkingHours(time.Monday, mustTime(t, "13:00"), mustTime(t, "18:00"), later)
	require.NoError(t, err)

	active, ok := p.WorkingHoursFor(time.Monday)
	require.True(t, ok)
	assert.Equal(t, second.ID, active.ID)

	all := p.WorkingHours()
	require.Len(t, all, 3)
	activeMondays := 0
	for _, wh := range all {
		if wh.ID == first.ID {
			assert.False(t, wh.Active, "superseded row is kept but inactive")
			assert.Equal(t, later, wh.UpdatedAt)
		}
		if wh.DayOfWeek == time.Monday && wh.Active {
			activeMondays++
		}
	}
	assert.Equal(t, 1, activeMondays)

	_, ok = p.WorkingHoursFor(time.Sunday)
	assert.False(t, ok)
}

func TestServiceProvider_AddWorkingHoursValidation(t *testing.T) {
	p := newTestProvider(t)
	_, err := p.AddWorkingHours(time.Monday, mustTime(t, "12:00"), mustTime(t, "09:00"), testNow)
	assert.ErrorIs(t, err, ErrInvalidHours)

	_, err = p.AddWorkingHours(time.Weekday(9), mustTime(t, "09:00"), mustTime(t, "12:00"), testNow)
	assert.ErrorIs(t, err, ErrInvalidHours)

	require.NoError(t, p.Deactivate(testNow))
	_, err = p.AddWorkingHours(time.Monday, mustTime(t, "09:00"), mustTime(t, "12:00"), testNow)
	assert.ErrorIs(t, err, ErrProviderInactive)
}

func TestServiceProvider_BlockTime(t *testing.T) {
	p := newTestProvider(t)

	_, err := p.BlockTime(monday.Add(10*time.Hour), monday.Add(10*time.Hour), "x", testNow)
	assert.ErrorIs(t, err, ErrInvalidBlocked)
	_, err = p.BlockTime(monday.Add(10*time.Hour), monday.Add(11*time.Hour), "  ", testNow)
	assert.ErrorIs(t, err, ErrInvalidBlocked)

	bt, err := p.BlockTime(monday.Add(10*time.Hour), monday.Add(11*time.Hour), " dentist ", testNow)
	require.NoError(t, err)
	assert.Equal(t, "dentist", bt.Reason)
	assert.Len(t, p.BlockedTimesOn(monday), 1)
	assert.Empty(t, p.BlockedTimesOn(monday.AddDate(0, 0, 1)))
}

func TestServiceProvider_IsAvailableAt(t *testing.T) {
	p := newTestProvider(t)
	_, err := p.AddWorkingHours(time.Monday, mustTime(t, "09:00"), mustTime(t, "12:00"), testNow)
	require.NoError(t, err)
	_, err = p.BlockTime(monday.Add(10*time.Hour), monday.Add(11*time.Hour), "meeting", testNow)
	require.NoError(t, err)

	assert.True(t, p.IsAvailableAt(monday.Add(9*time.Hour), 60))
	assert.False(t, p.IsAvailableAt(monday.Add(9*time.Hour+30*time.Minute), 60), "runs into blocked time")
	assert.True(t, p.IsAvailableAt(monday.Add(11*time.Hour), 60))
	assert.False(t, p.IsAvailableAt(monday.Add(11*time.Hour+15*time.Minute), 60), "ends after working hours")
	assert.False(t, p.IsAvailableAt(monday.Add(8*time.Hour+45*time.Minute), 30), "starts before working hours")
	assert.False(t, p.IsAvailableAt(monday.AddDate(0, 0, 1).Add(9*time.Hour), 30), "does not work on tuesday")
	assert.False(t, p.IsAvailableAt(monday.Add(9*time.Hour), 25), "invalid duration")

	require.NoError(t, p.Deactivate(testNow))
	assert.False(t, p.IsAvailableAt(monday.Add(9*time.Hour), 60))
}

func TestServiceProvider_Covers(t *testing.T) {
	p := newTestProvider(t)
	_, err := p.AddWorkingHours(time.Monday, mustTime(t, "09:00"), mustTime(t, "12:00"), testNow)
	require.NoError(t, err)

	assert.True(t, p.Covers(monday, mustSlot(t, "11:00", 60)))
	assert.False(t, p.Covers(monday, mustSlot(t, "11:15", 60)))
	assert.False(t, p.Covers(monday.AddDate(0, 0, 2), mustSlot(t, "10:00", 30)))
}

func TestRestoreServiceProvider(t *testing.T) {
	p := newTestProvider(t)
	wh, err := p.AddWorkingHours(time.Friday, mustTime(t, "08:00"), mustTime(t, "16:00"), testNow)
	require.NoError(t, err)

	restored := RestoreServiceProvider(p.Record(), []WorkingHours{wh}, nil)
	assert.Equal(t, p.Record(), restored.Record())
	got, ok := restored.WorkingHoursFor(time.Friday)
	require.True(t, ok)
	assert.Equal(t, wh, got)
}
