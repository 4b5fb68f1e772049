package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecurrenceRule_NextOccurrence(t *testing.T) {
	start := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2026, 10, 26, 0, 0, 0, 0, time.UTC), Weekly(1).NextOccurrence(start))
	assert.Equal(t, time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC), Weekly(2).NextOccurrence(start))
	assert.Equal(t, time.Date(2026, 11, 19, 0, 0, 0, 0, time.UTC), Monthly(1).NextOccurrence(start))
	assert.Equal(t, time.Date(2027, 1, 19, 0, 0, 0, 0, time.UTC), Monthly(3).NextOccurrence(start))

	endOfMonth := time.Date(2027, 1, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2027, 2, 28, 0, 0, 0, 0, time.UTC), Monthly(1).NextOccurrence(endOfMonth))
}

func TestRecurrenceRule_WeeklyKeepsWeekday(t *testing.T) {
	date := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	rule := Weekly(1)
	for i := 0; i < 60; i++ {
		date = rule.NextOccurrence(date)
		assert.Equal(t, time.Monday, date.Weekday())
	}
}

func TestRecurrenceRule_UnsupportedTypePanics(t *testing.T) {
	assert.Panics(t, func() {
		RecurrenceRule{Type: "yearly", Interval: 1}.NextOccurrence(time.Now())
	})
}

func TestNewRecurrenceRule(t *testing.T) {
	end := time.Date(2026, 12, 1, 15, 30, 0, 0, time.UTC)
	rule, err := NewRecurrenceRule(RecurrenceWeekly, 2, &end)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC), *rule.EndDate)
	assert.True(t, rule.Allows(time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, rule.Allows(time.Date(2026, 12, 2, 0, 0, 0, 0, time.UTC)))

	_, err = NewRecurrenceRule(RecurrenceMonthly, 0, nil)
	assert.ErrorIs(t, err, ErrInvalidRecurrence)

	_, err = NewRecurrenceRule("", 1, nil)
	assert.ErrorIs(t, err, ErrInvalidRecurrence)

	assert.True(t, Monthly(1).Allows(time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC)))
}
