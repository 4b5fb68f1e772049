package scheduling

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wednesday 2026-10-14 09:00 UTC.
var testNow = time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

func testCustomer() Customer {
	return Customer{Name: "Ada Lovelace", Email: "ada@example.com", Phone: "+15550100"}
}

func newTestAppointment(t *testing.T, date time.Time, start string, minutes int) *Appointment {
	t.Helper()
	appt, err := CreateAppointment(NewAppointment{
		ProviderID: uuid.New(),
		Customer:   testCustomer(),
		Date:       date,
		Slot:       mustSlot(t, start, minutes),
	}, testNow)
	require.NoError(t, err)
	return appt
}

func TestCreateAppointment_LeadTimeBoundary(t *testing.T) {
	tomorrow := testNow.AddDate(0, 0, 1)
	slot := mustSlot(t, "09:00", 30)

	// start is now + 23h59m
	_, err := CreateAppointment(NewAppointment{ProviderID: uuid.New(), Customer: testCustomer(), Date: tomorrow, Slot: slot},
		testNow.Add(time.Minute))
	assert.ErrorIs(t, err, ErrLeadTime)

	// start is exactly now + 24h
	_, err = CreateAppointment(NewAppointment{ProviderID: uuid.New(), Customer: testCustomer(), Date: tomorrow, Slot: slot},
		testNow)
	assert.ErrorIs(t, err, ErrLeadTime)

	// start is now + 24h00m01s
	appt, err := CreateAppointment(NewAppointment{ProviderID: uuid.New(), Customer: testCustomer(), Date: tomorrow, Slot: slot},
		testNow.Add(-time.Second))
	require.NoError(t, err)
	assert.Equal(t, StatusScheduled, appt.Status())
}

func TestCreateAppointment_Horizon(t *testing.T) {
	slot := mustSlot(t, "10:00", 60)
	horizon := time.Date(2027, 1, 14, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, horizon, Horizon(testNow))

	_, err := CreateAppointment(NewAppointment{ProviderID: uuid.New(), Customer: testCustomer(), Date: horizon, Slot: slot}, testNow)
	assert.NoError(t, err)

	_, err = CreateAppointment(NewAppointment{ProviderID: uuid.New(), Customer: testCustomer(), Date: horizon.AddDate(0, 0, 1), Slot: slot}, testNow)
	assert.ErrorIs(t, err, ErrHorizon)
}

func TestValidateSchedule_PastDate(t *testing.T) {
	// a past date always fails the lead time first
	err := ValidateSchedule(testNow.AddDate(0, 0, -1), mustSlot(t, "10:00", 30), testNow)
	assert.ErrorIs(t, err, ErrLeadTime)
	assert.True(t, IsBusinessError(err))
}

func TestCreateAppointment_CustomerInfo(t *testing.T) {
	date := testNow.AddDate(0, 0, 5)
	cases := map[string]Customer{
		"blank name":    {Name: "  ", Email: "a@b.c", Phone: "1"},
		"blank email":   {Name: "A", Email: "", Phone: "1"},
		"blank phone":   {Name: "A", Email: "a@b.c", Phone: " "},
		"email without": {Name: "A", Email: "not-an-email", Phone: "1"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := CreateAppointment(NewAppointment{ProviderID: uuid.New(), Customer: c, Date: date, Slot: mustSlot(t, "10:00", 30)}, testNow)
			assert.ErrorIs(t, err, ErrInvalidCustomer)
			be, ok := AsBusinessError(err)
			require.True(t, ok)
			assert.Equal(t, "invalid_customer_info", be.Code)
		})
	}
}

func TestCreateAppointment_NormalizesCustomer(t *testing.T) {
	appt, err := CreateAppointment(NewAppointment{
		ProviderID: uuid.New(),
		Customer:   Customer{Name: "  Grace Hopper ", Email: " GRACE@Example.COM ", Phone: " 555 "},
		Date:       testNow.AddDate(0, 0, 3),
		Slot:       mustSlot(t, "11:00", 15),
	}, testNow)
	require.NoError(t, err)
	assert.Equal(t, Customer{Name: "Grace Hopper", Email: "grace@example.com", Phone: "555"}, appt.Customer())
	assert.False(t, appt.IsRecurring())
	assert.False(t, appt.ParentID().Valid)
	assert.Equal(t, testNow, appt.CreatedAt())
}

func TestCreateAppointment_Recurring(t *testing.T) {
	rule := Weekly(1)
	appt, err := CreateAppointment(NewAppointment{
		ProviderID: uuid.New(),
		Customer:   testCustomer(),
		Date:       testNow.AddDate(0, 0, 5),
		Slot:       mustSlot(t, "11:00", 15),
		Recurrence: &rule,
	}, testNow)
	require.NoError(t, err)
	assert.True(t, appt.IsRecurring())

	// the aggregate keeps its own copy
	rule.Interval = 9
	assert.Equal(t, 1, appt.Recurrence().Interval)

	bad := RecurrenceRule{Type: "daily", Interval: 1}
	_, err = CreateAppointment(NewAppointment{ProviderID: uuid.New(), Customer: testCustomer(), Date: testNow.AddDate(0, 0, 5),
		Slot: mustSlot(t, "11:00", 15), Recurrence: &bad}, testNow)
	assert.ErrorIs(t, err, ErrInvalidRecurrence)
}

func TestAppointment_Cancel(t *testing.T) {
	appt := newTestAppointment(t, testNow.AddDate(0, 0, 2), "10:00", 30)
	later := testNow.Add(time.Hour)

	assert.ErrorIs(t, appt.Cancel("   ", later), ErrMissingReason)
	assert.Equal(t, StatusScheduled, appt.Status())

	require.NoError(t, appt.Cancel(" customer request ", later))
	assert.Equal(t, StatusCancelled, appt.Status())
	assert.Equal(t, "customer request", appt.CancellationReason())
	assert.Equal(t, later, appt.UpdatedAt())

	err := appt.Cancel("again", later)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestAppointment_TerminalStatesAllowNothing(t *testing.T) {
	date := testNow.AddDate(0, 0, 2)
	after := date.Add(12 * time.Hour)

	completed := newTestAppointment(t, date, "10:00", 30)
	require.NoError(t, completed.Complete(after))

	noShow := newTestAppointment(t, date, "10:00", 30)
	require.NoError(t, noShow.MarkNoShow(after))

	cancelled := newTestAppointment(t, date, "10:00", 30)
	require.NoError(t, cancelled.Cancel("sick", testNow))

	for _, a := range []*Appointment{completed, noShow, cancelled} {
		assert.True(t, a.Status().Terminal())
		assert.ErrorIs(t, a.Cancel("x", after), ErrInvalidTransition)
		assert.ErrorIs(t, a.Complete(after), ErrInvalidTransition)
		assert.ErrorIs(t, a.MarkNoShow(after), ErrInvalidTransition)
		assert.ErrorIs(t, a.Reschedule(testNow.AddDate(0, 0, 4), mustSlot(t, "10:00", 30), testNow), ErrInvalidTransition)
	}
}

func TestAppointment_Complete(t *testing.T) {
	appt := newTestAppointment(t, testNow.AddDate(0, 0, 2), "10:00", 30)
	start := appt.StartsAt()

	assert.ErrorIs(t, appt.Complete(start.Add(-time.Second)), ErrFutureCompletion)
	assert.Equal(t, StatusScheduled, appt.Status())

	require.NoError(t, appt.Complete(start.Add(time.Second)))
	assert.Equal(t, StatusCompleted, appt.Status())
}

func TestAppointment_MarkNoShow(t *testing.T) {
	appt := newTestAppointment(t, testNow.AddDate(0, 0, 2), "10:00", 30)
	start := appt.StartsAt()

	assert.ErrorIs(t, appt.MarkNoShow(start), ErrTooEarlyForNoShow)
	assert.ErrorIs(t, appt.MarkNoShow(start.Add(14*time.Minute+59*time.Second)), ErrTooEarlyForNoShow)

	require.NoError(t, appt.MarkNoShow(start.Add(15*time.Minute)))
	assert.Equal(t, StatusNoShow, appt.Status())
}

func TestAppointment_Reschedule(t *testing.T) {
	appt := newTestAppointment(t, testNow.AddDate(0, 0, 2), "10:00", 30)
	id := appt.ID()
	customer := appt.Customer()

	err := appt.Reschedule(testNow.AddDate(0, 4, 0), mustSlot(t, "10:00", 30), testNow)
	assert.ErrorIs(t, err, ErrHorizon)
	assert.Equal(t, DateOf(testNow.AddDate(0, 0, 2)), appt.Date())

	err = appt.Reschedule(testNow, mustSlot(t, "15:00", 30), testNow)
	assert.ErrorIs(t, err, ErrLeadTime)

	newDate := testNow.AddDate(0, 0, 10)
	later := testNow.Add(time.Hour)
	require.NoError(t, appt.Reschedule(newDate, mustSlot(t, "14:15", 45), later))
	assert.Equal(t, id, appt.ID())
	assert.Equal(t, customer, appt.Customer())
	assert.Equal(t, DateOf(newDate), appt.Date())
	assert.Equal(t, "14:15 - 15:00", appt.Slot().String())
	assert.Equal(t, later, appt.UpdatedAt())
	assert.Equal(t, StatusScheduled, appt.Status())
}

func TestAppointment_RecordRoundTrip(t *testing.T) {
	rule := Monthly(2)
	parent := uuid.New()
	appt, err := CreateAppointment(NewAppointment{
		ProviderID: uuid.New(),
		Customer:   testCustomer(),
		Date:       testNow.AddDate(0, 0, 3),
		Slot:       mustSlot(t, "08:45", 60),
		Recurrence: &rule,
		ParentID:   uuid.NullUUID{UUID: parent, Valid: true},
	}, testNow)
	require.NoError(t, err)

	restored, err := RestoreAppointment(appt.Record())
	require.NoError(t, err)
	assert.Equal(t, appt.Record(), restored.Record())
	assert.Equal(t, appt.EndsAt(), restored.EndsAt())
}
