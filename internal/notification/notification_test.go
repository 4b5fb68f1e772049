package notification

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hackgods/provider-booking/internal/scheduling"
)

var testNow = time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

type fakeStore struct {
	logs        map[uuid.UUID]*Delivery
	candidates  []uuid.UUID
	enqueued    []scheduling.NotificationLog
	batchErr    error
	lastLimit   int
	lastMaxTry  int
	lastDueTime time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{logs: map[uuid.UUID]*Delivery{}}
}

func (f *fakeStore) add(d Delivery) {
	f.logs[d.Log.ID] = &d
}

func (f *fakeStore) WithDueBatch(ctx context.Context, now time.Time, limit, maxAttempts int, fn func(ctx context.Context, batch []Delivery) error) error {
	f.lastLimit, f.lastMaxTry, f.lastDueTime = limit, maxAttempts, now
	if f.batchErr != nil {
		return f.batchErr
	}
	var batch []Delivery
	for _, d := range f.logs {
		if d.Log.Due(now, maxAttempts) && len(batch) < limit {
			batch = append(batch, *d)
		}
	}
	if len(batch) == 0 {
		return nil
	}
	if err := fn(ctx, batch); err != nil {
		return err
	}
	for _, d := range batch {
		stored := f.logs[d.Log.ID]
		stored.Log = d.Log
	}
	return nil
}

func (f *fakeStore) ScheduledWithoutReminder(_ context.Context, _ time.Time) ([]uuid.UUID, error) {
	return f.candidates, nil
}

func (f *fakeStore) Enqueue(_ context.Context, logs ...scheduling.NotificationLog) (int, error) {
	f.enqueued = append(f.enqueued, logs...)
	return len(logs), nil
}

type fakeSender struct {
	sent []Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, msg Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func testDelivery(t *testing.T, typ scheduling.NotificationType) Delivery {
	t.Helper()
	start, err := scheduling.ParseTimeOfDay("10:00")
	require.NoError(t, err)
	slot, err := scheduling.NewTimeSlot(start, 30)
	require.NoError(t, err)
	return Delivery{
		Log:               scheduling.NewNotificationLog(uuid.New(), typ, testNow),
		Customer:          scheduling.Customer{Name: "Jane Doe", Email: "jane@example.com", Phone: "555-0100"},
		ProviderName:      "Dr. Strange",
		Date:              time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
		Slot:              slot,
		AppointmentStatus: scheduling.StatusScheduled,
	}
}

func newTestDispatcher(store Store, sender Sender) *Dispatcher {
	d := NewDispatcher(store, sender, zap.NewNop(), DispatcherConfig{BatchSize: 10, MaxAttempts: 3, RetryBackoff: time.Minute})
	d.now = func() time.Time { return testNow }
	return d
}

func TestDispatchOnce_SendsAndMarks(t *testing.T) {
	store := newFakeStore()
	d1 := testDelivery(t, scheduling.NotificationConfirmation)
	d2 := testDelivery(t, scheduling.NotificationCancellation)
	store.add(d1)
	store.add(d2)
	sender := &fakeSender{}

	stats, err := newTestDispatcher(store, sender).DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DispatchStats{Sent: 2}, stats)
	assert.Len(t, sender.sent, 2)
	assert.Equal(t, 10, store.lastLimit)
	assert.Equal(t, 3, store.lastMaxTry)

	for _, d := range store.logs {
		assert.Equal(t, scheduling.NotificationSent, d.Log.Status)
	}

	// nothing left to do
	stats, err = newTestDispatcher(store, sender).DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DispatchStats{}, stats)
}

func TestDispatchOnce_FailureIsRecordedNotReturned(t *testing.T) {
	store := newFakeStore()
	d := testDelivery(t, scheduling.NotificationConfirmation)
	store.add(d)

	stats, err := newTestDispatcher(store, &fakeSender{err: errors.New("smtp down")}).DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Failed)

	got := store.logs[d.Log.ID].Log
	assert.Equal(t, scheduling.NotificationFailed, got.Status)
	assert.Equal(t, 1, got.RetryCount)
	assert.Equal(t, "smtp down", got.ErrorMessage)
	assert.Equal(t, testNow.Add(time.Minute), got.NextAttemptAt)
}

func TestDispatchOnce_AbandonsStaleReminder(t *testing.T) {
	store := newFakeStore()
	d := testDelivery(t, scheduling.NotificationReminder)
	d.AppointmentStatus = scheduling.StatusCancelled
	store.add(d)
	sender := &fakeSender{}

	stats, err := newTestDispatcher(store, sender).DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Abandoned)
	assert.Empty(t, sender.sent)
	assert.True(t, store.logs[d.Log.ID].Log.Exhausted(3))
}

func TestDispatchOnce_StoreError(t *testing.T) {
	store := newFakeStore()
	store.batchErr = errors.New("db down")
	_, err := newTestDispatcher(store, &fakeSender{}).DispatchOnce(context.Background())
	assert.Error(t, err)
}

func TestReminderSweep_EnqueuesForTomorrow(t *testing.T) {
	store := newFakeStore()
	store.candidates = []uuid.UUID{uuid.New(), uuid.New()}

	n, err := NewReminderSweep(store, zap.NewNop()).RunOnce(context.Background(), testNow)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, store.enqueued, 2)
	for i, l := range store.enqueued {
		assert.Equal(t, store.candidates[i], l.AppointmentID)
		assert.Equal(t, scheduling.NotificationReminder, l.Type)
		assert.Equal(t, scheduling.NotificationPending, l.Status)
	}
}

func TestReminderSweep_NothingToDo(t *testing.T) {
	store := newFakeStore()
	n, err := NewReminderSweep(store, zap.NewNop()).RunOnce(context.Background(), testNow)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, store.enqueued)
}

func TestBuildMessage(t *testing.T) {
	d := testDelivery(t, scheduling.NotificationCancellation)
	d.CancellationReason = "provider unavailable"

	msg := BuildMessage(d)
	assert.Equal(t, "jane@example.com", msg.To)
	assert.Equal(t, "Appointment cancelled", msg.Subject)
	assert.Contains(t, msg.Body, "Hello Jane Doe")
	assert.Contains(t, msg.Body, "Monday, October 19, 2026 at 10:00 - 10:30")
	assert.Contains(t, msg.Body, "Reason: provider unavailable")

	assert.Equal(t, "Appointment reminder", BuildMessage(testDelivery(t, scheduling.NotificationReminder)).Subject)
	assert.Equal(t, "Appointment rescheduled", BuildMessage(testDelivery(t, scheduling.NotificationRescheduled)).Subject)
}

type fakeWriter struct{ msgs []kafka.Message }

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func TestKafkaSender(t *testing.T) {
	w := &fakeWriter{}
	msg := BuildMessage(testDelivery(t, scheduling.NotificationConfirmation))

	require.NoError(t, NewKafkaSender(w, "booking.notification.").Send(context.Background(), msg))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "booking.notification.confirmation", w.msgs[0].Topic)
	assert.Equal(t, msg.AppointmentID.String(), string(w.msgs[0].Key))

	var decoded Message
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, msg, decoded)
}

type fakePublisher struct {
	exchange, key string
	msg           amqp.Publishing
}

func (f *fakePublisher) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return nil
}

func TestAMQPSender(t *testing.T) {
	p := &fakePublisher{}
	msg := BuildMessage(testDelivery(t, scheduling.NotificationReminder))

	require.NoError(t, NewAMQPSender(p, "booking.notifications").Send(context.Background(), msg))
	assert.Equal(t, "booking.notifications", p.exchange)
	assert.Equal(t, "reminder", p.key)
	assert.Equal(t, amqp.Persistent, p.msg.DeliveryMode)
	assert.Equal(t, msg.NotificationID.String(), p.msg.MessageId)
}

func TestSMTPSender(t *testing.T) {
	s := NewSMTPSender(" mail ", "1025", "")
	var gotAddr, gotFrom string
	var gotTo []string
	var gotBody []byte
	s.send = func(addr string, _ smtp.Auth, from string, to []string, body []byte) error {
		gotAddr, gotFrom, gotTo, gotBody = addr, from, to, body
		return nil
	}

	msg := BuildMessage(testDelivery(t, scheduling.NotificationConfirmation))
	require.NoError(t, s.Send(context.Background(), msg))
	assert.Equal(t, "mail:1025", gotAddr)
	assert.Equal(t, "no-reply@provider-booking.local", gotFrom)
	assert.Equal(t, []string{"jane@example.com"}, gotTo)
	assert.True(t, strings.HasPrefix(string(gotBody), "From: no-reply@provider-booking.local\r\nTo: jane@example.com\r\nSubject: Appointment confirmed\r\n"))

	msg.To = ""
	assert.Error(t, s.Send(context.Background(), msg))
}
