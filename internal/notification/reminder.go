package notification

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hackgods/provider-booking/internal/scheduling"
)

// ReminderSweep enqueues one reminder for every scheduled appointment dated
// the day after now.
type ReminderSweep struct {
	store  Store
	logger *zap.Logger
}

func NewReminderSweep(store Store, logger *zap.Logger) *ReminderSweep {
	return &ReminderSweep{store: store, logger: logger}
}

func (r *ReminderSweep) RunOnce(ctx context.Context, now time.Time) (int, error) {
	tomorrow := scheduling.DateOf(now).AddDate(0, 0, 1)

	ids, err := r.store.ScheduledWithoutReminder(ctx, tomorrow)
	if err != nil {
		return 0, fmt.Errorf("find reminder candidates: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	logs := make([]scheduling.NotificationLog, 0, len(ids))
	for _, id := range ids {
		logs = append(logs, scheduling.NewNotificationLog(id, scheduling.NotificationReminder, now))
	}

	n, err := r.store.Enqueue(ctx, logs...)
	if err != nil {
		return n, fmt.Errorf("enqueue reminders: %w", err)
	}

	r.logger.Info("reminders enqueued",
		zap.String("date", tomorrow.Format(scheduling.DateLayout)),
		zap.Int("count", n),
	)
	return n, nil
}
