package notification

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hackgods/provider-booking/internal/scheduling"
)

type DispatcherConfig struct {
	Interval     time.Duration
	BatchSize    int
	MaxAttempts  int
	RetryBackoff time.Duration
}

// Dispatcher drains the notification outbox. Delivery failures are recorded
// on the log and never reach the appointment.
type Dispatcher struct {
	store  Store
	sender Sender
	logger *zap.Logger
	cfg    DispatcherConfig
	now    func() time.Time
}

func NewDispatcher(store Store, sender Sender, logger *zap.Logger, cfg DispatcherConfig) *Dispatcher {
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = time.Minute
	}
	return &Dispatcher{
		store:  store,
		sender: sender,
		logger: logger,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Run dispatches on every tick until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := d.DispatchOnce(ctx); err != nil {
				d.logger.Error("notification dispatch failed", zap.Error(err))
			}
		}
	}
}

type DispatchStats struct {
	Sent      int
	Failed    int
	Abandoned int
}

// DispatchOnce handles a single batch of due notifications.
func (d *Dispatcher) DispatchOnce(ctx context.Context) (DispatchStats, error) {
	var stats DispatchStats
	now := d.now().UTC()

	err := d.store.WithDueBatch(ctx, now, d.cfg.BatchSize, d.cfg.MaxAttempts, func(ctx context.Context, batch []Delivery) error {
		for i := range batch {
			n := &batch[i].Log

			if n.Type == scheduling.NotificationReminder && batch[i].AppointmentStatus != scheduling.StatusScheduled {
				n.Abandon("appointment is no longer scheduled", now, d.cfg.MaxAttempts)
				stats.Abandoned++
				continue
			}

			if err := d.sender.Send(ctx, BuildMessage(batch[i])); err != nil {
				n.MarkFailed(err.Error(), now, d.cfg.RetryBackoff)
				stats.Failed++
				level := d.logger.Warn
				if n.Exhausted(d.cfg.MaxAttempts) {
					level = d.logger.Error
				}
				level("notification delivery failed",
					zap.String("notification_id", n.ID.String()),
					zap.String("appointment_id", n.AppointmentID.String()),
					zap.String("type", string(n.Type)),
					zap.Int("attempt", n.RetryCount),
					zap.Error(err),
				)
				continue
			}

			n.MarkSent(now)
			stats.Sent++
		}
		return nil
	})
	if err != nil {
		return DispatchStats{}, err
	}

	if stats != (DispatchStats{}) {
		d.logger.Info("notifications dispatched",
			zap.Int("sent", stats.Sent),
			zap.Int("failed", stats.Failed),
			zap.Int("abandoned", stats.Abandoned),
		)
	}
	return stats, nil
}
