package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hackgods/provider-booking/internal/config"
	"github.com/hackgods/provider-booking/internal/db"
	"github.com/hackgods/provider-booking/internal/logging"
	"github.com/hackgods/provider-booking/internal/notification"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("notification-worker starting up",
		zap.String("env", cfg.Env),
		zap.String("channel", cfg.Notify.Channel),
		zap.Duration("dispatch_interval", cfg.Notify.DispatchInterval),
		zap.Duration("reminder_interval", cfg.Notify.ReminderInterval),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		logger.Fatal("postgres connection error", zap.Error(err))
	}
	defer pgPool.Close()
	logger.Info("connected to Postgres")

	sender, closeSender, err := newSender(cfg.Notify, logger)
	if err != nil {
		logger.Fatal("notification sender error", zap.Error(err))
	}
	defer closeSender()

	store := notification.NewPgStore(pgPool)
	sweep := notification.NewReminderSweep(store, logger.Named("reminders"))
	dispatcher := notification.NewDispatcher(store, sender, logger.Named("dispatcher"), notification.DispatcherConfig{
		Interval:     cfg.Notify.DispatchInterval,
		BatchSize:    cfg.Notify.DispatchBatchSize,
		MaxAttempts:  cfg.Notify.MaxAttempts,
		RetryBackoff: cfg.Notify.RetryBackoff,
	})

	// Run once at startup
	runSweep(rootCtx, sweep, logger)

	go dispatcher.Run(rootCtx)

	ticker := time.NewTicker(cfg.Notify.ReminderInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			logger.Info("shutdown signal received, stopping notification worker")
			return
		case <-ticker.C:
			runSweep(rootCtx, sweep, logger)
		}
	}
}

func runSweep(ctx context.Context, sweep *notification.ReminderSweep, logger *zap.Logger) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := time.Now()
	n, err := sweep.RunOnce(runCtx, start.UTC())
	if err != nil {
		logger.Error("reminder sweep error", zap.Error(err))
		return
	}
	logger.Info("reminder sweep complete", zap.Int("enqueued", n), zap.Duration("took", time.Since(start)))
}

// newSender builds the delivery channel selected by NOTIFY_CHANNEL. The
// returned func releases its connections.
func newSender(cfg config.NotifyConfig, logger *zap.Logger) (notification.Sender, func(), error) {
	switch cfg.Channel {
	case config.ChannelLog:
		return notification.NewLogSender(logger.Named("sender")), func() {}, nil

	case config.ChannelSMTP:
		return notification.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom), func() {}, nil

	case config.ChannelKafka:
		w := notification.NewKafkaWriter(cfg.KafkaBrokers)
		return notification.NewKafkaSender(w, cfg.KafkaPrefix), func() {
			if err := w.Close(); err != nil {
				logger.Warn("error closing kafka writer", zap.Error(err))
			}
		}, nil

	case config.ChannelAMQP:
		conn, ch, err := notification.DialAMQP(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return nil, nil, err
		}
		return notification.NewAMQPSender(ch, cfg.AMQPExchange), func() {
			_ = ch.Close()
			if err := conn.Close(); err != nil {
				logger.Warn("error closing amqp connection", zap.Error(err))
			}
		}, nil
	}
	return nil, nil, fmt.Errorf("unknown notification channel %q", cfg.Channel)
}
