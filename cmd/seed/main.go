package main

import (
	"context"
	"errors"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"go.uber.org/zap"

	"github.com/hackgods/provider-booking/internal/config"
	"github.com/hackgods/provider-booking/internal/db"
	"github.com/hackgods/provider-booking/internal/logging"
	"github.com/hackgods/provider-booking/internal/provider"
	"github.com/hackgods/provider-booking/internal/scheduling"
)

var specialties = []string{
	"Dermatology",
	"Cardiology",
	"General Practice",
	"Orthopedics",
	"Endocrinology",
	"Neurology",
	"Pediatrics",
	"Psychiatry",
	"Ophthalmology",
	"ENT",
}

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

	count := 50
	if v := os.Getenv("SEED_PROVIDERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			count = n
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		logger.Fatal("apply schema", zap.Error(err))
	}

	_ = gofakeit.Seed(time.Now().UnixNano())

	// provider logs stay quiet; the seed reports totals itself
	svc := provider.NewService(provider.NewPgRepository(pool), zap.NewNop())

	created, err := seedProviders(ctx, svc, count, logger)
	if err != nil {
		logger.Fatal("seed providers", zap.Error(err))
	}

	logger.Info("seed complete", zap.Int("providers", created))
}

func seedProviders(ctx context.Context, svc *provider.Service, count int, logger *zap.Logger) (int, error) {
	logger.Info("seeding providers", zap.Int("count", count))

	created := 0
	for i := 0; i < count; i++ {
		p, err := svc.Create(ctx, provider.Details{
			Name:      "Dr. " + gofakeit.Name(),
			Email:     gofakeit.Email(),
			Specialty: specialties[gofakeit.Number(0, len(specialties)-1)],
		})
		if errors.Is(err, scheduling.ErrDuplicateEmail) {
			continue
		}
		if err != nil {
			return created, err
		}

		if err := seedSchedule(ctx, svc, p); err != nil {
			return created, err
		}
		created++

		if created%10 == 0 {
			logger.Info("providers seeded", zap.Int("done", created), zap.Int("total", count))
		}
	}
	return created, nil
}

// seedSchedule gives a provider weekday hours and a lunch break next week.
func seedSchedule(ctx context.Context, svc *provider.Service, p *scheduling.ServiceProvider) error {
	startHour := gofakeit.Number(7, 10)
	endHour := startHour + gofakeit.Number(6, 9)

	start, err := scheduling.NewTimeOfDay(startHour, 0)
	if err != nil {
		return err
	}
	end, err := scheduling.NewTimeOfDay(endHour, 0)
	if err != nil {
		return err
	}

	for day := time.Monday; day <= time.Friday; day++ {
		if _, err := svc.AddWorkingHours(ctx, p.ID(), day, start, end); err != nil {
			return err
		}
	}
	if gofakeit.Bool() {
		if _, err := svc.AddWorkingHours(ctx, p.ID(), time.Saturday, start, start+4*60); err != nil {
			return err
		}
	}

	lunchDay := scheduling.DateOf(time.Now()).AddDate(0, 0, gofakeit.Number(1, 14))
	lunch := lunchDay.Add(time.Duration(startHour+3) * time.Hour)
	if _, err := svc.BlockTime(ctx, p.ID(), lunch, lunch.Add(time.Hour), "Lunch"); err != nil {
		return err
	}
	return nil
}
