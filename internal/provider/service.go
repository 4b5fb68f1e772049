package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hackgods/provider-booking/internal/scheduling"
)

type Details struct {
	Name      string
	Email     string
	Specialty string
}

type Service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{repo: repo, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) clock() time.Time {
	return s.now().UTC()
}

func (s *Service) Create(ctx context.Context, d Details) (*scheduling.ServiceProvider, error) {
	p, err := scheduling.NewServiceProvider(d.Name, d.Email, d.Specialty, s.clock())
	if err != nil {
		return nil, s.rejected("create", err)
	}
	if err := s.repo.CreateProvider(ctx, p); err != nil {
		return nil, s.rejected("create", err)
	}
	s.logger.Info("provider created", zap.String("provider_id", p.ID().String()))
	return p, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, d Details) (*scheduling.ServiceProvider, error) {
	return s.mutate(ctx, "update", id, func(p *scheduling.ServiceProvider, now time.Time) error {
		return p.UpdateDetails(d.Name, d.Email, d.Specialty, now)
	})
}

func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) (*scheduling.ServiceProvider, error) {
	return s.mutate(ctx, "deactivate", id, func(p *scheduling.ServiceProvider, now time.Time) error {
		return p.Deactivate(now)
	})
}

func (s *Service) Activate(ctx context.Context, id uuid.UUID) (*scheduling.ServiceProvider, error) {
	return s.mutate(ctx, "activate", id, func(p *scheduling.ServiceProvider, now time.Time) error {
		return p.Activate(now)
	})
}

func (s *Service) mutate(ctx context.Context, op string, id uuid.UUID, apply func(*scheduling.ServiceProvider, time.Time) error) (*scheduling.ServiceProvider, error) {
	p, err := s.repo.GetProvider(ctx, id)
	if err != nil {
		return nil, s.rejected(op, err)
	}
	if err := apply(p, s.clock()); err != nil {
		return nil, s.rejected(op, err)
	}
	if err := s.repo.UpdateProvider(ctx, p); err != nil {
		return nil, s.rejected(op, err)
	}
	s.logger.Info("provider updated", zap.String("op", op), zap.String("provider_id", p.ID().String()))
	return p, nil
}

// AddWorkingHours replaces the provider's window for day.
func (s *Service) AddWorkingHours(ctx context.Context, id uuid.UUID, day time.Weekday, start, end scheduling.TimeOfDay) (scheduling.WorkingHours, error) {
	p, err := s.repo.GetProvider(ctx, id)
	if err != nil {
		return scheduling.WorkingHours{}, s.rejected("add_working_hours", err)
	}
	wh, err := p.AddWorkingHours(day, start, end, s.clock())
	if err != nil {
		return scheduling.WorkingHours{}, s.rejected("add_working_hours", err)
	}
	if err := s.repo.SaveWorkingHours(ctx, wh); err != nil {
		return scheduling.WorkingHours{}, s.rejected("add_working_hours", err)
	}
	s.logger.Info("working hours set",
		zap.String("provider_id", id.String()),
		zap.String("day", day.String()),
		zap.String("start", start.String()),
		zap.String("end", end.String()),
	)
	return wh, nil
}

func (s *Service) BlockTime(ctx context.Context, id uuid.UUID, start, end time.Time, reason string) (scheduling.BlockedTime, error) {
	p, err := s.repo.GetProvider(ctx, id)
	if err != nil {
		return scheduling.BlockedTime{}, s.rejected("block_time", err)
	}
	bt, err := p.BlockTime(start, end, reason, s.clock())
	if err != nil {
		return scheduling.BlockedTime{}, s.rejected("block_time", err)
	}
	if err := s.repo.InsertBlockedTime(ctx, bt); err != nil {
		return scheduling.BlockedTime{}, s.rejected("block_time", err)
	}
	s.logger.Info("time blocked", zap.String("provider_id", id.String()), zap.String("blocked_time_id", bt.ID.String()))
	return bt, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*scheduling.ServiceProvider, error) {
	p, err := s.repo.GetProvider(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get provider: %w", err)
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, includeInactive bool) ([]*scheduling.ServiceProvider, error) {
	ps, err := s.repo.ListProviders(ctx, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	return ps, nil
}

func (s *Service) rejected(op string, err error) error {
	if be, ok := scheduling.AsBusinessError(err); ok {
		s.logger.Warn("provider operation rejected", zap.String("op", op), zap.String("code", be.Code))
		return err
	}
	s.logger.Error("provider operation failed", zap.String("op", op), zap.Error(err))
	return err
}
