package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	redisclient "github.com/hackgods/provider-booking/internal/redis"
	"github.com/hackgods/provider-booking/internal/scheduling"
)

var ErrSlotBeingBooked = &scheduling.BusinessError{
	Code:    "slot_being_booked",
	Message: "another booking for this provider and date is in progress, please retry",
}

type Service struct {
	repo      Repository
	providers ProviderReader
	locker    redisclient.Locker
	logger    *zap.Logger
	now       func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, providers ProviderReader, locker redisclient.Locker, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		providers: providers,
		locker:    locker,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) clock() time.Time {
	return s.now().UTC()
}

// Book creates an appointment and, when a recurrence rule is given, as many
// later occurrences as fit. The check for overlaps and the insert run under
// a per provider and date lock.
func (s *Service) Book(ctx context.Context, req BookingRequest) (*BookingResult, error) {
	now := s.clock()

	slot, err := scheduling.NewTimeSlot(req.Start, req.DurationMinutes)
	if err != nil {
		return nil, s.rejected("book", err)
	}

	provider, err := s.loadBookableProvider(ctx, req.ProviderID)
	if err != nil {
		return nil, s.rejected("book", err)
	}

	appt, err := scheduling.CreateAppointment(scheduling.NewAppointment{
		ProviderID: provider.ID(),
		Customer:   req.Customer,
		Date:       req.Date,
		Slot:       slot,
		Recurrence: req.Recurrence,
	}, now)
	if err != nil {
		return nil, s.rejected("book", err)
	}

	if !provider.Covers(appt.Date(), slot) {
		return nil, s.rejected("book", scheduling.ErrOutsideHours)
	}

	err = s.commitOnFreeSlot(ctx, provider, appt, uuid.Nil, func(ctx context.Context) error {
		return s.repo.CreateAppointment(ctx, appt, scheduling.NewNotificationLog(appt.ID(), scheduling.NotificationConfirmation, now))
	})
	if err != nil {
		return nil, s.rejected("book", err)
	}

	result := &BookingResult{Appointment: appt, TotalCreated: 1}

	if rule := appt.Recurrence(); rule != nil {
		ids, expErr := s.expand(ctx, provider, appt, *rule, now)
		result.RecurringAppointmentIDs = ids
		result.TotalCreated += len(ids)
		if expErr != nil {
			result.Partial = true
			result.ExpansionErr = expErr
			s.logger.Warn("recurrence expansion stopped early",
				zap.String("appointment_id", appt.ID().String()),
				zap.Int("created", len(ids)),
				zap.Error(expErr),
			)
		}
	}

	s.logger.Info("appointment booked",
		zap.String("appointment_id", appt.ID().String()),
		zap.String("provider_id", provider.ID().String()),
		zap.String("date", appt.Date().Format(scheduling.DateLayout)),
		zap.String("slot", slot.String()),
		zap.Int("total_created", result.TotalCreated),
	)
	return result, nil
}

func (s *Service) Cancel(ctx context.Context, id uuid.UUID, reason string) (*scheduling.Appointment, error) {
	now := s.clock()

	appt, err := s.repo.GetAppointment(ctx, id)
	if err != nil {
		return nil, s.rejected("cancel", err)
	}
	if err := appt.Cancel(reason, now); err != nil {
		return nil, s.rejected("cancel", err)
	}

	err = s.repo.UpdateAppointment(ctx, appt, scheduling.StatusScheduled,
		scheduling.NewNotificationLog(appt.ID(), scheduling.NotificationCancellation, now))
	if err != nil {
		return nil, s.rejected("cancel", err)
	}

	s.logger.Info("appointment cancelled", zap.String("appointment_id", appt.ID().String()))
	return appt, nil
}

func (s *Service) Reschedule(ctx context.Context, req RescheduleRequest) (*scheduling.Appointment, error) {
	now := s.clock()

	slot, err := scheduling.NewTimeSlot(req.NewStart, req.DurationMinutes)
	if err != nil {
		return nil, s.rejected("reschedule", err)
	}

	appt, err := s.repo.GetAppointment(ctx, req.AppointmentID)
	if err != nil {
		return nil, s.rejected("reschedule", err)
	}

	if err := appt.Reschedule(req.NewDate, slot, now); err != nil {
		return nil, s.rejected("reschedule", err)
	}

	provider, err := s.loadBookableProvider(ctx, appt.ProviderID())
	if err != nil {
		return nil, s.rejected("reschedule", err)
	}
	if !provider.Covers(appt.Date(), slot) {
		return nil, s.rejected("reschedule", scheduling.ErrOutsideHours)
	}

	err = s.commitOnFreeSlot(ctx, provider, appt, appt.ID(), func(ctx context.Context) error {
		return s.repo.UpdateAppointment(ctx, appt, scheduling.StatusScheduled,
			scheduling.NewNotificationLog(appt.ID(), scheduling.NotificationRescheduled, now))
	})
	if err != nil {
		return nil, s.rejected("reschedule", err)
	}

	s.logger.Info("appointment rescheduled",
		zap.String("appointment_id", appt.ID().String()),
		zap.String("date", appt.Date().Format(scheduling.DateLayout)),
		zap.String("slot", slot.String()),
	)
	return appt, nil
}

func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*scheduling.Appointment, error) {
	return s.transition(ctx, "complete", id, func(a *scheduling.Appointment, now time.Time) error {
		return a.Complete(now)
	})
}

func (s *Service) MarkNoShow(ctx context.Context, id uuid.UUID) (*scheduling.Appointment, error) {
	return s.transition(ctx, "no_show", id, func(a *scheduling.Appointment, now time.Time) error {
		return a.MarkNoShow(now)
	})
}

func (s *Service) transition(ctx context.Context, op string, id uuid.UUID, apply func(*scheduling.Appointment, time.Time) error) (*scheduling.Appointment, error) {
	now := s.clock()

	appt, err := s.repo.GetAppointment(ctx, id)
	if err != nil {
		return nil, s.rejected(op, err)
	}
	if err := apply(appt, now); err != nil {
		return nil, s.rejected(op, err)
	}
	if err := s.repo.UpdateAppointment(ctx, appt, scheduling.StatusScheduled); err != nil {
		return nil, s.rejected(op, err)
	}

	s.logger.Info("appointment status changed",
		zap.String("appointment_id", appt.ID().String()),
		zap.String("status", string(appt.Status())),
	)
	return appt, nil
}

// AvailableSlots lists bookable slots of durationMinutes for the provider on date.
func (s *Service) AvailableSlots(ctx context.Context, providerID uuid.UUID, date time.Time, durationMinutes int) ([]scheduling.TimeSlot, error) {
	if !scheduling.ValidDuration(durationMinutes) {
		return nil, scheduling.ErrInvalidDuration
	}
	provider, err := s.providers.GetProvider(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("load provider: %w", err)
	}
	if !provider.Active() {
		return []scheduling.TimeSlot{}, nil
	}

	appts, err := s.repo.ListByProviderDate(ctx, providerID, date)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	return scheduling.AvailableSlots(date, durationMinutes, provider.WorkingHours(), appts, provider.BlockedTimesOn(date))
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*scheduling.Appointment, error) {
	appt, err := s.repo.GetAppointment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return appt, nil
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]*scheduling.Appointment, error) {
	appts, err := s.repo.ListAppointments(ctx, f.normalized())
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appts, nil
}

func (s *Service) loadBookableProvider(ctx context.Context, id uuid.UUID) (*scheduling.ServiceProvider, error) {
	provider, err := s.providers.GetProvider(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load provider: %w", err)
	}
	if !provider.Active() {
		return nil, scheduling.ErrProviderInactive
	}
	return provider, nil
}

// commitOnFreeSlot runs the conflict check for appt's date and slot and, when
// it passes, commit, both while holding the provider day lock.
func (s *Service) commitOnFreeSlot(ctx context.Context, provider *scheduling.ServiceProvider, appt *scheduling.Appointment, exclude uuid.UUID, commit func(ctx context.Context) error) error {
	err := s.locker.WithProviderDayLock(ctx, provider.ID(), appt.Date(), func(lockCtx context.Context) error {
		existing, err := s.repo.ListByProviderDate(lockCtx, provider.ID(), appt.Date())
		if err != nil {
			return fmt.Errorf("list appointments: %w", err)
		}
		q := scheduling.ConflictQuery{
			ProviderID: provider.ID(),
			Date:       appt.Date(),
			Slot:       appt.Slot(),
			ExcludeID:  exclude,
		}
		if err := scheduling.FindConflict(q, existing, provider.BlockedTimesOn(appt.Date())); err != nil {
			return err
		}
		return commit(lockCtx)
	})
	if errors.Is(err, redisclient.ErrLockNotAcquired) {
		return ErrSlotBeingBooked
	}
	return err
}

// rejected logs err at a level matching its kind and returns it unchanged.
func (s *Service) rejected(op string, err error) error {
	if be, ok := scheduling.AsBusinessError(err); ok {
		s.logger.Warn("appointment operation rejected",
			zap.String("op", op),
			zap.String("code", be.Code),
		)
		return err
	}
	s.logger.Error("appointment operation failed", zap.String("op", op), zap.Error(err))
	return err
}
