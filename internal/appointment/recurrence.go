package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hackgods/provider-booking/internal/scheduling"
)

// errGap marks an occurrence that cannot be placed. It is skipped, not fatal.
var errGap = errors.New("occurrence skipped")

// expand materializes the occurrences following parent. It stops at the
// booking horizon, the rule's end date or MaxOccurrences, whichever comes
// first. Occurrences that conflict are skipped; any other failure stops
// the expansion and is returned with the ids created so far.
func (s *Service) expand(ctx context.Context, provider *scheduling.ServiceProvider, parent *scheduling.Appointment, rule scheduling.RecurrenceRule, now time.Time) ([]uuid.UUID, error) {
	horizon := scheduling.Horizon(now)
	date := parent.Date()
	created := []uuid.UUID{}

	// skipped candidates count towards the limit too
	for count := 1; count < MaxOccurrences; count++ {
		if err := ctx.Err(); err != nil {
			return created, err
		}

		date = rule.NextOccurrence(date)
		if date.After(horizon) || !rule.Allows(date) {
			break
		}

		id, err := s.materialize(ctx, provider, parent, date, now)
		switch {
		case err == nil:
			created = append(created, id)
		case errors.Is(err, errGap):
			s.logger.Debug("recurring occurrence skipped",
				zap.String("parent_id", parent.ID().String()),
				zap.String("date", date.Format(scheduling.DateLayout)),
				zap.Error(err),
			)
		default:
			return created, fmt.Errorf("occurrence on %s: %w", date.Format(scheduling.DateLayout), err)
		}
	}
	return created, nil
}

func (s *Service) materialize(ctx context.Context, provider *scheduling.ServiceProvider, parent *scheduling.Appointment, date time.Time, now time.Time) (uuid.UUID, error) {
	if !provider.Covers(date, parent.Slot()) {
		return uuid.Nil, fmt.Errorf("%w: %v", errGap, scheduling.ErrOutsideHours)
	}

	child, err := scheduling.CreateAppointment(scheduling.NewAppointment{
		ProviderID: parent.ProviderID(),
		Customer:   parent.Customer(),
		Date:       date,
		Slot:       parent.Slot(),
		ParentID:   uuid.NullUUID{UUID: parent.ID(), Valid: true},
	}, now)
	if err != nil {
		return uuid.Nil, err
	}

	err = s.commitOnFreeSlot(ctx, provider, child, uuid.Nil, func(ctx context.Context) error {
		return s.repo.CreateAppointment(ctx, child, scheduling.NewNotificationLog(child.ID(), scheduling.NotificationConfirmation, now))
	})
	if errors.Is(err, scheduling.ErrSlotConflict) || errors.Is(err, scheduling.ErrBlockedConflict) {
		return uuid.Nil, fmt.Errorf("%w: %v", errGap, err)
	}
	if err != nil {
		return uuid.Nil, err
	}
	return child.ID(), nil
}
