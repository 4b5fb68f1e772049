package provider

import (
	"context"

	"github.com/google/uuid"

	"github.com/hackgods/provider-booking/internal/scheduling"
)

// Repository contains all provider storage needed by the service.
type Repository interface {
	// GetProvider returns the provider with its active working hours and
	// blocked times, or scheduling.ErrProviderNotFound.
	GetProvider(ctx context.Context, id uuid.UUID) (*scheduling.ServiceProvider, error)
	ListProviders(ctx context.Context, includeInactive bool) ([]*scheduling.ServiceProvider, error)

	// CreateProvider and UpdateProvider fail with
	// scheduling.ErrDuplicateEmail when another provider owns the email.
	CreateProvider(ctx context.Context, p *scheduling.ServiceProvider) error
	UpdateProvider(ctx context.Context, p *scheduling.ServiceProvider) error

	// SaveWorkingHours deactivates the provider's active row for wh's weekday
	// and inserts wh, atomically.
	SaveWorkingHours(ctx context.Context, wh scheduling.WorkingHours) error
	InsertBlockedTime(ctx context.Context, bt scheduling.BlockedTime) error
}
