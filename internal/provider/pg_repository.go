package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackgods/provider-booking/internal/db"
	"github.com/hackgods/provider-booking/internal/scheduling"
)

const emailIndex = "service_providers_email_key"

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func scanProviderRecord(row pgx.Row) (scheduling.ProviderRecord, error) {
	var rec scheduling.ProviderRecord
	err := row.Scan(
		&rec.ID,
		&rec.Name,
		&rec.Email,
		&rec.Specialty,
		&rec.Active,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if db.IsNotFound(err) {
			return scheduling.ProviderRecord{}, scheduling.ErrProviderNotFound
		}
		return scheduling.ProviderRecord{}, err
	}
	return rec, nil
}

func scanWorkingHours(row pgx.Row) (scheduling.WorkingHours, error) {
	var (
		wh         scheduling.WorkingHours
		day        int16
		start, end pgtype.Time
	)
	err := row.Scan(&wh.ID, &wh.ProviderID, &day, &start, &end, &wh.Active, &wh.CreatedAt, &wh.UpdatedAt)
	if err != nil {
		return scheduling.WorkingHours{}, err
	}
	wh.DayOfWeek = time.Weekday(day)
	wh.Start = db.TimeOfDay(start)
	wh.End = db.TimeOfDay(end)
	return wh, nil
}

func scanBlockedTime(row pgx.Row) (scheduling.BlockedTime, error) {
	var bt scheduling.BlockedTime
	err := row.Scan(&bt.ID, &bt.ProviderID, &bt.Start, &bt.End, &bt.Reason, &bt.CreatedAt)
	if err != nil {
		return scheduling.BlockedTime{}, err
	}
	bt.Start, bt.End = bt.Start.UTC(), bt.End.UTC()
	return bt, nil
}

func (r *PgRepository) loadSchedules(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]scheduling.WorkingHours, map[uuid.UUID][]scheduling.BlockedTime, error) {
	hours := make(map[uuid.UUID][]scheduling.WorkingHours, len(ids))
	blocked := make(map[uuid.UUID][]scheduling.BlockedTime, len(ids))
	if len(ids) == 0 {
		return hours, blocked, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, provider_id, day_of_week, start_time, end_time, is_active, created_at, updated_at
		FROM working_hours
		WHERE provider_id = ANY($1) AND is_active
		ORDER BY day_of_week
	`, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("load working hours: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		wh, err := scanWorkingHours(rows)
		if err != nil {
			return nil, nil, err
		}
		hours[wh.ProviderID] = append(hours[wh.ProviderID], wh)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	btRows, err := r.pool.Query(ctx, `
		SELECT id, provider_id, start_at, end_at, reason, created_at
		FROM blocked_times
		WHERE provider_id = ANY($1)
		ORDER BY start_at
	`, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("load blocked times: %w", err)
	}
	defer btRows.Close()
	for btRows.Next() {
		bt, err := scanBlockedTime(btRows)
		if err != nil {
			return nil, nil, err
		}
		blocked[bt.ProviderID] = append(blocked[bt.ProviderID], bt)
	}
	if err := btRows.Err(); err != nil {
		return nil, nil, err
	}

	return hours, blocked, nil
}

// Interface methods

func (r *PgRepository) GetProvider(ctx context.Context, id uuid.UUID) (*scheduling.ServiceProvider, error) {
	rec, err := scanProviderRecord(r.pool.QueryRow(ctx, `
		SELECT id, name, email, specialty, is_active, created_at, updated_at
		FROM service_providers
		WHERE id = $1
	`, id))
	if err != nil {
		return nil, err
	}

	hours, blocked, err := r.loadSchedules(ctx, []uuid.UUID{rec.ID})
	if err != nil {
		return nil, err
	}
	return scheduling.RestoreServiceProvider(rec, hours[rec.ID], blocked[rec.ID]), nil
}

func (r *PgRepository) ListProviders(ctx context.Context, includeInactive bool) ([]*scheduling.ServiceProvider, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, email, specialty, is_active, created_at, updated_at
		FROM service_providers
		WHERE $1 OR is_active
		ORDER BY name
	`, includeInactive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		recs []scheduling.ProviderRecord
		ids  []uuid.UUID
	)
	for rows.Next() {
		rec, err := scanProviderRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
		ids = append(ids, rec.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	hours, blocked, err := r.loadSchedules(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make([]*scheduling.ServiceProvider, 0, len(recs))
	for _, rec := range recs {
		result = append(result, scheduling.RestoreServiceProvider(rec, hours[rec.ID], blocked[rec.ID]))
	}
	return result, nil
}

func (r *PgRepository) CreateProvider(ctx context.Context, p *scheduling.ServiceProvider) error {
	rec := p.Record()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO service_providers (id, name, email, specialty, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, rec.ID, rec.Name, rec.Email, rec.Specialty, rec.Active, rec.CreatedAt, rec.UpdatedAt)
	if db.IsUniqueViolation(err, emailIndex) {
		return scheduling.ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("insert provider: %w", err)
	}
	return nil
}

func (r *PgRepository) UpdateProvider(ctx context.Context, p *scheduling.ServiceProvider) error {
	rec := p.Record()
	tag, err := r.pool.Exec(ctx, `
		UPDATE service_providers
		SET name = $2,
		    email = $3,
		    specialty = $4,
		    is_active = $5,
		    updated_at = $6
		WHERE id = $1
	`, rec.ID, rec.Name, rec.Email, rec.Specialty, rec.Active, rec.UpdatedAt)
	if db.IsUniqueViolation(err, emailIndex) {
		return scheduling.ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("update provider: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return scheduling.ErrProviderNotFound
	}
	return nil
}

func (r *PgRepository) SaveWorkingHours(ctx context.Context, wh scheduling.WorkingHours) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			UPDATE working_hours
			SET is_active = FALSE,
			    updated_at = $3
			WHERE provider_id = $1
			  AND day_of_week = $2
			  AND is_active
		`, wh.ProviderID, int16(wh.DayOfWeek), wh.CreatedAt)
		if err != nil {
			return fmt.Errorf("deactivate working hours: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO working_hours (id, provider_id, day_of_week, start_time, end_time, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, wh.ID, wh.ProviderID, int16(wh.DayOfWeek), db.TimeValue(wh.Start), db.TimeValue(wh.End),
			wh.Active, wh.CreatedAt, wh.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert working hours: %w", err)
		}
		return nil
	})
}

func (r *PgRepository) InsertBlockedTime(ctx context.Context, bt scheduling.BlockedTime) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO blocked_times (id, provider_id, start_at, end_at, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, bt.ID, bt.ProviderID, bt.Start, bt.End, bt.Reason, bt.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert blocked time: %w", err)
	}
	return nil
}
