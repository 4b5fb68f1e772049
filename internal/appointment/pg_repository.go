package appointment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackgods/provider-booking/internal/db"
	"github.com/hackgods/provider-booking/internal/notification"
	"github.com/hackgods/provider-booking/internal/scheduling"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const appointmentColumns = `
	id, provider_id, customer_name, customer_email, customer_phone,
	appointment_date, start_time, end_time, status, COALESCE(cancellation_reason, ''),
	recurrence_type, recurrence_interval, recurrence_end_date, parent_id,
	created_at, updated_at`

// Helpers

func scanAppointment(row pgx.Row) (*scheduling.Appointment, error) {
	var (
		rec         scheduling.AppointmentRecord
		date        pgtype.Date
		start, end  pgtype.Time
		recType     *string
		recInterval *int32
		recEnd      pgtype.Date
	)

	err := row.Scan(
		&rec.ID,
		&rec.ProviderID,
		&rec.Customer.Name,
		&rec.Customer.Email,
		&rec.Customer.Phone,
		&date,
		&start,
		&end,
		&rec.Status,
		&rec.CancellationReason,
		&recType,
		&recInterval,
		&recEnd,
		&rec.ParentID,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, scheduling.ErrAppointmentMissing
		}
		return nil, err
	}

	rec.Date = date.Time
	rec.Start = db.TimeOfDay(start)
	rec.End = db.TimeOfDay(end)
	if recType != nil && recInterval != nil {
		rec.Recurrence = &scheduling.RecurrenceRule{
			Type:     scheduling.RecurrenceType(*recType),
			Interval: int(*recInterval),
			EndDate:  db.DatePtr(recEnd),
		}
	}

	return scheduling.RestoreAppointment(rec)
}

func collectAppointments(rows pgx.Rows) ([]*scheduling.Appointment, error) {
	defer rows.Close()

	result := []*scheduling.Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func recurrenceArgs(r *scheduling.RecurrenceRule) (*string, *int32, pgtype.Date) {
	if r == nil {
		return nil, nil, pgtype.Date{}
	}
	typ := string(r.Type)
	interval := int32(r.Interval)
	return &typ, &interval, db.NullDate(r.EndDate)
}

// Interface methods

func (r *PgRepository) GetAppointment(ctx context.Context, id uuid.UUID) (*scheduling.Appointment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) ListByProviderDate(ctx context.Context, providerID uuid.UUID, date time.Time) ([]*scheduling.Appointment, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+appointmentColumns+`
		FROM appointments
		WHERE provider_id = $1
		  AND appointment_date = $2
		ORDER BY start_time
	`, providerID, db.DateValue(date))
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *PgRepository) ListAppointments(ctx context.Context, f ListFilter) ([]*scheduling.Appointment, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if f.ProviderID.Valid {
		add("provider_id = $%d", f.ProviderID.UUID)
	}
	if f.From != nil {
		add("appointment_date >= $%d", db.DateValue(*f.From))
	}
	if f.To != nil {
		add("appointment_date <= $%d", db.DateValue(*f.To))
	}
	if email := strings.ToLower(strings.TrimSpace(f.CustomerEmail)); email != "" {
		add("customer_email = $%d", email)
	}
	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}

	query := `SELECT ` + appointmentColumns + ` FROM appointments`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, f.Limit, f.Offset)
	query += fmt.Sprintf(" ORDER BY appointment_date, start_time LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *PgRepository) CreateAppointment(ctx context.Context, appt *scheduling.Appointment, logs ...scheduling.NotificationLog) error {
	rec := appt.Record()
	recType, recInterval, recEnd := recurrenceArgs(rec.Recurrence)

	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO appointments (
				id, provider_id, customer_name, customer_email, customer_phone,
				appointment_date, start_time, end_time, start_at, end_at, status, cancellation_reason,
				recurrence_type, recurrence_interval, recurrence_end_date, parent_id,
				created_at, updated_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NULLIF($12, ''), $13, $14, $15, $16, $17, $18)
		`,
			rec.ID, rec.ProviderID, rec.Customer.Name, rec.Customer.Email, rec.Customer.Phone,
			db.DateValue(rec.Date), db.TimeValue(rec.Start), db.TimeValue(rec.End),
			appt.StartsAt(), appt.EndsAt(), string(rec.Status), rec.CancellationReason,
			recType, recInterval, recEnd, rec.ParentID,
			rec.CreatedAt, rec.UpdatedAt,
		)
		if err != nil {
			return err
		}
		return notification.InsertLogs(ctx, tx, logs...)
	})
	if db.IsExclusionViolation(err) {
		return scheduling.ErrSlotConflict
	}
	if err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

func (r *PgRepository) UpdateAppointment(ctx context.Context, appt *scheduling.Appointment, from scheduling.Status, logs ...scheduling.NotificationLog) error {
	rec := appt.Record()

	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE appointments
			SET appointment_date = $2,
			    start_time = $3,
			    end_time = $4,
			    start_at = $5,
			    end_at = $6,
			    status = $7,
			    cancellation_reason = NULLIF($8, ''),
			    updated_at = $9
			WHERE id = $1
			  AND status = $10
		`,
			rec.ID, db.DateValue(rec.Date), db.TimeValue(rec.Start), db.TimeValue(rec.End),
			appt.StartsAt(), appt.EndsAt(), string(rec.Status), rec.CancellationReason,
			rec.UpdatedAt, string(from),
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return scheduling.ErrInvalidTransition.WithMessage("appointment changed concurrently, reload and retry")
		}
		return notification.InsertLogs(ctx, tx, logs...)
	})
	if db.IsExclusionViolation(err) {
		return scheduling.ErrSlotConflict
	}
	if err != nil {
		if scheduling.IsBusinessError(err) {
			return err
		}
		return fmt.Errorf("update appointment: %w", err)
	}
	return nil
}
