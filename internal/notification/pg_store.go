package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackgods/provider-booking/internal/db"
	"github.com/hackgods/provider-booking/internal/scheduling"
)

type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// InsertLogs writes logs inside tx so they commit with the change that
// produced them.
func InsertLogs(ctx context.Context, tx pgx.Tx, logs ...scheduling.NotificationLog) error {
	_, err := insertLogs(ctx, tx, logs)
	return err
}

func insertLogs(ctx context.Context, q execer, logs []scheduling.NotificationLog) (int, error) {
	inserted := 0
	for _, n := range logs {
		tag, err := q.Exec(ctx, `
			INSERT INTO notification_logs (
				id, appointment_id, type, status, sent_at, error_message,
				retry_count, next_attempt_at, created_at, updated_at
			)
			VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9, $10)
			ON CONFLICT DO NOTHING
		`, n.ID, n.AppointmentID, string(n.Type), string(n.Status), n.SentAt, n.ErrorMessage,
			n.RetryCount, n.NextAttemptAt, n.CreatedAt, n.UpdatedAt)
		if err != nil {
			return inserted, fmt.Errorf("insert notification log: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

func (s *PgStore) Enqueue(ctx context.Context, logs ...scheduling.NotificationLog) (int, error) {
	var inserted int
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		n, err := insertLogs(ctx, tx, logs)
		inserted = n
		return err
	})
	return inserted, err
}

func (s *PgStore) ScheduledWithoutReminder(ctx context.Context, date time.Time) ([]uuid.UUID, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT a.id
		FROM appointments a
		WHERE a.status = 'scheduled'
		  AND a.appointment_date = $1
		  AND NOT EXISTS (
			SELECT 1 FROM notification_logs n
			WHERE n.appointment_id = a.id AND n.type = 'reminder'
		  )
		ORDER BY a.start_time
	`, db.DateValue(date))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *PgStore) WithDueBatch(ctx context.Context, now time.Time, limit, maxAttempts int, fn func(ctx context.Context, batch []Delivery) error) error {
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		batch, err := fetchDue(ctx, tx, now, limit, maxAttempts)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}

		if err := fn(ctx, batch); err != nil {
			return err
		}

		b := &pgx.Batch{}
		for _, d := range batch {
			n := d.Log
			b.Queue(`
				UPDATE notification_logs
				SET status = $2,
				    sent_at = $3,
				    error_message = NULLIF($4, ''),
				    retry_count = $5,
				    next_attempt_at = $6,
				    updated_at = $7
				WHERE id = $1
			`, n.ID, string(n.Status), n.SentAt, n.ErrorMessage, n.RetryCount, n.NextAttemptAt, n.UpdatedAt)
		}
		if err := tx.SendBatch(ctx, b).Close(); err != nil {
			return fmt.Errorf("update notification logs: %w", err)
		}
		return nil
	})
}

func fetchDue(ctx context.Context, tx pgx.Tx, now time.Time, limit, maxAttempts int) ([]Delivery, error) {
	rows, err := tx.Query(ctx, `
		SELECT n.id, n.appointment_id, n.type, n.status, n.sent_at, COALESCE(n.error_message, ''),
		       n.retry_count, n.next_attempt_at, n.created_at, n.updated_at,
		       a.customer_name, a.customer_email, a.customer_phone,
		       a.appointment_date, a.start_time, a.end_time, a.status, COALESCE(a.cancellation_reason, ''),
		       p.name
		FROM notification_logs n
		JOIN appointments a ON a.id = n.appointment_id
		JOIN service_providers p ON p.id = a.provider_id
		WHERE n.status <> 'sent'
		  AND n.retry_count < $2
		  AND n.next_attempt_at <= $1
		ORDER BY n.next_attempt_at
		LIMIT $3
		FOR UPDATE OF n SKIP LOCKED
	`, now, maxAttempts, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batch []Delivery
	for rows.Next() {
		var (
			d          Delivery
			date       pgtype.Date
			start, end pgtype.Time
		)
		if err := rows.Scan(
			&d.Log.ID, &d.Log.AppointmentID, &d.Log.Type, &d.Log.Status, &d.Log.SentAt, &d.Log.ErrorMessage,
			&d.Log.RetryCount, &d.Log.NextAttemptAt, &d.Log.CreatedAt, &d.Log.UpdatedAt,
			&d.Customer.Name, &d.Customer.Email, &d.Customer.Phone,
			&date, &start, &end, &d.AppointmentStatus, &d.CancellationReason,
			&d.ProviderName,
		); err != nil {
			return nil, err
		}
		d.Date = date.Time
		slot, err := scheduling.TimeSlotBetween(db.TimeOfDay(start), db.TimeOfDay(end))
		if err != nil {
			return nil, fmt.Errorf("notification %s: %w", d.Log.ID, err)
		}
		d.Slot = slot
		batch = append(batch, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return batch, nil
}
