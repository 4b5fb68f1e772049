package db

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/hackgods/provider-booking/internal/scheduling"
)

const microsPerMinute = int64(time.Minute / time.Microsecond)

// TimeValue converts a time of day to a Postgres TIME value.
func TimeValue(t scheduling.TimeOfDay) pgtype.Time {
	return pgtype.Time{Microseconds: int64(t) * microsPerMinute, Valid: true}
}

// TimeOfDay converts a Postgres TIME value back, dropping seconds.
func TimeOfDay(t pgtype.Time) scheduling.TimeOfDay {
	return scheduling.TimeOfDay(t.Microseconds / microsPerMinute)
}

// DateValue converts a calendar date to a Postgres DATE value.
func DateValue(d time.Time) pgtype.Date {
	return pgtype.Date{Time: scheduling.DateOf(d), Valid: true}
}

// NullDate maps a nil pointer to SQL NULL.
func NullDate(d *time.Time) pgtype.Date {
	if d == nil {
		return pgtype.Date{}
	}
	return DateValue(*d)
}

// DatePtr maps SQL NULL to a nil pointer.
func DatePtr(d pgtype.Date) *time.Time {
	if !d.Valid {
		return nil
	}
	v := scheduling.DateOf(d.Time)
	return &v
}
