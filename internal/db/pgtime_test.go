package db

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/provider-booking/internal/scheduling"
)

func TestTimeValueRoundTrip(t *testing.T) {
	tod, err := scheduling.NewTimeOfDay(14, 45)
	require.NoError(t, err)
	v := TimeValue(tod)
	assert.True(t, v.Valid)
	assert.Equal(t, int64((14*60+45)*60*1_000_000), v.Microseconds)
	assert.Equal(t, tod, TimeOfDay(v))
}

func TestNullDate(t *testing.T) {
	assert.False(t, NullDate(nil).Valid)
	assert.Nil(t, DatePtr(pgtype.Date{}))

	d := time.Date(2026, 12, 24, 18, 0, 0, 0, time.UTC)
	got := DatePtr(NullDate(&d))
	if assert.NotNil(t, got) {
		assert.Equal(t, time.Date(2026, 12, 24, 0, 0, 0, 0, time.UTC), *got)
	}
}

func TestErrorClassifiers(t *testing.T) {
	excl := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23P01"})
	uniq := &pgconn.PgError{Code: "23505", ConstraintName: "service_providers_email_key"}

	assert.True(t, IsExclusionViolation(excl))
	assert.False(t, IsExclusionViolation(uniq))
	assert.True(t, IsUniqueViolation(uniq, ""))
	assert.True(t, IsUniqueViolation(uniq, "service_providers_email_key"))
	assert.False(t, IsUniqueViolation(uniq, "other"))
	assert.True(t, IsNotFound(fmt.Errorf("get: %w", pgx.ErrNoRows)))
	assert.False(t, IsNotFound(errors.New("boom")))
}
