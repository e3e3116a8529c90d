//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// DBLike is the slice of the pool the fixtures need, so they also work
// inside an open transaction.
type DBLike interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CreateTestMerchant inserts a merchant owned by the given platform user.
func CreateTestMerchant(t *testing.T, db DBLike, userID uuid.UUID, name string) uuid.UUID {
	t.Helper()

	merchantID := uuid.New()
	ctx := context.Background()

	tag, err := db.Exec(ctx,
		"INSERT INTO merchants (id, user_id, name, status) VALUES ($1, $2, $3, 'active') ON CONFLICT (user_id) DO NOTHING",
		merchantID, userID, name)
	require.NoError(t, err)

	if tag.RowsAffected() == 0 {
		_ = db.QueryRow(ctx, "SELECT id FROM merchants WHERE user_id = $1", userID).Scan(&merchantID)
	}

	return merchantID
}

func CreateTestBoat(t *testing.T, db DBLike, merchantID uuid.UUID, name string, capacity int, hourlyRateCents int64, status string) uuid.UUID {
	t.Helper()

	boatID := uuid.New()
	_, err := db.Exec(context.Background(),
		"INSERT INTO boats (id, merchant_id, name, capacity, hourly_rate_cents, status) VALUES ($1, $2, $3, $4, $5, $6)",
		boatID, merchantID, name, capacity, hourlyRateCents, status)
	require.NoError(t, err)

	return boatID
}

func CreateTestCrew(t *testing.T, db DBLike, merchantID, userID uuid.UUID, name string) uuid.UUID {
	t.Helper()

	crewID := uuid.New()
	ctx := context.Background()

	tag, err := db.Exec(ctx,
		"INSERT INTO crews (id, merchant_id, user_id, name, status) VALUES ($1, $2, $3, $4, 'active') ON CONFLICT (user_id) DO NOTHING",
		crewID, merchantID, userID, name)
	require.NoError(t, err)

	if tag.RowsAffected() == 0 {
		_ = db.QueryRow(ctx, "SELECT id FROM crews WHERE user_id = $1", userID).Scan(&crewID)
	}

	return crewID
}

// CreateTestBooking inserts a booking row directly, bypassing the API.
// Needed for rows the engine itself would refuse to create, such as a
// pending booking old enough for the expiry sweep.
func CreateTestBooking(t *testing.T, db DBLike, userID, boatID, merchantID uuid.UUID, status string, start, end, createdAt time.Time) uuid.UUID {
	t.Helper()

	bookingID := uuid.New()
	number := "BK" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:22]
	hours := end.Sub(start).Hours()
	const rateCents = int64(10000)

	_, err := db.Exec(context.Background(), `
		INSERT INTO bookings (
			id, booking_number, user_id, boat_id, merchant_id,
			start_time, end_time, duration_hours, passenger_count,
			hourly_rate_cents, total_amount_cents, status, payment_status,
			contact_name, contact_phone, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 2, $9, $10, $11, 'unpaid', 'Test Contact', '+1 555 010 2030', $12, $12)`,
		bookingID, number, userID, boatID, merchantID, start, end, hours,
		rateCents, int64(float64(rateCents)*hours), status, createdAt)
	require.NoError(t, err)

	return bookingID
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables between tests
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	if _, err := pool.Exec(ctx, sqlAny.(string)); err != nil {
		return err
	}

	return nil
}
