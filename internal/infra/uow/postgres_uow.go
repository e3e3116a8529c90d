package uow

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	"harborline/internal/infra/db"
	"harborline/internal/infra/readstore"
	"harborline/internal/infra/repository"
	"harborline/internal/pkg/errs"
	"harborline/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgErrCodeSerializationFailure = "40001"
	pgErrCodeDeadlockDetected     = "40P01"
)

var (
	errTransactionBegin   = errs.New("failed to begin transaction")
	errTransactionCommit  = errs.New("failed to commit transaction")
	errMaxRetriesExceeded = errs.New("transaction failed after max retries")
)

type PostgresUoW struct {
	pool *pgxpool.Pool
}

func NewPostgresUoW(pool *pgxpool.Pool) shared.UnitOfWork {
	return &PostgresUoW{pool: pool}
}

// ReadCommitted prevents dirty reads while allowing concurrent writes.
func (u *PostgresUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return u.runInTxWithOptions(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
}

// Serializable closes the race between two overlap checks that both see a
// free slot: one of the competing inserts aborts with 40001 and is
// retried, re-running the check against the winner's committed row.
func (u *PostgresUoW) WithinSerializable(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return u.runInTxWithOptions(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable}, fn)
}

func (u *PostgresUoW) CommandReads() shared.CommandReads {
	return newCommandReads(u.pool)
}

// Avoids defer accumulation in retry loops to prevent connection leaks
func (u *PostgresUoW) runInTxWithOptions(ctx context.Context, options pgx.TxOptions, fn func(ctx context.Context, tx shared.Tx) error) error {
	const maxRetries = 3
	base := 100 * time.Millisecond

	for attempt := 0; attempt <= maxRetries; attempt++ {
		pgxTx, err := u.pool.BeginTx(ctx, options)
		if err != nil {
			return errs.Mark(err, errTransactionBegin)
		}

		tx := &pgTx{dbtx: pgxTx}

		err = fn(ctx, tx)
		if err == nil {
			if err = pgxTx.Commit(ctx); err == nil {
				return nil
			}
			err = errs.Mark(err, errTransactionCommit)
		}

		if rollbackErr := pgxTx.Rollback(ctx); rollbackErr != nil {
			if !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				slog.Warn("rollback failed", "attempt", attempt+1, "error", rollbackErr.Error())
			}
		}

		if !shouldRetry(err, attempt, maxRetries) {
			if attempt == maxRetries {
				slog.Error("transaction failed after max retries",
					"attempts", attempt+1,
					"error", err.Error())
				return errs.Mark(err, errMaxRetriesExceeded)
			}
			return err
		}

		waitTime := calculateBackoff(attempt, base)

		slog.Warn("retrying transaction due to retryable error",
			"attempt", attempt+1,
			"wait_ms", waitTime.Milliseconds(),
			"error", err.Error())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}

	return errMaxRetriesExceeded
}

func shouldRetry(err error, attempt, maxRetries int) bool {
	return isRetryableError(err) && attempt < maxRetries
}

func calculateBackoff(attempt int, base time.Duration) time.Duration {
	waitTime := time.Duration(1<<attempt) * base
	jitter := cryptoRandInt63n(int64(waitTime / 5))
	return waitTime + time.Duration(jitter)
}

func cryptoRandInt63n(n int64) int64 {
	if n <= 0 {
		return 0
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0
	}
	uval := binary.BigEndian.Uint64(buf[:]) & 0x7FFFFFFFFFFFFFFF
	return int64(uval) % n
}

func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	switch pgErr.Code {
	case pgErrCodeSerializationFailure, pgErrCodeDeadlockDetected:
		return true
	default:
		return false
	}
}

type pgTx struct {
	dbtx db.DBTX

	// Lazy-initialized repositories
	bookingRepo shared.BookingRepository
	boatRepo    shared.BoatRepository
	crewRepo    shared.CrewRepository
	ratingRepo  shared.RatingRepository
}

func (t *pgTx) DB() db.DBTX {
	return t.dbtx
}

func (t *pgTx) Bookings() shared.BookingRepository {
	if t.bookingRepo == nil {
		t.bookingRepo = repository.NewBookingRepository()
	}
	return t.bookingRepo
}

func (t *pgTx) Boats() shared.BoatRepository {
	if t.boatRepo == nil {
		t.boatRepo = repository.NewBoatRepository()
	}
	return t.boatRepo
}

func (t *pgTx) Crews() shared.CrewRepository {
	if t.crewRepo == nil {
		t.crewRepo = repository.NewCrewRepository()
	}
	return t.crewRepo
}

func (t *pgTx) Ratings() shared.RatingRepository {
	if t.ratingRepo == nil {
		t.ratingRepo = repository.NewRatingRepository()
	}
	return t.ratingRepo
}

type commandReads struct {
	dbtx db.DBTX

	boatStore     *readstore.BoatReadStore
	crewStore     *readstore.CrewReadStore
	merchantStore *readstore.MerchantReadStore
}

func newCommandReads(dbtx db.DBTX) *commandReads {
	return &commandReads{dbtx: dbtx}
}

func (r *commandReads) boats() *readstore.BoatReadStore {
	if r.boatStore == nil {
		r.boatStore = readstore.NewBoatReadStore(r.dbtx)
	}
	return r.boatStore
}

func (r *commandReads) crews() *readstore.CrewReadStore {
	if r.crewStore == nil {
		r.crewStore = readstore.NewCrewReadStore(r.dbtx)
	}
	return r.crewStore
}

func (r *commandReads) merchants() *readstore.MerchantReadStore {
	if r.merchantStore == nil {
		r.merchantStore = readstore.NewMerchantReadStore(r.dbtx)
	}
	return r.merchantStore
}

func (r *commandReads) BoatByID(ctx context.Context, id uuid.UUID) (*shared.BoatSnapshot, error) {
	return r.boats().Snapshot(ctx, id)
}

func (r *commandReads) CrewByID(ctx context.Context, id uuid.UUID) (*shared.CrewSnapshot, error) {
	return r.crews().Snapshot(ctx, id)
}

func (r *commandReads) CrewByUserID(ctx context.Context, userID uuid.UUID) (*shared.CrewSnapshot, error) {
	return r.crews().SnapshotByUserID(ctx, userID)
}

func (r *commandReads) MerchantByID(ctx context.Context, id uuid.UUID) (*shared.MerchantSnapshot, error) {
	return r.merchants().Snapshot(ctx, id)
}

func (r *commandReads) MerchantByUserID(ctx context.Context, userID uuid.UUID) (*shared.MerchantSnapshot, error) {
	return r.merchants().SnapshotByUserID(ctx, userID)
}
