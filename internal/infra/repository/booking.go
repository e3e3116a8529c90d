package repository

import (
	"context"
	"errors"
	"time"

	"harborline/internal/domain/booking"
	"harborline/internal/infra"
	"harborline/internal/infra/db"
	"harborline/internal/pkg/pgconv"
	"harborline/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgErrCodeUniqueViolation = "23505"

const bookingColumns = `
	id, booking_number, user_id, boat_id, merchant_id, assigned_crew_id,
	start_time, end_time, passenger_count, hourly_rate_cents, total_amount_cents,
	status, payment_status, contact_name, contact_phone,
	user_notes, merchant_notes, cancel_reason,
	created_at, updated_at, confirmed_at, completed_at, cancelled_at`

type BookingRepository struct{}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{}
}

func (r *BookingRepository) Create(ctx context.Context, dbtx db.DBTX, b *booking.Booking) error {
	const q = `
		INSERT INTO bookings (
			id, booking_number, user_id, boat_id, merchant_id, assigned_crew_id,
			start_time, end_time, duration_hours, passenger_count,
			hourly_rate_cents, total_amount_cents, status, payment_status,
			contact_name, contact_phone, user_notes, merchant_notes, cancel_reason,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10,
			$11, $12, $13, $14,
			$15, $16, $17, $18, $19,
			$20, $21
		)`

	_, err := dbtx.Exec(ctx, q,
		b.ID(), b.Number(), b.UserID(), b.BoatID(), b.MerchantID(), b.AssignedCrewID(),
		b.Slot().Start(), b.Slot().End(), b.Slot().DurationHours(), b.PassengerCount(),
		b.HourlyRate().Cents(), b.TotalAmount().Cents(), b.Status().String(), string(b.PaymentStatus()),
		b.Contact().Name(), b.Contact().Phone(),
		pgconv.TextOrNil(b.UserNote().String()),
		pgconv.TextOrNil(b.MerchantNote().String()),
		pgconv.TextOrNil(b.CancelReason().String()),
		b.CreatedAt(), b.UpdatedAt(),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrCodeUniqueViolation {
			return infra.WrapRepoErr("booking number already exists", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to create booking", err)
	}
	return nil
}

func (r *BookingRepository) FindByIDForUpdate(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*booking.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`

	row := dbtx.QueryRow(ctx, q, id)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find booking for update", err)
	}
	return b, nil
}

// Update writes every mutable field; the entity is the source of truth so
// partial updates cannot drift from it.
func (r *BookingRepository) Update(ctx context.Context, dbtx db.DBTX, b *booking.Booking) error {
	const q = `
		UPDATE bookings SET
			assigned_crew_id = $2,
			status           = $3,
			payment_status   = $4,
			merchant_notes   = $5,
			cancel_reason    = $6,
			updated_at       = $7,
			confirmed_at     = $8,
			completed_at     = $9,
			cancelled_at     = $10
		WHERE id = $1`

	tag, err := dbtx.Exec(ctx, q,
		b.ID(), b.AssignedCrewID(),
		b.Status().String(), string(b.PaymentStatus()),
		pgconv.TextOrNil(b.MerchantNote().String()),
		pgconv.TextOrNil(b.CancelReason().String()),
		b.UpdatedAt(), b.ConfirmedAt(), b.CompletedAt(), b.CancelledAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update booking", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("booking not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *BookingRepository) FindOverlapping(
	ctx context.Context,
	dbtx db.DBTX,
	kind shared.ResourceKind,
	resourceID uuid.UUID,
	start, end time.Time,
	excludeID *uuid.UUID,
) ([]shared.ConflictSummary, error) {
	resourceColumn := "boat_id"
	if kind == shared.ResourceCrew {
		resourceColumn = "assigned_crew_id"
	}

	statuses := make([]string, 0, 2)
	for _, s := range booking.BlockingStatuses() {
		statuses = append(statuses, s.String())
	}

	// Half-open overlap: existing.start < probe.end AND existing.end > probe.start.
	q := `
		SELECT id, booking_number, start_time, end_time, status
		FROM bookings
		WHERE ` + resourceColumn + ` = $1
		  AND status = ANY($2)
		  AND start_time < $3
		  AND end_time > $4
		  AND ($5::uuid IS NULL OR id <> $5)
		ORDER BY start_time`

	rows, err := dbtx.Query(ctx, q, resourceID, statuses, end, start, excludeID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query overlapping bookings", err)
	}
	defer rows.Close()

	var conflicts []shared.ConflictSummary
	for rows.Next() {
		var c shared.ConflictSummary
		if err := rows.Scan(&c.ID, &c.Number, &c.StartTime, &c.EndTime, &c.Status); err != nil {
			return nil, infra.WrapRepoErr("failed to scan conflicting booking", err)
		}
		conflicts = append(conflicts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read overlapping bookings", err)
	}
	return conflicts, nil
}

func (r *BookingRepository) FindExpiredPending(ctx context.Context, dbtx db.DBTX, createdBefore time.Time) ([]*booking.Booking, error) {
	q := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = $1 AND created_at <= $2
		ORDER BY created_at`

	rows, err := dbtx.Query(ctx, q, booking.StatusPending.String(), createdBefore)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query expired pending bookings", err)
	}
	defer rows.Close()

	var result []*booking.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan expired booking", err)
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read expired bookings", err)
	}
	return result, nil
}

func scanBooking(row pgx.Row) (*booking.Booking, error) {
	var (
		id, userID, boatID, merchantID          uuid.UUID
		assignedCrewID                          *uuid.UUID
		number, status, paymentStatus           string
		contactName, contactPhone               string
		userNotes, merchantNotes, cancelReason  *string
		startTime, endTime                      time.Time
		passengerCount                          int
		hourlyRateCents, totalAmountCents       int64
		createdAt, updatedAt                    time.Time
		confirmedAt, completedAt, cancelledAt   *time.Time
	)

	err := row.Scan(
		&id, &number, &userID, &boatID, &merchantID, &assignedCrewID,
		&startTime, &endTime, &passengerCount, &hourlyRateCents, &totalAmountCents,
		&status, &paymentStatus, &contactName, &contactPhone,
		&userNotes, &merchantNotes, &cancelReason,
		&createdAt, &updatedAt, &confirmedAt, &completedAt, &cancelledAt,
	)
	if err != nil {
		return nil, err
	}

	slot, err := booking.NewTimeSlot(startTime, endTime)
	if err != nil {
		return nil, err
	}
	rate, err := booking.NewMoney(hourlyRateCents)
	if err != nil {
		return nil, err
	}
	total, err := booking.NewMoney(totalAmountCents)
	if err != nil {
		return nil, err
	}
	contact, err := booking.NewContact(contactName, contactPhone)
	if err != nil {
		return nil, err
	}

	return booking.ReconstructBooking(
		id, number, userID, boatID, merchantID, assignedCrewID,
		slot, passengerCount, rate, total,
		booking.Status(status), booking.PaymentStatus(paymentStatus),
		contact,
		booking.NewNote(pgconv.Deref(userNotes)),
		booking.NewNote(pgconv.Deref(merchantNotes)),
		booking.NewNote(pgconv.Deref(cancelReason)),
		createdAt, updatedAt,
		confirmedAt, completedAt, cancelledAt,
	), nil
}
