package readstore

import (
	"context"
	"errors"
	"time"

	"harborline/internal/domain/booking"
	"harborline/internal/infra"
	"harborline/internal/infra/db"
	"harborline/internal/usecase/queries"
	"harborline/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// BookingReadStore serves the booking view queries and the public
// availability probe. It implements queries.BookingViewRepo and
// queries.AvailabilityRepo.
type BookingReadStore struct {
	db db.DBTX
}

func NewBookingReadStore(dbtx db.DBTX) *BookingReadStore {
	return &BookingReadStore{db: dbtx}
}

func (r *BookingReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.BookingView, error) {
	const q = `
		SELECT
			bk.id, bk.booking_number, bk.user_id,
			bk.boat_id, bt.name AS boat_name,
			bk.merchant_id, m.name AS merchant_name, m.user_id AS merchant_user_id,
			bk.assigned_crew_id, c.user_id AS crew_user_id,
			bk.start_time, bk.end_time, bk.duration_hours, bk.passenger_count,
			bk.hourly_rate_cents, bk.total_amount_cents,
			bk.status, bk.payment_status,
			bk.contact_name, bk.contact_phone,
			bk.user_notes, bk.merchant_notes, bk.cancel_reason,
			bk.created_at, bk.updated_at, bk.confirmed_at, bk.completed_at, bk.cancelled_at,
			sr.id, sr.score, sr.comment, sr.created_at
		FROM bookings bk
		JOIN boats bt ON bt.id = bk.boat_id
		JOIN merchants m ON m.id = bk.merchant_id
		LEFT JOIN crews c ON c.id = bk.assigned_crew_id
		LEFT JOIN service_ratings sr ON sr.booking_id = bk.id
		WHERE bk.id = $1`

	var (
		v               queries.BookingView
		ratingID        *uuid.UUID
		ratingScore     *int
		ratingComment   *string
		ratingCreatedAt *time.Time
	)
	err := r.db.QueryRow(ctx, q, id).Scan(
		&v.ID, &v.Number, &v.UserID,
		&v.BoatID, &v.BoatName,
		&v.MerchantID, &v.MerchantName, &v.MerchantUserID,
		&v.AssignedCrewID, &v.CrewUserID,
		&v.StartTime, &v.EndTime, &v.DurationHours, &v.PassengerCount,
		&v.HourlyRateCents, &v.TotalAmountCents,
		&v.Status, &v.PaymentStatus,
		&v.ContactName, &v.ContactPhone,
		&v.UserNotes, &v.MerchantNotes, &v.CancelReason,
		&v.CreatedAt, &v.UpdatedAt, &v.ConfirmedAt, &v.CompletedAt, &v.CancelledAt,
		&ratingID, &ratingScore, &ratingComment, &ratingCreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find booking view", err)
	}

	if ratingID != nil {
		v.Rating = &queries.RatingView{
			ID:        *ratingID,
			Score:     *ratingScore,
			Comment:   ratingComment,
			CreatedAt: *ratingCreatedAt,
		}
	}
	return &v, nil
}

// List queries share one select with fixed placeholder positions:
// $1 owner, $2 status, $3 boat, $4 from, $5 to, then keyset args when
// paging past the first page, limit last.
const bookingListSelect = `
	SELECT
		bk.id, bk.booking_number, bk.boat_id, bt.name AS boat_name,
		bk.start_time, bk.end_time, bk.passenger_count,
		bk.total_amount_cents, bk.status, bk.created_at
	FROM bookings bk
	JOIN boats bt ON bt.id = bk.boat_id`

const bookingListFilters = `
	  AND ($2::text IS NULL OR bk.status = $2)
	  AND ($3::uuid IS NULL OR bk.boat_id = $3)
	  AND ($4::timestamptz IS NULL OR bk.start_time >= $4)
	  AND ($5::timestamptz IS NULL OR bk.start_time < $5)`

const bookingListOrder = `
	ORDER BY bk.created_at DESC, bk.id DESC`

func (r *BookingReadStore) FindByUserFirstPage(ctx context.Context, userID uuid.UUID, filter queries.ListFilter, limit int32) ([]*queries.BookingListItem, error) {
	q := bookingListSelect + `
		WHERE bk.user_id = $1` + bookingListFilters + bookingListOrder + `
		LIMIT $6`
	return r.scanListItems(ctx, "failed to list user bookings", q,
		userID, filter.Status, filter.BoatID, filter.From, filter.To, limit)
}

func (r *BookingReadStore) FindByUserKeyset(ctx context.Context, userID uuid.UUID, filter queries.ListFilter, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*queries.BookingListItem, error) {
	q := bookingListSelect + `
		WHERE bk.user_id = $1` + bookingListFilters + `
		  AND (bk.created_at, bk.id) < ($6, $7)` + bookingListOrder + `
		LIMIT $8`
	return r.scanListItems(ctx, "failed to list user bookings", q,
		userID, filter.Status, filter.BoatID, filter.From, filter.To, lastCreatedAt, lastID, limit)
}

func (r *BookingReadStore) FindByMerchantFirstPage(ctx context.Context, merchantID uuid.UUID, filter queries.ListFilter, limit int32) ([]*queries.BookingListItem, error) {
	q := bookingListSelect + `
		WHERE bk.merchant_id = $1` + bookingListFilters + bookingListOrder + `
		LIMIT $6`
	return r.scanListItems(ctx, "failed to list merchant bookings", q,
		merchantID, filter.Status, filter.BoatID, filter.From, filter.To, limit)
}

func (r *BookingReadStore) FindByMerchantKeyset(ctx context.Context, merchantID uuid.UUID, filter queries.ListFilter, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*queries.BookingListItem, error) {
	q := bookingListSelect + `
		WHERE bk.merchant_id = $1` + bookingListFilters + `
		  AND (bk.created_at, bk.id) < ($6, $7)` + bookingListOrder + `
		LIMIT $8`
	return r.scanListItems(ctx, "failed to list merchant bookings", q,
		merchantID, filter.Status, filter.BoatID, filter.From, filter.To, lastCreatedAt, lastID, limit)
}

func (r *BookingReadStore) scanListItems(ctx context.Context, failMsg, q string, args ...any) ([]*queries.BookingListItem, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, infra.WrapRepoErr(failMsg, err)
	}
	defer rows.Close()

	var result []*queries.BookingListItem
	for rows.Next() {
		var it queries.BookingListItem
		if err := rows.Scan(
			&it.ID, &it.Number, &it.BoatID, &it.BoatName,
			&it.StartTime, &it.EndTime, &it.PassengerCount,
			&it.TotalAmountCents, &it.Status, &it.CreatedAt,
		); err != nil {
			return nil, infra.WrapRepoErr(failMsg, err)
		}
		result = append(result, &it)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr(failMsg, err)
	}
	return result, nil
}

// MerchantStats runs one aggregate pass over the merchant's bookings.
// now() bounds upcoming on the database clock so the count agrees with
// what a concurrent insert would see.
func (r *BookingReadStore) MerchantStats(ctx context.Context, merchantID uuid.UUID) (*queries.MerchantStatsView, error) {
	const q = `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'confirmed'),
			COUNT(*) FILTER (WHERE status = 'in_progress'),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COUNT(*) FILTER (WHERE status = 'cancelled'),
			COUNT(*) FILTER (WHERE status = 'rejected'),
			COALESCE(SUM(total_amount_cents) FILTER (WHERE status = 'completed'), 0),
			COUNT(*) FILTER (WHERE status IN ('confirmed', 'in_progress') AND end_time > now()),
			COALESCE((
				SELECT ROUND(AVG(rating)::numeric, 2)::float8
				FROM crews
				WHERE merchant_id = $1 AND rating > 0
			), 0)
		FROM bookings
		WHERE merchant_id = $1`

	var v queries.MerchantStatsView
	err := r.db.QueryRow(ctx, q, merchantID).Scan(
		&v.TotalBookings,
		&v.PendingCount, &v.ConfirmedCount, &v.InProgressCount,
		&v.CompletedCount, &v.CancelledCount, &v.RejectedCount,
		&v.RevenueCents, &v.UpcomingBookings, &v.CrewRatingAvg,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to aggregate merchant stats", err)
	}
	return &v, nil
}

func (r *BookingReadStore) ResourceStatus(ctx context.Context, kind shared.ResourceKind, id uuid.UUID) (string, bool, error) {
	table := "boats"
	if kind == shared.ResourceCrew {
		table = "crews"
	}

	var status string
	q := `SELECT status FROM ` + table + ` WHERE id = $1`
	err := r.db.QueryRow(ctx, q, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, infra.WrapRepoErr("failed to read resource status", err)
	}
	return status, true, nil
}

func (r *BookingReadStore) FindConflicts(ctx context.Context, kind shared.ResourceKind, resourceID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]queries.ConflictView, error) {
	resourceColumn := "boat_id"
	if kind == shared.ResourceCrew {
		resourceColumn = "assigned_crew_id"
	}

	statuses := make([]string, 0, 2)
	for _, s := range booking.BlockingStatuses() {
		statuses = append(statuses, s.String())
	}

	q := `
		SELECT id, booking_number, start_time, end_time, status
		FROM bookings
		WHERE ` + resourceColumn + ` = $1
		  AND status = ANY($2)
		  AND start_time < $3
		  AND end_time > $4
		  AND ($5::uuid IS NULL OR id <> $5)
		ORDER BY start_time`

	rows, err := r.db.Query(ctx, q, resourceID, statuses, end, start, excludeID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query conflicts", err)
	}
	defer rows.Close()

	var conflicts []queries.ConflictView
	for rows.Next() {
		var c queries.ConflictView
		if err := rows.Scan(&c.ID, &c.Number, &c.StartTime, &c.EndTime, &c.Status); err != nil {
			return nil, infra.WrapRepoErr("failed to scan conflict", err)
		}
		conflicts = append(conflicts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read conflicts", err)
	}
	return conflicts, nil
}
