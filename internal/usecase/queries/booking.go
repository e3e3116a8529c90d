package queries

import (
	"context"
	"time"

	"harborline/internal/pkg/errs"
	"harborline/internal/usecase/shared"

	"github.com/google/uuid"
)

// Read models (DTO for read side)
type BookingView struct {
	ID               uuid.UUID  `json:"id"`
	Number           string     `json:"booking_number"`
	UserID           uuid.UUID  `json:"user_id"`
	BoatID           uuid.UUID  `json:"boat_id"`
	BoatName         string     `json:"boat_name"`
	MerchantID       uuid.UUID  `json:"merchant_id"`
	MerchantName     string     `json:"merchant_name"`
	AssignedCrewID   *uuid.UUID `json:"assigned_crew_id,omitempty"`
	StartTime        time.Time  `json:"start_time"`
	EndTime          time.Time  `json:"end_time"`
	DurationHours    float64    `json:"duration_hours"`
	PassengerCount   int        `json:"passenger_count"`
	HourlyRateCents  int64      `json:"hourly_rate_cents"`
	TotalAmountCents int64      `json:"total_amount_cents"`
	Status           string     `json:"status"`
	PaymentStatus    string     `json:"payment_status"`
	ContactName      string     `json:"contact_name"`
	ContactPhone     string     `json:"contact_phone"`
	UserNotes        *string    `json:"user_notes,omitempty"`
	MerchantNotes    *string    `json:"merchant_notes,omitempty"`
	CancelReason     *string    `json:"cancel_reason,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	ConfirmedAt      *time.Time `json:"confirmed_at,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	CancelledAt      *time.Time `json:"cancelled_at,omitempty"`

	// Rating is present once the completed booking has been rated.
	Rating *RatingView `json:"rating,omitempty"`

	// Owner user IDs carried for authorization only, never serialized.
	MerchantUserID uuid.UUID  `json:"-"`
	CrewUserID     *uuid.UUID `json:"-"`
}

type RatingView struct {
	ID        uuid.UUID `json:"id"`
	Score     int       `json:"score"`
	Comment   *string   `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ListFilter narrows a booking list. Nil fields are ignored.
type ListFilter struct {
	Status *string
	BoatID *uuid.UUID
	From   *time.Time
	To     *time.Time
}

type BookingListItem struct {
	ID               uuid.UUID `json:"id"`
	Number           string    `json:"booking_number"`
	BoatID           uuid.UUID `json:"boat_id"`
	BoatName         string    `json:"boat_name"`
	StartTime        time.Time `json:"start_time"`
	EndTime          time.Time `json:"end_time"`
	PassengerCount   int       `json:"passenger_count"`
	TotalAmountCents int64     `json:"total_amount_cents"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
}

// MerchantStatsView aggregates the merchant's book of business. Revenue
// counts completed bookings only.
type MerchantStatsView struct {
	TotalBookings    int64 `json:"total_bookings"`
	PendingCount     int64 `json:"pending_count"`
	ConfirmedCount   int64 `json:"confirmed_count"`
	InProgressCount  int64 `json:"in_progress_count"`
	CompletedCount   int64 `json:"completed_count"`
	CancelledCount   int64 `json:"cancelled_count"`
	RejectedCount    int64 `json:"rejected_count"`
	RevenueCents     int64 `json:"revenue_cents"`
	UpcomingBookings int64 `json:"upcoming_bookings"`

	// CrewRatingAvg is the unweighted mean over the merchant's crew
	// averages, 0 when the merchant has no rated crew.
	CrewRatingAvg float64 `json:"crew_rating_avg"`
}

type BookingQueries interface {
	// GetByID enforces visibility: the booking's user, the owning
	// merchant, the assigned crew member and admins may read it.
	GetByID(ctx context.Context, actor shared.Actor, id uuid.UUID) (*BookingView, error)
	ListByUser(ctx context.Context, userID uuid.UUID, filter ListFilter, after *Cursor, limit int) ([]*BookingListItem, *Cursor, error)
	ListByMerchant(ctx context.Context, merchantID uuid.UUID, filter ListFilter, after *Cursor, limit int) ([]*BookingListItem, *Cursor, error)
	MerchantStats(ctx context.Context, merchantID uuid.UUID) (*MerchantStatsView, error)
}

type BookingViewRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BookingView, error)
	FindByUserFirstPage(ctx context.Context, userID uuid.UUID, filter ListFilter, limit int32) ([]*BookingListItem, error)
	FindByUserKeyset(ctx context.Context, userID uuid.UUID, filter ListFilter, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*BookingListItem, error)
	FindByMerchantFirstPage(ctx context.Context, merchantID uuid.UUID, filter ListFilter, limit int32) ([]*BookingListItem, error)
	FindByMerchantKeyset(ctx context.Context, merchantID uuid.UUID, filter ListFilter, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*BookingListItem, error)
	MerchantStats(ctx context.Context, merchantID uuid.UUID) (*MerchantStatsView, error)
}

type bookingQueriesImpl struct {
	repo BookingViewRepo
}

func NewBookingQueries(repo BookingViewRepo) BookingQueries {
	return &bookingQueriesImpl{repo: repo}
}

func (q *bookingQueriesImpl) GetByID(ctx context.Context, actor shared.Actor, id uuid.UUID) (*BookingView, error) {
	view, err := q.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canReadBooking(actor, view) {
		return nil, errs.Mark(errs.Newf("actor %s may not read booking %s", actor.UserID, id), errs.ErrForbidden)
	}
	return view, nil
}

func canReadBooking(actor shared.Actor, view *BookingView) bool {
	switch actor.Role {
	case shared.RoleAdmin:
		return true
	case shared.RoleUser:
		return view.UserID == actor.UserID
	case shared.RoleMerchant:
		return view.MerchantUserID == actor.UserID
	case shared.RoleCrew:
		return view.CrewUserID != nil && *view.CrewUserID == actor.UserID
	default:
		return false
	}
}

func (q *bookingQueriesImpl) ListByUser(ctx context.Context, userID uuid.UUID, filter ListFilter, after *Cursor, limit int) ([]*BookingListItem, *Cursor, error) {
	limit = ValidateLimit(limit)
	fetch := func(lastCreatedAt time.Time, lastID uuid.UUID, keyset bool) ([]*BookingListItem, error) {
		if keyset {
			return q.repo.FindByUserKeyset(ctx, userID, filter, lastCreatedAt, lastID, int32(limit))
		}
		return q.repo.FindByUserFirstPage(ctx, userID, filter, int32(limit))
	}
	return paginate(after, limit, fetch)
}

func (q *bookingQueriesImpl) ListByMerchant(ctx context.Context, merchantID uuid.UUID, filter ListFilter, after *Cursor, limit int) ([]*BookingListItem, *Cursor, error) {
	limit = ValidateLimit(limit)
	fetch := func(lastCreatedAt time.Time, lastID uuid.UUID, keyset bool) ([]*BookingListItem, error) {
		if keyset {
			return q.repo.FindByMerchantKeyset(ctx, merchantID, filter, lastCreatedAt, lastID, int32(limit))
		}
		return q.repo.FindByMerchantFirstPage(ctx, merchantID, filter, int32(limit))
	}
	return paginate(after, limit, fetch)
}

func (q *bookingQueriesImpl) MerchantStats(ctx context.Context, merchantID uuid.UUID) (*MerchantStatsView, error) {
	return q.repo.MerchantStats(ctx, merchantID)
}

// paginate runs one keyset page and encodes the next cursor when the page
// is full. Rows are ordered (created_at, id) descending on the read side.
func paginate(after *Cursor, limit int, fetch func(time.Time, uuid.UUID, bool) ([]*BookingListItem, error)) ([]*BookingListItem, *Cursor, error) {
	var (
		rows []*BookingListItem
		err  error
	)
	if after != nil && after.After != "" {
		lastCreatedAt, lastID, decodeErr := DecodeAfterCursor(after.After)
		if decodeErr != nil {
			return nil, nil, errs.Wrap(decodeErr, "invalid pagination cursor")
		}
		rows, err = fetch(lastCreatedAt, lastID, true)
	} else {
		rows, err = fetch(time.Time{}, uuid.Nil, false)
	}
	if err != nil {
		return nil, nil, err
	}

	var next *Cursor
	if len(rows) == limit {
		last := rows[len(rows)-1]
		next = &Cursor{After: EncodeAfterCursor(last.CreatedAt, last.ID)}
	}
	return rows, next, nil
}
