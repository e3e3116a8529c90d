package shared

import (
	"context"
	"time"

	"harborline/internal/domain/booking"
	"harborline/internal/domain/rating"
	"harborline/internal/infra/db"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: read-committed transaction for ordinary write operations.
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinSerializable: the check-then-write paths (create, confirm,
	// assign-crew) run here so the overlap query and the row write commit
	// atomically; serialization failures are retried.
	WithinSerializable(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// CommandReads: validation reads outside any transaction.
	CommandReads() CommandReads
}

type Tx interface {
	Bookings() BookingRepository
	Boats() BoatRepository
	Crews() CrewRepository
	Ratings() RatingRepository
	DB() db.DBTX
}

type CommandReads interface {
	BoatByID(ctx context.Context, id uuid.UUID) (*BoatSnapshot, error)
	CrewByID(ctx context.Context, id uuid.UUID) (*CrewSnapshot, error)
	CrewByUserID(ctx context.Context, userID uuid.UUID) (*CrewSnapshot, error)
	MerchantByID(ctx context.Context, id uuid.UUID) (*MerchantSnapshot, error)
	MerchantByUserID(ctx context.Context, userID uuid.UUID) (*MerchantSnapshot, error)
}

type BookingRepository interface {
	Create(ctx context.Context, db db.DBTX, b *booking.Booking) error
	// FindByIDForUpdate locks the row so two concurrent transition
	// attempts serialize; the loser sees the moved status and fails with
	// an invalid-transition error.
	FindByIDForUpdate(ctx context.Context, db db.DBTX, id uuid.UUID) (*booking.Booking, error)
	Update(ctx context.Context, db db.DBTX, b *booking.Booking) error
	// FindOverlapping returns bookings in blocking statuses on the given
	// resource axis whose [start,end) interval intersects the probe.
	FindOverlapping(ctx context.Context, db db.DBTX, kind ResourceKind, resourceID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]ConflictSummary, error)
	// FindExpiredPending returns pending bookings created at or before the
	// threshold, oldest first.
	FindExpiredPending(ctx context.Context, db db.DBTX, createdBefore time.Time) ([]*booking.Booking, error)
}

type BoatRepository interface {
	FindByID(ctx context.Context, db db.DBTX, id uuid.UUID) (*BoatSnapshot, error)
	UpdateStatus(ctx context.Context, db db.DBTX, boatID uuid.UUID, status BoatStatus) error
}

type CrewRepository interface {
	FindByID(ctx context.Context, db db.DBTX, id uuid.UUID) (*CrewSnapshot, error)
	// RecalcRating recomputes the crew member's average as the unweighted
	// mean over every rating ever recorded and writes it back.
	RecalcRating(ctx context.Context, db db.DBTX, crewID uuid.UUID) error
}

type RatingRepository interface {
	Create(ctx context.Context, db db.DBTX, r *rating.ServiceRating) error
	ExistsForBooking(ctx context.Context, db db.DBTX, bookingID uuid.UUID) (bool, error)
}

// EventPublisher is the boundary to the notification collaborator. Topics
// are stable names; delivery is entirely external and best effort.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}
