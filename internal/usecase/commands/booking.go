package commands

import (
	"context"
	"fmt"
	"log/slog"

	"harborline/internal/domain/booking"
	reqdto "harborline/internal/handler/dto/request"
	"harborline/internal/pkg/clock"
	"harborline/internal/pkg/errs"
	"harborline/internal/usecase/queries"
	"harborline/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrBoatNotBookable    = errs.Mark(errs.New("boat is not open for booking"), errs.ErrPolicyViolation)
	ErrMerchantNotActive  = errs.Mark(errs.New("merchant is not accepting bookings"), errs.ErrPolicyViolation)
	ErrNotBookingOwner    = errs.Mark(errs.New("caller does not own this booking"), errs.ErrForbidden)
	ErrNotMerchantBooking = errs.Mark(errs.New("booking does not belong to this merchant"), errs.ErrForbidden)
	ErrNotAssignedCrew    = errs.Mark(errs.New("caller is not the assigned crew member"), errs.ErrForbidden)
	ErrCrewNotActive      = errs.Mark(errs.New("crew member is not active"), errs.ErrPolicyViolation)
	ErrCrewWrongMerchant  = errs.Mark(errs.New("crew member belongs to another merchant"), errs.ErrPolicyViolation)
)

// ConflictError reports the bookings blocking a requested interval. It
// satisfies errors.Is against errs.ErrConflictDetected.
type ConflictError struct {
	Resource  shared.ResourceKind
	Conflicts []shared.ConflictSummary
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s has %d conflicting booking(s) in the requested interval", e.Resource, len(e.Conflicts))
}

func (e *ConflictError) Is(target error) bool {
	return target == errs.ErrConflictDetected
}

type BookingCommands interface {
	Create(ctx context.Context, userID uuid.UUID, req reqdto.CreateBookingRequest) (*queries.BookingView, error)
	Confirm(ctx context.Context, merchantUserID, bookingID uuid.UUID, note string) (*queries.BookingView, error)
	Reject(ctx context.Context, merchantUserID, bookingID uuid.UUID, reason string) (*queries.BookingView, error)
	Cancel(ctx context.Context, userID, bookingID uuid.UUID, reason string) (*queries.BookingView, error)
	StartService(ctx context.Context, crewUserID, bookingID uuid.UUID) (*queries.BookingView, error)
	CompleteService(ctx context.Context, actor shared.Actor, bookingID uuid.UUID) (*queries.BookingView, error)
	AssignCrew(ctx context.Context, merchantUserID, bookingID uuid.UUID, req reqdto.AssignCrewRequest) (*queries.BookingView, error)
}

type bookingCommandsImpl struct {
	uow       shared.UnitOfWork
	factory   *booking.Factory
	viewRepo  queries.BookingViewRepo
	publisher shared.EventPublisher
	clock     clock.Clock
}

func NewBookingCommands(
	uow shared.UnitOfWork,
	factory *booking.Factory,
	viewRepo queries.BookingViewRepo,
	publisher shared.EventPublisher,
	clk clock.Clock,
) BookingCommands {
	return &bookingCommandsImpl{
		uow:       uow,
		factory:   factory,
		viewRepo:  viewRepo,
		publisher: publisher,
		clock:     clk,
	}
}

// Create books a boat for [start,end). The overlap check and the insert
// share one serializable transaction, so two racing requests for the same
// slot cannot both pass the check; the loser retries and sees the
// winner's row.
func (c *bookingCommandsImpl) Create(ctx context.Context, userID uuid.UUID, req reqdto.CreateBookingRequest) (*queries.BookingView, error) {
	slot, err := req.Slot()
	if err != nil {
		return nil, err
	}
	contact, err := req.Contact()
	if err != nil {
		return nil, err
	}

	boat, err := c.uow.CommandReads().BoatByID(ctx, req.BoatID)
	if err != nil {
		return nil, err
	}
	if boat.Status != shared.BoatAvailable {
		return nil, ErrBoatNotBookable
	}

	merchant, err := c.uow.CommandReads().MerchantByID(ctx, boat.MerchantID)
	if err != nil {
		return nil, err
	}
	if merchant.Status != shared.MerchantActive {
		return nil, ErrMerchantNotActive
	}

	b, err := c.factory.NewBooking(booking.BoatSpec{
		ID:              boat.ID,
		MerchantID:      boat.MerchantID,
		Capacity:        boat.Capacity,
		HourlyRateCents: boat.HourlyRateCents,
	}, userID, slot, req.PassengerCount, contact, req.Note())
	if err != nil {
		return nil, err
	}

	err = c.uow.WithinSerializable(ctx, func(ctx context.Context, tx shared.Tx) error {
		conflicts, err := tx.Bookings().FindOverlapping(ctx, tx.DB(), shared.ResourceBoat, boat.ID, slot.Start(), slot.End(), nil)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return &ConflictError{Resource: shared.ResourceBoat, Conflicts: conflicts}
		}
		return tx.Bookings().Create(ctx, tx.DB(), b)
	})
	if err != nil {
		return nil, err
	}

	c.publish(ctx, shared.TopicBookingCreated, b, "")
	return c.viewRepo.FindByID(ctx, b.ID())
}

// Confirm moves pending to confirmed. Availability is re-checked here
// because pending bookings do not block each other: the merchant's
// confirmation is the tie-break, and the second overlapping confirm must
// lose.
func (c *bookingCommandsImpl) Confirm(ctx context.Context, merchantUserID, bookingID uuid.UUID, note string) (*queries.BookingView, error) {
	merchant, err := c.uow.CommandReads().MerchantByUserID(ctx, merchantUserID)
	if err != nil {
		return nil, err
	}

	var b *booking.Booking
	err = c.uow.WithinSerializable(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err = tx.Bookings().FindByIDForUpdate(ctx, tx.DB(), bookingID)
		if err != nil {
			return err
		}
		if b.MerchantID() != merchant.ID {
			return ErrNotMerchantBooking
		}

		excl := b.ID()
		conflicts, err := tx.Bookings().FindOverlapping(ctx, tx.DB(), shared.ResourceBoat, b.BoatID(), b.Slot().Start(), b.Slot().End(), &excl)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return &ConflictError{Resource: shared.ResourceBoat, Conflicts: conflicts}
		}

		if _, err := b.Confirm(c.clock.Now(), booking.NewNote(note)); err != nil {
			return err
		}
		return tx.Bookings().Update(ctx, tx.DB(), b)
	})
	if err != nil {
		return nil, err
	}

	c.publish(ctx, shared.TopicBookingConfirmed, b, "")
	return c.viewRepo.FindByID(ctx, b.ID())
}

func (c *bookingCommandsImpl) Reject(ctx context.Context, merchantUserID, bookingID uuid.UUID, reason string) (*queries.BookingView, error) {
	merchant, err := c.uow.CommandReads().MerchantByUserID(ctx, merchantUserID)
	if err != nil {
		return nil, err
	}

	var b *booking.Booking
	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err = tx.Bookings().FindByIDForUpdate(ctx, tx.DB(), bookingID)
		if err != nil {
			return err
		}
		if b.MerchantID() != merchant.ID {
			return ErrNotMerchantBooking
		}
		if _, err := b.Reject(c.clock.Now(), reason); err != nil {
			return err
		}
		return tx.Bookings().Update(ctx, tx.DB(), b)
	})
	if err != nil {
		return nil, err
	}

	c.publish(ctx, shared.TopicBookingRejected, b, reason)
	return c.viewRepo.FindByID(ctx, b.ID())
}

// Cancel is the user-side cancellation: only the booking owner, only
// while pending or confirmed, and only up to the cutoff before the start.
func (c *bookingCommandsImpl) Cancel(ctx context.Context, userID, bookingID uuid.UUID, reason string) (*queries.BookingView, error) {
	now := c.clock.Now()

	var b *booking.Booking
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		b, err = tx.Bookings().FindByIDForUpdate(ctx, tx.DB(), bookingID)
		if err != nil {
			return err
		}
		if b.UserID() != userID {
			return ErrNotBookingOwner
		}
		// Transition validity first so a completed booking reports an
		// invalid transition rather than a missed deadline.
		if _, err := b.Cancel(now, reason); err != nil {
			return err
		}
		if err := b.CanUserCancel(now); err != nil {
			return err
		}
		return tx.Bookings().Update(ctx, tx.DB(), b)
	})
	if err != nil {
		return nil, err
	}

	c.publish(ctx, shared.TopicBookingCancelled, b, reason)
	return c.viewRepo.FindByID(ctx, b.ID())
}

func (c *bookingCommandsImpl) StartService(ctx context.Context, crewUserID, bookingID uuid.UUID) (*queries.BookingView, error) {
	crew, err := c.uow.CommandReads().CrewByUserID(ctx, crewUserID)
	if err != nil {
		return nil, err
	}

	var b *booking.Booking
	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err = tx.Bookings().FindByIDForUpdate(ctx, tx.DB(), bookingID)
		if err != nil {
			return err
		}
		if b.AssignedCrewID() == nil || *b.AssignedCrewID() != crew.ID {
			return ErrNotAssignedCrew
		}
		if _, err := b.StartService(c.clock.Now()); err != nil {
			return err
		}
		return tx.Bookings().Update(ctx, tx.DB(), b)
	})
	if err != nil {
		return nil, err
	}

	c.publish(ctx, shared.TopicBookingStarted, b, "")
	return c.viewRepo.FindByID(ctx, b.ID())
}

// CompleteService finishes an in-progress booking and releases the boat
// back to available in the same transaction. Either the owning merchant
// or the assigned crew member may complete.
func (c *bookingCommandsImpl) CompleteService(ctx context.Context, actor shared.Actor, bookingID uuid.UUID) (*queries.BookingView, error) {
	var b *booking.Booking
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		b, err = tx.Bookings().FindByIDForUpdate(ctx, tx.DB(), bookingID)
		if err != nil {
			return err
		}
		if err := c.authorizeComplete(ctx, actor, b); err != nil {
			return err
		}

		eff, err := b.CompleteService(c.clock.Now())
		if err != nil {
			return err
		}
		if err := tx.Bookings().Update(ctx, tx.DB(), b); err != nil {
			return err
		}
		if eff.ReleasesBoat {
			return tx.Boats().UpdateStatus(ctx, tx.DB(), b.BoatID(), shared.BoatAvailable)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.publish(ctx, shared.TopicBookingCompleted, b, "")
	return c.viewRepo.FindByID(ctx, b.ID())
}

func (c *bookingCommandsImpl) authorizeComplete(ctx context.Context, actor shared.Actor, b *booking.Booking) error {
	switch actor.Role {
	case shared.RoleMerchant:
		merchant, err := c.uow.CommandReads().MerchantByUserID(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if b.MerchantID() != merchant.ID {
			return ErrNotMerchantBooking
		}
		return nil
	case shared.RoleCrew:
		crew, err := c.uow.CommandReads().CrewByUserID(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if b.AssignedCrewID() == nil || *b.AssignedCrewID() != crew.ID {
			return ErrNotAssignedCrew
		}
		return nil
	default:
		return errs.Mark(errs.Newf("role %s may not complete bookings", actor.Role), errs.ErrForbidden)
	}
}

// AssignCrew staffs (or restaffs) a confirmed booking. The crew schedule
// check and the write share a serializable transaction for the same
// reason the create path does.
func (c *bookingCommandsImpl) AssignCrew(ctx context.Context, merchantUserID, bookingID uuid.UUID, req reqdto.AssignCrewRequest) (*queries.BookingView, error) {
	reads := c.uow.CommandReads()
	merchant, err := reads.MerchantByUserID(ctx, merchantUserID)
	if err != nil {
		return nil, err
	}
	crew, err := reads.CrewByID(ctx, req.CrewID)
	if err != nil {
		return nil, err
	}
	if crew.MerchantID != merchant.ID {
		return nil, ErrCrewWrongMerchant
	}
	if crew.Status != shared.CrewActive {
		return nil, ErrCrewNotActive
	}

	var b *booking.Booking
	err = c.uow.WithinSerializable(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err = tx.Bookings().FindByIDForUpdate(ctx, tx.DB(), bookingID)
		if err != nil {
			return err
		}
		if b.MerchantID() != merchant.ID {
			return ErrNotMerchantBooking
		}

		excl := b.ID()
		conflicts, err := tx.Bookings().FindOverlapping(ctx, tx.DB(), shared.ResourceCrew, crew.ID, b.Slot().Start(), b.Slot().End(), &excl)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return &ConflictError{Resource: shared.ResourceCrew, Conflicts: conflicts}
		}

		if err := b.AssignCrew(crew.ID, c.clock.Now(), booking.NewNote(req.Note())); err != nil {
			return err
		}
		return tx.Bookings().Update(ctx, tx.DB(), b)
	})
	if err != nil {
		return nil, err
	}

	c.publish(ctx, shared.TopicBookingCrewAssigned, b, "")
	return c.viewRepo.FindByID(ctx, b.ID())
}

// publish is best effort; a broker failure is logged and never fails the
// committed operation.
func (c *bookingCommandsImpl) publish(ctx context.Context, topic string, b *booking.Booking, reason string) {
	event := shared.BookingEvent{
		BookingID:      b.ID(),
		Number:         b.Number(),
		UserID:         b.UserID(),
		BoatID:         b.BoatID(),
		MerchantID:     b.MerchantID(),
		AssignedCrewID: b.AssignedCrewID(),
		StartTime:      b.Slot().Start(),
		EndTime:        b.Slot().End(),
		Status:         b.Status().String(),
		Reason:         reason,
		OccurredAt:     c.clock.Now(),
	}
	if err := c.publisher.Publish(ctx, topic, event); err != nil {
		slog.Warn("failed to publish booking event",
			"topic", topic,
			"booking_id", b.ID().String(),
			"error", err.Error())
	}
}
