package commands

import (
	"context"
	"log/slog"

	"harborline/internal/domain/booking"
	"harborline/internal/domain/rating"
	reqdto "harborline/internal/handler/dto/request"
	"harborline/internal/pkg/clock"
	"harborline/internal/pkg/errs"
	"harborline/internal/usecase/queries"
	"harborline/internal/usecase/shared"

	"github.com/google/uuid"
)

var ErrNoCrewToRate = errs.Mark(errs.New("booking has no assigned crew to rate"), errs.ErrPolicyViolation)

type RatingCommands interface {
	// Rate records the one-per-booking crew score. The insert is
	// transactional; the crew average recompute runs after commit and a
	// failure there never undoes the rating.
	Rate(ctx context.Context, userID, bookingID uuid.UUID, req reqdto.RateBookingRequest) (*queries.RatingView, error)
}

type ratingCommandsImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
}

func NewRatingCommands(uow shared.UnitOfWork, clk clock.Clock) RatingCommands {
	return &ratingCommandsImpl{uow: uow, clock: clk}
}

func (c *ratingCommandsImpl) Rate(ctx context.Context, userID, bookingID uuid.UUID, req reqdto.RateBookingRequest) (*queries.RatingView, error) {
	var (
		sr     *rating.ServiceRating
		crewID uuid.UUID
	)
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, err := tx.Bookings().FindByIDForUpdate(ctx, tx.DB(), bookingID)
		if err != nil {
			return err
		}
		if b.UserID() != userID {
			return ErrNotBookingOwner
		}
		if b.Status() != booking.StatusCompleted {
			return errs.Mark(rating.ErrBookingNotEligible, errs.ErrPolicyViolation)
		}
		if b.AssignedCrewID() == nil {
			return ErrNoCrewToRate
		}
		crewID = *b.AssignedCrewID()

		exists, err := tx.Ratings().ExistsForBooking(ctx, tx.DB(), bookingID)
		if err != nil {
			return err
		}
		if exists {
			return errs.Mark(rating.ErrAlreadyRated, errs.ErrConflictDetected)
		}

		sr, err = rating.NewServiceRating(bookingID, userID, crewID, req.Score, req.GetComment(), c.clock.Now())
		if err != nil {
			return err
		}
		return tx.Ratings().Create(ctx, tx.DB(), sr)
	})
	if err != nil {
		return nil, err
	}

	c.recalcCrewRating(ctx, crewID)

	var comment *string
	if sr.Comment() != "" {
		s := sr.Comment()
		comment = &s
	}
	return &queries.RatingView{
		ID:        sr.ID(),
		Score:     sr.Score().Value(),
		Comment:   comment,
		CreatedAt: sr.CreatedAt(),
	}, nil
}

func (c *ratingCommandsImpl) recalcCrewRating(ctx context.Context, crewID uuid.UUID) {
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Crews().RecalcRating(ctx, tx.DB(), crewID)
	})
	if err != nil {
		slog.Warn("failed to recompute crew rating",
			"crew_id", crewID.String(),
			"error", err.Error())
	}
}
