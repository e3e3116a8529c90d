package commands

import (
	"context"
	"log/slog"
	"time"

	"harborline/internal/domain/booking"
	"harborline/internal/pkg/clock"
	"harborline/internal/usecase/shared"

	"github.com/google/uuid"
)

// SweptBooking is one auto-cancelled row in a sweep report.
type SweptBooking struct {
	BookingID     uuid.UUID `json:"booking_id"`
	Number        string    `json:"booking_number"`
	BoatID        uuid.UUID `json:"boat_id"`
	MerchantID    uuid.UUID `json:"merchant_id"`
	WaitedMinutes float64   `json:"waited_minutes"`
}

type SweepResult struct {
	TotalExpiredFound int            `json:"total_expired_found"`
	CancelledCount    int            `json:"cancelled_count"`
	Cancelled         []SweptBooking `json:"cancelled"`
}

type SweepCommands interface {
	// RunSweep auto-cancels pending bookings the merchant sat on past the
	// confirmation timeout. Stateless and idempotent: each row funnels
	// through the ordinary cancel transition under a row lock, so a
	// booking confirmed between the scan and the sweep is left alone.
	RunSweep(ctx context.Context) (*SweepResult, error)
}

type sweepCommandsImpl struct {
	uow         shared.UnitOfWork
	publisher   shared.EventPublisher
	clock       clock.Clock
	rowDeadline time.Duration
}

func NewSweepCommands(uow shared.UnitOfWork, publisher shared.EventPublisher, clk clock.Clock, rowDeadline time.Duration) SweepCommands {
	return &sweepCommandsImpl{
		uow:         uow,
		publisher:   publisher,
		clock:       clk,
		rowDeadline: rowDeadline,
	}
}

func (c *sweepCommandsImpl) RunSweep(ctx context.Context) (*SweepResult, error) {
	now := c.clock.Now()
	threshold := now.Add(-booking.PendingConfirmTimeout)

	var expired []*booking.Booking
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		expired, err = tx.Bookings().FindExpiredPending(ctx, tx.DB(), threshold)
		return err
	})
	if err != nil {
		return nil, err
	}

	result := &SweepResult{
		TotalExpiredFound: len(expired),
		Cancelled:         []SweptBooking{},
	}

	// One bounded transaction per row; a poison row costs its deadline
	// and nothing more.
	for _, candidate := range expired {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		swept, err := c.sweepOne(ctx, candidate.ID(), now)
		if err != nil {
			slog.Error("sweep failed for booking, skipping",
				"booking_id", candidate.ID().String(),
				"error", err.Error())
			continue
		}
		if swept != nil {
			result.Cancelled = append(result.Cancelled, *swept)
			result.CancelledCount++
		}
	}

	slog.Info("sweep finished",
		"expired_found", result.TotalExpiredFound,
		"cancelled", result.CancelledCount)
	return result, nil
}

// sweepOne re-checks eligibility under the row lock and cancels. A nil,
// nil return means the row moved on since the scan and was skipped.
func (c *sweepCommandsImpl) sweepOne(parent context.Context, id uuid.UUID, now time.Time) (*SweptBooking, error) {
	ctx, cancel := context.WithTimeout(parent, c.rowDeadline)
	defer cancel()

	var swept *SweptBooking
	var b *booking.Booking
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		b, err = tx.Bookings().FindByIDForUpdate(ctx, tx.DB(), id)
		if err != nil {
			return err
		}
		if !b.EligibleForAutoCancel(now) {
			return nil
		}
		if _, err := b.Cancel(now, booking.AutoCancelReason); err != nil {
			return err
		}
		if err := tx.Bookings().Update(ctx, tx.DB(), b); err != nil {
			return err
		}
		swept = &SweptBooking{
			BookingID:     b.ID(),
			Number:        b.Number(),
			BoatID:        b.BoatID(),
			MerchantID:    b.MerchantID(),
			WaitedMinutes: b.WaitedFor(now).Minutes(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if swept != nil {
		c.publishCancelled(parent, b)
	}
	return swept, nil
}

func (c *sweepCommandsImpl) publishCancelled(ctx context.Context, b *booking.Booking) {
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
		Reason:         booking.AutoCancelReason,
		OccurredAt:     c.clock.Now(),
	}
	if err := c.publisher.Publish(ctx, shared.TopicBookingCancelled, event); err != nil {
		slog.Warn("failed to publish sweep cancellation event",
			"booking_id", b.ID().String(),
			"error", err.Error())
	}
}
