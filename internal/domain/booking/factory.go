package booking

import (
	"fmt"
	"strings"
	"time"

	"harborline/internal/pkg/clock"
	"harborline/internal/pkg/errs"

	"github.com/google/uuid"
)

// CapacityExceededError carries the limit so the caller can say exactly
// what was violated.
type CapacityExceededError struct {
	Requested int
	Capacity  int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("passenger count %d exceeds boat capacity %d", e.Requested, e.Capacity)
}

func (e *CapacityExceededError) Is(target error) bool {
	return target == errs.ErrPolicyViolation
}

// BoatSpec is the write-side snapshot of the boat a booking is created
// against. Rate and capacity are frozen into the booking here.
type BoatSpec struct {
	ID              uuid.UUID
	MerchantID      uuid.UUID
	Capacity        int
	HourlyRateCents int64
}

type Factory struct {
	clock clock.Clock
}

func NewFactory(clk clock.Clock) *Factory {
	return &Factory{clock: clk}
}

// NewBooking builds a pending booking, enforcing the creation-time
// invariants: the slot is well formed and strictly in the future, the
// party fits the boat, and the price is computed once from the boat's
// current rate.
func (f *Factory) NewBooking(
	boat BoatSpec,
	userID uuid.UUID,
	slot TimeSlot,
	passengerCount int,
	contact Contact,
	userNote Note,
) (*Booking, error) {
	now := f.clock.Now()
	if err := slot.ValidateFutureAt(now); err != nil {
		return nil, err
	}
	if passengerCount <= 0 || passengerCount > boat.Capacity {
		return nil, &CapacityExceededError{Requested: passengerCount, Capacity: boat.Capacity}
	}

	rate, err := NewMoney(boat.HourlyRateCents)
	if err != nil {
		return nil, err
	}

	return &Booking{
		id:             uuid.New(),
		number:         generateBookingNumber(now),
		userID:         userID,
		boatID:         boat.ID,
		merchantID:     boat.MerchantID,
		slot:           slot,
		passengerCount: passengerCount,
		hourlyRate:     rate,
		totalAmount:    rate.MulHours(slot),
		status:         StatusPending,
		paymentStatus:  PaymentUnpaid,
		contact:        contact,
		userNote:       userNote,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// generateBookingNumber yields e.g. BK20260831152304A4F09B21; the uuid
// fragment keeps same-second collisions from mattering and the timestamp
// keeps numbers roughly sortable for humans.
func generateBookingNumber(now time.Time) string {
	suffix := strings.ToUpper(uuid.New().String()[:8])
	return "BK" + now.Format("20060102150405") + suffix
}
