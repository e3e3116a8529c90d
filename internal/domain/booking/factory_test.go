//go:build unit

package booking_test

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"harborline/internal/domain/booking"
	"harborline/internal/pkg/clock"
	"harborline/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFactoryFixture(t *testing.T) (*booking.Factory, booking.BoatSpec, time.Time) {
	t.Helper()
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	factory := booking.NewFactory(clock.NewMockClock(now))
	boat := booking.BoatSpec{
		ID:              uuid.New(),
		MerchantID:      uuid.New(),
		Capacity:        8,
		HourlyRateCents: 12000,
	}
	return factory, boat, now
}

func TestFactoryNewBooking(t *testing.T) {
	factory, boat, now := newFactoryFixture(t)
	userID := uuid.New()
	contact, err := booking.NewContact("Alex Mariner", "+1 555 010 2030")
	require.NoError(t, err)

	t.Run("creates a pending booking with frozen pricing", func(t *testing.T) {
		slot, err := booking.NewTimeSlot(now.Add(24*time.Hour), now.Add(27*time.Hour))
		require.NoError(t, err)

		b, err := factory.NewBooking(boat, userID, slot, 4, contact, booking.NewNote("bring snorkels"))
		require.NoError(t, err)

		assert.Equal(t, booking.StatusPending, b.Status())
		assert.Equal(t, booking.PaymentUnpaid, b.PaymentStatus())
		assert.Equal(t, boat.ID, b.BoatID())
		assert.Equal(t, boat.MerchantID, b.MerchantID())
		assert.Equal(t, userID, b.UserID())
		assert.Nil(t, b.AssignedCrewID())
		assert.Equal(t, int64(12000), b.HourlyRate().Cents())
		assert.Equal(t, int64(36000), b.TotalAmount().Cents())
		assert.Equal(t, now, b.CreatedAt())
		assert.Equal(t, "bring snorkels", b.UserNote().String())
	})

	t.Run("booking number format", func(t *testing.T) {
		slot, err := booking.NewTimeSlot(now.Add(time.Hour), now.Add(2*time.Hour))
		require.NoError(t, err)

		b, err := factory.NewBooking(boat, userID, slot, 1, contact, booking.NewNote(""))
		require.NoError(t, err)

		assert.Regexp(t, regexp.MustCompile(`^BK20260901100000[0-9A-F]{8}$`), b.Number())
	})

	t.Run("numbers are unique within a second", func(t *testing.T) {
		slot, err := booking.NewTimeSlot(now.Add(time.Hour), now.Add(2*time.Hour))
		require.NoError(t, err)

		seen := map[string]bool{}
		for range 50 {
			b, err := factory.NewBooking(boat, userID, slot, 1, contact, booking.NewNote(""))
			require.NoError(t, err)
			assert.False(t, seen[b.Number()], "duplicate number %s", b.Number())
			seen[b.Number()] = true
		}
	})

	t.Run("slot starting now is rejected", func(t *testing.T) {
		slot, err := booking.NewTimeSlot(now, now.Add(time.Hour))
		require.NoError(t, err)

		_, err = factory.NewBooking(boat, userID, slot, 1, contact, booking.NewNote(""))
		assert.ErrorIs(t, err, booking.ErrStartTimeInPast)
	})

	t.Run("capacity boundary", func(t *testing.T) {
		slot, err := booking.NewTimeSlot(now.Add(time.Hour), now.Add(2*time.Hour))
		require.NoError(t, err)

		_, err = factory.NewBooking(boat, userID, slot, boat.Capacity, contact, booking.NewNote(""))
		assert.NoError(t, err)

		_, err = factory.NewBooking(boat, userID, slot, boat.Capacity+1, contact, booking.NewNote(""))
		assert.ErrorIs(t, err, errs.ErrPolicyViolation)

		var ce *booking.CapacityExceededError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, boat.Capacity, ce.Capacity)
		assert.Equal(t, boat.Capacity+1, ce.Requested)

		_, err = factory.NewBooking(boat, userID, slot, 0, contact, booking.NewNote(""))
		assert.ErrorIs(t, err, errs.ErrPolicyViolation)
	})
}
