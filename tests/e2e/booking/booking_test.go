//go:build e2e

package booking_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"harborline/internal/domain/booking"
	reqdto "harborline/internal/handler/dto/request"
	resdto "harborline/internal/handler/dto/response"
	"harborline/internal/pkg/cookie"
	"harborline/internal/usecase/shared"
	"harborline/tests/common/authtest"
	"harborline/tests/common/builder"
	"harborline/tests/common/dbtest"
	"harborline/tests/common/httptest"
	"harborline/tests/e2e"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	bookingsURL     = "/api/bookings"
	availabilityURL = "/api/bookings/availability"
	merchantURL     = "/api/merchant/bookings"
	crewURL         = "/api/crew/bookings"
	sweepURL        = "/api/admin/sweep"
)

type BookingSuite struct {
	e2e.SharedSuite
	jwt *authtest.JWTHelper
}

func (s *BookingSuite) SetupSuite() {
	s.SharedSuite.SetupSuite()
	s.jwt = authtest.NewJWTHelper(s.Config.JWT)
}

func TestBookingSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(BookingSuite))
}

// marketplace is the seeded cast every scenario needs: one merchant with
// one boat and one crew member, plus an end user.
type marketplace struct {
	userID         uuid.UUID
	merchantUserID uuid.UUID
	crewUserID     uuid.UUID
	merchantID     uuid.UUID
	boatID         uuid.UUID
	crewID         uuid.UUID

	userToken     string
	merchantToken string
	crewToken     string
}

func (s *BookingSuite) seedMarketplace(t *testing.T) marketplace {
	t.Helper()

	m := marketplace{
		userID:         uuid.New(),
		merchantUserID: uuid.New(),
		crewUserID:     uuid.New(),
	}
	m.merchantID = dbtest.CreateTestMerchant(t, s.DB, m.merchantUserID, "Harbor Tours")
	m.boatID = dbtest.CreateTestBoat(t, s.DB, m.merchantID, "Sea Breeze", 8, 10000, "available")
	m.crewID = dbtest.CreateTestCrew(t, s.DB, m.merchantID, m.crewUserID, "Sam Deckhand")

	m.userToken = s.jwt.GenerateToken(t, m.userID, shared.RoleUser)
	m.merchantToken = s.jwt.GenerateToken(t, m.merchantUserID, shared.RoleMerchant)
	m.crewToken = s.jwt.GenerateToken(t, m.crewUserID, shared.RoleCrew)
	return m
}

func (s *BookingSuite) createBooking(t *testing.T, m marketplace, start, end time.Time) resdto.BookingResponse {
	t.Helper()

	reqBody := builder.NewBookingBuilder().
		With(func(b *builder.BookingBuilder) { b.BoatID = m.boatID }).
		WithSlot(start, end).
		BuildCreateRequestDTO()

	w := httptest.PerformRequest(t, s.Router, http.MethodPost, bookingsURL, reqBody, m.userToken)

	var created resdto.BookingResponse
	httptest.AssertSuccessResponse(t, w, http.StatusCreated, &created)
	return created
}

// =============================================================================
// TestBookingLifecycle - the full happy path through every role
// =============================================================================

func (s *BookingSuite) TestBookingLifecycle() {
	s.Run("Normal case: create, confirm, assign crew, start, complete, rate", func() {
		t := s.T()
		m := s.seedMarketplace(t)

		start := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
		created := s.createBooking(t, m, start, start.Add(3*time.Hour))

		require.Equal(t, string(booking.StatusPending), created.Status)
		require.Equal(t, int64(30000), created.TotalAmountCents, "3h at 10000 cents/h")
		require.Equal(t, m.merchantID, created.MerchantID, "merchant resolved from the boat")

		id := created.ID.String()

		// Merchant confirms with a note.
		note := "see you at pier 4"
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, merchantURL+"/"+id+"/confirm",
			reqdto.ConfirmBookingRequest{MerchantNotes: &note}, m.merchantToken)
		var confirmed resdto.BookingResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &confirmed)
		require.Equal(t, string(booking.StatusConfirmed), confirmed.Status)
		require.NotNil(t, confirmed.ConfirmedAt)

		// Merchant assigns the crew member.
		w = httptest.PerformRequest(t, s.Router, http.MethodPost, merchantURL+"/"+id+"/assign-crew",
			reqdto.AssignCrewRequest{CrewID: m.crewID}, m.merchantToken)
		var assigned resdto.BookingResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &assigned)
		require.NotNil(t, assigned.AssignedCrewID)
		require.Equal(t, m.crewID, *assigned.AssignedCrewID)

		// Crew starts, then completes the trip.
		w = httptest.PerformRequest(t, s.Router, http.MethodPost, crewURL+"/"+id+"/start", nil, m.crewToken)
		var started resdto.BookingResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &started)
		require.Equal(t, string(booking.StatusInProgress), started.Status)

		w = httptest.PerformRequest(t, s.Router, http.MethodPost, crewURL+"/"+id+"/complete", nil, m.crewToken)
		var completed resdto.BookingResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &completed)
		require.Equal(t, string(booking.StatusCompleted), completed.Status)
		require.NotNil(t, completed.CompletedAt)

		// Completion releases the boat.
		var boatStatus string
		err := s.DB.QueryRow(context.Background(), "SELECT status FROM boats WHERE id = $1", m.boatID).Scan(&boatStatus)
		require.NoError(t, err)
		require.Equal(t, "available", boatStatus)

		// User rates the crew.
		comment := "smooth trip"
		w = httptest.PerformRequest(t, s.Router, http.MethodPost, bookingsURL+"/"+id+"/rating",
			reqdto.RateBookingRequest{Score: 5, Comment: &comment}, m.userToken)
		var rated resdto.RatingResponse
		httptest.AssertSuccessResponse(t, w, http.StatusCreated, &rated)
		require.Equal(t, 5, rated.Score)

		var crewRating float64
		err = s.DB.QueryRow(context.Background(), "SELECT rating FROM crews WHERE id = $1", m.crewID).Scan(&crewRating)
		require.NoError(t, err)
		require.InDelta(t, 5.0, crewRating, 0.001, "crew average recomputed after rating")

		// The booking detail now embeds the rating.
		w = httptest.PerformRequest(t, s.Router, http.MethodGet, bookingsURL+"/"+id, nil, m.userToken)
		var detail resdto.BookingResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &detail)
		require.NotNil(t, detail.Rating)
		require.Equal(t, 5, detail.Rating.Score)
	})

	s.Run("Error case: second confirm on an overlapping slot loses the tie-break", func() {
		t := s.T()
		m := s.seedMarketplace(t)

		start := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
		first := s.createBooking(t, m, start, start.Add(3*time.Hour))
		second := s.createBooking(t, m, start.Add(time.Hour), start.Add(2*time.Hour))

		w := httptest.PerformRequest(t, s.Router, http.MethodPost,
			merchantURL+"/"+first.ID.String()+"/confirm", nil, m.merchantToken)
		httptest.AssertSuccessResponse(t, w, http.StatusOK, nil)

		w = httptest.PerformRequest(t, s.Router, http.MethodPost,
			merchantURL+"/"+second.ID.String()+"/confirm", nil, m.merchantToken)
		httptest.AssertErrorResponse(t, w, http.StatusConflict, "")

		var status string
		err := s.DB.QueryRow(context.Background(), "SELECT status FROM bookings WHERE id = $1", second.ID).Scan(&status)
		require.NoError(t, err)
		require.Equal(t, "pending", status, "losing booking stays pending")
	})

	s.Run("Error case: confirm by an unrelated merchant is forbidden", func() {
		t := s.T()
		m := s.seedMarketplace(t)

		otherMerchantUser := uuid.New()
		dbtest.CreateTestMerchant(t, s.DB, otherMerchantUser, "Rival Marina")
		otherToken := s.jwt.GenerateToken(t, otherMerchantUser, shared.RoleMerchant)

		start := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
		created := s.createBooking(t, m, start, start.Add(2*time.Hour))

		w := httptest.PerformRequest(t, s.Router, http.MethodPost,
			merchantURL+"/"+created.ID.String()+"/confirm", nil, otherToken)
		httptest.AssertErrorResponse(t, w, http.StatusForbidden, "")
	})

	s.Run("cookie token is accepted in place of the bearer header", func() {
		t := s.T()
		m := s.seedMarketplace(t)

		start := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
		created := s.createBooking(t, m, start, start.Add(2*time.Hour))

		cookies := []*http.Cookie{{Name: cookie.AccessTokenCookieName, Value: m.userToken}}
		w := httptest.PerformRequestWithCookies(t, s.Router, http.MethodGet,
			bookingsURL+"/"+created.ID.String(), nil, cookies)

		var got resdto.BookingResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &got)
		require.Equal(t, created.ID, got.ID)
	})
}

// =============================================================================
// TestCancellation - user-side cancellation and the two-hour cutoff
// =============================================================================

func (s *BookingSuite) TestCancellation() {
	s.Run("Normal case: user cancels well before the start", func() {
		t := s.T()
		m := s.seedMarketplace(t)

		start := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
		created := s.createBooking(t, m, start, start.Add(2*time.Hour))

		w := httptest.PerformRequest(t, s.Router, http.MethodPost,
			bookingsURL+"/"+created.ID.String()+"/cancel", nil, m.userToken)
		var cancelled resdto.BookingResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &cancelled)
		require.Equal(t, string(booking.StatusCancelled), cancelled.Status)
		require.NotNil(t, cancelled.CancelledAt)
		require.NotNil(t, cancelled.CancelReason)
	})

	s.Run("Error case: cancellation inside the cutoff window is rejected", func() {
		t := s.T()
		m := s.seedMarketplace(t)

		start := time.Now().Add(90 * time.Minute).UTC().Truncate(time.Second)
		created := s.createBooking(t, m, start, start.Add(2*time.Hour))

		w := httptest.PerformRequest(t, s.Router, http.MethodPost,
			bookingsURL+"/"+created.ID.String()+"/cancel", nil, m.userToken)
		httptest.AssertErrorResponse(t, w, http.StatusUnprocessableEntity, "window has closed")
	})

	s.Run("Error case: rejecting without a reason fails validation", func() {
		t := s.T()
		m := s.seedMarketplace(t)

		start := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
		created := s.createBooking(t, m, start, start.Add(2*time.Hour))

		w := httptest.PerformRequest(t, s.Router, http.MethodPost,
			merchantURL+"/"+created.ID.String()+"/reject", map[string]any{}, m.merchantToken)
		require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

		w = httptest.PerformRequest(t, s.Router, http.MethodPost,
			merchantURL+"/"+created.ID.String()+"/reject",
			reqdto.RejectBookingRequest{Reason: "boat in maintenance"}, m.merchantToken)
		var rejected resdto.BookingResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &rejected)
		require.Equal(t, string(booking.StatusRejected), rejected.Status)
		require.NotNil(t, rejected.CancelReason)
		require.Equal(t, "boat in maintenance", *rejected.CancelReason)
	})
}

// =============================================================================
// TestAvailability - the public calendar probe
// =============================================================================

func (s *BookingSuite) TestAvailability() {
	s.Run("Normal case: probe flips once a booking is confirmed", func() {
		t := s.T()
		m := s.seedMarketplace(t)

		start := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
		probe := reqdto.CheckAvailabilityRequest{
			ResourceKind: "boat",
			ResourceID:   m.boatID,
			StartTime:    start,
			EndTime:      start.Add(3 * time.Hour),
		}

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, availabilityURL, probe, "")
		var free resdto.AvailabilityResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &free)
		require.True(t, free.Available)
		require.Empty(t, free.Conflicts)

		created := s.createBooking(t, m, start, start.Add(3*time.Hour))

		// Pending bookings do not block.
		w = httptest.PerformRequest(t, s.Router, http.MethodPost, availabilityURL, probe, "")
		var stillFree resdto.AvailabilityResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &stillFree)
		require.True(t, stillFree.Available)

		wc := httptest.PerformRequest(t, s.Router, http.MethodPost,
			merchantURL+"/"+created.ID.String()+"/confirm", nil, m.merchantToken)
		httptest.AssertSuccessResponse(t, wc, http.StatusOK, nil)

		w = httptest.PerformRequest(t, s.Router, http.MethodPost, availabilityURL, probe, "")
		var taken resdto.AvailabilityResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &taken)
		require.False(t, taken.Available)
		require.Equal(t, "time slot overlaps existing bookings", taken.Reason)
		require.Len(t, taken.Conflicts, 1)
		require.Equal(t, created.ID, taken.Conflicts[0].ID)
	})

	s.Run("Normal case: a boat in maintenance is not bookable even with a clear calendar", func() {
		t := s.T()
		m := s.seedMarketplace(t)
		dockedID := dbtest.CreateTestBoat(t, s.DB, m.merchantID, "Dry Dock", 6, 8000, "maintenance")

		start := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
		probe := reqdto.CheckAvailabilityRequest{
			ResourceKind: "boat",
			ResourceID:   dockedID,
			StartTime:    start,
			EndTime:      start.Add(2 * time.Hour),
		}

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, availabilityURL, probe, "")
		var docked resdto.AvailabilityResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &docked)
		require.False(t, docked.Available)
		require.Equal(t, "boat status is maintenance, not bookable", docked.Reason)
		require.Empty(t, docked.Conflicts)
	})

	s.Run("Error case: probing an unknown boat returns 404", func() {
		t := s.T()
		s.seedMarketplace(t)

		start := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
		probe := reqdto.CheckAvailabilityRequest{
			ResourceKind: "boat",
			ResourceID:   uuid.New(),
			StartTime:    start,
			EndTime:      start.Add(time.Hour),
		}

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, availabilityURL, probe, "")
		httptest.AssertErrorResponse(t, w, http.StatusNotFound, "")
	})
}

// =============================================================================
// TestPriceImmutability - totals are frozen at creation time
// =============================================================================

func (s *BookingSuite) TestPriceImmutability() {
	s.Run("Normal case: a later rate change does not touch an existing booking", func() {
		t := s.T()
		m := s.seedMarketplace(t)

		start := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
		created := s.createBooking(t, m, start, start.Add(3*time.Hour))
		require.Equal(t, int64(30000), created.TotalAmountCents)

		_, err := s.DB.Exec(context.Background(),
			"UPDATE boats SET hourly_rate_cents = 99999 WHERE id = $1", m.boatID)
		require.NoError(t, err)

		w := httptest.PerformRequest(t, s.Router, http.MethodGet,
			bookingsURL+"/"+created.ID.String(), nil, m.userToken)
		var got resdto.BookingResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &got)
		require.Equal(t, int64(10000), got.HourlyRateCents, "rate snapshot keeps the price at booking time")
		require.Equal(t, int64(30000), got.TotalAmountCents)
	})
}

// =============================================================================
// TestListPagination - keyset paging over the caller's bookings
// =============================================================================

func (s *BookingSuite) TestListPagination() {
	s.Run("Normal case: limit plus cursor walks all pages", func() {
		t := s.T()
		m := s.seedMarketplace(t)

		base := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
		for i := 0; i < 3; i++ {
			s.createBooking(t, m, base.Add(time.Duration(i*4)*time.Hour), base.Add(time.Duration(i*4+2)*time.Hour))
		}

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, bookingsURL+"?limit=2", nil, m.userToken)
		var page1 resdto.BookingListResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &page1)
		require.Len(t, page1.Bookings, 2)
		require.NotNil(t, page1.NextCursor)

		w = httptest.PerformRequest(t, s.Router, http.MethodGet,
			bookingsURL+"?limit=2&after="+*page1.NextCursor, nil, m.userToken)
		var page2 resdto.BookingListResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &page2)
		require.Len(t, page2.Bookings, 1)

		seen := map[uuid.UUID]bool{}
		for _, b := range append(page1.Bookings, page2.Bookings...) {
			require.False(t, seen[b.ID], "booking repeated across pages")
			seen[b.ID] = true
		}
	})
}

// =============================================================================
// TestExpirySweep - auto-cancel of stale pending bookings
// =============================================================================

func (s *BookingSuite) TestExpirySweep() {
	s.Run("Normal case: admin sweep cancels only stale pending bookings", func() {
		t := s.T()
		m := s.seedMarketplace(t)
		adminToken := s.jwt.GenerateToken(t, uuid.New(), shared.RoleAdmin)

		start := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
		staleID := dbtest.CreateTestBooking(t, s.DB, m.userID, m.boatID, m.merchantID,
			"pending", start, start.Add(2*time.Hour), time.Now().Add(-30*time.Minute))
		fresh := s.createBooking(t, m, start.Add(4*time.Hour), start.Add(6*time.Hour))

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, sweepURL, nil, adminToken)
		var result resdto.SweepResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &result)
		require.Equal(t, 1, result.TotalExpiredFound)
		require.Equal(t, 1, result.CancelledCount)
		require.Len(t, result.Cancelled, 1)
		require.Equal(t, staleID, result.Cancelled[0].BookingID)
		require.GreaterOrEqual(t, result.Cancelled[0].WaitedMinutes, 29.0)

		var status, reason string
		err := s.DB.QueryRow(context.Background(),
			"SELECT status, cancel_reason FROM bookings WHERE id = $1", staleID).Scan(&status, &reason)
		require.NoError(t, err)
		require.Equal(t, "cancelled", status)
		require.Equal(t, booking.AutoCancelReason, reason)

		err = s.DB.QueryRow(context.Background(),
			"SELECT status FROM bookings WHERE id = $1", fresh.ID).Scan(&status)
		require.NoError(t, err)
		require.Equal(t, "pending", status, "fresh booking untouched")
	})

	s.Run("Error case: sweep requires the admin role", func() {
		t := s.T()
		m := s.seedMarketplace(t)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, sweepURL, nil, m.merchantToken)
		require.Equal(t, http.StatusForbidden, w.Code, w.Body.String())
	})
}

// =============================================================================
// TestMerchantStats - the merchant dashboard aggregate
// =============================================================================

func (s *BookingSuite) TestMerchantStats() {
	s.Run("Normal case: counts follow the bookings", func() {
		t := s.T()
		m := s.seedMarketplace(t)

		start := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
		created := s.createBooking(t, m, start, start.Add(2*time.Hour))
		s.createBooking(t, m, start.Add(6*time.Hour), start.Add(8*time.Hour))

		w := httptest.PerformRequest(t, s.Router, http.MethodPost,
			merchantURL+"/"+created.ID.String()+"/confirm", nil, m.merchantToken)
		httptest.AssertSuccessResponse(t, w, http.StatusOK, nil)

		w = httptest.PerformRequest(t, s.Router, http.MethodGet, merchantURL+"/stats", nil, m.merchantToken)
		var stats resdto.MerchantStatsResponse
		httptest.AssertSuccessResponse(t, w, http.StatusOK, &stats)
		require.Equal(t, int64(2), stats.TotalBookings)
		require.Equal(t, int64(1), stats.PendingCount)
		require.Equal(t, int64(1), stats.ConfirmedCount)
	})
}
