//go:build unit

package api_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"harborline/internal/domain/booking"
	"harborline/internal/domain/rating"
	"harborline/internal/handler/api"
	reqdto "harborline/internal/handler/dto/request"
	resdto "harborline/internal/handler/dto/response"
	"harborline/internal/pkg/errs"
	"harborline/internal/usecase/commands"
	"harborline/internal/usecase/queries"
	"harborline/internal/usecase/shared"
	"harborline/tests/common/builder"
	"harborline/tests/common/httptest"
	"harborline/tests/common/testutil"
	commandsmock "harborline/tests/mock/commands"
	queriesmock "harborline/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type BookingHandlerTestSuite struct {
	suite.Suite
	router           *gin.Engine
	mockCtrl         *gomock.Controller
	mockCommands     *commandsmock.MockBookingCommands
	mockRatings      *commandsmock.MockRatingCommands
	mockQueries      *queriesmock.MockBookingQueries
	mockAvailability *queriesmock.MockAvailabilityQueries
	handler          *api.BookingHandler
	userID           uuid.UUID
}

func (s *BookingHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	reqdto.RegisterCustomValidations()
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockBookingCommands(s.mockCtrl)
	s.mockRatings = commandsmock.NewMockRatingCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockBookingQueries(s.mockCtrl)
	s.mockAvailability = queriesmock.NewMockAvailabilityQueries(s.mockCtrl)
	s.handler = api.NewBookingHandler(s.mockCommands, s.mockRatings, s.mockQueries, s.mockAvailability)
	s.userID = uuid.New()

	// Mock authentication middleware for testing
	authMiddleware := func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Unauthorized"}})
			return
		}
		c.Set("user_id", s.userID)
		c.Set("user_role", shared.RoleUser)
		c.Next()
	}

	// Setup routes
	s.router.POST("/api/bookings/availability", s.handler.CheckAvailability)
	s.router.POST("/api/bookings", authMiddleware, s.handler.CreateBooking)
	s.router.GET("/api/bookings", authMiddleware, s.handler.ListMyBookings)
	s.router.GET("/api/bookings/:id", authMiddleware, s.handler.GetBooking)
	s.router.POST("/api/bookings/:id/cancel", authMiddleware, s.handler.CancelBooking)
	s.router.POST("/api/bookings/:id/rating", authMiddleware, s.handler.RateBooking)
}

func (s *BookingHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestBookingHandlerSuite(t *testing.T) {
	suite.Run(t, new(BookingHandlerTestSuite))
}

type bookingTestCase struct {
	name       string
	mutate     func(m map[string]any)
	expectCode int
}

// ================================================================================
// TestCreateBooking
// ================================================================================

func (s *BookingHandlerTestSuite) TestCreateBooking() {
	url := "/api/bookings"

	reqBody := builder.NewBookingBuilder().BuildCreateRequestDTO()
	returnView := builder.NewBookingBuilder().BuildView()

	s.Run("success: returns 201 Created for valid request", func() {
		s.mockCommands.EXPECT().Create(gomock.Any(), s.userID, gomock.Any()).
			Return(returnView, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token")

		var response resdto.BookingResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &response)
		s.Equal(returnView.ID, response.ID)
		s.Equal(returnView.Number, response.Number)
		s.Equal(string(booking.StatusPending), response.Status)
	})

	s.Run("error: 400 Bad Request on validation errors", func() {
		bound := []bookingTestCase{
			{name: "passenger count OK (1)", mutate: testutil.Field("passenger_count", 1), expectCode: http.StatusCreated},
			{name: "passenger count invalid (0)", mutate: testutil.Field("passenger_count", 0), expectCode: http.StatusBadRequest},
			{name: "passenger count invalid (-1)", mutate: testutil.Field("passenger_count", -1), expectCode: http.StatusBadRequest},
			{name: "user notes OK (1000 chars)", mutate: testutil.Field("user_notes", strings.Repeat("a", 1000)), expectCode: http.StatusCreated},
			{name: "user notes invalid (1001 chars)", mutate: testutil.Field("user_notes", strings.Repeat("a", 1001)), expectCode: http.StatusBadRequest},
			{name: "phone format invalid", mutate: testutil.Field("contact_phone", "not-a-phone"), expectCode: http.StatusBadRequest},
		}
		missing := []bookingTestCase{
			{name: "missing field: boat_id", mutate: testutil.Field("boat_id", nil), expectCode: http.StatusBadRequest},
			{name: "missing field: start_time", mutate: testutil.Field("start_time", nil), expectCode: http.StatusBadRequest},
			{name: "missing field: contact_name", mutate: testutil.Field("contact_name", nil), expectCode: http.StatusBadRequest},
			{name: "missing field: contact_phone", mutate: testutil.Field("contact_phone", nil), expectCode: http.StatusBadRequest},
		}

		for _, group := range [][]bookingTestCase{bound, missing} {
			for _, tc := range group {
				s.Run(tc.name, func() {
					requestMap := testutil.DtoMap(s.T(), reqBody, tc.mutate)

					if tc.expectCode == http.StatusCreated {
						s.mockCommands.EXPECT().Create(gomock.Any(), s.userID, gomock.Any()).
							Return(returnView, nil).Times(1)
					}
					rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, requestMap, "bearer-token")
					if tc.expectCode == http.StatusCreated {
						httptest.AssertSuccessResponse(s.T(), rec, tc.expectCode, nil)
					} else {
						s.Equal(tc.expectCode, rec.Code, "body: %s", rec.Body.String())
					}
				})
			}
		}
	})

	s.Run("error: 401 Unauthorized when unauthenticated", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Unauthorized")
	})

	s.Run("error: maps usecase errors to proper statuses", func() {
		testCases := []struct {
			name           string
			commandsError  error
			expectedStatus int
			expectedMsg    string
		}{
			{
				name: "boat interval conflict",
				commandsError: &commands.ConflictError{
					Resource:  shared.ResourceBoat,
					Conflicts: []shared.ConflictSummary{{ID: uuid.New()}},
				},
				expectedStatus: http.StatusConflict,
				expectedMsg:    "not available",
			},
			{
				name:           "capacity exceeded",
				commandsError:  &booking.CapacityExceededError{Requested: 9, Capacity: 8},
				expectedStatus: http.StatusUnprocessableEntity,
				expectedMsg:    "capacity",
			},
			{
				name:           "slot starts in the past",
				commandsError:  booking.ErrStartTimeInPast,
				expectedStatus: http.StatusUnprocessableEntity,
				expectedMsg:    "",
			},
			{
				name:           "boat not found",
				commandsError:  errs.ErrNotFound,
				expectedStatus: http.StatusNotFound,
				expectedMsg:    "not found",
			},
			{
				name:           "internal server error",
				commandsError:  errors.New("database error"),
				expectedStatus: http.StatusInternalServerError,
				expectedMsg:    "Internal server error",
			},
		}

		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.mockCommands.EXPECT().Create(gomock.Any(), s.userID, gomock.Any()).
					Return(nil, tc.commandsError).Times(1)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token")
				httptest.AssertErrorResponse(s.T(), rec, tc.expectedStatus, tc.expectedMsg)
			})
		}
	})
}

// ================================================================================
// TestGetBooking
// ================================================================================

func (s *BookingHandlerTestSuite) TestGetBooking() {
	bookingID := uuid.New()
	url := "/api/bookings/" + bookingID.String()

	returnView := builder.NewBookingBuilder().BuildView()
	returnView.ID = bookingID

	s.Run("success: returns 200 OK with BookingResponse", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), shared.Actor{UserID: s.userID, Role: shared.RoleUser}, bookingID).
			Return(returnView, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "bearer-token")

		var response resdto.BookingResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal(bookingID, response.ID)
		s.Equal(returnView.BoatName, response.BoatName)
	})

	s.Run("error: 400 Bad Request for invalid UUID", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/bookings/not-a-uuid", nil, "bearer-token")
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("error: 403 Forbidden for unrelated caller", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), gomock.Any(), bookingID).
			Return(nil, errs.ErrForbidden).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusForbidden, "not allowed")
	})

	s.Run("error: 404 Not Found for missing booking", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), gomock.Any(), bookingID).
			Return(nil, errs.ErrNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "not found")
	})
}

// ================================================================================
// TestListMyBookings
// ================================================================================

func (s *BookingHandlerTestSuite) TestListMyBookings() {
	url := "/api/bookings"

	items := []*queries.BookingListItem{
		builder.NewBookingBuilder().BuildListItem(),
		builder.NewBookingBuilder().BuildListItem(),
	}

	s.Run("success: returns 200 OK with page and next cursor", func() {
		next := &queries.Cursor{After: queries.EncodeAfterCursor(time.Now(), items[1].ID)}
		s.mockQueries.EXPECT().ListByUser(gomock.Any(), s.userID, gomock.Any(), nil, 0).
			Return(items, next, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "bearer-token")

		var response resdto.BookingListResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Len(response.Bookings, 2)
		s.Require().NotNil(response.NextCursor)
		s.Equal(next.After, *response.NextCursor)
	})

	s.Run("success: forwards status filter and cursor", func() {
		var gotFilter queries.ListFilter
		var gotCursor *queries.Cursor
		s.mockQueries.EXPECT().ListByUser(gomock.Any(), s.userID, gomock.Any(), gomock.Any(), 50).
			DoAndReturn(func(_ any, _ uuid.UUID, filter queries.ListFilter, after *queries.Cursor, _ int) ([]*queries.BookingListItem, *queries.Cursor, error) {
				gotFilter = filter
				gotCursor = after
				return nil, nil, nil
			}).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url+"?status=confirmed&after=abc&limit=50", nil, "bearer-token")

		var response resdto.BookingListResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Require().NotNil(gotFilter.Status)
		s.Equal("confirmed", *gotFilter.Status)
		s.Require().NotNil(gotCursor)
		s.Equal("abc", gotCursor.After)
		s.Nil(response.NextCursor)
	})

	s.Run("error: 400 Bad Request for unknown status", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url+"?status=bogus", nil, "bearer-token")
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("error: 400 Bad Request for limit above maximum", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url+"?limit=201", nil, "bearer-token")
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

// ================================================================================
// TestCancelBooking
// ================================================================================

func (s *BookingHandlerTestSuite) TestCancelBooking() {
	bookingID := uuid.New()
	url := "/api/bookings/" + bookingID.String() + "/cancel"

	returnView := builder.NewBookingBuilder().WithStatus(booking.StatusCancelled).BuildView()
	returnView.ID = bookingID

	s.Run("success: empty body falls back to the default reason", func() {
		s.mockCommands.EXPECT().Cancel(gomock.Any(), s.userID, bookingID, "cancelled by user").
			Return(returnView, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "bearer-token")

		var response resdto.BookingResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal(string(booking.StatusCancelled), response.Status)
	})

	s.Run("success: explicit reason is forwarded", func() {
		s.mockCommands.EXPECT().Cancel(gomock.Any(), s.userID, bookingID, "change of plans").
			Return(returnView, nil).Times(1)

		body := map[string]any{"reason": "change of plans"}
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, body, "bearer-token")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("error: 422 Unprocessable Entity past the cutoff", func() {
		cutoffAt := time.Now().Add(-30 * time.Minute)
		s.mockCommands.EXPECT().Cancel(gomock.Any(), s.userID, bookingID, gomock.Any()).
			Return(nil, &booking.CutoffError{CutoffAt: cutoffAt, Now: time.Now()}).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnprocessableEntity, "window has closed")
	})

	s.Run("error: 409 Conflict for a completed booking", func() {
		s.mockCommands.EXPECT().Cancel(gomock.Any(), s.userID, bookingID, gomock.Any()).
			Return(nil, &booking.InvalidTransitionError{From: booking.StatusCompleted, Intent: booking.IntentCancel}).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "Invalid booking state transition")
	})
}

// ================================================================================
// TestRateBooking
// ================================================================================

func (s *BookingHandlerTestSuite) TestRateBooking() {
	bookingID := uuid.New()
	url := "/api/bookings/" + bookingID.String() + "/rating"

	comment := "great crew"
	reqBody := reqdto.RateBookingRequest{Score: 5, Comment: &comment}
	returnView := &queries.RatingView{ID: uuid.New(), Score: 5, Comment: &comment, CreatedAt: time.Now()}

	s.Run("success: returns 201 Created with RatingResponse", func() {
		s.mockRatings.EXPECT().Rate(gomock.Any(), s.userID, bookingID, gomock.Any()).
			Return(returnView, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token")

		var response resdto.RatingResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &response)
		s.Equal(returnView.ID, response.ID)
		s.Equal(5, response.Score)
	})

	s.Run("error: 400 Bad Request on validation errors", func() {
		cases := []bookingTestCase{
			{name: "score boundary OK (1)", mutate: testutil.Field("score", 1), expectCode: http.StatusCreated},
			{name: "score boundary invalid (0)", mutate: testutil.Field("score", 0), expectCode: http.StatusBadRequest},
			{name: "score boundary invalid (6)", mutate: testutil.Field("score", 6), expectCode: http.StatusBadRequest},
			{name: "comment length invalid (1001 chars)", mutate: testutil.Field("comment", strings.Repeat("a", 1001)), expectCode: http.StatusBadRequest},
		}

		for _, tc := range cases {
			s.Run(tc.name, func() {
				requestMap := testutil.DtoMap(s.T(), reqBody, tc.mutate)

				if tc.expectCode == http.StatusCreated {
					s.mockRatings.EXPECT().Rate(gomock.Any(), s.userID, bookingID, gomock.Any()).
						Return(returnView, nil).Times(1)
				}
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, requestMap, "bearer-token")
				s.Equal(tc.expectCode, rec.Code, "body: %s", rec.Body.String())
			})
		}
	})

	s.Run("error: maps usecase errors to proper statuses", func() {
		testCases := []struct {
			name           string
			commandsError  error
			expectedStatus int
		}{
			{name: "already rated", commandsError: errs.Mark(rating.ErrAlreadyRated, errs.ErrConflictDetected), expectedStatus: http.StatusConflict},
			{name: "booking not eligible", commandsError: errs.Mark(rating.ErrBookingNotEligible, errs.ErrPolicyViolation), expectedStatus: http.StatusUnprocessableEntity},
			{name: "not the booking owner", commandsError: errs.ErrForbidden, expectedStatus: http.StatusForbidden},
			{name: "booking not found", commandsError: errs.ErrNotFound, expectedStatus: http.StatusNotFound},
		}

		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.mockRatings.EXPECT().Rate(gomock.Any(), s.userID, bookingID, gomock.Any()).
					Return(nil, tc.commandsError).Times(1)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token")
				httptest.AssertErrorResponse(s.T(), rec, tc.expectedStatus, "")
			})
		}
	})
}

// ================================================================================
// TestCheckAvailability
// ================================================================================

func (s *BookingHandlerTestSuite) TestCheckAvailability() {
	url := "/api/bookings/availability"

	boatID := uuid.New()
	start := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	end := start.Add(3 * time.Hour)
	reqBody := reqdto.CheckAvailabilityRequest{
		ResourceKind: "boat",
		ResourceID:   boatID,
		StartTime:    start,
		EndTime:      end,
	}

	s.Run("success: free interval needs no auth", func() {
		view := &queries.AvailabilityView{
			ResourceKind: "boat",
			ResourceID:   boatID,
			StartTime:    start,
			EndTime:      end,
			Available:    true,
			Conflicts:    []queries.ConflictView{},
		}
		s.mockAvailability.EXPECT().Check(gomock.Any(), shared.ResourceBoat, boatID, start, end, nil).
			Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")

		var response resdto.AvailabilityResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.True(response.Available)
		s.Empty(response.Reason)
		s.Empty(response.Conflicts)
	})

	s.Run("success: non-bookable boat carries a reason", func() {
		view := &queries.AvailabilityView{
			ResourceKind: "boat",
			ResourceID:   boatID,
			StartTime:    start,
			EndTime:      end,
			Available:    false,
			Reason:       "boat status is maintenance, not bookable",
			Conflicts:    []queries.ConflictView{},
		}
		s.mockAvailability.EXPECT().Check(gomock.Any(), shared.ResourceBoat, boatID, start, end, nil).
			Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")

		var response resdto.AvailabilityResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.False(response.Available)
		s.Equal("boat status is maintenance, not bookable", response.Reason)
		s.Empty(response.Conflicts)
	})

	s.Run("success: conflicts are listed", func() {
		view := &queries.AvailabilityView{
			ResourceKind: "boat",
			ResourceID:   boatID,
			StartTime:    start,
			EndTime:      end,
			Available:    false,
			Reason:       "time slot overlaps existing bookings",
			Conflicts: []queries.ConflictView{
				{ID: uuid.New(), Number: "BK20260901100000AAAAAAAA", StartTime: start, EndTime: end, Status: "confirmed"},
			},
		}
		s.mockAvailability.EXPECT().Check(gomock.Any(), shared.ResourceBoat, boatID, start, end, nil).
			Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")

		var response resdto.AvailabilityResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.False(response.Available)
		s.Equal("time slot overlaps existing bookings", response.Reason)
		s.Len(response.Conflicts, 1)
	})

	s.Run("error: 400 Bad Request for unknown resource kind", func() {
		requestMap := testutil.DtoMap(s.T(), reqBody, testutil.Field("resource_kind", "plane"))
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, requestMap, "")
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("error: 404 Not Found for unknown resource", func() {
		s.mockAvailability.EXPECT().Check(gomock.Any(), shared.ResourceBoat, boatID, start, end, nil).
			Return(nil, errs.ErrNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "not found")
	})
}
