package api

import (
	"net/http"

	reqdto "harborline/internal/handler/dto/request"
	resdto "harborline/internal/handler/dto/response"
	"harborline/internal/handler/middleware"
	"harborline/internal/usecase/commands"
	"harborline/internal/usecase/queries"
	"harborline/internal/usecase/shared"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MerchantHandler serves the merchant-side booking operations. The
// merchant identity is always resolved from the authenticated user, never
// taken from the request.
type MerchantHandler struct {
	bookingCommands commands.BookingCommands
	bookingQueries  queries.BookingQueries
	reads           shared.CommandReads
}

func NewMerchantHandler(
	bookingCommands commands.BookingCommands,
	bookingQueries queries.BookingQueries,
	reads shared.CommandReads,
) *MerchantHandler {
	return &MerchantHandler{
		bookingCommands: bookingCommands,
		bookingQueries:  bookingQueries,
		reads:           reads,
	}
}

// @Summary List merchant bookings
// @Tags merchant
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.BookingListResponse
// @Router /merchant/bookings [get]
func (h *MerchantHandler) ListBookings(c *gin.Context) {
	merchantID, ok := h.resolveMerchant(c)
	if !ok {
		return
	}

	query, filter, cursor, ok := bindListQuery(c)
	if !ok {
		return
	}

	items, next, err := h.bookingQueries.ListByMerchant(c.Request.Context(), merchantID, filter, cursor, query.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookingList(items, next))
}

// @Summary Merchant booking stats
// @Tags merchant
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.MerchantStatsResponse
// @Router /merchant/bookings/stats [get]
func (h *MerchantHandler) Stats(c *gin.Context) {
	merchantID, ok := h.resolveMerchant(c)
	if !ok {
		return
	}

	stats, err := h.bookingQueries.MerchantStats(c.Request.Context(), merchantID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromMerchantStats(stats))
}

// @Summary Confirm booking
// @Description Re-checks boat availability; a second overlapping confirm fails
// @Tags merchant
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.ConfirmBookingRequest false "Optional merchant notes"
// @Success 200 {object} resdto.BookingResponse
// @Failure 409 {object} httperr.Response
// @Router /merchant/bookings/{id}/confirm [post]
func (h *MerchantHandler) ConfirmBooking(c *gin.Context) {
	userID, id, ok := h.callerAndID(c)
	if !ok {
		return
	}

	var req reqdto.ConfirmBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	view, err := h.bookingCommands.Confirm(c.Request.Context(), userID, id, req.Note())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookingView(view))
}

// @Summary Reject booking
// @Tags merchant
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.RejectBookingRequest true "Rejection reason"
// @Success 200 {object} resdto.BookingResponse
// @Failure 409 {object} httperr.Response
// @Router /merchant/bookings/{id}/reject [post]
func (h *MerchantHandler) RejectBooking(c *gin.Context) {
	userID, id, ok := h.callerAndID(c)
	if !ok {
		return
	}

	var req reqdto.RejectBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	view, err := h.bookingCommands.Reject(c.Request.Context(), userID, id, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookingView(view))
}

// @Summary Complete booking service
// @Tags merchant
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.BookingResponse
// @Failure 409 {object} httperr.Response
// @Router /merchant/bookings/{id}/complete [post]
func (h *MerchantHandler) CompleteBooking(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	view, err := h.bookingCommands.CompleteService(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookingView(view))
}

// @Summary Assign crew to booking
// @Tags merchant
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.AssignCrewRequest true "Crew assignment"
// @Success 200 {object} resdto.BookingResponse
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /merchant/bookings/{id}/assign-crew [post]
func (h *MerchantHandler) AssignCrew(c *gin.Context) {
	userID, id, ok := h.callerAndID(c)
	if !ok {
		return
	}

	var req reqdto.AssignCrewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	view, err := h.bookingCommands.AssignCrew(c.Request.Context(), userID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookingView(view))
}

func (h *MerchantHandler) callerAndID(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return uuid.Nil, uuid.Nil, false
	}
	id, ok := parseIDParam(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return userID, id, true
}

func (h *MerchantHandler) resolveMerchant(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return uuid.Nil, false
	}
	merchant, err := h.reads.MerchantByUserID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return uuid.Nil, false
	}
	return merchant.ID, true
}
