package api

import (
	"net/http"

	resdto "harborline/internal/handler/dto/response"
	"harborline/internal/handler/middleware"
	"harborline/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type CrewHandler struct {
	bookingCommands commands.BookingCommands
}

func NewCrewHandler(bookingCommands commands.BookingCommands) *CrewHandler {
	return &CrewHandler{bookingCommands: bookingCommands}
}

// @Summary Start booking service
// @Description Only the assigned crew member may start
// @Tags crew
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.BookingResponse
// @Failure 403 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /crew/bookings/{id}/start [post]
func (h *CrewHandler) StartService(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	view, err := h.bookingCommands.StartService(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookingView(view))
}

// @Summary Complete booking service
// @Tags crew
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.BookingResponse
// @Failure 403 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /crew/bookings/{id}/complete [post]
func (h *CrewHandler) CompleteService(c *gin.Context) {
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
