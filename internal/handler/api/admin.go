package api

import (
	"net/http"

	resdto "harborline/internal/handler/dto/response"
	"harborline/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	sweepCommands commands.SweepCommands
}

func NewAdminHandler(sweepCommands commands.SweepCommands) *AdminHandler {
	return &AdminHandler{sweepCommands: sweepCommands}
}

// @Summary Trigger expiry sweep
// @Description Runs the same sweep the background ticker runs
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.SweepResponse
// @Router /admin/sweep [post]
func (h *AdminHandler) TriggerSweep(c *gin.Context) {
	result, err := h.sweepCommands.RunSweep(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromSweepResult(result))
}
