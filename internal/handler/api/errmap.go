package api

import (
	"errors"
	"net/http"

	"harborline/internal/domain/booking"
	"harborline/internal/domain/rating"
	"harborline/internal/handler/httperr"
	"harborline/internal/infra"
	"harborline/internal/pkg/errs"
	"harborline/internal/usecase/commands"
	"harborline/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

// respondError translates usecase errors into HTTP. Error kinds carry the
// status; detail structs carry the payload the client can act on.
func respondError(c *gin.Context, err error) {
	var (
		conflictErr   *commands.ConflictError
		transitionErr *booking.InvalidTransitionError
		cutoffErr     *booking.CutoffError
		capacityErr   *booking.CapacityExceededError
	)

	switch {
	case errors.Is(err, errs.ErrNotFound) || infra.IsKind(err, infra.KindNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Resource not found", nil)

	case errors.Is(err, errs.ErrForbidden):
		httperr.AbortWithError(c, http.StatusForbidden, err, "Operation not allowed for this caller", nil)

	case errors.As(err, &conflictErr):
		httperr.AbortWithError(c, http.StatusConflict, err, "Requested interval is not available", gin.H{
			"resource_kind": conflictErr.Resource,
			"conflicts":     conflictErr.Conflicts,
		})

	case errors.As(err, &transitionErr):
		httperr.AbortWithError(c, http.StatusConflict, err, "Invalid booking state transition", gin.H{
			"current_status": transitionErr.From,
			"intent":         transitionErr.Intent,
		})

	case errors.Is(err, errs.ErrConflictDetected) || infra.IsKind(err, infra.KindDuplicateKey):
		httperr.AbortWithError(c, http.StatusConflict, err, "Conflicting state", nil)

	case errors.As(err, &cutoffErr):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Cancellation window has closed", gin.H{
			"cutoff_at": cutoffErr.CutoffAt,
		})

	case errors.As(err, &capacityErr):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Passenger count exceeds boat capacity", gin.H{
			"capacity":  capacityErr.Capacity,
			"requested": capacityErr.Requested,
		})

	case errors.Is(err, errs.ErrPolicyViolation):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, err.Error(), nil)

	case isValidationError(err):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, err.Error(), nil)

	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}

func isValidationError(err error) bool {
	validationSentinels := []error{
		booking.ErrInvalidTimeSlot,
		booking.ErrStartTimeInPast,
		booking.ErrNegativeAmount,
		booking.ErrEmptyContactName,
		booking.ErrInvalidPhone,
		booking.ErrReasonRequired,
		rating.ErrInvalidScore,
		rating.ErrCommentTooLong,
		queries.ErrInvalidResourceKind,
	}
	for _, sentinel := range validationSentinels {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
