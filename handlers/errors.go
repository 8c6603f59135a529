package handlers

import (
	"errors"
	"net/http"

	"machly/middleware"
	"machly/models"
	"machly/services/admin"
	"machly/services/booking"
	"machly/services/machine"
	"machly/services/notification"
	"machly/services/review"
	"machly/services/user"
	"machly/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var notFoundErrors = []error{
	booking.ErrNotFound,
	booking.ErrMachineNotFound,
	machine.ErrNotFound,
	machine.ErrEntryNotFound,
	review.ErrNotFound,
	review.ErrBookingNotFound,
	user.ErrNotFound,
	admin.ErrNotFound,
	notification.ErrNotFound,
}

var forbiddenErrors = []error{
	booking.ErrForbidden,
	machine.ErrForbidden,
	review.ErrForbidden,
}

var conflictErrors = []error{
	booking.ErrConflict,
	booking.ErrMachineInactive,
	booking.ErrAlreadyCheckedIn,
	machine.ErrConflict,
	machine.ErrReservedEntry,
	machine.ErrHasActiveBookings,
	review.ErrAlreadyReviewed,
	user.ErrEmailTaken,
	admin.ErrEmailTaken,
	admin.ErrLastAdmin,
}

var badRequestErrors = []error{
	booking.ErrInvalidRange,
	booking.ErrOwnMachine,
	booking.ErrFinishRequiresCheckout,
	booking.ErrCheckPhotosRequired,
	booking.ErrCheckinRequired,
	machine.ErrInvalid,
	review.ErrInvalidRating,
	review.ErrBookingNotFinished,
	user.ErrInvalid,
	user.ErrWrongPassword,
	admin.ErrInvalid,
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// respondError maps service errors to HTTP responses. Anything unmapped is
// treated as an internal error; its detail is logged, not leaked.
func respondError(c *gin.Context, err error) {
	var te *booking.TransitionError
	switch {
	case errors.As(err, &te):
		utils.JSONError(c, http.StatusConflict, te.Error(), "")
	case errors.Is(err, user.ErrInvalidCredentials):
		utils.JSONError(c, http.StatusUnauthorized, err.Error(), "")
	case isAny(err, notFoundErrors):
		utils.JSONError(c, http.StatusNotFound, err.Error(), "")
	case isAny(err, forbiddenErrors):
		utils.JSONError(c, http.StatusForbidden, err.Error(), "")
	case isAny(err, conflictErrors):
		utils.JSONError(c, http.StatusConflict, err.Error(), "")
	case isAny(err, badRequestErrors):
		utils.JSONError(c, http.StatusBadRequest, err.Error(), "")
	default:
		utils.GetLogger().Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Internal server error", "")
	}
}

// mustActor returns the authenticated actor or aborts with 401.
func mustActor(c *gin.Context) (models.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Not authenticated", "")
	}
	return actor, ok
}
