package http

import (
	"errors"
	"net/http"

	"meal-order-service/internal/domain"
	"meal-order-service/internal/logging"

	"github.com/gin-gonic/gin"
)

var errorCodes = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrOrderingClosed, http.StatusConflict, "ORDERING_CLOSED"},
	{domain.ErrCutoffPassed, http.StatusConflict, "CUTOFF_PASSED"},
	{domain.ErrDuplicateOrder, http.StatusConflict, "DUPLICATE_ORDER"},
	{domain.ErrNotCancellable, http.StatusConflict, "NOT_CANCELLABLE"},
	{domain.ErrInvalidTransition, http.StatusConflict, "INVALID_TRANSITION"},
	{domain.ErrInvalidItem, http.StatusUnprocessableEntity, "INVALID_ITEM"},
	{domain.ErrInvalidInput, http.StatusBadRequest, "INVALID_INPUT"},
	{domain.ErrUnauthorized, http.StatusForbidden, "UNAUTHORIZED"},
	{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
}

// writeError maps business errors to their HTTP form. Anything else is an
// internal failure and its detail stays in the log.
func writeError(c *gin.Context, err error) {
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			c.JSON(e.status, ErrorResponse{Error: e.code, Message: err.Error()})
			return
		}
	}
	logging.From(c).Error("request failed", "error", err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "INTERNAL", Message: "internal error"})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "INVALID_INPUT", Message: msg})
}
