package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/placechat/internal/domain/chat"
	"github.com/GriffinCanCode/placechat/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/placechat/internal/providers/maps"
	"github.com/GriffinCanCode/placechat/internal/shared/types"
	"github.com/GriffinCanCode/placechat/internal/shared/utils"
)

// statusFor maps an error onto the HTTP status the API answers with
func statusFor(err error) int {
	var perr *maps.ProviderError
	switch {
	case errors.Is(err, utils.ErrValidation),
		errors.Is(err, maps.ErrInvalidArgument),
		errors.Is(err, chat.ErrNoUserMessage):
		return http.StatusBadRequest
	case errors.Is(err, maps.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, maps.ErrMissingAPIKey),
		errors.Is(err, maps.ErrRequestDenied),
		errors.Is(err, resilience.ErrCircuitOpen),
		errors.Is(err, resilience.ErrTooManyRequests):
		return http.StatusServiceUnavailable
	case errors.As(err, &perr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {error} with the mapped status. Server-side failures
// are logged and their detail is not echoed back.
func (h *Handlers) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.Error(err),
		)
		msg = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// respondOutcome writes an OK or degraded outcome as 200, adding "error"
// when degraded. Fatal outcomes go through respondError.
func respondOutcome[T any](h *Handlers, c *gin.Context, o types.Outcome[T], render func(T) gin.H) {
	if o.IsFatal() {
		h.respondError(c, o.Err)
		return
	}
	body := render(o.Value)
	if o.IsDegraded() {
		body["error"] = o.Reason
	}
	c.JSON(http.StatusOK, body)
}
