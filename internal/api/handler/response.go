package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cuongbtq/email-verifier-be/internal/api/domain"
	"github.com/cuongbtq/email-verifier-be/internal/api/dto"
	"github.com/gin-gonic/gin"
)

func respondOK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, dto.Response{Success: true, Message: message, Data: data})
}

func respondFail(c *gin.Context, status int, message string) {
	c.JSON(status, dto.Response{Success: false, Message: message})
}

// errorStatus maps a service error to an HTTP status and a client message.
// providerStatus is used for provider failures since it depends on the call.
func errorStatus(err error, providerStatus int) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrInsufficientCredits):
		return http.StatusBadRequest, "Insufficient credits"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrStatusUnavailable):
		return http.StatusNotFound, "Status is not available for this list"
	case errors.Is(err, domain.ErrProviderUnavailable):
		return providerStatus, "Verification provider request failed"
	case errors.Is(err, domain.ErrDuplicateJob):
		return http.StatusConflict, "List already exists"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func (h *ListHandler) fail(c *gin.Context, op string, err error, providerStatus int) {
	respondError(c, h.logger, op, err, providerStatus)
}

func (h *CreditHandler) fail(c *gin.Context, op string, err error) {
	respondError(c, h.logger, op, err, http.StatusBadRequest)
}

func respondError(c *gin.Context, logger *slog.Logger, op string, err error, providerStatus int) {
	status, message := errorStatus(err, providerStatus)
	if status >= http.StatusInternalServerError {
		logger.Error(op+" failed", slog.String("error", err.Error()))
	} else {
		logger.Warn(op+" rejected",
			slog.Int("status", status),
			slog.String("error", err.Error()),
		)
	}
	respondFail(c, status, message)
}

func userIDFrom(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
