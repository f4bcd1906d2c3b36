package httpapi

import (
	"errors"
	"net/http"

	phoneAuth "github.com/MrEthical07/phoneAuth"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Remaining *int   `json:"remaining,omitempty"`
}

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// Locked is checked before the wrong-attempt kinds.
var errorMappings = []errorMapping{
	{phoneAuth.ErrLocked, http.StatusLocked, "locked", "too many failed attempts, try again later"},
	{phoneAuth.ErrQuotaExceeded, http.StatusTooManyRequests, "quota_exceeded", "daily code limit reached"},
	{phoneAuth.ErrWrongCode, http.StatusUnauthorized, "wrong_code", "wrong or expired code"},
	{phoneAuth.ErrWrongPassword, http.StatusUnauthorized, "wrong_password", "wrong phone or password"},
	{phoneAuth.ErrNoPassword, http.StatusConflict, "no_password", "no password set for this account"},
	{phoneAuth.ErrPasswordPolicy, http.StatusBadRequest, "password_policy", "password does not meet the policy"},
	{phoneAuth.ErrInvalidPhone, http.StatusBadRequest, "invalid_request", "invalid phone number"},
	{phoneAuth.ErrUserNotFound, http.StatusNotFound, "not_found", "account not found"},
	{phoneAuth.ErrUnauthorized, http.StatusUnauthorized, "unauthorized", "invalid or missing token"},
	{phoneAuth.ErrCounterUnavailable, http.StatusServiceUnavailable, "unavailable", "service temporarily unavailable"},
	{phoneAuth.ErrCodeDeliveryFailed, http.StatusBadGateway, "delivery_failed", "could not deliver the code"},
}

func writeError(c *gin.Context, err error) {
	status, body := errorBody(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, body)
}

func writeBadRequest(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{
		Error:   "invalid_request",
		Message: "malformed request body",
	})
}

func errorBody(err error) (int, errorResponse) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		body := errorResponse{Error: m.code, Message: m.message}
		if m.target == phoneAuth.ErrWrongCode || m.target == phoneAuth.ErrWrongPassword {
			if remaining, ok := phoneAuth.RemainingAttempts(err); ok {
				body.Remaining = &remaining
			}
		}
		return m.status, body
	}
	return http.StatusInternalServerError, errorResponse{
		Error:   "internal_error",
		Message: "internal server error",
	}
}
