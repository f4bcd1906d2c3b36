package httpapi

import (
	"context"
	"net/http"

	phoneAuth "github.com/MrEthical07/phoneAuth"
	"github.com/MrEthical07/phoneAuth/middleware"
	"github.com/gin-gonic/gin"
)

type handler struct {
	auth Auth
}

type phoneRequest struct {
	Phone string `json:"phone" binding:"required"`
}

type codeLoginRequest struct {
	Phone string `json:"phone" binding:"required"`
	Code  string `json:"code" binding:"required,numeric"`
}

type passwordLoginRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type setPasswordRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Code     string `json:"code" binding:"required,numeric"`
	Password string `json:"password" binding:"required"`
}

type resetPasswordRequest struct {
	Phone       string `json:"phone" binding:"required"`
	Code        string `json:"code" binding:"required,numeric"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// requestContext carries the client details the engine records in audit
// events.
func requestContext(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	ctx = phoneAuth.WithClientIP(ctx, c.ClientIP())
	ctx = phoneAuth.WithUserAgent(ctx, c.Request.UserAgent())
	ctx = phoneAuth.WithRequestID(ctx, c.GetString(requestIDKey))
	return ctx
}

func (h *handler) verifyPhone(c *gin.Context) {
	var req phoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c)
		return
	}

	res, err := h.auth.SendOTP(requestContext(c), req.Phone)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "code sent",
		"remaining": res.Remaining,
	})
}

func (h *handler) login(c *gin.Context) {
	var req codeLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c)
		return
	}

	res, err := h.auth.LoginWithOTP(requestContext(c), req.Phone, req.Code)
	if err != nil {
		writeError(c, err)
		return
	}
	writeSession(c, res)
}

func (h *handler) passwordLogin(c *gin.Context) {
	var req passwordLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c)
		return
	}

	res, err := h.auth.LoginWithPassword(requestContext(c), req.Phone, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	writeSession(c, res)
}

func (h *handler) setPassword(c *gin.Context) {
	var req setPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c)
		return
	}

	res, err := h.auth.SetPassword(requestContext(c), req.Phone, req.Code, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	writeSession(c, res)
}

func (h *handler) resetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c)
		return
	}

	if err := h.auth.ResetPassword(requestContext(c), req.Phone, req.Code, req.NewPassword); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password reset"})
}

func (h *handler) me(c *gin.Context) {
	id, ok := middleware.IdentityFromContext(c.Request.Context())
	if !ok {
		writeError(c, phoneAuth.ErrUnauthorized)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"userId": id.UserID,
		"phone":  id.Phone,
	})
}

func writeSession(c *gin.Context, res *phoneAuth.LoginResult) {
	c.JSON(http.StatusOK, gin.H{
		"token": res.Token,
		"user":  res.User,
	})
}
