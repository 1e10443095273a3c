// Package auth holds the account endpoints: register, login, profile,
// account deletion.
package auth

import (
	"errors"
	"net/http"

	"recipe-finder/internal/api/middleware"
	authService "recipe-finder/internal/core/auth"
	"recipe-finder/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RegisterRequest is the register payload.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"full_name"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Handler serves the auth endpoints.
type Handler struct {
	svc *authService.Service
}

// NewHandler creates the auth handler.
func NewHandler(svc *authService.Service) *Handler {
	return &Handler{svc: svc}
}

// Register creates an account and logs it straight in.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	resp, err := h.svc.Register(c.Request.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		respondError(c, err)
		return
	}

	common.LogInfo("user registered", zap.String("email", resp.User.Email))
	c.JSON(http.StatusOK, resp)
}

// Login verifies credentials and returns a token.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Me returns the authenticated account's profile.
func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"id":    middleware.UserID(c),
		"email": c.GetString(middleware.ContextUserEmail),
	})
}

// Delete removes the authenticated account and its data.
func (h *Handler) Delete(c *gin.Context) {
	userID := middleware.UserID(c)
	if err := h.svc.DeleteAccount(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}

	common.LogInfo("account deleted", zap.Int("user_id", userID))
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted successfully"})
}

// respondError maps service errors to HTTP responses.
func respondError(c *gin.Context, err error) {
	var customErr *common.CustomError
	if errors.As(err, &customErr) {
		c.JSON(customErr.Status, gin.H{"error": customErr.Message, "code": customErr.Code})
		return
	}
	if common.IsValidationError(err) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	common.LogError("auth request failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
