// internal/handlers/auth.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/marketlink/backend/internal/services"
	"github.com/marketlink/backend/internal/utils"
)

type AuthHandler struct {
	authService *services.AuthService
	dispatcher  *services.Dispatcher
}

func NewAuthHandler(authService *services.AuthService, dispatcher *services.Dispatcher) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		dispatcher:  dispatcher,
	}
}

// POST /user/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	authResponse, err := h.authService.Register(&req)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	if _, err := h.dispatcher.DispatchWelcomeEmail(authResponse.User.ID); err != nil {
		logrus.WithError(err).Warn("Failed to enqueue welcome email")
	}

	utils.CreatedResponse(c, authResponse)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// POST /user/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	authResponse, err := h.authService.Refresh(req.RefreshToken)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, authResponse)
}

// POST /user/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	authResponse, err := h.authService.Login(&req)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, authResponse)
}
