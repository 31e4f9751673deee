// internal/handlers/user.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/marketlink/backend/internal/services"
	"github.com/marketlink/backend/internal/utils"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// GET /user/profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetProfile(userID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, user)
}

// PUT /user/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	user, err := h.userService.UpdateProfile(userID, &req)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, user)
}

// GET /user/contacts
func (h *UserHandler) ListContacts(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	contacts, err := h.userService.ListContacts(userID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, contacts)
}

// POST /user/contacts
func (h *UserHandler) CreateContact(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	contact, err := h.userService.CreateContact(userID, &req)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, contact)
}

// PUT /user/contacts/:id
func (h *UserHandler) UpdateContact(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	contactID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	contact, err := h.userService.UpdateContact(userID, contactID, &req)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, contact)
}

// DELETE /user/contacts/:id
func (h *UserHandler) DeleteContact(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	contactID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.userService.DeleteContact(userID, contactID); err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"deleted": true})
}
