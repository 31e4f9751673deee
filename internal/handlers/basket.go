// internal/handlers/basket.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/marketlink/backend/internal/services"
	"github.com/marketlink/backend/internal/utils"
)

type BasketHandler struct {
	basketService *services.BasketService
	dispatcher    *services.Dispatcher
}

func NewBasketHandler(basketService *services.BasketService, dispatcher *services.Dispatcher) *BasketHandler {
	return &BasketHandler{
		basketService: basketService,
		dispatcher:    dispatcher,
	}
}

type addItemRequest struct {
	ListingID uuid.UUID `json:"listing_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required"`
}

type updateLinesRequest struct {
	Items []services.LineUpdate `json:"items" binding:"required"`
}

type removeLinesRequest struct {
	Items []uuid.UUID `json:"items" binding:"required"`
}

type checkoutRequest struct {
	ContactID uuid.UUID `json:"contact_id" binding:"required"`
}

// GET /basket
func (h *BasketHandler) GetBasket(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	basket, err := h.basketService.GetBasket(userID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, basket)
}

// POST /basket
func (h *BasketHandler) AddItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	basket, err := h.basketService.AddItem(userID, req.ListingID, req.Quantity)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, basket)
}

// PATCH /basket
func (h *BasketHandler) UpdateLines(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req updateLinesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	basket, err := h.basketService.UpdateLines(userID, req.Items)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, basket)
}

// DELETE /basket
func (h *BasketHandler) RemoveLines(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req removeLinesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	removed, err := h.basketService.RemoveLines(userID, req.Items)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"removed": removed})
}

// POST /basket/checkout
func (h *BasketHandler) Checkout(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	order, err := h.basketService.Checkout(userID, req.ContactID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	// Suppliers learn about the order by email, off the request path.
	if _, err := h.dispatcher.DispatchNewOrderEmails(order.ID); err != nil {
		logrus.WithError(err).WithField("order_id", order.ID).Warn("Failed to enqueue supplier notifications")
	}

	utils.CreatedResponse(c, order)
}
