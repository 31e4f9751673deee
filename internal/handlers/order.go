// internal/handlers/order.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/marketlink/backend/internal/models"
	"github.com/marketlink/backend/internal/services"
	"github.com/marketlink/backend/internal/utils"
)

type OrderHandler struct {
	orderService *services.OrderService
	dispatcher   *services.Dispatcher
}

func NewOrderHandler(orderService *services.OrderService, dispatcher *services.Dispatcher) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		dispatcher:   dispatcher,
	}
}

type statusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

// GET /orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)

	orders, total, err := h.orderService.ListOrders(userID, params)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(orders, total, params))
}

// GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(userID, orderID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, order)
}

// PATCH /orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	order, err := h.orderService.UpdateStatus(userID, orderID, req.Status)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, order)
}

// POST /orders/:id/confirm
//
// Queues the confirmation email for an order the caller owns and hands
// back a job id to poll.
func (h *OrderHandler) Confirm(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(userID, orderID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	handle, err := h.dispatcher.DispatchOrderConfirmedEmail(order.ID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"job_id": handle.ID})
}
