// internal/handlers/supplier.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/marketlink/backend/internal/apperrors"
	"github.com/marketlink/backend/internal/services"
	"github.com/marketlink/backend/internal/utils"
)

type SupplierHandler struct {
	supplierService *services.SupplierService
	dispatcher      *services.Dispatcher
}

func NewSupplierHandler(supplierService *services.SupplierService, dispatcher *services.Dispatcher) *SupplierHandler {
	return &SupplierHandler{
		supplierService: supplierService,
		dispatcher:      dispatcher,
	}
}

type updateCatalogRequest struct {
	URL string `json:"url" binding:"required"`
}

type shopStateRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// POST /supplier/update
//
// Queues a full catalog import from the supplier's feed URL. The shop
// name comes from the feed itself only on first import; afterwards the
// supplier's own shop record pins it.
func (h *SupplierHandler) UpdateCatalog(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req updateCatalogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	shopName := ""
	ownerID := userID
	shop, err := h.supplierService.ShopFor(userID)
	switch {
	case err == nil:
		shopName = shop.Name
	case !apperrors.IsNotFound(err):
		utils.DomainErrorResponse(c, err)
		return
	}

	handle, err := h.dispatcher.DispatchImport(req.URL, shopName, &ownerID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"job_id": handle.ID})
}

// GET /supplier/orders
func (h *SupplierHandler) ListOrders(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	orders, err := h.supplierService.ListOrders(userID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, orders)
}

// GET /supplier/orders/:id
func (h *SupplierHandler) GetOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	detail, err := h.supplierService.GetOrder(userID, orderID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, detail)
}

// PATCH /supplier/orders/:id
func (h *SupplierHandler) UpdateOrderStatus(c *gin.Context) {
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

	if err := h.supplierService.UpdateStatus(userID, orderID, req.Status); err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"status": req.Status})
}

// GET /supplier/state
func (h *SupplierHandler) GetState(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	state, err := h.supplierService.GetState(userID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, state)
}

// PATCH /supplier/state
func (h *SupplierHandler) SetState(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req shopStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	shop, err := h.supplierService.SetState(userID, *req.IsActive)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, shop)
}
