// internal/services/order_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketlink/backend/internal/apperrors"
	"github.com/marketlink/backend/internal/models"
	"github.com/marketlink/backend/internal/utils"
)

type OrderService struct {
	db *gorm.DB
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db}
}

// ListOrders returns the user's order history, baskets excluded,
// newest first.
func (s *OrderService) ListOrders(userID uuid.UUID, params utils.PaginationParams) ([]models.Order, int64, error) {
	query := s.db.Model(&models.Order{}).
		Where("user_id = ? AND status <> ?", userID, models.OrderStatusBasket)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query = query.
		Preload("Contact").
		Preload("Lines").
		Preload("Lines.Listing").
		Preload("Lines.Listing.Product")
	query = utils.ApplySort(query, params, []string{"created_at", "status"})
	query = utils.ApplyPagination(query, params)

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch orders: %w", err)
	}
	return orders, total, nil
}

// GetOrder returns one of the caller's placed orders with full detail.
func (s *OrderService) GetOrder(userID, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.
		Preload("Contact").
		Preload("Lines").
		Preload("Lines.Listing").
		Preload("Lines.Listing.Product").
		Preload("Lines.Listing.Product.Category").
		Preload("Lines.Listing.Shop").
		Preload("Lines.Listing.Parameters").
		Preload("Lines.Listing.Parameters.Parameter").
		Where("id = ? AND user_id = ? AND status <> ?", orderID, userID, models.OrderStatusBasket).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFound("order")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order: %w", err)
	}
	return &order, nil
}

// UpdateStatus sets the order status after an enum-membership check.
// Sequential ordering of pipeline states is intentionally not enforced.
func (s *OrderService) UpdateStatus(userID, orderID uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	if !models.IsValidOrderStatus(status) || status == models.OrderStatusBasket {
		return nil, apperrors.NewValidation(fmt.Sprintf("invalid order status: %s", status))
	}

	var order models.Order
	err := s.db.
		Where("id = ? AND user_id = ? AND status <> ?", orderID, userID, models.OrderStatusBasket).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFound("order")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order: %w", err)
	}

	order.Status = status
	if err := s.db.Save(&order).Error; err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	return &order, nil
}
