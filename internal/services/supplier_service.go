// internal/services/supplier_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketlink/backend/internal/apperrors"
	"github.com/marketlink/backend/internal/models"
)

// SupplierService projects orders down to one shop's slice of them:
// a supplier only ever sees its own lines and totals derived from them.
type SupplierService struct {
	db *gorm.DB
}

func NewSupplierService(db *gorm.DB) *SupplierService {
	return &SupplierService{db: db}
}

type SupplierOrderContact struct {
	City  string `json:"city"`
	Phone string `json:"phone"`
}

type SupplierOrderSummary struct {
	ID          uuid.UUID             `json:"id"`
	CreatedAt   time.Time             `json:"created_at"`
	Status      models.OrderStatus    `json:"status"`
	Buyer       string                `json:"buyer"`
	TotalAmount float64               `json:"total_amount"`
	LineCount   int                   `json:"line_count"`
	Contact     *SupplierOrderContact `json:"contact"`
}

type SupplierBuyer struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company"`
	Position  string `json:"position"`
}

type SupplierOrderLine struct {
	ID          uuid.UUID                `json:"id"`
	ProductName string                   `json:"product_name"`
	Model       string                   `json:"model"`
	Quantity    int                      `json:"quantity"`
	Price       float64                  `json:"price"`
	Total       float64                  `json:"total"`
	Parameters  []SupplierLineParameter  `json:"parameters,omitempty"`
}

type SupplierLineParameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type SupplierOrderDetail struct {
	ID          uuid.UUID           `json:"id"`
	CreatedAt   time.Time           `json:"created_at"`
	Status      models.OrderStatus  `json:"status"`
	Buyer       SupplierBuyer       `json:"buyer"`
	Contact     *models.Contact     `json:"contact"`
	Lines       []SupplierOrderLine `json:"lines"`
	TotalAmount float64             `json:"total_amount"`
}

type ShopStats struct {
	ActiveListings int64 `json:"active_listings"`
	ActiveOrders   int64 `json:"active_orders"`
	TotalListings  int64 `json:"total_listings"`
}

type ShopState struct {
	ShopName   string    `json:"shop_name"`
	IsActive   bool      `json:"is_active"`
	Statistics ShopStats `json:"statistics"`
}

// ShopFor resolves the supplier's own shop.
func (s *SupplierService) ShopFor(userID uuid.UUID) (*models.Shop, error) {
	var shop models.Shop
	err := s.db.Where("user_id = ?", userID).First(&shop).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFound("shop")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shop: %w", err)
	}
	return &shop, nil
}

// ListOrders returns summaries of all placed orders containing at least
// one of this supplier's listings, totals computed over those lines only.
func (s *SupplierService) ListOrders(userID uuid.UUID) ([]SupplierOrderSummary, error) {
	shop, err := s.ShopFor(userID)
	if err != nil {
		return nil, err
	}

	var orders []models.Order
	err = s.db.
		Where("id IN (?)", s.shopOrderIDs(shop.ID)).
		Where("status <> ?", models.OrderStatusBasket).
		Preload("User").
		Preload("Contact").
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch supplier orders: %w", err)
	}

	summaries := make([]SupplierOrderSummary, 0, len(orders))
	for i := range orders {
		order := &orders[i]
		lines, err := s.shopLines(order.ID, shop.ID)
		if err != nil {
			return nil, err
		}

		summary := SupplierOrderSummary{
			ID:        order.ID,
			CreatedAt: order.CreatedAt,
			Status:    order.Status,
			Buyer:     order.User.Username,
			LineCount: len(lines),
		}
		for _, line := range lines {
			summary.TotalAmount += line.LineTotal()
		}
		if order.Contact != nil {
			summary.Contact = &SupplierOrderContact{
				City:  order.Contact.City,
				Phone: order.Contact.Phone,
			}
		}
		summaries = append(summaries, summary)
	}

	return summaries, nil
}

// GetOrder returns the supplier's slice of one order. An order with no
// lines from this shop reads as not found, even when the id is valid.
func (s *SupplierService) GetOrder(userID, orderID uuid.UUID) (*SupplierOrderDetail, error) {
	shop, err := s.ShopFor(userID)
	if err != nil {
		return nil, err
	}

	var order models.Order
	err = s.db.
		Where("id = ? AND status <> ?", orderID, models.OrderStatusBasket).
		Preload("User").
		Preload("Contact").
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFound("order")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order: %w", err)
	}

	lines, err := s.shopLines(order.ID, shop.ID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, apperrors.NewNotFound("order")
	}

	detail := &SupplierOrderDetail{
		ID:        order.ID,
		CreatedAt: order.CreatedAt,
		Status:    order.Status,
		Buyer: SupplierBuyer{
			Username:  order.User.Username,
			Email:     order.User.Email,
			FirstName: order.User.FirstName,
			LastName:  order.User.LastName,
			Company:   order.User.Company,
			Position:  order.User.Position,
		},
		Contact: order.Contact,
	}

	for _, line := range lines {
		detailLine := SupplierOrderLine{
			ID:          line.ID,
			ProductName: line.Listing.Product.Name,
			Model:       line.Listing.Model,
			Quantity:    line.Quantity,
			Price:       line.Listing.Price,
			Total:       line.LineTotal(),
		}
		for _, param := range line.Listing.Parameters {
			detailLine.Parameters = append(detailLine.Parameters, SupplierLineParameter{
				Name:  param.Parameter.Name,
				Value: param.Value,
			})
		}
		detail.Lines = append(detail.Lines, detailLine)
		detail.TotalAmount += detailLine.Total
	}

	return detail, nil
}

// UpdateStatus changes the status of an order containing this shop's
// lines. Same enum-membership rule as the buyer-side update.
func (s *SupplierService) UpdateStatus(userID, orderID uuid.UUID, status models.OrderStatus) error {
	if !models.IsValidOrderStatus(status) || status == models.OrderStatusBasket {
		return apperrors.NewValidation(fmt.Sprintf("invalid order status: %s", status))
	}

	shop, err := s.ShopFor(userID)
	if err != nil {
		return err
	}

	var order models.Order
	err = s.db.
		Where("id = ? AND status <> ?", orderID, models.OrderStatusBasket).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NewNotFound("order")
	}
	if err != nil {
		return fmt.Errorf("failed to fetch order: %w", err)
	}

	var shopLineCount int64
	err = s.db.Model(&models.OrderLine{}).
		Joins("JOIN product_listings ON product_listings.id = order_lines.listing_id").
		Where("order_lines.order_id = ? AND product_listings.shop_id = ?", order.ID, shop.ID).
		Count(&shopLineCount).Error
	if err != nil {
		return fmt.Errorf("failed to count shop lines: %w", err)
	}
	if shopLineCount == 0 {
		return apperrors.NewNotFound("order")
	}

	order.Status = status
	if err := s.db.Save(&order).Error; err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	return nil
}

// GetState reports the shop's accepting-orders flag plus derived stats.
func (s *SupplierService) GetState(userID uuid.UUID) (*ShopState, error) {
	shop, err := s.ShopFor(userID)
	if err != nil {
		return nil, err
	}

	state := &ShopState{
		ShopName: shop.Name,
		IsActive: shop.IsActive,
	}

	if err := s.db.Model(&models.ProductListing{}).
		Where("shop_id = ? AND quantity > 0", shop.ID).
		Count(&state.Statistics.ActiveListings).Error; err != nil {
		return nil, fmt.Errorf("failed to count active listings: %w", err)
	}

	if err := s.db.Model(&models.ProductListing{}).
		Where("shop_id = ?", shop.ID).
		Count(&state.Statistics.TotalListings).Error; err != nil {
		return nil, fmt.Errorf("failed to count listings: %w", err)
	}

	if err := s.db.Model(&models.Order{}).
		Where("id IN (?)", s.shopOrderIDs(shop.ID)).
		Where("status NOT IN ?", []models.OrderStatus{
			models.OrderStatusBasket,
			models.OrderStatusDelivered,
			models.OrderStatusCanceled,
		}).
		Count(&state.Statistics.ActiveOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to count active orders: %w", err)
	}

	return state, nil
}

// SetState flips the shop's accepting-orders flag.
func (s *SupplierService) SetState(userID uuid.UUID, isActive bool) (*models.Shop, error) {
	shop, err := s.ShopFor(userID)
	if err != nil {
		return nil, err
	}

	shop.IsActive = isActive
	if err := s.db.Save(shop).Error; err != nil {
		return nil, fmt.Errorf("failed to update shop state: %w", err)
	}
	return shop, nil
}

func (s *SupplierService) shopOrderIDs(shopID uuid.UUID) *gorm.DB {
	return s.db.Model(&models.OrderLine{}).
		Select("order_lines.order_id").
		Joins("JOIN product_listings ON product_listings.id = order_lines.listing_id").
		Where("product_listings.shop_id = ?", shopID)
}

func (s *SupplierService) shopLines(orderID, shopID uuid.UUID) ([]models.OrderLine, error) {
	var lines []models.OrderLine
	err := s.db.
		Joins("JOIN product_listings ON product_listings.id = order_lines.listing_id").
		Where("order_lines.order_id = ? AND product_listings.shop_id = ?", orderID, shopID).
		Preload("Listing").
		Preload("Listing.Product").
		Preload("Listing.Parameters").
		Preload("Listing.Parameters.Parameter").
		Find(&lines).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shop lines: %w", err)
	}
	return lines, nil
}
