// internal/models/common.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Enums
type UserType string

const (
	UserTypeBuyer    UserType = "buyer"
	UserTypeSupplier UserType = "supplier"
)

type OrderStatus string

const (
	OrderStatusBasket    OrderStatus = "basket"
	OrderStatusNew       OrderStatus = "new"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusAssembled OrderStatus = "assembled"
	OrderStatusSent      OrderStatus = "sent"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCanceled  OrderStatus = "canceled"
)

// OrderStatuses lists every value an order may carry, basket included.
var OrderStatuses = []OrderStatus{
	OrderStatusBasket,
	OrderStatusNew,
	OrderStatusConfirmed,
	OrderStatusAssembled,
	OrderStatusSent,
	OrderStatusDelivered,
	OrderStatusCanceled,
}

// IsValidOrderStatus reports whether s names a known status value.
// Only membership is checked: the pipeline imposes no transition graph,
// so any known status may follow any other.
func IsValidOrderStatus(s OrderStatus) bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminalOrderStatus reports whether s ends the order lifecycle.
func IsTerminalOrderStatus(s OrderStatus) bool {
	return s == OrderStatusDelivered || s == OrderStatusCanceled
}
