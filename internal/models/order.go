// internal/models/order.go
package models

import (
	"github.com/google/uuid"
)

// Order moves from the implicit basket state through the status enum.
// A user holds at most one basket-status order at a time; BasketService
// enforces that inside its transactions.
type Order struct {
	BaseModel
	UserID    uuid.UUID   `json:"-" gorm:"type:uuid;not null;index"`
	Status    OrderStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	ContactID *uuid.UUID  `json:"-" gorm:"type:uuid"`

	User    User        `json:"-" gorm:"foreignKey:UserID"`
	Contact *Contact    `json:"contact,omitempty" gorm:"foreignKey:ContactID"`
	Lines   []OrderLine `json:"lines,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// Total sums quantity times listing price over the preloaded lines.
func (o *Order) Total() float64 {
	var total float64
	for _, line := range o.Lines {
		total += float64(line.Quantity) * line.Listing.Price
	}
	return total
}

// OrderLine holds one listing within an order. A listing appears at most
// once per order; repeated adds accumulate into Quantity.
type OrderLine struct {
	BaseModel
	OrderID   uuid.UUID `json:"-" gorm:"type:uuid;not null;uniqueIndex:idx_order_lines_order_listing"`
	ListingID uuid.UUID `json:"listing_id" gorm:"type:uuid;not null;uniqueIndex:idx_order_lines_order_listing"`
	Quantity  int       `json:"quantity" gorm:"not null;check:quantity > 0"`

	Listing ProductListing `json:"listing" gorm:"foreignKey:ListingID"`
}

func (l *OrderLine) LineTotal() float64 {
	return float64(l.Quantity) * l.Listing.Price
}
