// internal/models/catalog.go
package models

import (
	"github.com/google/uuid"
)

// Shop is a supplier storefront. IsActive gates whether buyers may put
// its listings into new orders.
type Shop struct {
	BaseModel
	Name     string     `json:"name" gorm:"uniqueIndex;size:100;not null"`
	URL      string     `json:"url" gorm:"size:500"`
	UserID   *uuid.UUID `json:"user_id,omitempty" gorm:"type:uuid;uniqueIndex"`
	IsActive bool       `json:"is_active" gorm:"not null;default:true"`

	// Relationships
	User       *User            `json:"-" gorm:"foreignKey:UserID"`
	Categories []Category       `json:"categories,omitempty" gorm:"many2many:shop_categories;"`
	Listings   []ProductListing `json:"listings,omitempty" gorm:"foreignKey:ShopID;constraint:OnDelete:CASCADE"`
}

// Category is shared reference data keyed by the feed-supplied external id.
// Two shops whose feeds reuse the same id end up sharing one category row;
// that contract is inherited from the feed format.
type Category struct {
	BaseModel
	ExternalID int    `json:"external_id" gorm:"uniqueIndex;not null"`
	Name       string `json:"name" gorm:"size:100;not null"`

	Shops    []Shop    `json:"-" gorm:"many2many:shop_categories;"`
	Products []Product `json:"-" gorm:"foreignKey:CategoryID"`
}

// Product is shared across shops; each shop prices it through a listing.
type Product struct {
	BaseModel
	Name       string    `json:"name" gorm:"size:200;not null;uniqueIndex:idx_products_name_category"`
	CategoryID uuid.UUID `json:"-" gorm:"type:uuid;not null;uniqueIndex:idx_products_name_category"`

	Category Category `json:"category" gorm:"foreignKey:CategoryID"`
}

// ProductListing is one shop's priced, quantified offer of a product.
type ProductListing struct {
	BaseModel
	ProductID  uuid.UUID `json:"-" gorm:"type:uuid;not null;uniqueIndex:idx_listings_product_shop"`
	ShopID     uuid.UUID `json:"-" gorm:"type:uuid;not null;uniqueIndex:idx_listings_product_shop;index"`
	ExternalID int       `json:"external_id" gorm:"not null"`
	Model      string    `json:"model" gorm:"size:100"`
	Quantity   int       `json:"quantity" gorm:"not null;check:quantity >= 0"`
	Price      float64   `json:"price" gorm:"type:decimal(10,2);not null"`
	PriceRRC   float64   `json:"price_rrc" gorm:"type:decimal(10,2);not null"`

	Product    Product            `json:"product" gorm:"foreignKey:ProductID"`
	Shop       Shop               `json:"shop" gorm:"foreignKey:ShopID"`
	Parameters []ListingParameter `json:"parameters,omitempty" gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE"`
}

// Parameter is a characteristic key shared globally across products.
type Parameter struct {
	BaseModel
	Name string `json:"name" gorm:"uniqueIndex;size:100;not null"`
}

type ListingParameter struct {
	BaseModel
	ListingID   uuid.UUID `json:"-" gorm:"type:uuid;not null;uniqueIndex:idx_listing_parameters_pair"`
	ParameterID uuid.UUID `json:"-" gorm:"type:uuid;not null;uniqueIndex:idx_listing_parameters_pair"`
	Value       string    `json:"value" gorm:"size:100;not null"`

	Parameter Parameter `json:"parameter" gorm:"foreignKey:ParameterID"`
}
