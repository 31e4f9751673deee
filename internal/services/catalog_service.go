// internal/services/catalog_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketlink/backend/internal/apperrors"
	"github.com/marketlink/backend/internal/models"
)

type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

type ListingFilter struct {
	ShopID             *uuid.UUID
	CategoryID         *uuid.UUID
	CategoryExternalID *int
}

// ListShops returns shops currently accepting orders.
func (s *CatalogService) ListShops() ([]models.Shop, error) {
	var shops []models.Shop
	if err := s.db.Where("is_active = ?", true).Order("name").Find(&shops).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch shops: %w", err)
	}
	return shops, nil
}

func (s *CatalogService) ListCategories() ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.Order("name").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	return categories, nil
}

// ListListings returns in-stock listings from active shops, optionally
// narrowed by shop and/or the product's category.
func (s *CatalogService) ListListings(filter ListingFilter) ([]models.ProductListing, error) {
	query := s.db.Model(&models.ProductListing{}).
		Joins("JOIN shops ON shops.id = product_listings.shop_id").
		Where("shops.is_active = ?", true).
		Where("product_listings.quantity > 0").
		Preload("Product").
		Preload("Product.Category").
		Preload("Shop").
		Preload("Parameters").
		Preload("Parameters.Parameter")

	if filter.ShopID != nil {
		query = query.Where("product_listings.shop_id = ?", *filter.ShopID)
	}

	if filter.CategoryID != nil || filter.CategoryExternalID != nil {
		query = query.Joins("JOIN products ON products.id = product_listings.product_id")
		if filter.CategoryID != nil {
			query = query.Where("products.category_id = ?", *filter.CategoryID)
		} else {
			query = query.
				Joins("JOIN categories ON categories.id = products.category_id").
				Where("categories.external_id = ?", *filter.CategoryExternalID)
		}
	}

	var listings []models.ProductListing
	if err := query.Find(&listings).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch listings: %w", err)
	}
	return listings, nil
}

// GetListing returns one listing with full detail. The detail view is
// deliberately unfiltered: out-of-stock listings and inactive shops
// still resolve.
func (s *CatalogService) GetListing(id uuid.UUID) (*models.ProductListing, error) {
	var listing models.ProductListing
	err := s.db.
		Preload("Product").
		Preload("Product.Category").
		Preload("Shop").
		Preload("Parameters").
		Preload("Parameters.Parameter").
		First(&listing, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFound("listing")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing: %w", err)
	}
	return &listing, nil
}
