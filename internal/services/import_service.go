// internal/services/import_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketlink/backend/internal/apperrors"
	"github.com/marketlink/backend/internal/feed"
	"github.com/marketlink/backend/internal/models"
)

type ImportService struct {
	db *gorm.DB
}

func NewImportService(db *gorm.DB) *ImportService {
	return &ImportService{db: db}
}

type ImportResult struct {
	ShopID              uuid.UUID `json:"shop_id"`
	ShopName            string    `json:"shop_name"`
	CategoriesProcessed int       `json:"categories_processed"`
	ProductsCreated     int       `json:"products_created"`
	ListingsWritten     int       `json:"listings_written"`
	ParametersWritten   int       `json:"parameters_written"`
	ListingsDeleted     int       `json:"listings_deleted"`
}

// Import replaces the shop's catalog with the feed's contents inside one
// transaction. Listings are not diffed: the shop's prior listings are
// deleted wholesale and recreated, so a failed feed rolls back to the
// previous catalog untouched.
func (s *ImportService) Import(f *feed.Feed, shopName string, ownerUserID *uuid.UUID) (*ImportResult, error) {
	if shopName == "" {
		return nil, apperrors.NewValidation("shop name is required")
	}

	result := &ImportResult{}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		shop, err := s.resolveShop(tx, shopName, ownerUserID)
		if err != nil {
			return err
		}
		result.ShopID = shop.ID
		result.ShopName = shop.Name

		categories, err := s.importCategories(tx, shop, f.Categories, result)
		if err != nil {
			return err
		}

		if err := s.clearListings(tx, shop, result); err != nil {
			return err
		}

		return s.importGoods(tx, shop, categories, f.Goods, result)
	})

	if err != nil {
		var (
			missingErr    *apperrors.MissingFieldError
			validationErr *apperrors.ValidationError
			importErr     *apperrors.ImportError
		)
		if errors.As(err, &missingErr) || errors.As(err, &validationErr) || errors.As(err, &importErr) {
			return nil, err
		}
		return nil, &apperrors.ImportError{Detail: "transaction aborted", Err: err}
	}

	return result, nil
}

func (s *ImportService) resolveShop(tx *gorm.DB, name string, ownerUserID *uuid.UUID) (*models.Shop, error) {
	var shop models.Shop
	err := tx.Where("name = ?", name).First(&shop).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		shop = models.Shop{Name: name, UserID: ownerUserID, IsActive: true}
		if err := tx.Create(&shop).Error; err != nil {
			return nil, &apperrors.ImportError{Detail: "failed to create shop", Err: err}
		}
		return &shop, nil
	}
	if err != nil {
		return nil, &apperrors.ImportError{Detail: "failed to resolve shop", Err: err}
	}

	// Claim an unowned shop for the given user; never reassign owned ones.
	if shop.UserID == nil && ownerUserID != nil {
		shop.UserID = ownerUserID
		if err := tx.Save(&shop).Error; err != nil {
			return nil, &apperrors.ImportError{Detail: "failed to assign shop owner", Err: err}
		}
	}
	return &shop, nil
}

func (s *ImportService) importCategories(tx *gorm.DB, shop *models.Shop, entries []feed.FeedCategory, result *ImportResult) (map[int]*models.Category, error) {
	categories := make(map[int]*models.Category, len(entries))

	for _, entry := range entries {
		if entry.ID <= 0 {
			return nil, &apperrors.MissingFieldError{Field: "categories.id"}
		}
		if entry.Name == "" {
			return nil, &apperrors.MissingFieldError{Field: "categories.name"}
		}

		// The feed-supplied id is the lookup key. Colliding ids across
		// shops merge categories; inherited feed-format contract.
		var category models.Category
		err := tx.Where("external_id = ?", entry.ID).First(&category).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			category = models.Category{ExternalID: entry.ID, Name: entry.Name}
			if err := tx.Create(&category).Error; err != nil {
				return nil, &apperrors.ImportError{Detail: "failed to create category", Err: err}
			}
		} else if err != nil {
			return nil, &apperrors.ImportError{Detail: "failed to resolve category", Err: err}
		}

		if err := tx.Model(&category).Association("Shops").Append(shop); err != nil {
			return nil, &apperrors.ImportError{Detail: "failed to link category to shop", Err: err}
		}

		categories[entry.ID] = &category
		result.CategoriesProcessed++
	}

	return categories, nil
}

// clearListings hard-deletes the shop's listings and their parameters so
// the unique (product, shop) index is free for the incoming set.
func (s *ImportService) clearListings(tx *gorm.DB, shop *models.Shop, result *ImportResult) error {
	subquery := tx.Model(&models.ProductListing{}).Select("id").Where("shop_id = ?", shop.ID)
	if err := tx.Unscoped().Where("listing_id IN (?)", subquery).Delete(&models.ListingParameter{}).Error; err != nil {
		return &apperrors.ImportError{Detail: "failed to clear listing parameters", Err: err}
	}

	res := tx.Unscoped().Where("shop_id = ?", shop.ID).Delete(&models.ProductListing{})
	if res.Error != nil {
		return &apperrors.ImportError{Detail: "failed to clear listings", Err: res.Error}
	}
	result.ListingsDeleted = int(res.RowsAffected)
	return nil
}

func (s *ImportService) importGoods(tx *gorm.DB, shop *models.Shop, categories map[int]*models.Category, goods []feed.FeedGood, result *ImportResult) error {
	// Tracks listings written in this run so a duplicate (product, shop)
	// entry updates in place: last entry wins. paramCounts remembers how
	// many parameter rows each listing carries, so replacing them keeps
	// the counter at surviving rows only.
	written := make(map[uuid.UUID]*models.ProductListing)
	paramCounts := make(map[uuid.UUID]int)

	for _, item := range goods {
		if item.ID <= 0 {
			return &apperrors.MissingFieldError{Field: "goods.id"}
		}
		if item.Name == "" {
			return &apperrors.MissingFieldError{Field: "goods.name"}
		}
		if item.Category <= 0 {
			return &apperrors.MissingFieldError{Field: "goods.category"}
		}
		if item.Price <= 0 {
			return &apperrors.MissingFieldError{Field: "goods.price"}
		}
		if item.Quantity < 0 {
			return apperrors.NewValidation(fmt.Sprintf("goods %d: quantity must not be negative", item.ID))
		}

		category, err := s.lookupCategory(tx, categories, item.Category)
		if err != nil {
			return err
		}

		product, err := s.resolveProduct(tx, item.Name, category, result)
		if err != nil {
			return err
		}

		listing, existed := written[product.ID]
		if existed {
			listing.ExternalID = item.ID
			listing.Model = item.Model
			listing.Quantity = item.Quantity
			listing.Price = item.Price
			listing.PriceRRC = item.PriceRRC
			if err := tx.Save(listing).Error; err != nil {
				return &apperrors.ImportError{Detail: "failed to update listing", Err: err}
			}
			if err := tx.Unscoped().Where("listing_id = ?", listing.ID).Delete(&models.ListingParameter{}).Error; err != nil {
				return &apperrors.ImportError{Detail: "failed to replace listing parameters", Err: err}
			}
			result.ParametersWritten -= paramCounts[listing.ID]
		} else {
			listing = &models.ProductListing{
				ProductID:  product.ID,
				ShopID:     shop.ID,
				ExternalID: item.ID,
				Model:      item.Model,
				Quantity:   item.Quantity,
				Price:      item.Price,
				PriceRRC:   item.PriceRRC,
			}
			if err := tx.Create(listing).Error; err != nil {
				return &apperrors.ImportError{Detail: "failed to create listing", Err: err}
			}
			written[product.ID] = listing
			result.ListingsWritten++
		}

		count, err := s.importParameters(tx, listing, item.Parameters)
		if err != nil {
			return err
		}
		paramCounts[listing.ID] = count
		result.ParametersWritten += count
	}

	return nil
}

func (s *ImportService) lookupCategory(tx *gorm.DB, categories map[int]*models.Category, externalID int) (*models.Category, error) {
	if category, ok := categories[externalID]; ok {
		return category, nil
	}

	// Goods may reference a category imported by an earlier feed run.
	var category models.Category
	err := tx.Where("external_id = ?", externalID).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &apperrors.ImportError{Detail: fmt.Sprintf("unknown category id %d", externalID)}
	}
	if err != nil {
		return nil, &apperrors.ImportError{Detail: "failed to resolve category", Err: err}
	}

	categories[externalID] = &category
	return &category, nil
}

func (s *ImportService) resolveProduct(tx *gorm.DB, name string, category *models.Category, result *ImportResult) (*models.Product, error) {
	var product models.Product
	err := tx.Where("name = ? AND category_id = ?", name, category.ID).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		product = models.Product{Name: name, CategoryID: category.ID}
		if err := tx.Create(&product).Error; err != nil {
			return nil, &apperrors.ImportError{Detail: "failed to create product", Err: err}
		}
		result.ProductsCreated++
		return &product, nil
	}
	if err != nil {
		return nil, &apperrors.ImportError{Detail: "failed to resolve product", Err: err}
	}
	return &product, nil
}

func (s *ImportService) importParameters(tx *gorm.DB, listing *models.ProductListing, params map[string]interface{}) (int, error) {
	count := 0
	for name, value := range params {
		if name == "" {
			return count, &apperrors.MissingFieldError{Field: "goods.parameters"}
		}

		var parameter models.Parameter
		err := tx.Where("name = ?", name).First(&parameter).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			parameter = models.Parameter{Name: name}
			if err := tx.Create(&parameter).Error; err != nil {
				return count, &apperrors.ImportError{Detail: "failed to create parameter", Err: err}
			}
		} else if err != nil {
			return count, &apperrors.ImportError{Detail: "failed to resolve parameter", Err: err}
		}

		lp := models.ListingParameter{
			ListingID:   listing.ID,
			ParameterID: parameter.ID,
			Value:       fmt.Sprintf("%v", value),
		}
		if err := tx.Create(&lp).Error; err != nil {
			return count, &apperrors.ImportError{Detail: "failed to create listing parameter", Err: err}
		}
		count++
	}
	return count, nil
}
