// internal/services/basket_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/marketlink/backend/internal/apperrors"
	"github.com/marketlink/backend/internal/models"
)

type BasketService struct {
	db *gorm.DB
}

func NewBasketService(db *gorm.DB) *BasketService {
	return &BasketService{db: db}
}

type LineUpdate struct {
	ID       uuid.UUID `json:"id" validate:"required"`
	Quantity int       `json:"quantity" validate:"required,min=1"`
}

// GetBasket returns the user's current basket with full line detail.
func (s *BasketService) GetBasket(userID uuid.UUID) (*models.Order, error) {
	var basket models.Order
	err := s.db.
		Preload("Lines").
		Preload("Lines.Listing").
		Preload("Lines.Listing.Product").
		Preload("Lines.Listing.Product.Category").
		Preload("Lines.Listing.Shop").
		Where("user_id = ? AND status = ?", userID, models.OrderStatusBasket).
		First(&basket).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFound("basket")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch basket: %w", err)
	}
	return &basket, nil
}

// AddItem puts qty units of a listing into the user's basket, creating
// the basket lazily. Re-adding an already-present listing accumulates
// into the existing line instead of duplicating it.
func (s *BasketService) AddItem(userID, listingID uuid.UUID, qty int) (*models.Order, error) {
	if qty < 1 {
		return nil, apperrors.NewValidation("quantity must be at least 1")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var listing models.ProductListing
		if err := tx.Preload("Shop").First(&listing, "id = ?", listingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewNotFound("listing")
			}
			return fmt.Errorf("failed to fetch listing: %w", err)
		}
		if !listing.Shop.IsActive {
			return apperrors.NewValidation("shop is not accepting orders")
		}

		basket, err := s.getOrCreateBasket(tx, userID)
		if err != nil {
			return err
		}

		// Locking the basket row serializes concurrent adds for the same
		// user, closing the get-or-create-then-increment race on lines.
		var line models.OrderLine
		err = s.lockRows(tx).
			Where("order_id = ? AND listing_id = ?", basket.ID, listingID).
			First(&line).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			line = models.OrderLine{OrderID: basket.ID, ListingID: listingID, Quantity: qty}
			if err := tx.Create(&line).Error; err != nil {
				return fmt.Errorf("failed to create order line: %w", err)
			}
		case err != nil:
			return fmt.Errorf("failed to fetch order line: %w", err)
		default:
			line.Quantity += qty
			if err := tx.Save(&line).Error; err != nil {
				return fmt.Errorf("failed to update order line: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetBasket(userID)
}

// UpdateLines changes quantities of existing basket lines. Line ids not
// present in the basket are silently skipped.
func (s *BasketService) UpdateLines(userID uuid.UUID, updates []LineUpdate) (*models.Order, error) {
	for _, u := range updates {
		if u.Quantity < 1 {
			return nil, apperrors.NewValidation("quantity must be at least 1")
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		basket, err := s.findBasket(tx, userID)
		if err != nil {
			return err
		}

		for _, u := range updates {
			var line models.OrderLine
			err := tx.Where("id = ? AND order_id = ?", u.ID, basket.ID).First(&line).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to fetch order line: %w", err)
			}
			line.Quantity = u.Quantity
			if err := tx.Save(&line).Error; err != nil {
				return fmt.Errorf("failed to update order line: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetBasket(userID)
}

// RemoveLines deletes the given lines from the user's basket and reports
// how many were actually removed.
func (s *BasketService) RemoveLines(userID uuid.UUID, lineIDs []uuid.UUID) (int, error) {
	if len(lineIDs) == 0 {
		return 0, apperrors.NewValidation("no line ids given")
	}

	var removed int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		basket, err := s.findBasket(tx, userID)
		if err != nil {
			return err
		}

		// Hard delete keeps the (order, listing) unique index reusable
		// when the same listing is added again later.
		res := tx.Unscoped().
			Where("order_id = ? AND id IN ?", basket.ID, lineIDs).
			Delete(&models.OrderLine{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete order lines: %w", res.Error)
		}
		removed = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}

	return int(removed), nil
}

// Checkout attaches a delivery contact and promotes the basket to a new
// order. The next AddItem creates a fresh basket.
func (s *BasketService) Checkout(userID, contactID uuid.UUID) (*models.Order, error) {
	var orderID uuid.UUID

	err := s.db.Transaction(func(tx *gorm.DB) error {
		basket, err := s.findBasket(tx, userID)
		if err != nil {
			return err
		}

		var lineCount int64
		if err := tx.Model(&models.OrderLine{}).Where("order_id = ?", basket.ID).Count(&lineCount).Error; err != nil {
			return fmt.Errorf("failed to count basket lines: %w", err)
		}
		if lineCount == 0 {
			return apperrors.NewValidation("basket is empty")
		}

		var contact models.Contact
		err = tx.Where("id = ? AND user_id = ?", contactID, userID).First(&contact).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFound("contact")
		}
		if err != nil {
			return fmt.Errorf("failed to fetch contact: %w", err)
		}

		basket.ContactID = &contact.ID
		basket.Status = models.OrderStatusNew
		if err := tx.Save(basket).Error; err != nil {
			return fmt.Errorf("failed to check out basket: %w", err)
		}
		orderID = basket.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	var order models.Order
	if err := s.db.
		Preload("Contact").
		Preload("Lines").
		Preload("Lines.Listing").
		Preload("Lines.Listing.Product").
		First(&order, "id = ?", orderID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload order: %w", err)
	}
	return &order, nil
}

func (s *BasketService) findBasket(tx *gorm.DB, userID uuid.UUID) (*models.Order, error) {
	var basket models.Order
	err := s.lockRows(tx).
		Where("user_id = ? AND status = ?", userID, models.OrderStatusBasket).
		First(&basket).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFound("basket")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch basket: %w", err)
	}
	return &basket, nil
}

func (s *BasketService) getOrCreateBasket(tx *gorm.DB, userID uuid.UUID) (*models.Order, error) {
	basket, err := s.findBasket(tx, userID)
	if err == nil {
		return basket, nil
	}
	if !apperrors.IsNotFound(err) {
		return nil, err
	}

	created := models.Order{UserID: userID, Status: models.OrderStatusBasket}
	if err := tx.Create(&created).Error; err != nil {
		return nil, fmt.Errorf("failed to create basket: %w", err)
	}
	return &created, nil
}

// lockRows applies a row-level lock where the dialect supports one.
// The sqlite test database has no SELECT FOR UPDATE.
func (s *BasketService) lockRows(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
