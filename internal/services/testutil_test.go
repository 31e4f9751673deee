// internal/services/testutil_test.go
package services

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/marketlink/backend/internal/database"
	"github.com/marketlink/backend/internal/models"
)

var testDBCounter int64

// newTestDB opens a fresh in-memory sqlite database with the full
// schema applied. Each call gets its own named memory database so
// suites never share state.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:services_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.RunMigrations(db))

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string, userType models.UserType) *models.User {
	t.Helper()

	user := &models.User{
		Username:  username,
		Email:     username + "@example.com",
		UserType:  userType,
		FirstName: "Test",
		LastName:  "User",
	}
	require.NoError(t, user.SetPassword("secret-pass-123"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestContact(t *testing.T, db *gorm.DB, userID uuid.UUID) *models.Contact {
	t.Helper()

	contact := &models.Contact{
		UserID: userID,
		City:   "Riverton",
		Street: "Main st",
		House:  "12",
		Phone:  "+1-555-0101",
	}
	require.NoError(t, db.Create(contact).Error)
	return contact
}

func createTestShop(t *testing.T, db *gorm.DB, name string, ownerID *uuid.UUID, active bool) *models.Shop {
	t.Helper()

	shop := &models.Shop{Name: name, UserID: ownerID, IsActive: active}
	require.NoError(t, db.Create(shop).Error)
	return shop
}

func createTestListing(t *testing.T, db *gorm.DB, shop *models.Shop, productName string, externalCategoryID int, price float64, quantity int) *models.ProductListing {
	t.Helper()

	var category models.Category
	err := db.Where("external_id = ?", externalCategoryID).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		category = models.Category{ExternalID: externalCategoryID, Name: fmt.Sprintf("Category %d", externalCategoryID)}
		require.NoError(t, db.Create(&category).Error)
	} else {
		require.NoError(t, err)
	}

	var product models.Product
	err = db.Where("name = ? AND category_id = ?", productName, category.ID).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		product = models.Product{Name: productName, CategoryID: category.ID}
		require.NoError(t, db.Create(&product).Error)
	} else {
		require.NoError(t, err)
	}

	listing := &models.ProductListing{
		ProductID:  product.ID,
		ShopID:     shop.ID,
		ExternalID: 1000 + quantity,
		Model:      "std",
		Quantity:   quantity,
		Price:      price,
		PriceRRC:   price * 1.2,
	}
	require.NoError(t, db.Create(listing).Error)
	return listing
}
