// internal/services/supplier_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/marketlink/backend/internal/apperrors"
	"github.com/marketlink/backend/internal/models"
)

type SupplierServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *SupplierService
	baskets *BasketService

	buyer     *models.User
	supplier1 *models.User
	supplier2 *models.User
	shop1     *models.Shop
	shop2     *models.Shop
	listing1  *models.ProductListing
	listing2  *models.ProductListing

	// order holds listing1 (x2) from shop1 and listing2 (x1) from shop2.
	order *models.Order
}

func (suite *SupplierServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.service = NewSupplierService(suite.db)
	suite.baskets = NewBasketService(suite.db)

	suite.buyer = createTestUser(suite.T(), suite.db, "buyer1", models.UserTypeBuyer)
	suite.supplier1 = createTestUser(suite.T(), suite.db, "supplier1", models.UserTypeSupplier)
	suite.supplier2 = createTestUser(suite.T(), suite.db, "supplier2", models.UserTypeSupplier)

	suite.shop1 = createTestShop(suite.T(), suite.db, "Shop One", &suite.supplier1.ID, true)
	suite.shop2 = createTestShop(suite.T(), suite.db, "Shop Two", &suite.supplier2.ID, true)

	suite.listing1 = createTestListing(suite.T(), suite.db, suite.shop1, "Smartphone A10", 224, 1000, 10)
	suite.listing2 = createTestListing(suite.T(), suite.db, suite.shop2, "Silicone Case", 15, 100, 20)

	contact := createTestContact(suite.T(), suite.db, suite.buyer.ID)
	_, err := suite.baskets.AddItem(suite.buyer.ID, suite.listing1.ID, 2)
	suite.Require().NoError(err)
	_, err = suite.baskets.AddItem(suite.buyer.ID, suite.listing2.ID, 1)
	suite.Require().NoError(err)
	suite.order, err = suite.baskets.Checkout(suite.buyer.ID, contact.ID)
	suite.Require().NoError(err)
}

func (suite *SupplierServiceTestSuite) TestShopForMissing() {
	_, err := suite.service.ShopFor(suite.buyer.ID)
	suite.True(apperrors.IsNotFound(err))
}

func (suite *SupplierServiceTestSuite) TestListOrdersScopedToOwnLines() {
	summaries, err := suite.service.ListOrders(suite.supplier1.ID)
	suite.Require().NoError(err)
	suite.Require().Len(summaries, 1)

	summary := summaries[0]
	suite.Equal(suite.order.ID, summary.ID)
	suite.Equal("buyer1", summary.Buyer)
	suite.Equal(1, summary.LineCount, "only shop1's line counts")
	suite.Equal(float64(2000), summary.TotalAmount, "total over shop1's lines only")
	suite.Require().NotNil(summary.Contact)
	suite.Equal("Riverton", summary.Contact.City)
}

func (suite *SupplierServiceTestSuite) TestListOrdersExcludesBaskets() {
	// A basket containing shop1's listing must not leak into the list.
	other := createTestUser(suite.T(), suite.db, "buyer2", models.UserTypeBuyer)
	_, err := suite.baskets.AddItem(other.ID, suite.listing1.ID, 1)
	suite.Require().NoError(err)

	summaries, err := suite.service.ListOrders(suite.supplier1.ID)
	suite.Require().NoError(err)
	suite.Len(summaries, 1)
}

func (suite *SupplierServiceTestSuite) TestGetOrderDetail() {
	detail, err := suite.service.GetOrder(suite.supplier1.ID, suite.order.ID)
	suite.Require().NoError(err)

	suite.Equal(suite.order.ID, detail.ID)
	suite.Equal("buyer1", detail.Buyer.Username)
	suite.Require().NotNil(detail.Contact)
	suite.Require().Len(detail.Lines, 1)
	suite.Equal("Smartphone A10", detail.Lines[0].ProductName)
	suite.Equal(2, detail.Lines[0].Quantity)
	suite.Equal(float64(2000), detail.Lines[0].Total)
	suite.Equal(float64(2000), detail.TotalAmount)
}

func (suite *SupplierServiceTestSuite) TestGetOrderWithoutOwnLinesIsNotFound() {
	// A second order containing only shop2's listing.
	contact := createTestContact(suite.T(), suite.db, suite.buyer.ID)
	_, err := suite.baskets.AddItem(suite.buyer.ID, suite.listing2.ID, 3)
	suite.Require().NoError(err)
	secondOrder, err := suite.baskets.Checkout(suite.buyer.ID, contact.ID)
	suite.Require().NoError(err)

	_, err = suite.service.GetOrder(suite.supplier1.ID, secondOrder.ID)
	suite.True(apperrors.IsNotFound(err))

	_, err = suite.service.GetOrder(suite.supplier1.ID, uuid.New())
	suite.True(apperrors.IsNotFound(err))
}

func (suite *SupplierServiceTestSuite) TestUpdateStatus() {
	err := suite.service.UpdateStatus(suite.supplier1.ID, suite.order.ID, models.OrderStatusAssembled)
	suite.Require().NoError(err)

	var order models.Order
	suite.Require().NoError(suite.db.First(&order, "id = ?", suite.order.ID).Error)
	suite.Equal(models.OrderStatusAssembled, order.Status)
}

func (suite *SupplierServiceTestSuite) TestUpdateStatusValidation() {
	err := suite.service.UpdateStatus(suite.supplier1.ID, suite.order.ID, "shipped-ish")
	var validationErr *apperrors.ValidationError
	suite.Require().ErrorAs(err, &validationErr)

	err = suite.service.UpdateStatus(suite.supplier1.ID, suite.order.ID, models.OrderStatusBasket)
	suite.Require().ErrorAs(err, &validationErr)
}

func (suite *SupplierServiceTestSuite) TestUpdateStatusScopedToOwnOrders() {
	// An order made only of shop1 lines is invisible to supplier2.
	contact := createTestContact(suite.T(), suite.db, suite.buyer.ID)
	_, err := suite.baskets.AddItem(suite.buyer.ID, suite.listing1.ID, 1)
	suite.Require().NoError(err)
	shop1Order, err := suite.baskets.Checkout(suite.buyer.ID, contact.ID)
	suite.Require().NoError(err)

	err = suite.service.UpdateStatus(suite.supplier2.ID, shop1Order.ID, models.OrderStatusCanceled)
	suite.True(apperrors.IsNotFound(err))
}

func (suite *SupplierServiceTestSuite) TestGetState() {
	state, err := suite.service.GetState(suite.supplier1.ID)
	suite.Require().NoError(err)

	suite.Equal("Shop One", state.ShopName)
	suite.True(state.IsActive)
	suite.Equal(int64(1), state.Statistics.ActiveListings)
	suite.Equal(int64(1), state.Statistics.TotalListings)
	suite.Equal(int64(1), state.Statistics.ActiveOrders)
}

func (suite *SupplierServiceTestSuite) TestStateCountsExcludeFinishedOrders() {
	suite.Require().NoError(suite.service.UpdateStatus(suite.supplier1.ID, suite.order.ID, models.OrderStatusDelivered))

	state, err := suite.service.GetState(suite.supplier1.ID)
	suite.Require().NoError(err)
	suite.Equal(int64(0), state.Statistics.ActiveOrders)
}

func (suite *SupplierServiceTestSuite) TestSetState() {
	shop, err := suite.service.SetState(suite.supplier1.ID, false)
	suite.Require().NoError(err)
	suite.False(shop.IsActive)

	state, err := suite.service.GetState(suite.supplier1.ID)
	suite.Require().NoError(err)
	suite.False(state.IsActive)
}

func TestSupplierServiceSuite(t *testing.T) {
	suite.Run(t, new(SupplierServiceTestSuite))
}
