// internal/services/order_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/marketlink/backend/internal/apperrors"
	"github.com/marketlink/backend/internal/models"
	"github.com/marketlink/backend/internal/utils"
)

type OrderServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *OrderService
	baskets *BasketService

	buyer   *models.User
	listing *models.ProductListing
	order   *models.Order
}

func (suite *OrderServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.service = NewOrderService(suite.db)
	suite.baskets = NewBasketService(suite.db)

	suite.buyer = createTestUser(suite.T(), suite.db, "buyer1", models.UserTypeBuyer)
	shop := createTestShop(suite.T(), suite.db, "Connect Shop", nil, true)
	suite.listing = createTestListing(suite.T(), suite.db, shop, "Smartphone A10", 224, 1000, 10)

	contact := createTestContact(suite.T(), suite.db, suite.buyer.ID)
	_, err := suite.baskets.AddItem(suite.buyer.ID, suite.listing.ID, 2)
	suite.Require().NoError(err)
	suite.order, err = suite.baskets.Checkout(suite.buyer.ID, contact.ID)
	suite.Require().NoError(err)
}

func (suite *OrderServiceTestSuite) TestListOrdersExcludesBasket() {
	// A live basket alongside the placed order.
	_, err := suite.baskets.AddItem(suite.buyer.ID, suite.listing.ID, 1)
	suite.Require().NoError(err)

	orders, total, err := suite.service.ListOrders(suite.buyer.ID, utils.PaginationParams{Page: 1, Limit: 20, Sort: "created_at", Order: "desc"})
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)
	suite.Require().Len(orders, 1)
	suite.Equal(suite.order.ID, orders[0].ID)
	suite.Equal(models.OrderStatusNew, orders[0].Status)
}

func (suite *OrderServiceTestSuite) TestListOrdersScopedToUser() {
	other := createTestUser(suite.T(), suite.db, "buyer2", models.UserTypeBuyer)

	orders, total, err := suite.service.ListOrders(other.ID, utils.PaginationParams{Page: 1, Limit: 20, Sort: "created_at", Order: "desc"})
	suite.Require().NoError(err)
	suite.Equal(int64(0), total)
	suite.Empty(orders)
}

func (suite *OrderServiceTestSuite) TestGetOrder() {
	order, err := suite.service.GetOrder(suite.buyer.ID, suite.order.ID)
	suite.Require().NoError(err)
	suite.Require().Len(order.Lines, 1)
	suite.Equal("Smartphone A10", order.Lines[0].Listing.Product.Name)
	suite.Equal(float64(2000), order.Total())
}

func (suite *OrderServiceTestSuite) TestGetOrderOwnership() {
	other := createTestUser(suite.T(), suite.db, "buyer2", models.UserTypeBuyer)

	_, err := suite.service.GetOrder(other.ID, suite.order.ID)
	suite.True(apperrors.IsNotFound(err))

	_, err = suite.service.GetOrder(suite.buyer.ID, uuid.New())
	suite.True(apperrors.IsNotFound(err))
}

func (suite *OrderServiceTestSuite) TestUpdateStatus() {
	order, err := suite.service.UpdateStatus(suite.buyer.ID, suite.order.ID, models.OrderStatusCanceled)
	suite.Require().NoError(err)
	suite.Equal(models.OrderStatusCanceled, order.Status)
}

func (suite *OrderServiceTestSuite) TestUpdateStatusRejectsUnknownAndBasket() {
	var validationErr *apperrors.ValidationError

	_, err := suite.service.UpdateStatus(suite.buyer.ID, suite.order.ID, "teleported")
	suite.Require().ErrorAs(err, &validationErr)

	_, err = suite.service.UpdateStatus(suite.buyer.ID, suite.order.ID, models.OrderStatusBasket)
	suite.Require().ErrorAs(err, &validationErr)
}

func TestOrderServiceSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}
