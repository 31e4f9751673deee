// internal/services/dispatcher_test.go
package services

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/marketlink/backend/internal/apperrors"
	"github.com/marketlink/backend/internal/config"
	"github.com/marketlink/backend/internal/jobs"
	"github.com/marketlink/backend/internal/models"
)

const dispatcherFeedYAML = `
shop: Connect Shop
categories:
  - id: 224
    name: Smartphones
goods:
  - id: 4216292
    category: 224
    name: Smartphone A10
    price: 110000
    price_rrc: 116990
    quantity: 14
`

type DispatcherTestSuite struct {
	suite.Suite
	db         *gorm.DB
	queue      *jobs.Queue
	dispatcher *Dispatcher
}

func (suite *DispatcherTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.queue = jobs.NewQueue(1, 8)

	cfg := &config.Config{
		Jobs: config.JobsConfig{
			ImportRetries:    1,
			ImportBackoffSec: 0,
			EmailRetries:     1,
			EmailBackoffSec:  0,
		},
	}
	notifier := NewNotificationService(suite.db, cfg)
	suite.dispatcher = NewDispatcher(suite.db, cfg, suite.queue, NewImportService(suite.db), notifier)
}

func (suite *DispatcherTestSuite) TearDownTest() {
	suite.queue.Shutdown()
}

func (suite *DispatcherTestSuite) waitForFinish(id uuid.UUID) *jobs.State {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		state, err := suite.dispatcher.Poll(id)
		suite.Require().NoError(err)
		if state.Status != jobs.StatusPending {
			return state
		}
		time.Sleep(5 * time.Millisecond)
	}
	suite.FailNow("job did not finish in time")
	return nil
}

func (suite *DispatcherTestSuite) TestDispatchImport() {
	supplier := createTestUser(suite.T(), suite.db, "supplier1", models.UserTypeSupplier)

	path := filepath.Join(suite.T().TempDir(), "feed.yaml")
	suite.Require().NoError(os.WriteFile(path, []byte(dispatcherFeedYAML), 0o644))

	handle, err := suite.dispatcher.DispatchImport(path, "", &supplier.ID)
	suite.Require().NoError(err)

	state := suite.waitForFinish(handle.ID)
	suite.Equal(jobs.StatusSuccess, state.Status)

	result, ok := state.Result.(*ImportResult)
	suite.Require().True(ok)
	suite.Equal("Connect Shop", result.ShopName, "shop name falls back to the feed")
	suite.Equal(1, result.ListingsWritten)

	var shop models.Shop
	suite.Require().NoError(suite.db.First(&shop, "name = ?", "Connect Shop").Error)
	suite.Require().NotNil(shop.UserID)
	suite.Equal(supplier.ID, *shop.UserID)
}

func (suite *DispatcherTestSuite) TestDispatchImportUnreachableFeed() {
	handle, err := suite.dispatcher.DispatchImport(filepath.Join(suite.T().TempDir(), "missing.yaml"), "Shop", nil)
	suite.Require().NoError(err)

	state := suite.waitForFinish(handle.ID)
	suite.Equal(jobs.StatusFailure, state.Status)
	suite.Equal(2, state.Attempts, "fetch failures are retried")
}

func (suite *DispatcherTestSuite) TestDispatchWelcomeEmail() {
	user := createTestUser(suite.T(), suite.db, "buyer1", models.UserTypeBuyer)

	// SMTP is not configured, so the send is logged and succeeds.
	handle, err := suite.dispatcher.DispatchWelcomeEmail(user.ID)
	suite.Require().NoError(err)

	state := suite.waitForFinish(handle.ID)
	suite.Equal(jobs.StatusSuccess, state.Status)
}

func (suite *DispatcherTestSuite) TestPollUnknownJob() {
	_, err := suite.dispatcher.Poll(uuid.New())
	suite.True(apperrors.IsNotFound(err))
}

func TestDispatcherSuite(t *testing.T) {
	suite.Run(t, new(DispatcherTestSuite))
}
