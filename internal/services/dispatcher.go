// internal/services/dispatcher.go
package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketlink/backend/internal/apperrors"
	"github.com/marketlink/backend/internal/config"
	"github.com/marketlink/backend/internal/feed"
	"github.com/marketlink/backend/internal/jobs"
	"github.com/marketlink/backend/internal/models"
)

// Dispatcher binds the job queue to the two job families this system
// runs in the background: catalog imports and transactional email.
// Callers get a handle immediately and poll for the outcome.
type Dispatcher struct {
	db       *gorm.DB
	cfg      *config.Config
	queue    *jobs.Queue
	loader   *feed.Loader
	importer *ImportService
	notifier *NotificationService
}

func NewDispatcher(db *gorm.DB, cfg *config.Config, queue *jobs.Queue, importer *ImportService, notifier *NotificationService) *Dispatcher {
	return &Dispatcher{
		db:       db,
		cfg:      cfg,
		queue:    queue,
		loader:   feed.NewLoader(),
		importer: importer,
		notifier: notifier,
	}
}

// DispatchImport fetches the feed and runs the full-replace import in
// the background. Re-running is safe: each run replaces the shop's
// listings wholesale.
func (d *Dispatcher) DispatchImport(url, shopName string, ownerUserID *uuid.UUID) (*jobs.Handle, error) {
	return d.queue.Enqueue(jobs.Spec{
		Name:       "catalog_import",
		MaxRetries: d.cfg.Jobs.ImportRetries,
		Backoff:    time.Duration(d.cfg.Jobs.ImportBackoffSec) * time.Second,
		Run: func() (interface{}, error) {
			f, err := d.loader.Load(url)
			if err != nil {
				return nil, &apperrors.TransientJobError{Err: err}
			}
			// An established shop keeps its name; the feed's own shop
			// field only names a brand-new one.
			name := shopName
			if name == "" {
				name = f.Shop
			}
			result, err := d.importer.Import(f, name, ownerUserID)
			if err != nil {
				return nil, err
			}
			return result, nil
		},
	})
}

// DispatchWelcomeEmail sends the registration email in the background.
func (d *Dispatcher) DispatchWelcomeEmail(userID uuid.UUID) (*jobs.Handle, error) {
	return d.queue.Enqueue(d.emailSpec("welcome_email", func() error {
		var user models.User
		if err := d.db.First(&user, "id = ?", userID).Error; err != nil {
			return fmt.Errorf("failed to load user: %w", err)
		}
		return d.notifier.SendWelcomeEmail(&user)
	}))
}

// DispatchOrderConfirmedEmail notifies the buyer about their order.
func (d *Dispatcher) DispatchOrderConfirmedEmail(orderID uuid.UUID) (*jobs.Handle, error) {
	return d.queue.Enqueue(d.emailSpec("order_confirmed_email", func() error {
		order, err := d.loadOrder(orderID)
		if err != nil {
			return err
		}
		return d.notifier.SendOrderConfirmedEmail(order)
	}))
}

// DispatchNewOrderEmails notifies every supplier whose shop has lines
// in the placed order.
func (d *Dispatcher) DispatchNewOrderEmails(orderID uuid.UUID) (*jobs.Handle, error) {
	return d.queue.Enqueue(d.emailSpec("new_order_emails", func() error {
		order, err := d.loadOrder(orderID)
		if err != nil {
			return err
		}

		shops := make(map[uuid.UUID]*models.Shop)
		for i := range order.Lines {
			shop := &order.Lines[i].Listing.Shop
			shops[shop.ID] = shop
		}

		for _, shop := range shops {
			// Owner email lives on the user record, re-fetch with it.
			var full models.Shop
			if err := d.db.Preload("User").First(&full, "id = ?", shop.ID).Error; err != nil {
				return fmt.Errorf("failed to load shop: %w", err)
			}
			if err := d.notifier.SendNewOrderEmail(&full, order); err != nil {
				return err
			}
		}
		return nil
	}))
}

// Poll reports the state of a previously dispatched job.
func (d *Dispatcher) Poll(id uuid.UUID) (*jobs.State, error) {
	state, ok := d.queue.Poll(id)
	if !ok {
		return nil, apperrors.NewNotFound("job")
	}
	return state, nil
}

func (d *Dispatcher) emailSpec(name string, send func() error) jobs.Spec {
	return jobs.Spec{
		Name:       name,
		MaxRetries: d.cfg.Jobs.EmailRetries,
		Backoff:    time.Duration(d.cfg.Jobs.EmailBackoffSec) * time.Second,
		Run: func() (interface{}, error) {
			if err := send(); err != nil {
				return nil, &apperrors.TransientJobError{Err: err}
			}
			return map[string]interface{}{"sent": true}, nil
		},
	}
}

func (d *Dispatcher) loadOrder(orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := d.db.
		Preload("User").
		Preload("Lines").
		Preload("Lines.Listing").
		Preload("Lines.Listing.Shop").
		First(&order, "id = ?", orderID).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return &order, nil
}
