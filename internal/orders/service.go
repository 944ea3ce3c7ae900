// Package orders implements the order lifecycle use cases: create an
// order, move it through its status transitions, and fan the resulting
// events out to every connected display.
package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/geromendez199/AlfajorApp/internal/menu"
	"github.com/geromendez199/AlfajorApp/internal/orderstate"
	"github.com/geromendez199/AlfajorApp/internal/pricing"
	"github.com/geromendez199/AlfajorApp/internal/store"
	"github.com/geromendez199/AlfajorApp/pkg/models"
)

// Broadcaster fans one event out to the connected displays. Delivery is
// fire-and-forget; it can never fail the request that triggered it.
type Broadcaster interface {
	Publish(eventType models.EventType, order *models.Order)
}

// EventMirror forwards lifecycle events to an external stream. Optional;
// failures are logged and swallowed.
type EventMirror interface {
	PublishOrderEvent(eventType models.EventType, order *models.Order) error
}

type Service struct {
	store   store.Store
	catalog menu.Catalog
	hub     Broadcaster
	mirror  EventMirror
	logger  *logrus.Logger
}

// NewService wires the orchestrator. mirror may be nil when Kafka is not
// configured.
func NewService(st store.Store, catalog menu.Catalog, hub Broadcaster, mirror EventMirror, logger *logrus.Logger) *Service {
	return &Service{
		store:   st,
		catalog: catalog,
		hub:     hub,
		mirror:  mirror,
		logger:  logger,
	}
}

// CreateOrder validates the request, snapshots prices into a new PENDING
// order, persists it atomically and announces it as order_created.
func (s *Service) CreateOrder(ctx context.Context, channel models.Channel, items []models.OrderItem, notes string) (*models.Order, error) {
	if !channel.Valid() {
		return nil, models.Validationf("channel", "unknown channel %q", channel)
	}
	if len(items) == 0 {
		return nil, models.Validationf("items", "order needs at least one item")
	}

	// Referenced menu ids must exist. Prices stay as submitted: they are
	// snapshots of what the cashier saw, immune to later menu edits.
	for i, item := range items {
		if item.ProductID == "" {
			return nil, models.Validationf(fmt.Sprintf("items[%d].product_id", i), "is required")
		}
		if _, err := s.catalog.GetProduct(ctx, item.ProductID); err != nil {
			return nil, err
		}
		for j, ex := range item.Extras {
			if ex.ExtraID == "" {
				return nil, models.Validationf(fmt.Sprintf("items[%d].extras[%d].extra_id", i, j), "is required")
			}
			if _, err := s.catalog.GetExtra(ctx, ex.ExtraID); err != nil {
				return nil, err
			}
		}
	}

	total, err := pricing.Total(items)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		ID:        uuid.New().String(),
		Channel:   channel,
		Status:    models.StatusPending,
		Items:     items,
		Total:     total,
		Notes:     notes,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Create(ctx, order); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"order_number": order.Number,
		"channel":      order.Channel,
		"total":        order.Total,
		"items_count":  len(order.Items),
	}).Info("Order created")

	s.announce(models.EventOrderCreated, order)
	return order, nil
}

// ChangeStatus applies one transition. The read plus the store's
// conditional write form an atomic check-then-write per order id: of two
// concurrent conflicting requests, exactly one wins.
func (s *Service) ChangeStatus(ctx context.Context, id string, requested models.Status) (*models.Order, error) {
	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	eventType, err := orderstate.Transition(current.Status, requested)
	if err != nil {
		// Illegal transition: no store write, no broadcast.
		return nil, err
	}

	updated, err := s.store.UpdateStatus(ctx, id, current.Status, requested)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":     updated.ID,
		"order_number": updated.Number,
		"from":         current.Status,
		"to":           updated.Status,
		"event_type":   eventType,
	}).Info("Order status changed")

	s.announce(eventType, updated)
	return updated, nil
}

func (s *Service) ListOrders(ctx context.Context, filter store.Filter) ([]*models.Order, error) {
	return s.store.List(ctx, filter)
}

func (s *Service) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	return s.store.GetByID(ctx, id)
}

// announce drives both fan-out paths. Neither may fail the request.
func (s *Service) announce(eventType models.EventType, order *models.Order) {
	s.hub.Publish(eventType, order)
	if s.mirror == nil {
		return
	}
	if err := s.mirror.PublishOrderEvent(eventType, order); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"event_type": eventType,
			"order_id":   order.ID,
		}).Error("Failed to mirror order event")
	}
}
