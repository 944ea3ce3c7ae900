package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/geromendez199/AlfajorApp/pkg/models"
)

// Memory is a mutex-guarded in-process Store. It backs tests and the
// `memory` backend for single-process development; the contract matches
// Postgres, including the conditional status update.
type Memory struct {
	mu         sync.Mutex
	orders     map[string]*models.Order
	nextNumber int64
}

func NewMemory() *Memory {
	return &Memory{orders: make(map[string]*models.Order)}
}

func (s *Memory) Create(ctx context.Context, order *models.Order) error {
	if err := ctx.Err(); err != nil {
		return storageErr("create order", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = order.CreatedAt
	s.nextNumber++
	order.Number = s.nextNumber
	s.orders[order.ID] = order.Clone()
	return nil
}

func (s *Memory) UpdateStatus(ctx context.Context, id string, from, to models.Status) (*models.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageErr("update order status", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, models.NotFoundf("order", id)
	}
	if order.Status != from {
		return nil, fmt.Errorf("order %s: status is no longer %s: %w", id, from, models.ErrInvalidTransition)
	}
	order.Status = to
	order.UpdatedAt = time.Now().UTC()
	return order.Clone(), nil
}

func (s *Memory) GetByID(ctx context.Context, id string) (*models.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageErr("get order", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, models.NotFoundf("order", id)
	}
	return order.Clone(), nil
}

func (s *Memory) List(ctx context.Context, filter Filter) ([]*models.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageErr("list orders", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var orders []*models.Order
	for _, order := range s.orders {
		if filter.Status != nil && order.Status != *filter.Status {
			continue
		}
		if filter.Channel != nil && order.Channel != *filter.Channel {
			continue
		}
		orders = append(orders, order.Clone())
	}
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].Number > orders[j].Number
	})
	return orders, nil
}
