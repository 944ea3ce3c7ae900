// Package store persists orders and their nested line items. Two
// implementations exist: Postgres for production and Memory for tests and
// single-process development.
package store

import (
	"context"

	"github.com/geromendez199/AlfajorApp/pkg/models"
)

// Filter narrows List results. Nil fields are ignored; when both are set
// they combine with AND semantics.
type Filter struct {
	Status  *models.Status
	Channel *models.Channel
}

// Store is the persistence boundary consumed by the order service.
type Store interface {
	// Create persists a new order atomically, assigning its id (if empty)
	// and its sequential number. Either the order and all nested items are
	// written or nothing is.
	Create(ctx context.Context, order *models.Order) error

	// UpdateStatus performs a conditional write keyed on the expected
	// current status: the row is updated only if its status is still
	// `from`. An unknown id returns ErrNotFound; a lost race (status no
	// longer `from`) returns ErrInvalidTransition. Transition legality is
	// the state machine's job, checked by the caller beforehand.
	UpdateStatus(ctx context.Context, id string, from, to models.Status) (*models.Order, error)

	// GetByID returns the order or ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Order, error)

	// List returns orders matching the filter, newest first.
	List(ctx context.Context, filter Filter) ([]*models.Order, error)
}
