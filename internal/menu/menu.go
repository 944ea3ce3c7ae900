// Package menu is the read-only boundary to the menu subsystem. The order
// service uses it to validate referenced product and extra ids at order
// creation; it never writes menu data.
package menu

import (
	"context"

	"github.com/geromendez199/AlfajorApp/pkg/models"
)

// Catalog exposes current menu reference data. Lookups return ErrNotFound
// for unknown ids.
type Catalog interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	GetExtra(ctx context.Context, id string) (*models.Extra, error)
	ListProducts(ctx context.Context) ([]*models.Product, error)
	ListExtras(ctx context.Context) ([]*models.Extra, error)
}
