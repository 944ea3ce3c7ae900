package menu

import (
	"context"
	"sort"
	"sync"

	"github.com/geromendez199/AlfajorApp/pkg/models"
)

// Memory is an in-process Catalog for tests and the memory backend.
type Memory struct {
	mu       sync.RWMutex
	products map[string]*models.Product
	extras   map[string]*models.Extra
}

func NewMemory() *Memory {
	return &Memory{
		products: make(map[string]*models.Product),
		extras:   make(map[string]*models.Extra),
	}
}

// AddProduct and AddExtra exist for seeding; the order subsystem itself
// never writes menu data.
func (c *Memory) AddProduct(p models.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[p.ID] = &p
}

func (c *Memory) AddExtra(e models.Extra) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.extras[e.ID] = &e
}

func (c *Memory) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.products[id]
	if !ok {
		return nil, models.NotFoundf("product", id)
	}
	cp := *p
	return &cp, nil
}

func (c *Memory) GetExtra(ctx context.Context, id string) (*models.Extra, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.extras[id]
	if !ok {
		return nil, models.NotFoundf("extra", id)
	}
	ce := *e
	return &ce, nil
}

func (c *Memory) ListProducts(ctx context.Context) ([]*models.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var products []*models.Product
	for _, p := range c.products {
		cp := *p
		products = append(products, &cp)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	return products, nil
}

func (c *Memory) ListExtras(ctx context.Context) ([]*models.Extra, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var extras []*models.Extra
	for _, e := range c.extras {
		ce := *e
		extras = append(extras, &ce)
	}
	sort.Slice(extras, func(i, j int) bool { return extras[i].Name < extras[j].Name })
	return extras, nil
}

// SeedHouseMenu fills a Memory catalog with a minimal menu so the memory
// backend is usable out of the box.
func SeedHouseMenu(c *Memory) {
	combo := int64(11000)
	c.AddProduct(models.Product{ID: "prod-cheese", Name: "Cheese", CategoryID: "cat-alfajores",
		PriceSolo: 8000, PriceCombo: &combo, IsAvailable: true, CanBeCombo: true})
	c.AddProduct(models.Product{ID: "prod-fries", Name: "Bandeja de Papas", CategoryID: "cat-especiales",
		PriceSolo: 4000, IsAvailable: true})
	c.AddProduct(models.Product{ID: "prod-soda", Name: "Gaseosa", CategoryID: "cat-bebidas",
		PriceSolo: 2500, IsAvailable: true})
	cheese := "prod-cheese"
	c.AddExtra(models.Extra{ID: "extra-bacon", Name: "Bacon", Price: 1000, ProductID: &cheese})
	c.AddExtra(models.Extra{ID: "extra-patty", Name: "Medallón extra", Price: 2500, IsGlobal: true})
}
