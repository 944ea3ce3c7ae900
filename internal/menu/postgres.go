package menu

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/geromendez199/AlfajorApp/pkg/models"
)

// Postgres reads menu data from the shared database. The menu subsystem
// owns writes; this side only ensures the schema exists and seeds the house
// menu on an empty database so a fresh install is usable.
type Postgres struct {
	db     *sql.DB
	logger *logrus.Logger
}

func NewPostgres(db *sql.DB, logger *logrus.Logger) *Postgres {
	return &Postgres{db: db, logger: logger}
}

func (c *Postgres) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS categories (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			sort_order INT NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			category_id TEXT NOT NULL REFERENCES categories(id),
			price_solo BIGINT NOT NULL CHECK (price_solo >= 0),
			price_combo BIGINT,
			is_available BOOLEAN NOT NULL DEFAULT TRUE,
			can_be_combo BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE TABLE IF NOT EXISTS extras (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			price BIGINT NOT NULL CHECK (price >= 0),
			product_id TEXT REFERENCES products(id),
			is_global BOOLEAN NOT NULL DEFAULT FALSE
		)`,
	}
	for _, stmt := range stmts {
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return &models.StorageError{Op: "ensure menu schema", Err: err}
		}
	}
	return nil
}

func (c *Postgres) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	p := &models.Product{}
	err := c.db.QueryRowContext(ctx, `
		SELECT id, name, description, category_id, price_solo, price_combo, is_available, can_be_combo
		FROM products WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Description, &p.CategoryID, &p.PriceSolo, &p.PriceCombo,
		&p.IsAvailable, &p.CanBeCombo)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NotFoundf("product", id)
	}
	if err != nil {
		return nil, &models.StorageError{Op: "get product", Err: err}
	}
	return p, nil
}

func (c *Postgres) GetExtra(ctx context.Context, id string) (*models.Extra, error) {
	e := &models.Extra{}
	err := c.db.QueryRowContext(ctx, `
		SELECT id, name, price, product_id, is_global
		FROM extras WHERE id = $1`, id,
	).Scan(&e.ID, &e.Name, &e.Price, &e.ProductID, &e.IsGlobal)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NotFoundf("extra", id)
	}
	if err != nil {
		return nil, &models.StorageError{Op: "get extra", Err: err}
	}
	return e, nil
}

func (c *Postgres) ListProducts(ctx context.Context) ([]*models.Product, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT p.id, p.name, p.description, p.category_id, p.price_solo, p.price_combo, p.is_available, p.can_be_combo
		FROM products p
		JOIN categories c ON c.id = p.category_id
		ORDER BY c.sort_order, p.name`)
	if err != nil {
		return nil, &models.StorageError{Op: "list products", Err: err}
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p := &models.Product{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CategoryID, &p.PriceSolo,
			&p.PriceCombo, &p.IsAvailable, &p.CanBeCombo); err != nil {
			return nil, &models.StorageError{Op: "scan product", Err: err}
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, &models.StorageError{Op: "list products", Err: err}
	}
	return products, nil
}

func (c *Postgres) ListExtras(ctx context.Context) ([]*models.Extra, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, name, price, product_id, is_global
		FROM extras ORDER BY name`)
	if err != nil {
		return nil, &models.StorageError{Op: "list extras", Err: err}
	}
	defer rows.Close()

	var extras []*models.Extra
	for rows.Next() {
		e := &models.Extra{}
		if err := rows.Scan(&e.ID, &e.Name, &e.Price, &e.ProductID, &e.IsGlobal); err != nil {
			return nil, &models.StorageError{Op: "scan extra", Err: err}
		}
		extras = append(extras, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &models.StorageError{Op: "list extras", Err: err}
	}
	return extras, nil
}

// Seed loads the house menu when the products table is empty.
func (c *Postgres) Seed(ctx context.Context) error {
	var count int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return &models.StorageError{Op: "count products", Err: err}
	}
	if count > 0 {
		return nil
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return &models.StorageError{Op: "begin menu seed", Err: err}
	}
	defer tx.Rollback()

	categoryIDs := map[string]string{}
	for i, name := range []string{"Alfajores", "Especiales", "Bebidas", "Tragos"} {
		id := uuid.New().String()
		categoryIDs[name] = id
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO categories (id, name, sort_order) VALUES ($1, $2, $3)`,
			id, name, i+1); err != nil {
			return &models.StorageError{Op: "seed category", Err: err}
		}
	}

	combo := func(v int64) *int64 { return &v }
	products := []struct {
		name, description, category string
		priceSolo                   int64
		priceCombo                  *int64
		canBeCombo                  bool
	}{
		{"Cheese", "Carne y cheddar", "Alfajores", 8000, combo(11000), true},
		{"Onion", "Smash con cebolla en plancha y cheddar", "Alfajores", 9000, combo(12000), true},
		{"American", "Lechuga, tomate y salsa especial", "Alfajores", 9000, combo(12000), true},
		{"Pickle", "Pepinos encurtidos, cebolla morada y salsa pickle", "Alfajores", 9000, combo(12000), true},
		{"Caja de Alfajores", "4 Cheese simples", "Especiales", 20000, nil, false},
		{"Bandeja de Papas", "Papas solas", "Especiales", 4000, nil, false},
		{"Bandeja de Papas con bacon y salsita", "Papas con topping de bacon y salsa", "Especiales", 5000, nil, false},
		{"Gaseosa", "", "Bebidas", 2500, nil, false},
		{"Agua saborizada", "", "Bebidas", 2500, nil, false},
		{"Agua / Soda", "", "Bebidas", 2000, nil, false},
		{"Liso Santa Fe", "", "Bebidas", 1000, nil, false},
		{"Pinta Heineken", "", "Bebidas", 4000, nil, false},
		{"Fernet", "", "Tragos", 3000, nil, false},
		{"Gin Heredero", "", "Tragos", 3000, nil, false},
		{"Vermut", "", "Tragos", 3000, nil, false},
	}

	productIDs := map[string]string{}
	for _, p := range products {
		id := uuid.New().String()
		productIDs[p.name] = id
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO products (id, name, description, category_id, price_solo, price_combo, is_available, can_be_combo)
			VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7)`,
			id, p.name, p.description, categoryIDs[p.category], p.priceSolo, p.priceCombo, p.canBeCombo); err != nil {
			return &models.StorageError{Op: fmt.Sprintf("seed product %s", p.name), Err: err}
		}
	}

	extras := []struct {
		name      string
		price     int64
		productOf string
		isGlobal  bool
	}{
		{"Bacon", 1000, "Cheese", false},
		{"Pepinos encurtidos", 0, "", true},
		{"Medallón extra", 2500, "", true},
	}
	for _, e := range extras {
		var productID *string
		if e.productOf != "" {
			id := productIDs[e.productOf]
			productID = &id
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO extras (id, name, price, product_id, is_global)
			VALUES ($1, $2, $3, $4, $5)`,
			uuid.New().String(), e.name, e.price, productID, e.isGlobal); err != nil {
			return &models.StorageError{Op: fmt.Sprintf("seed extra %s", e.name), Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &models.StorageError{Op: "commit menu seed", Err: err}
	}
	c.logger.WithField("products", len(products)).Info("Seeded house menu")
	return nil
}
