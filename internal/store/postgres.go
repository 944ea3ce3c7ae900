package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/geromendez199/AlfajorApp/pkg/models"
)

// Postgres stores orders in three tables: orders, order_items and
// order_item_extras. Item and extra rows carry a position column so the
// ordered sequences submitted at creation time come back in the same order.
type Postgres struct {
	db     *sql.DB
	logger *logrus.Logger
}

func NewPostgres(db *sql.DB, logger *logrus.Logger) *Postgres {
	return &Postgres{db: db, logger: logger}
}

// EnsureSchema creates the order tables and the number sequence if they do
// not exist yet.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE SEQUENCE IF NOT EXISTS order_number_seq`,
		`CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY,
			number BIGINT NOT NULL,
			channel TEXT NOT NULL,
			status TEXT NOT NULL,
			total BIGINT NOT NULL CHECK (total >= 0),
			notes TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			id TEXT PRIMARY KEY,
			order_id TEXT NOT NULL REFERENCES orders(id),
			position INT NOT NULL,
			product_id TEXT NOT NULL,
			qty INT NOT NULL CHECK (qty > 0),
			unit_price BIGINT NOT NULL CHECK (unit_price >= 0),
			is_combo BOOLEAN NOT NULL DEFAULT FALSE,
			notes TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS order_item_extras (
			id TEXT PRIMARY KEY,
			item_id TEXT NOT NULL REFERENCES order_items(id),
			position INT NOT NULL,
			extra_id TEXT NOT NULL,
			price BIGINT NOT NULL CHECK (price >= 0),
			qty INT NOT NULL CHECK (qty > 0)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_channel ON orders(channel)`,
		`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)`,
		`CREATE INDEX IF NOT EXISTS idx_order_item_extras_item ON order_item_extras(item_id)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return storageErr("ensure schema", err)
		}
	}
	return nil
}

func (s *Postgres) Create(ctx context.Context, order *models.Order) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin create order", err)
	}
	defer tx.Rollback()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = order.CreatedAt

	if err := tx.QueryRowContext(ctx, `SELECT nextval('order_number_seq')`).Scan(&order.Number); err != nil {
		return storageErr("assign order number", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, number, channel, status, total, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		order.ID, order.Number, order.Channel, order.Status, order.Total, order.Notes,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return storageErr("insert order", err)
	}

	for i, item := range order.Items {
		itemID := uuid.New().String()
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, position, product_id, qty, unit_price, is_combo, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			itemID, order.ID, i, item.ProductID, item.Qty, item.UnitPrice, item.IsCombo, item.Notes,
		)
		if err != nil {
			return storageErr("insert order item", err)
		}
		for j, ex := range item.Extras {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO order_item_extras (id, item_id, position, extra_id, price, qty)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				uuid.New().String(), itemID, j, ex.ExtraID, ex.Price, ex.Qty,
			)
			if err != nil {
				return storageErr("insert order item extra", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return storageErr("commit create order", err)
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"order_number": order.Number,
		"items_count":  len(order.Items),
	}).Debug("Order persisted")
	return nil
}

func (s *Postgres) UpdateStatus(ctx context.Context, id string, from, to models.Status) (*models.Order, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE orders SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2`,
		id, from, to, time.Now().UTC(),
	)
	if err != nil {
		return nil, storageErr("update order status", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, storageErr("update order status", err)
	}
	if affected == 0 {
		// Either the order does not exist or another request changed its
		// status first. Look again to tell the two apart.
		if _, err := s.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("order %s: status is no longer %s: %w", id, from, models.ErrInvalidTransition)
	}
	return s.GetByID(ctx, id)
}

func (s *Postgres) GetByID(ctx context.Context, id string) (*models.Order, error) {
	order := &models.Order{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, number, channel, status, total, notes, created_at, updated_at
		FROM orders WHERE id = $1`, id,
	).Scan(&order.ID, &order.Number, &order.Channel, &order.Status, &order.Total,
		&order.Notes, &order.CreatedAt, &order.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NotFoundf("order", id)
	}
	if err != nil {
		return nil, storageErr("get order", err)
	}
	if err := s.loadItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Postgres) List(ctx context.Context, filter Filter) ([]*models.Order, error) {
	query := `
		SELECT id, number, channel, status, total, notes, created_at, updated_at
		FROM orders`
	var clauses []string
	var args []interface{}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Channel != nil {
		args = append(args, *filter.Channel)
		clauses = append(clauses, fmt.Sprintf("channel = $%d", len(args)))
	}
	for i, clause := range clauses {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += " ORDER BY created_at DESC, number DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("list orders", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order := &models.Order{}
		if err := rows.Scan(&order.ID, &order.Number, &order.Channel, &order.Status,
			&order.Total, &order.Notes, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return nil, storageErr("scan order", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list orders", err)
	}

	for _, order := range orders {
		if err := s.loadItems(ctx, order); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (s *Postgres) loadItems(ctx context.Context, order *models.Order) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, product_id, qty, unit_price, is_combo, notes
		FROM order_items WHERE order_id = $1 ORDER BY position`, order.ID)
	if err != nil {
		return storageErr("load order items", err)
	}
	defer rows.Close()

	var itemIDs []string
	order.Items = nil
	for rows.Next() {
		var itemID string
		var item models.OrderItem
		if err := rows.Scan(&itemID, &item.ProductID, &item.Qty, &item.UnitPrice,
			&item.IsCombo, &item.Notes); err != nil {
			return storageErr("scan order item", err)
		}
		itemIDs = append(itemIDs, itemID)
		order.Items = append(order.Items, item)
	}
	if err := rows.Err(); err != nil {
		return storageErr("load order items", err)
	}

	for i, itemID := range itemIDs {
		extras, err := s.loadExtras(ctx, itemID)
		if err != nil {
			return err
		}
		order.Items[i].Extras = extras
	}
	return nil
}

func (s *Postgres) loadExtras(ctx context.Context, itemID string) ([]models.ExtraSelection, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT extra_id, price, qty
		FROM order_item_extras WHERE item_id = $1 ORDER BY position`, itemID)
	if err != nil {
		return nil, storageErr("load item extras", err)
	}
	defer rows.Close()

	var extras []models.ExtraSelection
	for rows.Next() {
		var ex models.ExtraSelection
		if err := rows.Scan(&ex.ExtraID, &ex.Price, &ex.Qty); err != nil {
			return nil, storageErr("scan item extra", err)
		}
		extras = append(extras, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("load item extras", err)
	}
	return extras, nil
}

// storageErr classifies a driver error: deadline overruns surface as
// ErrTimeout, everything else wraps as a StorageError.
func storageErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, models.ErrTimeout)
	}
	return &models.StorageError{Op: op, Err: err}
}
