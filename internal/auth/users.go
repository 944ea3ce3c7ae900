package auth

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/geromendez199/AlfajorApp/pkg/models"
)

var ErrInvalidPIN = errors.New("invalid pin")

// Users resolves a terminal PIN to a staff member. PINs are stored bcrypt
// hashed, so lookup is a scan-and-compare over the (small) staff table.
type Users interface {
	Authenticate(ctx context.Context, pin string) (*models.User, error)
}

type PostgresUsers struct {
	db     *sql.DB
	logger *logrus.Logger
}

func NewPostgresUsers(db *sql.DB, logger *logrus.Logger) *PostgresUsers {
	return &PostgresUsers{db: db, logger: logger}
}

func (u *PostgresUsers) EnsureSchema(ctx context.Context) error {
	_, err := u.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			pin_hash TEXT NOT NULL,
			role TEXT NOT NULL
		)`)
	if err != nil {
		return &models.StorageError{Op: "ensure users schema", Err: err}
	}
	return nil
}

// SeedAdmin creates the initial admin account when the users table is
// empty, so a fresh install can log in.
func (u *PostgresUsers) SeedAdmin(ctx context.Context, pin string) error {
	var count int
	if err := u.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return &models.StorageError{Op: "count users", Err: err}
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = u.db.ExecContext(ctx, `
		INSERT INTO users (id, name, pin_hash, role) VALUES ($1, $2, $3, $4)`,
		uuid.New().String(), "Admin", string(hash), models.RoleAdmin)
	if err != nil {
		return &models.StorageError{Op: "seed admin user", Err: err}
	}
	u.logger.Info("Seeded initial admin user")
	return nil
}

func (u *PostgresUsers) Authenticate(ctx context.Context, pin string) (*models.User, error) {
	rows, err := u.db.QueryContext(ctx, `SELECT id, name, pin_hash, role FROM users`)
	if err != nil {
		return nil, &models.StorageError{Op: "list users", Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var user models.User
		var hash string
		if err := rows.Scan(&user.ID, &user.Name, &hash, &user.Role); err != nil {
			return nil, &models.StorageError{Op: "scan user", Err: err}
		}
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil {
			return &user, nil
		}
	}
	if err := rows.Err(); err != nil {
		return nil, &models.StorageError{Op: "list users", Err: err}
	}
	return nil, ErrInvalidPIN
}

// MemoryUsers backs tests and the memory backend.
type MemoryUsers struct {
	mu    sync.RWMutex
	users []memoryUser
}

type memoryUser struct {
	user models.User
	hash []byte
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{}
}

func (u *MemoryUsers) Add(name, pin string, role models.Role) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := models.User{ID: uuid.New().String(), Name: name, Role: role}
	u.mu.Lock()
	u.users = append(u.users, memoryUser{user: user, hash: hash})
	u.mu.Unlock()
	return &user, nil
}

func (u *MemoryUsers) Authenticate(ctx context.Context, pin string) (*models.User, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	for _, mu := range u.users {
		if bcrypt.CompareHashAndPassword(mu.hash, []byte(pin)) == nil {
			user := mu.user
			return &user, nil
		}
	}
	return nil, ErrInvalidPIN
}
