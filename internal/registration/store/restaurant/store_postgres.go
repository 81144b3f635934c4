package restaurant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/devifer12/TableGenie/internal/registration/models"
	"github.com/devifer12/TableGenie/pkg/email"
	"github.com/devifer12/TableGenie/pkg/platform/sentinel"
)

// Schema:
//
//	CREATE TABLE restaurants (
//	    id         UUID PRIMARY KEY,
//	    name       TEXT NOT NULL,
//	    email      TEXT NOT NULL,
//	    phone      TEXT NOT NULL,
//	    address    TEXT NOT NULL DEFAULT '',
//	    status     TEXT NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL
//	);
//	CREATE UNIQUE INDEX restaurants_email_key ON restaurants (lower(email));
//
// The unique index is the authoritative email-uniqueness constraint.
const uniqueViolation = "23505"

// PostgresStore persists restaurants in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a postgres-backed restaurant store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, restaurant *models.Restaurant) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO restaurants (id, name, email, phone, address, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		restaurant.ID, restaurant.Name, email.Normalize(restaurant.Email), restaurant.Phone,
		restaurant.Address, restaurant.Status, restaurant.CreatedAt, restaurant.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("restaurant email already registered: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("insert restaurant: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Restaurant, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, address, status, created_at, updated_at
		FROM restaurants WHERE id = $1`, id))
}

func (s *PostgresStore) FindByEmail(ctx context.Context, address string) (*models.Restaurant, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, address, status, created_at, updated_at
		FROM restaurants WHERE lower(email) = $1`, email.Normalize(address)))
}

func (s *PostgresStore) UpdateDetails(ctx context.Context, id uuid.UUID, name, phone, address string, now time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE restaurants SET name = $2, phone = $3, address = $4, updated_at = $5
		WHERE id = $1`, id, name, phone, address, now)
	if err != nil {
		return fmt.Errorf("update restaurant details: %w", err)
	}
	return requireRowAffected(res)
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id uuid.UUID, status models.RestaurantStatus, now time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE restaurants SET status = $2, updated_at = $3
		WHERE id = $1`, id, status, now)
	if err != nil {
		return fmt.Errorf("update restaurant status: %w", err)
	}
	return requireRowAffected(res)
}

func (s *PostgresStore) scanOne(row *sql.Row) (*models.Restaurant, error) {
	var record models.Restaurant
	err := row.Scan(&record.ID, &record.Name, &record.Email, &record.Phone,
		&record.Address, &record.Status, &record.CreatedAt, &record.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("restaurant not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan restaurant: %w", err)
	}
	return &record, nil
}

func requireRowAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("restaurant not found: %w", sentinel.ErrNotFound)
	}
	return nil
}
