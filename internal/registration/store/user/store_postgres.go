package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/devifer12/TableGenie/internal/registration/models"
	"github.com/devifer12/TableGenie/pkg/platform/sentinel"
)

// Schema:
//
//	CREATE TABLE users (
//	    id            UUID PRIMARY KEY,
//	    name          TEXT NOT NULL,
//	    designation   TEXT NOT NULL,
//	    restaurant_id UUID NOT NULL REFERENCES restaurants (id),
//	    email         TEXT NOT NULL,
//	    role          TEXT NOT NULL,
//	    status        TEXT NOT NULL,
//	    created_at    TIMESTAMPTZ NOT NULL
//	);

// PostgresStore persists users in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a postgres-backed user store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, user *models.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, designation, restaurant_id, email, role, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		user.ID, user.Name, user.Designation, user.RestaurantID,
		user.Email, user.Role, user.Status, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var record models.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, designation, restaurant_id, email, role, status, created_at
		FROM users WHERE id = $1`, id).
		Scan(&record.ID, &record.Name, &record.Designation, &record.RestaurantID,
			&record.Email, &record.Role, &record.Status, &record.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &record, nil
}

func (s *PostgresStore) FindByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]*models.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, designation, restaurant_id, email, role, status, created_at
		FROM users WHERE restaurant_id = $1`, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var out []*models.User
	for rows.Next() {
		var record models.User
		if err := rows.Scan(&record.ID, &record.Name, &record.Designation, &record.RestaurantID,
			&record.Email, &record.Role, &record.Status, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	return nil
}
