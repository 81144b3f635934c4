package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// Schema:
//
//	CREATE TABLE audit_events (
//	    id            BIGSERIAL PRIMARY KEY,
//	    occurred_at   TIMESTAMPTZ NOT NULL,
//	    action        TEXT NOT NULL,
//	    restaurant_id UUID,
//	    user_id       UUID,
//	    email         TEXT NOT NULL DEFAULT '',
//	    reason        TEXT NOT NULL DEFAULT '',
//	    request_id    TEXT NOT NULL DEFAULT '',
//	    count         INT NOT NULL DEFAULT 0
//	);
//	CREATE INDEX audit_events_restaurant_idx ON audit_events (restaurant_id, occurred_at);

// PostgresStore persists audit events. Append-only by construction; there is
// no update or delete path.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a postgres-backed audit store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events (occurred_at, action, restaurant_id, user_id, email, reason, request_id, count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		event.Timestamp, string(event.Action), nullableID(event.RestaurantID), nullableID(event.UserID),
		event.Email, event.Reason, event.RequestID, event.Count,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT occurred_at, action, restaurant_id, user_id, email, reason, request_id, count
		FROM audit_events
		WHERE restaurant_id = $1
		ORDER BY occurred_at, id`,
		restaurantID,
	)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			event         Event
			action        string
			restaurantCol sql.NullString
			userCol       sql.NullString
		)
		if err := rows.Scan(&event.Timestamp, &action, &restaurantCol, &userCol,
			&event.Email, &event.Reason, &event.RequestID, &event.Count); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Action = Action(action)
		if restaurantCol.Valid {
			event.RestaurantID, _ = uuid.Parse(restaurantCol.String)
		}
		if userCol.Valid {
			event.UserID, _ = uuid.Parse(userCol.String)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}

// nullableID maps the zero UUID onto SQL NULL. Sweep events carry no
// restaurant.
func nullableID(id uuid.UUID) any {
	if id == uuid.Nil {
		return nil
	}
	return id
}
