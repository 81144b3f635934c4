package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Store is the audit sink. Append-only; tests swap in the memory store.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]Event, error)
}

// Publisher hands events to the worker without blocking the request path.
// A full inbox drops the event and logs it; registration must not fail
// because the audit trail is behind.
type Publisher struct {
	inbox  chan<- Event
	logger *slog.Logger
}

func NewPublisher(inbox chan<- Event, logger *slog.Logger) *Publisher {
	return &Publisher{inbox: inbox, logger: logger}
}

func (p *Publisher) Emit(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case p.inbox <- event:
	default:
		p.logger.WarnContext(ctx, "audit inbox full, event dropped",
			"action", string(event.Action),
			"restaurant_id", event.RestaurantID,
		)
	}
}
