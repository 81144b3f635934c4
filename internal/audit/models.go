package audit

import (
	"time"

	"github.com/google/uuid"
)

// Action names every auditable registration event.
type Action string

const (
	ActionRestaurantSubmitted     Action = "restaurant_submitted"
	ActionRegistrationResumed     Action = "registration_resumed"
	ActionEmailVerified           Action = "email_verified"
	ActionRegistrationCompleted   Action = "registration_completed"
	ActionRegistrationCompensated Action = "registration_compensated"
	ActionTokensSwept             Action = "tokens_swept"
)

// Event is emitted from the registration flow to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp    time.Time
	Action       Action
	RestaurantID uuid.UUID
	UserID       uuid.UUID
	Email        string
	Reason       string
	RequestID    string
	Count        int // swept-token count for ActionTokensSwept
}
