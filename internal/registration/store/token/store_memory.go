package token

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/devifer12/TableGenie/internal/registration/models"
	"github.com/devifer12/TableGenie/pkg/platform/sentinel"
)

// translateTokenError converts domain validation errors into sentinel errors.
func translateTokenError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "expired"):
		return fmt.Errorf("%s: %w", msg, sentinel.ErrExpired)
	case strings.Contains(msg, "already used"):
		return fmt.Errorf("%s: %w", msg, sentinel.ErrAlreadyUsed)
	default:
		return fmt.Errorf("%s: %w", msg, sentinel.ErrInvalidState)
	}
}

// Error Contract:
// All store methods follow this error pattern:
// - Return ErrNotFound when the requested token does not exist
// - Return ErrExpired when it exists but is past its TTL
// - Return nil for successful operations
// - Return wrapped errors with context for infrastructure failures

// InMemoryStore keeps registration tokens in memory. One mutex guards the
// whole map; every validate-then-mutate pair runs under it, which is what
// makes Consume a single atomic transition.
type InMemoryStore struct {
	mu     sync.Mutex
	tokens map[string]*models.RegistrationToken
}

// NewInMemoryStore constructs an empty in-memory token store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{tokens: make(map[string]*models.RegistrationToken)}
}

// Create generates a fresh unverified token bound to (restaurantID, email).
func (s *InMemoryStore) Create(_ context.Context, restaurantID uuid.UUID, email string, now time.Time, ttl time.Duration) (*models.RegistrationToken, error) {
	value, err := NewValue()
	if err != nil {
		return nil, err
	}

	record := &models.RegistrationToken{
		ID:           uuid.New(),
		RestaurantID: restaurantID,
		Email:        email,
		Value:        value,
		CreatedAt:    now,
		ExpiresAt:    now.Add(ttl),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[value] = record
	out := *record
	return &out, nil
}

// FindByValue looks a token up by its opaque value. Expired tokens surface as
// ErrExpired; callers treat them as logically absent.
func (s *InMemoryStore) FindByValue(_ context.Context, value string, now time.Time) (*models.RegistrationToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.tokens[value]
	if !ok {
		return nil, fmt.Errorf("registration token not found: %w", sentinel.ErrNotFound)
	}
	if record.Expired(now) {
		return nil, fmt.Errorf("registration token expired: %w", sentinel.ErrExpired)
	}
	out := *record
	return &out, nil
}

// MarkVerified promotes the token in place after a successful code check.
// Validation and mutation happen under one lock so the token is verified
// exactly once.
func (s *InMemoryStore) MarkVerified(_ context.Context, value string, now time.Time) (*models.RegistrationToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.tokens[value]
	if !ok {
		return nil, fmt.Errorf("registration token not found: %w", sentinel.ErrNotFound)
	}
	if err := record.ValidateForVerify(now); err != nil {
		return nil, translateTokenError(err)
	}
	record.MarkVerified()
	out := *record
	return &out, nil
}

// Consume atomically claims a verified, unexpired, unclaimed token for one
// in-flight completion. Of two concurrent callers exactly one succeeds; the
// loser gets ErrAlreadyUsed.
func (s *InMemoryStore) Consume(_ context.Context, value string, now time.Time) (*models.RegistrationToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.tokens[value]
	if !ok {
		return nil, fmt.Errorf("registration token not found: %w", sentinel.ErrNotFound)
	}
	if err := record.ValidateForConsume(now); err != nil {
		return nil, translateTokenError(err)
	}
	record.MarkClaimed()
	out := *record
	return &out, nil
}

// Release undoes a claim after a compensated completion, leaving the token
// verified and usable for a retry of step 3.
func (s *InMemoryStore) Release(_ context.Context, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.tokens[value]
	if !ok {
		return fmt.Errorf("registration token not found: %w", sentinel.ErrNotFound)
	}
	record.ReleaseClaim()
	return nil
}

// Delete removes the token after a fully completed registration.
func (s *InMemoryStore) Delete(_ context.Context, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tokens[value]; !ok {
		return fmt.Errorf("registration token not found: %w", sentinel.ErrNotFound)
	}
	delete(s.tokens, value)
	return nil
}

// DeleteByRestaurant removes every token bound to a restaurant. Used when a
// pending registration is resumed and prior tokens must stop working.
func (s *InMemoryStore) DeleteByRestaurant(_ context.Context, restaurantID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for value, record := range s.tokens {
		if record.RestaurantID == restaurantID {
			delete(s.tokens, value)
			deleted++
		}
	}
	return deleted, nil
}

// DeleteExpired removes all tokens past expiry as of the given time. The time
// is injected for testability; the sweep worker passes the wall clock.
func (s *InMemoryStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for value, record := range s.tokens {
		if record.Expired(now) {
			delete(s.tokens, value)
			deleted++
		}
	}
	return deleted, nil
}
