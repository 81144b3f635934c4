// Package user persists user accounts. The registration flow creates exactly
// one primary user per restaurant; Delete exists because completion must be
// able to undo that insert when the restaurant activation fails.
package user

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/devifer12/TableGenie/internal/registration/models"
	"github.com/devifer12/TableGenie/pkg/platform/sentinel"
)

// InMemoryStore keeps users in memory.
type InMemoryStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*models.User
}

// NewInMemoryStore constructs an empty in-memory user store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{users: make(map[uuid.UUID]*models.User)}
}

// Create inserts a user.
func (s *InMemoryStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record := *user
	s.users[record.ID] = &record
	return nil
}

// FindByID returns the user with the given id.
func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	out := *record
	return &out, nil
}

// FindByRestaurant returns all users linked to a restaurant.
func (s *InMemoryStore) FindByRestaurant(_ context.Context, restaurantID uuid.UUID) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.User
	for _, record := range s.users {
		if record.RestaurantID == restaurantID {
			copied := *record
			out = append(out, &copied)
		}
	}
	return out, nil
}

// Delete removes a user. This is the compensation path for a failed
// restaurant activation.
func (s *InMemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	delete(s.users, id)
	return nil
}
