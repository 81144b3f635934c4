// Package restaurant persists restaurant accounts. Email uniqueness is
// enforced by the store itself, not by a check-then-insert at the service
// layer, so two simultaneous submissions for the same address cannot both
// succeed.
package restaurant

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/devifer12/TableGenie/internal/registration/models"
	"github.com/devifer12/TableGenie/pkg/email"
	"github.com/devifer12/TableGenie/pkg/platform/sentinel"
)

// InMemoryStore keeps restaurants in memory. The byEmail index doubles as the
// uniqueness constraint: insert and index update happen under one lock.
type InMemoryStore struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]*models.Restaurant
	byEmail map[string]uuid.UUID // normalized email -> id
}

// NewInMemoryStore constructs an empty in-memory restaurant store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:    make(map[uuid.UUID]*models.Restaurant),
		byEmail: make(map[string]uuid.UUID),
	}
}

// Create inserts a restaurant. Fails with ErrConflict when another restaurant
// already holds the email, regardless of its status.
func (s *InMemoryStore) Create(_ context.Context, restaurant *models.Restaurant) error {
	key := email.Normalize(restaurant.Email)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byEmail[key]; taken {
		return fmt.Errorf("restaurant email already registered: %w", sentinel.ErrConflict)
	}
	record := *restaurant
	s.byID[record.ID] = &record
	s.byEmail[key] = record.ID
	return nil
}

// FindByID returns the restaurant with the given id.
func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*models.Restaurant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("restaurant not found: %w", sentinel.ErrNotFound)
	}
	out := *record
	return &out, nil
}

// FindByEmail returns the restaurant holding the (case-insensitive) email.
func (s *InMemoryStore) FindByEmail(_ context.Context, address string) (*models.Restaurant, error) {
	key := email.Normalize(address)

	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byEmail[key]
	if !ok {
		return nil, fmt.Errorf("restaurant not found: %w", sentinel.ErrNotFound)
	}
	out := *s.byID[id]
	return &out, nil
}

// UpdateDetails overwrites the mutable facts of a pending restaurant when a
// registration is resumed.
func (s *InMemoryStore) UpdateDetails(_ context.Context, id uuid.UUID, name, phone, address string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("restaurant not found: %w", sentinel.ErrNotFound)
	}
	record.Name = name
	record.Phone = phone
	record.Address = address
	record.UpdatedAt = now
	return nil
}

// UpdateStatus transitions the restaurant's lifecycle state.
func (s *InMemoryStore) UpdateStatus(_ context.Context, id uuid.UUID, status models.RestaurantStatus, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("restaurant not found: %w", sentinel.ErrNotFound)
	}
	record.Status = status
	record.UpdatedAt = now
	return nil
}
