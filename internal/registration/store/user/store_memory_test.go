package user

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/devifer12/TableGenie/internal/registration/models"
	"github.com/devifer12/TableGenie/pkg/platform/sentinel"
)

type InMemoryUserStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func (s *InMemoryUserStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
}

func TestInMemoryUserStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryUserStoreSuite))
}

func (s *InMemoryUserStoreSuite) newUser(restaurantID uuid.UUID) *models.User {
	return &models.User{
		ID:           uuid.New(),
		Name:         "Jane",
		Designation:  models.DesignationOwner,
		RestaurantID: restaurantID,
		Email:        "jane@bistro.com",
		Role:         models.UserRolePrimary,
		Status:       models.UserStatusActive,
		CreatedAt:    time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (s *InMemoryUserStoreSuite) TestLookupBehavior() {
	ctx := context.Background()

	s.Run("returns user by id when exists", func() {
		record := s.newUser(uuid.New())
		s.Require().NoError(s.store.Create(ctx, record))

		found, err := s.store.FindByID(ctx, record.ID)
		s.Require().NoError(err)
		s.Equal(record.Name, found.Name)
		s.Equal(record.RestaurantID, found.RestaurantID)
	})

	s.Run("returns ErrNotFound when id does not exist", func() {
		_, err := s.store.FindByID(ctx, uuid.New())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("lists users linked to one restaurant only", func() {
		store := NewInMemoryStore()
		mine := uuid.New()
		s.Require().NoError(store.Create(ctx, s.newUser(mine)))
		s.Require().NoError(store.Create(ctx, s.newUser(uuid.New())))

		linked, err := store.FindByRestaurant(ctx, mine)
		s.Require().NoError(err)
		s.Len(linked, 1)
		s.Equal(mine, linked[0].RestaurantID)
	})
}

func (s *InMemoryUserStoreSuite) TestCompensationDelete() {
	ctx := context.Background()

	s.Run("deletes user and makes them unfindable", func() {
		record := s.newUser(uuid.New())
		s.Require().NoError(s.store.Create(ctx, record))
		s.Require().NoError(s.store.Delete(ctx, record.ID))

		_, err := s.store.FindByID(ctx, record.ID)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("deleting a missing user returns ErrNotFound", func() {
		s.Require().ErrorIs(s.store.Delete(ctx, uuid.New()), sentinel.ErrNotFound)
	})
}
