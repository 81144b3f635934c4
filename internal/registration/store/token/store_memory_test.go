package token

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/devifer12/TableGenie/pkg/platform/sentinel"
)

type InMemoryTokenStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	now   time.Time
}

func (s *InMemoryTokenStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.now = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
}

func TestInMemoryTokenStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryTokenStoreSuite))
}

func (s *InMemoryTokenStoreSuite) TestCreateAndLookup() {
	ctx := context.Background()

	s.Run("created token round-trips unverified and unexpired", func() {
		restaurantID := uuid.New()
		created, err := s.store.Create(ctx, restaurantID, "a@b.com", s.now, 30*time.Minute)
		s.Require().NoError(err)
		s.Len(created.Value, 64) // 32 random bytes, hex encoded
		s.False(created.Verified)
		s.False(created.Claimed)
		s.True(created.ExpiresAt.After(created.CreatedAt))

		found, err := s.store.FindByValue(ctx, created.Value, s.now)
		s.Require().NoError(err)
		s.Equal(restaurantID, found.RestaurantID)
		s.Equal("a@b.com", found.Email)
		s.False(found.Verified)
	})

	s.Run("values are unique across creations", func() {
		first, err := s.store.Create(ctx, uuid.New(), "x@y.com", s.now, time.Minute)
		s.Require().NoError(err)
		second, err := s.store.Create(ctx, uuid.New(), "x@y.com", s.now, time.Minute)
		s.Require().NoError(err)
		s.NotEqual(first.Value, second.Value)
	})

	s.Run("unknown value returns ErrNotFound", func() {
		_, err := s.store.FindByValue(ctx, "missing", s.now)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("expired token surfaces ErrExpired on lookup", func() {
		created, err := s.store.Create(ctx, uuid.New(), "e@f.com", s.now, time.Minute)
		s.Require().NoError(err)

		_, err = s.store.FindByValue(ctx, created.Value, s.now.Add(2*time.Minute))
		s.Require().ErrorIs(err, sentinel.ErrExpired)
	})
}

func (s *InMemoryTokenStoreSuite) TestVerificationPromotion() {
	ctx := context.Background()

	s.Run("marks verified exactly once", func() {
		created, err := s.store.Create(ctx, uuid.New(), "a@b.com", s.now, 30*time.Minute)
		s.Require().NoError(err)

		promoted, err := s.store.MarkVerified(ctx, created.Value, s.now)
		s.Require().NoError(err)
		s.True(promoted.Verified)
		s.Equal(created.Value, promoted.Value) // value is stable across promotion

		_, err = s.store.MarkVerified(ctx, created.Value, s.now)
		s.Require().ErrorIs(err, sentinel.ErrInvalidState)
	})

	s.Run("expired token cannot be promoted", func() {
		created, err := s.store.Create(ctx, uuid.New(), "a@b.com", s.now, time.Minute)
		s.Require().NoError(err)

		_, err = s.store.MarkVerified(ctx, created.Value, s.now.Add(time.Hour))
		s.Require().ErrorIs(err, sentinel.ErrExpired)
	})
}

func (s *InMemoryTokenStoreSuite) TestConsumeOnce() {
	ctx := context.Background()

	verified := func() string {
		created, err := s.store.Create(ctx, uuid.New(), "a@b.com", s.now, 30*time.Minute)
		s.Require().NoError(err)
		_, err = s.store.MarkVerified(ctx, created.Value, s.now)
		s.Require().NoError(err)
		return created.Value
	}

	s.Run("unverified token cannot be consumed", func() {
		created, err := s.store.Create(ctx, uuid.New(), "a@b.com", s.now, 30*time.Minute)
		s.Require().NoError(err)

		_, err = s.store.Consume(ctx, created.Value, s.now)
		s.Require().ErrorIs(err, sentinel.ErrInvalidState)
	})

	s.Run("second consume fails with ErrAlreadyUsed", func() {
		value := verified()

		_, err := s.store.Consume(ctx, value, s.now)
		s.Require().NoError(err)

		_, err = s.store.Consume(ctx, value, s.now)
		s.Require().ErrorIs(err, sentinel.ErrAlreadyUsed)
	})

	s.Run("release restores consumability", func() {
		value := verified()

		_, err := s.store.Consume(ctx, value, s.now)
		s.Require().NoError(err)
		s.Require().NoError(s.store.Release(ctx, value))

		record, err := s.store.Consume(ctx, value, s.now)
		s.Require().NoError(err)
		s.True(record.Verified)
	})

	s.Run("exactly one of N concurrent consumers wins", func() {
		value := verified()

		const attempts = 16
		var wg sync.WaitGroup
		wins := make(chan struct{}, attempts)
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := s.store.Consume(ctx, value, s.now); err == nil {
					wins <- struct{}{}
				}
			}()
		}
		wg.Wait()
		close(wins)

		count := 0
		for range wins {
			count++
		}
		s.Equal(1, count)
	})
}

func (s *InMemoryTokenStoreSuite) TestDeletion() {
	ctx := context.Background()

	s.Run("delete removes the token", func() {
		created, err := s.store.Create(ctx, uuid.New(), "a@b.com", s.now, time.Minute)
		s.Require().NoError(err)

		s.Require().NoError(s.store.Delete(ctx, created.Value))
		_, err = s.store.FindByValue(ctx, created.Value, s.now)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("delete of missing token returns ErrNotFound", func() {
		s.Require().ErrorIs(s.store.Delete(ctx, "missing"), sentinel.ErrNotFound)
	})

	s.Run("delete by restaurant removes only that restaurant's tokens", func() {
		mine := uuid.New()
		theirs := uuid.New()
		_, err := s.store.Create(ctx, mine, "a@b.com", s.now, time.Minute)
		s.Require().NoError(err)
		_, err = s.store.Create(ctx, mine, "a@b.com", s.now, time.Minute)
		s.Require().NoError(err)
		other, err := s.store.Create(ctx, theirs, "c@d.com", s.now, time.Minute)
		s.Require().NoError(err)

		deleted, err := s.store.DeleteByRestaurant(ctx, mine)
		s.Require().NoError(err)
		s.Equal(2, deleted)

		_, err = s.store.FindByValue(ctx, other.Value, s.now)
		s.Require().NoError(err)
	})
}

func (s *InMemoryTokenStoreSuite) TestSweep() {
	ctx := context.Background()

	s.Run("removes all tokens when all are expired", func() {
		store := NewInMemoryStore()
		for i := 0; i < 3; i++ {
			_, err := store.Create(ctx, uuid.New(), "a@b.com", s.now, time.Minute)
			s.Require().NoError(err)
		}

		count, err := store.DeleteExpired(ctx, s.now.Add(time.Hour))
		s.Require().NoError(err)
		s.Equal(3, count)
	})

	s.Run("removes only the expired tokens from a mix", func() {
		store := NewInMemoryStore()
		stale, err := store.Create(ctx, uuid.New(), "a@b.com", s.now, time.Minute)
		s.Require().NoError(err)
		fresh, err := store.Create(ctx, uuid.New(), "c@d.com", s.now, 2*time.Hour)
		s.Require().NoError(err)

		count, err := store.DeleteExpired(ctx, s.now.Add(time.Hour))
		s.Require().NoError(err)
		s.Equal(1, count)

		_, err = store.FindByValue(ctx, stale.Value, s.now.Add(time.Hour))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
		_, err = store.FindByValue(ctx, fresh.Value, s.now.Add(time.Hour))
		s.Require().NoError(err)
	})

	s.Run("no-op on empty store", func() {
		store := NewInMemoryStore()
		count, err := store.DeleteExpired(ctx, s.now)
		s.Require().NoError(err)
		s.Zero(count)
	})
}
