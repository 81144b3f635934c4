// Package service drives the three-step registration state machine:
// restaurant facts, email verification, user details. It owns the
// registration token lifecycle and the compensation that keeps the
// restaurant/user pair consistent when the backing store has no
// multi-document transactions.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/devifer12/TableGenie/internal/audit"
	"github.com/devifer12/TableGenie/internal/platform/metrics"
	"github.com/devifer12/TableGenie/internal/registration/models"
	"github.com/devifer12/TableGenie/internal/registration/verifier"
	dErrors "github.com/devifer12/TableGenie/pkg/domain-errors"
	"github.com/devifer12/TableGenie/pkg/platform/sentinel"
)

// TokenStore holds registration tokens. Consume must be a single atomic
// transition so that at most one of two racing completions wins.
type TokenStore interface {
	Create(ctx context.Context, restaurantID uuid.UUID, email string, now time.Time, ttl time.Duration) (*models.RegistrationToken, error)
	FindByValue(ctx context.Context, value string, now time.Time) (*models.RegistrationToken, error)
	MarkVerified(ctx context.Context, value string, now time.Time) (*models.RegistrationToken, error)
	Consume(ctx context.Context, value string, now time.Time) (*models.RegistrationToken, error)
	Release(ctx context.Context, value string) error
	Delete(ctx context.Context, value string) error
	DeleteByRestaurant(ctx context.Context, restaurantID uuid.UUID) (int, error)
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// RestaurantStore persists restaurants. Create must enforce email uniqueness
// itself; the service never does check-then-insert.
type RestaurantStore interface {
	Create(ctx context.Context, restaurant *models.Restaurant) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Restaurant, error)
	FindByEmail(ctx context.Context, address string) (*models.Restaurant, error)
	UpdateDetails(ctx context.Context, id uuid.UUID, name, phone, address string, now time.Time) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.RestaurantStatus, now time.Time) error
}

// UserStore persists users. Delete is the compensation path.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SessionIssuer mints the post-registration credential.
type SessionIssuer interface {
	GenerateSessionToken(userID uuid.UUID, restaurantID uuid.UUID, designation string, expiresIn time.Duration) (string, error)
}

// Params collects the service dependencies.
type Params struct {
	Tokens      TokenStore
	Restaurants RestaurantStore
	Users       UserStore
	Verifier    verifier.Verifier
	Sessions    SessionIssuer
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
	Audit       *audit.Publisher
	TokenTTL    time.Duration
	SessionTTL  time.Duration
}

// Service is the registration orchestrator.
type Service struct {
	tokens      TokenStore
	restaurants RestaurantStore
	users       UserStore
	verifier    verifier.Verifier
	sessions    SessionIssuer
	logger      *slog.Logger
	metrics     *metrics.Metrics
	audit       *audit.Publisher
	tokenTTL    time.Duration
	sessionTTL  time.Duration
}

// New constructs the registration service.
func New(p Params) *Service {
	return &Service{
		tokens:      p.Tokens,
		restaurants: p.Restaurants,
		users:       p.Users,
		verifier:    p.Verifier,
		sessions:    p.Sessions,
		logger:      p.Logger,
		metrics:     p.Metrics,
		audit:       p.Audit,
		tokenTTL:    p.TokenTTL,
		sessionTTL:  p.SessionTTL,
	}
}

// translateTokenError maps store sentinel errors onto the client-facing
// taxonomy. Expired and absent tokens are deliberately close: an expired
// token is logically absent, it just gets a more helpful code.
func translateTokenError(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrExpired):
		return dErrors.New(dErrors.CodeTokenExpired, "registration token has expired")
	case errors.Is(err, sentinel.ErrNotFound), errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.New(dErrors.CodeTokenNotFound, "registration token not found")
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.New(dErrors.CodeBadRequest, "registration token is not in a usable state")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "token store failure")
	}
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.audit != nil {
		s.audit.Emit(ctx, event)
	}
}
