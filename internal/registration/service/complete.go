package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/devifer12/TableGenie/internal/audit"
	"github.com/devifer12/TableGenie/internal/registration/models"
	dErrors "github.com/devifer12/TableGenie/pkg/domain-errors"
	"github.com/devifer12/TableGenie/pkg/platform/sentinel"
	"github.com/devifer12/TableGenie/pkg/requestcontext"
)

// CompleteRegistration runs step 3: create the primary user, activate the
// restaurant, and retire the token. Consume atomically claims the token, so
// of two concurrent completions exactly one proceeds; the loser sees the
// token as gone and never runs compensation.
//
// The session token is minted before any write. User creation and restaurant
// activation are two separate writes with no transaction across them, so a
// failed activation compensates by deleting the just-created user and
// releasing the token claim. The observable states are then only "nothing
// happened" and "fully registered".
func (s *Service) CompleteRegistration(ctx context.Context, req models.CompleteRegistrationRequest) (*models.CompleteRegistrationResult, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)

	token, err := s.tokens.Consume(ctx, req.TempToken, now)
	if err != nil {
		if errors.Is(err, sentinel.ErrInvalidState) {
			return nil, dErrors.New(dErrors.CodeBadRequest, "email has not been verified for this registration")
		}
		return nil, translateTokenError(err)
	}

	restaurant, err := s.restaurants.FindByID(ctx, token.RestaurantID)
	if err != nil {
		s.releaseClaim(ctx, token.Value)
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "restaurant for this registration no longer exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load restaurant")
	}

	user := &models.User{
		ID:           uuid.New(),
		Name:         req.Name,
		Designation:  req.Designation,
		RestaurantID: restaurant.ID,
		Email:        restaurant.Email,
		Role:         models.UserRolePrimary,
		Status:       models.UserStatusActive,
		CreatedAt:    now,
	}

	// Minting up front keeps signing failures from ever reaching the stores.
	session, err := s.sessions.GenerateSessionToken(user.ID, restaurant.ID, string(user.Designation), s.sessionTTL)
	if err != nil {
		s.releaseClaim(ctx, token.Value)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue session token")
	}

	if err := s.users.Create(ctx, user); err != nil {
		s.releaseClaim(ctx, token.Value)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	if err := s.restaurants.UpdateStatus(ctx, restaurant.ID, models.RestaurantStatusActive, now); err != nil {
		s.compensate(ctx, token, user, err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to activate restaurant")
	}
	restaurant.Status = models.RestaurantStatusActive
	restaurant.UpdatedAt = now

	if err := s.tokens.Delete(ctx, token.Value); err != nil {
		// Registration stands; the claimed token is inert and the sweep will
		// collect it once it expires.
		s.logger.WarnContext(ctx, "failed to delete consumed registration token",
			"restaurant_id", restaurant.ID, "error", err)
	}

	if s.metrics != nil {
		s.metrics.RegistrationsCompleted.Inc()
	}
	s.emitAudit(ctx, audit.Event{
		Timestamp:    now,
		Action:       audit.ActionRegistrationCompleted,
		RestaurantID: restaurant.ID,
		UserID:       user.ID,
		Email:        restaurant.Email,
		RequestID:    requestcontext.RequestID(ctx),
	})
	s.logger.InfoContext(ctx, "registration completed",
		"restaurant_id", restaurant.ID, "user_id", user.ID)

	return &models.CompleteRegistrationResult{
		SessionToken: session,
		User:         models.PublicUserOf(user),
		Restaurant:   models.PublicRestaurantOf(restaurant),
	}, nil
}

// compensate unwinds a half-finished completion: remove the user so the
// restaurant never has an owner while still pending, and release the token
// claim so the client can retry.
func (s *Service) compensate(ctx context.Context, token *models.RegistrationToken, user *models.User, cause error) {
	if err := s.users.Delete(ctx, user.ID); err != nil {
		// The user row is now orphaned against a pending restaurant. Loud log
		// so an operator can reconcile; the registration itself still fails.
		s.logger.ErrorContext(ctx, "compensation failed to delete user",
			"user_id", user.ID, "restaurant_id", user.RestaurantID, "error", err)
	}
	s.releaseClaim(ctx, token.Value)

	if s.metrics != nil {
		s.metrics.Compensations.Inc()
	}
	s.emitAudit(ctx, audit.Event{
		Timestamp:    requestcontext.Now(ctx),
		Action:       audit.ActionRegistrationCompensated,
		RestaurantID: token.RestaurantID,
		UserID:       user.ID,
		Email:        token.Email,
		Reason:       cause.Error(),
		RequestID:    requestcontext.RequestID(ctx),
	})
	s.logger.WarnContext(ctx, "registration completion rolled back",
		"restaurant_id", token.RestaurantID, "error", cause)
}

func (s *Service) releaseClaim(ctx context.Context, value string) {
	if err := s.tokens.Release(ctx, value); err != nil {
		s.logger.WarnContext(ctx, "failed to release registration token claim",
			"error", err)
	}
}
