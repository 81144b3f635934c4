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

// SubmitRestaurant runs step 1: persist the restaurant facts as a pending
// account, mint a registration token, and dispatch a verification code.
//
// Uniqueness is delegated to the store's constraint rather than a
// check-then-insert, so two concurrent submissions for the same email resolve
// to exactly one pending account. A re-submission for an email whose account
// is still pending resumes that registration: details are refreshed, prior
// tokens are invalidated, and a fresh token is issued.
func (s *Service) SubmitRestaurant(ctx context.Context, req models.SubmitRestaurantRequest) (*models.SubmitRestaurantResult, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	action := audit.ActionRestaurantSubmitted

	restaurant := &models.Restaurant{
		ID:        uuid.New(),
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		Status:    models.RestaurantStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.restaurants.Create(ctx, restaurant)
	switch {
	case err == nil:
	case errors.Is(err, sentinel.ErrConflict):
		resumed, resumeErr := s.resumePending(ctx, req)
		if resumeErr != nil {
			return nil, resumeErr
		}
		restaurant = resumed
		action = audit.ActionRegistrationResumed
	default:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create restaurant")
	}

	token, err := s.tokens.Create(ctx, restaurant.ID, restaurant.Email, now, s.tokenTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create registration token")
	}

	if err := s.verifier.Dispatch(ctx, restaurant.Email); err != nil {
		// The pending account and token survive; the client retries step 1
		// and resumes with a fresh code.
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to send verification code")
	}

	if s.metrics != nil {
		s.metrics.RegistrationsStarted.Inc()
	}
	s.emitAudit(ctx, audit.Event{
		Timestamp:    now,
		Action:       action,
		RestaurantID: restaurant.ID,
		Email:        restaurant.Email,
		RequestID:    requestcontext.RequestID(ctx),
	})
	s.logger.InfoContext(ctx, "restaurant registration started",
		"restaurant_id", restaurant.ID,
		"resumed", action == audit.ActionRegistrationResumed,
	)

	return &models.SubmitRestaurantResult{
		TempToken:    token.Value,
		RestaurantID: restaurant.ID,
	}, nil
}

// resumePending reloads the conflicting account and, if it never finished
// registering, folds the new submission into it. An already active account is
// a hard duplicate.
func (s *Service) resumePending(ctx context.Context, req models.SubmitRestaurantRequest) (*models.Restaurant, error) {
	existing, err := s.restaurants.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load existing restaurant")
	}
	if existing.Status != models.RestaurantStatusPending {
		return nil, dErrors.New(dErrors.CodeDuplicateEmail, "a restaurant with this email is already registered")
	}

	now := requestcontext.Now(ctx)
	if err := s.restaurants.UpdateDetails(ctx, existing.ID, req.Name, req.Phone, req.Address, now); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to refresh restaurant details")
	}
	existing.Name = req.Name
	existing.Phone = req.Phone
	existing.Address = req.Address
	existing.UpdatedAt = now

	// Old tokens must not outlive the resume; only the newest token may
	// advance this registration.
	if _, err := s.tokens.DeleteByRestaurant(ctx, existing.ID); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to invalidate prior registration tokens")
	}
	return existing, nil
}
