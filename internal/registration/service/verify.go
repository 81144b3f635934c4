package service

import (
	"context"
	"errors"

	"github.com/devifer12/TableGenie/internal/audit"
	"github.com/devifer12/TableGenie/internal/registration/models"
	dErrors "github.com/devifer12/TableGenie/pkg/domain-errors"
	"github.com/devifer12/TableGenie/pkg/platform/sentinel"
	"github.com/devifer12/TableGenie/pkg/requestcontext"
)

// VerifyCode runs step 2: match the submitted code against the pending one
// for the token's email and promote the token in place. The token value never
// rotates, so the verified token the client gets back equals the one it sent.
//
// A wrong code leaves the token untouched; the client may retry until the
// token expires. Verifying an already verified token is a no-op success.
func (s *Service) VerifyCode(ctx context.Context, req models.VerifyCodeRequest) (*models.VerifyCodeResult, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)

	token, err := s.tokens.FindByValue(ctx, req.TempToken, now)
	if err != nil {
		return nil, translateTokenError(err)
	}
	if token.Verified {
		return &models.VerifyCodeResult{VerifiedToken: token.Value}, nil
	}

	ok, err := s.verifier.Check(ctx, token.Email, req.Code)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check verification code")
	}
	if !ok {
		if s.metrics != nil {
			s.metrics.VerificationFailures.Inc()
		}
		s.logger.InfoContext(ctx, "verification code rejected", "restaurant_id", token.RestaurantID)
		return nil, dErrors.New(dErrors.CodeInvalidCode, "verification code is incorrect or expired")
	}

	if _, err := s.tokens.MarkVerified(ctx, token.Value, now); err != nil {
		// A concurrent verify may have won the flip; the token is verified
		// either way, so the promotion stands.
		if !errors.Is(err, sentinel.ErrInvalidState) {
			return nil, translateTokenError(err)
		}
	}

	s.emitAudit(ctx, audit.Event{
		Timestamp:    now,
		Action:       audit.ActionEmailVerified,
		RestaurantID: token.RestaurantID,
		Email:        token.Email,
		RequestID:    requestcontext.RequestID(ctx),
	})
	s.logger.InfoContext(ctx, "registration email verified", "restaurant_id", token.RestaurantID)

	return &models.VerifyCodeResult{VerifiedToken: token.Value}, nil
}
