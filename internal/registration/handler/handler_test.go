package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/devifer12/TableGenie/internal/registration/models"
	dErrors "github.com/devifer12/TableGenie/pkg/domain-errors"
)

// fakeService returns canned results so the tests exercise only the HTTP
// translation layer.
type fakeService struct {
	submitResult   *models.SubmitRestaurantResult
	submitErr      error
	verifyResult   *models.VerifyCodeResult
	verifyErr      error
	completeResult *models.CompleteRegistrationResult
	completeErr    error

	lastSubmit   models.SubmitRestaurantRequest
	lastVerify   models.VerifyCodeRequest
	lastComplete models.CompleteRegistrationRequest
}

func (f *fakeService) SubmitRestaurant(_ context.Context, req models.SubmitRestaurantRequest) (*models.SubmitRestaurantResult, error) {
	f.lastSubmit = req
	return f.submitResult, f.submitErr
}

func (f *fakeService) VerifyCode(_ context.Context, req models.VerifyCodeRequest) (*models.VerifyCodeResult, error) {
	f.lastVerify = req
	return f.verifyResult, f.verifyErr
}

func (f *fakeService) CompleteRegistration(_ context.Context, req models.CompleteRegistrationRequest) (*models.CompleteRegistrationResult, error) {
	f.lastComplete = req
	return f.completeResult, f.completeErr
}

type RegistrationHandlerSuite struct {
	suite.Suite
	service *fakeService
	router  chi.Router
}

func (s *RegistrationHandlerSuite) SetupTest() {
	s.service = &fakeService{}
	s.router = chi.NewRouter()
	New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)), nil).Register(s.router)
}

func TestRegistrationHandlerSuite(t *testing.T) {
	suite.Run(t, new(RegistrationHandlerSuite))
}

func (s *RegistrationHandlerSuite) post(path string, body any) *httptest.ResponseRecorder {
	raw, err := json.Marshal(body)
	s.Require().NoError(err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *RegistrationHandlerSuite) errorCode(rec *httptest.ResponseRecorder) string {
	var envelope struct {
		Error string `json:"error"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Error
}

func (s *RegistrationHandlerSuite) TestSubmitRestaurant() {
	restaurantID := uuid.New()
	s.service.submitResult = &models.SubmitRestaurantResult{
		TempToken:    "tok-abc",
		RestaurantID: restaurantID,
	}

	rec := s.post("/auth/register/restaurant", map[string]string{
		"name":  "Spice Route",
		"email": "owner@spiceroute.example",
		"phone": "+91 98765 43210",
	})

	s.Require().Equal(http.StatusCreated, rec.Code)
	s.Equal("application/json", rec.Header().Get("Content-Type"))
	s.NotEmpty(rec.Header().Get("X-Request-ID"))

	var resp models.SubmitRestaurantResult
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal("tok-abc", resp.TempToken)
	s.Equal(restaurantID, resp.RestaurantID)
	s.Equal("owner@spiceroute.example", s.service.lastSubmit.Email)
}

func (s *RegistrationHandlerSuite) TestVerifyCode() {
	s.service.verifyResult = &models.VerifyCodeResult{VerifiedToken: "tok-abc"}

	rec := s.post("/auth/verify-code", map[string]string{
		"temp_token": "tok-abc",
		"code":       "123456",
	})

	s.Require().Equal(http.StatusOK, rec.Code)
	var resp models.VerifyCodeResult
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal("tok-abc", resp.VerifiedToken)
	s.Equal("123456", s.service.lastVerify.Code)
}

func (s *RegistrationHandlerSuite) TestCompleteRegistration() {
	s.service.completeResult = &models.CompleteRegistrationResult{
		SessionToken: "jwt-value",
		User:         models.PublicUser{ID: uuid.New(), Name: "Asha", Designation: models.DesignationOwner},
		Restaurant:   models.PublicRestaurant{ID: uuid.New(), Status: models.RestaurantStatusActive},
	}

	rec := s.post("/auth/register/user", map[string]string{
		"temp_token":  "tok-abc",
		"name":        "Asha",
		"designation": "Owner",
	})

	s.Require().Equal(http.StatusCreated, rec.Code)
	var resp models.CompleteRegistrationResult
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal("jwt-value", resp.SessionToken)
	s.Equal(models.RestaurantStatusActive, resp.Restaurant.Status)
	s.Equal(models.DesignationOwner, s.service.lastComplete.Designation)
}

func (s *RegistrationHandlerSuite) TestErrorTranslation() {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", dErrors.New(dErrors.CodeValidation, "name is required"), http.StatusBadRequest, "validation_error"},
		{"duplicate email", dErrors.New(dErrors.CodeDuplicateEmail, "already registered"), http.StatusBadRequest, "duplicate_email"},
		{"token not found", dErrors.New(dErrors.CodeTokenNotFound, "registration token not found"), http.StatusBadRequest, "token_not_found"},
		{"token expired", dErrors.New(dErrors.CodeTokenExpired, "registration token has expired"), http.StatusBadRequest, "token_expired"},
		{"invalid code", dErrors.New(dErrors.CodeInvalidCode, "verification code is incorrect"), http.StatusBadRequest, "invalid_code"},
		{"internal", dErrors.New(dErrors.CodeInternal, "store down"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.service.submitErr = tc.err
			rec := s.post("/auth/register/restaurant", map[string]string{"name": "x"})
			s.Require().Equal(tc.wantStatus, rec.Code)
			s.Equal(tc.wantCode, s.errorCode(rec))
		})
	}
}

func (s *RegistrationHandlerSuite) TestInternalErrorHidesDescription() {
	s.service.submitErr = dErrors.New(dErrors.CodeInternal, "pq: connection refused")

	rec := s.post("/auth/register/restaurant", map[string]string{"name": "x"})

	s.Require().Equal(http.StatusInternalServerError, rec.Code)
	var envelope struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &envelope))
	s.Empty(envelope.ErrorDescription)
}

func (s *RegistrationHandlerSuite) TestMalformedBody() {
	req := httptest.NewRequest(http.MethodPost, "/auth/verify-code", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Require().Equal(http.StatusBadRequest, rec.Code)
	s.Equal("bad_request", s.errorCode(rec))
}

func (s *RegistrationHandlerSuite) TestUnsupportedMediaType() {
	req := httptest.NewRequest(http.MethodPost, "/auth/verify-code", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Require().Equal(http.StatusUnsupportedMediaType, rec.Code)
}
