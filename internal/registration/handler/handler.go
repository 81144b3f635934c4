// Package handler exposes the three-step registration flow over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/devifer12/TableGenie/internal/platform/metrics"
	"github.com/devifer12/TableGenie/internal/platform/middleware"
	"github.com/devifer12/TableGenie/internal/registration/models"
	dErrors "github.com/devifer12/TableGenie/pkg/domain-errors"
	"github.com/devifer12/TableGenie/pkg/platform/httputil"
)

// Service defines the interface for registration operations.
type Service interface {
	SubmitRestaurant(ctx context.Context, req models.SubmitRestaurantRequest) (*models.SubmitRestaurantResult, error)
	VerifyCode(ctx context.Context, req models.VerifyCodeRequest) (*models.VerifyCodeResult, error)
	CompleteRegistration(ctx context.Context, req models.CompleteRegistrationRequest) (*models.CompleteRegistrationResult, error)
}

// Handler handles the registration endpoints.
type Handler struct {
	logger       *slog.Logger
	registration Service
	metrics      *metrics.Metrics
}

// New creates a new registration Handler.
func New(registration Service, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		logger:       logger,
		registration: registration,
		metrics:      m,
	}
}

// Register mounts the registration routes with their middleware chain.
func (h *Handler) Register(r chi.Router) {
	reg := chi.NewRouter()
	reg.Use(middleware.Recovery(h.logger))
	reg.Use(middleware.RequestID)
	reg.Use(middleware.RequestTime)
	reg.Use(middleware.Logger(h.logger))
	reg.Use(middleware.Timeout(30 * time.Second))
	reg.Use(middleware.ContentTypeJSON)
	if h.metrics != nil {
		reg.Use(middleware.Latency(h.metrics))
	}
	reg.Post("/auth/register/restaurant", h.handleSubmitRestaurant)
	reg.Post("/auth/verify-code", h.handleVerifyCode)
	reg.Post("/auth/register/user", h.handleCompleteRegistration)

	r.Mount("/", reg)
}

// handleSubmitRestaurant is step 1: restaurant facts in, temp token out.
func (h *Handler) handleSubmitRestaurant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.SubmitRestaurantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid restaurant submission body",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	result, err := h.registration.SubmitRestaurant(ctx, req)
	if err != nil {
		h.writeServiceError(ctx, w, "restaurant submission failed", err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, result)
}

// handleVerifyCode is step 2: temp token plus code in, verified token out.
func (h *Handler) handleVerifyCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.VerifyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid verification body",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	result, err := h.registration.VerifyCode(ctx, req)
	if err != nil {
		h.writeServiceError(ctx, w, "verification failed", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// handleCompleteRegistration is step 3: verified token plus user details in,
// session and created records out.
func (h *Handler) handleCompleteRegistration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.CompleteRegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid completion body",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	result, err := h.registration.CompleteRegistration(ctx, req)
	if err != nil {
		h.writeServiceError(ctx, w, "registration completion failed", err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, result)
}

// writeServiceError logs once and lets the envelope translation pick the
// status. Client-caused failures log at warn, everything else at error.
func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	requestID := middleware.GetRequestID(ctx)
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, "request_id", requestID, "error", err.Error())
	} else {
		h.logger.WarnContext(ctx, msg, "request_id", requestID, "error", err.Error())
	}
	httputil.WriteError(w, err)
}
