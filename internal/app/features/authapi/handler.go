// internal/app/features/authapi/handler.go
package authapi

import (
	"context"
	"net/http"

	"github.com/dalemusser/greenledger/internal/app/services/accounts"
	"github.com/dalemusser/greenledger/internal/app/system/apperr"
	"github.com/dalemusser/greenledger/internal/app/system/auditlog"
	"github.com/dalemusser/greenledger/internal/app/system/jsonbody"
	"github.com/dalemusser/greenledger/internal/app/system/ratelimit"
	"github.com/dalemusser/greenledger/internal/app/system/respond"
	"github.com/dalemusser/greenledger/internal/app/system/timeouts"
	"github.com/dalemusser/greenledger/internal/domain/models"
	"go.uber.org/zap"
)

// Accounts is the auth service the handlers call.
type Accounts interface {
	Register(ctx context.Context, client auditlog.Client, in accounts.RegisterInput) (models.UserSummary, error)
	Login(ctx context.Context, client auditlog.Client, in accounts.LoginInput) (accounts.LoginResult, error)
}

// Outcomes counts rejected attempts that never reach the service.
type Outcomes interface {
	AuthOutcome(action, outcome string)
}

type Handler struct {
	Accounts        Accounts
	LoginLimiter    *ratelimit.LoginLimiter
	RegisterLimiter *ratelimit.Limiter
	AuditLog        *auditlog.Logger
	Metrics         Outcomes
	Log             *zap.Logger
}

// NewHandler builds a Handler. Limiters, audit log and metrics may be nil.
func NewHandler(acc Accounts, login *ratelimit.LoginLimiter, register *ratelimit.Limiter, audit *auditlog.Logger, metrics Outcomes, logger *zap.Logger) *Handler {
	return &Handler{
		Accounts:        acc,
		LoginLimiter:    login,
		RegisterLimiter: register,
		AuditLog:        audit,
		Metrics:         metrics,
		Log:             logger,
	}
}

type registerResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	User    models.UserSummary `json:"user"`
}

type loginResponse struct {
	Success bool               `json:"success"`
	Token   string             `json:"token"`
	Message string             `json:"message"`
	User    models.UserSummary `json:"user"`
}

func (h *Handler) outcome(action, outcome string) {
	if h.Metrics != nil {
		h.Metrics.AuthOutcome(action, outcome)
	}
}

// Register handles POST /auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if h.RegisterLimiter != nil && !h.RegisterLimiter.Allow(ratelimit.ClientIP(r)) {
		h.outcome("register", "rate_limited")
		respond.Fail(w, r, h.Log, apperr.New(apperr.RateLimited, "Too many registration attempts. Please try again later."))
		return
	}

	var in accounts.RegisterInput
	if err := jsonbody.Decode(w, r, &in); err != nil {
		respond.Fail(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "register")
	defer cancel()

	user, err := h.Accounts.Register(ctx, auditlog.ClientFrom(r), in)
	if err != nil {
		respond.Fail(w, r, h.Log, err)
		return
	}

	respond.JSON(w, http.StatusCreated, registerResponse{
		Success: true,
		Message: "User registered successfully",
		User:    user,
	})
}

// Login handles POST /auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in accounts.LoginInput
	if err := jsonbody.Decode(w, r, &in); err != nil {
		respond.Fail(w, r, h.Log, err)
		return
	}

	client := auditlog.ClientFrom(r)

	if h.LoginLimiter != nil {
		if ok, reason := h.LoginLimiter.Check(r, in.Email); !ok {
			h.AuditLog.LoginFailedRateLimit(r.Context(), client, in.Email)
			h.outcome("login", "rate_limited")
			respond.Fail(w, r, h.Log, apperr.New(apperr.RateLimited, reason))
			return
		}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "login")
	defer cancel()

	res, err := h.Accounts.Login(ctx, client, in)
	if err != nil {
		respond.Fail(w, r, h.Log, err)
		return
	}

	if h.LoginLimiter != nil {
		h.LoginLimiter.ResetEmail(in.Email)
	}

	respond.JSON(w, http.StatusOK, loginResponse{
		Success: true,
		Token:   res.Token,
		Message: "User logged in",
		User:    res.User,
	})
}
