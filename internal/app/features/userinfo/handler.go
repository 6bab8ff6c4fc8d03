// internal/app/features/userinfo/handler.go
package userinfo

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/greenledger/internal/app/system/auth"
	"github.com/dalemusser/greenledger/internal/app/system/respond"
	"github.com/dalemusser/greenledger/internal/app/system/timeouts"
	"github.com/dalemusser/greenledger/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// UserLookup loads a user by id. *userstore.Store satisfies it.
type UserLookup interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// Handler serves the token holder's identity.
type Handler struct {
	Users UserLookup
	Log   *zap.Logger
}

// NewHandler creates a new userinfo handler.
func NewHandler(users UserLookup, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Log: logger}
}

type userInfoResponse struct {
	IsAuthenticated bool               `json:"isAuthenticated"`
	User            models.UserSummary `json:"user"`
}

// ServeUserInfo returns the current user's identity.
//
// Response format:
//
//	{ "isAuthenticated": true, "user": { "id": "...", "name": "...", "email": "..." } }
//
// A token for a user that no longer exists gets 401 {"message":"User not found"}.
func (h *Handler) ServeUserInfo(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		respond.Unauthorized(w)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "user info")
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		respond.JSON(w, http.StatusUnauthorized, respond.Message{Message: "User not found"})
		return
	}
	if err != nil {
		h.Log.Error("user info lookup failed", zap.Error(err))
		respond.JSON(w, http.StatusServiceUnavailable, respond.Failure{Message: "Service temporarily unavailable"})
		return
	}

	respond.JSON(w, http.StatusOK, userInfoResponse{IsAuthenticated: true, User: u.Summary()})
}
