package userinfo_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/dalemusser/greenledger/internal/app/features/userinfo"
	"github.com/dalemusser/greenledger/internal/domain/models"
	"github.com/dalemusser/greenledger/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type lookupFunc func(ctx context.Context, id primitive.ObjectID) (*models.User, error)

func (f lookupFunc) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return f(ctx, id)
}

func TestServeUserInfo_Unauthenticated(t *testing.T) {
	h := userinfo.NewHandler(lookupFunc(func(context.Context, primitive.ObjectID) (*models.User, error) {
		t.Fatal("lookup should not run without claims")
		return nil, nil
	}), zap.NewNop())

	rec := testutil.NewRecorder()
	h.ServeUserInfo(rec, testutil.NewRequest("GET", "/me"))

	rec.AssertStatus(t, http.StatusUnauthorized)
	rec.AssertContains(t, "Unauthorized")
}

func TestServeUserInfo_Authenticated(t *testing.T) {
	user := testutil.NewTestUser("ada@example.com")
	h := userinfo.NewHandler(lookupFunc(func(_ context.Context, id primitive.ObjectID) (*models.User, error) {
		return &models.User{ID: id, Name: "Ada", Email: "ada@example.com", PasswordHash: "$2a$secret"}, nil
	}), zap.NewNop())

	rec := testutil.NewRecorder()
	h.ServeUserInfo(rec, testutil.NewAuthenticatedRequest("GET", "/me", nil, user))

	rec.AssertStatus(t, http.StatusOK)
	var body struct {
		IsAuthenticated bool              `json:"isAuthenticated"`
		User            map[string]string `json:"user"`
	}
	rec.DecodeJSON(t, &body)
	if !body.IsAuthenticated {
		t.Error("expected isAuthenticated=true")
	}
	if body.User["id"] != user.ID || body.User["name"] != "Ada" || body.User["email"] != "ada@example.com" {
		t.Errorf("unexpected user: %v", body.User)
	}
	if len(body.User) != 3 {
		t.Errorf("user should carry only id, name, email: %v", body.User)
	}
}

func TestServeUserInfo_UserGone(t *testing.T) {
	h := userinfo.NewHandler(lookupFunc(func(context.Context, primitive.ObjectID) (*models.User, error) {
		return nil, mongo.ErrNoDocuments
	}), zap.NewNop())

	rec := testutil.NewRecorder()
	h.ServeUserInfo(rec, testutil.NewAuthenticatedRequest("GET", "/me", nil, testutil.NewTestUser("a@example.com")))

	rec.AssertStatus(t, http.StatusUnauthorized)
	rec.AssertContains(t, "User not found")
}

func TestServeUserInfo_StoreDown(t *testing.T) {
	h := userinfo.NewHandler(lookupFunc(func(context.Context, primitive.ObjectID) (*models.User, error) {
		return nil, errors.New("no reachable servers")
	}), zap.NewNop())

	rec := testutil.NewRecorder()
	h.ServeUserInfo(rec, testutil.NewAuthenticatedRequest("GET", "/me", nil, testutil.NewTestUser("a@example.com")))

	rec.AssertStatus(t, http.StatusServiceUnavailable)
}
