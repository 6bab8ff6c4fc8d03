// internal/app/features/userinfo/routes.go
package userinfo

import (
	"github.com/dalemusser/greenledger/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts GET / behind bearer-token verification (typically at "/me").
func Routes(h *Handler, v auth.Verifier) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireBearer(v, h.Log))
	r.Get("/", h.ServeUserInfo)
	return r
}
