// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/dalemusser/greenledger/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the caller's activity feed (typically at "/activity").
// Only the token holder's own events are ever returned.
func Routes(h *Handler, v auth.Verifier) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireBearer(v, h.Log))
	r.Get("/", h.ServeList)
	return r
}
