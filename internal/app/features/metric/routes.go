package metric

import (
	"github.com/dalemusser/greenledger/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the metric endpoints behind bearer-token verification.
func Routes(h *Handler, v auth.Verifier) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireBearer(v, h.Log))
	r.Post("/create", h.Create)
	r.Get("/get", h.List)
	r.Get("/export", h.Export)
	r.Get("/benchmark", h.Benchmark)
	return r
}
