package metric

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dalemusser/greenledger/internal/app/services/sustainability"
	"github.com/dalemusser/greenledger/internal/app/system/apperr"
	"github.com/dalemusser/greenledger/internal/app/system/auth"
	"github.com/dalemusser/greenledger/internal/app/system/jsonbody"
	"github.com/dalemusser/greenledger/internal/app/system/normalize"
	"github.com/dalemusser/greenledger/internal/app/system/respond"
	"github.com/dalemusser/greenledger/internal/app/system/timeouts"
	"github.com/dalemusser/greenledger/internal/domain/models"
	"go.uber.org/zap"
)

// MsgNotArray is returned when the create body is not a JSON array.
const MsgNotArray = "Invalid data format. Expected an array of metrics"

// Metrics is the sustainability service the handlers call.
type Metrics interface {
	CheckOwner(ctx context.Context, claims *auth.Claims) error
	UpsertMetrics(ctx context.Context, claims *auth.Claims, entries []sustainability.EntryInput) ([]models.Metric, error)
	GetMetrics(ctx context.Context, claims *auth.Claims) ([]models.Metric, error)
	Export(ctx context.Context, claims *auth.Claims, format string) (*sustainability.Export, error)
	Benchmark(ctx context.Context, claims *auth.Claims, year *int) (sustainability.BenchmarkReport, error)
}

type Handler struct {
	Metrics Metrics
	Log     *zap.Logger
}

func NewHandler(svc Metrics, logger *zap.Logger) *Handler {
	return &Handler{Metrics: svc, Log: logger}
}

type createResponse struct {
	Message string          `json:"message"`
	Metrics []models.Metric `json:"metrics"`
}

type listResponse struct {
	Metrics []models.Metric `json:"metrics"`
}

// fail writes err. Auth failures use the bare {"message"} body the bearer
// middleware also writes; everything else goes through respond.Fail.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if apperr.Is(err, apperr.Unauthorized) {
		respond.JSON(w, http.StatusUnauthorized, respond.Message{Message: apperr.Message(err)})
		return
	}
	respond.Fail(w, r, h.Log, err)
}

// Create handles POST /metric/create.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFrom(r.Context())

	body, err := jsonbody.Read(w, r)
	if err != nil {
		respond.Fail(w, r, h.Log, err)
		return
	}
	if !jsonbody.IsArray(body) {
		// An unknown user is reported before the shape of the body.
		ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "metric owner check")
		defer cancel()
		if err := h.Metrics.CheckOwner(ctx, claims); err != nil {
			h.fail(w, r, err)
			return
		}
		respond.JSON(w, http.StatusBadRequest, respond.Message{Message: MsgNotArray})
		return
	}

	var entries []sustainability.EntryInput
	if err := json.Unmarshal(body, &entries); err != nil {
		h.Log.Debug("metric create: decode failed", zap.Error(err))
		respond.Fail(w, r, h.Log, apperr.Wrap(apperr.InvalidInput, jsonbody.MsgInvalidBody, err))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Batch(), h.Log, "metric create")
	defer cancel()

	saved, err := h.Metrics.UpsertMetrics(ctx, claims, entries)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, createResponse{
		Message: "Metrics processed successfully",
		Metrics: saved,
	})
}

// List handles GET /metric/get.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFrom(r.Context())

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "metric list")
	defer cancel()

	list, err := h.Metrics.GetMetrics(ctx, claims)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, listResponse{Metrics: list})
}

// Export handles GET /metric/export?format=csv|json.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFrom(r.Context())
	format := r.URL.Query().Get("format")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "metric export")
	defer cancel()

	exp, err := h.Metrics.Export(ctx, claims, format)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", exp.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+exp.Filename()+`"`)
	w.WriteHeader(http.StatusOK)
	if err := exp.Write(w); err != nil {
		h.Log.Warn("metric export: write failed", zap.Error(err))
	}
}

// Benchmark handles GET /metric/benchmark?year=YYYY.
func (h *Handler) Benchmark(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFrom(r.Context())

	var year *int
	if raw := normalize.QueryParam(r.URL.Query().Get("year")); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y <= 0 {
			respond.Fail(w, r, h.Log, apperr.New(apperr.InvalidInput, "Invalid year"))
			return
		}
		year = &y
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "metric benchmark")
	defer cancel()

	report, err := h.Metrics.Benchmark(ctx, claims, year)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, report)
}
