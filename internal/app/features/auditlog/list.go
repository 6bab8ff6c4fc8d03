// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"time"

	"github.com/dalemusser/greenledger/internal/app/store/audit"
	"github.com/dalemusser/greenledger/internal/app/system/apperr"
	"github.com/dalemusser/greenledger/internal/app/system/auth"
	"github.com/dalemusser/greenledger/internal/app/system/normalize"
	"github.com/dalemusser/greenledger/internal/app/system/paging"
	"github.com/dalemusser/greenledger/internal/app/system/respond"
	"github.com/dalemusser/greenledger/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// ServeList handles GET /activity: the caller's own auth events, newest
// first, filtered by event_type, start_date and end_date (YYYY-MM-DD).
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		respond.Unauthorized(w)
		return
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		respond.Unauthorized(w)
		return
	}

	page := paging.Parse(r)
	filter := audit.QueryFilter{
		UserID: &userID,
		Limit:  page.Limit(),
		Offset: page.Offset(),
	}

	q := r.URL.Query()
	if et := normalize.QueryParam(q.Get("event_type")); et != "" {
		if !knownEventTypes[et] {
			respond.Fail(w, r, h.Log, apperr.New(apperr.InvalidInput, "Unknown event_type"))
			return
		}
		filter.EventType = et
	}
	if s := normalize.QueryParam(q.Get("start_date")); s != "" {
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			respond.Fail(w, r, h.Log, apperr.New(apperr.InvalidInput, "Invalid start_date"))
			return
		}
		filter.StartTime = &t
	}
	if s := normalize.QueryParam(q.Get("end_date")); s != "" {
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			respond.Fail(w, r, h.Log, apperr.New(apperr.InvalidInput, "Invalid end_date"))
			return
		}
		// End of day
		end := t.Add(24*time.Hour - time.Nanosecond)
		filter.EndTime = &end
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "activity list")
	defer cancel()

	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		h.Log.Error("failed to query audit events", zap.Error(err))
		respond.Fail(w, r, h.Log, apperr.Wrap(apperr.StoreUnavailable, "Service temporarily unavailable", err))
		return
	}
	total, err := h.Events.CountByFilter(ctx, filter)
	if err != nil {
		h.Log.Error("failed to count audit events", zap.Error(err))
		respond.Fail(w, r, h.Log, apperr.Wrap(apperr.StoreUnavailable, "Service temporarily unavailable", err))
		return
	}

	items := make([]eventItem, 0, len(events))
	for _, e := range events {
		items = append(items, toItem(e))
	}
	respond.JSON(w, http.StatusOK, listResponse{Events: items, Meta: paging.NewMeta(page, total)})
}
