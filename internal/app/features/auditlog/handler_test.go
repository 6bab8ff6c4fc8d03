package auditlog_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/greenledger/internal/app/features/auditlog"
	"github.com/dalemusser/greenledger/internal/app/store/audit"
	"github.com/dalemusser/greenledger/internal/app/system/auth"
	"github.com/dalemusser/greenledger/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type recordingQuerier struct {
	last   audit.QueryFilter
	events []audit.Event
	total  int64
	err    error
}

func (q *recordingQuerier) Query(_ context.Context, f audit.QueryFilter) ([]audit.Event, error) {
	q.last = f
	return q.events, q.err
}

func (q *recordingQuerier) CountByFilter(context.Context, audit.QueryFilter) (int64, error) {
	return q.total, q.err
}

type listBody struct {
	Events []struct {
		ID        string `json:"id"`
		EventType string `json:"eventType"`
		Success   bool   `json:"success"`
	} `json:"events"`
	Page       int   `json:"page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
}

func TestServeList_NoClaims(t *testing.T) {
	h := auditlog.NewHandler(&recordingQuerier{}, zap.NewNop())
	rec := testutil.NewRecorder()
	h.ServeList(rec, testutil.NewRequest("GET", "/activity"))
	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestServeList_ScopesToCaller(t *testing.T) {
	q := &recordingQuerier{
		events: []audit.Event{{ID: primitive.NewObjectID(), EventType: audit.EventLoginSuccess, Success: true}},
		total:  120,
	}
	h := auditlog.NewHandler(q, zap.NewNop())
	user := testutil.NewTestUser("ada@example.com")

	rec := testutil.NewRecorder()
	h.ServeList(rec, testutil.NewAuthenticatedRequest("GET", "/activity?page=2&limit=25&event_type=login_success&start_date=2026-01-01&end_date=2026-01-31", nil, user))

	rec.AssertStatus(t, http.StatusOK)
	require.NotNil(t, q.last.UserID)
	assert.Equal(t, user.ID, q.last.UserID.Hex())
	assert.Equal(t, int64(25), q.last.Limit)
	assert.Equal(t, int64(25), q.last.Offset)
	assert.Equal(t, audit.EventLoginSuccess, q.last.EventType)
	require.NotNil(t, q.last.StartTime)
	require.NotNil(t, q.last.EndTime)
	assert.True(t, q.last.EndTime.After(time.Date(2026, 1, 31, 23, 59, 59, 0, time.UTC)))

	var body listBody
	rec.DecodeJSON(t, &body)
	require.Len(t, body.Events, 1)
	assert.Equal(t, "login_success", body.Events[0].EventType)
	assert.Equal(t, 2, body.Page)
	assert.Equal(t, 5, body.TotalPages)
	assert.True(t, body.HasNext)
}

func TestServeList_HugePageIsEmptyNotError(t *testing.T) {
	q := &recordingQuerier{total: 3}
	h := auditlog.NewHandler(q, zap.NewNop())
	user := testutil.NewTestUser("ada@example.com")

	rec := testutil.NewRecorder()
	h.ServeList(rec, testutil.NewAuthenticatedRequest("GET", "/activity?page=9223372036854775807&limit=50&event_type=%20login_success%20", nil, user))

	rec.AssertStatus(t, http.StatusOK)
	assert.GreaterOrEqual(t, q.last.Offset, int64(0))
	assert.Equal(t, audit.EventLoginSuccess, q.last.EventType)

	var body listBody
	rec.DecodeJSON(t, &body)
	assert.Empty(t, body.Events)
	assert.False(t, body.HasNext)
}

func TestServeList_BadFilters(t *testing.T) {
	h := auditlog.NewHandler(&recordingQuerier{}, zap.NewNop())
	user := testutil.NewTestUser("ada@example.com")

	for _, target := range []string{
		"/activity?event_type=drop_tables",
		"/activity?start_date=yesterday",
		"/activity?end_date=2026-13-40",
	} {
		rec := testutil.NewRecorder()
		h.ServeList(rec, testutil.NewAuthenticatedRequest("GET", target, nil, user))
		rec.AssertStatus(t, http.StatusBadRequest)
	}
}

func TestServeList_StoreFailure(t *testing.T) {
	h := auditlog.NewHandler(&recordingQuerier{err: errors.New("boom")}, zap.NewNop())
	rec := testutil.NewRecorder()
	h.ServeList(rec, testutil.NewAuthenticatedRequest("GET", "/activity", nil, testutil.NewTestUser("a@example.com")))
	rec.AssertStatus(t, http.StatusServiceUnavailable)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestRoutes_OwnEventsOnly_Mongo(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := audit.New(db)
	mine := primitive.NewObjectID()
	theirs := primitive.NewObjectID()
	for _, id := range []primitive.ObjectID{mine, mine, theirs} {
		uid := id
		require.NoError(t, store.Log(ctx, audit.Event{Category: audit.CategoryAuth, EventType: audit.EventLoginSuccess, UserID: &uid, Success: true}))
	}

	tokens, err := auth.NewTokens("activity-test-secret-0123456789abcdef")
	require.NoError(t, err)
	tok, err := tokens.Issue(mine.Hex(), "ada@example.com")
	require.NoError(t, err)

	r := auditlog.Routes(auditlog.NewHandler(store, zap.NewNop()), tokens)
	req := testutil.NewRequest("GET", "/")
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	var body listBody
	rec.DecodeJSON(t, &body)
	assert.Len(t, body.Events, 2)
	assert.Equal(t, int64(2), body.Total)
}
