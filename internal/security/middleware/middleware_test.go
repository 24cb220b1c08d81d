package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/crm/internal/infrastructure/logger"
	"github.com/aryan0dhankhar/crm/internal/security/audit"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRequestIDGeneratesAndPropagates(t *testing.T) {
	var seen string
	h := RequestID(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.RequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/leads", nil))

	got := rec.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, got, seen)

	incoming := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/api/leads", nil)
	req.Header.Set(RequestIDHeader, incoming)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, incoming, rec.Header().Get(RequestIDHeader))

	req.Header.Set(RequestIDHeader, "<script>")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.NotEqual(t, "<script>", rec.Header().Get(RequestIDHeader))
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"http://localhost:5173"})(ok)

	req := httptest.NewRequest(http.MethodOptions, "/api/deals", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PATCH")

	req = httptest.NewRequest(http.MethodGet, "/api/deals", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

type denyAfter struct{ n int }

func (d *denyAfter) Allow(context.Context, string) bool {
	d.n--
	return d.n >= 0
}

func TestRateLimit(t *testing.T) {
	h := RateLimit(&denyAfter{n: 1}, "/api", logger.Discard())(ok)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/leads", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/leads", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "Too Many Requests")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "paths outside the API are not limited")
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:54321"
	assert.Equal(t, "203.0.113.7", ClientIP(req))

	req.RemoteAddr = "pipe"
	assert.Equal(t, "pipe", ClientIP(req))
}

func TestDescribeMutation(t *testing.T) {
	cases := []struct {
		method, path             string
		action, resource, entity string
	}{
		{http.MethodPost, "/leads", "create", "leads", ""},
		{http.MethodPut, "/leads/lead_1", "update", "leads", "lead_1"},
		{http.MethodDelete, "/contacts/contact_9", "delete", "contacts", "contact_9"},
		{http.MethodPost, "/leads/lead_1/convert", "convert", "leads", "lead_1"},
		{http.MethodPatch, "/deals/deal_1/stage", "move_stage", "deals", "deal_1"},
		{http.MethodPatch, "/activities/activity_1/complete", "complete", "activities", "activity_1"},
		{http.MethodPost, "/pipeline/stages", "create", "stages", ""},
		{http.MethodPost, "/pipeline/stages/reorder", "reorder", "stages", ""},
		{http.MethodDelete, "/pipeline/stages/stage_2", "delete", "stages", "stage_2"},
	}
	for _, tc := range cases {
		action, resource, id := DescribeMutation(tc.method, tc.path)
		assert.Equal(t, tc.action, action, tc.path)
		assert.Equal(t, tc.resource, resource, tc.path)
		assert.Equal(t, tc.entity, id, tc.path)
	}
}

func TestAuditLogsMutationsOnly(t *testing.T) {
	var buf bytes.Buffer
	auditLog := audit.NewLogger(logger.New(&buf, "info", "json"))
	h := Audit(auditLog, "/api", "user_1")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/leads", nil))
	assert.Zero(t, buf.Len())

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/leads/lead_1/convert", nil))
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "convert", rec["action"])
	assert.Equal(t, "leads", rec["resource"])
	assert.Equal(t, "lead_1", rec["resource_id"])
	assert.Equal(t, audit.StatusRejected, rec["status"])
	assert.Equal(t, "user_1", rec["user_id"])
}

func TestRecover(t *testing.T) {
	h := Recover(logger.Discard())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/leads", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal Server Error")
}

func TestValidateJSONContentType(t *testing.T) {
	h := ValidateJSONContentType(logger.Discard())(ok)

	req := httptest.NewRequest(http.MethodPost, "/api/leads", strings.NewReader(`{"name":"x"}`))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/leads", strings.NewReader(`{"name":"x"}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/leads/lead_1/convert", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
