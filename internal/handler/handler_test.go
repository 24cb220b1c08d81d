package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/crm/internal/domain"
	"github.com/aryan0dhankhar/crm/internal/infrastructure/logger"
	"github.com/aryan0dhankhar/crm/internal/repository"
	"github.com/aryan0dhankhar/crm/internal/service"
	"github.com/aryan0dhankhar/crm/internal/testutil"
	"github.com/aryan0dhankhar/crm/pkg/cache"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	db := testutil.NewDB(t)
	log := logger.Discard()
	deps := service.Deps{Tx: repository.NewTransactor(db), Logger: log}

	companies := repository.NewCompanyRepository(db, log)
	contacts := repository.NewContactRepository(db, log)
	leads := repository.NewLeadRepository(db, log)
	stages := repository.NewStageRepository(db, log)
	deals := repository.NewDealRepository(db, log)
	activities := repository.NewActivityRepository(db, log)

	rs := NewResponder(log, false)
	return NewRouter("/api", rs,
		NewHealthHandler(PingFunc(db.PingContext), nil, rs, log),
		NewLeadHandler(service.NewLeadService(leads, contacts, activities, deps), rs),
		NewContactHandler(service.NewContactService(contacts, deals, activities, deps), rs),
		NewCompanyHandler(service.NewCompanyService(companies, contacts, deals, activities, deps), rs),
		NewDealHandler(service.NewDealService(deals, stages, activities, deps), rs),
		NewPipelineHandler(service.NewPipelineService(stages, cache.NewMemory(), time.Minute, deps), rs),
		NewActivityHandler(service.NewActivityService(activities, domain.DefaultUserID, deps), rs),
		NewDashboardHandler(service.NewDashboardService(repository.NewDashboardRepository(db, log), activities, deps), rs),
		NewUserHandler(service.NewUserService(repository.NewUserRepository(db, log)), rs),
	)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestRootAndHealth(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	root := decode[RootResponse](t, rec)
	assert.Equal(t, "healthy", root.Status)
	assert.Equal(t, APIVersion, root.Version)

	rec = do(t, h, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	health := decode[HealthResponse](t, rec)
	assert.Equal(t, "ok", health.Status)
	assert.NotEmpty(t, health.Timestamp)

	rec = do(t, h, http.MethodGet, "/readyz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	ready := decode[ReadinessResponse](t, rec)
	assert.Equal(t, "ok", ready.Checks["database"])
	assert.Equal(t, "not configured", ready.Checks["redis"])
}

func TestReadyReportsFailingDependency(t *testing.T) {
	rs := NewResponder(logger.Discard(), false)
	down := PingFunc(func(context.Context) error { return errors.New("connection refused") })
	mux := NewRouter("/api", rs, NewHealthHandler(PingFunc(func(context.Context) error { return nil }), down, rs, logger.Discard()))

	rec := do(t, mux, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	ready := decode[ReadinessResponse](t, rec)
	assert.Equal(t, "not_ready", ready.Status)
	assert.Equal(t, "error: connection refused", ready.Checks["redis"])
}

func TestUnknownRouteIsJSON404(t *testing.T) {
	h := newTestServer(t)

	for _, path := range []string{"/nope", "/api/widgets", "/api/leads/lead_1/archive"} {
		rec := do(t, h, http.MethodGet, path, "")
		require.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		body := decode[ErrorResponse](t, rec)
		assert.Equal(t, "Not Found", body.Error)
		assert.Equal(t, "The requested resource was not found", body.Message)
	}
}

func TestMissingEntityIs404(t *testing.T) {
	h := newTestServer(t)

	for _, path := range []string{"/api/leads/lead_x", "/api/contacts/contact_x", "/api/companies/company_x", "/api/deals/deal_x", "/api/activities/activity_x"} {
		rec := do(t, h, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Equal(t, "Not Found", decode[ErrorResponse](t, rec).Error)
	}
}

func TestMalformedBodies(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/leads", `{"name":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid JSON body", decode[ErrorResponse](t, rec).Message)

	rec = do(t, h, http.MethodPost, "/api/leads", `{"name":"Ada","score":"high"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "score has the wrong type", decode[ErrorResponse](t, rec).Message)

	rec = do(t, h, http.MethodPost, "/api/leads", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Request body is required", decode[ErrorResponse](t, rec).Message)

	rec = do(t, h, http.MethodPost, "/api/leads", `{"email":"ada@example.com"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[ErrorResponse](t, rec)
	assert.Equal(t, "Bad Request", body.Error)
	assert.Equal(t, "name is required", body.Message)
}

func TestLeadLifecycle(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/leads", `{"name":"Ada Lovelace","email":"ada@example.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	lead := decode[domain.Lead](t, rec)
	assert.True(t, strings.HasPrefix(lead.ID, "lead_"))
	assert.Equal(t, domain.LeadStatusNew, lead.Status)

	rec = do(t, h, http.MethodGet, "/api/leads?search=lovelace", "")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[domain.Page[domain.Lead]](t, rec)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 1, page.TotalPages)

	rec = do(t, h, http.MethodPost, "/api/leads/"+lead.ID+"/convert", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	converted := decode[ConvertResponse](t, rec)
	assert.Equal(t, "Lead converted successfully", converted.Message)
	require.NotNil(t, converted.Contact)
	assert.Equal(t, "Ada", converted.Contact.FirstName)
	assert.Equal(t, "Lovelace", converted.Contact.LastName)

	rec = do(t, h, http.MethodPost, "/api/leads/"+lead.ID+"/convert", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/leads/"+lead.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Lead deleted successfully", decode[MessageResponse](t, rec).Message)
}

func TestDealBoardAndStageMove(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/deals", `{"name":"Renewal","value":1200}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	deal := decode[domain.Deal](t, rec)
	require.NotNil(t, deal.StageID)
	assert.Equal(t, "stage_1", *deal.StageID)

	rec = do(t, h, http.MethodGet, "/api/deals?view=pipeline", "")
	require.Equal(t, http.StatusOK, rec.Code)
	board := decode[PipelineResponse](t, rec)
	require.Len(t, board.Pipeline, 6)
	assert.Equal(t, "stage_1", board.Pipeline[0].ID)
	assert.Len(t, board.Pipeline[0].Deals, 1)
	assert.Equal(t, 1200.0, board.Pipeline[0].TotalValue)
	assert.NotNil(t, board.Pipeline[1].Deals)
	assert.Empty(t, board.Pipeline[1].Deals)

	rec = do(t, h, http.MethodPatch, "/api/deals/"+deal.ID+"/stage", `{"stage_id":"stage_5"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	moved := decode[domain.Deal](t, rec)
	assert.Equal(t, domain.DealStatusWon, moved.Status)
	assert.Equal(t, 100, moved.Probability)
	assert.NotNil(t, moved.ActualCloseDate)

	rec = do(t, h, http.MethodPatch, "/api/deals/"+deal.ID+"/stage", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStageRoutes(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/pipeline/stages", `{"name":"Discovery"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	stage := decode[domain.PipelineStage](t, rec)
	assert.Equal(t, 7, stage.Position)

	rec = do(t, h, http.MethodPost, "/api/pipeline/stages/reorder", `{"stageIds":["`+stage.ID+`","stage_1"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	stages := decode[[]domain.PipelineStage](t, rec)
	require.NotEmpty(t, stages)
	assert.Equal(t, stage.ID, stages[0].ID)

	rec = do(t, h, http.MethodPost, "/api/pipeline/stages/reorder", `{"stageIds":[]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.PipelineStage](t, rec), 7)

	rec = do(t, h, http.MethodPost, "/api/pipeline/stages/reorder", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/deals", `{"name":"Pilot","stage_id":"stage_2"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/pipeline/stages/stage_2", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Cannot delete stage with 1 deals. Move or delete deals first.", decode[ErrorResponse](t, rec).Message)

	rec = do(t, h, http.MethodDelete, "/api/pipeline/stages/"+stage.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Stage deleted successfully", decode[MessageResponse](t, rec).Message)
}

func TestActivityCompleteWithoutBody(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/activities", `{"type":"call","subject":"Intro call"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	activity := decode[domain.Activity](t, rec)

	rec = do(t, h, http.MethodPatch, "/api/activities/"+activity.ID+"/complete", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	done := decode[domain.ActivityRow](t, rec)
	assert.Equal(t, domain.ActivityStatusCompleted, done.Status)
	assert.NotNil(t, done.CompletedAt)
	assert.Nil(t, done.Outcome)

	rec = do(t, h, http.MethodGet, "/api/activities?status=completed", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[domain.Page[domain.ActivityRow]](t, rec).Total)
}

func TestDashboardRoutes(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/dashboard/stats", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/dashboard/metrics?period=abc", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	metrics := decode[domain.DashboardMetrics](t, rec)
	assert.Equal(t, service.DefaultMetricsPeriod, metrics.Period)

	rec = do(t, h, http.MethodGet, "/api/users", "")
	require.Equal(t, http.StatusOK, rec.Code)
	users := decode[[]domain.User](t, rec)
	require.Len(t, users, 1)
	assert.Equal(t, domain.DefaultUserID, users[0].ID)
}
