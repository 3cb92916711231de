package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/cardboard/internal/api"
	"github.com/mcoot/cardboard/internal/api/apierr"
	"github.com/mcoot/cardboard/internal/api/response"
	"github.com/mcoot/cardboard/internal/factory"
	"github.com/mcoot/cardboard/internal/metrics"
	"github.com/mcoot/cardboard/internal/model"
	"github.com/mcoot/cardboard/internal/testutil"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	app := factory.NewTestApp()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go app.Engine.Run(ctx)

	router := api.NewRouter(api.RouterConfig{
		Logger:        logger,
		Engine:        app.Engine,
		Websocket:     app.Websocket,
		Metrics:       metrics.Handler(app.MetricsRegistry),
		AllowedOrigin: "http://localhost:3000",
	})

	return &testServer{
		handler: router,
		app:     app,
	}
}

func (ts *testServer) request(method, path string, body any) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func createSession(t *testing.T, ts *testServer, name, password string) string {
	t.Helper()
	body := map[string]string{"name": name, "host_password": password}
	rr := ts.request(http.MethodPost, "/api/v1/sessions", body)
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp response.CreatedSession
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.ID
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestCreateSession(t *testing.T) {
	ts := newTestServer(t)
	ts.app.MockRandom.QueueString("abcd2345")

	body := map[string]string{"name": "Sprint 12 Retro", "host_password": "pw"}
	rr := ts.request(http.MethodPost, "/api/v1/sessions", body)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "/api/v1/sessions/abcd2345", rr.Header().Get("Location"))
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
	var resp response.CreatedSession
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "abcd2345", resp.ID)
	assert.Equal(t, "Sprint 12 Retro", resp.Name)
}

func TestCreateSessionBlankName(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/sessions", nil)

	assert.Equal(t, http.StatusCreated, rr.Code)
	var resp response.CreatedSession
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Default", resp.Name)
}

func TestCreateSessionInvalidBody(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", bytes.NewBufferString("{broken"))
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	var resp apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, apierr.CodeInvalidRequest, resp.Error.Code)
}

func TestListSessions(t *testing.T) {
	ts := newTestServer(t)
	createSession(t, ts, "One", "")
	ts.app.MockClock.Advance(1)
	createSession(t, ts, "Two", "")

	rr := ts.request(http.MethodGet, "/api/v1/sessions", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp response.SessionList
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Sessions, 2)
	assert.Equal(t, "One", resp.Sessions[0].Name)
	assert.Equal(t, "Two", resp.Sessions[1].Name)
	assert.Equal(t, 0, resp.Sessions[0].ParticipantCount)
}

func TestGetSession(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts, "Retro", "secret")

	rr := ts.request(http.MethodGet, "/api/v1/sessions/"+id, nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "secret")
	assert.NotContains(t, rr.Body.String(), "password")

	var resp response.Session
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, id, resp.ID)
	assert.Equal(t, "not_started", resp.State)
	assert.Empty(t, resp.Cards)
	assert.Nil(t, resp.StartedAt)
}

func TestGetSessionNotFound(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/sessions/missing", nil)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	var resp apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, apierr.CodeSessionNotFound, resp.Error.Code)
}

func TestSavedCards(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts, "Retro", "")

	err := ts.app.Archive.SaveCard(context.Background(), &model.SavedCard{
		SessionID: model.SessionID(id),
		Card:      model.Card{ID: "c1", X: 1, Y: 2, Content: model.Attributes{"title": "Kept"}},
		SavedBy:   "alice",
		SavedAt:   ts.app.MockClock.Now(),
	})
	require.NoError(t, err)

	rr := ts.request(http.MethodGet, "/api/v1/sessions/"+id+"/saved-cards", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp response.SavedCardList
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.SavedCards, 1)
	assert.Equal(t, "c1", resp.SavedCards[0].Card.ID)
	assert.Equal(t, "Kept", resp.SavedCards[0].Card.Content["title"])
	assert.Equal(t, "alice", resp.SavedCards[0].SavedBy)
}

func TestSavedCardsUnknownSession(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/sessions/missing/saved-cards", nil)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodOptions, "/api/v1/sessions", nil)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	createSession(t, ts, "Retro", "")

	rr := ts.request(http.MethodGet, "/metrics", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "cardboard_sessions_created_total 1")
}

func TestWebsocketRequiresUpgrade(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/ws", nil)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPanicsRecoveredOnce(t *testing.T) {
	logger, logs := testutil.BufferLogger()
	ws := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("ws boom")
	})
	// with no engine every session route panics
	router := api.NewRouter(api.RouterConfig{Logger: logger, Websocket: ws})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/sessions", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	var apiErr apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &apiErr))
	assert.Equal(t, apierr.CodeInternalError, apiErr.Error.Code)
	assert.Equal(t, 1, strings.Count(logs.String(), "panic recovered"))

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, 2, strings.Count(logs.String(), "panic recovered"))
}
