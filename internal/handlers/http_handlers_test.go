package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"html/template"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lotto/internal/models"
	"lotto/internal/services"
	"lotto/internal/store"
)

const testTemplates = `
{{define "layout.html"}}<html><title>{{.title}}</title><body>{{.PageContent}}</body></html>{{end}}
{{define "dashboard.html"}}<p>operator {{.Operator.Balance}}</p>{{range .Players}}<tr><td>{{.Name}}</td><td>{{.Balance}}</td></tr>{{end}}{{end}}
`

type sessionBody struct {
	Player     models.Player       `json:"player"`
	Operator   models.Operator     `json:"operator"`
	Phase      string              `json:"phase"`
	LastResult *models.RoundResult `json:"lastResult"`
}

type errorBody struct {
	Error string `json:"error"`
}

type testServer struct {
	router *gin.Engine
	store  *store.MemoryStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.NewMemoryStore()
	rep := store.NewReplicator(st, 64, time.Second)
	t.Cleanup(rep.Close)

	svc := services.NewLotteryService(st, rep,
		services.WithRandFactory(func() *rand.Rand { return rand.New(rand.NewSource(11)) }))
	tmpl := template.Must(template.New("").Parse(testTemplates))
	return &testServer{router: NewRouter(NewHTTPHandler(svc, tmpl)), store: st}
}

func (s *testServer) do(t *testing.T, method, path, session string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set(sessionHeader, session)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHTTPHandler_RoundTrip(t *testing.T) {
	s := newTestServer(t)
	const session = "s1"

	w := s.do(t, http.MethodPost, "/api/session/tickets", session, gin.H{"count": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "name_missing", decode[errorBody](t, w).Error)

	w = s.do(t, http.MethodPost, "/api/session/identity", session, gin.H{"name": "alice"})
	require.Equal(t, http.StatusOK, w.Code)
	snap := decode[sessionBody](t, w)
	assert.Equal(t, "alice", snap.Player.Name)
	assert.Equal(t, int64(10000), snap.Player.Balance)
	assert.Equal(t, "open", snap.Phase)

	w = s.do(t, http.MethodPost, "/api/session/draw", session, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "round_open", decode[errorBody](t, w).Error)

	w = s.do(t, http.MethodPost, "/api/session/tickets", session, gin.H{"count": 2})
	require.Equal(t, http.StatusOK, w.Code)
	bought := decode[struct {
		Tickets []models.Ticket `json:"tickets"`
		Session sessionBody     `json:"session"`
	}](t, w)
	assert.Len(t, bought.Tickets, 2)
	assert.Equal(t, int64(9000), bought.Session.Player.Balance)
	assert.Equal(t, "locked", bought.Session.Phase)

	w = s.do(t, http.MethodPost, "/api/session/tickets", session, gin.H{"count": 1})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "round_locked", decode[errorBody](t, w).Error)

	w = s.do(t, http.MethodPost, "/api/session/draw", session, nil)
	require.Equal(t, http.StatusOK, w.Code)
	drawn := decode[struct {
		Result  models.RoundResult `json:"result"`
		Session sessionBody        `json:"session"`
	}](t, w)
	assert.Len(t, drawn.Result.DrawnNumbers, 5)
	assert.Equal(t, "open", drawn.Session.Phase)
	assert.Equal(t, int64(9000)+drawn.Result.TotalPrize, drawn.Session.Player.Balance)
	require.NotNil(t, drawn.Session.LastResult)

	w = s.do(t, http.MethodPost, "/api/session/reset", session, nil)
	require.Equal(t, http.StatusOK, w.Code)
	reset := decode[sessionBody](t, w)
	assert.Empty(t, reset.Player.Name)
	assert.Equal(t, "open", reset.Phase)
}

func TestHTTPHandler_PurchaseValidation(t *testing.T) {
	s := newTestServer(t)
	const session = "s2"
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/session/identity", session, gin.H{"name": "bob"}).Code)

	for name, body := range map[string]any{
		"zero":       gin.H{"count": 0},
		"negative":   gin.H{"count": -3},
		"fractional": gin.H{"count": 1.5},
		"text":       gin.H{"count": "two"},
	} {
		t.Run(name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/api/session/tickets", session, body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "invalid_ticket_count", decode[errorBody](t, w).Error)
		})
	}

	t.Run("missing count", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/session/tickets", session, gin.H{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "bad_request", decode[errorBody](t, w).Error)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/session/tickets", strings.NewReader(`{"count":`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(sessionHeader, session)
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "bad_request", decode[errorBody](t, w).Error)
	})

	for _, count := range []int{21, 18446744073709552} {
		w := s.do(t, http.MethodPost, "/api/session/tickets", session, gin.H{"count": count})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "insufficient_balance", decode[errorBody](t, w).Error)
	}

	snap := decode[sessionBody](t, s.do(t, http.MethodGet, "/api/session", session, nil))
	assert.Equal(t, int64(10000), snap.Player.Balance)
	assert.Equal(t, "open", snap.Phase)
}

func TestHTTPHandler_SessionsAreIsolated(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/session/identity", "a", gin.H{"name": "alice"}).Code)

	snap := decode[sessionBody](t, s.do(t, http.MethodGet, "/api/session", "b", nil))
	assert.Empty(t, snap.Player.Name)

	w := s.do(t, http.MethodGet, "/api/session", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(sessionHeader))
	assert.NotEmpty(t, w.Header().Get(requestHeader))

	w = s.do(t, http.MethodDelete, "/api/session", "a", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	snap = decode[sessionBody](t, s.do(t, http.MethodGet, "/api/session", "a", nil))
	assert.Empty(t, snap.Player.Name)
}

func TestHTTPHandler_Dashboard(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	require.NoError(t, s.store.CreatePlayer(ctx, models.Player{ID: 1, Name: "alice", Balance: 9500}))
	require.NoError(t, s.store.CreatePlayer(ctx, models.Player{ID: 2, Name: "bob", Balance: 12000}))
	require.NoError(t, s.store.SaveOperator(ctx, models.Operator{Balance: 500}))

	w := s.do(t, http.MethodGet, "/dashboard", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "<title>Operator Dashboard</title>")
	assert.Contains(t, body, "operator 500")
	assert.True(t, strings.Index(body, "alice") < strings.Index(body, "bob"))

	w = s.do(t, http.MethodGet, "/api/players", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	players := decode[[]models.Player](t, w)
	assert.Len(t, players, 2)
}

func TestHTTPHandler_Health(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)

	w = s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
