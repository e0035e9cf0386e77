package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/intel/webapps-scientific-calculator/internal/calculator"
	"github.com/intel/webapps-scientific-calculator/internal/i18n"
	"github.com/intel/webapps-scientific-calculator/internal/observability"
	"github.com/intel/webapps-scientific-calculator/internal/parser"
	"github.com/intel/webapps-scientific-calculator/internal/session"
	"github.com/intel/webapps-scientific-calculator/internal/testutil"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	observability.Logger = zap.NewNop()
	if err := calculator.InitMetrics(); err != nil {
		t.Fatalf("initializing calculator metrics: %v", err)
	}

	b, err := i18n.Load()
	if err != nil {
		t.Fatalf("loading catalogues: %v", err)
	}
	store := session.NewStore(parser.MustDefault(), b)

	reg, err := observability.NewRegistry(store.Collector())
	if err != nil {
		t.Fatalf("creating registry: %v", err)
	}
	return NewRouter(store, reg)
}

func TestNewRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	if body := w.Body.String(); body != "ok" {
		t.Fatalf("expected body %q, got %q", "ok", body)
	}
}

func TestNewRouterEvaluateSetsHeaderAndOmitsRequestIDInBody(t *testing.T) {
	router := newTestRouter(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/calculator/evaluate", map[string]string{"formula": "2+3"})
	w := testutil.ExecuteRequest(req, router)

	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	requestID := w.Result().Header.Get("X-Request-ID")
	if requestID == "" {
		t.Fatal("expected X-Request-ID header to be set")
	}
	if _, err := uuid.Parse(requestID); err != nil {
		t.Fatalf("expected valid UUID in X-Request-ID, got %q: %v", requestID, err)
	}

	var payload map[string]any
	if err := json.NewDecoder(w.Result().Body).Decode(&payload); err != nil {
		t.Fatalf("decoding JSON response: %v", err)
	}

	if _, ok := payload["request_id"]; ok {
		t.Fatal("did not expect request_id field in success JSON body")
	}

	if got, ok := payload["value"].(float64); !ok || got != 5 {
		t.Fatalf("expected value 5, got %#v", payload["value"])
	}
}

func TestNewRouterMetricsReportsSessions(t *testing.T) {
	router := newTestRouter(t)

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodPost, "/sessions", nil), router)
	testutil.CheckResponseCode(t, http.StatusCreated, w.Code)

	w = testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/metrics", nil), router)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	if body := w.Body.String(); !strings.Contains(body, "calculator_active_sessions 1") {
		t.Fatal("expected metrics to report one active session")
	}
}

func TestNewRouterUnknownRoute(t *testing.T) {
	router := newTestRouter(t)

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodPost, "/calculator/add", nil), router)
	testutil.CheckResponseCode(t, http.StatusNotFound, w.Code)
}
