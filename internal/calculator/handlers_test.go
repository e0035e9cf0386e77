package calculator

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/intel/webapps-scientific-calculator/internal/i18n"
	"github.com/intel/webapps-scientific-calculator/internal/memory"
	"github.com/intel/webapps-scientific-calculator/internal/parser"
	"github.com/intel/webapps-scientific-calculator/internal/session"
	"github.com/intel/webapps-scientific-calculator/internal/testutil"
)

func TestMain(m *testing.M) {
	if err := InitMetrics(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func newTestRouter(t *testing.T) (http.Handler, *session.Store) {
	t.Helper()
	b, err := i18n.Load()
	if err != nil {
		t.Fatalf("loading catalogues: %v", err)
	}
	store := session.NewStore(parser.MustDefault(), b)

	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(store))
	return r, store
}

func do(t *testing.T, h http.Handler, method, target string, body any) *http.Response {
	t.Helper()
	return testutil.ExecuteRequest(testutil.NewJSONRequest(t, method, target, body), h).Result()
}

func createSession(t *testing.T, h http.Handler, body any) session.Snapshot {
	t.Helper()
	resp := do(t, h, http.MethodPost, "/sessions", body)
	testutil.CheckResponseCode(t, http.StatusCreated, resp.StatusCode)

	var snap session.Snapshot
	testutil.DecodeJSONBody(t, resp.Body, &snap)
	return snap
}

func TestEvaluate(t *testing.T) {
	router, _ := newTestRouter(t)

	tests := []struct {
		name    string
		body    EvaluateRequest
		status  int
		result  string
		formula string
	}{
		{name: "addition", body: EvaluateRequest{Formula: "12+3"}, status: http.StatusOK, result: "15", formula: "12+3"},
		{name: "degrees by default", body: EvaluateRequest{Formula: "sin(30)"}, status: http.StatusOK, result: "0.5", formula: "sin(30)"},
		{name: "radians", body: EvaluateRequest{Formula: "cos(0)", Angle: "rad"}, status: http.StatusOK, result: "1", formula: "cos(0)"},
		{name: "placeholder", body: EvaluateRequest{Formula: "e<sup>^</sup>0"}, status: http.StatusOK, result: "1", formula: "e<sup>x</sup>0"},
		{name: "division by zero", body: EvaluateRequest{Formula: "5÷0"}, status: http.StatusUnprocessableEntity},
		{name: "malformed", body: EvaluateRequest{Formula: "2+"}, status: http.StatusUnprocessableEntity},
		{name: "bad angle", body: EvaluateRequest{Formula: "1", Angle: "grad"}, status: http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := do(t, router, http.MethodPost, "/calculator/evaluate", tc.body)
			testutil.CheckResponseCode(t, tc.status, resp.StatusCode)

			if tc.status != http.StatusOK {
				var body map[string]string
				testutil.DecodeJSONBody(t, resp.Body, &body)
				if body["error"] == "" {
					t.Fatal("expected an error message")
				}
				return
			}

			var got EvaluateResponse
			testutil.DecodeJSONBody(t, resp.Body, &got)
			if got.Result != tc.result {
				t.Fatalf("expected result %q, got %q", tc.result, got.Result)
			}
			if got.Formula != tc.formula {
				t.Fatalf("expected formula %q, got %q", tc.formula, got.Formula)
			}
		})
	}
}

func TestEvaluateRejectsInvalidBody(t *testing.T) {
	router, _ := newTestRouter(t)

	resp := do(t, router, http.MethodPost, "/calculator/evaluate", "not an object")
	testutil.CheckResponseCode(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEvaluateRejectsOversizedBody(t *testing.T) {
	router, _ := newTestRouter(t)

	formula := strings.Repeat("1+", MaxBodyBytes) + "1"
	resp := do(t, router, http.MethodPost, "/calculator/evaluate", EvaluateRequest{Formula: formula})
	testutil.CheckResponseCode(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestEvaluateRejectsDeepNesting(t *testing.T) {
	router, _ := newTestRouter(t)

	formula := strings.Repeat("(", 20_000) + "1" + strings.Repeat(")", 20_000)
	resp := do(t, router, http.MethodPost, "/calculator/evaluate", EvaluateRequest{Formula: formula})
	testutil.CheckResponseCode(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestKeysRejectsOversizedBody(t *testing.T) {
	router, _ := newTestRouter(t)
	snap := createSession(t, router, nil)

	keys := make([]string, MaxBodyBytes/4)
	for i := range keys {
		keys[i] = "1"
	}
	resp := do(t, router, http.MethodPost, "/sessions/"+snap.ID+"/keys", KeysRequest{Keys: keys})
	testutil.CheckResponseCode(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestSessionLifecycle(t *testing.T) {
	router, store := newTestRouter(t)

	snap := createSession(t, router, nil)
	if snap.ID == "" || snap.Angle != "deg" || snap.Locale != "en-US" {
		t.Fatalf("unexpected new session %+v", snap)
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 session, got %d", store.Len())
	}

	resp := do(t, router, http.MethodGet, "/sessions/"+snap.ID, nil)
	testutil.CheckResponseCode(t, http.StatusOK, resp.StatusCode)

	resp = do(t, router, http.MethodDelete, "/sessions/"+snap.ID, nil)
	testutil.CheckResponseCode(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, router, http.MethodGet, "/sessions/"+snap.ID, nil)
	testutil.CheckResponseCode(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, router, http.MethodDelete, "/sessions/"+snap.ID, nil)
	testutil.CheckResponseCode(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateSessionOptions(t *testing.T) {
	router, _ := newTestRouter(t)

	snap := createSession(t, router, CreateSessionRequest{Angle: "rad", Locale: "fi"})
	if snap.Angle != "rad" || snap.Locale != "fi" {
		t.Fatalf("expected rad/fi, got %s/%s", snap.Angle, snap.Locale)
	}

	req := testutil.NewJSONRequest(t, http.MethodPost, "/sessions", nil)
	req.Header.Set("Accept-Language", "fi-FI,fi;q=0.9,en;q=0.5")
	resp := testutil.ExecuteRequest(req, router).Result()
	testutil.CheckResponseCode(t, http.StatusCreated, resp.StatusCode)
	if resp.Header.Get("Location") == "" {
		t.Fatal("expected Location header")
	}
	testutil.DecodeJSONBody(t, resp.Body, &snap)
	if snap.Locale != "fi" {
		t.Fatalf("expected Accept-Language to pick fi, got %q", snap.Locale)
	}

	resp = do(t, router, http.MethodPost, "/sessions", CreateSessionRequest{Angle: "grad"})
	testutil.CheckResponseCode(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPress(t *testing.T) {
	router, _ := newTestRouter(t)
	id := createSession(t, router, nil).ID

	var snap session.Snapshot
	for _, key := range []string{"1", "2", "+", "3", "="} {
		resp := do(t, router, http.MethodPost, "/sessions/"+id+"/press", PressRequest{Key: key})
		testutil.CheckResponseCode(t, http.StatusOK, resp.StatusCode)
		testutil.DecodeJSONBody(t, resp.Body, &snap)
	}

	if snap.Entry != "15" || snap.Formula != "15" || snap.ClearLabel != "C" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	resp := do(t, router, http.MethodPost, "/sessions/"+id+"/press", PressRequest{Key: "mod"})
	testutil.CheckResponseCode(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, router, http.MethodPost, "/sessions/missing/press", PressRequest{Key: "1"})
	testutil.CheckResponseCode(t, http.StatusNotFound, resp.StatusCode)
}

func TestKeysReplaysSequence(t *testing.T) {
	router, _ := newTestRouter(t)
	id := createSession(t, router, nil).ID

	resp := do(t, router, http.MethodPost, "/sessions/"+id+"/keys", KeysRequest{
		Keys: []string{"5", "÷", "0", "="},
	})
	testutil.CheckResponseCode(t, http.StatusOK, resp.StatusCode)

	var got KeysResponse
	testutil.DecodeJSONBody(t, resp.Body, &got)

	if len(got.Steps) != 4 {
		t.Fatalf("expected 4 steps, got %d", len(got.Steps))
	}
	if got.Steps[1].Formula != "5÷" {
		t.Fatalf("expected formula %q after step 1, got %q", "5÷", got.Steps[1].Formula)
	}
	if !got.Session.Malformed || got.Session.Entry != "Malformed Expression" {
		t.Fatalf("expected malformed entry, got %+v", got.Session)
	}
	if got.Session.Formula != "5÷" {
		t.Fatalf("expected formula to roll back to %q, got %q", "5÷", got.Session.Formula)
	}
}

func TestKeysStopsAtUnknownKey(t *testing.T) {
	router, store := newTestRouter(t)
	id := createSession(t, router, nil).ID

	resp := do(t, router, http.MethodPost, "/sessions/"+id+"/keys", KeysRequest{Keys: []string{"7", "bogus", "8"}})
	testutil.CheckResponseCode(t, http.StatusBadRequest, resp.StatusCode)

	sess, err := store.Get(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := sess.Snapshot().Entry; got != "7" {
		t.Fatalf("expected keys before the failure to stay applied, got %q", got)
	}

	resp = do(t, router, http.MethodPost, "/sessions/"+id+"/keys", KeysRequest{})
	testutil.CheckResponseCode(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSetAngle(t *testing.T) {
	router, _ := newTestRouter(t)
	id := createSession(t, router, nil).ID

	resp := do(t, router, http.MethodPut, "/sessions/"+id+"/angle", AngleRequest{Mode: "rad"})
	testutil.CheckResponseCode(t, http.StatusOK, resp.StatusCode)

	var snap session.Snapshot
	testutil.DecodeJSONBody(t, resp.Body, &snap)
	if snap.Angle != "rad" {
		t.Fatalf("expected rad, got %q", snap.Angle)
	}

	resp = do(t, router, http.MethodPut, "/sessions/"+id+"/angle", AngleRequest{Mode: "turns"})
	testutil.CheckResponseCode(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMemoryEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)
	id := createSession(t, router, nil).ID
	base := "/sessions/" + id + "/memory"

	resp := do(t, router, http.MethodPost, base, nil)
	testutil.CheckResponseCode(t, http.StatusBadRequest, resp.StatusCode)

	do(t, router, http.MethodPost, "/sessions/"+id+"/keys", KeysRequest{Keys: []string{"4", "2"}})

	resp = do(t, router, http.MethodPost, base, nil)
	testutil.CheckResponseCode(t, http.StatusCreated, resp.StatusCode)
	var slot memory.Slot
	testutil.DecodeJSONBody(t, resp.Body, &slot)
	if slot.Name != "M1" || slot.Value != "42" {
		t.Fatalf("unexpected slot %+v", slot)
	}

	resp = do(t, router, http.MethodPut, base+"/M1", DescribeRequest{Description: "answer"})
	testutil.CheckResponseCode(t, http.StatusOK, resp.StatusCode)

	resp = do(t, router, http.MethodGet, base, nil)
	testutil.CheckResponseCode(t, http.StatusOK, resp.StatusCode)
	var list MemoryResponse
	testutil.DecodeJSONBody(t, resp.Body, &list)
	if list.FreeSlot != "M2" || len(list.Slots) != memory.Slots || list.Slots[0].Description != "answer" {
		t.Fatalf("unexpected memory listing %+v", list)
	}

	do(t, router, http.MethodPost, "/sessions/"+id+"/keys", KeysRequest{Keys: []string{"AC", "AC", "2", "×"}})
	resp = do(t, router, http.MethodPost, base+"/M1/recall", nil)
	testutil.CheckResponseCode(t, http.StatusOK, resp.StatusCode)
	var snap session.Snapshot
	testutil.DecodeJSONBody(t, resp.Body, &snap)
	if snap.Entry != "42" || snap.Formula != "2×" {
		t.Fatalf("unexpected snapshot after recall %+v", snap)
	}

	resp = do(t, router, http.MethodPost, base+"/M2/recall", nil)
	testutil.CheckResponseCode(t, http.StatusConflict, resp.StatusCode)

	resp = do(t, router, http.MethodPost, base+"/M9/recall", nil)
	testutil.CheckResponseCode(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, router, http.MethodDelete, base+"/M1", nil)
	testutil.CheckResponseCode(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, router, http.MethodDelete, base, nil)
	testutil.CheckResponseCode(t, http.StatusNoContent, resp.StatusCode)
}

func TestMemoryFull(t *testing.T) {
	router, _ := newTestRouter(t)
	id := createSession(t, router, nil).ID
	base := "/sessions/" + id + "/memory"

	do(t, router, http.MethodPost, "/sessions/"+id+"/press", PressRequest{Key: "9"})
	for i := 1; i <= memory.Slots; i++ {
		resp := do(t, router, http.MethodPost, base, nil)
		testutil.CheckResponseCode(t, http.StatusCreated, resp.StatusCode)
	}

	resp := do(t, router, http.MethodPost, base, nil)
	testutil.CheckResponseCode(t, http.StatusConflict, resp.StatusCode)

	resp = do(t, router, http.MethodGet, "/sessions/"+id, nil)
	var snap session.Snapshot
	testutil.DecodeJSONBody(t, resp.Body, &snap)
	if snap.FreeSlot != memory.FullLabel {
		t.Fatalf("expected %q, got %q", memory.FullLabel, snap.FreeSlot)
	}
}

func TestHistoryEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)
	id := createSession(t, router, nil).ID

	do(t, router, http.MethodPost, "/sessions/"+id+"/keys", KeysRequest{Keys: []string{"6", "×", "7", "="}})

	resp := do(t, router, http.MethodGet, "/sessions/"+id+"/history", nil)
	testutil.CheckResponseCode(t, http.StatusOK, resp.StatusCode)
	var list HistoryResponse
	testutil.DecodeJSONBody(t, resp.Body, &list)
	if len(list.Entries) != 1 || list.Entries[0].Formula != "6×7" || list.Entries[0].Result != "42" {
		t.Fatalf("unexpected history %+v", list.Entries)
	}

	resp = do(t, router, http.MethodPost, "/sessions/"+id+"/history/0/recall", nil)
	testutil.CheckResponseCode(t, http.StatusOK, resp.StatusCode)
	var snap session.Snapshot
	testutil.DecodeJSONBody(t, resp.Body, &snap)
	if snap.Entry != "42" {
		t.Fatalf("expected recalled entry %q, got %q", "42", snap.Entry)
	}

	resp = do(t, router, http.MethodPost, "/sessions/"+id+"/history/0/memory", nil)
	testutil.CheckResponseCode(t, http.StatusCreated, resp.StatusCode)

	for _, index := range []string{"1", "-1", "x"} {
		resp = do(t, router, http.MethodPost, "/sessions/"+id+"/history/"+index+"/recall", nil)
		testutil.CheckResponseCode(t, http.StatusNotFound, resp.StatusCode)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: session.ErrNotFound, want: http.StatusNotFound},
		{err: memory.ErrFull, want: http.StatusConflict},
		{err: session.ErrUnknownKey, want: http.StatusBadRequest},
		{err: http.ErrBodyNotAllowed, want: http.StatusInternalServerError},
	}

	for i, tc := range tests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			if got := statusFor(tc.err); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}
