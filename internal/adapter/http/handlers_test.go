package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	pphttp "github.com/bloxkit/passproxy/internal/adapter/http"
	"github.com/bloxkit/passproxy/internal/adapter/memory"
	"github.com/bloxkit/passproxy/internal/adapter/roblox"
	"github.com/bloxkit/passproxy/internal/service"
)

// upstreamFixture fakes the two Roblox endpoints behind one test server.
type upstreamFixture struct {
	server      *httptest.Server
	listCalls   atomic.Int64
	listStatus  int
	listBody    string
	resolveBody string
}

func newUpstream() *upstreamFixture {
	f := &upstreamFixture{
		listStatus:  http.StatusOK,
		listBody:    `{"data":[{"id":1,"name":"Pass A"}]}`,
		resolveBody: `{"universeId":123}`,
	}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/universes/"):
			_, _ = w.Write([]byte(f.resolveBody))
		case strings.HasPrefix(r.URL.Path, "/v1/games/"):
			f.listCalls.Add(1)
			w.WriteHeader(f.listStatus)
			_, _ = w.Write([]byte(f.listBody))
		default:
			http.NotFound(w, r)
		}
	}))
	return f
}

func newRouter(f *upstreamFixture, apiKey string, ttl time.Duration) http.Handler {
	client := roblox.NewClient(f.server.URL, f.server.URL, 5*time.Second)
	svc := service.NewPassService(client, memory.New(), ttl, nil)
	r := chi.NewRouter()
	pphttp.MountRoutes(r, &pphttp.Handlers{Passes: svc}, apiKey)
	return r
}

type passesBody struct {
	Success bool              `json:"success"`
	Passes  []json.RawMessage `json:"passes"`
	Cached  bool              `json:"cached"`
	Error   string            `json:"error"`
	Message string            `json:"message"`
}

func doGet(t *testing.T, h http.Handler, target string, headers map[string]string) (int, passesBody) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body passesBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body %q: %v", rec.Body.String(), err)
	}
	return rec.Code, body
}

func TestGetPassesColdThenCached(t *testing.T) {
	f := newUpstream()
	defer f.server.Close()
	h := newRouter(f, "", time.Minute)

	code, body := doGet(t, h, "/passes?universeId=123", nil)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if !body.Success || body.Cached {
		t.Fatalf("expected success with cached=false, got %+v", body)
	}
	if len(body.Passes) != 1 || !strings.Contains(string(body.Passes[0]), `"Pass A"`) {
		t.Fatalf("expected verbatim pass payload, got %v", body.Passes)
	}

	code, body = doGet(t, h, "/passes?universeId=123", nil)
	if code != http.StatusOK || !body.Cached {
		t.Fatalf("expected cached repeat, got code=%d body=%+v", code, body)
	}
	if len(body.Passes) != 1 || !strings.Contains(string(body.Passes[0]), `"Pass A"`) {
		t.Fatalf("cached payload should be identical, got %v", body.Passes)
	}
	if n := f.listCalls.Load(); n != 1 {
		t.Errorf("expected a single upstream listing call, got %d", n)
	}
}

func TestGetPassesTTLExpiry(t *testing.T) {
	f := newUpstream()
	defer f.server.Close()
	h := newRouter(f, "", 20*time.Millisecond)

	_, body := doGet(t, h, "/passes?universeId=123", nil)
	if body.Cached {
		t.Fatal("cold cache should be a miss")
	}
	time.Sleep(40 * time.Millisecond)

	_, body = doGet(t, h, "/passes?universeId=123", nil)
	if body.Cached {
		t.Fatal("expired entry should be a miss")
	}
	if n := f.listCalls.Load(); n != 2 {
		t.Errorf("expected a second upstream call after expiry, got %d", n)
	}
}

func TestGetPassesViaPlaceID(t *testing.T) {
	f := newUpstream()
	defer f.server.Close()
	h := newRouter(f, "", time.Minute)

	code, viaPlace := doGet(t, h, "/passes?placeId=9001", nil)
	if code != http.StatusOK || !viaPlace.Success {
		t.Fatalf("expected success via placeId, got code=%d body=%+v", code, viaPlace)
	}

	// Same universe: the placeId request warmed the cache for universeId=123.
	_, viaUniverse := doGet(t, h, "/passes?universeId=123", nil)
	if !viaUniverse.Cached {
		t.Error("placeId and universeId requests should share a cache entry")
	}
	if string(viaPlace.Passes[0]) != string(viaUniverse.Passes[0]) {
		t.Error("expected identical payload for equivalent identifiers")
	}
}

func TestGetPassesPlaceResolutionFailure(t *testing.T) {
	f := newUpstream()
	defer f.server.Close()
	f.resolveBody = `{}`
	h := newRouter(f, "", time.Minute)

	code, body := doGet(t, h, "/passes?placeId=9001", nil)
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unresolvable place, got %d", code)
	}
	if body.Success {
		t.Error("expected success=false")
	}
	if n := f.listCalls.Load(); n != 0 {
		t.Errorf("listing must not be attempted after failed resolution, got %d calls", n)
	}
}

func TestGetPassesUserIDFallback(t *testing.T) {
	f := newUpstream()
	defer f.server.Close()
	h := newRouter(f, "", time.Minute)

	code, body := doGet(t, h, "/passes?userId=123", nil)
	if code != http.StatusOK || !body.Success {
		t.Fatalf("expected userId accepted as universe id, got code=%d body=%+v", code, body)
	}
}

func TestGetPassesNoIdentifier(t *testing.T) {
	f := newUpstream()
	defer f.server.Close()
	h := newRouter(f, "", time.Minute)

	code, body := doGet(t, h, "/passes", nil)
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
	if body.Success || body.Error == "" {
		t.Errorf("expected structured failure, got %+v", body)
	}
}

func TestGetPassesUpstreamFailure(t *testing.T) {
	f := newUpstream()
	defer f.server.Close()
	f.listStatus = http.StatusServiceUnavailable
	f.listBody = "unavailable"
	h := newRouter(f, "", time.Minute)

	code, body := doGet(t, h, "/passes?universeId=123", nil)
	if code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", code)
	}
	if body.Success {
		t.Error("expected success=false")
	}
	if !strings.Contains(body.Message, "503") {
		t.Errorf("expected upstream status in message, got %q", body.Message)
	}
}

func TestGetPassesGate(t *testing.T) {
	f := newUpstream()
	defer f.server.Close()
	h := newRouter(f, "sekrit", time.Minute)

	code, body := doGet(t, h, "/passes?universeId=123", nil)
	if code != http.StatusUnauthorized || body.Success {
		t.Fatalf("expected 401 without key, got code=%d body=%+v", code, body)
	}

	code, _ = doGet(t, h, "/passes?universeId=123", map[string]string{"x-api-key": "wrong"})
	if code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong key, got %d", code)
	}

	code, body = doGet(t, h, "/passes?universeId=123", map[string]string{"x-api-key": "sekrit"})
	if code != http.StatusOK || !body.Success {
		t.Fatalf("expected 200 with correct key, got code=%d body=%+v", code, body)
	}

	// Health stays open regardless of the gate.
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected open health endpoint, got %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	f := newUpstream()
	defer f.server.Close()
	h := newRouter(f, "", time.Minute)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Status    string `json:"status"`
		Timestamp string `json:"timestamp"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "ok" {
		t.Errorf("expected status ok, got %q", body.Status)
	}
	if _, err := time.Parse(time.RFC3339, body.Timestamp); err != nil {
		t.Errorf("expected RFC3339 timestamp, got %q", body.Timestamp)
	}
}

func TestRoot(t *testing.T) {
	f := newUpstream()
	defer f.server.Close()
	h := newRouter(f, "", time.Minute)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Message   string            `json:"message"`
		Endpoints map[string]string `json:"endpoints"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Message == "" || len(body.Endpoints) == 0 {
		t.Errorf("expected route listing, got %s", rec.Body.String())
	}
}
