package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/treloar/keepsake/internal/game"
	"github.com/treloar/keepsake/internal/prose"
	"github.com/treloar/keepsake/internal/signal"
	"github.com/treloar/keepsake/internal/store"
)

func testServer(t *testing.T) (*Server, *store.DB) {
	t.Helper()
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	feed := signal.NewFeed(signal.WithSeed(1))
	engine := game.NewEngine(db, feed, []float64{0.3, 0.5, 0.7}, 20, 0)
	gen := prose.NewGenerator(&prose.MockClient{
		Response: "a gentle story",
		JSON:     `{"hints":["h1","h2","h3"],"responses":["r1","r2","r3"]}`,
	})
	return New(db, feed, engine, gen, "test-version"), db
}

func seedProfile(t *testing.T, db *store.DB) *store.Profile {
	t.Helper()
	p, err := db.CreateProfile("Eleanor Roosevelt", "ER")
	if err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}
	return p
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := testServer(t)

	w := do(t, srv, "GET", "/api/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var body map[string]any
	decode(t, w, &body)
	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
	if body["version"] != "test-version" {
		t.Errorf("version = %v, want test-version", body["version"])
	}
	if body["db"] != true {
		t.Errorf("db = %v, want true", body["db"])
	}
	if body["signal"] != false {
		t.Errorf("signal = %v, want false (feed not started in tests)", body["signal"])
	}
}
