package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sort"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/namnhcntt/BingoMaster/internal/live"
	"github.com/namnhcntt/BingoMaster/internal/store"
	"github.com/namnhcntt/BingoMaster/internal/ws"
)

func newTestRouter(db pinger) *chi.Mux {
	m := store.NewMemory()
	registry := ws.NewRegistry()
	coord := live.New(m, registry, nil)
	handler := ws.NewHandler(registry, coord, []string{"*"})
	return newRouter(memoryConfig(), handler, db)
}

func TestRouteSnapshot(t *testing.T) {
	router := newTestRouter(nil)

	var routes []string
	err := chi.Walk(router, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, method+" "+route)
		return nil
	})
	if err != nil {
		t.Fatalf("walk routes: %v", err)
	}
	sort.Strings(routes)

	expected := []string{
		"GET /debug/vars",
		"GET /games/{game_id}/join-qr",
		"GET /healthz",
		"GET /ws/{game_id}",
		"GET /ws/{game_id}/{player_id}",
	}
	sort.Strings(expected)

	if !reflect.DeepEqual(routes, expected) {
		t.Fatalf("route snapshot mismatch\nexpected=%v\nactual=%v", expected, routes)
	}
}

func TestHealthzWithoutDatabase(t *testing.T) {
	router := newTestRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if ok, _ := body["ok"].(bool); !ok {
		t.Fatalf("expected ok=true, got %v", body)
	}
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealthzReportsDatabaseDown(t *testing.T) {
	router := newTestRouter(failingPinger{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if ok, _ := body["ok"].(bool); ok {
		t.Fatalf("expected ok=false, got %v", body)
	}
	if body["db"] != "down" {
		t.Fatalf("expected db=down, got %v", body)
	}
}

func TestJoinQRReturnsPNG(t *testing.T) {
	router := newTestRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/games/demo/join-qr?player_id=red-1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("content type = %q, want image/png", ct)
	}
	pngMagic := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	if !bytes.HasPrefix(w.Body.Bytes(), pngMagic) {
		t.Fatalf("body is not a PNG, first bytes: %x", w.Body.Bytes()[:8])
	}
}

func TestJoinQRRequiresPlayerID(t *testing.T) {
	router := newTestRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/games/demo/join-qr", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != "missing_player_id" {
		t.Fatalf("error = %q, want missing_player_id", body["error"])
	}
}

func TestDebugVarsExposed(t *testing.T) {
	router := newTestRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/debug/vars", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if _, ok := body["bingo_connections_total"]; !ok {
		t.Fatalf("expected bingo_connections_total in expvar dump, keys: %d", len(body))
	}
}
