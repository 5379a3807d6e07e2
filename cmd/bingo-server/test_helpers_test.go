package main

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/namnhcntt/BingoMaster/internal/config"
	"github.com/namnhcntt/BingoMaster/internal/live"
	"github.com/namnhcntt/BingoMaster/internal/store"
	"github.com/namnhcntt/BingoMaster/internal/ws"
)

func memoryConfig() config.ServerConfig {
	return config.ServerConfig{
		PublicBaseURL:  "http://bingo.test",
		AllowedOrigins: []string{"*"},
		StoreDriver:    config.StoreDriverMemory,
	}
}

// newDemoServer wires the full stack against the memory driver with the demo
// game loaded, the way the binary runs with STORE_DRIVER=memory.
func newDemoServer(t *testing.T) *httptest.Server {
	t.Helper()
	m := store.NewMemory()
	m.Put(store.DemoGame())
	registry := ws.NewRegistry()
	coord := live.New(m, registry, nil)
	handler := ws.NewHandler(registry, coord, []string{"*"})
	srv := httptest.NewServer(newRouter(memoryConfig(), handler, nil))
	t.Cleanup(srv.Close)
	return srv
}

func dialWS(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", path, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func writeEvent(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	if err := conn.WriteJSON(v); err != nil {
		t.Fatalf("write event: %v", err)
	}
}

func readEvent(t *testing.T, conn *websocket.Conn) (string, []byte) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	var base struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &base); err != nil {
		t.Fatalf("decode frame %q: %v", raw, err)
	}
	return base.Type, raw
}

func readGameUpdate(t *testing.T, conn *websocket.Conn) ws.GameUpdate {
	t.Helper()
	typ, raw := readEvent(t, conn)
	if typ != ws.TypeGameUpdate {
		t.Fatalf("expected game_update, got %s: %s", typ, raw)
	}
	var upd ws.GameUpdate
	if err := json.Unmarshal(raw, &upd); err != nil {
		t.Fatalf("decode game_update: %v", err)
	}
	return upd
}
