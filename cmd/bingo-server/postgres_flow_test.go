package main

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/namnhcntt/BingoMaster/internal/game"
	"github.com/namnhcntt/BingoMaster/internal/live"
	"github.com/namnhcntt/BingoMaster/internal/store"
	"github.com/namnhcntt/BingoMaster/internal/testutil"
	"github.com/namnhcntt/BingoMaster/internal/ws"
)

// Same loop as the memory-driver test, but through a real database: marks
// must come back out of Postgres on the post-reveal snapshot. Skipped
// without TEST_POSTGRES_DSN.
func TestGameFlowAgainstPostgres(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	testutil.InsertGame(t, st, store.DemoGame())

	registry := ws.NewRegistry()
	coord := live.New(st, registry, nil)
	handler := ws.NewHandler(registry, coord, []string{"*"})
	srv := httptest.NewServer(newRouter(memoryConfig(), handler, st))
	t.Cleanup(srv.Close)

	host := dialWS(t, srv, "/ws/demo")
	if upd := readGameUpdate(t, host); upd.Game.Status != game.StatusWaiting {
		t.Fatalf("snapshot status = %s, want waiting", upd.Game.Status)
	}
	player := dialWS(t, srv, "/ws/demo/red-1")
	readGameUpdate(t, player)
	readEvent(t, host)   // player_joined
	readEvent(t, player) // player_joined echo

	writeEvent(t, host, map[string]any{"type": "start_game"})
	readGameUpdate(t, host)
	readGameUpdate(t, player)

	writeEvent(t, host, map[string]any{"type": "next_question"})
	upd := readGameUpdate(t, host)
	if upd.Game.CurrentQuestion == nil || upd.Game.CurrentQuestion.Answer != "jupiter" {
		t.Fatalf("question = %+v, want jupiter", upd.Game.CurrentQuestion)
	}
	readGameUpdate(t, player)

	writeEvent(t, player, map[string]any{"type": "select_answer", "cell_id": "demo-red-A1"})
	readEvent(t, player) // player_vote
	readEvent(t, host)   // player_vote

	writeEvent(t, host, map[string]any{"type": "reveal_answer"})
	upd = readGameUpdate(t, host)
	red := upd.Game.Groups[0]
	if red.ID != "demo-red" {
		red = upd.Game.Groups[1]
	}
	if c := red.CellAt("A1"); c == nil || !c.Marked {
		t.Fatalf("post-reveal cell A1 = %+v, want marked", c)
	}
	readGameUpdate(t, player)

	// The database, not the session, is the source of truth for marks.
	cells, err := st.GroupCorrectCells(context.Background(), "demo", "demo-red")
	if err != nil {
		t.Fatalf("correct cells: %v", err)
	}
	if len(cells) != 1 || cells[0] != "A1" {
		t.Fatalf("stored cells = %v, want [A1]", cells)
	}
}
