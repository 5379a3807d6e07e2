package main

import (
	"encoding/json"
	"testing"

	"github.com/namnhcntt/BingoMaster/internal/game"
	"github.com/namnhcntt/BingoMaster/internal/ws"
)

// Full loop over real sockets: connect, start, question, vote, reveal, end.
// The demo game's first question is jupiter, which sits at A1 on the red
// board.
func TestGameFlowOverWebsocket(t *testing.T) {
	srv := newDemoServer(t)

	host := dialWS(t, srv, "/ws/demo")
	upd := readGameUpdate(t, host)
	if upd.Game.ID != "demo" || upd.Game.Status != game.StatusWaiting {
		t.Fatalf("host snapshot = %s/%s, want demo/waiting", upd.Game.ID, upd.Game.Status)
	}
	if len(upd.Game.Groups) != 2 {
		t.Fatalf("host sees %d groups, want 2", len(upd.Game.Groups))
	}
	if upd.Game.Groups[0].Board[0].Answer == "" {
		t.Fatalf("host view must include cell answers")
	}

	player := dialWS(t, srv, "/ws/demo/red-1")
	upd = readGameUpdate(t, player)
	if upd.Game.GroupID != "demo-red" || len(upd.Game.Groups) != 1 {
		t.Fatalf("player snapshot groups = %d group_id = %q", len(upd.Game.Groups), upd.Game.GroupID)
	}
	for _, c := range upd.Game.Groups[0].Board {
		if c.Answer != "" {
			t.Fatalf("player view leaked answer on cell %s", c.ID)
		}
	}

	// Both connections hear the join.
	typ, raw := readEvent(t, host)
	if typ != ws.TypePlayerJoined {
		t.Fatalf("host expected player_joined, got %s: %s", typ, raw)
	}
	var joined ws.PlayerJoined
	if err := json.Unmarshal(raw, &joined); err != nil {
		t.Fatalf("decode player_joined: %v", err)
	}
	if joined.PlayerID != "red-1" || joined.GroupID != "demo-red" || joined.PlayerName != "Red One" {
		t.Fatalf("unexpected join payload: %+v", joined)
	}
	if typ, _ := readEvent(t, player); typ != ws.TypePlayerJoined {
		t.Fatalf("player expected player_joined echo, got %s", typ)
	}

	writeEvent(t, host, map[string]any{"type": "start_game"})
	if upd := readGameUpdate(t, host); upd.Game.Status != game.StatusActive {
		t.Fatalf("host status = %s, want active", upd.Game.Status)
	}
	if upd := readGameUpdate(t, player); upd.Game.Status != game.StatusActive {
		t.Fatalf("player status = %s, want active", upd.Game.Status)
	}

	writeEvent(t, host, map[string]any{"type": "next_question"})
	upd = readGameUpdate(t, host)
	if upd.Game.CurrentQuestion == nil || upd.Game.CurrentQuestion.Answer != "jupiter" {
		t.Fatalf("host question = %+v, want jupiter with answer", upd.Game.CurrentQuestion)
	}
	if upd.Game.QuestionsUsed != 1 {
		t.Fatalf("questions used = %d, want 1", upd.Game.QuestionsUsed)
	}
	upd = readGameUpdate(t, player)
	if upd.Game.CurrentQuestion == nil || upd.Game.CurrentQuestion.Answer != "" {
		t.Fatalf("player question leaked answer: %+v", upd.Game.CurrentQuestion)
	}

	writeEvent(t, player, map[string]any{"type": "select_answer", "cell_id": "demo-red-A1"})
	typ, raw = readEvent(t, player)
	if typ != ws.TypePlayerVote {
		t.Fatalf("expected player_vote, got %s: %s", typ, raw)
	}
	var vote ws.PlayerVote
	if err := json.Unmarshal(raw, &vote); err != nil {
		t.Fatalf("decode player_vote: %v", err)
	}
	if vote.GroupID != "demo-red" || len(vote.Tally) != 1 || vote.Tally[0].Position != "A1" || vote.Tally[0].Count != 1 {
		t.Fatalf("unexpected tally: %+v", vote)
	}
	// The host watches every group's votes.
	if typ, _ := readEvent(t, host); typ != ws.TypePlayerVote {
		t.Fatalf("host expected player_vote, got %s", typ)
	}

	writeEvent(t, host, map[string]any{"type": "reveal_answer"})
	upd = readGameUpdate(t, host)
	red := upd.Game.Groups[0]
	if red.ID != "demo-red" {
		red = upd.Game.Groups[1]
	}
	if c := red.CellAt("A1"); c == nil || !c.Marked {
		t.Fatalf("host post-reveal cell A1 = %+v, want marked", c)
	}
	upd = readGameUpdate(t, player)
	if c := upd.Game.Groups[0].CellAt("A1"); c == nil || !c.Marked {
		t.Fatalf("player post-reveal cell A1 = %+v, want marked", c)
	}

	writeEvent(t, host, map[string]any{"type": "end_game"})
	if upd := readGameUpdate(t, host); upd.Game.Status != game.StatusCompleted {
		t.Fatalf("host final status = %s, want completed", upd.Game.Status)
	}
	typ, raw = readEvent(t, host)
	if typ != ws.TypeGameOver {
		t.Fatalf("expected game_over, got %s: %s", typ, raw)
	}
	var over ws.GameOver
	if err := json.Unmarshal(raw, &over); err != nil {
		t.Fatalf("decode game_over: %v", err)
	}
	if over.Reason != "ended by host" {
		t.Fatalf("reason = %q, want ended by host", over.Reason)
	}
}

// A returning player's first frame is a fresh snapshot carrying every mark
// earned while they were gone.
func TestPlayerReconnectGetsCurrentBoard(t *testing.T) {
	srv := newDemoServer(t)

	host := dialWS(t, srv, "/ws/demo")
	readGameUpdate(t, host)

	player := dialWS(t, srv, "/ws/demo/red-1")
	readGameUpdate(t, player)
	readEvent(t, host)   // player_joined
	readEvent(t, player) // player_joined echo

	writeEvent(t, host, map[string]any{"type": "start_game"})
	readGameUpdate(t, host)
	readGameUpdate(t, player)
	writeEvent(t, host, map[string]any{"type": "next_question"})
	readGameUpdate(t, host)
	readGameUpdate(t, player)
	writeEvent(t, player, map[string]any{"type": "select_answer", "cell_id": "demo-red-A1"})
	readEvent(t, player) // player_vote
	readEvent(t, host)   // player_vote
	writeEvent(t, host, map[string]any{"type": "reveal_answer"})
	readGameUpdate(t, host)
	readGameUpdate(t, player)

	_ = player.Close()

	again := dialWS(t, srv, "/ws/demo/red-1")
	upd := readGameUpdate(t, again)
	if upd.Game.Status != game.StatusActive || upd.Game.GroupID != "demo-red" {
		t.Fatalf("reconnect snapshot = %s/%s", upd.Game.Status, upd.Game.GroupID)
	}
	if c := upd.Game.Groups[0].CellAt("A1"); c == nil || !c.Marked {
		t.Fatalf("reconnect lost the A1 mark: %+v", c)
	}
}

func TestPlayerCannotDriveHostActions(t *testing.T) {
	srv := newDemoServer(t)

	host := dialWS(t, srv, "/ws/demo")
	readGameUpdate(t, host)
	player := dialWS(t, srv, "/ws/demo/red-1")
	readGameUpdate(t, player)
	readEvent(t, player) // player_joined echo

	writeEvent(t, player, map[string]any{"type": "start_game"})
	typ, raw := readEvent(t, player)
	if typ != ws.TypeError {
		t.Fatalf("expected error frame, got %s: %s", typ, raw)
	}
	var ev ws.ErrorEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		t.Fatalf("decode error frame: %v", err)
	}
	if ev.Code != "invalid_state" {
		t.Fatalf("code = %q, want invalid_state", ev.Code)
	}
}

func TestUnknownGameGetsErrorFrame(t *testing.T) {
	srv := newDemoServer(t)

	conn := dialWS(t, srv, "/ws/ghost")
	typ, raw := readEvent(t, conn)
	if typ != ws.TypeError {
		t.Fatalf("expected error frame, got %s: %s", typ, raw)
	}
	var ev ws.ErrorEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		t.Fatalf("decode error frame: %v", err)
	}
	if ev.Code != "game_not_found" {
		t.Fatalf("code = %q, want game_not_found", ev.Code)
	}
}
