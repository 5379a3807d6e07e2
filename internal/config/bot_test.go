package config

import "testing"

func TestLoadBotRequiresGameID(t *testing.T) {
	t.Setenv("GAME_ID", "")

	_, err := LoadBot()
	if err == nil {
		t.Fatal("LoadBot() expected error, got nil")
	}
}

func TestLoadBotParse(t *testing.T) {
	t.Setenv("GAME_ID", "g1")
	t.Setenv("PLAYER_IDS", "p1,p2,p3")

	cfg, err := LoadBot()
	if err != nil {
		t.Fatalf("LoadBot() error = %v", err)
	}
	if cfg.ServerURL != "ws://localhost:8080" {
		t.Fatalf("ServerURL = %q", cfg.ServerURL)
	}
	if len(cfg.PlayerIDs) != 3 || cfg.PlayerIDs[2] != "p3" {
		t.Fatalf("PlayerIDs = %v", cfg.PlayerIDs)
	}
}
