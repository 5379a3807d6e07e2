package main

import (
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/namnhcntt/BingoMaster/internal/config"
	"github.com/namnhcntt/BingoMaster/internal/ws"
)

// bingo-bot connects one socket per player ID and votes for a random board
// cell whenever the host opens an answer window. It exists to put load on a
// running server, not to win.
func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadBot()
	if err != nil {
		log.Fatal().Err(err).Msg("load bot config failed")
	}
	if len(cfg.PlayerIDs) == 0 {
		log.Fatal().Msg("PLAYER_IDS is empty")
	}

	var wg sync.WaitGroup
	for _, playerID := range cfg.PlayerIDs {
		wg.Add(1)
		go func(playerID string) {
			defer wg.Done()
			runPlayer(cfg, playerID)
		}(playerID)
	}
	wg.Wait()
}

func runPlayer(cfg config.BotConfig, playerID string) {
	url := cfg.ServerURL + "/ws/" + cfg.GameID + "/" + playerID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		log.Error().Err(err).Str("player", playerID).Msg("dial failed")
		return
	}
	defer conn.Close()
	log.Info().Str("player", playerID).Str("url", url).Msg("connected")

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	delay := time.Duration(cfg.VoteDelayMS) * time.Millisecond
	var cellIDs []string

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Info().Err(err).Str("player", playerID).Msg("socket closed")
			return
		}
		var base struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(data, &base); err != nil {
			continue
		}
		switch base.Type {
		case ws.TypeGameUpdate:
			var upd ws.GameUpdate
			if err := json.Unmarshal(data, &upd); err != nil {
				continue
			}
			cellIDs = cellIDs[:0]
			for _, gr := range upd.Game.Groups {
				for _, c := range gr.Board {
					cellIDs = append(cellIDs, c.ID)
				}
			}
		case ws.TypeCellSelected:
			if len(cellIDs) == 0 {
				continue
			}
			time.Sleep(delay)
			cellID := cellIDs[rnd.Intn(len(cellIDs))]
			vote := map[string]string{"type": ws.TypeSelectAnswer, "cell_id": cellID}
			if err := conn.WriteJSON(vote); err != nil {
				log.Error().Err(err).Str("player", playerID).Msg("vote write failed")
				return
			}
			log.Info().Str("player", playerID).Str("cell_id", cellID).Msg("voted")
		case ws.TypeBingoAchieved:
			log.Info().Str("player", playerID).Msg("bingo!")
		case ws.TypeGameOver:
			log.Info().Str("player", playerID).Msg("game over")
		}
	}
}
