package config

import "github.com/caarlos0/env/v11"

type BotConfig struct {
	ServerURL   string   `env:"SERVER_URL" envDefault:"ws://localhost:8080"`
	GameID      string   `env:"GAME_ID,required,notEmpty"`
	PlayerIDs   []string `env:"PLAYER_IDS" envDefault:"red-1,red-2,blue-1,blue-2"`
	VoteDelayMS int      `env:"VOTE_DELAY_MS" envDefault:"500"`
}

func LoadBot() (BotConfig, error) {
	var cfg BotConfig
	err := env.Parse(&cfg)
	return cfg, err
}
