package main

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/namnhcntt/BingoMaster/internal/announce"
	"github.com/namnhcntt/BingoMaster/internal/config"
	"github.com/namnhcntt/BingoMaster/internal/live"
	"github.com/namnhcntt/BingoMaster/internal/logging"
	"github.com/namnhcntt/BingoMaster/internal/store"
	"github.com/namnhcntt/BingoMaster/internal/ws"
)

func main() {
	// .env is optional; variables already set in the process environment win.
	_ = godotenv.Load()

	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	logging.Init(logCfg)
	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatal().Err(err).Msg("load server config failed")
	}

	gameStore, db, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}

	observer, err := startAnnouncer(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("announcer init failed")
	}

	registry := ws.NewRegistry()
	coord := live.New(gameStore, registry, observer)
	handler := ws.NewHandler(registry, coord, cfg.AllowedOrigins)

	r := newRouter(cfg, handler, db)
	logRoutes(r)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	log.Info().Str("addr", cfg.HTTPAddr).Str("store", cfg.StoreDriver).Msg("http listening")
	log.Fatal().Err(server.ListenAndServe()).Msg("server stopped")
}

// openStore selects the storage driver. The second return is the health
// probe target: nil for the memory driver, which has nothing to ping.
func openStore(cfg config.ServerConfig) (live.Store, pinger, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		m := store.NewMemory()
		if cfg.SeedDemoGame {
			g := store.DemoGame()
			m.Put(g)
			log.Info().Str("game_id", g.ID).Msg("demo game seeded")
		}
		return m, nil, nil
	}

	st, err := store.New(cfg.PostgresDSN)
	if err != nil {
		return nil, nil, err
	}
	if err := st.Ping(context.Background()); err != nil {
		return nil, nil, fmt.Errorf("db ping: %w", err)
	}
	if cfg.SeedDemoGame {
		log.Warn().Msg("SEED_DEMO_GAME only applies to the memory driver, skipping")
	}
	return st, st, nil
}

// startAnnouncer builds the webhook announcer when enabled. Returns nil when
// disabled so the coordinator runs without an observer.
func startAnnouncer(ctx context.Context, cfg config.ServerConfig) (live.Observer, error) {
	annCfg, err := announce.FromServer(cfg)
	if err != nil {
		return nil, err
	}
	if !annCfg.Enabled {
		return nil, nil
	}
	mgr := announce.NewManager(annCfg)
	if err := mgr.Start(ctx); err != nil {
		return nil, err
	}
	log.Info().Int("targets", len(annCfg.Targets)).Int("workers", annCfg.Workers).Msg("announcer started")
	return mgr, nil
}

func logRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 16)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
