package main

import (
	"context"
	"encoding/json"
	"expvar"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/namnhcntt/BingoMaster/internal/config"
	"github.com/namnhcntt/BingoMaster/internal/logging"
	"github.com/namnhcntt/BingoMaster/internal/ws"
)

// pinger is the health probe dependency. nil means there is no backing
// database and /healthz always reports healthy.
type pinger interface {
	Ping(ctx context.Context) error
}

func newRouter(cfg config.ServerConfig, h *ws.Handler, db pinger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.With(apiLogMiddleware()).Get("/healthz", healthHandler(db))
	r.With(apiLogMiddleware()).Get("/games/{game_id}/join-qr", joinQRHandler(cfg))
	r.With(apiLogMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

	// Websocket upgrades bypass the request logger; the handler logs
	// connect and disconnect itself.
	r.Get("/ws/{game_id}", h.ServeHost)
	r.Get("/ws/{game_id}/{player_id}", h.ServePlayer)

	return r
}

func apiLogMiddleware() func(http.Handler) http.Handler {
	return httplog.RequestLogger(
		slog.New(slog.NewJSONHandler(logging.Writer(), &slog.HandlerOptions{})),
		&httplog.Options{
			Level:              slog.LevelInfo,
			Schema:             httplog.Schema{ResponseStatus: "status", ResponseDuration: "duration_ms"},
			LogRequestBody:     func(*http.Request) bool { return false },
			LogResponseBody:    func(*http.Request) bool { return false },
			LogRequestHeaders:  []string{},
			LogResponseHeaders: []string{},
			LogExtraAttrs: func(req *http.Request, _ string, _ int) []slog.Attr {
				rc := chi.RouteContext(req.Context())
				route := req.URL.Path
				if rc != nil && rc.RoutePattern() != "" {
					route = rc.RoutePattern()
				}
				return []slog.Attr{
					slog.String("request_id", chimw.GetReqID(req.Context())),
					slog.String("method", req.Method),
					slog.String("route", route),
					slog.String("path", req.URL.Path),
				}
			},
		},
	)
}

func healthHandler(db pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.Ping(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "db": "down"})
				return
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "db": "up"})
	}
}

// joinQRHandler renders the player's join link as a PNG QR code. The link
// points at the public websocket endpoint for that player.
func joinQRHandler(cfg config.ServerConfig) http.HandlerFunc {
	base := strings.TrimRight(cfg.PublicBaseURL, "/")
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := chi.URLParam(r, "game_id")
		playerID := strings.TrimSpace(r.URL.Query().Get("player_id"))
		if playerID == "" {
			writeHTTPError(w, http.StatusBadRequest, "missing_player_id")
			return
		}
		joinURL := base + "/ws/" + gameID + "/" + playerID

		const qrSize = 320 // mobile-friendly size
		png, err := qrcode.Encode(joinURL, qrcode.Medium, qrSize)
		if err != nil {
			writeHTTPError(w, http.StatusInternalServerError, "qr_generation_failed")
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	}
}

func writeHTTPError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": code})
}
