package ws

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// EventHandler is what the transport dispatches into. The read pump calls
// HandleEvent synchronously, so events from one connection keep arrival
// order; the implementation owns any cross-connection serialization.
type EventHandler interface {
	Connected(ctx context.Context, c *Client)
	Disconnected(ctx context.Context, c *Client)
	HandleEvent(ctx context.Context, c *Client, ev Inbound)
}

// Handler upgrades the game websocket endpoints and runs the client pumps.
type Handler struct {
	registry *Registry
	events   EventHandler
	upgrader websocket.Upgrader
}

func NewHandler(registry *Registry, events EventHandler, allowedOrigins []string) *Handler {
	allowAll := len(allowedOrigins) == 0
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}
	return &Handler{
		registry: registry,
		events:   events,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if allowAll {
					return true
				}
				return allowed[r.Header.Get("Origin")]
			},
		},
	}
}

// ServeHost handles GET /ws/{game_id}: no player segment means host role.
func (h *Handler) ServeHost(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, chi.URLParam(r, "game_id"), HostParticipant)
}

// ServePlayer handles GET /ws/{game_id}/{player_id}.
func (h *Handler) ServePlayer(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, chi.URLParam(r, "game_id"), chi.URLParam(r, "player_id"))
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, gameID, participantID string) {
	if gameID == "" || participantID == "" {
		http.Error(w, "missing path parameter", http.StatusBadRequest)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := newClient(conn, gameID, participantID)
	log.Info().
		Str("conn_id", c.ID).
		Str("game_id", c.GameID).
		Str("participant_id", c.ParticipantID).
		Msg("ws connected")

	h.registry.Register(c)
	go c.writeLoop()
	h.events.Connected(r.Context(), c)
	h.readLoop(r.Context(), c)
}

func (h *Handler) readLoop(ctx context.Context, c *Client) {
	defer func() {
		h.registry.Unregister(c)
		h.events.Disconnected(ctx, c)
		safeClose(c.send)
		_ = c.conn.Close()
		log.Info().Str("conn_id", c.ID).Str("game_id", c.GameID).Msg("ws disconnected")
	}()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		ev, err := DecodeInbound(raw)
		if err != nil {
			code := "invalid_payload"
			var de *DecodeError
			if errors.As(err, &de) {
				code = de.Code
			}
			log.Warn().Err(err).Str("conn_id", c.ID).Msg("ws inbound rejected")
			c.Send(NewError(code, err.Error()))
			continue
		}
		h.events.HandleEvent(ctx, c, ev)
	}
}
