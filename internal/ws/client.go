package ws

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// HostParticipant is the registry key for the host connection of a game.
const HostParticipant = "host"

const sendBuffer = 16

// Client wraps one websocket connection. Outbound frames go through a
// buffered channel drained by writeLoop; enqueue never blocks, a full buffer
// drops the frame for that client only.
type Client struct {
	ID            string
	GameID        string
	ParticipantID string

	conn *websocket.Conn
	send chan []byte
}

func newClient(conn *websocket.Conn, gameID, participantID string) *Client {
	return &Client{
		ID:            uuid.NewString(),
		GameID:        gameID,
		ParticipantID: participantID,
		conn:          conn,
		send:          make(chan []byte, sendBuffer),
	}
}

func (c *Client) Host() bool { return c.ParticipantID == HostParticipant }

// Send marshals and enqueues a frame for this client alone. Used for
// connection-scoped replies; fan-out goes through the registry.
func (c *Client) Send(v any) {
	msg, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("conn_id", c.ID).Msg("ws marshal failed")
		return
	}
	c.enqueue(msg)
}

func (c *Client) enqueue(msg []byte) bool {
	ok := false
	func() {
		defer func() { _ = recover() }()
		select {
		case c.send <- msg:
			ok = true
		default:
			log.Debug().
				Str("conn_id", c.ID).
				Str("game_id", c.GameID).
				Str("participant_id", c.ParticipantID).
				Msg("ws send buffer full, frame dropped")
		}
	}()
	return ok
}

func (c *Client) writeLoop() {
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Debug().Err(err).Str("conn_id", c.ID).Msg("ws write failed")
		}
	}
}

func safeClose(ch chan []byte) {
	defer func() {
		_ = recover()
	}()
	close(ch)
}
