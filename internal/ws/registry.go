package ws

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"
)

// Registry maps (gameID, participantID) to the live client for that key.
// One instance per server, injected into whatever needs to address
// connections. At most one client per key: registering over an existing
// entry replaces it without closing the old socket, which simply stops
// being addressed.
type Registry struct {
	mu    sync.Mutex
	games map[string]map[string]*Client
}

func NewRegistry() *Registry {
	return &Registry{games: map[string]map[string]*Client{}}
}

// Register inserts or replaces the client for the key.
func (r *Registry) Register(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bucket := r.games[c.GameID]
	if bucket == nil {
		bucket = map[string]*Client{}
		r.games[c.GameID] = bucket
	}
	bucket[c.ParticipantID] = c
}

// Unregister removes the key only while it still maps to c, so a replaced
// connection's deferred cleanup cannot evict its successor. An emptied game
// bucket is dropped.
func (r *Registry) Unregister(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bucket := r.games[c.GameID]
	if bucket == nil {
		return
	}
	if bucket[c.ParticipantID] != c {
		return
	}
	delete(bucket, c.ParticipantID)
	if len(bucket) == 0 {
		delete(r.games, c.GameID)
	}
}

// Unicast delivers v to one participant; a missing key is a silent no-op.
func (r *Registry) Unicast(gameID, participantID string, v any) {
	msg, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("game_id", gameID).Msg("ws marshal failed")
		return
	}
	r.mu.Lock()
	c := r.games[gameID][participantID]
	r.mu.Unlock()
	if c != nil {
		c.enqueue(msg)
	}
}

// Broadcast marshals v once and delivers it to every client of the game,
// skipping exclude when non-empty. The bucket is snapshotted under the lock
// and writes happen outside it.
func (r *Registry) Broadcast(gameID string, v any, exclude string) {
	msg, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("game_id", gameID).Msg("ws marshal failed")
		return
	}
	r.mu.Lock()
	bucket := r.games[gameID]
	targets := make([]*Client, 0, len(bucket))
	for pid, c := range bucket {
		if exclude != "" && pid == exclude {
			continue
		}
		targets = append(targets, c)
	}
	r.mu.Unlock()
	for _, c := range targets {
		c.enqueue(msg)
	}
}

// GroupCast delivers v to the host plus the listed players. Used for events
// scoped to one group's audience.
func (r *Registry) GroupCast(gameID string, playerIDs []string, v any) {
	msg, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("game_id", gameID).Msg("ws marshal failed")
		return
	}
	r.mu.Lock()
	bucket := r.games[gameID]
	targets := make([]*Client, 0, len(playerIDs)+1)
	if c := bucket[HostParticipant]; c != nil {
		targets = append(targets, c)
	}
	for _, pid := range playerIDs {
		if c := bucket[pid]; c != nil {
			targets = append(targets, c)
		}
	}
	r.mu.Unlock()
	for _, c := range targets {
		c.enqueue(msg)
	}
}

// Participants snapshots the participant IDs registered for a game.
func (r *Registry) Participants(gameID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	bucket := r.games[gameID]
	out := make([]string, 0, len(bucket))
	for pid := range bucket {
		out = append(out, pid)
	}
	return out
}

// Count reports live connections for a game.
func (r *Registry) Count(gameID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.games[gameID])
}
