package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/namnhcntt/BingoMaster/internal/game"
	"github.com/namnhcntt/BingoMaster/internal/live"
)

// Memory is an in-process live.Store: the development driver and the test
// double. It applies the same marking and consensus-flip rules as the
// Postgres store, against mutex-guarded maps.
type Memory struct {
	mu      sync.Mutex
	games   map[string]*game.Game
	answers map[string][]game.Vote  // gameID|questionID|groupID -> raw casts
	chosen  map[string]string       // gameID|questionID|groupID -> consensus cell
}

var _ live.Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		games:   map[string]*game.Game{},
		answers: map[string][]game.Vote{},
		chosen:  map[string]string{},
	}
}

// Put installs or replaces a game. Used by seeding and tests.
func (m *Memory) Put(g *game.Game) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[g.ID] = cloneGame(g)
}

func (m *Memory) GetGame(_ context.Context, id string) (*game.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return nil, fmt.Errorf("game %s: %w", id, ErrNotFound)
	}
	return cloneGame(g), nil
}

func (m *Memory) UpdateGameStatus(_ context.Context, id string, status game.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return fmt.Errorf("game %s: %w", id, ErrNotFound)
	}
	g.Status = status
	return nil
}

func (m *Memory) NextQuestion(_ context.Context, gameID string) (*game.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[gameID]
	if !ok {
		return nil, fmt.Errorf("game %s: %w", gameID, ErrNotFound)
	}
	for i := range g.Questions {
		if g.Questions[i].Used {
			continue
		}
		g.Questions[i].Used = true
		q := g.Questions[i]
		g.CurrentQuestion = &q
		cp := q
		return &cp, nil
	}
	return nil, live.ErrQuestionsExhausted
}

func (m *Memory) RecordPlayerAnswer(_ context.Context, gameID, playerID, groupID, cellID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, gr, q, err := m.lookup(gameID, groupID)
	if err != nil {
		return err
	}
	cell := gr.Cell(cellID)
	if cell == nil {
		return fmt.Errorf("cell %s: %w", cellID, ErrNotFound)
	}
	key := voteKey(gameID, q.ID, groupID)
	log := m.answers[key]
	for i := range log {
		if log[i].PlayerID == playerID {
			log[i].CellID = cellID
			log[i].Position = cell.Position
			log[i].At = time.Now()
			return nil
		}
	}
	m.answers[key] = append(log, game.Vote{
		PlayerID: playerID,
		CellID:   cellID,
		Position: cell.Position,
		At:       time.Now(),
	})
	return nil
}

func (m *Memory) GroupAnswers(_ context.Context, gameID, groupID string) ([]game.Vote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, _, q, err := m.lookup(gameID, groupID)
	if err != nil {
		return nil, err
	}
	return append([]game.Vote(nil), m.answers[voteKey(gameID, q.ID, groupID)]...), nil
}

func (m *Memory) SetGroupAnswer(_ context.Context, gameID, groupID, cellID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, gr, q, err := m.lookup(gameID, groupID)
	if err != nil {
		return err
	}
	cell := gr.Cell(cellID)
	if cell == nil {
		return fmt.Errorf("cell %s not on group %s board: %w", cellID, groupID, ErrNotFound)
	}
	key := voteKey(gameID, q.ID, groupID)
	if prev := m.chosen[key]; prev != "" && prev != cellID {
		if pc := gr.Cell(prev); pc != nil {
			pc.Marked = false
		}
	}
	m.chosen[key] = cellID
	if cell.Answer == q.Answer {
		cell.Marked = true
	}
	return nil
}

func (m *Memory) GroupCorrectCells(_ context.Context, gameID, groupID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[gameID]
	if !ok {
		return nil, fmt.Errorf("game %s: %w", gameID, ErrNotFound)
	}
	gr := g.Group(groupID)
	if gr == nil {
		return nil, fmt.Errorf("group %s: %w", groupID, ErrNotFound)
	}
	var out []string
	for _, c := range gr.Board {
		if c.Marked {
			out = append(out, c.Position)
		}
	}
	return out, nil
}

func (m *Memory) SetGroupBingo(_ context.Context, gameID, groupID string, pattern []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[gameID]
	if !ok {
		return fmt.Errorf("game %s: %w", gameID, ErrNotFound)
	}
	gr := g.Group(groupID)
	if gr == nil {
		return fmt.Errorf("group %s: %w", groupID, ErrNotFound)
	}
	gr.HasBingo = true
	gr.BingoPattern = append([]string(nil), pattern...)
	return nil
}

// lookup resolves the game, group and current question under the lock.
func (m *Memory) lookup(gameID, groupID string) (*game.Game, *game.Group, *game.Question, error) {
	g, ok := m.games[gameID]
	if !ok {
		return nil, nil, nil, fmt.Errorf("game %s: %w", gameID, ErrNotFound)
	}
	gr := g.Group(groupID)
	if gr == nil {
		return nil, nil, nil, fmt.Errorf("group %s: %w", groupID, ErrNotFound)
	}
	if g.CurrentQuestion == nil {
		return nil, nil, nil, fmt.Errorf("game %s has no current question: %w", gameID, ErrNotFound)
	}
	return g, gr, g.CurrentQuestion, nil
}

func voteKey(gameID, questionID, groupID string) string {
	return gameID + "|" + questionID + "|" + groupID
}

func cloneGame(g *game.Game) *game.Game {
	raw, err := json.Marshal(g)
	if err != nil {
		cp := *g
		return &cp
	}
	out := &game.Game{}
	if err := json.Unmarshal(raw, out); err != nil {
		cp := *g
		return &cp
	}
	return out
}
