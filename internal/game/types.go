package game

import "time"

const ProtocolVersion = "1.0"

type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusWaiting, StatusActive, StatusCompleted:
		return true
	}
	return false
}

// Game is the stored aggregate. The coordinator fetches it per operation and
// never keeps a copy alive across question cycles.
type Game struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	BoardSize       int        `json:"board_size"`
	CellSize        string     `json:"cell_size"`
	AnswerTimeSec   int        `json:"answer_time_seconds"`
	GroupCount      int        `json:"group_count"`
	Status          Status     `json:"status"`
	Questions       []Question `json:"questions,omitempty"`
	Groups          []Group    `json:"groups"`
	CurrentQuestion *Question  `json:"current_question,omitempty"`
}

type Question struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Answer string `json:"answer"`
	Used   bool   `json:"used"`
}

type Group struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Players      []Player    `json:"players"`
	Board        []BoardCell `json:"board"`
	HasBingo     bool        `json:"has_bingo"`
	BingoPattern []string    `json:"bingo_pattern,omitempty"`
}

type BoardCell struct {
	ID       string `json:"id"`
	Position string `json:"position"`
	Content  string `json:"content"`
	Answer   string `json:"answer"`
	Marked   bool   `json:"marked"`
}

type Player struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	GroupID string `json:"group_id"`
}

// Vote is a single cast entry for the current question. Entries keep arrival
// order; a re-cast appends rather than rewriting history, supersession is
// resolved at tally time.
type Vote struct {
	PlayerID string    `json:"player_id"`
	CellID   string    `json:"cell_id"`
	Position string    `json:"position"`
	At       time.Time `json:"at"`
}

func (g *Game) Group(id string) *Group {
	for i := range g.Groups {
		if g.Groups[i].ID == id {
			return &g.Groups[i]
		}
	}
	return nil
}

func (g *Game) GroupForPlayer(playerID string) *Group {
	for i := range g.Groups {
		for _, p := range g.Groups[i].Players {
			if p.ID == playerID {
				return &g.Groups[i]
			}
		}
	}
	return nil
}

func (gr *Group) Cell(cellID string) *BoardCell {
	for i := range gr.Board {
		if gr.Board[i].ID == cellID {
			return &gr.Board[i]
		}
	}
	return nil
}

func (gr *Group) CellAt(position string) *BoardCell {
	for i := range gr.Board {
		if gr.Board[i].Position == position {
			return &gr.Board[i]
		}
	}
	return nil
}
