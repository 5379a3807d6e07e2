package ws

import (
	"encoding/json"
	"fmt"

	"github.com/namnhcntt/BingoMaster/internal/game"
)

// Inbound event type tags.
const (
	TypeStartGame    = "start_game"
	TypeEndGame      = "end_game"
	TypeNextQuestion = "next_question"
	TypeSelectAnswer = "select_answer"
	TypeHostSelected = "host_selected"
	TypeRevealAnswer = "reveal_answer"
)

// Outbound event type tags.
const (
	TypeGameUpdate    = "game_update"
	TypePlayerJoined  = "player_joined"
	TypeBingoAchieved = "bingo_achieved"
	TypeGameOver      = "game_over"
	TypePlayerVote    = "player_vote"
	TypeCellSelected  = "cell_selected"
	TypeError         = "error"
)

// Inbound is the closed set of client messages. DecodeInbound returns exactly
// one of the concrete types below.
type Inbound interface {
	inbound()
}

type StartGame struct{}

type EndGame struct{}

type NextQuestion struct{}

type SelectAnswer struct {
	CellID   string `json:"cell_id"`
	Position string `json:"position,omitempty"`
}

type HostSelected struct {
	Position string `json:"position"`
}

type RevealAnswer struct{}

func (StartGame) inbound()    {}
func (EndGame) inbound()      {}
func (NextQuestion) inbound() {}
func (SelectAnswer) inbound() {}
func (HostSelected) inbound() {}
func (RevealAnswer) inbound() {}

// DecodeError distinguishes an unknown type tag from a malformed payload so
// the handler can answer with the right error code.
type DecodeError struct {
	Code string
	Type string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode %s: %v", e.Type, e.Err)
	}
	return fmt.Sprintf("decode: unknown type %q", e.Type)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// DecodeInbound parses a raw client frame into its concrete event.
func DecodeInbound(raw []byte) (Inbound, error) {
	var base struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &base); err != nil {
		return nil, &DecodeError{Code: "invalid_payload", Err: err}
	}
	switch base.Type {
	case TypeStartGame:
		return StartGame{}, nil
	case TypeEndGame:
		return EndGame{}, nil
	case TypeNextQuestion:
		return NextQuestion{}, nil
	case TypeSelectAnswer:
		var m SelectAnswer
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, &DecodeError{Code: "invalid_payload", Type: base.Type, Err: err}
		}
		if m.CellID == "" {
			return nil, &DecodeError{Code: "invalid_payload", Type: base.Type, Err: fmt.Errorf("missing cell_id")}
		}
		return m, nil
	case TypeHostSelected:
		var m HostSelected
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, &DecodeError{Code: "invalid_payload", Type: base.Type, Err: err}
		}
		if m.Position == "" {
			return nil, &DecodeError{Code: "invalid_payload", Type: base.Type, Err: fmt.Errorf("missing position")}
		}
		return m, nil
	case TypeRevealAnswer:
		return RevealAnswer{}, nil
	default:
		return nil, &DecodeError{Code: "unknown_type", Type: base.Type}
	}
}

type GameUpdate struct {
	Type            string        `json:"type"`
	ProtocolVersion string        `json:"protocol_version"`
	Game            game.GameView `json:"game"`
}

type PlayerJoined struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	PlayerID        string `json:"player_id"`
	PlayerName      string `json:"player_name,omitempty"`
	GroupID         string `json:"group_id"`
}

type BingoAchieved struct {
	Type            string        `json:"type"`
	ProtocolVersion string        `json:"protocol_version"`
	GroupID         string        `json:"group_id"`
	GroupName       string        `json:"group_name"`
	Players         []game.Player `json:"players"`
	Pattern         []string      `json:"pattern"`
	BoardSize       int           `json:"board_size"`
}

type GameOver struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Reason          string `json:"reason"`
}

type PlayerVote struct {
	Type            string            `json:"type"`
	ProtocolVersion string            `json:"protocol_version"`
	GroupID         string            `json:"group_id"`
	QuestionID      string            `json:"question_id"`
	Tally           []game.TallyEntry `json:"tally"`
}

type CellSelected struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Position        string `json:"position"`
	TimeLimitSec    int    `json:"time_limit_seconds"`
}

type ErrorEvent struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message,omitempty"`
}

func NewGameUpdate(v game.GameView) GameUpdate {
	return GameUpdate{Type: TypeGameUpdate, ProtocolVersion: game.ProtocolVersion, Game: v}
}

func NewError(code, message string) ErrorEvent {
	return ErrorEvent{Type: TypeError, ProtocolVersion: game.ProtocolVersion, Code: code, Message: message}
}
