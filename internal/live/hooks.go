package live

import (
	"time"

	"github.com/namnhcntt/BingoMaster/internal/game"
)

// BingoEvent describes a group completing a line.
type BingoEvent struct {
	GameID    string
	GameName  string
	GroupID   string
	GroupName string
	Players   []game.Player
	Pattern   []string
	BoardSize int
	At        time.Time
}

// GameOverEvent describes a game reaching completed.
type GameOverEvent struct {
	GameID   string
	GameName string
	Reason   string
	At       time.Time
}

// Observer receives game milestones outside the socket fan-out, e.g. for
// webhook announcements. Implementations must not block; the coordinator
// calls them while holding the per-game lock.
type Observer interface {
	BingoAchieved(ev BingoEvent)
	GameOver(ev GameOverEvent)
}
