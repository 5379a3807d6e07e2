package live

import (
	"context"
	"errors"

	"github.com/namnhcntt/BingoMaster/internal/game"
)

// ErrQuestionsExhausted is returned by Store.NextQuestion when every
// question of the game has been used. The coordinator treats it as the
// normal end of a game, not a failure.
var ErrQuestionsExhausted = errors.New("questions exhausted")

// Store is the storage collaborator the coordinator drives. Implementations
// report missing rows with an error satisfying errors.Is(err, ErrNotFound).
type Store interface {
	// GetGame loads the full aggregate: questions, groups, boards, players
	// and the current question if one is set.
	GetGame(ctx context.Context, id string) (*game.Game, error)

	// UpdateGameStatus persists a lifecycle transition.
	UpdateGameStatus(ctx context.Context, id string, status game.Status) error

	// NextQuestion marks the first unused question as used, makes it the
	// game's current question and returns it. ErrQuestionsExhausted when
	// none remain.
	NextQuestion(ctx context.Context, gameID string) (*game.Question, error)

	// RecordPlayerAnswer upserts the player's raw answer for the game's
	// current question.
	RecordPlayerAnswer(ctx context.Context, gameID, playerID, groupID, cellID string) error

	// GroupAnswers returns the recorded raw answers for the game's current
	// question in first-cast order. Used when the in-memory vote log is
	// gone, e.g. after every socket of a game dropped mid-question.
	GroupAnswers(ctx context.Context, gameID, groupID string) ([]game.Vote, error)

	// SetGroupAnswer records the group's consensus cell for the current
	// question. When the cell's paired answer matches the question's answer
	// the cell is marked correct; a consensus flip within the same question
	// unmarks the previously chosen cell first.
	SetGroupAnswer(ctx context.Context, gameID, groupID, cellID string) error

	// GroupCorrectCells returns the positions currently marked correct on
	// the group's board.
	GroupCorrectCells(ctx context.Context, gameID, groupID string) ([]string, error)

	// SetGroupBingo persists the group's winning pattern. Permanent for the
	// rest of the game.
	SetGroupBingo(ctx context.Context, gameID, groupID string, pattern []string) error
}
