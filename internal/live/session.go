package live

import (
	"sync"
	"time"

	"github.com/namnhcntt/BingoMaster/internal/game"
)

// session is the in-flight state of one game: the current question, the
// votes cast against it per group in arrival order, and the pending
// auto-reveal timer. mu is the per-game write lock; the coordinator holds
// it for the whole of each event so consensus and bingo always run against
// a settled vote log.
type session struct {
	mu sync.Mutex

	gameID   string
	question *game.Question
	votes    map[string][]game.Vote

	timer         *time.Timer
	timerQuestion string
	revealedFor   string
}

func newSession(gameID string) *session {
	return &session{gameID: gameID, votes: map[string][]game.Vote{}}
}

// ensureQuestion returns the session's current question, seeding it from the
// stored game when the session was rebuilt after a full disconnect.
func (s *session) ensureQuestion(g *game.Game) *game.Question {
	if s.question == nil && g.CurrentQuestion != nil {
		q := *g.CurrentQuestion
		s.question = &q
	}
	return s.question
}

// recordVote appends the player's cast and returns the group's updated
// effective tally. Supersession of earlier casts is resolved at tally time
// so arrival order survives for the consensus tie-break.
func (s *session) recordVote(groupID string, v game.Vote) []game.TallyEntry {
	s.votes[groupID] = append(s.votes[groupID], v)
	return game.TallyVotes(s.votes[groupID])
}

func (s *session) groupVotes(groupID string) []game.Vote {
	return s.votes[groupID]
}

func (s *session) clearVotes() {
	s.votes = map[string][]game.Vote{}
}

// advanceQuestion swaps in the next question, wiping votes and any timer
// armed for the previous one.
func (s *session) advanceQuestion(q *game.Question) {
	s.cancelTimer()
	s.clearVotes()
	s.question = q
	s.revealedFor = ""
}

// armTimer schedules fire after d for the given question, replacing any
// pending timer. The handle stays on the session so a manual reveal or a
// question advance can cancel it.
func (s *session) armTimer(questionID string, d time.Duration, fire func()) {
	s.cancelTimer()
	s.timerQuestion = questionID
	s.timer = time.AfterFunc(d, fire)
}

func (s *session) cancelTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
		s.timerQuestion = ""
	}
}

func (s *session) markRevealed(questionID string) {
	s.revealedFor = questionID
}

func (s *session) revealed(questionID string) bool {
	return questionID != "" && s.revealedFor == questionID
}
