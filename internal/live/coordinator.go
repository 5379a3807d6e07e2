package live

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/namnhcntt/BingoMaster/internal/game"
	"github.com/namnhcntt/BingoMaster/internal/ws"
)

// Sender fans events out to a game's registered connections. *ws.Registry
// implements it; tests substitute a recorder.
type Sender interface {
	Unicast(gameID, participantID string, v any)
	Broadcast(gameID string, v any, exclude string)
	GroupCast(gameID string, playerIDs []string, v any)
	Participants(gameID string) []string
}

// Coordinator runs the game session state machine: lifecycle transitions,
// vote intake, consensus, reveals and bingo detection. One instance serves
// every game; per-game state lives in sessions guarded by per-game locks.
type Coordinator struct {
	store    Store
	sender   Sender
	observer Observer

	mu       sync.Mutex
	sessions map[string]*session
}

// New wires the coordinator to its storage and fan-out collaborators.
// observer may be nil.
func New(store Store, sender Sender, observer Observer) *Coordinator {
	return &Coordinator{
		store:    store,
		sender:   sender,
		observer: observer,
		sessions: map[string]*session{},
	}
}

// Connected implements ws.EventHandler.
func (c *Coordinator) Connected(ctx context.Context, cl *ws.Client) {
	c.HandleConnect(ctx, cl.GameID, cl.ParticipantID)
}

// Disconnected implements ws.EventHandler.
func (c *Coordinator) Disconnected(ctx context.Context, cl *ws.Client) {
	c.HandleDisconnect(ctx, cl.GameID, cl.ParticipantID)
}

// HandleEvent implements ws.EventHandler.
func (c *Coordinator) HandleEvent(ctx context.Context, cl *ws.Client, ev ws.Inbound) {
	c.Dispatch(ctx, cl.GameID, cl.ParticipantID, ev)
}

// HandleConnect sends the fresh role-scoped snapshot to the new connection
// and announces player joins to the whole game.
func (c *Coordinator) HandleConnect(ctx context.Context, gameID, participantID string) {
	metricConnectionsTotal.Add(1)
	s := c.sessionFor(gameID)
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := c.loadGame(ctx, gameID)
	if err != nil {
		c.fail(gameID, participantID, err)
		return
	}
	s.ensureQuestion(g)

	if participantID == ws.HostParticipant {
		c.sender.Unicast(gameID, participantID, ws.NewGameUpdate(game.HostView(g)))
		return
	}
	c.sender.Unicast(gameID, participantID, ws.NewGameUpdate(game.PlayerView(g, participantID)))

	gr := g.GroupForPlayer(participantID)
	if gr == nil {
		log.Warn().Str("game_id", gameID).Str("player_id", participantID).Msg("connected player has no group")
		return
	}
	joined := ws.PlayerJoined{
		Type:            ws.TypePlayerJoined,
		ProtocolVersion: game.ProtocolVersion,
		PlayerID:        participantID,
		GroupID:         gr.ID,
	}
	for _, p := range gr.Players {
		if p.ID == participantID {
			joined.PlayerName = p.Name
			break
		}
	}
	c.sender.Broadcast(gameID, joined, "")
	log.Info().Str("game_id", gameID).Str("player_id", participantID).Str("group_id", gr.ID).Msg("player_joined")
}

// HandleDisconnect drops the game's session once its last connection is
// gone; in-flight votes for the current question die with it, the stored raw
// answers do not.
func (c *Coordinator) HandleDisconnect(ctx context.Context, gameID, participantID string) {
	if len(c.sender.Participants(gameID)) > 0 {
		return
	}
	c.mu.Lock()
	s := c.sessions[gameID]
	delete(c.sessions, gameID)
	c.mu.Unlock()
	if s == nil {
		return
	}
	s.mu.Lock()
	s.cancelTimer()
	s.mu.Unlock()
	log.Debug().Str("game_id", gameID).Msg("session dropped")
}

// Dispatch routes one decoded inbound event. Any handler error is resolved
// here into an error event for the originating connection only.
func (c *Coordinator) Dispatch(ctx context.Context, gameID, participantID string, ev ws.Inbound) {
	s := c.sessionFor(gameID)
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	switch ev := ev.(type) {
	case ws.StartGame:
		err = c.startGame(ctx, s, gameID, participantID)
	case ws.EndGame:
		err = c.endGame(ctx, s, gameID, participantID)
	case ws.NextQuestion:
		err = c.nextQuestion(ctx, s, gameID, participantID)
	case ws.SelectAnswer:
		err = c.selectAnswer(ctx, s, gameID, participantID, ev)
	case ws.HostSelected:
		err = c.hostSelected(ctx, s, gameID, participantID, ev)
	case ws.RevealAnswer:
		err = c.revealAnswer(ctx, s, gameID, participantID)
	default:
		err = errf(ErrValidation, "unknown_type", "unsupported event")
	}
	if err != nil {
		c.fail(gameID, participantID, err)
	}
}

func (c *Coordinator) startGame(ctx context.Context, s *session, gameID, participantID string) error {
	if err := requireHost("start_game", participantID); err != nil {
		return err
	}
	g, err := c.loadGame(ctx, gameID)
	if err != nil {
		return err
	}
	if g.Status != game.StatusWaiting {
		return errf(ErrInvalidState, "invalid_state", "game is %s, expected waiting", g.Status)
	}
	if err := c.store.UpdateGameStatus(ctx, gameID, game.StatusActive); err != nil {
		return c.storageErr(gameID, "update status", err)
	}
	g.Status = game.StatusActive
	c.broadcastGameUpdate(g)
	metricGamesStartedTotal.Add(1)
	log.Info().Str("game_id", gameID).Msg("game_started")
	return nil
}

func (c *Coordinator) endGame(ctx context.Context, s *session, gameID, participantID string) error {
	if err := requireHost("end_game", participantID); err != nil {
		return err
	}
	g, err := c.loadGame(ctx, gameID)
	if err != nil {
		return err
	}
	if g.Status != game.StatusActive {
		return errf(ErrInvalidState, "invalid_state", "game is %s, expected active", g.Status)
	}
	return c.completeGame(ctx, s, g, "ended by host")
}

func (c *Coordinator) nextQuestion(ctx context.Context, s *session, gameID, participantID string) error {
	if err := requireHost("next_question", participantID); err != nil {
		return err
	}
	g, err := c.loadGame(ctx, gameID)
	if err != nil {
		return err
	}
	if g.Status != game.StatusActive {
		return errf(ErrInvalidState, "invalid_state", "game is %s, expected active", g.Status)
	}
	q, err := c.store.NextQuestion(ctx, gameID)
	if errors.Is(err, ErrQuestionsExhausted) {
		return c.completeGame(ctx, s, g, "questions exhausted")
	}
	if err != nil {
		return c.storageErr(gameID, "next question", err)
	}
	s.advanceQuestion(q)
	g.CurrentQuestion = q
	for i := range g.Questions {
		if g.Questions[i].ID == q.ID {
			g.Questions[i].Used = true
		}
	}
	c.broadcastGameUpdate(g)
	log.Info().Str("game_id", gameID).Str("question_id", q.ID).Msg("question_advanced")
	return nil
}

func (c *Coordinator) selectAnswer(ctx context.Context, s *session, gameID, participantID string, ev ws.SelectAnswer) error {
	if participantID == ws.HostParticipant {
		return errf(ErrValidation, "not_in_group", "voting is a player action")
	}
	g, err := c.loadGame(ctx, gameID)
	if err != nil {
		return err
	}
	if g.Status != game.StatusActive {
		return errf(ErrInvalidState, "invalid_state", "game is %s, expected active", g.Status)
	}
	gr := g.GroupForPlayer(participantID)
	if gr == nil {
		return errf(ErrValidation, "not_in_group", "player %s is not in a group", participantID)
	}
	q := s.ensureQuestion(g)
	if q == nil {
		return errf(ErrInvalidState, "no_current_question", "no question is open for voting")
	}
	cell := gr.Cell(ev.CellID)
	if cell == nil {
		return errf(ErrValidation, "invalid_payload", "cell %s is not on the group board", ev.CellID)
	}
	if err := c.store.RecordPlayerAnswer(ctx, gameID, participantID, gr.ID, cell.ID); err != nil {
		return c.storageErr(gameID, "record answer", err)
	}
	tally := s.recordVote(gr.ID, game.Vote{
		PlayerID: participantID,
		CellID:   cell.ID,
		Position: cell.Position,
		At:       time.Now(),
	})
	metricVotesTotal.Add(1)
	c.sender.GroupCast(gameID, memberIDs(gr), ws.PlayerVote{
		Type:            ws.TypePlayerVote,
		ProtocolVersion: game.ProtocolVersion,
		GroupID:         gr.ID,
		QuestionID:      q.ID,
		Tally:           tally,
	})
	cons, ok := game.ResolveConsensus(s.groupVotes(gr.ID))
	if !ok {
		return nil
	}
	return c.applyConsensus(ctx, g, gr, cons)
}

func (c *Coordinator) hostSelected(ctx context.Context, s *session, gameID, participantID string, ev ws.HostSelected) error {
	if err := requireHost("host_selected", participantID); err != nil {
		return err
	}
	g, err := c.loadGame(ctx, gameID)
	if err != nil {
		return err
	}
	if g.Status != game.StatusActive {
		return errf(ErrInvalidState, "invalid_state", "game is %s, expected active", g.Status)
	}
	q := s.ensureQuestion(g)
	if q == nil {
		return errf(ErrInvalidState, "no_current_question", "no question is open")
	}
	if s.revealed(q.ID) {
		return errf(ErrInvalidState, "invalid_state", "question %s is already revealed", q.ID)
	}
	if !game.ValidPosition(ev.Position, g.BoardSize) {
		return errf(ErrValidation, "invalid_payload", "position %s is off the board", ev.Position)
	}
	c.sender.Broadcast(gameID, ws.CellSelected{
		Type:            ws.TypeCellSelected,
		ProtocolVersion: game.ProtocolVersion,
		Position:        ev.Position,
		TimeLimitSec:    g.AnswerTimeSec,
	}, "")
	questionID := q.ID
	s.armTimer(questionID, time.Duration(g.AnswerTimeSec)*time.Second, func() {
		c.autoReveal(gameID, questionID)
	})
	log.Info().Str("game_id", gameID).Str("position", ev.Position).Int("seconds", g.AnswerTimeSec).Msg("answer_window_opened")
	return nil
}

func (c *Coordinator) revealAnswer(ctx context.Context, s *session, gameID, participantID string) error {
	if err := requireHost("reveal_answer", participantID); err != nil {
		return err
	}
	g, err := c.loadGame(ctx, gameID)
	if err != nil {
		return err
	}
	if g.Status != game.StatusActive {
		return errf(ErrInvalidState, "invalid_state", "game is %s, expected active", g.Status)
	}
	q := s.ensureQuestion(g)
	if q == nil {
		return errf(ErrInvalidState, "no_current_question", "no question is open")
	}
	if s.revealed(q.ID) {
		// Manual reveal racing the timer, or a double click. Already done.
		return nil
	}
	return c.doReveal(ctx, s, g, q, false)
}

// autoReveal is the timer callback armed by host_selected. A stale fire,
// for a question that was advanced or already revealed, is a no-op.
func (c *Coordinator) autoReveal(gameID, questionID string) {
	s := c.lookupSession(gameID)
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.question == nil || s.question.ID != questionID || s.revealed(questionID) {
		return
	}
	ctx := context.Background()
	g, err := c.loadGame(ctx, gameID)
	if err != nil {
		log.Error().Err(err).Str("game_id", gameID).Msg("auto reveal load failed")
		return
	}
	if g.Status != game.StatusActive {
		return
	}
	metricAutoRevealsTotal.Add(1)
	if err := c.doReveal(ctx, s, g, s.question, true); err != nil {
		log.Error().Err(err).Str("game_id", gameID).Str("question_id", questionID).Msg("auto reveal failed")
	}
}

// doReveal finalizes the current question: resolve each group's consensus,
// persist and mark, run the bingo check, then clear the vote logs and push
// fresh snapshots. Storage failure aborts before any vote log is cleared,
// so a retried reveal re-applies the same idempotent upserts.
func (c *Coordinator) doReveal(ctx context.Context, s *session, g *game.Game, q *game.Question, auto bool) error {
	for i := range g.Groups {
		gr := &g.Groups[i]
		votes := s.groupVotes(gr.ID)
		if len(votes) == 0 {
			stored, err := c.store.GroupAnswers(ctx, g.ID, gr.ID)
			if err != nil {
				return c.storageErr(g.ID, "load group answers", err)
			}
			votes = stored
		}
		cons, ok := game.ResolveConsensus(votes)
		if !ok {
			continue
		}
		if err := c.applyConsensus(ctx, g, gr, cons); err != nil {
			return err
		}
	}
	s.markRevealed(q.ID)
	s.clearVotes()
	s.cancelTimer()
	metricRevealsTotal.Add(1)

	fresh, err := c.store.GetGame(ctx, g.ID)
	if err != nil {
		log.Warn().Err(err).Str("game_id", g.ID).Msg("post-reveal reload failed, snapshot may lag")
		fresh = g
	}
	c.broadcastGameUpdate(fresh)
	log.Info().Str("game_id", g.ID).Str("question_id", q.ID).Bool("auto", auto).Msg("question_revealed")
	return nil
}

// applyConsensus persists the group's resolved answer, which marks the cell
// when it matches the question, then checks the board for a fresh bingo.
func (c *Coordinator) applyConsensus(ctx context.Context, g *game.Game, gr *game.Group, cons game.Consensus) error {
	if err := c.store.SetGroupAnswer(ctx, g.ID, gr.ID, cons.CellID); err != nil {
		return c.storageErr(g.ID, "set group answer", err)
	}
	if gr.HasBingo {
		return nil
	}
	positions, err := c.store.GroupCorrectCells(ctx, g.ID, gr.ID)
	if err != nil {
		return c.storageErr(g.ID, "load correct cells", err)
	}
	pattern, won := game.DetectWinPattern(positions, g.BoardSize)
	if !won {
		return nil
	}
	if err := c.store.SetGroupBingo(ctx, g.ID, gr.ID, pattern); err != nil {
		return c.storageErr(g.ID, "set bingo", err)
	}
	gr.HasBingo = true
	gr.BingoPattern = pattern
	c.sender.Broadcast(g.ID, ws.BingoAchieved{
		Type:            ws.TypeBingoAchieved,
		ProtocolVersion: game.ProtocolVersion,
		GroupID:         gr.ID,
		GroupName:       gr.Name,
		Players:         gr.Players,
		Pattern:         pattern,
		BoardSize:       g.BoardSize,
	}, "")
	metricBingosTotal.Add(1)
	log.Info().Str("game_id", g.ID).Str("group_id", gr.ID).Strs("pattern", pattern).Msg("bingo_achieved")
	if c.observer != nil {
		c.observer.BingoAchieved(BingoEvent{
			GameID:    g.ID,
			GameName:  g.Name,
			GroupID:   gr.ID,
			GroupName: gr.Name,
			Players:   gr.Players,
			Pattern:   pattern,
			BoardSize: g.BoardSize,
			At:        time.Now(),
		})
	}
	return nil
}

// completeGame transitions to completed and tells every connection why.
func (c *Coordinator) completeGame(ctx context.Context, s *session, g *game.Game, reason string) error {
	if err := c.store.UpdateGameStatus(ctx, g.ID, game.StatusCompleted); err != nil {
		return c.storageErr(g.ID, "update status", err)
	}
	g.Status = game.StatusCompleted
	s.cancelTimer()
	s.clearVotes()
	c.broadcastGameUpdate(g)
	c.sender.Broadcast(g.ID, ws.GameOver{
		Type:            ws.TypeGameOver,
		ProtocolVersion: game.ProtocolVersion,
		Reason:          reason,
	}, "")
	metricGamesCompletedTotal.Add(1)
	log.Info().Str("game_id", g.ID).Str("reason", reason).Msg("game_over")
	if c.observer != nil {
		c.observer.GameOver(GameOverEvent{GameID: g.ID, GameName: g.Name, Reason: reason, At: time.Now()})
	}
	return nil
}

// broadcastGameUpdate sends each registered participant their own role-scoped
// snapshot of the same game state.
func (c *Coordinator) broadcastGameUpdate(g *game.Game) {
	for _, pid := range c.sender.Participants(g.ID) {
		if pid == ws.HostParticipant {
			c.sender.Unicast(g.ID, pid, ws.NewGameUpdate(game.HostView(g)))
			continue
		}
		c.sender.Unicast(g.ID, pid, ws.NewGameUpdate(game.PlayerView(g, pid)))
	}
}

func (c *Coordinator) sessionFor(gameID string) *session {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.sessions[gameID]
	if s == nil {
		s = newSession(gameID)
		c.sessions[gameID] = s
	}
	return s
}

func (c *Coordinator) lookupSession(gameID string) *session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessions[gameID]
}

func (c *Coordinator) loadGame(ctx context.Context, gameID string) (*game.Game, error) {
	g, err := c.store.GetGame(ctx, gameID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, errf(ErrNotFound, "game_not_found", "game %s not found", gameID)
		}
		log.Error().Err(err).Str("game_id", gameID).Msg("load game failed")
		return nil, errf(ErrStorage, "storage_error", "failed to load game")
	}
	return g, nil
}

func (c *Coordinator) storageErr(gameID, op string, err error) error {
	log.Error().Err(err).Str("game_id", gameID).Str("op", op).Msg("storage call failed")
	return errf(ErrStorage, "storage_error", "%s failed", op)
}

// fail answers the originating connection only.
func (c *Coordinator) fail(gameID, participantID string, err error) {
	code, msg := wireError(err)
	metricEventErrorsTotal.Add(1)
	log.Warn().
		Str("game_id", gameID).
		Str("participant_id", participantID).
		Str("code", code).
		Str("detail", msg).
		Msg("event rejected")
	c.sender.Unicast(gameID, participantID, ws.NewError(code, msg))
}

func requireHost(action, participantID string) error {
	if participantID != ws.HostParticipant {
		return errf(ErrInvalidState, "invalid_state", "%s is a host action", action)
	}
	return nil
}

func memberIDs(gr *game.Group) []string {
	ids := make([]string, len(gr.Players))
	for i, p := range gr.Players {
		ids[i] = p.ID
	}
	return ids
}
