package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/namnhcntt/BingoMaster/internal/game"
	"github.com/namnhcntt/BingoMaster/internal/live"
)

func (s *Store) GetGame(ctx context.Context, id string) (*game.Game, error) {
	var (
		g         game.Game
		currentID *string
	)
	row := s.Pool.QueryRow(ctx, `SELECT id, name, board_size, cell_size, answer_time_seconds, group_count, status, current_question_id FROM games WHERE id = $1`, id)
	if err := row.Scan(&g.ID, &g.Name, &g.BoardSize, &g.CellSize, &g.AnswerTimeSec, &g.GroupCount, &g.Status, &currentID); err != nil {
		return nil, mapNotFound(err)
	}

	questions, err := s.gameQuestions(ctx, id)
	if err != nil {
		return nil, err
	}
	g.Questions = questions
	if currentID != nil {
		for i := range g.Questions {
			if g.Questions[i].ID == *currentID {
				q := g.Questions[i]
				g.CurrentQuestion = &q
				break
			}
		}
	}

	groups, err := s.gameGroups(ctx, id)
	if err != nil {
		return nil, err
	}
	g.Groups = groups
	return &g, nil
}

func (s *Store) gameQuestions(ctx context.Context, gameID string) ([]game.Question, error) {
	rows, err := s.Pool.Query(ctx, `SELECT id, text, answer, used FROM questions WHERE game_id = $1 ORDER BY ord`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []game.Question
	for rows.Next() {
		var q game.Question
		if err := rows.Scan(&q.ID, &q.Text, &q.Answer, &q.Used); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *Store) gameGroups(ctx context.Context, gameID string) ([]game.Group, error) {
	rows, err := s.Pool.Query(ctx, `SELECT id, name, has_bingo, bingo_pattern FROM groups WHERE game_id = $1 ORDER BY ord, id`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []game.Group
	for rows.Next() {
		var gr game.Group
		if err := rows.Scan(&gr.ID, &gr.Name, &gr.HasBingo, &gr.BingoPattern); err != nil {
			return nil, err
		}
		out = append(out, gr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		players, err := s.groupPlayers(ctx, gameID, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Players = players
		board, err := s.groupBoard(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Board = board
	}
	return out, nil
}

func (s *Store) groupPlayers(ctx context.Context, gameID, groupID string) ([]game.Player, error) {
	rows, err := s.Pool.Query(ctx, `SELECT id, name, group_id FROM players WHERE game_id = $1 AND group_id = $2 ORDER BY joined_at, id`, gameID, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []game.Player
	for rows.Next() {
		var p game.Player
		if err := rows.Scan(&p.ID, &p.Name, &p.GroupID); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) groupBoard(ctx context.Context, groupID string) ([]game.BoardCell, error) {
	rows, err := s.Pool.Query(ctx, `SELECT id, position, content, answer, marked FROM board_cells WHERE group_id = $1 ORDER BY ord`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []game.BoardCell
	for rows.Next() {
		var c game.BoardCell
		if err := rows.Scan(&c.ID, &c.Position, &c.Content, &c.Answer, &c.Marked); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) UpdateGameStatus(ctx context.Context, id string, status game.Status) error {
	tag, err := s.Pool.Exec(ctx, `UPDATE games SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// NextQuestion marks the first unused question used and makes it current,
// in one transaction so a crash cannot leave a used question that never
// became current.
func (s *Store) NextQuestion(ctx context.Context, gameID string) (*game.Question, error) {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var q game.Question
	row := tx.QueryRow(ctx, `SELECT id, text, answer FROM questions WHERE game_id = $1 AND NOT used ORDER BY ord LIMIT 1 FOR UPDATE`, gameID)
	if err := row.Scan(&q.ID, &q.Text, &q.Answer); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, live.ErrQuestionsExhausted
		}
		return nil, err
	}
	if _, err := tx.Exec(ctx, `UPDATE questions SET used = TRUE WHERE id = $1`, q.ID); err != nil {
		return nil, err
	}
	tag, err := tx.Exec(ctx, `UPDATE games SET current_question_id = $2 WHERE id = $1`, gameID, q.ID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	q.Used = true
	return &q, nil
}

func (s *Store) RecordPlayerAnswer(ctx context.Context, gameID, playerID, groupID, cellID string) error {
	questionID, err := s.currentQuestionID(ctx, s.Pool, gameID)
	if err != nil {
		return err
	}
	_, err = s.Pool.Exec(ctx, `
		INSERT INTO player_answers (game_id, question_id, player_id, group_id, cell_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (game_id, question_id, player_id)
		DO UPDATE SET cell_id = EXCLUDED.cell_id, group_id = EXCLUDED.group_id, answered_at = now()`,
		gameID, questionID, playerID, groupID, cellID)
	return err
}

func (s *Store) GroupAnswers(ctx context.Context, gameID, groupID string) ([]game.Vote, error) {
	questionID, err := s.currentQuestionID(ctx, s.Pool, gameID)
	if err != nil {
		return nil, err
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT pa.player_id, pa.cell_id, bc.position, pa.answered_at
		FROM player_answers pa
		JOIN board_cells bc ON bc.id = pa.cell_id
		WHERE pa.game_id = $1 AND pa.question_id = $2 AND pa.group_id = $3
		ORDER BY pa.cast_seq`,
		gameID, questionID, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []game.Vote
	for rows.Next() {
		var v game.Vote
		if err := rows.Scan(&v.PlayerID, &v.CellID, &v.Position, &v.At); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// SetGroupAnswer upserts the group's consensus cell for the current question
// and applies the marking rules: the cell is marked when its paired answer
// matches the question's answer, and a consensus flip within the same
// question unmarks the previously chosen cell first. Marks earned on earlier
// questions are never touched.
func (s *Store) SetGroupAnswer(ctx context.Context, gameID, groupID, cellID string) error {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	questionID, err := s.currentQuestionID(ctx, tx, gameID)
	if err != nil {
		return err
	}
	var questionAnswer string
	if err := tx.QueryRow(ctx, `SELECT answer FROM questions WHERE id = $1`, questionID).Scan(&questionAnswer); err != nil {
		return mapNotFound(err)
	}

	var prevCellID string
	err = tx.QueryRow(ctx, `SELECT cell_id FROM group_answers WHERE game_id = $1 AND question_id = $2 AND group_id = $3`,
		gameID, questionID, groupID).Scan(&prevCellID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	if prevCellID != "" && prevCellID != cellID {
		if _, err := tx.Exec(ctx, `UPDATE board_cells SET marked = FALSE WHERE id = $1 AND group_id = $2`, prevCellID, groupID); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO group_answers (game_id, question_id, group_id, cell_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (game_id, question_id, group_id)
		DO UPDATE SET cell_id = EXCLUDED.cell_id, decided_at = now()`,
		gameID, questionID, groupID, cellID); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `UPDATE board_cells SET marked = TRUE WHERE id = $1 AND group_id = $2 AND answer = $3`, cellID, groupID, questionAnswer)
	if err != nil {
		return err
	}
	// A consensus cell that is not on the group's board at all is a caller
	// bug; surface it rather than silently recording a dangling answer.
	if tag.RowsAffected() == 0 {
		var n int
		if err := tx.QueryRow(ctx, `SELECT count(*) FROM board_cells WHERE id = $1 AND group_id = $2`, cellID, groupID).Scan(&n); err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("cell %s not on group %s board: %w", cellID, groupID, ErrNotFound)
		}
	}
	return tx.Commit(ctx)
}

func (s *Store) GroupCorrectCells(ctx context.Context, gameID, groupID string) ([]string, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT bc.position
		FROM board_cells bc
		JOIN groups g ON g.id = bc.group_id
		WHERE g.game_id = $1 AND bc.group_id = $2 AND bc.marked
		ORDER BY bc.ord`,
		gameID, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var pos string
		if err := rows.Scan(&pos); err != nil {
			return nil, err
		}
		out = append(out, pos)
	}
	return out, rows.Err()
}

func (s *Store) SetGroupBingo(ctx context.Context, gameID, groupID string, pattern []string) error {
	tag, err := s.Pool.Exec(ctx, `UPDATE groups SET has_bingo = TRUE, bingo_pattern = $3 WHERE id = $2 AND game_id = $1`,
		gameID, groupID, pattern)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// querier lets current-question lookups run inside or outside a transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *Store) currentQuestionID(ctx context.Context, q querier, gameID string) (string, error) {
	var questionID *string
	if err := q.QueryRow(ctx, `SELECT current_question_id FROM games WHERE id = $1`, gameID).Scan(&questionID); err != nil {
		return "", mapNotFound(err)
	}
	if questionID == nil || *questionID == "" {
		return "", fmt.Errorf("game %s has no current question: %w", gameID, ErrNotFound)
	}
	return *questionID, nil
}
