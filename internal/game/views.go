package game

// QuestionView is the question as shipped inside a snapshot. The answer text
// is present only on host-facing views.
type QuestionView struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Answer string `json:"answer,omitempty"`
}

// GameView is the snapshot payload of a game_update event. The same shape
// serves both roles; the builder decides how much of the game it carries.
type GameView struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	BoardSize       int           `json:"board_size"`
	Status          Status        `json:"status"`
	GroupCount      int           `json:"group_count"`
	QuestionsUsed   int           `json:"questions_used"`
	QuestionsTotal  int           `json:"questions_total"`
	AnswerTimeSec   int           `json:"answer_time_seconds"`
	CurrentQuestion *QuestionView `json:"current_question,omitempty"`
	Groups          []Group       `json:"groups"`
	GroupID         string        `json:"group_id,omitempty"`
}

// HostView builds the unrestricted snapshot: every group's board and the
// current question with its answer text.
func HostView(g *Game) GameView {
	v := baseView(g)
	if g.CurrentQuestion != nil {
		v.CurrentQuestion = &QuestionView{
			ID:     g.CurrentQuestion.ID,
			Text:   g.CurrentQuestion.Text,
			Answer: g.CurrentQuestion.Answer,
		}
	}
	v.Groups = make([]Group, len(g.Groups))
	for i := range g.Groups {
		v.Groups[i] = copyGroup(&g.Groups[i], false)
	}
	return v
}

// PlayerView builds the snapshot for one player: their own group only, cell
// answer texts blanked, and the current question without its answer. A
// player outside every group gets the game shell with no groups.
func PlayerView(g *Game, playerID string) GameView {
	v := baseView(g)
	if g.CurrentQuestion != nil {
		v.CurrentQuestion = &QuestionView{
			ID:   g.CurrentQuestion.ID,
			Text: g.CurrentQuestion.Text,
		}
	}
	if gr := g.GroupForPlayer(playerID); gr != nil {
		v.GroupID = gr.ID
		v.Groups = []Group{copyGroup(gr, true)}
	}
	return v
}

func baseView(g *Game) GameView {
	used := 0
	for _, q := range g.Questions {
		if q.Used {
			used++
		}
	}
	return GameView{
		ID:             g.ID,
		Name:           g.Name,
		BoardSize:      g.BoardSize,
		Status:         g.Status,
		GroupCount:     g.GroupCount,
		QuestionsUsed:  used,
		QuestionsTotal: len(g.Questions),
		AnswerTimeSec:  g.AnswerTimeSec,
	}
}

// copyGroup detaches the view from stored state so snapshot consumers can
// hold it across coordinator mutations.
func copyGroup(gr *Group, blankAnswers bool) Group {
	out := Group{
		ID:       gr.ID,
		Name:     gr.Name,
		HasBingo: gr.HasBingo,
	}
	out.Players = append([]Player(nil), gr.Players...)
	out.Board = append([]BoardCell(nil), gr.Board...)
	if blankAnswers {
		for i := range out.Board {
			out.Board[i].Answer = ""
		}
	}
	out.BingoPattern = append([]string(nil), gr.BingoPattern...)
	return out
}
