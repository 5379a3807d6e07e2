package store

import "github.com/namnhcntt/BingoMaster/internal/game"

// demo game content: nine answers shared by every board, shuffled per group
// by rotating the slice, so cells sit at different positions across groups.
var demoAnswers = []string{
	"jupiter", "mars", "sun", "moon", "venus", "saturn", "mercury", "neptune", "pluto",
}

var demoQuestions = []struct {
	text   string
	answer string
}{
	{"Which planet is the largest in the solar system?", "jupiter"},
	{"Which planet is known as the red planet?", "mars"},
	{"What is the star at the center of the solar system?", "sun"},
	{"What lights the night sky and drives the tides?", "moon"},
	{"Which planet is the hottest?", "venus"},
	{"Which planet wears the famous rings?", "saturn"},
	{"Which planet is closest to the sun?", "mercury"},
	{"Which planet is the windiest?", "neptune"},
	{"Which dwarf planet was demoted in 2006?", "pluto"},
}

// DemoGame builds the fixed development game: 3x3 boards, two groups of two
// players with well-known IDs, one question per board answer. Used when
// SEED_DEMO_GAME is set with the memory driver; the bot defaults match it.
func DemoGame() *game.Game {
	g := &game.Game{
		ID:            "demo",
		Name:          "Demo Trivia Night",
		BoardSize:     3,
		CellSize:      "medium",
		AnswerTimeSec: 30,
		GroupCount:    2,
		Status:        game.StatusWaiting,
	}
	for _, q := range demoQuestions {
		g.Questions = append(g.Questions, game.Question{
			ID:     NewID(),
			Text:   q.text,
			Answer: q.answer,
		})
	}
	groups := []struct {
		id      string
		name    string
		players []game.Player
		shift   int
	}{
		{"demo-red", "Red", []game.Player{{ID: "red-1", Name: "Red One"}, {ID: "red-2", Name: "Red Two"}}, 0},
		{"demo-blue", "Blue", []game.Player{{ID: "blue-1", Name: "Blue One"}, {ID: "blue-2", Name: "Blue Two"}}, 4},
	}
	grid := game.BuildPositionGrid(g.BoardSize)
	for _, spec := range groups {
		gr := game.Group{ID: spec.id, Name: spec.name}
		for _, p := range spec.players {
			p.GroupID = spec.id
			gr.Players = append(gr.Players, p)
		}
		for i, pos := range grid {
			ans := demoAnswers[(i+spec.shift)%len(demoAnswers)]
			gr.Board = append(gr.Board, game.BoardCell{
				ID:       spec.id + "-" + pos,
				Position: pos,
				Content:  ans,
				Answer:   ans,
			})
		}
		g.Groups = append(g.Groups, gr)
	}
	return g
}
