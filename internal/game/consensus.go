package game

// Consensus is the resolved outcome of a group's vote log for one question.
type Consensus struct {
	CellID   string
	Position string
	Count    int
}

// TallyEntry is one choice's effective standing, used for live vote views.
type TallyEntry struct {
	CellID   string   `json:"cell_id"`
	Position string   `json:"position"`
	Count    int      `json:"count"`
	Voters   []string `json:"voters"`
}

// choiceKey identifies a choice. Votes target a cell; the position rides
// along for display but the cell ID is the identity.
func choiceKey(v Vote) string { return v.CellID }

// ResolveConsensus reduces a vote log to the group's answer. Only each
// voter's latest entry counts. The winner is the choice with the most
// effective votes; on a tie the choice whose first supporting entry arrived
// earliest wins, and that anchor includes entries later superseded by
// re-votes. An empty log resolves to no consensus.
func ResolveConsensus(votes []Vote) (Consensus, bool) {
	if len(votes) == 0 {
		return Consensus{}, false
	}
	latest := make(map[string]Vote, len(votes))
	firstSeen := make(map[string]int, len(votes))
	for i, v := range votes {
		latest[v.PlayerID] = v
		k := choiceKey(v)
		if _, ok := firstSeen[k]; !ok {
			firstSeen[k] = i
		}
	}
	counts := make(map[string]int, len(latest))
	sample := make(map[string]Vote, len(latest))
	for _, v := range latest {
		k := choiceKey(v)
		counts[k]++
		if _, ok := sample[k]; !ok {
			sample[k] = v
		}
	}
	var (
		winner string
		best   int
		anchor int
	)
	for k, n := range counts {
		switch {
		case winner == "", n > best, n == best && firstSeen[k] < anchor:
			winner, best, anchor = k, n, firstSeen[k]
		}
	}
	w := sample[winner]
	return Consensus{CellID: w.CellID, Position: w.Position, Count: best}, true
}

// TallyVotes summarizes the effective standing per choice. Choices appear in
// first-seen order of the raw log; voters within a choice keep the arrival
// order of their effective votes.
func TallyVotes(votes []Vote) []TallyEntry {
	if len(votes) == 0 {
		return nil
	}
	latestIdx := make(map[string]int, len(votes))
	for i, v := range votes {
		latestIdx[v.PlayerID] = i
	}
	var order []string
	seen := make(map[string]bool, len(votes))
	for _, v := range votes {
		k := choiceKey(v)
		if !seen[k] {
			seen[k] = true
			order = append(order, k)
		}
	}
	byChoice := make(map[string]*TallyEntry, len(order))
	for i, v := range votes {
		if latestIdx[v.PlayerID] != i {
			continue
		}
		k := choiceKey(v)
		e := byChoice[k]
		if e == nil {
			e = &TallyEntry{CellID: v.CellID, Position: v.Position}
			byChoice[k] = e
		}
		e.Count++
		e.Voters = append(e.Voters, v.PlayerID)
	}
	out := make([]TallyEntry, 0, len(order))
	for _, k := range order {
		if e := byChoice[k]; e != nil {
			out = append(out, *e)
		}
	}
	return out
}
