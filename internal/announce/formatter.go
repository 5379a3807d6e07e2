package announce

import (
	"fmt"
	"strings"
	"time"
)

const (
	colorBingo    = 0x57F287
	colorGameOver = 0x5865F2

	playerListLimit = 120
	shortIDLimit    = 10
	defaultFooter   = "bingo announcer"
)

func FormatMessage(ev Announcement) (FormattedMessage, bool) {
	gameLabel := fallback(ev.GameName, shortID(ev.GameID, shortIDLimit))
	base := FormattedMessage{
		Timestamp: eventTimestamp(ev.At),
		Footer:    defaultFooter,
	}

	switch ev.EventType {
	case EventBingoAchieved:
		groupLabel := fallback(ev.GroupName, shortID(ev.GroupID, shortIDLimit))
		base.Title = fmt.Sprintf("Bingo · %s", gameLabel)
		base.Content = fmt.Sprintf("%s completed a line", groupLabel)
		base.Description = fmt.Sprintf("Group %s completed a line!", groupLabel)
		base.Color = colorBingo
		base.Fields = []MessageField{
			{Name: "Group", Value: groupLabel, Inline: true},
			{Name: "Board", Value: boardText(ev.BoardSize), Inline: true},
			{Name: "Line", Value: fallback(strings.Join(ev.Pattern, " "), "-"), Inline: false},
		}
		if players := playerList(ev.Players); players != "" {
			base.Fields = append(base.Fields, MessageField{Name: "Players", Value: players, Inline: false})
		}
	case EventGameOver:
		base.Title = fmt.Sprintf("Game Over · %s", gameLabel)
		base.Content = fmt.Sprintf("game over: %s", fallback(ev.Reason, "finished"))
		base.Description = fmt.Sprintf("Game %s is over.", gameLabel)
		base.Color = colorGameOver
		base.Fields = []MessageField{
			{Name: "Reason", Value: fallback(ev.Reason, "-"), Inline: true},
		}
	default:
		return FormattedMessage{}, false
	}

	return base, true
}

func boardText(size int) string {
	if size <= 0 {
		return "-"
	}
	return fmt.Sprintf("%dx%d", size, size)
}

func playerList(players []string) string {
	joined := strings.TrimSpace(strings.Join(players, ", "))
	return trimText(joined, playerListLimit)
}

func trimText(v string, max int) string {
	if max <= 0 || len(v) <= max {
		return v
	}
	if max <= 3 {
		return v[:max]
	}
	return v[:max-3] + "..."
}

func shortID(v string, max int) string {
	if max <= 0 || len(v) <= max {
		return v
	}
	return v[:max]
}

func eventTimestamp(at time.Time) string {
	if at.IsZero() {
		return ""
	}
	return at.UTC().Format(time.RFC3339)
}

func fallback(v, d string) string {
	if strings.TrimSpace(v) == "" {
		return d
	}
	return v
}
