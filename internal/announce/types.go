package announce

import (
	"time"
)

// Event names carried by announcements and matched against target
// allowlists.
const (
	EventBingoAchieved = "bingo_achieved"
	EventGameOver      = "game_over"
)

// Target is one outbound webhook destination.
type Target struct {
	Platform       string   `json:"platform"`
	Endpoint       string   `json:"endpoint"`
	Secret         string   `json:"secret"`
	ScopeType      string   `json:"scope_type"`
	ScopeValue     string   `json:"scope_value"`
	EventAllowlist []string `json:"event_allowlist"`
	Enabled        bool     `json:"enabled"`
}

type Config struct {
	Enabled        bool
	Targets        []Target
	Workers        int
	RetryMax       int
	RetryBase      time.Duration
	RequestTimeout time.Duration
	DispatchBuffer int
}

// Announcement is the normalized milestone event, independent of any
// delivery platform.
type Announcement struct {
	EventType string
	GameID    string
	GameName  string
	GroupID   string
	GroupName string
	Players   []string
	Pattern   []string
	BoardSize int
	Reason    string
	At        time.Time
}

type MessageField struct {
	Name   string
	Value  string
	Inline bool
}

type FormattedMessage struct {
	Title       string
	Content     string
	Description string
	Color       int
	Timestamp   string
	Footer      string
	Fields      []MessageField
}

type announceJob struct {
	Target    Target
	Event     Announcement
	Formatted FormattedMessage
	Attempt   int
}
