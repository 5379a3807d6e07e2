package announce

import (
	"context"
	"sync"
	"time"

	"github.com/namnhcntt/BingoMaster/internal/announce/platforms"
	"github.com/namnhcntt/BingoMaster/internal/live"
)

// Manager fans game milestones out to configured webhook targets. It
// implements live.Observer; the coordinator calls it while holding the
// per-game lock, so everything here hands off to the dispatch queue and
// returns immediately.
type Manager struct {
	cfg      Config
	router   Router
	adapters map[string]platforms.Adapter

	dispatchCh chan announceJob
	retryQ     *retryQueue
	done       chan struct{}

	mu      sync.Mutex
	started bool
}

var _ live.Observer = (*Manager)(nil)

func NewManager(cfg Config) *Manager {
	client := platforms.NewHTTPClient(cfg.RequestTimeout)
	adapters := map[string]platforms.Adapter{
		"discord": platforms.NewDiscordAdapter(client),
		"webhook": platforms.NewWebhookAdapter(client),
	}
	if cfg.DispatchBuffer <= 0 {
		cfg.DispatchBuffer = 256
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 500 * time.Millisecond
	}

	m := &Manager{
		cfg:        cfg,
		router:     Router{},
		adapters:   adapters,
		dispatchCh: make(chan announceJob, cfg.DispatchBuffer),
		done:       make(chan struct{}),
	}
	m.retryQ = newRetryQueue(m.dispatchCh, m.done)
	return m
}

func (m *Manager) Start(ctx context.Context) error {
	if !m.cfg.Enabled {
		return nil
	}

	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return nil
	}
	m.started = true
	m.mu.Unlock()

	for i := 0; i < m.cfg.Workers; i++ {
		go m.worker(ctx)
	}
	go func() {
		<-ctx.Done()
		close(m.done)
	}()
	return nil
}

func (m *Manager) BingoAchieved(ev live.BingoEvent) {
	if !m.cfg.Enabled {
		return
	}
	names := make([]string, 0, len(ev.Players))
	for _, p := range ev.Players {
		names = append(names, p.Name)
	}
	m.handleEvent(Announcement{
		EventType: EventBingoAchieved,
		GameID:    ev.GameID,
		GameName:  ev.GameName,
		GroupID:   ev.GroupID,
		GroupName: ev.GroupName,
		Players:   names,
		Pattern:   ev.Pattern,
		BoardSize: ev.BoardSize,
		At:        ev.At,
	})
}

func (m *Manager) GameOver(ev live.GameOverEvent) {
	if !m.cfg.Enabled {
		return
	}
	m.handleEvent(Announcement{
		EventType: EventGameOver,
		GameID:    ev.GameID,
		GameName:  ev.GameName,
		Reason:    ev.Reason,
		At:        ev.At,
	})
}

func (m *Manager) handleEvent(ev Announcement) {
	targets := m.router.MatchTargets(m.cfg.Targets, ev)
	if len(targets) == 0 {
		return
	}
	formatted, ok := FormatMessage(ev)
	if !ok {
		return
	}
	for _, target := range targets {
		job := announceJob{Target: target, Event: ev, Formatted: formatted}
		if !m.enqueue(job) {
			metricAnnounceDroppedTotal.Add(1)
		}
	}
}

func (m *Manager) enqueue(job announceJob) bool {
	select {
	case <-m.done:
		return false
	case m.dispatchCh <- job:
		metricAnnounceQueuedTotal.Add(1)
		metricAnnounceQueueLen.Set(int64(len(m.dispatchCh)))
		return true
	default:
		return false
	}
}
