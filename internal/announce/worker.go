package announce

import (
	"context"
	"time"

	"github.com/namnhcntt/BingoMaster/internal/announce/platforms"
)

func (m *Manager) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.done:
			return
		case job := <-m.dispatchCh:
			metricAnnounceQueueLen.Set(int64(len(m.dispatchCh)))
			m.processJob(ctx, job)
		}
	}
}

func (m *Manager) processJob(ctx context.Context, job announceJob) {
	adapter := m.adapters[job.Target.Platform]
	if adapter == nil {
		metricAnnounceDroppedTotal.Add(1)
		return
	}

	err := adapter.Send(ctx, job.Target.Endpoint, job.Target.Secret, toPlatformMessage(job.Formatted))
	if err != nil {
		metricAnnounceFailedTotal.Add(1)
		m.retryOrDrop(job)
		return
	}
	metricAnnounceSentTotal.Add(1)
}

func (m *Manager) retryOrDrop(job announceJob) {
	if job.Attempt >= m.cfg.RetryMax {
		metricAnnounceRetryDroppedTotal.Add(1)
		return
	}
	job.Attempt++
	metricAnnounceRetryTotal.Add(1)
	delay := m.cfg.RetryBase * time.Duration(1<<(job.Attempt-1))
	m.retryQ.Enqueue(job, delay)
}

func toPlatformMessage(msg FormattedMessage) platforms.Message {
	fields := make([]platforms.Field, 0, len(msg.Fields))
	for _, f := range msg.Fields {
		fields = append(fields, platforms.Field{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	return platforms.Message{
		Title:       msg.Title,
		Content:     msg.Content,
		Description: msg.Description,
		Color:       msg.Color,
		Timestamp:   msg.Timestamp,
		Footer:      msg.Footer,
		Fields:      fields,
	}
}
