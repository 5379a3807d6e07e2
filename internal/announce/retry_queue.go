package announce

import "time"

type retryQueue struct {
	out  chan<- announceJob
	done <-chan struct{}
}

func newRetryQueue(out chan<- announceJob, done <-chan struct{}) *retryQueue {
	return &retryQueue{out: out, done: done}
}

func (q *retryQueue) Enqueue(job announceJob, delay time.Duration) {
	if delay < 0 {
		delay = 0
	}
	time.AfterFunc(delay, func() {
		select {
		case <-q.done:
			return
		case q.out <- job:
			metricAnnounceQueueLen.Set(int64(len(q.out)))
		}
	})
}
