package announce

import "expvar"

var (
	metricAnnounceQueuedTotal       = expvar.NewInt("announce_queued_total")
	metricAnnounceDroppedTotal      = expvar.NewInt("announce_dropped_total")
	metricAnnounceRetryTotal        = expvar.NewInt("announce_retry_total")
	metricAnnounceRetryDroppedTotal = expvar.NewInt("announce_retry_dropped_total")
	metricAnnounceSentTotal         = expvar.NewInt("announce_sent_total")
	metricAnnounceFailedTotal       = expvar.NewInt("announce_failed_total")
	metricAnnounceQueueLen          = expvar.NewInt("announce_queue_len")
)
