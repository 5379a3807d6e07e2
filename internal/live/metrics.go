package live

import "expvar"

var (
	metricConnectionsTotal    = expvar.NewInt("bingo_connections_total")
	metricGamesStartedTotal   = expvar.NewInt("bingo_games_started_total")
	metricGamesCompletedTotal = expvar.NewInt("bingo_games_completed_total")
	metricVotesTotal          = expvar.NewInt("bingo_votes_total")
	metricRevealsTotal        = expvar.NewInt("bingo_reveals_total")
	metricAutoRevealsTotal    = expvar.NewInt("bingo_auto_reveals_total")
	metricBingosTotal         = expvar.NewInt("bingo_bingos_total")
	metricEventErrorsTotal    = expvar.NewInt("bingo_event_errors_total")
)
