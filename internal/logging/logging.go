package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/namnhcntt/BingoMaster/internal/config"
)

var (
	writerMu sync.Mutex
	writer   io.Writer = os.Stdout
)

// Init configures the global zerolog logger from cfg. When a log file is
// configured the JSON stream is teed to it, capped at cfg.MaxMB.
func Init(cfg config.LogConfig) {
	level := zerolog.InfoLevel
	if v := strings.TrimSpace(cfg.Level); v != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(v)); err == nil {
			level = parsed
		}
	}

	jsonOut := io.Writer(os.Stdout)
	if strings.TrimSpace(cfg.File) != "" {
		if fw, err := newCappedFileWriter(cfg.File, cfg.MaxMB); err == nil {
			jsonOut = io.MultiWriter(os.Stdout, fw)
		} else {
			log.Error().Err(err).Str("path", cfg.File).Msg("log file unavailable, stdout only")
		}
	}
	setWriter(jsonOut)

	output := jsonOut
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: jsonOut}
	}

	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(output).With().Timestamp().Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger
}

// Writer returns the JSON sink configured by Init, for handing to other
// logging backends (the HTTP request logger writes here).
func Writer() io.Writer {
	writerMu.Lock()
	defer writerMu.Unlock()
	return writer
}

func setWriter(w io.Writer) {
	writerMu.Lock()
	defer writerMu.Unlock()
	writer = w
}
