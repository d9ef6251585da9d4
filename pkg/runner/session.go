package runner

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"github.com/ssargent/ypbank/pkg/config"
	"github.com/ssargent/ypbank/pkg/logger"
	"github.com/ssargent/ypbank/pkg/metrics"
)

// SessionOptions are the command-line values that override configuration.
type SessionOptions struct {
	ConfigPath  string // empty to use the default path if present
	LogLevel    string // empty to use the configured level
	MetricsFile string // empty to use the configured textfile
	Stderr      io.Writer
}

// Session is the state of one tool invocation.
type Session struct {
	Config  *config.Config
	Log     zerolog.Logger
	RunID   string
	Metrics *metrics.Metrics
	Runner  *Runner

	metricsFile string
}

// NewSession loads configuration, builds the run logger and returns a
// context that carries it.
func NewSession(ctx context.Context, opts SessionOptions) (context.Context, *Session, error) {
	cfg, err := config.LoadConfig(config.ResolvePath(opts.ConfigPath))
	if err != nil {
		return ctx, nil, err
	}

	level := cfg.Logging.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	base, err := logger.New(level, opts.Stderr)
	if err != nil {
		return ctx, nil, err
	}
	log, runID := logger.WithRun(base)

	s := &Session{
		Config:      cfg,
		Log:         log,
		RunID:       runID,
		Metrics:     metrics.NewMetrics(),
		metricsFile: cfg.Metrics.Textfile,
	}
	if opts.MetricsFile != "" {
		s.metricsFile = opts.MetricsFile
	}
	s.Runner = &Runner{
		MaxDescriptionBytes: cfg.Codec.MaxDescriptionBytes,
		Metrics:             s.Metrics,
	}

	return logger.WithContext(ctx, log), s, nil
}

// Close writes the metrics textfile when one is configured.
func (s *Session) Close() error {
	if s.metricsFile == "" {
		return nil
	}
	if err := s.Metrics.WriteTextfile(s.metricsFile); err != nil {
		return err
	}
	s.Log.Debug().Str("path", s.metricsFile).Msg("metrics written")
	return nil
}
