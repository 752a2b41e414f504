package container

import (
	"fmt"
	"io"

	"statcore/adapters/api"
	"statcore/adapters/excel"
	"statcore/app"
	"statcore/internal"
	"statcore/internal/config"
	"statcore/internal/format"
	"statcore/ports"
)

// Container holds the application dependencies built from one Config
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Adapters
	Reader ports.SampleReader

	// Services
	Analysis *app.AnalysisService

	// Output
	Precision format.Precision
}

// Option overrides a dependency before the services are built
type Option func(*Container)

// WithLogOutput sends log lines to w instead of the standard logger.
func WithLogOutput(w io.Writer) Option {
	return func(c *Container) {
		c.Logger = internal.NewLoggerTo(w, internal.ParseLogLevel(c.Config.LogLevel))
	}
}

// WithLogLevel overrides the configured log level.
func WithLogLevel(level string) Option {
	return func(c *Container) {
		if level != "" {
			c.Config.LogLevel = level
		}
	}
}

// WithReader replaces the file reader, e.g. with a test double.
func WithReader(r ports.SampleReader) Option {
	return func(c *Container) {
		c.Reader = r
	}
}

// New creates a container from cfg. Options run in order before the
// analysis service is constructed.
func New(cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config: cfg,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.Logger == nil {
		c.Logger = internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
	}
	if c.Reader == nil {
		c.Reader = excel.NewReader(c.Logger)
	}

	c.Analysis = app.NewAnalysisService(cfg, c.Logger, c.Reader)
	c.Precision = format.Precision{Stat: cfg.Output.StatDigits, Effect: cfg.Output.EffectDigits}

	c.Logger.With("Container").Debug("initialized (alpha %g, correction %s, mode %s, batch concurrency %d)",
		cfg.Analysis.Alpha, cfg.Analysis.Correction, cfg.Analysis.TwoSampleMode, cfg.Batch.MaxConcurrency)
	return c, nil
}

// APIServer builds the HTTP adapter over the container's services.
func (c *Container) APIServer() *api.Server {
	return api.NewServer(c.Config, c.Analysis, c.Logger)
}
