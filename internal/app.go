package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/afero"

	"github.com/starford/memo/internal/api"
	"github.com/starford/memo/internal/metrics"
	"github.com/starford/memo/internal/models"
	"github.com/starford/memo/internal/notestore"
	"github.com/starford/memo/internal/sse"
	"github.com/starford/memo/internal/storage"
	"github.com/starford/memo/internal/summarize"
)

// Services are the components shared by the HTTP server, the MCP server and
// the CLI commands.
type Services struct {
	Config    *Config
	Version   string
	Logger    *slog.Logger
	Store     *notestore.Store
	Gateway   *summarize.Gateway
	Summaries *api.Summaries
	Broker    *sse.Broker
	Metrics   *metrics.Collector
	Registry  *prometheus.Registry

	// watchPath is the OS file holding the collection, when there is one.
	watchPath string
	closers   []func() error
}

// Build opens storage and the note store and wires the summarizer, metrics
// and event broker. Callers must Close the result.
func Build(opts ...Option) (*Services, error) {
	app := &application{
		version:   "dev",
		logOutput: os.Stdout,
	}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	s := &Services{
		Config:   cfg,
		Version:  app.version,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
	}
	s.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	s.Metrics = metrics.NewCollector(s.Registry)
	s.Broker = sse.NewBroker(0)
	s.closers = append(s.closers, func() error { s.Broker.Close(); return nil })

	provider, err := s.openProvider(app)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	store, err := notestore.Open(provider,
		notestore.WithKey(cfg.Storage.Key),
		notestore.WithLogger(logger),
		notestore.WithObserver(s.onChange),
	)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("open note store: %w", err)
	}
	s.Store = store
	s.closers = append(s.closers, func() error { store.Close(); return nil })

	gen := app.generator
	if gen == nil {
		gen = summarize.NewAnthropicGenerator(summarize.AnthropicConfig{
			APIKey:    cfg.Summarizer.APIKey,
			Model:     cfg.Summarizer.Model,
			BaseURL:   cfg.Summarizer.BaseURL,
			MaxTokens: cfg.Summarizer.MaxTokens,
		})
	}
	s.Gateway = summarize.New(gen,
		summarize.WithTimeout(cfg.Summarizer.Timeout),
		summarize.WithLogger(logger),
		summarize.WithRecorder(s.Metrics),
	)
	s.Summaries = api.NewSummaries(s.Gateway, s.Store, s.Broker)

	notes, err := store.Notes(context.Background())
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	s.Metrics.SetNotes(len(notes))

	if cfg.Summarizer.APIKey == "" && app.generator == nil {
		logger.Warn("summarizer api key is not configured; summarize requests will fail")
	}
	return s, nil
}

func (s *Services) openProvider(app *application) (storage.Provider, error) {
	cfg := s.Config.Storage
	switch cfg.Driver {
	case StorageDriverSQLite:
		db, err := storage.OpenSQLite(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("init sqlite storage: %w", err)
		}
		s.closers = append(s.closers, db.Close)
		return db, nil
	default:
		fs := app.fs
		if fs == nil {
			fs = afero.NewOsFs()
		}
		p, err := storage.NewFS(fs, cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("init file storage: %w", err)
		}
		if app.fs == nil {
			s.watchPath, err = p.Path(cfg.Key)
			if err != nil {
				return nil, fmt.Errorf("init file storage: %w", err)
			}
		}
		return p, nil
	}
}

// onChange runs on the store loop after every persisted mutation.
func (s *Services) onChange(kind string, note models.Note, total int) {
	s.Broker.PublishNoteEvent(kind, note.ID, total)
	s.Metrics.RecordMutation(kind, total)
	if s.Summaries != nil {
		s.Summaries.NotesChanged()
	}
}

// Close releases everything Build opened, in reverse order.
func (s *Services) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
