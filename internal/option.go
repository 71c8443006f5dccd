package internal

import (
	"io"

	"github.com/spf13/afero"

	"github.com/starford/memo/internal/summarize"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config    *Config
	version   string
	logOutput io.Writer
	fs        afero.Fs
	generator summarize.Generator
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithVersion sets the version reported by the MCP server.
func WithVersion(v string) Option {
	return func(a *application) {
		a.version = v
	}
}

// WithLogOutput sets where JSON logs are written. Defaults to stdout.
func WithLogOutput(w io.Writer) Option {
	return func(a *application) {
		a.logOutput = w
	}
}

// WithFs sets the filesystem used by the file storage driver.
func WithFs(fs afero.Fs) Option {
	return func(a *application) {
		a.fs = fs
	}
}

// WithGenerator replaces the Anthropic text generator.
func WithGenerator(g summarize.Generator) Option {
	return func(a *application) {
		a.generator = g
	}
}
