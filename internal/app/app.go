package app

import (
	"io"
	"log/slog"
	"os"

	"tailindex/internal/config"
)

// Options configures the top-level controller.
type Options struct {
	Config config.Config
	Logger *slog.Logger
	// Stdout and Stderr receive relayed worker output.
	Stdout io.Writer
	Stderr io.Writer
}

// App exposes high-level operations that the CLI/TUI can reuse.
type App struct {
	cfg    config.Config
	log    *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

// New constructs the shared controller facade.
func New(opts Options) *App {
	a := &App{
		cfg:    opts.Config,
		log:    opts.Logger,
		stdout: opts.Stdout,
		stderr: opts.Stderr,
	}
	if a.log == nil {
		a.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if a.stdout == nil {
		a.stdout = os.Stdout
	}
	if a.stderr == nil {
		a.stderr = os.Stderr
	}
	return a
}

// Config returns the effective settings.
func (a *App) Config() config.Config {
	return a.cfg
}

// NewLogger returns the text logger used for diagnostics.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
