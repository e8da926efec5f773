package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"tailindex/internal/app"
	"tailindex/internal/config"
	"tailindex/internal/index"
)

var (
	flagUser     string
	flagPassword string
	flagScan     int
	flagRefresh  int
	flagOrder    string
	flagConfig   string
	flagWorker   string
	flagInsecure bool
	flagRespawn  bool
	flagStatus   bool
	flagVerbose  bool
)

func init() {
	registerWatchFlags(rootCmd.PersistentFlags())
}

func registerWatchFlags(pf *pflag.FlagSet) {
	pf.StringVarP(&flagUser, "user", "u", "", "User for listing authentication")
	pf.StringVarP(&flagPassword, "password", "p", "", "Password for listing authentication")
	pf.IntVarP(&flagScan, "scan", "s", 5, "Seconds between worker scans of the watched file")
	pf.IntVarP(&flagRefresh, "refresh", "r", 300, "Seconds between listing refreshes")
	pf.StringVarP(&flagOrder, "order", "o", "asc", "Which end of the sorted matches is current (asc|desc)")
	pf.StringVar(&flagConfig, "config", "", "Path to a .json, .yaml or .toml config file")
	pf.StringVar(&flagWorker, "worker", "", "Streaming worker command (default ./tailurl.sh)")
	pf.BoolVar(&flagInsecure, "insecure", false, "Skip TLS certificate verification for the listing")
	pf.BoolVar(&flagRespawn, "respawn", false, "Restart the worker if it exits while its file is still current")
	pf.BoolVar(&flagStatus, "status", false, "Serve watch health on the status socket")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
}

// controllerAPI is the subset of app.App used by the commands.
type controllerAPI interface {
	Watch(context.Context, app.Target) error
	Resolve(context.Context, app.Target) (string, error)
	Status(context.Context, time.Duration) (app.WatchStatus, error)
	StartWatch(context.Context, app.Target, app.Observer) (*app.Session, error)
}

var controllerFactory = func(opts app.Options) controllerAPI {
	return app.New(opts)
}

// loadConfig layers explicitly set flags over the config file and env.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("user") {
		cfg.User = flagUser
	}
	if flags.Changed("password") {
		cfg.Password = flagPassword
	}
	if flags.Changed("scan") {
		if flagScan <= 0 {
			return cfg, errors.New("--scan must be greater than 0")
		}
		cfg.Scan = time.Duration(flagScan) * time.Second
	}
	if flags.Changed("refresh") {
		if flagRefresh <= 0 {
			return cfg, errors.New("--refresh must be greater than 0")
		}
		cfg.Refresh = time.Duration(flagRefresh) * time.Second
	}
	if flags.Changed("order") {
		order, err := index.ParseOrder(flagOrder)
		if err != nil {
			return cfg, err
		}
		cfg.Order = order
	}
	if flags.Changed("worker") {
		cfg.Worker = flagWorker
	}
	if flags.Changed("insecure") {
		cfg.Insecure = flagInsecure
	}
	if flags.Changed("respawn") {
		cfg.Respawn = flagRespawn
	}
	if flags.Changed("status") {
		cfg.Status = flagStatus
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// prepare parses <pattern> <url> and builds a controller logging to logOut.
func prepare(cmd *cobra.Command, args []string, logOut io.Writer) (app.Target, controllerAPI, error) {
	target, err := app.ParseTarget(args[0], args[1])
	if err != nil {
		return app.Target{}, nil, err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return app.Target{}, nil, err
	}
	ctrl := controllerFactory(app.Options{
		Config: cfg,
		Logger: app.NewLogger(logOut, flagVerbose),
		Stdout: cmd.OutOrStdout(),
		Stderr: os.Stderr,
	})
	return target, ctrl, nil
}
