package app

import (
	"os"
	"os/signal"
	"syscall"

	"tailindex/internal/index"
	"tailindex/internal/statusd"
	"tailindex/internal/watch"
)

// statusPublisher is the part of statusd.Server the watch loop drives.
type statusPublisher interface {
	SetStreaming(bool)
	Path() string
	Close() error
}

var (
	newFetcher       = defaultNewFetcher
	statusSocketPath = statusd.SocketPath
	statusIsRunning  = statusd.IsRunning
	startStatus      = defaultStartStatus
	queryStatus      = statusd.Query
	notifyHangup     = defaultNotifyHangup
	stopHangup       = signal.Stop
)

func resetDeps() {
	newFetcher = defaultNewFetcher
	statusSocketPath = statusd.SocketPath
	statusIsRunning = statusd.IsRunning
	startStatus = defaultStartStatus
	queryStatus = statusd.Query
	notifyHangup = defaultNotifyHangup
	stopHangup = signal.Stop
}

func defaultNewFetcher(opts index.FetcherOptions) watch.Fetcher {
	return index.NewFetcher(opts)
}

func defaultStartStatus(path string) (statusPublisher, error) {
	srv, err := statusd.Start(path)
	if err != nil {
		return nil, err
	}
	return srv, nil
}

func defaultNotifyHangup(c chan<- os.Signal) {
	signal.Notify(c, syscall.SIGHUP)
}
