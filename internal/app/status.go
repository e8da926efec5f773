package app

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// WatchStatus is what a running watcher reports over its status socket.
type WatchStatus struct {
	Socket    string
	Streaming bool
}

// Status asks a watcher started with status enabled whether it is streaming.
func (a *App) Status(ctx context.Context, timeout time.Duration) (WatchStatus, error) {
	if timeout <= 0 {
		return WatchStatus{}, errors.New("timeout must be greater than 0")
	}
	path := statusSocketPath()
	if !statusIsRunning(path) {
		return WatchStatus{Socket: path}, errors.New("watcher is not running")
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	streaming, err := queryStatus(ctx, path)
	if err != nil {
		return WatchStatus{Socket: path}, fmt.Errorf("query watcher: %w", err)
	}
	return WatchStatus{Socket: path, Streaming: streaming}, nil
}
