package app

import (
	"context"
	"fmt"
	"os"

	"tailindex/internal/watch"
)

// Observer receives watch events. Callbacks run on watcher goroutines and
// must not block.
type Observer struct {
	OnReport func(watch.Report)
	OnState  func(watch.State)
}

// Session is a running watch loop.
type Session struct {
	sched *watch.Scheduler
	sup   *watch.Supervisor
	done  chan struct{}
	err   error
}

// Refresh requests an immediate re-check of the listing. It returns false
// when the request was throttled.
func (s *Session) Refresh() bool {
	return s.sched.Refresh()
}

// Lines delivers worker output until the session ends. It must be drained.
func (s *Session) Lines() <-chan watch.Line {
	return s.sup.Lines()
}

// State returns the worker slot snapshot.
func (s *Session) State() watch.State {
	return s.sup.State()
}

// Done is closed once the loop has stopped its worker.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the session ends and returns the shutdown error.
func (s *Session) Wait() error {
	<-s.done
	return s.err
}

// StartWatch launches the refresh loop in the background. It runs until ctx
// is cancelled.
func (a *App) StartWatch(ctx context.Context, target Target, obs Observer) (*Session, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}

	var status statusPublisher
	if a.cfg.Status {
		srv, err := startStatus(statusSocketPath())
		if err != nil {
			return nil, fmt.Errorf("start status socket: %w", err)
		}
		status = srv
		a.log.Info("status socket listening", "path", srv.Path())
	}

	sup := watch.NewSupervisor(watch.SupervisorOptions{
		Worker: watch.WorkerOptions{
			Command:  a.cfg.Worker,
			User:     a.cfg.User,
			Password: a.cfg.Password,
			Scan:     a.cfg.Scan,
		},
		Respawn: a.cfg.Respawn,
		Logger:  a.log,
		OnState: func(st watch.State) {
			if status != nil {
				status.SetStreaming(st.Running)
			}
			if obs.OnState != nil {
				obs.OnState(st)
			}
		},
	})
	sched := watch.NewScheduler(newFetcher(a.fetcherOptions()), sup, watch.SchedulerOptions{
		URL:      target.URL,
		Pattern:  target.Pattern,
		Order:    a.cfg.Order,
		Refresh:  a.cfg.Refresh,
		Logger:   a.log,
		OnReport: obs.OnReport,
	})

	a.log.Info("watching listing", "url", target.URL, "pattern", target.Pattern.String(), "order", a.cfg.Order.String(), "refresh", a.cfg.Refresh)
	sess := &Session{sched: sched, sup: sup, done: make(chan struct{})}
	go func() {
		defer close(sess.done)
		sess.err = sched.Run(ctx)
		if status != nil {
			if err := status.Close(); err != nil {
				a.log.Warn("failed to close status socket", "err", err)
			}
		}
	}()
	return sess, nil
}

// Watch streams the selected file to the console until ctx is cancelled.
// SIGHUP triggers an immediate refresh.
func (a *App) Watch(ctx context.Context, target Target) error {
	sess, err := a.StartWatch(ctx, target, Observer{})
	if err != nil {
		return err
	}

	console := watch.Console{Stdout: a.stdout, Stderr: a.stderr}
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		console.Run(sess.Lines())
	}()

	hup := make(chan os.Signal, 1)
	notifyHangup(hup)
	defer stopHangup(hup)

	for {
		select {
		case <-hup:
			if !sess.Refresh() {
				a.log.Info("refresh requested too soon, ignoring")
			}
		case <-sess.Done():
			if err := sess.Wait(); err != nil {
				return fmt.Errorf("stop worker: %w", err)
			}
			<-drained
			return nil
		}
	}
}
