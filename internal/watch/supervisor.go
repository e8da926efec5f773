package watch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"
)

const (
	defaultStopGrace = 3 * time.Second
	lineBuffer       = 256
)

// WorkerOptions describes how to launch the streaming worker.
type WorkerOptions struct {
	Command  string
	User     string
	Password string
	Scan     time.Duration
}

// Args builds the worker argument list for url.
func (o WorkerOptions) Args(url string) []string {
	args := make([]string, 0, 8)
	if o.User != "" {
		args = append(args, "-u", o.User)
	}
	if o.Password != "" {
		args = append(args, "-p", o.Password)
	}
	secs := int(o.Scan / time.Second)
	if secs < 1 {
		secs = 1
	}
	args = append(args, "-s", strconv.Itoa(secs), "-f", url)
	return args
}

// State is a snapshot of the supervisor slot.
type State struct {
	Running bool
	URL     string
	PID     int
	Run     string
	Started time.Time
}

// SupervisorOptions configures a Supervisor.
type SupervisorOptions struct {
	Worker WorkerOptions
	// Respawn restarts an exited worker on the next Unchanged decision.
	Respawn bool
	// StopGrace bounds how long Stop waits after SIGTERM before SIGKILL.
	StopGrace time.Duration
	Logger    *slog.Logger
	// OnState is called after every slot transition. It must not block.
	OnState func(State)
}

// Supervisor owns the single worker slot.
type Supervisor struct {
	opts  SupervisorOptions
	log   *slog.Logger
	lines chan Line

	mu      sync.Mutex
	cur     *worker
	target  string
	live    map[string]*worker
	stopped bool

	workers   sync.WaitGroup
	closeOnce sync.Once
}

type worker struct {
	id      string
	url     string
	cmd     *exec.Cmd
	pid     int
	started time.Time
	relays  sync.WaitGroup
	done    chan struct{}
	err     error
}

// NewSupervisor returns an idle Supervisor.
func NewSupervisor(opts SupervisorOptions) *Supervisor {
	if opts.StopGrace <= 0 {
		opts.StopGrace = defaultStopGrace
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Supervisor{
		opts:  opts,
		log:   logger,
		lines: make(chan Line, lineBuffer),
		live:  make(map[string]*worker),
	}
}

// Lines delivers worker output. It is closed by Stop.
func (s *Supervisor) Lines() <-chan Line {
	return s.lines
}

// State returns the current slot state.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Apply executes a Decision. ChangedTo signals the running worker and
// starts the replacement right away without waiting for the old one to exit.
func (s *Supervisor) Apply(d Decision) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	switch d.Action {
	case ChangedTo:
		s.target = d.URL
		s.terminateLocked(unix.SIGTERM)
		s.startLocked(d.URL)
	case ClearedToNone:
		s.target = ""
		if s.cur == nil {
			s.mu.Unlock()
			return
		}
		s.terminateLocked(unix.SIGTERM)
	default:
		if !s.opts.Respawn || s.target == "" || s.cur != nil {
			s.mu.Unlock()
			return
		}
		s.log.Info("respawning worker", "url", s.target)
		s.startLocked(s.target)
	}
	st := s.stateLocked()
	s.mu.Unlock()
	s.notify(st)
}

// Stop terminates the live worker, escalating to SIGKILL after the grace
// period, waits for output relays to drain and closes Lines. When ctx ends
// first, Stop returns its error and Lines is closed later, once the killed
// workers have exited.
func (s *Supervisor) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	s.target = ""
	wasRunning := s.cur != nil
	s.terminateLocked(unix.SIGTERM)
	s.mu.Unlock()
	if wasRunning {
		s.notify(State{})
	}

	done := make(chan struct{})
	go func() {
		s.workers.Wait()
		close(done)
	}()

	timer := time.NewTimer(s.opts.StopGrace)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		s.log.Warn("worker did not exit after SIGTERM, killing")
		s.signalLive(unix.SIGKILL)
		select {
		case <-done:
		case <-ctx.Done():
			go s.closeLinesAfter(done)
			return ctx.Err()
		}
	case <-ctx.Done():
		s.signalLive(unix.SIGKILL)
		go s.closeLinesAfter(done)
		return ctx.Err()
	}

	s.closeLinesAfter(done)
	return nil
}

// closeLinesAfter closes Lines once every worker and its relays are done,
// so relays never send on a closed channel.
func (s *Supervisor) closeLinesAfter(done <-chan struct{}) {
	<-done
	s.closeOnce.Do(func() { close(s.lines) })
}

func (s *Supervisor) startLocked(url string) {
	w := &worker{
		id:   uuid.NewString(),
		url:  url,
		done: make(chan struct{}),
	}
	cmd := exec.Command(s.opts.Worker.Command, s.opts.Worker.Args(url)...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		s.log.Error("failed to start worker", "url", url, "err", err)
		return
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		s.log.Error("failed to start worker", "url", url, "err", err)
		return
	}
	if err := cmd.Start(); err != nil {
		s.log.Error("failed to start worker", "url", url, "err", err)
		return
	}

	w.cmd = cmd
	w.pid = cmd.Process.Pid
	w.started = time.Now()
	s.cur = w
	s.live[w.id] = w
	s.workers.Add(1)
	s.log.Info("worker started", "run", w.id, "pid", w.pid, "url", url)

	w.relays.Add(2)
	go s.relay(w, Stdout, stdout)
	go s.relay(w, Stderr, stderr)
	go s.wait(w)
}

// terminateLocked signals the current worker's process group and releases
// the slot. It does not wait for the worker to exit.
func (s *Supervisor) terminateLocked(sig unix.Signal) {
	w := s.cur
	if w == nil {
		return
	}
	s.cur = nil
	s.log.Info("stopping worker", "run", w.id, "pid", w.pid, "url", w.url)
	if err := signalGroup(w.pid, sig); err != nil {
		s.log.Warn("failed to signal worker", "run", w.id, "pid", w.pid, "err", err)
	}
}

func (s *Supervisor) signalLive(sig unix.Signal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.live {
		_ = signalGroup(w.pid, sig)
	}
}

func (s *Supervisor) wait(w *worker) {
	defer s.workers.Done()

	// Pipes must be fully read before Wait closes them.
	w.relays.Wait()
	w.err = w.cmd.Wait()
	close(w.done)

	s.mu.Lock()
	delete(s.live, w.id)
	current := s.cur == w
	if current {
		s.cur = nil
	}
	st := s.stateLocked()
	s.mu.Unlock()

	attrs := []any{"run", w.id, "pid", w.pid, "url", w.url}
	var exitErr *exec.ExitError
	switch {
	case w.err == nil:
		s.log.Info("worker exited", attrs...)
	case errors.As(w.err, &exitErr):
		s.log.Info("worker exited", append(attrs, "status", exitErr.ProcessState.String())...)
	default:
		s.log.Warn("worker wait failed", append(attrs, "err", w.err)...)
	}
	if current {
		s.notify(st)
	}
}

func (s *Supervisor) stateLocked() State {
	if s.cur == nil {
		return State{}
	}
	return State{
		Running: true,
		URL:     s.cur.url,
		PID:     s.cur.pid,
		Run:     s.cur.id,
		Started: s.cur.started,
	}
}

func (s *Supervisor) notify(st State) {
	if s.opts.OnState != nil {
		s.opts.OnState(st)
	}
}

// signalGroup delivers sig to the process group led by pid.
func signalGroup(pid int, sig unix.Signal) error {
	if pid <= 0 {
		return nil
	}
	err := unix.Kill(-pid, sig)
	if errors.Is(err, unix.ESRCH) {
		return nil
	}
	return err
}
