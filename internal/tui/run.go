package tui

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"tailindex/internal/app"
	"tailindex/internal/watch"
)

// Controller defines the subset of app.App behaviour the TUI needs.
type Controller interface {
	StartWatch(context.Context, app.Target, app.Observer) (*app.Session, error)
}

// Run starts the watch loop and shows it in a full-screen viewer until the
// user quits or ctx is cancelled. Log records written to sink are shown in
// the stream.
func Run(ctx context.Context, ctrl Controller, target app.Target, sink *LogSink) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var prog *tea.Program
	ready := make(chan struct{})
	send := func(msg tea.Msg) {
		<-ready
		prog.Send(msg)
	}

	sess, err := ctrl.StartWatch(ctx, target, app.Observer{
		OnReport: func(r watch.Report) { send(reportMsg(r)) },
		OnState:  func(st watch.State) { send(stateMsg(st)) },
	})
	if err != nil {
		return err
	}

	m := New(sess, target.URL)
	prog = tea.NewProgram(m, tea.WithAltScreen())
	close(ready)
	if sink != nil {
		sink.Attach(prog)
		defer sink.Detach()
	}

	go func() {
		for l := range sess.Lines() {
			prog.Send(lineMsg(l))
		}
	}()
	go func() {
		err := sess.Wait()
		prog.Send(sessionDoneMsg{err: err})
	}()

	_, runErr := prog.Run()
	cancel()
	waitErr := sess.Wait()
	if runErr != nil {
		return fmt.Errorf("tui exited with error: %w", runErr)
	}
	if waitErr != nil {
		return fmt.Errorf("stop worker: %w", waitErr)
	}
	return nil
}

// LogSink is an io.Writer that routes log records into the viewer. Records
// written before a program is attached are held and replayed on Attach.
type LogSink struct {
	mu      sync.Mutex
	prog    *tea.Program
	pending []string
}

// Write implements io.Writer.
func (s *LogSink) Write(p []byte) (int, error) {
	var lines []string
	for _, l := range bytes.Split(bytes.TrimRight(p, "\n"), []byte("\n")) {
		lines = append(lines, string(l))
	}

	s.mu.Lock()
	prog := s.prog
	if prog == nil {
		s.pending = append(s.pending, lines...)
	}
	s.mu.Unlock()

	if prog != nil {
		for _, l := range lines {
			prog.Send(logMsg(l))
		}
	}
	return len(p), nil
}

// Attach starts delivering records to prog.
func (s *LogSink) Attach(prog *tea.Program) {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.prog = prog
	s.mu.Unlock()

	go func() {
		for _, l := range pending {
			prog.Send(logMsg(l))
		}
	}()
}

// Detach stops delivery; later records are buffered again.
func (s *LogSink) Detach() {
	s.mu.Lock()
	s.prog = nil
	s.mu.Unlock()
}

// Pending returns records written while no program was attached.
func (s *LogSink) Pending() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.pending...)
}
