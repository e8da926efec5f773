package tui

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"tailindex/internal/index"
	"tailindex/internal/watch"
)

type stubRefresher struct {
	accept bool
	calls  int
}

func (s *stubRefresher) Refresh() bool {
	s.calls++
	return s.accept
}

func newSizedModel(t *testing.T, r Refresher) *Model {
	t.Helper()
	m := New(r, "http://files.example/logs/")
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return m
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestModelAppendsTrimmedLines(t *testing.T) {
	m := newSizedModel(t, &stubRefresher{})

	m.Update(lineMsg{Stream: watch.Stdout, Text: "  first line  "})
	m.Update(lineMsg{Stream: watch.Stderr, Text: "oops\n"})
	m.Update(logMsg("level=INFO msg=\"worker started\""))

	if len(m.lines) != 3 || m.lines[0] != "first line" {
		t.Fatalf("unexpected lines %q", m.lines)
	}
	if !strings.Contains(m.lines[1], "oops") {
		t.Fatalf("stderr line missing: %q", m.lines[1])
	}
	if !strings.Contains(m.View(), "first line") {
		t.Fatalf("view does not show streamed output")
	}
}

func TestModelCapsScrollback(t *testing.T) {
	m := newSizedModel(t, &stubRefresher{})
	for i := 0; i < maxLines+10; i++ {
		m.Update(lineMsg{Text: fmt.Sprintf("line %d", i)})
	}
	if len(m.lines) != maxLines {
		t.Fatalf("expected %d lines, got %d", maxLines, len(m.lines))
	}
	if m.lines[0] != "line 10" {
		t.Fatalf("oldest lines should be dropped, first is %q", m.lines[0])
	}
}

func TestModelHeaderShowsState(t *testing.T) {
	m := newSizedModel(t, &stubRefresher{})
	if !strings.Contains(m.View(), "idle") {
		t.Fatalf("expected idle header")
	}

	m.Update(stateMsg{Running: true, URL: "http://files.example/logs/a1.log", PID: 4242})
	if view := m.View(); !strings.Contains(view, "streaming http://files.example/logs/a1.log (pid 4242)") {
		t.Fatalf("header missing worker: %q", view)
	}
}

func TestModelReportStatus(t *testing.T) {
	entry := index.Entry{Name: "a4.log"}
	tests := []struct {
		name   string
		report watch.Report
		want   string
	}{
		{"unreachable", watch.Report{Err: errors.New("dial failed"), Decision: watch.Decision{Action: watch.ClearedToNone}}, "Listing unreachable"},
		{"no match", watch.Report{Decision: watch.Decision{Action: watch.ClearedToNone}}, "No matching file yet."},
		{"changed", watch.Report{Candidate: &entry, Decision: watch.Decision{Action: watch.ChangedTo}}, "Switched to a4.log."},
		{"unchanged", watch.Report{Candidate: &entry, Decision: watch.Decision{Action: watch.Unchanged}}, "Still following a4.log."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := newSizedModel(t, &stubRefresher{})
			tc.report.At = time.Now()
			m.Update(reportMsg(tc.report))
			if !strings.HasPrefix(m.statusMsg, tc.want) {
				t.Fatalf("status %q, want prefix %q", m.statusMsg, tc.want)
			}
		})
	}
}

func TestModelRefreshKey(t *testing.T) {
	r := &stubRefresher{accept: true}
	m := newSizedModel(t, r)

	_, cmd := m.Update(key("r"))
	if cmd == nil {
		t.Fatalf("expected refresh command")
	}
	m.Update(cmd())
	if r.calls != 1 || m.statusMsg != "Refreshing listing…" {
		t.Fatalf("unexpected refresh handling: calls=%d status=%q", r.calls, m.statusMsg)
	}

	r.accept = false
	_, cmd = m.Update(key("r"))
	m.Update(cmd())
	if !strings.Contains(m.statusMsg, "too soon") {
		t.Fatalf("throttled refresh not reported: %q", m.statusMsg)
	}
}

func TestModelFollowToggle(t *testing.T) {
	m := newSizedModel(t, &stubRefresher{})
	m.Update(key("f"))
	if m.follow || !strings.Contains(m.View(), "(paused)") {
		t.Fatalf("expected follow paused")
	}
	m.Update(key("f"))
	if !m.follow {
		t.Fatalf("expected follow resumed")
	}
}

func TestModelQuits(t *testing.T) {
	m := newSizedModel(t, &stubRefresher{})

	if _, cmd := m.Update(key("q")); !isQuit(cmd) {
		t.Fatalf("q should quit")
	}
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC}); !isQuit(cmd) {
		t.Fatalf("ctrl+c should quit")
	}
	if _, cmd := m.Update(sessionDoneMsg{}); !isQuit(cmd) {
		t.Fatalf("session end should quit")
	}
}

func TestLogSinkBuffersUntilAttached(t *testing.T) {
	var sink LogSink
	n, err := sink.Write([]byte("one\ntwo\n"))
	if err != nil || n != 8 {
		t.Fatalf("Write = %d, %v", n, err)
	}
	if got := sink.Pending(); len(got) != 2 || got[0] != "one" || got[1] != "two" {
		t.Fatalf("unexpected pending %q", got)
	}
}
