package watch

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Stream identifies which worker pipe a line came from.
type Stream int

const (
	Stdout Stream = iota
	Stderr
)

func (s Stream) String() string {
	if s == Stderr {
		return "stderr"
	}
	return "stdout"
}

// Line is one line of worker output.
type Line struct {
	Run    string
	Stream Stream
	Text   string
}

// maxLineBytes caps a relayed line; longer lines are split.
const maxLineBytes = 1 << 20

// relay forwards every line read from r until EOF.
func (s *Supervisor) relay(w *worker, stream Stream, r io.Reader) {
	defer w.relays.Done()

	br := bufio.NewReaderSize(r, 64*1024)
	var line []byte
	for {
		chunk, err := br.ReadSlice('\n')
		line = append(line, chunk...)
		if errors.Is(err, bufio.ErrBufferFull) {
			if len(line) >= maxLineBytes {
				s.emit(w, stream, line)
				line = line[:0]
			}
			continue
		}
		if err == nil || len(line) > 0 {
			s.emit(w, stream, line)
		}
		line = line[:0]
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.log.Warn("worker output relay stopped", "run", w.id, "stream", stream.String(), "err", err)
			}
			return
		}
	}
}

func (s *Supervisor) emit(w *worker, stream Stream, b []byte) {
	s.lines <- Line{Run: w.id, Stream: stream, Text: strings.TrimSpace(string(b))}
}

// Console writes relayed lines to the process streams.
type Console struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Run drains lines until the channel is closed.
func (c Console) Run(lines <-chan Line) {
	for l := range lines {
		out := c.Stdout
		if l.Stream == Stderr {
			out = c.Stderr
		}
		fmt.Fprintln(out, strings.TrimSpace(l.Text))
	}
}
