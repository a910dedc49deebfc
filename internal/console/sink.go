package console

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

// ErrInvalidUTF8 is returned by Flush when the accumulated bytes do not form
// valid UTF-8. The accumulator is left intact so a caller can inspect it.
var ErrInvalidUTF8 = errors.New("invalid utf-8 sequence")

// Sink collects raw bytes from a single producer and, on Flush, turns them
// into zero or one attributed text blocks in the shared document.
//
// Write performs no framing: it only accumulates bytes. Flush decodes the
// accumulated bytes as UTF-8 and applies the console's framing policy. A
// producer typically alternates Write and Flush per output fragment, the way
// a line-buffered stream would.
//
// A sink must be driven by one goroutine at a time; distinct sinks on the
// same console may be driven concurrently.
type Sink struct {
	console     *Console
	style       *lipgloss.Style
	passthrough io.Writer

	mu  sync.Mutex
	acc bytes.Buffer

	// pending and firstLine belong to the scheduler goroutine.
	pending   strings.Builder
	firstLine bool
}

// Write appends p to the sink's byte accumulator. It never fails and makes no
// framing decision.
func (s *Sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acc.Write(p)
}

// Flush decodes the accumulated bytes as UTF-8 and hands the text to the
// console's framing policy on the scheduler goroutine, blocking until the
// resulting document mutation (if any) has been applied. The accumulator is
// cleared afterwards.
//
// An empty accumulator is a no-op. Invalid UTF-8 fails with ErrInvalidUTF8
// and leaves the accumulator untouched. A pass-through write failure is
// returned after the document has already been updated.
func (s *Sink) Flush() error {
	s.mu.Lock()
	data := s.acc.Bytes()
	if len(data) == 0 {
		s.mu.Unlock()
		return nil
	}
	if !utf8.Valid(data) {
		s.mu.Unlock()
		return fmt.Errorf("decode output: %w", ErrInvalidUTF8)
	}
	msg := string(data)
	s.acc.Reset()
	s.mu.Unlock()

	var emitErr error
	if err := s.console.sched.Run(func() {
		emitErr = s.handle(msg)
	}); err != nil {
		return err
	}
	return emitErr
}

// Close flushes any remaining buffered bytes.
func (s *Sink) Close() error {
	return s.Flush()
}

// handle applies the mode's framing policy to one decoded fragment.
// It runs on the scheduler goroutine.
func (s *Sink) handle(m string) error {
	if s.console.mode == ModeAppend {
		return s.handleAppend(m)
	}
	return s.handleInsert(m)
}

// handleAppend frames for append mode. The first fragment of a line is the
// message itself; a bare end-of-line fragment is held back and folded onto the
// following message so the document never gains a standalone blank line.
func (s *Sink) handleAppend(m string) error {
	// The document may have been cleared since the last emission, leaving a
	// stale end-of-line marker in the pending buffer.
	if s.console.doc.Len() == 0 {
		s.pending.Reset()
	}

	s.pending.WriteString(m)
	if m == s.console.eol {
		return nil
	}
	return s.emit()
}

// handleInsert frames for insert mode: a line is emitted only once its
// end-of-line marker has been observed, so the head of the document always
// receives whole lines.
func (s *Sink) handleInsert(m string) error {
	s.pending.WriteString(m)
	if m == s.console.eol {
		return s.emit()
	}
	return nil
}

// emit pushes the pending block into the document, forwards it to the
// pass-through writer, and nudges the viewport. It runs on the scheduler
// goroutine.
func (s *Sink) emit() error {
	block := s.pending.String()

	// When two sinks share an append-mode console, the second sink's first
	// emission needs a separator so the producers do not run together on one
	// line. No separator when the document is still empty.
	if s.firstLine && s.console.doc.Len() != 0 {
		block = "\n" + block
	}
	s.firstLine = false

	c := s.console
	if c.mode == ModeAppend {
		if err := c.doc.Insert(c.doc.Len(), block, s.style); err != nil {
			c.dropped.Add(1)
		} else {
			c.sched.Post(c.viewport.ScrollToBottom)
		}
	} else {
		if err := c.doc.Insert(0, block, s.style); err != nil {
			c.dropped.Add(1)
		} else {
			c.viewport.SetCaretPosition(0)
		}
	}

	var err error
	if s.passthrough != nil {
		_, err = io.WriteString(s.passthrough, block)
	}

	s.pending.Reset()
	return err
}
