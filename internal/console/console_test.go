package console

import (
	"sync/atomic"
	"testing"
)

// recordingViewport counts collaborator calls for assertions.
type recordingViewport struct {
	scrolls atomic.Int64
	carets  atomic.Int64
}

func (v *recordingViewport) ScrollToBottom()      { v.scrolls.Add(1) }
func (v *recordingViewport) SetCaretPosition(int) { v.carets.Add(1) }

func TestModeString(t *testing.T) {
	tests := []struct {
		mode     Mode
		expected string
	}{
		{ModeAppend, "append"},
		{ModeInsert, "insert"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.expected {
			t.Errorf("Mode(%d).String() = %q, expected %q", tt.mode, got, tt.expected)
		}
		if got := ParseMode(tt.expected); got != tt.mode {
			t.Errorf("ParseMode(%q) = %v, expected %v", tt.expected, got, tt.mode)
		}
	}
	if got := ParseMode("bogus"); got != ModeAppend {
		t.Errorf("ParseMode of unknown value = %v, expected append fallback", got)
	}
}

func TestConsole_Defaults(t *testing.T) {
	sched := NewScheduler()
	defer sched.Close()
	c := New(NewDocument(), sched)

	if c.Mode() != ModeAppend {
		t.Errorf("default mode = %v, expected append", c.Mode())
	}
	if c.EOL() != PlatformEOL() {
		t.Errorf("default EOL = %q, expected platform default", c.EOL())
	}
	if c.MaxLines() != 0 {
		t.Errorf("default line limit = %d, expected unlimited", c.MaxLines())
	}
	if c.DroppedInserts() != 0 {
		t.Errorf("fresh console reports %d dropped inserts", c.DroppedInserts())
	}
}

func TestConsole_DroppedInsertCounter(t *testing.T) {
	c := newTestConsole(t, ModeAppend)
	sink := c.NewSink(nil, nil)

	// Force a stale offset by shrinking the document between the offset
	// computation and the insert. A subscriber that rewrites the document
	// during notification is the realistic trigger for this race.
	_ = c.sched.Run(func() {
		sink.pending.WriteString("block")
		s := sink
		// Simulate the insert arriving against a shorter document.
		if err := c.doc.Insert(c.doc.Len()+1, s.pending.String(), nil); err != nil {
			c.dropped.Add(1)
		}
		s.pending.Reset()
	})

	if got := c.DroppedInserts(); got != 1 {
		t.Errorf("DroppedInserts() = %d, expected 1", got)
	}
	if got := docText(t, c); got != "" {
		t.Errorf("dropped block reached the document: %q", got)
	}
}

func TestConsole_SinkLossIsSilent(t *testing.T) {
	// A full pipeline sanity check: flushes never fail even while a limiter
	// is aggressively rewriting the document underneath them.
	c := newTestConsole(t, ModeAppend)
	c.SetMaxLines(1)
	sink := c.NewSink(nil, nil)

	for i := 0; i < 20; i++ {
		emitAll(t, sink, "line", "\n")
	}
	if got := c.DroppedInserts(); got != 0 {
		t.Errorf("DroppedInserts() = %d, expected 0 with serialized trimming", got)
	}
}
