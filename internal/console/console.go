package console

import (
	"io"
	"runtime"
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"
)

// Mode selects the framing policy shared by every sink attached to a console.
type Mode int

const (
	// ModeAppend places new output at the end of the document and trims the
	// oldest lines when over the limit.
	ModeAppend Mode = iota
	// ModeInsert places each completed line at the head of the document and
	// trims the newest lines when over the limit.
	ModeInsert
)

// String returns the configuration name of the mode.
func (m Mode) String() string {
	if m == ModeInsert {
		return "insert"
	}
	return "append"
}

// ParseMode converts a configuration string into a Mode. Unrecognized values
// fall back to append mode.
func ParseMode(s string) Mode {
	if s == "insert" {
		return ModeInsert
	}
	return ModeAppend
}

// Viewport is the display collaborator a console notifies after emitting
// output. Implementations are best-effort: failures are ignored and neither
// call affects console correctness.
type Viewport interface {
	// ScrollToBottom requests that the newest appended output become visible.
	ScrollToBottom()
	// SetCaretPosition requests that the display caret move to the given
	// document offset.
	SetCaretPosition(offset int)
}

// NopViewport is a Viewport that does nothing, for headless use and tests.
type NopViewport struct{}

func (NopViewport) ScrollToBottom()      {}
func (NopViewport) SetCaretPosition(int) {}

// PlatformEOL returns the end-of-line marker for the current platform.
func PlatformEOL() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}

// Console ties a document, a scheduler, and a viewport together and hands out
// sinks that share them. The mode is fixed at construction; the line limit may
// be reconfigured at any time.
//
// The console mutates the document but does not own it: the document is
// constructed by the caller and may have other subscribers.
type Console struct {
	doc      *Document
	sched    *Scheduler
	viewport Viewport
	mode     Mode
	eol      string

	limiter *lineLimiter

	dropped atomic.Uint64
}

// Option configures a Console.
type Option func(*Console)

// WithMode sets the framing mode. The default is ModeAppend.
func WithMode(m Mode) Option {
	return func(c *Console) { c.mode = m }
}

// WithViewport sets the display collaborator. The default is NopViewport.
func WithViewport(v Viewport) Option {
	return func(c *Console) { c.viewport = v }
}

// WithEOL overrides the end-of-line marker. Intended for tests; production
// consoles use the platform default.
func WithEOL(eol string) Option {
	return func(c *Console) { c.eol = eol }
}

// New creates a console over the given document and scheduler.
func New(doc *Document, sched *Scheduler, opts ...Option) *Console {
	c := &Console{
		doc:      doc,
		sched:    sched,
		viewport: NopViewport{},
		mode:     ModeAppend,
		eol:      PlatformEOL(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mode returns the console's framing mode.
func (c *Console) Mode() Mode {
	return c.mode
}

// EOL returns the end-of-line marker the console frames on.
func (c *Console) EOL() string {
	return c.eol
}

// Document returns the shared document.
func (c *Console) Document() *Document {
	return c.doc
}

// NewSink creates a sink attached to this console. Style is an optional
// display attribute applied to every block the sink emits; passthrough is an
// optional writer that receives each emitted block verbatim.
//
// Each sink must be driven by a single producer goroutine.
func (c *Console) NewSink(style *lipgloss.Style, passthrough io.Writer) *Sink {
	return &Sink{
		console:     c,
		style:       style,
		passthrough: passthrough,
		firstLine:   c.mode == ModeAppend,
	}
}

// SetMaxLines configures the maximum retained line count. The previous
// limiter, if any, is detached before the new one is attached, so at most one
// limiter is ever subscribed. A max of zero or less removes limiting.
//
// The new limit takes effect on the next document change; existing content is
// not trimmed eagerly.
func (c *Console) SetMaxLines(max int) {
	_ = c.sched.Run(func() {
		if c.limiter != nil {
			c.limiter.detach()
			c.limiter = nil
		}
		if max <= 0 {
			return
		}
		c.limiter = newLineLimiter(c, max)
		c.limiter.attach()
	})
}

// MaxLines returns the configured line limit, or zero when unlimited.
func (c *Console) MaxLines() int {
	var max int
	_ = c.sched.Run(func() {
		if c.limiter != nil {
			max = c.limiter.max
		}
	})
	return max
}

// DroppedInserts reports how many emitted blocks were discarded because the
// document rejected their insertion offset. Block loss is an accepted
// degradation rather than an error; this counter exists so callers and tests
// can detect that it happened.
func (c *Console) DroppedInserts() uint64 {
	return c.dropped.Load()
}
