package console

import (
	"errors"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ErrOffsetRange is returned by Document.Insert and Document.Remove when the
// requested offset or length falls outside the current document content.
var ErrOffsetRange = errors.New("offset out of range")

// Change describes a single document mutation, delivered to subscribers
// immediately after the mutation has been applied.
type Change struct {
	// Offset is the document offset at which the mutation occurred.
	Offset int
	// Delta is the change in document length: positive for an insertion,
	// negative for a removal.
	Delta int
	// AtStart reports whether the mutation touched the head of the document
	// (offset 0) rather than appending at the end.
	AtStart bool
}

// Run is a contiguous span of document text sharing one style. A nil Style
// means the span inherits the default display style.
type Run struct {
	Text  string
	Style *lipgloss.Style
}

// Document is an ordered sequence of styled text runs with synchronous change
// notification. It is a passive store: it performs no framing, trimming, or
// line interpretation of its own.
//
// Document is not safe for concurrent use. All access must happen on the
// scheduler goroutine; sinks and the line limiter uphold this by marshaling
// every mutation through Scheduler.Run.
type Document struct {
	runs   []Run
	length int

	subs   []docSub
	nextID int
}

type docSub struct {
	id int
	fn func(Change)
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{}
}

// Len returns the total number of bytes of text currently held.
func (d *Document) Len() int {
	return d.length
}

// Text returns the full document content without styling.
func (d *Document) Text() string {
	var b strings.Builder
	b.Grow(d.length)
	for _, r := range d.runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// Runs returns a copy of the styled runs in document order.
func (d *Document) Runs() []Run {
	out := make([]Run, len(d.runs))
	copy(out, d.runs)
	return out
}

// Insert places text at the given offset with an optional style. Inserting at
// an offset greater than the current length, or at a negative offset, fails
// with ErrOffsetRange. Subscribers are notified synchronously after the
// insertion has been applied.
func (d *Document) Insert(offset int, text string, style *lipgloss.Style) error {
	if offset < 0 || offset > d.length {
		return ErrOffsetRange
	}
	if text == "" {
		return nil
	}

	ins := Run{Text: text, Style: style}
	switch {
	case offset == d.length:
		// Extend the final run when the style matches, otherwise append.
		if n := len(d.runs); n > 0 && d.runs[n-1].Style == style {
			d.runs[n-1].Text += text
		} else {
			d.runs = append(d.runs, ins)
		}
	case offset == 0:
		if len(d.runs) > 0 && d.runs[0].Style == style {
			d.runs[0].Text = text + d.runs[0].Text
		} else {
			d.runs = append([]Run{ins}, d.runs...)
		}
	default:
		idx, rel := d.locate(offset)
		r := d.runs[idx]
		if rel == 0 {
			d.runs = insertRun(d.runs, idx, ins)
		} else {
			before := Run{Text: r.Text[:rel], Style: r.Style}
			after := Run{Text: r.Text[rel:], Style: r.Style}
			d.runs[idx] = before
			d.runs = insertRun(d.runs, idx+1, ins)
			d.runs = insertRun(d.runs, idx+2, after)
		}
	}

	d.length += len(text)
	d.notify(Change{Offset: offset, Delta: len(text), AtStart: offset == 0})
	return nil
}

// Remove deletes length bytes starting at offset. The range must lie entirely
// within the current content or Remove fails with ErrOffsetRange.
func (d *Document) Remove(offset, length int) error {
	if offset < 0 || length < 0 || offset+length > d.length {
		return ErrOffsetRange
	}
	if length == 0 {
		return nil
	}

	kept := make([]Run, 0, len(d.runs)+1)
	pos := 0
	end := offset + length
	for _, r := range d.runs {
		rStart, rEnd := pos, pos+len(r.Text)
		pos = rEnd

		if rEnd <= offset || rStart >= end {
			kept = appendRun(kept, r)
			continue
		}
		if rStart < offset {
			kept = appendRun(kept, Run{Text: r.Text[:offset-rStart], Style: r.Style})
		}
		if rEnd > end {
			kept = appendRun(kept, Run{Text: r.Text[end-rStart:], Style: r.Style})
		}
	}

	d.runs = kept
	d.length -= length
	d.notify(Change{Offset: offset, Delta: -length, AtStart: offset == 0})
	return nil
}

// Clear removes all content. Subscribers observe a single removal covering the
// whole document. Clearing an empty document is a no-op.
func (d *Document) Clear() {
	if d.length == 0 {
		return
	}
	n := d.length
	d.runs = nil
	d.length = 0
	d.notify(Change{Offset: 0, Delta: -n, AtStart: true})
}

// Subscribe registers a change callback and returns a subscription ID for
// later removal. Callbacks run synchronously, in registration order, on the
// goroutine performing the mutation.
func (d *Document) Subscribe(fn func(Change)) int {
	d.nextID++
	d.subs = append(d.subs, docSub{id: d.nextID, fn: fn})
	return d.nextID
}

// Unsubscribe removes a subscription by ID. It reports whether the
// subscription was found.
func (d *Document) Unsubscribe(id int) bool {
	for i, s := range d.subs {
		if s.id == id {
			d.subs = append(d.subs[:i], d.subs[i+1:]...)
			return true
		}
	}
	return false
}

// SubscriberCount returns the number of active change subscriptions.
func (d *Document) SubscriberCount() int {
	return len(d.subs)
}

func (d *Document) notify(c Change) {
	// Copy: a subscriber may unsubscribe (or be replaced) during delivery.
	subs := make([]docSub, len(d.subs))
	copy(subs, d.subs)
	for _, s := range subs {
		s.fn(c)
	}
}

// locate maps a document offset to a run index and an offset within that run.
// The caller guarantees 0 < offset < d.length.
func (d *Document) locate(offset int) (idx, rel int) {
	pos := 0
	for i, r := range d.runs {
		if offset < pos+len(r.Text) {
			return i, offset - pos
		}
		pos += len(r.Text)
	}
	return len(d.runs) - 1, len(d.runs[len(d.runs)-1].Text)
}

func insertRun(runs []Run, i int, r Run) []Run {
	runs = append(runs, Run{})
	copy(runs[i+1:], runs[i:])
	runs[i] = r
	return runs
}

// appendRun appends r, merging it into the previous run when styles match so
// repeated partial removals do not fragment the document.
func appendRun(runs []Run, r Run) []Run {
	if r.Text == "" {
		return runs
	}
	if n := len(runs); n > 0 && runs[n-1].Style == r.Style {
		runs[n-1].Text += r.Text
		return runs
	}
	return append(runs, r)
}
