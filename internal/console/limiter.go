package console

import "strings"

// lineLimiter trims the document whenever its line count exceeds a maximum.
// In append mode the oldest lines go; in insert mode the newest. It has two
// lifecycle states, attached and detached, and Console.SetMaxLines guarantees
// at most one limiter is attached at a time.
//
// Line count follows the document's line-addressing scheme: the number of
// end-of-line markers plus one, so text ending in a marker contributes a
// trailing empty line.
type lineLimiter struct {
	c   *Console
	max int

	subID    int
	attached bool
	trimming bool
}

func newLineLimiter(c *Console, max int) *lineLimiter {
	return &lineLimiter{c: c, max: max}
}

// attach subscribes the limiter to document changes. Runs on the scheduler
// goroutine.
func (l *lineLimiter) attach() {
	if l.attached {
		return
	}
	l.subID = l.c.doc.Subscribe(l.documentChanged)
	l.attached = true
}

// detach removes the limiter's subscription. Runs on the scheduler goroutine.
func (l *lineLimiter) detach() {
	if !l.attached {
		return
	}
	l.c.doc.Unsubscribe(l.subID)
	l.attached = false
}

// documentChanged trims excess lines synchronously within the triggering
// notification: by the time the mutation that pushed the document over the
// limit returns, the document is back within it. The removals performed here
// notify subscribers themselves, so re-entry is guarded.
func (l *lineLimiter) documentChanged(Change) {
	if l.trimming {
		return
	}
	l.trimming = true
	defer func() { l.trimming = false }()

	doc, eol := l.c.doc, l.c.eol
	for {
		text := doc.Text()
		if strings.Count(text, eol)+1 <= l.max {
			return
		}
		if l.c.mode == ModeAppend {
			// Drop the oldest line together with its marker.
			i := strings.Index(text, eol)
			if i < 0 || doc.Remove(0, i+len(eol)) != nil {
				return
			}
		} else {
			// Drop the newest line together with the marker before it.
			i := strings.LastIndex(text, eol)
			if i < 0 || doc.Remove(i, doc.Len()-i) != nil {
				return
			}
		}
	}
}
