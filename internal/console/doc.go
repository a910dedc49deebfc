// Package console implements a bounded, displayable text console that merges
// asynchronous byte output from multiple producers into coherent, line-oriented,
// color-tagged text blocks.
//
// The package is built from four cooperating pieces:
//
//   - Document: an ordered sequence of styled text runs. It is the single
//     shared mutable resource; all mutation happens on the scheduler goroutine.
//   - Scheduler: a single goroutine draining a task queue. It plays the role
//     of the rendering thread: producers marshal document mutations onto it.
//   - Sink: a per-producer io.Writer/Flush pair. Write collects raw bytes,
//     Flush decodes them as UTF-8 and applies the line-framing policy for the
//     console's mode, inserting a complete text block into the document and
//     optionally forwarding it verbatim to a pass-through writer.
//   - Line limiter: a document-change subscriber that trims the oldest
//     (append mode) or newest (insert mode) lines once the line count exceeds
//     a configured maximum.
//
// # Modes
//
// A Console is constructed in one of two modes, shared by every sink attached
// to it. In append mode new output goes to the end of the document and a bare
// end-of-line fragment is folded onto the following message, so the document
// never ends with a dangling blank line. In insert mode each completed line is
// inserted at offset 0, newest first, and emission waits until the end-of-line
// marker has been observed.
//
// # Concurrency
//
// Each producer goroutine owns its sink exclusively. Every Flush that results
// in a document mutation runs as a single task on the scheduler goroutine and
// does not return until that task has executed, so offset computation and
// insertion are atomic per flush. The post-insert viewport scroll request is
// posted asynchronously and never awaited.
package console
