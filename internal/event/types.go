// Package event defines process lifecycle events and a small synchronous bus
// for delivering them. It decouples the capture layer from the display: the
// runner publishes, and whichever frontend is active (TUI or plain) reacts.
package event

import "time"

// Event type identifiers.
const (
	TypeProcessStarted = "process.started"
	TypeProcessExited  = "process.exited"
	TypeCaptureError   = "capture.error"
)

// Event is implemented by everything published on the bus.
type Event interface {
	// EventType returns a stable "category.action" identifier.
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// baseEvent carries the fields shared by all events. Embed it in concrete
// event types to satisfy Event.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{eventType: eventType, timestamp: time.Now()}
}

// ProcessStartedEvent is published once the captured command is running.
type ProcessStartedEvent struct {
	baseEvent
	PID     int
	Command string
}

// NewProcessStartedEvent creates a ProcessStartedEvent.
func NewProcessStartedEvent(pid int, command string) ProcessStartedEvent {
	return ProcessStartedEvent{
		baseEvent: newBaseEvent(TypeProcessStarted),
		PID:       pid,
		Command:   command,
	}
}

// ProcessExitedEvent is published when the captured command terminates.
type ProcessExitedEvent struct {
	baseEvent
	Code int
	Err  error // non-nil when the command failed to run at all
}

// NewProcessExitedEvent creates a ProcessExitedEvent.
func NewProcessExitedEvent(code int, err error) ProcessExitedEvent {
	return ProcessExitedEvent{
		baseEvent: newBaseEvent(TypeProcessExited),
		Code:      code,
		Err:       err,
	}
}

// CaptureErrorEvent is published when reading a process stream fails for a
// reason other than the stream ending.
type CaptureErrorEvent struct {
	baseEvent
	Stream string // "stdout", "stderr", or "pty"
	Err    error
}

// NewCaptureErrorEvent creates a CaptureErrorEvent.
func NewCaptureErrorEvent(stream string, err error) CaptureErrorEvent {
	return CaptureErrorEvent{
		baseEvent: newBaseEvent(TypeCaptureError),
		Stream:    stream,
		Err:       err,
	}
}
