package capture

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"
	"github.com/creack/pty"

	"github.com/tailpane/tailpane/internal/console"
	"github.com/tailpane/tailpane/internal/event"
	"github.com/tailpane/tailpane/internal/logging"
)

// defaultReadBufferSize is used when Config.ReadBufferSize is zero.
const defaultReadBufferSize = 4096

// Config describes the command to capture and how to read it.
type Config struct {
	// Command is the argv of the process to run. Must not be empty.
	Command []string

	// Dir is the working directory; empty means inherit.
	Dir string

	// PTY runs the command on a pseudo-terminal. Stdout and stderr arrive
	// merged on one stream, which feeds the stdout sink.
	PTY bool

	// StripANSI removes terminal escape sequences from the captured bytes
	// before they reach a sink. The console never interprets escapes, so
	// without this a color-emitting child would litter the document.
	StripANSI bool

	// ReadBufferSize is the per-read chunk size in bytes.
	ReadBufferSize int

	// EOL is the line marker fragments are segmented on. It must match the
	// EOL of the console the sinks belong to; empty means the platform
	// default.
	EOL string
}

// Runner spawns a command and pumps its output streams into console sinks.
// Lifecycle events go to the bus; read diagnostics go to the logger.
type Runner struct {
	cfg    Config
	stdout *console.Sink
	stderr *console.Sink
	bus    *event.Bus
	log    *logging.Logger

	mu      sync.Mutex
	cmd     *exec.Cmd
	ptmx    *os.File
	started bool

	pumps sync.WaitGroup
}

// NewRunner creates a runner. stderrSink may equal stdoutSink to merge the
// streams; in PTY mode stderrSink is unused. bus and log may be nil.
func NewRunner(cfg Config, stdoutSink, stderrSink *console.Sink, bus *event.Bus, log *logging.Logger) *Runner {
	if cfg.ReadBufferSize <= 0 {
		cfg.ReadBufferSize = defaultReadBufferSize
	}
	if cfg.EOL == "" {
		cfg.EOL = console.PlatformEOL()
	}
	if log == nil {
		log = logging.NopLogger()
	}
	return &Runner{
		cfg:    cfg,
		stdout: stdoutSink,
		stderr: stderrSink,
		bus:    bus,
		log:    log,
	}
}

// Start launches the command and the pump goroutines.
func (r *Runner) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return errors.New("runner already started")
	}
	if len(r.cfg.Command) == 0 {
		return errors.New("no command configured")
	}

	cmd := exec.Command(r.cfg.Command[0], r.cfg.Command[1:]...)
	cmd.Dir = r.cfg.Dir

	if r.cfg.PTY {
		ptmx, err := pty.Start(cmd)
		if err != nil {
			return fmt.Errorf("start on pty: %w", err)
		}
		r.ptmx = ptmx
		r.pumps.Add(1)
		go r.pump("pty", ptmx, r.stdout)
	} else {
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			return fmt.Errorf("stdout pipe: %w", err)
		}
		stderr, err := cmd.StderrPipe()
		if err != nil {
			return fmt.Errorf("stderr pipe: %w", err)
		}
		if err := cmd.Start(); err != nil {
			return fmt.Errorf("start command: %w", err)
		}
		r.pumps.Add(2)
		go r.pump("stdout", stdout, r.stdout)
		go r.pump("stderr", stderr, r.stderr)
	}

	r.cmd = cmd
	r.started = true
	r.log.Info("process started", "pid", cmd.Process.Pid, "command", strings.Join(r.cfg.Command, " "))
	if r.bus != nil {
		r.bus.Publish(event.NewProcessStartedEvent(cmd.Process.Pid, strings.Join(r.cfg.Command, " ")))
	}
	return nil
}

// Wait blocks until the pumps have drained and the process has exited, then
// publishes the exit event. It returns the process error, if any.
func (r *Runner) Wait() error {
	r.mu.Lock()
	cmd := r.cmd
	ptmx := r.ptmx
	r.mu.Unlock()

	if cmd == nil {
		return errors.New("runner not started")
	}

	r.pumps.Wait()
	if ptmx != nil {
		_ = ptmx.Close()
	}
	err := cmd.Wait()

	code := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		} else {
			code = -1
		}
	}
	r.log.Info("process exited", "code", code)
	if r.bus != nil {
		r.bus.Publish(event.NewProcessExitedEvent(code, err))
	}
	return err
}

// Stop kills the process if it is still running. The pumps drain whatever
// output remains and Wait completes as usual.
func (r *Runner) Stop() {
	r.mu.Lock()
	cmd := r.cmd
	r.mu.Unlock()

	if cmd != nil && cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
}

// pump reads rd until EOF, feeding each chunk to the sink as line fragments.
func (r *Runner) pump(stream string, rd io.Reader, sink *console.Sink) {
	defer r.pumps.Done()

	log := r.log.WithStream(stream)
	eol := r.cfg.EOL
	buf := make([]byte, r.cfg.ReadBufferSize)
	// held carries bytes that must wait for the next read before they can be
	// interpreted: a trailing incomplete escape sequence, UTF-8 rune, or EOL
	// marker prefix.
	var held []byte

	for {
		n, err := rd.Read(buf)
		if n > 0 {
			chunk := append(held, buf[:n]...)

			var escTail []byte
			if r.cfg.StripANSI {
				chunk, escTail = splitIncompleteEscape(chunk)
				chunk = []byte(ansi.Strip(string(chunk)))
			}
			var runeTail []byte
			chunk, runeTail = splitIncompleteRune(chunk)
			var eolTail []byte
			if len(eol) > 1 {
				chunk, eolTail = splitTrailingEOLPrefix(chunk, eol)
			}

			if ferr := feed(sink, chunk, eol); ferr != nil {
				log.Warn("flush failed", "error", ferr)
			}

			held = nil
			held = append(held, eolTail...)
			held = append(held, runeTail...)
			held = append(held, escTail...)
		}
		if err != nil {
			// A closing pty reports EIO rather than EOF; both mean the
			// stream is done.
			if !errors.Is(err, io.EOF) && !isPTYClosed(err) {
				log.Error("read failed", "error", err)
				if r.bus != nil {
					r.bus.Publish(event.NewCaptureErrorEvent(stream, err))
				}
			}
			// Push out any bytes still held back; if they are genuinely
			// incomplete the sink reports the decode failure.
			if len(held) > 0 {
				if r.cfg.StripANSI {
					held = []byte(ansi.Strip(string(held)))
				}
				if ferr := feed(sink, held, eol); ferr != nil {
					log.Warn("final flush failed", "error", ferr)
				}
			}
			return
		}
	}
}

// feed hands data to the sink as the fragment sequence a line-buffered writer
// would produce: text segments and end-of-line markers flush separately, so
// the console's framing policy sees line boundaries regardless of how the
// kernel chunked the stream.
func feed(sink *console.Sink, data []byte, eol string) error {
	marker := []byte(eol)
	var firstErr error
	for len(data) > 0 {
		var seg []byte
		switch i := bytes.Index(data, marker); {
		case i == 0:
			seg, data = data[:len(marker)], data[len(marker):]
		case i > 0:
			seg, data = data[:i], data[i:]
		default:
			seg, data = data, nil
		}
		if _, err := sink.Write(seg); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := sink.Flush(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// splitIncompleteRune splits p so that complete ends on a rune boundary and
// rest holds the leading bytes of a rune whose continuation has not arrived
// yet. Invalid sequences are passed through in complete so the sink can
// report them.
func splitIncompleteRune(p []byte) (complete, rest []byte) {
	for i := 1; i <= utf8.UTFMax && i <= len(p); i++ {
		b := p[len(p)-i]
		if !utf8.RuneStart(b) {
			continue
		}
		if expectedRuneLen(b) > i {
			return p[:len(p)-i], p[len(p)-i:]
		}
		return p, nil
	}
	return p, nil
}

// expectedRuneLen returns the encoded length implied by a UTF-8 lead byte.
func expectedRuneLen(b byte) int {
	switch {
	case b < 0x80:
		return 1
	case b&0xE0 == 0xC0:
		return 2
	case b&0xF0 == 0xE0:
		return 3
	case b&0xF8 == 0xF0:
		return 4
	default:
		return 1
	}
}

// maxEscapeHold bounds how many bytes a trailing unterminated escape sequence
// may hold back. Anything longer is passed through as-is.
const maxEscapeHold = 128

// splitIncompleteEscape splits p so that rest holds a trailing escape
// sequence whose terminator has not arrived yet. Stripping half a sequence
// would leak its remainder into the document as text.
func splitIncompleteEscape(p []byte) (complete, rest []byte) {
	i := bytes.LastIndexByte(p, 0x1b)
	if i < 0 {
		return p, nil
	}
	tail := p[i:]
	if len(tail) > maxEscapeHold || escapeComplete(tail) {
		return p, nil
	}
	return p[:i], tail
}

// escapeComplete reports whether seq, which starts with ESC, contains its
// terminator.
func escapeComplete(seq []byte) bool {
	if len(seq) < 2 {
		return false
	}
	switch seq[1] {
	case '[':
		// CSI terminates on a final byte in 0x40..0x7e.
		for _, b := range seq[2:] {
			if b >= 0x40 && b <= 0x7e {
				return true
			}
		}
		return false
	case ']':
		// OSC terminates on BEL; the ESC of an ESC-backslash terminator
		// would itself be the last ESC in the buffer.
		return bytes.IndexByte(seq[2:], 0x07) >= 0
	default:
		// Two-byte escapes.
		return true
	}
}

// splitTrailingEOLPrefix splits p so that rest holds a trailing proper prefix
// of a multi-byte EOL marker, which may be completed by the next read.
func splitTrailingEOLPrefix(p []byte, eol string) (complete, rest []byte) {
	for i := len(eol) - 1; i > 0; i-- {
		if bytes.HasSuffix(p, []byte(eol[:i])) {
			return p[:len(p)-i], p[len(p)-i:]
		}
	}
	return p, nil
}

// isPTYClosed reports whether err is the EIO a Linux pty returns once the
// child side has gone away.
func isPTYClosed(err error) bool {
	return err != nil && strings.Contains(err.Error(), "input/output error")
}
