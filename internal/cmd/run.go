package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tailpane/tailpane/internal/capture"
	"github.com/tailpane/tailpane/internal/config"
	"github.com/tailpane/tailpane/internal/console"
	"github.com/tailpane/tailpane/internal/event"
	"github.com/tailpane/tailpane/internal/logging"
	"github.com/tailpane/tailpane/internal/tui"
	"github.com/tailpane/tailpane/internal/tui/styles"
)

func runTailpane(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)

	transcriptPath, _ := cmd.Flags().GetString("transcript")
	plain, _ := cmd.Flags().GetBool("plain")

	log, err := buildLogger(cfg, plain)
	if err != nil {
		return err
	}
	defer log.Close()

	pal, err := buildPalette(cfg)
	if err != nil {
		return err
	}

	sched := console.NewScheduler()
	defer sched.Close()
	doc := console.NewDocument()
	bus := event.NewBus()

	var app *tui.App
	opts := []console.Option{console.WithMode(console.ParseMode(cfg.Console.Mode))}
	if !plain {
		app = tui.NewApp(pal, strings.Join(args, " "), cfg.Console.Mode, cfg.Console.MaxLines)
		opts = append(opts, console.WithViewport(app.Viewport()))
	}
	c := console.New(doc, sched, opts...)
	c.SetMaxLines(cfg.Console.MaxLines)

	var transcript *capture.Ring
	if transcriptPath != "" && cfg.Capture.TranscriptBytes > 0 {
		transcript = capture.NewRing(cfg.Capture.TranscriptBytes)
	}

	outSink, errSink := buildSinks(c, &pal, transcript, plain)

	runner := capture.NewRunner(capture.Config{
		Command:        args,
		PTY:            cfg.Capture.PTY,
		StripANSI:      cfg.Capture.StripANSI,
		ReadBufferSize: cfg.Capture.ReadBufferSize,
		EOL:            c.EOL(),
	}, outSink, errSink, bus, log)

	if watcher := watchConfig(c, app, log); watcher != nil {
		defer watcher.Close()
	}

	var runErr error
	if plain {
		runErr = runPlain(runner)
	} else {
		runErr = runPane(runner, app, bus, c, sched, doc)
	}

	if transcript != nil {
		if werr := os.WriteFile(transcriptPath, transcript.Bytes(), 0o644); werr != nil {
			log.Error("write transcript", "path", transcriptPath, "error", werr)
			if runErr == nil {
				runErr = fmt.Errorf("write transcript: %w", werr)
			}
		}
	}
	return runErr
}

// applyFlags layers explicit command-line flags over the loaded config.
// pty and strip-ansi are bound straight into viper, so Load already saw them.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if insert, _ := cmd.Flags().GetBool("insert"); insert {
		cfg.Console.Mode = "insert"
	}
	if cmd.Flags().Changed("max-lines") {
		maxLines, _ := cmd.Flags().GetInt("max-lines")
		cfg.Console.MaxLines = maxLines
	}
}

// buildLogger keeps diagnostics off the terminal while the pane owns it: with
// no log file configured the pane gets a nop logger, plain mode gets stderr.
func buildLogger(cfg *config.Config, plain bool) (*logging.Logger, error) {
	if cfg.Logging.File == "" && !plain {
		return logging.NopLogger(), nil
	}
	log, err := logging.NewLogger(cfg.Logging.File, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	return log, nil
}

func buildPalette(cfg *config.Config) (styles.Palette, error) {
	pal := styles.DefaultPalette()
	if cfg.TUI.ThemeFile != "" {
		loaded, err := styles.LoadPalette(cfg.TUI.ThemeFile)
		if err != nil {
			return pal, fmt.Errorf("load theme: %w", err)
		}
		pal = loaded
	}
	return pal.WithStreamColors(cfg.TUI.StdoutColor, cfg.TUI.StderrColor), nil
}

// buildSinks wires the stream sinks. In plain mode captured output passes
// through to the real terminal unstyled; in pane mode the palette tags each
// stream. A transcript ring, when present, receives both streams.
func buildSinks(c *console.Console, pal *styles.Palette, transcript *capture.Ring, plain bool) (*console.Sink, *console.Sink) {
	if plain {
		outSink := c.NewSink(nil, passthrough(os.Stdout, transcript))
		errSink := c.NewSink(nil, passthrough(os.Stderr, transcript))
		return outSink, errSink
	}
	var tw io.Writer
	if transcript != nil {
		tw = transcript
	}
	return c.NewSink(&pal.Stdout, tw), c.NewSink(&pal.Stderr, tw)
}

func passthrough(w io.Writer, transcript *capture.Ring) io.Writer {
	if transcript == nil {
		return w
	}
	return io.MultiWriter(w, transcript)
}

// watchConfig reloads console.max_lines when the config file changes. Other
// fields are fixed at startup. app may be nil in plain mode.
func watchConfig(c *console.Console, app *tui.App, log *logging.Logger) *config.Watcher {
	path := viper.ConfigFileUsed()
	if path == "" {
		return nil
	}
	watcher, err := config.NewWatcher(path,
		func(cfg *config.Config) {
			log.Info("config reloaded", "max_lines", cfg.Console.MaxLines)
			c.SetMaxLines(cfg.Console.MaxLines)
			if app != nil {
				app.SendMaxLines(cfg.Console.MaxLines)
			}
		},
		func(err error) {
			log.Warn("config reload failed", "error", err)
		})
	if err != nil {
		log.Warn("config watch unavailable", "path", path, "error", err)
		return nil
	}
	return watcher
}

// runPane drives the full TUI: every document change is re-rendered on the
// scheduler goroutine and pushed to the program as a snapshot.
func runPane(runner *capture.Runner, app *tui.App, bus *event.Bus, c *console.Console, sched *console.Scheduler, doc *console.Document) error {
	app.SubscribeEvents(bus)

	_ = sched.Run(func() {
		doc.Subscribe(func(console.Change) {
			app.SendContent(tui.Render(doc.Runs()), lineCount(doc.Text(), c.EOL()), c.DroppedInserts())
		})
	})

	if err := runner.Start(); err != nil {
		return err
	}
	go func() {
		// The pane stays open after exit so the tail can be read; the
		// exit event reaches the status line through the bus.
		_ = runner.Wait()
	}()

	err := app.Run()
	runner.Stop()
	return err
}

// runPlain skips the pane entirely: output passes through to the terminal and
// the process exit status becomes ours.
func runPlain(runner *capture.Runner) error {
	if err := runner.Start(); err != nil {
		return err
	}
	return runner.Wait()
}

func lineCount(text, eol string) int {
	if text == "" {
		return 0
	}
	return strings.Count(text, eol) + 1
}
