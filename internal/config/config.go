// Package config defines tailpane's configuration surface and loads it with
// viper from file, environment, and defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the complete tailpane configuration.
type Config struct {
	Console ConsoleConfig `mapstructure:"console"`
	Capture CaptureConfig `mapstructure:"capture"`
	TUI     TUIConfig     `mapstructure:"tui"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ConsoleConfig controls the document and its framing.
type ConsoleConfig struct {
	// Mode is "append" (new output at the bottom, oldest lines trimmed) or
	// "insert" (new output at the top, newest lines trimmed). Fixed for the
	// lifetime of a console.
	Mode string `mapstructure:"mode"`
	// MaxLines is the maximum retained line count; 0 disables trimming.
	// Reloadable at runtime; takes effect on the next document change.
	MaxLines int `mapstructure:"max_lines"`
}

// CaptureConfig controls how process output is read.
type CaptureConfig struct {
	// ReadBufferSize is the per-read chunk size in bytes.
	ReadBufferSize int `mapstructure:"read_buffer_size"`
	// PTY runs the command on a pseudo-terminal, merging stdout and stderr.
	PTY bool `mapstructure:"pty"`
	// StripANSI removes terminal escape sequences before display.
	StripANSI bool `mapstructure:"strip_ansi"`
	// TranscriptBytes is the capacity of the raw transcript ring buffer.
	TranscriptBytes int `mapstructure:"transcript_bytes"`
}

// TUIConfig controls the display.
type TUIConfig struct {
	// StdoutColor and StderrColor are lipgloss color values (ANSI index or
	// hex) tagging each stream's text. Empty means the default style.
	StdoutColor string `mapstructure:"stdout_color"`
	StderrColor string `mapstructure:"stderr_color"`
	// ThemeFile optionally points at a YAML palette overriding the built-in
	// colors.
	ThemeFile string `mapstructure:"theme_file"`
}

// LoggingConfig controls diagnostic logging.
type LoggingConfig struct {
	// Level is DEBUG, INFO, WARN, or ERROR.
	Level string `mapstructure:"level"`
	// File is the log destination; empty logs to stderr.
	File string `mapstructure:"file"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Console: ConsoleConfig{
			Mode:     "append",
			MaxLines: 1000,
		},
		Capture: CaptureConfig{
			ReadBufferSize:  4096,
			PTY:             false,
			StripANSI:       true,
			TranscriptBytes: 256 * 1024,
		},
		TUI: TUIConfig{
			StdoutColor: "",
			StderrColor: "1",
		},
		Logging: LoggingConfig{
			Level: "INFO",
		},
	}
}

// SetDefaults registers the defaults with viper so they apply even without a
// config file.
func SetDefaults() {
	d := DefaultConfig()

	viper.SetDefault("console.mode", d.Console.Mode)
	viper.SetDefault("console.max_lines", d.Console.MaxLines)

	viper.SetDefault("capture.read_buffer_size", d.Capture.ReadBufferSize)
	viper.SetDefault("capture.pty", d.Capture.PTY)
	viper.SetDefault("capture.strip_ansi", d.Capture.StripANSI)
	viper.SetDefault("capture.transcript_bytes", d.Capture.TranscriptBytes)

	viper.SetDefault("tui.stdout_color", d.TUI.StdoutColor)
	viper.SetDefault("tui.stderr_color", d.TUI.StderrColor)
	viper.SetDefault("tui.theme_file", d.TUI.ThemeFile)

	viper.SetDefault("logging.level", d.Logging.Level)
	viper.SetDefault("logging.file", d.Logging.File)
}

// Load unmarshals the current viper state into a validated Config.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFile reads a specific config file into a validated Config without
// touching global viper state.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field values and reports the first problem found.
func (c *Config) Validate() error {
	if c.Console.Mode != "append" && c.Console.Mode != "insert" {
		return fmt.Errorf("console.mode must be \"append\" or \"insert\", got %q", c.Console.Mode)
	}
	if c.Console.MaxLines < 0 {
		return fmt.Errorf("console.max_lines must be >= 0, got %d", c.Console.MaxLines)
	}
	if c.Capture.ReadBufferSize < 1 {
		return fmt.Errorf("capture.read_buffer_size must be >= 1, got %d", c.Capture.ReadBufferSize)
	}
	if c.Capture.TranscriptBytes < 0 {
		return fmt.Errorf("capture.transcript_bytes must be >= 0, got %d", c.Capture.TranscriptBytes)
	}
	switch strings.ToUpper(c.Logging.Level) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("logging.level must be one of DEBUG, INFO, WARN, ERROR, got %q", c.Logging.Level)
	}
	return nil
}

// ConfigDir returns the directory tailpane searches for its config file.
func ConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "tailpane")
	}
	return "."
}
