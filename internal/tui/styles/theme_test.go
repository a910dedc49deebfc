package styles

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func defaultColor(s string) lipgloss.TerminalColor {
	return lipgloss.Color(s)
}

func TestLoadPalette(t *testing.T) {
	path := filepath.Join(t.TempDir(), "theme.yaml")
	theme := `
name: Test Theme
colors:
  stdout: "#00ff00"
  stderr: "196"
`
	if err := os.WriteFile(path, []byte(theme), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadPalette(path)
	if err != nil {
		t.Fatalf("LoadPalette returned error: %v", err)
	}
	if got := p.Stdout.GetForeground(); got != defaultColor("#00ff00") {
		t.Errorf("stdout foreground = %v, expected #00ff00", got)
	}
	if got := p.Stderr.GetForeground(); got != defaultColor("196") {
		t.Errorf("stderr foreground = %v, expected 196", got)
	}
	// Unset entries keep the defaults.
	if got, want := p.Title.GetForeground(), DefaultPalette().Title.GetForeground(); got != want {
		t.Errorf("title foreground = %v, expected default %v", got, want)
	}
}

func TestLoadPalette_InvalidColor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "theme.yaml")
	if err := os.WriteFile(path, []byte("colors:\n  stdout: chartreuse\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadPalette(path); err == nil {
		t.Error("LoadPalette accepted a named color")
	}
}

func TestLoadPalette_MissingFile(t *testing.T) {
	if _, err := LoadPalette(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("LoadPalette of a missing file did not fail")
	}
}

func TestThemeValidate(t *testing.T) {
	tests := []struct {
		name    string
		color   string
		wantErr bool
	}{
		{name: "empty keeps default", color: ""},
		{name: "short hex", color: "#fff"},
		{name: "long hex", color: "#a1b2c3"},
		{name: "ansi index", color: "42"},
		{name: "named color rejected", color: "red", wantErr: true},
		{name: "malformed hex", color: "#12345", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			theme := ThemeFile{Colors: ThemeColors{Stdout: tt.color}}
			err := theme.Validate()
			if tt.wantErr && err == nil {
				t.Errorf("Validate accepted %q", tt.color)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate rejected %q: %v", tt.color, err)
			}
		})
	}
}
