package styles

import (
	"fmt"
	"os"
	"regexp"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// ThemeFile is a custom palette loaded from YAML.
type ThemeFile struct {
	// Name is the theme's display name.
	Name string `yaml:"name"`
	// Colors overrides individual palette entries. All values are either an
	// ANSI index ("1".."255") or a hex color ("#RRGGBB" / "#RGB"); empty
	// entries keep the default.
	Colors ThemeColors `yaml:"colors"`
}

// ThemeColors mirrors the Palette fields as color strings.
type ThemeColors struct {
	Stdout string `yaml:"stdout,omitempty"`
	Stderr string `yaml:"stderr,omitempty"`
	Title  string `yaml:"title,omitempty"`
	Status string `yaml:"status,omitempty"`
	Muted  string `yaml:"muted,omitempty"`
}

var colorPattern = regexp.MustCompile(`^(#[0-9a-fA-F]{3}|#[0-9a-fA-F]{6}|[0-9]{1,3})$`)

// LoadPalette reads a theme file and applies it over the default palette.
func LoadPalette(path string) (Palette, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Palette{}, fmt.Errorf("read theme: %w", err)
	}

	var theme ThemeFile
	if err := yaml.Unmarshal(data, &theme); err != nil {
		return Palette{}, fmt.Errorf("parse theme %s: %w", path, err)
	}
	if err := theme.Validate(); err != nil {
		return Palette{}, fmt.Errorf("theme %s: %w", path, err)
	}

	p := DefaultPalette()
	apply := func(dst *lipgloss.Style, color string) {
		if color != "" {
			*dst = dst.Foreground(lipgloss.Color(color))
		}
	}
	apply(&p.Stdout, theme.Colors.Stdout)
	apply(&p.Stderr, theme.Colors.Stderr)
	apply(&p.Title, theme.Colors.Title)
	apply(&p.Status, theme.Colors.Status)
	apply(&p.Muted, theme.Colors.Muted)
	return p, nil
}

// Validate checks every color value in the theme.
func (t *ThemeFile) Validate() error {
	for field, color := range map[string]string{
		"stdout": t.Colors.Stdout,
		"stderr": t.Colors.Stderr,
		"title":  t.Colors.Title,
		"status": t.Colors.Status,
		"muted":  t.Colors.Muted,
	} {
		if color != "" && !colorPattern.MatchString(color) {
			return fmt.Errorf("colors.%s: %q is not an ANSI index or hex color", field, color)
		}
	}
	return nil
}
