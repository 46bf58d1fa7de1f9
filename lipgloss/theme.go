// Package lipgloss draws diff views as styled terminal text using lipgloss.
package lipgloss

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/diffcard"
	"github.com/lucasb-eyer/go-colorful"
)

// Background blend strengths for changed lines.
const (
	lineIntensity      = 0.15 // Whole added/deleted line
	highlightIntensity = 0.35 // Emphasized span within a line
)

// Theme is a named palette.
type Theme struct {
	name    string
	palette diffcard.Palette
}

// Name returns the theme name.
func (t *Theme) Name() string {
	return t.name
}

// Palette returns the theme's colors.
func (t *Theme) Palette() diffcard.Palette {
	return t.palette
}

// DefaultTheme returns a dark theme loosely based on One Dark.
func DefaultTheme() *Theme {
	return &Theme{
		name: "default",
		palette: diffcard.Palette{
			Added:      "#98c379",
			Deleted:    "#e06c75",
			Context:    "#abb2bf",
			Muted:      "#5c6370",
			Header:     "#61afef",
			Background: "#282c34",
			Foreground: "#abb2bf",
			Primary:    "#61afef",
			Danger:     "#e06c75",
			Success:    "#98c379",
			Warning:    "#e5c07b",
			Keyword:    "#c678dd",
			Comment:    "#5c6370",
			String:     "#98c379",
			Number:     "#d19a66",
			Operator:   "#56b6c2",
			Builtin:    "#e5c07b",
			Function:   "#61afef",
			Name:       "#e06c75",
		},
	}
}

// TestTheme returns a theme of pure colors on black so tests can assert
// exact escape sequences: added lines blend to 48;2;0;38;0 and added
// highlights to 48;2;0;89;0.
func TestTheme() *Theme {
	return &Theme{
		name: "test",
		palette: diffcard.Palette{
			Added:      "#00ff00",
			Deleted:    "#ff0000",
			Context:    "#ffffff",
			Muted:      "#808080",
			Header:     "#0000ff",
			Background: "#000000",
			Foreground: "#ffffff",
			Primary:    "#0000ff",
			Danger:     "#ff0000",
			Success:    "#00ff00",
			Warning:    "#ffff00",
			Keyword:    "#ff00ff",
			Comment:    "#888888",
			String:     "#00ffff",
			Number:     "#ff8800",
			Operator:   "#cccccc",
			Builtin:    "#ffcc00",
			Function:   "#0088ff",
			Name:       "#ff0088",
		},
	}
}

// ThemeByName returns the theme with the given name.
func ThemeByName(name string) (*Theme, error) {
	switch name {
	case "", "default":
		return DefaultTheme(), nil
	case "test":
		return TestTheme(), nil
	}
	return nil, fmt.Errorf("unknown theme %q", name)
}

// blend mixes c into the theme background at the given strength.
func (t *Theme) blend(c diffcard.Color, strength float64) lipgloss.Color {
	bg, err := colorful.Hex(string(t.palette.Background))
	if err != nil {
		return lipgloss.Color(c)
	}
	fg, err := colorful.Hex(string(c))
	if err != nil {
		return lipgloss.Color(c)
	}
	return lipgloss.Color(bg.BlendRgb(fg, strength).Clamped().Hex())
}

// styles holds every style the renderer draws with.
type styles struct {
	Title       lipgloss.Style
	Description lipgloss.Style
	Meta        lipgloss.Style
	Insertions  lipgloss.Style
	Deletions   lipgloss.Style

	FileHeader           lipgloss.Style
	FileHeaderEmphasized lipgloss.Style
	FileStatus           lipgloss.Style
	HunkHeader           lipgloss.Style
	HunkSummary          lipgloss.Style
	Focus                lipgloss.Style

	Gutter lipgloss.Style

	AddedLine        lipgloss.Style
	AddedPrefix      lipgloss.Style
	AddedHighlight   lipgloss.Style
	DeletedLine      lipgloss.Style
	DeletedPrefix    lipgloss.Style
	DeletedHighlight lipgloss.Style
	ContextLine      lipgloss.Style
	ChangeHighlight  lipgloss.Style
	Filler           lipgloss.Style
	Separator        lipgloss.Style

	ActionPrimary  lipgloss.Style
	ActionNeutral  lipgloss.Style
	ActionDanger   lipgloss.Style
	ActionDisabled lipgloss.Style

	ReceiptSuccess   lipgloss.Style
	ReceiptPartial   lipgloss.Style
	ReceiptFailed    lipgloss.Style
	ReceiptCancelled lipgloss.Style

	Placeholder lipgloss.Style
	Notice      lipgloss.Style
}

func (t *Theme) styles(r *lipgloss.Renderer) styles {
	p := t.palette
	color := func(c diffcard.Color) lipgloss.Color { return lipgloss.Color(c) }

	addedBg := t.blend(p.Added, lineIntensity)
	deletedBg := t.blend(p.Deleted, lineIntensity)

	return styles{
		Title:       r.NewStyle().Bold(true).Foreground(color(p.Foreground)),
		Description: r.NewStyle().Foreground(color(p.Context)),
		Meta:        r.NewStyle().Foreground(color(p.Muted)),
		Insertions:  r.NewStyle().Foreground(color(p.Added)),
		Deletions:   r.NewStyle().Foreground(color(p.Deleted)),

		FileHeader:           r.NewStyle().Foreground(color(p.Header)),
		FileHeaderEmphasized: r.NewStyle().Foreground(color(p.Header)).Bold(true),
		FileStatus:           r.NewStyle().Foreground(color(p.Muted)),
		HunkHeader:           r.NewStyle().Foreground(color(p.Muted)),
		HunkSummary:          r.NewStyle().Foreground(color(p.Context)).Italic(true),
		Focus:                r.NewStyle().Foreground(color(p.Primary)).Bold(true),

		Gutter: r.NewStyle().Foreground(color(p.Muted)),

		AddedLine:        r.NewStyle().Foreground(color(p.Foreground)).Background(addedBg),
		AddedPrefix:      r.NewStyle().Foreground(color(p.Added)).Background(addedBg),
		AddedHighlight:   r.NewStyle().Foreground(color(p.Foreground)).Background(t.blend(p.Added, highlightIntensity)),
		DeletedLine:      r.NewStyle().Foreground(color(p.Foreground)).Background(deletedBg),
		DeletedPrefix:    r.NewStyle().Foreground(color(p.Deleted)).Background(deletedBg),
		DeletedHighlight: r.NewStyle().Foreground(color(p.Foreground)).Background(t.blend(p.Deleted, highlightIntensity)),
		ContextLine:      r.NewStyle().Foreground(color(p.Context)),
		ChangeHighlight:  r.NewStyle().Foreground(color(p.Foreground)).Background(t.blend(p.Warning, highlightIntensity)),
		Filler:           r.NewStyle().Foreground(color(p.Muted)),
		Separator:        r.NewStyle().Foreground(color(p.Muted)),

		ActionPrimary:  r.NewStyle().Foreground(color(p.Primary)).Bold(true),
		ActionNeutral:  r.NewStyle().Foreground(color(p.Foreground)),
		ActionDanger:   r.NewStyle().Foreground(color(p.Danger)),
		ActionDisabled: r.NewStyle().Foreground(color(p.Muted)).Faint(true),

		ReceiptSuccess:   r.NewStyle().Foreground(color(p.Success)).Bold(true),
		ReceiptPartial:   r.NewStyle().Foreground(color(p.Warning)).Bold(true),
		ReceiptFailed:    r.NewStyle().Foreground(color(p.Danger)).Bold(true),
		ReceiptCancelled: r.NewStyle().Foreground(color(p.Muted)).Bold(true),

		Placeholder: r.NewStyle().Foreground(color(p.Muted)).Italic(true),
		Notice:      r.NewStyle().Foreground(color(p.Muted)),
	}
}
