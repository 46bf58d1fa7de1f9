package bubbletea_test

import (
	"bytes"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/diffcard"
	"github.com/fwojciec/diffcard/bubbletea"
	"github.com/muesli/termenv"
)

// trueColorRenderer creates a lipgloss renderer that outputs true colors.
// This is useful for testing color output without affecting global state.
func trueColorRenderer() *lipgloss.Renderer {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.TrueColor)
	return r
}

// asciiRenderer creates a lipgloss renderer without colors.
func asciiRenderer() *lipgloss.Renderer {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.Ascii)
	return r
}

// extractLastLine returns the last non-empty line from the output.
func extractLastLine(s string) string {
	lines := bytes.Split([]byte(s), []byte("\n"))
	for i := len(lines) - 1; i >= 0; i-- {
		line := bytes.TrimSpace(lines[i])
		if len(line) > 0 {
			return string(lines[i])
		}
	}
	return ""
}

func intPtr(n int) *int {
	return &n
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// update feeds msgs to m in order and returns the resulting model and the
// command from the last message.
func update(m bubbletea.Model, msgs ...tea.Msg) (bubbletea.Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(bubbletea.Model)
	}
	return m, cmd
}

// sized returns m after a window size message.
func sized(m bubbletea.Model) bubbletea.Model {
	m, _ = update(m, tea.WindowSizeMsg{Width: 80, Height: 24})
	return m
}

func loginDiff() *diffcard.Diff {
	return &diffcard.Diff{
		ID:    "diff-1",
		Title: "Add login",
		Files: []diffcard.File{
			{
				ID:     "f1",
				Path:   "auth/login.go",
				Status: diffcard.FileModified,
				Hunks: []diffcard.Hunk{
					{
						ID:       "h1",
						OldStart: intPtr(10),
						NewStart: intPtr(10),
						Lines: []diffcard.Line{
							{ID: "l1", Kind: diffcard.LineContext, LineNumber: intPtr(10), Content: "package auth"},
							{ID: "l2", Kind: diffcard.LineRemove, LineNumber: intPtr(11), Content: "func login() {}"},
							{ID: "l3", Kind: diffcard.LineAdd, LineNumber: intPtr(11), Content: "func login(user string) {}",
								Actions: []diffcard.Action{{ID: "comment", Label: "Comment", Shortcut: "c"}}},
						},
						Actions: []diffcard.Action{{ID: "apply-hunk", Label: "Apply hunk", Tone: diffcard.TonePrimary, Shortcut: "h"}},
					},
				},
				Actions: []diffcard.Action{{ID: "revert-file", Label: "Revert", Tone: diffcard.ToneDanger, Shortcut: "r"}},
			},
			{
				ID:     "f2",
				Path:   "README.md",
				Status: diffcard.FileAdded,
				Hunks: []diffcard.Hunk{
					{ID: "h1", Lines: []diffcard.Line{{ID: "l1", Kind: diffcard.LineAdd, Content: "# Title"}}},
				},
			},
		},
		Actions: []diffcard.Action{{ID: "apply", Label: "Apply all", Tone: diffcard.TonePrimary, Shortcut: "a"}},
	}
}

func frozen(d *diffcard.Diff) *diffcard.Diff {
	c := *d
	c.Receipt = &diffcard.Receipt{
		Kind:      diffcard.ReceiptApply,
		Status:    diffcard.ReceiptSuccess,
		Summary:   "Apply all applied",
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	return &c
}
