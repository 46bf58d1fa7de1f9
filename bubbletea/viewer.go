package bubbletea

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/diffcard"
)

// Compile-time interface verification.
var _ diffcard.Viewer = (*Viewer)(nil)

// Viewer runs a Model as a full-screen terminal program.
type Viewer struct {
	opts        []Option
	programOpts []tea.ProgramOption
}

// NewViewer creates a Viewer. Model options apply to every View call.
func NewViewer(opts ...Option) *Viewer {
	return &Viewer{opts: opts}
}

// WithProgramOptions adds bubbletea program options, such as custom input
// and output for tests.
func (v *Viewer) WithProgramOptions(opts ...tea.ProgramOption) *Viewer {
	v.programOpts = append(v.programOpts, opts...)
	return v
}

// View displays diff until the user quits or ctx is done. Payloads from
// updates replace the displayed diff as they arrive.
func (v *Viewer) View(ctx context.Context, diff *diffcard.Diff, updates <-chan *diffcard.Diff) error {
	opts := append([]Option{WithContext(ctx)}, v.opts...)
	m := NewModel(diff, opts...)

	popts := append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, v.programOpts...)
	p := tea.NewProgram(m, popts...)

	done := make(chan struct{})
	defer close(done)
	if updates != nil {
		go func() {
			for {
				select {
				case d, ok := <-updates:
					if !ok {
						return
					}
					p.Send(DiffMsg{Diff: d})
				case <-done:
					return
				}
			}
		}()
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
