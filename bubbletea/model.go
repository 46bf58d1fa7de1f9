// Package bubbletea provides an interactive terminal diff card built on
// bubbletea.
package bubbletea

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/diffcard"
	dclipgloss "github.com/fwojciec/diffcard/lipgloss"
)

// statusHeight is the number of rows below the viewport.
const statusHeight = 1

// DiffMsg replaces the displayed diff with an already validated payload.
type DiffMsg struct {
	Diff *diffcard.Diff
}

// PayloadMsg replaces the displayed diff with a raw JSON payload. The
// payload is validated before it is shown.
type PayloadMsg struct {
	Data []byte
}

// actionResultMsg reports the outcome of a dispatched action.
type actionResultMsg struct {
	key     string
	label   string
	outcome diffcard.Outcome
	err     error
}

// target is a focusable scope: the diff actions, a file, a hunk or a line
// that carries actions.
type target struct {
	anchor string
	file   *diffcard.File
	hunk   *diffcard.Hunk
	line   *diffcard.Line
}

// Model is the bubbletea model of a diff card.
type Model struct {
	diff  *diffcard.Diff
	state *diffcard.ViewState
	opts  diffcard.Options

	dispatcher *diffcard.Dispatcher
	validator  diffcard.Validator
	ctx        context.Context
	logger     *slog.Logger

	// Rendering configuration, resolved into renderer by NewModel.
	theme      *dclipgloss.Theme
	lgRenderer *lipgloss.Renderer
	tokenizer  diffcard.Tokenizer
	detector   diffcard.LanguageDetector
	renderer   *dclipgloss.Renderer

	keys     KeyMap
	viewport viewport.Model
	ready    bool
	width    int
	height   int

	rendered dclipgloss.Rendered
	targets  []target
	focus    int
	pending  map[string]bool
	status   string
	fault    error
}

// Option configures a Model.
type Option func(*Model)

// WithTheme sets the theme.
func WithTheme(t *dclipgloss.Theme) Option {
	return func(m *Model) { m.theme = t }
}

// WithRenderer sets the lipgloss renderer used for color output.
func WithRenderer(r *lipgloss.Renderer) Option {
	return func(m *Model) { m.lgRenderer = r }
}

// WithTokenizer enables syntax highlighting.
func WithTokenizer(t diffcard.Tokenizer) Option {
	return func(m *Model) { m.tokenizer = t }
}

// WithLanguageDetector sets how file languages are guessed.
func WithLanguageDetector(d diffcard.LanguageDetector) Option {
	return func(m *Model) { m.detector = d }
}

// WithOptions sets the presentation options.
func WithOptions(opts diffcard.Options) Option {
	return func(m *Model) { m.opts = opts }
}

// WithViewState uses state instead of a fresh one, which lets a host own
// the view mode.
func WithViewState(state *diffcard.ViewState) Option {
	return func(m *Model) { m.state = state }
}

// WithDispatcher sets how actions are gated and performed.
func WithDispatcher(d *diffcard.Dispatcher) Option {
	return func(m *Model) { m.dispatcher = d }
}

// WithValidator sets the validator for PayloadMsg payloads.
func WithValidator(v diffcard.Validator) Option {
	return func(m *Model) { m.validator = v }
}

// WithContext sets the context passed to action gates and handlers.
func WithContext(ctx context.Context) Option {
	return func(m *Model) { m.ctx = ctx }
}

// WithLogger sets the logger. Logs are discarded by default.
func WithLogger(l *slog.Logger) Option {
	return func(m *Model) { m.logger = l }
}

// WithKeyMap overrides the key bindings.
func WithKeyMap(k KeyMap) Option {
	return func(m *Model) { m.keys = k }
}

// NewModel creates a Model for diff. A nil diff shows a loading state until
// a DiffMsg or PayloadMsg arrives.
func NewModel(diff *diffcard.Diff, opts ...Option) Model {
	m := Model{
		diff:       diff,
		opts:       diffcard.DefaultOptions(),
		dispatcher: &diffcard.Dispatcher{},
		ctx:        context.Background(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		keys:       DefaultKeyMap(),
		pending:    map[string]bool{},
	}
	for _, opt := range opts {
		opt(&m)
	}

	if m.state == nil {
		var id string
		if diff != nil {
			id = diff.ID
		}
		m.state = diffcard.NewViewState(id, diffcard.WithDefaultViewMode(m.opts.ViewMode))
	} else {
		m.state.Sync(diff)
	}

	var ropts []dclipgloss.Option
	if m.theme != nil {
		ropts = append(ropts, dclipgloss.WithTheme(m.theme))
	}
	if m.lgRenderer != nil {
		ropts = append(ropts, dclipgloss.WithRenderer(m.lgRenderer))
	}
	if m.tokenizer != nil {
		ropts = append(ropts, dclipgloss.WithTokenizer(m.tokenizer))
	}
	if m.detector != nil {
		ropts = append(ropts, dclipgloss.WithLanguageDetector(m.detector))
	}
	m.renderer = dclipgloss.NewRenderer(ropts...)
	m.targets = m.collectTargets()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		h := m.viewportHeight()
		if !m.ready {
			m.viewport = viewport.New(msg.Width, h)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = h
		}
		m.render()
		return m, nil

	case DiffMsg:
		m.replace(msg.Diff)
		return m, nil

	case PayloadMsg:
		if m.validator == nil {
			m.status = "no validator configured"
			return m, nil
		}
		d, err := m.validator.Validate(msg.Data)
		if err != nil {
			m.logger.Warn("rejected payload", "error", err)
			m.status = "rejected payload: " + err.Error()
			return m, nil
		}
		m.replace(d)
		return m, nil

	case actionResultMsg:
		m.pending = without(m.pending, msg.key)
		switch {
		case msg.err != nil:
			m.logger.Error("action failed", "action", msg.key, "outcome", msg.outcome, "error", msg.err)
			m.status = fmt.Sprintf("%s failed: %v", msg.label, msg.err)
		case msg.outcome == diffcard.OutcomeCommitted:
			m.logger.Info("action committed", "action", msg.key)
			m.status = msg.label + " done"
		default:
			m.logger.Info("action not performed", "action", msg.key, "outcome", msg.outcome)
			m.status = fmt.Sprintf("%s %s", msg.label, msg.outcome)
		}
		m.render()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Down):
		m.moveFocus(1)
	case key.Matches(msg, m.keys.Up):
		m.moveFocus(-1)
	case key.Matches(msg, m.keys.NextFile):
		m.jumpFile(1)
	case key.Matches(msg, m.keys.PrevFile):
		m.jumpFile(-1)
	case key.Matches(msg, m.keys.Toggle):
		m.toggle()
	case key.Matches(msg, m.keys.ViewMode):
		m.state.ToggleViewMode()
		m.render()
	case key.Matches(msg, m.keys.ExpandAll):
		if m.diff != nil {
			m.state.ExpandAll(m.diff)
			m.render()
		}
	case key.Matches(msg, m.keys.CollapseAll):
		if m.diff != nil {
			m.state.CollapseAll(m.diff)
			m.focus = 0
			m.render()
		}
	case key.Matches(msg, m.keys.HalfPageDn):
		m.viewport.HalfViewDown()
	case key.Matches(msg, m.keys.HalfPageUp):
		m.viewport.HalfViewUp()
	case key.Matches(msg, m.keys.Top):
		m.viewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.viewport.GotoBottom()
	default:
		return m.shortcut(msg.String())
	}
	return m, nil
}

// replace adopts next as the displayed diff.
func (m *Model) replace(next *diffcard.Diff) {
	kind := diffcard.Transition(m.diff, next)
	m.state.Sync(next)
	m.diff = next
	if kind == diffcard.TransitionReset {
		m.pending = map[string]bool{}
		m.focus = 0
		m.status = ""
	}
	if next != nil {
		m.logger.Info("diff replaced", "diff", next.ID, "transition", kind, "phase", next.Phase())
	}
	m.render()
}

// render redraws the view into the viewport. Failures are kept and shown
// in place of the diff.
func (m *Model) render() {
	m.targets = m.collectTargets()
	if m.focus >= len(m.targets) {
		m.focus = max(len(m.targets)-1, 0)
	}
	if !m.ready {
		return
	}

	frame := dclipgloss.Frame{Width: m.width, Focus: m.focusAnchor(), Pending: m.pending}
	out, err := m.renderer.RenderDiff(m.diff, m.state, m.opts, frame)
	if err != nil {
		var fault *diffcard.RenderFault
		if errors.As(err, &fault) {
			m.logger.Error("render fault", "error", fault, "stack", string(fault.Stack))
		} else {
			m.logger.Error("render failed", "error", err)
		}
		m.fault = err
		m.rendered = dclipgloss.Rendered{}
		m.viewport.SetContent("failed to render diff: " + err.Error())
		return
	}
	m.fault = nil
	m.rendered = out
	m.viewport.SetContent(out.Content)
	m.scrollToFocus()
}

// collectTargets lists the focusable scopes in display order.
func (m *Model) collectTargets() []target {
	d := m.diff
	if d == nil {
		return nil
	}
	var targets []target
	if len(d.Actions) > 0 {
		targets = append(targets, target{anchor: dclipgloss.DiffAnchor})
	}
	for i := range d.Files {
		f := &d.Files[i]
		targets = append(targets, target{anchor: dclipgloss.FileAnchor(f.ID), file: f})
		if m.state.FileCollapsed(f) {
			continue
		}
		for j := range f.Hunks {
			h := &f.Hunks[j]
			hunkKey := diffcard.HunkKey(f.ID, h.ID)
			targets = append(targets, target{anchor: dclipgloss.HunkAnchor(hunkKey), file: f, hunk: h})
			if m.state.HunkCollapsed(f.ID, h) {
				continue
			}
			for k := range h.Lines {
				l := &h.Lines[k]
				if len(l.Actions) == 0 || !l.Kind.Valid() {
					continue
				}
				anchor := dclipgloss.LineAnchor(hunkKey + ":" + l.ID)
				targets = append(targets, target{anchor: anchor, file: f, hunk: h, line: l})
			}
		}
	}
	return targets
}

func (m *Model) focused() (target, bool) {
	if m.focus < 0 || m.focus >= len(m.targets) {
		return target{}, false
	}
	return m.targets[m.focus], true
}

func (m *Model) focusAnchor() string {
	t, ok := m.focused()
	if !ok {
		return ""
	}
	return t.anchor
}

func (m *Model) moveFocus(delta int) {
	if len(m.targets) == 0 {
		return
	}
	m.focus = min(max(m.focus+delta, 0), len(m.targets)-1)
	m.render()
}

func (m *Model) jumpFile(dir int) {
	for i := m.focus + dir; i >= 0 && i < len(m.targets); i += dir {
		t := m.targets[i]
		if t.file != nil && t.hunk == nil {
			m.focus = i
			m.render()
			return
		}
	}
}

// toggle collapses or expands the focused file or hunk.
func (m *Model) toggle() {
	t, ok := m.focused()
	if !ok {
		return
	}
	switch {
	case t.line != nil:
		return
	case t.hunk != nil:
		m.state.ToggleHunk(t.file.ID, t.hunk)
	case t.file != nil:
		m.state.ToggleFile(t.file)
	default:
		return
	}
	m.render()
}

func (m *Model) scrollToFocus() {
	line, ok := m.rendered.Anchors[m.focusAnchor()]
	if !ok {
		return
	}
	switch {
	case line < m.viewport.YOffset:
		m.viewport.SetYOffset(line)
	case line >= m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(line - m.viewport.Height + 1)
	}
}

// shortcut runs the action bound to keyName on the focused scope, falling
// back to the diff-level actions.
func (m Model) shortcut(keyName string) (tea.Model, tea.Cmd) {
	if m.diff == nil {
		return m, nil
	}
	t, _ := m.focused()
	ev, anchor, ok := m.findShortcut(t, keyName)
	if !ok {
		return m, nil
	}
	if !m.diff.ActionsEnabled() {
		m.status = "read-only: " + m.diff.Receipt.Summary
		return m, nil
	}

	action, _ := ev.Action()
	actionKey := dclipgloss.ActionKey(anchor, action.ID)
	if m.pending[actionKey] {
		return m, nil
	}
	m.pending = with(m.pending, actionKey)
	m.status = action.Label + "…"
	m.logger.Info("action requested", "action", actionKey, "scope", ev.Scope)
	m.render()

	dispatcher, ctx := m.dispatcher, m.ctx
	return m, func() tea.Msg {
		outcome, err := dispatcher.Dispatch(ctx, ev)
		return actionResultMsg{key: actionKey, label: action.Label, outcome: outcome, err: err}
	}
}

func (m *Model) findShortcut(t target, keyName string) (diffcard.ActionEvent, string, bool) {
	d := m.diff
	match := func(actions []diffcard.Action) (string, bool) {
		for _, a := range actions {
			if a.Shortcut != "" && a.Shortcut == keyName {
				return a.ID, true
			}
		}
		return "", false
	}

	switch {
	case t.line != nil:
		if id, ok := match(t.line.Actions); ok {
			return diffcard.NewLineEvent(d, t.file, t.hunk, t.line, id), t.anchor, true
		}
	case t.hunk != nil:
		if id, ok := match(t.hunk.Actions); ok {
			return diffcard.NewHunkEvent(d, t.file, t.hunk, id), t.anchor, true
		}
	case t.file != nil:
		if id, ok := match(t.file.Actions); ok {
			return diffcard.NewFileEvent(d, t.file, id), t.anchor, true
		}
	}
	if id, ok := match(d.Actions); ok {
		return diffcard.NewDiffEvent(d, id), dclipgloss.DiffAnchor, true
	}
	return diffcard.ActionEvent{}, "", false
}

func (m *Model) viewportHeight() int {
	h := m.height - statusHeight
	if m.opts.MaxHeight > 0 && m.opts.MaxHeight < h {
		h = m.opts.MaxHeight
	}
	return max(h, 1)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	return m.viewport.View() + "\n" + m.statusLine()
}

func (m Model) statusLine() string {
	parts := []string{string(m.state.ViewMode())}
	if m.diff != nil && m.diff.Phase() == diffcard.PhaseFrozen {
		parts = append(parts, "read-only")
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	parts = append(parts, fmt.Sprintf("%3.f%%", m.viewport.ScrollPercent()*100))
	return strings.Join(parts, " · ")
}

// Focus returns the anchor key of the focused scope.
func (m Model) Focus() string {
	return m.focusAnchor()
}

// ViewState returns the model's view state.
func (m Model) ViewState() *diffcard.ViewState {
	return m.state
}

// Diff returns the displayed diff.
func (m Model) Diff() *diffcard.Diff {
	return m.diff
}

// Status returns the status line message.
func (m Model) Status() string {
	return m.status
}

// Pending reports whether the action at the given key awaits a decision.
func (m Model) Pending(actionKey string) bool {
	return m.pending[actionKey]
}

// Fault returns the last rendering failure, if any.
func (m Model) Fault() error {
	return m.fault
}

// Anchors returns the output line of each scope in the last render.
func (m Model) Anchors() map[string]int {
	return m.rendered.Anchors
}

func with(set map[string]bool, k string) map[string]bool {
	out := maps.Clone(set)
	if out == nil {
		out = make(map[string]bool, 1)
	}
	out[k] = true
	return out
}

func without(set map[string]bool, k string) map[string]bool {
	out := maps.Clone(set)
	delete(out, k)
	return out
}
