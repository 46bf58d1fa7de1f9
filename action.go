package diffcard

import (
	"context"
	"errors"
	"fmt"
)

// Action dispatch errors.
var (
	ErrUnknownAction = errors.New("unknown action")
	ErrInvalidEvent  = errors.New("invalid action event")
)

// Scope is the level an action applies to.
type Scope string

// Action scopes.
const (
	ScopeDiff Scope = "diff"
	ScopeFile Scope = "file"
	ScopeHunk Scope = "hunk"
	ScopeLine Scope = "line"
)

// ActionEvent describes one triggered action. Events carry every ancestor of
// their scope: a line event references its hunk, file and diff.
type ActionEvent struct {
	Scope    Scope
	ActionID string
	Diff     *Diff
	File     *File
	Hunk     *Hunk
	Line     *Line
}

// NewDiffEvent creates a diff-scoped event.
func NewDiffEvent(d *Diff, actionID string) ActionEvent {
	return ActionEvent{Scope: ScopeDiff, ActionID: actionID, Diff: d}
}

// NewFileEvent creates a file-scoped event.
func NewFileEvent(d *Diff, f *File, actionID string) ActionEvent {
	return ActionEvent{Scope: ScopeFile, ActionID: actionID, Diff: d, File: f}
}

// NewHunkEvent creates a hunk-scoped event.
func NewHunkEvent(d *Diff, f *File, h *Hunk, actionID string) ActionEvent {
	return ActionEvent{Scope: ScopeHunk, ActionID: actionID, Diff: d, File: f, Hunk: h}
}

// NewLineEvent creates a line-scoped event.
func NewLineEvent(d *Diff, f *File, h *Hunk, l *Line, actionID string) ActionEvent {
	return ActionEvent{Scope: ScopeLine, ActionID: actionID, Diff: d, File: f, Hunk: h, Line: l}
}

// Actions returns the actions declared at the event's scope.
func (e ActionEvent) Actions() []Action {
	switch e.Scope {
	case ScopeDiff:
		return e.Diff.Actions
	case ScopeFile:
		return e.File.Actions
	case ScopeHunk:
		return e.Hunk.Actions
	case ScopeLine:
		return e.Line.Actions
	}
	return nil
}

// Action returns the declared action the event refers to.
func (e ActionEvent) Action() (Action, bool) {
	for _, a := range e.Actions() {
		if a.ID == e.ActionID {
			return a, true
		}
	}
	return Action{}, false
}

func (e ActionEvent) check() error {
	missing := e.Diff == nil
	switch e.Scope {
	case ScopeDiff:
	case ScopeFile:
		missing = missing || e.File == nil
	case ScopeHunk:
		missing = missing || e.File == nil || e.Hunk == nil
	case ScopeLine:
		missing = missing || e.File == nil || e.Hunk == nil || e.Line == nil
	default:
		return fmt.Errorf("%w: scope %q", ErrInvalidEvent, e.Scope)
	}
	if missing {
		return fmt.Errorf("%w: %s event is missing an ancestor", ErrInvalidEvent, e.Scope)
	}
	if _, ok := e.Action(); !ok {
		return fmt.Errorf("%w: %q at %s scope", ErrUnknownAction, e.ActionID, e.Scope)
	}
	return nil
}

// ActionGate decides whether an action may proceed.
type ActionGate interface {
	// BeforeAction returns false to cancel the action.
	BeforeAction(ctx context.Context, ev ActionEvent) (bool, error)
}

// ActionHandler performs an action.
type ActionHandler interface {
	HandleAction(ctx context.Context, ev ActionEvent) error
}

// GateFunc adapts a function to ActionGate.
type GateFunc func(ctx context.Context, ev ActionEvent) (bool, error)

// BeforeAction calls f.
func (f GateFunc) BeforeAction(ctx context.Context, ev ActionEvent) (bool, error) {
	return f(ctx, ev)
}

// HandlerFunc adapts a function to ActionHandler.
type HandlerFunc func(ctx context.Context, ev ActionEvent) error

// HandleAction calls f.
func (f HandlerFunc) HandleAction(ctx context.Context, ev ActionEvent) error {
	return f(ctx, ev)
}

// Outcome reports how a dispatch ended.
type Outcome int

// Dispatch outcomes.
const (
	OutcomeCommitted Outcome = iota // Handler ran (or there was none)
	OutcomeBlocked                  // Gate returned false
	OutcomeFrozen                   // Diff carries a receipt
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCommitted:
		return "committed"
	case OutcomeBlocked:
		return "blocked"
	case OutcomeFrozen:
		return "frozen"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Dispatcher runs the gate-then-commit protocol for action events.
// Both Gate and Handler are optional.
type Dispatcher struct {
	Gate    ActionGate
	Handler ActionHandler
}

// Commit is an approved action waiting to be performed.
type Commit struct {
	Event   ActionEvent
	handler ActionHandler
}

// Run performs the action. Handler errors are returned as is.
func (c *Commit) Run(ctx context.Context) error {
	if c.handler == nil {
		return nil
	}
	return c.handler.HandleAction(ctx, c.Event)
}

// Request checks ev against the freeze state and the gate. It returns a nil
// Commit when the action must not proceed; the Outcome says why.
func (d *Dispatcher) Request(ctx context.Context, ev ActionEvent) (*Commit, Outcome, error) {
	if ev.Diff != nil && ev.Diff.Phase() == PhaseFrozen {
		return nil, OutcomeFrozen, nil
	}
	if err := ev.check(); err != nil {
		return nil, OutcomeBlocked, err
	}
	if d.Gate != nil {
		ok, err := d.Gate.BeforeAction(ctx, ev)
		if err != nil {
			return nil, OutcomeBlocked, err
		}
		if !ok {
			return nil, OutcomeBlocked, nil
		}
	}
	return &Commit{Event: ev, handler: d.Handler}, OutcomeCommitted, nil
}

// Dispatch requests ev and, when approved, runs the commit.
func (d *Dispatcher) Dispatch(ctx context.Context, ev ActionEvent) (Outcome, error) {
	commit, outcome, err := d.Request(ctx, ev)
	if err != nil || commit == nil {
		return outcome, err
	}
	return OutcomeCommitted, commit.Run(ctx)
}
