package diffcard

import (
	"fmt"
	"strconv"
)

// Options controls how a diff is presented.
type Options struct {
	ViewMode        ViewMode
	ShowLineNumbers bool
	WrapLines       bool
	MaxHeight       int  // Rows of output before scrolling; 0 means unbounded
	IsStreaming     bool // Producer may still be filling in the payload
}

// DefaultOptions returns the options used when a host sets none.
func DefaultOptions() Options {
	return Options{ViewMode: ViewUnified, ShowLineNumbers: true}
}

// View is the render tree of a diff.
type View struct {
	DiffID      string
	Title       string
	Description string
	Meta        *Meta
	Summary     Summary
	Options     Options
	Receipt     *Receipt // Non-nil when the diff is frozen
	Loading     bool     // No payload yet
	Empty       bool     // Payload has no files
	Placeholder bool     // Files are still streaming in
	Actions     []ActionView
	Files       []FileView
}

// Frozen reports whether the view is read-only.
func (v *View) Frozen() bool {
	return v.Receipt != nil
}

// FileView is the render tree of one file.
type FileView struct {
	File        *File
	Collapsed   bool
	Emphasized  bool
	Placeholder bool
	Insertions  int
	Deletions   int
	Actions     []ActionView
	Hunks       []HunkView
}

// HunkView is the render tree of one hunk. Lines is filled in unified mode,
// Rows in split mode.
type HunkView struct {
	Hunk        *Hunk
	Key         string
	Header      string
	Collapsed   bool
	Placeholder bool
	Actions     []ActionView
	Lines       []LineView
	Rows        []RowView
}

// LineView is one rendered line.
type LineView struct {
	Line     *Line
	Key      string
	Segments []Segment
	Actions  []ActionView
}

// RowView is one side-by-side row. Either side may be nil.
type RowView struct {
	Key   string
	Left  *LineView
	Right *LineView
}

// ActionView is an action as presented at a scope.
type ActionView struct {
	Action   Action
	Scope    Scope
	Disabled bool
}

// Assemble builds the render tree for d using the collapse flags in state.
// A nil d yields a loading view. The mode in state wins over opts.ViewMode
// when state is non-nil.
func Assemble(d *Diff, state *ViewState, opts Options) (*View, error) {
	if state != nil {
		opts.ViewMode = state.ViewMode()
	}
	if opts.ViewMode == "" {
		opts.ViewMode = ViewUnified
	}
	if d == nil {
		return &View{Loading: true, Options: opts}, nil
	}
	if state == nil {
		state = NewViewState(d.ID, WithDefaultViewMode(opts.ViewMode))
	} else if state.DiffID() != d.ID {
		return nil, fmt.Errorf("view state belongs to diff %q, not %q", state.DiffID(), d.ID)
	}

	streaming := opts.IsStreaming && !d.IsComplete()
	disabled := !d.ActionsEnabled()

	v := &View{
		DiffID:      d.ID,
		Title:       d.Title,
		Description: d.Description,
		Meta:        d.Meta,
		Summary:     d.ComputedSummary(),
		Options:     opts,
		Receipt:     d.Receipt,
		Actions:     actionViews(d.Actions, ScopeDiff, disabled),
	}
	if len(d.Files) == 0 {
		v.Placeholder = streaming
		v.Empty = !streaming
		return v, nil
	}

	v.Files = make([]FileView, len(d.Files))
	for i := range d.Files {
		f := &d.Files[i]
		ins, del := f.Stats()
		fv := FileView{
			File:        f,
			Collapsed:   state.FileCollapsed(f),
			Emphasized:  d.IsEmphasized(f.ID),
			Placeholder: streaming && len(f.Hunks) == 0,
			Insertions:  ins,
			Deletions:   del,
			Actions:     actionViews(f.Actions, ScopeFile, disabled),
		}
		if !fv.Collapsed {
			fv.Hunks = make([]HunkView, len(f.Hunks))
			for j := range f.Hunks {
				fv.Hunks[j] = assembleHunk(f, &f.Hunks[j], state, opts.ViewMode, streaming, disabled)
			}
		}
		v.Files[i] = fv
	}
	return v, nil
}

func assembleHunk(f *File, h *Hunk, state *ViewState, mode ViewMode, streaming, disabled bool) HunkView {
	hv := HunkView{
		Hunk:        h,
		Key:         HunkKey(f.ID, h.ID),
		Header:      HunkHeader(h),
		Collapsed:   state.HunkCollapsed(f.ID, h),
		Placeholder: streaming && len(h.Lines) == 0,
		Actions:     actionViews(h.Actions, ScopeHunk, disabled),
	}
	if hv.Collapsed {
		return hv
	}

	switch mode {
	case ViewSplit:
		rows := PairLines(h.Lines)
		hv.Rows = make([]RowView, len(rows))
		for i, row := range rows {
			rv := RowView{Key: RowKey(f.ID, h.ID, row)}
			if row.Left != nil {
				lv := lineView(f, h, row.Left, disabled)
				rv.Left = &lv
			}
			switch {
			case row.Right == row.Left:
				rv.Right = rv.Left
			case row.Right != nil:
				lv := lineView(f, h, row.Right, disabled)
				rv.Right = &lv
			}
			hv.Rows[i] = rv
		}
	case ViewUnified:
		hv.Lines = make([]LineView, 0, len(h.Lines))
		for i := range h.Lines {
			if !h.Lines[i].Kind.Valid() {
				continue
			}
			hv.Lines = append(hv.Lines, lineView(f, h, &h.Lines[i], disabled))
		}
	default:
		panic("diffcard: unhandled view mode " + string(mode))
	}
	return hv
}

func lineView(f *File, h *Hunk, l *Line, disabled bool) LineView {
	return LineView{
		Line:     l,
		Key:      HunkKey(f.ID, h.ID) + ":" + l.ID,
		Segments: Highlight(l.Content, l.Highlights),
		Actions:  actionViews(l.Actions, ScopeLine, disabled),
	}
}

func actionViews(actions []Action, scope Scope, disabled bool) []ActionView {
	if len(actions) == 0 {
		return nil
	}
	views := make([]ActionView, len(actions))
	for i, a := range actions {
		views[i] = ActionView{Action: a, Scope: scope, Disabled: disabled}
	}
	return views
}

// HunkHeader returns the hunk's header text, falling back to an
// "@@ -old +new @@" marker built from its start lines.
func HunkHeader(h *Hunk) string {
	if h.Header != "" {
		return h.Header
	}
	if h.OldStart == nil && h.NewStart == nil {
		return ""
	}
	header := "@@"
	if h.OldStart != nil {
		header += " -" + strconv.Itoa(*h.OldStart)
	}
	if h.NewStart != nil {
		header += " +" + strconv.Itoa(*h.NewStart)
	}
	return header + " @@"
}
