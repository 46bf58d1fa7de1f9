package diffcard

// ViewMode selects between the two diff layouts.
type ViewMode string

// View modes.
const (
	ViewUnified ViewMode = "unified"
	ViewSplit   ViewMode = "split"
)

// ViewState owns the transient view state of one diff: the view mode and
// the explicit collapse flags for files and hunks.
//
// Flags are keyed by file id and by "fileId:hunkId". They survive payload
// updates that keep the diff id and are cleared when the id changes.
type ViewState struct {
	diffID     string
	mode       ViewMode
	controlled bool
	onMode     func(ViewMode)
	files      map[string]bool
	hunks      map[string]bool
}

// ViewStateOption configures a ViewState.
type ViewStateOption func(*ViewState)

// WithDefaultViewMode sets the initial view mode of an uncontrolled state.
func WithDefaultViewMode(mode ViewMode) ViewStateOption {
	return func(s *ViewState) {
		s.mode = mode
	}
}

// WithControlledViewMode hands ownership of the view mode to the caller.
// Local changes are reported to onChange and take effect only once the
// caller pushes the new mode back through Control.
func WithControlledViewMode(mode ViewMode, onChange func(ViewMode)) ViewStateOption {
	return func(s *ViewState) {
		s.mode = mode
		s.controlled = true
		s.onMode = onChange
	}
}

// WithViewModeListener registers a callback for view mode changes of an
// uncontrolled state.
func WithViewModeListener(fn func(ViewMode)) ViewStateOption {
	return func(s *ViewState) {
		if !s.controlled {
			s.onMode = fn
		}
	}
}

// NewViewState creates view state for the diff with the given id.
func NewViewState(diffID string, opts ...ViewStateOption) *ViewState {
	s := &ViewState{
		diffID: diffID,
		mode:   ViewUnified,
		files:  make(map[string]bool),
		hunks:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DiffID returns the id of the diff this state belongs to.
func (s *ViewState) DiffID() string {
	return s.diffID
}

// Sync adopts d as the current diff. Collapse flags are cleared when the
// diff id differs from the previous one. Sync reports whether it reset.
func (s *ViewState) Sync(d *Diff) bool {
	if d == nil || d.ID == s.diffID {
		return false
	}
	s.diffID = d.ID
	clear(s.files)
	clear(s.hunks)
	return true
}

// ViewMode returns the current view mode.
func (s *ViewState) ViewMode() ViewMode {
	return s.mode
}

// IsControlled reports whether the view mode is owned by the caller.
func (s *ViewState) IsControlled() bool {
	return s.controlled
}

// SetViewMode requests a view mode. A controlled state only notifies.
func (s *ViewState) SetViewMode(mode ViewMode) {
	if mode == s.mode {
		return
	}
	if !s.controlled {
		s.mode = mode
	}
	if s.onMode != nil {
		s.onMode(mode)
	}
}

// ToggleViewMode switches between unified and split.
func (s *ViewState) ToggleViewMode() {
	if s.mode == ViewSplit {
		s.SetViewMode(ViewUnified)
		return
	}
	s.SetViewMode(ViewSplit)
}

// Control sets the view mode from the controlling caller.
func (s *ViewState) Control(mode ViewMode) {
	s.mode = mode
}

// HunkKey returns the collapse map key for a hunk.
func HunkKey(fileID, hunkID string) string {
	return fileID + ":" + hunkID
}

// FileCollapsed returns the effective collapse flag for f.
func (s *ViewState) FileCollapsed(f *File) bool {
	if v, ok := s.files[f.ID]; ok {
		return v
	}
	return f.IsCollapsed
}

// HunkCollapsed returns the effective collapse flag for h within file fileID.
func (s *ViewState) HunkCollapsed(fileID string, h *Hunk) bool {
	if v, ok := s.hunks[HunkKey(fileID, h.ID)]; ok {
		return v
	}
	return h.IsCollapsed
}

// SetFileCollapsed records an explicit collapse flag for a file.
func (s *ViewState) SetFileCollapsed(fileID string, collapsed bool) {
	s.files[fileID] = collapsed
}

// SetHunkCollapsed records an explicit collapse flag for a hunk.
func (s *ViewState) SetHunkCollapsed(fileID, hunkID string, collapsed bool) {
	s.hunks[HunkKey(fileID, hunkID)] = collapsed
}

// ToggleFile flips the effective collapse flag of f.
func (s *ViewState) ToggleFile(f *File) {
	s.SetFileCollapsed(f.ID, !s.FileCollapsed(f))
}

// ToggleHunk flips the effective collapse flag of h.
func (s *ViewState) ToggleHunk(fileID string, h *Hunk) {
	s.SetHunkCollapsed(fileID, h.ID, !s.HunkCollapsed(fileID, h))
}

// CollapseAll collapses every file of d.
func (s *ViewState) CollapseAll(d *Diff) {
	for _, f := range d.Files {
		s.files[f.ID] = true
	}
}

// ExpandAll expands every file and hunk of d.
func (s *ViewState) ExpandAll(d *Diff) {
	for _, f := range d.Files {
		s.files[f.ID] = false
		for _, h := range f.Hunks {
			s.hunks[HunkKey(f.ID, h.ID)] = false
		}
	}
}
