// Package diffcard provides domain types and the presentation engine for
// chat-embeddable code diff cards.
//
// A Diff is supplied from outside (a tool call result, a backend, a patch
// adapter) and is treated as immutable. The engine validates it once, pairs
// lines for side-by-side display, tracks collapse state, and dispatches
// scoped actions until a Receipt freezes the diff.
package diffcard

import "time"

// Diff is the top-level payload describing a set of file changes.
type Diff struct {
	ID                string     `json:"id" validate:"required"`
	Title             string     `json:"title,omitempty"`
	Description       string     `json:"description,omitempty"`
	Meta              *Meta      `json:"meta,omitempty"`
	CapturedAt        *time.Time `json:"capturedAt,omitempty"`
	Summary           *Summary   `json:"summary,omitempty"`
	Files             []File     `json:"files" validate:"required,dive"`
	Actions           []Action   `json:"actions,omitempty" validate:"omitempty,dive"`
	Receipt           *Receipt   `json:"receipt,omitempty"`
	EmphasizedFileIDs []string   `json:"emphasizedFileIds,omitempty" validate:"omitempty,dive,required"`
}

// Meta describes where a diff came from.
type Meta struct {
	Base       string `json:"base,omitempty"`       // e.g. "main"
	Head       string `json:"head,omitempty"`       // e.g. "feature/login"
	BaseCommit string `json:"baseCommit,omitempty"` // Abbreviated or full commit hash
	HeadCommit string `json:"headCommit,omitempty"`
	Repository string `json:"repository,omitempty"` // e.g. "owner/name"
	URL        string `json:"url,omitempty" validate:"omitempty,url"`
	IsComplete *bool  `json:"isComplete,omitempty"` // Nil while a producer is still streaming
}

// Summary holds aggregate counts for a diff.
type Summary struct {
	Files      int `json:"files" validate:"gte=0"`
	Insertions int `json:"insertions" validate:"gte=0"`
	Deletions  int `json:"deletions" validate:"gte=0"`
}

// File represents changes to a single file.
type File struct {
	ID          string     `json:"id" validate:"required"`
	Path        string     `json:"path" validate:"required"`
	OldPath     string     `json:"oldPath,omitempty"` // Rename source
	Status      FileStatus `json:"status" validate:"required,oneof=modified added deleted renamed"`
	Language    string     `json:"language,omitempty"`
	Insertions  *int       `json:"insertions,omitempty" validate:"omitempty,gte=0"`
	Deletions   *int       `json:"deletions,omitempty" validate:"omitempty,gte=0"`
	IsCollapsed bool       `json:"isCollapsed,omitempty"`
	Hunks       []Hunk     `json:"hunks,omitempty" validate:"omitempty,dive"`
	Actions     []Action   `json:"actions,omitempty" validate:"omitempty,dive"`
}

// FileStatus is the kind of change made to a file.
type FileStatus string

// File statuses.
const (
	FileModified FileStatus = "modified"
	FileAdded    FileStatus = "added"
	FileDeleted  FileStatus = "deleted"
	FileRenamed  FileStatus = "renamed"
)

// Hunk is a contiguous region of changed lines within a file.
type Hunk struct {
	ID          string   `json:"id" validate:"required"`
	Header      string   `json:"header,omitempty"`
	OldStart    *int     `json:"oldStart,omitempty" validate:"omitempty,gte=0"`
	NewStart    *int     `json:"newStart,omitempty" validate:"omitempty,gte=0"`
	Summary     string   `json:"summary,omitempty"`
	IsCollapsed bool     `json:"isCollapsed,omitempty"`
	Lines       []Line   `json:"lines,omitempty" validate:"omitempty,dive"`
	Actions     []Action `json:"actions,omitempty" validate:"omitempty,dive"`
}

// Line is a single line within a hunk.
type Line struct {
	ID         string           `json:"id" validate:"required"`
	Kind       LineKind         `json:"kind" validate:"required,oneof=context add remove"`
	LineNumber *int             `json:"lineNumber,omitempty" validate:"omitempty,gte=1"`
	Content    string           `json:"content"`
	Highlights []HighlightRange `json:"highlights,omitempty" validate:"omitempty,dive"`
	Meta       map[string]any   `json:"meta,omitempty"`
	Actions    []Action         `json:"actions,omitempty" validate:"omitempty,dive"`
}

// LineKind classifies a diff line.
type LineKind string

// Line kinds.
const (
	LineContext LineKind = "context"
	LineAdd     LineKind = "add"
	LineRemove  LineKind = "remove"
)

// Valid reports whether k is one of the known line kinds.
func (k LineKind) Valid() bool {
	switch k {
	case LineContext, LineAdd, LineRemove:
		return true
	}
	return false
}

// Prefix returns the unified diff marker for the line kind.
func (k LineKind) Prefix() string {
	switch k {
	case LineAdd:
		return "+"
	case LineRemove:
		return "-"
	case LineContext:
		return " "
	}
	panic("diffcard: unhandled line kind " + string(k))
}

// HighlightRange is a sub-span of a line's content to emphasize.
// Start and Length count characters (runes), not bytes.
type HighlightRange struct {
	Start  int           `json:"start" validate:"gte=0"`
	Length int           `json:"length" validate:"gte=0"`
	Kind   HighlightKind `json:"kind,omitempty" validate:"omitempty,oneof=add remove change"`
}

// HighlightKind tags an emphasized span.
type HighlightKind string

// Highlight kinds.
const (
	HighlightAdd    HighlightKind = "add"
	HighlightRemove HighlightKind = "remove"
	HighlightChange HighlightKind = "change"
)

// Action is something a user can trigger on a diff, file, hunk or line.
type Action struct {
	ID       string     `json:"id" validate:"required"`
	Label    string     `json:"label" validate:"required"`
	Tone     ActionTone `json:"tone,omitempty" validate:"omitempty,oneof=primary neutral danger"`
	Shortcut string     `json:"shortcut,omitempty"` // Key name, e.g. "a" or "ctrl+r"
}

// ActionTone hints at how an action should be presented.
type ActionTone string

// Action tones.
const (
	TonePrimary ActionTone = "primary"
	ToneNeutral ActionTone = "neutral"
	ToneDanger  ActionTone = "danger"
)

// Receipt records that a diff has already been acted upon.
// Its presence makes the whole diff read-only.
type Receipt struct {
	Kind            ReceiptKind   `json:"kind,omitempty" validate:"omitempty,oneof=apply revert comment custom"`
	Status          ReceiptStatus `json:"status" validate:"required,oneof=success partial failed cancelled"`
	Summary         string        `json:"summary" validate:"required"`
	CreatedAt       time.Time     `json:"createdAt" validate:"required"`
	AffectedFileIDs []string      `json:"affectedFileIds,omitempty"`
	AffectedHunkIDs []string      `json:"affectedHunkIds,omitempty"`
}

// ReceiptKind is the kind of operation a receipt records.
type ReceiptKind string

// Receipt kinds.
const (
	ReceiptApply   ReceiptKind = "apply"
	ReceiptRevert  ReceiptKind = "revert"
	ReceiptComment ReceiptKind = "comment"
	ReceiptCustom  ReceiptKind = "custom"
)

// ReceiptStatus is the outcome recorded by a receipt.
type ReceiptStatus string

// Receipt statuses.
const (
	ReceiptSuccess   ReceiptStatus = "success"
	ReceiptPartial   ReceiptStatus = "partial"
	ReceiptFailed    ReceiptStatus = "failed"
	ReceiptCancelled ReceiptStatus = "cancelled"
)

// FindFile returns the file with the given id, or nil.
func (d *Diff) FindFile(id string) *File {
	for i := range d.Files {
		if d.Files[i].ID == id {
			return &d.Files[i]
		}
	}
	return nil
}

// FindHunk returns the hunk with the given id, or nil.
func (f *File) FindHunk(id string) *Hunk {
	for i := range f.Hunks {
		if f.Hunks[i].ID == id {
			return &f.Hunks[i]
		}
	}
	return nil
}

// IsEmphasized reports whether the file id is listed in EmphasizedFileIDs.
func (d *Diff) IsEmphasized(fileID string) bool {
	for _, id := range d.EmphasizedFileIDs {
		if id == fileID {
			return true
		}
	}
	return false
}

// IsComplete reports whether the producer marked the diff as complete.
func (d *Diff) IsComplete() bool {
	return d.Meta != nil && d.Meta.IsComplete != nil && *d.Meta.IsComplete
}

// Stats returns the insertion and deletion counts for the file. Explicit
// counts win; otherwise lines are counted.
func (f *File) Stats() (insertions, deletions int) {
	var countedIns, countedDel int
	if f.Insertions == nil || f.Deletions == nil {
		for _, h := range f.Hunks {
			for _, l := range h.Lines {
				switch l.Kind {
				case LineAdd:
					countedIns++
				case LineRemove:
					countedDel++
				}
			}
		}
	}
	insertions, deletions = countedIns, countedDel
	if f.Insertions != nil {
		insertions = *f.Insertions
	}
	if f.Deletions != nil {
		deletions = *f.Deletions
	}
	return insertions, deletions
}

// ComputedSummary returns the diff's summary, deriving it from the files
// when the payload does not carry one.
func (d *Diff) ComputedSummary() Summary {
	if d.Summary != nil {
		return *d.Summary
	}
	s := Summary{Files: len(d.Files)}
	for i := range d.Files {
		ins, del := d.Files[i].Stats()
		s.Insertions += ins
		s.Deletions += del
	}
	return s
}
