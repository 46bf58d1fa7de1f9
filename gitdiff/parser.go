// Package gitdiff converts unified patches into diff payloads using
// bluekeyes/go-gitdiff.
package gitdiff

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
	"github.com/fwojciec/diffcard"
)

// Compile-time interface verification.
var _ diffcard.Parser = (*Parser)(nil)

// Parser reads unified patches, as produced by git diff or git format-patch.
type Parser struct{}

// NewParser creates a Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse converts the patch in r into a payload. Ids are derived from the
// patch so parsing the same patch twice yields the same ids. A patch with no
// file changes returns diffcard.ErrNoChanges.
func (p *Parser) Parse(r io.Reader) (*diffcard.Diff, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read patch: %w", err)
	}

	files, preamble, err := gitdiff.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse patch: %w", err)
	}
	if len(files) == 0 {
		return nil, diffcard.ErrNoChanges
	}

	sum := sha256.Sum256(data)
	complete := true
	d := &diffcard.Diff{
		ID:    "patch-" + hex.EncodeToString(sum[:6]),
		Meta:  &diffcard.Meta{IsComplete: &complete},
		Files: make([]diffcard.File, 0, len(files)),
	}
	applyHeader(d, preamble)

	seen := make(map[string]int, len(files))
	for _, f := range files {
		file := convertFile(f)
		if n := seen[file.ID]; n > 0 {
			file.ID += "#" + strconv.Itoa(n)
		}
		seen[file.Path]++
		d.Files = append(d.Files, file)
	}
	return d, nil
}

// applyHeader fills in the title and commit from a format-patch preamble.
func applyHeader(d *diffcard.Diff, preamble string) {
	if strings.TrimSpace(preamble) == "" {
		return
	}
	header, err := gitdiff.ParsePatchHeader(preamble)
	if err != nil {
		return
	}
	d.Title = header.Title
	d.Description = strings.TrimSpace(header.Body)
	d.Meta.HeadCommit = header.SHA
	if !header.AuthorDate.IsZero() {
		t := header.AuthorDate
		d.CapturedAt = &t
	}
}

func convertFile(f *gitdiff.File) diffcard.File {
	file := diffcard.File{
		Path:   f.NewName,
		Status: diffcard.FileModified,
	}
	switch {
	case f.IsNew:
		file.Status = diffcard.FileAdded
	case f.IsDelete:
		file.Status = diffcard.FileDeleted
		file.Path = f.OldName
	case f.IsRename:
		file.Status = diffcard.FileRenamed
		file.OldPath = f.OldName
	}
	if file.Path == "" {
		file.Path = f.OldName
	}
	file.ID = file.Path

	file.Hunks = make([]diffcard.Hunk, 0, len(f.TextFragments))
	for i, frag := range f.TextFragments {
		file.Hunks = append(file.Hunks, convertFragment(i, frag))
	}
	return file
}

func convertFragment(index int, frag *gitdiff.TextFragment) diffcard.Hunk {
	oldLine, newLine := int(frag.OldPosition), int(frag.NewPosition)
	header := fmt.Sprintf("@@ -%d,%d +%d,%d @@", frag.OldPosition, frag.OldLines, frag.NewPosition, frag.NewLines)
	if frag.Comment != "" {
		header += " " + frag.Comment
	}

	h := diffcard.Hunk{
		ID:       "h" + strconv.Itoa(index),
		Header:   header,
		OldStart: intPtr(oldLine),
		NewStart: intPtr(newLine),
		Lines:    make([]diffcard.Line, 0, len(frag.Lines)),
	}
	for j, l := range frag.Lines {
		line := diffcard.Line{
			ID:      "l" + strconv.Itoa(j),
			Content: strings.TrimSuffix(l.Line, "\n"),
		}
		switch l.Op {
		case gitdiff.OpAdd:
			line.Kind = diffcard.LineAdd
			line.LineNumber = intPtr(newLine)
			newLine++
		case gitdiff.OpDelete:
			line.Kind = diffcard.LineRemove
			line.LineNumber = intPtr(oldLine)
			oldLine++
		default:
			line.Kind = diffcard.LineContext
			line.LineNumber = intPtr(newLine)
			oldLine++
			newLine++
		}
		if *line.LineNumber < 1 {
			line.LineNumber = nil
		}
		h.Lines = append(h.Lines, line)
	}
	return h
}

func intPtr(n int) *int {
	return &n
}
