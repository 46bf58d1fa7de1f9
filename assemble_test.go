package diffcard_test

import (
	"testing"

	"github.com/fwojciec/diffcard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool {
	return &b
}

func TestAssemble_Unified(t *testing.T) {
	t.Parallel()

	d := sampleDiff()
	v, err := diffcard.Assemble(d, nil, diffcard.DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "diff-1", v.DiffID)
	assert.False(t, v.Empty)
	assert.False(t, v.Frozen())
	require.Len(t, v.Files, 2)

	f := v.Files[0]
	assert.False(t, f.Collapsed)
	assert.Equal(t, 1, f.Insertions)
	assert.Equal(t, 1, f.Deletions)
	require.Len(t, f.Hunks, 1)

	h := f.Hunks[0]
	assert.Equal(t, "f1:h1", h.Key)
	assert.Equal(t, "@@ -10 +10 @@", h.Header)
	assert.Empty(t, h.Rows)
	require.Len(t, h.Lines, 3)
	assert.Equal(t, "f1:h1:l3", h.Lines[2].Key)
	assert.Equal(t, []diffcard.Segment{
		{Text: "func login("},
		{Text: "user string", Emphasized: true, Kind: diffcard.HighlightAdd},
		{Text: ") {}"},
	}, h.Lines[2].Segments)
	require.Len(t, h.Lines[2].Actions, 1)
	assert.Equal(t, diffcard.ScopeLine, h.Lines[2].Actions[0].Scope)

	assert.True(t, v.Files[1].Collapsed, "file default collapse applies")
	assert.Empty(t, v.Files[1].Hunks, "collapsed files carry no hunks")
}

func TestAssemble_Split(t *testing.T) {
	t.Parallel()

	d := sampleDiff()
	state := diffcard.NewViewState(d.ID, diffcard.WithDefaultViewMode(diffcard.ViewSplit))
	v, err := diffcard.Assemble(d, state, diffcard.DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, diffcard.ViewSplit, v.Options.ViewMode)
	h := v.Files[0].Hunks[0]
	assert.Empty(t, h.Lines)
	require.Len(t, h.Rows, 2)

	assert.Equal(t, "f1:h1:0:l1:l1", h.Rows[0].Key)
	assert.Same(t, h.Rows[0].Left, h.Rows[0].Right, "context rows share one line view")
	assert.Equal(t, "l2", h.Rows[1].Left.Line.ID)
	assert.Equal(t, "l3", h.Rows[1].Right.Line.ID)
}

func TestAssemble_CollapsedHunk(t *testing.T) {
	t.Parallel()

	d := sampleDiff()
	state := diffcard.NewViewState(d.ID)
	state.ToggleHunk("f1", &d.Files[0].Hunks[0])

	v, err := diffcard.Assemble(d, state, diffcard.DefaultOptions())
	require.NoError(t, err)

	h := v.Files[0].Hunks[0]
	assert.True(t, h.Collapsed)
	assert.Empty(t, h.Lines)
	assert.Equal(t, "@@ -10 +10 @@", h.Header, "collapsed hunks keep their header")
}

func TestAssemble_States(t *testing.T) {
	t.Parallel()

	t.Run("nil diff is loading", func(t *testing.T) {
		t.Parallel()

		v, err := diffcard.Assemble(nil, nil, diffcard.DefaultOptions())
		require.NoError(t, err)
		assert.True(t, v.Loading)
	})

	t.Run("minimal payload renders no changes", func(t *testing.T) {
		t.Parallel()

		v, err := diffcard.Assemble(&diffcard.Diff{ID: "x", Files: []diffcard.File{}}, nil, diffcard.DefaultOptions())
		require.NoError(t, err)
		assert.True(t, v.Empty)
		assert.False(t, v.Placeholder)
		assert.Equal(t, diffcard.Summary{}, v.Summary)
	})

	t.Run("streaming empty diff shows placeholder", func(t *testing.T) {
		t.Parallel()

		opts := diffcard.DefaultOptions()
		opts.IsStreaming = true
		v, err := diffcard.Assemble(&diffcard.Diff{ID: "x"}, nil, opts)
		require.NoError(t, err)
		assert.True(t, v.Placeholder)
		assert.False(t, v.Empty)
	})

	t.Run("streaming placeholders for empty hunks and lines", func(t *testing.T) {
		t.Parallel()

		d := &diffcard.Diff{
			ID: "x",
			Files: []diffcard.File{
				{ID: "a", Path: "a.go", Status: diffcard.FileAdded},
				{ID: "b", Path: "b.go", Status: diffcard.FileModified, Hunks: []diffcard.Hunk{{ID: "h"}}},
			},
		}
		opts := diffcard.DefaultOptions()
		opts.IsStreaming = true
		v, err := diffcard.Assemble(d, nil, opts)
		require.NoError(t, err)

		assert.True(t, v.Files[0].Placeholder)
		assert.False(t, v.Files[1].Placeholder)
		assert.True(t, v.Files[1].Hunks[0].Placeholder)
	})

	t.Run("complete diffs never show placeholders", func(t *testing.T) {
		t.Parallel()

		d := &diffcard.Diff{ID: "x", Meta: &diffcard.Meta{IsComplete: boolPtr(true)}}
		opts := diffcard.DefaultOptions()
		opts.IsStreaming = true
		v, err := diffcard.Assemble(d, nil, opts)
		require.NoError(t, err)
		assert.False(t, v.Placeholder)
		assert.True(t, v.Empty)
	})

	t.Run("frozen diff disables every action", func(t *testing.T) {
		t.Parallel()

		v, err := diffcard.Assemble(frozen(sampleDiff()), nil, diffcard.DefaultOptions())
		require.NoError(t, err)

		require.True(t, v.Frozen())
		assert.Equal(t, "Applied 1 of 2 files", v.Receipt.Summary)
		assert.Equal(t, diffcard.ReceiptPartial, v.Receipt.Status)
		for _, a := range v.Actions {
			assert.True(t, a.Disabled)
		}
		for _, a := range v.Files[0].Actions {
			assert.True(t, a.Disabled)
		}
		for _, a := range v.Files[0].Hunks[0].Actions {
			assert.True(t, a.Disabled)
		}
		for _, a := range v.Files[0].Hunks[0].Lines[2].Actions {
			assert.True(t, a.Disabled)
		}
	})
}

func TestAssemble_RejectsForeignState(t *testing.T) {
	t.Parallel()

	_, err := diffcard.Assemble(sampleDiff(), diffcard.NewViewState("other"), diffcard.DefaultOptions())
	assert.Error(t, err)
}

func TestAssemble_Summary(t *testing.T) {
	t.Parallel()

	t.Run("computed from lines", func(t *testing.T) {
		t.Parallel()

		v, err := diffcard.Assemble(sampleDiff(), nil, diffcard.DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, diffcard.Summary{Files: 2, Insertions: 2, Deletions: 1}, v.Summary)
	})

	t.Run("explicit file counts win", func(t *testing.T) {
		t.Parallel()

		d := sampleDiff()
		d.Files[0].Insertions = intPtr(40)
		v, err := diffcard.Assemble(d, nil, diffcard.DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, 40, v.Files[0].Insertions)
		assert.Equal(t, 1, v.Files[0].Deletions)
	})

	t.Run("payload summary is used verbatim", func(t *testing.T) {
		t.Parallel()

		d := sampleDiff()
		d.Summary = &diffcard.Summary{Files: 9, Insertions: 8, Deletions: 7}
		v, err := diffcard.Assemble(d, nil, diffcard.DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, *d.Summary, v.Summary)
	})
}

func TestAssemble_SkipsUnknownLineKinds(t *testing.T) {
	t.Parallel()

	d := sampleDiff()
	d.Files[0].Hunks[0].Lines = append(d.Files[0].Hunks[0].Lines, diffcard.Line{ID: "x", Kind: "moved"})

	v, err := diffcard.Assemble(d, nil, diffcard.DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, v.Files[0].Hunks[0].Lines, 3)
}

func TestHunkHeader(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "@@ -1,3 +1,4 @@ func x", diffcard.HunkHeader(&diffcard.Hunk{Header: "@@ -1,3 +1,4 @@ func x", OldStart: intPtr(1)}))
	assert.Equal(t, "@@ +5 @@", diffcard.HunkHeader(&diffcard.Hunk{NewStart: intPtr(5)}))
	assert.Empty(t, diffcard.HunkHeader(&diffcard.Hunk{}))
}
