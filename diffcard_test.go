package diffcard_test

import (
	"time"

	"github.com/fwojciec/diffcard"
)

func intPtr(n int) *int {
	return &n
}

// sampleDiff returns a two-file diff with actions at every scope.
func sampleDiff() *diffcard.Diff {
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
							{ID: "l1", Kind: diffcard.LineContext, Content: "package auth"},
							{ID: "l2", Kind: diffcard.LineRemove, Content: "func login() {}"},
							{ID: "l3", Kind: diffcard.LineAdd, Content: "func login(user string) {}", Highlights: []diffcard.HighlightRange{
								{Start: 11, Length: 11, Kind: diffcard.HighlightAdd},
							}, Actions: []diffcard.Action{{ID: "comment", Label: "Comment"}}},
						},
						Actions: []diffcard.Action{{ID: "apply-hunk", Label: "Apply hunk", Tone: diffcard.TonePrimary}},
					},
				},
				Actions: []diffcard.Action{{ID: "revert-file", Label: "Revert", Tone: diffcard.ToneDanger}},
			},
			{
				ID:          "f2",
				Path:        "README.md",
				Status:      diffcard.FileAdded,
				IsCollapsed: true,
				Hunks: []diffcard.Hunk{
					{
						ID:          "h1",
						IsCollapsed: true,
						Lines: []diffcard.Line{
							{ID: "l1", Kind: diffcard.LineAdd, Content: "# Title"},
						},
					},
				},
			},
		},
		Actions: []diffcard.Action{{ID: "apply", Label: "Apply all", Tone: diffcard.TonePrimary, Shortcut: "a"}},
	}
}

// frozen returns a copy of d carrying a receipt.
func frozen(d *diffcard.Diff) *diffcard.Diff {
	c := *d
	c.Receipt = &diffcard.Receipt{
		Kind:      diffcard.ReceiptApply,
		Status:    diffcard.ReceiptPartial,
		Summary:   "Applied 1 of 2 files",
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	return &c
}
