package validator

import (
	"fmt"
	"strconv"

	"github.com/fwojciec/diffcard"
)

// duplicateIDs reports ids repeated within one parent collection. Struct
// tags cannot express this without hiding the nested issues of the
// collection, so it runs as a separate pass.
func duplicateIDs(d *diffcard.Diff) []diffcard.Issue {
	var issues []diffcard.Issue
	check := func(field string, ids []string) {
		seen := make(map[string]bool, len(ids))
		for _, id := range ids {
			if id == "" {
				continue
			}
			if seen[id] {
				issues = append(issues, diffcard.Issue{
					Field:   field,
					Message: fmt.Sprintf("duplicate id %q", id),
				})
			}
			seen[id] = true
		}
	}

	check("files", fileIDs(d.Files))
	check("actions", actionIDs(d.Actions))
	for i, f := range d.Files {
		fp := "files[" + strconv.Itoa(i) + "]"
		check(fp+".hunks", hunkIDs(f.Hunks))
		check(fp+".actions", actionIDs(f.Actions))
		for j, h := range f.Hunks {
			hp := fp + ".hunks[" + strconv.Itoa(j) + "]"
			check(hp+".lines", lineIDs(h.Lines))
			check(hp+".actions", actionIDs(h.Actions))
			for k, l := range h.Lines {
				check(hp+".lines["+strconv.Itoa(k)+"].actions", actionIDs(l.Actions))
			}
		}
	}
	return issues
}

func fileIDs(files []diffcard.File) []string {
	ids := make([]string, len(files))
	for i, f := range files {
		ids[i] = f.ID
	}
	return ids
}

func hunkIDs(hunks []diffcard.Hunk) []string {
	ids := make([]string, len(hunks))
	for i, h := range hunks {
		ids[i] = h.ID
	}
	return ids
}

func lineIDs(lines []diffcard.Line) []string {
	ids := make([]string, len(lines))
	for i, l := range lines {
		ids[i] = l.ID
	}
	return ids
}

func actionIDs(actions []diffcard.Action) []string {
	ids := make([]string, len(actions))
	for i, a := range actions {
		ids[i] = a.ID
	}
	return ids
}
