package diffcard

import "strconv"

// Row is one side-by-side row: the old line on the left, the new line on
// the right. Context lines appear on both sides of the same row.
type Row struct {
	Key   string
	Left  *Line
	Right *Line
}

// noLine stands in for an absent side in row keys.
const noLine = "-"

// PairLines aligns lines for side-by-side display.
//
// Context lines map to both sides. A run of removed lines followed directly
// by a run of added lines forms one block of max(removed, added) rows,
// paired by position. Lines of an unknown kind are skipped.
func PairLines(lines []Line) []Row {
	rows := make([]Row, 0, len(lines))
	i := 0
	for i < len(lines) {
		switch lines[i].Kind {
		case LineContext:
			l := &lines[i]
			rows = append(rows, newRow(len(rows), l, l))
			i++
		case LineRemove, LineAdd:
			var removed, added []*Line
			for i < len(lines) && lines[i].Kind == LineRemove {
				removed = append(removed, &lines[i])
				i++
			}
			for i < len(lines) && lines[i].Kind == LineAdd {
				added = append(added, &lines[i])
				i++
			}
			for j := range max(len(removed), len(added)) {
				var left, right *Line
				if j < len(removed) {
					left = removed[j]
				}
				if j < len(added) {
					right = added[j]
				}
				rows = append(rows, newRow(len(rows), left, right))
			}
		default:
			i++
		}
	}
	return rows
}

func newRow(seq int, left, right *Line) Row {
	return Row{
		Key:   strconv.Itoa(seq) + ":" + lineKey(left) + ":" + lineKey(right),
		Left:  left,
		Right: right,
	}
}

func lineKey(l *Line) string {
	if l == nil {
		return noLine
	}
	return l.ID
}

// RowKey returns a key for row that is unique across the whole diff.
func RowKey(fileID, hunkID string, row Row) string {
	return fileID + ":" + hunkID + ":" + row.Key
}
