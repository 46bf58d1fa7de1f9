package diffcard

import "sort"

// Segment is a run of line content, either plain or emphasized.
type Segment struct {
	Text       string
	Emphasized bool
	Kind       HighlightKind // Empty for plain segments and for untagged ranges
}

// span is a clamped highlight range in rune offsets, end exclusive.
type span struct {
	start, end int
	kind       HighlightKind
}

// Highlight splits content into plain and emphasized segments.
//
// Ranges are clamped to the content and zero-length ranges are dropped.
// Overlapping ranges never duplicate text: ranges of the same kind that
// overlap or touch are merged, and where kinds differ the range that starts
// first (then the one declared first) keeps the overlapped characters.
func Highlight(content string, ranges []HighlightRange) []Segment {
	runes := []rune(content)
	spans := mergeSpans(clampRanges(ranges, len(runes)))

	if len(spans) == 0 {
		if content == "" {
			return []Segment{{Text: " "}}
		}
		return []Segment{{Text: content}}
	}

	segments := make([]Segment, 0, len(spans)*2+1)
	cursor := 0
	for _, s := range spans {
		if s.start > cursor {
			segments = append(segments, Segment{Text: string(runes[cursor:s.start])})
		}
		segments = append(segments, Segment{
			Text:       string(runes[s.start:s.end]),
			Emphasized: true,
			Kind:       s.kind,
		})
		cursor = s.end
	}
	if cursor < len(runes) {
		segments = append(segments, Segment{Text: string(runes[cursor:])})
	}
	return segments
}

func clampRanges(ranges []HighlightRange, n int) []span {
	spans := make([]span, 0, len(ranges))
	for _, r := range ranges {
		start := min(max(r.Start, 0), n)
		end := start + min(max(r.Length, 0), n-start)
		if end <= start {
			continue
		}
		spans = append(spans, span{start: start, end: end, kind: r.Kind})
	}
	sort.SliceStable(spans, func(i, j int) bool {
		return spans[i].start < spans[j].start
	})
	return spans
}

// mergeSpans expects spans sorted by start.
func mergeSpans(spans []span) []span {
	var out []span
	for _, s := range spans {
		if len(out) == 0 {
			out = append(out, s)
			continue
		}
		last := &out[len(out)-1]
		switch {
		case s.kind == last.kind && s.start <= last.end:
			last.end = max(last.end, s.end)
		case s.start < last.end:
			// Earlier span owns the overlap; keep whatever sticks out.
			if s.end > last.end {
				out = append(out, span{start: last.end, end: s.end, kind: s.kind})
			}
		default:
			out = append(out, s)
		}
	}
	return out
}
