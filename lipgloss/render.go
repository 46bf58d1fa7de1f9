package lipgloss

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/fwojciec/diffcard"
)

// DefaultWidth is used when the frame width is unknown.
const DefaultWidth = 80

const (
	gutterWidth = 5 // Four digits and a space
	ellipsis    = "…"
)

// Frame describes the surface a view is drawn onto.
type Frame struct {
	Width   int
	Focus   string          // Anchor key of the focused scope, if any
	Pending map[string]bool // Action keys awaiting a host decision
}

// Rendered is a drawn view.
type Rendered struct {
	Content string
	Anchors map[string]int // Anchor key to output line index
}

// Lines returns the number of output lines.
func (r Rendered) Lines() int {
	if r.Content == "" {
		return 0
	}
	return strings.Count(r.Content, "\n") + 1
}

// DiffAnchor is the anchor key of the diff-level actions. Anchor keys
// identify the scopes of a view in rendered output.
const DiffAnchor = "diff"

// FileAnchor returns the anchor key of a file header.
func FileAnchor(fileID string) string { return "file:" + fileID }

// HunkAnchor returns the anchor key of a hunk header.
func HunkAnchor(hunkKey string) string { return "hunk:" + hunkKey }

// LineAnchor returns the anchor key of a line.
func LineAnchor(lineKey string) string { return "line:" + lineKey }

// ActionKey identifies an action at an anchor.
func ActionKey(anchor, actionID string) string { return anchor + "#" + actionID }

// Renderer draws views as styled terminal text.
type Renderer struct {
	theme     *Theme
	lg        *lipgloss.Renderer
	tokenizer diffcard.Tokenizer
	detector  diffcard.LanguageDetector
	styles    styles
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithTheme sets the theme. The default theme is used otherwise.
func WithTheme(t *Theme) Option {
	return func(r *Renderer) { r.theme = t }
}

// WithRenderer sets the lipgloss renderer, which decides the color profile.
func WithRenderer(lg *lipgloss.Renderer) Option {
	return func(r *Renderer) { r.lg = lg }
}

// WithTokenizer enables syntax highlighting.
func WithTokenizer(t diffcard.Tokenizer) Option {
	return func(r *Renderer) { r.tokenizer = t }
}

// WithLanguageDetector sets how languages are guessed for files that do not
// declare one.
func WithLanguageDetector(d diffcard.LanguageDetector) Option {
	return func(r *Renderer) { r.detector = d }
}

// NewRenderer creates a Renderer.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{theme: DefaultTheme(), lg: lipgloss.DefaultRenderer()}
	for _, opt := range opts {
		opt(r)
	}
	r.styles = r.theme.styles(r.lg)
	return r
}

// Theme returns the renderer's theme.
func (r *Renderer) Theme() *Theme {
	return r.theme
}

// RenderDiff assembles and draws d. Panics anywhere along the way are
// returned as a *diffcard.RenderFault.
func (r *Renderer) RenderDiff(d *diffcard.Diff, state *diffcard.ViewState, opts diffcard.Options, frame Frame) (Rendered, error) {
	return diffcard.Isolate(func() (Rendered, error) {
		v, err := diffcard.Assemble(d, state, opts)
		if err != nil {
			return Rendered{}, err
		}
		return r.Render(v, frame), nil
	})
}

// Render draws v.
func (r *Renderer) Render(v *diffcard.View, frame Frame) Rendered {
	if frame.Width <= 0 {
		frame.Width = DefaultWidth
	}
	w := &writer{anchors: make(map[string]int)}
	s := r.styles

	if v.Loading {
		w.add(s.Placeholder.Render("Loading diff…"))
		return w.result()
	}

	r.renderHeader(w, v, frame)

	switch {
	case v.Empty:
		w.add(s.Placeholder.Render("No changes"))
	case v.Placeholder:
		w.add(s.Placeholder.Render("waiting for files…"))
	}

	for i := range v.Files {
		r.renderFile(w, v, &v.Files[i], frame)
	}
	return w.result()
}

// writer collects output lines and the anchors that point into them.
type writer struct {
	lines   []string
	anchors map[string]int
}

func (w *writer) add(line string) {
	w.lines = append(w.lines, line)
}

func (w *writer) anchor(key string) {
	if _, ok := w.anchors[key]; !ok {
		w.anchors[key] = len(w.lines)
	}
}

func (w *writer) result() Rendered {
	return Rendered{Content: strings.Join(w.lines, "\n"), Anchors: w.anchors}
}

func (r *Renderer) renderHeader(w *writer, v *diffcard.View, frame Frame) {
	s := r.styles
	width := frame.Width

	if v.Title != "" {
		w.add(ansi.Truncate(s.Title.Render(v.Title), width, ellipsis))
	}
	if v.Description != "" {
		for _, line := range strings.Split(ansi.Wordwrap(v.Description, width, ""), "\n") {
			w.add(s.Description.Render(line))
		}
	}

	var parts []string
	if m := v.Meta; m != nil {
		if m.Repository != "" {
			parts = append(parts, s.Meta.Render(m.Repository))
		}
		if ref := refRange(m); ref != "" {
			parts = append(parts, s.Meta.Render(ref))
		}
	}
	files := "files"
	if v.Summary.Files == 1 {
		files = "file"
	}
	parts = append(parts,
		s.Meta.Render(fmt.Sprintf("%d %s", v.Summary.Files, files)),
		s.Insertions.Render(fmt.Sprintf("+%d", v.Summary.Insertions)),
		s.Deletions.Render(fmt.Sprintf("-%d", v.Summary.Deletions)),
	)
	w.add(ansi.Truncate(strings.Join(parts, s.Meta.Render(" · ")), width, ellipsis))

	if rc := v.Receipt; rc != nil {
		style, icon := r.receiptStyle(rc.Status)
		banner := style.Render(icon+" "+rc.Summary) + s.Meta.Render("  "+rc.CreatedAt.Format("2006-01-02 15:04"))
		w.add(ansi.Truncate(banner, width, ellipsis))
	}

	if len(v.Actions) > 0 {
		w.anchor(DiffAnchor)
		w.add(r.focusMark(frame, DiffAnchor) + r.chips(v.Actions, DiffAnchor, frame))
	}
	w.add("")
}

func refRange(m *diffcard.Meta) string {
	base, head := m.Base, m.Head
	if base == "" {
		base = m.BaseCommit
	}
	if head == "" {
		head = m.HeadCommit
	}
	switch {
	case base != "" && head != "":
		return base + "…" + head
	case head != "":
		return head
	}
	return base
}

func (r *Renderer) receiptStyle(status diffcard.ReceiptStatus) (lipgloss.Style, string) {
	s := r.styles
	switch status {
	case diffcard.ReceiptSuccess:
		return s.ReceiptSuccess, "✓"
	case diffcard.ReceiptPartial:
		return s.ReceiptPartial, "◐"
	case diffcard.ReceiptFailed:
		return s.ReceiptFailed, "✗"
	}
	return s.ReceiptCancelled, "⊘"
}

func (r *Renderer) focusMark(frame Frame, anchor string) string {
	if frame.Focus == anchor {
		return r.styles.Focus.Render("▌")
	}
	return " "
}

// chips draws actions as "[label (shortcut)]" buttons.
func (r *Renderer) chips(actions []diffcard.ActionView, anchor string, frame Frame) string {
	s := r.styles
	out := make([]string, len(actions))
	for i, av := range actions {
		label := av.Action.Label
		if av.Action.Shortcut != "" {
			label += " (" + av.Action.Shortcut + ")"
		}
		if frame.Pending[ActionKey(anchor, av.Action.ID)] {
			label += " …"
		}
		style := s.ActionNeutral
		switch {
		case av.Disabled:
			style = s.ActionDisabled
		case av.Action.Tone == diffcard.TonePrimary:
			style = s.ActionPrimary
		case av.Action.Tone == diffcard.ToneDanger:
			style = s.ActionDanger
		}
		out[i] = style.Render("[" + label + "]")
	}
	return strings.Join(out, " ")
}

func (r *Renderer) renderFile(w *writer, v *diffcard.View, fv *diffcard.FileView, frame Frame) {
	s := r.styles
	f := fv.File
	anchor := FileAnchor(f.ID)

	arrow := "▼"
	if fv.Collapsed {
		arrow = "▶"
	}
	path := f.Path
	if f.OldPath != "" && f.OldPath != f.Path {
		path = f.OldPath + " → " + f.Path
	}
	header := s.FileHeader
	if fv.Emphasized {
		header = s.FileHeaderEmphasized
		path = "★ " + path
	}
	line := r.focusMark(frame, anchor) +
		header.Render("── "+arrow+" "+path) + " " +
		s.FileStatus.Render(string(f.Status)) + " " +
		s.Insertions.Render(fmt.Sprintf("+%d", fv.Insertions)) + " " +
		s.Deletions.Render(fmt.Sprintf("-%d", fv.Deletions))

	w.anchor(anchor)
	w.add(ansi.Truncate(line, frame.Width, ellipsis))
	if len(fv.Actions) > 0 {
		w.add("  " + r.chips(fv.Actions, anchor, frame))
	}
	if fv.Collapsed {
		return
	}
	if fv.Placeholder {
		w.add(s.Placeholder.Render("  loading hunks…"))
		return
	}

	var lang string
	if r.tokenizer != nil {
		lang = f.Language
		if lang == "" && r.detector != nil {
			lang = r.detector.DetectFromPath(f.Path)
		}
	}
	for i := range fv.Hunks {
		r.renderHunk(w, v, &fv.Hunks[i], lang, frame)
	}
	w.add("")
}

func (r *Renderer) renderHunk(w *writer, v *diffcard.View, hv *diffcard.HunkView, lang string, frame Frame) {
	s := r.styles
	anchor := HunkAnchor(hv.Key)

	arrow := "▼"
	if hv.Collapsed {
		arrow = "▶"
	}
	line := r.focusMark(frame, anchor) + s.HunkHeader.Render(arrow+" "+hv.Header)
	if hv.Hunk.Summary != "" {
		line += " " + s.HunkSummary.Render(hv.Hunk.Summary)
	}
	w.anchor(anchor)
	w.add(ansi.Truncate(line, frame.Width, ellipsis))
	if len(hv.Actions) > 0 {
		w.add("  " + r.chips(hv.Actions, anchor, frame))
	}
	if hv.Collapsed {
		return
	}
	if hv.Placeholder {
		w.add(s.Placeholder.Render("  loading lines…"))
		return
	}

	tokens := r.tokenize(hv.Hunk, lang)
	opts := v.Options

	switch opts.ViewMode {
	case diffcard.ViewSplit:
		half := (frame.Width - 1) / 2
		sep := s.Separator.Render("│")
		for _, row := range hv.Rows {
			left := r.cell(row.Left, tokens, half, opts, frame)
			right := r.cell(row.Right, tokens, frame.Width-half-1, opts, frame)
			if row.Left != nil {
				w.anchor(LineAnchor(row.Left.Key))
			}
			if row.Right != nil {
				w.anchor(LineAnchor(row.Right.Key))
			}
			n := max(len(left), len(right))
			for i := 0; i < n; i++ {
				w.add(r.fill(left, i, half) + sep + r.fill(right, i, frame.Width-half-1))
			}
			r.lineChips(w, row.Left, frame)
			if row.Right != row.Left {
				r.lineChips(w, row.Right, frame)
			}
		}
	default:
		for i := range hv.Lines {
			lv := &hv.Lines[i]
			w.anchor(LineAnchor(lv.Key))
			for _, row := range r.cell(lv, tokens, frame.Width, opts, frame) {
				w.add(row)
			}
			r.lineChips(w, lv, frame)
		}
	}
}

func (r *Renderer) lineChips(w *writer, lv *diffcard.LineView, frame Frame) {
	if lv == nil || len(lv.Actions) == 0 {
		return
	}
	anchor := LineAnchor(lv.Key)
	w.add(r.focusMark(frame, anchor) + strings.Repeat(" ", gutterWidth) + r.chips(lv.Actions, anchor, frame))
}

// fill returns rows[i], or blank filler when the cell has fewer rows.
func (r *Renderer) fill(rows []string, i, width int) string {
	if i < len(rows) {
		return rows[i]
	}
	return r.styles.Filler.Render(strings.Repeat(" ", width))
}

// tokenize returns syntax tokens for each line of h. The old and new sides
// are tokenized separately so each reads as valid source.
func (r *Renderer) tokenize(h *diffcard.Hunk, lang string) map[*diffcard.Line][]diffcard.Token {
	if r.tokenizer == nil || lang == "" || len(h.Lines) == 0 {
		return nil
	}
	tokens := make(map[*diffcard.Line][]diffcard.Token, len(h.Lines))
	for _, side := range []diffcard.LineKind{diffcard.LineRemove, diffcard.LineAdd} {
		var lines []*diffcard.Line
		var src []string
		for i := range h.Lines {
			l := &h.Lines[i]
			if l.Kind == side || l.Kind == diffcard.LineContext {
				lines = append(lines, l)
				src = append(src, l.Content)
			}
		}
		if len(lines) == 0 {
			continue
		}
		perLine := r.tokenizer.TokenizeLines(lang, strings.Join(src, "\n"))
		for i, l := range lines {
			if i < len(perLine) && matches(perLine[i], l.Content) {
				tokens[l] = perLine[i]
			}
		}
	}
	return tokens
}

func matches(tokens []diffcard.Token, content string) bool {
	var sb strings.Builder
	for _, t := range tokens {
		sb.WriteString(t.Text)
	}
	return sb.String() == content
}

// piece is a run of text drawn with one style.
type piece struct {
	text  string
	style lipgloss.Style
}

// cell draws one line into rows of exactly width cells. A nil line yields
// one row of filler.
func (r *Renderer) cell(lv *diffcard.LineView, tokens map[*diffcard.Line][]diffcard.Token, width int, opts diffcard.Options, frame Frame) []string {
	s := r.styles
	if lv == nil {
		return []string{s.Filler.Render(strings.Repeat(" ", max(width, 0)))}
	}
	l := lv.Line

	var base, prefix lipgloss.Style
	switch l.Kind {
	case diffcard.LineAdd:
		base, prefix = s.AddedLine, s.AddedPrefix
	case diffcard.LineRemove:
		base, prefix = s.DeletedLine, s.DeletedPrefix
	default:
		base, prefix = s.ContextLine, s.ContextLine
	}

	gutter, blank := "", ""
	if opts.ShowLineNumbers {
		num := ""
		if l.LineNumber != nil {
			num = strconv.Itoa(*l.LineNumber)
		}
		gs := s.Gutter
		if frame.Focus == LineAnchor(lv.Key) {
			gs = s.Focus
		}
		gutter = gs.Render(fmt.Sprintf("%4s ", num))
		blank = strings.Repeat(" ", gutterWidth)
	}
	room := width - ansi.StringWidth(gutter) - 1
	if room < 1 {
		room = 1
	}

	rows := layout(r.pieces(lv, tokens[l], base), room, opts.WrapLines, base)
	out := make([]string, len(rows))
	for i, row := range rows {
		var sb strings.Builder
		if i == 0 {
			sb.WriteString(gutter)
			sb.WriteString(prefix.Render(l.Kind.Prefix()))
		} else {
			sb.WriteString(blank)
			sb.WriteString(base.Render(" "))
		}
		used := 0
		for _, p := range row {
			sb.WriteString(p.style.Render(p.text))
			used += ansi.StringWidth(p.text)
		}
		if pad := room - used; pad > 0 && l.Kind != diffcard.LineContext {
			sb.WriteString(base.Render(strings.Repeat(" ", pad)))
		} else if pad > 0 {
			sb.WriteString(strings.Repeat(" ", pad))
		}
		out[i] = sb.String()
	}
	return out
}

// pieces splits the line's highlight segments along syntax token boundaries
// and picks a style for each run.
func (r *Renderer) pieces(lv *diffcard.LineView, tokens []diffcard.Token, base lipgloss.Style) []piece {
	var out []piece
	col := 0
	emit := func(text string, seg diffcard.Segment, tok diffcard.Style) {
		text, col = ExpandTabs(text, col)
		style := base
		if seg.Emphasized {
			style = r.emphasis(lv.Line.Kind, seg.Kind)
		}
		if tok.Foreground != "" {
			style = style.Foreground(lipgloss.Color(tok.Foreground))
		}
		if tok.Bold {
			style = style.Bold(true)
		}
		out = append(out, piece{text: text, style: style})
	}

	if len(tokens) == 0 {
		for _, seg := range lv.Segments {
			emit(seg.Text, seg, diffcard.Style{})
		}
		return out
	}

	// Both partition the same content, so every cut lands on a rune boundary.
	j, tokRest := 0, tokens[0].Text
	for _, seg := range lv.Segments {
		rest := seg.Text
		for rest != "" {
			for tokRest == "" && j+1 < len(tokens) {
				j++
				tokRest = tokens[j].Text
			}
			if tokRest == "" {
				emit(rest, seg, diffcard.Style{})
				break
			}
			n := min(len(rest), len(tokRest))
			emit(rest[:n], seg, tokens[j].Style)
			rest, tokRest = rest[n:], tokRest[n:]
		}
	}
	return out
}

func (r *Renderer) emphasis(line diffcard.LineKind, kind diffcard.HighlightKind) lipgloss.Style {
	s := r.styles
	switch kind {
	case diffcard.HighlightAdd:
		return s.AddedHighlight
	case diffcard.HighlightRemove:
		return s.DeletedHighlight
	case diffcard.HighlightChange:
		return s.ChangeHighlight
	}
	switch line {
	case diffcard.LineAdd:
		return s.AddedHighlight
	case diffcard.LineRemove:
		return s.DeletedHighlight
	}
	return s.ChangeHighlight
}

// layout breaks pieces into rows no wider than width. Without wrapping
// only the first row is kept and an ellipsis marks the cut.
func layout(pieces []piece, width int, wrap bool, base lipgloss.Style) [][]piece {
	total := 0
	for _, p := range pieces {
		total += ansi.StringWidth(p.text)
	}
	if total <= width {
		return [][]piece{pieces}
	}

	if !wrap {
		row := cut(pieces, width-ansi.StringWidth(ellipsis))
		return [][]piece{append(row, piece{text: ellipsis, style: base})}
	}

	var rows [][]piece
	var row []piece
	used := 0
	for _, p := range pieces {
		text := p.text
		for text != "" {
			room := width - used
			head := ansi.Truncate(text, room, "")
			if head == "" {
				if used == 0 {
					// A wide rune that cannot fit any row goes on its own.
					_, size := utf8.DecodeRuneInString(text)
					head = text[:size]
				} else {
					rows = append(rows, row)
					row, used = nil, 0
					continue
				}
			}
			row = append(row, piece{text: head, style: p.style})
			used += ansi.StringWidth(head)
			text = text[len(head):]
			if used >= width && text != "" {
				rows = append(rows, row)
				row, used = nil, 0
			}
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return rows
}

// cut keeps the leading pieces up to width cells.
func cut(pieces []piece, width int) []piece {
	var out []piece
	used := 0
	for _, p := range pieces {
		w := ansi.StringWidth(p.text)
		if used+w <= width {
			out = append(out, p)
			used += w
			continue
		}
		if head := ansi.Truncate(p.text, width-used, ""); head != "" {
			out = append(out, piece{text: head, style: p.style})
		}
		break
	}
	return out
}

// Clip keeps the first maxHeight lines of s, replacing the rest with a
// count of what was hidden. A maxHeight of zero or less keeps everything.
func (r *Renderer) Clip(s string, maxHeight int) string {
	if maxHeight <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) <= maxHeight {
		return s
	}
	keep := max(maxHeight-1, 0)
	hidden := len(lines) - keep
	return strings.Join(append(lines[:keep:keep], r.styles.Notice.Render(fmt.Sprintf("… %d more lines", hidden))), "\n")
}
