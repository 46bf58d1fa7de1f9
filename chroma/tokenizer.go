// Package chroma provides syntax highlighting using the chroma library.
package chroma

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/fwojciec/diffcard"
)

// Compile-time interface verification.
var (
	_ diffcard.Tokenizer        = (*Tokenizer)(nil)
	_ diffcard.LanguageDetector = (*Detector)(nil)
)

// Tokenizer extracts syntax tokens using chroma.
type Tokenizer struct {
	styleFunc func(chroma.TokenType) diffcard.Style
}

// NewTokenizer creates a chroma-based tokenizer that styles tokens with
// styleFunc.
func NewTokenizer(styleFunc func(chroma.TokenType) diffcard.Style) (*Tokenizer, error) {
	if styleFunc == nil {
		return nil, errors.New("chroma: nil style function")
	}
	return &Tokenizer{styleFunc: styleFunc}, nil
}

// Tokenize splits source code into syntax-highlighted tokens for the given language.
// Returns nil if the language is not supported or an error occurs.
// Returns an empty slice for empty source (valid input, no tokens).
func (t *Tokenizer) Tokenize(language, source string) []diffcard.Token {
	if source == "" {
		return []diffcard.Token{}
	}

	iterator := t.iterate(language, source)
	if iterator == nil {
		return nil
	}

	var tokens []diffcard.Token
	for token := iterator(); token != chroma.EOF; token = iterator() {
		tokens = append(tokens, diffcard.Token{
			Text:  token.Value,
			Style: t.styleFunc(token.Type),
		})
	}
	return tokens
}

// TokenizeLines tokenizes source as a whole and returns the tokens of each
// line. Multi-line constructs such as block comments keep their style on
// every line they span.
func (t *Tokenizer) TokenizeLines(language, source string) [][]diffcard.Token {
	if source == "" {
		return [][]diffcard.Token{}
	}

	iterator := t.iterate(language, source)
	if iterator == nil {
		return nil
	}

	want := strings.Count(source, "\n") + 1
	lines := make([][]diffcard.Token, 1, want)
	for token := iterator(); token != chroma.EOF; token = iterator() {
		style := t.styleFunc(token.Type)
		parts := strings.Split(token.Value, "\n")
		for i, part := range parts {
			if i > 0 {
				lines = append(lines, nil)
			}
			if part != "" {
				last := len(lines) - 1
				lines[last] = append(lines[last], diffcard.Token{Text: part, Style: style})
			}
		}
	}

	// Lexers may append a trailing newline to the input.
	if len(lines) > want {
		lines = lines[:want]
	}
	return lines
}

func (t *Tokenizer) iterate(language, source string) chroma.Iterator {
	lexer := lexers.Get(language)
	if lexer == nil {
		return nil
	}

	// Coalesce for better performance with consecutive tokens of the same type
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return nil
	}
	return iterator
}

// StyleFromPalette returns a style function that colors tokens with the
// palette's syntax colors.
func StyleFromPalette(p diffcard.Palette) func(chroma.TokenType) diffcard.Style {
	return func(tt chroma.TokenType) diffcard.Style {
		// Exact types first, then the broader categories.
		switch {
		case tt == chroma.NameBuiltin || tt == chroma.NameBuiltinPseudo:
			return diffcard.Style{Foreground: string(p.Builtin)}
		case tt == chroma.NameFunction || tt == chroma.NameFunctionMagic:
			return diffcard.Style{Foreground: string(p.Function)}
		case tt.InCategory(chroma.Keyword):
			return diffcard.Style{Foreground: string(p.Keyword), Bold: true}
		case tt.InCategory(chroma.Comment):
			return diffcard.Style{Foreground: string(p.Comment)}
		case tt.InSubCategory(chroma.LiteralString):
			return diffcard.Style{Foreground: string(p.String)}
		case tt.InSubCategory(chroma.LiteralNumber):
			return diffcard.Style{Foreground: string(p.Number)}
		case tt.InCategory(chroma.Operator):
			return diffcard.Style{Foreground: string(p.Operator)}
		case tt.InCategory(chroma.Name):
			return diffcard.Style{Foreground: string(p.Name)}
		}
		return diffcard.Style{}
	}
}

// Detector determines languages from file names using chroma's lexer registry.
type Detector struct{}

// NewDetector creates a new chroma-based language detector.
func NewDetector() *Detector {
	return &Detector{}
}

// DetectFromPath returns the chroma lexer name for path, or "" if unknown.
func (d *Detector) DetectFromPath(path string) string {
	path = strings.TrimPrefix(path, "a/")
	path = strings.TrimPrefix(path, "b/")
	lexer := lexers.Match(filepath.Base(path))
	if lexer == nil {
		return ""
	}
	return lexer.Config().Name
}
