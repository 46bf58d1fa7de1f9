// Package mock provides test doubles for diffcard interfaces.
package mock

import (
	"context"
	"io"

	"github.com/fwojciec/diffcard"
)

var (
	_ diffcard.ActionGate       = (*ActionGate)(nil)
	_ diffcard.ActionHandler    = (*ActionHandler)(nil)
	_ diffcard.Validator        = (*Validator)(nil)
	_ diffcard.Parser           = (*Parser)(nil)
	_ diffcard.Summarizer       = (*Summarizer)(nil)
	_ diffcard.Tokenizer        = (*Tokenizer)(nil)
	_ diffcard.LanguageDetector = (*LanguageDetector)(nil)
)

// ActionGate is a mock implementation of diffcard.ActionGate.
type ActionGate struct {
	BeforeActionFn func(ctx context.Context, ev diffcard.ActionEvent) (bool, error)
}

func (m *ActionGate) BeforeAction(ctx context.Context, ev diffcard.ActionEvent) (bool, error) {
	return m.BeforeActionFn(ctx, ev)
}

// ActionHandler is a mock implementation of diffcard.ActionHandler.
type ActionHandler struct {
	HandleActionFn func(ctx context.Context, ev diffcard.ActionEvent) error
}

func (m *ActionHandler) HandleAction(ctx context.Context, ev diffcard.ActionEvent) error {
	return m.HandleActionFn(ctx, ev)
}

// Validator is a mock implementation of diffcard.Validator.
type Validator struct {
	ValidateFn func(data []byte) (*diffcard.Diff, error)
}

func (m *Validator) Validate(data []byte) (*diffcard.Diff, error) {
	return m.ValidateFn(data)
}

// Parser is a mock implementation of diffcard.Parser.
type Parser struct {
	ParseFn func(r io.Reader) (*diffcard.Diff, error)
}

func (m *Parser) Parse(r io.Reader) (*diffcard.Diff, error) {
	return m.ParseFn(r)
}

// Summarizer is a mock implementation of diffcard.Summarizer.
type Summarizer struct {
	SummarizeFn func(ctx context.Context, d *diffcard.Diff) (*diffcard.Diff, error)
}

func (m *Summarizer) Summarize(ctx context.Context, d *diffcard.Diff) (*diffcard.Diff, error) {
	return m.SummarizeFn(ctx, d)
}

// Tokenizer is a mock implementation of diffcard.Tokenizer.
type Tokenizer struct {
	TokenizeFn      func(language, source string) []diffcard.Token
	TokenizeLinesFn func(language, source string) [][]diffcard.Token
}

func (m *Tokenizer) Tokenize(language, source string) []diffcard.Token {
	return m.TokenizeFn(language, source)
}

func (m *Tokenizer) TokenizeLines(language, source string) [][]diffcard.Token {
	return m.TokenizeLinesFn(language, source)
}

// LanguageDetector is a mock implementation of diffcard.LanguageDetector.
type LanguageDetector struct {
	DetectFromPathFn func(path string) string
}

func (m *LanguageDetector) DetectFromPath(path string) string {
	return m.DetectFromPathFn(path)
}
