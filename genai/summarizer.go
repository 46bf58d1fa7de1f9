// Package genai enriches diff payloads with prose from Gemini models using
// google.golang.org/genai.
package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/fwojciec/diffcard"
	"google.golang.org/genai"
)

// DefaultModel is the model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// maxLineChars bounds how much of each line goes into the prompt.
const maxLineChars = 200

// Compile-time interface verification.
var (
	_ diffcard.Summarizer = (*Summarizer)(nil)
	_ Generator           = (*Client)(nil)
)

// Generator produces a JSON document matching schema for prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, schema *genai.Schema) (string, error)
}

// Client generates content with the Gemini API.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient creates a Gemini API client. An empty model selects DefaultModel.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("genai: missing API key")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai: create client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{client: client, model: model}, nil
}

// Generate asks the model for a JSON response constrained by schema.
func (c *Client) Generate(ctx context.Context, prompt string, schema *genai.Schema) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	})
	if err != nil {
		return "", fmt.Errorf("genai: generate: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("genai: empty response")
	}
	return text, nil
}

// Summarizer fills in hunk summaries and a description.
type Summarizer struct {
	gen Generator
}

// NewSummarizer creates a Summarizer backed by gen.
func NewSummarizer(gen Generator) *Summarizer {
	return &Summarizer{gen: gen}
}

// summary is the model's answer.
type summary struct {
	Description string        `json:"description"`
	Hunks       []hunkSummary `json:"hunks"`
}

type hunkSummary struct {
	FileID  string `json:"fileId"`
	HunkID  string `json:"hunkId"`
	Summary string `json:"summary"`
}

// responseSchema constrains the model output to the summary shape.
func responseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"description": {Type: genai.TypeString},
			"hunks": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"fileId":  {Type: genai.TypeString},
						"hunkId":  {Type: genai.TypeString},
						"summary": {Type: genai.TypeString},
					},
					Required: []string{"fileId", "hunkId", "summary"},
				},
			},
		},
		Required: []string{"description", "hunks"},
	}
}

// Summarize returns a copy of d with summaries from the model. Existing
// hunk summaries and descriptions are kept; a frozen diff is returned as is.
func (s *Summarizer) Summarize(ctx context.Context, d *diffcard.Diff) (*diffcard.Diff, error) {
	if d == nil {
		return nil, errors.New("genai: nil diff")
	}
	if d.Phase() == diffcard.PhaseFrozen || len(d.Files) == 0 {
		return d, nil
	}

	text, err := s.gen.Generate(ctx, Prompt(d), responseSchema())
	if err != nil {
		return nil, err
	}
	var out summary
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("genai: decode response: %w", err)
	}
	return apply(d, out), nil
}

// Prompt builds the request text for d. Ids are included so answers can be
// matched back to hunks.
func Prompt(d *diffcard.Diff) string {
	var sb strings.Builder
	sb.WriteString("Summarize this code change for a reviewer.\n")
	sb.WriteString("Return a one-paragraph description of the whole change and one short sentence per hunk.\n")
	sb.WriteString("Refer to hunks by the fileId and hunkId given below.\n\n")
	if d.Title != "" {
		fmt.Fprintf(&sb, "Title: %s\n\n", d.Title)
	}
	for _, f := range d.Files {
		fmt.Fprintf(&sb, "File fileId=%q path=%q status=%s\n", f.ID, f.Path, f.Status)
		for _, h := range f.Hunks {
			fmt.Fprintf(&sb, "Hunk hunkId=%q %s\n", h.ID, diffcard.HunkHeader(&h))
			for _, l := range h.Lines {
				if !l.Kind.Valid() {
					continue
				}
				content := l.Content
				if r := []rune(content); len(r) > maxLineChars {
					content = string(r[:maxLineChars]) + "…"
				}
				sb.WriteString(l.Kind.Prefix())
				sb.WriteString(content)
				sb.WriteByte('\n')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// apply copies d and fills in the summaries. Answers for unknown hunks are
// dropped.
func apply(d *diffcard.Diff, s summary) *diffcard.Diff {
	c := *d
	c.Files = make([]diffcard.File, len(d.Files))
	for i, f := range d.Files {
		f.Hunks = append([]diffcard.Hunk(nil), f.Hunks...)
		c.Files[i] = f
	}
	if c.Description == "" {
		c.Description = strings.TrimSpace(s.Description)
	}
	for _, hs := range s.Hunks {
		f := c.FindFile(hs.FileID)
		if f == nil {
			continue
		}
		h := f.FindHunk(hs.HunkID)
		if h == nil || h.Summary != "" {
			continue
		}
		h.Summary = strings.TrimSpace(hs.Summary)
	}
	return &c
}
