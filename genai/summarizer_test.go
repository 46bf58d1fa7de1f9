package genai_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/diffcard"
	dgenai "github.com/fwojciec/diffcard/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeGenerator struct {
	GenerateFn func(ctx context.Context, prompt string, schema *genai.Schema) (string, error)
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, schema *genai.Schema) (string, error) {
	return f.GenerateFn(ctx, prompt, schema)
}

func respond(text string) *fakeGenerator {
	return &fakeGenerator{
		GenerateFn: func(context.Context, string, *genai.Schema) (string, error) {
			return text, nil
		},
	}
}

func sampleDiff() *diffcard.Diff {
	return &diffcard.Diff{
		ID:    "d1",
		Title: "Add login",
		Files: []diffcard.File{
			{
				ID:     "f1",
				Path:   "auth/login.go",
				Status: diffcard.FileModified,
				Hunks: []diffcard.Hunk{
					{ID: "h1", Header: "@@ -1 +1 @@", Lines: []diffcard.Line{
						{ID: "l1", Kind: diffcard.LineRemove, Content: "func login() {}"},
						{ID: "l2", Kind: diffcard.LineAdd, Content: "func login(user string) {}"},
					}},
					{ID: "h2", Summary: "Keeps logout", Lines: []diffcard.Line{
						{ID: "l1", Kind: diffcard.LineContext, Content: "func logout() {}"},
					}},
				},
			},
		},
	}
}

func TestSummarizer_Summarize(t *testing.T) {
	t.Parallel()

	d := sampleDiff()
	s := dgenai.NewSummarizer(respond(`{
		"description": "  Login now takes a user name. ",
		"hunks": [
			{"fileId": "f1", "hunkId": "h1", "summary": "Accept a user name"},
			{"fileId": "f1", "hunkId": "h2", "summary": "Overwritten"},
			{"fileId": "nope", "hunkId": "h1", "summary": "Unknown"}
		]
	}`))

	got, err := s.Summarize(context.Background(), d)

	require.NoError(t, err)
	assert.Equal(t, "Login now takes a user name.", got.Description)
	assert.Equal(t, "Accept a user name", got.Files[0].Hunks[0].Summary)
	assert.Equal(t, "Keeps logout", got.Files[0].Hunks[1].Summary)

	// The input is left untouched.
	assert.Empty(t, d.Description)
	assert.Empty(t, d.Files[0].Hunks[0].Summary)
}

func TestSummarizer_KeepsExistingDescription(t *testing.T) {
	t.Parallel()

	d := sampleDiff()
	d.Description = "Written by hand"

	got, err := dgenai.NewSummarizer(respond(`{"description":"From model","hunks":[]}`)).Summarize(context.Background(), d)

	require.NoError(t, err)
	assert.Equal(t, "Written by hand", got.Description)
}

func TestSummarizer_SendsPromptAndSchema(t *testing.T) {
	t.Parallel()

	var prompt string
	var schema *genai.Schema
	gen := &fakeGenerator{
		GenerateFn: func(_ context.Context, p string, s *genai.Schema) (string, error) {
			prompt, schema = p, s
			return `{"description":"","hunks":[]}`, nil
		},
	}

	_, err := dgenai.NewSummarizer(gen).Summarize(context.Background(), sampleDiff())

	require.NoError(t, err)
	assert.Contains(t, prompt, `fileId="f1"`)
	assert.Contains(t, prompt, `hunkId="h1"`)
	assert.Contains(t, prompt, "+func login(user string) {}")
	assert.Contains(t, prompt, "-func login() {}")
	require.NotNil(t, schema)
	assert.Equal(t, genai.TypeObject, schema.Type)
	assert.Contains(t, schema.Properties, "hunks")
}

func TestSummarizer_Errors(t *testing.T) {
	t.Parallel()

	t.Run("generator failure", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("quota exceeded")
		gen := &fakeGenerator{
			GenerateFn: func(context.Context, string, *genai.Schema) (string, error) {
				return "", boom
			},
		}

		_, err := dgenai.NewSummarizer(gen).Summarize(context.Background(), sampleDiff())

		assert.ErrorIs(t, err, boom)
	})

	t.Run("malformed response", func(t *testing.T) {
		t.Parallel()

		_, err := dgenai.NewSummarizer(respond("not json")).Summarize(context.Background(), sampleDiff())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode response")
	})

	t.Run("nil diff", func(t *testing.T) {
		t.Parallel()

		_, err := dgenai.NewSummarizer(respond("{}")).Summarize(context.Background(), nil)

		assert.Error(t, err)
	})
}

func TestSummarizer_SkipsFrozenDiff(t *testing.T) {
	t.Parallel()

	d := sampleDiff()
	d.Receipt = &diffcard.Receipt{Status: diffcard.ReceiptSuccess, Summary: "Applied", CreatedAt: time.Now()}
	gen := &fakeGenerator{
		GenerateFn: func(context.Context, string, *genai.Schema) (string, error) {
			t.Fatal("generator should not be called")
			return "", nil
		},
	}

	got, err := dgenai.NewSummarizer(gen).Summarize(context.Background(), d)

	require.NoError(t, err)
	assert.Same(t, d, got)
}

func TestPrompt_TruncatesLongLines(t *testing.T) {
	t.Parallel()

	d := sampleDiff()
	d.Files[0].Hunks[0].Lines[0].Content = strings.Repeat("x", 500)

	prompt := dgenai.Prompt(d)

	assert.Contains(t, prompt, "-"+strings.Repeat("x", 200)+"…")
	assert.NotContains(t, prompt, strings.Repeat("x", 201))
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	t.Parallel()

	_, err := dgenai.NewClient(context.Background(), "", "")

	assert.Error(t, err)
}
