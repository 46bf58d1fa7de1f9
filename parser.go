package diffcard

import (
	"context"
	"io"
)

// Parser converts unified patch text into a diff payload.
type Parser interface {
	// Parse reads a patch and returns a payload with generated ids.
	Parse(r io.Reader) (*Diff, error)
}

// Validator is the trust boundary for untrusted payloads.
type Validator interface {
	// Validate decodes a JSON payload and checks every structural invariant.
	// Failures are reported as a single *ValidationError.
	Validate(data []byte) (*Diff, error)
}

// Summarizer enriches a diff with prose, typically produced by a model.
type Summarizer interface {
	// Summarize returns a copy of d with hunk summaries and a description
	// filled in. d itself is not modified.
	Summarize(ctx context.Context, d *Diff) (*Diff, error)
}
