package diffcard

import "context"

// Viewer displays a diff to the user.
type Viewer interface {
	// View displays the diff and blocks until the user exits. Payloads
	// received on updates replace the displayed diff; updates may be nil.
	View(ctx context.Context, diff *Diff, updates <-chan *Diff) error
}
