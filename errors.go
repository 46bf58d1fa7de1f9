package diffcard

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
)

// ErrNoChanges is returned when an input contains no file changes.
var ErrNoChanges = errors.New("no changes")

// Issue is a single violated invariant found while validating a payload.
type Issue struct {
	Field   string // Wire path, e.g. "files[0].hunks[1].lines[2].kind"
	Message string
}

func (i Issue) String() string {
	if i.Field == "" {
		return i.Message
	}
	return i.Field + ": " + i.Message
}

// ValidationError reports every problem found in a malformed payload.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.String()
	}
	return "invalid diff: " + strings.Join(parts, "; ")
}

// HasField reports whether any issue concerns the given field path.
func (e *ValidationError) HasField(field string) bool {
	for _, issue := range e.Issues {
		if issue.Field == field {
			return true
		}
	}
	return false
}

// RenderFault is an unexpected failure while assembling or drawing a diff.
type RenderFault struct {
	Cause any
	Stack []byte
}

func (f *RenderFault) Error() string {
	return fmt.Sprintf("render fault: %v", f.Cause)
}

// Unwrap returns the cause when it is an error.
func (f *RenderFault) Unwrap() error {
	if err, ok := f.Cause.(error); ok {
		return err
	}
	return nil
}

// Isolate runs fn and turns a panic into a *RenderFault, so a single broken
// diff degrades to an error instead of taking down its host.
func Isolate[T any](fn func() (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			result = zero
			err = &RenderFault{Cause: r, Stack: debug.Stack()}
		}
	}()
	return fn()
}
