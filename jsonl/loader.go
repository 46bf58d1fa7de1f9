// Package jsonl loads sequences of diff payloads stored one per line.
//
// A JSONL file is a recorded stream: each line is a full payload that
// replaces the previous one, so replaying the file reproduces how a producer
// filled in a diff and how its receipt arrived.
package jsonl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/fwojciec/diffcard"
	"golang.org/x/sync/errgroup"
)

// maxLineSize bounds a single payload line.
const maxLineSize = 64 * 1024 * 1024

// Loader reads JSONL payload files and validates every line.
type Loader struct {
	validator diffcard.Validator
	limit     int
}

// NewLoader creates a Loader that checks each line with v.
func NewLoader(v diffcard.Validator) *Loader {
	return &Loader{validator: v, limit: runtime.GOMAXPROCS(0)}
}

// Load reads the file at path.
func (l *Loader) Load(path string) ([]*diffcard.Diff, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return l.Read(f)
}

// Read validates every non-blank line of r concurrently and returns the
// payloads in file order. The first failing line, by position, is reported.
func (l *Loader) Read(r io.Reader) ([]*diffcard.Diff, error) {
	type frame struct {
		line int
		data []byte
	}

	var frames []frame
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		data := make([]byte, len(scanner.Bytes()))
		copy(data, scanner.Bytes())
		frames = append(frames, frame{line: lineNum, data: data})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read line %d: %w", lineNum+1, err)
	}

	diffs := make([]*diffcard.Diff, len(frames))
	errs := make([]error, len(frames))

	var g errgroup.Group
	g.SetLimit(max(l.limit, 1))
	for i, fr := range frames {
		g.Go(func() error {
			d, err := l.validator.Validate(fr.data)
			if err != nil {
				errs[i] = fmt.Errorf("line %d: %w", fr.line, err)
				return nil
			}
			diffs[i] = d
			return nil
		})
	}
	_ = g.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return diffs, nil
}
