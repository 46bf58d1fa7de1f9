// Command diffcard displays diff payloads in the terminal.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fwojciec/diffcard"
	"github.com/fwojciec/diffcard/jsonl"
)

// ErrNoChanges is returned when the input contains no diff.
var ErrNoChanges = diffcard.ErrNoChanges

// FrameReader reads a recorded stream of payloads.
type FrameReader interface {
	Read(r io.Reader) ([]*diffcard.Diff, error)
}

// App loads the payloads to display.
type App struct {
	Input      io.Reader // Read when FilePath is empty
	FilePath   string
	Patch      bool // Treat the input as a unified patch
	Parser     diffcard.Parser
	Validator  diffcard.Validator
	Frames     FrameReader         // Defaults to a jsonl.Loader using Validator
	Summarizer diffcard.Summarizer // Optional
	Logger     *slog.Logger
}

// Run reads the input and returns its payloads in display order. The input
// is a unified patch, a single JSON payload, or JSONL frames.
func (a *App) Run(ctx context.Context) ([]*diffcard.Diff, error) {
	data, err := a.read()
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrNoChanges
	}

	var frames []*diffcard.Diff
	switch {
	case a.Patch || looksLikePatch(data):
		d, err := a.Parser.Parse(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		frames = []*diffcard.Diff{d}
	case json.Valid(data):
		d, err := a.Validator.Validate(data)
		if err != nil {
			return nil, err
		}
		frames = []*diffcard.Diff{d}
	default:
		frames, err = a.frames().Read(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
	}
	if len(frames) == 0 {
		return nil, ErrNoChanges
	}

	if a.Summarizer != nil {
		last := len(frames) - 1
		d, err := a.Summarizer.Summarize(ctx, frames[last])
		if err != nil {
			return nil, fmt.Errorf("summarize: %w", err)
		}
		frames[last] = d
	}
	a.logger().Info("input loaded", "frames", len(frames), "diff", frames[0].ID)
	return frames, nil
}

func (a *App) read() ([]byte, error) {
	if a.FilePath != "" {
		data, err := os.ReadFile(a.FilePath)
		if err != nil {
			return nil, fmt.Errorf("read input: %w", err)
		}
		return data, nil
	}
	if a.Input == nil {
		return nil, ErrNoChanges
	}
	data, err := io.ReadAll(a.Input)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}

func (a *App) frames() FrameReader {
	if a.Frames != nil {
		return a.Frames
	}
	return jsonl.NewLoader(a.Validator)
}

func (a *App) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func looksLikePatch(data []byte) bool {
	s := string(bytes.TrimLeft(data, " \t\r\n"))
	return strings.HasPrefix(s, "diff --git ") ||
		strings.HasPrefix(s, "From ") ||
		strings.HasPrefix(s, "--- ")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdin).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
