package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/diffcard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const payload = `{"id":"d1","title":"Add hello","files":[{"id":"f1","path":"hello.go","status":"added","hunks":[{"id":"h1","lines":[{"id":"l1","kind":"add","content":"package main"}]}]}]}`

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(strings.NewReader(stdin))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "missing.yaml")))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestValidateCmd(t *testing.T) {
	t.Parallel()

	t.Run("reports every frame", func(t *testing.T) {
		t.Parallel()

		out, err := execute(t, payload+"\n"+payload, "validate")

		require.NoError(t, err)
		assert.Contains(t, out, "frame 1: ok (d1, 1 files, interactive)")
		assert.Contains(t, out, "frame 2: ok")
	})

	t.Run("lists issues", func(t *testing.T) {
		t.Parallel()

		out, err := execute(t, `{"id":"","files":[{"id":"f1","path":"a.go","status":"bogus"}]}`, "validate")

		var verr *diffcard.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, len(verr.Issues), strings.Count(out, "\n"))
		assert.Contains(t, out, "files[0].status")
	})
}

func TestRenderCmd(t *testing.T) {
	t.Parallel()

	t.Run("prints the diff", func(t *testing.T) {
		t.Parallel()

		out, err := execute(t, payload, "render", "--width", "40")

		require.NoError(t, err)
		assert.Contains(t, out, "Add hello")
		assert.Contains(t, out, "hello.go")
		assert.Contains(t, out, "+package main")
	})

	t.Run("clips to max height", func(t *testing.T) {
		t.Parallel()

		out, err := execute(t, payload, "render", "--max-height", "2")

		require.NoError(t, err)
		assert.Contains(t, out, "more lines")
		assert.Equal(t, 2, strings.Count(strings.TrimRight(out, "\n"), "\n")+1)
	})

	t.Run("reads a file argument", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "d.json")
		require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

		out, err := execute(t, "", "render", path)

		require.NoError(t, err)
		assert.Contains(t, out, "hello.go")
	})

	t.Run("rejects an unknown theme", func(t *testing.T) {
		t.Parallel()

		_, err := execute(t, payload, "render", "--theme", "neon")

		assert.Error(t, err)
	})
}

func TestDisplayFlags_Apply(t *testing.T) {
	t.Parallel()

	cmd := newRenderCmd(strings.NewReader(""), nil)
	require.NoError(t, cmd.ParseFlags([]string{"--split", "--no-line-numbers", "--max-height", "12"}))

	var f displayFlags
	f.split, f.noLineNumbers, f.maxHeight = true, true, 12
	cfg := f.apply(cmd, diffcard.DefaultConfig())

	assert.Equal(t, diffcard.ViewSplit, cfg.ViewMode)
	assert.False(t, cfg.ShowLineNumbers)
	assert.Equal(t, 12, cfg.MaxHeight)
	assert.False(t, cfg.WrapLines, "unset flags keep configured values")
}

func TestReplay(t *testing.T) {
	t.Parallel()

	t.Run("sends frames in order", func(t *testing.T) {
		t.Parallel()

		updates := make(chan *diffcard.Diff, 3)
		frames := []*diffcard.Diff{{ID: "a"}, {ID: "b"}, {ID: "c"}}

		replay(context.Background(), frames, time.Millisecond, updates)

		require.Len(t, updates, 3)
		for _, want := range []string{"a", "b", "c"} {
			assert.Equal(t, want, (<-updates).ID)
		}
	})

	t.Run("stops when cancelled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		updates := make(chan *diffcard.Diff)

		replay(ctx, []*diffcard.Diff{{ID: "a"}}, time.Hour, updates)

		assert.Empty(t, updates)
	})
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "diffcard.log")
	logger, closeLog, err := newLogger(path)
	require.NoError(t, err)

	logger.Info("diff replaced", "diff", "d1")
	require.NoError(t, closeLog())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "diff replaced")
	assert.Contains(t, string(data), "diff=d1")
}
