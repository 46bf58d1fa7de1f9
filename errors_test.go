package diffcard_test

import (
	"errors"
	"testing"

	"github.com/fwojciec/diffcard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsolate(t *testing.T) {
	t.Parallel()

	t.Run("passes results through", func(t *testing.T) {
		t.Parallel()

		out, err := diffcard.Isolate(func() (string, error) { return "ok", nil })
		require.NoError(t, err)
		assert.Equal(t, "ok", out)
	})

	t.Run("passes errors through", func(t *testing.T) {
		t.Parallel()

		want := errors.New("boom")
		_, err := diffcard.Isolate(func() (int, error) { return 0, want })
		assert.ErrorIs(t, err, want)
	})

	t.Run("turns panics into render faults", func(t *testing.T) {
		t.Parallel()

		out, err := diffcard.Isolate(func() (string, error) {
			var d *diffcard.Diff
			return d.Files[0].Path, nil
		})

		var fault *diffcard.RenderFault
		require.ErrorAs(t, err, &fault)
		assert.Empty(t, out)
		assert.NotEmpty(t, fault.Stack)
		assert.Contains(t, err.Error(), "render fault")
	})

	t.Run("unwraps error causes", func(t *testing.T) {
		t.Parallel()

		cause := errors.New("missing file")
		_, err := diffcard.Isolate(func() (string, error) { panic(cause) })
		assert.ErrorIs(t, err, cause)
	})
}

func TestValidationError(t *testing.T) {
	t.Parallel()

	err := &diffcard.ValidationError{Issues: []diffcard.Issue{
		{Field: "files[0].path", Message: "is required"},
		{Message: "unexpected end of JSON input"},
	}}

	assert.Equal(t, "invalid diff: files[0].path: is required; unexpected end of JSON input", err.Error())
	assert.True(t, err.HasField("files[0].path"))
	assert.False(t, err.HasField("id"))
}
