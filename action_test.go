package diffcard_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/diffcard"
	"github.com/fwojciec/diffcard/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spy records gate and handler calls in order.
type spy struct {
	calls   []string
	allow   bool
	gateErr error
	runErr  error
}

func (s *spy) dispatcher() *diffcard.Dispatcher {
	return &diffcard.Dispatcher{
		Gate: &mock.ActionGate{
			BeforeActionFn: func(_ context.Context, ev diffcard.ActionEvent) (bool, error) {
				s.calls = append(s.calls, "gate:"+ev.ActionID)
				return s.allow, s.gateErr
			},
		},
		Handler: &mock.ActionHandler{
			HandleActionFn: func(_ context.Context, ev diffcard.ActionEvent) error {
				s.calls = append(s.calls, "commit:"+ev.ActionID)
				return s.runErr
			},
		},
	}
}

func eventsFor(d *diffcard.Diff) []diffcard.ActionEvent {
	f := &d.Files[0]
	h := &f.Hunks[0]
	l := &h.Lines[2]
	return []diffcard.ActionEvent{
		diffcard.NewDiffEvent(d, "apply"),
		diffcard.NewFileEvent(d, f, "revert-file"),
		diffcard.NewHunkEvent(d, f, h, "apply-hunk"),
		diffcard.NewLineEvent(d, f, h, l, "comment"),
	}
}

func TestDispatcher_GateThenCommit(t *testing.T) {
	t.Parallel()

	s := &spy{allow: true}
	d := sampleDiff()

	for _, ev := range eventsFor(d) {
		outcome, err := s.dispatcher().Dispatch(context.Background(), ev)
		require.NoError(t, err)
		assert.Equal(t, diffcard.OutcomeCommitted, outcome)
	}

	assert.Equal(t, []string{
		"gate:apply", "commit:apply",
		"gate:revert-file", "commit:revert-file",
		"gate:apply-hunk", "commit:apply-hunk",
		"gate:comment", "commit:comment",
	}, s.calls)
}

func TestDispatcher_LineEventCarriesAncestors(t *testing.T) {
	t.Parallel()

	d := sampleDiff()
	var got diffcard.ActionEvent
	dispatcher := &diffcard.Dispatcher{
		Handler: diffcard.HandlerFunc(func(_ context.Context, ev diffcard.ActionEvent) error {
			got = ev
			return nil
		}),
	}

	_, err := dispatcher.Dispatch(context.Background(), eventsFor(d)[3])
	require.NoError(t, err)

	assert.Equal(t, diffcard.ScopeLine, got.Scope)
	assert.Same(t, d, got.Diff)
	assert.Same(t, &d.Files[0], got.File)
	assert.Same(t, &d.Files[0].Hunks[0], got.Hunk)
	assert.Same(t, &d.Files[0].Hunks[0].Lines[2], got.Line)
}

func TestDispatcher_GateFalseAborts(t *testing.T) {
	t.Parallel()

	s := &spy{allow: false}
	outcome, err := s.dispatcher().Dispatch(context.Background(), eventsFor(sampleDiff())[0])

	require.NoError(t, err)
	assert.Equal(t, diffcard.OutcomeBlocked, outcome)
	assert.Equal(t, []string{"gate:apply"}, s.calls)
}

func TestDispatcher_NoGateProceeds(t *testing.T) {
	t.Parallel()

	committed := false
	dispatcher := &diffcard.Dispatcher{
		Handler: diffcard.HandlerFunc(func(context.Context, diffcard.ActionEvent) error {
			committed = true
			return nil
		}),
	}

	outcome, err := dispatcher.Dispatch(context.Background(), eventsFor(sampleDiff())[0])
	require.NoError(t, err)
	assert.Equal(t, diffcard.OutcomeCommitted, outcome)
	assert.True(t, committed)
}

func TestDispatcher_FrozenDiffRunsNothing(t *testing.T) {
	t.Parallel()

	s := &spy{allow: true}
	d := frozen(sampleDiff())

	for _, ev := range eventsFor(d) {
		outcome, err := s.dispatcher().Dispatch(context.Background(), ev)
		require.NoError(t, err)
		assert.Equal(t, diffcard.OutcomeFrozen, outcome, "scope %s", ev.Scope)
	}
	assert.Empty(t, s.calls, "neither gate nor commit may run on a frozen diff")
}

func TestDispatcher_Errors(t *testing.T) {
	t.Parallel()

	t.Run("gate error prevents commit", func(t *testing.T) {
		t.Parallel()

		gateErr := errors.New("confirm dialog crashed")
		s := &spy{allow: true, gateErr: gateErr}

		_, err := s.dispatcher().Dispatch(context.Background(), eventsFor(sampleDiff())[0])
		assert.ErrorIs(t, err, gateErr)
		assert.Equal(t, []string{"gate:apply"}, s.calls)
	})

	t.Run("commit error is returned", func(t *testing.T) {
		t.Parallel()

		runErr := errors.New("network down")
		s := &spy{allow: true, runErr: runErr}

		outcome, err := s.dispatcher().Dispatch(context.Background(), eventsFor(sampleDiff())[0])
		assert.ErrorIs(t, err, runErr)
		assert.Equal(t, diffcard.OutcomeCommitted, outcome)
		assert.Equal(t, []string{"gate:apply", "commit:apply"}, s.calls)
	})

	t.Run("undeclared action id", func(t *testing.T) {
		t.Parallel()

		s := &spy{allow: true}
		_, err := s.dispatcher().Dispatch(context.Background(), diffcard.NewDiffEvent(sampleDiff(), "nope"))
		assert.ErrorIs(t, err, diffcard.ErrUnknownAction)
		assert.Empty(t, s.calls)
	})

	t.Run("action declared at another scope", func(t *testing.T) {
		t.Parallel()

		d := sampleDiff()
		s := &spy{allow: true}
		_, err := s.dispatcher().Dispatch(context.Background(), diffcard.NewFileEvent(d, &d.Files[0], "apply"))
		assert.ErrorIs(t, err, diffcard.ErrUnknownAction)
	})

	t.Run("missing ancestor", func(t *testing.T) {
		t.Parallel()

		d := sampleDiff()
		ev := diffcard.NewHunkEvent(d, nil, &d.Files[0].Hunks[0], "apply-hunk")
		_, err := (&diffcard.Dispatcher{}).Dispatch(context.Background(), ev)
		assert.ErrorIs(t, err, diffcard.ErrInvalidEvent)
	})
}

func TestDispatcher_RequestReturnsCommit(t *testing.T) {
	t.Parallel()

	s := &spy{allow: true}
	commit, outcome, err := s.dispatcher().Request(context.Background(), eventsFor(sampleDiff())[1])

	require.NoError(t, err)
	require.NotNil(t, commit)
	assert.Equal(t, diffcard.OutcomeCommitted, outcome)
	assert.Equal(t, []string{"gate:revert-file"}, s.calls, "request must not commit")

	require.NoError(t, commit.Run(context.Background()))
	assert.Equal(t, []string{"gate:revert-file", "commit:revert-file"}, s.calls)
}

func TestActionEvent_Action(t *testing.T) {
	t.Parallel()

	ev := eventsFor(sampleDiff())[1]
	a, ok := ev.Action()

	require.True(t, ok)
	assert.Equal(t, "Revert", a.Label)
	assert.Equal(t, diffcard.ToneDanger, a.Tone)
}
