package main

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/fwojciec/diffcard"
)

// Compile-time interface verification.
var (
	_ diffcard.ActionGate    = (*Host)(nil)
	_ diffcard.ActionHandler = (*Host)(nil)
)

// Host answers actions triggered in the viewer. It refuses denied actions
// and acknowledges the rest by sending the diff back with a receipt.
type Host struct {
	Config  diffcard.Config
	Updates chan<- *diffcard.Diff
	Now     func() time.Time
	Logger  *slog.Logger
}

// BeforeAction approves every action not on the deny list.
func (h *Host) BeforeAction(_ context.Context, ev diffcard.ActionEvent) (bool, error) {
	if h.Config.Denies(ev.ActionID) {
		h.logger().Info("action denied", "action", ev.ActionID, "scope", ev.Scope)
		return false, nil
	}
	return true, nil
}

// HandleAction sends the acknowledged diff to the viewer.
func (h *Host) HandleAction(ctx context.Context, ev diffcard.ActionEvent) error {
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	next := Acknowledge(ev, now())
	h.logger().Info("action committed", "action", ev.ActionID, "scope", ev.Scope, "diff", ev.Diff.ID)
	select {
	case h.Updates <- next:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Host) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Acknowledge returns a copy of the event's diff carrying a successful
// receipt for the action. The copy keeps the diff id so view state survives.
func Acknowledge(ev diffcard.ActionEvent, now time.Time) *diffcard.Diff {
	label := ev.ActionID
	if a, ok := ev.Action(); ok {
		label = a.Label
	}
	d := *ev.Diff
	d.Receipt = &diffcard.Receipt{
		Kind:      receiptKind(ev.ActionID),
		Status:    diffcard.ReceiptSuccess,
		Summary:   label + " applied",
		CreatedAt: now,
	}
	if ev.File != nil {
		d.Receipt.AffectedFileIDs = []string{ev.File.ID}
	}
	if ev.Hunk != nil {
		d.Receipt.AffectedHunkIDs = []string{ev.Hunk.ID}
	}
	return &d
}

func receiptKind(actionID string) diffcard.ReceiptKind {
	switch {
	case strings.Contains(actionID, "revert"):
		return diffcard.ReceiptRevert
	case strings.Contains(actionID, "comment"):
		return diffcard.ReceiptComment
	case strings.Contains(actionID, "apply"):
		return diffcard.ReceiptApply
	}
	return diffcard.ReceiptCustom
}

// replay sends frames to updates one at a time, pausing delay between them.
func replay(ctx context.Context, frames []*diffcard.Diff, delay time.Duration, updates chan<- *diffcard.Diff) {
	for _, d := range frames {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return
		}
		select {
		case updates <- d:
		case <-ctx.Done():
			return
		}
	}
}
