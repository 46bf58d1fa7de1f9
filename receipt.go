package diffcard

// Phase is the interaction phase of a diff.
type Phase int

// Diff phases. A diff is frozen while it carries a receipt.
const (
	PhaseInteractive Phase = iota
	PhaseFrozen
)

func (p Phase) String() string {
	if p == PhaseFrozen {
		return "frozen"
	}
	return "interactive"
}

// Phase returns the diff's interaction phase.
func (d *Diff) Phase() Phase {
	if d != nil && d.Receipt != nil {
		return PhaseFrozen
	}
	return PhaseInteractive
}

// ActionsEnabled reports whether actions at any scope may be triggered.
func (d *Diff) ActionsEnabled() bool {
	return d.Phase() == PhaseInteractive
}

// TransitionKind classifies a payload replacement.
type TransitionKind int

// Transition kinds.
const (
	TransitionUnchanged TransitionKind = iota
	TransitionReset                    // Diff id changed; view state starts fresh
	TransitionFroze                    // Same diff, receipt appeared
	TransitionUnfroze                  // Same diff, receipt removed
)

func (k TransitionKind) String() string {
	switch k {
	case TransitionReset:
		return "reset"
	case TransitionFroze:
		return "froze"
	case TransitionUnfroze:
		return "unfroze"
	}
	return "unchanged"
}

// Transition describes what changed when next replaces prev.
// A nil prev counts as a reset.
func Transition(prev, next *Diff) TransitionKind {
	if prev == nil || next == nil || prev.ID != next.ID {
		return TransitionReset
	}
	switch {
	case prev.Phase() == PhaseInteractive && next.Phase() == PhaseFrozen:
		return TransitionFroze
	case prev.Phase() == PhaseFrozen && next.Phase() == PhaseInteractive:
		return TransitionUnfroze
	}
	return TransitionUnchanged
}
