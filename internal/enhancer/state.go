package enhancer

// State is a step of the per-record enrichment state machine:
//
//	pending ─┬─ summary unsafe ──────────────────────────────► dropped_summary
//	         └─► summary_checked ─► generated | repaired | defaulted
//	                                   └─ any field unsafe ──► dropped_output
//	                                   └─ all fields safe ───► kept
//
// failed_kept is entered from any state when the task panics.
type State string

const (
	StatePending        State = "pending"
	StateSummaryChecked State = "summary_checked"
	StateDroppedSummary State = "dropped_summary"
	StateGenerated      State = "generated"
	StateRepaired       State = "repaired"
	StateDefaulted      State = "defaulted"
	StateDroppedOutput  State = "dropped_output"
	StateKept           State = "kept"
	StateFailedKept     State = "failed_kept"
)

// Terminal reports whether no further transition follows s.
func (s State) Terminal() bool {
	switch s {
	case StateDroppedSummary, StateDroppedOutput, StateKept, StateFailedKept:
		return true
	}
	return false
}

// Kept reports whether a record in terminal state s is written to output.
func (s State) Kept() bool {
	return s == StateKept || s == StateFailedKept
}
