package domain

import "fmt"

// MutationOp names the external side effect that failed.
type MutationOp string

const (
	OpAddLabel         MutationOp = "add label"
	OpRemoveLabel      MutationOp = "remove label"
	OpEnsureLabel      MutationOp = "ensure label"
	OpPublishDashboard MutationOp = "publish dashboard"
)

// MutationError is a per-item recoverable failure of a label or issue
// mutation. The orchestrator logs it and continues with the remaining
// items and categories; only snapshot fetch failures abort a run.
type MutationError struct {
	Op     MutationOp
	Number int // item number, 0 when the mutation is not item-scoped
	Label  string
	Err    error
}

func (e *MutationError) Error() string {
	if e.Number > 0 {
		return fmt.Sprintf("failed to %s %q on #%d: %v", e.Op, e.Label, e.Number, e.Err)
	}
	return fmt.Sprintf("failed to %s %q: %v", e.Op, e.Label, e.Err)
}

func (e *MutationError) Unwrap() error {
	return e.Err
}
