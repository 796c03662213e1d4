package rosterdomain

import "fmt"

// InvalidShiftError reports a single shift that violates a hard limit
// (non-positive duration, malformed start, duration over the daily cap).
// Fatal: aborts the whole run.
type InvalidShiftError struct {
	Shift  Shift
	Reason string
}

func (e *InvalidShiftError) Error() string {
	return fmt.Sprintf("invalid shift %d (%s/%d on %s): %s", e.Shift.ID, e.Shift.ServiceID, e.Shift.ShiftNumber, e.Shift.Date, e.Reason)
}

// ExpansionAmbiguityError reports that the Shift Expander's mode detector
// could not classify the input as purely templated or purely dated. Fatal.
type ExpansionAmbiguityError struct {
	Reason string
}

func (e *ExpansionAmbiguityError) Error() string {
	return fmt.Sprintf("expansion mode ambiguous: %s", e.Reason)
}

// UnreachableShiftError reports that the Greedy Constructor could not place
// a shift even on a freshly spawned driver, indicating a data bug. Fatal.
type UnreachableShiftError struct {
	Shift  Shift
	Reason string
}

func (e *UnreachableShiftError) Error() string {
	return fmt.Sprintf("shift %d unreachable even on a fresh driver: %s", e.Shift.ID, e.Reason)
}

// CancelledError reports caller-requested cancellation. It is a soft
// outcome: PartialSolution still holds a fully-feasible best-so-far solution
// and the caller should treat this as success with an advisory flag, not as
// a failure. Time-budget expiry is not reported through this error: a
// refinement that runs out of budget returns its best-so-far with a nil
// error.
type CancelledError struct {
	PartialSolution *Solution
	Reason          string
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("cancelled: %s", e.Reason)
}

// ReplicationGapError reports that one or more target-month shifts had no
// matching (day-in-cycle, service, shift-number, vehicle) key in the source
// month. It is soft: PartialSolution holds whatever could be replicated and
// Gaps names the shifts the caller must resolve (typically by re-running the
// Greedy Constructor and LNS/ALNS Engine for that month).
type ReplicationGapError struct {
	Gaps            []ShiftID
	PartialSolution *Solution
}

func (e *ReplicationGapError) Error() string {
	return fmt.Sprintf("replication gap: %d target shifts had no matching source slot", len(e.Gaps))
}

// infeasibleMoveError reports that an LNS/ALNS operator produced an
// infeasible intermediate. It never escapes the lns package: the engine
// rolls back to the pre-move solution and counts the attempt as rejected for
// ALNS weight purposes.
type infeasibleMoveError struct {
	Reason string
}

func (e *infeasibleMoveError) Error() string {
	return fmt.Sprintf("infeasible move: %s", e.Reason)
}

// NewInfeasibleMoveError is exported so the lns package (and tests) can
// construct the sentinel without re-exporting the internal-looking type
// outside rosterdomain's error taxonomy.
func NewInfeasibleMoveError(reason string) error {
	return &infeasibleMoveError{Reason: reason}
}
