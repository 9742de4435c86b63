package model

// JumbleOutcome is the final result of a coordinator run. It is one of
// NotApplicable, InitialTestsFailed or Completed; callers match it with a
// type switch.
type JumbleOutcome interface {
	ClassName() string
	jumbleOutcome()
}

// NotApplicable is returned for classes without mutation points (e.g. interfaces).
type NotApplicable struct {
	Class string
}

// InitialTestsFailed is returned when the suite could not be resolved or did
// not pass against the unmutated class. Baseline is nil when a test class
// could not be resolved.
type InitialTestsFailed struct {
	Class          string
	TestClassNames []string
	Baseline       *BaselineResult
}

// Completed carries one outcome per mutation point, in point order.
type Completed struct {
	Class          string
	TestClassNames []string
	Baseline       BaselineResult
	Outcomes       []MutationOutcome
	TimeoutMs      int64
}

// ClassName implements JumbleOutcome.
func (r NotApplicable) ClassName() string { return r.Class }

// ClassName implements JumbleOutcome.
func (r InitialTestsFailed) ClassName() string { return r.Class }

// ClassName implements JumbleOutcome.
func (r Completed) ClassName() string { return r.Class }

func (NotApplicable) jumbleOutcome()      {}
func (InitialTestsFailed) jumbleOutcome() {}
func (Completed) jumbleOutcome()          {}
