package domain

import m "gooze.dev/pkg/jumble/internal/model"

// Tally counts outcomes by status.
type Tally struct {
	Killed   int
	Survived int
	Timeout  int
}

// Total is the number of counted outcomes.
func (t Tally) Total() int {
	return t.Killed + t.Survived + t.Timeout
}

// TallyOutcomes counts the outcomes of a run.
func TallyOutcomes(outcomes []m.MutationOutcome) Tally {
	var tally Tally

	for _, outcome := range outcomes {
		switch outcome.Status {
		case m.Killed:
			tally.Killed++
		case m.Survived:
			tally.Survived++
		case m.Timeout:
			tally.Timeout++
		}
	}

	return tally
}

// MutationScore returns the detected share of mutants in [0, 1]. A mutant
// that hangs the suite counts as detected. No outcomes scores 1.
func MutationScore(outcomes []m.MutationOutcome) float64 {
	tally := TallyOutcomes(outcomes)
	if tally.Total() == 0 {
		return 1.0
	}

	return float64(tally.Killed+tally.Timeout) / float64(tally.Total())
}
