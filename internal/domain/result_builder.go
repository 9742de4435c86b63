package domain

import m "gooze.dev/pkg/jumble/internal/model"

// BuildNotApplicable is the outcome for classes without mutation points.
func BuildNotApplicable(className string) m.JumbleOutcome {
	return m.NotApplicable{Class: className}
}

// BuildInitialTestsFailed is the outcome of a run stopped before mutating.
// A nil baseline means a test class could not be resolved.
func BuildInitialTestsFailed(className string, testClassNames []string, baseline *m.BaselineResult) m.JumbleOutcome {
	return m.InitialTestsFailed{
		Class:          className,
		TestClassNames: cloneStrings(testClassNames),
		Baseline:       baseline,
	}
}

// BuildCompleted is the outcome of a run that visited every mutation point.
func BuildCompleted(className string, testClassNames []string, baseline m.BaselineResult, outcomes []m.MutationOutcome, timeoutMs int64) m.JumbleOutcome {
	return m.Completed{
		Class:          className,
		TestClassNames: cloneStrings(testClassNames),
		Baseline:       baseline,
		Outcomes:       append([]m.MutationOutcome(nil), outcomes...),
		TimeoutMs:      timeoutMs,
	}
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}

	return append([]string{}, values...)
}
