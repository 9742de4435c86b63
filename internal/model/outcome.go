package model

// NotApplicableCount is the mutation count reported for classes that cannot
// be mutated at all, such as interfaces.
const NotApplicableCount = -1

// OutcomeStatus classifies what happened to a single mutant.
type OutcomeStatus int

const (
	// Killed indicates the mutation was detected by tests.
	Killed OutcomeStatus = iota
	// Survived indicates the mutation was not detected by tests.
	Survived
	// Timeout indicates the worker did not report within the time budget.
	Timeout
)

func (s OutcomeStatus) String() string {
	switch s {
	case Killed:
		return "killed"
	case Survived:
		return "survived"
	case Timeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// MutationOutcome is the result recorded for exactly one mutation point.
type MutationOutcome struct {
	Point    int
	Status   OutcomeStatus
	TestName string // test that killed the mutant, when the record names one
	Record   string // raw worker line, or "TIMEOUT" when synthesized locally
}

// TestFailure describes one failing test of the baseline run.
type TestFailure struct {
	Test    string `yaml:"test"`
	Message string `yaml:"message"`
}

// TestOrder is the ordering and timing data the worker uses to schedule tests.
type TestOrder struct {
	Tests      []string `yaml:"tests"`
	RuntimesMs []int64  `yaml:"runtimes_ms"`
}

// BaselineResult is the outcome of running the suite against the unmutated class.
type BaselineResult struct {
	Successful bool          `yaml:"successful"`
	RuntimeMs  int64         `yaml:"runtime_ms"`
	RunCount   int           `yaml:"run_count"`
	Failures   []TestFailure `yaml:"failures"`
	Order      TestOrder     `yaml:"order"`
}

// ChannelState is the lifecycle state of a worker channel.
type ChannelState int

// Worker channel states. Absent and Dead require a respawn before use.
const (
	ChannelAbsent ChannelState = iota
	ChannelSpawning
	ChannelAwaitingHandshake
	ChannelReady
	ChannelDead
)

func (s ChannelState) String() string {
	switch s {
	case ChannelAbsent:
		return "absent"
	case ChannelSpawning:
		return "spawning"
	case ChannelAwaitingHandshake:
		return "awaiting-handshake"
	case ChannelReady:
		return "ready"
	case ChannelDead:
		return "dead"
	default:
		return "unknown"
	}
}

// Live reports whether the channel can be used without respawning.
func (s ChannelState) Live() bool {
	return s == ChannelReady
}
