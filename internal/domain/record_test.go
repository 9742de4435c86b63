package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "gooze.dev/pkg/jumble/internal/model"
)

func TestParseRecord(t *testing.T) {
	tests := []struct {
		name string
		line string
		want m.MutationOutcome
	}{
		{
			name: "killed with test name",
			line: "KILLED:A:m:0:t1",
			want: m.MutationOutcome{Point: 4, Status: m.Killed, TestName: "t1", Record: "KILLED:A:m:0:t1"},
		},
		{
			name: "killed without fields",
			line: "FAIL",
			want: m.MutationOutcome{Point: 4, Status: m.Killed, TestName: "FAIL", Record: "FAIL"},
		},
		{
			name: "survived",
			line: "PASS: A:m:4:t2",
			want: m.MutationOutcome{Point: 4, Status: m.Survived, Record: "PASS: A:m:4:t2"},
		},
		{
			name: "prefix without space is not survived",
			line: "PASS:A:m:4:t2",
			want: m.MutationOutcome{Point: 4, Status: m.Killed, TestName: "t2", Record: "PASS:A:m:4:t2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRecord(4, tt.line))
		})
	}
}

func TestTimeoutOutcome(t *testing.T) {
	got := TimeoutOutcome(9)
	assert.Equal(t, m.MutationOutcome{Point: 9, Status: m.Timeout, Record: "TIMEOUT"}, got)
}

func TestParseObservation(t *testing.T) {
	obs, err := ParseObservation("PASS: pkg.Foo:add:3:FooTest.testAdd")
	require.NoError(t, err)
	assert.Equal(t, Observation{
		ClassName:     "pkg.Foo",
		MethodName:    "add",
		MutationPoint: 3,
		TestName:      "FooTest.testAdd",
	}, obs)
}

func TestParseObservation_Malformed(t *testing.T) {
	for _, record := range []string{
		"KILLED:A:m:0:t1",
		"PASS: A:m",
		"PASS: A:m:three:t",
	} {
		t.Run(record, func(t *testing.T) {
			_, err := ParseObservation(record)
			require.ErrorIs(t, err, ErrMalformedRecord)
		})
	}
}
