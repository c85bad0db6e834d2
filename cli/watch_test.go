package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fedprompt/fedprompt/pkg/events"
)

func TestWatchTopics(t *testing.T) {
	topics := events.NewTopicBuilder("fedprompt")

	cases := []struct {
		name  string
		runID string
		want  []string
	}{
		{
			name:  "single run",
			runID: "run-1",
			want: []string{
				"fedprompt/runs/run-1/rounds/start",
				"fedprompt/runs/run-1/rounds/completed",
				"fedprompt/runs/run-1/completed",
			},
		},
		{
			name:  "all runs",
			runID: "",
			want: []string{
				"fedprompt/runs/+/rounds/start",
				"fedprompt/runs/+/rounds/completed",
				"fedprompt/runs/+/completed",
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := watchTopics(topics, tc.runID)
			if len(got) != len(tc.want) {
				t.Fatalf("got %d topics, want %d", len(got), len(tc.want))
			}
			for i := range tc.want {
				if got[i] != tc.want[i] {
					t.Errorf("topic %d = %s, want %s", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestWatchRequiresBrokerURL(t *testing.T) {
	cmd := NewWatchCmd()

	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if !strings.Contains(errOut.String(), "broker URL is required") {
		t.Errorf("expected missing-broker error, got %q", errOut.String())
	}
}
