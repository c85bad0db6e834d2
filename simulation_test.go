package fedprompt

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/fedprompt/fedprompt/client"
	"github.com/fedprompt/fedprompt/coordinator"
	"github.com/fedprompt/fedprompt/pkg/feedback"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSimulationRunsToCompletion(t *testing.T) {
	sim, err := NewSimulation(DefaultConfig(), "", nil, testLogger())
	if err != nil {
		t.Fatalf("NewSimulation: %v", err)
	}

	if err := sim.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	coord := sim.Coordinator()
	if coord.Status() != coordinator.StatusCompleted {
		t.Errorf("status = %s, want %s", coord.Status(), coordinator.StatusCompleted)
	}
	if coord.Model().Round != DefaultConfig().NumRounds {
		t.Errorf("final round = %d, want %d", coord.Model().Round, DefaultConfig().NumRounds)
	}
}

func TestSimulationUsesCallerRunID(t *testing.T) {
	sim, err := NewSimulation(DefaultConfig(), "run-fixed", nil, testLogger())
	if err != nil {
		t.Fatalf("NewSimulation: %v", err)
	}
	if got := sim.Coordinator().RunID(); got != "run-fixed" {
		t.Errorf("run ID = %s, want run-fixed", got)
	}

	sim, err = NewSimulation(DefaultConfig(), "", nil, testLogger())
	if err != nil {
		t.Fatalf("NewSimulation: %v", err)
	}
	if sim.Coordinator().RunID() == "" {
		t.Error("empty run ID was not replaced with a generated one")
	}
}

func TestSimulationVolume(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumRounds = 2
	cfg.NumClients = 2
	cfg.EpochsPerClient = 3

	sim, err := NewSimulation(cfg, "", nil, testLogger())
	if err != nil {
		t.Fatalf("NewSimulation: %v", err)
	}
	if err := sim.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	rounds, err := sim.Coordinator().Rounds(context.Background())
	if err != nil {
		t.Fatalf("Rounds: %v", err)
	}
	if len(rounds) != 2 {
		t.Fatalf("recorded %d rounds, want 2", len(rounds))
	}

	sequences := 0
	for _, r := range rounds {
		sequences += len(r.Updates)
		for i, u := range r.Updates {
			if u.Round != r.Round {
				t.Errorf("update round = %d inside round %d", u.Round, r.Round)
			}
			// Client-index-minor ordering within the round.
			if want := "client-" + string(rune('0'+i)); u.ClientID != want {
				t.Errorf("round %d position %d: client = %s, want %s", r.Round, i, u.ClientID, want)
			}
			if u.Metrics["epochs"] != 3 {
				t.Errorf("client %s trained %v epochs, want 3", u.ClientID, u.Metrics["epochs"])
			}
		}
	}
	if sequences != 4 {
		t.Errorf("ran %d client sequences, want 4", sequences)
	}
}

func TestSimulationDeterminism(t *testing.T) {
	run := func() coordinator.GlobalModel {
		cfg := DefaultConfig()
		cfg.NumRounds = 3
		cfg.GenerationLatency = 0

		sim, err := NewSimulation(cfg, "", nil, testLogger())
		if err != nil {
			t.Fatalf("NewSimulation: %v", err)
		}
		if err := sim.Run(context.Background()); err != nil {
			t.Fatalf("Run: %v", err)
		}

		return sim.Coordinator().Model()
	}

	first := run()
	second := run()
	if !first.Params.Equal(second.Params) {
		t.Error("two identical runs produced different final models")
	}
}

func TestBogusFeedbackModeFailsBeforeAnyRound(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FeedbackMode = "bogus"

	_, err := NewSimulation(cfg, "", nil, testLogger())
	if !errors.Is(err, feedback.ErrUnsupportedMode) {
		t.Fatalf("NewSimulation error = %v, want ErrUnsupportedMode", err)
	}
}

func TestClientFailurePropagates(t *testing.T) {
	cfg := DefaultConfig()
	// An empty context input cannot happen through Validate; force a
	// mid-run failure with an impossible latency cancellation instead.
	cfg.GenerationLatency = 10

	sim, err := NewSimulation(cfg, "", nil, testLogger())
	if err != nil {
		t.Fatalf("NewSimulation: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = sim.Run(ctx)
	if err == nil {
		t.Fatal("Run with cancelled context returned nil")
	}

	var roundErr *client.RoundError
	if !errors.As(err, &roundErr) && !errors.Is(err, context.Canceled) {
		t.Errorf("Run error = %v, want round error or context cancellation", err)
	}
	if sim.Coordinator().Status() != coordinator.StatusFailed {
		t.Errorf("status = %s, want %s", sim.Coordinator().Status(), coordinator.StatusFailed)
	}
}
