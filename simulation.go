// Package fedprompt wires a full FLHF simulation: a coordinator, a pool
// of clients holding private strategy models, and the simulated
// generation and feedback capabilities they query each round.
package fedprompt

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/0x6flab/namegenerator"
	"github.com/google/uuid"

	"github.com/fedprompt/fedprompt/client"
	"github.com/fedprompt/fedprompt/coordinator"
	"github.com/fedprompt/fedprompt/pkg/feedback"
	"github.com/fedprompt/fedprompt/pkg/generation"
	"github.com/fedprompt/fedprompt/pkg/storage"
	"github.com/fedprompt/fedprompt/pkg/strategy"
)

var namegen = namegenerator.NewGenerator()

type Simulation struct {
	cfg         *Config
	coordinator *coordinator.Coordinator
	logger      *slog.Logger
}

// NewSimulation validates the configuration and builds every component.
// All misconfiguration surfaces here, before any round executes. An
// empty runID gets a generated one; callers that register the run with
// external systems (MQTT last will, event topics) pass their own.
func NewSimulation(cfg *Config, runID string, emitter coordinator.EventEmitter, logger *slog.Logger) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if emitter == nil {
		emitter = coordinator.NopEmitter{}
	}

	shape := strategy.Shape{
		NumTemplates:  cfg.Model.NumPromptTemplates,
		NumKeywords:   cfg.Model.NumFixedKeywords,
		InputFeatures: cfg.Model.InputFeatures,
	}
	pools := cfg.Pools()

	latency := time.Duration(cfg.GenerationLatency * float64(time.Second))
	gen := generation.NewSimulated(latency, logger)

	fb, err := feedback.NewSimulated(feedback.Mode(cfg.FeedbackMode), logger)
	if err != nil {
		return nil, err
	}

	participants := make([]coordinator.Participant, cfg.NumClients)
	for i := 0; i < cfg.NumClients; i++ {
		model, err := strategy.New(shape, cfg.LearningRate, strategy.ReinforceRule{})
		if err != nil {
			return nil, fmt.Errorf("building strategy model for client %d: %w", i, err)
		}

		input := cfg.ClientContextInputs[i]
		provider, err := client.NewStaticProvider(input, shape.InputFeatures)
		if err != nil {
			return nil, fmt.Errorf("building context provider for client %d: %w", i, err)
		}

		id := fmt.Sprintf("client-%d", i)
		participants[i] = client.New(
			id, namegen.Generate(), input,
			cfg.EpochsPerClient,
			model, provider, pools, gen, fb,
			logger,
		)
	}

	if runID == "" {
		runID = uuid.NewString()
	}
	aggregator, err := coordinator.NewAggregator(cfg.Aggregation)
	if err != nil {
		return nil, err
	}

	coord, err := coordinator.New(
		runID,
		cfg.NumRounds,
		cfg.ParallelClients,
		participants,
		strategy.NewParams(shape),
		aggregator,
		storage.NewInMemoryStorage(),
		emitter,
		logger,
	)
	if err != nil {
		return nil, err
	}

	logger.Info("Simulation initialized",
		"run_id", runID,
		"rounds", cfg.NumRounds,
		"clients", cfg.NumClients,
		"feedback_mode", cfg.FeedbackMode,
		"aggregation", cfg.Aggregation,
		"parallel", cfg.ParallelClients)

	return &Simulation{
		cfg:         cfg,
		coordinator: coord,
		logger:      logger,
	}, nil
}

func (s *Simulation) Run(ctx context.Context) error {
	return s.coordinator.Run(ctx)
}

// Coordinator exposes the read-only status surface for the HTTP API.
func (s *Simulation) Coordinator() *coordinator.Coordinator {
	return s.coordinator
}
