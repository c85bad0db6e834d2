// Package client implements one simulated participant. A client holds a
// private copy of the global strategy model and runs the per-round
// sequence: select a prompt, generate content, collect feedback, train
// locally, and hand the updated parameters back to the coordinator.
package client

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fedprompt/fedprompt/pkg/feedback"
	"github.com/fedprompt/fedprompt/pkg/generation"
	"github.com/fedprompt/fedprompt/pkg/prompt"
	"github.com/fedprompt/fedprompt/pkg/strategy"
)

// Steps of the per-round sequence, recorded on failure.
const (
	StepContext  = "context"
	StepSelect   = "select"
	StepFormat   = "format"
	StepGenerate = "generate"
	StepFeedback = "feedback"
	StepTrain    = "train"
)

// RoundError wraps any failure inside a client's round sequence. It
// aborts the entire simulation; there is no per-client retry.
type RoundError struct {
	Round    uint64
	ClientID string
	Step     string
	Err      error
}

func (e *RoundError) Error() string {
	return fmt.Sprintf("client %s round %d failed at %s: %v", e.ClientID, e.Round, e.Step, e.Err)
}

func (e *RoundError) Unwrap() error {
	return e.Err
}

// Update is the payload a client returns to the coordinator after local
// training.
type Update struct {
	Round      uint64             `json:"round"`
	ClientID   string             `json:"client_id"`
	NumSamples uint64             `json:"num_samples"`
	Params     strategy.Params    `json:"params"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
}

type Client struct {
	id       string
	name     string
	input    string
	epochs   int
	model    *strategy.Model
	provider ContextProvider
	pools    prompt.Pools
	gen      generation.Service
	fb       feedback.Service
	logger   *slog.Logger
}

func New(
	id, name, input string,
	epochs int,
	model *strategy.Model,
	provider ContextProvider,
	pools prompt.Pools,
	gen generation.Service,
	fb feedback.Service,
	logger *slog.Logger,
) *Client {
	return &Client{
		id:       id,
		name:     name,
		input:    input,
		epochs:   epochs,
		model:    model,
		provider: provider,
		pools:    pools,
		gen:      gen,
		fb:       fb,
		logger:   logger,
	}
}

func (c *Client) ID() string {
	return c.id
}

func (c *Client) Name() string {
	return c.name
}

// RunRound executes the client's full per-round sequence against a
// broadcast copy of the global parameters. The local model is overwritten
// wholesale with the broadcast; prior local state never merges in.
func (c *Client) RunRound(ctx context.Context, round uint64, global strategy.Params) (Update, error) {
	if err := c.model.SetParams(global); err != nil {
		return Update{}, &RoundError{Round: round, ClientID: c.id, Step: StepContext, Err: err}
	}

	features, err := c.provider.Context(ctx)
	if err != nil {
		return Update{}, &RoundError{Round: round, ClientID: c.id, Step: StepContext, Err: err}
	}

	sel, err := c.model.Select(features)
	if err != nil {
		return Update{}, &RoundError{Round: round, ClientID: c.id, Step: StepSelect, Err: err}
	}
	c.logger.Info("Prompt selected",
		"client_id", c.id,
		"round", round,
		"template_index", sel.TemplateIndex,
		"keyword_indices", sel.KeywordIndices)

	formatted, err := c.pools.Format(sel, c.input)
	if err != nil {
		return Update{}, &RoundError{Round: round, ClientID: c.id, Step: StepFormat, Err: err}
	}

	content, err := c.gen.Generate(ctx, formatted)
	if err != nil {
		return Update{}, &RoundError{Round: round, ClientID: c.id, Step: StepGenerate, Err: err}
	}
	c.logger.Info("Content generated", "client_id", c.id, "round", round, "content_len", len(content))

	signal, err := c.fb.Feedback(ctx, content)
	if err != nil {
		return Update{}, &RoundError{Round: round, ClientID: c.id, Step: StepFeedback, Err: err}
	}
	c.logger.Info("Feedback received",
		"client_id", c.id,
		"round", round,
		"mode", string(signal.Mode),
		"score", signal.Score,
		"preference", string(signal.Preference))

	for epoch := 0; epoch < c.epochs; epoch++ {
		if err := c.model.Train(signal); err != nil {
			return Update{}, &RoundError{Round: round, ClientID: c.id, Step: StepTrain, Err: err}
		}
	}
	c.logger.Info("Local training finished", "client_id", c.id, "round", round, "epochs", c.epochs)

	reward, err := signal.Reward()
	if err != nil {
		return Update{}, &RoundError{Round: round, ClientID: c.id, Step: StepTrain, Err: err}
	}

	return Update{
		Round:      round,
		ClientID:   c.id,
		NumSamples: 1,
		Params:     c.model.Params(),
		Metrics: map[string]float64{
			"reward": reward,
			"epochs": float64(c.epochs),
		},
	}, nil
}
