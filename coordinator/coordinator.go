// Package coordinator owns the canonical global model and drives the
// round loop: broadcast the model to every client, run each client's
// round sequence, and fold all updates into the next global model.
package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fedprompt/fedprompt/client"
	"github.com/fedprompt/fedprompt/metrics"
	pkgerrors "github.com/fedprompt/fedprompt/pkg/errors"
	"github.com/fedprompt/fedprompt/pkg/storage"
	"github.com/fedprompt/fedprompt/pkg/strategy"
)

// Participant is one simulated client as the coordinator sees it. Each
// participant receives its own clone of the global parameters and runs
// its round sequence to completion.
type Participant interface {
	ID() string
	RunRound(ctx context.Context, round uint64, global strategy.Params) (client.Update, error)
}

// EventEmitter publishes round progress. Emission failures are logged
// and never abort the round loop.
type EventEmitter interface {
	RoundStarted(ctx context.Context, runID string, round uint64) error
	ClientUpdated(ctx context.Context, runID string, update client.Update) error
	RoundCompleted(ctx context.Context, runID string, model GlobalModel) error
	RunCompleted(ctx context.Context, runID string, model GlobalModel) error
}

type Coordinator struct {
	runID        string
	numRounds    uint64
	parallel     bool
	participants []Participant
	aggregator   Aggregator
	sm           *StateMachine
	rounds       storage.Storage
	emitter      EventEmitter
	logger       *slog.Logger

	mu     sync.RWMutex
	status Status
	global GlobalModel
}

func New(
	runID string,
	numRounds uint64,
	parallel bool,
	participants []Participant,
	initial strategy.Params,
	aggregator Aggregator,
	rounds storage.Storage,
	emitter EventEmitter,
	logger *slog.Logger,
) (*Coordinator, error) {
	if numRounds == 0 {
		return nil, fmt.Errorf("num_rounds must be positive")
	}
	if len(participants) == 0 {
		return nil, fmt.Errorf("at least one participant is required")
	}
	if aggregator == nil {
		aggregator = FedAvgAggregator{}
	}

	return &Coordinator{
		runID:        runID,
		numRounds:    numRounds,
		parallel:     parallel,
		participants: participants,
		aggregator:   aggregator,
		sm:           NewStateMachine(),
		rounds:       rounds,
		emitter:      emitter,
		logger:       logger,
		status:       StatusIdle,
		global:       GlobalModel{Round: 0, Params: initial.Clone()},
	}, nil
}

func (c *Coordinator) RunID() string {
	return c.runID
}

func (c *Coordinator) NumClients() int {
	return len(c.participants)
}

func (c *Coordinator) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.status
}

// Model returns a clone of the current global model.
func (c *Coordinator) Model() GlobalModel {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.global.Clone()
}

// Rounds returns the stored round history in execution order.
func (c *Coordinator) Rounds(ctx context.Context) ([]Round, error) {
	data, _, err := c.rounds.List(ctx, 0, 0)
	if err != nil {
		return nil, err
	}

	history := make([]Round, 0, len(data))
	for i := range data {
		if r, ok := data[i].(Round); ok {
			history = append(history, r)
		}
	}

	return history, nil
}

func (c *Coordinator) Round(ctx context.Context, round uint64) (Round, error) {
	data, err := c.rounds.Get(ctx, roundKey(round))
	if err != nil {
		return Round{}, err
	}

	r, ok := data.(Round)
	if !ok {
		return Round{}, fmt.Errorf("round %d stored with unexpected type: %w", round, pkgerrors.ErrInvalidData)
	}

	return r, nil
}

// Run drives the configured number of rounds to completion. Any client
// failure aborts the entire simulation; there is no partial-round
// recovery.
func (c *Coordinator) Run(ctx context.Context) error {
	for round := uint64(0); round < c.numRounds; round++ {
		if err := c.runRound(ctx, round); err != nil {
			c.setStatus(StatusFailed)
			c.failRoundRecord(ctx, round)
			metrics.RoundTotal.WithLabelValues(string(StatusFailed)).Inc()

			return fmt.Errorf("round %d: %w", round, err)
		}
	}

	if err := c.transition(StatusCompleted); err != nil {
		return err
	}

	c.logger.Info("Simulation completed", "run_id", c.runID, "rounds", c.numRounds)
	if err := c.emitter.RunCompleted(ctx, c.runID, c.Model()); err != nil {
		c.logger.Warn("Failed to emit run completion", "error", err)
	}

	return nil
}

func (c *Coordinator) runRound(ctx context.Context, round uint64) error {
	started := time.Now()

	if err := c.transition(StatusBroadcasting); err != nil {
		return err
	}
	c.logger.Info("Round started", "run_id", c.runID, "round", round, "clients", len(c.participants))
	if err := c.emitter.RoundStarted(ctx, c.runID, round); err != nil {
		c.logger.Warn("Failed to emit round start", "round", round, "error", err)
	}

	record := Round{
		Round:     round,
		RunID:     c.runID,
		Status:    StatusBroadcasting,
		StartTime: started,
	}
	if err := c.rounds.Create(ctx, roundKey(round), record); err != nil {
		return fmt.Errorf("storing round record: %w", err)
	}

	// Broadcast: clone the global parameters per participant, in index
	// order, before any client runs. Clients never share tensors.
	broadcast := make([]strategy.Params, len(c.participants))
	for i := range c.participants {
		broadcast[i] = c.globalParams()
	}

	if err := c.transition(StatusAwaitingUpdates); err != nil {
		return err
	}

	updates, err := c.collectUpdates(ctx, round, broadcast)
	if err != nil {
		return err
	}

	if err := c.transition(StatusAggregating); err != nil {
		return err
	}

	// Aggregation is a full barrier over exactly len(participants)
	// updates; a partial set never aggregates.
	if len(updates) != len(c.participants) {
		return fmt.Errorf("collected %d updates, expected %d", len(updates), len(c.participants))
	}

	aggregated, err := c.aggregator.Aggregate(updates)
	if err != nil {
		return fmt.Errorf("aggregating round %d: %w", round, err)
	}
	metrics.AggregationTotal.Inc()

	c.mu.Lock()
	c.global = GlobalModel{Round: round + 1, Params: aggregated}
	c.mu.Unlock()

	now := time.Now()
	record.Status = StatusCompleted
	record.EndTime = &now
	record.Updates = updates
	if err := c.rounds.Update(ctx, roundKey(round), record); err != nil {
		return fmt.Errorf("updating round record: %w", err)
	}

	metrics.RoundTotal.WithLabelValues(string(StatusCompleted)).Inc()
	metrics.RoundDuration.Observe(time.Since(started).Seconds())

	c.logger.Info("Round aggregated",
		"run_id", c.runID,
		"round", round,
		"updates", len(updates),
		"next_round", round+1)
	if err := c.emitter.RoundCompleted(ctx, c.runID, c.Model()); err != nil {
		c.logger.Warn("Failed to emit round completion", "round", round, "error", err)
	}

	return nil
}

// collectUpdates runs every participant's round sequence. The default is
// strictly sequential in index order; the parallel mode is safe because
// participants share no mutable state and still synchronizes on the
// aggregation barrier.
func (c *Coordinator) collectUpdates(ctx context.Context, round uint64, broadcast []strategy.Params) ([]client.Update, error) {
	updates := make([]client.Update, len(c.participants))

	if !c.parallel {
		for i, p := range c.participants {
			update, err := c.runParticipant(ctx, round, p, broadcast[i])
			if err != nil {
				return nil, err
			}
			updates[i] = update
		}

		return updates, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range c.participants {
		i, p := i, p
		g.Go(func() error {
			update, err := c.runParticipant(gctx, round, p, broadcast[i])
			if err != nil {
				return err
			}
			updates[i] = update

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return updates, nil
}

func (c *Coordinator) runParticipant(ctx context.Context, round uint64, p Participant, global strategy.Params) (client.Update, error) {
	if err := ctx.Err(); err != nil {
		return client.Update{}, err
	}

	started := time.Now()
	update, err := p.RunRound(ctx, round, global)
	if err != nil {
		return client.Update{}, err
	}

	metrics.ClientRoundDuration.WithLabelValues(p.ID()).Observe(time.Since(started).Seconds())
	if reward, ok := update.Metrics["reward"]; ok {
		metrics.ClientReward.WithLabelValues(p.ID()).Observe(reward)
	}

	c.logger.Info("Client update collected", "run_id", c.runID, "round", round, "client_id", p.ID())
	if err := c.emitter.ClientUpdated(ctx, c.runID, update); err != nil {
		c.logger.Warn("Failed to emit client update", "client_id", p.ID(), "error", err)
	}

	return update, nil
}

// failRoundRecord marks the stored record of an aborted round so the
// status surface does not keep reporting it as in progress.
func (c *Coordinator) failRoundRecord(ctx context.Context, round uint64) {
	record, err := c.Round(ctx, round)
	if err != nil {
		// Failure happened before the record was stored.
		return
	}

	now := time.Now()
	record.Status = StatusFailed
	record.EndTime = &now
	if err := c.rounds.Update(ctx, roundKey(round), record); err != nil {
		c.logger.Warn("Failed to record round failure", "round", round, "error", err)
	}
}

func (c *Coordinator) globalParams() strategy.Params {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.global.Params.Clone()
}

func (c *Coordinator) setStatus(status Status) {
	c.mu.Lock()
	c.status = status
	c.mu.Unlock()
}

func (c *Coordinator) transition(to Status) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.sm.ValidateTransition(c.status, to) {
		return fmt.Errorf("%s -> %s: %w", c.status, to, ErrInvalidStateTransition)
	}
	c.status = to

	return nil
}

func roundKey(round uint64) string {
	return fmt.Sprintf("round-%d", round)
}
