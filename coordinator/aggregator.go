package coordinator

import (
	"errors"
	"fmt"

	"github.com/fedprompt/fedprompt/client"
	"github.com/fedprompt/fedprompt/pkg/strategy"
)

var (
	ErrNoUpdates     = errors.New("no updates to aggregate")
	ErrShapeMismatch = errors.New("update parameter shapes do not match")
	ErrUnknownPolicy = errors.New("unknown aggregation policy")
)

// Aggregation policy names accepted in configuration.
const (
	PolicyFedAvg   = "fedavg"
	PolicyWeighted = "weighted"
)

// Aggregator combines per-client updates into the next global parameters.
type Aggregator interface {
	Aggregate(updates []client.Update) (strategy.Params, error)
}

func NewAggregator(policy string) (Aggregator, error) {
	switch policy {
	case PolicyFedAvg, "":
		return FedAvgAggregator{}, nil
	case PolicyWeighted:
		return WeightedAggregator{}, nil
	default:
		return nil, fmt.Errorf("policy %q: %w", policy, ErrUnknownPolicy)
	}
}

// FedAvgAggregator computes the unweighted parameter-wise mean across all
// client updates.
type FedAvgAggregator struct{}

func (FedAvgAggregator) Aggregate(updates []client.Update) (strategy.Params, error) {
	weights := make([]float64, len(updates))
	for i := range weights {
		weights[i] = 1
	}

	return average(updates, weights)
}

// WeightedAggregator weighs each update by its reported sample count.
type WeightedAggregator struct{}

func (WeightedAggregator) Aggregate(updates []client.Update) (strategy.Params, error) {
	weights := make([]float64, len(updates))
	for i, u := range updates {
		if u.NumSamples == 0 {
			return strategy.Params{}, fmt.Errorf("update from %s reports zero samples", u.ClientID)
		}
		weights[i] = float64(u.NumSamples)
	}

	return average(updates, weights)
}

func average(updates []client.Update, weights []float64) (strategy.Params, error) {
	if len(updates) == 0 {
		return strategy.Params{}, ErrNoUpdates
	}

	reference := updates[0].Params
	identical := true
	for _, u := range updates[1:] {
		if len(u.Params.Data) != len(reference.Data) {
			return strategy.Params{}, fmt.Errorf("update from %s: %w", u.ClientID, ErrShapeMismatch)
		}
		for name, tensor := range u.Params.Data {
			ref, ok := reference.Data[name]
			if !ok || len(tensor) != len(ref) {
				return strategy.Params{}, fmt.Errorf("update from %s tensor %q: %w", u.ClientID, name, ErrShapeMismatch)
			}
		}
		if !u.Params.Equal(reference) {
			identical = false
		}
	}

	// Identical updates must reproduce themselves bit-exactly; the
	// weighted sum below cannot guarantee that for every client count.
	if identical {
		return reference.Clone(), nil
	}

	var total float64
	for _, w := range weights {
		total += w
	}

	result := reference.Clone()
	for name := range result.Data {
		for i := range result.Data[name] {
			result.Data[name][i] = 0
		}
	}

	for i, u := range updates {
		w := weights[i] / total
		for name, tensor := range u.Params.Data {
			target := result.Data[name]
			for j, v := range tensor {
				target[j] += w * v
			}
		}
	}

	return result, nil
}
