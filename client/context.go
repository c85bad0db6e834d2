package client

import (
	"context"
	"errors"
	"hash/fnv"
)

var ErrNoContextInput = errors.New("no context input configured")

// ContextProvider supplies the context feature vector a client feeds its
// strategy model. The round loop depends only on this interface so a real
// feature source can replace the placeholder without touching
// orchestration.
type ContextProvider interface {
	Context(ctx context.Context) ([]float64, error)
}

// StaticProvider derives a fixed feature vector from an opaque per-client
// input string. It is the placeholder implementation used by the
// simulation.
type StaticProvider struct {
	features []float64
}

func NewStaticProvider(input string, numFeatures int) (*StaticProvider, error) {
	if input == "" {
		return nil, ErrNoContextInput
	}

	features := make([]float64, numFeatures)
	for j := range features {
		h := fnv.New64a()
		_, _ = h.Write([]byte(input))
		_, _ = h.Write([]byte{byte(j)})
		// Spread each feature into [-1, 1).
		features[j] = float64(h.Sum64()%2000)/1000.0 - 1.0
	}

	return &StaticProvider{features: features}, nil
}

func (p *StaticProvider) Context(ctx context.Context) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	features := make([]float64, len(p.features))
	copy(features, p.features)

	return features, nil
}
