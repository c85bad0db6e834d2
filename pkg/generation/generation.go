// Package generation treats the centrally hosted generation model as an
// opaque remote capability. The simulated implementation only exists so
// the feedback loop has content to score; the mapping from prompt to
// content is fixed, not learned.
package generation

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"time"
)

type Service interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Simulated returns deterministic content after a configurable latency
// pause standing in for the network round trip. It keeps no state across
// calls.
type Simulated struct {
	latency time.Duration
	logger  *slog.Logger
}

func NewSimulated(latency time.Duration, logger *slog.Logger) *Simulated {
	return &Simulated{
		latency: latency,
		logger:  logger,
	}
}

func (s *Simulated) Generate(ctx context.Context, prompt string) (string, error) {
	if s.latency > 0 {
		timer := time.NewTimer(s.latency)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(prompt))
	content := fmt.Sprintf("generated[%016x]: %s", h.Sum64(), prompt)

	s.logger.Debug("Content generated", "prompt_len", len(prompt), "content_len", len(content))

	return content, nil
}
