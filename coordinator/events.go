package coordinator

import (
	"context"

	"github.com/fedprompt/fedprompt/client"
)

// NopEmitter discards all events. Used when no event sink is configured.
type NopEmitter struct{}

func (NopEmitter) RoundStarted(ctx context.Context, runID string, round uint64) error {
	return nil
}

func (NopEmitter) ClientUpdated(ctx context.Context, runID string, update client.Update) error {
	return nil
}

func (NopEmitter) RoundCompleted(ctx context.Context, runID string, model GlobalModel) error {
	return nil
}

func (NopEmitter) RunCompleted(ctx context.Context, runID string, model GlobalModel) error {
	return nil
}
