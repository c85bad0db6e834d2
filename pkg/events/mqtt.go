// Package events publishes round progress to an MQTT broker. The
// coordinator treats emission as best effort; a broker outage never
// aborts a running simulation.
package events

import (
	"context"

	"github.com/fedprompt/fedprompt/client"
	"github.com/fedprompt/fedprompt/coordinator"
	"github.com/fedprompt/fedprompt/pkg/mqtt"
)

type MQTTEmitter struct {
	pubsub mqtt.PubSub
	topics *TopicBuilder
}

func NewMQTTEmitter(pubsub mqtt.PubSub, topics *TopicBuilder) coordinator.EventEmitter {
	return &MQTTEmitter{
		pubsub: pubsub,
		topics: topics,
	}
}

func (e *MQTTEmitter) RoundStarted(ctx context.Context, runID string, round uint64) error {
	msg := map[string]any{
		"run_id": runID,
		"round":  round,
	}

	return e.pubsub.Publish(ctx, e.topics.RoundStartTopic(runID), msg)
}

// ClientUpdated publishes the full update envelope in CBOR; parameter
// tensors are too large for readable JSON.
func (e *MQTTEmitter) ClientUpdated(ctx context.Context, runID string, update client.Update) error {
	payload, err := coordinator.EncodeUpdate(runID, update)
	if err != nil {
		return err
	}

	return e.pubsub.PublishRaw(ctx, e.topics.ClientUpdateTopic(runID, update.ClientID), payload)
}

func (e *MQTTEmitter) RoundCompleted(ctx context.Context, runID string, model coordinator.GlobalModel) error {
	msg := map[string]any{
		"run_id": runID,
		"round":  model.Round,
	}

	return e.pubsub.Publish(ctx, e.topics.RoundCompletedTopic(runID), msg)
}

func (e *MQTTEmitter) RunCompleted(ctx context.Context, runID string, model coordinator.GlobalModel) error {
	msg := map[string]any{
		"run_id": runID,
		"rounds": model.Round,
	}

	return e.pubsub.Publish(ctx, e.topics.RunCompletedTopic(runID), msg)
}
