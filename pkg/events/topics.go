package events

import "fmt"

type TopicBuilder struct {
	prefix string
}

func NewTopicBuilder(prefix string) *TopicBuilder {
	if prefix == "" {
		prefix = "fedprompt"
	}

	return &TopicBuilder{prefix: prefix}
}

func (tb *TopicBuilder) RoundStartTopic(runID string) string {
	return fmt.Sprintf("%s/runs/%s/rounds/start", tb.prefix, runID)
}

func (tb *TopicBuilder) RoundCompletedTopic(runID string) string {
	return fmt.Sprintf("%s/runs/%s/rounds/completed", tb.prefix, runID)
}

func (tb *TopicBuilder) ClientUpdateTopic(runID, clientID string) string {
	return fmt.Sprintf("%s/runs/%s/updates/%s", tb.prefix, runID, clientID)
}

func (tb *TopicBuilder) RunCompletedTopic(runID string) string {
	return fmt.Sprintf("%s/runs/%s/completed", tb.prefix, runID)
}
