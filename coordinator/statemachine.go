package coordinator

import (
	"errors"
	"slices"
)

var ErrInvalidStateTransition = errors.New("invalid state transition")

type StateMachine struct{}

func NewStateMachine() *StateMachine {
	return &StateMachine{}
}

func (sm *StateMachine) ValidateTransition(from, to Status) bool {
	validTransitions := map[Status][]Status{
		StatusIdle:            {StatusBroadcasting, StatusFailed},
		StatusBroadcasting:    {StatusAwaitingUpdates, StatusFailed},
		StatusAwaitingUpdates: {StatusAggregating, StatusFailed},
		StatusAggregating:     {StatusBroadcasting, StatusCompleted, StatusFailed},
		StatusCompleted:       {}, // Terminal state
		StatusFailed:          {}, // Terminal state
	}

	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}

	return slices.Contains(allowed, to)
}

func (sm *StateMachine) IsTerminal(status Status) bool {
	return status == StatusCompleted || status == StatusFailed
}
