package coordinator

import (
	"time"

	"github.com/fedprompt/fedprompt/client"
	"github.com/fedprompt/fedprompt/pkg/strategy"
)

// Status is the coordinator's position in the round loop.
type Status string

const (
	StatusIdle            Status = "Idle"
	StatusBroadcasting    Status = "Broadcasting"
	StatusAwaitingUpdates Status = "AwaitingUpdates"
	StatusAggregating     Status = "Aggregating"
	StatusCompleted       Status = "Completed"
	StatusFailed          Status = "Failed"
)

// GlobalModel is the canonical model state. It is owned exclusively by
// the coordinator; everything handed out is a clone.
type GlobalModel struct {
	Round  uint64          `json:"round"`
	Params strategy.Params `json:"params"`
}

func (g GlobalModel) Clone() GlobalModel {
	return GlobalModel{
		Round:  g.Round,
		Params: g.Params.Clone(),
	}
}

// Round is the stored record of one orchestration round.
type Round struct {
	Round     uint64          `json:"round"`
	RunID     string          `json:"run_id"`
	Status    Status          `json:"status"`
	StartTime time.Time       `json:"start_time"`
	EndTime   *time.Time      `json:"end_time,omitempty"`
	Updates   []client.Update `json:"updates,omitempty"`
}
