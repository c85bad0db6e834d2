package api

import (
	"time"

	"github.com/fedprompt/fedprompt/coordinator"
)

type SimulationResponseDTO struct {
	RunID      string `json:"run_id"`
	Status     string `json:"status"`
	NumClients int    `json:"num_clients"`
	Round      uint64 `json:"round"`
}

type RoundResponseDTO struct {
	Round      uint64     `json:"round"`
	Status     string     `json:"status"`
	StartTime  time.Time  `json:"start_time"`
	EndTime    *time.Time `json:"end_time,omitempty"`
	NumUpdates int        `json:"num_updates"`
}

type RoundListResponseDTO struct {
	Total  int                `json:"total"`
	Rounds []RoundResponseDTO `json:"rounds"`
}

type ModelResponseDTO struct {
	Round  uint64               `json:"round"`
	Params map[string][]float64 `json:"params"`
}

func toRoundDTO(r coordinator.Round) RoundResponseDTO {
	return RoundResponseDTO{
		Round:      r.Round,
		Status:     string(r.Status),
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
		NumUpdates: len(r.Updates),
	}
}
