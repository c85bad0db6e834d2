package api

import (
	"context"

	"github.com/go-kit/kit/endpoint"

	"github.com/fedprompt/fedprompt/coordinator"
)

// StatusService is the read-only view of a running simulation the HTTP
// surface exposes. *coordinator.Coordinator satisfies it.
type StatusService interface {
	RunID() string
	Status() coordinator.Status
	NumClients() int
	Model() coordinator.GlobalModel
	Rounds(ctx context.Context) ([]coordinator.Round, error)
	Round(ctx context.Context, round uint64) (coordinator.Round, error)
}

func MakeGetSimulationEndpoint(svc StatusService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		return SimulationResponseDTO{
			RunID:      svc.RunID(),
			Status:     string(svc.Status()),
			NumClients: svc.NumClients(),
			Round:      svc.Model().Round,
		}, nil
	}
}

func MakeListRoundsEndpoint(svc StatusService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		rounds, err := svc.Rounds(ctx)
		if err != nil {
			return nil, err
		}

		dtos := make([]RoundResponseDTO, 0, len(rounds))
		for _, r := range rounds {
			dtos = append(dtos, toRoundDTO(r))
		}

		return RoundListResponseDTO{Total: len(dtos), Rounds: dtos}, nil
	}
}

func MakeGetRoundEndpoint(svc StatusService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(RoundRequestDTO)

		round, err := svc.Round(ctx, req.Round)
		if err != nil {
			return nil, err
		}

		return toRoundDTO(round), nil
	}
}

func MakeGetModelEndpoint(svc StatusService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		model := svc.Model()

		return ModelResponseDTO{
			Round:  model.Round,
			Params: model.Params.Data,
		}, nil
	}
}
