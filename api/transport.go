package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	pkgerrors "github.com/fedprompt/fedprompt/pkg/errors"
)

func MakeHandler(svc StatusService) http.Handler {
	opts := []kithttp.ServerOption{
		kithttp.ServerErrorEncoder(encodeError),
	}

	mux := chi.NewRouter()

	mux.Get("/simulation", kithttp.NewServer(
		MakeGetSimulationEndpoint(svc),
		decodeEmptyRequest,
		encodeResponse,
		opts...,
	).ServeHTTP)

	mux.Route("/rounds", func(r chi.Router) {
		r.Get("/", kithttp.NewServer(
			MakeListRoundsEndpoint(svc),
			decodeEmptyRequest,
			encodeResponse,
			opts...,
		).ServeHTTP)
		r.Get("/{round}", kithttp.NewServer(
			MakeGetRoundEndpoint(svc),
			decodeRoundRequest,
			encodeResponse,
			opts...,
		).ServeHTTP)
	})

	mux.Get("/model", kithttp.NewServer(
		MakeGetModelEndpoint(svc),
		decodeEmptyRequest,
		encodeResponse,
		opts...,
	).ServeHTTP)

	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

func decodeEmptyRequest(_ context.Context, r *http.Request) (interface{}, error) {
	return nil, nil
}

func decodeRoundRequest(_ context.Context, r *http.Request) (interface{}, error) {
	raw := chi.URLParam(r, "round")
	round, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("round must be a non-negative integer: %w", pkgerrors.ErrInvalidData)
	}

	return RoundRequestDTO{Round: round}, nil
}

func encodeResponse(_ context.Context, w http.ResponseWriter, response interface{}) error {
	w.Header().Set("Content-Type", "application/json")

	return json.NewEncoder(w).Encode(response)
}

func encodeError(_ context.Context, err error, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")

	switch {
	case errors.Is(err, pkgerrors.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
	case errors.Is(err, pkgerrors.ErrInvalidData):
		w.WriteHeader(http.StatusBadRequest)
	default:
		w.WriteHeader(http.StatusInternalServerError)
	}

	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
