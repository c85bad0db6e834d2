// Package cli contains the fedprompt cobra commands.
package cli

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	fedprompt "github.com/fedprompt/fedprompt"
	"github.com/fedprompt/fedprompt/api"
	"github.com/fedprompt/fedprompt/coordinator"
	"github.com/fedprompt/fedprompt/pkg/events"
	"github.com/fedprompt/fedprompt/pkg/mqtt"
)

func NewRunCmd() *cobra.Command {
	var configPath string

	cmd := cobra.Command{
		Use:   "run",
		Short: "Run a federated prompt-strategy simulation",
		Long: `Runs the full round loop: broadcast the global strategy model to every
simulated client, let each client select a prompt, generate content,
collect feedback and train locally, then aggregate all updates into the
next global model.`,
		Run: func(cmd *cobra.Command, args []string) {
			logger := slog.Default()

			cfg := fedprompt.DefaultConfig()
			if configPath != "" {
				loaded, err := fedprompt.LoadConfig(configPath)
				if err != nil {
					logErrorCmd(*cmd, err)

					return
				}
				cfg = loaded
			}
			if err := env.Parse(cfg); err != nil {
				logErrorCmd(*cmd, err)

				return
			}

			runID := uuid.NewString()
			emitter, cleanup, err := buildEmitter(cmd, cfg, runID, logger)
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			defer cleanup()

			sim, err := fedprompt.NewSimulation(cfg, runID, emitter, logger)
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}

			if cfg.HTTP.Addr != "" {
				srv := &http.Server{
					Addr:    cfg.HTTP.Addr,
					Handler: api.MakeHandler(sim.Coordinator()),
				}
				go func() {
					if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						logger.Error("Status API stopped", "error", err)
					}
				}()
				defer srv.Close()
				logger.Info("Status API listening", "addr", cfg.HTTP.Addr)
			}

			if err := sim.Run(cmd.Context()); err != nil {
				logErrorCmd(*cmd, err)

				return
			}

			model := sim.Coordinator().Model()
			logSuccessCmd(*cmd, "simulation completed")
			logJSONCmd(*cmd, map[string]any{
				"run_id": sim.Coordinator().RunID(),
				"rounds": model.Round,
				"params": model.Params.Data,
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to TOML configuration file")

	return &cmd
}

// buildEmitter returns an MQTT-backed emitter when a broker is
// configured and a no-op emitter otherwise. The run ID scopes the
// connection's last will to this run.
func buildEmitter(cmd *cobra.Command, cfg *fedprompt.Config, runID string, logger *slog.Logger) (coordinator.EventEmitter, func(), error) {
	if cfg.MQTT.URL == "" {
		return coordinator.NopEmitter{}, func() {}, nil
	}

	timeout := time.Duration(cfg.MQTT.TimeoutS) * time.Second
	pubsub, err := mqtt.NewPubSub(
		cfg.MQTT.URL, 0,
		cfg.MQTT.ClientID, cfg.MQTT.Username, cfg.MQTT.Password,
		runID, timeout, logger,
	)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if err := pubsub.Disconnect(cmd.Context()); err != nil {
			logger.Warn("MQTT disconnect failed", "error", err)
		}
	}

	return events.NewMQTTEmitter(pubsub, events.NewTopicBuilder(cfg.MQTT.Topic)), cleanup, nil
}
