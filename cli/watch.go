package cli

import (
	"errors"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"

	fedprompt "github.com/fedprompt/fedprompt"
	"github.com/fedprompt/fedprompt/pkg/events"
	"github.com/fedprompt/fedprompt/pkg/mqtt"
)

func NewWatchCmd() *cobra.Command {
	var configPath string
	var runID string

	cmd := cobra.Command{
		Use:   "watch",
		Short: "Stream round events from the MQTT broker",
		Long: `Subscribes to the round lifecycle topics of a run and prints each
event as it arrives. Without --run-id, events from every run under the
configured topic prefix are streamed. Requires a broker URL in the
configuration.`,
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
			if cfg.MQTT.URL == "" {
				logErrorCmd(*cmd, errors.New("an MQTT broker URL is required to watch events"))

				return
			}

			timeout := time.Duration(cfg.MQTT.TimeoutS) * time.Second
			pubsub, err := mqtt.NewPubSub(
				cfg.MQTT.URL, 0,
				cfg.MQTT.ClientID+"-watch", cfg.MQTT.Username, cfg.MQTT.Password,
				"", timeout, logger,
			)
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			defer func() {
				if err := pubsub.Disconnect(cmd.Context()); err != nil {
					logger.Warn("MQTT disconnect failed", "error", err)
				}
			}()

			handler := func(topic string, msg map[string]interface{}) error {
				logSuccessCmd(*cmd, topic)
				logJSONCmd(*cmd, msg)

				return nil
			}

			for _, topic := range watchTopics(events.NewTopicBuilder(cfg.MQTT.Topic), runID) {
				if err := pubsub.Subscribe(cmd.Context(), topic, handler); err != nil {
					logErrorCmd(*cmd, err)

					return
				}
				logger.Info("Subscribed", "topic", topic)
			}

			<-cmd.Context().Done()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to TOML configuration file")
	cmd.Flags().StringVarP(&runID, "run-id", "r", "", "Watch a single run instead of all runs")

	return &cmd
}

// watchTopics lists the lifecycle topics to subscribe to. An empty run
// ID becomes the MQTT single-level wildcard. Client-update topics carry
// binary payloads and are not streamed here.
func watchTopics(topics *events.TopicBuilder, runID string) []string {
	if runID == "" {
		runID = "+"
	}

	return []string{
		topics.RoundStartTopic(runID),
		topics.RoundCompletedTopic(runID),
		topics.RunCompletedTopic(runID),
	}
}
