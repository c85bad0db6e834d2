package fedprompt

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml"

	"github.com/fedprompt/fedprompt/coordinator"
	pkgerrors "github.com/fedprompt/fedprompt/pkg/errors"
	"github.com/fedprompt/fedprompt/pkg/feedback"
	"github.com/fedprompt/fedprompt/pkg/prompt"
)

type Config struct {
	NumRounds         uint64  `toml:"num_rounds" env:"FEDPROMPT_NUM_ROUNDS"`
	NumClients        int     `toml:"num_clients" env:"FEDPROMPT_NUM_CLIENTS"`
	LearningRate      float64 `toml:"learning_rate" env:"FEDPROMPT_LEARNING_RATE"`
	EpochsPerClient   int     `toml:"epochs_per_client" env:"FEDPROMPT_EPOCHS_PER_CLIENT"`
	FeedbackMode      string  `toml:"feedback_mode" env:"FEDPROMPT_FEEDBACK_MODE"`
	GenerationLatency float64 `toml:"generation_latency" env:"FEDPROMPT_GENERATION_LATENCY"`
	Aggregation       string  `toml:"aggregation" env:"FEDPROMPT_AGGREGATION"`
	ParallelClients   bool    `toml:"parallel_clients" env:"FEDPROMPT_PARALLEL_CLIENTS"`

	Model ModelConfig `toml:"model"`

	Templates           []string `toml:"templates"`
	Keywords            []string `toml:"keywords"`
	ClientContextInputs []string `toml:"client_context_inputs"`

	HTTP HTTPConfig `toml:"http"`
	MQTT MQTTConfig `toml:"mqtt"`
}

type ModelConfig struct {
	NumPromptTemplates int `toml:"num_prompt_templates"`
	NumFixedKeywords   int `toml:"num_fixed_keywords"`
	InputFeatures      int `toml:"input_features"`
}

type HTTPConfig struct {
	Addr string `toml:"addr" env:"FEDPROMPT_HTTP_ADDR"`
}

type MQTTConfig struct {
	URL      string `toml:"url" env:"FEDPROMPT_MQTT_URL"`
	ClientID string `toml:"client_id" env:"FEDPROMPT_MQTT_CLIENT_ID"`
	Username string `toml:"username" env:"FEDPROMPT_MQTT_USERNAME"`
	Password string `toml:"password" env:"FEDPROMPT_MQTT_PASSWORD"`
	Topic    string `toml:"topic_prefix" env:"FEDPROMPT_MQTT_TOPIC_PREFIX"`
	TimeoutS int    `toml:"timeout_s" env:"FEDPROMPT_MQTT_TIMEOUT_S"`
}

// DefaultConfig is a runnable toy configuration: two clients, two rounds,
// a tiny template and keyword pool.
func DefaultConfig() *Config {
	return &Config{
		NumRounds:       2,
		NumClients:      2,
		LearningRate:    0.05,
		EpochsPerClient: 1,
		FeedbackMode:    string(feedback.ModeScore),
		Aggregation:     coordinator.PolicyFedAvg,
		Model: ModelConfig{
			NumPromptTemplates: 3,
			NumFixedKeywords:   5,
			InputFeatures:      4,
		},
		Templates: []string{
			"Summarize %s in one paragraph.",
			"Rewrite %s for a general audience.",
			"List the key points of %s.",
		},
		Keywords:            []string{"concise", "formal", "friendly", "detailed", "neutral"},
		ClientContextInputs: []string{"customer support transcripts", "product release notes"},
		MQTT: MQTTConfig{
			ClientID: "fedprompt-coordinator",
			Topic:    "fedprompt",
			TimeoutS: 30,
		},
	}
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	tree, err := toml.Load(string(data))
	if err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := tree.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Validate performs every fail-fast configuration check. A violation
// aborts before any round executes.
func (c *Config) Validate() error {
	if c.NumRounds == 0 {
		return fmt.Errorf("num_rounds must be positive: %w", pkgerrors.ErrInvalidConfig)
	}
	if c.NumClients <= 0 {
		return fmt.Errorf("num_clients must be positive: %w", pkgerrors.ErrInvalidConfig)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("learning_rate must be positive: %w", pkgerrors.ErrInvalidConfig)
	}
	if c.EpochsPerClient < 1 {
		return fmt.Errorf("epochs_per_client must be at least 1: %w", pkgerrors.ErrInvalidConfig)
	}
	if c.GenerationLatency < 0 {
		return fmt.Errorf("generation_latency must not be negative: %w", pkgerrors.ErrInvalidConfig)
	}

	if err := feedback.Mode(c.FeedbackMode).Validate(); err != nil {
		return err
	}
	if _, err := coordinator.NewAggregator(c.Aggregation); err != nil {
		return err
	}

	pools := prompt.Pools{Templates: c.Templates, Keywords: c.Keywords}
	if err := pools.Validate(); err != nil {
		return err
	}
	if len(c.Templates) != c.Model.NumPromptTemplates {
		return fmt.Errorf("template pool has %d entries, model expects %d: %w",
			len(c.Templates), c.Model.NumPromptTemplates, pkgerrors.ErrInvalidConfig)
	}
	if len(c.Keywords) != c.Model.NumFixedKeywords {
		return fmt.Errorf("keyword pool has %d entries, model expects %d: %w",
			len(c.Keywords), c.Model.NumFixedKeywords, pkgerrors.ErrInvalidConfig)
	}
	if c.Model.InputFeatures <= 0 {
		return fmt.Errorf("input_features must be positive: %w", pkgerrors.ErrInvalidConfig)
	}

	if len(c.ClientContextInputs) != c.NumClients {
		return fmt.Errorf("client_context_inputs has %d entries, expected %d: %w",
			len(c.ClientContextInputs), c.NumClients, pkgerrors.ErrInvalidConfig)
	}

	return nil
}

func (c *Config) Pools() prompt.Pools {
	return prompt.Pools{Templates: c.Templates, Keywords: c.Keywords}
}
