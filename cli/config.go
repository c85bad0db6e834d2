package cli

import (
	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"

	fedprompt "github.com/fedprompt/fedprompt"
)

func NewConfigCmd() *cobra.Command {
	var configPath string

	cmd := cobra.Command{
		Use:   "config",
		Short: "Print the effective simulation configuration",
		Long: `Resolves the configuration the run command would use, in order:
built-in defaults, then the TOML file, then FEDPROMPT_* environment
variables, and prints the result.`,
		Run: func(cmd *cobra.Command, args []string) {
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
			if err := cfg.Validate(); err != nil {
				logErrorCmd(*cmd, err)

				return
			}

			logJSONCmd(*cmd, cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to TOML configuration file")

	return &cmd
}
