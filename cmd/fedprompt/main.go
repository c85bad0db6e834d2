package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fedprompt/fedprompt/cli"
)

var logLevel slog.Level

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := configureLogger(os.Getenv("FEDPROMPT_LOG_LEVEL"))
	slog.SetDefault(logger)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		cancel()
	}()

	rootCmd := cobra.Command{
		Use:   "fedprompt",
		Short: "Federated prompt-strategy learning simulator",
		Long: `fedprompt simulates federated learning of prompt strategies over
human feedback: a coordinator broadcasts a global model to simulated
clients, each trains locally on generated content and feedback, and
the coordinator aggregates the results into the next global model.`,
	}

	rootCmd.AddCommand(cli.NewRunCmd())
	rootCmd.AddCommand(cli.NewWatchCmd())
	rootCmd.AddCommand(cli.NewConfigCmd())

	return rootCmd.ExecuteContext(ctx)
}

func configureLogger(level string) *slog.Logger {
	if level == "" {
		level = "info"
	}
	if err := logLevel.UnmarshalText([]byte(level)); err != nil {
		log.Printf("Invalid log level: %s. Defaulting to info.\n", level)
		logLevel = slog.LevelInfo
	}

	logHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(logHandler)
}
