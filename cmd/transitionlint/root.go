package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"

	transitions "github.com/reglet-dev/reglet-transitions"
)

// config is read from the environment; flags override it.
type config struct {
	Host     string `env:"TRANSITIONLINT_HOST"`
	LogLevel string `env:"TRANSITIONLINT_LOG_LEVEL" envDefault:"warn"`
	Output   string `env:"TRANSITIONLINT_OUTPUT"    envDefault:"text"`
}

func loadConfig() (config, error) {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func newRootCmd() *cobra.Command {
	cfg, err := loadConfig()
	if err != nil {
		// fall back to defaults, the error is reported on first use
		cfg = config{LogLevel: "warn", Output: "text"}
	}

	rootCmd := &cobra.Command{
		Use:           "transitionlint",
		Short:         "Validate light transition lists",
		Long:          `transitionlint checks transition lists against the registered transition kinds and the capabilities of a light output.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return err
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.Host, "host", cfg.Host, "Light output type the transitions run on (see 'transitionlint hosts')")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")
	flags.StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text or json")

	rootCmd.AddCommand(
		newValidateCmd(&cfg),
		newKindsCmd(&cfg),
		newHostsCmd(&cfg),
		newEmitCmd(&cfg),
	)
	return rootCmd
}

func newLogger(level string) (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})), nil
}

func newService(cfg *config) (*transitions.Service, error) {
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return transitions.New(transitions.WithLogger(logger))
}

// readInput reads path, or stdin for "-", and picks the parser format from
// the extension.
func readInput(stdin io.Reader, path string) ([]byte, transitions.Format, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		return data, transitions.FormatYAML, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, transitions.FormatFromPath(path), nil
}
