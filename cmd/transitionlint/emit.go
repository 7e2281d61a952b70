package main

import (
	"fmt"

	"github.com/spf13/cobra"

	transitions "github.com/reglet-dev/reglet-transitions"
	"github.com/reglet-dev/reglet-transitions/emit"
)

func newEmitCmd(cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "emit FILE",
		Short: "Print the code generated for a transition list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cfg.LogLevel)
			if err != nil {
				return err
			}
			svc, err := transitions.New(
				transitions.WithLogger(logger),
				transitions.WithMiddleware(transitions.PanicRecoveryMiddleware(), transitions.LoggingMiddleware(logger)),
			)
			if err != nil {
				return err
			}

			data, format, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			list, err := svc.ValidateBytes(data, format, cfg.Host)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			backend := emit.NewSourceBackend()
			_, emitErr := svc.Emit(cmd.Context(), backend, list)
			fmt.Fprint(cmd.OutOrStdout(), backend.Source())
			return emitErr
		},
	}
}
