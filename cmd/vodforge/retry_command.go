package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vodforge/internal/logging"
	"vodforge/internal/stagemove"
)

func newRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry <bundle>",
		Short: "Move a failed bundle back to the pending area for reprocessing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			bundleName := args[0]

			mover := stagemove.New(logging.NewNop())
			if _, err := mover.Relocate(cmd.Context(), bundleName, cfg.FailedDir(), cfg.PendingDir()); err != nil {
				return fmt.Errorf("requeue %s: %w", bundleName, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Moved %s back to pending; the daemon will pick it up on the next scan.\n", bundleName)
			return nil
		},
	}
}
