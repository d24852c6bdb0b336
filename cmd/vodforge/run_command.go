package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"vodforge/internal/daemon"
	"vodforge/internal/logging"
	"vodforge/internal/pipeline"
	"vodforge/internal/records"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the ingest daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}

			store, err := records.Open(cfg)
			if err != nil {
				return fmt.Errorf("open records store: %w", err)
			}

			p := pipeline.New(cfg, store, logger)
			d, err := daemon.New(cfg, store, p, logger)
			if err != nil {
				_ = store.Close()
				return err
			}
			defer d.Close()

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := d.Start(runCtx); err != nil {
				return err
			}

			<-runCtx.Done()
			d.Stop()
			return nil
		},
	}
}
