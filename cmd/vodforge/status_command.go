package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"vodforge/internal/records"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show record counts per status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := records.Open(cfg)
			if err != nil {
				return fmt.Errorf("open records store: %w", err)
			}
			defer store.Close()

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("load stats: %w", err)
			}

			rows := make([][]string, 0, len(stats))
			total := 0
			for _, status := range records.AllStatuses() {
				count := stats[status]
				total += count
				rows = append(rows, []string{string(status), strconv.Itoa(count)})
			}
			rows = append(rows, []string{"total", strconv.Itoa(total)})

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]tableColumn{
					{title: "Status"},
					{title: "Records", align: alignRight},
				},
				rows,
			))
			return nil
		},
	}
}
