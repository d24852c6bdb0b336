package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"vodforge/internal/records"
)

var titleCaser = cases.Title(language.English)

func newRecordsCommand(ctx *commandContext) *cobra.Command {
	var statusFilter string

	cmd := &cobra.Command{
		Use:   "records",
		Short: "List content records",
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

			var statuses []records.Status
			if trimmed := strings.TrimSpace(statusFilter); trimmed != "" {
				status, ok := records.ParseStatus(trimmed)
				if !ok {
					return fmt.Errorf("unknown status %q (expected one of: %s)", trimmed, statusNames())
				}
				statuses = append(statuses, status)
			}

			items, err := store.List(cmd.Context(), statuses...)
			if err != nil {
				return fmt.Errorf("list records: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "No records found.")
				return nil
			}

			rows := make([][]string, 0, len(items))
			for _, record := range items {
				rows = append(rows, []string{
					strconv.FormatInt(record.ID, 10),
					record.BundleName,
					record.Title,
					titleCaser.String(string(record.Type)),
					string(record.Status),
					fmt.Sprintf("%d%%", record.Progress),
					episodeSummary(record),
				})
			}

			if isTerminal(out) {
				fmt.Fprintln(out, renderTable(
					[]tableColumn{
						{title: "ID", align: alignRight},
						{title: "Bundle"},
						{title: "Title"},
						{title: "Type"},
						{title: "Status"},
						{title: "Progress", align: alignRight},
						{title: "Episodes"},
					},
					rows,
				))
				return nil
			}
			for _, row := range rows {
				fmt.Fprintln(out, strings.Join(row, "\t"))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&statusFilter, "status", "s", "", "Filter by status ("+statusNames()+")")
	return cmd
}

func episodeSummary(record *records.Record) string {
	total := 0
	completed := 0
	for _, season := range record.Seasons {
		for _, episode := range season.Episodes {
			total++
			if episode.Status == records.StatusCompleted {
				completed++
			}
		}
	}
	if total == 0 {
		return "-"
	}
	return fmt.Sprintf("%d/%d", completed, total)
}

func statusNames() string {
	names := make([]string, 0, 4)
	for _, status := range records.AllStatuses() {
		names = append(names, string(status))
	}
	return strings.Join(names, ", ")
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
