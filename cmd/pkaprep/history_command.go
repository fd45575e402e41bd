package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"pkaprep/internal/history"
)

type historyRecordJSON struct {
	ID           int64      `json:"id"`
	RunID        string     `json:"run_id"`
	Stage        string     `json:"stage"`
	Argv         []string   `json:"argv"`
	InputPath    string     `json:"input_path,omitempty"`
	OutputPath   string     `json:"output_path,omitempty"`
	Status       string     `json:"status"`
	ExitCode     *int       `json:"exit_code,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var runID string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent stage invocations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			if cfg == nil {
				return ctx.configErr
			}
			out := cmd.OutOrStdout()
			if !cfg.History.Enabled {
				fmt.Fprintln(out, "History is disabled (history.enabled = false)")
				return nil
			}
			path := cfg.HistoryPath()
			if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
				if asJSON {
					return writeJSON(cmd, []historyRecordJSON{})
				}
				fmt.Fprintln(out, "No runs recorded yet")
				return nil
			}

			store, err := history.Open(path)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			var records []history.Record
			if id := strings.TrimSpace(runID); id != "" {
				records, err = store.ByRun(cmd.Context(), id)
			} else {
				records, err = store.Recent(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}

			if asJSON {
				payload := make([]historyRecordJSON, 0, len(records))
				for _, record := range records {
					payload = append(payload, toHistoryJSON(record))
				}
				return writeJSON(cmd, payload)
			}
			if len(records) == 0 {
				fmt.Fprintln(out, "No runs recorded yet")
				return nil
			}
			fmt.Fprintln(out, renderHistoryTable(records))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of invocations to list (0 for all)")
	cmd.Flags().StringVar(&runID, "run", "", "Show every invocation of one run id")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit records as JSON")
	return cmd
}

func toHistoryJSON(record history.Record) historyRecordJSON {
	return historyRecordJSON{
		ID:           record.ID,
		RunID:        record.RunID,
		Stage:        record.Stage,
		Argv:         record.Argv,
		InputPath:    record.InputPath,
		OutputPath:   record.OutputPath,
		Status:       string(record.Status),
		ExitCode:     record.ExitCode,
		ErrorMessage: record.ErrorMessage,
		StartedAt:    record.StartedAt,
		FinishedAt:   record.FinishedAt,
	}
}

func renderHistoryTable(records []history.Record) string {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		exit := "-"
		if record.ExitCode != nil {
			exit = strconv.Itoa(*record.ExitCode)
		}
		duration := "-"
		if d := record.Duration(); d > 0 {
			duration = d.Round(time.Millisecond).String()
		}
		rows = append(rows, []string{
			strconv.FormatInt(record.ID, 10),
			shortRunID(record.RunID),
			stageTitle(record.Stage),
			string(record.Status),
			exit,
			record.StartedAt.Local().Format("2006-01-02 15:04:05"),
			duration,
		})
	}
	headers := []string{"ID", "Run", "Stage", "Status", "Exit", "Started", "Duration"}
	return renderTable(headers, rows, []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignRight})
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
