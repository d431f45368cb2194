package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/spend-sense/internal/cli"
	"github.com/Veraticus/spend-sense/internal/engine"
	"github.com/spf13/cobra"
)

func (a *app) batchCmd() *cobra.Command {
	var (
		file   string
		output string
		save   bool
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Evaluate many requests in parallel",
		Long: `Evaluate every request in a file with a progress bar. Invalid requests
are reported individually and do not stop the batch.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			reqs, err := loadRequests(file)
			if err != nil {
				return err
			}
			pipeline, err := a.newPipeline()
			if err != nil {
				return err
			}

			interrupts := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Finished reports are still listed below.")
			ctx, cancel := interrupts.HandleInterrupts(cmd.Context())
			defer cancel()

			progress := cli.NewProgress(cmd.ErrOrStderr(), len(reqs), "Evaluating requests...")
			summary := pipeline.EvaluateBatch(ctx, reqs, progress.Increment)

			if save {
				if err := a.saveBatch(cmd, summary); err != nil {
					return err
				}
			}

			if output == outputJSON {
				if err := writeJSON(cmd.OutOrStdout(), batchJSON(summary)); err != nil {
					return err
				}
			} else if _, err := fmt.Fprintln(cmd.OutOrStdout(), cli.NewFormatter().BatchSummary(summary)); err != nil {
				return err
			}

			if interrupts.WasInterrupted() {
				return fmt.Errorf("batch interrupted after %d of %d requests", summary.Succeeded+summary.Failed, summary.Total)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "request file (YAML or JSON)")
	cmd.Flags().StringVarP(&output, "output", "o", outputSummary, "output format (summary, json)")
	cmd.Flags().BoolVar(&save, "save", false, "store successful reports in the history database")
	return cmd
}

func (a *app) saveBatch(cmd *cobra.Command, summary *engine.BatchSummary) error {
	reports := make([]*engine.Report, 0, summary.Succeeded)
	for _, r := range summary.Results {
		if r.Error == nil {
			reports = append(reports, r.Report)
		}
	}
	if len(reports) == 0 {
		return nil
	}

	store, err := a.openStorage(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ids, err := saveReports(cmd.Context(), store, reports...)
	if err != nil {
		return err
	}
	slog.Info("Saved batch reports", "count", len(ids))
	return nil
}

type batchResultJSON struct {
	Report *engine.Report `json:"report,omitempty"`
	Error  string         `json:"error,omitempty"`
	Index  int            `json:"index"`
}

type batchSummaryJSON struct {
	ProcessingTime string            `json:"processing_time"`
	Results        []batchResultJSON `json:"results"`
	Total          int               `json:"total"`
	Succeeded      int               `json:"succeeded"`
	Failed         int               `json:"failed"`
	Degraded       int               `json:"degraded"`
	HabitsDetected int               `json:"habits_detected"`
	Conflicts      int               `json:"conflicts"`
}

func batchJSON(s *engine.BatchSummary) batchSummaryJSON {
	out := batchSummaryJSON{
		ProcessingTime: s.ProcessingTime.String(),
		Results:        make([]batchResultJSON, 0, len(s.Results)),
		Total:          s.Total,
		Succeeded:      s.Succeeded,
		Failed:         s.Failed,
		Degraded:       s.Degraded,
		HabitsDetected: s.HabitsDetected,
		Conflicts:      s.Conflicts,
	}
	for _, r := range s.Results {
		row := batchResultJSON{Index: r.Index, Report: r.Report}
		if r.Error != nil {
			row.Error = r.Error.Error()
		}
		out.Results = append(out.Results, row)
	}
	return out
}
