package main

import (
	"fmt"

	"github.com/Veraticus/spend-sense/internal/cli"
	"github.com/Veraticus/spend-sense/internal/engine"
	"github.com/spf13/cobra"
)

func (a *app) evaluateCmd() *cobra.Command {
	var (
		file   string
		output string
		save   bool
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Run the full pipeline on a request file",
		Long: `Detect the habit, score goal conflicts, rank recommendations and
build monthly guidance for every request in the file.

Example:
  sense evaluate -f request.yaml --output json --save`,
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

			ctx := cmd.Context()
			reports := make([]*engine.Report, 0, len(reqs))
			for i, req := range reqs {
				report, err := pipeline.Evaluate(ctx, req)
				if err != nil {
					return fmt.Errorf("request %d: %w", i+1, err)
				}
				reports = append(reports, report)
			}

			if save {
				store, err := a.openStorage(ctx)
				if err != nil {
					return err
				}
				defer func() { _ = store.Close() }()
				if _, err := saveReports(ctx, store, reports...); err != nil {
					return err
				}
			}

			return printReports(cmd, output, reports, save)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "request file (YAML or JSON)")
	cmd.Flags().StringVarP(&output, "output", "o", outputSummary, "output format (summary, json)")
	cmd.Flags().BoolVar(&save, "save", false, "store the reports in the history database")
	return cmd
}

func printReports(cmd *cobra.Command, output string, reports []*engine.Report, saved bool) error {
	out := cmd.OutOrStdout()
	if output == outputJSON {
		if len(reports) == 1 {
			return writeJSON(out, reports[0])
		}
		return writeJSON(out, reports)
	}

	f := cli.NewFormatter()
	for _, report := range reports {
		if _, err := fmt.Fprintln(out, f.Report(report)); err != nil {
			return err
		}
		if saved {
			if _, err := fmt.Fprintln(out, cli.FormatSuccess("Saved as "+report.ID)); err != nil {
				return err
			}
		}
	}
	return nil
}
