package main

import (
	"encoding/json"
	"fmt"

	"github.com/Veraticus/spend-sense/internal/cli"
	"github.com/Veraticus/spend-sense/internal/engine"
	"github.com/spf13/cobra"
)

func (a *app) historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse saved evaluations",
	}
	cmd.AddCommand(a.historyListCmd())
	cmd.AddCommand(a.historyShowCmd())
	return cmd
}

func (a *app) historyListCmd() *cobra.Command {
	var (
		limit  int
		output string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent evaluations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			store, err := a.openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			evals, err := store.ListEvaluations(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), evals)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.NewFormatter().History(evals))
			return err
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of evaluations")
	cmd.Flags().StringVarP(&output, "output", "o", outputSummary, "output format (summary, json)")
	return cmd
}

func (a *app) historyShowCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show one saved evaluation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			store, err := a.openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			e, err := store.GetEvaluation(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), e)
			}

			var report engine.Report
			if err := json.Unmarshal(e.Report, &report); err != nil {
				return fmt.Errorf("stored report is unreadable: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.NewFormatter().Report(&report))
			return err
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputSummary, "output format (summary, json)")
	return cmd
}
