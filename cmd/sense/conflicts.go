package main

import (
	"fmt"

	"github.com/Veraticus/spend-sense/internal/cli"
	"github.com/Veraticus/spend-sense/internal/model"
	"github.com/spf13/cobra"
)

func (a *app) conflictsCmd() *cobra.Command {
	var (
		file   string
		output string
	)

	cmd := &cobra.Command{
		Use:   "conflicts",
		Short: "Score how a spending habit conflicts with your goals",
		Long: `Detect the habit described in a request file and score it against
the request's active goals. Recommendations are not generated.`,
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

			f := cli.NewFormatter()
			results := make([]model.ConflictResult, 0, len(reqs))
			for i := range reqs {
				req := &reqs[i]
				if err := req.Validate(); err != nil {
					return fmt.Errorf("request %d: %w", i+1, err)
				}
				habit, err := pipeline.Detect(req.BehaviorFeatures, req.Category)
				if err != nil {
					return err
				}
				cat, nature, _ := model.LookupCategory(req.Category)
				profile := model.NewBehaviorProfile(req.BehaviorFeatures, cat, nature, habit, req.BehaviorStyle)

				result, err := pipeline.DetectConflicts(habit, req.ActiveGoals, profile, model.ConflictContext{
					MonthlySavingsCapacity: req.MonthlySavingsCapacity,
				})
				if err != nil {
					return err
				}
				results = append(results, result)

				if output == outputSummary {
					if _, err := fmt.Fprintln(cmd.OutOrStdout(), f.Conflict(result)); err != nil {
						return err
					}
				}
			}

			if output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), results)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "request file (YAML or JSON)")
	cmd.Flags().StringVarP(&output, "output", "o", outputSummary, "output format (summary, json)")
	return cmd
}
