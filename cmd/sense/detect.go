package main

import (
	"fmt"

	"github.com/Veraticus/spend-sense/internal/cli"
	"github.com/Veraticus/spend-sense/internal/model"
	"github.com/spf13/cobra"
)

func (a *app) detectCmd() *cobra.Command {
	var (
		category string
		output   string
		features model.BehaviorFeatures
	)

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Detect a spending habit from behavior features",
		Long: `Classify the recent behavior in one category as a habit or not.

Example:
  sense detect --category "dining out" --frequency 6 --consistency 0.8 \
    --spend 3200 --weeks 12 --weekend 0.7 --night 0.6`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			pipeline, err := a.newPipeline()
			if err != nil {
				return err
			}

			result, err := pipeline.Detect(features, category)
			if err != nil {
				return err
			}

			if output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.NewFormatter().Habit(result))
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&category, "category", "c", "", "spending category (see 'sense categories')")
	flags.IntVar(&features.AvgWeeklyFrequency, "frequency", 0, "average purchases per week")
	flags.Float64Var(&features.Consistency, "consistency", 0, "share of weeks with spending (0-1)")
	flags.Float64Var(&features.AverageSpend, "spend", 0, "average monthly spend")
	flags.IntVar(&features.WeeksActive, "weeks", 0, "weeks with at least one purchase")
	flags.Float64Var(&features.WeekendRatio, "weekend", 0, "share of purchases on weekends (0-1)")
	flags.Float64Var(&features.NightRatio, "night", 0, "share of purchases late at night (0-1)")
	flags.StringVarP(&output, "output", "o", outputSummary, "output format (summary, json)")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}
