package main

import (
	"fmt"

	"github.com/Veraticus/spend-sense/internal/cli"
	"github.com/Veraticus/spend-sense/internal/model"
	"github.com/spf13/cobra"
)

func (a *app) categoriesCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List supported spending categories",
		Long:  `Display every category the pipeline accepts, grouped by expense nature.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			infos := model.AllowedCategories()
			if output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), infos)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.NewFormatter().Categories(infos))
			return err
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputSummary, "output format (summary, json)")
	return cmd
}
