package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"github.com/Veraticus/spend-sense/internal/analysis"
	"github.com/Veraticus/spend-sense/internal/cli"
	"github.com/Veraticus/spend-sense/internal/common"
	"github.com/Veraticus/spend-sense/internal/engine"
	"github.com/Veraticus/spend-sense/internal/model"
	"github.com/Veraticus/spend-sense/internal/ofx"
	"github.com/spf13/cobra"
)

func (a *app) importOFXCmd() *cobra.Command {
	var (
		category  string
		match     string
		goalsFile string
		output    string
		save      bool
	)

	cmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Derive behavior from OFX/QFX statements and evaluate it",
		Long: `Read spending from OFX or QFX statements, keep the transactions that
belong to one category, derive behavior features from them and run the full
pipeline.

Examples:
  # Evaluate restaurant spending across a quarter of card statements
  sense import-ofx ~/Downloads/card_*.qfx --category "dining out" --match '(?i)sushi|pizza|grill'

  # Score against the goals in a request file
  sense import-ofx ~/Downloads/*.ofx --category shopping --goals goals.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}

			var pattern *regexp.Regexp
			if match != "" {
				re, err := regexp.Compile(match)
				if err != nil {
					return common.NewUserError(fmt.Sprintf("invalid --match pattern: %v", err), common.ErrInvalidRequest)
				}
				pattern = re
			}

			files, err := expandFiles(args)
			if err != nil {
				return err
			}

			txns, err := readStatements(cmd, files)
			if err != nil {
				return err
			}
			txns = ofx.Filter(txns, pattern)
			derivation := analysis.DeriveFeatures(txns)

			req := engine.Request{}
			if goalsFile != "" {
				reqs, err := loadRequests(goalsFile)
				if err != nil {
					return err
				}
				req = reqs[0]
			}
			req.Category = category
			req.BehaviorFeatures = derivation.Features
			req.CurrentTransaction = latest(txns)

			pipeline, err := a.newPipeline()
			if err != nil {
				return err
			}
			report, err := pipeline.Evaluate(cmd.Context(), req)
			if err != nil {
				return err
			}

			if save {
				store, err := a.openStorage(cmd.Context())
				if err != nil {
					return err
				}
				defer func() { _ = store.Close() }()
				if _, err := saveReports(cmd.Context(), store, report); err != nil {
					return err
				}
			}

			if output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), struct {
					Derivation analysis.Derivation `json:"derivation"`
					Report     *engine.Report      `json:"report"`
				}{derivation, report})
			}
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), cli.NewFormatter().Derivation(derivation)); err != nil {
				return err
			}
			return printReports(cmd, output, []*engine.Report{report}, save)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&category, "category", "c", "", "category the imported spending belongs to")
	flags.StringVarP(&match, "match", "m", "", "regular expression selecting merchants")
	flags.StringVar(&goalsFile, "goals", "", "request file supplying goals, savings capacity and style")
	flags.StringVarP(&output, "output", "o", outputSummary, "output format (summary, json)")
	flags.BoolVar(&save, "save", false, "store the report in the history database")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

// expandFiles resolves glob patterns, keeping plain paths that exist.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) > 0 {
			files = append(files, matches...)
			continue
		}
		if _, err := os.Stat(pattern); err == nil {
			files = append(files, pattern)
		} else {
			slog.Warn("No files found matching pattern", "pattern", pattern)
		}
	}
	if len(files) == 0 {
		return nil, common.NewUserError("no statement files found", common.ErrNotFound)
	}
	return files, nil
}

// readStatements parses every file and merges their spending without
// duplicates. Unreadable files are logged and skipped.
func readStatements(cmd *cobra.Command, files []string) ([]model.Transaction, error) {
	parser := ofx.NewParser()
	var all []model.Transaction

	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			slog.Error("Failed to open file", "file", path, "error", err)
			continue
		}
		stmt, err := parser.Parse(cmd.Context(), f)
		_ = f.Close()
		if err != nil {
			slog.Error("Failed to parse OFX file", "file", path, "error", err)
			continue
		}

		slog.Info("Processed statement",
			"file", filepath.Base(path),
			"accounts", len(stmt.Accounts),
			"spending", len(stmt.Spending),
			"inflows_skipped", stmt.Inflows)
		all = append(all, stmt.Spending...)
	}

	if err := cmd.Context().Err(); err != nil {
		return nil, err
	}
	return ofx.Dedupe(all), nil
}

// latest returns the most recent purchase as the transaction to analyze.
func latest(txns []model.Transaction) model.CurrentTransaction {
	var newest *model.Transaction
	for i := range txns {
		if newest == nil || txns[i].Date.After(newest.Date) {
			newest = &txns[i]
		}
	}
	if newest == nil {
		return model.CurrentTransaction{}
	}
	return model.CurrentTransaction{Amount: newest.Amount, Hour: newest.Date.Hour()}
}
