package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/spend-sense/internal/common"
	"github.com/Veraticus/spend-sense/internal/config"
	"github.com/Veraticus/spend-sense/internal/metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

// app carries the state shared by every command of one invocation.
type app struct {
	v        *viper.Viper
	recorder *metrics.Prometheus
	cfgFile  string
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "sense",
		Short: "🧭 Spending habit and goal conflict coach",
		Long: `spend-sense detects spending habits, scores how they threaten your
financial goals and ranks personalized interventions.`,
		SilenceUsage:       true,
		PersistentPreRunE:  a.initConfig,
		PersistentPostRunE: a.writeMetrics,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: $HOME/.config/sense/config.yaml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "console", "log format (console, json)")
	flags.String("habit-model", "", "habit classifier artifact (JSON)")
	flags.String("suitability-model", "", "suitability classifier artifact (JSON)")
	flags.String("db", "", "evaluation history database path")
	flags.Int("top-k", 5, "number of recommendations to return")
	flags.String("metrics-file", "", "write Prometheus metrics to this file after the command")

	_ = a.v.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("logging.format", flags.Lookup("log-format"))
	_ = a.v.BindPFlag("models.habit_path", flags.Lookup("habit-model"))
	_ = a.v.BindPFlag("models.suitability_path", flags.Lookup("suitability-model"))
	_ = a.v.BindPFlag("database.path", flags.Lookup("db"))
	_ = a.v.BindPFlag("ranking.top_k", flags.Lookup("top-k"))
	_ = a.v.BindPFlag("metrics.file", flags.Lookup("metrics-file"))

	rootCmd.AddCommand(a.categoriesCmd())
	rootCmd.AddCommand(a.detectCmd())
	rootCmd.AddCommand(a.conflictsCmd())
	rootCmd.AddCommand(a.evaluateCmd())
	rootCmd.AddCommand(a.batchCmd())
	rootCmd.AddCommand(a.importOFXCmd())
	rootCmd.AddCommand(a.historyCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func main() {
	err := newRootCmd().ExecuteContext(context.Background())
	if err != nil {
		var userErr *common.UserError
		if errors.As(err, &userErr) {
			fmt.Fprintln(os.Stderr, userErr.UserMessage)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func (a *app) initConfig(_ *cobra.Command, _ []string) error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			a.v.AddConfigPath(filepath.Join(home, config.DefaultConfigDir))
		}
		a.v.AddConfigPath(".")
		a.v.SetConfigName("config")
		a.v.SetConfigType("yaml")
	}

	a.v.SetDefault("database.path", config.DefaultDatabasePath)

	a.v.SetEnvPrefix("SENSE")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	level, err := common.ParseLevel(a.v.GetString("logging.level"))
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	if err := common.SetupLogger(level, a.v.GetString("logging.format")); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	if a.v.GetString("metrics.file") != "" {
		a.recorder = metrics.NewPrometheus()
	}
	return nil
}

func (a *app) writeMetrics(_ *cobra.Command, _ []string) error {
	path := a.v.GetString("metrics.file")
	if path == "" || a.recorder == nil {
		return nil
	}
	if err := a.recorder.WriteTextfile(config.ExpandPath(path)); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sense %s\n", version)
		},
	}
}
