// whisperd is the analysis daemon and CLI for temporal coding-habit
// insights: it tracks how suggestion feedback evolves over time and
// reports trends and habit changes back to the editor surface.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"codewhisperer/internal/config"
	"codewhisperer/internal/store"
	"codewhisperer/internal/temporal"
)

var (
	flagConfig string
	flagDebug  bool

	cfg    *config.Config
	logger *zap.Logger
)

func main() {
	root := &cobra.Command{
		Use:           "whisperd",
		Short:         "Temporal coding-habit analysis for suggestion feedback",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "path to whisperd config.yaml")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")

	root.AddCommand(
		newInitCmd(),
		newRecordCmd(),
		newAnalyzeCmd(),
		newInsightsCmd(),
		newDaemonCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func setup() error {
	zapCfg := zap.NewProductionConfig()
	zapCfg.Encoding = "console"
	if flagDebug {
		zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	cfg = config.DefaultConfig()
	if flagConfig != "" {
		loaded, err := config.Load(flagConfig)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if !flagDebug {
		if level, err := zapcore.ParseLevel(cfg.Logging.Level); err == nil {
			zapCfg.Level = zap.NewAtomicLevelAt(level)
		}
	}

	var err error
	logger, err = zapCfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	return nil
}

// openEngine opens the state database and restores checkpointed state.
func openEngine() (*temporal.Engine, *store.SQLiteKV, error) {
	kv, err := store.OpenSQLite(cfg.StatePath())
	if err != nil {
		return nil, nil, fmt.Errorf("open state store: %w", err)
	}
	engine := temporal.NewEngine(kv, cfg.Params(), logger)
	engine.Load(context.Background())
	return engine, kv, nil
}
