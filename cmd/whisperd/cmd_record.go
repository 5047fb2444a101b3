package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"codewhisperer/internal/temporal"
)

func newRecordCmd() *cobra.Command {
	var (
		patternID   string
		value       float64
		language    string
		projectType string
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a single data point on a pattern's time series",
		RunE: func(cmd *cobra.Command, args []string) error {
			if patternID == "" {
				return fmt.Errorf("--pattern is required")
			}
			engine, kv, err := openEngine()
			if err != nil {
				return err
			}
			defer kv.Close()

			engine.RecordDataPoint(patternID, value, temporal.PointContext{
				Language:    language,
				ProjectType: projectType,
			})
			engine.Recompute(context.Background())
			engine.Close()

			fmt.Printf("recorded %s = %.3f\n", patternID, value)
			return nil
		},
	}

	cmd.Flags().StringVar(&patternID, "pattern", "", "pattern identifier")
	cmd.Flags().Float64Var(&value, "value", 1.0, "scalar signal value")
	cmd.Flags().StringVar(&language, "language", "", "language context")
	cmd.Flags().StringVar(&projectType, "project-type", "", "project type context")
	return cmd
}

func newInitCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Save(path); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "out", "whisperd.yaml", "config destination")
	return cmd
}
