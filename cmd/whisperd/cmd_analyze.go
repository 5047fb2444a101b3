package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"codewhisperer/internal/ingest"
)

func newAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <feedback.jsonl>",
		Short: "Run habit-change detection over a feedback log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, kv, err := openEngine()
			if err != nil {
				return err
			}
			defer kv.Close()

			history, err := ingest.ReadFeedbackLog(args[0], logger)
			if err != nil {
				return err
			}
			for _, rec := range history {
				engine.RecordFeedback(rec)
			}
			changes := engine.AnalyzeHabitEvolution(history)
			engine.Close()

			if len(changes) == 0 {
				fmt.Println("no habit changes detected")
				return nil
			}
			for _, ch := range changes {
				fmt.Printf("%-18s %-12s %s -> %s (confidence %.2f, %d -> %d uses over %dd)\n",
					ch.ChangeType, ch.Language, ch.OldPattern, ch.NewPattern,
					ch.Confidence, ch.Evidence.OldUsageCount, ch.Evidence.NewUsageCount,
					ch.Evidence.TransitionPeriodDays)
			}
			return nil
		},
	}
}
