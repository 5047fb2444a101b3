package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"codewhisperer/internal/ingest"
	"codewhisperer/internal/temporal"
)

func newDaemonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Tail the feedback log and run periodic recomputation",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, kv, err := openEngine()
			if err != nil {
				return err
			}
			defer kv.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			watcher := ingest.NewWatcher(engine, cfg.FeedbackLog, logger)
			scheduler := temporal.NewScheduler(engine, cfg.InitialDelay(), cfg.Interval(), logger)

			group, ctx := errgroup.WithContext(ctx)
			group.Go(func() error {
				if err := watcher.Start(ctx); err != nil {
					return err
				}
				<-ctx.Done()
				watcher.Stop()
				return nil
			})
			group.Go(func() error {
				scheduler.Start(ctx)
				<-ctx.Done()
				scheduler.Stop()
				return nil
			})

			err = group.Wait()
			engine.Close()
			logger.Info("whisperd stopped")
			return err
		},
	}
}
