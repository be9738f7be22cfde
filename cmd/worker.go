package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/summons-enricher/internal/queue"
)

var workerConcurrency int

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume enrichment tasks from the queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if workerConcurrency > 0 {
			cfg.Queue.Concurrency = workerConcurrency
		}

		env, err := initWorker(ctx, "worker")
		if err != nil {
			return err
		}
		defer env.Close()

		zap.L().Info("starting queue worker",
			zap.String("queue", cfg.Queue.Name),
			zap.Int("concurrency", cfg.Queue.Concurrency),
		)
		return queue.NewServer(cfg.Queue, queue.NewHandler(env.Worker)).Run(ctx)
	},
}

func init() {
	workerCmd.Flags().IntVar(&workerConcurrency, "concurrency", 0, "concurrent tasks (default from config)")
	rootCmd.AddCommand(workerCmd)
}
