package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/summons-enricher/internal/queue"
)

var enqueueFile string

var enqueueCmd = &cobra.Command{
	Use:   "enqueue",
	Short: "Push a trigger payload onto the enrichment queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("enqueue"); err != nil {
			return err
		}

		payload, err := readPayload(cmd.InOrStdin(), enqueueFile)
		if err != nil {
			return err
		}

		client := queue.NewClient(cfg.Queue)
		defer client.Close() //nolint:errcheck

		id, err := client.Enqueue(cmd.Context(), payload)
		if err != nil {
			return err
		}

		zap.L().Info("task enqueued", zap.String("task_id", id), zap.String("queue", cfg.Queue.Name))
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

func init() {
	enqueueCmd.Flags().StringVarP(&enqueueFile, "file", "f", "", "trigger payload file (default stdin)")
	rootCmd.AddCommand(enqueueCmd)
}
