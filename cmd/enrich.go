package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var enrichFile string

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Run one enrichment invocation from a trigger payload",
	Long:  "Reads a direct or change-stream trigger payload from --file (or stdin), enriches the record, and prints the outcome as JSON.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		payload, err := readPayload(cmd.InOrStdin(), enrichFile)
		if err != nil {
			return err
		}

		env, err := initWorker(ctx, "enrich")
		if err != nil {
			return err
		}
		defer env.Close()

		out := env.Worker.Handle(ctx, payload)

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return eris.Wrap(err, "encode outcome")
		}

		if !out.Succeeded() {
			zap.L().Error("enrichment failed",
				zap.Int("status_code", out.StatusCode),
				zap.String("error", string(out.Body.Error)),
			)
			return eris.Errorf("enrichment failed: %s", out.Body.Message)
		}
		return nil
	},
}

// readPayload reads path, or r when path is empty or "-".
func readPayload(r io.Reader, path string) ([]byte, error) {
	if path != "" && path != "-" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "read payload %s", path)
		}
		return b, nil
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "read payload from stdin")
	}
	return b, nil
}

func init() {
	enrichCmd.Flags().StringVarP(&enrichFile, "file", "f", "", "trigger payload file (default stdin)")
	rootCmd.AddCommand(enrichCmd)
}
