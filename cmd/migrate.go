package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/summons-enricher/internal/store"
	"github.com/sells-group/summons-enricher/internal/trigger"
)

var migrateSeed string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the summons table if it does not exist",
	Long:  "Creates the summons table and its index. With --seed, also inserts the record described by a trigger payload (sqlite only), for local runs.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("migrate"); err != nil {
			return err
		}

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return eris.Wrap(err, "open store")
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}
		zap.L().Info("store migrated", zap.String("driver", cfg.Store.Driver), zap.String("table", cfg.Store.Table))

		if migrateSeed == "" {
			return nil
		}
		return seed(cmd, st)
	},
}

func seed(cmd *cobra.Command, st store.Store) error {
	sq, ok := st.(*store.SQLiteStore)
	if !ok {
		return eris.New("--seed requires the sqlite driver")
	}

	payload, err := readPayload(cmd.InOrStdin(), migrateSeed)
	if err != nil {
		return err
	}
	req, err := trigger.Normalize(payload)
	if err != nil {
		return err
	}
	if err := sq.Insert(cmd.Context(), req); err != nil {
		return eris.Wrap(err, "seed record")
	}
	zap.L().Info("record seeded", zap.String("summons_id", req.SummonsID))
	return nil
}

func init() {
	migrateCmd.Flags().StringVar(&migrateSeed, "seed", "", "trigger payload file to insert after migrating (sqlite only)")
	rootCmd.AddCommand(migrateCmd)
}
