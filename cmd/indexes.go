package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/classroom-reserve/internal/config"
	"github.com/example/classroom-reserve/internal/persistence/mongo"
)

func newEnsureIndexesCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "ensure-indexes",
		Short: "Reconcile MongoDB indexes for the configured database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Store != config.StoreMongo {
				return fmt.Errorf("ensure-indexes requires the mongo store, configured store is %q", cfg.Store)
			}

			ctx := context.Background()
			st, err := mongo.Open(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close(context.Background()) }()

			if err := mongo.EnsureIndexes(ctx, st.Database()); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "indexes reconciled for %s\n", cfg.Mongo.Database)
			return nil
		},
	}
}
