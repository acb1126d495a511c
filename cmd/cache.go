package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/trustcheck/internal/store"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the search result cache",
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete expired cache entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("cache"); err != nil {
			return err
		}

		ctx := cmd.Context()
		c, err := store.Open(ctx, cfg.Cache.Driver, cfg.Cache.DatabaseURL)
		if err != nil {
			return eris.Wrap(err, "cache prune: open")
		}
		defer func() { _ = c.Close() }()

		n, err := c.DeleteExpired(ctx)
		if err != nil {
			return err
		}

		zap.L().Info("cache pruned", zap.String("driver", cfg.Cache.Driver), zap.Int64("deleted", n))
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %d expired entries\n", n)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cachePruneCmd)
	rootCmd.AddCommand(cacheCmd)
}
