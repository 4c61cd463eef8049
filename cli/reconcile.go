package cli

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dcode-github/rental_listing_platform/store"
)

func newReconcileCmd() *cobra.Command {
	var deleteOrphans bool

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Repair links between listings and their reviews",
		Long: "Pull review ids that point at missing reviews, relink reviews their listing lost, " +
			"and report reviews whose listing was deleted.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			be, err := openBackend(ctx, cfg)
			if err != nil {
				return err
			}
			defer be.close()

			report, err := store.Reconcile(ctx, be.stores.Properties, be.stores.Reviews)
			if err != nil {
				return err
			}

			deleted := 0
			if deleteOrphans {
				for _, id := range report.Orphans {
					if _, err := be.stores.Reviews.Delete(ctx, id); err != nil {
						log.Error().Err(err).Str("review", id.Hex()).Msg("failed to delete orphan review")
						continue
					}
					deleted++
				}
			}

			out, err := json.MarshalIndent(map[string]interface{}{
				"danglingRefs":   report.DanglingRefs,
				"misplaced":      report.Misplaced,
				"duplicated":     report.Duplicated,
				"relinked":       report.Relinked,
				"orphans":        len(report.Orphans),
				"orphansDeleted": deleted,
			}, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().BoolVar(&deleteOrphans, "delete-orphans", false, "delete reviews whose listing no longer exists")

	return cmd
}
