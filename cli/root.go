// Package cli defines the cobra command tree for the rentals server.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dcode-github/rental_listing_platform/config"
	"github.com/dcode-github/rental_listing_platform/media"
	"github.com/dcode-github/rental_listing_platform/observability"
	"github.com/dcode-github/rental_listing_platform/store"
	"github.com/dcode-github/rental_listing_platform/store/memstore"
	"github.com/dcode-github/rental_listing_platform/store/mongostore"
)

var flagConfig string

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "rentals",
		Short:         "Rental listing platform backend",
		Long:          "REST backend for property rental listings: listings, reviews, user profiles, contact and blog.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if flagConfig != "" {
				return os.Setenv("CONFIG_FILE", flagConfig)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&flagConfig, "config", "", "YAML config file (overrides CONFIG_FILE)")

	root.AddCommand(
		newServeCmd(),
		newReconcileCmd(),
		newVersionCmd(),
	)

	return root
}

// loadConfig reads configuration and installs the process logger.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, fmt.Errorf("loading config: %w", err)
	}
	log.Logger = observability.NewLogger(cfg.AppEnv)
	return cfg, nil
}

// backend is the storage side of the server: collections and media.
type backend struct {
	stores store.Stores
	media  media.Store
	close  func()
}

func openBackend(ctx context.Context, cfg config.Config) (*backend, error) {
	if cfg.Database.Driver == "memory" {
		log.Warn().Msg("DB_DRIVER=memory: data lives in process and is lost on exit")
		return &backend{
			stores: memstore.New().Stores(),
			media:  media.NewMemory(cfg.MediaBaseURL()),
			close:  func() {},
		}, nil
	}

	client, err := config.ConnectDB(ctx, cfg.Database.URI)
	if err != nil {
		return nil, err
	}
	db := client.Database(cfg.Database.Name)

	if err := mongostore.EnsureIndexes(ctx, db); err != nil {
		config.CloseDBConnection(client)
		return nil, err
	}
	assets, err := media.NewGridFS(db, cfg.MediaBaseURL())
	if err != nil {
		config.CloseDBConnection(client)
		return nil, err
	}

	return &backend{
		stores: mongostore.New(db),
		media:  assets,
		close:  func() { config.CloseDBConnection(client) },
	}, nil
}
