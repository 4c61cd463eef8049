package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dcode-github/rental_listing_platform/cache"
	"github.com/dcode-github/rental_listing_platform/config"
	"github.com/dcode-github/rental_listing_platform/controllers"
	"github.com/dcode-github/rental_listing_platform/observability"
	"github.com/dcode-github/rental_listing_platform/routes"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "port to listen on (overrides PORT)")

	return cmd
}

func runServe(ctx context.Context, cfg config.Config) error {
	be, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer be.close()

	redisClient, err := config.ConnectRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	var listings *cache.Listings
	if redisClient != nil {
		defer redisClient.Close()
		listings = cache.New(redisClient, cfg.Redis.CacheTTL)
	}

	if !cfg.Policy.EnforceUpdateOwnership {
		log.Warn().Msg("ENFORCE_UPDATE_OWNERSHIP is off: any signed-in user may update any listing")
	}

	handler := routes.NewHandler(routes.Deps{
		Stores:   be.stores,
		Media:    be.media,
		Listings: listings,
		Tokens: controllers.Tokens{
			Key:          []byte(cfg.Auth.JWTKey),
			TTL:          cfg.Auth.TokenTTL,
			SecureCookie: cfg.AppEnv != "dev",
		},
		Policy:        controllers.UpdatePolicy{EnforceOwnership: cfg.Policy.EnforceUpdateOwnership},
		Logger:        log.Logger,
		Registry:      observability.InitRegistry(),
		CORSOrigins:   cfg.CORSOrigins,
		UploadsPerMin: cfg.Uploads.RatePerMinute,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.AppEnv).Str("driver", cfg.Database.Driver).Msg("server running")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("starting server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error during server shutdown: %w", err)
	}
	log.Info().Msg("server gracefully stopped")
	return nil
}
