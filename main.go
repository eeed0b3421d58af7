package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"quickcart-emporium/app"
	"quickcart-emporium/config"
	"quickcart-emporium/db"
	"quickcart-emporium/logger"
)

var (
	envFile string
	port    string
)

var rootCmd = &cobra.Command{
	Use:   "quickcart",
	Short: "QuickCart Emporium storefront server",
	Long: `Serves the QuickCart Emporium storefront API: product listing with
search, category filter, sorting and pagination, product details with
sorted reviews, and optimized gallery images, all backed by the remote
catalog API.

Run without a subcommand to start the server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the storefront HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "env file loaded outside production")
	rootCmd.PersistentFlags().StringVar(&port, "port", "", "listen port (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	// Values in the env file override the process environment in development
	loaded, envErr := config.LoadEnvFile(envFile)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if port != "" {
		cfg.Port = port
	}

	if err := logger.Init(cfg.LogLevel, cfg.Env); err != nil {
		return err
	}
	defer logger.Sync()

	if envErr != nil {
		logger.Log.Warnf("⚠️  %v, using system environment variables", envErr)
	} else if loaded {
		logger.Log.Infof("Loaded environment variables from %s", envFile)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler, err := app.Initialize(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer db.CloseDB()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Infof("Server starting on %s", cfg.Addr())
		logger.Log.Infof("Product listing endpoint: GET http://localhost:%s/api/products?page=1", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed to start: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Log.Infof("Shutdown requested")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Warnf("⚠️  Graceful shutdown timed out: %v", err)
		return srv.Close()
	}
	logger.Log.Infof("bye")
	return nil
}
