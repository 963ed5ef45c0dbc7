package cmd

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
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/sitegrade/sitegrade/internal/api"
	"github.com/sitegrade/sitegrade/internal/scanner"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scan engine as a REST API service",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		authToken, _ := cmd.Flags().GetString("auth-token")
		corsOrigins, _ := cmd.Flags().GetStringSlice("cors-origins")
		rateLimit, _ := cmd.Flags().GetInt("rate-limit")
		rateBurst, _ := cmd.Flags().GetInt("rate-burst")
		shutdownTimeout, _ := cmd.Flags().GetDuration("shutdown-timeout")
		if authToken == "" {
			authToken = viper.GetString("auth_token")
		}

		zlog, err := zap.NewProduction()
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer func() {
			if err := zlog.Sync(); err != nil {
				fmt.Fprintf(os.Stderr, "failed to sync logger: %v\n", err)
			}
		}()

		engine := scanner.New(
			scanner.WithLogger(zlog),
			scanner.WithPathWorkers(viper.GetInt("workers")),
			scanner.WithRequestsPerSecond(viper.GetInt("rps")),
			scanner.WithUserAgent(viper.GetString("user_agent")),
		)

		server := api.NewServer(api.Config{
			Scans:       engine,
			AuthToken:   authToken,
			CORSOrigins: corsOrigins,
			RateLimit:   rateLimit,
			RateBurst:   rateBurst,
			Logger:      zlog,
		})

		httpServer := &http.Server{
			Addr:         addr,
			Handler:      server,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 120 * time.Second, // scans can legitimately take a minute
			IdleTimeout:  120 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			fmt.Printf("%s scan API listening on %s\n", colorInfo("→"), addr)
			fmt.Printf("%s Press Ctrl+C to gracefully shutdown\n", colorInfo("→"))
			serverErrors <- httpServer.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
		case sig := <-shutdown:
			fmt.Printf("\n%s Received signal %v, initiating graceful shutdown...\n", colorInfo("→"), sig)

			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := httpServer.Shutdown(ctx); err != nil {
				if err := httpServer.Close(); err != nil {
					return fmt.Errorf("could not stop server: %w", err)
				}
				return fmt.Errorf("graceful shutdown did not complete: %w", err)
			}
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "listen address")
	serveCmd.Flags().String("auth-token", "", "require this X-Auth-Token on scan requests (empty disables auth)")
	serveCmd.Flags().StringSlice("cors-origins", nil, "allowed CORS origins (empty allows all)")
	serveCmd.Flags().Int("rate-limit", 2, "scan requests per second per client IP (0 disables)")
	serveCmd.Flags().Int("rate-burst", 4, "burst size for the per-IP rate limiter")
	serveCmd.Flags().Duration("shutdown-timeout", 30*time.Second, "graceful shutdown deadline")
}
