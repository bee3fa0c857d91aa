package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/karkasai/karkasai-backend/internal/app"
	"github.com/karkasai/karkasai-backend/internal/config"
	"github.com/karkasai/karkasai-backend/internal/observability"
	"github.com/karkasai/karkasai-backend/internal/tools/loadgen"
	"github.com/karkasai/karkasai-backend/internal/tools/obscheck"
)

func main() {
	root := &cobra.Command{
		Use:   "karkasai",
		Short: "Karkasai group platform backend",
	}
	root.AddCommand(newServeCommand(), newCleanupSessionsCommand(), newLoadgenCommand(), obscheck.NewCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := config.Load(ctx)
			if err != nil {
				return err
			}
			runtime, err := observability.InitRuntime(ctx, cfg)
			if err != nil {
				return err
			}
			a, err := app.New(ctx, cfg, runtime)
			if err != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = runtime.Shutdown(shutdownCtx)
				return err
			}
			return a.Run(ctx)
		},
	}
}

func newCleanupSessionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup-sessions",
		Short: "Delete expired sessions from the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load(ctx)
			if err != nil {
				return err
			}
			runtime, err := observability.InitRuntime(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = runtime.Shutdown(shutdownCtx)
			}()

			removed, err := app.RunSessionCleanup(ctx, cfg, runtime.Logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired sessions\n", removed)
			return nil
		},
	}
}

func newLoadgenCommand() *cobra.Command {
	cfg := loadgen.Config{}
	cmd := &cobra.Command{
		Use:   "loadgen",
		Short: "Generate API traffic against a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := loadgen.Run(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "total=%d failures=%d classes=%v\n",
				res.TotalRequests, res.Failures, res.StatusClasses)
			return nil
		},
	}
	cmd.Flags().StringVar(&cfg.BaseURL, "base-url", "http://localhost:8080", "API base URL")
	cmd.Flags().StringVar(&cfg.Profile, "profile", "mixed", "traffic profile: mixed, auth or content")
	cmd.Flags().DurationVar(&cfg.Duration, "duration", 30*time.Second, "how long to run")
	cmd.Flags().IntVar(&cfg.RPS, "rps", 20, "target requests per second")
	cmd.Flags().IntVar(&cfg.Concurrency, "concurrency", 6, "worker count")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", time.Now().UnixNano(), "random seed for the request mix")
	return cmd
}
