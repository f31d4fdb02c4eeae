package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/beforest/brandvoice/internal/infra/config"
	"github.com/beforest/brandvoice/internal/infra/postgres"
	"github.com/beforest/brandvoice/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type cliContext struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCommand() *cobra.Command {
	rt := &cliContext{}
	root := &cobra.Command{
		Use:           "brandvoice",
		Short:         "Beforest brand voice API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			rt.cfg = cfg
			rt.logger = logger.New()
			return nil
		},
	}
	serve := newServeCommand(rt)
	root.RunE = serve.RunE
	root.AddCommand(serve, newMigrateCommand(rt), newInitSettingsCommand(rt))
	return root
}

func newServeCommand(rt *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, cleanup, err := initializeApp(rt.cfg, rt.logger)
			if err != nil {
				return fmt.Errorf("failed to wire application: %w", err)
			}
			defer cleanup()
			if err := app.Run(cmd.Context()); err != nil {
				return fmt.Errorf("application stopped with error: %w", err)
			}
			return nil
		},
	}
}

func newMigrateCommand(rt *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			pool, err := postgres.Open(ctx, rt.cfg.Postgres)
			if err != nil {
				return err
			}
			defer pool.Close()
			if err := postgres.Migrate(ctx, pool); err != nil {
				return err
			}
			rt.logger.Info("schema applied")
			return nil
		},
	}
}

func newInitSettingsCommand(rt *cliContext) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init-settings",
		Short: "Seed the default prompt and model settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, cleanup, err := initializeSettings(rt.cfg, rt.logger)
			if err != nil {
				return err
			}
			defer cleanup()
			written, err := svc.Seed(cmd.Context(), force)
			if err != nil {
				return err
			}
			rt.logger.Info("settings seeded", "written", written, "force", force)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing settings")
	return cmd
}
