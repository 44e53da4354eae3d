package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"symvis/internal/watch"
)

var watchResolved bool

// watchCmd regenerates the header whenever the config file changes.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate the header on config changes",
	Long: `Watch monitors the project config file and rewrites the export header
every time the config settles after an edit. Runs until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Load once up front so a missing or broken config fails the
		// command instead of spinning silently. Also wires the category
		// logger.
		if _, err := loadConfig(); err != nil {
			return err
		}

		w, err := watch.New(projectRoot(), configRel(), watchResolved)
		if err != nil {
			return fmt.Errorf("creating watcher: %w", err)
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		if err := w.Start(ctx); err != nil {
			return fmt.Errorf("starting watcher: %w", err)
		}
		defer w.Stop()

		logger.Info("watching config", zap.String("root", projectRoot()), zap.String("config", configRel()))
		fmt.Fprintln(cmd.OutOrStdout(), "watching for config changes (ctrl-c to stop)")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		select {
		case sig := <-sigCh:
			logger.Info("shutting down", zap.String("signal", sig.String()))
		case <-ctx.Done():
		}

		stats := w.GetStats()
		fmt.Fprintf(cmd.OutOrStdout(), "regenerated %d time(s), %d error(s)\n",
			stats.Regenerations, stats.Errors)
		return nil
	},
}

func init() {
	watchCmd.Flags().BoolVar(&watchResolved, "resolved", false, "flatten the header for the configured facts")
}
