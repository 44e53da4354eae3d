package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"symvis/internal/config"
	"symvis/internal/logging"
)

var (
	// Global flags
	verbose    bool
	rootDir    string
	configPath string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "symvis",
	Short: "symvis - shared-library symbol visibility resolver",
	Long: `symvis decides which annotation each public symbol of a C/C++ shared
library should carry (export, import, hidden or none) for a given set of
build facts, and generates the export macro header that applies the
decision.

The decision table is total and closed: every valid combination of
platform, build mode, module role and the no-export override resolves to
exactly one annotation, and unrecognized facts fail loudly instead of
producing a silently under-decorated binary.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logger
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
}

// loadConfig loads the project config relative to the root directory and
// wires up the category logger from its logging section.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath
	}
	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(projectRoot(), full)
	}

	cfg, err := config.Load(full)
	if err != nil {
		return nil, err
	}

	if err := logging.Initialize(projectRoot(), logging.Settings{
		DebugMode:  cfg.Logging.DebugMode,
		Level:      cfg.Logging.Level,
		Categories: cfg.Logging.Categories,
	}); err != nil {
		logger.Warn("category logging unavailable", zap.Error(err))
	}

	return cfg, nil
}

func projectRoot() string {
	if rootDir != "" {
		return rootDir
	}
	return "."
}

func configRel() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultPath
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "root", "C", "", "project root directory (default current directory)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path relative to the project root (default "+config.DefaultPath+")")

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(platformsCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
