package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"symvis/internal/header"
	"symvis/internal/logging"
)

var (
	generateResolved bool
	generateOutput   string
	generateStdout   bool
)

// generateCmd renders the export header from the project config.
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the export macro header",
	Long: `Generate renders the export header for the configured library. By default
the portable preprocessor header is produced, covering every platform
branch; with --resolved the header is flattened for the fact tuple in the
config (or the SYMVIS_* environment overrides).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		opts, err := cfg.HeaderOptions()
		if err != nil {
			return err
		}

		var content string
		if generateResolved {
			facts, err := cfg.VisibilityFacts()
			if err != nil {
				return err
			}
			content, err = header.RenderResolved(opts, facts)
			if err != nil {
				return err
			}
			logging.Header("rendered resolved header for %s", facts)
		} else {
			content, err = header.Render(opts)
			if err != nil {
				return err
			}
			logging.Header("rendered portable header for prefix %s", opts.Prefix)
		}

		if generateStdout {
			fmt.Fprint(cmd.OutOrStdout(), content)
			return nil
		}

		out := generateOutput
		if out == "" {
			out = cfg.Header.Output
		}
		if out == "" {
			return fmt.Errorf("no output path: set header.output in the config or pass --output")
		}
		if !filepath.IsAbs(out) {
			out = filepath.Join(projectRoot(), out)
		}

		if err := header.WriteFile(out, content); err != nil {
			return err
		}
		logger.Info("header written", zap.String("path", out))
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
		return nil
	},
}

func init() {
	generateCmd.Flags().BoolVar(&generateResolved, "resolved", false, "flatten the header for the configured facts")
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "output path (overrides header.output)")
	generateCmd.Flags().BoolVar(&generateStdout, "stdout", false, "print the header instead of writing it")
}
