package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"symvis/internal/visibility"
)

var (
	resolvePlatform string
	resolveMode     string
	resolveRole     string
	resolveNoExport bool
	resolveJSON     bool
)

// resolveCmd prints the annotation resolution for one fact tuple.
var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve annotations for a build-fact tuple",
	Long: `Resolve runs the decision table for the facts given by flags and prints
the resulting annotations. Empty output for a token means the declaration
is left undecorated on that platform, which is a defined result, not an
error.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		facts, err := factsFromFlags()
		if err != nil {
			return err
		}

		res, err := visibility.Resolve(facts)
		if err != nil {
			return err
		}
		logger.Debug("resolved", zap.String("facts", facts.String()))

		if resolveJSON {
			data, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding resolution: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "facts:      %s\n", facts)
		fmt.Fprintf(out, "export:     %s\n", tokenOrNone(res.Export))
		fmt.Fprintf(out, "import:     %s\n", tokenOrNone(res.Import))
		fmt.Fprintf(out, "hidden:     %s\n", tokenOrNone(res.Hidden))
		fmt.Fprintf(out, "public_api: %s\n", tokenOrNone(res.PublicAPI))
		return nil
	},
}

func factsFromFlags() (visibility.Facts, error) {
	platform, err := visibility.ParsePlatform(resolvePlatform)
	if err != nil {
		return visibility.Facts{}, err
	}
	mode, err := visibility.ParseBuildMode(resolveMode)
	if err != nil {
		return visibility.Facts{}, err
	}
	role, err := visibility.ParseRole(resolveRole)
	if err != nil {
		return visibility.Facts{}, err
	}
	return visibility.Facts{
		Platform:       platform,
		BuildMode:      mode,
		Role:           role,
		SuppressExport: resolveNoExport,
	}, nil
}

func tokenOrNone(a visibility.Annotation) string {
	if a.Empty() {
		return "(none)"
	}
	return string(a)
}

func init() {
	resolveCmd.Flags().StringVar(&resolvePlatform, "platform", visibility.HostPlatform().String(), "target platform: windows, posix-visibility or posix-plain")
	resolveCmd.Flags().StringVar(&resolveMode, "mode", "shared", "build mode: shared or static")
	resolveCmd.Flags().StringVar(&resolveRole, "role", "building", "module role: building or consuming")
	resolveCmd.Flags().BoolVar(&resolveNoExport, "no-export", false, "suppress the export annotation")
	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "output as JSON")
}
