package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"symvis/internal/visibility"
)

// platformsCmd lists the supported platforms and their decorations.
var platformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "List supported platforms and their decorations",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PLATFORM\tEXPORT\tIMPORT\tHIDDEN")

		for _, p := range []visibility.Platform{
			visibility.PlatformWindows,
			visibility.PlatformPOSIXVisibility,
			visibility.PlatformPOSIXPlain,
		} {
			res, err := visibility.Resolve(visibility.Facts{
				Platform:  p,
				BuildMode: visibility.BuildShared,
				Role:      visibility.RoleBuildingLibrary,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				p, tokenOrNone(res.Export), tokenOrNone(res.Import), tokenOrNone(res.Hidden))
		}

		return w.Flush()
	},
}
