package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/designs2/attribute-tags/version"
)

// VersionCmd represents the version command
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.Get()
		return render(info, pterm.TableData{
			{"Version", "Commit", "Built", "Go", "Platform"},
			{info.Version, info.Short(), info.BuildTime, info.GoVersion, info.Platform},
		})
	},
}
