// Package cli provides the command-line interface for compass.
package cli

import (
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

// AddVersionCommand adds the version command to the root command.
func AddVersionCommand(root *cobra.Command, info BuildInfo) {
	root.AddCommand(newVersionCmd(info))
}

func newVersionCmd(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := NewOutput(os.Stdout, cmd.Flag("output").Value.String())

			if out.IsJSON() {
				return out.JSON(map[string]string{
					"version": formatVersion(info),
					"go":      runtime.Version(),
					"os":      runtime.GOOS,
					"arch":    runtime.GOARCH,
				})
			}

			out.Linef("compass %s", formatVersion(info))
			out.Linef("%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH)
			return nil
		},
	}
}
