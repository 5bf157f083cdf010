package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"searchable-gallery/internal/startup"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print build information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipDatabase": "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := resolveFormat(a.output, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			info := startup.GetBuildInfo()
			return render(cmd.OutOrStdout(), format, info, func(w *tabwriter.Writer) {
				fmt.Fprintf(w, "Version:\t%s\n", info.Version)
				fmt.Fprintf(w, "Commit:\t%s\n", info.Commit)
				fmt.Fprintf(w, "Built:\t%s\n", info.BuildTime)
				fmt.Fprintf(w, "Go:\t%s %s/%s\n", info.GoVersion, info.OS, info.Arch)
			})
		},
	}
}
