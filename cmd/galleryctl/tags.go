package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newTagsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List all tags",
		Long: `List every tag in the catalog, sorted by name.

Example:
  galleryctl tags
  galleryctl tags -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := resolveFormat(a.output, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), defaultTimeout)
			defer cancel()

			tags, err := a.catalog.ListTags(ctx)
			if err != nil {
				return fmt.Errorf("list tags: %w", err)
			}

			return render(cmd.OutOrStdout(), format, tags, func(w *tabwriter.Writer) {
				fmt.Fprintln(w, "ID\tNAME\tCREATED")
				for _, t := range tags {
					fmt.Fprintf(w, "%d\t%s\t%s\n", t.ID, t.Name, t.CreatedAt.Format("2006-01-02 15:04"))
				}
				fmt.Fprintf(w, "Total: %d tag(s)\n", len(tags))
			})
		},
	}
}
