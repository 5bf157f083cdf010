package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"searchable-gallery/internal/catalog"
)

func newItemsCmd(a *app) *cobra.Command {
	var (
		tags []string
		join string
	)

	cmd := &cobra.Command{
		Use:   "items",
		Short: "List items, optionally filtered by tags",
		Long: `List items newest first. Each --tag adds a tag to the filter; --join and
requires every tag, --join or (the default) requires any of them. Without
--tag every item is listed.

Example:
  galleryctl items
  galleryctl items --tag nature --tag landscape --join and
  galleryctl items --tag holiday -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := resolveFormat(a.output, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			var req *catalog.ListItemsRequest
			if len(tags) > 0 || cmd.Flags().Changed("join") {
				req = &catalog.ListItemsRequest{TagNames: tags, JoinType: join}
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), defaultTimeout)
			defer cancel()

			items, err := a.catalog.ListItems(ctx, req)
			if err != nil {
				return fmt.Errorf("list items: %w", err)
			}

			pathWidth := 60
			if width := terminalWidth(cmd.OutOrStdout()); width > 0 {
				// id, created and tags columns take roughly 70 columns.
				pathWidth = max(20, width-70)
			}

			return render(cmd.OutOrStdout(), format, items, func(w *tabwriter.Writer) {
				fmt.Fprintln(w, "ID\tCREATED\tPATH\tTAGS")
				for _, it := range items {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
						it.ID,
						it.CreatedAt.Format("2006-01-02 15:04"),
						truncate(it.FullPath, pathWidth),
						strings.Join(it.Tags, ","),
					)
				}
				fmt.Fprintf(w, "Total: %d item(s)\n", len(items))
			})
		},
	}

	cmd.Flags().StringArrayVarP(&tags, "tag", "t", nil, "tag to filter by (repeatable)")
	cmd.Flags().StringVarP(&join, "join", "j", "or", "how tags combine: and or or")
	return cmd
}
