package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/golovatskygroup/mcp-xai/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog [category]",
	Short: "List catalog entries",
	Long: `List catalog entries, optionally for one category.

Examples:
  mcp-xai catalog            # every entry
  mcp-xai catalog metric     # metrics only`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"dataset", "model", "explainer", "metric", "all"},
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, err := setup()
		if err != nil {
			return err
		}

		category := catalog.All
		if len(args) == 1 {
			category = catalog.Category(args[0])
		}
		entries, err := store.ListByCategory(category)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "URI\tNAME\tTAGS")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%v\n", catalog.URI(e.Category, e.ID), e.Name, e.Tags)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}
