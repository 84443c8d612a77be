package main

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

var toolsJSON bool

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Print the advertised tools and their input schemas",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, store, err := setup()
		if err != nil {
			return err
		}
		r, err := newRouter(store)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if toolsJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(r.Tools())
		}
		for _, spec := range r.ListTools() {
			fmt.Fprintf(out, "%s\n  %s\n", spec.Name, spec.Description)
			for _, p := range spec.Params {
				req := "optional"
				if p.Required {
					req = "required"
				}
				fmt.Fprintf(out, "    - %s (%s, %s)", p.Name, p.Type, req)
				if p.Default != nil {
					fmt.Fprintf(out, " default=%v", p.Default)
				}
				fmt.Fprintln(out)
			}
		}
		return nil
	},
}

func init() {
	toolsCmd.Flags().BoolVar(&toolsJSON, "json", false, "Print tools as in a tools/list response")
	rootCmd.AddCommand(toolsCmd)
}
