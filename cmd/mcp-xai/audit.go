package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/golovatskygroup/mcp-xai/internal/audit"
)

var auditLimit int

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show recent tool invocations from the audit log",
	Long: `Show recent tool invocations recorded in the audit database.

The database is set with audit_db in the config file or MCP_XAI_AUDIT_DB.

Examples:
  mcp-xai audit          # last 20 calls
  mcp-xai audit -n 100   # last 100 calls`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, _, err := setup()
		if err != nil {
			return err
		}
		if cfg.AuditDB == "" {
			return fmt.Errorf("audit log is not configured (set audit_db or MCP_XAI_AUDIT_DB)")
		}

		l, err := audit.Open(cfg.AuditDB)
		if err != nil {
			return err
		}
		defer l.Close()

		invs, err := l.Recent(cmd.Context(), auditLimit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tTOOL\tSTATUS\tDURATION\tID")
		for _, inv := range invs {
			status := "ok"
			if !inv.OK {
				status = inv.ErrorCode
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", inv.At.Local().Format(time.DateTime), inv.Tool, status, inv.Duration, inv.ID)
		}
		return w.Flush()
	},
}

func init() {
	auditCmd.Flags().IntVarP(&auditLimit, "lines", "n", 20, "Number of invocations to show")
	rootCmd.AddCommand(auditCmd)
}
