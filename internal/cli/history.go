package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/praveenchandhar/liquibase-jenkins-based-deployment/internal/ledger"
)

var (
	historyLedger string
	historyLimit  int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded changelog generations",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyLedger, "ledger", "", "Ledger DSN (default from config)")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "Maximum records to show (default from config)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	dsn := historyLedger
	if dsn == "" {
		dsn = cfg.LedgerDSN
	}
	if dsn == "" {
		return fmt.Errorf("no ledger configured: pass --ledger or set ledger_dsn")
	}
	limit := historyLimit
	if limit <= 0 {
		limit = cfg.HistoryLimit
	}

	ctx := cmd.Context()
	store, err := openLedger(ctx, dsn)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List(ctx, limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch outputFormat {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		return enc.Encode(records)
	case "text", "table":
		writeHistoryTable(out, records)
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s", outputFormat)
	}
}

func writeHistoryTable(w io.Writer, records []ledger.Record) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Generated", "Script", "Version", "Context", "ChangeSets", "Failures", "Checksum"})
	for _, r := range records {
		table.Append([]string{
			fmt.Sprintf("%d", r.ID),
			r.GeneratedAt.Local().Format("2006-01-02 15:04:05"),
			r.ScriptPath,
			r.Version,
			r.Context,
			fmt.Sprintf("%d", r.ChangeSets),
			fmt.Sprintf("%d", r.Failures),
			r.Checksum[:min(12, len(r.Checksum))],
		})
	}
	table.Render()
}
