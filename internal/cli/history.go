// internal/cli/history.go
package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hvmai/mongolens/internal/config"
	"github.com/hvmai/mongolens/internal/history"
)

var flagHistoryLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recently executed queries and aggregations",
	Long: `List the execution history of the selected connection, newest first.
Entries are recorded whenever a saved or inline query or aggregation
runs, whether it succeeded or not.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := config.DefaultPaths()
		if err != nil {
			return err
		}
		cfg, err := config.Load(paths)
		if err != nil {
			return err
		}
		entry, err := cfg.GetConnection(flagConn)
		if err != nil {
			return err
		}

		store, err := history.NewStore()
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.List(entry.Name, flagHistoryLimit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Printf("no history for connection %q\n", entry.Name)
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "WHEN\tKIND\tTARGET\tSTATUS\tDOCS\tSPEC")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
				e.ExecutedAt.Local().Format("2006-01-02 15:04"),
				e.Kind, e.Target, e.Status, e.DocCount,
				config.Redact(truncateSpec(e.Spec)))
		}
		return w.Flush()
	},
}

func init() {
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 20, "maximum number of entries to list")
}

func truncateSpec(s string) string {
	const max = 60
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
