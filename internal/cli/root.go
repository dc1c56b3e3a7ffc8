// internal/cli/root.go
// Command tree: the bare command starts the TUI; query/insert/update are
// one-shot scripted operations for pipelines and quick checks.
package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hvmai/mongolens/internal/config"
	"github.com/hvmai/mongolens/internal/history"
	"github.com/hvmai/mongolens/internal/storage"
	"github.com/hvmai/mongolens/internal/ui"
)

var (
	flagConn  string
	flagDebug bool
)

var rootCmd = &cobra.Command{
	Use:   "mongolens",
	Short: "Terminal client for browsing and mutating MongoDB databases",
	Long: `mongolens is an interactive terminal client for MongoDB:
navigate connections, databases, collections and documents; run ad-hoc
or saved queries and aggregations; edit documents through your editor.

Run without arguments to start the interactive session. The query,
insert and update subcommands are scripted one-shot alternatives.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

// Execute runs the command tree.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", config.Redact(err.Error()))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConn, "conn", "", "connection name (default: configured default)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "write debug log to mongolens-debug.log")
	rootCmd.AddCommand(queryCmd, insertCmd, updateCmd, historyCmd)
}

func newLogger() (*zap.Logger, error) {
	if !flagDebug {
		return zap.NewNop(), nil
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"mongolens-debug.log"}
	cfg.ErrorOutputPaths = []string{"mongolens-debug.log"}
	return cfg.Build()
}

func runTUI() error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	paths, err := config.DefaultPaths()
	if err != nil {
		return err
	}
	snap, err := storage.Load(paths)
	if err != nil {
		return err
	}

	store, err := history.NewStore()
	if err != nil {
		// The session works without history; log and move on.
		log.Warn("history store unavailable", zap.Error(err))
		store = nil
	} else {
		defer store.Close()
	}

	model := ui.NewModel(snap, paths, store, log)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
