// Package cli implements the noteward command-line interface.
//
// Commands are thin adapters over the driving ports; wiring happens in
// cmd/noteward before Execute is called.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/noteward/noteward/internal/core/ports/driving"
	"github.com/noteward/noteward/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Injected services. Set by SetServices before Execute.
var (
	queryService  driving.QueryService
	taskService   driving.TaskService
	indexService  driving.IndexOrchestrator
	digestService driving.DigestService
)

// Services bundles everything the CLI needs.
type Services struct {
	Query  driving.QueryService
	Tasks  driving.TaskService
	Index  driving.IndexOrchestrator
	Digest driving.DigestService
}

// SetServices wires the CLI to its backing services.
func SetServices(s Services) {
	queryService = s.Query
	taskService = s.Tasks
	indexService = s.Index
	digestService = s.Digest
}

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "noteward",
	Short: "Ask questions of your markdown notes and track their TODOs",
	Long: `Noteward indexes a directory of markdown notes for semantic search,
answers questions against them with cited sources, extracts TODO items
from note text, and writes a daily digest of changes and open tasks.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
