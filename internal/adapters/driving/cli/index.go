package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/noteward/noteward/internal/core/domain"
)

var analyzeJSON bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the vector index",
}

var indexRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Re-embed every note into a fresh index",
	RunE:  runIndexRebuild,
}

var indexStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index readiness and size",
	RunE:  runIndexStatus,
}

var indexAnalyzeCmd = &cobra.Command{
	Use:   "analyze [note]",
	Short: "Show how a note is segmented into chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndexAnalyze,
}

func init() {
	indexAnalyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "output as JSON")
	indexCmd.AddCommand(indexRebuildCmd, indexStatusCmd, indexAnalyzeCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexRebuild(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	if err := indexService.RebuildAll(context.Background()); err != nil {
		return err
	}

	status, err := indexService.Status(context.Background())
	if err != nil {
		return err
	}
	cmd.Printf("Index rebuilt: %d entries\n", status.Entries)
	return nil
}

func runIndexStatus(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	status, err := indexService.Status(context.Background())
	if err != nil {
		return err
	}

	state := "ready"
	switch {
	case status.Rebuilding:
		state = "rebuilding"
	case !status.Ready:
		state = "not built"
	}
	cmd.Printf("Index: %s, %d entries\n", state, status.Entries)
	return nil
}

func runIndexAnalyze(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	chunks, err := indexService.Analyze(context.Background(), args[0])
	if err != nil {
		return err
	}

	if analyzeJSON {
		return printJSON(cmd, chunks)
	}

	for _, c := range chunks {
		if c.Type == domain.ChunkTypeHeader {
			cmd.Printf("§%d %s %s\n", c.SectionID,
				titleStyle.Render(c.Header),
				mutedStyle.Render(levelMark(c.Level)))
			continue
		}
		cmd.Printf("§%d %s\n", c.SectionID, mutedStyle.Render("content:"))
		cmd.Println(indent(c.Text, "    "))
	}
	return nil
}

func levelMark(level int) string {
	if level == 0 {
		return "(preamble)"
	}
	marks := ""
	for i := 0; i < level; i++ {
		marks += "#"
	}
	return marks
}
