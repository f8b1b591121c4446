package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noteward/noteward/internal/core/domain"
)

var digestJSON bool

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Daily digest of note changes and open tasks",
}

var digestRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Produce today's digest now",
	RunE:  runDigestRun,
}

var digestShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the most recent digest",
	RunE:  runDigestShow,
}

func init() {
	digestShowCmd.Flags().BoolVar(&digestJSON, "json", false, "output as JSON")
	digestCmd.AddCommand(digestRunCmd, digestShowCmd)
	rootCmd.AddCommand(digestCmd)
}

func runDigestRun(cmd *cobra.Command, _ []string) error {
	if digestService == nil {
		return errors.New("digest service not configured")
	}

	digest, err := digestService.RunOnce(context.Background())
	if err != nil {
		return err
	}

	printDigest(cmd, digest)
	return nil
}

func runDigestShow(cmd *cobra.Command, _ []string) error {
	if digestService == nil {
		return errors.New("digest service not configured")
	}

	digest, err := digestService.Latest(context.Background())
	if errors.Is(err, domain.ErrNotFound) {
		cmd.Println("No digest yet. Run 'noteward digest run'.")
		return nil
	}
	if err != nil {
		return err
	}

	if digestJSON {
		return printJSON(cmd, digest)
	}
	printDigest(cmd, digest)
	return nil
}

func printDigest(cmd *cobra.Command, digest *domain.Digest) {
	cmd.Println(titleStyle.Render("Digest " + digest.Date.Format("2006-01-02")))
	cmd.Println()
	cmd.Println(wrap(digest.SummaryText, outputWidth()))
	if n := len(digest.PendingTaskIDs); n > 0 {
		cmd.Println()
		cmd.Println(mutedStyle.Render(fmt.Sprintf("Pending tasks: %d (noteward todo list)", n)))
	}
}
