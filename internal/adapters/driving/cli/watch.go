package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// watchFunc is provided by the wiring layer: it blocks, keeping the
// index fresh and the digest scheduler running, until cancelled.
var watchFunc func(context.Context) error

// SetWatchFunc wires the watch command to the background loop.
func SetWatchFunc(f func(context.Context) error) {
	watchFunc = f
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the notes directory and keep the index fresh",
	Long: `Runs in the foreground: reindexes notes as they change on disk and
produces the daily digest at its scheduled hour. Stop with Ctrl-C.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if watchFunc == nil {
		return errors.New("watch loop not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Println("Watching notes. Press Ctrl-C to stop.")
	err := watchFunc(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
