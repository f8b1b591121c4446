package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noteward/noteward/internal/core/domain"
)

var (
	queryTopK     int
	queryJSON     bool
	queryFolder   string
	queryDoc      string
	queryRetrieve bool
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask a question against your notes",
	Long: `Runs the retrieval pipeline over the indexed notes and answers the
question with cited sources. With --retrieve-only the generation step
is skipped and the raw ranked sources are printed instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of chunks assembled into the answer")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output as JSON")
	queryCmd.Flags().StringVar(&queryFolder, "folder", "", "restrict retrieval to a folder")
	queryCmd.Flags().StringVar(&queryDoc, "doc", "", "restrict retrieval to a single note")
	queryCmd.Flags().BoolVar(&queryRetrieve, "retrieve-only", false, "print ranked sources without generating an answer")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	opts := domain.QueryOptions{TopK: queryTopK}
	if queryFolder != "" || queryDoc != "" {
		opts.Filter = &domain.ChunkFilter{Folder: queryFolder, DocID: queryDoc}
	}

	ctx := context.Background()

	if queryRetrieve {
		sources, err := queryService.Retrieve(ctx, args[0], opts)
		if err != nil {
			return describeQueryError(err)
		}
		if queryJSON {
			return printJSON(cmd, sources)
		}
		printSources(cmd, sources)
		return nil
	}

	answer, err := queryService.Query(ctx, args[0], opts)
	if err != nil {
		return describeQueryError(err)
	}

	if queryJSON {
		return printJSON(cmd, answer)
	}

	cmd.Println(wrap(answer.Text, outputWidth()))
	if len(answer.Sources) > 0 {
		cmd.Println()
		cmd.Println(titleStyle.Render("Sources"))
		printSources(cmd, answer.Sources)
	}
	return nil
}

func printSources(cmd *cobra.Command, sources []domain.Source) {
	if len(sources) == 0 {
		cmd.Println("No relevant notes found.")
		return
	}
	for i, src := range sources {
		header := src.Header
		if header == "" {
			header = "(no heading)"
		}
		cmd.Printf("  [%d] %s %s %s\n", i+1, header,
			mutedStyle.Render(fmt.Sprintf("%s §%d", src.DocID, src.SectionID)),
			scoreStyle.Render(fmt.Sprintf("%.2f", src.Score)))
	}
}

func describeQueryError(err error) error {
	switch {
	case errors.Is(err, domain.ErrIndexNotReady):
		return errors.New("index not built yet, run 'noteward index rebuild' first")
	case errors.Is(err, domain.ErrEmbeddingUnavailable):
		return fmt.Errorf("embedding service unreachable: %w", err)
	case errors.Is(err, domain.ErrGenerationUnavailable):
		return fmt.Errorf("generation service unreachable: %w", err)
	default:
		return err
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
