// Command noteward is a local retrieval and task engine for a
// directory of markdown notes.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	configfile "github.com/noteward/noteward/internal/adapters/driven/config/file"
	ollamaembed "github.com/noteward/noteward/internal/adapters/driven/embedding/ollama"
	"github.com/noteward/noteward/internal/adapters/driven/index"
	ollamallm "github.com/noteward/noteward/internal/adapters/driven/llm/ollama"
	notesfs "github.com/noteward/noteward/internal/adapters/driven/notes/filesystem"
	"github.com/noteward/noteward/internal/adapters/driven/storage/sqlite"
	"github.com/noteward/noteward/internal/adapters/driving/cli"
	"github.com/noteward/noteward/internal/core/services"
	"github.com/noteward/noteward/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configStore, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}

	settings, err := services.NewSettingsService(configStore).Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	store, err := sqlite.NewStore(settings.DataDir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	embedder := ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:           settings.Embedding.BaseURL,
		Model:             settings.Embedding.Model,
		Timeout:           settings.Embedding.Timeout,
		Dimensions:        settings.Embedding.Dimensions,
		RequestsPerSecond: settings.Embedding.RequestsPerSecond,
	})
	defer embedder.Close()

	llm := ollamallm.NewLLMService(ollamallm.LLMConfig{
		BaseURL: settings.LLM.BaseURL,
		Model:   settings.LLM.Model,
		Timeout: settings.LLM.Timeout,
	})
	defer llm.Close()

	notes := notesfs.New(settings.NotesDir)
	watcher := notesfs.NewWatcher(settings.NotesDir)
	defer watcher.Close()

	idx := index.New(embedder, store.IndexStore())
	defer idx.Close()
	if err := idx.LoadPersisted(context.Background()); err != nil {
		logger.Warn("Could not load persisted index: %v", err)
	}

	indexer := services.NewIndexer(notes, idx)
	if idx.Len() > 0 {
		indexer.MarkReady()
	}

	taskSvc := services.NewTaskService(notes, store.TaskStore())
	querySvc := services.NewQueryService(idx, embedder, llm, notes, settings.Retrieval)
	digestSvc := services.NewDigestService(taskSvc, notes, llm, store.DigestStore(), settings.Digest)

	cli.SetServices(cli.Services{
		Query:  querySvc,
		Tasks:  taskSvc,
		Index:  indexer,
		Digest: digestSvc,
	})

	cli.SetWatchFunc(func(ctx context.Context) error {
		go func() {
			if err := digestSvc.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("Digest scheduler stopped: %v", err)
			}
		}()
		defer digestSvc.Stop()

		return indexer.Serve(ctx, watcher)
	})

	return cli.Execute()
}
