package domain

import "time"

// EmbeddingSettings configures the embedding capability.
type EmbeddingSettings struct {
	// BaseURL is the Ollama API base URL.
	BaseURL string

	// Model is the embedding model name.
	Model string

	// Dimensions is the embedding vector size. Model-dependent.
	Dimensions int

	// RequestsPerSecond throttles embedding calls during bulk indexing.
	// Zero disables throttling.
	RequestsPerSecond float64

	// Timeout is the per-request timeout.
	Timeout time.Duration
}

// LLMSettings configures the generation capability.
type LLMSettings struct {
	// BaseURL is the Ollama API base URL.
	BaseURL string

	// Model is the generation model name.
	Model string

	// Timeout is the per-request timeout.
	Timeout time.Duration
}

// RetrievalSettings configures the answer pipeline.
type RetrievalSettings struct {
	// TopK is the number of chunks assembled into the prompt.
	TopK int

	// CandidateK is the number of candidates fetched per chunk type
	// before merging and ranking.
	CandidateK int
}

// DigestSettings configures the daily digest scheduler.
type DigestSettings struct {
	// Enabled is the master switch for the scheduler.
	Enabled bool

	// Hour is the local hour of day (0-23) the digest fires.
	Hour int
}

// AppSettings aggregates all application configuration.
type AppSettings struct {
	// NotesDir is the root of the markdown corpus.
	NotesDir string

	// DataDir holds the SQLite database and other local state.
	DataDir string

	Embedding EmbeddingSettings
	LLM       LLMSettings
	Retrieval RetrievalSettings
	Digest    DigestSettings
}

// DefaultAppSettings returns sensible defaults for a local setup.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		NotesDir: "./notes",
		DataDir:  "",
		Embedding: EmbeddingSettings{
			BaseURL:           "http://localhost:11434",
			Model:             "nomic-embed-text",
			Dimensions:        768,
			RequestsPerSecond: 8,
			Timeout:           30 * time.Second,
		},
		LLM: LLMSettings{
			BaseURL: "http://localhost:11434",
			Model:   "llama3.2",
			Timeout: 120 * time.Second,
		},
		Retrieval: RetrievalSettings{
			TopK:       5,
			CandidateK: 20,
		},
		Digest: DigestSettings{
			Enabled: true,
			Hour:    9,
		},
	}
}
