package domain

// QueryOptions configures a retrieval query.
type QueryOptions struct {
	// TopK is the number of chunks assembled into the prompt.
	// Defaults to 5 when zero.
	TopK int

	// Context is optional lightweight context folded into the query
	// rewrite, e.g. the text of a task the caller has selected.
	Context string

	// Filter overrides the filter the pipeline would otherwise derive
	// from query cues.
	Filter *ChunkFilter
}

// Source is a citation attached to an answer. It carries enough
// information for a caller to re-locate and highlight the originating
// span in the note.
type Source struct {
	Header    string    `json:"header"`
	Content   string    `json:"content"`
	DocID     string    `json:"doc_id"`
	SectionID int       `json:"section_id"`
	Level     int       `json:"level"`
	Type      ChunkType `json:"type"`
	Score     float64   `json:"score"`
}

// Answer is the result of the retrieval and answer pipeline.
// An empty Sources slice means no relevant content was found, which is
// not an error.
type Answer struct {
	Text    string   `json:"answer"`
	Sources []Source `json:"sources"`
}
