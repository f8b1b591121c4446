package domain

import (
	"fmt"
	"time"
)

// Document represents a markdown note loaded from the corpus.
// The ID is the note's path relative to the notes root and is stable
// across reads.
type Document struct {
	// ID is the note path relative to the notes root (e.g. "work/plan.md").
	ID string

	// Folder is the first path component of ID, or "" for root-level notes.
	Folder string

	// Content is the raw markdown text.
	Content string

	// Modified is the last-modified timestamp reported by the note source.
	Modified time.Time
}

// NoteInfo describes a note without its content, as returned by listing.
type NoteInfo struct {
	// Path is the note path relative to the notes root.
	Path string

	// Folder is the first path component of Path, or "" for root-level notes.
	Folder string

	// Size is the note size in bytes.
	Size int64

	// Modified is the last-modified timestamp.
	Modified time.Time
}

// ChunkType distinguishes heading chunks from body chunks.
type ChunkType string

const (
	// ChunkTypeHeader represents the heading line itself.
	ChunkTypeHeader ChunkType = "header"

	// ChunkTypeContent represents the body text under a heading.
	ChunkTypeContent ChunkType = "content"
)

// Chunk is the addressable retrieval unit produced by the segmenter.
// (DocID, SectionID, Type) is a stable identity usable as a citation
// anchor for as long as the note's heading structure is unchanged.
type Chunk struct {
	// DocID is the owning note's path.
	DocID string

	// SectionID is the monotonic section index within the note,
	// contiguous and starting at 0.
	SectionID int

	// Header is the nearest enclosing heading text. Empty for the
	// un-headed preamble section.
	Header string

	// Level is the heading depth (1-6), or 0 for the preamble.
	Level int

	// Type marks the chunk as a heading line or body text.
	Type ChunkType

	// Text is the heading text for header chunks and the body text
	// for content chunks.
	Text string
}

// ID returns the stable chunk identity used by the index and citations.
func (c Chunk) ID() string {
	return fmt.Sprintf("%s#%d#%s", c.DocID, c.SectionID, c.Type)
}

// Meta returns the chunk's index metadata. Folder must be supplied by
// the caller because chunks do not carry corpus layout information.
func (c Chunk) Meta(folder string) ChunkMeta {
	return ChunkMeta{
		DocID:     c.DocID,
		Folder:    folder,
		Header:    c.Header,
		Level:     c.Level,
		SectionID: c.SectionID,
		Type:      c.Type,
	}
}

// ChunkMeta mirrors a chunk's structural attributes inside the index.
type ChunkMeta struct {
	DocID     string
	Folder    string
	Header    string
	Level     int
	SectionID int
	Type      ChunkType
}

// TaskMarker is a side annotation recorded by the segmenter when a
// task line is seen. Markers never alter chunk boundaries.
type TaskMarker struct {
	// SectionID is the enclosing section's index.
	SectionID int

	// Header is the enclosing section's heading text.
	Header string

	// Line is the raw marker line, marker syntax included.
	Line string
}

// ChunkFilter is an optional metadata predicate applied during search.
// Zero-valued fields match everything.
type ChunkFilter struct {
	// DocID restricts to a single note.
	DocID string

	// Folder restricts to notes under a top-level folder.
	Folder string

	// Types restricts to the given chunk types. Empty means both.
	Types []ChunkType

	// MinLevel and MaxLevel bound the heading depth. Zero means unbounded.
	MinLevel int
	MaxLevel int
}

// IsZero reports whether the filter matches everything.
func (f ChunkFilter) IsZero() bool {
	return f.DocID == "" && f.Folder == "" && len(f.Types) == 0 &&
		f.MinLevel == 0 && f.MaxLevel == 0
}

// Matches reports whether the given metadata passes the filter.
func (f ChunkFilter) Matches(m ChunkMeta) bool {
	if f.DocID != "" && f.DocID != m.DocID {
		return false
	}
	if f.Folder != "" && f.Folder != m.Folder {
		return false
	}
	if f.MinLevel > 0 && m.Level < f.MinLevel {
		return false
	}
	if f.MaxLevel > 0 && m.Level > f.MaxLevel {
		return false
	}
	if len(f.Types) > 0 {
		ok := false
		for _, t := range f.Types {
			if t == m.Type {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}
