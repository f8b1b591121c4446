package segment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noteward/noteward/internal/core/domain"
)

func TestSegment_HeadersAndContent(t *testing.T) {
	text := "# A\nline1\n## B\n- [ ] call Bob tomorrow !high\nline2\n"

	chunks, markers := Segment("notes/a.md", text)

	require.Len(t, chunks, 4)

	assert.Equal(t, domain.ChunkTypeHeader, chunks[0].Type)
	assert.Equal(t, "A", chunks[0].Text)
	assert.Equal(t, 0, chunks[0].SectionID)
	assert.Equal(t, 1, chunks[0].Level)

	assert.Equal(t, domain.ChunkTypeContent, chunks[1].Type)
	assert.Equal(t, "line1", chunks[1].Text)
	assert.Equal(t, 0, chunks[1].SectionID)
	assert.Equal(t, "A", chunks[1].Header)

	assert.Equal(t, domain.ChunkTypeHeader, chunks[2].Type)
	assert.Equal(t, "B", chunks[2].Text)
	assert.Equal(t, 1, chunks[2].SectionID)
	assert.Equal(t, 2, chunks[2].Level)

	assert.Equal(t, domain.ChunkTypeContent, chunks[3].Type)
	assert.Equal(t, "- [ ] call Bob tomorrow !high\nline2", chunks[3].Text)
	assert.Equal(t, 1, chunks[3].SectionID)

	require.Len(t, markers, 1)
	assert.Equal(t, 1, markers[0].SectionID)
	assert.Equal(t, "B", markers[0].Header)
	assert.Equal(t, "- [ ] call Bob tomorrow !high", markers[0].Line)
}

func TestSegment_SectionIDsContiguous(t *testing.T) {
	text := "intro\n# One\n## Two\nbody\n### Three\n# Four\n"

	chunks, _ := Segment("doc.md", text)

	var seen []int
	for _, c := range chunks {
		if len(seen) == 0 || seen[len(seen)-1] != c.SectionID {
			seen = append(seen, c.SectionID)
		}
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4}, seen)
}

func TestSegment_Preamble(t *testing.T) {
	text := "some intro text\nmore intro\n# First\nbody\n"

	chunks, _ := Segment("doc.md", text)

	require.NotEmpty(t, chunks)
	assert.Equal(t, domain.ChunkTypeContent, chunks[0].Type)
	assert.Equal(t, 0, chunks[0].SectionID)
	assert.Equal(t, 0, chunks[0].Level)
	assert.Equal(t, "", chunks[0].Header)
	assert.Equal(t, "some intro text\nmore intro", chunks[0].Text)

	assert.Equal(t, 1, chunks[1].SectionID) // first heading opens section 1
}

func TestSegment_NoHeadings(t *testing.T) {
	chunks, _ := Segment("doc.md", "just a plain note\nwith two lines")

	require.Len(t, chunks, 1)
	assert.Equal(t, domain.ChunkTypeContent, chunks[0].Type)
	assert.Equal(t, 0, chunks[0].SectionID)
	assert.Equal(t, 0, chunks[0].Level)
}

func TestSegment_Empty(t *testing.T) {
	chunks, markers := Segment("doc.md", "   \n\n  ")
	assert.Nil(t, chunks)
	assert.Nil(t, markers)
}

func TestSegment_CodeFenceSuppressesHeadings(t *testing.T) {
	text := "# Real\n```\n# not a heading\n- [ ] not a task\n```\nafter\n"

	chunks, markers := Segment("doc.md", text)

	require.Len(t, chunks, 2)
	assert.Equal(t, domain.ChunkTypeHeader, chunks[0].Type)
	assert.Equal(t, "Real", chunks[0].Text)
	assert.Contains(t, chunks[1].Text, "# not a heading")
	assert.Contains(t, chunks[1].Text, "after")

	assert.Empty(t, markers)
}

func TestSegment_UnclosedFence(t *testing.T) {
	text := "# Top\n```\n# swallowed\n"

	chunks, _ := Segment("doc.md", text)

	require.Len(t, chunks, 2)
	assert.Equal(t, domain.ChunkTypeHeader, chunks[0].Type)
	assert.Contains(t, chunks[1].Text, "# swallowed")
}

func TestSegment_TildeFence(t *testing.T) {
	text := "~~~\n# hidden\n~~~\n# Visible\n"

	chunks, _ := Segment("doc.md", text)

	var headers []string
	for _, c := range chunks {
		if c.Type == domain.ChunkTypeHeader {
			headers = append(headers, c.Text)
		}
	}
	assert.Equal(t, []string{"Visible"}, headers)
}

func TestSegment_MismatchedFenceMarkers(t *testing.T) {
	// A ``` fence is only closed by ```, not by ~~~.
	text := "```\n~~~\n# still fenced\n```\n# Out\n"

	chunks, _ := Segment("doc.md", text)

	var headers []string
	for _, c := range chunks {
		if c.Type == domain.ChunkTypeHeader {
			headers = append(headers, c.Text)
		}
	}
	assert.Equal(t, []string{"Out"}, headers)
}

func TestSegment_TaskMarkers(t *testing.T) {
	text := strings.Join([]string{
		"# Work",
		"- [ ] unchecked item",
		"- [x] checked item",
		"* [X] star box",
		"TODO: keyword form",
		"FIXME broken thing",
		"- [ ]", // no content after the box
		"plain line",
	}, "\n")

	_, markers := Segment("doc.md", text)

	require.Len(t, markers, 5)
	for _, m := range markers {
		assert.Equal(t, 0, m.SectionID)
		assert.Equal(t, "Work", m.Header)
	}
}

func TestSegment_ConcatenationCoversInput(t *testing.T) {
	text := "# A\nline1\n\nline2\n## B\nbody\n"

	chunks, _ := Segment("doc.md", text)

	// Every non-blank input line appears in exactly one chunk.
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		found := false
		for _, c := range chunks {
			if strings.Contains(c.Text, strings.TrimSpace(line)) {
				found = true
				break
			}
		}
		assert.True(t, found, "line %q missing from chunks", line)
	}
}

func TestSegment_HeaderOnlySection(t *testing.T) {
	text := "# Empty\n# Next\nbody\n"

	chunks, _ := Segment("doc.md", text)

	require.Len(t, chunks, 3)
	assert.Equal(t, domain.ChunkTypeHeader, chunks[0].Type)
	assert.Equal(t, domain.ChunkTypeHeader, chunks[1].Type)
	assert.Equal(t, domain.ChunkTypeContent, chunks[2].Type)
	assert.Equal(t, 1, chunks[2].SectionID)
}
