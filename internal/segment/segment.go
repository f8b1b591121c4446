// Package segment turns raw markdown into ordered, addressable chunks.
//
// A note is split at heading lines. Each heading yields a header chunk
// (the heading text itself) and, when body text follows, a content
// chunk holding everything up to the next heading. Text before the
// first heading becomes a level-0 preamble section. Task marker lines
// are detected during the same scan and reported as side annotations;
// they never alter chunk boundaries.
package segment

import (
	"regexp"
	"strings"

	"github.com/noteward/noteward/internal/core/domain"
)

var (
	headingRe = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)

	// Checklist boxes and bare TODO/FIXME lines count as task markers.
	checkboxRe = regexp.MustCompile(`^\s*[-*]\s+\[[ xX]\]\s+\S`)
	keywordRe  = regexp.MustCompile(`^\s*(?:TODO|FIXME)\s*:?\s+\S`)
)

// Segment splits a note into ordered chunks and collects task markers.
//
// Section ids are contiguous and start at 0 per document. Heading
// detection is suppressed inside code fences; a fence left open at end
// of input is treated as closed. Malformed input never aborts the
// scan. A note without headings produces a single level-0 content
// chunk.
func Segment(docID, text string) ([]domain.Chunk, []domain.TaskMarker) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	var (
		chunks  []domain.Chunk
		markers []domain.TaskMarker

		section   = -1 // current section id; -1 until the first chunk opens
		header    string
		level     int
		buf       []string
		inFence   bool
		fenceMark string
	)

	flush := func() {
		body := strings.TrimRight(strings.Join(buf, "\n"), "\n")
		buf = buf[:0]
		if strings.TrimSpace(body) == "" {
			return
		}
		chunks = append(chunks, domain.Chunk{
			DocID:     docID,
			SectionID: section,
			Header:    header,
			Level:     level,
			Type:      domain.ChunkTypeContent,
			Text:      body,
		})
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)

		// Fence tracking: the closing fence must use the same marker
		// character as the opener. Anything inside is plain content.
		if marker := fenceMarker(trimmed); marker != "" {
			if !inFence {
				inFence, fenceMark = true, marker
			} else if strings.HasPrefix(trimmed, fenceMark) {
				inFence, fenceMark = false, ""
			}
			if section < 0 {
				section = 0
			}
			buf = append(buf, line)
			continue
		}

		if m := headingRe.FindStringSubmatch(line); m != nil && !inFence {
			flush()
			section++
			level = len(m[1])
			header = strings.TrimSpace(m[2])
			chunks = append(chunks, domain.Chunk{
				DocID:     docID,
				SectionID: section,
				Header:    header,
				Level:     level,
				Type:      domain.ChunkTypeHeader,
				Text:      header,
			})
			continue
		}

		if section < 0 {
			section = 0
		}
		buf = append(buf, line)

		if !inFence && (checkboxRe.MatchString(line) || keywordRe.MatchString(line)) {
			markers = append(markers, domain.TaskMarker{
				SectionID: section,
				Header:    header,
				Line:      line,
			})
		}
	}
	flush()

	return chunks, markers
}

// fenceMarker returns the fence marker ("```" or "~~~") opening or
// closing a code fence on this line, or "" when the line is not a fence.
func fenceMarker(trimmed string) string {
	if strings.HasPrefix(trimmed, "```") {
		return "```"
	}
	if strings.HasPrefix(trimmed, "~~~") {
		return "~~~"
	}
	return ""
}
