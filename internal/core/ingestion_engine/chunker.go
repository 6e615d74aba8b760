package ingestionengine

import "strings"

const (
	// DefaultChunkSize and DefaultOverlap apply to long documents.
	DefaultChunkSize = 5000
	DefaultOverlap   = 200

	// Documents at or under shortDocThreshold get proportionally smaller
	// chunks so they still produce a few of them.
	shortDocThreshold = 3000
	minChunkSize      = 500

	// How far back from the window end a break point may sit before it is
	// rejected as too aggressive.
	maxBreakDistance = 1000
	// A break point this close to the window start would produce a sliver.
	minBreakOffset = 1000
)

// ChunkParams resolves the effective chunk size and overlap for a document.
// Explicit overrides win (size floored at 200); otherwise short documents
// scale down from the defaults.
func ChunkParams(textLen, sizeOverride, overlapOverride int) (size, overlap int) {
	if sizeOverride > 0 {
		size = sizeOverride
		if size < 200 {
			size = 200
		}
		overlap = overlapOverride
		if overlap < 0 {
			overlap = 0
		}
		if overlap >= size {
			overlap = size / 10
		}
		return size, overlap
	}

	if textLen <= shortDocThreshold {
		size = textLen / 3
		if size < minChunkSize {
			size = minChunkSize
		}
		overlap = size / 10
		if overlap > 100 {
			overlap = 100
		}
		return size, overlap
	}
	return DefaultChunkSize, DefaultOverlap
}

// ChunkText splits text into overlapping windows of at most size bytes,
// preferring to break at a newline near the window end, then at a sentence
// boundary. Chunks are trimmed and empty ones dropped. The walk always
// reaches the end of the text.
func ChunkText(text string, size, overlap int) []string {
	if text == "" {
		return nil
	}
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 10
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + size
		if end > len(text) {
			end = len(text)
		}

		if end < len(text) {
			window := text[start:end]
			bp := strings.LastIndex(window, "\n")
			if bp == -1 || end-(start+bp) > maxBreakDistance {
				if bp2 := strings.LastIndex(window, ". "); bp2 != -1 && end-(start+bp2) < maxBreakDistance {
					bp = bp2
				}
			}
			if bp != -1 && bp > minBreakOffset {
				end = start + bp + 1
			}
		}

		chunk := strings.TrimSpace(text[start:end])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end >= len(text) {
			break
		}
		next := end - overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}
	return chunks
}
