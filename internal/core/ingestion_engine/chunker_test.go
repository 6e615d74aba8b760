package ingestionengine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkTextShortDocumentSingleChunk(t *testing.T) {
	text := "Acme Corp is a precision engineering company based in Bremen. It operates three facilities and serves the aerospace industry."

	chunks := ChunkText(text, 5000, 200)
	require.Len(t, chunks, 1)
	assert.Equal(t, strings.TrimSpace(text), chunks[0])
}

func TestChunkTextEmpty(t *testing.T) {
	assert.Nil(t, ChunkText("", 5000, 200))
}

func TestChunkTextDeterministic(t *testing.T) {
	text := strings.Repeat("Organizations publish brochures. ", 400)

	a := ChunkText(text, 1000, 100)
	b := ChunkText(text, 1000, 100)
	require.Equal(t, a, b)
	require.Greater(t, len(a), 1)
}

func TestChunkTextBounds(t *testing.T) {
	text := strings.Repeat("The facility houses a wind tunnel and a climate chamber.\n", 300)

	size, overlap := 1200, 100
	chunks := ChunkText(text, size, overlap)
	require.NotEmpty(t, chunks)
	for i, c := range chunks {
		assert.LessOrEqualf(t, len(c), size, "chunk %d exceeds max size", i)
		assert.NotEmpty(t, c)
	}
}

func TestChunkTextReachesEnd(t *testing.T) {
	text := strings.Repeat("alpha beta gamma delta. ", 600)
	chunks := ChunkText(text, 1500, 150)
	require.NotEmpty(t, chunks)

	tail := strings.TrimSpace(text)
	last := chunks[len(chunks)-1]
	assert.True(t, strings.HasSuffix(tail, last), "last chunk must carry the end of the text")
}

func TestChunkTextPrefersNewlineBreak(t *testing.T) {
	// One newline sits 2500 bytes in; a window of 2600 should cut just after it.
	text := strings.Repeat("a", 2500) + "\n" + strings.Repeat("b", 2000)
	chunks := ChunkText(text, 2600, 0)
	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, strings.Repeat("a", 2500), chunks[0])
}

func TestChunkParamsDefaults(t *testing.T) {
	size, overlap := ChunkParams(10000, 0, 0)
	assert.Equal(t, DefaultChunkSize, size)
	assert.Equal(t, DefaultOverlap, overlap)
}

func TestChunkParamsShortDocumentScalesDown(t *testing.T) {
	size, overlap := ChunkParams(3000, 0, 0)
	assert.Equal(t, 1000, size)
	assert.Equal(t, 100, overlap)

	size, overlap = ChunkParams(600, 0, 0)
	assert.Equal(t, 500, size)
	assert.Equal(t, 50, overlap)
}

func TestChunkParamsOverrideFloor(t *testing.T) {
	size, overlap := ChunkParams(10000, 100, 10)
	assert.Equal(t, 200, size)
	assert.Equal(t, 10, overlap)

	size, _ = ChunkParams(10000, 2500, 0)
	assert.Equal(t, 2500, size)
}
