package ingestionengine

import (
	"sync"

	"github.com/orgsearch-io/orgsearch/internal/config"
	"github.com/orgsearch-io/orgsearch/internal/core"
	"github.com/orgsearch-io/orgsearch/internal/core/extract"
)

// DefaultBatchUploadSize bounds how many chunk documents go to the index in
// one upsert call.
const DefaultBatchUploadSize = 64

// IngestOptions are the per-job knobs a caller may override. Zero values
// mean "use the configured default".
type IngestOptions struct {
	IndexName       string
	EmbedModel      string
	EmbedDim        int
	SkipProfile     bool
	ExtractMethod   string
	Fallback        bool
	BatchUploadSize int
	ChunkSize       int
	ChunkOverlap    int
}

// DocumentIngestor owns the ingestion pipeline: it accepts jobs, runs them on
// a bounded worker pool and records progress through the JobStore. The job
// record has a single writer (the worker running the job); pollers only read.
type DocumentIngestor struct {
	obj      core.ObjectClient
	index    core.SearchIndex
	embedder core.EmbeddingProvider
	llm      core.LLMProvider
	selector *extract.Selector
	jobs     core.JobStore
	cfg      *config.Config

	queue chan string

	mu   sync.Mutex
	opts map[string]IngestOptions
}
