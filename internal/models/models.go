package models

import (
	"time"
)

// User represents an authenticated user of the system.
type User struct {
	ID           string    `db:"id" json:"id"`
	FirstName    string    `db:"first_name" json:"first_name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Block types emitted by the layout-aware extractor.
const (
	BlockParagraph = "paragraph"
	BlockTable     = "table"
	BlockKV        = "kv"
)

// Block is one structural fragment (paragraph, flattened table, or key-value
// pair) extracted from a document, optionally tagged with its page number.
type Block struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	Page    *int   `json:"page"`
}

// SourceDocument is one uploaded file flowing through the ingestion pipeline.
// It lives only for the duration of the run; chunks are what get persisted.
type SourceDocument struct {
	SourceID string
	Filename string
	Filepath string
	Text     string
	Blocks   []Block
}

// Contact is one person reachable at the organization.
type Contact struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Title   *string `json:"title"`
	Address *string `json:"address"`
}

// Member is one listed member of the organization.
type Member struct {
	Name  *string `json:"name"`
	Title *string `json:"title"`
	Role  *string `json:"role"`
}

// Facility is one facility or piece of equipment the organization operates.
type Facility struct {
	Name  *string `json:"name"`
	Type  *string `json:"type"`
	Usage *string `json:"usage"`
}

// OrganizationProfile is the canonical structured-extraction result for one
// source document. After normalization every schema field is present: scalar
// pointers are nil when the extraction had nothing for them, collections are
// always non-nil (possibly empty) slices.
type OrganizationProfile struct {
	OrgName      *string    `json:"org_name"`
	Country      *string    `json:"country"`
	Address      *string    `json:"address"`
	FoundedYear  *int       `json:"founded_year"`
	Size         *string    `json:"size"`
	Industry     *string    `json:"industry"`
	IsDUMember   *bool      `json:"is_DU_member"`
	Website      *string    `json:"website"`
	Contacts     []Contact  `json:"contacts"`
	Members      []Member   `json:"members"`
	Facilities   []Facility `json:"facilities"`
	Capabilities []string   `json:"capabilities"`
	Projects     []string   `json:"projects"`
	Awards       []string   `json:"awards"`
	Services     []string   `json:"services"`
	Notes        *string    `json:"notes"`
}

// Chunk is the unit of indexing: one bounded slice of a document's text plus
// the flattened profile fields, duplicated identically across all chunks of
// the same source document. Its ID is "{source_id}-{chunk_index}", so
// re-ingesting the same source id overwrites rather than duplicates.
type Chunk struct {
	ID         string
	SourceID   string
	ChunkIndex int
	Content    string
	Filepath   string
	Embedding  []float32
	Fields     map[string]any
}

// IndexDoc flattens the chunk into the field map the search index consumes.
func (c *Chunk) IndexDoc() map[string]any {
	doc := map[string]any{
		"id":             c.ID,
		"source_id":      c.SourceID,
		"chunk_index":    c.ChunkIndex,
		"content":        c.Content,
		"filepath":       c.Filepath,
		"content_vector": c.Embedding,
	}
	for k, v := range c.Fields {
		doc[k] = v
	}
	return doc
}

// IndexHit is one raw result from a single retrieval method. Score is nil
// when the index returned no numeric score for the item.
type IndexHit struct {
	ID     string
	Score  *float64
	Fields map[string]any
}

// QueryHit is one fused retrieval result. Raw scores are nil for the method
// that did not return the chunk; normalized scores default to zero for the
// missing method.
type QueryHit struct {
	ID            string         `json:"id"`
	CombinedScore float64        `json:"combined_score"`
	VecScoreRaw   *float64       `json:"vec_score_raw"`
	LexScoreRaw   *float64       `json:"bm25_score_raw"`
	VecScoreNorm  float64        `json:"vec_score_norm"`
	LexScoreNorm  float64        `json:"bm25_score_norm"`
	Fields        map[string]any `json:"fields"`
}

// Ingestion job statuses.
const (
	JobQueued       = "queued"
	JobExtracting   = "extracting"
	JobIndexing     = "indexing"
	JobErrorPartial = "error_partial"
	JobDone         = "done"
	JobUnknown      = "unknown"
)

// JobFile points at one uploaded file awaiting ingestion.
type JobFile struct {
	Filename    string `json:"filename"`
	Bucket      string `json:"bucket"`
	Key         string `json:"key"`
	Filepath    string `json:"filepath"`
	ContentType string `json:"content_type,omitempty"`
	// SourceID pins the source identifier; empty means generate one.
	SourceID string `json:"source_id,omitempty"`
}

// FileOutcome records one file's result inside a job: success with its chunk
// count, or failure with the error text.
type FileOutcome struct {
	File     string `json:"file"`
	OK       bool   `json:"ok"`
	SourceID string `json:"source_id,omitempty"`
	Chunks   int    `json:"chunks,omitempty"`
	Error    string `json:"error,omitempty"`
}

// IngestionJob is the ephemeral progress record for one ingestion job.
// It is mutated only by the ingestor (single writer) and read-only to pollers.
type IngestionJob struct {
	ID          string        `json:"job_id"`
	Status      string        `json:"status"`
	Current     int           `json:"current"`
	Total       int           `json:"total"`
	CurrentFile string        `json:"current_file,omitempty"`
	Files       []FileOutcome `json:"files"`
	Errors      []string      `json:"errors"`
	Pending     []JobFile     `json:"pending,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// IngestResult summarizes one successfully ingested document.
type IngestResult struct {
	Filename  string `json:"filename"`
	SourceID  string `json:"source_id"`
	Chunks    int    `json:"chunks"`
	ChunkSize int    `json:"chunk_size"`
	Overlap   int    `json:"overlap"`
	TextLen   int    `json:"text_len"`
}

// StructFields are the flattened OrganizationProfile fields attached to every
// chunk in the index.
var StructFields = []string{
	"org_name", "country", "address", "founded_year", "size", "industry", "is_DU_member", "website",
	"members_name", "members_title", "members_role",
	"facilities_name", "facilities_type", "facilities_usage",
	"capabilities", "projects", "awards", "services",
	"contacts_name", "contacts_email", "contacts_phone",
	"addresses", "notes", "page_from", "page_to",
}

// BaseFields are the chunk-level fields every index document carries besides
// the embedding vector.
var BaseFields = []string{"id", "source_id", "chunk_index", "content", "filepath"}

// SelectFields returns the full retrievable field set for query responses.
func SelectFields() []string {
	out := make([]string, 0, len(BaseFields)+len(StructFields))
	out = append(out, BaseFields...)
	out = append(out, StructFields...)
	return out
}
