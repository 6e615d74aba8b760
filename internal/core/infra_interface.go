package core

import (
	"context"
	"io"

	"github.com/orgsearch-io/orgsearch/internal/models"
)

// DbClient defines the persistence operations the services need.
// It abstracts Postgres so higher layers never depend on a specific DB.
type DbClient interface {
	CreateUser(ctx context.Context, user *models.User) (err error)
	GetUserByEmail(ctx context.Context, email string) (user *models.User, err error)

	Close() error
}

// ObjectClient defines interactions with S3 or any object storage.
// It's abstract so you can replace AWS with MinIO, GCP, etc. easily.
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data io.Reader, contentType string) (url string, err error)
	DeleteFile(ctx context.Context, bucket, key string) error
	GetFile(ctx context.Context, bucket, key string) ([]byte, error)

	GetObjectReader(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

// SearchIndex is the remote index shared by the ingestion pipeline and the
// retrieval engine. Upserts merge by document id; the two query methods are
// single-signal (vector-only, lexical-only) so the engine can fuse them.
type SearchIndex interface {
	MergeOrUpload(ctx context.Context, docs []map[string]any) error
	VectorTopK(ctx context.Context, vector []float32, k int, selectFields []string) ([]models.IndexHit, error)
	LexicalTopK(ctx context.Context, text string, top int, selectFields []string) ([]models.IndexHit, error)

	// WithIndex returns a view of the same backend targeting another index;
	// an empty name returns the receiver unchanged.
	WithIndex(name string) SearchIndex
}

// JobStore holds ingestion job progress records behind a narrow get/put
// interface, so the ingestor is testable without a process-wide table.
type JobStore interface {
	// Get returns the job record, or (nil, nil) for an unknown id.
	Get(ctx context.Context, id string) (*models.IngestionJob, error)
	Put(ctx context.Context, job *models.IngestionJob) error
}
