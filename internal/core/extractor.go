package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/orgsearch-io/orgsearch/internal/models"
)

// DocumentExtractor defines one text-extraction backend. Backends that are
// layout-aware also return structural blocks; flat-text backends return nil
// blocks.
type DocumentExtractor interface {
	// Method is the stable name callers use to select this backend.
	Method() string

	Extract(ctx context.Context, data []byte, filename string) (text string, blocks []models.Block, err error)
}

// ExtractionError reports that every attempted extraction backend failed for
// a document. It is fatal for that document only.
type ExtractionError struct {
	Methods []string
	Errs    []error
}

func (e *ExtractionError) Error() string {
	parts := make([]string, 0, len(e.Methods))
	for i, m := range e.Methods {
		parts = append(parts, fmt.Sprintf("%s: %v", m, e.Errs[i]))
	}
	return "all extraction methods failed: " + strings.Join(parts, "; ")
}

func (e *ExtractionError) Unwrap() []error { return e.Errs }

// UpsertItemError is one failed document inside a batched index upsert.
type UpsertItemError struct {
	Key        string
	StatusCode int
	Message    string
}

// UpsertError reports per-item failures from a batched upsert. The remaining
// items of the batch were accepted; the ingestor logs these and continues.
type UpsertError struct {
	Failed []UpsertItemError
}

func (e *UpsertError) Error() string {
	if len(e.Failed) == 0 {
		return "index upsert failed"
	}
	f := e.Failed[0]
	return fmt.Sprintf("index upsert: %d document(s) rejected (first: %s: %s)", len(e.Failed), f.Key, f.Message)
}
