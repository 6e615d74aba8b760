package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"code.sajari.com/docconv"

	"github.com/orgsearch-io/orgsearch/internal/core"
	"github.com/orgsearch-io/orgsearch/internal/models"
)

// DocconvExtractor converts documents locally via docconv. It yields flat
// text only; layout blocks come from the layout backend.
type DocconvExtractor struct{}

func NewDocconvExtractor() *DocconvExtractor {
	return &DocconvExtractor{}
}

func (e *DocconvExtractor) Method() string { return MethodDocconv }

func (e *DocconvExtractor) Extract(ctx context.Context, data []byte, filename string) (string, []models.Block, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}

	mimeType := docconv.MimeTypeByExtension(filename)
	res, err := docconv.Convert(bytes.NewReader(data), mimeType, true)
	if err != nil {
		return "", nil, fmt.Errorf("docconv convert %s: %w", filename, err)
	}
	text := strings.TrimSpace(res.Body)
	if text == "" {
		return "", nil, fmt.Errorf("docconv produced no text for %s", filename)
	}
	return text, nil, nil
}

var _ core.DocumentExtractor = (*DocconvExtractor)(nil)
