package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgsearch-io/orgsearch/internal/core"
	"github.com/orgsearch-io/orgsearch/internal/models"
)

type stubExtractor struct {
	method string
	text   string
	err    error
}

func (s *stubExtractor) Method() string { return s.method }

func (s *stubExtractor) Extract(ctx context.Context, data []byte, filename string) (string, []models.Block, error) {
	if s.err != nil {
		return "", nil, s.err
	}
	return s.text, nil, nil
}

func TestSelectorUsesRequestedMethod(t *testing.T) {
	sel := NewSelector(
		&stubExtractor{method: MethodDocconv, text: "flat text"},
		&stubExtractor{method: MethodLayout, text: "layout text"},
	)

	text, _, used, err := sel.Extract(context.Background(), nil, "doc.pdf", MethodLayout, true)
	require.NoError(t, err)
	assert.Equal(t, "layout text", text)
	assert.Equal(t, MethodLayout, used)
}

func TestSelectorDefaultsToDocconv(t *testing.T) {
	sel := NewSelector(
		&stubExtractor{method: MethodDocconv, text: "flat text"},
		&stubExtractor{method: MethodLayout, text: "layout text"},
	)

	_, _, used, err := sel.Extract(context.Background(), nil, "doc.pdf", "", true)
	require.NoError(t, err)
	assert.Equal(t, MethodDocconv, used)
}

func TestSelectorFallsBackOnce(t *testing.T) {
	sel := NewSelector(
		&stubExtractor{method: MethodDocconv, err: errors.New("broken pdf")},
		&stubExtractor{method: MethodLayout, text: "layout text"},
	)

	text, _, used, err := sel.Extract(context.Background(), nil, "doc.pdf", MethodDocconv, true)
	require.NoError(t, err)
	assert.Equal(t, "layout text", text)
	assert.Equal(t, MethodLayout, used)
}

func TestSelectorNoFallbackWhenDisabled(t *testing.T) {
	sel := NewSelector(
		&stubExtractor{method: MethodDocconv, err: errors.New("broken pdf")},
		&stubExtractor{method: MethodLayout, text: "layout text"},
	)

	_, _, _, err := sel.Extract(context.Background(), nil, "doc.pdf", MethodDocconv, false)
	require.Error(t, err)

	var extErr *core.ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, []string{MethodDocconv}, extErr.Methods)
}

func TestSelectorBothBackendsFail(t *testing.T) {
	sel := NewSelector(
		&stubExtractor{method: MethodDocconv, err: errors.New("broken pdf")},
		&stubExtractor{method: MethodLayout, err: errors.New("service down")},
	)

	_, _, _, err := sel.Extract(context.Background(), nil, "doc.pdf", MethodDocconv, true)
	require.Error(t, err)

	var extErr *core.ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, []string{MethodDocconv, MethodLayout}, extErr.Methods)
	assert.Contains(t, err.Error(), "all extraction methods failed")
	assert.Contains(t, err.Error(), "broken pdf")
	assert.Contains(t, err.Error(), "service down")
}
