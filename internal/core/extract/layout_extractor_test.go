package extract

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgsearch-io/orgsearch/internal/models"
)

func TestLayoutExtractorBuildsBlocks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/analyze", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("api-key"))

		json.NewEncoder(w).Encode(map[string]any{
			"content": "Acme operates a wind tunnel.\nFounded : 1998",
			"paragraphs": []map[string]any{
				{"content": "Acme operates a wind tunnel.", "page": 1},
				{"content": "   ", "page": 1},
			},
			"tables": []map[string]any{
				{
					"page": 2,
					"cells": []map[string]any{
						{"rowIndex": 0, "columnIndex": 0, "content": "Facility"},
						{"rowIndex": 0, "columnIndex": 1, "content": "Usage"},
						{"rowIndex": 1, "columnIndex": 0, "content": "Wind tunnel"},
						{"rowIndex": 1, "columnIndex": 1, "content": "Aerodynamics"},
					},
				},
			},
			"keyValuePairs": []map[string]any{
				{"key": "Founded", "value": "1998", "page": 1},
			},
		})
	}))
	defer srv.Close()

	e := NewLayoutExtractor(srv.URL, "secret")
	text, blocks, err := e.Extract(context.Background(), []byte("%PDF"), "acme.pdf")
	require.NoError(t, err)

	assert.Contains(t, text, "Acme operates a wind tunnel.")
	require.Len(t, blocks, 3)

	assert.Equal(t, models.BlockParagraph, blocks[0].Type)
	require.NotNil(t, blocks[0].Page)
	assert.Equal(t, 1, *blocks[0].Page)

	assert.Equal(t, models.BlockTable, blocks[1].Type)
	assert.Equal(t, "Facility\tUsage\nWind tunnel\tAerodynamics", blocks[1].Content)

	assert.Equal(t, models.BlockKV, blocks[2].Type)
	assert.Equal(t, "Founded : 1998", blocks[2].Content)
}

func TestLayoutExtractorServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusBadGateway)
	}))
	defer srv.Close()

	e := NewLayoutExtractor(srv.URL, "secret")
	_, _, err := e.Extract(context.Background(), []byte("%PDF"), "acme.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestLayoutExtractorUnconfigured(t *testing.T) {
	e := NewLayoutExtractor("", "")
	_, _, err := e.Extract(context.Background(), []byte("%PDF"), "acme.pdf")
	require.Error(t, err)
}
