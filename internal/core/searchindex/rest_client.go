package searchindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/orgsearch-io/orgsearch/internal/core"
	"github.com/orgsearch-io/orgsearch/internal/models"
)

const vectorField = "content_vector"

// Client is the typed REST client for the remote search index. Endpoint,
// credentials and the retry/timeout policy live here once, instead of being
// rebuilt at every call site.
type Client struct {
	endpoint   string
	indexName  string
	apiKey     string
	apiVersion string
	hc         *http.Client
}

func NewClient(endpoint, indexName, apiKey, apiVersion string) *Client {
	return &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		indexName:  indexName,
		apiKey:     apiKey,
		apiVersion: apiVersion,
		hc:         &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) WithIndex(name string) core.SearchIndex {
	if name == "" || name == c.indexName {
		return c
	}
	cp := *c
	cp.indexName = name
	return &cp
}

func (c *Client) searchURL() string {
	return fmt.Sprintf("%s/indexes('%s')/docs/search?api-version=%s", c.endpoint, c.indexName, c.apiVersion)
}

func (c *Client) indexURL() string {
	return fmt.Sprintf("%s/indexes('%s')/docs/index?api-version=%s", c.endpoint, c.indexName, c.apiVersion)
}

type vectorQuery struct {
	Kind   string    `json:"kind"`
	Vector []float32 `json:"vector"`
	K      int       `json:"k"`
	Fields string    `json:"fields"`
}

// Search is null for vector-only queries, so the field must marshal even
// when unset.
type searchRequest struct {
	Select        string        `json:"select,omitempty"`
	Top           int           `json:"top,omitempty"`
	Search        *string       `json:"search"`
	VectorQueries []vectorQuery `json:"vectorQueries,omitempty"`
}

type searchResponse struct {
	Value []map[string]any `json:"value"`
}

type indexBatchItem struct {
	Key        string `json:"key"`
	Status     bool   `json:"status"`
	ErrorMsg   string `json:"errorMessage"`
	StatusCode int    `json:"statusCode"`
}

type indexBatchResponse struct {
	Value []indexBatchItem `json:"value"`
}

// VectorTopK issues a vector-only top-k query against the embedding field.
func (c *Client) VectorTopK(ctx context.Context, vector []float32, k int, selectFields []string) ([]models.IndexHit, error) {
	body := searchRequest{
		Select: strings.Join(selectFields, ","),
		Top:    k,
		VectorQueries: []vectorQuery{
			{Kind: "vector", Vector: vector, K: k, Fields: vectorField},
		},
	}
	return c.search(ctx, body, selectFields)
}

// LexicalTopK issues a keyword-only top-k query against the text fields.
func (c *Client) LexicalTopK(ctx context.Context, text string, top int, selectFields []string) ([]models.IndexHit, error) {
	body := searchRequest{
		Select: strings.Join(selectFields, ","),
		Top:    top,
		Search: &text,
	}
	return c.search(ctx, body, selectFields)
}

func (c *Client) search(ctx context.Context, body searchRequest, selectFields []string) ([]models.IndexHit, error) {
	data, err := c.do(ctx, c.searchURL(), body)
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	hits := make([]models.IndexHit, 0, len(resp.Value))
	for _, item := range resp.Value {
		hit := models.IndexHit{Fields: make(map[string]any, len(selectFields))}
		if id, ok := item["id"].(string); ok {
			hit.ID = id
		}
		if s, ok := item["@search.score"].(float64); ok {
			score := s
			hit.Score = &score
		}
		for _, f := range selectFields {
			hit.Fields[f] = item[f]
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// MergeOrUpload upserts one batch of chunk documents. Items the service
// rejects are reported through a core.UpsertError; accepted items stay
// accepted, so callers can log and continue with subsequent batches.
func (c *Client) MergeOrUpload(ctx context.Context, docs []map[string]any) error {
	if len(docs) == 0 {
		return nil
	}

	actions := make([]map[string]any, 0, len(docs))
	for _, doc := range docs {
		action := map[string]any{"@search.action": "mergeOrUpload"}
		for k, v := range doc {
			action[k] = v
		}
		actions = append(actions, action)
	}

	data, err := c.do(ctx, c.indexURL(), map[string]any{"value": actions})
	if err != nil {
		return err
	}

	var resp indexBatchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return fmt.Errorf("decode upsert response: %w", err)
	}

	var failed []core.UpsertItemError
	for _, item := range resp.Value {
		if !item.Status {
			failed = append(failed, core.UpsertItemError{
				Key:        item.Key,
				StatusCode: item.StatusCode,
				Message:    item.ErrorMsg,
			})
		}
	}
	if len(failed) > 0 {
		return &core.UpsertError{Failed: failed}
	}
	return nil
}

// do POSTs a JSON body and returns the response payload. Transient failures
// (429 and 5xx) are retried once after a short pause.
func (c *Client) do(ctx context.Context, url string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	var lastStatus int
	var lastBody []byte
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(500 * time.Millisecond):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("api-key", c.apiKey)

		resp, err := c.hc.Do(req)
		if err != nil {
			return nil, fmt.Errorf("search index request: %w", err)
		}
		data, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("read response: %w", readErr)
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return data, nil
		}
		lastStatus = resp.StatusCode
		lastBody = data
		if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode < 500 {
			break
		}
	}
	return nil, fmt.Errorf("search index returned %d: %s", lastStatus, strings.TrimSpace(string(lastBody)))
}

var _ core.SearchIndex = (*Client)(nil)
