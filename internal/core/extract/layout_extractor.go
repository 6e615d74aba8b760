package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/orgsearch-io/orgsearch/internal/core"
	"github.com/orgsearch-io/orgsearch/internal/models"
)

// LayoutExtractor calls a remote layout-analysis service that returns
// structured paragraphs, tables and key-value pairs with page numbers.
type LayoutExtractor struct {
	endpoint string
	apiKey   string
	hc       *http.Client
}

func NewLayoutExtractor(endpoint, apiKey string) *LayoutExtractor {
	return &LayoutExtractor{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		hc:       &http.Client{Timeout: 2 * time.Minute},
	}
}

func (e *LayoutExtractor) Method() string { return MethodLayout }

type layoutCell struct {
	RowIndex    int    `json:"rowIndex"`
	ColumnIndex int    `json:"columnIndex"`
	Content     string `json:"content"`
}

type layoutResponse struct {
	Content    string `json:"content"`
	Paragraphs []struct {
		Content string `json:"content"`
		Page    int    `json:"page"`
	} `json:"paragraphs"`
	Tables []struct {
		Cells []layoutCell `json:"cells"`
		Page  int          `json:"page"`
	} `json:"tables"`
	KeyValuePairs []struct {
		Key   string `json:"key"`
		Value string `json:"value"`
		Page  int    `json:"page"`
	} `json:"keyValuePairs"`
}

func (e *LayoutExtractor) Extract(ctx context.Context, data []byte, filename string) (string, []models.Block, error) {
	if e.endpoint == "" {
		return "", nil, fmt.Errorf("layout extraction endpoint not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint+"/analyze", bytes.NewReader(data))
	if err != nil {
		return "", nil, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("api-key", e.apiKey)

	resp, err := e.hc.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("layout request for %s: %w", filename, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("read layout response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("layout service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var lr layoutResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		return "", nil, fmt.Errorf("decode layout response: %w", err)
	}

	blocks := make([]models.Block, 0, len(lr.Paragraphs)+len(lr.Tables)+len(lr.KeyValuePairs))
	for _, p := range lr.Paragraphs {
		content := strings.TrimSpace(p.Content)
		if content == "" {
			continue
		}
		blocks = append(blocks, models.Block{Type: models.BlockParagraph, Content: content, Page: pagePtr(p.Page)})
	}
	for _, t := range lr.Tables {
		content := renderTable(t.Cells)
		if content == "" {
			continue
		}
		blocks = append(blocks, models.Block{Type: models.BlockTable, Content: content, Page: pagePtr(t.Page)})
	}
	for _, kv := range lr.KeyValuePairs {
		key := strings.TrimSpace(kv.Key)
		if key == "" {
			continue
		}
		blocks = append(blocks, models.Block{
			Type:    models.BlockKV,
			Content: key + " : " + strings.TrimSpace(kv.Value),
			Page:    pagePtr(kv.Page),
		})
	}

	text := strings.TrimSpace(lr.Content)
	if text == "" {
		parts := make([]string, 0, len(blocks))
		for _, b := range blocks {
			parts = append(parts, b.Content)
		}
		text = strings.Join(parts, "\n")
	}
	if text == "" {
		return "", nil, fmt.Errorf("layout service produced no text for %s", filename)
	}
	return text, blocks, nil
}

// Page 0 means the service did not report one.
func pagePtr(p int) *int {
	if p <= 0 {
		return nil
	}
	return &p
}

// renderTable lays cells out row by row, tab-separated within a row.
func renderTable(cells []layoutCell) string {
	if len(cells) == 0 {
		return ""
	}
	sorted := make([]layoutCell, len(cells))
	copy(sorted, cells)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].RowIndex != sorted[j].RowIndex {
			return sorted[i].RowIndex < sorted[j].RowIndex
		}
		return sorted[i].ColumnIndex < sorted[j].ColumnIndex
	})

	var rows []string
	var row []string
	current := sorted[0].RowIndex
	for _, c := range sorted {
		if c.RowIndex != current {
			rows = append(rows, strings.Join(row, "\t"))
			row = row[:0]
			current = c.RowIndex
		}
		row = append(row, strings.TrimSpace(c.Content))
	}
	rows = append(rows, strings.Join(row, "\t"))
	return strings.TrimSpace(strings.Join(rows, "\n"))
}

var _ core.DocumentExtractor = (*LayoutExtractor)(nil)
