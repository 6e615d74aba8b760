package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/orgsearch-io/orgsearch/internal/core/retrieval"
)

type SearchHandler struct {
	engine *retrieval.Engine
}

func NewSearchHandler(engine *retrieval.Engine) *SearchHandler {
	return &SearchHandler{engine: engine}
}

type hybridSearchRequest struct {
	Query      string   `json:"query"`
	Alpha      *float64 `json:"alpha"`
	KVector    int      `json:"kvec"`
	KLexical   int      `json:"kbm25"`
	TopN       int      `json:"top_n"`
	MinScore   *float64 `json:"min_score"`
	IndexName  string   `json:"index_name"`
	EmbedModel string   `json:"embedding_model"`
	EmbedDim   int      `json:"embedding_dimensions"`
}

// HybridSearch runs one fused vector+lexical query and returns the ranked hits.
func (h *SearchHandler) HybridSearch(w http.ResponseWriter, r *http.Request) {
	var req hybridSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		http.Error(w, "query is required", http.StatusBadRequest)
		return
	}

	hits, err := h.engine.Query(r.Context(), retrieval.QueryRequest{
		Text:       req.Query,
		Alpha:      req.Alpha,
		KVector:    req.KVector,
		KLexical:   req.KLexical,
		TopN:       req.TopN,
		MinScore:   req.MinScore,
		IndexName:  req.IndexName,
		EmbedModel: req.EmbedModel,
		EmbedDim:   req.EmbedDim,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"ok":      true,
		"count":   len(hits),
		"results": hits,
	})
}

func (h *SearchHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
