package extract

import (
	"context"
	"fmt"
	"log"

	"github.com/orgsearch-io/orgsearch/internal/core"
	"github.com/orgsearch-io/orgsearch/internal/models"
)

const (
	MethodDocconv = "docconv"
	MethodLayout  = "layout"
)

// Selector routes extraction to a named backend and falls back to the other
// one on failure. At most one fallback happens per document.
type Selector struct {
	backends map[string]core.DocumentExtractor
}

func NewSelector(backends ...core.DocumentExtractor) *Selector {
	m := make(map[string]core.DocumentExtractor, len(backends))
	for _, b := range backends {
		m[b.Method()] = b
	}
	return &Selector{backends: m}
}

// Extract runs the requested backend, then the alternate if the first fails
// and fallback is enabled. Returns the method that actually produced the
// text. When every attempt fails, the error is a *core.ExtractionError
// naming each method tried.
func (s *Selector) Extract(ctx context.Context, data []byte, filename, method string, fallback bool) (string, []models.Block, string, error) {
	if method == "" {
		method = MethodDocconv
	}

	order := []string{method}
	if fallback {
		if alt := alternate(method); alt != "" {
			order = append(order, alt)
		}
	}

	var extErr core.ExtractionError
	for i, name := range order {
		backend, ok := s.backends[name]
		if !ok {
			continue
		}
		if i > 0 {
			log.Printf("extraction via %s failed for %s, falling back to %s", order[0], filename, name)
		}
		text, blocks, err := backend.Extract(ctx, data, filename)
		if err == nil {
			return text, blocks, name, nil
		}
		extErr.Methods = append(extErr.Methods, name)
		extErr.Errs = append(extErr.Errs, err)
	}

	if len(extErr.Errs) == 0 {
		extErr.Methods = append(extErr.Methods, method)
		extErr.Errs = append(extErr.Errs, fmt.Errorf("no backend registered for method %q", method))
	}
	return "", nil, "", &extErr
}

func alternate(method string) string {
	switch method {
	case MethodDocconv:
		return MethodLayout
	case MethodLayout:
		return MethodDocconv
	default:
		return ""
	}
}
