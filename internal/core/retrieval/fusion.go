package retrieval

import (
	"sort"

	"github.com/orgsearch-io/orgsearch/internal/models"
)

// MinMaxNorm rescales the present scores of one result list into [0, 1].
// Nil entries (no score reported) normalize to 0. When every present score
// is identical, each normalizes to 1 so a single-method hit still counts.
func MinMaxNorm(scores []*float64) []float64 {
	out := make([]float64, len(scores))

	var min, max float64
	seen := false
	for _, s := range scores {
		if s == nil {
			continue
		}
		if !seen {
			min, max = *s, *s
			seen = true
			continue
		}
		if *s < min {
			min = *s
		}
		if *s > max {
			max = *s
		}
	}
	if !seen {
		return out
	}

	for i, s := range scores {
		if s == nil {
			continue
		}
		if max == min {
			out[i] = 1.0
			continue
		}
		out[i] = (*s - min) / (max - min)
	}
	return out
}

// Fuse merges vector and lexical hit lists into one ranking. Each list is
// min-max normalized independently, rows are merged by chunk id (a missing
// method contributes 0), and the combined score is the alpha-weighted sum.
// The sort is stable over merge insertion order (vector hits first), so ties
// keep a deterministic order.
func Fuse(vecHits, lexHits []models.IndexHit, alpha float64) []models.QueryHit {
	vecScores := make([]*float64, len(vecHits))
	for i := range vecHits {
		vecScores[i] = vecHits[i].Score
	}
	lexScores := make([]*float64, len(lexHits))
	for i := range lexHits {
		lexScores[i] = lexHits[i].Score
	}
	vecNorm := MinMaxNorm(vecScores)
	lexNorm := MinMaxNorm(lexScores)

	order := make([]string, 0, len(vecHits)+len(lexHits))
	merged := make(map[string]*models.QueryHit, len(vecHits)+len(lexHits))

	for i, h := range vecHits {
		row, ok := merged[h.ID]
		if !ok {
			row = &models.QueryHit{ID: h.ID, Fields: h.Fields}
			merged[h.ID] = row
			order = append(order, h.ID)
		}
		row.VecScoreRaw = h.Score
		row.VecScoreNorm = vecNorm[i]
	}
	for i, h := range lexHits {
		row, ok := merged[h.ID]
		if !ok {
			row = &models.QueryHit{ID: h.ID, Fields: h.Fields}
			merged[h.ID] = row
			order = append(order, h.ID)
		}
		row.LexScoreRaw = h.Score
		row.LexScoreNorm = lexNorm[i]
	}

	out := make([]models.QueryHit, 0, len(order))
	for _, id := range order {
		row := merged[id]
		row.CombinedScore = alpha*row.VecScoreNorm + (1-alpha)*row.LexScoreNorm
		out = append(out, *row)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CombinedScore > out[j].CombinedScore
	})
	return out
}
