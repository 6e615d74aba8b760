package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgsearch-io/orgsearch/internal/models"
)

func score(f float64) *float64 { return &f }

func hit(id string, s *float64) models.IndexHit {
	return models.IndexHit{ID: id, Score: s, Fields: map[string]any{"id": id}}
}

func TestMinMaxNorm(t *testing.T) {
	out := MinMaxNorm([]*float64{score(1), score(3), score(2)})
	assert.Equal(t, []float64{0, 1, 0.5}, out)
}

func TestMinMaxNormConstantScoresAllOne(t *testing.T) {
	out := MinMaxNorm([]*float64{score(0.7), score(0.7), score(0.7)})
	assert.Equal(t, []float64{1, 1, 1}, out)
}

func TestMinMaxNormNilScores(t *testing.T) {
	out := MinMaxNorm([]*float64{nil, nil})
	assert.Equal(t, []float64{0, 0}, out)

	out = MinMaxNorm([]*float64{score(2), nil, score(4)})
	assert.Equal(t, []float64{0, 0, 1}, out)
}

func TestFuseAlphaOneReproducesVectorOrder(t *testing.T) {
	vec := []models.IndexHit{hit("a", score(0.9)), hit("b", score(0.5)), hit("c", score(0.1))}
	lex := []models.IndexHit{hit("c", score(10)), hit("b", score(5))}

	out := Fuse(vec, lex, 1.0)
	require.Len(t, out, 3)
	assert.Equal(t, "a", out[0].ID)
	assert.Equal(t, "b", out[1].ID)
	assert.Equal(t, "c", out[2].ID)
}

func TestFuseAlphaZeroReproducesLexicalOrder(t *testing.T) {
	vec := []models.IndexHit{hit("a", score(0.9)), hit("b", score(0.5))}
	lex := []models.IndexHit{hit("c", score(10)), hit("b", score(5)), hit("a", score(1))}

	out := Fuse(vec, lex, 0.0)
	require.Len(t, out, 3)
	assert.Equal(t, "c", out[0].ID)
	assert.Equal(t, "b", out[1].ID)
	assert.Equal(t, "a", out[2].ID)
}

func TestFuseMergesByID(t *testing.T) {
	vec := []models.IndexHit{hit("a", score(0.9)), hit("b", score(0.1))}
	lex := []models.IndexHit{hit("b", score(7)), hit("d", score(3))}

	out := Fuse(vec, lex, 0.5)
	require.Len(t, out, 3)

	byID := map[string]models.QueryHit{}
	for _, h := range out {
		byID[h.ID] = h
	}

	b := byID["b"]
	require.NotNil(t, b.VecScoreRaw)
	require.NotNil(t, b.LexScoreRaw)
	assert.Equal(t, 0.1, *b.VecScoreRaw)
	assert.Equal(t, 7.0, *b.LexScoreRaw)
	// b is last in the vector list (norm 0) but first lexically (norm 1).
	assert.Equal(t, 0.0, b.VecScoreNorm)
	assert.Equal(t, 1.0, b.LexScoreNorm)
	assert.InDelta(t, 0.5, b.CombinedScore, 1e-9)

	// a never appeared lexically: raw nil, norm zero.
	a := byID["a"]
	assert.Nil(t, a.LexScoreRaw)
	assert.Equal(t, 0.0, a.LexScoreNorm)
}

func TestFuseSingleSided(t *testing.T) {
	vec := []models.IndexHit{hit("a", score(0.9)), hit("b", score(0.4))}

	out := Fuse(vec, nil, 0.5)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].ID)
	assert.InDelta(t, 0.5, out[0].CombinedScore, 1e-9)
	assert.InDelta(t, 0.0, out[1].CombinedScore, 1e-9)
}

func TestFuseCombinedScoreWithinBounds(t *testing.T) {
	vec := []models.IndexHit{hit("a", score(0.9)), hit("b", score(0.5)), hit("c", score(0.2))}
	lex := []models.IndexHit{hit("b", score(12)), hit("c", score(6)), hit("e", score(2))}

	for _, alpha := range []float64{0, 0.3, 0.5, 0.8, 1} {
		for _, h := range Fuse(vec, lex, alpha) {
			assert.GreaterOrEqual(t, h.CombinedScore, 0.0)
			assert.LessOrEqual(t, h.CombinedScore, 1.0)
		}
	}
}
