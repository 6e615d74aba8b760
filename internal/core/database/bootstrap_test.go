package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderBootstrapSQLUsesConfiguredDimension(t *testing.T) {
	script, err := renderBootstrapSQL(768)
	require.NoError(t, err)
	assert.Contains(t, script, "vector(768)")
	assert.False(t, strings.Contains(script, "{{EMBED_DIM}}"), "placeholder must be fully substituted")
}

func TestRenderBootstrapSQLDefaultsDimension(t *testing.T) {
	for _, dim := range []int{0, -5} {
		script, err := renderBootstrapSQL(dim)
		require.NoError(t, err)
		assert.Contains(t, script, "vector(1536)")
	}
}
