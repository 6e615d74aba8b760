package ingestionengine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgsearch-io/orgsearch/internal/models"
)

func TestNormalizeNilInput(t *testing.T) {
	p := Normalize(nil)
	assert.Equal(t, EmptyProfile(), p)
	assert.NotNil(t, p.Capabilities)
	assert.NotNil(t, p.Contacts)
}

func TestNormalizeCoercions(t *testing.T) {
	raw := map[string]any{
		"org_name":     "  Acme Labs  ",
		"founded_year": "1998",
		"is_DU_member": "Yes",
		"capabilities": "rapid prototyping",
		"projects":     []any{"Project A", "", 42, "Project B"},
		"website":      nil,
		"contacts": []any{
			map[string]any{"name": "Dr. Lin", "email": "lin@acme.de"},
			"not an object",
		},
	}

	p := Normalize(raw)
	require.NotNil(t, p.OrgName)
	assert.Equal(t, "Acme Labs", *p.OrgName)
	require.NotNil(t, p.FoundedYear)
	assert.Equal(t, 1998, *p.FoundedYear)
	require.NotNil(t, p.IsDUMember)
	assert.True(t, *p.IsDUMember)
	assert.Equal(t, []string{"rapid prototyping"}, p.Capabilities)
	assert.Equal(t, []string{"Project A", "Project B"}, p.Projects)
	assert.Nil(t, p.Website)
	require.Len(t, p.Contacts, 1)
	assert.Equal(t, "Dr. Lin", *p.Contacts[0].Name)
}

func TestNormalizeBooleanTokens(t *testing.T) {
	cases := []struct {
		in   any
		want *bool
	}{
		{true, boolPtr(true)},
		{false, boolPtr(false)},
		{"true", boolPtr(true)},
		{"YES", boolPtr(true)},
		{"1", boolPtr(true)},
		{"是", boolPtr(true)},
		{"no", boolPtr(false)},
		{"maybe", boolPtr(false)},
		{3.14, nil},
		{nil, nil},
	}
	for _, tc := range cases {
		p := Normalize(map[string]any{"is_DU_member": tc.in})
		assert.Equalf(t, tc.want, p.IsDUMember, "input %v", tc.in)
	}
}

func TestNormalizeFoundedYear(t *testing.T) {
	p := Normalize(map[string]any{"founded_year": float64(2001)})
	require.NotNil(t, p.FoundedYear)
	assert.Equal(t, 2001, *p.FoundedYear)

	p = Normalize(map[string]any{"founded_year": "not a year"})
	assert.Nil(t, p.FoundedYear)
}

// The normalizer must be a fixed point over its own output: serializing a
// normalized profile and normalizing it again changes nothing.
func TestNormalizeFixedPoint(t *testing.T) {
	raw := map[string]any{
		"org_name":     "Acme",
		"founded_year": "1998",
		"is_DU_member": "yes",
		"services":     []any{"testing", "consulting"},
		"members":      []any{map[string]any{"name": "A. Turing", "role": "director"}},
	}
	first := Normalize(raw)

	data, err := json.Marshal(first)
	require.NoError(t, err)
	var roundTrip map[string]any
	require.NoError(t, json.Unmarshal(data, &roundTrip))

	second := Normalize(roundTrip)
	assert.Equal(t, first, second)
}

func TestFlatten(t *testing.T) {
	p := EmptyProfile()
	p.OrgName = strPtr("Acme")
	p.Address = strPtr("1 Main St, Bremen")
	p.Contacts = []models.Contact{
		{Name: strPtr("Dr. Lin"), Email: strPtr("lin@acme.de"), Phone: strPtr("+49 421 1"), Address: strPtr("Lab Annex")},
		{Name: strPtr("B. Ngo"), Email: strPtr("not-an-email")},
	}
	p.Members = []models.Member{
		{Name: strPtr("A. Turing"), Role: strPtr("director")},
		{Title: strPtr("Dr.")},
	}
	p.Services = []string{"testing"}

	flat := Flatten(p)
	assert.Equal(t, "Acme", flat["org_name"])
	assert.Nil(t, flat["country"])
	assert.Equal(t, []string{"Dr. Lin", "B. Ngo"}, flat["contacts_name"])
	assert.Equal(t, []string{"lin@acme.de"}, flat["contacts_email"])
	assert.Equal(t, []string{"1 Main St, Bremen", "Lab Annex"}, flat["addresses"])
	assert.Equal(t, []string{"A. Turing"}, flat["members_name"])
	assert.Equal(t, []string{"director"}, flat["members_role"])
	assert.Equal(t, []string{"Dr."}, flat["members_title"])
	assert.Equal(t, []string{"testing"}, flat["services"])
	assert.Nil(t, flat["page_from"])
	assert.Nil(t, flat["page_to"])

	for _, f := range models.StructFields {
		_, ok := flat[f]
		assert.Truef(t, ok, "flattened profile missing field %s", f)
	}
}

func TestBuildSemanticTextFiltersNoise(t *testing.T) {
	page := 1
	blocks := []models.Block{
		{Type: models.BlockParagraph, Content: "Page 3", Page: &page},
		{Type: models.BlockParagraph, Content: "Acme operates a wind tunnel.", Page: &page},
		{Type: models.BlockTable, Content: "Facility\tUsage", Page: &page},
		{Type: models.BlockKV, Content: "Founded : 1998", Page: &page},
	}

	text := BuildSemanticText(blocks)
	assert.NotContains(t, text, "Page 3")
	assert.Contains(t, text, "Acme operates a wind tunnel.")
	assert.Contains(t, text, "Facility\tUsage")
	assert.Contains(t, text, "Founded : 1998")
}

func TestBuildSemanticTextEmpty(t *testing.T) {
	assert.Equal(t, "", BuildSemanticText(nil))
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence(`{"a":1}`))
}

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }
