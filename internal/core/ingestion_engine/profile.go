package ingestionengine

import (
	"context"
	"encoding/json"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/orgsearch-io/orgsearch/internal/core"
	"github.com/orgsearch-io/orgsearch/internal/models"
)

const profileSystemPrompt = "You are a precise information extraction assistant. " +
	"Given an organization brochure/manual text, extract a clean JSON object that follows the provided JSON schema. " +
	"If a field is missing, use null or an empty list. Do not add fields not in the schema. " +
	"Return JSON only, no extra commentary."

// profileSchemaJSON is embedded into the prompt so the model sees the exact
// shape it must fill.
const profileSchemaJSON = `{
  "type": "object",
  "properties": {
    "org_name": {"type": "string"},
    "country": {"type": "string"},
    "address": {"type": "string"},
    "founded_year": {"type": ["integer", "null"]},
    "size": {"type": "string"},
    "industry": {"type": "string"},
    "is_DU_member": {"type": ["boolean", "null"]},
    "website": {"type": ["string", "null"]},
    "members": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": "string"},
          "title": {"type": "string"},
          "role": {"type": "string"}
        }
      }
    },
    "facilities": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": "string"},
          "type": {"type": "string"},
          "usage": {"type": "string"}
        }
      }
    },
    "capabilities": {"type": "array", "items": {"type": "string"}},
    "projects": {"type": "array", "items": {"type": "string"}},
    "awards": {"type": "array", "items": {"type": "string"}},
    "services": {"type": "array", "items": {"type": "string"}},
    "contacts": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": "string"},
          "email": {"type": ["string", "null"]},
          "phone": {"type": ["string", "null"]},
          "title": {"type": ["string", "null"]},
          "address": {"type": ["string", "null"]}
        }
      }
    },
    "notes": {"type": "string"}
  }
}`

// affirmativeTokens is the exact set of strings treated as boolean true when
// the model returns the membership flag as text. Deliberately not extended.
var affirmativeTokens = map[string]bool{
	"true": true,
	"yes":  true,
	"1":    true,
	"是":    true,
}

var (
	noiseLineRe = regexp.MustCompile(`^(page \d+|\d+|contents|table of contents)$`)
	emailRe     = regexp.MustCompile(`[^@]+@[^@]+\.[^@]+`)
	codeFenceRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")
)

const semanticTextMaxChars = 12000

// BuildSemanticText assembles the structured-extraction input from layout
// blocks, preferring paragraphs and keeping only a bounded number of tables
// and key-value pairs. Returns "" when no blocks are available, in which case
// the caller falls back to cleaned raw text.
func BuildSemanticText(blocks []models.Block) string {
	if len(blocks) == 0 {
		return ""
	}

	var paras, tables, kvs []string
	for _, b := range blocks {
		content := strings.TrimSpace(b.Content)
		if content == "" {
			continue
		}
		switch b.Type {
		case models.BlockParagraph:
			if noiseLineRe.MatchString(strings.ToLower(content)) {
				continue
			}
			paras = append(paras, content)
		case models.BlockTable:
			tables = append(tables, content)
		case models.BlockKV:
			kvs = append(kvs, content)
		}
	}
	if len(tables) > 10 {
		tables = tables[:10]
	}
	if len(kvs) > 100 {
		kvs = kvs[:100]
	}

	var parts []string
	if len(paras) > 0 {
		parts = append(parts, strings.Join(paras, "\n"))
	}
	if len(tables) > 0 {
		parts = append(parts, strings.Join(tables, "\n"))
	}
	if len(kvs) > 0 {
		parts = append(parts, strings.Join(kvs, "\n"))
	}

	text := strings.Join(parts, "\n\n")
	if len(text) > semanticTextMaxChars {
		text = text[:semanticTextMaxChars]
	}
	return text
}

// ExtractProfile asks the LLM for the structured organization profile and
// normalizes whatever comes back. Any failure (call, parse) degrades to the
// all-empty profile so the chunk/embedding path keeps going.
func ExtractProfile(ctx context.Context, llm core.LLMProvider, text string) models.OrganizationProfile {
	prompt := "Extract the organization information from the following text as strict JSON matching this schema:\n\n" +
		profileSchemaJSON + "\n\nText:\n\n" + text

	raw, err := llm.GenerateJSON(ctx, profileSystemPrompt, prompt)
	if err != nil {
		log.Printf("profile extraction failed, continuing without profile: %v", err)
		return EmptyProfile()
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &parsed); err != nil {
		log.Printf("profile response was not valid JSON, continuing without profile: %v", err)
		return EmptyProfile()
	}
	return Normalize(parsed)
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if m := codeFenceRe.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

// EmptyProfile is the canonical all-empty profile: nil scalars, empty
// non-nil collections.
func EmptyProfile() models.OrganizationProfile {
	return models.OrganizationProfile{
		Contacts:     []models.Contact{},
		Members:      []models.Member{},
		Facilities:   []models.Facility{},
		Capabilities: []string{},
		Projects:     []string{},
		Awards:       []string{},
		Services:     []string{},
	}
}

// Normalize coerces a raw extraction response into the canonical profile
// shape. Pure and total: every schema field gets a value no matter what the
// model returned, and nothing here can fail.
func Normalize(raw map[string]any) models.OrganizationProfile {
	p := EmptyProfile()
	if raw == nil {
		return p
	}

	p.OrgName = asString(raw["org_name"])
	p.Country = asString(raw["country"])
	p.Address = asString(raw["address"])
	p.FoundedYear = asInt(raw["founded_year"])
	p.Size = asString(raw["size"])
	p.Industry = asString(raw["industry"])
	p.IsDUMember = asBool(raw["is_DU_member"])
	p.Website = asString(raw["website"])
	p.Notes = asString(raw["notes"])

	p.Capabilities = stringList(raw["capabilities"])
	p.Projects = stringList(raw["projects"])
	p.Awards = stringList(raw["awards"])
	p.Services = stringList(raw["services"])

	for _, item := range objectList(raw["members"]) {
		p.Members = append(p.Members, models.Member{
			Name:  asString(item["name"]),
			Title: asString(item["title"]),
			Role:  asString(item["role"]),
		})
	}
	for _, item := range objectList(raw["facilities"]) {
		p.Facilities = append(p.Facilities, models.Facility{
			Name:  asString(item["name"]),
			Type:  asString(item["type"]),
			Usage: asString(item["usage"]),
		})
	}
	for _, item := range objectList(raw["contacts"]) {
		p.Contacts = append(p.Contacts, models.Contact{
			Name:    asString(item["name"]),
			Email:   asString(item["email"]),
			Phone:   asString(item["phone"]),
			Title:   asString(item["title"]),
			Address: asString(item["address"]),
		})
	}

	return p
}

func asString(v any) *string {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		return &s
	case float64:
		s := strconv.FormatFloat(t, 'f', -1, 64)
		return &s
	case bool:
		s := strconv.FormatBool(t)
		return &s
	default:
		return nil
	}
}

func asInt(v any) *int {
	switch t := v.(type) {
	case float64:
		n := int(t)
		return &n
	case string:
		s := strings.TrimSpace(t)
		if n, err := strconv.Atoi(s); err == nil {
			return &n
		}
		return nil
	default:
		return nil
	}
}

// asBool accepts a real boolean or a string checked against the affirmative
// token set; any non-matching string is false, anything else is unknown.
func asBool(v any) *bool {
	switch t := v.(type) {
	case bool:
		b := t
		return &b
	case string:
		b := affirmativeTokens[strings.ToLower(strings.TrimSpace(t))]
		return &b
	default:
		return nil
	}
}

// stringList wraps a lone string as a singleton and filters lists down to
// truthy string items. Anything else is empty.
func stringList(v any) []string {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return []string{}
		}
		return []string{s}
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				s = strings.TrimSpace(s)
				if s != "" {
					out = append(out, s)
				}
			}
		}
		return out
	default:
		return []string{}
	}
}

func objectList(v any) []map[string]any {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// Flatten projects the profile onto the per-chunk index fields: collections
// become multi-value fields, contact attributes split into parallel lists,
// and emails are kept only when they look like emails. The addresses field
// aggregates the main address with any contact addresses.
func Flatten(p models.OrganizationProfile) map[string]any {
	flat := map[string]any{
		"org_name":     derefString(p.OrgName),
		"country":      derefString(p.Country),
		"address":      derefString(p.Address),
		"founded_year": derefInt(p.FoundedYear),
		"size":         derefString(p.Size),
		"industry":     derefString(p.Industry),
		"is_DU_member": derefBool(p.IsDUMember),
		"website":      derefString(p.Website),
		"notes":        derefString(p.Notes),
		"capabilities": p.Capabilities,
		"projects":     p.Projects,
		"awards":       p.Awards,
		"services":     p.Services,
		"page_from":    nil,
		"page_to":      nil,
	}

	var mNames, mTitles, mRoles []string
	for _, m := range p.Members {
		appendIf(&mNames, m.Name)
		appendIf(&mTitles, m.Title)
		appendIf(&mRoles, m.Role)
	}
	flat["members_name"] = orEmpty(mNames)
	flat["members_title"] = orEmpty(mTitles)
	flat["members_role"] = orEmpty(mRoles)

	var fNames, fTypes, fUsages []string
	for _, f := range p.Facilities {
		appendIf(&fNames, f.Name)
		appendIf(&fTypes, f.Type)
		appendIf(&fUsages, f.Usage)
	}
	flat["facilities_name"] = orEmpty(fNames)
	flat["facilities_type"] = orEmpty(fTypes)
	flat["facilities_usage"] = orEmpty(fUsages)

	var cNames, cEmails, cPhones, addresses []string
	if p.Address != nil && *p.Address != "" {
		addresses = append(addresses, *p.Address)
	}
	for _, c := range p.Contacts {
		appendIf(&cNames, c.Name)
		if c.Email != nil && emailRe.MatchString(*c.Email) {
			cEmails = append(cEmails, *c.Email)
		}
		appendIf(&cPhones, c.Phone)
		appendIf(&addresses, c.Address)
	}
	flat["contacts_name"] = orEmpty(cNames)
	flat["contacts_email"] = orEmpty(cEmails)
	flat["contacts_phone"] = orEmpty(cPhones)
	flat["addresses"] = orEmpty(addresses)

	return flat
}

func appendIf(dst *[]string, s *string) {
	if s != nil && *s != "" {
		*dst = append(*dst, *s)
	}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func derefString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func derefInt(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}

func derefBool(b *bool) any {
	if b == nil {
		return nil
	}
	return *b
}
