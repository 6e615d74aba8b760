package ingestionengine

import (
	"regexp"
	"strings"
)

// Cleanup patterns for scraped and OCR'd organization documents: form
// artifacts, navigation menus, horizontal rules, glued email suffixes and a
// recurring temperature table block. Order matters: structural noise first,
// whitespace collapse last.
var (
	reSelected  = regexp.MustCompile(`(?i):selected:`)
	reNavTokens = regexp.MustCompile(`(?i)\b(ACCESS|KARRIERE|NEWS|NEUIGKEITEN|ENGLISH|DEUTSCH|KONTAKT|FORSCHUNG\s*&\s*ENTWICKLUNG|DIENSTLEISTUNGEN\s*&\s*PRODUKTE|PRODUKTE|IMPRESSUM)\b`)
	// RE2's \b is ASCII-only, so a token starting with Ü needs its word
	// boundary spelled out.
	reNavUeberUns = regexp.MustCompile(`(?i)(^|[^\p{L}\p{N}_])ÜBER\s+UNS\b`)
	reRule      = regexp.MustCompile(`[-•=]{2,}`)
	reEmail     = regexp.MustCompile(`([A-Za-z0-9_.+-]+@[A-Za-z0-9-]+\.[A-Za-z0-9-.]+)\s*`)
	reTempTable = regexp.MustCompile(`(?s)Temperature\s*\(C\).*?(\n[A-ZÄÖÜ]|\z)`)
	reBlankRuns = regexp.MustCompile(`\n{2,}`)
	reSpaceRuns = regexp.MustCompile(`[ \t]+`)
)

// Clean normalizes extracted document text before chunking. It is
// idempotent: Clean(Clean(s)) == Clean(s).
func Clean(text string) string {
	text = reSelected.ReplaceAllString(text, "")
	text = reNavTokens.ReplaceAllString(text, "")
	text = reNavUeberUns.ReplaceAllString(text, "$1")
	text = reRule.ReplaceAllString(text, "")
	text = reEmail.ReplaceAllString(text, "$1 ")
	text = reTempTable.ReplaceAllString(text, "$1")
	text = reBlankRuns.ReplaceAllString(text, "\n")
	text = reSpaceRuns.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
