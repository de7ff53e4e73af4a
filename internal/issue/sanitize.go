package issue

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer strips markup from free text before it is stored.
type TextSanitizer interface {
	Sanitize(s string) string
}

type plainTextSanitizer struct {
	policy *bluemonday.Policy
}

// textEntities decodes the entities the strict policy emits for plain
// punctuation. &lt; and &gt; stay encoded so no markup survives.
var textEntities = strings.NewReplacer(
	"&amp;", "&",
	"&#39;", "'",
	"&#34;", `"`,
	"&quot;", `"`,
)

// NewPlainTextSanitizer removes every tag but keeps the text readable, so
// "Water & power" is stored as typed rather than entity-encoded.
func NewPlainTextSanitizer() TextSanitizer {
	return &plainTextSanitizer{policy: bluemonday.StrictPolicy()}
}

func (p *plainTextSanitizer) Sanitize(s string) string {
	return strings.TrimSpace(textEntities.Replace(p.policy.Sanitize(s)))
}
