package utils

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	// Keys only ever follow an opening brace or a comma; matching any `word:`
	// would also rewrite colons inside string values.
	bareKeyRe       = regexp.MustCompile(`([{,]\s*)(\w+):`)
	trailingCommaRe = regexp.MustCompile(`,(\s*[}\]])`)
)

// ExtractFirstJSON locates the first top-level JSON object inside arbitrary
// model output: the slice between the first '{' and the last '}'. If the
// strict parse fails, a bounded set of textual repairs is applied (single to
// double quotes, quoting of bare keys, removal of trailing commas) and the
// parse retried exactly once. Returns ok=false when no object can be
// recovered; callers must treat that as a low-confidence model response, not
// a fatal error.
func ExtractFirstJSON(text string) (json.RawMessage, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, false
	}
	raw := text[start : end+1]

	if json.Valid([]byte(raw)) {
		return json.RawMessage(raw), true
	}

	fixed := strings.ReplaceAll(raw, "'", `"`)
	fixed = bareKeyRe.ReplaceAllString(fixed, `$1"$2":`)
	fixed = trailingCommaRe.ReplaceAllString(fixed, "$1")

	if json.Valid([]byte(fixed)) {
		return json.RawMessage(fixed), true
	}
	return nil, false
}
