package workflow

import "strings"

// NormalizeLabel turns a raw classifier response into the category used for
// relocation. Surrounding whitespace is trimmed and the label is otherwise
// kept verbatim, even when it is not a configured category. A blank label
// falls back.
func NormalizeLabel(raw, fallback string) string {
	label := strings.TrimSpace(raw)
	if label == "" {
		return fallback
	}
	return label
}
