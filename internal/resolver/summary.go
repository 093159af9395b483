package resolver

import "strings"

// sentenceBreaks are checked in order; the first one present in the text
// marks the end of the leading sentence.
var sentenceBreaks = []string{". ", "。", "…", "!", "?"}

// pickSummary returns the first sentence of the first non-empty content,
// capped at limit runes with an ellipsis.
func pickSummary(contents []string, limit int) string {
	for _, text := range contents {
		cleaned := strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
		if cleaned == "" {
			continue
		}
		for _, brk := range sentenceBreaks {
			if idx := strings.Index(cleaned, brk); idx >= 0 {
				cleaned = cleaned[:idx]
				break
			}
		}
		runes := []rune(cleaned)
		if len(runes) > limit {
			return string(runes[:limit-1]) + "…"
		}
		return cleaned
	}
	return ""
}
