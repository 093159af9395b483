package termgraph

import "strings"

// SplitCodes decomposes an upstream comma-joined code string into its
// distinct codes, preserving upstream order. Empty segments and surrounding
// whitespace are dropped.
func SplitCodes(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	codes := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		code := strings.TrimSpace(part)
		if code == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	return codes
}

// JoinCodes reassembles bridge-row codes into the legacy comma-joined form.
func JoinCodes(codes []string) string {
	return strings.Join(codes, ",")
}

// SplitIDs splits a comma-joined upstream ID field. Some listing records
// carry several MST values in one ID ("L10,L11"); each one is addressable
// on the service endpoints individually.
func SplitIDs(raw string) []string {
	return SplitCodes(strings.ReplaceAll(raw, " ", ""))
}
