package utils

func AssertInvariant(condition bool, message string) {
	if !condition {
		panic("invariant violated - " + message)
	}
}

// TruncateRunes shortens s to at most limit runes, replacing the tail with an ellipsis
// when something had to be cut. Discord counts embed limits in characters, not bytes.
func TruncateRunes(s string, limit int) string {
	AssertInvariant(limit > 3, "truncation limit must leave room for the ellipsis")

	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}
