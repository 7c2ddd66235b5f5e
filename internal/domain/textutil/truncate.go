// Package textutil holds small text helpers shared by the domain packages.
package textutil

// Truncate returns the first limit characters of s. Limits count runes, so a cut never
// splits a multi-byte character.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}
