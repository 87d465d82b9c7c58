package sqlite

import "strings"

// isFTSQueryError reports whether err came from a malformed MATCH expression.
func isFTSQueryError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "fts5: syntax error") ||
		strings.Contains(msg, "unterminated string") ||
		strings.Contains(msg, "no such column")
}
