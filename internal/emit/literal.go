package emit

import "strings"

var commentReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// Quote renders s as a single-quoted SQL string literal.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Comment makes s safe to place after "--" on a single line.
func Comment(s string) string {
	return commentReplacer.Replace(s)
}
