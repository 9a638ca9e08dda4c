package formatter

import "strings"

func splitLines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}

func indexOf(s, sub string) int {
	return strings.Index(s, sub)
}
