package comments

import "strings"

// cleanComment strips comment delimiters and decoration from the raw text of
// one comment node and folds it onto a single line.
func cleanComment(raw string) string {
	s := strings.TrimSpace(raw)

	switch {
	case strings.HasPrefix(s, "=begin"):
		s = strings.TrimPrefix(s, "=begin")
		s = strings.TrimSuffix(strings.TrimSpace(s), "=end")
	case strings.HasPrefix(s, "/*"):
		s = strings.TrimPrefix(s, "/*")
		s = strings.TrimSuffix(s, "*/")
		s = strings.TrimLeft(s, "*!")
	case strings.HasPrefix(s, "//"):
		s = strings.TrimLeft(s, "/!")
	case strings.HasPrefix(s, "#"):
		s = strings.TrimLeft(s, "#")
	default:
		s = trimStringLiteral(s)
	}

	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(strings.TrimLeft(line, "*"))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, " ")
}

// trimStringLiteral removes the prefix and quotes of a Python string literal.
func trimStringLiteral(s string) string {
	s = strings.TrimLeft(s, "rRuUbBfF")
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2*len(q) {
			return s[len(q) : len(s)-len(q)]
		}
	}
	return s
}
