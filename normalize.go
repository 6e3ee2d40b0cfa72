package docx2md

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	reCRLF  = regexp.MustCompile(`\r\n?`)
	reFence = regexp.MustCompile("^(`{3,}|~{3,})")
)

// normalizeOutput tidies the Markdown of a whole conversion. Invalid UTF-8
// and control characters other than newline and tab are dropped and line
// endings become LF. Outside fenced code, trailing blanks are trimmed and
// runs of blank lines shrink to one; fenced lines are kept as rendered.
// Non-empty output ends in a single newline.
func normalizeOutput(s string) string {
	s = strings.ToValidUTF8(s, "")
	s = reCRLF.ReplaceAllString(s, "\n")
	s = strings.Map(func(r rune) rune {
		if r != '\n' && r != '\t' && unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)

	var (
		out   []string
		fence string
		blank bool
	)
	for _, line := range strings.Split(s, "\n") {
		if fence != "" {
			out = append(out, line)
			if closesFence(line, fence) {
				fence = ""
			}
			continue
		}
		line = strings.TrimRight(line, " \t")
		if line == "" && blank {
			continue
		}
		blank = line == ""
		fence = reFence.FindString(line)
		out = append(out, line)
	}

	s = strings.Trim(strings.Join(out, "\n"), "\n")
	if s == "" {
		return ""
	}
	return s + "\n"
}

// closesFence reports whether line ends a block opened by fence: the same
// character, at least as many times, and nothing else.
func closesFence(line, fence string) bool {
	line = strings.TrimRight(line, " \t")
	return strings.HasPrefix(line, fence) && strings.Trim(line, fence[:1]) == ""
}
