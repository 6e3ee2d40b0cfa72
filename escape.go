// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package docx2md

import (
	"regexp"
	"strings"
)

var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	">", `\>`,
	"|", `\|`,
	"~", `\~`,
	"&", `\&`,
	"\r", "",
	"\n", " ",
)

// escapeText backslash-escapes characters that would otherwise start inline
// Markdown syntax.
func escapeText(s string) string {
	return textEscaper.Replace(s)
}

var reOrderedMarker = regexp.MustCompile(`^(\d{1,9})([.)])`)

// escapeLineStart escapes block syntax at the start of every line of a
// rendered paragraph: ATX headings, bullets, setext underlines and ordered
// list markers. Leading indentation is dropped.
func escapeLineStart(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		line = strings.TrimLeft(line, " \t")
		if line != "" {
			switch line[0] {
			case '#', '+', '-', '=':
				line = `\` + line
			default:
				line = reOrderedMarker.ReplaceAllString(line, `$1\$2`)
			}
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

// codeSpan wraps s in a backtick fence one longer than its longest backtick run.
func codeSpan(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	fence := strings.Repeat("`", longestRun(s, '`')+1)
	if strings.HasPrefix(s, "`") || strings.HasSuffix(s, "`") {
		s = " " + s + " "
	}
	return fence + s + fence
}

func longestRun(s string, c byte) int {
	best, cur := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			cur++
			best = max(best, cur)
		} else {
			cur = 0
		}
	}
	return best
}

var urlEscaper = strings.NewReplacer(" ", "%20", "(", "%28", ")", "%29", "<", "%3C", ">", "%3E")

func escapeURL(s string) string {
	return urlEscaper.Replace(strings.TrimSpace(s))
}
