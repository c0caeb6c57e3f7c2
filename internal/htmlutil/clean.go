package htmlutil

import (
	"strings"

	"github.com/k3a/html2text"
)

// ToText converts a rendered HTML page to readable plain text.
// Images are dropped; runs of blank lines are collapsed.
func ToText(s string) string {
	text := html2text.HTML2Text(s)
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, l := range lines {
		l = strings.TrimRight(l, " \t\r")
		if l == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, l)
	}
	return strings.TrimSpace(strings.Join(out, "\n")) + "\n"
}
