package cliutil

import (
	"strings"
)

// Wrap wraps the string `s` to a maximum width `w`.  Pass `w` == 0 to do no
// wrapping.
//
// In order to have some room for slop to avoid things like a short word
// being on a line by itself, most lines are actually wrapped to `w - 5`.
func Wrap(w int, s string) string {
	return wrap(0, w, s)
}

// WrapIndent wraps the string `s` to a maximum width `w` with leading indent
// `i`.  The first line is not indented (this is assumed to be done by the
// caller).
func WrapIndent(i, w int, s string) string {
	return wrap(i, w, s)
}

func wrap(indent, width int, s string) string {
	if width <= 0 {
		return s
	}
	softWidth := width - 5
	if softWidth <= indent {
		softWidth = width
	}

	var out strings.Builder
	prefix := strings.Repeat(" ", indent)
	for i, paragraph := range strings.Split(s, "\n\n") {
		if i > 0 {
			out.WriteString("\n\n")
		}
		col := indent
		first := true
		for _, word := range strings.Fields(paragraph) {
			switch {
			case first:
				out.WriteString(word)
				col = indent + len(word)
				first = false
			case col+1+len(word) > softWidth:
				out.WriteString("\n")
				out.WriteString(prefix)
				out.WriteString(word)
				col = indent + len(word)
			default:
				out.WriteString(" ")
				out.WriteString(word)
				col += 1 + len(word)
			}
		}
	}
	return out.String()
}
