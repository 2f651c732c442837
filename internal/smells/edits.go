package smells

import (
	"sort"
	"strings"
)

// ApplyEdits splices edits into text from the bottom of the file upwards,
// so that each edit's line numbers still refer to untouched lines. Each
// edit's range collapses into a single element holding its replacement.
// Overlapping edits are not detected.
func ApplyEdits(text string, edits map[int]Edit) string {
	if len(edits) == 0 {
		return text
	}

	keys := make([]int, 0, len(edits))
	for k := range edits {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := edits[keys[i]], edits[keys[j]]
		if a.StartLine != b.StartLine {
			return a.StartLine > b.StartLine
		}
		return keys[i] > keys[j]
	})

	lines := splitLines(text)
	for _, k := range keys {
		lines = splice(lines, edits[k])
	}

	out := strings.Join(lines, "\n")
	if strings.HasSuffix(text, "\n") {
		out += "\n"
	}
	return out
}

// splice replaces lines[StartLine-1:EndLine] with the replacement. Bounds
// behave like slice assignment in a language with negative indexing: a
// negative start counts from the end and both bounds clamp to the slice.
func splice(lines []string, e Edit) []string {
	n := len(lines)
	lo := clampIndex(e.StartLine-1, n)
	hi := clampIndex(e.EndLine, n)
	if hi < lo {
		hi = lo
	}

	out := make([]string, 0, n-(hi-lo)+1)
	out = append(out, lines[:lo]...)
	out = append(out, e.Replacement)
	out = append(out, lines[hi:]...)
	return out
}

func clampIndex(i, n int) int {
	if i < 0 {
		i += n
		if i < 0 {
			return 0
		}
	}
	if i > n {
		return n
	}
	return i
}

// splitLines splits on line boundaries without producing a trailing empty
// element for a final newline.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
