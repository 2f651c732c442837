package report

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffStats counts changed lines between two texts.
type DiffStats struct {
	Added   int `json:"added"`
	Removed int `json:"removed"`
}

func lineDiffs(original, optimized string) []diffmatchpatch.Diff {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(original, optimized)
	diffs := dmp.DiffMain(a, b, false)
	return dmp.DiffCharsToLines(diffs, lines)
}

// splitDiffText splits a diff chunk into lines without their terminators.
func splitDiffText(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

// Diff renders a line diff of original against optimized. Every line of
// both texts is listed, prefixed with ' ', '-' or '+'. Identical texts
// produce an empty string.
func Diff(name, original, optimized string) string {
	if original == optimized {
		return ""
	}

	var b strings.Builder
	b.WriteString("--- " + name + "\n")
	b.WriteString("+++ optimized_" + name + "\n")
	for _, d := range lineDiffs(original, optimized) {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		}
		for _, line := range splitDiffText(d.Text) {
			b.WriteString(prefix + line + "\n")
		}
	}
	return b.String()
}

// Stats returns how many lines the rewrite added and removed.
func Stats(original, optimized string) DiffStats {
	var stats DiffStats
	for _, d := range lineDiffs(original, optimized) {
		n := len(splitDiffText(d.Text))
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			stats.Removed += n
		case diffmatchpatch.DiffInsert:
			stats.Added += n
		}
	}
	return stats
}
