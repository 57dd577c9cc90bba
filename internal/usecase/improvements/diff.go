package improvements

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// changePair is one contiguous rewrite: the words removed from the original
// resume and the words inserted in their place in the tailored one.
type changePair struct {
	original string
	improved string
}

// changePairs mines word-level rewrites between two resume texts. The texts
// are tokenized to words and diffed in line mode with one word per line,
// which keeps the diff word-aligned instead of character-aligned. A
// run-length walk then pairs each removed span with the inserted span that
// replaced it, flushing on every equal run.
func changePairs(original, tailored string) []changePair {
	origWords := strings.Join(strings.Fields(original), "\n")
	tailWords := strings.Join(strings.Fields(tailored), "\n")

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(origWords, tailWords)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var pairs []changePair
	var removed, inserted []string

	flush := func() {
		if len(removed) > 0 && len(inserted) > 0 {
			pairs = append(pairs, changePair{
				original: strings.Join(removed, " "),
				improved: strings.Join(inserted, " "),
			})
		}
		removed = removed[:0]
		inserted = inserted[:0]
	}

	for _, d := range diffs {
		words := strings.Fields(strings.ReplaceAll(d.Text, "\n", " "))
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			removed = append(removed, words...)
		case diffmatchpatch.DiffInsert:
			inserted = append(inserted, words...)
		case diffmatchpatch.DiffEqual:
			flush()
		}
	}
	flush()
	return pairs
}
