package improvements

import (
	"regexp"
	"strings"

	"github.com/rshaham/job-hunt-buddy/internal/domain"
)

var numericToken = regexp.MustCompile(`\d`)

// techToken matches tokens that read like technology names: acronyms,
// CamelCase identifiers, and tokens carrying digits or symbols (k8s, C++,
// node.js).
var techToken = regexp.MustCompile(`^([A-Z]{2,}|[A-Z][a-z]+[A-Z]\w*|\w*[0-9+#]\w*|\w+\.(js|io|py|rb))$`)

// expansionRatio is how much longer a rewrite must be before extra tech
// terms read as a deeper skill description rather than rephrasing.
const expansionRatio = 1.25

// classify buckets a rewrite by what it teaches. New numbers mean the edit
// quantified an achievement; a clearly longer span with more technology
// terms means the skill was described in more depth; anything else is
// phrasing.
func classify(pair changePair) domain.ImprovementType {
	if hasNewNumbers(pair.original, pair.improved) {
		return domain.ImprovementQuantification
	}

	origWords := strings.Fields(pair.original)
	imprWords := strings.Fields(pair.improved)
	if float64(len(imprWords)) >= expansionRatio*float64(len(origWords)) &&
		countTechTokens(imprWords) > countTechTokens(origWords) {
		return domain.ImprovementSkillDescription
	}

	return domain.ImprovementPhrasing
}

// hasNewNumbers reports whether improved carries numeric tokens absent from
// original.
func hasNewNumbers(original, improved string) bool {
	origNums := make(map[string]bool)
	for _, t := range strings.Fields(original) {
		if numericToken.MatchString(t) {
			origNums[strings.Trim(t, ".,;:!?()")] = true
		}
	}
	for _, t := range strings.Fields(improved) {
		if !numericToken.MatchString(t) {
			continue
		}
		if !origNums[strings.Trim(t, ".,;:!?()")] {
			return true
		}
	}
	return false
}

func countTechTokens(words []string) int {
	n := 0
	for _, w := range words {
		if techToken.MatchString(strings.Trim(w, ".,;:!?()")) {
			n++
		}
	}
	return n
}
