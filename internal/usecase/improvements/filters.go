package improvements

import (
	"regexp"
	"strings"
)

// flatteryPatterns match tailoring that only flatters the specific employer
// and teaches nothing reusable.
var flatteryPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bperfect (fit|match) for\b`),
	regexp.MustCompile(`(?i)\bdream (job|company|role)\b`),
	regexp.MustCompile(`(?i)\bideal candidate\b`),
	regexp.MustCompile(`(?i)\bexcited (to join|about joining)\b`),
	regexp.MustCompile(`(?i)\bpassionate about (joining|your)\b`),
}

// filterPolicy decides which mined rewrites generalize beyond the job they
// were written for.
type filterPolicy struct {
	minChangeChars    int
	similarityCeiling float64
}

// keep reports whether a rewrite is worth presenting as reusable guidance.
// company is the employer the tailored resume targeted.
func (p filterPolicy) keep(pair changePair, company string) bool {
	// Too small to carry a lesson.
	if len(pair.original) < p.minChangeChars || len(pair.improved) < p.minChangeChars {
		return false
	}
	// Cuts are tailoring noise, not improvements.
	if len(pair.improved) < len(pair.original) {
		return false
	}
	// Near-identical spans are formatting churn.
	if tokenOverlap(pair.original, pair.improved) >= p.similarityCeiling {
		return false
	}
	// Naming the employer makes the rewrite job-specific.
	if company != "" && introducesTerm(pair.original, pair.improved, company) {
		return false
	}
	for _, re := range flatteryPatterns {
		if re.MatchString(pair.improved) {
			return false
		}
	}
	return true
}

// tokenOverlap is the Jaccard similarity of the two texts' lowercase token
// sets.
func tokenOverlap(a, b string) float64 {
	as := tokenSet(a)
	bs := tokenSet(b)
	if len(as) == 0 || len(bs) == 0 {
		return 0
	}
	inter := 0
	for t := range as {
		if bs[t] {
			inter++
		}
	}
	union := len(as) + len(bs) - inter
	return float64(inter) / float64(union)
}

// introducesTerm reports whether any token of term appears in improved but
// not in original.
func introducesTerm(original, improved, term string) bool {
	origTokens := tokenSet(original)
	imprTokens := tokenSet(improved)
	for _, t := range strings.Fields(strings.ToLower(term)) {
		t = strings.Trim(t, ".,;:!?()\"'")
		if t == "" {
			continue
		}
		if imprTokens[t] && !origTokens[t] {
			return true
		}
	}
	return false
}

func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range strings.Fields(strings.ToLower(text)) {
		t = strings.Trim(t, ".,;:!?()\"'")
		if t != "" {
			set[t] = true
		}
	}
	return set
}
