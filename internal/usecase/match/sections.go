package match

import (
	"regexp"
	"strings"
)

// requirementsHeader matches the section headers job postings commonly use
// for their requirements block.
var requirementsHeader = regexp.MustCompile(`(?im)^\s*(?:#+\s*)?(requirements|qualifications|what (?:you(?:'|’)?ll need|we(?:'|’)?re looking for)|must[- ]haves?|who you are|about you|your profile|skills(?: (?:&|and) experience)?)\s*:?\s*$`)

// nextHeader matches any line that looks like the start of another section,
// ending the requirements block.
var nextHeader = regexp.MustCompile(`(?im)^\s*(?:#+\s*)?(nice[- ]to[- ]haves?|bonus(?: points)?|benefits|perks|what we offer|about (?:us|the (?:role|team|company))|responsibilities|compensation|salary|how to apply|our (?:stack|values)|equal opportunity)\s*:?\s*$`)

// ExtractRequirementsSection pulls the requirements block out of a job
// description. It returns the explicit Requirements field when the job
// carries one, otherwise it scans the description for a requirements-style
// header and returns everything up to the next section header. A section
// below minChars is too short to trust as a standalone signal and is
// dropped; the caller then scores against the full description only.
func ExtractRequirementsSection(description, explicit string, minChars int) (string, bool) {
	if s := strings.TrimSpace(explicit); len(s) >= minChars {
		return s, true
	}

	loc := requirementsHeader.FindStringIndex(description)
	if loc == nil {
		return "", false
	}

	rest := description[loc[1]:]
	if end := nextHeader.FindStringIndex(rest); end != nil {
		rest = rest[:end[0]]
	}

	section := strings.TrimSpace(rest)
	if len(section) < minChars {
		return "", false
	}
	return section, true
}
