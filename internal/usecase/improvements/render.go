package improvements

import (
	"strings"

	"github.com/rshaham/job-hunt-buddy/internal/domain"
)

var typeHeadings = map[domain.ImprovementType]string{
	domain.ImprovementQuantification:   "Quantified achievements",
	domain.ImprovementSkillDescription: "Deeper skill descriptions",
	domain.ImprovementPhrasing:         "Stronger phrasing",
}

var typeOrder = []domain.ImprovementType{
	domain.ImprovementQuantification,
	domain.ImprovementSkillDescription,
	domain.ImprovementPhrasing,
}

// Render lays out mined improvements as guidance text: grouped by class,
// each rewrite shown as an original/improved bullet pair, framed as
// precedent to adapt rather than text to copy.
func Render(imps []domain.Improvement) string {
	if len(imps) == 0 {
		return ""
	}

	byType := make(map[domain.ImprovementType][]domain.Improvement)
	for _, imp := range imps {
		byType[imp.Type] = append(byType[imp.Type], imp)
	}

	var b strings.Builder
	b.WriteString("## Resume Guidance From Past Tailoring\n")
	b.WriteString("These rewrites worked in earlier applications. Adapt the pattern, not the wording.\n")

	for _, t := range typeOrder {
		group := byType[t]
		if len(group) == 0 {
			continue
		}
		b.WriteString("\n### ")
		b.WriteString(typeHeadings[t])
		b.WriteString("\n")
		for _, imp := range group {
			b.WriteString("- \"")
			b.WriteString(imp.Original)
			b.WriteString("\" was improved to \"")
			b.WriteString(imp.Improved)
			b.WriteString("\"\n")
		}
	}
	return strings.TrimSpace(b.String())
}
