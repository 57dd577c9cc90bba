package domain

// ImprovementType classifies a mined resume change.
type ImprovementType string

const (
	// ImprovementPhrasing is the default class: reworded or strengthened language.
	ImprovementPhrasing ImprovementType = "phrasing"
	// ImprovementQuantification marks new numeric or metric content.
	ImprovementQuantification ImprovementType = "quantification"
	// ImprovementSkillDescription marks a denser, longer technical description.
	ImprovementSkillDescription ImprovementType = "skill_description"
)

// Improvement is one reusable phrasing change mined from a past AI-tailored
// resume. Original and Improved are both non-trivial in length and are not
// near-duplicates of each other; pairs failing that are discarded as noise.
type Improvement struct {
	Type      ImprovementType
	Original  string
	Improved  string
	SourceJob string // job ID the change was mined from
}
