package retrieval

import (
	"strings"

	"github.com/rshaham/job-hunt-buddy/internal/domain"
)

// sectionSeparator divides context blocks in the rendered prompt context.
const sectionSeparator = "\n\n---\n\n"

// storyHeading picks the experience-section label for the task.
func storyHeading(task domain.Task) string {
	switch task {
	case domain.TaskInterviewPrep:
		return "Relevant Interview Examples"
	case domain.TaskChat:
		return "Relevant Background"
	default:
		return "Relevant Experiences"
	}
}

// FormatContext renders a retrieval result into the text block handed to
// the AI task. Stories selected by gap queries are split into their own
// section so the consumer can address weaknesses explicitly. Additional
// context and improvement guidance are appended when present.
func FormatContext(task domain.Task, res Result, additionalContext, improvementGuidance string) string {
	var blocks []string

	gapStories, otherStories := partitionByGap(res.Stories)

	if len(otherStories) > 0 {
		var b strings.Builder
		b.WriteString("## ")
		b.WriteString(storyHeading(task))
		b.WriteString("\n")
		for _, h := range otherStories {
			writeStory(&b, h.Story)
		}
		blocks = append(blocks, b.String())
	}

	if len(gapStories) > 0 {
		var b strings.Builder
		b.WriteString("## Experiences That Could Address Gaps\n")
		for _, h := range gapStories {
			writeStory(&b, h.Story)
		}
		blocks = append(blocks, b.String())
	}

	if len(res.Documents) > 0 {
		var b strings.Builder
		b.WriteString("## Supporting Documents\n")
		for _, h := range res.Documents {
			b.WriteString("\n### ")
			b.WriteString(h.Document.Name)
			b.WriteString("\n")
			b.WriteString(strings.TrimSpace(h.Document.Text()))
			b.WriteString("\n")
		}
		blocks = append(blocks, b.String())
	}

	if s := strings.TrimSpace(additionalContext); s != "" {
		blocks = append(blocks, "## Additional Context\n"+s)
	}

	if s := strings.TrimSpace(improvementGuidance); s != "" {
		blocks = append(blocks, s)
	}

	return strings.TrimSpace(strings.Join(blocks, sectionSeparator))
}

// partitionByGap splits stories found by gap queries from the rest. A story
// matched by both a gap query and another query stays in the main section.
func partitionByGap(stories []StoryHit) (gap, other []StoryHit) {
	for _, h := range stories {
		if len(h.Tags) == 1 && h.Tags[0] == domain.TagGap {
			gap = append(gap, h)
			continue
		}
		other = append(other, h)
	}
	return gap, other
}

func writeStory(b *strings.Builder, st domain.Story) {
	b.WriteString("\n### ")
	if st.Title != "" {
		b.WriteString(st.Title)
	} else {
		b.WriteString("Experience")
	}
	b.WriteString("\n")
	b.WriteString(strings.TrimSpace(st.Content))
	b.WriteString("\n")
}
