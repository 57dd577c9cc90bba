package retrieval

import (
	"strings"
	"testing"

	"github.com/rshaham/job-hunt-buddy/internal/domain"
)

func TestFormatContext_GapStoriesGetOwnSection(t *testing.T) {
	res := Result{
		UsedSemanticSearch: true,
		Stories: []StoryHit{
			{Story: domain.Story{Title: "Scaling", Content: "scaled it"}, Tags: []domain.SourceTag{domain.TagRequirement}},
			{Story: domain.Story{Title: "AWS Move", Content: "moved to AWS"}, Tags: []domain.SourceTag{domain.TagGap}},
		},
	}

	out := FormatContext(domain.TaskCoverLetter, res, "", "")
	if !strings.Contains(out, "## Relevant Experiences") {
		t.Error("main experience section missing")
	}
	if !strings.Contains(out, "## Experiences That Could Address Gaps") {
		t.Error("gap section missing")
	}
	gapAt := strings.Index(out, "Experiences That Could Address Gaps")
	if awsAt := strings.Index(out, "moved to AWS"); awsAt < gapAt {
		t.Error("gap-only story must render inside the gap section")
	}
}

func TestFormatContext_TaskHeadings(t *testing.T) {
	res := Result{Stories: []StoryHit{{Story: domain.Story{Title: "T", Content: "c"}}}}

	if out := FormatContext(domain.TaskInterviewPrep, res, "", ""); !strings.Contains(out, "Relevant Interview Examples") {
		t.Error("interview prep heading missing")
	}
	if out := FormatContext(domain.TaskChat, res, "", ""); !strings.Contains(out, "Relevant Background") {
		t.Error("chat heading missing")
	}
}

func TestFormatContext_DocumentUsesSummary(t *testing.T) {
	res := Result{Documents: []DocumentHit{{
		Document: domain.Document{Name: "perf.pdf", Content: "full body", Summary: "short take", UseSummary: true},
	}}}

	out := FormatContext(domain.TaskCoverLetter, res, "", "")
	if strings.Contains(out, "full body") || !strings.Contains(out, "short take") {
		t.Errorf("summary-mode document rendered wrong: %q", out)
	}
}

func TestFormatContext_TrailingSections(t *testing.T) {
	out := FormatContext(domain.TaskChat, Result{}, "I prefer remote roles.", "## Resume Guidance\n- a thing")
	if !strings.Contains(out, "## Additional Context\nI prefer remote roles.") {
		t.Error("additional context section missing")
	}
	if !strings.Contains(out, "## Resume Guidance") {
		t.Error("improvement guidance must be appended verbatim")
	}

	if FormatContext(domain.TaskChat, Result{}, "", "") != "" {
		t.Error("empty inputs must render empty context")
	}
}
