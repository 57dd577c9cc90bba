package improvements

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/rshaham/job-hunt-buddy/internal/domain"
	"github.com/rshaham/job-hunt-buddy/internal/store"
)

const (
	resumePrefix = "Experienced software engineer with strong background. "
	resumeSuffix = " Committed to quality and collaboration."
)

type fakeContent struct {
	settings store.Settings
	jobs     []domain.Job
}

func (f *fakeContent) Settings(context.Context) (store.Settings, error) { return f.settings, nil }
func (f *fakeContent) Jobs(context.Context) ([]domain.Job, error)       { return f.jobs, nil }

func testOpts() Options {
	return Options{MaxJobsWindow: 5, MinChangeChars: 20, SimilarityCeiling: 0.8, MaxResults: 10}
}

func newService(jobs []domain.Job, settings store.Settings) *Service {
	return New(&fakeContent{settings: settings, jobs: jobs}, testOpts(), zap.NewNop())
}

// resume wraps a changed span in shared context so the word diff isolates
// exactly that span.
func resume(span string) string {
	return resumePrefix + span + resumeSuffix
}

func TestExtract_IdenticalResumes(t *testing.T) {
	text := resume("Maintained the billing pipeline")
	svc := newService([]domain.Job{
		{ID: "j1", OriginalResume: text, TailoredResume: text},
	}, store.Settings{})

	imps, err := svc.Extract(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(imps) != 0 {
		t.Errorf("identical resumes must yield nothing, got %+v", imps)
	}
}

func TestExtract_ClassifiesQuantification(t *testing.T) {
	svc := newService([]domain.Job{{
		ID:             "j1",
		OriginalResume: resume("Reduced costs significantly through automation efforts"),
		TailoredResume: resume("Cut infrastructure spend 40% by automating deployment checks"),
	}}, store.Settings{})

	imps, err := svc.Extract(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(imps) != 1 {
		t.Fatalf("expected 1 improvement, got %d: %+v", len(imps), imps)
	}
	if imps[0].Type != domain.ImprovementQuantification {
		t.Errorf("new numbers must classify as quantification, got %s", imps[0].Type)
	}
	if imps[0].SourceJob != "j1" {
		t.Errorf("source job not recorded: %+v", imps[0])
	}
}

func TestExtract_ClassifiesSkillDescription(t *testing.T) {
	svc := newService([]domain.Job{{
		ID:             "j1",
		OriginalResume: resume("Worked on backend services"),
		TailoredResume: resume("Architected MySQL and GraphQL microservices using TypeScript tooling daily"),
	}}, store.Settings{})

	imps, err := svc.Extract(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(imps) != 1 {
		t.Fatalf("expected 1 improvement, got %d: %+v", len(imps), imps)
	}
	if imps[0].Type != domain.ImprovementSkillDescription {
		t.Errorf("longer, denser tech span must classify as skill_description, got %s", imps[0].Type)
	}
}

func TestExtract_ClassifiesPhrasing(t *testing.T) {
	svc := newService([]domain.Job{{
		ID:             "j1",
		OriginalResume: resume("Responsible for handling customer tickets often"),
		TailoredResume: resume("Resolved escalated client issues within strict response deadlines"),
	}}, store.Settings{})

	imps, err := svc.Extract(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(imps) != 1 {
		t.Fatalf("expected 1 improvement, got %d: %+v", len(imps), imps)
	}
	if imps[0].Type != domain.ImprovementPhrasing {
		t.Errorf("default class is phrasing, got %s", imps[0].Type)
	}
}

func TestExtract_DiscardsCompanyNameInsertion(t *testing.T) {
	svc := newService([]domain.Job{{
		ID:             "j1",
		Company:        "Acme",
		OriginalResume: resume("Created reporting tools for analysts"),
		TailoredResume: resume("Delivered Acme focused dashboards impressing executive stakeholders"),
	}}, store.Settings{})

	imps, err := svc.Extract(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(imps) != 0 {
		t.Errorf("rewrites naming the employer are job-specific, got %+v", imps)
	}
}

func TestExtract_DiscardsFlattery(t *testing.T) {
	svc := newService([]domain.Job{{
		ID:             "j1",
		OriginalResume: resume("Managed various operational responsibilities"),
		TailoredResume: resume("A perfect fit for this challenging position clearly"),
	}}, store.Settings{})

	imps, err := svc.Extract(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(imps) != 0 {
		t.Errorf("flattery phrases must be discarded, got %+v", imps)
	}
}

func TestExtract_DiscardsShrinkage(t *testing.T) {
	svc := newService([]domain.Job{{
		ID:             "j1",
		OriginalResume: resume("Coordinated several interdepartmental planning initiatives successfully every quarter"),
		TailoredResume: resume("Streamlined recurring organizational rituals"),
	}}, store.Settings{})

	imps, err := svc.Extract(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(imps) != 0 {
		t.Errorf("spans that shrink are cuts, not improvements, got %+v", imps)
	}
}

func TestExtract_DedupAcrossJobs(t *testing.T) {
	orig := resume("Reduced costs significantly through automation efforts")
	tailored := resume("Cut infrastructure spend 40% by automating deployment checks")
	svc := newService([]domain.Job{
		{ID: "j1", OriginalResume: orig, TailoredResume: tailored},
		{ID: "j2", OriginalResume: orig, TailoredResume: tailored},
	}, store.Settings{})

	imps, err := svc.Extract(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(imps) != 1 {
		t.Errorf("identical rewrites across jobs must deduplicate, got %d", len(imps))
	}
}

func TestExtract_ExcludesCurrentJobAndUsesBaseline(t *testing.T) {
	tailored := resume("Cut infrastructure spend 40% by automating deployment checks")
	baseline := resume("Reduced costs significantly through automation efforts")
	svc := newService([]domain.Job{
		{ID: "current", OriginalResume: baseline, TailoredResume: tailored},
		{ID: "past", TailoredResume: tailored}, // no snapshot, falls back to baseline
	}, store.Settings{ResumeText: baseline})

	imps, err := svc.Extract(context.Background(), "current")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(imps) != 1 {
		t.Fatalf("expected 1 improvement mined from the past job, got %d", len(imps))
	}
	if imps[0].SourceJob != "past" {
		t.Errorf("current job must not feed its own guidance, got source %s", imps[0].SourceJob)
	}
}

func TestExtract_WindowLimitsJobs(t *testing.T) {
	newer := domain.Job{
		ID:             "newer",
		OriginalResume: resume("Reduced costs significantly through automation efforts"),
		TailoredResume: resume("Cut infrastructure spend 40% by automating deployment checks"),
	}
	older := domain.Job{
		ID:             "older",
		OriginalResume: resume("Responsible for handling customer tickets often"),
		TailoredResume: resume("Resolved escalated client issues within strict response deadlines"),
	}

	opts := testOpts()
	opts.MaxJobsWindow = 1
	svc := New(&fakeContent{jobs: []domain.Job{newer, older}}, opts, zap.NewNop())

	imps, err := svc.Extract(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, imp := range imps {
		if imp.SourceJob == "older" {
			t.Error("jobs outside the window must not be mined")
		}
	}
}

func TestRender_GroupsByType(t *testing.T) {
	out := Render([]domain.Improvement{
		{Type: domain.ImprovementPhrasing, Original: "did things", Improved: "delivered outcomes"},
		{Type: domain.ImprovementQuantification, Original: "cut costs", Improved: "cut costs 30%"},
	})

	quantAt := strings.Index(out, "Quantified achievements")
	phraseAt := strings.Index(out, "Stronger phrasing")
	if quantAt < 0 || phraseAt < 0 {
		t.Fatalf("missing group headings: %q", out)
	}
	if quantAt > phraseAt {
		t.Error("quantification group renders first")
	}
	if !strings.Contains(out, `"cut costs" was improved to "cut costs 30%"`) {
		t.Errorf("bullet format wrong: %q", out)
	}

	if Render(nil) != "" {
		t.Error("no improvements means no guidance text")
	}
}
