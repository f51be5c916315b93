package translate

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"golang.org/x/time/rate"

	"seogen/internal/engine"
	"seogen/internal/models"
	"seogen/internal/provider"
	"seogen/internal/testutil"
)

const baseHTML = `<h1>Premier League</h1><p>Arsenal lead the table.</p>`

// fakeBackend answers per target language name.
type fakeBackend struct {
	mu      sync.Mutex
	answers map[string]string
	errs    map[string]error
	calls   []string
	onCall  func()
}

func (b *fakeBackend) Translate(_ context.Context, html, source, target string) (string, error) {
	b.mu.Lock()
	b.calls = append(b.calls, source+">"+target)
	b.mu.Unlock()
	if b.onCall != nil {
		b.onCall()
	}
	if err, ok := b.errs[target]; ok {
		return "", err
	}
	if a, ok := b.answers[target]; ok {
		return a, nil
	}
	return html, nil
}

type fixture struct {
	fan      *FanOut
	contents *testutil.ContentStore
	langs    *testutil.LanguageStore
	backend  *fakeBackend
	reports  *testutil.ReportStore
}

func newFixture(t *testing.T, withBase bool) *fixture {
	t.Helper()
	var seed []models.Content
	if withBase {
		seed = append(seed, models.Content{
			PageType: models.PageTypeLeagueStandings, EntityID: "39", Language: "en", SEOText: baseHTML,
		})
	}
	contents := testutil.NewContentStore(seed...)
	langs := &testutil.LanguageStore{Languages: testutil.DefaultLanguages()}
	backend := &fakeBackend{answers: map[string]string{
		"Spanish": `<h1>Premier League</h1><p>El Arsenal lidera la tabla.</p>`,
		"German":  "```html\n<h1>Premier League</h1><p>Arsenal führt die Tabelle an.</p>\n```",
	}}
	reports := testutil.NewReportStore()

	fan := New(langs, contents, backend)
	fan.SetReportSink(reports)
	return &fixture{fan: fan, contents: contents, langs: langs, backend: backend, reports: reports}
}

func TestRun(t *testing.T) {
	f := newFixture(t, true)

	report, err := f.fan.Run(context.Background(), models.PageTypeLeagueStandings, "39")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Processed != 2 || report.Succeeded != 2 || report.Failed != 0 {
		t.Errorf("report = %+v", report)
	}
	if report.BaseLanguage != "en" {
		t.Errorf("BaseLanguage = %q", report.BaseLanguage)
	}

	es, _ := f.contents.Find(context.Background(), models.PageTypeLeagueStandings, "39", "es")
	if es == nil || !strings.Contains(es.SEOText, "El Arsenal") || es.Status != models.ContentStatusOK {
		t.Errorf("es row = %+v", es)
	}
	de, _ := f.contents.Find(context.Background(), models.PageTypeLeagueStandings, "39", "de")
	if de == nil || strings.Contains(de.SEOText, "```") || !strings.HasPrefix(de.SEOText, "<h1>") {
		t.Errorf("de row not unfenced: %+v", de)
	}

	if got := strings.Join(f.backend.calls, ","); got != "English>Spanish,English>German" {
		t.Errorf("calls = %s, want registry order", got)
	}
	if f.reports.Translations["league-standings/39"] == nil {
		t.Error("report not saved")
	}
}

func TestRunFallbackOnFailure(t *testing.T) {
	f := newFixture(t, true)
	f.backend.errs = map[string]error{"Spanish": errors.New("quota exceeded")}
	f.backend.answers["German"] = "   "

	report, err := f.fan.Run(context.Background(), models.PageTypeLeagueStandings, "39")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Processed != 2 || report.Failed != 2 || report.Succeeded != 0 {
		t.Errorf("report = %+v", report)
	}

	for _, lang := range []struct{ code, name string }{{"es", "Spanish"}, {"de", "German"}} {
		row, _ := f.contents.Find(context.Background(), models.PageTypeLeagueStandings, "39", lang.code)
		if row == nil {
			t.Fatalf("%s row missing", lang.code)
		}
		if row.SEOText != Fallback(lang.name, baseHTML) {
			t.Errorf("%s text = %q", lang.code, row.SEOText)
		}
		if row.Status != models.ContentStatusFailed {
			t.Errorf("%s status = %q, want failed", lang.code, row.Status)
		}
	}
	if report.Outcomes[0].Error == "" {
		t.Error("failed outcome has no error")
	}
}

func TestRunWritesOneRowPerTarget(t *testing.T) {
	f := newFixture(t, true)
	f.langs.Languages = append(f.langs.Languages,
		models.Language{Code: "fr", Name: "French", IsActive: true, Position: 4},
		models.Language{Code: "it", Name: "Italian", IsActive: true, Position: 5},
		models.Language{Code: "pt", Name: "Portuguese", IsActive: false, Position: 6},
	)
	f.backend.errs = map[string]error{"French": errors.New("boom")}

	report, err := f.fan.Run(context.Background(), models.PageTypeLeagueStandings, "39")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Processed != 4 {
		t.Errorf("Processed = %d, want 4", report.Processed)
	}
	rows, _ := f.contents.ListByEntity(context.Background(), models.PageTypeLeagueStandings, "39")
	if len(rows) != 5 {
		t.Errorf("rows = %d, want base + 4 targets", len(rows))
	}
	if row, _ := f.contents.Find(context.Background(), models.PageTypeLeagueStandings, "39", "pt"); row != nil {
		t.Error("inactive language was written")
	}
}

func TestRunMissingBase(t *testing.T) {
	f := newFixture(t, false)

	_, err := f.fan.Run(context.Background(), models.PageTypeLeagueStandings, "39")
	if !errors.Is(err, engine.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if f.contents.Writes() != 0 {
		t.Errorf("writes = %d, want 0", f.contents.Writes())
	}
	if len(f.backend.calls) != 0 {
		t.Errorf("backend called %d times", len(f.backend.calls))
	}
}

func TestRunNoDefaultLanguage(t *testing.T) {
	f := newFixture(t, true)
	for i := range f.langs.Languages {
		f.langs.Languages[i].IsDefault = false
	}
	if _, err := f.fan.Run(context.Background(), models.PageTypeLeagueStandings, "39"); !errors.Is(err, engine.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRunOnlyBaseLanguage(t *testing.T) {
	f := newFixture(t, true)
	f.langs.Languages = f.langs.Languages[:1]

	report, err := f.fan.Run(context.Background(), models.PageTypeLeagueStandings, "39")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Processed != 0 || f.contents.Writes() != 0 {
		t.Errorf("processed = %d writes = %d, want 0/0", report.Processed, f.contents.Writes())
	}
}

func TestRunValidation(t *testing.T) {
	f := newFixture(t, true)
	if _, err := f.fan.Run(context.Background(), models.PageTypeLeagueStandings, " "); !errors.Is(err, engine.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
	if _, err := f.fan.Run(context.Background(), "match-report", "1"); !errors.Is(err, provider.ErrUnsupportedPageType) {
		t.Errorf("err = %v, want ErrUnsupportedPageType", err)
	}
}

func TestRunCancelledWritesNothing(t *testing.T) {
	f := newFixture(t, true)
	ctx, cancel := context.WithCancel(context.Background())
	f.backend.onCall = cancel

	_, err := f.fan.Run(ctx, models.PageTypeLeagueStandings, "39")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if f.contents.Writes() != 0 {
		t.Errorf("writes = %d, want 0", f.contents.Writes())
	}
}

func TestRunBatchError(t *testing.T) {
	f := newFixture(t, true)
	f.contents.BatchErr = errors.New("tx aborted")

	if _, err := f.fan.Run(context.Background(), models.PageTypeLeagueStandings, "39"); err == nil {
		t.Error("expected error")
	}
	if f.reports.Translations["league-standings/39"] != nil {
		t.Error("report saved for a failed write")
	}
}

// cancellingStore cancels the run right after the batch commits.
type cancellingStore struct {
	*testutil.ContentStore
	cancel context.CancelFunc
}

func (s cancellingStore) UpsertBatch(ctx context.Context, items []models.Content) error {
	err := s.ContentStore.UpsertBatch(ctx, items)
	s.cancel()
	return err
}

// ctxSink records the context state a report is saved under.
type ctxSink struct {
	err   error
	saved *models.TranslationReport
}

func (s *ctxSink) SaveTranslationReport(ctx context.Context, r *models.TranslationReport) error {
	s.err = ctx.Err()
	s.saved = r
	return s.err
}

func TestRunReportSavedAfterCancel(t *testing.T) {
	f := newFixture(t, true)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := &ctxSink{}
	fan := New(f.langs, cancellingStore{ContentStore: f.contents, cancel: cancel}, f.backend)
	fan.SetReportSink(sink)

	report, err := fan.Run(ctx, models.PageTypeLeagueStandings, "39")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ctx.Err() == nil {
		t.Fatal("context was not cancelled by the batch write")
	}
	if sink.saved != report {
		t.Error("report not handed to the sink")
	}
	if sink.err != nil {
		t.Errorf("report saved under a cancelled context: %v", sink.err)
	}
}

func TestRunLanguageListError(t *testing.T) {
	f := newFixture(t, true)
	f.langs.Err = errors.New("db down")
	if _, err := f.fan.Run(context.Background(), models.PageTypeLeagueStandings, "39"); err == nil {
		t.Error("expected error")
	}
}

func TestSetRate(t *testing.T) {
	f := newFixture(t, true)
	f.fan.SetRate(1000)

	report, err := f.fan.Run(context.Background(), models.PageTypeLeagueStandings, "39")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Processed != 2 {
		t.Errorf("Processed = %d", report.Processed)
	}
	f.fan.SetRate(0)
	if f.fan.limiter.Limit() != rate.Inf {
		t.Errorf("limit = %v, want Inf", f.fan.limiter.Limit())
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"<p>a</p>", "<p>a</p>"},
		{"  <p>a</p>\n", "<p>a</p>"},
		{"```html\n<p>a</p>\n```", "<p>a</p>"},
		{"```\n<p>a</p>\n```\n", "<p>a</p>"},
		{"```<p>a</p>```", "<p>a</p>"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := StripFences(tt.in); got != tt.want {
			t.Errorf("StripFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMarkupPreserved(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"same tags", "<p>Hello <b>world</b></p>", "<p>Hola <b>mundo</b></p>", true},
		{"attribute values may differ", `<a href="/x">x</a>`, `<a href="/y">y</a>`, true},
		{"dropped tag", "<p>Hello <b>world</b></p>", "<p>Hola mundo</p>", false},
		{"reordered", "<h1>a</h1><p>b</p>", "<p>b</p><h1>a</h1>", false},
		{"self closing", "a<br/>b", "a<br/>b", true},
		{"plain text", "hello", "hola", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MarkupPreserved(tt.a, tt.b); got != tt.want {
				t.Errorf("MarkupPreserved = %v, want %v", got, tt.want)
			}
		})
	}
}

type fakeGenerator struct {
	system, user string
	out          string
	err          error
}

func (g *fakeGenerator) Generate(_ context.Context, system, user string) (string, error) {
	g.system, g.user = system, user
	return g.out, g.err
}

func TestAIBackend(t *testing.T) {
	gen := &fakeGenerator{out: "<p>Hola</p>"}
	b := NewAIBackend(gen)

	got, err := b.Translate(context.Background(), "<p>Hello</p>", "English", "Spanish")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "<p>Hola</p>" {
		t.Errorf("got %q", got)
	}
	if gen.user != "<p>Hello</p>" {
		t.Errorf("user prompt = %q", gen.user)
	}
	if !strings.Contains(gen.system, "from English to Spanish") {
		t.Errorf("system prompt missing languages: %q", gen.system)
	}

	gen.err = errors.New("no provider")
	if _, err := b.Translate(context.Background(), "x", "English", "German"); err == nil || !strings.Contains(err.Error(), "German") {
		t.Errorf("err = %v", err)
	}
}
