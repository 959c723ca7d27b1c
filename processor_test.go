package docx2pdf

// Notes:
// - The office suite is never run here: textConverter stands in for it and
//   writes the substituted document's text to the "PDF" so tests can read
//   what would have been rendered.
// - office.Converter behavior is tested in internal/office.

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/alnah/go-docx2pdf/internal/docx"
	"github.com/alnah/go-docx2pdf/internal/docxtest"
)

// ---------------------------------------------------------------------------
// Test Helpers
// ---------------------------------------------------------------------------

// textConverter records its inputs and writes the document text to pdfPath.
type textConverter struct {
	calls   int
	docPath string
	err     error
}

func (c *textConverter) ToPDF(_ context.Context, docPath, pdfPath string) error {
	c.calls++
	c.docPath = docPath
	if c.err != nil {
		return c.err
	}
	doc, err := docx.Open(docPath)
	if err != nil {
		return err
	}
	return os.WriteFile(pdfPath, []byte(doc.Text()), 0o600)
}

type fixture struct {
	dir      string
	template string
	params   string
	output   string
	tempDir  string
}

func newFixture(t *testing.T, spec docxtest.Spec, paramsJSON string) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		dir:      dir,
		template: docxtest.Write(t, dir, "letter.docx", spec),
		params:   filepath.Join(dir, "params.json"),
		output:   filepath.Join(dir, "letter.pdf"),
		tempDir:  filepath.Join(dir, "tmp"),
	}
	if err := os.WriteFile(f.params, []byte(paramsJSON), 0o600); err != nil {
		t.Fatalf("writing params: %v", err)
	}
	if err := os.Mkdir(f.tempDir, 0o755); err != nil {
		t.Fatalf("creating temp dir: %v", err)
	}
	return f
}

func (f fixture) input() Input {
	return Input{Template: f.template, Params: f.params, Output: f.output}
}

func letterSpec() docxtest.Spec {
	return docxtest.Spec{
		Body: []string{
			docxtest.Paragraph("Dear {{name}},"),
			docxtest.Table([]string{"Client", "{{name}}"}),
		},
		Header: []string{docxtest.Paragraph("{{company}} letterhead")},
		Footer: []string{docxtest.Paragraph("Page footer")},
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading dir: %v", err)
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names
}

// ---------------------------------------------------------------------------
// TestProcess - Pipeline success
// ---------------------------------------------------------------------------

func TestProcess_Success(t *testing.T) {
	t.Parallel()

	f := newFixture(t, letterSpec(), `{"{{name}}": "Acme", "{{company}}": "Initech"}`)
	conv := &textConverter{}
	var events []Event
	p := NewProcessor(
		WithPDFConverter(conv),
		WithTempDir(f.tempDir),
		WithReporter(ReporterFunc(func(e Event) { events = append(events, e) })),
	)

	result, err := p.Process(context.Background(), f.input())
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	pdf := readFile(t, f.output)
	for _, want := range []string{"Dear Acme,", "Acme", "Initech letterhead", "Page footer"} {
		if !strings.Contains(pdf, want) {
			t.Errorf("output missing %q:\n%s", want, pdf)
		}
	}
	if strings.Contains(pdf, "{{") {
		t.Errorf("output still has markers:\n%s", pdf)
	}

	want := &Result{
		OutputPath: f.output,
		Markers:    []string{"{{name}}", "{{company}}"},
		Stats:      Stats{Regions: 5, Changed: 3},
	}
	if diff := cmp.Diff(want, result); diff != "" {
		t.Errorf("Result mismatch (-want +got):\n%s", diff)
	}

	if got := dirEntries(t, f.tempDir); len(got) != 0 {
		t.Errorf("temp dir not cleaned: %v", got)
	}
	if !strings.HasPrefix(filepath.Base(conv.docPath), "temp_letter-") {
		t.Errorf("converter got %q, want temp_letter-*.docx", conv.docPath)
	}

	stages := make([]Stage, len(events))
	for i, e := range events {
		stages[i] = e.Stage
	}
	wantStages := []Stage{StageTemplate, StageParams, StageSaved, StageConverting, StageDone}
	if diff := cmp.Diff(wantStages, stages); diff != "" {
		t.Errorf("stages mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"{{name}}", "{{company}}"}, events[1].Markers); diff != "" {
		t.Errorf("params event markers mismatch (-want +got):\n%s", diff)
	}
	if events[4].Path != f.output {
		t.Errorf("done event path = %q, want %q", events[4].Path, f.output)
	}
}

func TestProcess_TemplateUntouched(t *testing.T) {
	t.Parallel()

	f := newFixture(t, letterSpec(), `{"{{name}}": "Acme"}`)
	before := readFile(t, f.template)

	p := NewProcessor(WithPDFConverter(&textConverter{}), WithTempDir(f.tempDir))
	if _, err := p.Process(context.Background(), f.input()); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if readFile(t, f.template) != before {
		t.Error("template file was modified")
	}
}

func TestProcess_YAMLParams(t *testing.T) {
	t.Parallel()

	f := newFixture(t, letterSpec(), "")
	yamlPath := filepath.Join(f.dir, "params.yaml")
	if err := os.WriteFile(yamlPath, []byte("\"{{name}}\": Acme\n\"{{company}}\": 42\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	p := NewProcessor(WithPDFConverter(&textConverter{}), WithTempDir(f.tempDir))
	in := f.input()
	in.Params = yamlPath
	if _, err := p.Process(context.Background(), in); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	pdf := readFile(t, f.output)
	if !strings.Contains(pdf, "Dear Acme,") || !strings.Contains(pdf, "42 letterhead") {
		t.Errorf("unexpected output:\n%s", pdf)
	}
}

func TestProcess_CompoundingReplacement(t *testing.T) {
	t.Parallel()

	spec := docxtest.Spec{Body: []string{docxtest.Paragraph("{{a}}")}}
	f := newFixture(t, spec, `{"{{a}}": "see {{b}}", "{{b}}": "x"}`)

	p := NewProcessor(WithPDFConverter(&textConverter{}), WithTempDir(f.tempDir))
	if _, err := p.Process(context.Background(), f.input()); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if got := readFile(t, f.output); got != "see x" {
		t.Errorf("output = %q, want %q", got, "see x")
	}
}

// ---------------------------------------------------------------------------
// TestProcess - Failures
// ---------------------------------------------------------------------------

func TestProcess_InputErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		mutate     func(f fixture, in *Input)
		wantErr    error
		wantReason Reason
		wantInMsg  string
	}{
		{
			name:       "empty template path",
			mutate:     func(_ fixture, in *Input) { in.Template = "" },
			wantErr:    ErrEmptyPath,
			wantReason: ReasonMissingInput,
		},
		{
			name:       "empty output path",
			mutate:     func(_ fixture, in *Input) { in.Output = "" },
			wantErr:    ErrEmptyPath,
			wantReason: ReasonMissingInput,
		},
		{
			name:       "missing template",
			mutate:     func(f fixture, in *Input) { in.Template = filepath.Join(f.dir, "nope.docx") },
			wantErr:    ErrTemplateNotFound,
			wantReason: ReasonMissingInput,
			wantInMsg:  "template not found: ",
		},
		{
			name: "missing template wins over malformed params",
			mutate: func(f fixture, in *Input) {
				in.Template = filepath.Join(f.dir, "nope.docx")
				_ = os.WriteFile(in.Params, []byte("{not json"), 0o600)
			},
			wantErr:    ErrTemplateNotFound,
			wantReason: ReasonMissingInput,
		},
		{
			name:       "missing params",
			mutate:     func(f fixture, in *Input) { in.Params = filepath.Join(f.dir, "nope.json") },
			wantErr:    ErrParamsNotFound,
			wantReason: ReasonMissingInput,
			wantInMsg:  "parameters file not found: ",
		},
		{
			name:       "malformed params",
			mutate:     func(_ fixture, in *Input) { _ = os.WriteFile(in.Params, []byte(`{"{{name}}": "Acme",}`), 0o600) },
			wantErr:    ErrMalformedParams,
			wantReason: ReasonMalformedParams,
			wantInMsg:  "invalid character",
		},
		{
			name:       "template is not a docx",
			mutate:     func(_ fixture, in *Input) { _ = os.WriteFile(in.Template, []byte("plain text"), 0o600) },
			wantErr:    ErrInvalidTemplate,
			wantReason: ReasonInvalidTemplate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, letterSpec(), `{"{{name}}": "Acme"}`)
			in := f.input()
			tt.mutate(f, &in)
			conv := &textConverter{}
			p := NewProcessor(WithPDFConverter(conv), WithTempDir(f.tempDir))

			result, err := p.Process(context.Background(), in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Process() error = %v, want %v", err, tt.wantErr)
			}
			if result != nil {
				t.Errorf("Process() result = %+v, want nil", result)
			}
			if got := Classify(err); got != tt.wantReason {
				t.Errorf("Classify() = %v, want %v", got, tt.wantReason)
			}
			if tt.wantInMsg != "" && !strings.Contains(err.Error(), tt.wantInMsg) {
				t.Errorf("error %q should contain %q", err, tt.wantInMsg)
			}
			if conv.calls != 0 {
				t.Error("converter should not run")
			}
			if got := dirEntries(t, f.tempDir); len(got) != 0 {
				t.Errorf("no document should be written, found %v", got)
			}
		})
	}
}

func TestProcess_ConverterFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name             string
		cleanupOnFailure bool
		convErr          error
		wantReason       Reason
	}{
		{"non-zero exit keeps temp", false, ErrConversionFailed, ReasonConverterFailed},
		{"timeout keeps temp", false, ErrConversionTimeout, ReasonConverterTimeout},
		{"missing converter with cleanup", true, ErrConverterNotInstalled, ReasonConverterMissing},
		{"not created with cleanup", true, ErrPDFNotCreated, ReasonOutputNotCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, letterSpec(), `{"{{name}}": "Acme"}`)
			p := NewProcessor(
				WithPDFConverter(&textConverter{err: tt.convErr}),
				WithTempDir(f.tempDir),
				WithCleanupOnFailure(tt.cleanupOnFailure),
			)

			_, err := p.Process(context.Background(), f.input())
			if !errors.Is(err, tt.convErr) {
				t.Fatalf("Process() error = %v, want %v", err, tt.convErr)
			}
			if got := Classify(err); got != tt.wantReason {
				t.Errorf("Classify() = %v, want %v", got, tt.wantReason)
			}

			var convErr *ConversionError
			if !errors.As(err, &convErr) {
				t.Fatalf("error %T should be *ConversionError", err)
			}
			if _, statErr := os.Stat(f.output); !os.IsNotExist(statErr) {
				t.Error("no PDF should exist at the requested path")
			}

			left := dirEntries(t, f.tempDir)
			if tt.cleanupOnFailure {
				if convErr.TempPath != "" || len(left) != 0 {
					t.Errorf("temp should be removed: TempPath=%q dir=%v", convErr.TempPath, left)
				}
				return
			}
			if len(left) != 1 || filepath.Join(f.tempDir, left[0]) != convErr.TempPath {
				t.Errorf("TempPath = %q, dir = %v; want the kept document", convErr.TempPath, left)
			}
			doc, err := docx.Open(convErr.TempPath)
			if err != nil {
				t.Fatalf("kept document unreadable: %v", err)
			}
			if !strings.Contains(doc.Text(), "Dear Acme,") {
				t.Errorf("kept document not substituted:\n%s", doc.Text())
			}
		})
	}
}

func TestProcess_Canceled(t *testing.T) {
	t.Parallel()

	f := newFixture(t, letterSpec(), `{"{{name}}": "Acme"}`)
	conv := &textConverter{}
	p := NewProcessor(WithPDFConverter(conv), WithTempDir(f.tempDir))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Process(ctx, f.input())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Process() error = %v, want context.Canceled", err)
	}
	if Classify(err) != ReasonCanceled {
		t.Errorf("Classify() = %v, want %v", Classify(err), ReasonCanceled)
	}
	if conv.calls != 0 {
		t.Error("converter should not run after cancellation")
	}
}

func TestProcess_TempDirMissing(t *testing.T) {
	t.Parallel()

	f := newFixture(t, letterSpec(), `{"{{name}}": "Acme"}`)
	p := NewProcessor(WithPDFConverter(&textConverter{}), WithTempDir(filepath.Join(f.dir, "gone")))

	_, err := p.Process(context.Background(), f.input())
	if !errors.Is(err, ErrTempFile) {
		t.Fatalf("Process() error = %v, want ErrTempFile", err)
	}
	if Classify(err) != ReasonIO {
		t.Errorf("Classify() = %v, want %v", Classify(err), ReasonIO)
	}
}

func TestProcess_RecoversPanic(t *testing.T) {
	t.Parallel()

	f := newFixture(t, letterSpec(), `{"{{name}}": "Acme"}`)
	p := NewProcessor(
		WithPDFConverter(ConverterFunc(func(context.Context, string, string) error { panic("boom") })),
		WithTempDir(f.tempDir),
	)

	_, err := p.Process(context.Background(), f.input())
	if err == nil || !strings.Contains(err.Error(), "internal error: boom") {
		t.Errorf("Process() error = %v, want internal error", err)
	}
}

// ---------------------------------------------------------------------------
// TestNewProcessor - Defaults and options
// ---------------------------------------------------------------------------

func TestNewProcessor_DefaultConverter(t *testing.T) {
	t.Parallel()

	p := NewProcessor(
		WithTimeout(45e9),
		WithConverterBinary("soffice"),
		WithIsolatedProfile(true),
	)

	want := processorConfig{timeout: 45e9, binary: "soffice", isolatedProfile: true}
	if diff := cmp.Diff(want, p.cfg, cmp.AllowUnexported(processorConfig{})); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	if p.converter == nil || p.logger == nil {
		t.Fatal("converter and logger should be set")
	}
}

func TestWithTimeout_PanicsOnNonPositive(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("WithTimeout(0) should panic")
		}
	}()
	WithTimeout(0)
}

// ---------------------------------------------------------------------------
// TestSubstitute - Library substitution without conversion
// ---------------------------------------------------------------------------

func TestSubstitute(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tpl := docxtest.Write(t, dir, "in.docx", letterSpec())
	out := filepath.Join(dir, "out.docx")

	st, err := Substitute(tpl, out, NewMapping(Entry{Marker: "{{name}}", Value: "Acme"}))
	if err != nil {
		t.Fatalf("Substitute() error = %v", err)
	}
	if st != (Stats{Regions: 5, Changed: 2}) {
		t.Errorf("Stats = %+v, want {5 2}", st)
	}

	doc, err := docx.Open(out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if !strings.Contains(doc.Text(), "Dear Acme,") || !strings.Contains(doc.Text(), "{{company}}") {
		t.Errorf("unexpected text:\n%s", doc.Text())
	}
}

func TestSubstitute_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := NewMapping()

	if _, err := Substitute("", "out.docx", m); !errors.Is(err, ErrEmptyPath) {
		t.Errorf("empty template: error = %v, want ErrEmptyPath", err)
	}
	if _, err := Substitute("in.docx", "", m); !errors.Is(err, ErrEmptyPath) {
		t.Errorf("empty output: error = %v, want ErrEmptyPath", err)
	}
	if _, err := Substitute(filepath.Join(dir, "missing.docx"), filepath.Join(dir, "o.docx"), m); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("missing template: error = %v, want ErrTemplateNotFound", err)
	}
}
