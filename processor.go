package docx2pdf

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alnah/go-docx2pdf/internal/docx"
	"github.com/alnah/go-docx2pdf/internal/fileutil"
	"github.com/alnah/go-docx2pdf/internal/office"
	"github.com/alnah/go-docx2pdf/internal/params"
)

// Compile-time interface implementation checks.
var _ PDFConverter = (*office.Converter)(nil)

// Processor runs the template-to-PDF pipeline.
// Create with NewProcessor and call Process once per document.
type Processor struct {
	cfg       processorConfig
	converter PDFConverter
	logger    *slog.Logger
	reporter  Reporter
}

// NewProcessor creates a Processor with default configuration.
// Use options to customize behavior (e.g., WithTimeout, WithPDFConverter).
func NewProcessor(opts ...Option) *Processor {
	p := &Processor{cfg: processorConfig{timeout: defaultTimeout}}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.New(slog.DiscardHandler)
	}

	// Create office converter if not injected (e.g., by tests)
	if p.converter == nil {
		p.converter = &office.Converter{
			Runner:          office.ExecRunner{},
			Binary:          p.cfg.binary,
			Timeout:         p.cfg.timeout,
			IsolatedProfile: p.cfg.isolatedProfile,
			Logger:          p.logger,
		}
	}

	return p
}

// Process fills the template with the parameter file's values and renders
// the result to in.Output. Inputs are checked before any work is done: a
// missing template fails before the parameters are read.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (p *Processor) Process(ctx context.Context, in Input) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if err := in.Validate(); err != nil {
		return nil, err
	}
	if !fileutil.FileExists(in.Template) {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, in.Template)
	}
	if !fileutil.FileExists(in.Params) {
		return nil, fmt.Errorf("%w: %s", ErrParamsNotFound, in.Params)
	}
	p.report(Event{Stage: StageTemplate, Path: in.Template})

	m, err := params.Load(in.Params)
	if err != nil {
		return nil, err
	}
	markers := m.Markers()
	p.report(Event{Stage: StageParams, Path: in.Params, Markers: markers})
	p.logger.Debug("parameters loaded", "path", in.Params, "markers", len(markers))

	doc, err := docx.Open(in.Template)
	if err != nil {
		return nil, err
	}
	filled, st := doc.ReplaceFields(m)
	p.logger.Debug("fields replaced", "regions", st.Regions, "changed", st.Changed)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	tempPath, cleanup, err := fileutil.ReserveTemp(p.cfg.tempDir, in.Template)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTempFile, err)
	}
	if err := filled.Save(tempPath); err != nil {
		cleanup()
		return nil, fmt.Errorf("saving substituted document: %w", err)
	}
	p.report(Event{Stage: StageSaved, Path: tempPath})

	p.report(Event{Stage: StageConverting, Path: tempPath})
	if err := p.converter.ToPDF(ctx, tempPath, in.Output); err != nil {
		kept := tempPath
		if p.cfg.cleanupOnFailure {
			cleanup()
			kept = ""
		}
		p.logger.Debug("conversion failed", "error", err, "temp", kept)
		return nil, &ConversionError{TempPath: kept, Err: err}
	}

	cleanup()
	p.report(Event{Stage: StageDone, Path: in.Output})

	return &Result{
		OutputPath: in.Output,
		Markers:    markers,
		Stats:      Stats{Regions: st.Regions, Changed: st.Changed},
	}, nil
}

// Substitute fills the template at templatePath with m and writes the
// resulting .docx to outPath. The template file itself is not modified.
func Substitute(templatePath, outPath string, m *Mapping) (Stats, error) {
	if templatePath == "" {
		return Stats{}, errEmpty("template")
	}
	if outPath == "" {
		return Stats{}, errEmpty("output")
	}
	if !fileutil.FileExists(templatePath) {
		return Stats{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, templatePath)
	}

	doc, err := docx.Open(templatePath)
	if err != nil {
		return Stats{}, err
	}
	filled, st := doc.ReplaceFields(m)
	if err := filled.Save(outPath); err != nil {
		return Stats{}, err
	}
	return Stats{Regions: st.Regions, Changed: st.Changed}, nil
}

func (p *Processor) report(e Event) {
	if p.reporter != nil {
		p.reporter.Report(e)
	}
}
