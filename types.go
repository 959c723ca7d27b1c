package docx2pdf

import (
	"context"

	"github.com/alnah/go-docx2pdf/internal/fields"
)

// Mapping is the ordered set of field markers and their replacement values.
type Mapping = fields.Mapping

// Entry is one marker and its replacement value.
type Entry = fields.Entry

// NewMapping returns a mapping holding entries in order.
func NewMapping(entries ...Entry) *Mapping {
	return fields.NewMapping(entries...)
}

// Input names the files of one run.
type Input struct {
	Template string // .docx template
	Params   string // JSON or YAML parameter file
	Output   string // PDF to create
}

// Validate checks that every path is set.
func (in Input) Validate() error {
	switch {
	case in.Template == "":
		return errEmpty("template")
	case in.Params == "":
		return errEmpty("parameters file")
	case in.Output == "":
		return errEmpty("output")
	}
	return nil
}

// Stats counts the text regions visited and rewritten during substitution.
type Stats struct {
	Regions int
	Changed int
}

// Result describes a successful run.
type Result struct {
	OutputPath string
	Markers    []string // markers from the parameter file, in application order
	Stats      Stats
}

// PDFConverter renders the document at docPath to a PDF at pdfPath.
type PDFConverter interface {
	ToPDF(ctx context.Context, docPath, pdfPath string) error
}

// ConverterFunc adapts a function to PDFConverter.
type ConverterFunc func(ctx context.Context, docPath, pdfPath string) error

// ToPDF calls f.
func (f ConverterFunc) ToPDF(ctx context.Context, docPath, pdfPath string) error {
	return f(ctx, docPath, pdfPath)
}

// Stage identifies a step of the pipeline.
type Stage int

const (
	StageTemplate  Stage = iota // template accepted
	StageParams                 // parameters loaded
	StageSaved                  // substituted document written
	StageConverting             // converter started
	StageDone                   // PDF in place
)

// String returns the lower-case stage name.
func (s Stage) String() string {
	switch s {
	case StageTemplate:
		return "template"
	case StageParams:
		return "params"
	case StageSaved:
		return "saved"
	case StageConverting:
		return "converting"
	case StageDone:
		return "done"
	}
	return "unknown"
}

// Event is a progress notification.
type Event struct {
	Stage   Stage
	Path    string   // file the stage is about (template, temp document or PDF)
	Markers []string // set for StageParams
}

// Reporter receives progress events in pipeline order.
type Reporter interface {
	Report(Event)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Event)

// Report calls f.
func (f ReporterFunc) Report(e Event) {
	f(e)
}
