package docx2pdf

import (
	"context"
	"errors"
	"fmt"

	"github.com/alnah/go-docx2pdf/internal/docx"
	"github.com/alnah/go-docx2pdf/internal/office"
	"github.com/alnah/go-docx2pdf/internal/params"
)

// Sentinel errors for library operations.
var (
	ErrEmptyPath        = errors.New("path cannot be empty")
	ErrTemplateNotFound = errors.New("template not found")
	ErrParamsNotFound   = params.ErrNotFound
	ErrParamsRead       = params.ErrRead
	ErrMalformedParams  = params.ErrParse
	ErrInvalidTemplate  = docx.ErrInvalidDocument
	ErrTemplateRead     = docx.ErrRead
	ErrSaveDocument     = docx.ErrWrite
	ErrTempFile         = errors.New("failed to create temporary document")

	// Converter errors.
	ErrConverterNotInstalled = office.ErrNotInstalled
	ErrConversionFailed      = office.ErrFailed
	ErrConversionTimeout     = office.ErrTimeout
	ErrPDFNotCreated         = office.ErrPDFNotCreated
	ErrOutputDirectory       = office.ErrOutputDir
)

// Reason is the kind of failure behind an error returned by this package.
type Reason int

const (
	ReasonUnknown Reason = iota
	ReasonMissingInput
	ReasonMalformedParams
	ReasonInvalidTemplate
	ReasonConverterMissing
	ReasonConverterFailed
	ReasonConverterTimeout
	ReasonOutputNotCreated
	ReasonIO
	ReasonCanceled
	ReasonOutputDirectory
)

var reasonNames = [...]string{
	ReasonUnknown:          "unknown",
	ReasonMissingInput:     "missing-input",
	ReasonMalformedParams:  "malformed-params",
	ReasonInvalidTemplate:  "invalid-template",
	ReasonConverterMissing: "converter-missing",
	ReasonConverterFailed:  "converter-failed",
	ReasonConverterTimeout: "converter-timeout",
	ReasonOutputNotCreated: "output-not-created",
	ReasonIO:               "io",
	ReasonCanceled:         "canceled",
	ReasonOutputDirectory:  "output-directory",
}

// String returns the kebab-case reason name.
func (r Reason) String() string {
	if r < 0 || int(r) >= len(reasonNames) {
		return reasonNames[ReasonUnknown]
	}
	return reasonNames[r]
}

// Classify returns the reason behind err. A nil error is ReasonUnknown.
func Classify(err error) Reason {
	switch {
	case err == nil:
		return ReasonUnknown
	case errors.Is(err, ErrEmptyPath),
		errors.Is(err, ErrTemplateNotFound),
		errors.Is(err, ErrParamsNotFound):
		return ReasonMissingInput
	case errors.Is(err, ErrMalformedParams):
		return ReasonMalformedParams
	case errors.Is(err, ErrInvalidTemplate):
		return ReasonInvalidTemplate
	case errors.Is(err, ErrConverterNotInstalled):
		return ReasonConverterMissing
	case errors.Is(err, ErrConversionTimeout):
		return ReasonConverterTimeout
	case errors.Is(err, ErrConversionFailed):
		return ReasonConverterFailed
	case errors.Is(err, ErrPDFNotCreated):
		return ReasonOutputNotCreated
	case errors.Is(err, ErrOutputDirectory):
		return ReasonOutputDirectory
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ReasonCanceled
	case errors.Is(err, ErrParamsRead),
		errors.Is(err, ErrTemplateRead),
		errors.Is(err, ErrSaveDocument),
		errors.Is(err, ErrTempFile):
		return ReasonIO
	}
	return ReasonUnknown
}

// ConversionError reports a failed PDF conversion together with the
// substituted document that was handed to the converter.
type ConversionError struct {
	// TempPath is the substituted document left on disk, or empty when it
	// was removed.
	TempPath string
	Err      error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("converting to PDF: %v", e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

func errEmpty(what string) error {
	return fmt.Errorf("%w: %s", ErrEmptyPath, what)
}
