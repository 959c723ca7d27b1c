// Package docx2pdf fills field markers in a Word (.docx) template and
// renders the result to PDF with a headless LibreOffice.
//
// # Quick Start
//
// Create a processor and run one template through the pipeline:
//
//	p := docx2pdf.NewProcessor()
//
//	result, err := p.Process(ctx, docx2pdf.Input{
//	    Template: "letter.docx",
//	    Params:   "params.json",
//	    Output:   "letter.pdf",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("PDF created:", result.OutputPath)
//
// # Parameter Files
//
// A parameter file is a flat object mapping field markers to values:
//
//	{"{{name}}": "Acme", "{{date}}": "2025-01-31"}
//
// Files ending in .yaml or .yml are read as YAML. Markers are replaced in
// the order they appear in the file. Numbers and booleans are written as
// text; null, lists and nested objects are rejected.
//
// # Substitution
//
// Markers are matched literally in every body paragraph, every table cell
// (nested tables included) and every header and footer part. There is no
// escaping and no word-boundary handling. Replacements are applied one
// marker after the other, so a value that contains a marker handled later
// is itself substituted:
//
//	{"{{a}}": "see {{b}}", "{{b}}": "x"}  // "{{a}}" becomes "see x"
//
// A paragraph whose text changes is rewritten as a single run that keeps
// the paragraph properties and the formatting of its first run.
//
// # Conversion
//
// The substituted document is written to a temporary file named
// temp_<template stem>-<random>.docx and converted with
//
//	libreoffice --headless --convert-to pdf --outdir <output dir> <temp file>
//
// falling back to soffice when libreoffice is not on PATH. Use
// WithPDFConverter to plug in any other renderer, for example in tests:
//
//	p := docx2pdf.NewProcessor(docx2pdf.WithPDFConverter(
//	    docx2pdf.ConverterFunc(func(ctx context.Context, doc, pdf string) error {
//	        return os.WriteFile(pdf, []byte("%PDF-1.7"), 0o644)
//	    }),
//	))
//
// The temporary file is removed after a successful conversion. When the
// conversion fails it is kept and its path is reported through
// ConversionError, unless WithCleanupOnFailure(true) is set.
//
// # Errors
//
// Every failure wraps one of the sentinel errors of this package. Classify
// maps an error to a Reason for callers that branch on the failure kind:
//
//	switch docx2pdf.Classify(err) {
//	case docx2pdf.ReasonConverterMissing:
//	    // ask the user to install LibreOffice
//	case docx2pdf.ReasonMalformedParams:
//	    // report the parse error
//	}
package docx2pdf
