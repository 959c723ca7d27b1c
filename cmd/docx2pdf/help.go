package main

import (
	"fmt"
	"io"
)

// printUsage prints the usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: docx2pdf [flags] <template.docx> <params.json> <output.pdf>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Fill field markers in a Word template and convert the result to PDF.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  template.docx   Word template containing markers such as {{name}}")
	fmt.Fprintln(w, "  params.json     Object mapping markers to values (.yaml/.yml read as YAML)")
	fmt.Fprintln(w, "  output.pdf      PDF file to create")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Converter:")
	fmt.Fprintln(w, "      --converter <path>    Office executable (default: libreoffice, soffice)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Conversion timeout (default: 30s, max: 10m)")
	fmt.Fprintln(w, "      --temp-dir <dir>      Directory for the substituted document")
	fmt.Fprintln(w, "      --isolated-profile    Use a throwaway LibreOffice profile")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Configuration:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show diagnostics and timing")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Other:")
	fmt.Fprintln(w, "      --doctor              Check the conversion environment")
	fmt.Fprintln(w, "      --json                Doctor output as JSON")
	fmt.Fprintln(w, "      --version             Show version information")
	fmt.Fprintln(w, "  -h, --help                Show this help")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  DOCX2PDF_CONFIG, DOCX2PDF_CONVERTER, DOCX2PDF_TIMEOUT, DOCX2PDF_TEMP_DIR")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Example:")
	fmt.Fprintln(w, "  docx2pdf tpl.docx params.json result.pdf")
}
