// Package docxtest builds small but valid .docx packages for tests.
//
// Body, header and footer content is given as WordprocessingML fragments,
// usually produced with Paragraph, Runs and Table.
package docxtest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const wordNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" ` +
	`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"`

// Spec describes the content of a generated document. A nil Header or
// Footer omits the part entirely.
type Spec struct {
	Body   []string
	Header []string
	Footer []string
}

// Paragraph returns a paragraph holding text in a single run.
func Paragraph(text string) string {
	return Runs(text)
}

// Runs returns a paragraph with one run per piece, the way Word splits text
// when formatting or spell-check state changes mid-word.
func Runs(pieces ...string) string {
	var b strings.Builder
	b.WriteString("<w:p>")
	for _, piece := range pieces {
		b.WriteString(`<w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">`)
		b.WriteString(escape(piece))
		b.WriteString("</w:t></w:r>")
	}
	b.WriteString("</w:p>")
	return b.String()
}

// Table returns a table with one cell per string. A cell string may hold
// several paragraphs separated by newlines.
func Table(rows ...[]string) string {
	var b strings.Builder
	b.WriteString("<w:tbl>")
	for _, row := range rows {
		b.WriteString("<w:tr>")
		for _, cell := range row {
			b.WriteString("<w:tc><w:tcPr><w:tcW w:w=\"2000\" w:type=\"dxa\"/></w:tcPr>")
			for _, line := range strings.Split(cell, "\n") {
				b.WriteString(Paragraph(line))
			}
			b.WriteString("</w:tc>")
		}
		b.WriteString("</w:tr>")
	}
	b.WriteString("</w:tbl>")
	return b.String()
}

// Build returns the bytes of a docx package for spec.
func Build(spec Spec) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	files := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", contentTypes(spec)},
		{"_rels/.rels", packageRels},
		{"word/document.xml", documentXML(spec)},
		{"word/_rels/document.xml.rels", documentRels(spec)},
	}
	if spec.Header != nil {
		files = append(files, struct{ name, content string }{"word/header1.xml", partXML("hdr", spec.Header)})
	}
	if spec.Footer != nil {
		files = append(files, struct{ name, content string }{"word/footer1.xml", partXML("ftr", spec.Footer)})
	}

	for _, f := range files {
		w, err := zw.Create(f.name)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(f.content)); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write builds spec into dir/name and returns the path.
func Write(tb testing.TB, dir, name string, spec Spec) string {
	tb.Helper()
	data, err := Build(spec)
	if err != nil {
		tb.Fatalf("building docx: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		tb.Fatalf("writing docx: %v", err)
	}
	return path
}

const packageRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
	`</Relationships>`

func contentTypes(spec Spec) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	b.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	b.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	b.WriteString(`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>`)
	if spec.Header != nil {
		b.WriteString(`<Override PartName="/word/header1.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.header+xml"/>`)
	}
	if spec.Footer != nil {
		b.WriteString(`<Override PartName="/word/footer1.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.footer+xml"/>`)
	}
	b.WriteString(`</Types>`)
	return b.String()
}

func documentRels(spec Spec) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	if spec.Header != nil {
		b.WriteString(`<Relationship Id="rIdHeader1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/header" Target="header1.xml"/>`)
	}
	if spec.Footer != nil {
		b.WriteString(`<Relationship Id="rIdFooter1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer" Target="footer1.xml"/>`)
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

func documentXML(spec Spec) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString(`<w:document ` + wordNS + `><w:body>`)
	for _, frag := range spec.Body {
		b.WriteString(frag)
	}
	b.WriteString(`<w:sectPr>`)
	if spec.Header != nil {
		b.WriteString(`<w:headerReference w:type="default" r:id="rIdHeader1"/>`)
	}
	if spec.Footer != nil {
		b.WriteString(`<w:footerReference w:type="default" r:id="rIdFooter1"/>`)
	}
	b.WriteString(`</w:sectPr></w:body></w:document>`)
	return b.String()
}

func partXML(root string, content []string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString(`<w:` + root + ` ` + wordNS + `>`)
	for _, frag := range content {
		b.WriteString(frag)
	}
	b.WriteString(`</w:` + root + `>`)
	return b.String()
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
