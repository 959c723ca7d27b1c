package docx

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/alnah/go-docx2pdf/internal/fields"
)

// wordNamespace is the WordprocessingML main namespace.
const wordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// RegionKind distinguishes paragraphs from table cells.
type RegionKind int

const (
	RegionParagraph RegionKind = iota
	RegionCell
)

// String returns the lower-case region kind name.
func (k RegionKind) String() string {
	if k == RegionCell {
		return "cell"
	}
	return "paragraph"
}

// Region is a read-only view of one text-bearing region.
type Region struct {
	Part     string
	PartKind PartKind
	Kind     RegionKind
	Text     string
}

// Stats counts regions visited and rewritten by ReplaceFields.
type Stats struct {
	Regions int
	Changed int
}

// Regions lists every text-bearing region in walk order.
func (d *Document) Regions() []Region {
	var out []Region
	for _, p := range d.parts {
		walkRegions(p.tree.Root(), func(kind RegionKind, el *etree.Element) {
			out = append(out, Region{
				Part:     p.name,
				PartKind: p.kind,
				Kind:     kind,
				Text:     regionText(kind, el),
			})
		})
	}
	return out
}

// Text returns the text of all regions joined by newlines.
func (d *Document) Text() string {
	regions := d.Regions()
	texts := make([]string, len(regions))
	for i, r := range regions {
		texts[i] = r.Text
	}
	return strings.Join(texts, "\n")
}

// ReplaceFields returns a copy of the document in which every region's text
// has been passed through m.Apply. Regions whose text does not change keep
// their markup untouched; changed regions are collapsed to a single run.
func (d *Document) ReplaceFields(m *fields.Mapping) (*Document, Stats) {
	out := d.clone()
	var st Stats
	for _, p := range out.parts {
		walkRegions(p.tree.Root(), func(kind RegionKind, el *etree.Element) {
			st.Regions++
			before := regionText(kind, el)
			if !m.Matches(before) {
				return
			}
			after := m.Apply(before)
			if after == before {
				return
			}
			setRegionText(kind, el, after)
			st.Changed++
		})
	}
	return out, st
}

// walkRegions visits the paragraphs and table cells directly under
// container (w:body, w:hdr or w:ftr). Cells are visited before the tables
// nested inside them, and nesting is read after the cell's visit so a
// rewritten cell is not descended into.
func walkRegions(container *etree.Element, visit func(RegionKind, *etree.Element)) {
	if container == nil {
		return
	}
	if isWord(container, "document") {
		container = findWord(container, "body")
		if container == nil {
			return
		}
	}
	for _, child := range container.ChildElements() {
		switch {
		case isWord(child, "p"):
			visit(RegionParagraph, child)
		case isWord(child, "tbl"):
			walkTable(child, visit)
		}
	}
}

func walkTable(tbl *etree.Element, visit func(RegionKind, *etree.Element)) {
	for _, tr := range tbl.ChildElements() {
		if !isWord(tr, "tr") {
			continue
		}
		for _, tc := range tr.ChildElements() {
			if !isWord(tc, "tc") {
				continue
			}
			visit(RegionCell, tc)
			for _, nested := range tc.ChildElements() {
				if isWord(nested, "tbl") {
					walkTable(nested, visit)
				}
			}
		}
	}
}

func regionText(kind RegionKind, el *etree.Element) string {
	if kind == RegionCell {
		return cellText(el)
	}
	return paragraphText(el)
}

func setRegionText(kind RegionKind, el *etree.Element, text string) {
	if kind == RegionCell {
		setCellText(el, text)
		return
	}
	setParagraphText(el, text)
}

// paragraphText concatenates the run content of a paragraph, including runs
// wrapped in hyperlinks. Tabs and line breaks map to \t and \n;
// page and column breaks are dropped.
func paragraphText(p *etree.Element) string {
	var b strings.Builder
	for _, child := range p.ChildElements() {
		switch {
		case isWord(child, "r"):
			runText(child, &b)
		case isWord(child, "hyperlink"):
			for _, r := range child.ChildElements() {
				if isWord(r, "r") {
					runText(r, &b)
				}
			}
		}
	}
	return b.String()
}

// isLineBreak reports whether br is a text-wrapping break. Page and column
// breaks carry no text.
func isLineBreak(br *etree.Element) bool {
	for _, a := range br.Attr {
		if a.Key == "type" && (a.Space == "w" || a.NamespaceURI() == wordNamespace) {
			return a.Value == "textWrapping"
		}
	}
	return true
}

func runText(r *etree.Element, b *strings.Builder) {
	for _, c := range r.ChildElements() {
		switch {
		case isWord(c, "t"):
			b.WriteString(c.Text())
		case isWord(c, "tab"):
			b.WriteByte('\t')
		case isWord(c, "br"):
			if isLineBreak(c) {
				b.WriteByte('\n')
			}
		case isWord(c, "cr"):
			b.WriteByte('\n')
		}
	}
}

// cellText joins the cell's direct paragraphs with newlines.
func cellText(tc *etree.Element) string {
	var texts []string
	for _, child := range tc.ChildElements() {
		if isWord(child, "p") {
			texts = append(texts, paragraphText(child))
		}
	}
	return strings.Join(texts, "\n")
}

// setParagraphText drops everything but the paragraph properties and writes
// text as a single run. The run reuses the formatting of the first original
// run.
func setParagraphText(p *etree.Element, text string) {
	var rPr *etree.Element
	if r := firstRun(p); r != nil {
		if props := findWord(r, "rPr"); props != nil {
			rPr = props.Copy()
		}
	}

	for _, child := range p.ChildElements() {
		if !isWord(child, "pPr") {
			p.RemoveChild(child)
		}
	}

	if text == "" {
		return
	}
	r := p.CreateElement(qualify(p.Space, "r"))
	if rPr != nil {
		r.AddChild(rPr)
	}
	writeRunText(r, text)
}

// setCellText keeps the cell properties and its first paragraph, drops the
// remaining content, and writes text into that paragraph.
func setCellText(tc *etree.Element, text string) {
	var first *etree.Element
	for _, child := range tc.ChildElements() {
		switch {
		case isWord(child, "tcPr"):
		case first == nil && isWord(child, "p"):
			first = child
		default:
			tc.RemoveChild(child)
		}
	}
	if first == nil {
		first = tc.CreateElement(qualify(tc.Space, "p"))
	}
	setParagraphText(first, text)
}

// writeRunText appends w:t, w:tab and w:br children to r.
func writeRunText(r *etree.Element, text string) {
	var buf strings.Builder
	flush := func() {
		if buf.Len() == 0 {
			return
		}
		t := r.CreateElement(qualify(r.Space, "t"))
		t.CreateAttr("xml:space", "preserve")
		t.SetText(buf.String())
		buf.Reset()
	}

	for _, c := range text {
		switch c {
		case '\t':
			flush()
			r.CreateElement(qualify(r.Space, "tab"))
		case '\n':
			flush()
			r.CreateElement(qualify(r.Space, "br"))
		default:
			buf.WriteRune(c)
		}
	}
	flush()
}

func firstRun(p *etree.Element) *etree.Element {
	for _, child := range p.ChildElements() {
		switch {
		case isWord(child, "r"):
			return child
		case isWord(child, "hyperlink"):
			if r := findWord(child, "r"); r != nil {
				return r
			}
		}
	}
	return nil
}

// isWord reports whether el is the WordprocessingML element named local.
// The conventional "w" prefix is accepted without resolving the namespace.
func isWord(el *etree.Element, local string) bool {
	if el.Tag != local {
		return false
	}
	return el.Space == "w" || el.NamespaceURI() == wordNamespace
}

func findWord(parent *etree.Element, local string) *etree.Element {
	for _, child := range parent.ChildElements() {
		if isWord(child, local) {
			return child
		}
	}
	return nil
}

func qualify(prefix, local string) string {
	if prefix == "" {
		return local
	}
	return prefix + ":" + local
}
