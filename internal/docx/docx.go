// Package docx reads and writes word-processor packages (.docx) and exposes
// their text-bearing regions: body paragraphs, table cells, and the
// paragraphs and cells of every header and footer part.
//
// A Document is never modified in place. ReplaceFields returns a new
// snapshot, leaving the receiver untouched.
package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/beevik/etree"
)

// Sentinel errors for document operations.
var (
	ErrInvalidDocument = errors.New("invalid docx document")
	ErrWrite           = errors.New("failed to write docx document")
	ErrRead            = errors.New("failed to read docx document")
)

// Relationship types used to locate text parts.
const (
	relOfficeDocument       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relOfficeDocumentStrict = "http://purl.oclc.org/ooxml/officeDocument/relationships/officeDocument"
	relHeaderSuffix         = "/header"
	relFooterSuffix         = "/footer"

	defaultMainPart = "word/document.xml"
	packageRels     = "_rels/.rels"
)

// PartKind tells which kind of package part a region belongs to.
type PartKind int

const (
	PartBody PartKind = iota
	PartHeader
	PartFooter
)

// String returns the lower-case part kind name.
func (k PartKind) String() string {
	switch k {
	case PartHeader:
		return "header"
	case PartFooter:
		return "footer"
	default:
		return "body"
	}
}

// textPart is a parsed XML part holding text-bearing regions.
type textPart struct {
	name string
	kind PartKind
	tree *etree.Document
}

// Document is an opened docx package.
type Document struct {
	files []*zip.File // package entries in archive order
	parts []textPart  // main part first, then headers and footers
}

// Open reads the docx package at path.
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- template path is user-provided
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	return Read(data)
}

// Read parses a docx package held in memory.
func Read(data []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	byName := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		byName[f.Name] = f
	}

	mainName := resolveMainPart(byName)
	if _, ok := byName[mainName]; !ok {
		return nil, fmt.Errorf("%w: missing %s", ErrInvalidDocument, mainName)
	}

	doc := &Document{files: zr.File}

	mainTree, err := parsePart(byName[mainName])
	if err != nil {
		return nil, err
	}
	doc.parts = append(doc.parts, textPart{name: mainName, kind: PartBody, tree: mainTree})

	for _, ref := range resolveHeaderFooterParts(byName, mainName) {
		f, ok := byName[ref.name]
		if !ok {
			continue
		}
		tree, err := parsePart(f)
		if err != nil {
			return nil, err
		}
		doc.parts = append(doc.parts, textPart{name: ref.name, kind: ref.kind, tree: tree})
	}

	return doc, nil
}

// Parts returns the names of the text parts in walk order.
func (d *Document) Parts() []string {
	names := make([]string, len(d.parts))
	for i, p := range d.parts {
		names[i] = p.name
	}
	return names
}

// clone returns a document sharing the immutable archive entries but
// owning deep copies of every parsed part.
func (d *Document) clone() *Document {
	out := &Document{files: d.files, parts: make([]textPart, len(d.parts))}
	for i, p := range d.parts {
		out.parts[i] = textPart{name: p.name, kind: p.kind, tree: p.tree.Copy()}
	}
	return out
}

// Save writes the package to path.
func (d *Document) Save(path string) error {
	// #nosec G304 G302 -- output path is user-provided and meant to be readable
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := d.Write(f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

// Write streams the package as a zip archive. Entries keep their original
// order; untouched entries are copied without recompression.
func (d *Document) Write(w io.Writer) error {
	trees := make(map[string]*etree.Document, len(d.parts))
	for _, p := range d.parts {
		trees[p.name] = p.tree
	}

	zw := zip.NewWriter(w)
	for _, f := range d.files {
		if tree, ok := trees[f.Name]; ok {
			if err := writeTree(zw, f, tree); err != nil {
				return err
			}
			continue
		}
		if err := copyRaw(zw, f); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

func writeTree(zw *zip.Writer, f *zip.File, tree *etree.Document) error {
	fw, err := zw.CreateHeader(&zip.FileHeader{
		Name:     f.Name,
		Method:   zip.Deflate,
		Modified: f.Modified,
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWrite, f.Name, err)
	}
	if _, err := tree.WriteTo(fw); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWrite, f.Name, err)
	}
	return nil
}

func copyRaw(zw *zip.Writer, f *zip.File) error {
	fh := f.FileHeader
	fw, err := zw.CreateRaw(&fh)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWrite, f.Name, err)
	}
	rc, err := f.OpenRaw()
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWrite, f.Name, err)
	}
	if _, err := io.Copy(fw, rc); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWrite, f.Name, err)
	}
	return nil
}

func parsePart(f *zip.File) (*etree.Document, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDocument, f.Name, err)
	}
	defer rc.Close()

	tree := etree.NewDocument()
	if _, err := tree.ReadFrom(rc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDocument, f.Name, err)
	}
	if tree.Root() == nil {
		return nil, fmt.Errorf("%w: %s: no root element", ErrInvalidDocument, f.Name)
	}
	return tree, nil
}

// relationship is one entry of a .rels part.
type relationship struct {
	typ    string
	target string
	mode   string
}

func readRels(f *zip.File) []relationship {
	tree, err := parsePart(f)
	if err != nil {
		return nil
	}
	var rels []relationship
	for _, el := range tree.Root().ChildElements() {
		if el.Tag != "Relationship" {
			continue
		}
		rels = append(rels, relationship{
			typ:    el.SelectAttrValue("Type", ""),
			target: el.SelectAttrValue("Target", ""),
			mode:   el.SelectAttrValue("TargetMode", ""),
		})
	}
	return rels
}

// resolveMainPart follows the package relationships to the main document
// part, falling back to word/document.xml.
func resolveMainPart(files map[string]*zip.File) string {
	f, ok := files[packageRels]
	if !ok {
		return defaultMainPart
	}
	for _, rel := range readRels(f) {
		if rel.typ == relOfficeDocument || rel.typ == relOfficeDocumentStrict {
			return strings.TrimPrefix(rel.target, "/")
		}
	}
	return defaultMainPart
}

type partRef struct {
	name string
	kind PartKind
}

// resolveHeaderFooterParts lists the header and footer parts referenced by
// the main part. Without a relationships part it falls back to the
// conventional word/headerN.xml and word/footerN.xml names.
func resolveHeaderFooterParts(files map[string]*zip.File, mainName string) []partRef {
	dir := path.Dir(mainName)
	relsName := path.Join(dir, "_rels", path.Base(mainName)+".rels")

	f, ok := files[relsName]
	if !ok {
		return conventionalHeaderFooterParts(files)
	}

	seen := make(map[string]bool)
	var refs []partRef
	for _, rel := range readRels(f) {
		if rel.mode == "External" {
			continue
		}
		var kind PartKind
		switch {
		case strings.HasSuffix(rel.typ, relHeaderSuffix):
			kind = PartHeader
		case strings.HasSuffix(rel.typ, relFooterSuffix):
			kind = PartFooter
		default:
			continue
		}
		name := resolveTarget(dir, rel.target)
		if seen[name] {
			continue
		}
		seen[name] = true
		refs = append(refs, partRef{name: name, kind: kind})
	}
	return refs
}

func resolveTarget(baseDir, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Join(baseDir, target)
}

func conventionalHeaderFooterParts(files map[string]*zip.File) []partRef {
	var headers, footers []partRef
	for name := range files {
		if path.Dir(name) != "word" || path.Ext(name) != ".xml" {
			continue
		}
		base := path.Base(name)
		switch {
		case strings.HasPrefix(base, "header"):
			headers = append(headers, partRef{name: name, kind: PartHeader})
		case strings.HasPrefix(base, "footer"):
			footers = append(footers, partRef{name: name, kind: PartFooter})
		}
	}
	byName := func(a, b partRef) int { return strings.Compare(a.name, b.name) }
	slices.SortFunc(headers, byName)
	slices.SortFunc(footers, byName)
	return append(headers, footers...)
}
