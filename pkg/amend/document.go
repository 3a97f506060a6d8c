package amend

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"

	"github.com/juliankroeber/go-amend/pkg/amend/wml"
)

// PartKind labels where a part sits in the package. It is informational
// only: operations that sweep "all parts" never branch on it.
type PartKind string

const (
	PartKindBody   PartKind = "body"
	PartKindHeader PartKind = "header"
	PartKindFooter PartKind = "footer"
)

// Part is one editable XML part of the package: the document body, a
// header or a footer. It pairs the parsed block tree with the part's
// relationship table and tracks whether either needs to be rewritten
// on save.
type Part struct {
	Name string
	Kind PartKind
	Root *wml.Part
	Rels *Relationships

	dirty     bool
	relsDirty bool
}

// Blocks returns the part's top-level blocks in order.
func (p *Part) Blocks() []wml.Block {
	return p.Root.Blocks
}

// Paragraphs returns every paragraph in the part, descending into table
// cells, in document order.
func (p *Part) Paragraphs() []*wml.Paragraph {
	return p.Root.Paragraphs()
}

// Text returns the part's visible text, blocks joined by newlines.
func (p *Part) Text() string {
	var texts []string
	for _, block := range p.Root.Blocks {
		switch b := block.(type) {
		case *wml.Paragraph:
			texts = append(texts, b.GetText())
		case *wml.Table:
			texts = append(texts, b.GetText())
		}
	}
	return joinNonEmpty(texts, "\n")
}

func (p *Part) markDirty() {
	p.dirty = true
}

func joinNonEmpty(parts []string, sep string) string {
	var buf bytes.Buffer
	for _, s := range parts {
		if s == "" {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString(sep)
		}
		buf.WriteString(s)
	}
	return buf.String()
}

// Document is a loaded DOCX package: the parsed body, header and footer
// parts, the pending media additions and deletions, and the cursor. It
// is mutated in place by edit operations and written back with Save.
// A Document is owned by one logical session; it is not safe for
// concurrent use.
type Document struct {
	reader *DocxReader
	parts  []*Part // body first, then headers, then footers
	cursor Cursor

	mediaAdds    map[string][]byte
	mediaDeletes map[string]struct{}
	imageSeq     int
}

var (
	headerPartPattern = regexp.MustCompile(`^word/header(\d+)\.xml$`)
	footerPartPattern = regexp.MustCompile(`^word/footer(\d+)\.xml$`)
)

// Open loads a DOCX package from a random-access reader.
func Open(r io.ReaderAt, size int64) (*Document, error) {
	dr, err := NewDocxReader(r, size)
	if err != nil {
		return nil, NewDocumentError("open", "", err)
	}

	doc := &Document{
		reader:       dr,
		mediaAdds:    make(map[string][]byte),
		mediaDeletes: make(map[string]struct{}),
	}

	if err := doc.loadParts(); err != nil {
		return nil, err
	}

	doc.resetCursor()
	GetLogger().Debug("opened document with %d part(s)", len(doc.parts))
	return doc, nil
}

// OpenBytes loads a DOCX package held in memory.
func OpenBytes(b []byte) (*Document, error) {
	return Open(bytes.NewReader(b), int64(len(b)))
}

// OpenFile loads a DOCX package from a file path.
func OpenFile(path string) (*Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, NewDocumentError("read", path, err)
	}
	return OpenBytes(content)
}

func (d *Document) loadParts() error {
	names := []string{"word/document.xml"}
	names = append(names, numberedParts(d.reader, headerPartPattern)...)
	names = append(names, numberedParts(d.reader, footerPartPattern)...)

	for _, name := range names {
		part, err := d.loadPart(name)
		if err != nil {
			return err
		}
		d.parts = append(d.parts, part)
	}
	return nil
}

func (d *Document) loadPart(name string) (*Part, error) {
	data, err := d.reader.GetPart(name)
	if err != nil {
		return nil, NewDocumentError("extract", name, err)
	}
	if max := GetGlobalConfig().MaxPartBytes; max > 0 && len(data) > max {
		return nil, NewDocumentError("parse", name, fmt.Errorf("part is %d bytes, limit is %d", len(data), max))
	}

	root, err := wml.ParsePart(data)
	if err != nil {
		return nil, NewDocumentError("parse", name, err)
	}

	rels, err := d.loadRels(name)
	if err != nil {
		return nil, err
	}

	return &Part{
		Name: name,
		Kind: partKindFor(name),
		Root: root,
		Rels: rels,
	}, nil
}

func (d *Document) loadRels(partName string) (*Relationships, error) {
	relsPath := relsPathFor(partName)
	if !d.reader.HasPart(relsPath) {
		// Missing relationships file is not an error, just an empty table.
		return parseRelationships(nil)
	}
	data, err := d.reader.GetPart(relsPath)
	if err != nil {
		return nil, NewDocumentError("extract", relsPath, err)
	}
	rels, err := parseRelationships(data)
	if err != nil {
		return nil, NewDocumentError("parse", relsPath, err)
	}
	return rels, nil
}

func partKindFor(name string) PartKind {
	switch {
	case headerPartPattern.MatchString(name):
		return PartKindHeader
	case footerPartPattern.MatchString(name):
		return PartKindFooter
	default:
		return PartKindBody
	}
}

// numberedParts returns part names matching the pattern, ordered by
// their numeric suffix so header2 sorts before header10.
func numberedParts(dr *DocxReader, pattern *regexp.Regexp) []string {
	type numbered struct {
		name string
		n    int
	}
	var found []numbered
	for name := range dr.Parts {
		m := pattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		found = append(found, numbered{name: name, n: n})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].n < found[j].n })

	names := make([]string, len(found))
	for i, f := range found {
		names[i] = f.name
	}
	return names
}

// Body returns the document body part.
func (d *Document) Body() *Part {
	return d.parts[0]
}

// Headers returns the header parts in numeric order.
func (d *Document) Headers() []*Part {
	return d.partsOfKind(PartKindHeader)
}

// Footers returns the footer parts in numeric order.
func (d *Document) Footers() []*Part {
	return d.partsOfKind(PartKindFooter)
}

// Parts returns all editable parts: body first, then headers, then footers.
func (d *Document) Parts() []*Part {
	parts := make([]*Part, len(d.parts))
	copy(parts, d.parts)
	return parts
}

func (d *Document) partsOfKind(kind PartKind) []*Part {
	var parts []*Part
	for _, p := range d.parts {
		if p.Kind == kind {
			parts = append(parts, p)
		}
	}
	return parts
}

func (d *Document) partByName(name string) *Part {
	for _, p := range d.parts {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func (d *Document) partByRelsName(relsName string) *Part {
	for _, p := range d.parts {
		if relsPathFor(p.Name) == relsName {
			return p
		}
	}
	return nil
}

// Cursor returns the document's cursor. There is exactly one; it is
// owned by the document and survives across operations.
func (d *Document) Cursor() *Cursor {
	return &d.cursor
}

// resetCursor re-seeds the cursor to its default position: the last
// block of the body.
func (d *Document) resetCursor() {
	d.cursor = Cursor{doc: d, part: 0}
	d.cursor.End()
}

// AppendParagraph appends a paragraph with the given text to the body,
// optionally referencing a named paragraph style. The cursor is re-seeded
// to the new last block.
func (d *Document) AppendParagraph(text, style string) *wml.Paragraph {
	para := &wml.Paragraph{
		Properties: wml.NewParagraphProperties(style),
	}
	if text != "" {
		para.Children = append(para.Children, wml.NewTextRun(text, nil))
	}

	body := d.Body()
	// Word keeps the body's section break last; insert before it.
	blocks := body.Root.Blocks
	insertAt := len(blocks)
	if insertAt > 0 {
		if _, ok := blocks[insertAt-1].(*wml.SectionBreak); ok {
			insertAt--
		}
	}
	body.Root.Blocks = append(blocks[:insertAt], append([]wml.Block{para}, blocks[insertAt:]...)...)
	body.markDirty()
	d.resetCursor()
	return para
}
