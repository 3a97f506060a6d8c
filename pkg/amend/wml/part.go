package wml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

// Part is the parsed XML of one WordprocessingML part: the document
// body, a header or a footer. Blocks holds the part's content in order;
// for document parts these are the children of w:body.
type Part struct {
	// Root is the root element's local name: document, hdr or ftr.
	Root string
	// RootTag is the verbatim root open tag, namespace declarations
	// included. It is written back unchanged so the part keeps every
	// declaration it arrived with.
	RootTag string
	Blocks  []Block

	// extra holds root children other than w:body in a document part.
	// Word never writes any, but third-party producers might.
	extra []RawChild
}

// ParsePart parses a WordprocessingML part. The root element decides
// the shape: document roots carry their blocks inside w:body, header
// and footer roots carry them directly.
func ParsePart(data []byte) (*Part, error) {
	d := xml.NewDecoder(bytes.NewReader(data))
	part := &Part{}

	// Locate the root element and keep its raw open tag.
	var root xml.StartElement
	for {
		before := d.InputOffset()
		tok, err := d.Token()
		if err != nil {
			return nil, fmt.Errorf("parsing part: %w", err)
		}
		if se, ok := tok.(xml.StartElement); ok {
			root = se
			part.RootTag = string(data[before:d.InputOffset()])
			break
		}
	}
	part.Root = root.Name.Local
	if strings.HasSuffix(part.RootTag, "/>") {
		// Self-closing root; reopen it so content can be appended.
		part.RootTag = strings.TrimSuffix(part.RootTag, "/>") + ">"
		return part, nil
	}

	switch part.Root {
	case "document":
		if err := part.parseDocumentRoot(d); err != nil {
			return nil, err
		}
	case "hdr", "ftr":
		blocks, err := parseBlocks(d, part.Root)
		if err != nil {
			return nil, err
		}
		part.Blocks = blocks
	default:
		return nil, fmt.Errorf("unsupported part root element <%s>", part.Root)
	}

	return part, nil
}

func (p *Part) parseDocumentRoot(d *xml.Decoder) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return fmt.Errorf("parsing document root: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "body" {
				blocks, err := parseBlocks(d, "body")
				if err != nil {
					return err
				}
				p.Blocks = blocks
				continue
			}
			raw, err := decodeRaw(d, t)
			if err != nil {
				return err
			}
			p.extra = append(p.extra, *raw)
		case xml.EndElement:
			if t.Name.Local == "document" {
				return nil
			}
		}
	}
}

// parseBlocks consumes block elements until the named end tag.
func parseBlocks(d *xml.Decoder, until string) ([]Block, error) {
	var blocks []Block
	for {
		tok, err := d.Token()
		if err != nil {
			return nil, fmt.Errorf("parsing <%s> content: %w", until, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			block, err := decodeBlock(d, t)
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, block)
		case xml.EndElement:
			if t.Name.Local == until {
				return blocks, nil
			}
		}
	}
}

// decodeBlock parses one block-level element.
func decodeBlock(d *xml.Decoder, t xml.StartElement) (Block, error) {
	switch t.Name.Local {
	case "p":
		var para Paragraph
		if err := d.DecodeElement(&para, &t); err != nil {
			return nil, err
		}
		return &para, nil
	case "tbl":
		var table Table
		if err := d.DecodeElement(&table, &t); err != nil {
			return nil, err
		}
		return &table, nil
	case "sectPr":
		raw, err := decodeRaw(d, t)
		if err != nil {
			return nil, err
		}
		return &SectionBreak{Raw: *raw}, nil
	default:
		raw, err := decodeRaw(d, t)
		if err != nil {
			return nil, err
		}
		return &RawBlock{Raw: *raw}, nil
	}
}

// rootName returns the prefixed name from the root open tag, used to
// build the matching close tag.
func (p *Part) rootName() string {
	tag := strings.TrimPrefix(p.RootTag, "<")
	if i := strings.IndexAny(tag, " \t\r\n>"); i >= 0 {
		tag = tag[:i]
	}
	return tag
}

// Paragraphs returns pointers to every paragraph in the part,
// descending into table cells, in document order.
func (p *Part) Paragraphs() []*Paragraph {
	return collectParagraphs(p.Blocks)
}

func collectParagraphs(blocks []Block) []*Paragraph {
	var paras []*Paragraph
	for _, block := range blocks {
		switch b := block.(type) {
		case *Paragraph:
			paras = append(paras, b)
		case *Table:
			for _, row := range b.Rows() {
				for _, cell := range row.Cells() {
					paras = append(paras, collectParagraphs(cell.Blocks)...)
				}
			}
		}
	}
	return paras
}
