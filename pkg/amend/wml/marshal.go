package wml

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

// MarshalPart serializes a part back to XML. The original root tag is
// reused verbatim; raw content captured at parse time is spliced back
// in document order.
func MarshalPart(p *Part) ([]byte, error) {
	var inner bytes.Buffer
	e := xml.NewEncoder(&inner)
	if err := encodeBlocks(e, p.Blocks); err != nil {
		return nil, fmt.Errorf("marshaling part content: %w", err)
	}
	if err := e.Flush(); err != nil {
		return nil, err
	}

	content, err := substituteRawSlots(inner.Bytes(), collectRawContents(p))
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	out.Grow(len(content) + len(p.RootTag) + 64)
	out.WriteString(xmlHeader)
	out.WriteString(p.RootTag)
	if p.Root == "document" {
		out.WriteString("<w:body>")
		out.Write(content)
		out.WriteString("</w:body>")
		// Root children other than the body follow it verbatim.
		for _, raw := range p.extra {
			out.Write(raw.Content)
		}
	} else {
		out.Write(content)
	}
	out.WriteString("</" + p.rootName() + ">")
	return out.Bytes(), nil
}

// encodeBlocks writes a block sequence through the encoder.
func encodeBlocks(e *xml.Encoder, blocks []Block) error {
	for _, block := range blocks {
		var err error
		switch b := block.(type) {
		case *Paragraph:
			err = e.EncodeElement(b, xml.StartElement{Name: xml.Name{Local: "w:p"}})
		case *Table:
			err = e.EncodeElement(b, xml.StartElement{Name: xml.Name{Local: "w:tbl"}})
		case *SectionBreak:
			err = b.MarshalXML(e, xml.StartElement{})
		case *RawBlock:
			err = b.MarshalXML(e, xml.StartElement{})
		default:
			err = fmt.Errorf("unknown block type %T", block)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// substituteRawSlots replaces placeholder elements with the captured
// raw content, in order. A count mismatch means the encoder and the
// collector walked the tree differently and the output cannot be
// trusted.
func substituteRawSlots(data []byte, raws [][]byte) ([]byte, error) {
	parts := bytes.Split(data, rawSlotTag)
	if len(parts) != len(raws)+1 {
		return nil, fmt.Errorf("raw content slots out of sync: %d placeholders, %d captures", len(parts)-1, len(raws))
	}
	if len(raws) == 0 {
		return data, nil
	}
	var buf bytes.Buffer
	buf.Grow(len(data))
	buf.Write(parts[0])
	for i, raw := range raws {
		buf.Write(raw)
		buf.Write(parts[i+1])
	}
	return buf.Bytes(), nil
}

// collectRawContents gathers raw content in the exact order the encoder
// emits placeholders for it.
func collectRawContents(p *Part) [][]byte {
	return collectBlockRaws(nil, p.Blocks)
}

func collectBlockRaws(raws [][]byte, blocks []Block) [][]byte {
	for _, block := range blocks {
		switch b := block.(type) {
		case *Paragraph:
			raws = collectParagraphRaws(raws, b)
		case *Table:
			raws = collectTableRaws(raws, b)
		case *SectionBreak:
			raws = append(raws, b.Raw.Content)
		case *RawBlock:
			raws = append(raws, b.Raw.Content)
		}
	}
	return raws
}

func collectParagraphRaws(raws [][]byte, p *Paragraph) [][]byte {
	if p.Properties != nil && len(p.Properties.Raw.Content) > 0 {
		raws = append(raws, p.Properties.Raw.Content)
	}
	for _, child := range p.Children {
		switch c := child.(type) {
		case *Run:
			raws = collectRunRaws(raws, c)
		case *Hyperlink:
			for _, hc := range c.Children {
				switch cc := hc.(type) {
				case *Run:
					raws = collectRunRaws(raws, cc)
				case *RawChild:
					raws = append(raws, cc.Content)
				}
			}
		case *RawChild:
			raws = append(raws, c.Content)
		}
	}
	return raws
}

func collectRunRaws(raws [][]byte, r *Run) [][]byte {
	if r.Properties != nil && !r.Properties.Empty() {
		raws = append(raws, r.Properties.Raw.Content)
	}
	for _, raw := range r.Raw {
		raws = append(raws, raw.Content)
	}
	return raws
}

func collectTableRaws(raws [][]byte, t *Table) [][]byte {
	for _, child := range t.Children {
		switch c := child.(type) {
		case *TableRow:
			for _, rc := range c.Children {
				switch cc := rc.(type) {
				case *TableCell:
					raws = collectBlockRaws(raws, cc.Blocks)
				case *RawChild:
					raws = append(raws, cc.Content)
				}
			}
		case *RawChild:
			raws = append(raws, c.Content)
		}
	}
	return raws
}
