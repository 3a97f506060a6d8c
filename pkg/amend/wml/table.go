package wml

import (
	"encoding/xml"
	"io"
	"strings"
)

// TableChild is any element that can appear directly inside w:tbl.
type TableChild interface {
	isTableChild()
}

// RowChild is any element that can appear directly inside w:tr.
type RowChild interface {
	isRowChild()
}

func (r RawChild) isTableChild() {}
func (r RawChild) isRowChild()   {}

// Table is a body-level table. Only rows and the paragraphs inside
// their cells are interpreted; table, row and cell properties travel
// as raw children in their original positions.
type Table struct {
	Children []TableChild
}

func (t Table) isBlock() {}

// Rows returns the table's rows in order.
func (t *Table) Rows() []*TableRow {
	var rows []*TableRow
	for _, child := range t.Children {
		if row, ok := child.(*TableRow); ok {
			rows = append(rows, row)
		}
	}
	return rows
}

// GetText returns the text of every cell, cells joined by newlines.
func (t *Table) GetText() string {
	var texts []string
	for _, row := range t.Rows() {
		for _, cell := range row.Cells() {
			if s := cell.GetText(); s != "" {
				texts = append(texts, s)
			}
		}
	}
	return strings.Join(texts, "\n")
}

// UnmarshalXML consumes a w:tbl element preserving child order.
func (t *Table) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		token, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		switch tok := token.(type) {
		case xml.StartElement:
			switch tok.Name.Local {
			case "tr":
				var row TableRow
				if err := d.DecodeElement(&row, &tok); err != nil {
					return err
				}
				t.Children = append(t.Children, &row)
			default:
				raw, err := decodeRaw(d, tok)
				if err != nil {
					return err
				}
				t.Children = append(t.Children, raw)
			}
		case xml.EndElement:
			if tok.Name.Local == "tbl" {
				return nil
			}
		}
	}
	return nil
}

// MarshalXML writes the table and its children in order.
func (t Table) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:tbl"}
	start.Attr = nil
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	for _, child := range t.Children {
		var err error
		switch c := child.(type) {
		case *TableRow:
			err = e.EncodeElement(c, xml.StartElement{Name: xml.Name{Local: "w:tr"}})
		case *RawChild:
			err = c.MarshalXML(e, xml.StartElement{})
		}
		if err != nil {
			return err
		}
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// TableRow is a w:tr row.
type TableRow struct {
	Children []RowChild
}

func (r TableRow) isTableChild() {}

// Cells returns the row's cells in order.
func (r *TableRow) Cells() []*TableCell {
	var cells []*TableCell
	for _, child := range r.Children {
		if cell, ok := child.(*TableCell); ok {
			cells = append(cells, cell)
		}
	}
	return cells
}

// UnmarshalXML consumes a w:tr element preserving child order.
func (r *TableRow) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		token, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		switch tok := token.(type) {
		case xml.StartElement:
			switch tok.Name.Local {
			case "tc":
				var cell TableCell
				if err := d.DecodeElement(&cell, &tok); err != nil {
					return err
				}
				r.Children = append(r.Children, &cell)
			default:
				raw, err := decodeRaw(d, tok)
				if err != nil {
					return err
				}
				r.Children = append(r.Children, raw)
			}
		case xml.EndElement:
			if tok.Name.Local == "tr" {
				return nil
			}
		}
	}
	return nil
}

// MarshalXML writes the row and its children in order.
func (r TableRow) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:tr"}
	start.Attr = nil
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	for _, child := range r.Children {
		var err error
		switch c := child.(type) {
		case *TableCell:
			err = e.EncodeElement(c, xml.StartElement{Name: xml.Name{Local: "w:tc"}})
		case *RawChild:
			err = c.MarshalXML(e, xml.StartElement{})
		}
		if err != nil {
			return err
		}
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// TableCell is a w:tc cell. Its content is a block sequence, so nested
// tables are handled the same way as body content.
type TableCell struct {
	Blocks []Block
}

func (c TableCell) isRowChild() {}

// GetText returns the concatenated text of the cell's paragraphs,
// paragraphs joined by newlines.
func (c *TableCell) GetText() string {
	var texts []string
	for _, block := range c.Blocks {
		switch b := block.(type) {
		case *Paragraph:
			if s := b.GetText(); s != "" {
				texts = append(texts, s)
			}
		case *Table:
			if s := b.GetText(); s != "" {
				texts = append(texts, s)
			}
		}
	}
	return strings.Join(texts, "\n")
}

// UnmarshalXML consumes a w:tc element preserving block order.
func (c *TableCell) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		token, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		switch tok := token.(type) {
		case xml.StartElement:
			block, err := decodeBlock(d, tok)
			if err != nil {
				return err
			}
			c.Blocks = append(c.Blocks, block)
		case xml.EndElement:
			if tok.Name.Local == "tc" {
				return nil
			}
		}
	}
	return nil
}

// MarshalXML writes the cell and its blocks in order.
func (c TableCell) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:tc"}
	start.Attr = nil
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if err := encodeBlocks(e, c.Blocks); err != nil {
		return err
	}
	return e.EncodeToken(xml.EndElement{Name: start.Name})
}
