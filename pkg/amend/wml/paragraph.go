package wml

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Paragraph is an ordered sequence of children: runs, hyperlinks,
// bookmark markers and raw passthrough content. Children keeps document
// order; every edit the engine makes rewrites this slice.
type Paragraph struct {
	Properties *ParagraphProperties
	Children   []ParagraphChild
}

func (p Paragraph) isBlock() {}

// GetText returns the concatenated text of all runs, including runs
// nested in hyperlinks. Markers, breaks and raw content contribute
// nothing.
func (p *Paragraph) GetText() string {
	var b strings.Builder
	for _, child := range p.Children {
		switch c := child.(type) {
		case *Run:
			b.WriteString(c.GetText())
		case *Hyperlink:
			b.WriteString(c.GetText())
		}
	}
	return b.String()
}

// UnmarshalXML consumes a w:p element preserving child order.
func (p *Paragraph) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		token, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "pPr":
				raw, err := decodeRaw(d, t)
				if err != nil {
					return err
				}
				p.Properties = &ParagraphProperties{Raw: *raw}
			case "r":
				var run Run
				if err := d.DecodeElement(&run, &t); err != nil {
					return err
				}
				p.Children = append(p.Children, &run)
			case "hyperlink":
				var link Hyperlink
				if err := d.DecodeElement(&link, &t); err != nil {
					return err
				}
				p.Children = append(p.Children, &link)
			case "bookmarkStart":
				bs, err := parseBookmarkStart(t)
				if err != nil {
					return err
				}
				if err := d.Skip(); err != nil {
					return err
				}
				p.Children = append(p.Children, bs)
			case "bookmarkEnd":
				be, err := parseBookmarkEnd(t)
				if err != nil {
					return err
				}
				if err := d.Skip(); err != nil {
					return err
				}
				p.Children = append(p.Children, be)
			default:
				raw, err := decodeRaw(d, t)
				if err != nil {
					return err
				}
				p.Children = append(p.Children, raw)
			}
		case xml.EndElement:
			if t.Name.Local == "p" {
				return nil
			}
		}
	}
	return nil
}

// MarshalXML writes the paragraph and its children in order.
func (p Paragraph) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:p"}
	start.Attr = nil
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	if p.Properties != nil && len(p.Properties.Raw.Content) > 0 {
		if err := p.Properties.Raw.MarshalXML(e, xml.StartElement{}); err != nil {
			return err
		}
	}
	for _, child := range p.Children {
		var err error
		switch c := child.(type) {
		case *Run:
			err = e.EncodeElement(c, xml.StartElement{Name: xml.Name{Local: "w:r"}})
		case *Hyperlink:
			err = e.EncodeElement(c, xml.StartElement{Name: xml.Name{Local: "w:hyperlink"}})
		case *BookmarkStart:
			err = e.EncodeElement(c, xml.StartElement{Name: xml.Name{Local: "w:bookmarkStart"}})
		case *BookmarkEnd:
			err = e.EncodeElement(c, xml.StartElement{Name: xml.Name{Local: "w:bookmarkEnd"}})
		case *RawChild:
			err = c.MarshalXML(e, xml.StartElement{})
		}
		if err != nil {
			return err
		}
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// ParagraphProperties carries a paragraph's complete w:pPr element
// verbatim, for the same reason run properties are verbatim: the engine
// reuses formatting, it never rewrites it.
type ParagraphProperties struct {
	Raw RawChild
}

// NewParagraphProperties builds properties referencing a named
// paragraph style, or nil when style is empty.
func NewParagraphProperties(style string) *ParagraphProperties {
	if style == "" {
		return nil
	}
	var buf strings.Builder
	buf.WriteString(`<w:pPr><w:pStyle w:val="`)
	buf.WriteString(attrEscaper.Replace(style))
	buf.WriteString(`"></w:pStyle></w:pPr>`)
	return &ParagraphProperties{Raw: RawChild{
		Name:    xml.Name{Local: "pPr"},
		Content: []byte(buf.String()),
	}}
}

// Hyperlink wraps runs that render as a link. The relationship ID
// points at the link target in the part's relationship table. Children
// keeps document order the same way a paragraph does.
type Hyperlink struct {
	ID       string
	Anchor   string
	History  string
	Children []ParagraphChild
}

func (h Hyperlink) isParagraphChild() {}

// Runs returns the hyperlink's runs in order.
func (h *Hyperlink) Runs() []*Run {
	var runs []*Run
	for _, child := range h.Children {
		if run, ok := child.(*Run); ok {
			runs = append(runs, run)
		}
	}
	return runs
}

// GetText returns the concatenated text of the hyperlink's runs.
func (h *Hyperlink) GetText() string {
	var b strings.Builder
	for _, run := range h.Runs() {
		b.WriteString(run.GetText())
	}
	return b.String()
}

// UnmarshalXML consumes a w:hyperlink element.
func (h *Hyperlink) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	h.ID = attrValue(start.Attr, "id")
	h.Anchor = attrValue(start.Attr, "anchor")
	h.History = attrValue(start.Attr, "history")

	for {
		token, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "r":
				var run Run
				if err := d.DecodeElement(&run, &t); err != nil {
					return err
				}
				h.Children = append(h.Children, &run)
			default:
				raw, err := decodeRaw(d, t)
				if err != nil {
					return err
				}
				h.Children = append(h.Children, raw)
			}
		case xml.EndElement:
			if t.Name.Local == "hyperlink" {
				return nil
			}
		}
	}
	return nil
}

// MarshalXML writes the hyperlink with its relationship attributes.
func (h Hyperlink) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:hyperlink"}
	start.Attr = nil
	if h.ID != "" {
		start.Attr = append(start.Attr, xml.Attr{
			Name:  xml.Name{Space: "http://schemas.openxmlformats.org/officeDocument/2006/relationships", Local: "id"},
			Value: h.ID,
		})
	}
	if h.Anchor != "" {
		start.Attr = append(start.Attr, xml.Attr{
			Name:  xml.Name{Local: "w:anchor"},
			Value: h.Anchor,
		})
	}
	if h.History != "" {
		start.Attr = append(start.Attr, xml.Attr{
			Name:  xml.Name{Local: "w:history"},
			Value: h.History,
		})
	}
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	for _, child := range h.Children {
		var err error
		switch c := child.(type) {
		case *Run:
			err = e.EncodeElement(c, xml.StartElement{Name: xml.Name{Local: "w:r"}})
		case *RawChild:
			err = c.MarshalXML(e, xml.StartElement{})
		}
		if err != nil {
			return err
		}
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// BookmarkStart is the opening half of a bookmark marker pair. Markers
// sit between runs and carry no text of their own.
type BookmarkStart struct {
	ID   int
	Name string
}

func (b BookmarkStart) isParagraphChild() {}

func parseBookmarkStart(t xml.StartElement) (*BookmarkStart, error) {
	id, err := strconv.Atoi(attrValue(t.Attr, "id"))
	if err != nil {
		return nil, fmt.Errorf("bookmarkStart with bad id %q: %w", attrValue(t.Attr, "id"), err)
	}
	return &BookmarkStart{ID: id, Name: attrValue(t.Attr, "name")}, nil
}

// MarshalXML writes w:bookmarkStart as an empty element.
func (b BookmarkStart) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:bookmarkStart"}
	start.Attr = []xml.Attr{
		{Name: xml.Name{Local: "w:id"}, Value: strconv.Itoa(b.ID)},
		{Name: xml.Name{Local: "w:name"}, Value: b.Name},
	}
	return e.EncodeElement(struct{}{}, start)
}

// BookmarkEnd is the closing half of a bookmark marker pair, tied to
// its start by ID.
type BookmarkEnd struct {
	ID int
}

func (b BookmarkEnd) isParagraphChild() {}

func parseBookmarkEnd(t xml.StartElement) (*BookmarkEnd, error) {
	id, err := strconv.Atoi(attrValue(t.Attr, "id"))
	if err != nil {
		return nil, fmt.Errorf("bookmarkEnd with bad id %q: %w", attrValue(t.Attr, "id"), err)
	}
	return &BookmarkEnd{ID: id}, nil
}

// MarshalXML writes w:bookmarkEnd as an empty element.
func (b BookmarkEnd) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:bookmarkEnd"}
	start.Attr = []xml.Attr{
		{Name: xml.Name{Local: "w:id"}, Value: strconv.Itoa(b.ID)},
	}
	return e.EncodeElement(struct{}{}, start)
}
