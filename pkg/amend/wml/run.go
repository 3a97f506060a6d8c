package wml

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
)

// Run is a contiguous stretch of paragraph content sharing one set of
// formatting properties. A run holds at most one text element; runs
// carrying drawings, fields or other non-text content keep it as raw
// children.
type Run struct {
	Properties *RunProperties
	Text       *Text
	Break      *Break
	Raw        []RawChild
}

func (r Run) isParagraphChild() {}

// GetText returns the run's text content, empty for text-less runs.
func (r *Run) GetText() string {
	if r.Text == nil {
		return ""
	}
	return r.Text.Content
}

// NewTextRun builds a run holding the given text with the given
// formatting. Leading or trailing whitespace forces xml:space="preserve"
// so Word does not trim it on load.
func NewTextRun(text string, props *RunProperties) *Run {
	t := &Text{Content: text}
	if len(text) > 0 && (text != strings.TrimSpace(text)) {
		t.Space = "preserve"
	}
	return &Run{Properties: props, Text: t}
}

// UnmarshalXML consumes a w:r element, keeping text and break typed and
// capturing anything else verbatim.
func (r *Run) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
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
			case "rPr":
				props, err := decodeRunProperties(d, t)
				if err != nil {
					return err
				}
				r.Properties = props
			case "t":
				var text Text
				if err := d.DecodeElement(&text, &t); err != nil {
					return err
				}
				if r.Text == nil {
					r.Text = &text
				} else {
					// Word occasionally emits several w:t in one run;
					// fold them into one so offsets stay simple.
					r.Text.Content += text.Content
					if text.Space == "preserve" {
						r.Text.Space = "preserve"
					}
				}
			case "br":
				var br Break
				if err := d.DecodeElement(&br, &t); err != nil {
					return err
				}
				r.Break = &br
			default:
				raw, err := decodeRaw(d, t)
				if err != nil {
					return err
				}
				r.Raw = append(r.Raw, *raw)
			}
		case xml.EndElement:
			if t.Name.Local == "r" {
				return nil
			}
		}
	}
	return nil
}

// MarshalXML writes the run with the conventional w: prefix. Raw
// children emit placeholders resolved by MarshalPart.
func (r Run) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:r"}
	start.Attr = nil
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	if r.Properties != nil && !r.Properties.Empty() {
		if err := r.Properties.Raw.MarshalXML(e, xml.StartElement{Name: xml.Name{Local: "w:rPr"}}); err != nil {
			return err
		}
	}
	if r.Text != nil {
		if err := e.EncodeElement(r.Text, xml.StartElement{Name: xml.Name{Local: "w:t"}}); err != nil {
			return err
		}
	}
	if r.Break != nil {
		if err := e.Encode(r.Break); err != nil {
			return err
		}
	}
	for _, raw := range r.Raw {
		if err := raw.MarshalXML(e, xml.StartElement{Name: xml.Name{Local: rawSlotName}}); err != nil {
			return err
		}
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// RunProperties carries a run's complete w:rPr element. The engine
// copies formatting between runs wholesale and never edits single
// properties, so the element is preserved verbatim; that keeps child
// order and vendor attributes intact across a write-back.
type RunProperties struct {
	Raw RawChild
}

func decodeRunProperties(d *xml.Decoder, start xml.StartElement) (*RunProperties, error) {
	raw, err := decodeRaw(d, start)
	if err != nil {
		return nil, err
	}
	return &RunProperties{Raw: *raw}, nil
}

// RunPropertiesFromXML builds properties from a prefixed w:rPr element
// text, e.g. `<w:rPr><w:b></w:b></w:rPr>`.
func RunPropertiesFromXML(content string) *RunProperties {
	return &RunProperties{Raw: RawChild{
		Name:    xml.Name{Local: "rPr"},
		Content: []byte(content),
	}}
}

// Empty reports whether the properties carry no formatting at all.
func (p *RunProperties) Empty() bool {
	if p == nil {
		return true
	}
	c := string(p.Raw.Content)
	return c == "" || c == "<w:rPr></w:rPr>"
}

// Equal reports whether two property sets describe the same formatting.
// Nil and empty properties are the same thing.
func (p *RunProperties) Equal(o *RunProperties) bool {
	if p.Empty() {
		return o.Empty()
	}
	if o.Empty() {
		return false
	}
	return bytes.Equal(p.Raw.Content, o.Raw.Content)
}

// Text is a run's literal text content.
type Text struct {
	XMLName xml.Name `xml:"t"`
	Space   string   `xml:"space,attr"`
	Content string   `xml:",chardata"`
}

// MarshalXML writes w:t, declaring xml:space="preserve" through the XML
// namespace so significant whitespace survives.
func (t Text) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:t"}
	start.Attr = nil
	if t.Space == "preserve" {
		start.Attr = append(start.Attr, xml.Attr{
			Name:  xml.Name{Space: "http://www.w3.org/XML/1998/namespace", Local: "space"},
			Value: "preserve",
		})
	}
	return e.EncodeElement(t.Content, start)
}

// Break is a w:br line, column or page break.
type Break struct {
	Type string `xml:"type,attr,omitempty"`
}

// MarshalXML writes w:br as an empty element.
func (b *Break) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:br"}
	start.Attr = nil
	if b.Type != "" {
		start.Attr = append(start.Attr, xml.Attr{
			Name:  xml.Name{Local: "w:type"},
			Value: b.Type,
		})
	}
	return e.EncodeElement(struct{}{}, start)
}
