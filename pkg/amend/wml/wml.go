// Package wml holds the WordprocessingML types shared by the editing
// engine: blocks (paragraphs, tables, section breaks), paragraph
// children (runs, hyperlinks, bookmark markers) and the raw passthrough
// used for everything the engine never touches.
//
// Parsing keeps element order. Content the engine does not interpret is
// captured verbatim as RawChild and written back byte for byte, so a
// document survives a parse/marshal cycle even when it carries drawings,
// fields or vendor extensions.
package wml

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// Block is any element that can appear at body level: a paragraph, a
// table, a section break or an uninterpreted raw element.
type Block interface {
	isBlock()
}

// ParagraphChild is any element that can appear inside a paragraph.
type ParagraphChild interface {
	isParagraphChild()
}

// namespacePrefixes maps namespace URIs to their conventional prefixes.
// Go's XML decoder resolves prefixes to URIs; when raw content is
// reconstructed the prefixes have to be restored so Word accepts the
// part again.
var namespacePrefixes = map[string]string{
	"http://schemas.openxmlformats.org/wordprocessingml/2006/main":           "w",
	"http://schemas.openxmlformats.org/officeDocument/2006/relationships":    "r",
	"http://schemas.openxmlformats.org/officeDocument/2006/math":             "m",
	"http://www.w3.org/XML/1998/namespace":                                   "xml",
	"http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing": "wp",
	"http://schemas.openxmlformats.org/drawingml/2006/main":                  "a",
	"http://schemas.openxmlformats.org/drawingml/2006/picture":               "pic",
	"http://schemas.microsoft.com/office/word/2010/wordprocessingDrawing":    "wp14",
	"http://schemas.microsoft.com/office/drawing/2010/main":                  "a14",
	"urn:schemas-microsoft-com:vml":                                          "v",
	"urn:schemas-microsoft-com:office:office":                                "o",
	"urn:schemas-microsoft-com:office:word":                                  "w10",
	"http://schemas.openxmlformats.org/markup-compatibility/2006":            "mc",
	"http://schemas.microsoft.com/office/word/2010/wordprocessingShape":      "wps",
	"http://schemas.microsoft.com/office/word/2010/wordprocessingCanvas":     "wpc",
	"http://schemas.microsoft.com/office/word/2010/wordprocessingGroup":      "wpg",
	"http://schemas.microsoft.com/office/word/2010/wordprocessingInk":        "wpi",
	"http://schemas.microsoft.com/office/word/2010/wordml":                   "w14",
	"http://schemas.microsoft.com/office/word/2012/wordml":                   "w15",
	"http://schemas.microsoft.com/office/word/2015/wordml/symex":             "w16se",
	"http://schemas.microsoft.com/office/word/2016/wordml/cid":               "w16cid",
	"http://schemas.microsoft.com/office/word/2018/wordml":                   "w16",
	"http://schemas.microsoft.com/office/word/2018/wordml/cex":               "w16cex",
	"http://schemas.microsoft.com/office/word/2020/wordml/sdtdatahash":       "w16sdtdh",
	"http://schemas.microsoft.com/office/word/2006/wordml":                   "wne",
	"http://schemas.microsoft.com/office/drawing/2016/ink":                   "aink",
	"http://schemas.microsoft.com/office/drawing/2017/model3d":               "am3d",
	"http://schemas.microsoft.com/office/2019/extlst":                        "oel",
}

// prefixed restores the conventional prefix for a resolved XML name.
func prefixed(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	if p, ok := namespacePrefixes[name.Space]; ok {
		return p + ":" + name.Local
	}
	// Unknown namespace: keep the URI so the problem is visible in the
	// output instead of silently dropping the qualifier.
	return name.Space + ":" + name.Local
}

var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

var charEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

func writeStartTag(buf *strings.Builder, name xml.Name, attrs []xml.Attr) {
	buf.WriteString("<")
	buf.WriteString(prefixed(name))
	for _, attr := range attrs {
		if attr.Name.Space == "xmlns" || (attr.Name.Space == "" && attr.Name.Local == "xmlns") {
			// Namespace declarations live on the part root, which is
			// preserved verbatim.
			buf.WriteString(" xmlns")
			if attr.Name.Space == "xmlns" {
				buf.WriteString(":")
				buf.WriteString(attr.Name.Local)
			}
			buf.WriteString(`="`)
			buf.WriteString(attrEscaper.Replace(attr.Value))
			buf.WriteString(`"`)
			continue
		}
		buf.WriteString(" ")
		buf.WriteString(prefixed(attr.Name))
		buf.WriteString(`="`)
		buf.WriteString(attrEscaper.Replace(attr.Value))
		buf.WriteString(`"`)
	}
	buf.WriteString(">")
}

func writeEndTag(buf *strings.Builder, name xml.Name) {
	buf.WriteString("</")
	buf.WriteString(prefixed(name))
	buf.WriteString(">")
}

// RawChild is an element the engine preserves but does not parse. Name
// is the resolved element name; Content is the complete element text
// with prefixes restored, ready to be written back verbatim.
type RawChild struct {
	Name    xml.Name
	Content []byte
}

func (r RawChild) isParagraphChild() {}

// Local reports the element's local name.
func (r *RawChild) Local() string {
	return r.Name.Local
}

// rawSlotName marks a position in marshaled output where raw content is
// spliced back in. The encoder cannot emit raw bytes, so raw children
// write an empty placeholder element; MarshalPart replaces placeholders
// with the captured content in document order.
const rawSlotName = "rawslot"

var rawSlotTag = []byte("<" + rawSlotName + "></" + rawSlotName + ">")

// MarshalXML emits a placeholder element. The real content is spliced
// in by MarshalPart.
func (r RawChild) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: rawSlotName}
	start.Attr = nil
	return e.EncodeElement(struct{}{}, start)
}

// decodeRaw captures the element opened by start, including all nested
// content, as prefixed XML text. The decoder is left positioned after
// the element's end tag.
func decodeRaw(d *xml.Decoder, start xml.StartElement) (*RawChild, error) {
	var buf strings.Builder
	writeStartTag(&buf, start.Name, start.Attr)

	depth := 1
	for depth > 0 {
		tok, err := d.Token()
		if err != nil {
			return nil, fmt.Errorf("capturing <%s>: %w", start.Name.Local, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			writeStartTag(&buf, t.Name, t.Attr)
		case xml.EndElement:
			depth--
			writeEndTag(&buf, t.Name)
		case xml.CharData:
			buf.WriteString(charEscaper.Replace(string(t)))
		}
	}

	return &RawChild{Name: start.Name, Content: []byte(buf.String())}, nil
}

// RawBlock is a body-level element the engine preserves but does not
// parse, such as a structured document tag or a standalone permission
// marker.
type RawBlock struct {
	Raw RawChild
}

func (b RawBlock) isBlock() {}

// MarshalXML emits the raw slot placeholder for the wrapped content.
func (b RawBlock) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	return b.Raw.MarshalXML(e, start)
}

// SectionBreak is a body-level w:sectPr. Word requires it as the last
// body element; it is modeled as a block so body order survives edits.
type SectionBreak struct {
	Raw RawChild
}

func (s SectionBreak) isBlock() {}

// MarshalXML emits the raw slot placeholder for the section content.
func (s SectionBreak) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	return s.Raw.MarshalXML(e, start)
}

// attrValue returns the value of the attribute with the given local
// name, ignoring its namespace.
func attrValue(attrs []xml.Attr, local string) string {
	for _, a := range attrs {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
