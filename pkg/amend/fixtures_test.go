package amend

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"io"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/juliankroeber/go-amend/pkg/amend/wml"
)

// buildDocx assembles an in-memory DOCX package with the given body
// content inside w:body. Extra package files layer over the defaults;
// an entry with a default's name replaces it.
func buildDocx(t *testing.T, body string, extra map[string][]byte) []byte {
	t.Helper()

	files := map[string][]byte{
		"_rels/.rels": []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`),
		"word/_rels/document.xml.rels": []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
</Relationships>`),
		"word/document.xml": []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
<w:body>` + body + `</w:body>
</w:document>`),
		"[Content_Types].xml": []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`),
	}
	for name, data := range extra {
		files[name] = data
	}
	return buildZip(t, files)
}

// buildZip writes the files into a zip archive, sorted for determinism.
func buildZip(t *testing.T, files map[string][]byte) []byte {
	t.Helper()

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range names {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("creating %s: %v", name, err)
		}
		if _, err := fw.Write(files[name]); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing package: %v", err)
	}
	return buf.Bytes()
}

// openDocx builds the package and opens it.
func openDocx(t *testing.T, body string, extra map[string][]byte) *Document {
	t.Helper()
	doc, err := OpenBytes(buildDocx(t, body, extra))
	if err != nil {
		t.Fatalf("OpenBytes() error = %v", err)
	}
	return doc
}

// headerXML wraps blocks in a header part.
func headerXML(body string) []byte {
	return []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:hdr xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">` + body + `</w:hdr>`)
}

// footerXML wraps blocks in a footer part.
func footerXML(body string) []byte {
	return []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:ftr xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">` + body + `</w:ftr>`)
}

// relsXML builds a relationship table part.
func relsXML(entries ...string) []byte {
	return []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` + strings.Join(entries, "") + `</Relationships>`)
}

func imageRelXML(id, target string) string {
	return `<Relationship Id="` + id + `" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="` + target + `"/>`
}

func para(children ...string) string {
	return "<w:p>" + strings.Join(children, "") + "</w:p>"
}

func run(text string) string {
	return `<w:r><w:t xml:space="preserve">` + text + `</w:t></w:r>`
}

func boldRun(text string) string {
	return `<w:r><w:rPr><w:b></w:b></w:rPr><w:t xml:space="preserve">` + text + `</w:t></w:r>`
}

func bookmark(id int, name, covered string) string {
	return `<w:bookmarkStart w:id="` + strconv.Itoa(id) + `" w:name="` + name + `"/>` +
		covered +
		`<w:bookmarkEnd w:id="` + strconv.Itoa(id) + `"/>`
}

// tinyPNG is a valid 1x1 PNG.
var tinyPNG, _ = base64.StdEncoding.DecodeString(
	"iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg==")

// bodyText is the body's visible text after a save/reopen round trip.
func bodyText(t *testing.T, packageBytes []byte) string {
	t.Helper()
	doc, err := OpenBytes(packageBytes)
	if err != nil {
		t.Fatalf("reopening package: %v", err)
	}
	return doc.Body().Text()
}

// saveToBytes writes the document and returns the package bytes.
func saveToBytes(t *testing.T, doc *Document) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	return buf.Bytes()
}

// packageFile reads one file out of a saved package, nil when absent.
func packageFile(t *testing.T, packageBytes []byte, name string) []byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(packageBytes), int64(len(packageBytes)))
	if err != nil {
		t.Fatalf("reading package: %v", err)
	}
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("opening %s: %v", name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("reading %s: %v", name, err)
		}
		return data
	}
	return nil
}

// packageNames lists the files of a saved package.
func packageNames(t *testing.T, packageBytes []byte) []string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(packageBytes), int64(len(packageBytes)))
	if err != nil {
		t.Fatalf("reading package: %v", err)
	}
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names
}

// bodyPara returns the body paragraph at the given block index.
func bodyPara(t *testing.T, doc *Document, index int) *wml.Paragraph {
	t.Helper()
	blocks := doc.Body().Blocks()
	if index >= len(blocks) {
		t.Fatalf("body has %d block(s), wanted index %d", len(blocks), index)
	}
	p, ok := blocks[index].(*wml.Paragraph)
	if !ok {
		t.Fatalf("block %d is %T, wanted a paragraph", index, blocks[index])
	}
	return p
}
