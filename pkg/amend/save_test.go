package amend

import (
	"bytes"
	"encoding/xml"
	"path/filepath"
	"strings"
	"testing"
)

func TestSavePreservesUntouchedParts(t *testing.T) {
	styles := []byte(`<?xml version="1.0"?><w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:style w:styleId="X"/></w:styles>`)
	custom := []byte("opaque bytes, not even XML")

	source := buildDocx(t, para(run("untouched")), map[string][]byte{
		"word/styles.xml":    styles,
		"customXml/item.bin": custom,
	})
	doc, err := OpenBytes(source)
	if err != nil {
		t.Fatalf("OpenBytes() error = %v", err)
	}

	saved := saveToBytes(t, doc)

	if got := packageFile(t, saved, "word/styles.xml"); !bytes.Equal(got, styles) {
		t.Errorf("styles.xml rewritten:\n%s", got)
	}
	if got := packageFile(t, saved, "customXml/item.bin"); !bytes.Equal(got, custom) {
		t.Errorf("item.bin rewritten:\n%s", got)
	}
	// No edits, so even the document part is a byte-for-byte copy.
	want := packageFile(t, source, "word/document.xml")
	if got := packageFile(t, saved, "word/document.xml"); !bytes.Equal(got, want) {
		t.Errorf("document.xml rewritten without edits:\n%s", got)
	}
}

func TestSaveRewritesEditedParts(t *testing.T) {
	doc := openDocx(t, para(run("old body")), map[string][]byte{
		"word/header1.xml": headerXML(para(run("old header"))),
	})

	if _, err := doc.ReplaceAllText("old", "new", ReplaceOptions{Fixed: true}); err != nil {
		t.Fatalf("ReplaceAllText() error = %v", err)
	}

	saved := saveToBytes(t, doc)

	data := packageFile(t, saved, "word/document.xml")
	if !bytes.HasPrefix(data, []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)) {
		t.Errorf("rewritten part missing the XML header: %.60s", data)
	}
	if !bytes.Contains(data, []byte("new body")) {
		t.Errorf("rewritten part missing the replacement:\n%s", data)
	}
	if got := bodyText(t, saved); got != "new body" {
		t.Errorf("reopened body text = %q, want %q", got, "new body")
	}
	// The header was not edited and is copied as-is.
	reopened, err := OpenBytes(saved)
	if err != nil {
		t.Fatalf("OpenBytes() error = %v", err)
	}
	if got := reopened.Headers()[0].Text(); got != "old header" {
		t.Errorf("header text = %q, want %q", got, "old header")
	}
}

func TestSaveSuccessiveStates(t *testing.T) {
	doc := openDocx(t, para(run("state zero")), nil)

	if _, err := doc.ReplaceAllText("zero", "one", ReplaceOptions{Fixed: true}); err != nil {
		t.Fatalf("ReplaceAllText() error = %v", err)
	}
	first := saveToBytes(t, doc)

	if _, err := doc.ReplaceAllText("one", "two", ReplaceOptions{Fixed: true}); err != nil {
		t.Fatalf("ReplaceAllText() after save error = %v", err)
	}
	second := saveToBytes(t, doc)

	if got := bodyText(t, first); got != "state one" {
		t.Errorf("first save body = %q, want %q", got, "state one")
	}
	if got := bodyText(t, second); got != "state two" {
		t.Errorf("second save body = %q, want %q", got, "state two")
	}
}

func TestSaveFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.docx")

	doc := openDocx(t, para(run("to disk")), nil)
	if err := doc.SaveFile(path); err != nil {
		t.Fatalf("SaveFile() error = %v", err)
	}

	reopened, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	if got := reopened.Body().Text(); got != "to disk" {
		t.Errorf("body text = %q, want %q", got, "to disk")
	}

	if err := doc.SaveFile(filepath.Join(path, "nope.docx")); !IsDocumentError(err) {
		t.Errorf("SaveFile() below a file error = %v, want DocumentError", err)
	}
}

func TestSaveCreatesMissingRelsFile(t *testing.T) {
	// The header has no relationships file in the source package; the
	// image insertion must create one.
	doc := openDocx(t, para(run("body")), map[string][]byte{
		"word/header1.xml": headerXML(para(run("h "), bookmark(1, "logo", run("old")), run(" h"))),
	})

	img, err := NewImage(tinyPNG)
	if err != nil {
		t.Fatalf("NewImage() error = %v", err)
	}
	if err := doc.ReplaceBookmarkImage("logo", img); err != nil {
		t.Fatalf("ReplaceBookmarkImage() error = %v", err)
	}

	saved := saveToBytes(t, doc)

	rels := packageFile(t, saved, "word/_rels/header1.xml.rels")
	if rels == nil {
		t.Fatalf("header rels file not created; package has %v", packageNames(t, saved))
	}
	if !bytes.Contains(rels, []byte("media/amend-")) {
		t.Errorf("header rels missing the image relationship:\n%s", rels)
	}
	if _, err := OpenBytes(saved); err != nil {
		t.Fatalf("OpenBytes() after save error = %v", err)
	}
}

func TestEnsureContentTypeDefaults(t *testing.T) {
	source := []byte(`<?xml version="1.0"?>` +
		`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
		`<Default Extension="png" ContentType="image/png"/>` +
		`</Types>`)

	out, err := ensureContentTypeDefaults(source, []string{
		"word/media/a.png", // already registered
		"word/media/b.jpg",
		"word/media/c.xyz", // unknown extension
	})
	if err != nil {
		t.Fatalf("ensureContentTypeDefaults() error = %v", err)
	}

	ct := &ContentTypes{}
	if err := xml.Unmarshal(out, ct); err != nil {
		t.Fatalf("output does not parse: %v\n%s", err, out)
	}
	got := make(map[string]string, len(ct.Defaults))
	for _, def := range ct.Defaults {
		got[def.Extension] = def.ContentType
	}
	want := map[string]string{
		"png": "image/png",
		"jpg": "image/jpeg",
		"xyz": "image/xyz",
	}
	for ext, contentType := range want {
		if got[ext] != contentType {
			t.Errorf("default for %q = %q, want %q", ext, got[ext], contentType)
		}
	}
	if len(got) != len(want) {
		t.Errorf("defaults = %v, want %v", got, want)
	}
	if !strings.HasPrefix(string(out), `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`) {
		t.Errorf("output missing the XML header: %.60s", out)
	}
}

func TestSaveKeepsPackageOpenable(t *testing.T) {
	// A fuller document: tables, hyperlinks, bookmarks, an image and a
	// reclaim, all surviving one save.
	body := para(run("intro "), bookmark(1, "pic", run("here"))) +
		"<w:tbl><w:tr><w:tc>" + para(run("cell text")) + "</w:tc></w:tr></w:tbl>" +
		para(run("see "), `<w:hyperlink r:id="rId9"><w:r><w:t>link</w:t></w:r></w:hyperlink>`)
	doc := openDocx(t, body, map[string][]byte{
		"word/media/orphan.png": tinyPNG,
	})

	img, err := NewImage(tinyPNG)
	if err != nil {
		t.Fatalf("NewImage() error = %v", err)
	}
	if err := doc.ReplaceBookmarkImage("pic", img); err != nil {
		t.Fatalf("ReplaceBookmarkImage() error = %v", err)
	}
	if _, err := doc.ReplaceAllText("cell", "table", ReplaceOptions{Fixed: true}); err != nil {
		t.Fatalf("ReplaceAllText() error = %v", err)
	}
	if _, err := doc.ReclaimUnusedMedia(); err != nil {
		t.Fatalf("ReclaimUnusedMedia() error = %v", err)
	}

	saved := saveToBytes(t, doc)
	reopened, err := OpenBytes(saved)
	if err != nil {
		t.Fatalf("OpenBytes() error = %v", err)
	}
	if got := reopened.Body().Text(); got != "intro \ntable text\nsee link" {
		t.Errorf("body text = %q", got)
	}
	if got := reopened.Bookmarks(); len(got) != 1 || got[0] != "pic" {
		t.Errorf("Bookmarks() = %v, want [pic]", got)
	}
}
