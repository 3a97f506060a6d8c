package amend

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/juliankroeber/go-amend/pkg/amend/wml"
)

const (
	contentTypesName      = "[Content_Types].xml"
	contentTypesNamespace = "http://schemas.openxmlformats.org/package/2006/content-types"
)

// ContentTypes models [Content_Types].xml, the package's extension and
// part-name type registry.
type ContentTypes struct {
	XMLName   xml.Name              `xml:"Types"`
	Namespace string                `xml:"xmlns,attr"`
	Defaults  []ContentTypeDefault  `xml:"Default"`
	Overrides []ContentTypeOverride `xml:"Override"`
}

// ContentTypeDefault registers a MIME type for a file extension.
type ContentTypeDefault struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// ContentTypeOverride registers a MIME type for a single part.
type ContentTypeOverride struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// extensionContentTypes maps media extensions to the MIME types
// registered for them in [Content_Types].xml.
var extensionContentTypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"tiff": "image/tiff",
	"tif":  "image/tiff",
	"svg":  "image/svg+xml",
	"webp": "image/webp",
	"emf":  "image/x-emf",
	"wmf":  "image/x-wmf",
}

// Save writes the document as a DOCX package. Untouched package files
// are copied from the source byte for byte; edited parts and
// relationship tables are re-marshaled, reclaimed media is dropped and
// added media is appended with its extension registered in
// [Content_Types].xml. The document stays usable afterwards, so
// successive states can be saved.
func (d *Document) Save(w io.Writer) error {
	zw := zip.NewWriter(w)

	written := make(map[string]bool)
	var contentTypesData []byte

	for _, f := range d.reader.Files() {
		if _, gone := d.mediaDeletes[f.Name]; gone {
			continue
		}

		if f.Name == contentTypesName && len(d.mediaAdds) > 0 {
			// Written after the media loop, once the new extensions
			// are known.
			data, err := readZipFile(f)
			if err != nil {
				return NewDocumentError("save", f.Name, err)
			}
			contentTypesData = data
			continue
		}

		if part := d.partByName(f.Name); part != nil && part.dirty {
			data, err := wml.MarshalPart(part.Root)
			if err != nil {
				return NewDocumentError("save", f.Name, err)
			}
			if err := writeZipEntry(zw, f.Name, data); err != nil {
				return err
			}
			written[f.Name] = true
			continue
		}

		if owner := d.partByRelsName(f.Name); owner != nil && owner.relsDirty {
			data, err := marshalRelationships(owner.Rels)
			if err != nil {
				return NewDocumentError("save", f.Name, err)
			}
			if err := writeZipEntry(zw, f.Name, data); err != nil {
				return err
			}
			written[f.Name] = true
			continue
		}

		fw, err := zw.Create(f.Name)
		if err != nil {
			return NewDocumentError("save", f.Name, err)
		}
		fr, err := f.Open()
		if err != nil {
			return NewDocumentError("save", f.Name, err)
		}
		_, err = io.Copy(fw, fr)
		fr.Close()
		if err != nil {
			return NewDocumentError("save", f.Name, err)
		}
		written[f.Name] = true
	}

	// Relationship tables for parts that never had one in the source.
	for _, part := range d.parts {
		if !part.relsDirty {
			continue
		}
		relsName := relsPathFor(part.Name)
		if written[relsName] {
			continue
		}
		data, err := marshalRelationships(part.Rels)
		if err != nil {
			return NewDocumentError("save", relsName, err)
		}
		if err := writeZipEntry(zw, relsName, data); err != nil {
			return err
		}
	}

	names := make([]string, 0, len(d.mediaAdds))
	for name := range d.mediaAdds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writeZipEntry(zw, name, d.mediaAdds[name]); err != nil {
			return err
		}
	}

	if contentTypesData != nil {
		data, err := ensureContentTypeDefaults(contentTypesData, names)
		if err != nil {
			return NewDocumentError("save", contentTypesName, err)
		}
		if err := writeZipEntry(zw, contentTypesName, data); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return NewDocumentError("save", "", err)
	}
	return nil
}

// SaveFile writes the document to a file path.
func (d *Document) SaveFile(name string) error {
	f, err := os.Create(name)
	if err != nil {
		return NewDocumentError("save", name, err)
	}
	if err := d.Save(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return NewDocumentError("save", name, err)
	}
	return nil
}

// ensureContentTypeDefaults registers the extensions of the added media
// files, leaving everything already present untouched.
func ensureContentTypeDefaults(data []byte, mediaNames []string) ([]byte, error) {
	ct := &ContentTypes{}
	if err := xml.Unmarshal(data, ct); err != nil {
		return nil, fmt.Errorf("parsing content types: %w", err)
	}

	registered := make(map[string]bool)
	for _, def := range ct.Defaults {
		registered[strings.ToLower(def.Extension)] = true
	}

	for _, name := range mediaNames {
		ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
		if ext == "" || registered[ext] {
			continue
		}
		contentType, ok := extensionContentTypes[ext]
		if !ok {
			contentType = "image/" + ext
		}
		ct.Defaults = append(ct.Defaults, ContentTypeDefault{Extension: ext, ContentType: contentType})
		registered[ext] = true
	}

	if ct.Namespace == "" {
		ct.Namespace = contentTypesNamespace
	}

	out, err := xml.Marshal(ct)
	if err != nil {
		return nil, err
	}
	header := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"
	return append([]byte(header), out...), nil
}

func writeZipEntry(zw *zip.Writer, name string, data []byte) error {
	fw, err := zw.Create(name)
	if err != nil {
		return NewDocumentError("save", name, err)
	}
	if _, err := fw.Write(data); err != nil {
		return NewDocumentError("save", name, err)
	}
	return nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
