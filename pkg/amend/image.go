package amend

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"image"
	"os"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gofrs/uuid"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/juliankroeber/go-amend/pkg/amend/wml"
)

const imageRelationshipType = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"

// emuPerPixel converts pixels at 96 dpi to English Metric Units, the
// unit drawing extents are declared in.
const emuPerPixel = 9525

// Image is picture content ready to be placed into a document. Width
// and Height are in pixels at 96 dpi; they are read from the image
// header and may be overridden before insertion to scale the picture.
type Image struct {
	Data   []byte
	Format string
	Width  int
	Height int
}

// NewImage inspects the image header to learn its format and pixel
// dimensions. PNG, JPEG, GIF, BMP, TIFF and WebP are recognized.
func NewImage(data []byte) (*Image, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return &Image{Data: data, Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// NewImageFile reads an image from disk.
func NewImageFile(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewDocumentError("image", path, err)
	}
	img, err := NewImage(data)
	if err != nil {
		return nil, NewDocumentError("image", path, err)
	}
	return img, nil
}

// extension returns the media filename extension for the image format.
func (img *Image) extension() string {
	if img.Format == "jpeg" {
		return "jpg"
	}
	return img.Format
}

// ReplaceBookmarkImage replaces the content a bookmark covers with an
// inline picture at its natural size. The image bytes become a new
// media part; the markers stay in place, so the bookmark remains valid.
func (d *Document) ReplaceBookmarkImage(name string, img *Image) error {
	rng, err := d.findBookmarkAnywhere(name)
	if err != nil {
		return err
	}
	if err := rng.validate(); err != nil {
		return err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return NewDocumentError("image", name, err)
	}
	target := fmt.Sprintf("media/amend-%s.%s", id, img.extension())
	relID := rng.part.Rels.Add(imageRelationshipType, target)
	rng.part.relsDirty = true
	d.mediaAdds[resolveRelTarget(rng.part.Name, target)] = img.Data

	d.imageSeq++
	run := imageRun(relID, d.imageSeq, img)
	replaceBookmarkRange(rng, func(*wml.RunProperties) *wml.Run {
		return run
	})
	rng.part.markDirty()

	GetLogger().Debug("inserted %s image %dx%d at bookmark %q", img.Format, img.Width, img.Height, name)
	return nil
}

// imageRun builds a run carrying an inline drawing that embeds the
// image through the given relationship. The drawing declares its own
// namespaces so the fragment stays valid in parts that never carried a
// picture before.
func imageRun(relID string, seq int, img *Image) *wml.Run {
	cx := img.Width * emuPerPixel
	cy := img.Height * emuPerPixel
	picName := fmt.Sprintf("Picture %d", seq)

	var buf strings.Builder
	buf.WriteString(`<w:drawing><wp:inline distT="0" distB="0" distL="0" distR="0"` +
		` xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"` +
		` xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"` +
		` xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture"` +
		` xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">`)
	fmt.Fprintf(&buf, `<wp:extent cx="%d" cy="%d"></wp:extent>`, cx, cy)
	fmt.Fprintf(&buf, `<wp:docPr id="%d" name="%s"></wp:docPr>`, seq, picName)
	buf.WriteString(`<a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture"><pic:pic><pic:nvPicPr>`)
	fmt.Fprintf(&buf, `<pic:cNvPr id="%d" name="%s"></pic:cNvPr><pic:cNvPicPr></pic:cNvPicPr></pic:nvPicPr>`, seq, picName)
	fmt.Fprintf(&buf, `<pic:blipFill><a:blip r:embed="%s"></a:blip><a:stretch><a:fillRect></a:fillRect></a:stretch></pic:blipFill>`, relID)
	buf.WriteString(`<pic:spPr><a:xfrm><a:off x="0" y="0"></a:off>`)
	fmt.Fprintf(&buf, `<a:ext cx="%d" cy="%d"></a:ext>`, cx, cy)
	buf.WriteString(`</a:xfrm><a:prstGeom prst="rect"><a:avLst></a:avLst></a:prstGeom></pic:spPr></pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing>`)

	return &wml.Run{Raw: []wml.RawChild{{
		Name:    xml.Name{Space: "http://schemas.openxmlformats.org/wordprocessingml/2006/main", Local: "drawing"},
		Content: []byte(buf.String()),
	}}}
}
