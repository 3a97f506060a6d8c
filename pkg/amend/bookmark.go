package amend

import (
	"fmt"

	"github.com/juliankroeber/go-amend/pkg/amend/wml"
)

// bookmarkRange is a resolved bookmark: both markers located within one
// part. Resolution is read-only; mutation is performed by the
// replacement engine using the resolved range.
type bookmarkRange struct {
	name string
	part *Part

	startBlock int
	endBlock   int
	startPara  *wml.Paragraph
	endPara    *wml.Paragraph
	start      int // child index of the start marker within startPara
	end        int // child index of the end marker within endPara
}

// findBookmark locates both markers of the named bookmark within one
// part. Markers are paired by id: the end marker must carry the id of
// the start marker with the requested name.
func findBookmark(part *Part, name string) (*bookmarkRange, error) {
	rng := &bookmarkRange{name: name, part: part, startBlock: -1, endBlock: -1}

	id := 0
	for bi, block := range part.Root.Blocks {
		for _, para := range blockParagraphs(block) {
			for ci, child := range para.Children {
				if bs, ok := child.(*wml.BookmarkStart); ok && bs.Name == name {
					rng.startBlock = bi
					rng.startPara = para
					rng.start = ci
					id = bs.ID
					break
				}
			}
			if rng.startPara != nil {
				break
			}
		}
		if rng.startPara != nil {
			break
		}
	}
	if rng.startPara == nil {
		return nil, NewBookmarkNotFoundError(name)
	}

	for bi, block := range part.Root.Blocks {
		for _, para := range blockParagraphs(block) {
			for ci, child := range para.Children {
				if be, ok := child.(*wml.BookmarkEnd); ok && be.ID == id {
					rng.endBlock = bi
					rng.endPara = para
					rng.end = ci
					return rng, nil
				}
			}
		}
	}
	return nil, NewBookmarkNotFoundError(name)
}

// findBookmarkAnywhere resolves a bookmark across all parts, body first,
// then headers, then footers. A part that does not hold the bookmark is
// skipped; the bookmark missing everywhere is an error, since the caller
// targeted it by name.
func (d *Document) findBookmarkAnywhere(name string) (*bookmarkRange, error) {
	for _, part := range d.parts {
		rng, err := findBookmark(part, name)
		if err == nil {
			return rng, nil
		}
		if !IsBookmarkNotFound(err) {
			return nil, err
		}
	}
	return nil, NewBookmarkNotFoundError(name)
}

// validate enforces the structural invariants that make a bookmark
// usable for replacement: both markers in one paragraph, in order, and
// covering less than the paragraph's full text.
func (r *bookmarkRange) validate() error {
	if r.startPara != r.endPara {
		return NewInvalidBookmarkError(r.name, BookmarkCrossParagraph)
	}
	if r.end < r.start {
		return NewInvalidBookmarkError(r.name, BookmarkReversedMarkers)
	}
	start, end := r.charOffsets()
	if start == 0 && end == newRunIndex(r.startPara).Len() {
		return NewInvalidBookmarkError(r.name, BookmarkWholeParagraph)
	}
	return nil
}

// charOffsets derives the character range the markers delimit. Markers
// sit between runs, so each offset is the length of all run text that
// precedes the marker in its paragraph.
func (r *bookmarkRange) charOffsets() (int, int) {
	return textLenBefore(r.startPara, r.start), textLenBefore(r.endPara, r.end)
}

func textLenBefore(para *wml.Paragraph, childIndex int) int {
	total := 0
	for _, child := range para.Children[:childIndex] {
		switch c := child.(type) {
		case *wml.Run:
			total += len(c.GetText())
		case *wml.Hyperlink:
			total += len(c.GetText())
		}
	}
	return total
}

// Bookmarks returns the names of every complete marker pair, in document
// order: body first, then headers, then footers.
func (d *Document) Bookmarks() []string {
	var names []string
	for _, part := range d.parts {
		ends := make(map[int]bool)
		for _, para := range part.Paragraphs() {
			for _, child := range para.Children {
				if be, ok := child.(*wml.BookmarkEnd); ok {
					ends[be.ID] = true
				}
			}
		}
		for _, para := range part.Paragraphs() {
			for _, child := range para.Children {
				if bs, ok := child.(*wml.BookmarkStart); ok && ends[bs.ID] {
					names = append(names, bs.Name)
				}
			}
		}
	}
	return names
}

// AddBookmark creates a bookmark over the character range [start, end)
// of the body paragraph at blockIndex. Runs are split as needed so both
// markers land between runs. The range may be empty (an insertion
// point) but must not cover the paragraph's entire text.
func (d *Document) AddBookmark(name string, blockIndex, start, end int) error {
	for _, existing := range d.Bookmarks() {
		if existing == name {
			return &DuplicateBookmarkError{Name: name}
		}
	}

	body := d.Body()
	blocks := body.Root.Blocks
	if blockIndex < 0 || blockIndex >= len(blocks) {
		return NewIndexOutOfRangeError(blockIndex, len(blocks))
	}
	para, ok := blocks[blockIndex].(*wml.Paragraph)
	if !ok {
		return NewDocumentError("bookmark", body.Name, fmt.Errorf("block %d is not a paragraph", blockIndex))
	}

	idx := newRunIndex(para)
	if start < 0 || start > idx.Len() {
		return NewIndexOutOfRangeError(start, idx.Len())
	}
	if end < start || end > idx.Len() {
		return NewIndexOutOfRangeError(end, idx.Len())
	}
	if start == 0 && end == idx.Len() {
		return NewInvalidBookmarkError(name, BookmarkWholeParagraph)
	}
	if !idx.runeAligned(start) {
		return NewDocumentError("bookmark", name, fmt.Errorf("offset %d is not a character boundary", start))
	}
	if !idx.runeAligned(end) {
		return NewDocumentError("bookmark", name, fmt.Errorf("offset %d is not a character boundary", end))
	}
	if insideHyperlink(idx, start) || insideHyperlink(idx, end) {
		return NewDocumentError("bookmark", name, fmt.Errorf("offsets %d..%d fall inside a hyperlink", start, end))
	}

	if splitRunAt(para, idx, start) {
		idx = newRunIndex(para)
	}
	if splitRunAt(para, idx, end) {
		idx = newRunIndex(para)
	}

	startPos := boundaryChildPos(idx, start)
	endPos := boundaryChildPos(idx, end)

	id := d.nextBookmarkID()
	// Insert the end marker first so the start position stays valid.
	para.Children = insertChild(para.Children, endPos, &wml.BookmarkEnd{ID: id})
	para.Children = insertChild(para.Children, startPos, &wml.BookmarkStart{ID: id, Name: name})

	body.markDirty()
	return nil
}

// RemoveBookmark deletes the named bookmark's marker pair, leaving the
// text untouched. Runs the markers had split apart are merged back when
// their formatting matches.
func (d *Document) RemoveBookmark(name string) error {
	rng, err := d.findBookmarkAnywhere(name)
	if err != nil {
		return err
	}

	if rng.startPara == rng.endPara {
		// Remove the higher index first so the lower stays valid.
		rng.startPara.Children = removeChild(rng.startPara.Children, rng.end)
		rng.startPara.Children = removeChild(rng.startPara.Children, rng.start)
		mergeAdjacentRuns(rng.startPara)
	} else {
		rng.endPara.Children = removeChild(rng.endPara.Children, rng.end)
		rng.startPara.Children = removeChild(rng.startPara.Children, rng.start)
		mergeAdjacentRuns(rng.startPara)
		mergeAdjacentRuns(rng.endPara)
	}

	rng.part.markDirty()
	return nil
}

// nextBookmarkID allocates a marker id one past the highest in use
// anywhere in the document.
func (d *Document) nextBookmarkID() int {
	maxID := 0
	for _, part := range d.parts {
		for _, para := range part.Paragraphs() {
			for _, child := range para.Children {
				switch c := child.(type) {
				case *wml.BookmarkStart:
					if c.ID > maxID {
						maxID = c.ID
					}
				case *wml.BookmarkEnd:
					if c.ID > maxID {
						maxID = c.ID
					}
				}
			}
		}
	}
	return maxID + 1
}

// boundaryChildPos returns the children index at a run boundary: before
// the run starting at off, or after the run ending at off.
func boundaryChildPos(idx *runIndex, off int) int {
	for _, seg := range idx.segs {
		if seg.start == off {
			return seg.child
		}
	}
	for i := len(idx.segs) - 1; i >= 0; i-- {
		if idx.segs[i].end == off {
			return idx.segs[i].child + 1
		}
	}
	return len(idx.para.Children)
}

// insideHyperlink reports whether the offset falls strictly inside the
// text span of a hyperlink, where a paragraph-level marker cannot go.
func insideHyperlink(idx *runIndex, off int) bool {
	spans := make(map[int][2]int)
	for _, seg := range idx.segs {
		if seg.inner < 0 {
			continue
		}
		span, ok := spans[seg.child]
		if !ok {
			span = [2]int{seg.start, seg.end}
		}
		if seg.start < span[0] {
			span[0] = seg.start
		}
		if seg.end > span[1] {
			span[1] = seg.end
		}
		spans[seg.child] = span
	}
	for _, span := range spans {
		if span[0] < off && off < span[1] {
			return true
		}
	}
	return false
}

func insertChild(children []wml.ParagraphChild, at int, child wml.ParagraphChild) []wml.ParagraphChild {
	children = append(children, nil)
	copy(children[at+1:], children[at:])
	children[at] = child
	return children
}

func removeChild(children []wml.ParagraphChild, at int) []wml.ParagraphChild {
	return append(children[:at], children[at+1:]...)
}
