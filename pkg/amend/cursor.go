package amend

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/juliankroeber/go-amend/pkg/amend/wml"
)

// Cursor is a position within one part's block sequence. It never owns
// blocks, it only locates them: a position is either on a block, or one
// of the two sentinel states past the ends. Navigation that cannot
// proceed fails and leaves the position unchanged.
type Cursor struct {
	doc  *Document
	part int
	pos  int // -1 is before-first, len(blocks) is after-last
}

func (c *Cursor) blocks() []wml.Block {
	return c.doc.parts[c.part].Root.Blocks
}

// Part returns the part the cursor is bound to.
func (c *Cursor) Part() *Part {
	return c.doc.parts[c.part]
}

// SelectPart re-binds the cursor to another part of the same document
// and seeds it to that part's last block.
func (c *Cursor) SelectPart(p *Part) error {
	for i, candidate := range c.doc.parts {
		if candidate == p {
			c.part = i
			c.End()
			return nil
		}
	}
	return NewDocumentError("cursor", p.Name, fmt.Errorf("part does not belong to this document"))
}

// OnBlock reports whether the cursor points at an existing block.
func (c *Cursor) OnBlock() bool {
	return c.pos >= 0 && c.pos < len(c.blocks())
}

// BeforeFirst reports whether the cursor sits before the first block.
func (c *Cursor) BeforeFirst() bool {
	return c.pos < 0
}

// AfterLast reports whether the cursor sits after the last block.
func (c *Cursor) AfterLast() bool {
	return c.pos >= len(c.blocks())
}

// Index returns the current block index.
func (c *Cursor) Index() (int, error) {
	if !c.OnBlock() {
		return 0, ErrCursorAtSentinel
	}
	return c.pos, nil
}

// Current returns the block the cursor points at.
func (c *Cursor) Current() (wml.Block, error) {
	if !c.OnBlock() {
		return nil, ErrCursorAtSentinel
	}
	return c.blocks()[c.pos], nil
}

// Forward moves to the next block, or to after-last when leaving the
// final block. After-last is terminal: moving forward from it fails.
func (c *Cursor) Forward() error {
	if c.AfterLast() {
		return ErrCursorAtSentinel
	}
	c.pos++
	return nil
}

// Backward moves to the previous block, or to before-first when leaving
// the first block. Before-first is terminal: moving backward from it fails.
func (c *Cursor) Backward() error {
	if c.BeforeFirst() {
		return ErrCursorAtSentinel
	}
	c.pos--
	return nil
}

// Begin moves to the first block, or before-first when the part is empty.
func (c *Cursor) Begin() {
	if len(c.blocks()) == 0 {
		c.pos = -1
		return
	}
	c.pos = 0
}

// End moves to the last block, or before-first when the part is empty.
func (c *Cursor) End() {
	c.pos = len(c.blocks()) - 1
}

// SeekIndex moves directly to the block at the given index.
func (c *Cursor) SeekIndex(index int) error {
	if index < 0 || index >= len(c.blocks()) {
		return NewIndexOutOfRangeError(index, len(c.blocks()))
	}
	c.pos = index
	return nil
}

// SeekBookmark moves to the block containing the named bookmark's start
// marker within the cursor's part. The position is unchanged on failure.
func (c *Cursor) SeekBookmark(name string) error {
	for i, block := range c.blocks() {
		for _, para := range blockParagraphs(block) {
			for _, child := range para.Children {
				if bs, ok := child.(*wml.BookmarkStart); ok && bs.Name == name {
					c.pos = i
					return nil
				}
			}
		}
	}
	return NewBookmarkNotFoundError(name)
}

// Reach moves to the first block of the part whose visible text matches
// the pattern. The position is unchanged when nothing matches.
func (c *Cursor) Reach(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("compiling pattern %q: %w", pattern, err)
	}
	for i, block := range c.blocks() {
		if re.MatchString(blockText(block)) {
			c.pos = i
			return nil
		}
	}
	return NewPatternNoMatchError(pattern, c.Part().Name)
}

// InspectChunk returns a diagnostic dump of the current block: its run
// boundaries, marker positions and text. It never mutates anything.
func (c *Cursor) InspectChunk() (string, error) {
	block, err := c.Current()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	switch blk := block.(type) {
	case *wml.Paragraph:
		idx := newRunIndex(blk)
		fmt.Fprintf(&b, "block %d of %s: paragraph, %d run(s), %d byte(s)\n",
			c.pos, c.Part().Name, len(idx.segs), idx.Len())
		dumpParagraph(&b, blk, "  ")
	case *wml.Table:
		rows := blk.Rows()
		fmt.Fprintf(&b, "block %d of %s: table, %d row(s)\n", c.pos, c.Part().Name, len(rows))
		for i, row := range rows {
			fmt.Fprintf(&b, "  row %d: %d cell(s)\n", i, len(row.Cells()))
		}
	case *wml.SectionBreak:
		fmt.Fprintf(&b, "block %d of %s: section break\n", c.pos, c.Part().Name)
	case *wml.RawBlock:
		fmt.Fprintf(&b, "block %d of %s: raw <%s>\n", c.pos, c.Part().Name, blk.Raw.Local())
	}
	return b.String(), nil
}

func dumpParagraph(b *strings.Builder, para *wml.Paragraph, indent string) {
	run := 0
	for _, child := range para.Children {
		switch c := child.(type) {
		case *wml.Run:
			dumpRun(b, c, run, indent)
			run++
		case *wml.Hyperlink:
			fmt.Fprintf(b, "%shyperlink id=%q with %d run(s)\n", indent, c.ID, len(c.Runs()))
			for _, inner := range c.Runs() {
				dumpRun(b, inner, run, indent+"  ")
				run++
			}
		case *wml.BookmarkStart:
			fmt.Fprintf(b, "%s--- bookmarkStart id=%d name=%q\n", indent, c.ID, c.Name)
		case *wml.BookmarkEnd:
			fmt.Fprintf(b, "%s--- bookmarkEnd id=%d\n", indent, c.ID)
		case *wml.RawChild:
			fmt.Fprintf(b, "%sraw <%s>\n", indent, c.Local())
		}
	}
}

func dumpRun(b *strings.Builder, r *wml.Run, ordinal int, indent string) {
	style := "plain"
	if !r.Properties.Empty() {
		style = "formatted"
	}
	extras := ""
	if r.Break != nil {
		extras += " +break"
	}
	if len(r.Raw) > 0 {
		extras += fmt.Sprintf(" +%d raw", len(r.Raw))
	}
	fmt.Fprintf(b, "%s[%d] run %q len=%d %s%s\n", indent, ordinal, r.GetText(), len(r.GetText()), style, extras)
}

// blockParagraphs returns the paragraphs contained in one block: the
// paragraph itself, or every cell paragraph of a table.
func blockParagraphs(block wml.Block) []*wml.Paragraph {
	switch b := block.(type) {
	case *wml.Paragraph:
		return []*wml.Paragraph{b}
	case *wml.Table:
		var paras []*wml.Paragraph
		for _, row := range b.Rows() {
			for _, cell := range row.Cells() {
				for _, inner := range cell.Blocks {
					paras = append(paras, blockParagraphs(inner)...)
				}
			}
		}
		return paras
	default:
		return nil
	}
}

// blockText returns a block's visible text.
func blockText(block wml.Block) string {
	switch b := block.(type) {
	case *wml.Paragraph:
		return b.GetText()
	case *wml.Table:
		return b.GetText()
	default:
		return ""
	}
}
