package amend

import (
	"iter"
	"strings"

	"github.com/juliankroeber/go-amend/pkg/amend/wml"
)

// runSeg is one run's contribution to a paragraph's visible text:
// the half-open byte range [start, end) of the concatenated text that
// the run owns. Runs nested in a hyperlink record the hyperlink's child
// position and their position inside it; top-level runs have inner -1.
type runSeg struct {
	run   *wml.Run
	child int
	inner int
	start int
	end   int
}

// runIndex maps a paragraph's concatenated text back to the runs that
// own each byte. It is a snapshot: every replacement invalidates run
// boundaries, so the index is rebuilt on demand for each query and never
// cached across mutations. Text is taken verbatim, with no whitespace or
// formatting normalization.
type runIndex struct {
	para *wml.Paragraph
	segs []runSeg
	text string
}

// newRunIndex builds the index for a paragraph. Runs without text (image
// carriers, breaks) contribute no segment, so the sum of segment lengths
// always equals the text length.
func newRunIndex(para *wml.Paragraph) *runIndex {
	idx := &runIndex{para: para}
	var b strings.Builder
	for ci, child := range para.Children {
		switch c := child.(type) {
		case *wml.Run:
			idx.addSeg(c, ci, -1, &b)
		case *wml.Hyperlink:
			for hi, hc := range c.Children {
				if run, ok := hc.(*wml.Run); ok {
					idx.addSeg(run, ci, hi, &b)
				}
			}
		}
	}
	idx.text = b.String()
	return idx
}

func (idx *runIndex) addSeg(run *wml.Run, child, inner int, b *strings.Builder) {
	text := run.GetText()
	if text == "" {
		return
	}
	idx.segs = append(idx.segs, runSeg{
		run:   run,
		child: child,
		inner: inner,
		start: b.Len(),
		end:   b.Len() + len(text),
	})
	b.WriteString(text)
}

// Text returns the paragraph's concatenated run text.
func (idx *runIndex) Text() string {
	return idx.text
}

// Len returns the byte length of the paragraph text.
func (idx *runIndex) Len() int {
	return len(idx.text)
}

// charRef ties one character of paragraph text to the run that owns it.
type charRef struct {
	char   rune
	run    *wml.Run
	offset int // byte offset of the character within the run's text
}

// Chars returns a lazy, restartable sequence over the paragraph text:
// for every character, its byte offset in the paragraph and the owning
// run with the intra-run offset. Ranging twice walks the same snapshot
// from the start.
func (idx *runIndex) Chars() iter.Seq2[int, charRef] {
	return func(yield func(int, charRef) bool) {
		for _, seg := range idx.segs {
			for i, r := range idx.text[seg.start:seg.end] {
				if !yield(seg.start+i, charRef{char: r, run: seg.run, offset: i}) {
					return
				}
			}
		}
	}
}

// locate returns the segment owning the byte at the given offset.
func (idx *runIndex) locate(off int) (runSeg, bool) {
	for _, seg := range idx.segs {
		if off >= seg.start && off < seg.end {
			return seg, true
		}
	}
	return runSeg{}, false
}

// covered returns the segments fully contained in [start, end).
func (idx *runIndex) covered(start, end int) []runSeg {
	var segs []runSeg
	for _, seg := range idx.segs {
		if seg.start >= start && seg.end <= end {
			segs = append(segs, seg)
		}
	}
	return segs
}

// runeAligned reports whether the offset falls on a character boundary
// of the paragraph text. The text end is a boundary.
func (idx *runIndex) runeAligned(off int) bool {
	if off == len(idx.text) {
		return true
	}
	for o := range idx.Chars() {
		if o == off {
			return true
		}
		if o > off {
			break
		}
	}
	return false
}
