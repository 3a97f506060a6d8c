package amend

import (
	"sort"
	"strings"

	"github.com/juliankroeber/go-amend/pkg/amend/wml"
)

// ReplaceBookmarkText replaces the text a bookmark covers with the given
// string, as a single run. The run takes the formatting of the first run
// the bookmark covered; the markers stay in place, so the bookmark
// remains valid and can be replaced again.
func (d *Document) ReplaceBookmarkText(name, text string) error {
	rng, err := d.findBookmarkAnywhere(name)
	if err != nil {
		return err
	}
	if err := rng.validate(); err != nil {
		return err
	}
	replaceBookmarkRange(rng, func(props *wml.RunProperties) *wml.Run {
		return wml.NewTextRun(text, props)
	})
	rng.part.markDirty()
	return nil
}

// replaceBookmarkRange splices out everything between the two markers
// and inserts one run built by the caller. Markers of other bookmarks
// that sat inside the range are kept so their pairs stay complete;
// runs, hyperlinks and raw content are removed.
func replaceBookmarkRange(rng *bookmarkRange, build func(*wml.RunProperties) *wml.Run) {
	para := rng.startPara
	between := para.Children[rng.start+1 : rng.end]

	props := firstRunProperties(between)
	if props == nil {
		props = precedingRunProperties(para, rng.start)
	}

	var kept []wml.ParagraphChild
	for _, child := range between {
		switch child.(type) {
		case *wml.BookmarkStart, *wml.BookmarkEnd:
			kept = append(kept, child)
		}
	}

	children := make([]wml.ParagraphChild, 0, len(para.Children)-len(between)+len(kept)+1)
	children = append(children, para.Children[:rng.start+1]...)
	children = append(children, build(props))
	children = append(children, kept...)
	children = append(children, para.Children[rng.end:]...)
	para.Children = children
}

// firstRunProperties returns the formatting of the first run among the
// children, descending into hyperlinks, or nil when no run is present.
func firstRunProperties(children []wml.ParagraphChild) *wml.RunProperties {
	for _, child := range children {
		switch c := child.(type) {
		case *wml.Run:
			return c.Properties
		case *wml.Hyperlink:
			if runs := c.Runs(); len(runs) > 0 {
				return runs[0].Properties
			}
		}
	}
	return nil
}

// precedingRunProperties returns the formatting of the nearest run
// before the given child index, so content inserted into an empty range
// blends in with its surroundings.
func precedingRunProperties(para *wml.Paragraph, childIndex int) *wml.RunProperties {
	for i := childIndex - 1; i >= 0; i-- {
		switch c := para.Children[i].(type) {
		case *wml.Run:
			return c.Properties
		case *wml.Hyperlink:
			if runs := c.Runs(); len(runs) > 0 {
				return runs[len(runs)-1].Properties
			}
		}
	}
	return nil
}

// splitRunAt ensures a run boundary exists at the given text offset,
// splitting the containing run in two when the offset falls inside one.
// The prefix keeps the run's place; the suffix is a new run with the
// same formatting, carrying over any trailing break or raw content.
// Reports whether a split happened, invalidating the index.
func splitRunAt(para *wml.Paragraph, idx *runIndex, off int) bool {
	seg, ok := idx.locate(off)
	if !ok || seg.start == off {
		return false
	}

	r := seg.run
	cut := off - seg.start
	prefix := r.Text.Content[:cut]
	suffix := r.Text.Content[cut:]

	r.Text.Content = prefix
	if prefix != strings.TrimSpace(prefix) {
		r.Text.Space = "preserve"
	}

	next := wml.NewTextRun(suffix, r.Properties)
	next.Break = r.Break
	next.Raw = r.Raw
	r.Break = nil
	r.Raw = nil

	if seg.inner < 0 {
		para.Children = insertChild(para.Children, seg.child+1, next)
	} else {
		h := para.Children[seg.child].(*wml.Hyperlink)
		h.Children = insertChild(h.Children, seg.inner+1, next)
	}
	return true
}

// spliceRange replaces the text range [start, end) of the paragraph with
// the replacement string as one run. The range must stay within a single
// container: either entirely in top-level runs or entirely inside one
// hyperlink. Ranges that straddle a container boundary are left alone
// and reported as not applied.
func spliceRange(para *wml.Paragraph, start, end int, replacement string) bool {
	idx := newRunIndex(para)
	if !sameContainer(idx, start, end) {
		return false
	}

	if splitRunAt(para, idx, start) {
		idx = newRunIndex(para)
	}
	if splitRunAt(para, idx, end) {
		idx = newRunIndex(para)
	}

	covered := idx.covered(start, end)
	if len(covered) == 0 {
		return false
	}
	props := covered[0].run.Properties

	if covered[0].inner < 0 {
		positions := make([]int, len(covered))
		for i, seg := range covered {
			positions[i] = seg.child
		}
		sort.Sort(sort.Reverse(sort.IntSlice(positions)))
		for _, pos := range positions {
			para.Children = removeChild(para.Children, pos)
		}
		if replacement != "" {
			para.Children = insertChild(para.Children, positions[len(positions)-1], wml.NewTextRun(replacement, props))
		}
	} else {
		h := para.Children[covered[0].child].(*wml.Hyperlink)
		positions := make([]int, len(covered))
		for i, seg := range covered {
			positions[i] = seg.inner
		}
		sort.Sort(sort.Reverse(sort.IntSlice(positions)))
		for _, pos := range positions {
			h.Children = removeChild(h.Children, pos)
		}
		if replacement != "" {
			h.Children = insertChild(h.Children, positions[len(positions)-1], wml.NewTextRun(replacement, props))
		}
	}
	return true
}

// sameContainer reports whether every run overlapping [start, end) lives
// in the same container, top-level or one hyperlink.
func sameContainer(idx *runIndex, start, end int) bool {
	child := -1
	topLevel := false
	for _, seg := range idx.segs {
		if seg.start >= end || seg.end <= start {
			continue
		}
		if seg.inner < 0 {
			if child >= 0 {
				return false
			}
			topLevel = true
			continue
		}
		if topLevel {
			return false
		}
		if child >= 0 && child != seg.child {
			return false
		}
		child = seg.child
	}
	return true
}

// mergeAdjacentRuns folds neighboring text runs with identical
// formatting back into one and drops runs left without any content.
// Marker removal and splicing can leave both behind.
func mergeAdjacentRuns(para *wml.Paragraph) {
	para.Children = mergeRunSiblings(para.Children)
	for _, child := range para.Children {
		if h, ok := child.(*wml.Hyperlink); ok {
			h.Children = mergeRunSiblings(h.Children)
		}
	}
}

func mergeRunSiblings(children []wml.ParagraphChild) []wml.ParagraphChild {
	out := children[:0]
	for _, child := range children {
		r, ok := child.(*wml.Run)
		if ok && r.Text != nil && r.Text.Content == "" && r.Break == nil && len(r.Raw) == 0 {
			continue
		}
		if ok && len(out) > 0 {
			if prev, pok := out[len(out)-1].(*wml.Run); pok && mergeable(prev, r) {
				prev.Text.Content += r.Text.Content
				if r.Text.Space == "preserve" {
					prev.Text.Space = "preserve"
				}
				prev.Break = r.Break
				prev.Raw = r.Raw
				continue
			}
		}
		out = append(out, child)
	}
	return out
}

// mergeable reports whether b can be folded into a: a must end with its
// text (no trailing break or raw content) and both must carry the same
// formatting.
func mergeable(a, b *wml.Run) bool {
	return a.Text != nil && a.Break == nil && len(a.Raw) == 0 &&
		b.Text != nil && a.Properties.Equal(b.Properties)
}
