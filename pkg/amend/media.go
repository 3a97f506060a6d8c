package amend

import (
	"path"
	"sort"
	"strings"
)

// ReclaimUnusedMedia removes every media image no image relationship
// points at, pending additions included, and returns the package paths
// it removed, sorted. The relationship tables of all parts are
// consulted, so an image only a header uses stays. Nothing is removed
// when any relationship table fails to parse. Deletions take effect on
// save; a second call reports nothing new.
func (d *Document) ReclaimUnusedMedia() ([]string, error) {
	live := make(map[string]struct{})

	// In-memory tables first: they may carry additions or edits not yet
	// written back.
	for _, part := range d.parts {
		markLiveTargets(live, part.Name, part.Rels)
	}

	for _, f := range d.reader.Files() {
		if !strings.HasSuffix(f.Name, ".rels") {
			continue
		}
		if d.partByRelsName(f.Name) != nil {
			continue
		}
		data, err := readZipFile(f)
		if err != nil {
			return nil, NewDocumentError("reclaim", f.Name, err)
		}
		rels, err := parseRelationships(data)
		if err != nil {
			return nil, NewDocumentError("reclaim", f.Name, err)
		}
		markLiveTargets(live, relsOwner(f.Name), rels)
	}

	var removed []string
	for _, f := range d.reader.Files() {
		if _, gone := d.mediaDeletes[f.Name]; gone {
			continue
		}
		if !isMediaImage(f.Name) {
			continue
		}
		if _, ok := live[f.Name]; ok {
			continue
		}
		d.mediaDeletes[f.Name] = struct{}{}
		removed = append(removed, f.Name)
	}
	for name := range d.mediaAdds {
		if !isMediaImage(name) {
			continue
		}
		if _, ok := live[name]; ok {
			continue
		}
		delete(d.mediaAdds, name)
		removed = append(removed, name)
	}

	sort.Strings(removed)
	if len(removed) > 0 {
		GetLogger().Info("reclaimed %d unused media file(s)", len(removed))
	}
	return removed, nil
}

func markLiveTargets(live map[string]struct{}, owner string, rels *Relationships) {
	for _, rel := range rels.Relationship {
		if rel.Type != imageRelationshipType || rel.TargetMode == "External" {
			continue
		}
		live[resolveRelTarget(owner, rel.Target)] = struct{}{}
	}
}

// relsOwner is the inverse of relsPathFor: the part a .rels file
// describes. The package-level _rels/.rels describes the package root,
// returned as the empty name.
func relsOwner(relsPath string) string {
	dir := path.Dir(relsPath)
	base := strings.TrimSuffix(path.Base(relsPath), ".rels")
	if base == "" {
		return ""
	}
	parent := path.Dir(dir)
	if parent == "." {
		return base
	}
	return path.Join(parent, base)
}

// isMediaImage reports whether the package file is an image inside a
// media directory, the only files reclamation may touch.
func isMediaImage(name string) bool {
	if path.Base(path.Dir(name)) != "media" {
		return false
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	_, ok := extensionContentTypes[ext]
	return ok
}
