package amend

import (
	"encoding/xml"
	"fmt"
	"path"
	"strconv"
	"strings"
)

const relationshipsNamespace = "http://schemas.openxmlformats.org/package/2006/relationships"

// Relationship represents a relationship in the DOCX package
type Relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

// Relationships represents the collection of relationships owned by one part
type Relationships struct {
	XMLName      xml.Name       `xml:"Relationships"`
	Namespace    string         `xml:"xmlns,attr"`
	Relationship []Relationship `xml:"Relationship"`
}

// relsPathFor converts a part name to its relationships file name,
// e.g. "word/document.xml" -> "word/_rels/document.xml.rels".
func relsPathFor(partName string) string {
	dir := ""
	base := partName
	if idx := strings.LastIndex(partName, "/"); idx != -1 {
		dir = partName[:idx]
		base = partName[idx+1:]
	}
	if dir == "" {
		return fmt.Sprintf("_rels/%s.rels", base)
	}
	return fmt.Sprintf("%s/_rels/%s.rels", dir, base)
}

// parseRelationships parses a .rels part. Empty input yields an empty
// table, since a part without a relationships file has no relationships.
func parseRelationships(data []byte) (*Relationships, error) {
	rels := &Relationships{Namespace: relationshipsNamespace}
	if len(data) == 0 {
		return rels, nil
	}
	if err := xml.Unmarshal(data, rels); err != nil {
		return nil, fmt.Errorf("failed to parse relationships: %w", err)
	}
	if rels.Namespace == "" {
		rels.Namespace = relationshipsNamespace
	}
	return rels, nil
}

// marshalRelationships serializes a relationship table with the XML
// header Word expects. Uses compact output like the original package.
func marshalRelationships(rels *Relationships) ([]byte, error) {
	output, err := xml.Marshal(rels)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal relationships: %w", err)
	}
	header := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"
	return append([]byte(header), output...), nil
}

// NextID generates the next available relationship ID
func (r *Relationships) NextID() string {
	maxID := 0

	for _, rel := range r.Relationship {
		if strings.HasPrefix(rel.ID, "rId") {
			idStr := rel.ID[3:]
			if id, err := strconv.Atoi(idStr); err == nil && id > maxID {
				maxID = id
			}
		}
	}

	return fmt.Sprintf("rId%d", maxID+1)
}

// Add appends a new internal relationship and returns its allocated ID.
func (r *Relationships) Add(relType, target string) string {
	newID := r.NextID()
	r.Relationship = append(r.Relationship, Relationship{
		ID:     newID,
		Type:   relType,
		Target: target,
	})
	return newID
}

// imageTargets returns the package paths of every image-typed internal
// relationship, resolved against the owning part's directory.
func (r *Relationships) imageTargets(partName string) []string {
	var targets []string
	for _, rel := range r.Relationship {
		if rel.Type != imageRelationshipType || rel.TargetMode == "External" {
			continue
		}
		targets = append(targets, resolveRelTarget(partName, rel.Target))
	}
	return targets
}

// resolveRelTarget resolves a relationship target against the owning
// part's directory. Targets are usually relative ("media/image1.png"
// from "word/document.xml" means "word/media/image1.png"); a leading
// slash marks a package-absolute path.
func resolveRelTarget(partName, target string) string {
	if strings.HasPrefix(target, "/") {
		return path.Clean(strings.TrimPrefix(target, "/"))
	}
	return path.Clean(path.Join(path.Dir(partName), target))
}
