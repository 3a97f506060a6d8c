// Package amend edits Microsoft Word documents (DOCX) in place.
//
// Go-amend loads an existing document, addresses content through
// bookmarks, a cursor and text patterns, replaces text or pictures
// without disturbing the surrounding formatting, and writes the result
// back as a valid package. It is designed for filling in and revising
// documents that already exist rather than rendering them from
// templates.
//
// # Quick Start
//
//	doc, err := amend.OpenFile("contract.docx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Replace the text a bookmark covers.
//	if err := doc.ReplaceBookmarkText("customer", "ACME Corp"); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Replace a pattern everywhere in the body.
//	n, err := doc.ReplaceAllText(`DRAFT-\d+`, "FINAL", amend.ReplaceOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("replaced %d occurrence(s)\n", n)
//
//	if err := doc.SaveFile("contract-final.docx"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Editing Model
//
// Word fragments paragraph text into runs, each with its own formatting,
// and splits them at arbitrary places (spell-check boundaries, edit
// history). The engine therefore never edits runs directly. Every
// operation works on a paragraph's run index, a flattened view mapping
// character offsets to the runs that hold them, and splits runs at the
// edit boundaries so formatting outside the edit is untouched. A
// replacement spanning several runs collapses into a single run carrying
// the formatting of the first run it covered.
//
// Bookmarks address content by name. A bookmark usable for replacement
// must have both markers in one paragraph, in order, covering less than
// the paragraph's whole text; ReplaceBookmarkText and
// ReplaceBookmarkImage keep the markers, so the same bookmark can be
// replaced again. AddBookmark and RemoveBookmark manage marker pairs.
//
// The cursor walks the body's top-level blocks (paragraphs and tables)
// one position at a time, with Reach jumping to the next block matching
// a pattern and InspectChunk describing the current block's internals.
// Replacement can be confined to the cursor's block through
// ReplaceOptions.OnlyAtCursor.
//
// # Media
//
// ReplaceBookmarkImage embeds a picture as a new media file wired
// through the part's relationship table. ReclaimUnusedMedia drops every
// media image no relationship points at anymore, keeping repeatedly
// edited documents from accumulating orphaned pictures.
//
// # Architecture
//
// The package is organized into one sub-package:
//
//   - wml: WordprocessingML structures (paragraphs, runs, tables,
//     bookmark markers) with an order-preserving codec. Content the
//     engine does not interpret survives a load/save cycle byte for
//     byte.
//
// The main package provides document loading and saving, the run
// index, bookmark resolution, the cursor, pattern replacement and
// media handling.
//
// # Error Handling
//
// The package defines error types for specific failure cases:
//
//   - BookmarkNotFoundError: no marker pair with the requested name
//   - InvalidBookmarkError: markers unusable for replacement
//   - PatternNoMatchError: strict mode and the pattern matched nothing
//   - IndexOutOfRangeError: cursor or offset out of bounds
//   - DocumentError: package-level failures, wrapping the cause
//
// Check error types using the Is* helpers or errors.As():
//
//	if amend.IsBookmarkNotFound(err) {
//	    // handle the missing bookmark
//	}
//
// # Configuration
//
// Behavior is configured through the environment or SetGlobalConfig:
//
//	AMEND_LOG_LEVEL      debug, info, warn, error or off
//	AMEND_STRICT_MODE    patterns that match nothing become errors
//	AMEND_MAX_PART_BYTES upper bound for a single XML part
//
// # Thread Safety
//
// A Document is owned by one logical session and is not safe for
// concurrent use. Open as many documents in parallel as needed; they
// share nothing but the global configuration.
//
// # DOCX File Structure
//
// DOCX files are ZIP packages of XML parts. The body lives in
// word/document.xml, headers and footers in word/headerN.xml and
// word/footerN.xml, pictures under word/media/, wired together by
// relationship tables (.rels). Go-amend parses only the parts it edits
// and copies everything else through unchanged.
//
// # Limitations
//
// Some DOCX features are out of scope:
//
//   - Footnotes, endnotes and comments are preserved but not editable
//   - Text inside drawings and text boxes is not indexed
//   - Track changes markup is carried through, never interpreted
package amend
