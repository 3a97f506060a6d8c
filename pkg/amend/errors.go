package amend

import (
	"errors"
	"fmt"
)

// ErrCursorAtSentinel reports a navigation step that is not possible from
// a sentinel cursor position: forward from after-last or backward from
// before-first, or reading the current block while not on one. The cursor
// is left unchanged.
var ErrCursorAtSentinel = errors.New("cursor is at a sentinel position")

// BookmarkNotFoundError reports that a bookmark, or one of its two
// markers, is absent from the searched scope.
type BookmarkNotFoundError struct {
	Name string
}

func (e *BookmarkNotFoundError) Error() string {
	return fmt.Sprintf("bookmark %q not found", e.Name)
}

// NewBookmarkNotFoundError creates a new bookmark-not-found error.
func NewBookmarkNotFoundError(name string) error {
	return &BookmarkNotFoundError{Name: name}
}

// IsBookmarkNotFound checks if an error is a bookmark-not-found error.
func IsBookmarkNotFound(err error) bool {
	var e *BookmarkNotFoundError
	return errors.As(err, &e)
}

// InvalidBookmarkReason names the structural violation that makes a
// bookmark unusable for replacement.
type InvalidBookmarkReason int

const (
	// BookmarkCrossParagraph: the start and end markers belong to two
	// different paragraphs.
	BookmarkCrossParagraph InvalidBookmarkReason = iota
	// BookmarkWholeParagraph: the marker pair covers the paragraph's
	// entire text, leaving no unbookmarked content.
	BookmarkWholeParagraph
	// BookmarkReversedMarkers: the end marker precedes the start marker.
	BookmarkReversedMarkers
)

func (r InvalidBookmarkReason) String() string {
	switch r {
	case BookmarkCrossParagraph:
		return "markers span two paragraphs"
	case BookmarkWholeParagraph:
		return "markers cover the paragraph's entire text"
	case BookmarkReversedMarkers:
		return "end marker precedes start marker"
	default:
		return "unknown reason"
	}
}

// InvalidBookmarkError reports a bookmark whose markers violate the
// single-paragraph or proper-sub-range invariant. It is detected before
// any mutation; the operation that found it leaves the document untouched.
type InvalidBookmarkError struct {
	Name   string
	Reason InvalidBookmarkReason
}

func (e *InvalidBookmarkError) Error() string {
	return fmt.Sprintf("bookmark %q is invalid: %s", e.Name, e.Reason)
}

// NewInvalidBookmarkError creates a new invalid-bookmark error.
func NewInvalidBookmarkError(name string, reason InvalidBookmarkReason) error {
	return &InvalidBookmarkError{Name: name, Reason: reason}
}

// IsInvalidBookmark checks if an error is an invalid-bookmark error.
func IsInvalidBookmark(err error) bool {
	var e *InvalidBookmarkError
	return errors.As(err, &e)
}

// DuplicateBookmarkError reports an attempt to create a bookmark under a
// name that is already taken.
type DuplicateBookmarkError struct {
	Name string
}

func (e *DuplicateBookmarkError) Error() string {
	return fmt.Sprintf("bookmark %q already exists", e.Name)
}

// IsDuplicateBookmark checks if an error is a duplicate-bookmark error.
func IsDuplicateBookmark(err error) bool {
	var e *DuplicateBookmarkError
	return errors.As(err, &e)
}

// IndexOutOfRangeError reports a block index or character offset outside
// the valid range. The state the index was meant to address is left
// unchanged.
type IndexOutOfRangeError struct {
	Index  int
	Length int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("index %d out of range [0, %d]", e.Index, e.Length)
}

// NewIndexOutOfRangeError creates a new index-out-of-range error.
func NewIndexOutOfRangeError(index, length int) error {
	return &IndexOutOfRangeError{Index: index, Length: length}
}

// IsIndexOutOfRange checks if an error is an index-out-of-range error.
func IsIndexOutOfRange(err error) bool {
	var e *IndexOutOfRangeError
	return errors.As(err, &e)
}

// PatternNoMatchError reports that a pattern matched nothing in the
// searched scope. Replacement sweeps treat it as advisory and only log
// it; cursor Reach returns it, since reaching is the whole operation.
type PatternNoMatchError struct {
	Pattern string
	Scope   string
}

func (e *PatternNoMatchError) Error() string {
	return fmt.Sprintf("pattern %q matched nothing in %s", e.Pattern, e.Scope)
}

// NewPatternNoMatchError creates a new pattern-no-match error.
func NewPatternNoMatchError(pattern, scope string) error {
	return &PatternNoMatchError{Pattern: pattern, Scope: scope}
}

// IsPatternNoMatch checks if an error is a pattern-no-match error.
func IsPatternNoMatch(err error) bool {
	var e *PatternNoMatchError
	return errors.As(err, &e)
}

// DocumentError represents an error during document package operations
type DocumentError struct {
	Operation string
	Path      string
	Cause     error
}

func (e *DocumentError) Error() string {
	if e.Path != "" && e.Cause != nil {
		return fmt.Sprintf("document error during %s of '%s': %v", e.Operation, e.Path, e.Cause)
	} else if e.Path != "" {
		return fmt.Sprintf("document error during %s of '%s'", e.Operation, e.Path)
	} else if e.Cause != nil {
		return fmt.Sprintf("document error during %s: %v", e.Operation, e.Cause)
	}
	return fmt.Sprintf("document error during %s", e.Operation)
}

func (e *DocumentError) Unwrap() error {
	return e.Cause
}

// NewDocumentError creates a new document error
func NewDocumentError(operation, path string, cause error) error {
	return &DocumentError{
		Operation: operation,
		Path:      path,
		Cause:     cause,
	}
}

// IsDocumentError checks if an error is a document error
func IsDocumentError(err error) bool {
	var e *DocumentError
	return errors.As(err, &e)
}
