package amend

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorTypes(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{
			name:    "BookmarkNotFoundError",
			err:     NewBookmarkNotFoundError("missing"),
			wantMsg: `bookmark "missing" not found`,
		},
		{
			name:    "InvalidBookmarkError cross paragraph",
			err:     NewInvalidBookmarkError("bad", BookmarkCrossParagraph),
			wantMsg: `bookmark "bad" is invalid: markers span two paragraphs`,
		},
		{
			name:    "InvalidBookmarkError whole paragraph",
			err:     NewInvalidBookmarkError("bad", BookmarkWholeParagraph),
			wantMsg: `bookmark "bad" is invalid: markers cover the paragraph's entire text`,
		},
		{
			name:    "InvalidBookmarkError reversed markers",
			err:     NewInvalidBookmarkError("bad", BookmarkReversedMarkers),
			wantMsg: `bookmark "bad" is invalid: end marker precedes start marker`,
		},
		{
			name:    "DuplicateBookmarkError",
			err:     &DuplicateBookmarkError{Name: "taken"},
			wantMsg: `bookmark "taken" already exists`,
		},
		{
			name:    "IndexOutOfRangeError",
			err:     NewIndexOutOfRangeError(7, 3),
			wantMsg: "index 7 out of range [0, 3]",
		},
		{
			name:    "PatternNoMatchError",
			err:     NewPatternNoMatchError("x+", "body"),
			wantMsg: `pattern "x+" matched nothing in body`,
		},
		{
			name:    "DocumentError with path and cause",
			err:     NewDocumentError("save", "output.docx", errors.New("permission denied")),
			wantMsg: "document error during save of 'output.docx': permission denied",
		},
		{
			name:    "DocumentError without cause",
			err:     &DocumentError{Operation: "open", Path: "in.docx"},
			wantMsg: "document error during open of 'in.docx'",
		},
		{
			name:    "DocumentError bare",
			err:     &DocumentError{Operation: "reclaim"},
			wantMsg: "document error during reclaim",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestErrorPredicates(t *testing.T) {
	tests := []struct {
		name      string
		predicate func(error) bool
		match     error
		others    []error
	}{
		{
			name:      "IsBookmarkNotFound",
			predicate: IsBookmarkNotFound,
			match:     NewBookmarkNotFoundError("x"),
			others:    []error{NewInvalidBookmarkError("x", BookmarkCrossParagraph), errors.New("plain")},
		},
		{
			name:      "IsInvalidBookmark",
			predicate: IsInvalidBookmark,
			match:     NewInvalidBookmarkError("x", BookmarkWholeParagraph),
			others:    []error{NewBookmarkNotFoundError("x")},
		},
		{
			name:      "IsDuplicateBookmark",
			predicate: IsDuplicateBookmark,
			match:     &DuplicateBookmarkError{Name: "x"},
			others:    []error{NewBookmarkNotFoundError("x")},
		},
		{
			name:      "IsIndexOutOfRange",
			predicate: IsIndexOutOfRange,
			match:     NewIndexOutOfRangeError(1, 0),
			others:    []error{errors.New("index-ish")},
		},
		{
			name:      "IsPatternNoMatch",
			predicate: IsPatternNoMatch,
			match:     NewPatternNoMatchError("x", "body"),
			others:    []error{errors.New("pattern")},
		},
		{
			name:      "IsDocumentError",
			predicate: IsDocumentError,
			match:     NewDocumentError("open", "", errors.New("eof")),
			others:    []error{errors.New("document")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.predicate(tt.match) {
				t.Errorf("predicate rejected %v", tt.match)
			}
			wrapped := fmt.Errorf("outer context: %w", tt.match)
			if !tt.predicate(wrapped) {
				t.Errorf("predicate rejected the wrapped form of %v", tt.match)
			}
			for _, other := range tt.others {
				if tt.predicate(other) {
					t.Errorf("predicate accepted %v", other)
				}
			}
			if tt.predicate(nil) {
				t.Error("predicate accepted nil")
			}
		})
	}
}

func TestDocumentErrorUnwrap(t *testing.T) {
	baseErr := errors.New("base error")
	docErr := NewDocumentError("parse", "word/document.xml", baseErr)

	if unwrapped := errors.Unwrap(docErr); unwrapped != baseErr {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, baseErr)
	}
	if !errors.Is(docErr, baseErr) {
		t.Error("errors.Is() should return true for wrapped error")
	}
}

func TestInvalidBookmarkReasonString(t *testing.T) {
	if got := InvalidBookmarkReason(99).String(); got != "unknown reason" {
		t.Errorf("String() = %q, want %q", got, "unknown reason")
	}
}
