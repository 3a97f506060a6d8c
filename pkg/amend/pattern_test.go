package amend

import (
	"bytes"
	"strings"
	"testing"
)

func TestReplaceAllTextAcrossRunBoundary(t *testing.T) {
	// "Placeholder" ends exactly where the first run does; the match
	// must still be found on the assembled paragraph text.
	body := para(boldRun("Placeholder"), run(" one"))
	doc := openDocx(t, body, nil)

	n, err := doc.ReplaceAllText("Placeholder", "new", ReplaceOptions{Fixed: true})
	if err != nil {
		t.Fatalf("ReplaceAllText() error = %v", err)
	}
	if n != 1 {
		t.Errorf("ReplaceAllText() = %d, want 1", n)
	}
	if got := doc.Body().Text(); got != "new one" {
		t.Errorf("body text = %q, want %q", got, "new one")
	}

	// The replacement is one run and keeps the first covered run's
	// formatting.
	r := findRunWithText(t, bodyPara(t, doc, 0), "new")
	if !strings.Contains(string(r.Properties.Raw.Content), "<w:b") {
		t.Errorf("replacement run properties = %s, want bold", r.Properties.Raw.Content)
	}
}

func TestReplaceAllText(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		pattern  string
		repl     string
		opts     ReplaceOptions
		want     int
		wantText string
		wantErr  bool
	}{
		{
			name:     "regex replaces every match",
			body:     para(run("one phone tone")),
			pattern:  "one",
			repl:     "1",
			want:     3,
			wantText: "1 ph1 t1",
		},
		{
			name:     "matches across paragraphs counted per paragraph",
			body:     para(run("x here")) + para(run("x there")),
			pattern:  "x",
			repl:     "y",
			want:     2,
			wantText: "y here\ny there",
		},
		{
			name:     "capture group expansion",
			body:     para(run("Name: Smith")),
			pattern:  `Name: (\w+)`,
			repl:     "$1 it is",
			want:     1,
			wantText: "Smith it is",
		},
		{
			name:     "fixed pattern takes metacharacters literally",
			body:     para(run("a.c abc")),
			pattern:  "a.c",
			repl:     "X",
			opts:     ReplaceOptions{Fixed: true},
			want:     1,
			wantText: "X abc",
		},
		{
			name:     "ignore case regex",
			body:     para(run("Hello HELLO hello")),
			pattern:  "hello",
			repl:     "hi",
			opts:     ReplaceOptions{IgnoreCase: true},
			want:     3,
			wantText: "hi hi hi",
		},
		{
			name:     "fixed ignore case folds beyond ASCII",
			body:     para(run("ÄPFEL und äpfel")),
			pattern:  "äpfel",
			repl:     "Birnen",
			opts:     ReplaceOptions{Fixed: true, IgnoreCase: true},
			want:     2,
			wantText: "Birnen und Birnen",
		},
		{
			name:     "empty pattern matches nothing",
			body:     para(run("anything")),
			pattern:  "",
			repl:     "x",
			want:     0,
			wantText: "anything",
		},
		{
			name:     "zero-width matches are skipped",
			body:     para(run("abc")),
			pattern:  "x*",
			repl:     "y",
			want:     0,
			wantText: "abc",
		},
		{
			name:     "match crossing a hyperlink boundary is skipped",
			body:     para(run("see "), `<w:hyperlink r:id="rId9"><w:r><w:t>the site</w:t></w:r></w:hyperlink>`),
			pattern:  "e the",
			repl:     "X",
			want:     0,
			wantText: "see the site",
		},
		{
			name:     "match inside a hyperlink is applied",
			body:     para(run("see "), `<w:hyperlink r:id="rId9"><w:r><w:t>the site</w:t></w:r></w:hyperlink>`),
			pattern:  "site",
			repl:     "page",
			want:     1,
			wantText: "see the page",
		},
		{
			name:    "invalid regex",
			body:    para(run("anything")),
			pattern: "[",
			repl:    "x",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := openDocx(t, tt.body, nil)

			n, err := doc.ReplaceAllText(tt.pattern, tt.repl, tt.opts)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ReplaceAllText() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if n != tt.want {
				t.Errorf("ReplaceAllText() = %d, want %d", n, tt.want)
			}
			if got := doc.Body().Text(); got != tt.wantText {
				t.Errorf("body text = %q, want %q", got, tt.wantText)
			}
		})
	}
}

func TestReplaceAllTextSnapshotSemantics(t *testing.T) {
	// Spans are computed on a snapshot, so a replacement that contains
	// the pattern is not rescanned.
	doc := openDocx(t, para(run("banana")), nil)

	n, err := doc.ReplaceAllText("a", "aa", ReplaceOptions{Fixed: true})
	if err != nil {
		t.Fatalf("ReplaceAllText() error = %v", err)
	}
	if n != 3 {
		t.Errorf("ReplaceAllText() = %d, want 3", n)
	}
	if got := doc.Body().Text(); got != "baanaanaa" {
		t.Errorf("body text = %q, want %q", got, "baanaanaa")
	}
}

func TestReplaceAllTextIdempotent(t *testing.T) {
	doc := openDocx(t, para(run("Placeholder"), run(" one")), nil)

	if _, err := doc.ReplaceAllText("Placeholder", "new", ReplaceOptions{Fixed: true}); err != nil {
		t.Fatalf("first sweep error = %v", err)
	}
	n, err := doc.ReplaceAllText("Placeholder", "new", ReplaceOptions{Fixed: true})
	if err != nil {
		t.Fatalf("second sweep error = %v", err)
	}
	if n != 0 {
		t.Errorf("second sweep applied %d replacement(s), want 0", n)
	}
	if got := doc.Body().Text(); got != "new one" {
		t.Errorf("body text = %q, want %q", got, "new one")
	}
}

func TestReplaceAllTextOnlyAtCursor(t *testing.T) {
	body := para(run("x first")) + para(run("x second")) + para(run("x third"))
	doc := openDocx(t, body, nil)

	if err := doc.Cursor().SeekIndex(1); err != nil {
		t.Fatalf("SeekIndex() error = %v", err)
	}
	n, err := doc.ReplaceAllText("x", "y", ReplaceOptions{OnlyAtCursor: true})
	if err != nil {
		t.Fatalf("ReplaceAllText() error = %v", err)
	}
	if n != 1 {
		t.Errorf("ReplaceAllText() = %d, want 1", n)
	}
	if got := doc.Body().Text(); got != "x first\ny second\nx third" {
		t.Errorf("body text = %q", got)
	}
}

func TestReplaceAllTextOnlyAtCursorInTable(t *testing.T) {
	body := para(run("x outside")) +
		"<w:tbl><w:tr><w:tc>" + para(run("x one")) + "</w:tc><w:tc>" + para(run("x two")) + "</w:tc></w:tr></w:tbl>"
	doc := openDocx(t, body, nil)

	if err := doc.Cursor().SeekIndex(1); err != nil {
		t.Fatalf("SeekIndex() error = %v", err)
	}
	n, err := doc.ReplaceAllText("x", "y", ReplaceOptions{OnlyAtCursor: true})
	if err != nil {
		t.Fatalf("ReplaceAllText() error = %v", err)
	}
	if n != 2 {
		t.Errorf("ReplaceAllText() = %d, want 2", n)
	}
	if got := doc.Body().Text(); got != "x outside\ny one\ny two" {
		t.Errorf("body text = %q", got)
	}
}

func TestReplaceAllTextOnlyAtCursorAtSentinel(t *testing.T) {
	doc := openDocx(t, para(run("x")), nil)
	if err := doc.Cursor().Forward(); err != nil {
		t.Fatalf("Forward() error = %v", err)
	}

	if _, err := doc.ReplaceAllText("x", "y", ReplaceOptions{OnlyAtCursor: true}); err == nil {
		t.Fatal("ReplaceAllText() at a sentinel succeeded, want error")
	}
	if got := doc.Body().Text(); got != "x" {
		t.Errorf("body text = %q, want %q", got, "x")
	}
}

func TestReplaceAllTextScopes(t *testing.T) {
	extra := map[string][]byte{
		"word/header1.xml": headerXML(para(run("old header"))),
		"word/footer1.xml": footerXML(para(run("old footer"))),
	}

	t.Run("headers only", func(t *testing.T) {
		doc := openDocx(t, para(run("old body")), extra)
		n, err := doc.HeadersReplaceAllText("old", "new", ReplaceOptions{Fixed: true})
		if err != nil {
			t.Fatalf("HeadersReplaceAllText() error = %v", err)
		}
		if n != 1 {
			t.Errorf("HeadersReplaceAllText() = %d, want 1", n)
		}
		if got := doc.Headers()[0].Text(); got != "new header" {
			t.Errorf("header text = %q", got)
		}
		if got := doc.Body().Text(); got != "old body" {
			t.Errorf("body text = %q, want untouched", got)
		}
		if got := doc.Footers()[0].Text(); got != "old footer" {
			t.Errorf("footer text = %q, want untouched", got)
		}
	})

	t.Run("footers only", func(t *testing.T) {
		doc := openDocx(t, para(run("old body")), extra)
		n, err := doc.FootersReplaceAllText("old", "new", ReplaceOptions{Fixed: true})
		if err != nil {
			t.Fatalf("FootersReplaceAllText() error = %v", err)
		}
		if n != 1 {
			t.Errorf("FootersReplaceAllText() = %d, want 1", n)
		}
		if got := doc.Footers()[0].Text(); got != "new footer" {
			t.Errorf("footer text = %q", got)
		}
		if got := doc.Body().Text(); got != "old body" {
			t.Errorf("body text = %q, want untouched", got)
		}
	})

	t.Run("everywhere", func(t *testing.T) {
		doc := openDocx(t, para(run("old body")), extra)
		n, err := doc.ReplaceAllTextEverywhere("old", "new", ReplaceOptions{Fixed: true})
		if err != nil {
			t.Fatalf("ReplaceAllTextEverywhere() error = %v", err)
		}
		if n != 3 {
			t.Errorf("ReplaceAllTextEverywhere() = %d, want 3", n)
		}
		if got := doc.Body().Text(); got != "new body" {
			t.Errorf("body text = %q", got)
		}
		if got := doc.Headers()[0].Text(); got != "new header" {
			t.Errorf("header text = %q", got)
		}
		if got := doc.Footers()[0].Text(); got != "new footer" {
			t.Errorf("footer text = %q", got)
		}
	})
}

func TestReplaceAllTextStrictMode(t *testing.T) {
	old := GetGlobalConfig()
	defer SetGlobalConfig(old)

	strict := GetGlobalConfig()
	strict.StrictMode = true
	SetGlobalConfig(strict)

	doc := openDocx(t, para(run("anything")), nil)
	_, err := doc.ReplaceAllText("nope", "x", ReplaceOptions{Fixed: true})
	if !IsPatternNoMatch(err) {
		t.Fatalf("ReplaceAllText() error = %v, want PatternNoMatchError", err)
	}
}

func TestReplaceAllTextWarnLogging(t *testing.T) {
	old := GetLogger()
	defer SetLogger(old)

	var buf bytes.Buffer
	SetLogger(NewLogger(&buf, LogWarn))

	doc := openDocx(t, para(run("anything")), nil)

	if _, err := doc.ReplaceAllText("nope", "x", ReplaceOptions{Fixed: true}); err != nil {
		t.Fatalf("ReplaceAllText() error = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("quiet no-match logged: %s", buf.String())
	}

	if _, err := doc.ReplaceAllText("nope", "x", ReplaceOptions{Fixed: true, Warn: true}); err != nil {
		t.Fatalf("ReplaceAllText() error = %v", err)
	}
	got := buf.String()
	if !strings.Contains(got, "[WARN]") || !strings.Contains(got, `pattern "nope" matched nothing in body`) {
		t.Errorf("warn log = %q", got)
	}
}
