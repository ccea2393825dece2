package textscan

import (
	"errors"
	"testing"
)

func TestSeekNext(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		startPos    int
		symbol      string
		expectFound bool
		expectPos   int
	}{
		{
			name:        "Symbol at start",
			text:        "hello world",
			symbol:      "hello",
			expectFound: true,
			expectPos:   5,
		},
		{
			name:        "Symbol in the middle",
			text:        "hello world",
			symbol:      "o w",
			expectFound: true,
			expectPos:   8,
		},
		{
			name:        "Second occurrence after cursor",
			text:        "abcabc",
			startPos:    1,
			symbol:      "abc",
			expectFound: true,
			expectPos:   6,
		},
		{
			name:        "Symbol absent",
			text:        "hello world",
			symbol:      "xyz",
			expectFound: false,
			expectPos:   0,
		},
		{
			name:        "Empty symbol is a no-op",
			text:        "hello",
			startPos:    3,
			symbol:      "",
			expectFound: true,
			expectPos:   3,
		},
		{
			name:        "Empty symbol at right edge succeeds",
			text:        "abc",
			startPos:    3,
			symbol:      "",
			expectFound: true,
			expectPos:   3,
		},
		{
			name:        "Cursor at right edge fails",
			text:        "abc",
			startPos:    3,
			symbol:      "a",
			expectFound: false,
			expectPos:   3,
		},
		{
			name:        "Empty buffer fails",
			text:        "",
			symbol:      "a",
			expectFound: false,
			expectPos:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.text)
			c.pos = tt.startPos

			err := c.SeekNext(tt.symbol)
			if (err == nil) != tt.expectFound {
				t.Errorf("SeekNext(%q) error = %v, expectFound = %v", tt.symbol, err, tt.expectFound)
			}
			if c.Pos() != tt.expectPos {
				t.Errorf("Expected cursor at %d, got %d", tt.expectPos, c.Pos())
			}
			assertBounds(t, c)
		})
	}
}

func TestSeekPrev(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		startPos    int
		symbol      string
		expectFound bool
		expectPos   int
	}{
		{
			name:        "Symbol before cursor",
			text:        "hello world",
			startPos:    11,
			symbol:      "world",
			expectFound: true,
			expectPos:   6,
		},
		{
			name:        "Symbol ending exactly at cursor is found",
			text:        "abcdef",
			startPos:    3,
			symbol:      "abc",
			expectFound: true,
			expectPos:   0,
		},
		{
			name:        "Last occurrence wins",
			text:        "abcabcabc",
			startPos:    9,
			symbol:      "abc",
			expectFound: true,
			expectPos:   6,
		},
		{
			name:        "Symbol entirely after cursor is not found",
			text:        "abcxyz",
			startPos:    2,
			symbol:      "xyz",
			expectFound: false,
			expectPos:   2,
		},
		{
			name:        "Cursor at left edge fails",
			text:        "abc",
			startPos:    0,
			symbol:      "a",
			expectFound: false,
			expectPos:   0,
		},
		{
			name:        "Empty symbol at left edge succeeds",
			text:        "abc",
			startPos:    0,
			symbol:      "",
			expectFound: true,
			expectPos:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.text)
			c.pos = tt.startPos

			err := c.SeekPrev(tt.symbol)
			if (err == nil) != tt.expectFound {
				t.Errorf("SeekPrev(%q) error = %v, expectFound = %v", tt.symbol, err, tt.expectFound)
			}
			if c.Pos() != tt.expectPos {
				t.Errorf("Expected cursor at %d, got %d", tt.expectPos, c.Pos())
			}
			assertBounds(t, c)
		})
	}
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		startPos    int
		before      string
		after       string
		expectOK    bool
		expectValue string
		expectPos   int
	}{
		{
			name:        "Between two markers",
			text:        `"ip_prefix": "10.0.0.0/8",`,
			before:      `"ip_prefix": "`,
			after:       `",`,
			expectOK:    true,
			expectValue: "10.0.0.0/8",
			expectPos:   26,
		},
		{
			name:        "Empty before starts at cursor",
			text:        "abc-def",
			startPos:    1,
			before:      "",
			after:       "-",
			expectOK:    true,
			expectValue: "bc",
			expectPos:   4,
		},
		{
			name:        "Empty after extracts to end of text",
			text:        "key=value",
			before:      "=",
			after:       "",
			expectOK:    true,
			expectValue: "value",
			expectPos:   9,
		},
		{
			name:        "Adjacent markers yield empty string",
			text:        "[]",
			before:      "[",
			after:       "]",
			expectOK:    true,
			expectValue: "",
			expectPos:   2,
		},
		{
			name:      "Before missing leaves cursor",
			text:      "abcdef",
			startPos:  2,
			before:    "zz",
			after:     "f",
			expectOK:  false,
			expectPos: 2,
		},
		{
			name:      "After missing leaves cursor despite found before",
			text:      "abcdef",
			startPos:  1,
			before:    "cd",
			after:     "zz",
			expectOK:  false,
			expectPos: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.text)
			c.pos = tt.startPos

			value, err := c.Extract(tt.before, tt.after)
			if (err == nil) != tt.expectOK {
				t.Fatalf("Extract(%q, %q) error = %v, expectOK = %v", tt.before, tt.after, err, tt.expectOK)
			}
			if tt.expectOK && value != tt.expectValue {
				t.Errorf("Expected %q, got %q", tt.expectValue, value)
			}
			if c.Pos() != tt.expectPos {
				t.Errorf("Expected cursor at %d, got %d", tt.expectPos, c.Pos())
			}
			assertBounds(t, c)
		})
	}
}

func TestPeekAndCanExtractDoNotMove(t *testing.T) {
	c := New("<a>first</a><a>second</a>")
	c.pos = 3

	if !c.CanExtract("<a>", "</a>") {
		t.Error("Expected CanExtract to succeed")
	}
	if c.Pos() != 3 {
		t.Errorf("CanExtract moved cursor to %d", c.Pos())
	}

	value, ok := c.Peek("<a>", "</a>")
	if !ok || value != "second" {
		t.Errorf("Peek = (%q, %v), expected (\"second\", true)", value, ok)
	}
	if c.Pos() != 3 {
		t.Errorf("Peek moved cursor to %d", c.Pos())
	}

	if c.CanExtract("<missing>", "</a>") {
		t.Error("Expected CanExtract to fail for missing marker")
	}
	if c.Pos() != 3 {
		t.Errorf("Failed CanExtract moved cursor to %d", c.Pos())
	}
}

func TestSeekAndExtractAtomicity(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		startPos  int
		advanceTo string
		before    string
		after     string
		expectOK  bool
		expectPos int
	}{
		{
			name:      "Both steps succeed",
			text:      "skip|key=[v]",
			advanceTo: "|",
			before:    "=[",
			after:     "]",
			expectOK:  true,
			expectPos: 12,
		},
		{
			name:      "Seek fails although markers exist elsewhere",
			text:      "a...z",
			startPos:  1,
			advanceTo: "X",
			before:    "a",
			after:     "z",
			expectOK:  false,
			expectPos: 1,
		},
		{
			name:      "Extract fails after successful seek",
			text:      "skip|only-before",
			startPos:  2,
			advanceTo: "|",
			before:    "only",
			after:     "NOPE",
			expectOK:  false,
			expectPos: 2,
		},
		{
			name:      "Second extract marker fails after both seeks moved",
			text:      "X a b",
			startPos:  0,
			advanceTo: "X",
			before:    "a",
			after:     "z",
			expectOK:  false,
			expectPos: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.text)
			c.pos = tt.startPos

			_, err := c.SeekAndExtract(tt.advanceTo, tt.before, tt.after)
			if (err == nil) != tt.expectOK {
				t.Fatalf("SeekAndExtract error = %v, expectOK = %v", err, tt.expectOK)
			}
			if c.Pos() != tt.expectPos {
				t.Errorf("Expected cursor at %d, got %d (no third outcome is allowed)", tt.expectPos, c.Pos())
			}
			assertBounds(t, c)
		})
	}
}

func TestCursorRestoredBeforeFailureIsSurfaced(t *testing.T) {
	// A caller handling the error must already observe the restored
	// position, not a torn intermediate one.
	c := New("skip|a only")
	c.pos = 1

	_, err := c.SeekAndExtract("|", "a", "MISSING")
	if err == nil {
		t.Fatal("Expected SeekAndExtract to fail")
	}
	if got := c.Pos(); got != 1 {
		t.Errorf("Cursor observed at %d from failure handling, expected 1", got)
	}
}

func TestCaseFolding(t *testing.T) {
	c := NewFolded(`"IP_Prefix": "10.1.0.0/16",`)

	value, err := c.Extract(`"ip_prefix": "`, `",`)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if value != "10.1.0.0/16" {
		t.Errorf("Expected extraction from original text, got %q", value)
	}

	// Case-sensitive cursor must not match.
	cs := New(`"IP_Prefix": "10.1.0.0/16",`)
	if _, err := cs.Extract(`"ip_prefix": "`, `",`); err == nil {
		t.Error("Expected case-sensitive extraction to fail")
	}
}

func TestSetTextResetsCursor(t *testing.T) {
	c := New("hello")
	if err := c.SeekNext("lo"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if c.Pos() != 5 {
		t.Fatalf("Expected cursor at 5, got %d", c.Pos())
	}

	c.SetText("other")
	if c.Pos() != 0 {
		t.Errorf("SetText should reset cursor to 0, got %d", c.Pos())
	}
	if c.Len() != 5 {
		t.Errorf("Expected length 5, got %d", c.Len())
	}
}

func TestTryFormsMirrorStrictForms(t *testing.T) {
	c := New("one two three")

	if !c.TrySeekNext("two") {
		t.Error("Expected TrySeekNext to find symbol")
	}
	if c.TrySeekNext("missing") {
		t.Error("Expected TrySeekNext to report failure")
	}
	pos := c.Pos()
	if value, ok := c.TryExtract(" ", ""); !ok || value != "three" {
		t.Errorf("TryExtract = (%q, %v), expected (\"three\", true)", value, ok)
	}
	if _, ok := c.TryExtract("x", "y"); ok {
		t.Error("Expected TryExtract to fail at right edge")
	}
	if c.Pos() != c.Len() {
		t.Errorf("Cursor at %d, expected right edge %d", c.Pos(), c.Len())
	}
	_ = pos

	if _, ok := c.TrySeekAndExtract("", "a", "b"); ok {
		t.Error("Expected TrySeekAndExtract to fail at right edge")
	}
	if !c.TrySeekPrev("three") {
		t.Error("Expected TrySeekPrev to find symbol")
	}
}

func TestNotFoundError(t *testing.T) {
	c := New("abc")
	c.pos = 3

	err := c.SeekNext("a")
	var nfe *NotFoundError
	if !errors.As(err, &nfe) {
		t.Fatalf("Expected *NotFoundError, got %T", err)
	}
	if nfe.Symbol != "a" || nfe.Start != 3 || nfe.Backward {
		t.Errorf("Unexpected error fields: %+v", nfe)
	}

	err = c.SeekPrev("xyz")
	if !errors.As(err, &nfe) {
		t.Fatalf("Expected *NotFoundError, got %T", err)
	}
	if !nfe.Backward {
		t.Error("Expected backward direction in error")
	}
}

func TestNilCursor(t *testing.T) {
	var c *Cursor

	if err := c.SeekNext("a"); !errors.Is(err, ErrNilCursor) {
		t.Errorf("Expected ErrNilCursor, got %v", err)
	}
	if err := c.SeekPrev("a"); !errors.Is(err, ErrNilCursor) {
		t.Errorf("Expected ErrNilCursor, got %v", err)
	}
	if _, err := c.Extract("a", "b"); !errors.Is(err, ErrNilCursor) {
		t.Errorf("Expected ErrNilCursor, got %v", err)
	}
	if _, err := c.SeekAndExtract("", "a", "b"); !errors.Is(err, ErrNilCursor) {
		t.Errorf("Expected ErrNilCursor, got %v", err)
	}
	if c.TrySeekNext("a") || c.CanExtract("a", "b") {
		t.Error("Expected try forms to report failure on nil cursor")
	}
}

func assertBounds(t *testing.T, c *Cursor) {
	t.Helper()
	if c.Pos() < 0 || c.Pos() > c.Len() {
		t.Errorf("Cursor out of bounds: pos=%d len=%d", c.Pos(), c.Len())
	}
}
