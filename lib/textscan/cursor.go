package textscan

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNilCursor is returned when an operation is invoked on a nil cursor.
var ErrNilCursor = errors.New("textscan: nil cursor")

// NotFoundError reports a failed symbol search. Start is the cursor position
// the search began from.
type NotFoundError struct {
	Symbol   string
	Start    int
	Backward bool
}

func (e *NotFoundError) Error() string {
	direction := "forward"
	if e.Backward {
		direction = "backward"
	}
	return fmt.Sprintf("textscan: symbol %q not found (%s search from position %d)", e.Symbol, direction, e.Start)
}

// Cursor is a position inside an immutable text buffer, used for forward and
// backward substring search and for extracting the text between two markers.
//
// The position always satisfies 0 <= Pos() <= Len(): it sits between
// characters, with 0 the left edge and Len() the right edge. Every operation
// that fails leaves the position exactly where it was, including the compound
// seek-and-extract forms. A Cursor is not safe for concurrent use.
type Cursor struct {
	text   string // original buffer, extraction results are taken from here
	search string // buffer used for matching (ASCII-folded copy in case-insensitive mode)
	pos    int
	fold   bool
}

// New creates a case-sensitive cursor at the start of text.
func New(text string) *Cursor {
	return &Cursor{text: text, search: text}
}

// NewFolded creates a cursor that matches symbols ASCII-case-insensitively.
func NewFolded(text string) *Cursor {
	return &Cursor{text: text, search: asciiFold(text), fold: true}
}

// SetText replaces the buffer and resets the cursor to the left edge.
func (c *Cursor) SetText(text string) {
	c.text = text
	if c.fold {
		c.search = asciiFold(text)
	} else {
		c.search = text
	}
	c.pos = 0
}

// Text returns the buffer the cursor is bound to.
func (c *Cursor) Text() string {
	if c == nil {
		return ""
	}
	return c.text
}

// Pos returns the current cursor position.
func (c *Cursor) Pos() int {
	if c == nil {
		return 0
	}
	return c.pos
}

// Len returns the buffer length.
func (c *Cursor) Len() int {
	if c == nil {
		return 0
	}
	return len(c.text)
}

// Reset moves the cursor back to the left edge.
func (c *Cursor) Reset() {
	if c != nil {
		c.pos = 0
	}
}

// SeekNext searches forward for symbol and places the cursor immediately
// after it. An empty symbol succeeds without moving. It fails with a
// *NotFoundError if the symbol is absent or the cursor is already at the
// right edge; the cursor does not move on failure.
func (c *Cursor) SeekNext(symbol string) error {
	if c == nil {
		return ErrNilCursor
	}
	if symbol == "" {
		return nil
	}
	if c.pos >= len(c.search) {
		return &NotFoundError{Symbol: symbol, Start: c.pos}
	}

	idx := strings.Index(c.search[c.pos:], c.foldSymbol(symbol))
	if idx < 0 {
		return &NotFoundError{Symbol: symbol, Start: c.pos}
	}

	c.pos += idx + len(symbol)
	return nil
}

// TrySeekNext is the non-strict form of SeekNext: it reports whether the
// symbol was found instead of returning an error.
func (c *Cursor) TrySeekNext(symbol string) bool {
	return c.SeekNext(symbol) == nil
}

// SeekPrev searches backward for symbol and places the cursor immediately
// before it. The scan starts at the position one before the cursor, so a
// symbol ending exactly at the cursor is still found. An empty symbol
// succeeds without moving. It fails if the cursor is at the left edge or the
// symbol is absent; the cursor does not move on failure.
func (c *Cursor) SeekPrev(symbol string) error {
	if c == nil {
		return ErrNilCursor
	}
	if symbol == "" {
		return nil
	}
	if c.pos == 0 {
		return &NotFoundError{Symbol: symbol, Start: c.pos, Backward: true}
	}

	// The match may start no later than pos-1, so it may extend up to
	// pos-1+len(symbol), clamped to the buffer end.
	limit := c.pos - 1 + len(symbol)
	if limit > len(c.search) {
		limit = len(c.search)
	}

	idx := strings.LastIndex(c.search[:limit], c.foldSymbol(symbol))
	if idx < 0 {
		return &NotFoundError{Symbol: symbol, Start: c.pos, Backward: true}
	}

	c.pos = idx
	return nil
}

// TrySeekPrev is the non-strict form of SeekPrev.
func (c *Cursor) TrySeekPrev(symbol string) bool {
	return c.SeekPrev(symbol) == nil
}

// Extract searches forward for before, then for after, and returns the text
// strictly between them. An empty before starts the after search at the
// cursor; an empty after extracts up to the end of the buffer. On success the
// cursor is placed immediately after the after marker. On failure of either
// search the cursor is restored to its pre-call position before the error is
// returned.
func (c *Cursor) Extract(before, after string) (extracted string, err error) {
	if c == nil {
		return "", ErrNilCursor
	}

	start := c.pos
	defer func() {
		if err != nil {
			c.pos = start
		}
	}()

	if err = c.SeekNext(before); err != nil {
		return "", err
	}

	from := c.pos
	if after == "" {
		c.pos = len(c.text)
		return c.text[from:], nil
	}

	idx := strings.Index(c.search[from:], c.foldSymbol(after))
	if idx < 0 {
		return "", &NotFoundError{Symbol: after, Start: from}
	}

	c.pos = from + idx + len(after)
	return c.text[from : from+idx], nil
}

// TryExtract is the non-strict form of Extract: it returns ("", false)
// instead of an error, with the cursor untouched on failure.
func (c *Cursor) TryExtract(before, after string) (string, bool) {
	extracted, err := c.Extract(before, after)
	return extracted, err == nil
}

// CanExtract reports whether Extract would succeed, without moving the cursor.
func (c *Cursor) CanExtract(before, after string) bool {
	if c == nil {
		return false
	}
	start := c.pos
	_, err := c.Extract(before, after)
	c.pos = start
	return err == nil
}

// Peek performs an extraction without moving the cursor.
func (c *Cursor) Peek(before, after string) (string, bool) {
	if c == nil {
		return "", false
	}
	start := c.pos
	extracted, err := c.Extract(before, after)
	c.pos = start
	return extracted, err == nil
}

// SeekAndExtract advances past advanceTo and then extracts the text between
// before and after as a single atomic operation: the cursor ends up either
// fully advanced past after, or exactly where it started. The restore happens
// before the error is surfaced, so a caller inspecting the cursor from its
// own error handling never observes a partial advance.
func (c *Cursor) SeekAndExtract(advanceTo, before, after string) (extracted string, err error) {
	if c == nil {
		return "", ErrNilCursor
	}

	start := c.pos
	defer func() {
		if err != nil {
			c.pos = start
		}
	}()

	if err = c.SeekNext(advanceTo); err != nil {
		return "", err
	}

	return c.Extract(before, after)
}

// TrySeekAndExtract is the non-strict form of SeekAndExtract.
func (c *Cursor) TrySeekAndExtract(advanceTo, before, after string) (string, bool) {
	extracted, err := c.SeekAndExtract(advanceTo, before, after)
	return extracted, err == nil
}

func (c *Cursor) foldSymbol(symbol string) string {
	if c.fold {
		return asciiFold(symbol)
	}
	return symbol
}

// asciiFold lowercases ASCII letters only. Folding must be length-preserving
// so that match offsets in the folded buffer are valid in the original one.
func asciiFold(s string) string {
	hasUpper := false
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			hasUpper = true
			break
		}
	}
	if !hasUpper {
		return s
	}

	b := []byte(s)
	for i := 0; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}
