// Package document holds the text being retyped, addressed by 1-indexed
// lines and 0-indexed character columns.
package document

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const tabWidth = 4

// ErrEmptyDocument is returned when there is nothing to type.
var ErrEmptyDocument = errors.New("document is empty")

// Document is an immutable, line-addressable text buffer.
type Document struct {
	source         string
	raw            string
	filterComments bool
	filtered       bool
	lines          [][]rune
}

// New builds a document from text. source names the text (a file path or a
// label) and selects the lexer used when filterComments is set.
func New(source, text string, filterComments bool) (*Document, error) {
	text = norm.NFC.String(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	raw := text

	filtered := false
	if filterComments {
		text, filtered = StripComments(text, source)
	}
	text = strings.TrimSuffix(text, "\n")
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyDocument
	}

	parts := strings.Split(text, "\n")
	lines := make([][]rune, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimRight(expandTabs(part), " \r")
		lines = append(lines, []rune(part))
	}
	return &Document{
		source:         source,
		raw:            raw,
		filterComments: filterComments,
		filtered:       filtered,
		lines:          lines,
	}, nil
}

// Load reads a UTF-8 text file.
func Load(path string, filterComments bool) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("failed to read document: %s is not UTF-8 text", path)
	}
	return New(path, string(data), filterComments)
}

// WithCommentFilter rebuilds the document from its unfiltered text with the
// comment filter switched on or off.
func (d *Document) WithCommentFilter(on bool) (*Document, error) {
	return New(d.source, d.raw, on)
}

// Source returns the path or label the document was built from.
func (d *Document) Source() string {
	return d.source
}

// CommentFilter reports whether the comment filter was requested.
func (d *Document) CommentFilter() bool {
	return d.filterComments
}

// Filtered reports whether comments were actually removed.
func (d *Document) Filtered() bool {
	return d.filtered
}

// LineCount returns the number of lines.
func (d *Document) LineCount() int {
	return len(d.lines)
}

// LineLength returns the number of characters on line, or 0 outside the
// document.
func (d *Document) LineLength(line int) int {
	if line < 1 || line > len(d.lines) {
		return 0
	}
	return len(d.lines[line-1])
}

// CharAt returns the character at (line, col).
func (d *Document) CharAt(line, col int) rune {
	return d.lines[line-1][col]
}

// Line returns the text of line.
func (d *Document) Line(line int) string {
	if line < 1 || line > len(d.lines) {
		return ""
	}
	return string(d.lines[line-1])
}

// CharCount returns the number of characters, excluding line breaks.
func (d *Document) CharCount() int {
	total := 0
	for _, l := range d.lines {
		total += len(l)
	}
	return total
}

func expandTabs(s string) string {
	if !strings.ContainsRune(s, '\t') {
		return s
	}
	var b strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			pad := tabWidth - col%tabWidth
			b.WriteString(strings.Repeat(" ", pad))
			col += pad
			continue
		}
		b.WriteRune(r)
		col++
	}
	return b.String()
}
