package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/retype/internal/document"
	"github.com/verte-zerg/retype/internal/model"
	"github.com/verte-zerg/retype/internal/surface"
	"github.com/verte-zerg/retype/internal/tracker"
)

const pendingColor = "#8C8C8C"

type styles struct {
	good        lipgloss.Style
	bad         lipgloss.Style
	pending     lipgloss.Style
	currentWord lipgloss.Style
	footer      lipgloss.Style
	status      lipgloss.Style
}

func newStyles(goodColor, badColor string) styles {
	return styles{
		good:        lipgloss.NewStyle().Foreground(lipgloss.Color(goodColor)),
		bad:         lipgloss.NewStyle().Foreground(lipgloss.Color(badColor)),
		pending:     lipgloss.NewStyle().Foreground(lipgloss.Color(pendingColor)),
		currentWord: lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")),
		footer:      lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E")),
		status:      lipgloss.NewStyle().Foreground(lipgloss.Color(badColor)),
	}
}

type styledRune struct {
	r     rune
	style lipgloss.Style
}

type wordRange struct {
	start int
	end   int
}

// renderViewport draws the part of doc visible through surf. Columns and
// rows are document positions; wide characters are cut at the cell limit.
func renderViewport(doc *document.Document, surf *surface.Surface, caret model.Coord, st styles) string {
	cols, rows := surf.VisibleColumns(), surf.VisibleRows()
	if doc == nil || cols <= 0 || rows <= 0 {
		return ""
	}
	h, v := surf.Offsets()
	out := make([]string, 0, rows)
	for row := 0; row < rows; row++ {
		line := v + 1 + row
		if line > doc.LineCount() {
			out = append(out, "")
			continue
		}
		out = append(out, renderStyledRunes(buildLine(doc, surf, line, h, cols, caret, st)))
	}
	return strings.Join(out, "\n")
}

func buildLine(doc *document.Document, surf *surface.Surface, line, h, cols int, caret model.Coord, st styles) []styledRune {
	text := []rune(doc.Line(line))
	var current *wordRange
	if line == caret.Line {
		current = wordForCursor(findWords(text), caret.Col)
	}

	out := make([]styledRune, 0, cols)
	width := 0
	for col := h; col <= len(text); col++ {
		r := ' '
		if col < len(text) {
			r = text[col]
		} else if line != caret.Line || col != caret.Col {
			break
		}
		w := runewidth.RuneWidth(r)
		if width+w > cols {
			break
		}
		width += w

		style := st.pending
		if tag, ok := surf.TagAt(line, col); ok {
			if tag == tracker.Bad {
				style = st.bad
				if r == ' ' {
					r = '·'
				}
			} else {
				style = st.good
			}
		} else if current != nil && col >= current.start && col < current.end {
			style = st.currentWord
		}
		if line == caret.Line && col == caret.Col {
			style = style.Underline(true)
		}
		out = append(out, styledRune{r: r, style: style})
	}
	return out
}

// renderStyledRunes renders runs of equally styled runes together.
func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for i := 0; i < len(runes); {
		j := i + 1
		for j < len(runes) && sameStyle(runes[j].style, runes[i].style) {
			j++
		}
		var chunk strings.Builder
		for _, item := range runes[i:j] {
			chunk.WriteRune(item.r)
		}
		b.WriteString(runes[i].style.Render(chunk.String()))
		i = j
	}
	return b.String()
}

func sameStyle(a, b lipgloss.Style) bool {
	return a.GetForeground() == b.GetForeground() && a.GetUnderline() == b.GetUnderline()
}

func findWords(text []rune) []wordRange {
	words := []wordRange{}
	start := -1
	for i, r := range text {
		if r == ' ' {
			if start != -1 {
				words = append(words, wordRange{start: start, end: i})
				start = -1
			}
			continue
		}
		if start == -1 {
			start = i
		}
	}
	if start != -1 {
		words = append(words, wordRange{start: start, end: len(text)})
	}
	return words
}

// wordForCursor returns the word under or after col on the caret line.
func wordForCursor(words []wordRange, col int) *wordRange {
	for i, w := range words {
		if col < w.end {
			return &words[i]
		}
	}
	return nil
}
