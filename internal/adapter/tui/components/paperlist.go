package components

import (
	"fmt"
	"strconv"
	"strings"

	"inferdesk/internal/adapter/tui/theme"
	"inferdesk/internal/domain"
)

// PaperListModel renders semantic search hits with a movable cursor.
type PaperListModel struct {
	Papers []domain.Paper
	cursor int
	width  int
}

// SetWidth updates the rendering width.
func (m *PaperListModel) SetWidth(w int) { m.width = w }

// SetPapers replaces the list and resets the cursor.
func (m *PaperListModel) SetPapers(p []domain.Paper) {
	m.Papers = p
	m.cursor = 0
}

// Move shifts the cursor by delta, clamped to the list.
func (m *PaperListModel) Move(delta int) {
	if len(m.Papers) == 0 {
		return
	}
	m.cursor = theme.Clamp(m.cursor+delta, 0, len(m.Papers)-1)
}

// Selected returns the paper under the cursor.
func (m PaperListModel) Selected() (domain.Paper, bool) {
	if len(m.Papers) == 0 {
		return domain.Paper{}, false
	}
	return m.Papers[m.cursor], true
}

// Cursor returns the selected index.
func (m PaperListModel) Cursor() int { return m.cursor }

// FormatPaper returns the plain-text rendering of one result.
func FormatPaper(p domain.Paper) string {
	title := p.Title
	if title == "" {
		title = "(untitled)"
	}
	year := "n.d."
	if p.Year > 0 {
		year = strconv.Itoa(p.Year)
	}
	s := fmt.Sprintf("%s\n   %s (%s)", title, strings.Join(p.Authors, ", "), year)
	if p.Link != "" {
		s += "\n   " + p.Link
	}
	return s
}

// View renders the list.
func (m PaperListModel) View() string {
	if len(m.Papers) == 0 {
		return theme.TextMuted.Render("  No papers yet. Type a query and press Enter.")
	}
	width := ContentWidth(m.width)

	var sb strings.Builder
	for i, p := range m.Papers {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		marker := "  "
		title := theme.PaperTitle
		if i == m.cursor {
			marker = theme.PaperSelected.Render(theme.SymbolArrowR + " ")
			title = theme.PaperSelected
		}
		name := p.Title
		if name == "" {
			name = "(untitled)"
		}
		sb.WriteString(marker + title.Render(wrapText(name, width-2)))

		year := "n.d."
		if p.Year > 0 {
			year = strconv.Itoa(p.Year)
		}
		sb.WriteString("\n   " + theme.PaperMeta.Render(strings.Join(p.Authors, ", ")+" "+theme.SymbolBullet+" "+year))
		if p.Link != "" {
			sb.WriteString("\n   " + theme.PaperLink.Render(p.Link))
		}
	}
	return sb.String()
}
