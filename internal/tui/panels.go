package tui

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"
)

// Minimum terminal geometry needed to draw the panels.
const (
	minWidth  = 40
	minHeight = 6
)

// chromeRows counts the header, trailer and command line rows.
const chromeRows = 3

// layout is the panel geometry derived from the terminal size.
type layout struct {
	width        int
	height       int
	bodyHeight   int
	projectWidth int
	taskWidth    int
	tooSmall     bool
}

// computeLayout derives panel sizes. projectWidth is reduced on narrow terminals.
func computeLayout(width, height, projectWidth int) layout {
	l := layout{width: width, height: height}
	if width < minWidth || height < minHeight {
		l.tooSmall = true
		l.bodyHeight = max(1, height-chromeRows)
		return l
	}
	l.bodyHeight = height - chromeRows
	l.projectWidth = min(projectWidth, width/2)
	l.taskWidth = width - l.projectWidth
	return l
}

// panelKind names every panel variant.
type panelKind int

// panelHeader and related constants are the closed set of panels.
const (
	panelHeader panelKind = iota
	panelTrailer
	panelCommandLine
	panelProjectList
	panelTaskList
	panelOverlayList
)

// panel is one rectangular region of the screen.
type panel struct {
	kind   panelKind
	width  int
	height int
	text   string
	right  string
	prompt string
	lines  []line
	empty  string
}

// styles holds the lipgloss styles used to draw panels.
type styles struct {
	bar       lipgloss.Style
	banner    lipgloss.Style
	plain     lipgloss.Style
	selected  lipgloss.Style
	active    lipgloss.Style
	high      lipgloss.Style
	medium    lipgloss.Style
	separator lipgloss.Style
	muted     lipgloss.Style
}

// newStyles returns the default palette: white on blue bars, white on red selection.
func newStyles() styles {
	white := lipgloss.Color("15")
	blue := lipgloss.Color("4")
	red := lipgloss.Color("1")
	green := lipgloss.Color("2")
	return styles{
		bar:       lipgloss.NewStyle().Bold(true).Foreground(white).Background(blue),
		banner:    lipgloss.NewStyle().Bold(true).Foreground(red),
		plain:     lipgloss.NewStyle(),
		selected:  lipgloss.NewStyle().Bold(true).Foreground(white).Background(red),
		active:    lipgloss.NewStyle().Bold(true).Foreground(white).Background(blue),
		high:      lipgloss.NewStyle().Bold(true).Foreground(red),
		medium:    lipgloss.NewStyle().Bold(true).Foreground(green),
		separator: lipgloss.NewStyle().Bold(true).Foreground(blue),
		muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

// forClass returns the style for a highlight class.
func (s styles) forClass(h highlight) lipgloss.Style {
	switch h {
	case highlightSelected:
		return s.selected
	case highlightActive:
		return s.active
	case highlightHigh:
		return s.high
	case highlightMedium:
		return s.medium
	default:
		return s.plain
	}
}

// render draws p as exactly p.height rows of p.width cells.
func (p panel) render(st styles) string {
	switch p.kind {
	case panelHeader:
		return st.bar.Render(fill(p.text, p.width))
	case panelTrailer:
		return st.bar.Render(trailerText(p.text, p.right, p.width))
	case panelCommandLine:
		if p.prompt != "" {
			return st.banner.Render(p.prompt) + fill(p.text, p.width-runewidth.StringWidth(p.prompt))
		}
		if p.text == "" {
			return fill("", p.width)
		}
		return st.banner.Render(fill(p.text, p.width))
	case panelProjectList:
		rows := p.listRows(st, p.width-1)
		sep := st.separator.Render("|")
		for i := range rows {
			rows[i] += sep
		}
		return strings.Join(rows, "\n")
	case panelTaskList, panelOverlayList:
		return strings.Join(p.listRows(st, p.width), "\n")
	default:
		return ""
	}
}

// listRows renders p.lines padded to height rows of width cells.
func (p panel) listRows(st styles, width int) []string {
	rows := make([]string, 0, p.height)
	if len(p.lines) == 0 && p.empty != "" && p.height > 0 {
		rows = append(rows, st.muted.Render(fill(p.empty, width)))
	}
	for _, ln := range p.lines {
		if len(rows) >= p.height {
			break
		}
		rows = append(rows, st.forClass(ln.Class).Render(fill(ln.Text, width)))
	}
	for len(rows) < p.height {
		rows = append(rows, fill("", width))
	}
	return rows
}

// trailerText draws a dashed bar with text at column 3 and right-aligned right text.
func trailerText(text, right string, width int) string {
	if width <= 0 {
		return ""
	}
	out := strings.Repeat("-", width)
	if text != "" {
		out = overwrite(out, 3, text)
	}
	if right != "" {
		out = overwrite(out, width-runewidth.StringWidth(right)-4, right)
	}
	return runewidth.Truncate(out, width, "")
}

// overwrite replaces cells of a dashed bar starting at col with s.
func overwrite(base string, col int, s string) string {
	col = max(0, col)
	head := runewidth.Truncate(base, col, "")
	head = runewidth.FillRight(head, col)
	tailStart := col + runewidth.StringWidth(s)
	tail := ""
	if w := runewidth.StringWidth(base); tailStart < w {
		tail = strings.Repeat("-", w-tailStart)
	}
	return head + s + tail
}

// fill truncates or pads s to exactly width cells.
func fill(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.FillRight(runewidth.Truncate(s, width, ""), width)
}

// tooSmallNotice renders the placeholder for terminals below the minimum size.
func tooSmallNotice(width, height int) string {
	msg := "terminal too small"
	hint := "need at least 40x6"
	return lipgloss.Place(max(1, width), max(1, height), lipgloss.Center, lipgloss.Center, msg+"\n"+hint)
}
