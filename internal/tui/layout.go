package tui

import (
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
)

const (
	minCardWidth = 28
	cardHeight   = 7
)

// normalizePane forces s to be exactly width columns wide (ANSI-aware) and height
// lines tall, so cards line up when joined with lipgloss.JoinHorizontal.
func normalizePane(s string, width, height int) string {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}

	lines := strings.Split(s, "\n")

	if height > 0 {
		if len(lines) > height {
			lines = lines[:height]
		}
		for len(lines) < height {
			lines = append(lines, "")
		}
	}

	for i := range lines {
		lines[i] = fitLine(lines[i], width)
	}
	return strings.Join(lines, "\n")
}

// fitLine truncates (with an ellipsis) or pads ln to exactly width columns.
func fitLine(ln string, width int) string {
	// Bound the width computation on pathological input.
	if width > 0 && len(ln) > 8192 {
		ln = xansi.Cut(ln, 0, width)
	}

	w := xansi.StringWidth(ln)
	if w > width {
		switch {
		case width <= 0:
			ln = ""
		case width == 1:
			ln = xansi.Cut(ln, 0, 1)
		default:
			ln = xansi.Cut(ln, 0, width-1) + "…"
		}
		w = xansi.StringWidth(ln)
	}
	if w < width {
		ln += strings.Repeat(" ", width-w)
	}
	return ln
}

// gridColumns returns how many cards fit side by side in width.
func gridColumns(width int) int {
	if width <= 0 {
		return 1
	}
	n := width / minCardWidth
	if n < 1 {
		n = 1
	}
	if n > 4 {
		n = 4
	}
	return n
}
