package tui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
)

type mdKey struct {
	dark  bool
	width int
}

// markdownCache holds one glamour renderer per palette and wrap width.
// glamour.WithAutoStyle may query the terminal, so the palette comes from the dashboard theme.
type markdownCache struct {
	mu    sync.Mutex
	byKey map[mdKey]*glamour.TermRenderer
}

var notesMarkdown = &markdownCache{byKey: map[mdKey]*glamour.TermRenderer{}}

func (c *markdownCache) renderer(dark bool, width int) (*glamour.TermRenderer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := mdKey{dark: dark, width: width}
	if r, ok := c.byKey[k]; ok {
		return r, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(notesStyle(dark)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	c.byKey[k] = r
	return r, nil
}

// renderNotes draws notes as a markdown bullet list, so emphasis, code spans and links
// inside a note are rendered. Falls back to the plain list if glamour fails.
func renderNotes(notes []string, width int) string {
	var b strings.Builder
	for _, n := range notes {
		n = strings.Join(strings.Fields(n), " ")
		if n == "" {
			continue
		}
		fmt.Fprintf(&b, "- %s\n", n)
	}
	src := b.String()
	if src == "" {
		return ""
	}

	r, err := notesMarkdown.renderer(lipgloss.HasDarkBackground(), max(width, 10))
	if err != nil {
		return src
	}
	out, err := r.Render(src)
	if err != nil {
		return src
	}
	return strings.Trim(out, "\n")
}

// notesStyle is glamour's light or dark preset recoloured with the dashboard palette.
func notesStyle(dark bool) ansi.StyleConfig {
	cfg := styles.LightStyleConfig
	pick := func(c lipgloss.AdaptiveColor) *string { return &c.Light }
	if dark {
		cfg = styles.DarkStyleConfig
		pick = func(c lipgloss.AdaptiveColor) *string { return &c.Dark }
	}

	zero := uint(0)
	underline := true
	cfg.Document.Margin = &zero
	cfg.Text.Color = pick(colorSurfaceFg)
	cfg.Code.Color = pick(colorSurfaceFg)
	cfg.Link.Color = pick(colorAccent)
	cfg.Link.Underline = &underline
	cfg.LinkText.Color = pick(colorAccent)
	cfg.Strong.Color = nil
	cfg.Emph.Color = nil
	return cfg
}
