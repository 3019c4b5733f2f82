package tui

import (
	"os"
	"strings"

	"deskboard-cli/internal/model"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme/palette helpers.
//
// Every color is a lipgloss.AdaptiveColor. The dashboard's own light/dark setting
// decides which variant is used (see applyDashboardTheme), not the terminal background.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted = ac("240", "243")

	colorSelectedBg     = ac("#e9e9e9", "#262626")
	colorSelectedFg     = ac("235", "255")
	colorSelectedBorder = ac("232", "255")
	colorCardBorder     = ac("250", "243")

	colorSurfaceBg = ac("255", "235")
	colorSurfaceFg = ac("235", "252")
	colorControlBg = ac("252", "235")
	colorInputBg   = ac("254", "234")

	colorAccent   = ac("27", "62")
	colorAccentFg = ac("255", "235")

	// Grab mode and write-failure feedback.
	colorGrabBorder = ac("172", "214")
	colorErrorFg    = ac("160", "203")
)

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

func styleError() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorErrorFg).Bold(true)
}

// applyDashboardTheme points adaptive colors at the palette for t.
func applyDashboardTheme(t model.Theme) {
	lipgloss.SetHasDarkBackground(t == model.ThemeDark)
}

// applyColorProfilePreference sets Lip Gloss's color profile for the interactive TUI.
//
// termenv.EnvColorProfile respects CLICOLOR/CLICOLOR_FORCE, which can accidentally
// disable colors in a TUI. Here we only honor NO_COLOR and otherwise follow the
// terminal's capabilities.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}

	profile := termenv.ColorProfile()

	// Trust TERM/COLORTERM when they claim more than the detector reports.
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	if strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit") {
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	} else if strings.Contains(term, "256color") {
		if profile == termenv.Ascii || profile == termenv.ANSI {
			profile = termenv.ANSI256
		}
	}

	lipgloss.SetColorProfile(profile)
}

// widgetBackground returns the user's background override for a card, if it is a
// color lipgloss understands (hex or ANSI number).
func widgetBackground(style model.WidgetStyle) (lipgloss.Color, bool) {
	v := strings.TrimSpace(style[model.StyleBackgroundColor])
	if v == "" {
		return "", false
	}
	if strings.HasPrefix(v, "#") && (len(v) == 4 || len(v) == 7) {
		return lipgloss.Color(v), true
	}
	n := atoi(v)
	if n >= 0 && n <= 255 {
		return lipgloss.Color(v), true
	}
	return "", false
}

// atoi parses a non-negative decimal, returning -1 for anything else.
func atoi(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return -1
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return -1
		}
		n = n*10 + int(r-'0')
		if n > 1<<20 {
			return -1
		}
	}
	return n
}
