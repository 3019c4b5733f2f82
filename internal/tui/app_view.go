package tui

import (
	"fmt"
	"strings"

	"deskboard-cli/internal/model"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

func (m appModel) View() string {
	if m.width == 0 {
		return "Loading…"
	}

	var body string
	switch m.view {
	case viewDetail:
		body = m.viewDetail()
	default:
		body = m.viewDashboard()
	}

	header := m.viewHeader()
	footer := m.viewFooter()
	bodyH := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if bodyH < 1 {
		bodyH = 1
	}

	if m.modal != modalNone {
		body = lipgloss.Place(m.width, bodyH, lipgloss.Center, lipgloss.Center, m.viewModal())
	}
	body = normalizePane(body, m.width, bodyH)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m appModel) viewHeader() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Render("Deskboard")
	meta := styleMuted().Render(fmt.Sprintf("  %s · %s · %d widgets", m.snap.Theme, m.snap.LayoutMode, len(m.snap.Widgets)))
	if m.view == viewDetail {
		if w, ok := m.openWidget(); ok {
			meta = styleMuted().Render("  › ") + lipgloss.NewStyle().Bold(true).Render(m.title(w))
		}
	}
	return fitLine(title+meta, m.width) + "\n"
}

func (m appModel) viewFooter() string {
	status := ""
	if m.status != "" {
		if m.statusIsErr {
			status = styleError().Render(m.status)
		} else {
			status = styleMuted().Render(m.status)
		}
	}

	var helpView string
	switch {
	case m.modal != modalNone:
		helpView = styleMuted().Render("enter: confirm   esc: cancel")
	case m.view == viewDetail:
		helpView = m.help.View(m.detailKeys())
	case m.grabbing:
		helpView = styleMuted().Render("arrows: place   enter: drop   esc: cancel")
	default:
		helpView = m.help.View(dashboardHelp{k: m.keys})
	}
	return fitLine(status, m.width) + "\n" + helpView
}

func (m appModel) detailKeys() detailHelp {
	w, ok := m.openWidget()
	if !ok {
		return detailHelp{bindings: []key.Binding{m.keys.Back}}
	}
	v, known := m.views.Resolve(w.Type)
	if !known || v.help == nil {
		return detailHelp{bindings: []key.Binding{m.keys.Back}}
	}
	return detailHelp{bindings: v.help(m.keys)}
}

func (m appModel) viewDashboard() string {
	widgets := m.displayOrder()
	if len(widgets) == 0 {
		return styleMuted().Padding(1, 2).Render("No widgets yet. Press a to add one.")
	}

	selected := m.focus.Index()
	if m.grabbing {
		selected = m.grabTo
	}

	if m.snap.LayoutMode == model.LayoutList {
		cards := make([]string, 0, len(widgets))
		for i, w := range widgets {
			cards = append(cards, m.renderCard(w, m.width, i == selected))
		}
		return lipgloss.JoinVertical(lipgloss.Left, cards...)
	}

	cols := gridColumns(m.width)
	cardW := m.width / cols
	rows := make([]string, 0, len(widgets)/cols+1)
	for start := 0; start < len(widgets); start += cols {
		end := min(start+cols, len(widgets))
		row := make([]string, 0, cols)
		for i := start; i < end; i++ {
			row = append(row, m.renderCard(widgets[i], cardW, i == selected))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderCard draws one widget as a bordered card exactly width columns wide.
func (m appModel) renderCard(w model.WidgetRecord, width int, selected bool) string {
	innerW := max(1, width-4)

	var lines []string
	if v, ok := m.views.Resolve(w.Type); ok {
		lines = v.card(&m, w, innerW)
	} else {
		lines = []string{styleError().Render(widgetNotFound), styleMuted().Render("type: " + w.Type)}
	}

	title := lipgloss.NewStyle().Bold(true).Render(m.title(w))
	content := normalizePane(title+"\n"+strings.Join(lines, "\n"), innerW, cardHeight-2)

	border := colorCardBorder
	if selected {
		border = colorSelectedBorder
		if m.grabbing {
			border = colorGrabBorder
		}
	}
	st := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(width - 2)
	if bg, ok := widgetBackground(m.snap.WidgetStyles[w.ID]); ok {
		st = st.Background(bg)
	}
	if selected && !m.grabbing {
		st = st.BorderStyle(lipgloss.ThickBorder())
	}
	return st.Render(content)
}

func (m appModel) viewDetail() string {
	w, ok := m.openWidget()
	if !ok {
		return ""
	}
	innerW := max(10, m.width-4)

	var content string
	if v, known := m.views.Resolve(w.Type); known {
		content = v.detail(&m, w, innerW)
	} else {
		content = styleError().Render(widgetNotFound) + "\n" + styleMuted().Render("type: "+w.Type)
	}

	st := lipgloss.NewStyle().Padding(1, 2)
	if bg, ok := widgetBackground(m.snap.WidgetStyles[w.ID]); ok {
		st = st.Background(bg)
	}
	return st.Render(content)
}

func (m appModel) viewModal() string {
	boxW := min(64, max(20, m.width-4))
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorAccent).
		Background(colorSurfaceBg).
		Foreground(colorSurfaceFg).
		Padding(1, 2).
		Width(boxW)

	switch m.modal {
	case modalPicker:
		return box.Render(m.picker.View())
	case modalConfirmRemove:
		name := ""
		if w, ok := m.focusedWidget(); ok {
			name = m.title(w)
		}
		return box.Render(fmt.Sprintf("Remove %q from the dashboard?\n\n", name) + styleMuted().Render("y: remove   n/esc: keep"))
	}

	heading := map[modalKind]string{
		modalTitle:    "Widget title",
		modalColor:    "Background color",
		modalAddNote:  "New note",
		modalEditNote: "Edit note",
		modalAddTask:  "New task",
		modalEditTask: "Edit task",
		modalAddMark:  "Mark a date",
		modalAddCalc:  "Record a calculation",
	}[m.modal]
	input := lipgloss.NewStyle().Background(colorInputBg).Width(boxW - 6).Render(m.input.View())
	return box.Render(lipgloss.NewStyle().Bold(true).Render(heading) + "\n\n" + input)
}
