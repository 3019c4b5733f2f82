package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"deskboard-cli/internal/model"
	"deskboard-cli/internal/registry"
	"deskboard-cli/internal/reorder"
	"deskboard-cli/internal/widgetdata"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/stopwatch"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const widgetNotFound = "Widget not found."

// widgetView is the terminal rendering capability registered per widget kind.
type widgetView struct {
	// card returns the body lines shown on the dashboard.
	card func(m *appModel, w model.WidgetRecord, width int) []string
	// detail renders the full-screen view opened with enter.
	detail func(m *appModel, w model.WidgetRecord, width int) string
	// count is the number of selectable rows in the detail view.
	count func(m *appModel, w model.WidgetRecord) int
	// handle processes detail-view keys not handled globally.
	handle func(m *appModel, w model.WidgetRecord, msg tea.KeyMsg) (tea.Cmd, bool)
	help   func(k keyMap) []key.Binding
}

func builtinViews() *registry.Registry[widgetView] {
	r := registry.New[widgetView]()
	r.Register(registry.KindNotes, notesView)
	r.Register(registry.KindTodo, todoView)
	r.Register(registry.KindCalculator, calculatorView)
	r.Register(registry.KindCalendar, calendarView)
	r.Register(registry.KindStopwatch, stopwatchView)
	r.Register(registry.KindWeather, weatherView)
	return r
}

func cursorPrefix(selected bool) string {
	if selected {
		return "▸ "
	}
	return "  "
}

// moveRow applies a one-step move of the selected row within a list of n rows.
func moveRow(m *appModel, n, delta int) (reorder.Drag, bool) {
	to := m.detailIdx + delta
	if !reorder.Valid(n, m.detailIdx, to) || to >= n {
		return reorder.Drag{}, false
	}
	d := reorder.To(m.detailIdx, to)
	m.detailIdx = to
	return d, true
}

var notesView = widgetView{
	card: func(m *appModel, w model.WidgetRecord, width int) []string {
		notes := m.notes[w.ID]
		if len(notes) == 0 {
			return []string{styleMuted().Render("No notes yet")}
		}
		out := make([]string, 0, 4)
		for i, n := range notes {
			if i == 3 {
				out = append(out, styleMuted().Render(fmt.Sprintf("+%d more", len(notes)-3)))
				break
			}
			out = append(out, "• "+n)
		}
		return out
	},
	detail: func(m *appModel, w model.WidgetRecord, width int) string {
		notes := m.notes[w.ID]
		if len(notes) == 0 {
			return styleMuted().Render("No notes yet. Press a to add one.")
		}
		rows := make([]string, 0, len(notes))
		for i, n := range notes {
			rows = append(rows, cursorPrefix(i == m.detailIdx)+n)
		}
		preview := renderNotes(notes, width)
		return strings.Join(rows, "\n") + "\n\n" + styleMuted().Render("Preview") + "\n" + preview
	},
	count: func(m *appModel, w model.WidgetRecord) int { return len(m.notes[w.ID]) },
	handle: func(m *appModel, w model.WidgetRecord, msg tea.KeyMsg) (tea.Cmd, bool) {
		l := widgetdata.Notes(m.st, w.ID)
		notes := m.notes[w.ID]
		switch {
		case key.Matches(msg, m.keys.Add):
			return m.openInput(modalAddNote, "New note", ""), true
		case key.Matches(msg, m.keys.Edit):
			if m.detailIdx < len(notes) {
				return m.openInput(modalEditNote, "Edit note", notes[m.detailIdx]), true
			}
			return nil, true
		case key.Matches(msg, m.keys.Remove):
			if m.detailIdx < len(notes) {
				m.applyNotes(w.ID, func() ([]string, error) { return l.Remove(m.ctx, m.detailIdx) })
			}
			return nil, true
		case key.Matches(msg, m.keys.MoveUp), key.Matches(msg, m.keys.MoveDown):
			delta := 1
			if key.Matches(msg, m.keys.MoveUp) {
				delta = -1
			}
			if d, ok := moveRow(m, len(notes), delta); ok {
				m.applyNotes(w.ID, func() ([]string, error) { return l.Move(m.ctx, d) })
			}
			return nil, true
		}
		return nil, false
	},
	help: func(k keyMap) []key.Binding {
		return []key.Binding{k.Add, k.Edit, k.Remove, k.MoveUp, k.MoveDown, k.Back}
	},
}

var todoView = widgetView{
	card: func(m *appModel, w model.WidgetRecord, width int) []string {
		tasks := m.tasks[w.ID]
		if len(tasks) == 0 {
			return []string{styleMuted().Render("Nothing to do")}
		}
		out := []string{styleMuted().Render(fmt.Sprintf("%d of %d remaining", widgetdata.Remaining(tasks), len(tasks)))}
		for i, t := range tasks {
			if i == 3 {
				break
			}
			out = append(out, taskLine(t))
		}
		return out
	},
	detail: func(m *appModel, w model.WidgetRecord, width int) string {
		tasks := m.tasks[w.ID]
		if len(tasks) == 0 {
			return styleMuted().Render("Nothing to do. Press a to add a task.")
		}
		rows := make([]string, 0, len(tasks)+2)
		for i, t := range tasks {
			rows = append(rows, cursorPrefix(i == m.detailIdx)+taskLine(t))
		}
		rows = append(rows, "", styleMuted().Render(fmt.Sprintf("%d remaining", widgetdata.Remaining(tasks))))
		return strings.Join(rows, "\n")
	},
	count: func(m *appModel, w model.WidgetRecord) int { return len(m.tasks[w.ID]) },
	handle: func(m *appModel, w model.WidgetRecord, msg tea.KeyMsg) (tea.Cmd, bool) {
		l := widgetdata.Tasks(m.st, w.ID)
		tasks := m.tasks[w.ID]
		switch {
		case key.Matches(msg, m.keys.Add):
			return m.openInput(modalAddTask, "New task", ""), true
		case key.Matches(msg, m.keys.Edit):
			if m.detailIdx < len(tasks) {
				return m.openInput(modalEditTask, "Edit task", tasks[m.detailIdx].Text), true
			}
			return nil, true
		case key.Matches(msg, m.keys.Toggle):
			if m.detailIdx < len(tasks) {
				m.applyTasks(w.ID, func() ([]model.Task, error) { return widgetdata.ToggleTask(m.ctx, l, m.detailIdx) })
			}
			return nil, true
		case key.Matches(msg, m.keys.Remove):
			if m.detailIdx < len(tasks) {
				m.applyTasks(w.ID, func() ([]model.Task, error) { return l.Remove(m.ctx, m.detailIdx) })
			}
			return nil, true
		case key.Matches(msg, m.keys.MoveUp), key.Matches(msg, m.keys.MoveDown):
			delta := 1
			if key.Matches(msg, m.keys.MoveUp) {
				delta = -1
			}
			if d, ok := moveRow(m, len(tasks), delta); ok {
				m.applyTasks(w.ID, func() ([]model.Task, error) { return l.Move(m.ctx, d) })
			}
			return nil, true
		}
		return nil, false
	},
	help: func(k keyMap) []key.Binding {
		return []key.Binding{k.Add, k.Edit, k.Toggle, k.Remove, k.MoveUp, k.MoveDown, k.Back}
	},
}

func taskLine(t model.Task) string {
	if t.Completed {
		return styleMuted().Strikethrough(true).Render("[x] " + t.Text)
	}
	return "[ ] " + t.Text
}

var calculatorView = widgetView{
	card: func(m *appModel, w model.WidgetRecord, width int) []string {
		h := m.snap.CalculatorHistory
		if len(h) == 0 {
			return []string{styleMuted().Render("No calculations yet")}
		}
		out := make([]string, 0, 3)
		for i := len(h) - 1; i >= 0 && len(out) < 3; i-- {
			out = append(out, h[i].Expression+" = "+h[i].Result)
		}
		return out
	},
	detail: func(m *appModel, w model.WidgetRecord, width int) string {
		h := m.snap.CalculatorHistory
		if len(h) == 0 {
			return styleMuted().Render("No calculations yet. Press a to record one (e.g. 2+2 = 4).")
		}
		rows := make([]string, 0, len(h))
		for i := len(h) - 1; i >= 0; i-- {
			c := h[i]
			rows = append(rows, fmt.Sprintf("%s = %s  %s", c.Expression, c.Result,
				styleMuted().Render(c.Time().Local().Format("Jan 2 15:04"))))
		}
		return strings.Join(rows, "\n")
	},
	count: func(m *appModel, w model.WidgetRecord) int { return 0 },
	handle: func(m *appModel, w model.WidgetRecord, msg tea.KeyMsg) (tea.Cmd, bool) {
		switch {
		case key.Matches(msg, m.keys.Add):
			return m.openInput(modalAddCalc, "expression = result", ""), true
		case key.Matches(msg, m.keys.Clear):
			m.board.ClearCalculatorHistory()
			m.refresh()
			m.setStatus("History cleared")
			return clearStatusAfter(m.statusSeq), true
		}
		return nil, false
	},
	help: func(k keyMap) []key.Binding { return []key.Binding{k.Add, k.Clear, k.Back} },
}

var calendarView = widgetView{
	card: func(m *appModel, w model.WidgetRecord, width int) []string {
		now := m.now()
		out := []string{now.Format("Monday, Jan 2")}
		upcoming := 0
		today := now.Format("2006-01-02")
		for _, mk := range m.snap.CalendarMarks {
			if mk.Date >= today {
				upcoming++
			}
		}
		out = append(out, styleMuted().Render(fmt.Sprintf("%d marked, %d upcoming", len(m.snap.CalendarMarks), upcoming)))
		return out
	},
	detail: func(m *appModel, w model.WidgetRecord, width int) string {
		month := renderMonth(m.now(), m.snap.CalendarMarks)
		marks := m.snap.CalendarMarks
		if len(marks) == 0 {
			return month + "\n\n" + styleMuted().Render("No marks. Press a to add one (YYYY-MM-DD reason).")
		}
		rows := make([]string, 0, len(marks))
		for i, mk := range marks {
			line := mk.Date
			if mk.Reason != "" {
				line += "  " + mk.Reason
			}
			rows = append(rows, cursorPrefix(i == m.detailIdx)+line)
		}
		return month + "\n\n" + strings.Join(rows, "\n")
	},
	count: func(m *appModel, w model.WidgetRecord) int { return len(m.snap.CalendarMarks) },
	handle: func(m *appModel, w model.WidgetRecord, msg tea.KeyMsg) (tea.Cmd, bool) {
		marks := m.snap.CalendarMarks
		switch {
		case key.Matches(msg, m.keys.Add):
			return m.openInput(modalAddMark, "YYYY-MM-DD reason", m.now().Format("2006-01-02")+" "), true
		case key.Matches(msg, m.keys.Remove):
			if m.detailIdx < len(marks) {
				m.board.RemoveCalendarMark(marks[m.detailIdx].ID)
				m.refresh()
			}
			return nil, true
		case key.Matches(msg, m.keys.MoveUp), key.Matches(msg, m.keys.MoveDown):
			delta := 1
			if key.Matches(msg, m.keys.MoveUp) {
				delta = -1
			}
			if d, ok := moveRow(m, len(marks), delta); ok {
				m.board.MoveCalendarMark(d)
				m.refresh()
			}
			return nil, true
		}
		return nil, false
	},
	help: func(k keyMap) []key.Binding {
		return []key.Binding{k.Add, k.Remove, k.MoveUp, k.MoveDown, k.Back}
	},
}

// renderMonth draws the month containing now, Monday first, with marked days highlighted.
func renderMonth(now time.Time, marks []model.CalendarMark) string {
	marked := map[string]bool{}
	for _, mk := range marks {
		marked[mk.Date] = true
	}
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	offset := (int(first.Weekday()) + 6) % 7

	hl := lipgloss.NewStyle().Foreground(colorAccentFg).Background(colorAccent)
	today := lipgloss.NewStyle().Bold(true).Underline(true)

	var b strings.Builder
	b.WriteString(first.Format("January 2006") + "\n")
	b.WriteString(styleMuted().Render("Mo Tu We Th Fr Sa Su") + "\n")
	b.WriteString(strings.Repeat("   ", offset))
	col := offset
	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		cell := fmt.Sprintf("%2d", d.Day())
		switch {
		case marked[d.Format("2006-01-02")]:
			cell = hl.Render(cell)
		case d.Day() == now.Day():
			cell = today.Render(cell)
		}
		b.WriteString(cell)
		col++
		if col%7 == 0 {
			b.WriteString("\n")
		} else {
			b.WriteString(" ")
		}
	}
	return strings.TrimRight(b.String(), " \n")
}

var stopwatchView = widgetView{
	card: func(m *appModel, w model.WidgetRecord, width int) []string {
		sw := m.stopwatchFor(w.ID)
		state := "stopped"
		if sw.Running() {
			state = "running"
		}
		if n := len(m.laps[w.ID]); n > 0 {
			state += fmt.Sprintf(" · %d laps", n)
		}
		return []string{sw.View(), styleMuted().Render(state)}
	},
	detail: func(m *appModel, w model.WidgetRecord, width int) string {
		sw := m.stopwatchFor(w.ID)
		big := lipgloss.NewStyle().Bold(true).Padding(1, 2).Render(sw.View())
		laps := m.laps[w.ID]
		if len(laps) == 0 {
			return big
		}
		rows := make([]string, 0, len(laps))
		for i, d := range laps {
			rows = append(rows, fmt.Sprintf("Lap %-3d %s", len(laps)-i, d))
		}
		return big + "\n" + strings.Join(rows, "\n")
	},
	count: func(m *appModel, w model.WidgetRecord) int { return 0 },
	handle: func(m *appModel, w model.WidgetRecord, msg tea.KeyMsg) (tea.Cmd, bool) {
		sw := m.stopwatchFor(w.ID)
		switch {
		case key.Matches(msg, m.keys.Start):
			if sw.Running() {
				return sw.Stop(), true
			}
			return sw.Start(), true
		case key.Matches(msg, m.keys.Lap):
			// Newest lap first.
			m.laps[w.ID] = append([]time.Duration{sw.Elapsed()}, m.laps[w.ID]...)
			return nil, true
		case key.Matches(msg, m.keys.Reset):
			delete(m.laps, w.ID)
			return sw.Reset(), true
		}
		return nil, false
	},
	help: func(k keyMap) []key.Binding { return []key.Binding{k.Start, k.Lap, k.Reset, k.Back} },
}

// stopwatchFor returns the stopwatch for a widget, creating it on first use.
func (m *appModel) stopwatchFor(id string) stopwatch.Model {
	sw, ok := m.stopwatches[id]
	if !ok {
		sw = stopwatch.NewWithInterval(time.Second)
		m.stopwatches[id] = sw
	}
	return sw
}

var weatherView = widgetView{
	card: func(m *appModel, w model.WidgetRecord, width int) []string {
		city, _ := w.Props["city"].(string)
		if city == "" {
			return []string{styleMuted().Render("No city set")}
		}
		return []string{city}
	},
	detail: func(m *appModel, w model.WidgetRecord, width int) string {
		if len(w.Props) == 0 {
			return styleMuted().Render("No settings. Add props with: deskboard widgets add --type weather --prop city=Oslo")
		}
		keys := make([]string, 0, len(w.Props))
		for k := range w.Props {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		rows := make([]string, 0, len(keys))
		for _, k := range keys {
			rows = append(rows, fmt.Sprintf("%s: %v", k, w.Props[k]))
		}
		return strings.Join(rows, "\n")
	},
	count: func(m *appModel, w model.WidgetRecord) int { return 0 },
	help:  func(k keyMap) []key.Binding { return []key.Binding{k.Back} },
}
