package tui

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"deskboard-cli/internal/focus"
	"deskboard-cli/internal/model"
	"deskboard-cli/internal/reorder"
	"deskboard-cli/internal/settings"
	"deskboard-cli/internal/widgetdata"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/stopwatch"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

func (m appModel) Init() tea.Cmd { return waitForChange(m.changes) }

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.picker.SetSize(min(60, msg.Width-4), max(8, msg.Height-8))
		return m, nil

	case storeChangedMsg:
		m.reload()
		return m, waitForChange(m.changes)

	case writeFailedMsg:
		m.setError(fmt.Sprintf("Could not save %s: %v", msg.key, msg.err))
		return m, nil

	case statusClearMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
			m.statusIsErr = false
		}
		return m, nil

	case stopwatch.StartStopMsg, stopwatch.ResetMsg, stopwatch.TickMsg:
		return m, m.updateStopwatches(msg)

	case tea.KeyMsg:
		if m.modal != modalNone {
			return m.updateModal(msg)
		}
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		if m.view == viewDetail {
			return m.updateDetail(msg)
		}
		if m.grabbing {
			return m.updateGrab(msg)
		}
		return m.updateDashboard(msg)
	}
	return m, nil
}

func (m *appModel) updateStopwatches(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for id, sw := range m.stopwatches {
		next, cmd := sw.Update(msg)
		m.stopwatches[id] = next
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// reload re-reads the store after an external write. Our own writes come back as the
// same value and are ignored.
func (m *appModel) reload() {
	next := settings.Load(m.ctx, m.st)
	if !reflect.DeepEqual(settings.Clone(next), m.board.Snapshot()) {
		m.board.ReplaceExternal(next)
		m.refresh()
		m.setStatus("Reloaded")
		m.log.Info("dashboard reloaded from store")
	}
	m.loadWidgetData()
}

func keyToFocus(k keyMap, msg tea.KeyMsg) focus.Key {
	switch {
	case key.Matches(msg, k.Left):
		return focus.KeyLeft
	case key.Matches(msg, k.Right):
		return focus.KeyRight
	case key.Matches(msg, k.Up):
		return focus.KeyUp
	case key.Matches(msg, k.Down):
		return focus.KeyDown
	case key.Matches(msg, k.Open):
		return focus.KeyEnter
	}
	return focus.KeyNone
}

func (m appModel) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if fk := keyToFocus(m.keys, msg); fk != focus.KeyNone {
		res := m.focus.Handle(fk)
		if res.Activate {
			if w, ok := m.focusedWidget(); ok {
				m.view = viewDetail
				m.openID = w.ID
				m.detailIdx = 0
				m.loadWidgetData()
			}
		}
		return m, nil
	}

	w, hasFocus := m.focusedWidget()
	switch {
	case key.Matches(msg, m.keys.Theme):
		m.board.ToggleTheme()
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Layout):
		m.board.ToggleLayout()
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Add):
		m.modal = modalPicker
		m.picker.ResetFilter()
		m.picker.Select(0)
		return m, nil

	case key.Matches(msg, m.keys.Remove):
		if hasFocus {
			m.modal = modalConfirmRemove
		}
		return m, nil

	case key.Matches(msg, m.keys.Title):
		if hasFocus {
			cmd := m.openInput(modalTitle, "Title", m.title(w))
			return m, cmd
		}
		return m, nil

	case key.Matches(msg, m.keys.Color):
		if hasFocus {
			cmd := m.openInput(modalColor, "Background (#rrggbb, ANSI 0-255, empty to clear)", m.snap.WidgetStyles[w.ID][model.StyleBackgroundColor])
			return m, cmd
		}
		return m, nil

	case key.Matches(msg, m.keys.Grab):
		if hasFocus && len(m.snap.Widgets) > 1 {
			m.grabbing = true
			m.grabFrom = m.focus.Index()
			m.grabTo = m.grabFrom
			m.setStatus("Moving " + m.title(w) + ": arrows to place, enter to drop, esc to cancel")
		}
		return m, nil

	case key.Matches(msg, m.keys.Reload):
		m.reload()
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}
	return m, nil
}

// updateGrab moves the preview slot. Nothing is written until the drop.
func (m appModel) updateGrab(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.snap.Widgets)
	step := 0
	switch {
	case key.Matches(msg, m.keys.Back):
		m.grabbing = false
		m.setStatus("Move cancelled")
		return m, clearStatusAfter(m.statusSeq)
	case key.Matches(msg, m.keys.Open):
		m.grabbing = false
		m.board.MoveWidget(reorder.To(m.grabFrom, m.grabTo))
		m.refresh()
		m.focus.Focus(m.grabTo)
		m.setStatus("Moved")
		return m, clearStatusAfter(m.statusSeq)
	case key.Matches(msg, m.keys.Left), key.Matches(msg, m.keys.Up):
		step = -1
	case key.Matches(msg, m.keys.Right), key.Matches(msg, m.keys.Down):
		step = 1
	}
	if step != 0 && n > 0 {
		m.grabTo = (m.grabTo + step + n) % n
	}
	return m, nil
}

func (m appModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	w, ok := m.openWidget()
	if !ok {
		m.view = viewDashboard
		return m, nil
	}
	if key.Matches(msg, m.keys.Back) {
		m.view = viewDashboard
		m.openID = ""
		return m, nil
	}

	v, known := m.views.Resolve(w.Type)
	if !known {
		return m, nil
	}
	if v.handle != nil {
		if cmd, handled := v.handle(&m, w, msg); handled {
			return m, cmd
		}
	}

	n := 0
	if v.count != nil {
		n = v.count(&m, w)
	}
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.detailIdx > 0 {
			m.detailIdx--
		}
	case key.Matches(msg, m.keys.Down):
		if m.detailIdx < n-1 {
			m.detailIdx++
		}
	}
	return m, nil
}

func (m *appModel) openInput(kind modalKind, placeholder, value string) tea.Cmd {
	m.modal = kind
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *appModel) closeModal() {
	m.modal = modalNone
	m.input.Blur()
	m.input.SetValue("")
}

func (m appModel) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.modal {
	case modalPicker:
		return m.updatePicker(msg)
	case modalConfirmRemove:
		switch msg.String() {
		case "y", "enter":
			if w, ok := m.focusedWidget(); ok {
				m.board.RemoveWidget(w.ID)
				m.refresh()
				m.setStatus("Removed " + m.title(w))
			}
			m.closeModal()
			return m, clearStatusAfter(m.statusSeq)
		case "n", "esc", "ctrl+g":
			m.closeModal()
		}
		return m, nil
	}

	switch msg.String() {
	case "esc", "ctrl+g":
		m.closeModal()
		return m, nil
	case "enter":
		cmd := m.submitInput(strings.TrimSpace(m.input.Value()))
		m.closeModal()
		return m, cmd
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m appModel) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	filtering := m.picker.FilterState() == list.Filtering
	if !filtering {
		switch msg.String() {
		case "esc", "ctrl+g":
			m.closeModal()
			return m, nil
		case "enter":
			if it, ok := m.picker.SelectedItem().(kindItem); ok {
				id := m.board.NewWidgetID()
				m.board.AddWidget(model.WidgetRecord{ID: id, Type: it.info.Kind, Props: map[string]any{}})
				m.refresh()
				m.focus.Focus(len(m.snap.Widgets) - 1)
				m.loadWidgetData()
				m.setStatus("Added " + it.info.DefaultTitle)
				m.log.Info("widget added", zap.String("id", id), zap.String("type", it.info.Kind))
			}
			m.closeModal()
			return m, clearStatusAfter(m.statusSeq)
		}
	}
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

// submitInput applies the text typed into an input modal.
func (m *appModel) submitInput(v string) tea.Cmd {
	switch m.modal {
	case modalTitle:
		if w, ok := m.focusedWidget(); ok {
			m.board.UpdateWidgetTitle(w.ID, v)
			m.refresh()
		}
	case modalColor:
		if w, ok := m.focusedWidget(); ok {
			if v != "" {
				if _, valid := widgetBackground(model.WidgetStyle{model.StyleBackgroundColor: v}); !valid {
					m.setError(fmt.Sprintf("Not a color: %q", v))
					return nil
				}
			}
			m.board.UpdateWidgetStyle(w.ID, model.WidgetStyle{model.StyleBackgroundColor: v})
			m.refresh()
		}
	case modalAddNote:
		l := widgetdata.Notes(m.st, m.openID)
		m.applyNotes(m.openID, func() ([]string, error) { return widgetdata.AddNote(m.ctx, l, v) })
		m.detailIdx = max(0, len(m.notes[m.openID])-1)
	case modalEditNote:
		l := widgetdata.Notes(m.st, m.openID)
		m.applyNotes(m.openID, func() ([]string, error) { return widgetdata.EditNote(m.ctx, l, m.detailIdx, v) })
	case modalAddTask:
		l := widgetdata.Tasks(m.st, m.openID)
		m.applyTasks(m.openID, func() ([]model.Task, error) { return widgetdata.AddTask(m.ctx, l, v) })
		m.detailIdx = max(0, len(m.tasks[m.openID])-1)
	case modalEditTask:
		l := widgetdata.Tasks(m.st, m.openID)
		m.applyTasks(m.openID, func() ([]model.Task, error) { return widgetdata.EditTask(m.ctx, l, m.detailIdx, v) })
	case modalAddCalc:
		expr, result, ok := strings.Cut(v, "=")
		if !ok || strings.TrimSpace(expr) == "" {
			m.setError("Expected: expression = result")
			return nil
		}
		m.board.AddCalculation(strings.TrimSpace(expr), strings.TrimSpace(result))
		m.refresh()
	case modalAddMark:
		date, reason, _ := strings.Cut(v, " ")
		if _, err := time.Parse("2006-01-02", date); err != nil {
			m.setError(fmt.Sprintf("Not a date (YYYY-MM-DD): %q", date))
			return nil
		}
		m.board.AddCalendarMark(model.CalendarMark{Date: date, Reason: strings.TrimSpace(reason)})
		m.refresh()
		m.detailIdx = len(m.snap.CalendarMarks) - 1
	}
	return nil
}

func (m *appModel) applyNotes(id string, fn func() ([]string, error)) {
	out, err := fn()
	if err != nil {
		m.setError(err.Error())
		return
	}
	m.notes[id] = out
	m.clampDetail(len(out))
}

func (m *appModel) applyTasks(id string, fn func() ([]model.Task, error)) {
	out, err := fn()
	if err != nil {
		m.setError(err.Error())
		return
	}
	m.tasks[id] = out
	m.clampDetail(len(out))
}

func (m *appModel) clampDetail(n int) {
	if m.detailIdx >= n {
		m.detailIdx = n - 1
	}
	if m.detailIdx < 0 {
		m.detailIdx = 0
	}
}
