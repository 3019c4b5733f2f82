// Package settings holds the dashboard aggregate and its mutation API.
//
// Transitions are pure functions from one model.Settings value to the next. They never
// write through slices or maps shared with the input, so a value handed to a reader
// stays stable after later mutations.
//
// Input is not validated. An empty title is stored as-is, adding a widget whose id
// already exists is silently ignored, and removing an unknown id does nothing. Callers
// that want stricter rules check before calling.
package settings

import (
	"maps"
	"slices"
	"time"

	"deskboard-cli/internal/model"
	"deskboard-cli/internal/reorder"
)

// StorageKey is the durable key holding the whole aggregate.
const StorageKey = "dashboardSettings"

// Default returns the aggregate used when nothing (valid) is stored.
func Default() model.Settings {
	return model.Settings{
		Theme:             model.ThemeLight,
		LayoutMode:        model.LayoutGrid,
		Widgets:           []model.WidgetRecord{},
		WidgetStyles:      map[string]model.WidgetStyle{},
		WidgetTitles:      map[string]string{},
		CalculatorHistory: []model.Calculation{},
		CalendarMarks:     []model.CalendarMark{},
	}
}

// Normalize fills nil collections and unknown enum values with defaults.
func Normalize(s model.Settings) model.Settings {
	if s.Theme != model.ThemeLight && s.Theme != model.ThemeDark {
		s.Theme = model.ThemeLight
	}
	if s.LayoutMode != model.LayoutGrid && s.LayoutMode != model.LayoutList {
		s.LayoutMode = model.LayoutGrid
	}
	s.Widgets = UniqueWidgets(s.Widgets)
	if s.WidgetStyles == nil {
		s.WidgetStyles = map[string]model.WidgetStyle{}
	}
	if s.WidgetTitles == nil {
		s.WidgetTitles = map[string]string{}
	}
	if s.CalculatorHistory == nil {
		s.CalculatorHistory = []model.Calculation{}
	}
	if s.CalendarMarks == nil {
		s.CalendarMarks = []model.CalendarMark{}
	}
	return s
}

// Clone returns a deep copy. Widget props are copied one level deep; nested values
// inside props are opaque and shared.
func Clone(s model.Settings) model.Settings {
	out := s
	out.Widgets = cloneWidgets(s.Widgets)
	out.WidgetStyles = make(map[string]model.WidgetStyle, len(s.WidgetStyles))
	for id, st := range s.WidgetStyles {
		out.WidgetStyles[id] = maps.Clone(st)
	}
	out.WidgetTitles = maps.Clone(s.WidgetTitles)
	if out.WidgetTitles == nil {
		out.WidgetTitles = map[string]string{}
	}
	out.CalculatorHistory = slices.Clone(s.CalculatorHistory)
	out.CalendarMarks = slices.Clone(s.CalendarMarks)
	out.Extra = maps.Clone(s.Extra)
	return Normalize(out)
}

func cloneWidgets(ws []model.WidgetRecord) []model.WidgetRecord {
	out := make([]model.WidgetRecord, len(ws))
	for i, w := range ws {
		out[i] = w
		out[i].Props = maps.Clone(w.Props)
	}
	return out
}

func ToggleTheme(s model.Settings) model.Settings {
	if s.Theme == model.ThemeDark {
		s.Theme = model.ThemeLight
	} else {
		s.Theme = model.ThemeDark
	}
	return s
}

func SetTheme(s model.Settings, t model.Theme) model.Settings {
	s.Theme = t
	return Normalize(s)
}

func ToggleLayout(s model.Settings) model.Settings {
	if s.LayoutMode == model.LayoutList {
		s.LayoutMode = model.LayoutGrid
	} else {
		s.LayoutMode = model.LayoutList
	}
	return s
}

func SetLayout(s model.Settings, m model.LayoutMode) model.Settings {
	s.LayoutMode = m
	return Normalize(s)
}

// UpdateWidgetStyle merges partial into the style for id, creating it when absent.
// Keys not named in partial are kept.
func UpdateWidgetStyle(s model.Settings, id string, partial model.WidgetStyle) model.Settings {
	styles := make(map[string]model.WidgetStyle, len(s.WidgetStyles)+1)
	for k, v := range s.WidgetStyles {
		styles[k] = v
	}
	merged := maps.Clone(styles[id])
	if merged == nil {
		merged = model.WidgetStyle{}
	}
	maps.Copy(merged, partial)
	styles[id] = merged
	s.WidgetStyles = styles
	return s
}

// UpdateWidgetTitle sets the display title override for id. Empty titles are stored.
func UpdateWidgetTitle(s model.Settings, id, title string) model.Settings {
	titles := maps.Clone(s.WidgetTitles)
	if titles == nil {
		titles = map[string]string{}
	}
	titles[id] = title
	s.WidgetTitles = titles
	return s
}

// AddWidget appends rec unless a widget with the same id already exists.
func AddWidget(s model.Settings, rec model.WidgetRecord) model.Settings {
	if s.WidgetIndex(rec.ID) >= 0 {
		return s
	}
	if rec.Props == nil {
		rec.Props = map[string]any{}
	}
	ws := make([]model.WidgetRecord, 0, len(s.Widgets)+1)
	ws = append(ws, s.Widgets...)
	s.Widgets = append(ws, rec)
	return s
}

// RemoveWidget drops every widget with id. Styles and titles for id are kept.
func RemoveWidget(s model.Settings, id string) model.Settings {
	ws := make([]model.WidgetRecord, 0, len(s.Widgets))
	for _, w := range s.Widgets {
		if w.ID != id {
			ws = append(ws, w)
		}
	}
	s.Widgets = ws
	return s
}

// ReorderWidgets replaces the widget order wholesale. Only the first record for each
// id is kept, as with AddWidget.
func ReorderWidgets(s model.Settings, newOrder []model.WidgetRecord) model.Settings {
	s.Widgets = UniqueWidgets(newOrder)
	return s
}

// UniqueWidgets returns a copy of ws without records whose id already appeared.
func UniqueWidgets(ws []model.WidgetRecord) []model.WidgetRecord {
	out := make([]model.WidgetRecord, 0, len(ws))
	seen := make(map[string]struct{}, len(ws))
	for _, w := range ws {
		if _, dup := seen[w.ID]; dup {
			continue
		}
		seen[w.ID] = struct{}{}
		out = append(out, w)
	}
	return out
}

// DuplicateWidgetIDs lists ids that occur more than once in ws, in first-seen order.
func DuplicateWidgetIDs(ws []model.WidgetRecord) []string {
	counts := make(map[string]int, len(ws))
	var dups []string
	for _, w := range ws {
		counts[w.ID]++
		if counts[w.ID] == 2 {
			dups = append(dups, w.ID)
		}
	}
	return dups
}

// MoveWidget applies a finished drag. A cancelled or out-of-range drag leaves the order as is.
func MoveWidget(s model.Settings, d reorder.Drag) model.Settings {
	s.Widgets = reorder.Apply(s.Widgets, d)
	return s
}

// AddCalculation appends a history entry stamped with now.
func AddCalculation(s model.Settings, expression, result string, now time.Time) model.Settings {
	h := make([]model.Calculation, 0, len(s.CalculatorHistory)+1)
	h = append(h, s.CalculatorHistory...)
	s.CalculatorHistory = append(h, model.Calculation{
		Expression: expression,
		Result:     result,
		Timestamp:  now.UnixMilli(),
	})
	return s
}

func ClearCalculatorHistory(s model.Settings) model.Settings {
	s.CalculatorHistory = []model.Calculation{}
	return s
}

func AddCalendarMark(s model.Settings, m model.CalendarMark) model.Settings {
	ms := make([]model.CalendarMark, 0, len(s.CalendarMarks)+1)
	ms = append(ms, s.CalendarMarks...)
	s.CalendarMarks = append(ms, m)
	return s
}

func RemoveCalendarMark(s model.Settings, id string) model.Settings {
	ms := make([]model.CalendarMark, 0, len(s.CalendarMarks))
	for _, m := range s.CalendarMarks {
		if m.ID != id {
			ms = append(ms, m)
		}
	}
	s.CalendarMarks = ms
	return s
}

// ReorderCalendarMarks replaces the mark list with newOrder.
func ReorderCalendarMarks(s model.Settings, newOrder []model.CalendarMark) model.Settings {
	s.CalendarMarks = slices.Clone(newOrder)
	if s.CalendarMarks == nil {
		s.CalendarMarks = []model.CalendarMark{}
	}
	return s
}

func MoveCalendarMark(s model.Settings, d reorder.Drag) model.Settings {
	return ReorderCalendarMarks(s, reorder.Apply(s.CalendarMarks, d))
}
