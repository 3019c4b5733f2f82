package model

import (
	"encoding/json"
	"time"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

type LayoutMode string

const (
	LayoutGrid LayoutMode = "grid"
	LayoutList LayoutMode = "list"
)

// WidgetRecord is the boundary shape exchanged with the registry and presentation.
// Type is not validated against the registry: unknown kinds are kept and rendered
// with a fallback so newer records survive older binaries.
type WidgetRecord struct {
	ID    string         `json:"id"`
	Type  string         `json:"type"`
	Props map[string]any `json:"props"`
}

// WidgetStyle holds per-widget overrides. Only "backgroundColor" is rendered today.
type WidgetStyle map[string]string

const StyleBackgroundColor = "backgroundColor"

type Calculation struct {
	Expression string `json:"expression"`
	Result     string `json:"result"`
	// Timestamp is unix milliseconds.
	Timestamp int64 `json:"timestamp"`
}

func (c Calculation) Time() time.Time {
	return time.UnixMilli(c.Timestamp).UTC()
}

type CalendarMark struct {
	ID           string `json:"id"`
	Date         string `json:"date"`
	ISOTimestamp string `json:"isoTimestamp"`
	Reason       string `json:"reason"`
}

// Task is one row of a to-do widget.
type Task struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Settings is the dashboard aggregate. It is treated as a value: transitions in
// internal/settings return a new Settings and never write through shared slices or maps.
type Settings struct {
	Theme             Theme                  `json:"theme"`
	LayoutMode        LayoutMode             `json:"layoutMode"`
	Widgets           []WidgetRecord         `json:"widgets"`
	WidgetStyles      map[string]WidgetStyle `json:"widgetStyles"`
	WidgetTitles      map[string]string      `json:"widgetTitles"`
	CalculatorHistory []Calculation          `json:"calculatorHistory"`
	CalendarMarks     []CalendarMark         `json:"calendarMarks"`

	// Extra keeps top-level fields this version does not know about.
	Extra map[string]json.RawMessage `json:"-"`
}

var knownSettingsFields = map[string]bool{
	"theme":             true,
	"layoutMode":        true,
	"widgets":           true,
	"widgetStyles":      true,
	"widgetTitles":      true,
	"calculatorHistory": true,
	"calendarMarks":     true,
}

// settingsWire avoids recursion into the custom (un)marshalers.
type settingsWire Settings

func (s Settings) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal(settingsWire(s))
	if err != nil {
		return nil, err
	}
	if len(s.Extra) == 0 {
		return b, nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	for k, v := range s.Extra {
		if knownSettingsFields[k] {
			continue
		}
		m[k] = v
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes onto the receiver, so fields missing from the input keep
// whatever value the receiver already had (callers seed it with defaults).
func (s *Settings) UnmarshalJSON(b []byte) error {
	w := settingsWire(*s)
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	var extra map[string]json.RawMessage
	for k, v := range m {
		if knownSettingsFields[k] {
			continue
		}
		if extra == nil {
			extra = map[string]json.RawMessage{}
		}
		extra[k] = v
	}
	*s = Settings(w)
	s.Extra = extra
	return nil
}

// WidgetIndex returns the position of the widget with id, or -1.
func (s Settings) WidgetIndex(id string) int {
	for i := range s.Widgets {
		if s.Widgets[i].ID == id {
			return i
		}
	}
	return -1
}

func (s Settings) FindWidget(id string) (WidgetRecord, bool) {
	i := s.WidgetIndex(id)
	if i < 0 {
		return WidgetRecord{}, false
	}
	return s.Widgets[i], true
}
