// Package focus implements roving keyboard focus over the dashboard's widgets.
//
// Exactly one widget index is focused at a time. Arrow keys move it with wrap-around;
// which arrows apply depends on the layout mode. The machine is pure state: moving
// input focus in the UI happens through the OnFocus callback.
package focus

import "deskboard-cli/internal/model"

type Key int

const (
	KeyNone Key = iota
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyEnter
)

func (k Key) String() string {
	switch k {
	case KeyLeft:
		return "left"
	case KeyRight:
		return "right"
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeyEnter:
		return "enter"
	default:
		return "none"
	}
}

// Result describes what a key did.
type Result struct {
	Index int
	// Moved is true when Index differs from the index before the key.
	Moved bool
	// Activate asks the presentation layer to open the focused widget.
	Activate bool
}

type Machine struct {
	index int
	count int
	mode  model.LayoutMode

	// OnFocus is called with the new index whenever it changes.
	OnFocus func(index int)
}

func New(count int, mode model.LayoutMode) *Machine {
	if count < 0 {
		count = 0
	}
	return &Machine{count: count, mode: mode}
}

func (m *Machine) Index() int { return m.index }

func (m *Machine) Count() int { return m.count }

func (m *Machine) Mode() model.LayoutMode { return m.mode }

// Sync updates the widget count and layout mode. The index resets to 0 when the mode
// changes, when the count changes, or when it would fall outside [0, count).
func (m *Machine) Sync(count int, mode model.LayoutMode) {
	if count < 0 {
		count = 0
	}
	reset := mode != m.mode || count != m.count || m.index >= count
	m.count = count
	m.mode = mode
	if reset {
		m.set(0)
	}
}

// Focus moves to index directly (e.g. after a mouse click). Out-of-range values are ignored.
func (m *Machine) Focus(index int) {
	if index < 0 || index >= m.count {
		return
	}
	m.set(index)
}

// Handle applies a key. With no widgets every key is a no-op.
func (m *Machine) Handle(k Key) Result {
	before := m.index
	if m.count == 0 {
		return Result{Index: m.index}
	}
	if k == KeyEnter {
		return Result{Index: m.index, Activate: true}
	}

	switch m.direction(k) {
	case 1:
		m.set((m.index + 1) % m.count)
	case -1:
		m.set((m.index - 1 + m.count) % m.count)
	}
	return Result{Index: m.index, Moved: m.index != before}
}

func (m *Machine) direction(k Key) int {
	switch m.mode {
	case model.LayoutList:
		switch k {
		case KeyDown:
			return 1
		case KeyUp:
			return -1
		}
	default:
		switch k {
		case KeyRight:
			return 1
		case KeyLeft:
			return -1
		}
	}
	return 0
}

func (m *Machine) set(i int) {
	if i == m.index {
		return
	}
	m.index = i
	if m.OnFocus != nil {
		m.OnFocus(i)
	}
}
