package settings

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"deskboard-cli/internal/model"
	"deskboard-cli/internal/reorder"
	"deskboard-cli/internal/store"
)

// Change is delivered to subscribers after every transition.
type Change struct {
	Settings model.Settings
	// Op names the transition, e.g. "toggle-theme".
	Op string
	// External is set when the value came from outside this process (a reload)
	// rather than from a local mutation.
	External bool
}

// Container owns the current aggregate. All mutations go through it; readers get copies.
// Mutators return nothing: persistence failures surface through the store's error
// handler, never to the caller.
type Container struct {
	mu        sync.Mutex
	current   model.Settings
	listeners []func(Change)

	now   func() time.Time
	newID func() string
	log   *zap.Logger
}

type ContainerOption func(*Container)

// WithClock injects the time source used to stamp calculator history.
func WithClock(now func() time.Time) ContainerOption {
	return func(c *Container) { c.now = now }
}

// WithIDs injects the generator used for calendar mark ids.
func WithIDs(gen func() string) ContainerOption {
	return func(c *Container) { c.newID = gen }
}

func WithContainerLogger(l *zap.Logger) ContainerOption {
	return func(c *Container) { c.log = l }
}

func NewContainer(initial model.Settings, opts ...ContainerOption) *Container {
	c := &Container{
		current: Clone(initial),
		now:     time.Now,
		newID:   uuid.NewString,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns a deep copy of the current aggregate.
func (c *Container) Snapshot() model.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Clone(c.current)
}

// Subscribe registers fn for every later change. The returned func unsubscribes.
// Listeners run synchronously on the mutating goroutine, after the lock is released.
func (c *Container) Subscribe(fn func(Change)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
	idx := len(c.listeners) - 1
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if idx < len(c.listeners) {
			c.listeners[idx] = nil
		}
	}
}

// Persist subscribes a listener that saves every local change to st under StorageKey.
// External changes are not written back.
func (c *Container) Persist(st *store.Store) (unsubscribe func()) {
	return c.Subscribe(func(ch Change) {
		if ch.External {
			return
		}
		if err := st.Save(StorageKey, ch.Settings); err != nil {
			c.log.Warn("settings save failed", zap.String("op", ch.Op), zap.Error(err))
		}
	})
}

func (c *Container) apply(op string, external bool, fn func(model.Settings) model.Settings) {
	c.mu.Lock()
	next := fn(c.current)
	c.current = next
	listeners := make([]func(Change), 0, len(c.listeners))
	for _, l := range c.listeners {
		if l != nil {
			listeners = append(listeners, l)
		}
	}
	c.mu.Unlock()

	c.log.Debug("settings change", zap.String("op", op), zap.Bool("external", external))
	for _, l := range listeners {
		l(Change{Settings: Clone(next), Op: op, External: external})
	}
}

// ReplaceExternal swaps in a value loaded from outside (file watcher, import).
// Repeated widget ids keep their first record.
func (c *Container) ReplaceExternal(s model.Settings) {
	s = Clone(s)
	s.Widgets = UniqueWidgets(s.Widgets)
	c.apply("reload", true, func(model.Settings) model.Settings { return s })
}

// Replace swaps in s as a local change, so it is persisted. Repeated widget ids keep
// their first record.
func (c *Container) Replace(s model.Settings) {
	s = Clone(s)
	s.Widgets = UniqueWidgets(s.Widgets)
	c.apply("replace", false, func(model.Settings) model.Settings { return s })
}

func (c *Container) ToggleTheme() { c.apply("toggle-theme", false, ToggleTheme) }

func (c *Container) SetTheme(t model.Theme) {
	c.apply("set-theme", false, func(s model.Settings) model.Settings { return SetTheme(s, t) })
}

func (c *Container) ToggleLayout() { c.apply("toggle-layout", false, ToggleLayout) }

func (c *Container) SetLayout(m model.LayoutMode) {
	c.apply("set-layout", false, func(s model.Settings) model.Settings { return SetLayout(s, m) })
}

func (c *Container) UpdateWidgetStyle(id string, partial model.WidgetStyle) {
	c.apply("update-widget-style", false, func(s model.Settings) model.Settings {
		return UpdateWidgetStyle(s, id, partial)
	})
}

func (c *Container) UpdateWidgetTitle(id, title string) {
	c.apply("update-widget-title", false, func(s model.Settings) model.Settings {
		return UpdateWidgetTitle(s, id, title)
	})
}

func (c *Container) AddWidget(rec model.WidgetRecord) {
	c.apply("add-widget", false, func(s model.Settings) model.Settings { return AddWidget(s, rec) })
}

func (c *Container) RemoveWidget(id string) {
	c.apply("remove-widget", false, func(s model.Settings) model.Settings { return RemoveWidget(s, id) })
}

func (c *Container) ReorderWidgets(newOrder []model.WidgetRecord) {
	c.apply("reorder-widgets", false, func(s model.Settings) model.Settings {
		return ReorderWidgets(s, newOrder)
	})
}

func (c *Container) MoveWidget(d reorder.Drag) {
	c.apply("move-widget", false, func(s model.Settings) model.Settings { return MoveWidget(s, d) })
}

func (c *Container) AddCalculation(expression, result string) {
	now := c.now()
	c.apply("add-calculation", false, func(s model.Settings) model.Settings {
		return AddCalculation(s, expression, result, now)
	})
}

func (c *Container) ClearCalculatorHistory() {
	c.apply("clear-calculator-history", false, ClearCalculatorHistory)
}

// NewCalendarMark builds a mark for date with a fresh id and the current time.
// It is not stored until passed to AddCalendarMark.
func (c *Container) NewCalendarMark(date, reason string) model.CalendarMark {
	return c.fillMark(model.CalendarMark{Date: date, Reason: reason})
}

func (c *Container) fillMark(m model.CalendarMark) model.CalendarMark {
	if m.ID == "" {
		m.ID = c.newID()
	}
	if m.ISOTimestamp == "" {
		m.ISOTimestamp = c.now().UTC().Format(time.RFC3339Nano)
	}
	return m
}

// AddCalendarMark stores m. A blank id is filled from the id generator and a blank
// ISO timestamp from the clock.
func (c *Container) AddCalendarMark(m model.CalendarMark) {
	m = c.fillMark(m)
	c.apply("add-calendar-mark", false, func(s model.Settings) model.Settings {
		return AddCalendarMark(s, m)
	})
}

func (c *Container) RemoveCalendarMark(id string) {
	c.apply("remove-calendar-mark", false, func(s model.Settings) model.Settings {
		return RemoveCalendarMark(s, id)
	})
}

func (c *Container) ReorderCalendarMarks(newOrder []model.CalendarMark) {
	c.apply("reorder-calendar-marks", false, func(s model.Settings) model.Settings {
		return ReorderCalendarMarks(s, newOrder)
	})
}

func (c *Container) MoveCalendarMark(d reorder.Drag) {
	c.apply("move-calendar-mark", false, func(s model.Settings) model.Settings {
		return MoveCalendarMark(s, d)
	})
}

// NewWidgetID returns a fresh widget id in the form the dashboard uses.
func (c *Container) NewWidgetID() string {
	return "widget-" + c.newID()
}

// Load reads the aggregate from st, merging stored fields over Default. A missing or
// unreadable record yields Default; the store logs the reason.
func Load(ctx context.Context, st *store.Store) model.Settings {
	s := Default()
	if !st.LoadInto(ctx, StorageKey, &s) {
		return Default()
	}
	return Normalize(s)
}
