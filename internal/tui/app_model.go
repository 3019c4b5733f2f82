package tui

import (
	"context"
	"time"

	"deskboard-cli/internal/focus"
	"deskboard-cli/internal/logging"
	"deskboard-cli/internal/model"
	"deskboard-cli/internal/registry"
	"deskboard-cli/internal/reorder"
	"deskboard-cli/internal/settings"
	"deskboard-cli/internal/store"
	"deskboard-cli/internal/widgetdata"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/stopwatch"
	"github.com/charmbracelet/bubbles/textinput"
	"go.uber.org/zap"
)

type appModel struct {
	ctx   context.Context
	st    *store.Store
	log   *zap.Logger
	board *settings.Container
	kinds *registry.Registry[registry.Info]
	views *registry.Registry[widgetView]

	// snap is the read model; it is refreshed after every mutation or reload.
	snap  model.Settings
	focus *focus.Machine

	// Per-widget list data, keyed by widget id.
	notes map[string][]string
	tasks map[string][]model.Task

	stopwatches map[string]stopwatch.Model
	// laps holds each stopwatch's recorded lap times, newest first. Not persisted.
	laps map[string][]time.Duration

	keys keyMap
	help help.Model

	width  int
	height int

	view      view
	openID    string
	detailIdx int

	modal  modalKind
	input  textinput.Model
	picker list.Model

	// Grab mode previews a move of widget grabFrom to grabTo; esc drops the preview.
	grabbing bool
	grabFrom int
	grabTo   int

	status      string
	statusIsErr bool
	statusSeq   int

	changes <-chan struct{}
	now     func() time.Time
}

func newAppModel(opts Options) appModel {
	log := logging.OrNop(opts.Logger)
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	kinds := opts.Kinds
	if kinds == nil {
		kinds = registry.Builtin()
	}

	ctx := context.Background()
	board := settings.NewContainer(settings.Load(ctx, opts.Store),
		settings.WithClock(now),
		settings.WithContainerLogger(log),
	)
	board.Persist(opts.Store)

	m := appModel{
		ctx:         ctx,
		st:          opts.Store,
		log:         log,
		board:       board,
		kinds:       kinds,
		views:       builtinViews(),
		notes:       map[string][]string{},
		tasks:       map[string][]model.Task{},
		stopwatches: map[string]stopwatch.Model{},
		laps:        map[string][]time.Duration{},
		keys:        defaultKeyMap(),
		help:        help.New(),
		input:       newInput(),
		picker:      newPicker(kinds),
		now:         now,
	}
	m.snap = board.Snapshot()
	m.focus = focus.New(len(m.snap.Widgets), m.snap.LayoutMode)
	m.focus.OnFocus = func(i int) {
		log.Debug("focus", zap.Int("index", i))
	}
	applyDashboardTheme(m.snap.Theme)
	m.loadWidgetData()
	return m
}

func newInput() textinput.Model {
	ti := textinput.New()
	ti.Prompt = "› "
	ti.CharLimit = 500
	return ti
}

func newPicker(kinds *registry.Registry[registry.Info]) list.Model {
	items := make([]list.Item, 0)
	for _, k := range kinds.Kinds() {
		if info, ok := kinds.Resolve(k); ok {
			items = append(items, kindItem{info: info})
		}
	}
	l := list.New(items, list.NewDefaultDelegate(), 40, 16)
	l.Title = "Add widget"
	l.SetShowStatusBar(false)
	return l
}

// refresh re-reads the read model after a mutation and resyncs focus.
func (m *appModel) refresh() {
	m.snap = m.board.Snapshot()
	m.focus.Sync(len(m.snap.Widgets), m.snap.LayoutMode)
	applyDashboardTheme(m.snap.Theme)
	if m.view == viewDetail {
		if _, ok := m.snap.FindWidget(m.openID); !ok {
			m.view = viewDashboard
			m.openID = ""
		}
	}
}

// loadWidgetData reads notes and tasks for every widget that has them.
func (m *appModel) loadWidgetData() {
	m.notes = map[string][]string{}
	m.tasks = map[string][]model.Task{}
	for _, w := range m.snap.Widgets {
		switch w.Type {
		case registry.KindNotes:
			m.notes[w.ID] = widgetdata.Notes(m.st, w.ID).Items(m.ctx)
		case registry.KindTodo:
			m.tasks[w.ID] = widgetdata.Tasks(m.st, w.ID).Items(m.ctx)
		}
	}
}

func (m *appModel) focusedWidget() (model.WidgetRecord, bool) {
	if len(m.snap.Widgets) == 0 {
		return model.WidgetRecord{}, false
	}
	i := m.focus.Index()
	if i < 0 || i >= len(m.snap.Widgets) {
		return model.WidgetRecord{}, false
	}
	return m.snap.Widgets[i], true
}

func (m *appModel) openWidget() (model.WidgetRecord, bool) {
	return m.snap.FindWidget(m.openID)
}

func (m *appModel) title(w model.WidgetRecord) string {
	return registry.Title(m.kinds, w.Type, m.snap.WidgetTitles[w.ID])
}

func (m *appModel) setStatus(s string) {
	m.status = s
	m.statusIsErr = false
	m.statusSeq++
}

func (m *appModel) setError(s string) {
	m.status = s
	m.statusIsErr = true
	m.statusSeq++
}

// displayOrder is the widget order to draw: the grab preview while grabbing.
func (m *appModel) displayOrder() []model.WidgetRecord {
	if m.grabbing {
		return reorder.Move(m.snap.Widgets, m.grabFrom, m.grabTo)
	}
	return m.snap.Widgets
}
