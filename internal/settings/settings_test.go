package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deskboard-cli/internal/model"
	"deskboard-cli/internal/reorder"
	"deskboard-cli/internal/store"
)

func widget(id, kind string) model.WidgetRecord {
	return model.WidgetRecord{ID: id, Type: kind, Props: map[string]any{}}
}

func TestDefault(t *testing.T) {
	t.Parallel()

	s := Default()
	assert.Equal(t, model.ThemeLight, s.Theme)
	assert.Equal(t, model.LayoutGrid, s.LayoutMode)
	assert.NotNil(t, s.Widgets)
	assert.Empty(t, s.Widgets)
	assert.NotNil(t, s.WidgetStyles)
	assert.NotNil(t, s.WidgetTitles)
	assert.NotNil(t, s.CalculatorHistory)
	assert.NotNil(t, s.CalendarMarks)
}

func TestToggles_AreInvolutions(t *testing.T) {
	t.Parallel()

	s := Default()
	assert.Equal(t, model.ThemeDark, ToggleTheme(s).Theme)
	assert.Equal(t, s.Theme, ToggleTheme(ToggleTheme(s)).Theme)
	assert.Equal(t, model.LayoutList, ToggleLayout(s).LayoutMode)
	assert.Equal(t, s.LayoutMode, ToggleLayout(ToggleLayout(s)).LayoutMode)
}

func TestSetTheme_UnknownFallsBack(t *testing.T) {
	t.Parallel()

	assert.Equal(t, model.ThemeDark, SetTheme(Default(), model.ThemeDark).Theme)
	assert.Equal(t, model.ThemeLight, SetTheme(Default(), "sepia").Theme)
	assert.Equal(t, model.LayoutList, SetLayout(Default(), model.LayoutList).LayoutMode)
}

func TestUpdateWidgetStyle_Merges(t *testing.T) {
	t.Parallel()

	s := UpdateWidgetStyle(Default(), "w1", model.WidgetStyle{"backgroundColor": "#fff", "border": "1px"})
	s2 := UpdateWidgetStyle(s, "w1", model.WidgetStyle{"backgroundColor": "#000"})

	assert.Equal(t, model.WidgetStyle{"backgroundColor": "#000", "border": "1px"}, s2.WidgetStyles["w1"])
	assert.Equal(t, "#fff", s.WidgetStyles["w1"]["backgroundColor"], "input is not modified")
}

func TestUpdateWidgetTitle_EmptyIsStored(t *testing.T) {
	t.Parallel()

	s := UpdateWidgetTitle(Default(), "w1", "Groceries")
	assert.Equal(t, "Groceries", s.WidgetTitles["w1"])
	s = UpdateWidgetTitle(s, "w1", "")
	title, ok := s.WidgetTitles["w1"]
	assert.True(t, ok)
	assert.Equal(t, "", title)
}

func TestAddWidget_DuplicateIDIsNoop(t *testing.T) {
	t.Parallel()

	s := AddWidget(Default(), widget("w1", "notes"))
	s = AddWidget(s, widget("w1", "todo"))
	require.Len(t, s.Widgets, 1)
	assert.Equal(t, "notes", s.Widgets[0].Type)
}

func TestAddWidget_UnknownKindIsKept(t *testing.T) {
	t.Parallel()

	s := AddWidget(Default(), model.WidgetRecord{ID: "w1", Type: "hologram"})
	require.Len(t, s.Widgets, 1)
	assert.NotNil(t, s.Widgets[0].Props)
}

func TestRemoveWidget_KeepsStylesAndTitles(t *testing.T) {
	t.Parallel()

	s := AddWidget(Default(), widget("w1", "notes"))
	s = AddWidget(s, widget("w2", "todo"))
	s = UpdateWidgetTitle(s, "w1", "Ideas")
	s = UpdateWidgetStyle(s, "w1", model.WidgetStyle{"backgroundColor": "#eee"})

	s = RemoveWidget(s, "w1")
	require.Len(t, s.Widgets, 1)
	assert.Equal(t, "w2", s.Widgets[0].ID)
	assert.Equal(t, "Ideas", s.WidgetTitles["w1"])
	assert.Contains(t, s.WidgetStyles, "w1")

	assert.Equal(t, s.Widgets, RemoveWidget(s, "nope").Widgets)
}

func TestMoveWidget(t *testing.T) {
	t.Parallel()

	s := Default()
	for _, id := range []string{"a", "b", "c"} {
		s = AddWidget(s, widget(id, "notes"))
	}
	ids := func(s model.Settings) []string {
		out := make([]string, 0, len(s.Widgets))
		for _, w := range s.Widgets {
			out = append(out, w.ID)
		}
		return out
	}

	assert.Equal(t, []string{"b", "c", "a"}, ids(MoveWidget(s, reorder.To(0, 2))))
	assert.Equal(t, []string{"a", "b", "c"}, ids(MoveWidget(s, reorder.Cancel(0))))
	assert.Equal(t, []string{"a", "b", "c"}, ids(s), "input is not modified")
}

func TestReorderWidgets_KeepsFirstRecordPerID(t *testing.T) {
	t.Parallel()

	order := []model.WidgetRecord{widget("w1", "notes"), widget("w2", "todo"), widget("w1", "todo")}
	s := ReorderWidgets(Default(), order)
	require.Len(t, s.Widgets, 2)
	assert.Equal(t, "notes", s.Widgets[0].Type)
	assert.Equal(t, "w2", s.Widgets[1].ID)
	assert.Equal(t, []string{"w1"}, DuplicateWidgetIDs(order))
	assert.Empty(t, DuplicateWidgetIDs(s.Widgets))

	s = RemoveWidget(s, "w1")
	require.Len(t, s.Widgets, 1)
	assert.Equal(t, "w2", s.Widgets[0].ID)
}

func TestContainer_ReplaceKeepsFirstRecordPerID(t *testing.T) {
	t.Parallel()

	in := Default()
	in.Widgets = []model.WidgetRecord{widget("w1", "notes"), widget("w1", "todo")}

	c := NewContainer(Default())
	c.Replace(in)
	require.Len(t, c.Snapshot().Widgets, 1)
	assert.Equal(t, "notes", c.Snapshot().Widgets[0].Type)

	c.ReplaceExternal(in)
	assert.Len(t, c.Snapshot().Widgets, 1)
	assert.Len(t, Normalize(in).Widgets, 1)
}

func TestCalculatorHistory(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := AddCalculation(Default(), "2+2", "4", at)
	s = AddCalculation(s, "3*3", "9", at.Add(time.Second))
	require.Len(t, s.CalculatorHistory, 2)
	assert.Equal(t, at.UnixMilli(), s.CalculatorHistory[0].Timestamp)
	assert.Equal(t, "9", s.CalculatorHistory[1].Result)

	cleared := ClearCalculatorHistory(s)
	assert.NotNil(t, cleared.CalculatorHistory)
	assert.Empty(t, cleared.CalculatorHistory)
	assert.Len(t, s.CalculatorHistory, 2)
}

func TestCalendarMarks(t *testing.T) {
	t.Parallel()

	s := Default()
	for _, id := range []string{"m1", "m2", "m3"} {
		s = AddCalendarMark(s, model.CalendarMark{ID: id, Date: "2026-03-01"})
	}
	s = RemoveCalendarMark(s, "m2")
	require.Len(t, s.CalendarMarks, 2)

	s = ReorderCalendarMarks(s, []model.CalendarMark{s.CalendarMarks[1], s.CalendarMarks[0]})
	assert.Equal(t, "m3", s.CalendarMarks[0].ID)

	s = MoveCalendarMark(s, reorder.To(0, 1))
	assert.Equal(t, "m1", s.CalendarMarks[0].ID)

	assert.NotNil(t, ReorderCalendarMarks(s, nil).CalendarMarks)
}

// Earlier snapshots never observe later transitions.
func TestTransitions_DoNotAliasInput(t *testing.T) {
	t.Parallel()

	base := AddWidget(Default(), widget("w1", "notes"))
	base = UpdateWidgetTitle(base, "w1", "before")
	base = AddCalendarMark(base, model.CalendarMark{ID: "m1"})
	snap := Clone(base)

	next := UpdateWidgetTitle(base, "w1", "after")
	next = UpdateWidgetStyle(next, "w1", model.WidgetStyle{"backgroundColor": "#123"})
	next = AddWidget(next, widget("w2", "todo"))
	next = RemoveCalendarMark(next, "m1")
	next = AddCalculation(next, "1+1", "2", time.Now())
	_ = next

	assert.Equal(t, snap, base)
}

func TestContainer_SnapshotIsACopy(t *testing.T) {
	t.Parallel()

	c := NewContainer(Default())
	c.AddWidget(widget("w1", "notes"))

	snap := c.Snapshot()
	snap.Widgets[0].ID = "tampered"
	snap.WidgetTitles["w1"] = "tampered"

	again := c.Snapshot()
	assert.Equal(t, "w1", again.Widgets[0].ID)
	assert.NotContains(t, again.WidgetTitles, "w1")
}

func TestContainer_NotifiesSubscribers(t *testing.T) {
	t.Parallel()

	c := NewContainer(Default())
	var ops []string
	unsub := c.Subscribe(func(ch Change) { ops = append(ops, ch.Op) })

	c.ToggleTheme()
	c.ToggleLayout()
	unsub()
	c.ToggleTheme()

	assert.Equal(t, []string{"toggle-theme", "toggle-layout"}, ops)
}

func TestContainer_InjectedClockAndIDs(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	n := 0
	c := NewContainer(Default(),
		WithClock(func() time.Time { return at }),
		WithIDs(func() string { n++; return fmt.Sprintf("id-%d", n) }),
	)

	c.AddCalculation("6*7", "42")
	m := c.NewCalendarMark("2026-05-04", "launch")
	c.AddCalendarMark(m)
	c.AddCalendarMark(model.CalendarMark{Date: "2026-05-05"})

	s := c.Snapshot()
	assert.Equal(t, at.UnixMilli(), s.CalculatorHistory[0].Timestamp)
	assert.Equal(t, "id-1", m.ID)
	assert.Equal(t, "2026-05-04T10:00:00Z", m.ISOTimestamp)
	require.Len(t, s.CalendarMarks, 2)
	assert.Equal(t, m, s.CalendarMarks[0])
	assert.Equal(t, "id-2", s.CalendarMarks[1].ID)
	assert.Equal(t, "widget-id-3", c.NewWidgetID())
}

// Add, remove, then toggle the theme twice: the widget is gone and the theme is back.
func TestContainer_AddRemoveToggleTwice(t *testing.T) {
	t.Parallel()

	b := store.NewMemoryBackend()
	st := store.New(b, store.WithDebounce(time.Hour))
	c := NewContainer(Default())
	c.Persist(st)

	c.AddWidget(widget("w1", "notes"))
	require.Len(t, c.Snapshot().Widgets, 1)
	c.RemoveWidget("w1")
	c.ToggleTheme()
	c.ToggleTheme()

	got := c.Snapshot()
	assert.Empty(t, got.Widgets)
	assert.Equal(t, model.ThemeLight, got.Theme)
	assert.Equal(t, 1, st.Pending())

	require.NoError(t, st.Close())
	reloaded := Load(context.Background(), store.New(b))
	assert.Empty(t, reloaded.Widgets)
	assert.Equal(t, model.ThemeLight, reloaded.Theme)
}

func TestContainer_PersistSkipsExternal(t *testing.T) {
	t.Parallel()

	b := store.NewMemoryBackend()
	st := store.New(b, store.WithDebounce(time.Hour))
	c := NewContainer(Default())
	c.Persist(st)

	ext := Default()
	ext.Theme = model.ThemeDark
	c.ReplaceExternal(ext)
	assert.Equal(t, 0, st.Pending())
	assert.Equal(t, model.ThemeDark, c.Snapshot().Theme)

	c.ToggleLayout()
	assert.Equal(t, 1, st.Pending())
	require.NoError(t, st.Flush(context.Background()))

	got := Load(context.Background(), store.New(b))
	assert.Equal(t, model.ThemeDark, got.Theme)
	assert.Equal(t, model.LayoutList, got.LayoutMode)
}

// A mutation followed by a restart sees the mutation.
func TestPersistence_SurvivesRestart(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	b, err := store.OpenFileBackend(dir)
	require.NoError(t, err)
	st := store.New(b, store.WithDebounce(10*time.Millisecond))

	c := NewContainer(Load(context.Background(), st))
	c.Persist(st)
	c.AddWidget(widget("w1", "calendar"))
	c.UpdateWidgetTitle("w1", "Holidays")
	c.ToggleTheme()
	require.NoError(t, st.Close())

	b2, err := store.OpenFileBackend(dir)
	require.NoError(t, err)
	got := Load(context.Background(), store.New(b2))
	require.Len(t, got.Widgets, 1)
	assert.Equal(t, "Holidays", got.WidgetTitles["w1"])
	assert.Equal(t, model.ThemeDark, got.Theme)
}

func TestLoad_MergesOverDefaults(t *testing.T) {
	t.Parallel()

	b := store.NewMemoryBackend()
	ctx := context.Background()
	require.NoError(t, b.Put(ctx, StorageKey, []byte(`{"theme":"dark","widgets":null,"futureFlag":true}`)))

	got := Load(ctx, store.New(b))
	assert.Equal(t, model.ThemeDark, got.Theme)
	assert.Equal(t, model.LayoutGrid, got.LayoutMode)
	assert.NotNil(t, got.Widgets)
	assert.NotNil(t, got.CalendarMarks)

	// Unknown fields survive a save.
	raw, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"futureFlag":true`)
}

func TestLoad_CorruptRecordFallsBackToDefault(t *testing.T) {
	t.Parallel()

	b := store.NewMemoryBackend()
	ctx := context.Background()
	require.NoError(t, b.Put(ctx, StorageKey, []byte(`{"theme":"dark","widgets":[{`)))

	assert.Equal(t, Default(), Load(ctx, store.New(b)))
}

func TestContainer_ConcurrentMutations(t *testing.T) {
	t.Parallel()

	c := NewContainer(Default())
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.AddWidget(widget(fmt.Sprintf("w%d", i), "notes"))
			_ = c.Snapshot()
		}(i)
	}
	wg.Wait()
	assert.Len(t, c.Snapshot().Widgets, 20)
}
