package widgetdata

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deskboard-cli/internal/model"
	"deskboard-cli/internal/reorder"
	"deskboard-cli/internal/store"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(store.NewMemoryBackend(), store.WithDebounce(time.Hour))
}

func TestNotes_AddEditRemoveMove(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newStore(t)
	notes := Notes(st, "widget-1")
	assert.Equal(t, "notes-widget-1", notes.Key())
	assert.Equal(t, []string{}, notes.Items(ctx))

	for _, n := range []string{"milk", "  eggs  ", "   ", "bread"} {
		_, err := AddNote(ctx, notes, n)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"milk", "eggs", "bread"}, notes.Items(ctx))

	got, err := EditNote(ctx, notes, 1, "free-range eggs")
	require.NoError(t, err)
	assert.Equal(t, "free-range eggs", got[1])

	got, err = notes.Move(ctx, reorder.To(2, 0))
	require.NoError(t, err)
	assert.Equal(t, []string{"bread", "milk", "free-range eggs"}, got)

	got, err = notes.Move(ctx, reorder.Cancel(2))
	require.NoError(t, err)
	assert.Equal(t, []string{"bread", "milk", "free-range eggs"}, got)

	got, err = notes.Remove(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"milk", "free-range eggs"}, got)

	_, err = notes.Remove(ctx, 5)
	var ie IndexError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, 2, ie.Len)
}

func TestTasks_ToggleAndRemaining(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newStore(t)
	tasks := Tasks(st, "widget-2")
	assert.Equal(t, "todo-widget-2", tasks.Key())

	_, err := AddTask(ctx, tasks, "write report")
	require.NoError(t, err)
	_, err = AddTask(ctx, tasks, "ship it")
	require.NoError(t, err)

	got, err := ToggleTask(ctx, tasks, 0)
	require.NoError(t, err)
	assert.Equal(t, []model.Task{{Text: "write report", Completed: true}, {Text: "ship it"}}, got)
	assert.Equal(t, 1, Remaining(got))

	got, err = ToggleTask(ctx, tasks, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, Remaining(got))

	_, err = ToggleTask(ctx, tasks, -1)
	require.Error(t, err)
}

func TestTasks_EditKeepsCompletion(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tasks := Tasks(newStore(t), "widget-3")
	_, err := AddTask(ctx, tasks, "draft")
	require.NoError(t, err)
	_, err = ToggleTask(ctx, tasks, 0)
	require.NoError(t, err)

	got, err := EditTask(ctx, tasks, 0, "final draft")
	require.NoError(t, err)
	assert.Equal(t, []model.Task{{Text: "final draft", Completed: true}}, got)
	assert.Equal(t, got, tasks.Items(ctx))

	_, err = EditTask(ctx, tasks, 1, "nope")
	var ie IndexError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, 1, ie.Len)
}

func TestList_PersistsThroughStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := store.NewMemoryBackend()
	st := store.New(b, store.WithDebounce(time.Hour))
	_, err := AddNote(ctx, Notes(st, "w"), "remember")
	require.NoError(t, err)
	require.NoError(t, st.Flush(ctx))

	fresh := store.New(b)
	assert.Equal(t, []string{"remember"}, Notes(fresh, "w").Items(ctx))
}

func TestList_CorruptValueIsEmpty(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b := store.NewMemoryBackend()
	require.NoError(t, b.Put(ctx, TodoKey("w"), []byte(`{"oops":1}`)))
	assert.Equal(t, []model.Task{}, Tasks(store.New(b), "w").Items(ctx))
}

func TestOrphans(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newStore(t)
	_, err := AddNote(ctx, Notes(st, "kept"), "a")
	require.NoError(t, err)
	_, err = AddNote(ctx, Notes(st, "gone"), "b")
	require.NoError(t, err)
	_, err = AddTask(ctx, Tasks(st, "gone"), "c")
	require.NoError(t, err)

	s := model.Settings{Widgets: []model.WidgetRecord{{ID: "kept", Type: "notes"}}}
	orphans, err := Orphans(ctx, st, s)
	require.NoError(t, err)
	assert.Equal(t, []string{"notes-gone", "todo-gone"}, orphans)

	require.NoError(t, Notes(st, "gone").Clear(ctx))
	orphans, err = Orphans(ctx, st, s)
	require.NoError(t, err)
	assert.Equal(t, []string{"todo-gone"}, orphans)
}
