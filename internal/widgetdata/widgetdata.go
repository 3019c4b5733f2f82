// Package widgetdata stores the per-widget lists kept outside the dashboard aggregate:
// note lines for notes widgets and tasks for to-do widgets.
package widgetdata

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"deskboard-cli/internal/model"
	"deskboard-cli/internal/reorder"
	"deskboard-cli/internal/store"
)

const (
	notesPrefix = "notes-"
	todoPrefix  = "todo-"
)

func NotesKey(widgetID string) string { return notesPrefix + widgetID }
func TodoKey(widgetID string) string  { return todoPrefix + widgetID }

// IndexError reports a position outside the list.
type IndexError struct {
	Index int
	Len   int
}

func (e IndexError) Error() string {
	return fmt.Sprintf("index %d out of range (list has %d items)", e.Index, e.Len)
}

// List is an ordered list persisted under one store key. Every mutator saves through the
// store's debounce and returns the new list.
type List[T any] struct {
	st  *store.Store
	key string
}

func Notes(st *store.Store, widgetID string) List[string] {
	return List[string]{st: st, key: NotesKey(widgetID)}
}

func Tasks(st *store.Store, widgetID string) List[model.Task] {
	return List[model.Task]{st: st, key: TodoKey(widgetID)}
}

func (l List[T]) Key() string { return l.key }

// Items returns the stored list, or an empty list when nothing valid is stored.
func (l List[T]) Items(ctx context.Context) []T {
	items, ok := store.Load[[]T](ctx, l.st, l.key)
	if !ok || items == nil {
		return []T{}
	}
	return items
}

func (l List[T]) save(items []T) ([]T, error) {
	if err := l.st.Save(l.key, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (l List[T]) Append(ctx context.Context, v T) ([]T, error) {
	items := l.Items(ctx)
	return l.save(append(slices.Clone(items), v))
}

func (l List[T]) Remove(ctx context.Context, i int) ([]T, error) {
	items := l.Items(ctx)
	if i < 0 || i >= len(items) {
		return nil, IndexError{Index: i, Len: len(items)}
	}
	return l.save(slices.Delete(slices.Clone(items), i, i+1))
}

// Update replaces element i with fn applied to it.
func (l List[T]) Update(ctx context.Context, i int, fn func(T) T) ([]T, error) {
	items := l.Items(ctx)
	if i < 0 || i >= len(items) {
		return nil, IndexError{Index: i, Len: len(items)}
	}
	out := slices.Clone(items)
	out[i] = fn(out[i])
	return l.save(out)
}

// Move applies a drag. A cancelled or out-of-range drag is not saved.
func (l List[T]) Move(ctx context.Context, d reorder.Drag) ([]T, error) {
	items := l.Items(ctx)
	if d.Cancelled || !reorder.Valid(len(items), d.Source, d.Destination) {
		return items, nil
	}
	return l.save(reorder.Apply(items, d))
}

// Clear drops the list and its pending write.
func (l List[T]) Clear(ctx context.Context) error {
	return l.st.Delete(ctx, l.key)
}

// AddNote appends a trimmed note. Blank notes are ignored.
func AddNote(ctx context.Context, l List[string], text string) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return l.Items(ctx), nil
	}
	return l.Append(ctx, text)
}

func EditNote(ctx context.Context, l List[string], i int, text string) ([]string, error) {
	return l.Update(ctx, i, func(string) string { return text })
}

// AddTask appends an open task. Blank text is ignored.
func AddTask(ctx context.Context, l List[model.Task], text string) ([]model.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return l.Items(ctx), nil
	}
	return l.Append(ctx, model.Task{Text: text})
}

func ToggleTask(ctx context.Context, l List[model.Task], i int) ([]model.Task, error) {
	return l.Update(ctx, i, func(t model.Task) model.Task {
		t.Completed = !t.Completed
		return t
	})
}

// EditTask replaces the text of task i and keeps its completion state.
func EditTask(ctx context.Context, l List[model.Task], i int, text string) ([]model.Task, error) {
	return l.Update(ctx, i, func(t model.Task) model.Task {
		t.Text = text
		return t
	})
}

// Remaining counts tasks not yet completed.
func Remaining(tasks []model.Task) int {
	n := 0
	for _, t := range tasks {
		if !t.Completed {
			n++
		}
	}
	return n
}

// Orphans lists keys of per-widget data whose widget is no longer on the dashboard.
func Orphans(ctx context.Context, st *store.Store, s model.Settings) ([]string, error) {
	var out []string
	for _, prefix := range []string{notesPrefix, todoPrefix} {
		keys, err := st.Keys(ctx, prefix)
		if err != nil {
			return nil, fmt.Errorf("list %s keys: %w", strings.TrimSuffix(prefix, "-"), err)
		}
		for _, k := range keys {
			if s.WidgetIndex(strings.TrimPrefix(k, prefix)) < 0 {
				out = append(out, k)
			}
		}
	}
	return out, nil
}
