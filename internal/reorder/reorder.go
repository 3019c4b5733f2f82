// Package reorder implements the index-based "pick up and drop" move shared by every
// ordered list on the dashboard (widgets, notes, tasks, calendar marks).
package reorder

// Drag describes the outcome of a drag gesture.
//
// Destination is the index the element should occupy after it has been removed from
// Source. A Destination equal to the list length means "move to the end".
// Cancelled is set when the gesture ended without a drop target.
type Drag struct {
	Source      int
	Destination int
	Cancelled   bool
}

// Cancel returns a cancelled drag for source.
func Cancel(source int) Drag {
	return Drag{Source: source, Destination: -1, Cancelled: true}
}

// To returns a completed drag from source to destination.
func To(source, destination int) Drag {
	return Drag{Source: source, Destination: destination}
}

// Apply realizes d on items. Cancelled or invalid drags return items unchanged.
func Apply[T any](items []T, d Drag) []T {
	if d.Cancelled {
		return items
	}
	return Move(items, d.Source, d.Destination)
}

// Move removes the element at from and reinserts it at to, shifting the elements in
// between by one. The input slice is never modified; a new slice is returned whenever
// the move is valid. An out-of-range from or a negative to returns items unchanged.
// A to past the end is treated as "move to the end".
func Move[T any](items []T, from, to int) []T {
	if from < 0 || from >= len(items) || to < 0 {
		return items
	}
	if to > len(items)-1 {
		to = len(items) - 1
	}

	out := make([]T, 0, len(items))
	moved := items[from]
	rest := make([]T, 0, len(items)-1)
	rest = append(rest, items[:from]...)
	rest = append(rest, items[from+1:]...)

	out = append(out, rest[:to]...)
	out = append(out, moved)
	out = append(out, rest[to:]...)
	return out
}

// Valid reports whether Move(items, from, to) would change anything.
func Valid(n, from, to int) bool {
	if from < 0 || from >= n || to < 0 {
		return false
	}
	if to > n-1 {
		to = n - 1
	}
	return from != to
}
