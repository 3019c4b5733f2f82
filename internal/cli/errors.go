package cli

import (
	"fmt"
	"strconv"
	"strings"
)

type notFoundError struct {
	kind string
	id   string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.kind, e.id)
}

func errNotFound(kind, id string) error {
	return notFoundError{kind: kind, id: id}
}

type unknownKindError struct {
	kind  string
	known []string
}

func (e unknownKindError) Error() string {
	return fmt.Sprintf("unknown widget type %q (known: %s; pass --allow-unknown to add it anyway)", e.kind, strings.Join(e.known, ", "))
}

func errUnknownKind(kind string, known []string) error {
	return unknownKindError{kind: kind, known: known}
}

func parseIndex(name, s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: expected a 0-based index", name, s)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid %s %d: must be >= 0", name, n)
	}
	return n, nil
}
