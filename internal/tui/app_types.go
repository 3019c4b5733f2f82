package tui

import (
	"time"

	"deskboard-cli/internal/registry"

	"github.com/charmbracelet/bubbles/list"
)

type view int

const (
	viewDashboard view = iota
	viewDetail
)

type modalKind int

const (
	modalNone modalKind = iota
	modalPicker
	modalTitle
	modalColor
	modalConfirmRemove
	modalAddNote
	modalEditNote
	modalAddTask
	modalEditTask
	modalAddMark
	modalAddCalc
)

// storeChangedMsg is sent when another process wrote the store.
type storeChangedMsg struct{}

// writeFailedMsg reports a background persistence failure.
type writeFailedMsg struct {
	key string
	err error
}

type statusClearMsg struct{ seq int }

const statusTTL = 4 * time.Second

// kindItem is a picker row.
type kindItem struct{ info registry.Info }

var _ list.DefaultItem = kindItem{}

func (i kindItem) Title() string       { return i.info.DefaultTitle }
func (i kindItem) Description() string { return i.info.Description }
func (i kindItem) FilterValue() string { return i.info.Kind + " " + i.info.DefaultTitle }
