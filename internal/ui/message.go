package ui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/yttransfer/internal/models"
	"github.com/desertthunder/yttransfer/internal/tasks"
)

// resourcesFetchedMsg delivers the enumerated source resources for the
// chosen category, already wrapped as list items.
type resourcesFetchedMsg struct {
	category models.Category
	items    []list.Item
	err      error
}

// progressUpdateMsg relays one engine progress update into the Elm loop.
type progressUpdateMsg tasks.ProgressUpdate

// transferCompleteMsg signals the end of a run, successful or aborted.
type transferCompleteMsg struct {
	summary *models.TransferSummary
	err     error
}
