package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/yttransfer/internal/formatter"
	"github.com/desertthunder/yttransfer/internal/models"
	"github.com/desertthunder/yttransfer/internal/tasks"
	"github.com/desertthunder/yttransfer/internal/youtube"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	CategoryView ViewState = iota
	ResourceView
	ConfirmView
	TransferView
	ResultView
)

// transferOutcome carries the finished run from the engine goroutine back
// into the Elm loop once the progress channel drains.
type transferOutcome struct {
	summary *models.TransferSummary
	err     error
}

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	view   ViewState
	source youtube.AccountService
	engine tasks.TransferEngine
	width  int
	height int

	categoryList list.Model
	resourceList list.Model
	category     models.Category

	progressChan chan tasks.ProgressUpdate
	outcomeChan  chan transferOutcome
	progress     tasks.ProgressUpdate
	summary      *models.TransferSummary
	err          error

	help help.Model
	keys keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, source youtube.AccountService, engine tasks.TransferEngine) *Model {
	categoryList := list.New(categoryItems(), list.NewDefaultDelegate(), 0, 0)
	categoryList.Title = fmt.Sprintf("Transfer from %s", source.Account())

	return &Model{
		ctx:          ctx,
		view:         CategoryView,
		source:       source,
		engine:       engine,
		categoryList: categoryList,
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.categoryList.SetSize(msg.Width-4, msg.Height-8)
		if m.resourceList.Width() == 0 {
			m.resourceList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case CategoryView:
			return m.handleCategoryKeys(msg)
		case ResourceView:
			return m.handleResourceKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case resourcesFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.resourceList = list.New(msg.items, list.NewDefaultDelegate(), 0, 0)
		m.resourceList.Title = fmt.Sprintf("Select %s to transfer", msg.category)
		m.resourceList.SetSize(m.width-4, m.height-8)
		m.view = ResourceView
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case transferCompleteMsg:
		m.summary = msg.summary
		m.err = msg.err
		m.view = ResultView
		m.progressChan = nil
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case CategoryView:
		return m.renderCategoryList()
	case ResourceView:
		return m.renderResourceList()
	case ConfirmView:
		return m.renderConfirm()
	case TransferView:
		return m.renderTransfer()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleCategoryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		selected := m.categoryList.SelectedItem()
		if selected == nil {
			return m, nil
		}
		item, ok := selected.(categoryItem)
		if !ok {
			return m, nil
		}
		m.category = item.category
		if m.category == models.All {
			// No per-resource selection when transferring everything.
			m.view = ConfirmView
			return m, nil
		}
		return m, m.fetchResources(m.category)
	}

	var cmd tea.Cmd
	m.categoryList, cmd = m.categoryList.Update(msg)
	return m, cmd
}

func (m *Model) handleResourceKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = CategoryView
		return m, nil
	case " ":
		index := m.resourceList.Index()
		if item, ok := m.resourceList.SelectedItem().(resourceItem); ok {
			item.selected = !item.selected
			return m, m.resourceList.SetItem(index, item)
		}
		return m, nil
	case "a":
		var cmds []tea.Cmd
		for i, it := range m.resourceList.Items() {
			if item, ok := it.(resourceItem); ok && !item.selected {
				item.selected = true
				cmds = append(cmds, m.resourceList.SetItem(i, item))
			}
		}
		return m, tea.Batch(cmds...)
	case "enter":
		if len(m.selectedIDs()) == 0 {
			return m, nil
		}
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	m.resourceList, cmd = m.resourceList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "n", "esc":
		if m.category == models.All {
			m.view = CategoryView
		} else {
			m.view = ResourceView
		}
		return m, nil
	case "y":
		m.view = TransferView
		return m, m.startTransfer()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = CategoryView
		m.summary = nil
		m.err = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case CategoryView:
		m.categoryList, cmd = m.categoryList.Update(msg)
	case ResourceView:
		m.resourceList, cmd = m.resourceList.Update(msg)
	}
	return m, cmd
}

// selectedIDs returns the ids of the checked resources.
func (m *Model) selectedIDs() []string {
	var ids []string
	for _, it := range m.resourceList.Items() {
		if item, ok := it.(resourceItem); ok && item.selected {
			ids = append(ids, item.id)
		}
	}
	return ids
}

// request builds the transfer request from the current view state.
func (m *Model) request() models.TransferRequest {
	req := models.TransferRequest{Categories: []models.Category{m.category}}
	if m.category == models.All {
		return req
	}

	ids := m.selectedIDs()
	if len(ids) < len(m.resourceList.Items()) {
		req.Selection = map[models.Category][]string{m.category: ids}
	}
	return req
}

func (m *Model) fetchResources(category models.Category) tea.Cmd {
	return func() tea.Msg {
		switch category {
		case models.Subscriptions:
			subs, err := m.source.Subscriptions(m.ctx)
			return resourcesFetchedMsg{category: category, items: subscriptionItems(subs), err: err}
		case models.LikedVideos:
			videos, err := m.source.LikedVideos(m.ctx)
			return resourcesFetchedMsg{category: category, items: likedVideoItems(videos), err: err}
		case models.Playlists:
			playlists, err := m.source.Playlists(m.ctx)
			return resourcesFetchedMsg{category: category, items: playlistItems(playlists), err: err}
		default:
			return resourcesFetchedMsg{category: category, err: fmt.Errorf("unknown category %q", category)}
		}
	}
}

func (m *Model) startTransfer() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	m.outcomeChan = make(chan transferOutcome, 1)

	req := m.request()
	progress := m.progressChan

	go func() {
		summary, err := m.engine.Run(m.ctx, progress, req)
		m.outcomeChan <- transferOutcome{summary: summary, err: err}
		close(progress)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress := m.progressChan
	outcome := m.outcomeChan

	return func() tea.Msg {
		if progress == nil {
			return nil
		}

		update, ok := <-progress
		if !ok {
			result := <-outcome
			return transferCompleteMsg{summary: result.summary, err: result.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderCategoryList() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.categoryList.View(), helpView)
}

func (m *Model) renderResourceList() string {
	helpKeys := []key.Binding{m.keys.toggle, m.keys.all, m.keys.enter, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.resourceList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	var what string
	if m.category == models.All {
		what = "everything"
	} else {
		what = fmt.Sprintf("%d %s", len(m.selectedIDs()), m.category)
	}

	title := styles.title.Render(fmt.Sprintf("Transfer %s to the target account?", what))
	note := styles.help.Render("Resources already present on the target are skipped.")
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no, m.keys.quit})

	return fmt.Sprintf("%s\n%s\n\n%s", title, note, helpView)
}

func (m *Model) renderTransfer() string {
	title := styles.title.Render("Transferring")

	var phase string
	switch m.progress.Phase {
	case tasks.Enumerate:
		phase = "Enumerating source resources..."
	case tasks.Filter:
		phase = "Applying selection..."
	case tasks.Mutate, tasks.Skip:
		phase = fmt.Sprintf("Processing %s (%d/%d)", m.progress.Category, m.progress.Step, m.progress.Total)
	case tasks.ReplicatePlaylist:
		phase = fmt.Sprintf("Replicating playlist (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.Summarize:
		phase = fmt.Sprintf("Finished %s", m.progress.Category)
	default:
		phase = "Working..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, styles.help.Render(m.progress.Message))
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit})

	if m.summary == nil {
		detail := "No summary available"
		if m.err != nil {
			detail = fmt.Sprintf("Transfer failed: %v", m.err)
		}
		return fmt.Sprintf("%s\n\n%s", styles.err.Render(detail), helpView)
	}

	var title string
	if m.err != nil {
		title = styles.warn.Render(fmt.Sprintf("Transfer aborted: %v", m.err))
	} else {
		title = styles.ok.Render("✓ Transfer Complete")
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, formatter.SummaryText(m.summary), helpView)
}
