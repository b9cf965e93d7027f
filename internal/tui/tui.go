package tui

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Zuo-Peng/chatgpt-exporter/internal/archive"
	"github.com/Zuo-Peng/chatgpt-exporter/internal/export"
	"github.com/Zuo-Peng/chatgpt-exporter/internal/search"
	"github.com/Zuo-Peng/chatgpt-exporter/internal/transcript"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const debounceDelay = 200 * time.Millisecond

// Settings configures a browse session.
type Settings struct {
	Query     string
	Search    search.Options
	OutputDir string
	Export    export.Options
}

// message types

type searchResultMsg struct {
	query   string
	results []search.Result
}

type debounceTickMsg struct {
	query string
}

type exportDoneMsg struct {
	result *export.Result
	err    error
}

// model

type model struct {
	archive     *archive.Archive
	settings    Settings
	query       string
	results     []search.Result
	selected    map[int]bool // by conversation index
	cursor      int
	listOffset  int
	filterInput textinput.Model
	preview     viewport.Model
	previewKey  string // "index:entry" to avoid duplicate renders
	width       int
	height      int
	ready       bool
	quitting    bool
	exporting   bool
	status      string
	statusErr   bool
	lastExport  string // printed after exit
}

func initialModel(a *archive.Archive, s Settings) model {
	ti := textinput.New()
	ti.Placeholder = "Filter..."
	ti.Focus()
	ti.SetValue(s.Query)
	ti.Prompt = "> "
	ti.PromptStyle = styleInputPrompt
	ti.TextStyle = styleInput
	ti.CharLimit = 256

	return model{
		archive:     a,
		settings:    s,
		query:       s.Query,
		selected:    make(map[int]bool),
		filterInput: ti,
		preview:     viewport.New(0, 0),
	}
}

// Run starts the TUI and blocks until it exits. The last export outcome is
// printed after the alternate screen is released.
func Run(a *archive.Archive, s Settings) error {
	m := initialModel(a, s)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}

	fm := finalModel.(model)
	if fm.lastExport != "" {
		fmt.Println(fm.lastExport)
	}
	return nil
}

// Init triggers the initial list load.
func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.doSearch(m.query))
}

// Update handles messages.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.preview = newViewport(m.previewWidth(), m.panelHeight())
		m.previewKey = ""
		cmds = append(cmds, m.loadCurrentPreview())
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		if !m.exporting {
			m.status = ""
		}
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keys.Export):
			if m.exporting {
				return m, nil
			}
			m.exporting = true
			m.status = "Exporting..."
			m.statusErr = false
			return m, m.doExport()

		case key.Matches(msg, keys.Toggle):
			if r, ok := m.current(); ok {
				if m.selected[r.Index] {
					delete(m.selected, r.Index)
				} else {
					m.selected[r.Index] = true
				}
				if m.cursor < len(m.results)-1 {
					m.cursor++
					m.adjustListScroll(m.panelHeight())
					cmds = append(cmds, m.loadCurrentPreview())
				}
			}
			return m, tea.Batch(cmds...)

		case key.Matches(msg, keys.SelectAll):
			allMarked := true
			for _, r := range m.results {
				if !m.selected[r.Index] {
					allMarked = false
					break
				}
			}
			for _, r := range m.results {
				if allMarked {
					delete(m.selected, r.Index)
				} else {
					m.selected[r.Index] = true
				}
			}
			return m, nil

		case key.Matches(msg, keys.Copy):
			m.copyCurrent()
			return m, nil

		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
				m.adjustListScroll(m.panelHeight())
				cmds = append(cmds, m.loadCurrentPreview())
			}
			return m, tea.Batch(cmds...)

		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.results)-1 {
				m.cursor++
				m.adjustListScroll(m.panelHeight())
				cmds = append(cmds, m.loadCurrentPreview())
			}
			return m, tea.Batch(cmds...)

		case key.Matches(msg, keys.PreviewUp):
			m.preview.LineUp(m.panelHeight() / 2)
			return m, nil

		case key.Matches(msg, keys.PreviewDn):
			m.preview.LineDown(m.panelHeight() / 2)
			return m, nil

		case key.Matches(msg, keys.PageUp):
			m.preview.LineUp(m.panelHeight())
			return m, nil

		case key.Matches(msg, keys.PageDown):
			m.preview.LineDown(m.panelHeight())
			return m, nil
		}

		// Pass remaining keys to text input
		var tiCmd tea.Cmd
		m.filterInput, tiCmd = m.filterInput.Update(msg)
		cmds = append(cmds, tiCmd)

		newQuery := m.filterInput.Value()
		if newQuery != m.query {
			m.query = newQuery
			cmds = append(cmds, m.scheduleDebouncedSearch(newQuery))
		}
		return m, tea.Batch(cmds...)

	case tea.MouseMsg:
		if !m.ready || len(m.results) == 0 {
			return m, nil
		}

		region, itemIdx := m.hitTest(msg.X, msg.Y)

		switch {
		case region == regionList && msg.Button == tea.MouseButtonWheelUp:
			if m.listOffset > 0 {
				m.listOffset--
			}
			return m, nil

		case region == regionList && msg.Button == tea.MouseButtonWheelDown:
			visibleItems := m.panelHeight() / linesPerItem
			maxOffset := max(0, len(m.results)-visibleItems)
			if m.listOffset < maxOffset {
				m.listOffset++
			}
			return m, nil

		case region == regionList && msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
			if itemIdx >= 0 && itemIdx < len(m.results) && m.cursor != itemIdx {
				m.cursor = itemIdx
				m.adjustListScroll(m.panelHeight())
				cmds = append(cmds, m.loadCurrentPreview())
			}
			return m, tea.Batch(cmds...)

		case region == regionPreview && (msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown):
			var vpCmd tea.Cmd
			m.preview, vpCmd = m.preview.Update(msg)
			if vpCmd != nil {
				cmds = append(cmds, vpCmd)
			}
			return m, tea.Batch(cmds...)
		}

		return m, nil

	case debounceTickMsg:
		// Only fire search if query hasn't changed since debounce was scheduled
		if msg.query == m.query {
			cmds = append(cmds, m.doSearch(msg.query))
		}
		return m, tea.Batch(cmds...)

	case searchResultMsg:
		if msg.query != m.query {
			return m, nil
		}
		m.results = msg.results
		m.cursor = 0
		m.listOffset = 0
		if len(m.results) > 0 {
			cmds = append(cmds, m.loadCurrentPreview())
		} else {
			m.preview.SetContent("")
			m.previewKey = ""
		}
		return m, tea.Batch(cmds...)

	case previewRenderedMsg:
		ck := previewCacheKey(msg.index, msg.entry)
		if ck == m.previewKey {
			return m, nil
		}
		if r, ok := m.current(); ok && ck != previewCacheKey(r.Index, r.EntryIndex) {
			return m, nil // stale preview
		}
		m.preview.SetContent(msg.content)
		if msg.hitLine > 0 {
			m.preview.SetYOffset(msg.hitLine)
		} else {
			m.preview.GotoTop()
		}
		m.previewKey = ck
		return m, nil

	case exportDoneMsg:
		m.exporting = false
		m.status, m.statusErr = exportStatus(msg.result, msg.err)
		m.lastExport = m.status
		if msg.err == nil {
			m.selected = make(map[int]bool)
		}
		return m, nil
	}

	return m, tea.Batch(cmds...)
}

// exportStatus turns an export outcome into a one-line notification.
func exportStatus(res *export.Result, err error) (string, bool) {
	switch {
	case errors.Is(err, export.ErrNoSelection):
		return "Please select at least one conversation to export.", true
	case err != nil:
		msg := err.Error()
		if res != nil && len(res.Written) > 0 {
			msg = fmt.Sprintf("%s (%d written)", msg, len(res.Written))
		}
		return strings.ReplaceAll(msg, "\n", " "), true
	}
	return fmt.Sprintf("Selected conversations have been exported to '%s'.", res.OutputDir), false
}

// View renders the full TUI.
func (m model) View() string {
	if m.quitting || !m.ready {
		return ""
	}

	listW := m.listWidth()
	previewW := m.previewWidth()
	panelH := m.panelHeight()

	inputRow := m.filterInput.View()

	listContent := m.renderList(listW, panelH)
	listPanel := stylePanelBorder.
		Width(listW).
		Height(panelH).
		Render(listContent)

	m.preview.Width = previewW
	m.preview.Height = panelH
	previewPanel := styleActiveBorder.
		Width(previewW).
		Height(panelH).
		Render(m.preview.View())

	panels := lipgloss.JoinHorizontal(lipgloss.Top, listPanel, previewPanel)

	return lipgloss.JoinVertical(lipgloss.Left, inputRow, panels, m.statusBar())
}

// helper methods

func (m model) current() (search.Result, bool) {
	if len(m.results) == 0 || m.cursor >= len(m.results) {
		return search.Result{}, false
	}
	return m.results[m.cursor], true
}

func (m model) listWidth() int {
	if m.width <= 0 {
		return 40
	}
	// 40% for list, minus border padding
	return max(20, m.width*40/100-4)
}

func (m model) previewWidth() int {
	if m.width <= 0 {
		return 60
	}
	// 60% for preview, minus border padding
	return max(20, m.width*60/100-4)
}

func (m model) panelHeight() int {
	if m.height <= 0 {
		return 20
	}
	// Subtract input row (1) + status bar (1) + borders (4)
	return max(5, m.height-6)
}

type mouseRegion int

const (
	regionNone mouseRegion = iota
	regionList
	regionPreview
)

// hitTest maps terminal coordinates to a panel region and list item index.
func (m model) hitTest(x, y int) (mouseRegion, int) {
	pH := m.panelHeight()
	contentYStart := 2 // input row (1) + top border (1)
	contentYEnd := contentYStart + pH - 1

	if y < contentYStart || y > contentYEnd {
		return regionNone, -1
	}
	relY := y - contentYStart

	lw := m.listWidth()
	listBoxRight := lw + 1 // col 0=border, 1..lw=content, lw+1=border

	if x >= 1 && x <= lw {
		itemIndex := m.listOffset + (relY / linesPerItem)
		return regionList, itemIndex
	}

	if x > listBoxRight+1 {
		return regionPreview, -1
	}

	return regionNone, -1
}

func (m model) statusBar() string {
	if m.status != "" {
		if m.statusErr {
			return styleStatusErr.Render(m.status)
		}
		return styleStatusOK.Render(m.status)
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("%d shown, %d selected", len(m.results), len(m.selected)))
	parts = append(parts, "up/dn navigate")
	parts = append(parts, "tab select")
	parts = append(parts, "C-a all")
	parts = append(parts, "Enter export")
	parts = append(parts, "C-y copy")
	parts = append(parts, "Esc quit")
	return styleStatusBar.Render(strings.Join(parts, " | "))
}

// selectedIndices returns the marked conversation indices in ascending order.
func (m model) selectedIndices() []int {
	indices := make([]int, 0, len(m.selected))
	for i := range m.selected {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	return indices
}

func (m model) doSearch(query string) tea.Cmd {
	a := m.archive
	opts := m.settings.Search
	opts.Query = query
	return func() tea.Msg {
		return searchResultMsg{query: query, results: search.Search(a, opts)}
	}
}

func (m model) doExport() tea.Cmd {
	a := m.archive
	indices := m.selectedIndices()
	outDir := m.settings.OutputDir
	opts := m.settings.Export
	return func() tea.Msg {
		res, err := export.Export(a, indices, outDir, opts)
		return exportDoneMsg{result: res, err: err}
	}
}

// copyCurrent puts the transcript under the cursor on the clipboard.
func (m *model) copyCurrent() {
	r, ok := m.current()
	if !ok {
		return
	}
	conv := m.archive.Conversations[r.Index]
	text := PlainText(transcript.Extract(conv.Mapping))
	if err := clipboard.WriteAll(text); err != nil {
		m.status, m.statusErr = "Copy failed: "+err.Error(), true
		return
	}
	m.status, m.statusErr = fmt.Sprintf("Copied '%s' to clipboard.", conv.Title), false
}

// PlainText formats entries as "role: content" blocks separated by blank lines.
func PlainText(entries []transcript.Entry) string {
	blocks := make([]string, len(entries))
	for i, e := range entries {
		blocks[i] = e.Role + ": " + e.Content
	}
	return strings.Join(blocks, "\n\n")
}

func (m model) scheduleDebouncedSearch(query string) tea.Cmd {
	return tea.Tick(debounceDelay, func(time.Time) tea.Msg {
		return debounceTickMsg{query: query}
	})
}

func (m model) loadCurrentPreview() tea.Cmd {
	r, ok := m.current()
	if !ok {
		return nil
	}
	if previewCacheKey(r.Index, r.EntryIndex) == m.previewKey {
		return nil // already showing this preview
	}
	return loadPreviewCmd(m.archive, r, m.query, m.previewWidth())
}

func previewCacheKey(index, entry int) string {
	return fmt.Sprintf("%d:%d", index, entry)
}
