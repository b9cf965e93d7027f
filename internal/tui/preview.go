package tui

import (
	"github.com/Zuo-Peng/chatgpt-exporter/internal/archive"
	"github.com/Zuo-Peng/chatgpt-exporter/internal/render"
	"github.com/Zuo-Peng/chatgpt-exporter/internal/search"
	"github.com/Zuo-Peng/chatgpt-exporter/internal/transcript"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// previewRenderedMsg is sent when an async preview render completes.
type previewRenderedMsg struct {
	index   int
	entry   int
	content string
	hitLine int
}

// loadPreviewCmd returns a tea.Cmd that renders the transcript preview async.
func loadPreviewCmd(a *archive.Archive, r search.Result, query string, width int) tea.Cmd {
	return func() tea.Msg {
		conv := a.Conversations[r.Index]
		content, hitLine := render.RenderTranscript(conv.Title, transcript.Extract(conv.Mapping), render.Options{
			HitEntry: r.EntryIndex,
			Context:  -1,
			Width:    width,
			Query:    query,
		})
		return previewRenderedMsg{
			index:   r.Index,
			entry:   r.EntryIndex,
			content: content,
			hitLine: hitLine,
		}
	}
}

// newViewport creates a new viewport model with the given dimensions.
func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.Style = stylePanelBorder
	return vp
}
