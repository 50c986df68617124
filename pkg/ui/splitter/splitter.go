// Package splitter is an interactive picker over the hunks of one file's diff.
package splitter

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/renatogalera/hunkpick/pkg/diff"
	"github.com/renatogalera/hunkpick/pkg/git"
	"github.com/renatogalera/hunkpick/pkg/patch"
	"github.com/renatogalera/hunkpick/pkg/ui"
)

// ErrNothingSelected is shown when apply is requested with no hunk toggled.
var ErrNothingSelected = errors.New("no hunks selected")

type splitterState int

const (
	stateList splitterState = iota
	statePreview
	stateApplying
	stateResult
)

type applyResultMsg struct {
	res patch.Result
	err error
}

// hunkItem is the list.Item implementation for Bubbles
type hunkItem struct {
	Index    int
	Hunk     diff.Hunk
	Selected bool
}

func (hi hunkItem) Title() string {
	mark := "[ ]"
	if hi.Selected {
		mark = "[x]"
	}
	return fmt.Sprintf("%s #%d %s", mark, hi.Index, hi.Hunk.Header.String())
}

func (hi hunkItem) Description() string {
	added, removed := hi.Hunk.Stats()
	return fmt.Sprintf("+%d -%d, bytes %d-%d", added, removed, hi.Hunk.Span.Start, hi.Hunk.Span.End)
}

func (hi hunkItem) FilterValue() string { return hi.Hunk.Header.String() }

// Model picks hunks of one file and applies an action to them.
type Model struct {
	state   splitterState
	list    list.Model
	spinner spinner.Model
	help    help.Model

	ctx    context.Context
	path   string
	action git.Action
	doc    *diff.Document
	engine *patch.Engine

	selected map[int]bool
	result   *patch.Result
	err      error

	width  int
	height int
}

// NewSplitterModel lists the hunks of doc, the forward diff of path. Applies
// run under ctx.
func NewSplitterModel(ctx context.Context, path string, doc *diff.Document, action git.Action, engine *patch.Engine) Model {
	items := make([]list.Item, 0, len(doc.Hunks))
	for i, h := range doc.Hunks {
		items = append(items, hunkItem{Index: i, Hunk: h})
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = fmt.Sprintf("%s: choose hunks to %s", path, action)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	s := spinner.New()
	s.Spinner = spinner.Dot

	return Model{
		state:    stateList,
		list:     l,
		spinner:  s,
		help:     help.New(),
		ctx:      ctx,
		path:     path,
		action:   action,
		doc:      doc,
		engine:   engine,
		selected: make(map[int]bool),
		width:    80,
	}
}

func NewProgram(m Model) *tea.Program {
	return tea.NewProgram(m, tea.WithAltScreen())
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Selected returns the toggled hunk indices in document order.
func (m Model) Selected() []int {
	out := make([]int, 0, len(m.selected))
	for i, on := range m.selected {
		if on {
			out = append(out, i)
		}
	}
	sort.Ints(out)
	return out
}

// Result returns the apply result once an apply has finished.
func (m Model) Result() (patch.Result, bool) {
	if m.result == nil {
		return patch.Result{}, false
	}
	return *m.result, true
}

// Err returns the error of the last apply attempt.
func (m Model) Err() error {
	return m.err
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-4)
		return m, nil

	case applyResultMsg:
		m.state = stateResult
		m.err = msg.err
		if msg.err == nil {
			res := msg.res
			m.result = &res
		}
		return m, nil

	case spinner.TickMsg:
		if m.state == stateApplying {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, ui.KeyMap.Quit) {
			if m.state == statePreview {
				m.state = stateList
				return m, nil
			}
			return m, tea.Quit
		}
		switch m.state {
		case stateApplying:
			return m, nil
		case stateResult:
			return m, tea.Quit
		case statePreview:
			m.state = stateList
			return m, nil
		}
		switch {
		case key.Matches(msg, ui.KeyMap.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, ui.KeyMap.Toggle):
			m.toggle(m.list.Index())
			return m, nil
		case key.Matches(msg, ui.KeyMap.ToggleAll):
			all := len(m.Selected()) < len(m.doc.Hunks)
			for i := range m.doc.Hunks {
				m.selected[i] = all
				m.refreshItem(i)
			}
			return m, nil
		case key.Matches(msg, ui.KeyMap.Preview):
			if len(m.doc.Hunks) > 0 {
				m.state = statePreview
			}
			return m, nil
		case key.Matches(msg, ui.KeyMap.Apply):
			return m.updateApply()
		}
	}

	newList, cmd := m.list.Update(msg)
	m.list = newList
	return m, cmd
}

func (m *Model) toggle(i int) {
	if i < 0 || i >= len(m.doc.Hunks) {
		return
	}
	m.selected[i] = !m.selected[i]
	m.refreshItem(i)
}

func (m *Model) refreshItem(i int) {
	m.list.SetItem(i, hunkItem{Index: i, Hunk: m.doc.Hunks[i], Selected: m.selected[i]})
}

// updateApply moves to the spinner and runs the apply off the UI loop.
func (m Model) updateApply() (tea.Model, tea.Cmd) {
	indices := m.Selected()
	if len(indices) == 0 {
		m.err = ErrNothingSelected
		return m, nil
	}
	m.err = nil
	m.state = stateApplying
	return m, tea.Batch(m.spinner.Tick, applyCmd(m.ctx, m.engine, m.doc, m.action, indices))
}

func applyCmd(ctx context.Context, engine *patch.Engine, doc *diff.Document, action git.Action, indices []int) tea.Cmd {
	return func() tea.Msg {
		log.Debug().Str("action", action.String()).Ints("hunks", indices).Msg("applying picked hunks")
		res, err := engine.ApplySelection(ctx, doc, patch.Selection{Hunks: indices}, action.ToWorktree(), action.Staged())
		return applyResultMsg{res: res, err: err}
	}
}

func (m Model) View() string {
	header := ui.LogoStyle.Render(ui.LogoText)
	helpView := m.help.View(ui.KeyMap)

	switch m.state {
	case statePreview:
		h := m.doc.Hunks[m.list.Index()]
		body := lipgloss.NewStyle().Margin(1, 2).Render(
			fmt.Sprintf("%s\n\n%s\n\nPress any key to return.",
				ui.HighlightStyle.Render(fmt.Sprintf("Hunk #%d", m.list.Index())), ui.DiffStyle.Render(h.String())),
		)
		return lipgloss.JoinVertical(lipgloss.Left, header, body)
	case stateApplying:
		body := fmt.Sprintf("Running git apply... %s", m.spinner.View())
		return lipgloss.JoinVertical(lipgloss.Left, header, body)
	case stateResult:
		var body string
		if m.err != nil {
			body = ui.RenderError(m.err, m.width)
		} else if m.result != nil {
			body = ui.RenderResult(*m.result, m.width)
		}
		return lipgloss.JoinVertical(lipgloss.Left, header, body, ui.InfoLineStyle.Render("Press any key to exit."))
	}

	info := ui.InfoLineStyle.Render(fmt.Sprintf("%d of %d hunks selected", len(m.Selected()), len(m.doc.Hunks)))
	parts := []string{header, info, m.list.View()}
	if m.err != nil {
		parts = append(parts, ui.RenderError(m.err, m.width))
	}
	parts = append(parts, helpView)
	return strings.Join(parts, "\n")
}
