// Package ui holds the styles and key bindings shared by the terminal views.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/renatogalera/hunkpick/pkg/patch"
)

var (
	LogoStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	LogoText = `HUNKPICK`

	// Where the apply output is shown
	ResultBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(1, 2).
			Margin(1, 1)

	InfoLineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Margin(0, 1).
			Italic(true)

	HighlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	DiffStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	ErrorBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("196")).
			Foreground(lipgloss.Color("196")).
			Bold(true).
			Padding(1, 2).
			Margin(1, 1)
)

// Keys are the bindings of the hunk picker.
type Keys struct {
	Toggle    key.Binding
	ToggleAll key.Binding
	Preview   key.Binding
	Apply     key.Binding
	Quit      key.Binding
	Help      key.Binding
}

var KeyMap = Keys{
	Toggle: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "toggle hunk"),
	),
	ToggleAll: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "toggle all"),
	),
	Preview: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "preview hunk"),
	),
	Apply: key.NewBinding(
		key.WithKeys("s", "enter"),
		key.WithHelp("s", "apply selection"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c", "esc"),
		key.WithHelp("q", "quit"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
}

func (k Keys) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Apply, k.Quit, k.Help}
}

func (k Keys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.ToggleAll, k.Preview},
		{k.Apply, k.Quit, k.Help},
	}
}

// RenderResult formats an apply result in a box sized to width.
func RenderResult(res patch.Result, width int) string {
	boxWidth := min(width-4, 100)
	if boxWidth < 20 {
		boxWidth = 20
	}
	out := strings.TrimSpace(res.Output)
	if res.Failed() {
		msg := fmt.Sprintf("git apply failed with status %d", res.Status)
		if out != "" {
			msg += "\n\n" + out
		}
		return ErrorBoxStyle.Width(boxWidth).Render(msg)
	}
	msg := fmt.Sprintf("Applied %d patch(es) covering %d hunk(s).", res.Applied, len(res.Hunks))
	if out != "" {
		msg += "\n\n" + out
	}
	return ResultBoxStyle.Width(boxWidth).Render(msg)
}

// RenderError formats an error in the error box.
func RenderError(err error, width int) string {
	boxWidth := min(width-4, 100)
	if boxWidth < 20 {
		boxWidth = 20
	}
	return ErrorBoxStyle.Width(boxWidth).Render(err.Error())
}
