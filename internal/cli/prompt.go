package cli

import (
	"errors"

	"github.com/alexanderramin/odontos/internal/cli/formatter"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Prompter asks the user to settle choices a command cannot make alone.
// Commands only prompt when App.Prompt is set, which main does for
// interactive terminals.
type Prompter interface {
	Confirm(title string) (bool, error)
	// Select returns the index of the chosen option.
	Select(title string, options []string, current int) (int, error)
}

// HuhPrompter renders prompts as huh forms on the terminal.
type HuhPrompter struct{}

func odontosHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// Confirm treats an aborted form (esc, ctrl+c) as no.
func (HuhPrompter) Confirm(title string) (bool, error) {
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Replace").
				Negative("Keep").
				Value(&ok),
		),
	).WithTheme(odontosHuhTheme()).WithShowHelp(false).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}

// Select starts on current. An aborted form returns huh.ErrUserAborted.
func (HuhPrompter) Select(title string, options []string, current int) (int, error) {
	choice := current
	opts := make([]huh.Option[int], 0, len(options))
	for i, label := range options {
		opts = append(opts, huh.NewOption(label, i))
	}
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title(title).
				Options(opts...).
				Value(&choice),
		),
	).WithTheme(odontosHuhTheme()).WithShowHelp(false).Run()
	return choice, err
}
