package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type hubFetchDoneMsg struct {
	err error
}

type hubFetchSpinnerModel struct {
	spinner spinner.Model
	label   string
	fetch   tea.Cmd
	err     error
	done    bool
}

func newHubFetchSpinnerModel(label string, fetch tea.Cmd) hubFetchSpinnerModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return hubFetchSpinnerModel{
		spinner: s,
		label:   label,
		fetch:   fetch,
	}
}

func (m hubFetchSpinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch)
}

func (m hubFetchSpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case hubFetchDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m hubFetchSpinnerModel) View() string {
	if m.done {
		return ""
	}

	return fmt.Sprintf("%s %s", m.spinner.View(), m.label)
}

func runHubFetchSpinner(ctx context.Context, output io.Writer, label string, fetch func(context.Context) error) error {
	fetchCmd := func() tea.Msg {
		return hubFetchDoneMsg{err: fetch(ctx)}
	}

	p := tea.NewProgram(
		newHubFetchSpinnerModel(label, fetchCmd),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	result, ok := finalModel.(hubFetchSpinnerModel)
	if !ok {
		return fmt.Errorf("unexpected final spinner model type %T", finalModel)
	}

	return result.err
}
