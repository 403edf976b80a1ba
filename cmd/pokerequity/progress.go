package main

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lox/pokerequity/analysis"
)

type progressMsg struct {
	done, total int
}

type finishedMsg struct{}

// progressModel is a spinner plus a bar fed by simulator progress.
type progressModel struct {
	label   string
	spinner spinner.Model
	bar     progress.Model
	done    int
	total   int
}

func newProgressModel(label string) progressModel {
	return progressModel{
		label: label,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("14"))),
		),
		bar: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		if msg.done > m.done {
			m.done = msg.done
		}
		m.total = msg.total
		return m, nil
	case finishedMsg:
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) fraction() float64 {
	if m.total == 0 {
		return 0
	}
	return float64(m.done) / float64(m.total)
}

func (m progressModel) View() string {
	return fmt.Sprintf("%s %s %s %s\n",
		m.spinner.View(),
		m.label,
		m.bar.ViewAs(m.fraction()),
		dimStyle.Render(fmt.Sprintf("%d/%d", m.done, m.total)))
}

type simulation func(ctx context.Context, progress analysis.ProgressFunc) (analysis.EquityResult, error)

type outcome struct {
	result analysis.EquityResult
	err    error
}

// withProgress runs sim, drawing a progress bar on out while it works.
func withProgress(ctx context.Context, out io.Writer, label string, sim simulation) (analysis.EquityResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newProgressModel(label),
		tea.WithContext(ctx),
		tea.WithOutput(out),
		tea.WithInput(nil),
	)

	results := make(chan outcome, 1)
	go func() {
		result, err := sim(ctx, func(done, total int) {
			p.Send(progressMsg{done: done, total: total})
		})
		results <- outcome{result: result, err: err}
		p.Send(finishedMsg{})
	}()

	_, runErr := p.Run()
	cancel()
	res := <-results
	if res.err != nil {
		return res.result, res.err
	}
	if runErr != nil {
		return res.result, fmt.Errorf("progress display: %w", runErr)
	}
	return res.result, nil
}
