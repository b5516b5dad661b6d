package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"sorcerer/pkg/orchestrator"
)

// Dashboard polling.
const (
	refreshInterval = 2 * time.Second
	fetchTimeout    = 10 * time.Second
)

// tickMsg triggers a refresh.
type tickMsg time.Time

// viewsMsg carries a completed fleet poll.
type viewsMsg struct {
	views []orchestrator.View
	at    time.Time
}

func tickCmd(every time.Duration) tea.Cmd {
	return tea.Tick(every, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// dashModel is the Bubble Tea model for srcrr dash. At most one fleet
// poll is in flight; ticks that land while one is running only reschedule.
type dashModel struct {
	ctx   context.Context
	fleet fleet
	lines int
	every time.Duration

	views    []orchestrator.View
	updated  time.Time
	loading  bool
	spinner  spinner.Model
	render   *renderer
	width    int
	quitting bool
}

func newDashModel(ctx context.Context, f fleet, lines int) dashModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return dashModel{
		ctx:     ctx,
		fleet:   f,
		lines:   lines,
		every:   refreshInterval,
		loading: true,
		spinner: sp,
		render:  newRenderer(os.Stdout),
	}
}

func (m dashModel) fetchCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, fetchTimeout)
		defer cancel()
		return viewsMsg{views: m.fleet.Overview(ctx, m.lines), at: time.Now()}
	}
}

// Init implements tea.Model.
func (m dashModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchCmd(), tickCmd(m.every))
}

// Update implements tea.Model.
func (m dashModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			if m.loading {
				return m, nil
			}
			m.loading = true
			return m, m.fetchCmd()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.render.width = msg.Width

	case viewsMsg:
		m.views = msg.views
		m.updated = msg.at
		m.loading = false

	case tickMsg:
		if m.loading {
			return m, tickCmd(m.every)
		}
		m.loading = true
		return m, tea.Batch(m.fetchCmd(), tickCmd(m.every))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m dashModel) View() string {
	if m.quitting {
		return ""
	}
	title := m.render.lg.NewStyle().Bold(true).Render("🧙 Sorcerer")
	status := fmt.Sprintf("%d agents", len(m.views))
	if !m.updated.IsZero() {
		status += " · updated " + m.updated.Format("15:04:05")
	}
	if m.loading {
		status = m.spinner.View() + " " + status
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top, title, "  ",
		m.render.lg.NewStyle().Foreground(m.render.theme.Muted).Render(status))

	body := "No agents found."
	if len(m.views) > 0 {
		body = m.render.overview(m.views)
	}
	footer := m.render.lg.NewStyle().Foreground(m.render.theme.Muted).Render("q quit · r refresh")
	return lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", footer)
}
