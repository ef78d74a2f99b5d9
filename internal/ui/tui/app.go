package tui

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MichalZajkowski/jira-build-health-action/internal/domain"
)

type screen int

const (
	screenReports screen = iota
	screenDetail
)

type reportItem struct {
	ref domain.ReportRef
}

func (i reportItem) Title() string {
	issue := i.ref.IssueKey
	if issue == "" {
		issue = "(no issue)"
	}
	return fmt.Sprintf("%s  score %d  %s", issue, i.ref.Score, i.ref.Status)
}

func (i reportItem) Description() string {
	return i.ref.StartedAt.Local().Format(time.DateTime) + "  " + i.ref.ID
}

func (i reportItem) FilterValue() string { return i.ref.IssueKey + " " + i.ref.ID }

type model struct {
	theme Theme
	deps  Deps

	scr     screen
	reports list.Model
	detail  viewport.Model

	width  int
	height int

	loading bool
	current *domain.ReportArtifact
	toast   string
}

// Run opens the report browser and blocks until the user quits.
func Run(deps Deps) error {
	m := wrapSafe(newModel(deps), deps.Logger)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func newModel(deps Deps) model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Build health reports"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	return model{
		theme:   DefaultTheme(),
		deps:    deps,
		scr:     screenReports,
		reports: l,
		detail:  viewport.New(0, 0),
		loading: true,
	}
}

func (m model) Init() tea.Cmd { return cmdLoadReports(m.deps.Store) }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.reports.SetSize(msg.Width-4, msg.Height-10)
		m.detail.Width = msg.Width - 8
		m.detail.Height = msg.Height - 12
		if m.current != nil {
			m.detail.SetContent(renderReportDetails(m.theme, *m.current, m.detail.Width))
		}
		return m, nil

	case reportsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.toast = userMessage(msg.err)
			m.log().Error("tui.reports.load_failed", "error", msg.err)
			return m, nil
		}
		items := make([]list.Item, 0, len(msg.refs))
		for _, r := range msg.refs {
			items = append(items, reportItem{ref: r})
		}
		m.toast = ""
		return m, m.reports.SetItems(items)

	case reportLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.toast = userMessage(msg.err)
			m.log().Error("tui.report.load_failed", "id", msg.id, "error", msg.err)
			return m, nil
		}
		a := msg.artifact
		m.current = &a
		m.scr = screenDetail
		m.toast = ""
		m.detail.SetContent(renderReportDetails(m.theme, a, m.detail.Width))
		m.detail.GotoTop()
		return m, nil

	case tea.KeyMsg:
		if m.scr == screenReports && m.reports.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.scr == screenReports {
				return m, tea.Quit
			}
			m = m.back()
			return m, nil

		case "esc", "b":
			if m.scr == screenDetail {
				m = m.back()
				return m, nil
			}

		case "r":
			if m.scr == screenReports {
				m.loading = true
				return m, cmdLoadReports(m.deps.Store)
			}

		case "enter":
			if m.scr == screenReports {
				it, ok := m.reports.SelectedItem().(reportItem)
				if !ok {
					return m, nil
				}
				m.loading = true
				return m, cmdLoadReport(m.deps.Store, it.ref.ID)
			}
		}
	}

	var cmd tea.Cmd
	switch m.scr {
	case screenReports:
		m.reports, cmd = m.reports.Update(msg)
	case screenDetail:
		m.detail, cmd = m.detail.Update(msg)
	}
	return m, cmd
}

func (m model) back() model {
	m.scr = screenReports
	m.current = nil
	m.toast = ""
	return m
}

func (m model) log() *slog.Logger { return loggerOrDiscard(m.deps.Logger) }

func (m model) View() string {
	wrap := lipgloss.NewStyle().Padding(1, 2)
	header := m.theme.Title.Render("buildhealth") + "\n" +
		m.theme.Subtitle.Render("Saved JUnit analyses and what was published to Jira") + "\n"

	if m.deps.Root != "" {
		header += m.theme.Help.Render("Workspace: "+m.deps.Root) + "\n"
	}

	var footer string
	if m.loading {
		footer = m.theme.Help.Render("loading…")
	}
	if m.toast != "" {
		footer = m.theme.Toast.Render(m.toast)
	}

	switch m.scr {
	case screenReports:
		body := m.reports.View()
		if !m.loading && len(m.reports.Items()) == 0 {
			body = "No saved reports yet.\n\nRun `buildhealth analyze` inside this workspace first."
		}
		help := m.theme.Help.Render("↑/↓ navigate • enter open • / search • r reload • q quit")
		return wrap.Render(header + "\n" + m.theme.Card.Render(body) + "\n" + footer + "\n" + help)

	case screenDetail:
		title := "Report"
		if m.current != nil {
			title = m.current.ID
		}
		card := m.theme.Card.Render(m.theme.Title.Render(title) + "\n\n" + m.detail.View())
		help := m.theme.Help.Render("↑/↓ scroll • esc/b back • q back")
		return wrap.Render(header + "\n" + card + "\n" + footer + "\n" + help)

	default:
		return wrap.Render(header + "\n" + "unknown state")
	}
}
