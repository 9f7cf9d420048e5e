package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/depsight/depsight/pkg/inventory"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// browseCommand creates the browse command, an interactive report viewer.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse [dir]",
		Short: "Browse the dependency inventory interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBrowse(cmd.Context(), projectDir(args))
		},
	}
}

func (c *CLI) runBrowse(ctx context.Context, dir string) error {
	report, err := c.refresh(ctx, dir)
	if err != nil {
		return err
	}
	if len(report.Packages) == 0 {
		printInfo("No dependencies declared")
		return nil
	}

	program := tea.NewProgram(newReportModel(report), tea.WithContext(ctx))
	_, err = program.Run()
	return err
}

// =============================================================================
// reportModel - Interactive report browsing
// =============================================================================

// reportModel is the bubbletea model for browsing a report. Enter toggles
// a detail pane for the package under the cursor.
type reportModel struct {
	report *inventory.Report
	cursor int
	offset int
	height int
	detail bool
}

// newReportModel creates a browsing model over a non-empty report.
func newReportModel(r *inventory.Report) reportModel {
	return reportModel{report: r, height: 15}
}

func (m reportModel) Init() tea.Cmd {
	return nil
}

func (m reportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.detail {
				m.detail = false
				return m, nil
			}
			return m, tea.Quit
		case "up", "k":
			if m.detail {
				return m, nil
			}
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.detail {
				return m, nil
			}
			if m.cursor < len(m.report.Packages)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "enter":
			m.detail = !m.detail
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 6
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m reportModel) View() string {
	if m.detail {
		return m.detailView()
	}
	return m.listView()
}

func (m reportModel) listView() string {
	var b strings.Builder

	name := m.report.ProjectName
	if name == "" {
		name = "Dependencies"
	}
	b.WriteString(StyleTitle.Render(name))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ details  q quit"))
	b.WriteString("\n\n")

	packages := m.report.Packages
	end := min(m.offset+m.height, len(packages))

	rows := [][]string{}
	for i := m.offset; i < end; i++ {
		p := packages[i]

		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			p.Name,
			orDash(p.CurrentVersion),
			orDash(p.LatestVersion),
			statusLabel(p),
			usedLabel(p),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Package", "Current", "Latest", "Status", "Used").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}

			actualIdx := m.offset + row
			if actualIdx >= len(packages) {
				return lipgloss.NewStyle()
			}
			p := packages[actualIdx]
			isCurrent := actualIdx == m.cursor

			base := lipgloss.NewStyle()
			switch col {
			case 1:
				if !p.Used {
					base = base.Foreground(colorDim)
				} else {
					base = base.Foreground(colorWhite)
				}
			case 4:
				base = base.Foreground(statusColor(p))
			default:
				base = base.Foreground(colorGray)
			}
			if isCurrent {
				return base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(packages))))

	return b.String()
}

func (m reportModel) detailView() string {
	p := m.report.Packages[m.cursor]
	var b strings.Builder

	b.WriteString(StyleTitle.Render(p.Name))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("esc back  q quit"))
	b.WriteString("\n\n")

	key := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	row := func(k, v string) {
		b.WriteString(key.Render(k) + " " + v + "\n")
	}
	row("Declared", StyleValue.Render(p.VersionSpec))
	row("Scope", StyleValue.Render(string(p.Scope)))
	row("Current", StyleValue.Render(orDash(p.CurrentVersion)))
	row("Latest", StyleValue.Render(orDash(p.LatestVersion)))
	row("Status", statusText(p))
	row("Used", StyleValue.Render(usedLabel(p)))
	if p.Description != "" {
		row("About", StyleValue.Render(p.Description))
	}
	if p.Homepage != "" {
		row("Homepage", StyleLink.Render(p.Homepage))
	}

	return b.String()
}
