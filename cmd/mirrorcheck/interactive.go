package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mirrorcheck/mirrorcheck"
	"github.com/mirrorcheck/mirrorcheck/conformance"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	passStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	unresolvedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD75F"))

	refStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type browserState int

const (
	stateList browserState = iota
	stateDetail
)

type browserModel struct {
	report   *conformance.Report
	viewport viewport.Model
	selected int
	width    int
	height   int
	ready    bool
	state    browserState
}

func newBrowserModel(report *conformance.Report) *browserModel {
	return &browserModel{report: report, width: 80, height: 24}
}

func (m *browserModel) Init() tea.Cmd {
	return nil
}

func (m *browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, m.detailHeight())
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = m.detailHeight()
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.state == stateList && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateList && m.selected < len(m.report.Results)-1 {
				m.selected++
			}

		case "enter":
			if m.state == stateList && len(m.report.Results) > 0 {
				if !m.ready {
					m.viewport = viewport.New(m.width, m.detailHeight())
					m.ready = true
				}
				m.viewport.SetContent(m.detailContent())
				m.viewport.GotoTop()
				m.state = stateDetail
			}

		case "esc":
			if m.state == stateDetail {
				m.state = stateList
			}
		}
	}

	if m.state == stateDetail {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	return m, nil
}

// detailHeight leaves room for the title line and the help footer.
func (m *browserModel) detailHeight() int {
	h := m.height - 4
	if h < 3 {
		h = 3
	}
	return h
}

func (m *browserModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("mirrorcheck"))
	b.WriteString(" ")
	pass, fail, unresolved := m.report.Counts()
	b.WriteString(fmt.Sprintf("%d pairs: %s %s %s",
		len(m.report.Results),
		passStyle.Render(fmt.Sprintf("%d ok", pass)),
		failStyle.Render(fmt.Sprintf("%d mismatched", fail)),
		unresolvedStyle.Render(fmt.Sprintf("%d unresolved", unresolved))))
	b.WriteString("\n\n")

	switch m.state {
	case stateList:
		for i, res := range m.report.Results {
			line := m.formatResult(res)
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter detail • q quit"))

	case stateDetail:
		b.WriteString(m.viewport.View())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ scroll • esc back • q quit"))
	}

	return b.String()
}

func (m *browserModel) formatResult(res conformance.Result) string {
	marker := passStyle.Render("✓")
	note := fmt.Sprintf("%d bytes", res.Native.Size)
	switch res.Outcome {
	case conformance.Fail:
		marker = failStyle.Render("✗")
		note = fmt.Sprintf("%d != %d bytes", res.Binding.Size, res.Native.Size)
	case conformance.Unresolved:
		marker = unresolvedStyle.Render("?")
		note = fmt.Sprintf("%s side unresolved", res.Side)
	}

	label := res.Pair.Binding
	if res.Pair.Group != "" {
		label = "[" + res.Pair.Group + "] " + label
	}
	return fmt.Sprintf("%s %s %s %s  (%s)",
		marker, label, helpStyle.Render("vs"), res.Pair.Native, note)
}

func (m *browserModel) detailContent() string {
	res := m.report.Results[m.selected]
	var b strings.Builder

	if res.Pair.Group != "" {
		b.WriteString(helpStyle.Render("group: " + res.Pair.Group))
		b.WriteString("\n")
	}

	switch res.Outcome {
	case conformance.Pass:
		b.WriteString(passStyle.Render("PASS"))
		b.WriteString(fmt.Sprintf(" both sides are %d bytes\n", res.Native.Size))
	case conformance.Fail:
		b.WriteString(failStyle.Render("FAIL"))
		b.WriteString(" " + res.Reason + "\n")
	case conformance.Unresolved:
		b.WriteString(unresolvedStyle.Render("UNRESOLVED"))
		b.WriteString(fmt.Sprintf(" %s side: %s\n", res.Side, res.Reason))
	}
	b.WriteString("\n")

	writeSide(&b, "binding", res.Pair.Binding, res.Binding, res.Outcome != conformance.Unresolved || res.Side != conformance.SideBinding)
	b.WriteString("\n")
	writeSide(&b, "native", res.Pair.Native, res.Native, res.Outcome != conformance.Unresolved)

	return b.String()
}

// writeSide renders one measurement block; measured is false for the side an
// unresolved outcome never reached.
func writeSide(b *strings.Builder, label, ref string, m mirrorcheck.Measurement, measured bool) {
	b.WriteString(label + ": " + refStyle.Render(ref) + "\n")
	if !measured {
		b.WriteString(helpStyle.Render("  not measured") + "\n")
		return
	}
	b.WriteString(fmt.Sprintf("  size %d bytes", m.Size))
	if m.Align != 0 {
		b.WriteString(fmt.Sprintf(", align %d", m.Align))
	}
	b.WriteString("\n")
	if len(m.Members) == 0 {
		return
	}
	b.WriteString(helpStyle.Render("  offset  size  member") + "\n")
	for _, f := range m.Members {
		name := f.Name
		if name == "" {
			name = "<anonymous>"
		}
		b.WriteString(fmt.Sprintf("  %6d  %4d  %s\n", f.Offset, f.Size, name))
	}
}

func browseReport(report *conformance.Report) error {
	p := tea.NewProgram(newBrowserModel(report), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
