package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/hydrosim/internal/experiment"
)

// Builder returns a set up experiment for the named scenario.
type Builder func(scenario string) (*experiment.Experiment, error)

const (
	stateMenu = iota
	stateSim
)

type picker struct {
	state     int
	cursor    int
	scenarios []experiment.Scenario
	build     Builder
	frameDt   float64
	err       error
	dashboard *Dashboard
}

// NewPicker lists the registry's scenarios and starts the dashboard on
// the one selected.
func NewPicker(reg *experiment.Registry, build Builder, frameDt float64) tea.Model {
	p := &picker{build: build, frameDt: frameDt}
	for _, name := range reg.List() {
		s, _ := reg.Get(name)
		p.scenarios = append(p.scenarios, s)
	}
	return p
}

func (p *picker) Init() tea.Cmd { return nil }

func (p *picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if p.state == stateSim {
		_, cmd := p.dashboard.Update(msg)
		return p, cmd
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return p, tea.Quit
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.scenarios)-1 {
			p.cursor++
		}
	case "enter", " ":
		return p, p.start()
	}
	return p, nil
}

func (p *picker) start() tea.Cmd {
	if len(p.scenarios) == 0 {
		return nil
	}
	exp, err := p.build(p.scenarios[p.cursor].Name)
	if err != nil {
		p.err = err
		return nil
	}
	d, err := NewDashboard(exp, p.frameDt)
	if err != nil {
		p.err = err
		return nil
	}
	p.dashboard, p.state, p.err = d, stateSim, nil
	return d.Init()
}

func (p *picker) View() string {
	if p.state == stateSim {
		return p.dashboard.View()
	}

	theme := CurrentTheme
	h := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	sub := lipgloss.NewStyle().Foreground(theme.Muted)
	sel := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	desc := lipgloss.NewStyle().Foreground(theme.Yellow)

	var b strings.Builder
	b.WriteString("\n\n    " + h.Render("HYDROSIM") + "\n    " + sub.Render("A320 hydraulic testbed") + "\n    " + sub.Render("─────────────────────────") + "\n\n")
	for i, s := range p.scenarios {
		name := fmt.Sprintf("%-16s", s.Name)
		if i == p.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", h.Render("▸"), sel.Render(name), desc.Render(s.Description)))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", sub.Render(name), sub.Render(s.Description)))
		}
	}
	if p.err != nil {
		b.WriteString("\n    " + StatusAlert.Render(p.err.Error()) + "\n")
	}
	b.WriteString("\n    " + KeyHint.Render("j/k navigate  enter start  q quit") + "\n")
	return b.String()
}

// RunInteractive shows the scenario picker full screen.
func RunInteractive(reg *experiment.Registry, build Builder, frameDt float64) error {
	_, err := tea.NewProgram(NewPicker(reg, build, frameDt), tea.WithAltScreen()).Run()
	return err
}
