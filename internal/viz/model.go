package viz

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/springsim/internal/config"
	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/experiment"
)

const (
	fineStep   = 0.01
	coarseStep = 0.1
	barWidth   = 24
	axisLabels = 12
	minPlot    = 20
)

type frameMsg struct{}

func frame() tea.Cmd {
	return tea.Tick(time.Second/axisFPS, func(time.Time) tea.Msg { return frameMsg{} })
}

// Model is the bubbletea model for the slider UI.
type Model struct {
	exp       *experiment.Experiment
	keys      keyMap
	help      help.Model
	cursor    int
	plotW     int
	plotH     int
	axis      axis
	animating bool
	err       error
}

func NewModel(exp *experiment.Experiment, plot config.PlotConfig) Model {
	m := Model{
		exp:   exp,
		keys:  defaultKeys(),
		help:  help.New(),
		plotW: plot.Width,
		plotH: plot.Height,
		axis:  newAxis(),
	}
	m.axis.retarget(exp.Series())
	return m
}

// Run starts the full-screen UI and blocks until the user quits.
func Run(exp *experiment.Experiment, plot config.PlotConfig) error {
	_, err := tea.NewProgram(NewModel(exp, plot), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.plotW = max(msg.Width-axisLabels, minPlot)
		m.help.Width = msg.Width
		return m, nil
	case frameMsg:
		m.axis.step()
		if m.axis.settled() {
			m.animating = false
			return m, nil
		}
		return m, frame()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(dynamo.ParamNames)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Left):
		return m.nudge(-fineStep)
	case key.Matches(msg, m.keys.Right):
		return m.nudge(fineStep)
	case key.Matches(msg, m.keys.CoarseDown):
		return m.nudge(-coarseStep)
	case key.Matches(msg, m.keys.CoarseUp):
		return m.nudge(coarseStep)
	case key.Matches(msg, m.keys.Reset):
		m.err = m.exp.Reset()
		return m.rescale()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// nudge moves the selected slider by frac of its range. A value already at
// or beyond the edge it is being pushed toward stays where it is.
func (m Model) nudge(frac float64) (Model, tea.Cmd) {
	name := dynamo.ParamNames[m.cursor]
	r, err := config.BoundsFor(name)
	if err != nil {
		m.err = err
		return m, nil
	}
	cur, err := m.exp.Params().Get(name)
	if err != nil {
		m.err = err
		return m, nil
	}
	if (frac < 0 && cur <= r.Min) || (frac > 0 && cur >= r.Max) {
		return m, nil
	}

	v := r.Clamp(cur + frac*r.Span())
	if v == cur {
		return m, nil
	}
	if err := m.exp.SetParam(name, v); err != nil {
		m.err = err
		return m, nil
	}
	m.err = nil
	return m.rescale()
}

func (m Model) rescale() (Model, tea.Cmd) {
	m.axis.retarget(m.exp.Series())
	if m.animating || m.axis.settled() {
		return m, nil
	}
	m.animating = true
	return m, frame()
}

func (m Model) View() string {
	var s strings.Builder

	s.WriteString(Title.Render("SPRINGSIM") + Subtle.Render("  damped spring, semi-implicit euler") + "\n\n")
	s.WriteString(m.sliders() + "\n")

	ts := m.exp.Series()
	if ts.Len() > 0 {
		chart := plotWithin(ts.Elongations, m.axis.lo, m.axis.hi, m.plotW, m.plotH, "elongation vs sample")
		s.WriteString(Panel.Render(chart) + "\n")
	}

	s.WriteString(m.summary() + "\n")
	if m.err != nil {
		s.WriteString(ErrorText.Render(m.err.Error()) + "\n")
	}
	s.WriteString("\n" + m.help.View(m.keys))
	return s.String()
}

func (m Model) sliders() string {
	p := m.exp.Params()
	var s strings.Builder
	for i, name := range dynamo.ParamNames {
		r := config.Bounds[name]
		v, _ := p.Get(name)

		filled := int((v - r.Min) / r.Span() * barWidth)
		filled = max(0, min(barWidth, filled))
		bar := BarFilled.Render(strings.Repeat("█", filled)) + BarEmpty.Render(strings.Repeat("░", barWidth-filled))

		label := fmt.Sprintf("  %-14s", config.Labels[name])
		if i == m.cursor {
			label = Selected.Render(fmt.Sprintf("> %-14s", config.Labels[name]))
		}
		s.WriteString(fmt.Sprintf("%s %s %s\n", label, bar, MetricValue.Render(fmt.Sprintf("%.3f", v))))
	}
	return s.String()
}

func (m Model) summary() string {
	ms := m.exp.Metrics()
	line := MetricLabel.Render("samples") + MetricValue.Render(fmt.Sprintf("%d", m.exp.Series().Len()))
	for _, name := range []string{"max_elongation", "rms_elongation", "final_elongation"} {
		if v, ok := ms[name]; ok {
			line += "  " + Subtle.Render(name+" ") + MetricValue.Render(fmt.Sprintf("%.4f", v))
		}
	}
	return line
}
