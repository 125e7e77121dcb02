package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/trunklab/trunksim/internal/engine"
	"github.com/trunklab/trunksim/internal/trunk"
)

const (
	canvasWidth     = 48
	canvasHeight    = 16
	historyCapacity = 600
	stepsPerFrame   = 5
)

type TickMsg time.Time

// Model runs an engine live in the terminal: a phase trail on a braille
// canvas, an energy trace, and a stats panel.
type Model struct {
	eng           *engine.Engine
	state         *trunk.State
	initial       *trunk.State
	name          string
	canvas        *Canvas
	energyHistory []float64
	scale         float64
	frameRate     int
	running       bool
	err           error
}

func NewModel(eng *engine.Engine, initial *trunk.State, name string, frameRate int) Model {
	if frameRate <= 0 {
		frameRate = 30
	}
	return Model{
		eng:           eng,
		state:         initial.Clone(),
		initial:       initial.Clone(),
		name:          name,
		canvas:        NewCanvas(canvasWidth, canvasHeight),
		energyHistory: make([]float64, 0, historyCapacity),
		scale:         2.0,
		frameRate:     frameRate,
		running:       true,
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.frameRate), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.state = m.initial.Clone()
			m.eng.Reset()
			m.canvas.Clear()
			m.energyHistory = m.energyHistory[:0]
		case "+":
			m.scale *= 0.8
		case "-":
			m.scale *= 1.25
		}
		return m, nil

	case TickMsg:
		if m.running && m.err == nil {
			for i := 0; i < stepsPerFrame; i++ {
				next, err := m.eng.Advance(m.state)
				if err != nil {
					m.err = err
					break
				}
				m.state = next
			}
			x, _ := m.state.Split()
			if len(x) >= 2 {
				m.canvas.PlotPoint(x[0], x[1], m.scale)
			}
			m.energyHistory = append(m.energyHistory, m.state.Energy)
			if len(m.energyHistory) > historyCapacity {
				m.energyHistory = m.energyHistory[1:]
			}
		}
		return m, m.tick()
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("trunksim live — %s (%s)", m.name, m.eng.Scheme())))
	b.WriteString("\n")

	left := canvasStyle.Render(m.canvas.String())
	right := statsStyle.Render(m.statsView())
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))

	if len(m.energyHistory) > 2 {
		b.WriteString(graphStyle.Render(EnergyPlot(m.energyHistory, 60, 8)))
	}
	if m.err != nil {
		b.WriteString("\n" + failStyle.Render(m.err.Error()))
	}
	b.WriteString(helpStyle.Render("\n[space] pause  [r] reset  [+/-] zoom  [q] quit"))
	return b.String()
}

func (m Model) statsView() string {
	x, v := m.state.Split()
	rows := []struct {
		label string
		value string
	}{
		{"time", fmt.Sprintf("%.2f", m.eng.Time())},
		{"energy", fmt.Sprintf("%.6f", m.state.Energy)},
		{"speed", fmt.Sprintf("%.4f", v.Norm())},
		{"|x|", fmt.Sprintf("%.4f", x.Norm())},
		{"gamma", fmt.Sprintf("%.3f", m.eng.Thermo().Gamma())},
		{"sigma", fmt.Sprintf("%.3f", m.eng.Thermo().Sigma())},
		{"noise mode", string(m.eng.Thermo().Mode())},
	}

	var b strings.Builder
	for _, r := range rows {
		b.WriteString(labelStyle.Render(r.label))
		b.WriteString(valueStyle.Render(r.value))
		b.WriteByte('\n')
	}
	if !m.running {
		b.WriteString("\npaused")
	}
	return b.String()
}

// RunLive blocks running the live view until the user quits.
func RunLive(eng *engine.Engine, initial *trunk.State, name string, frameRate int) error {
	p := tea.NewProgram(NewModel(eng, initial, name, frameRate))
	_, err := p.Run()
	return err
}
