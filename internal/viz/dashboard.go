package viz

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/hydrosim/internal/aircraft"
	"github.com/san-kum/hydrosim/internal/experiment"
	"github.com/san-kum/hydrosim/internal/hydraulic"
	"github.com/san-kum/hydrosim/internal/metrics"
	"github.com/san-kum/hydrosim/internal/sim"
)

const (
	canvasWidth     = 36
	canvasHeight    = 10
	historyCapacity = 600
	graphWidth      = 60
	fullScalePsi    = 3000.
	maxSpeed        = 16

	// The PTU rotor is drawn at a fraction of its real speed so it stays
	// readable at terminal refresh rates.
	rotorDisplayScale = 1. / 50
)

type tickMsg time.Time

// Dashboard is the live cockpit view. It owns the frame loop: every tick
// advances the scripted aircraft by one or more frames and redraws.
type Dashboard struct {
	plant    sim.Plant
	aircraft *aircraft.Aircraft
	scenario string
	frameDt  float64

	t       float64
	frame   int
	speed   int
	values  hydraulic.MapWriter
	history map[hydraulic.Color][]float64

	canvas   *Canvas
	ptuAngle float64
	sweep    bool
	running  bool
	showHelp bool
	err      error
}

// NewDashboard wraps an experiment that has been set up.
func NewDashboard(exp *experiment.Experiment, frameDt float64) (*Dashboard, error) {
	if exp.Aircraft() == nil {
		return nil, experiment.ErrNotSetup
	}
	if frameDt <= 0 {
		return nil, fmt.Errorf("frame dt must be positive, got %g", frameDt)
	}
	d := &Dashboard{
		plant:    exp.Plant(),
		aircraft: exp.Aircraft(),
		scenario: exp.Scenario().Name,
		frameDt:  frameDt,
		speed:    1,
		values:   hydraulic.MapWriter{},
		history:  make(map[hydraulic.Color][]float64),
		canvas:   NewCanvas(canvasWidth, canvasHeight),
		running:  true,
	}
	d.plant.Write(d.values)
	return d, nil
}

func (d *Dashboard) tick() tea.Cmd {
	interval := time.Duration(d.frameDt * float64(time.Second))
	return tea.Tick(interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (d *Dashboard) Init() tea.Cmd { return d.tick() }

func (d *Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return d, d.handleKey(msg.String())
	case tickMsg:
		if d.running {
			for range d.speed {
				if err := d.step(); err != nil {
					d.err = err
					d.running = false
					break
				}
			}
		}
		d.draw()
		return d, d.tick()
	}
	return d, nil
}

func (d *Dashboard) handleKey(key string) tea.Cmd {
	switch key {
	case "q", "ctrl+c":
		return tea.Quit
	case " ":
		d.running = !d.running && d.err == nil
	case "?":
		d.showHelp = !d.showHelp
	case "t":
		NextTheme()
	case "+", "=":
		d.speed = min(d.speed*2, maxSpeed)
	case "-", "_":
		d.speed = max(d.speed/2, 1)
	case "s":
		d.sweep = !d.sweep
		if !d.sweep {
			d.aircraft.Do(func(a *aircraft.Aircraft) { a.CommandSurfaces(0) })
		}
	default:
		d.aircraft.Do(func(a *aircraft.Aircraft) { applyKey(a, key) })
	}
	return nil
}

// applyKey maps cockpit keys onto the panel, engines, flight state and
// failures. Unknown keys are ignored.
func applyKey(a *aircraft.Aircraft, key string) {
	engines := a.Engines()
	panel := a.Panel()
	switch key {
	case "1", "2":
		e := engines[key[0]-'1']
		e.SetMaster(!e.IsMasterOn())
	case "!", "@":
		e := engines[0]
		if key == "@" {
			e = engines[1]
		}
		if e.IsFailed() {
			e.Restore()
		} else {
			e.Fail()
		}
	case "p":
		panel.PTUAuto = !panel.PTUAuto
	case "b":
		panel.ParkingBrake = !panel.ParkingBrake
	case "r":
		panel.RATManOn = !panel.RATManOn
	case "y":
		panel.YellowEPumpOn = !panel.YellowEPumpOn
	case "h":
		panel.HandPump = !panel.HandPump
	case "G", "B", "Y":
		f := hydraulic.Failure{Kind: hydraulic.ReservoirLeak, Target: colorForKey(key)}
		a.SetFailure(f, !a.Failures().IsActive(f))
	case "a":
		f := a.Flight()
		f.OnGround = !f.OnGround
		f.IndicatedAirspeedKnots = 0
		if !f.OnGround {
			f.IndicatedAirspeedKnots = 250
		}
		a.SetFlight(f)
	case "i":
		f := a.Flight()
		if f.Attitude.BankDeg == 0 {
			f.Attitude.BankDeg = 180
		} else {
			f.Attitude.BankDeg = 0
		}
		a.SetFlight(f)
	}
}

func colorForKey(key string) string {
	switch key {
	case "B":
		return string(hydraulic.Blue)
	case "Y":
		return string(hydraulic.Yellow)
	default:
		return string(hydraulic.Green)
	}
}

func (d *Dashboard) step() error {
	if d.sweep {
		t := d.t
		d.aircraft.Do(func(a *aircraft.Aircraft) { a.CommandSurfaces(math.Sin(math.Pi * t)) })
	}
	if err := d.plant.Step(d.t, d.frameDt); err != nil {
		return fmt.Errorf("frame %d: %w", d.frame, err)
	}
	d.t += d.frameDt
	d.frame++

	d.values = hydraulic.MapWriter{}
	d.plant.Write(d.values)
	for _, c := range aircraft.Colors {
		h := append(d.history[c], d.values[metrics.SystemPressureSeries(c)])
		if len(h) > historyCapacity {
			h = h[1:]
		}
		d.history[c] = h
	}
	d.ptuAngle += d.values["HYD_PTU_SHAFT_RPM"] / 60 * 2 * math.Pi * d.frameDt * rotorDisplayScale
	return nil
}

// draw renders the three reservoirs as tanks filled to their gauge level
// and the PTU as a rotor turning with its shaft.
func (d *Dashboard) draw() {
	d.canvas.Clear()
	cfg := d.aircraft.Config()
	h := d.canvas.PixelHeight()

	tankW, gap := 10, 4
	for i, c := range aircraft.Colors {
		x0 := 2 + i*(tankW+gap)
		x1 := x0 + tankW
		y0, y1 := 2, h-3
		d.canvas.DrawRect(x0, y0, x1, y1)

		capacity := cfg.Circuit(c).ReservoirCapacity
		if capacity <= 0 {
			continue
		}
		fill := d.values[metrics.ReservoirLevelSeries(c)] / capacity
		fill = max(0, min(fill, 1))
		top := y1 - 1 - int(fill*float64(y1-y0-2))
		if top < y1-1 {
			d.canvas.FillRect(x0+2, top, x1-2, y1-2)
		}
	}

	cx := d.canvas.PixelWidth() - 14
	cy := h / 2
	r := min(12, cy-2)
	d.canvas.DrawCircle(cx, cy, r)
	for k := range 3 {
		th := d.ptuAngle + float64(k)*2*math.Pi/3
		d.canvas.DrawLine(cx, cy, cx+int(float64(r)*math.Cos(th)), cy+int(float64(r)*math.Sin(th)))
	}
}

func (d *Dashboard) View() string {
	theme := CurrentTheme
	title := lipgloss.NewStyle().Bold(true).Foreground(theme.Primary)

	var s strings.Builder
	s.WriteString(title.Render("HYDROSIM  "+strings.ToUpper(d.scenario)) + "  ")
	s.WriteString(d.status() + "\n\n")

	panels := make([]string, 0, len(aircraft.Colors))
	for _, c := range aircraft.Colors {
		panels = append(panels, d.circuitPanel(c))
	}
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, panels...) + "\n")

	graph := d.pressureGraph()
	side := lipgloss.NewStyle().Foreground(theme.Muted).Render(d.canvas.String())
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, graph, "  ", side) + "\n")

	s.WriteString(d.systemsLine() + "\n")
	s.WriteString(d.failuresLine() + "\n")
	if d.err != nil {
		s.WriteString(StatusAlert.Render("stopped: "+d.err.Error()) + "\n")
	}

	if d.showHelp {
		s.WriteString("\n" + helpText)
	} else {
		s.WriteString(KeyHint.Render("SP:pause 1/2:masters !/@:eng fail p:ptu r:rat G/B/Y:leak t:theme ?:help q:quit"))
	}
	return s.String()
}

func (d *Dashboard) status() string {
	label := fmt.Sprintf("t=%6.1fs x%d", d.t, d.speed)
	switch {
	case d.err != nil:
		return StatusAlert.Render("FAULT") + " " + label
	case !d.running:
		return StatusPaused.Render("PAUSED") + " " + label
	default:
		return StatusRunning.Render(AnimatedSpinner(d.frame)+" RUNNING") + " " + label
	}
}

func (d *Dashboard) circuitPanel(c hydraulic.Color) string {
	color := CurrentTheme.CircuitColor(c)
	pressure := d.values[metrics.SystemPressureSeries(c)]
	level := d.values[metrics.ReservoirLevelSeries(c)]
	prefix := "HYD_" + string(c)

	var b strings.Builder
	b.WriteString(MetricLabel.Render("pressure") + MetricValue.Render(fmt.Sprintf("%6.0f psi", pressure)) + "\n")
	b.WriteString(PressureBar(pressure, fullScalePsi, metrics.PressurisedPsi, 1450, 22, color) + "\n")
	b.WriteString(MetricLabel.Render("reservoir") + MetricValue.Render(fmt.Sprintf("%6.2f gal", level)) + "\n")
	b.WriteString(lipgloss.NewStyle().Foreground(color).Render(Sparkline(d.history[c], 0, fullScalePsi, 22)) + "\n")

	lamps := []string{}
	if _, ok := d.values[prefix+"_EDPUMP_LOW_PRESS"]; ok {
		lamps = append(lamps, Lamp("EDP LO", d.values[prefix+"_EDPUMP_LOW_PRESS"] > 0, CurrentTheme.Warning))
	}
	if _, ok := d.values[prefix+"_EPUMP_LOW_PRESS"]; ok {
		lamps = append(lamps, Lamp("ELEC LO", d.values[prefix+"_EPUMP_LOW_PRESS"] > 0, CurrentTheme.Warning))
	}
	lamps = append(lamps, Lamp("RSVR LO", d.values[prefix+"_RESERVOIR_LEVEL_IS_LOW"] > 0, CurrentTheme.Error))
	b.WriteString(strings.Join(lamps, " "))

	return BoxWithTitle(string(c), b.String(), 26, color)
}

func (d *Dashboard) pressureGraph() string {
	series := make([][]float64, 0, len(aircraft.Colors))
	colors := make([]asciigraph.AnsiColor, 0, len(aircraft.Colors))
	for _, c := range aircraft.Colors {
		if len(d.history[c]) < 2 {
			return Subtle.Render("waiting for data...")
		}
		series = append(series, d.history[c])
		colors = append(colors, ansiColor(c))
	}
	return asciigraph.PlotMany(series,
		asciigraph.Height(canvasHeight),
		asciigraph.Width(graphWidth),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(fullScalePsi+200),
		asciigraph.SeriesColors(colors...),
		asciigraph.Caption("system pressure (psi)"))
}

func ansiColor(c hydraulic.Color) asciigraph.AnsiColor {
	switch c {
	case hydraulic.Blue:
		return asciigraph.Blue
	case hydraulic.Yellow:
		return asciigraph.Yellow
	default:
		return asciigraph.Green
	}
}

func (d *Dashboard) systemsLine() string {
	v := d.values
	parts := []string{
		fmt.Sprintf("PTU %5.0f rpm", v["HYD_PTU_SHAFT_RPM"]),
		Lamp("BARK", v["HYD_PTU_BARK_STRENGTH"] > 0, CurrentTheme.Warning),
		fmt.Sprintf("RAT %3.0f%% %5.0f rpm", v["RAT_STOW_POSITION"]*100, v["RAT_RPM"]),
		fmt.Sprintf("N2 %4.1f/%4.1f", v["ENGINE_1_N2"], v["ENGINE_2_N2"]),
		Lamp("AC1", v["ELEC_AC_1_IS_POWERED"] > 0, CurrentTheme.Success),
		Lamp("AC2", v["ELEC_AC_2_IS_POWERED"] > 0, CurrentTheme.Success),
		Lamp("DC ESS", v["ELEC_DC_ESS_IS_POWERED"] > 0, CurrentTheme.Success),
	}
	return strings.Join(parts, "  ")
}

func (d *Dashboard) failuresLine() string {
	var names []string
	d.aircraft.Do(func(a *aircraft.Aircraft) {
		for _, f := range a.Failures().Active() {
			names = append(names, f.String())
		}
		for _, e := range a.Engines() {
			if e.IsFailed() {
				names = append(names, fmt.Sprintf("engine_%d", e.Number()))
			}
		}
	})
	if len(names) == 0 {
		return Subtle.Render("no active failures")
	}
	sort.Strings(names)
	return StatusAlert.Render("FAILURES: " + strings.Join(names, ", "))
}

const helpText = `KEYS
  space   pause / resume        + -   simulation speed
  1 2     engine masters        ! @   fail / restore engine
  p       PTU auto              b     parking brake
  r       RAT manual deploy     y     yellow electric pump
  h       hand pump             s     surface sweep
  G B Y   reservoir leak        a     airborne / on ground
  i       inverted flight       t     theme
  q       quit                  ?     this help
`

// RunDashboard runs the dashboard full screen until the user quits.
func RunDashboard(exp *experiment.Experiment, frameDt float64) error {
	d, err := NewDashboard(exp, frameDt)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(d, tea.WithAltScreen()).Run()
	return err
}
