package viz

import (
	"fmt"
	"iter"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/pursuit"
	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/sim"
)

const (
	width           = 60
	height          = 20
	historyCapacity = 600
	trailCapacity   = 400
	defaultBatch    = 256
	maxBatch        = 1 << 20
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(48)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model pulls a run forward a batch of cycles per frame.
type Model struct {
	next  func() (sim.Sample, bool)
	stop  func()
	errf  func() error
	title string
	steps int64
	limit float64

	batch   int
	running bool
	done    bool
	err     error
	frame   int

	last    sim.Sample
	prev    sim.Sample
	history *sim.Window[float64]
	rabbit  *sim.Window[pursuit.Point]
	hunter  *sim.Window[pursuit.Point]
	canvas  *Canvas

	started  time.Time
	elapsed  time.Duration
	showHelp bool
}

// NewModel wraps seq, the lazy samples of a run of at most steps cycles;
// errf reports the run's error once seq is exhausted. limit, when
// positive, is the stop level used for the progress bar.
func NewModel(title string, seq iter.Seq[sim.Sample], errf func() error, steps int64, limit float64) Model {
	next, stop := iter.Pull(seq)
	return Model{
		next:    next,
		stop:    stop,
		errf:    errf,
		title:   title,
		steps:   steps,
		limit:   limit,
		batch:   defaultBatch,
		running: true,
		history: sim.NewWindow[float64](historyCapacity),
		rabbit:  sim.NewWindow[pursuit.Point](trailCapacity),
		hunter:  sim.NewWindow[pursuit.Point](trailCapacity),
		canvas:  NewCanvas(width, height),
		started: time.Now(),
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Err is the run's error after the program exits.
func (m Model) Err() error { return m.err }

// Last is the most recent sample pulled.
func (m Model) Last() sim.Sample { return m.last }

func (m Model) Done() bool { return m.done }

// Close stops the underlying run if it has not finished.
func (m Model) Close() { m.stop() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.stop()
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "+", "=":
			m.batch = min(m.batch*2, maxBatch)
		case "-", "_":
			m.batch = max(m.batch/2, 1)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		m.frame++
		if m.running && !m.done {
			m.advance()
		}
		return m, tick()
	}
	return m, nil
}

// advance pulls up to one batch of samples.
func (m *Model) advance() {
	for i := 0; i < m.batch; i++ {
		s, ok := m.next()
		if !ok {
			m.done = true
			m.err = m.errf()
			m.stop()
			break
		}
		m.prev, m.last = m.last, s
		if s.Tracked {
			m.rabbit.Push(s.Rabbit)
			m.hunter.Push(s.Hunter)
		}
	}
	m.history.Push(m.last.D)
	m.elapsed = time.Since(m.started)
	m.draw()
}

func (m *Model) draw() {
	m.canvas.Clear()
	rabbit, hunter := m.rabbit.Values(), m.hunter.Values()
	if len(rabbit) == 0 {
		return
	}
	b := BoundsOf(rabbit, hunter)
	m.canvas.DrawPath(rabbit, b)
	m.canvas.DrawPath(hunter, b)
}

func (m Model) progress() float64 {
	if m.limit > 0 {
		// D² grows roughly linearly in the cycle count.
		return (m.last.D * m.last.D) / (m.limit * m.limit)
	}
	if m.steps > 0 {
		return float64(m.last.Step) / float64(m.steps)
	}
	return 0
}

func (m Model) status() string {
	switch {
	case m.done && m.err != nil:
		return StatusFailed.Render("FAILED")
	case m.done:
		return StatusRunning.Render("DONE")
	case !m.running:
		return StatusPaused.Render("PAUSED")
	default:
		return StatusRunning.Render(AnimatedSpinner(m.frame) + " RUNNING")
	}
}

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(HeaderStyle.Render(strings.ToUpper(m.title)) + "\n")
	s.WriteString(m.status() + "\n\n")

	s.WriteString(ProgressBar(m.progress(), 30) + "\n\n")
	s.WriteString(Row("cycle", fmt.Sprintf("%d", m.last.Step)) + "\n")
	s.WriteString(Row("D", fmt.Sprintf("%.12g", m.last.D)) + "\n")
	if m.last.Step > 0 {
		s.WriteString(Row("L", fmt.Sprintf("%.12g", m.last.L)) + "\n")
		s.WriteString(Row("ΔD", fmt.Sprintf("%.3e", m.last.D-m.prev.D)) + "\n")
	}
	if m.last.Tracked {
		s.WriteString(Row("heading", fmt.Sprintf("%+.6f", m.last.Angle)) + "\n")
	}
	if secs := m.elapsed.Seconds(); secs > 0 {
		s.WriteString(Row("rate", fmt.Sprintf("%.0f cycles/s", float64(m.last.Step)/secs)) + "\n")
	}
	s.WriteString(Row("batch", fmt.Sprintf("%d", m.batch)) + "\n")
	if m.err != nil {
		s.WriteString("\n" + StatusFailed.Render(m.err.Error()) + "\n")
	}

	if hist := m.history.Values(); len(hist) > 1 {
		deltas := make([]float64, len(hist)-1)
		for i := range deltas {
			deltas[i] = hist[i+1] - hist[i]
		}
		s.WriteString(Row("ΔD trend", Sparkline(deltas, 24)) + "\n")
		chart := asciigraph.Plot(hist, asciigraph.Height(6), asciigraph.Width(36), asciigraph.Caption("D per frame"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	s.WriteString(KeyHint.Render("SP:Pause +/-:Speed ?:Help Q:Quit"))

	statsView := statsStyle.Render(s.String())
	view := statsView
	if m.last.Tracked {
		legend := RabbitStyle.Render("rabbit") + " / " + HunterStyle.Render("hunter")
		canvasView := canvasStyle.Render(m.canvas.String() + legend)
		view = lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	}

	if m.showHelp {
		help := Panel.Render(strings.Join([]string{
			Title.Render("KEYS"),
			"Space  pause or resume",
			"+ / -  double or halve cycles per frame",
			"?      toggle this help",
			"Q      quit",
		}, "\n"))
		return help + "\n\n" + view
	}
	return view
}
