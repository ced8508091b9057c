package viz

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/odelab/internal/dynamo"
)

type TickMsg time.Time

// Watch replays a stored trajectory one row per tick.
type Watch struct {
	title    string
	traj     *dynamo.Trajectory
	labels   []string
	metrics  map[string]float64
	theme    Theme
	cursor   int
	running  bool
	width    int
	height   int
	interval time.Duration
}

func NewWatch(title string, traj *dynamo.Trajectory, labels []string, metrics map[string]float64, interval time.Duration) Watch {
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	return Watch{
		title:    title,
		traj:     traj,
		labels:   labels,
		metrics:  metrics,
		theme:    Themes[0],
		running:  true,
		width:    80,
		height:   24,
		interval: interval,
	}
}

func (m Watch) Cursor() int   { return m.cursor }
func (m Watch) Running() bool { return m.running }
func (m Watch) Theme() Theme  { return m.theme }

func (m Watch) Init() tea.Cmd { return m.tick() }

func (m Watch) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Watch) last() int { return max(m.traj.Len()-1, 0) }

func (m Watch) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if m.cursor >= m.last() {
				m.cursor = 0
			}
			m.running = !m.running
		case "left", "h":
			m.running = false
			m.cursor = max(m.cursor-1, 0)
		case "right", "l":
			m.running = false
			m.cursor = min(m.cursor+1, m.last())
		case "home", "r":
			m.cursor = 0
		case "t":
			m.theme = m.theme.Next()
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case TickMsg:
		if m.running {
			if m.cursor < m.last() {
				m.cursor++
			} else {
				m.running = false
			}
		}
		return m, m.tick()
	}
	return m, nil
}

func (m Watch) View() string {
	if m.traj.Len() == 0 {
		return "empty trajectory\n"
	}

	var b strings.Builder
	b.WriteString(TitleStyle(m.theme).Render(m.title) + "\n\n")

	status := StatusPaused.Render("⏸ paused")
	if m.running {
		status = StatusRunning.Render("▶ playing")
	}
	t, y := m.traj.At(m.cursor)
	progress := 1.0
	if m.last() > 0 {
		progress = float64(m.cursor) / float64(m.last())
	}
	fmt.Fprintf(&b, "%s  %s  %s %s  %s\n\n",
		status,
		ProgressBar(progress, 30),
		MetricLabel.Render("t ="),
		MetricValue.Render(fmt.Sprintf("%.4g", t)),
		Subtle.Render(fmt.Sprintf("row %d/%d", m.cursor+1, m.traj.Len())),
	)

	prefix := &dynamo.Trajectory{
		Times:  m.traj.Times[:m.cursor+1],
		States: m.traj.States[:m.cursor+1],
	}
	plotW := max(m.width-12, 20)
	plotH := max(m.height/2, 6)
	b.WriteString(PlotComponents(prefix, m.labels, m.theme, plotW, plotH, "") + "\n\n")

	for i, v := range y {
		name := fmt.Sprintf("x%d", i)
		if i < len(m.labels) {
			name = m.labels[i]
		}
		fmt.Fprintf(&b, "  %s %s\n", MetricLabel.Render(fmt.Sprintf("%-8s", name)), MetricValue.Render(fmt.Sprintf("%.6g", v)))
	}

	if len(m.metrics) > 0 {
		b.WriteString("\n" + Separator(min(m.width, 60)) + "\n")
		names := make([]string, 0, len(m.metrics))
		for name := range m.metrics {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "  %s %s\n", MetricLabel.Render(fmt.Sprintf("%-28s", name)), MetricValue.Render(fmt.Sprintf("%.6g", m.metrics[name])))
		}
	}

	b.WriteString("\n" + KeyHint.Render("space play/pause · ←/→ step · r rewind · t theme ("+m.theme.Name+") · q quit") + "\n")
	return b.String()
}

func RunWatch(w Watch) error {
	_, err := tea.NewProgram(w, tea.WithAltScreen()).Run()
	return err
}
