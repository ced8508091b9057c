package viz

import (
	"math"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/odelab/internal/dynamo"
)

func sampleTrajectory(n int) *dynamo.Trajectory {
	traj := dynamo.NewTrajectory(n)
	for i := 0; i < n; i++ {
		t := float64(i) / 10
		traj.Append(t, dynamo.State{math.Exp(-t), 1 - math.Exp(-t)})
	}
	return traj
}

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	c.Set(-1, 0)
	c.Set(4, 0)

	if c.Grid[0][0] != 0x2801 {
		t.Errorf("expected dot 1, got %U", c.Grid[0][0])
	}
	if c.Grid[0][1] != 0x2880 {
		t.Errorf("expected dot 8, got %U", c.Grid[0][1])
	}

	c.Clear()
	if c.String() != "⠀⠀\n" {
		t.Errorf("expected blank canvas, got %q", c.String())
	}
}

func TestDrawPathSpansCanvas(t *testing.T) {
	c := NewCanvas(10, 5)
	c.DrawPath([]float64{0, 1}, []float64{0, 1})

	// bottom-left and top-right sub-pixels are both lit
	if c.Grid[4][0]&0x40 == 0 {
		t.Error("expected bottom-left dot")
	}
	if c.Grid[0][9]&0x8 == 0 {
		t.Error("expected top-right dot")
	}
}

func TestDrawPathSkipsNonFinite(t *testing.T) {
	c := NewCanvas(4, 2)
	c.DrawPath([]float64{0, math.NaN(), 1}, []float64{0, 1, 1})
	if strings.Count(c.String(), "⠀") == 8 {
		t.Error("finite points should still be drawn")
	}
}

func TestPhaseCanvas(t *testing.T) {
	traj := sampleTrajectory(20)
	if _, err := PhaseCanvas(traj, 0, 2, 10, 5); err == nil {
		t.Error("expected error for out of range axis")
	}
	c, err := PhaseCanvas(traj, 0, 1, 10, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(strings.Split(strings.TrimRight(c.String(), "\n"), "\n")) != 5 {
		t.Error("expected 5 rows")
	}
}

func TestPlotComponents(t *testing.T) {
	out := PlotComponents(sampleTrajectory(30), []string{"A", "B"}, ThemeMinimal, 40, 8, "species")
	if !strings.Contains(out, "species") || !strings.Contains(out, "A") || !strings.Contains(out, "B") {
		t.Errorf("expected caption and legend in plot:\n%s", out)
	}

	if PlotComponents(dynamo.NewTrajectory(0), nil, ThemeMinimal, 40, 8, "") != "" {
		t.Error("expected empty plot for empty trajectory")
	}
	if PlotComponents(sampleTrajectory(1), nil, ThemeMinimal, 40, 8, "") == "" {
		t.Error("single row should still plot")
	}
}

func TestSparklineChart(t *testing.T) {
	if SparklineChart(nil, 10) != "" {
		t.Error("expected empty sparkline")
	}
	out := SparklineChart([]float64{0, 1, math.Inf(1)}, 10)
	if !strings.Contains(out, "!") {
		t.Error("non-finite values should be marked")
	}
}

func TestThemeCycle(t *testing.T) {
	th := Themes[0]
	for range Themes {
		th = th.Next()
	}
	if th.Name != Themes[0].Name {
		t.Errorf("expected cycle back to %s, got %s", Themes[0].Name, th.Name)
	}
	if GetTheme("nope").Name != Themes[0].Name {
		t.Error("unknown theme should fall back to the first")
	}
}

func TestWatchReplay(t *testing.T) {
	var m tea.Model = NewWatch("nobr", sampleTrajectory(3), []string{"A", "B"}, map[string]float64{"finite": 1}, time.Millisecond)

	tick := TickMsg(time.Now())
	for i := 0; i < 5; i++ {
		m, _ = m.Update(tick)
	}
	w := m.(Watch)
	if w.Cursor() != 2 {
		t.Errorf("expected cursor at last row, got %d", w.Cursor())
	}
	if w.Running() {
		t.Error("replay should stop at the end")
	}

	m, _ = w.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if m.(Watch).Cursor() != 1 {
		t.Errorf("expected cursor 1 after stepping back, got %d", m.(Watch).Cursor())
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})
	if m.(Watch).Theme().Name == Themes[0].Name {
		t.Error("expected theme to change")
	}

	view := m.View()
	if !strings.Contains(view, "nobr") || !strings.Contains(view, "finite") {
		t.Errorf("view missing title or metrics:\n%s", view)
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Error("expected quit command")
	}
}
