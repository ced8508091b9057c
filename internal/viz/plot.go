package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/odelab/internal/dynamo"
)

// PlotComponents draws every state component of traj against row index on
// one chart. Non-finite values are drawn as gaps. The legend maps colors to
// labels.
func PlotComponents(traj *dynamo.Trajectory, labels []string, theme Theme, width, height int, caption string) string {
	if traj.Len() == 0 {
		return ""
	}

	series := make([][]float64, traj.Dim())
	for i := range series {
		series[i] = gaps(traj.Column(i))
	}
	if traj.Len() == 1 {
		// asciigraph needs two samples to draw a segment
		for i := range series {
			series[i] = append(series[i], series[i][0])
		}
	}

	colors := make([]asciigraph.AnsiColor, len(series))
	for i := range colors {
		colors[i] = theme.seriesColor(i)
	}

	graph := asciigraph.PlotMany(series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(4),
		asciigraph.SeriesColors(colors...),
		asciigraph.Caption(caption),
	)
	return graph + "\n" + Legend(labels, theme, traj.Dim())
}

// PlotColumn draws a single component.
func PlotColumn(traj *dynamo.Trajectory, i, width, height int, caption string) string {
	data := gaps(traj.Column(i))
	if len(data) == 0 {
		return ""
	}
	if len(data) == 1 {
		data = append(data, data[0])
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// Legend renders "■ label" entries in series colors. Missing labels fall
// back to x0, x1, ...
func Legend(labels []string, theme Theme, dim int) string {
	parts := make([]string, dim)
	for i := 0; i < dim; i++ {
		name := fmt.Sprintf("x%d", i)
		if i < len(labels) {
			name = labels[i]
		}
		style := lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(uint(theme.seriesColor(i))))
		parts[i] = style.Render("■") + " " + name
	}
	return strings.Join(parts, "   ")
}

// PhaseCanvas draws component yIdx against xIdx on a Braille canvas of
// width x height cells.
func PhaseCanvas(traj *dynamo.Trajectory, xIdx, yIdx, width, height int) (*Canvas, error) {
	if xIdx < 0 || yIdx < 0 || xIdx >= traj.Dim() || yIdx >= traj.Dim() {
		return nil, fmt.Errorf("%w: axes %d,%d for %d components", dynamo.ErrDimensionMismatch, xIdx, yIdx, traj.Dim())
	}
	c := NewCanvas(width, height)
	c.DrawPath(traj.Column(xIdx), traj.Column(yIdx))
	return c, nil
}

// gaps replaces infinities with NaN, which asciigraph skips.
func gaps(vs []float64) []float64 {
	for i, v := range vs {
		if math.IsInf(v, 0) {
			vs[i] = math.NaN()
		}
	}
	return vs
}
