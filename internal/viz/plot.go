package viz

import (
	"fmt"

	"github.com/guptarohit/asciigraph"
)

// EnergyPlot renders a total-energy trace as an ascii graph.
func EnergyPlot(energies []float64, width, height int) string {
	if len(energies) < 2 {
		return "not enough samples to plot"
	}
	series := downsample(energies, width)
	return asciigraph.Plot(series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption("total energy"))
}

// SeriesPlot renders an arbitrary scalar trace.
func SeriesPlot(values []float64, caption string, width, height int) string {
	if len(values) < 2 {
		return fmt.Sprintf("not enough samples to plot %s", caption)
	}
	series := downsample(values, width)
	return asciigraph.Plot(series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption))
}

func downsample(values []float64, width int) []float64 {
	if width <= 0 || len(values) <= width {
		return values
	}
	step := len(values) / width
	out := make([]float64, 0, width)
	for i := 0; i < len(values); i += step {
		out = append(out, values[i])
	}
	return out
}
