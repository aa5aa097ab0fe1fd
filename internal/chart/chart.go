// Package chart renders the report's bar, pie and line charts as PNG images.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	gochart "github.com/wcharczuk/go-chart/v2"
)

var (
	ErrNoData     = errors.New("chart has no data")
	ErrBadPieData = errors.New("pie values must be non-negative with a positive total")
)

// NamedValue is one labelled data point.
type NamedValue struct {
	Label string
	Value float64
}

// scoreRange is the fixed y axis of the score charts. Ranges are mutated
// while rendering, so each chart gets its own.
func scoreRange() *gochart.ContinuousRange {
	return &gochart.ContinuousRange{Min: 0, Max: 5}
}

// Bar renders named scores on a 0-5 axis.
func Bar(values []NamedValue) ([]byte, error) {
	if len(values) == 0 {
		return nil, ErrNoData
	}
	bars := make([]gochart.Value, len(values))
	for i, v := range values {
		bars[i] = gochart.Value{Label: v.Label, Value: v.Value}
	}
	graph := gochart.BarChart{
		Title:    "AI Scores by Section",
		Width:    600,
		Height:   300,
		BarWidth: 60,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40},
		},
		YAxis: gochart.YAxis{Range: scoreRange()},
		Bars:  bars,
	}
	return render("bar", graph.Render)
}

// Pie renders a distribution with each slice labelled by its share.
func Pie(values []NamedValue) ([]byte, error) {
	if len(values) == 0 {
		return nil, ErrNoData
	}
	total := 0.0
	for _, v := range values {
		if v.Value < 0 {
			return nil, ErrBadPieData
		}
		total += v.Value
	}
	if total == 0 {
		return nil, ErrBadPieData
	}

	slices := make([]gochart.Value, len(values))
	for i, v := range values {
		slices[i] = gochart.Value{
			Label: fmt.Sprintf("%s (%.1f%%)", v.Label, v.Value/total*100),
			Value: v.Value,
		}
	}
	graph := gochart.PieChart{
		Title:  "Tier Distribution",
		Width:  500,
		Height: 500,
		Values: slices,
	}
	return render("pie", graph.Render)
}

// Line renders a score sequence on a 0-5 axis, one tick per point.
func Line(values []NamedValue) ([]byte, error) {
	if len(values) == 0 {
		return nil, ErrNoData
	}
	xs := make([]float64, len(values))
	ys := make([]float64, len(values))
	ticks := make([]gochart.Tick, len(values))
	for i, v := range values {
		xs[i] = float64(i + 1)
		ys[i] = v.Value
		ticks[i] = gochart.Tick{Value: xs[i], Label: v.Label}
	}
	// The renderer needs a non-zero x delta; a lone point is drawn as a
	// flat segment with only its own tick labelled.
	if len(xs) == 1 {
		xs = append(xs, xs[0]+1)
		ys = append(ys, ys[0])
	}
	graph := gochart.Chart{
		Title:  "AI Readiness Score Trend",
		Width:  600,
		Height: 300,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40},
		},
		XAxis: gochart.XAxis{
			Range: &gochart.ContinuousRange{Min: 0, Max: float64(len(xs) + 1)},
			Ticks: ticks,
		},
		YAxis: gochart.YAxis{Range: scoreRange()},
		Series: []gochart.Series{
			gochart.ContinuousSeries{
				Name:    "Score",
				XValues: xs,
				YValues: ys,
				Style: gochart.Style{
					StrokeWidth: 2,
					DotWidth:    4,
				},
			},
		},
	}
	return render("line", graph.Render)
}

func render(kind string, fn func(gochart.RendererProvider, io.Writer) error) ([]byte, error) {
	var buf bytes.Buffer
	if err := fn(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render %s chart: %w", kind, err)
	}
	return buf.Bytes(), nil
}
