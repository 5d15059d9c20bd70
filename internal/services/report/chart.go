package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/lensquant/lensquant/internal/models"
)

// RenderChangeChart renders a PNG bar chart of per-symbol daily change
// percentages. Returns raw PNG bytes.
func RenderChangeChart(quotes []models.Quote) ([]byte, error) {
	if len(quotes) == 0 {
		return nil, fmt.Errorf("need at least 1 quote, got 0")
	}

	up := drawing.ColorFromHex("16a34a")   // green-600
	down := drawing.ColorFromHex("dc2626") // red-600

	bars := make([]chart.Value, 0, len(quotes))
	for _, q := range quotes {
		color := up
		if q.ChangePct < 0 {
			color = down
		}
		bars = append(bars, chart.Value{
			Label: q.Symbol,
			Value: q.ChangePct,
			Style: chart.Style{FillColor: color, StrokeColor: color},
		})
	}

	graph := chart.BarChart{
		Title:    "Daily Change %",
		Width:    900,
		Height:   400,
		BarWidth: 60,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.1f%%", f)
				}
				return ""
			},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderIndicatorChart renders a PNG line chart for one indicator series.
// Returns raw PNG bytes.
func RenderIndicatorChart(indicator string, points []models.MacroPoint) ([]byte, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("need at least 2 data points, got %d", len(points))
	}

	// Series arrive newest first; plot oldest to newest.
	xValues := make([]time.Time, 0, len(points))
	yValues := make([]float64, 0, len(points))
	for i := len(points) - 1; i >= 0; i-- {
		t, err := time.Parse("2006-01-02", points[i].Date)
		if err != nil {
			continue
		}
		xValues = append(xValues, t)
		yValues = append(yValues, points[i].Value)
	}
	if len(xValues) < 2 {
		return nil, fmt.Errorf("not enough parseable dates in series")
	}

	series := chart.TimeSeries{
		Name: indicator,
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
			StrokeWidth: 2.5,
		},
		XValues: xValues,
		YValues: yValues,
	}

	graph := chart.Chart{
		Title:  indicator,
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 06")
				}
				return ""
			},
		},
		Series: []chart.Series{series},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}
