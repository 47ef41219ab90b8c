// Package charts renders category breakdowns as PNG images.
package charts

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"

	"pktracker/internal/core"
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("no data to chart")

// ContentType of every rendered chart.
const ContentType = "image/png"

var background = chart.Style{
	Padding:   chart.Box{Top: 40, Left: 40, Right: 40, Bottom: 40},
	FillColor: chart.ColorWhite,
}

// CategoryPie renders the breakdown as a pie chart, one slice per category
// labelled with its amount and share.
func CategoryPie(b core.CategoryBreakdown) ([]byte, error) {
	total := b.Total()
	if total <= 0 {
		return nil, ErrNoData
	}

	values := make([]chart.Value, 0, len(b.Categories))
	for i, c := range b.Categories {
		amt := b.Amounts[i]
		if amt <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s: Rs %d (%.1f%%)", c, amt, float64(amt)/float64(total)*100),
			Value: float64(amt),
			Style: chart.Style{FontSize: 11, FontColor: chart.ColorBlack},
		})
	}

	pie := chart.PieChart{
		Title:      "Spending by category",
		Width:      720,
		Height:     720,
		Values:     values,
		Background: background,
	}

	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render category pie: %w", err)
	}
	return buf.Bytes(), nil
}

// CategoryBars renders the breakdown as a bar chart. Used for the forecast
// window where relative size matters more than share.
func CategoryBars(title string, b core.CategoryBreakdown) ([]byte, error) {
	if b.Total() <= 0 {
		return nil, ErrNoData
	}

	bars := make([]chart.Value, len(b.Categories))
	for i, c := range b.Categories {
		bars[i] = chart.Value{Label: string(c), Value: float64(b.Amounts[i])}
	}

	graph := chart.BarChart{
		Title:      title,
		Width:      900,
		Height:     480,
		BarWidth:   60,
		Background: background,
		YAxis: chart.YAxis{
			ValueFormatter: func(v any) string {
				return fmt.Sprintf("Rs %.0f", v.(float64))
			},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render category bars: %w", err)
	}
	return buf.Bytes(), nil
}
