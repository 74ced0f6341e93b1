package charts

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"

	"pocketrithm/internal/core"
)

// Renderer turns dashboard aggregates into PNG images.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

func formatMoney(v interface{}) string {
	return fmt.Sprintf("%.0f", v.(float64))
}

// CategorySpending renders a bar chart of spending per category. Returns
// nil bytes when there is nothing to draw.
func (r *Renderer) CategorySpending(month core.Period, byCategory []core.CategoryAmount) ([]byte, error) {
	if len(byCategory) == 0 {
		return nil, nil
	}

	bars := make([]chart.Value, 0, len(byCategory))
	for _, c := range byCategory {
		bars = append(bars, chart.Value{
			Label: c.Name,
			Value: float64(c.Amount),
			Style: chart.Style{
				StrokeColor: chart.ColorBlue,
				FillColor:   chart.ColorBlue.WithAlpha(180),
			},
		})
	}

	graph := chart.BarChart{
		Title: fmt.Sprintf("Spending by category, %s", month),
		TitleStyle: chart.Style{
			FontSize:  14,
			FontColor: chart.ColorBlack,
		},
		Width:    800,
		Height:   400,
		BarWidth: 60,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    50,
				Left:   50,
				Right:  50,
				Bottom: 50,
			},
			FillColor: chart.ColorWhite,
		},
		YAxis: chart.YAxis{
			ValueFormatter: formatMoney,
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render category chart: %w", err)
	}
	return buffer.Bytes(), nil
}

// TypeBreakdown renders a pie chart of the need/desire/lack split. Slices
// under 1% of the total are omitted so the labels stay readable.
func (r *Renderer) TypeBreakdown(byType map[core.ExpenseType]int64) ([]byte, error) {
	total := int64(0)
	for _, amount := range byType {
		total += amount
	}
	if total <= 0 {
		return nil, nil
	}

	values := make([]chart.Value, 0, len(byType))
	for _, t := range []core.ExpenseType{core.Need, core.Desire, core.Lack} {
		amount := byType[t]
		pct := float64(amount) / float64(total) * 100
		if pct <= 1.0 {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s: %d (%.1f%%)", t, amount, pct),
			Value: float64(amount),
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		})
	}

	pie := chart.PieChart{
		Width:  800,
		Height: 800,
		Values: values,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    50,
				Left:   50,
				Right:  50,
				Bottom: 50,
			},
			FillColor: chart.ColorWhite,
		},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := pie.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render type breakdown: %w", err)
	}
	return buffer.Bytes(), nil
}
