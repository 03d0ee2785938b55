package stats

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	chartWidth  = 800
	chartHeight = 400
)

// CumulativeScores returns the running round score of each contestant,
// starting with round 0 at zero. Bonus points are not part of the series.
func CumulativeScores(s ContestantStats) []int {
	series := make([]int, len(s.RoundPerformance)+1)
	for i, r := range s.RoundPerformance {
		series[i+1] = series[i] + r.Points
	}
	return series
}

// RenderChart draws the cumulative score of every contestant as a PNG
// line chart, one line per contestant.
func RenderChart(snapshot Snapshot) ([]byte, error) {
	var series []chart.Series
	lo, hi := 0, 0
	for _, s := range snapshot {
		if s.TotalRounds == 0 {
			continue
		}
		cum := CumulativeScores(s)
		xs := make([]float64, len(cum))
		ys := make([]float64, len(cum))
		for i, v := range cum {
			xs[i] = float64(i)
			ys[i] = float64(v)
			lo = min(lo, v)
			hi = max(hi, v)
		}
		style := chart.Style{StrokeWidth: 2, DotWidth: 4}
		if s.Color != "" {
			style.StrokeColor = drawing.ColorFromHex(strings.TrimPrefix(s.Color, "#"))
			style.DotColor = style.StrokeColor
		}
		series = append(series, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: ys,
			Style:   style,
		})
	}
	if len(series) == 0 {
		return renderNoRounds()
	}

	graph := chart.Chart{
		Width:  chartWidth,
		Height: chartHeight,
		XAxis: chart.XAxis{
			Name: "Round",
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%d", int(f))
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			Name:  "Score",
			Range: &chart.ContinuousRange{Min: float64(lo - 1), Max: float64(hi + 1)},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	buf := bytes.NewBuffer(nil)
	if err := graph.Render(chart.PNG, buf); err != nil {
		return nil, fmt.Errorf("rendering score chart: %w", err)
	}
	return buf.Bytes(), nil
}

// renderNoRounds draws a placeholder directly on a renderer since a
// chart needs at least one series.
func renderNoRounds() ([]byte, error) {
	const (
		msg    = "No rounds played yet"
		width  = 400
		height = 200
	)

	r, err := chart.PNG(width, height)
	if err != nil {
		return nil, fmt.Errorf("creating renderer: %w", err)
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return nil, fmt.Errorf("loading chart font: %w", err)
	}

	r.SetFillColor(drawing.ColorWhite)
	r.MoveTo(0, 0)
	r.LineTo(width, 0)
	r.LineTo(width, height)
	r.LineTo(0, height)
	r.Close()
	r.Fill()

	r.SetFont(font)
	r.SetFontColor(drawing.ColorBlack)
	r.SetFontSize(12.0)
	tb := r.MeasureText(msg)
	r.Text(msg, (width-tb.Width())/2, (height+tb.Height())/2)

	buf := bytes.NewBuffer(nil)
	if err := r.Save(buf); err != nil {
		return nil, fmt.Errorf("rendering empty chart: %w", err)
	}
	return buf.Bytes(), nil
}
