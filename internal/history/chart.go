package history

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// ChartHandler renders the ring as an HTML line chart. This is a
// debugging-only endpoint (no auth) to eyeball the temperature trend without
// the dashboard frontend.
func (r *Ring) ChartHandler(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	readings := r.Readings()
	if len(readings) == 0 {
		http.Error(w, "no temperature history recorded", http.StatusNotFound)
		return
	}

	x := make([]string, 0, len(readings))
	maxSeries := make([]opts.LineData, 0, len(readings))
	minSeries := make([]opts.LineData, 0, len(readings))
	for _, rd := range readings {
		x = append(x, rd.Time)
		maxSeries = append(maxSeries, opts.LineData{Value: rd.Max})
		minSeries = append(minSeries, opts.LineData{Value: rd.Min})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Temperature History",
			Subtitle: fmt.Sprintf("readings=%d", len(readings)),
		}),
	)
	line.SetXAxis(x).
		AddSeries("max", maxSeries).
		AddSeries("min", minSeries)

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		http.Error(w, "failed to render chart", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
