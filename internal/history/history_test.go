package history

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestRingFIFOEviction(t *testing.T) {
	r := NewRing(3)
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		r.Record(base.Add(time.Duration(i)*time.Second), float64(30+i), float64(20+i))
	}

	if r.Len() != 3 {
		t.Fatalf("Len = %d, want 3", r.Len())
	}

	got := r.Readings()
	want := []Reading{
		{Time: "12:00:02", Max: 32, Min: 22, At: base.Add(2 * time.Second)},
		{Time: "12:00:03", Max: 33, Min: 23, At: base.Add(3 * time.Second)},
		{Time: "12:00:04", Max: 34, Min: 24, At: base.Add(4 * time.Second)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("readings mismatch (-want +got):\n%s", diff)
	}
}

func TestRingEmpty(t *testing.T) {
	r := NewRing(10)
	if got := r.Readings(); len(got) != 0 {
		t.Errorf("Readings on empty ring = %v", got)
	}
	if s := r.Aggregate(); s.Count != 0 {
		t.Errorf("Aggregate on empty ring = %+v", s)
	}
}

func TestAggregate(t *testing.T) {
	r := NewRing(10)
	now := time.Now()
	for _, m := range []float64{30, 31, 32, 33, 34} {
		r.Record(now, m, m-10)
	}

	s := r.Aggregate()
	if s.Count != 5 {
		t.Errorf("Count = %d, want 5", s.Count)
	}
	if s.MeanMax != 32 {
		t.Errorf("MeanMax = %v, want 32", s.MeanMax)
	}
	if s.P50Max != 32 {
		t.Errorf("P50Max = %v, want 32", s.P50Max)
	}
	if s.MinMin != 20 {
		t.Errorf("MinMin = %v, want 20", s.MinMin)
	}
	if s.P98Max < s.P85Max || s.P85Max < s.P50Max {
		t.Errorf("percentiles not ordered: p50=%v p85=%v p98=%v", s.P50Max, s.P85Max, s.P98Max)
	}
}

func TestTrendPlotterGenerate(t *testing.T) {
	ring := NewRing(100)
	tp := NewTrendPlotter(ring)
	dir := filepath.Join(t.TempDir(), "plots")
	if err := tp.Start(dir); err != nil {
		t.Fatalf("Start: %v", err)
	}

	base := time.Now()
	for i := 0; i < 20; i++ {
		tp.Sample(Reading{
			Time: "12:00:00",
			Max:  30 + float64(i%4),
			Min:  20,
			At:   base.Add(time.Duration(i) * time.Second),
		})
	}
	tp.Stop()
	if tp.IsEnabled() {
		t.Error("plotter should be disabled after Stop")
	}

	out, err := tp.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	info, err := os.Stat(out)
	if err != nil {
		t.Fatalf("stat output: %v", err)
	}
	if info.Size() == 0 {
		t.Error("trend plot is empty")
	}
}

func TestTrendPlotterDisabledSampling(t *testing.T) {
	ring := NewRing(10)
	tp := NewTrendPlotter(ring)
	tp.Sample(Reading{Max: 30, Min: 20})
	if ring.Len() != 0 {
		t.Error("samples recorded while disabled")
	}
}

func TestChartHandler(t *testing.T) {
	r := NewRing(10)
	r.Record(time.Now(), 31.5, 22.1)

	rec := httptest.NewRecorder()
	r.ChartHandler(rec, httptest.NewRequest(http.MethodGet, "/debug/thermal-history", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body := rec.Body.String(); len(body) == 0 {
		t.Error("empty chart body")
	}
}

func TestChartHandlerEmptyRing(t *testing.T) {
	r := NewRing(10)
	rec := httptest.NewRecorder()
	r.ChartHandler(rec, httptest.NewRequest(http.MethodGet, "/debug/thermal-history", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
