package history

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Stats is the rollup reported by the /temperature_stats endpoint. The
// percentile trio over recorded maxima mirrors how speed distributions are
// usually summarised.
type Stats struct {
	Count   int     `json:"count"`
	MeanMax float64 `json:"mean_max"`
	P50Max  float64 `json:"p50_max"`
	P85Max  float64 `json:"p85_max"`
	P98Max  float64 `json:"p98_max"`
	MinMin  float64 `json:"min_min"`
}

// Aggregate computes the rollup over the ring's current contents. With no
// readings it returns the zero Stats.
func (r *Ring) Aggregate() Stats {
	readings := r.Readings()
	if len(readings) == 0 {
		return Stats{}
	}

	maxes := make([]float64, len(readings))
	minMin := readings[0].Min
	for i, rd := range readings {
		maxes[i] = rd.Max
		if rd.Min < minMin {
			minMin = rd.Min
		}
	}

	mean := stat.Mean(maxes, nil)

	// stat.Quantile requires sorted input.
	sort.Float64s(maxes)

	return Stats{
		Count:   len(readings),
		MeanMax: mean,
		P50Max:  stat.Quantile(0.50, stat.Empirical, maxes, nil),
		P85Max:  stat.Quantile(0.85, stat.Empirical, maxes, nil),
		P98Max:  stat.Quantile(0.98, stat.Empirical, maxes, nil),
		MinMin:  minMin,
	}
}
