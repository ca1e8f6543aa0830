package report

// HistogramBucket is one fixed-boundary duration bucket.
type HistogramBucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// DurationStats summarizes transaction durations across a run.
type DurationStats struct {
	Count     int               `json:"count"`
	Min       float64           `json:"min"`
	Avg       float64           `json:"avg"`
	Max       float64           `json:"max"`
	Histogram []HistogramBucket `json:"histogram"`
}

// histogramBounds are the upper edges, in seconds, of the duration
// buckets; the final bucket is open-ended.
var histogramBounds = []float64{30, 60, 120, 300}

var histogramLabels = []string{"<30s", "30-60s", "60-120s", "120-300s", ">=300s"}

// ComputeDurationStats aggregates min/avg/max and the bucket histogram
// over the given records. Negative day-rollover durations count toward
// the first bucket and can drag Min below zero.
func ComputeDurationStats(recs []TransactionRecord) DurationStats {
	stats := DurationStats{
		Histogram: make([]HistogramBucket, len(histogramLabels)),
	}
	for i, label := range histogramLabels {
		stats.Histogram[i] = HistogramBucket{Label: label}
	}
	if len(recs) == 0 {
		return stats
	}

	var sum float64
	stats.Min = recs[0].Duration
	stats.Max = recs[0].Duration
	for _, r := range recs {
		d := r.Duration
		sum += d
		if d < stats.Min {
			stats.Min = d
		}
		if d > stats.Max {
			stats.Max = d
		}
		stats.Histogram[bucketFor(d)].Count++
	}
	stats.Count = len(recs)
	stats.Avg = sum / float64(len(recs))
	return stats
}

func bucketFor(d float64) int {
	for i, bound := range histogramBounds {
		if d < bound {
			return i
		}
	}
	return len(histogramBounds)
}
