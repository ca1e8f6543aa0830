package report

import (
	"math"
	"testing"
)

func durations(ds ...float64) []TransactionRecord {
	recs := make([]TransactionRecord, len(ds))
	for i, d := range ds {
		recs[i] = TransactionRecord{Duration: d}
	}
	return recs
}

func TestComputeDurationStats(t *testing.T) {
	stats := ComputeDurationStats(durations(9, 45, 90, 250, 600))

	if stats.Count != 5 {
		t.Errorf("Count = %d", stats.Count)
	}
	if stats.Min != 9 || stats.Max != 600 {
		t.Errorf("Min/Max = %v/%v", stats.Min, stats.Max)
	}
	if want := (9.0 + 45 + 90 + 250 + 600) / 5; math.Abs(stats.Avg-want) > 1e-9 {
		t.Errorf("Avg = %v, want %v", stats.Avg, want)
	}

	wantCounts := []int{1, 1, 1, 1, 1}
	for i, b := range stats.Histogram {
		if b.Count != wantCounts[i] {
			t.Errorf("bucket %s = %d, want %d", b.Label, b.Count, wantCounts[i])
		}
	}
}

func TestComputeDurationStatsEmpty(t *testing.T) {
	stats := ComputeDurationStats(nil)
	if stats.Count != 0 || stats.Min != 0 || stats.Avg != 0 || stats.Max != 0 {
		t.Errorf("stats = %+v", stats)
	}
	if len(stats.Histogram) != 5 {
		t.Errorf("histogram should keep its shape, got %d buckets", len(stats.Histogram))
	}
}

func TestComputeDurationStatsRollover(t *testing.T) {
	// a transaction crossing midnight carries a negative duration
	stats := ComputeDurationStats(durations(-86393, 10))
	if stats.Min != -86393 {
		t.Errorf("Min = %v", stats.Min)
	}
	if stats.Histogram[0].Count != 2 {
		t.Errorf("first bucket = %d, want 2", stats.Histogram[0].Count)
	}
}

func TestBucketBoundaries(t *testing.T) {
	tests := []struct {
		d    float64
		want int
	}{
		{0, 0},
		{29.9, 0},
		{30, 1},
		{59.9, 1},
		{60, 2},
		{120, 3},
		{299.9, 3},
		{300, 4},
		{10000, 4},
	}
	for _, tt := range tests {
		if got := bucketFor(tt.d); got != tt.want {
			t.Errorf("bucketFor(%v) = %d, want %d", tt.d, got, tt.want)
		}
	}
}
