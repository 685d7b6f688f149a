package dataset

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarizes one trace or value grid.
type Stats struct {
	N          int
	Min, Max   float64
	Mean       float64
	Std        float64
	PeakToPeak float64
	RMS        float64
}

// statsOf ignores NaN values, which masked logarithms produce.
func statsOf(v []float64) Stats {
	clean := make([]float64, 0, len(v))
	for _, x := range v {
		if !math.IsNaN(x) {
			clean = append(clean, x)
		}
	}
	if len(clean) == 0 {
		nan := math.NaN()
		return Stats{Min: nan, Max: nan, Mean: nan, Std: nan, PeakToPeak: nan, RMS: nan}
	}
	s := Stats{
		N:    len(clean),
		Min:  floats.Min(clean),
		Max:  floats.Max(clean),
		Mean: stat.Mean(clean, nil),
		Std:  stat.StdDev(clean, nil),
	}
	s.PeakToPeak = s.Max - s.Min
	var sq float64
	for _, x := range clean {
		sq += x * x
	}
	s.RMS = math.Sqrt(sq / float64(len(clean)))
	if len(clean) == 1 {
		s.Std = 0
	}
	return s
}

// ValueStats summarizes the processed value array.
func (d *Dataset) ValueStats() Stats {
	return statsOf(d.Processed().Z().Data)
}

// TraceStats summarizes an extracted linecut.
func TraceStats(y []float64) Stats {
	return statsOf(y)
}
