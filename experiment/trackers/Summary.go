package trackers

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary summarizes the per-episode data of a Tracker
type Summary struct {
	Episodes int
	Mean     float64
	StdDev   float64
	Min      float64
	Max      float64
}

// Summarize returns a Summary of data. The zero Summary is returned if
// data is empty. The standard deviation is the sample standard
// deviation, or 0 for a single episode.
func Summarize(data []float64) Summary {
	if len(data) == 0 {
		return Summary{}
	}

	mean, std := stat.MeanStdDev(data, nil)
	if len(data) == 1 {
		std = 0
	}
	return Summary{
		Episodes: len(data),
		Mean:     mean,
		StdDev:   std,
		Min:      floats.Min(data),
		Max:      floats.Max(data),
	}
}

func (s Summary) String() string {
	return fmt.Sprintf("episodes: %d  |  mean: %.3f  |  std: %.3f  |  "+
		"min: %.3f  |  max: %.3f", s.Episodes, s.Mean, s.StdDev, s.Min, s.Max)
}
