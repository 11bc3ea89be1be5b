// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package stats calculates histograms and summary statistics of 8-bit images.
package stats

import (
	"fmt"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/mlnoga/citra/internal/img"
	"gonum.org/v1/gonum/stat"
)

// Intensity levels 0..255 as float64, the abscissa for weighted statistics over histograms
var levels = func() []float64 {
	res := make([]float64, NumBins)
	for i := range res {
		res[i] = float64(i)
	}
	return res
}()

// Basic statistics of a single channel
type BasicStats struct {
	Min      int     `json:"min"`
	Max      int     `json:"max"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"stdDev"`
	Mode     int     `json:"mode"`
	Distinct int     `json:"distinct"` // number of occupied intensity levels
}

// Pretty print basic stats
func (s *BasicStats) String() string {
	return fmt.Sprintf("Min %d Max %d Mean %.4g StdDev %.4g Mode %d Distinct %d",
		s.Min, s.Max, s.Mean, s.StdDev, s.Mode, s.Distinct)
}

// Pretty print basic stats to CSV header
func (s *BasicStats) ToCSVHeader() string {
	return "Min,Max,Mean,StdDev,Mode,Distinct"
}

// Pretty print basic stats to CSV line
func (s *BasicStats) ToCSVLine() string {
	return fmt.Sprintf("%d,%d,%.6g,%.6g,%d,%d", s.Min, s.Max, s.Mean, s.StdDev, s.Mode, s.Distinct)
}

// Calculates basic statistics from a 256-bin histogram. Standard deviation is the
// population standard deviation of the intensities
func CalcBasicStats(bins []float64) *BasicStats {
	lo, hi := OccupiedRange(bins)
	mode, _ := GetPeak(bins)
	distinct := 0
	for _, b := range bins {
		if b > 0 {
			distinct++
		}
	}
	mean, variance := 0.0, 0.0
	if lo >= 0 {
		mean = stat.Mean(levels, bins)
		variance = stat.MomentAbout(2, levels, mean, bins)
	}
	return &BasicStats{
		Min:      lo,
		Max:      hi,
		Mean:     mean,
		StdDev:   math.Sqrt(variance),
		Mode:     int(mode),
		Distinct: distinct,
	}
}

// Calculates basic statistics for every channel of the image
func Summarize(f *img.Image) []*BasicStats {
	res := make([]*BasicStats, f.Channels)
	for ch, bins := range Histograms(f) {
		res[ch] = CalcBasicStats(bins)
	}
	return res
}

// Estimates the color cast of an RGB image as the hue angle in degrees and the
// chroma of the mean CIE L*a*b* chromaticity. Gray images have no cast
func ColorCast(f *img.Image) (hue, chroma float64) {
	if f.Channels != 3 {
		return 0, 0
	}
	sumA, sumB := 0.0, 0.0
	for i := 0; i < len(f.Pix); i += 3 {
		col := colorful.Color{R: float64(f.Pix[i]) / 255, G: float64(f.Pix[i+1]) / 255, B: float64(f.Pix[i+2]) / 255}
		_, a, b := col.Lab()
		sumA += a
		sumB += b
	}
	n := float64(f.Pixels())
	meanA, meanB := sumA/n, sumB/n
	chroma = math.Sqrt(meanA*meanA + meanB*meanB)
	hue = math.Atan2(meanB, meanA) * 180 / math.Pi
	if hue < 0 {
		hue += 360
	}
	return hue, chroma
}
