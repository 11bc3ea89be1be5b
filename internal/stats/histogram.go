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

package stats

import (
	"errors"
	"math"

	"github.com/mlnoga/citra/internal/img"
	"gonum.org/v1/gonum/optimize"
)

// Number of bins in an 8-bit intensity histogram
const NumBins = 256

// Calculates the 256-bin intensity histogram of the given channel.
// Counts are stored as float64 so fuzzy and crisp histograms share one representation
func Histogram(f *img.Image, ch int) []float64 {
	bins := make([]float64, NumBins)
	for i := ch; i < len(f.Pix); i += f.Channels {
		bins[f.Pix[i]]++
	}
	return bins
}

// Calculates one histogram per channel
func Histograms(f *img.Image) [][]float64 {
	res := make([][]float64, f.Channels)
	for ch := range res {
		res[ch] = Histogram(f, ch)
	}
	return res
}

// Returns the lowest and highest occupied bin, or -1, -1 for an empty histogram
func OccupiedRange(bins []float64) (lo, hi int) {
	lo, hi = -1, -1
	for i, b := range bins {
		if b > 0 {
			if lo < 0 {
				lo = i
			}
			hi = i
		}
	}
	return lo, hi
}

// Returns the location and the value of the histogram peak
func GetPeak(bins []float64) (x, y float64) {
	maxIndex, maxValue := -1, math.Inf(-1)
	for i, v := range bins {
		if v > maxValue {
			maxIndex, maxValue = i, v
		}
	}
	return float64(maxIndex), maxValue
}

// Fits a gaussian to the histogram around its peak, and returns its mode and standard deviation.
// Starts from the histogram peak and minimizes the RMS distance with Nelder-Mead
func FitPeak(bins []float64) (mode, stdDev float64, err error) {
	if len(bins) == 0 {
		return 0, 0, errors.New("empty histogram")
	}
	peak, peakVal := GetPeak(bins)
	if peakVal <= 0 {
		return 0, 0, errors.New("histogram has no mass")
	}

	// initial guess: amplitude as area of a unit-width peak, location at the peak, moderate width
	x0 := []float64{peakVal * 5 * math.Sqrt(2*math.Pi), peak, 5.0}
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			alpha, mu, sigma := x[0], x[1], x[2]
			if sigma <= 0 {
				return math.Inf(1)
			}
			scaler := alpha / (sigma * math.Sqrt(2*math.Pi))
			sumSqDiff := 0.0
			for i, y := range bins {
				xmusig := (float64(i) - mu) / sigma
				yPredict := scaler * math.Exp(-0.5*xmusig*xmusig)
				diff := y - yPredict
				sumSqDiff += diff * diff
			}
			return math.Sqrt(sumSqDiff / float64(len(bins)))
		},
	}
	result, err := optimize.Minimize(problem, x0, nil, &optimize.NelderMead{})
	if err != nil {
		return -1, -1, err
	}
	return result.X[1], math.Abs(result.X[2]), nil
}
