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

// Package equalize redistributes intensities toward uniform usage through the
// cumulative distribution of the intensity histogram. Besides classic
// equalization it offers a fuzzy variant, which smooths the histogram with
// overlapping triangular membership functions before building the mapping.
//
// Color images are equalized per channel with three independent lookup
// tables. This decorrelates the channels and may shift hues; it is the
// intended behavior and not a luminance-only equalization.
package equalize

import (
	"fmt"

	"github.com/mlnoga/citra/internal/img"
	"github.com/mlnoga/citra/internal/stats"
	"gonum.org/v1/gonum/floats"
)

// Builds the equalization lookup table from a histogram with 256 bins, which may hold
// fractional counts. Returns false if the histogram is degenerate, i.e. it has no
// mass or all mass sits at the lowest occupied level, so no remapping is defined
func LUTFromHistogram(hist []float64) (*img.LUT, bool) {
	if len(hist) != stats.NumBins {
		return nil, false
	}
	total := floats.Sum(hist)
	if !(total > 0) {
		return nil, false
	}
	lo, _ := stats.OccupiedRange(hist)
	cdf := floats.CumSum(make([]float64, len(hist)), hist)
	cdfMin := cdf[lo]
	span := total - cdfMin
	if !(span > total*1e-12) {
		return nil, false
	}

	var lut img.LUT
	for i, c := range cdf {
		lut[i] = img.Clamp((c - cdfMin) / span * 255)
	}
	return &lut, true
}

// Builds a per-channel lookup table with the given histogram transform, or nil for
// degenerate channels which are to be left unchanged
type lutBuilder func(hist []float64) *img.LUT

func classicLUT(hist []float64) *img.LUT {
	if lo, hi := stats.OccupiedRange(hist); lo == hi {
		return nil // single intensity level
	}
	lut, ok := LUTFromHistogram(hist)
	if !ok {
		return nil
	}
	return lut
}

// Equalizes each channel independently with the given builder. Returns a new image
func equalizeChannels(f *img.Image, build lutBuilder) *img.Image {
	luts := make([]*img.LUT, f.Channels)
	for ch := range luts {
		luts[ch] = build(stats.Histogram(f, ch))
	}
	return f.ApplyChannelLUTs(luts)
}

func requireChannels(f *img.Image, channels int) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if f.Channels != channels {
		return img.InvalidParameter("channels", f.Channels, fmt.Sprintf("%d", channels))
	}
	return nil
}

// Classic histogram equalization of a grayscale or RGB image
func Equalize(f *img.Image) (*img.Image, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return equalizeChannels(f, classicLUT), nil
}

// Classic histogram equalization of a single-channel image
func EqualizeGray(f *img.Image) (*img.Image, error) {
	if err := requireChannels(f, 1); err != nil {
		return nil, err
	}
	return equalizeChannels(f, classicLUT), nil
}

// Classic histogram equalization of an RGB image, with independent R, G and B mappings
func EqualizeRGB(f *img.Image) (*img.Image, error) {
	if err := requireChannels(f, 3); err != nil {
		return nil, err
	}
	return equalizeChannels(f, classicLUT), nil
}
