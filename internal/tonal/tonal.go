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

// Package tonal implements per-pixel intensity maps: grayscale reductions,
// color tints, inversion, log brightness, gamma and brightness/contrast.
// All functions are pure and return freshly allocated images.
package tonal

import (
	"math"

	"github.com/mlnoga/citra/internal/img"
)

// Reduces an RGB image to one channel with (R+G+B)/3
func GrayscaleAverage(f *img.Image) (*img.Image, error) {
	return reduce(f, func(r, g, b float64) float64 { return (r + g + b) / 3 })
}

// Reduces an RGB image to one channel with (max(R,G,B)+min(R,G,B))/2
func GrayscaleLightness(f *img.Image) (*img.Image, error) {
	return reduce(f, func(r, g, b float64) float64 {
		return (math.Max(r, math.Max(g, b)) + math.Min(r, math.Min(g, b))) / 2
	})
}

// Reduces an RGB image to one channel with the Rec. 601 luma weights 0.299R+0.587G+0.114B
func GrayscaleLuminance(f *img.Image) (*img.Image, error) {
	return reduce(f, func(r, g, b float64) float64 { return 0.299*r + 0.587*g + 0.114*b })
}

// Collapses three channels into one using the given weighting. Grayscale inputs are cloned
func reduce(f *img.Image, w func(r, g, b float64) float64) (*img.Image, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if f.Channels == 1 {
		return f.Clone(), nil
	}
	res := &img.Image{Height: f.Height, Width: f.Width, Channels: 1, Pix: make([]uint8, f.Pixels())}
	for i := range res.Pix {
		p := f.Pix[3*i : 3*i+3]
		res.Pix[i] = img.Clamp(w(float64(p[0]), float64(p[1]), float64(p[2])))
	}
	return res, nil
}

// Returns 255-v for every sample
func Invert(f *img.Image) (*img.Image, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f.ApplyLUT(img.NewLUT(func(v float64) float64 { return 255 - v })), nil
}

// Scaler which maps the maximum input 255 onto 255 in LogBrightness
var logScale = 255 / math.Log(256)

// Returns round(c*ln(1+v)) with c=255/ln(256) for every sample. Brightens shadows
func LogBrightness(f *img.Image) (*img.Image, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f.ApplyLUT(img.NewLUT(func(v float64) float64 { return logScale * math.Log1p(v) })), nil
}

// Returns round(255*(v/255)^gamma) for every sample. Gamma must be positive and finite
func Gamma(f *img.Image, gamma float64) (*img.Image, error) {
	if !(gamma > 0) || math.IsInf(gamma, 0) {
		return nil, img.InvalidParameter("gamma", gamma, "positive and finite")
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f.ApplyLUT(img.NewLUT(func(v float64) float64 { return 255 * math.Pow(v/255, gamma) })), nil
}

// Returns clamp(contrast*(v-128)+128+brightness) for every sample.
// Contrast must be positive and finite, brightness any finite offset
func BrightnessContrast(f *img.Image, brightness, contrast float64) (*img.Image, error) {
	if !(contrast > 0) || math.IsInf(contrast, 0) {
		return nil, img.InvalidParameter("contrast", contrast, "positive and finite")
	}
	if math.IsNaN(brightness) || math.IsInf(brightness, 0) {
		return nil, img.InvalidParameter("brightness", brightness, "finite")
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f.ApplyLUT(img.NewLUT(func(v float64) float64 { return contrast*(v-128) + 128 + brightness })), nil
}

// Contrast-only mode of BrightnessContrast, with brightness fixed at zero
func Contrast(f *img.Image, contrast float64) (*img.Image, error) {
	return BrightnessContrast(f, 0, contrast)
}

// Brightness-only mode of BrightnessContrast, with contrast fixed at one
func Brightness(f *img.Image, brightness float64) (*img.Image, error) {
	return BrightnessContrast(f, brightness, 1)
}
