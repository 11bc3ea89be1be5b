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

package tonal

import (
	"fmt"
	"math"
	"sort"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/mlnoga/citra/internal/img"
)

// Coefficients of a color tint filter. Each channel is first pulled toward
// the average gray (R+G+B)/3 by Desaturate in [0,1], then mapped with
// out = Scale*v + Offset, rounded and clamped.
type TintCoeffs struct {
	Scale      [3]float64
	Offset     [3]float64
	Desaturate float64
}

// Named tint filters. Coefficients are fixed so outputs are reproducible.
//
//	name    scale R,G,B       offset R,G,B   desaturate
//	yellow  1.00 1.00 0.40    0  0  0        0
//	orange  1.00 0.70 0.30    0  0  0        0
//	cyan    0.40 1.00 1.00    0  0  0        0
//	purple  0.80 0.40 0.90    0  0  0        0
//	grey    1.00 1.00 1.00    0  0  0        0.80
//	brown   0.65 0.45 0.25    20 10 0        0
//	red     1.00 0.30 0.30    0  0  0        0
var Tints = map[string]TintCoeffs{
	"yellow": {Scale: [3]float64{1.00, 1.00, 0.40}},
	"orange": {Scale: [3]float64{1.00, 0.70, 0.30}},
	"cyan":   {Scale: [3]float64{0.40, 1.00, 1.00}},
	"purple": {Scale: [3]float64{0.80, 0.40, 0.90}},
	"grey":   {Scale: [3]float64{1.00, 1.00, 1.00}, Desaturate: 0.80},
	"brown":  {Scale: [3]float64{0.65, 0.45, 0.25}, Offset: [3]float64{20, 10, 0}},
	"red":    {Scale: [3]float64{1.00, 0.30, 0.30}},
}

// Returns the sorted names of all tint filters
func TintNames() []string {
	names := make([]string, 0, len(Tints))
	for n := range Tints {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Applies the named tint filter. Grayscale inputs are expanded to RGB first
func Tint(f *img.Image, name string) (*img.Image, error) {
	coeffs, ok := Tints[name]
	if !ok {
		return nil, img.InvalidParameter("tint", name, fmt.Sprintf("one of %v", TintNames()))
	}
	return ApplyTint(f, coeffs)
}

// Applies the given tint coefficients. Grayscale inputs are expanded to RGB first
func ApplyTint(f *img.Image, t TintCoeffs) (*img.Image, error) {
	if t.Desaturate < 0 || t.Desaturate > 1 || math.IsNaN(t.Desaturate) {
		return nil, img.InvalidParameter("desaturate", t.Desaturate, "in [0,1]")
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	src := f
	if f.Channels == 1 {
		src = f.ExpandGray()
	}
	res := img.NewLike(src)
	for i := 0; i < len(src.Pix); i += 3 {
		p := src.Pix[i : i+3]
		avg := (float64(p[0]) + float64(p[1]) + float64(p[2])) / 3
		for ch := 0; ch < 3; ch++ {
			v := float64(p[ch])
			v += t.Desaturate * (avg - v)
			res.Pix[i+ch] = img.Clamp(t.Scale[ch]*v + t.Offset[ch])
		}
	}
	return res, nil
}

func Yellow(f *img.Image) (*img.Image, error) { return Tint(f, "yellow") }
func Orange(f *img.Image) (*img.Image, error) { return Tint(f, "orange") }
func Cyan(f *img.Image) (*img.Image, error)   { return Tint(f, "cyan") }
func Purple(f *img.Image) (*img.Image, error) { return Tint(f, "purple") }
func Grey(f *img.Image) (*img.Image, error)   { return Tint(f, "grey") }
func Brown(f *img.Image) (*img.Image, error)  { return Tint(f, "brown") }
func Red(f *img.Image) (*img.Image, error)    { return Tint(f, "red") }

// Scales the HSL saturation of an RGB image by the given non-negative factor.
// Grayscale images carry no saturation and are cloned
func Saturation(f *img.Image, factor float64) (*img.Image, error) {
	if !(factor >= 0) || math.IsInf(factor, 0) {
		return nil, img.InvalidParameter("saturation", factor, "non-negative and finite")
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if f.Channels == 1 || factor == 1 {
		return f.Clone(), nil
	}
	res := img.NewLike(f)
	for i := 0; i < len(f.Pix); i += 3 {
		col := colorful.Color{R: float64(f.Pix[i]) / 255, G: float64(f.Pix[i+1]) / 255, B: float64(f.Pix[i+2]) / 255}
		h, s, l := col.Hsl()
		s *= factor
		if s > 1 {
			s = 1
		}
		col = colorful.Hsl(h, s, l).Clamped()
		res.Pix[i] = img.Clamp(col.R * 255)
		res.Pix[i+1] = img.Clamp(col.G * 255)
		res.Pix[i+2] = img.Clamp(col.B * 255)
	}
	return res, nil
}
