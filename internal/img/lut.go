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

package img

import (
	"math"
)

// A lookup table mapping each 8-bit input intensity to an output intensity
type LUT [256]uint8

// Builds a lookup table by evaluating f for every input intensity and clamping
func NewLUT(f func(v float64) float64) *LUT {
	var lut LUT
	for i := range lut {
		lut[i] = Clamp(f(float64(i)))
	}
	return &lut
}

// Returns the identity lookup table
func IdentityLUT() *LUT {
	var lut LUT
	for i := range lut {
		lut[i] = uint8(i)
	}
	return &lut
}

// Rounds to the nearest integer, halves away from zero, and saturates to [0,255]. NaN maps to 0
func Clamp(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.Round(v))
}

// Saturates an integer to [0,255]
func ClampInt(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// Applies the lookup table to all samples of all channels. Returns a new image
func (f *Image) ApplyLUT(lut *LUT) *Image {
	res := NewLike(f)
	for i, v := range f.Pix {
		res.Pix[i] = lut[v]
	}
	return res
}

// Applies one lookup table per channel. A nil entry leaves the channel unchanged. Returns a new image
func (f *Image) ApplyChannelLUTs(luts []*LUT) *Image {
	res := f.Clone()
	for ch := 0; ch < f.Channels && ch < len(luts); ch++ {
		lut := luts[ch]
		if lut == nil {
			continue
		}
		for i := ch; i < len(res.Pix); i += f.Channels {
			res.Pix[i] = lut[res.Pix[i]]
		}
	}
	return res
}
