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

// Package quant requantizes 8-bit intensities to fewer significant bits.
package quant

import (
	"math"

	"github.com/mlnoga/citra/internal/img"
)

// Builds the lookup table for requantizing to the given number of bits in [1,8]
func LUT(bits int) (*img.LUT, error) {
	if bits < 1 || bits > 8 {
		return nil, img.InvalidParameter("bits", bits, "in [1,8]")
	}
	if bits == 8 {
		return img.IdentityLUT(), nil
	}
	maxLevel := float64(int(1)<<uint(bits) - 1)
	return img.NewLUT(func(v float64) float64 {
		level := math.Round(v / 255 * maxLevel)
		return level / maxLevel * 255
	}), nil
}

// Restricts every channel to 2^bits distinct levels spread across [0,255].
// Eight bits is the native depth and returns an unchanged copy
func BitDepth(f *img.Image, bits int) (*img.Image, error) {
	lut, err := LUT(bits)
	if err != nil {
		return nil, err
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f.ApplyLUT(lut), nil
}

// Returns the sorted output values reachable with the given number of bits
func Levels(bits int) ([]uint8, error) {
	lut, err := LUT(bits)
	if err != nil {
		return nil, err
	}
	var res []uint8
	for i, v := range lut {
		if i == 0 || v != res[len(res)-1] {
			res = append(res, v)
		}
	}
	return res, nil
}
