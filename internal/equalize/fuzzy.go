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

package equalize

import (
	"fmt"
	"math"

	"github.com/mlnoga/citra/internal/img"
	"github.com/mlnoga/citra/internal/stats"
	"gonum.org/v1/gonum/floats"
)

// A linguistic intensity region with a triangular membership function. Membership is
// 1 at Center and falls off linearly to 0 at Center±HalfWidth
type Region struct {
	Name      string  `json:"name"`
	Center    float64 `json:"center"`
	HalfWidth float64 `json:"halfWidth"`
}

// Degree of membership of intensity v in the region, in [0,1]
func (r Region) Membership(v float64) float64 {
	return math.Max(0, 1-math.Abs(v-r.Center)/r.HalfWidth)
}

// A fixed collection of overlapping regions over the intensity domain [0,255]
type FuzzySet struct {
	Regions []Region `json:"regions"`
}

// Checks that the set has regions, and that all of them have positive finite width
func (s *FuzzySet) Validate() error {
	if s == nil || len(s.Regions) == 0 {
		return img.InvalidParameter("fuzzy set", "empty", "at least one region")
	}
	for _, r := range s.Regions {
		if !(r.HalfWidth > 0) || math.IsInf(r.HalfWidth, 0) || math.IsNaN(r.Center) || math.IsInf(r.Center, 0) {
			return img.InvalidParameter(fmt.Sprintf("region %q", r.Name), fmt.Sprintf("center %g halfWidth %g", r.Center, r.HalfWidth),
				"a finite center with positive finite half-width")
		}
	}
	return nil
}

// Returns a set with one triangular fuzzy number per intensity level,
// each of the given half-width. A half-width of one yields crisp indicator functions
func PerLevelFuzzySet(halfWidth float64) *FuzzySet {
	s := &FuzzySet{Regions: make([]Region, stats.NumBins)}
	for i := range s.Regions {
		s.Regions[i] = Region{Name: fmt.Sprintf("about %d", i), Center: float64(i), HalfWidth: halfWidth}
	}
	return s
}

// Default set for fuzzy equalization: triangular fuzzy numbers of half-width 4 around every level.
// Each count is shared with its three nearest neighbours on either side
var DefaultFuzzySet = PerLevelFuzzySet(4)

// Crisp set whose memberships are indicator functions. Fuzzy equalization with this set
// is identical to classic equalization
var CrispFuzzySet = PerLevelFuzzySet(1)

// Five coarse regions forming a partition of unity over [0,255]. Strong smoothing,
// yields a gentle global tone curve
var LinguisticFuzzySet = &FuzzySet{Regions: []Region{
	{Name: "very dark", Center: 0, HalfWidth: 63.75},
	{Name: "dark", Center: 63.75, HalfWidth: 63.75},
	{Name: "medium", Center: 127.5, HalfWidth: 63.75},
	{Name: "bright", Center: 191.25, HalfWidth: 63.75},
	{Name: "very bright", Center: 255, HalfWidth: 63.75},
}}

// Degrees of membership of every intensity level in every region of a set
type MembershipTable struct {
	Degrees  [][]float64 // Degrees[level][region]
	Profiles [][]float64 // Profiles[region][level], the transpose of Degrees
	Coverage []float64   // Coverage[level]: sum of degrees over all regions
	Support  []float64   // Support[region]: sum of degrees over all levels
}

// Evaluates all membership functions of the set at every intensity level
func NewMembershipTable(s *FuzzySet) *MembershipTable {
	t := &MembershipTable{
		Degrees:  make([][]float64, stats.NumBins),
		Profiles: make([][]float64, len(s.Regions)),
		Coverage: make([]float64, stats.NumBins),
		Support:  make([]float64, len(s.Regions)),
	}
	for r := range s.Regions {
		t.Profiles[r] = make([]float64, stats.NumBins)
	}
	for v := range t.Degrees {
		t.Degrees[v] = make([]float64, len(s.Regions))
		for r, region := range s.Regions {
			mu := region.Membership(float64(v))
			t.Degrees[v][r] = mu
			t.Profiles[r][v] = mu
		}
		t.Coverage[v] = floats.Sum(t.Degrees[v])
	}
	for r := range s.Regions {
		t.Support[r] = floats.Sum(t.Profiles[r])
	}
	return t
}

// Smooths a 256-bin histogram with the given membership table. The count at each level is
// distributed over the regions in proportion to its membership degrees, and each region's
// mass is spread back over the levels in proportion to the region's membership function.
// Total mass is preserved. Counts at levels not covered by any region stay where they are
func (t *MembershipTable) Smooth(hist []float64) []float64 {
	mass := make([]float64, len(t.Support))
	res := make([]float64, stats.NumBins)
	for v, count := range hist {
		if count == 0 {
			continue
		}
		cov := t.Coverage[v]
		if !(cov > 0) {
			res[v] += count
			continue
		}
		for r, mu := range t.Degrees[v] {
			if mu > 0 {
				mass[r] += count * mu / cov
			}
		}
	}
	for r, m := range mass {
		if m == 0 || !(t.Support[r] > 0) {
			continue
		}
		floats.AddScaled(res, m/t.Support[r], t.Profiles[r])
	}
	return res
}

// Smooths a 256-bin histogram with the given fuzzy set. See MembershipTable.Smooth
func FuzzyHistogram(hist []float64, s *FuzzySet) ([]float64, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if len(hist) != stats.NumBins {
		return nil, img.InvalidParameter("histogram bins", len(hist), fmt.Sprintf("%d", stats.NumBins))
	}
	return NewMembershipTable(s).Smooth(hist), nil
}

func fuzzyLUT(t *MembershipTable) lutBuilder {
	return func(hist []float64) *img.LUT {
		if lo, hi := stats.OccupiedRange(hist); lo == hi {
			return nil // single intensity level
		}
		lut, ok := LUTFromHistogram(t.Smooth(hist))
		if !ok {
			return nil // zero fuzzy mass
		}
		return lut
	}
}

// Fuzzy histogram equalization of a grayscale or RGB image with the given set.
// Color channels are equalized independently
func FuzzyEqualizeWith(f *img.Image, s *FuzzySet) (*img.Image, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return equalizeChannels(f, fuzzyLUT(NewMembershipTable(s))), nil
}

// Fuzzy histogram equalization of a grayscale or RGB image with the default set.
// Smoothing spreads mass to unoccupied neighbours, so unlike classic equalization
// the darkest and brightest occupied levels are not pinned to 0 and 255
func FuzzyEqualize(f *img.Image) (*img.Image, error) {
	return FuzzyEqualizeWith(f, DefaultFuzzySet)
}

// Fuzzy histogram equalization of a single-channel image with the default set
func FuzzyEqualizeGray(f *img.Image) (*img.Image, error) {
	if err := requireChannels(f, 1); err != nil {
		return nil, err
	}
	return FuzzyEqualizeWith(f, DefaultFuzzySet)
}

// Fuzzy histogram equalization of an RGB image with the default set, with
// independent R, G and B mappings
func FuzzyEqualizeRGB(f *img.Image) (*img.Image, error) {
	if err := requireChannels(f, 3); err != nil {
		return nil, err
	}
	return FuzzyEqualizeWith(f, DefaultFuzzySet)
}
