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
	"math"
	"testing"

	"github.com/mlnoga/citra/internal/img"
)

func TestHistogramPerChannel(t *testing.T) {
	f, _ := img.FromPix(1, 2, 3, []uint8{1, 2, 3, 1, 5, 255})
	hs := Histograms(f)
	if len(hs) != 3 {
		t.Fatalf("len(hs)=%d; want 3", len(hs))
	}
	if hs[0][1] != 2 {
		t.Errorf("R[1]=%g; want 2", hs[0][1])
	}
	if hs[1][2] != 1 || hs[1][5] != 1 {
		t.Errorf("G[2]=%g G[5]=%g; want 1 1", hs[1][2], hs[1][5])
	}
	if hs[2][255] != 1 {
		t.Errorf("B[255]=%g; want 1", hs[2][255])
	}
}

func TestCalcBasicStats(t *testing.T) {
	f, _ := img.FromPix(2, 2, 1, []uint8{10, 10, 20, 40})
	s := Summarize(f)[0]
	if s.Min != 10 || s.Max != 40 || s.Mode != 10 || s.Distinct != 3 {
		t.Errorf("stats %v; want min 10 max 40 mode 10 distinct 3", s)
	}
	if math.Abs(s.Mean-20) > 1e-9 {
		t.Errorf("mean=%g; want 20", s.Mean)
	}
	// population variance ((10-20)^2*2 + 0 + 20^2)/4 = 150
	if math.Abs(s.StdDev-math.Sqrt(150)) > 1e-9 {
		t.Errorf("stddev=%g; want %g", s.StdDev, math.Sqrt(150))
	}
}

func TestOccupiedRangeEmpty(t *testing.T) {
	lo, hi := OccupiedRange(make([]float64, NumBins))
	if lo != -1 || hi != -1 {
		t.Errorf("range=[%d,%d]; want [-1,-1]", lo, hi)
	}
}

func TestFitPeak(t *testing.T) {
	bins := make([]float64, NumBins)
	for i := range bins {
		d := (float64(i) - 100) / 10
		bins[i] = 1000 * math.Exp(-0.5*d*d)
	}
	mode, stdDev, err := FitPeak(bins)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(mode-100) > 2 {
		t.Errorf("mode=%g; want 100", mode)
	}
	if math.Abs(stdDev-10) > 2 {
		t.Errorf("stdDev=%g; want 10", stdDev)
	}
}

func TestColorCast(t *testing.T) {
	gray, _ := img.FromPix(1, 2, 3, []uint8{50, 50, 50, 200, 200, 200})
	if _, chroma := ColorCast(gray); chroma > 5e-3 {
		t.Errorf("gray chroma=%g; want 0", chroma)
	}
	red, _ := img.FromPix(1, 1, 3, []uint8{255, 0, 0})
	hue, chroma := ColorCast(red)
	if chroma < 0.5 {
		t.Errorf("red chroma=%g; want >0.5", chroma)
	}
	if hue > 90 {
		t.Errorf("red hue=%g; want in [0,90)", hue)
	}
}
