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

package hist

import (
	"errors"
	"io"
	"testing"

	"github.com/mlnoga/citra/internal/equalize"
	"github.com/mlnoga/citra/internal/img"
	"github.com/mlnoga/citra/internal/ops"
	"github.com/valyala/fastrand"
)

func apply(t *testing.T, op ops.OperatorUnary, f *img.Image) (*img.Image, error) {
	res, err := op.Apply(&ops.Frame{ID: 2, Image: f}, ops.NewContext(io.Discard))
	if err != nil {
		return nil, err
	}
	return res.Image, nil
}

func randomImage(t *testing.T, c int) *img.Image {
	rng := fastrand.RNG{}
	rng.Seed(42)
	f, err := img.New(16, 16, c)
	if err != nil {
		t.Fatal(err)
	}
	for i := range f.Pix {
		f.Pix[i] = uint8(64 + rng.Uint32n(64))
	}
	return f
}

func TestOpEqualizeMatchesCore(t *testing.T) {
	f := randomImage(t, 3)
	got, err := apply(t, NewOpEqualize(true), f)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := equalize.Equalize(f)
	if string(got.Pix) != string(want.Pix) {
		t.Errorf("operator output differs from equalize.Equalize")
	}
}

func TestOpFuzzyEqualizeSets(t *testing.T) {
	f := randomImage(t, 1)
	for _, name := range FuzzySetNames() {
		got, err := apply(t, NewOpFuzzyEqualize(name), f)
		if err != nil {
			t.Fatalf("set %s: %v", name, err)
		}
		want, _ := equalize.FuzzyEqualizeWith(f, FuzzySets[name])
		if string(got.Pix) != string(want.Pix) {
			t.Errorf("set %s: operator output differs from core", name)
		}
	}
}

func TestOpFuzzyEqualizeCrispIsClassic(t *testing.T) {
	f := randomImage(t, 3)
	crisp, err := apply(t, NewOpFuzzyEqualize("crisp"), f)
	if err != nil {
		t.Fatal(err)
	}
	classic, err := apply(t, NewOpEqualize(true), f)
	if err != nil {
		t.Fatal(err)
	}
	if string(crisp.Pix) != string(classic.Pix) {
		t.Errorf("crisp fuzzy equalization differs from classic")
	}
}

func TestOpFuzzyEqualizeUnknownSet(t *testing.T) {
	_, err := apply(t, NewOpFuzzyEqualize("sharp"), randomImage(t, 1))
	if !errors.Is(err, img.ErrInvalidParameter) {
		t.Errorf("err=%v; want invalid parameter", err)
	}
}
