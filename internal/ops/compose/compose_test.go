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

package compose

import (
	"errors"
	"io"
	"testing"

	"github.com/mlnoga/citra/internal/img"
	"github.com/mlnoga/citra/internal/ops"
)

func pair(t *testing.T) (*img.Image, *img.Image) {
	a, err := img.FromPix(1, 3, 1, []uint8{10, 100, 250})
	if err != nil {
		t.Fatal(err)
	}
	b, err := img.FromPix(1, 3, 1, []uint8{20, 50, 10})
	if err != nil {
		t.Fatal(err)
	}
	return a, b
}

func run(t *testing.T, op ops.Operator, c *ops.Context, f *img.Image) (*img.Image, error) {
	outs, err := op.MakePromises([]ops.Promise{ops.PromiseOf(&ops.Frame{ID: 3, Image: f})}, c)
	if err != nil {
		return nil, err
	}
	res, err := outs[0]()
	if err != nil {
		return nil, err
	}
	return res.Image, nil
}

func TestOpArithWithContextOperand(t *testing.T) {
	a, b := pair(t)
	c := ops.NewContext(io.Discard)
	c.Operand = b
	cases := []struct {
		op   string
		want []uint8
	}{
		{"add", []uint8{30, 150, 255}},
		{"sub", []uint8{0, 50, 240}},
		{"absdiff", []uint8{10, 50, 240}},
		{"div", []uint8{1, 2, 25}},
	}
	for _, tc := range cases {
		res, err := run(t, NewOpArith(tc.op, ""), c, a)
		if err != nil {
			t.Fatalf("%s: %v", tc.op, err)
		}
		if string(res.Pix) != string(tc.want) {
			t.Errorf("%s: %v; want %v", tc.op, res.Pix, tc.want)
		}
	}
}

func TestOpArithMissingOperand(t *testing.T) {
	a, _ := pair(t)
	if _, err := run(t, NewOpArith("add", ""), ops.NewContext(io.Discard), a); err == nil {
		t.Errorf("missing operand accepted")
	}
}

func TestOpArithShapeMismatch(t *testing.T) {
	a, _ := pair(t)
	c := ops.NewContext(io.Discard)
	c.Operand, _ = img.New(3, 1, 1)
	if _, err := run(t, NewOpArith("add", ""), c, a); !errors.Is(err, img.ErrShapeMismatch) {
		t.Errorf("err=%v; want shape mismatch", err)
	}
}

func TestOpArithConst(t *testing.T) {
	a, _ := pair(t)
	res, err := run(t, NewOpArithConst("mul", 2), ops.NewContext(io.Discard), a)
	if err != nil {
		t.Fatal(err)
	}
	want := []uint8{20, 200, 255}
	if string(res.Pix) != string(want) {
		t.Errorf("mul 2: %v; want %v", res.Pix, want)
	}
	if _, err := run(t, NewOpArithConst("pow", 2), ops.NewContext(io.Discard), a); !errors.Is(err, img.ErrInvalidParameter) {
		t.Errorf("err=%v; want invalid parameter", err)
	}
}

func TestOpBlend(t *testing.T) {
	a, b := pair(t)
	c := ops.NewContext(io.Discard)
	c.Operand = b
	for _, tc := range []struct {
		alpha float64
		want  *img.Image
	}{{1, a}, {0, b}} {
		res, err := run(t, NewOpBlend(tc.alpha, ""), c, a)
		if err != nil {
			t.Fatal(err)
		}
		if string(res.Pix) != string(tc.want.Pix) {
			t.Errorf("alpha %v: %v; want %v", tc.alpha, res.Pix, tc.want.Pix)
		}
	}
	if _, err := run(t, NewOpBlend(1.5, ""), c, a); !errors.Is(err, img.ErrInvalidParameter) {
		t.Errorf("err=%v; want invalid parameter", err)
	}
}

func TestOperandRejectsAbsolutePath(t *testing.T) {
	o := &Operand{FileName: "/etc/passwd"}
	if _, err := o.Resolve(ops.NewContext(io.Discard)); err == nil {
		t.Errorf("absolute operand path accepted")
	}
}
