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

// Package arith combines an image with a second image of identical shape, or
// with a scalar constant, sample by sample. Results saturate to [0,255].
package arith

import (
	"fmt"
	"math"
	"sort"

	"github.com/mlnoga/citra/internal/img"
)

// A named dyadic operation
type Op string

const (
	OpAdd      Op = "add"
	OpSubtract Op = "sub"
	OpMultiply Op = "mul"
	OpDivide   Op = "div"
	OpAbsDiff  Op = "absdiff"
)

// Sample combiners. Division by zero saturates to 255
var combiners = map[Op]func(a, b float64) float64{
	OpAdd:      func(a, b float64) float64 { return a + b },
	OpSubtract: func(a, b float64) float64 { return a - b },
	OpMultiply: func(a, b float64) float64 { return a * b },
	OpDivide: func(a, b float64) float64 {
		if b == 0 {
			return 255
		}
		return a / b
	},
	OpAbsDiff: func(a, b float64) float64 { return math.Abs(a - b) },
}

// Returns the sorted names of all operations
func Ops() []string {
	res := make([]string, 0, len(combiners))
	for op := range combiners {
		res = append(res, string(op))
	}
	sort.Strings(res)
	return res
}

func combiner(op Op) (func(a, b float64) float64, error) {
	c, ok := combiners[op]
	if !ok {
		return nil, img.InvalidParameter("op", op, fmt.Sprintf("one of %v", Ops()))
	}
	return c, nil
}

// Combines two images of identical shape with the named operation
func Apply(op Op, a, b *img.Image) (*img.Image, error) {
	c, err := combiner(op)
	if err != nil {
		return nil, err
	}
	if err := checkOperands(a, b); err != nil {
		return nil, err
	}
	res := img.NewLike(a)
	for i := range a.Pix {
		res.Pix[i] = img.Clamp(c(float64(a.Pix[i]), float64(b.Pix[i])))
	}
	return res, nil
}

// Combines every sample of an image with a finite constant using the named operation.
// Uses a lookup table, as the result only depends on the sample value
func ApplyConst(op Op, a *img.Image, k float64) (*img.Image, error) {
	c, err := combiner(op)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(k) || math.IsInf(k, 0) {
		return nil, img.InvalidParameter("constant", k, "finite")
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a.ApplyLUT(img.NewLUT(func(v float64) float64 { return c(v, k) })), nil
}

func checkOperands(a, b *img.Image) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if err := b.Validate(); err != nil {
		return err
	}
	return img.CheckSameShape(a, b)
}

func Add(a, b *img.Image) (*img.Image, error)      { return Apply(OpAdd, a, b) }
func Subtract(a, b *img.Image) (*img.Image, error) { return Apply(OpSubtract, a, b) }
func Multiply(a, b *img.Image) (*img.Image, error) { return Apply(OpMultiply, a, b) }

// Divides a by b. A zero divisor saturates the sample to 255
func Divide(a, b *img.Image) (*img.Image, error) { return Apply(OpDivide, a, b) }

// Returns |a-b| per sample
func AbsDiff(a, b *img.Image) (*img.Image, error) { return Apply(OpAbsDiff, a, b) }

func AddConst(a *img.Image, k float64) (*img.Image, error)      { return ApplyConst(OpAdd, a, k) }
func SubtractConst(a *img.Image, k float64) (*img.Image, error) { return ApplyConst(OpSubtract, a, k) }
func MultiplyConst(a *img.Image, k float64) (*img.Image, error) { return ApplyConst(OpMultiply, a, k) }

// Divides every sample by k. A zero constant saturates the whole image to 255
func DivideConst(a *img.Image, k float64) (*img.Image, error) { return ApplyConst(OpDivide, a, k) }

// Returns round(alpha*a+(1-alpha)*b) per sample. Alpha must lie in [0,1]
func Blend(a, b *img.Image, alpha float64) (*img.Image, error) {
	if !(alpha >= 0 && alpha <= 1) {
		return nil, img.InvalidParameter("alpha", alpha, "in [0,1]")
	}
	if err := checkOperands(a, b); err != nil {
		return nil, err
	}
	res := img.NewLike(a)
	beta := 1 - alpha
	for i := range a.Pix {
		res.Pix[i] = img.Clamp(alpha*float64(a.Pix[i]) + beta*float64(b.Pix[i]))
	}
	return res, nil
}
