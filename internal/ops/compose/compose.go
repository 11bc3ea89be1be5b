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
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/mlnoga/citra/internal/arith"
	"github.com/mlnoga/citra/internal/codec"
	"github.com/mlnoga/citra/internal/img"
	"github.com/mlnoga/citra/internal/ops"
)

var ErrNoOperand = fmt.Errorf("%w: no second operand given", img.ErrInvalidParameter)

// Second operand of a dyadic operator: an image file loaded once on first use,
// or the context operand if no file name is given
type Operand struct {
	FileName string `json:"fileName"`

	once  sync.Once
	image *img.Image
	err   error
}

// Resolves the operand image for the given context
func (o *Operand) Resolve(c *ops.Context) (*img.Image, error) {
	if o.FileName == "" {
		if c.Operand == nil {
			return nil, ErrNoOperand
		}
		return c.Operand, nil
	}
	o.once.Do(func() {
		if !ops.IsPathAllowed(o.FileName) {
			o.err = errors.New("Operand filename outside current directory tree, aborting")
			return
		}
		o.image, o.err = codec.ReadFile(o.FileName)
		if o.err == nil {
			fmt.Fprintf(c.Log, "Loaded %s operand from %s\n", o.image.DimensionsToString(), o.FileName)
		}
	})
	return o.image, o.err
}

// Combines each frame with a second operand image, sample by sample
type OpArith struct {
	ops.OpUnaryBase
	Op       string `json:"op"`
	FileName string `json:"fileName"`
	operand  *Operand
}

func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpArithDefault() }) } // register the operator for JSON decoding

func NewOpArithDefault() *OpArith { return NewOpArith(string(arith.OpAdd), "") }

func NewOpArith(opName, fileName string) *OpArith {
	op := &OpArith{
		OpUnaryBase: ops.OpUnaryBase{OpBase: ops.OpBase{Type: "arith", Active: true}},
		Op:          opName,
		FileName:    fileName,
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpArith) UnmarshalJSON(data []byte) error {
	type defaults OpArith
	def := defaults(*NewOpArithDefault())
	err := json.Unmarshal(data, &def)
	if err != nil {
		return err
	}
	*op = OpArith(def)
	op.OpUnaryBase.Apply = op.Apply // make method receiver point to op, not def
	return nil
}

// Materializes the operand once, then applies the operator to every input
func (op *OpArith) MakePromises(ins []ops.Promise, c *ops.Context) (outs []ops.Promise, err error) {
	op.operand = &Operand{FileName: op.FileName}
	return op.OpUnaryBase.MakePromises(ins, c)
}

func (op *OpArith) Apply(f *ops.Frame, c *ops.Context) (fOut *ops.Frame, err error) {
	if !op.Active {
		return f, nil
	}
	if op.operand == nil {
		op.operand = &Operand{FileName: op.FileName}
	}
	b, err := op.operand.Resolve(c)
	if err != nil {
		return nil, fmt.Errorf("%d: %w", f.ID, err)
	}
	fmt.Fprintf(c.Log, "%d: Applying %s with %s operand\n", f.ID, op.Op, b.DimensionsToString())
	return ops.Transform(f, func(a *img.Image) (*img.Image, error) { return arith.Apply(arith.Op(op.Op), a, b) })
}

// Combines each frame with a constant, sample by sample
type OpArithConst struct {
	ops.OpUnaryBase
	Op       string  `json:"op"`
	Constant float64 `json:"constant"`
}

func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpArithConstDefault() }) } // register the operator for JSON decoding

func NewOpArithConstDefault() *OpArithConst { return NewOpArithConst(string(arith.OpAdd), 0) }

func NewOpArithConst(opName string, constant float64) *OpArithConst {
	op := &OpArithConst{
		OpUnaryBase: ops.OpUnaryBase{OpBase: ops.OpBase{Type: "arithConst", Active: true}},
		Op:          opName,
		Constant:    constant,
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpArithConst) UnmarshalJSON(data []byte) error {
	type defaults OpArithConst
	def := defaults(*NewOpArithConstDefault())
	err := json.Unmarshal(data, &def)
	if err != nil {
		return err
	}
	*op = OpArithConst(def)
	op.OpUnaryBase.Apply = op.Apply // make method receiver point to op, not def
	return nil
}

func (op *OpArithConst) Apply(f *ops.Frame, c *ops.Context) (fOut *ops.Frame, err error) {
	if !op.Active {
		return f, nil
	}
	fmt.Fprintf(c.Log, "%d: Applying %s with constant %g\n", f.ID, op.Op, op.Constant)
	return ops.Transform(f, func(a *img.Image) (*img.Image, error) {
		return arith.ApplyConst(arith.Op(op.Op), a, op.Constant)
	})
}

// Blends each frame with a second operand, alpha weighting the frame
type OpBlend struct {
	ops.OpUnaryBase
	Alpha    float64 `json:"alpha"`
	FileName string  `json:"fileName"`
	operand  *Operand
}

func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpBlendDefault() }) } // register the operator for JSON decoding

func NewOpBlendDefault() *OpBlend { return NewOpBlend(0.5, "") }

func NewOpBlend(alpha float64, fileName string) *OpBlend {
	op := &OpBlend{
		OpUnaryBase: ops.OpUnaryBase{OpBase: ops.OpBase{Type: "blend", Active: true}},
		Alpha:       alpha,
		FileName:    fileName,
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpBlend) UnmarshalJSON(data []byte) error {
	type defaults OpBlend
	def := defaults(*NewOpBlendDefault())
	err := json.Unmarshal(data, &def)
	if err != nil {
		return err
	}
	*op = OpBlend(def)
	op.OpUnaryBase.Apply = op.Apply // make method receiver point to op, not def
	return nil
}

// Materializes the operand once, then applies the operator to every input
func (op *OpBlend) MakePromises(ins []ops.Promise, c *ops.Context) (outs []ops.Promise, err error) {
	op.operand = &Operand{FileName: op.FileName}
	return op.OpUnaryBase.MakePromises(ins, c)
}

func (op *OpBlend) Apply(f *ops.Frame, c *ops.Context) (fOut *ops.Frame, err error) {
	if !op.Active {
		return f, nil
	}
	if op.operand == nil {
		op.operand = &Operand{FileName: op.FileName}
	}
	b, err := op.operand.Resolve(c)
	if err != nil {
		return nil, fmt.Errorf("%d: %w", f.ID, err)
	}
	fmt.Fprintf(c.Log, "%d: Blending with alpha %.3g\n", f.ID, op.Alpha)
	return ops.Transform(f, func(a *img.Image) (*img.Image, error) { return arith.Blend(a, b, op.Alpha) })
}
