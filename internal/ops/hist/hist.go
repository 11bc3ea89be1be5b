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
	"encoding/json"
	"fmt"
	"sort"

	"github.com/mlnoga/citra/internal/equalize"
	"github.com/mlnoga/citra/internal/img"
	"github.com/mlnoga/citra/internal/ops"
)

// Named fuzzy sets available to the fuzzyEqualize operator
var FuzzySets = map[string]*equalize.FuzzySet{
	"default":    equalize.DefaultFuzzySet,
	"crisp":      equalize.CrispFuzzySet,
	"linguistic": equalize.LinguisticFuzzySet,
}

// Returns the sorted names of the available fuzzy sets
func FuzzySetNames() []string {
	res := make([]string, 0, len(FuzzySets))
	for n := range FuzzySets {
		res = append(res, n)
	}
	sort.Strings(res)
	return res
}

// Classic histogram equalization, per channel
type OpEqualize struct {
	ops.OpUnaryBase
}

func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpEqualizeDefault() }) } // register the operator for JSON decoding

func NewOpEqualizeDefault() *OpEqualize { return NewOpEqualize(true) }

func NewOpEqualize(active bool) *OpEqualize {
	op := &OpEqualize{
		OpUnaryBase: ops.OpUnaryBase{OpBase: ops.OpBase{Type: "equalize", Active: active}},
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpEqualize) UnmarshalJSON(data []byte) error {
	type defaults OpEqualize
	def := defaults(*NewOpEqualizeDefault())
	err := json.Unmarshal(data, &def)
	if err != nil {
		return err
	}
	*op = OpEqualize(def)
	op.OpUnaryBase.Apply = op.Apply // make method receiver point to op, not def
	return nil
}

func (op *OpEqualize) Apply(f *ops.Frame, c *ops.Context) (fOut *ops.Frame, err error) {
	if !op.Active {
		return f, nil
	}
	fmt.Fprintf(c.Log, "%d: Equalizing histogram of %s image\n", f.ID, f.Image.DimensionsToString())
	return ops.Transform(f, equalize.Equalize)
}

// Fuzzy histogram equalization with a named fuzzy set
type OpFuzzyEqualize struct {
	ops.OpUnaryBase
	Set string `json:"set"`
}

func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpFuzzyEqualizeDefault() }) } // register the operator for JSON decoding

func NewOpFuzzyEqualizeDefault() *OpFuzzyEqualize { return NewOpFuzzyEqualize("default") }

func NewOpFuzzyEqualize(set string) *OpFuzzyEqualize {
	op := &OpFuzzyEqualize{
		OpUnaryBase: ops.OpUnaryBase{OpBase: ops.OpBase{Type: "fuzzyEqualize", Active: true}},
		Set:         set,
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpFuzzyEqualize) UnmarshalJSON(data []byte) error {
	type defaults OpFuzzyEqualize
	def := defaults(*NewOpFuzzyEqualizeDefault())
	err := json.Unmarshal(data, &def)
	if err != nil {
		return err
	}
	*op = OpFuzzyEqualize(def)
	op.OpUnaryBase.Apply = op.Apply // make method receiver point to op, not def
	return nil
}

func (op *OpFuzzyEqualize) Apply(f *ops.Frame, c *ops.Context) (fOut *ops.Frame, err error) {
	if !op.Active {
		return f, nil
	}
	set, ok := FuzzySets[op.Set]
	if !ok {
		return nil, fmt.Errorf("%d: %w", f.ID, img.InvalidParameter("set", op.Set, fmt.Sprintf("one of %v", FuzzySetNames())))
	}
	fmt.Fprintf(c.Log, "%d: Fuzzy equalizing histogram of %s image with %s set of %d regions\n",
		f.ID, f.Image.DimensionsToString(), op.Set, len(set.Regions))
	return ops.Transform(f, func(i *img.Image) (*img.Image, error) { return equalize.FuzzyEqualizeWith(i, set) })
}
