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

package tone

import (
	"encoding/json"
	"fmt"

	"github.com/mlnoga/citra/internal/img"
	"github.com/mlnoga/citra/internal/ops"
	"github.com/mlnoga/citra/internal/quant"
	"github.com/mlnoga/citra/internal/tonal"
)

// Grayscale reduction modes
const (
	GrayAverage   = "average"
	GrayLightness = "lightness"
	GrayLuminance = "luminance"
)

var grayModes = map[string]func(*img.Image) (*img.Image, error){
	GrayAverage:   tonal.GrayscaleAverage,
	GrayLightness: tonal.GrayscaleLightness,
	GrayLuminance: tonal.GrayscaleLuminance,
}

// Reduces RGB images to a single gray channel
type OpGrayscale struct {
	ops.OpUnaryBase
	Mode string `json:"mode"`
}

func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpGrayscaleDefault() }) } // register the operator for JSON decoding

func NewOpGrayscaleDefault() *OpGrayscale { return NewOpGrayscale(GrayLuminance) }

func NewOpGrayscale(mode string) *OpGrayscale {
	op := &OpGrayscale{
		OpUnaryBase: ops.OpUnaryBase{OpBase: ops.OpBase{Type: "grayscale", Active: true}},
		Mode:        mode,
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpGrayscale) UnmarshalJSON(data []byte) error {
	type defaults OpGrayscale
	def := defaults(*NewOpGrayscaleDefault())
	err := json.Unmarshal(data, &def)
	if err != nil {
		return err
	}
	*op = OpGrayscale(def)
	op.OpUnaryBase.Apply = op.Apply // make method receiver point to op, not def
	return nil
}

func (op *OpGrayscale) Apply(f *ops.Frame, c *ops.Context) (fOut *ops.Frame, err error) {
	if !op.Active {
		return f, nil
	}
	reduce, ok := grayModes[op.Mode]
	if !ok {
		return nil, fmt.Errorf("%d: %w", f.ID, img.InvalidParameter("mode", op.Mode, "average, lightness or luminance"))
	}
	fmt.Fprintf(c.Log, "%d: Converting to grayscale by %s\n", f.ID, op.Mode)
	return ops.Transform(f, reduce)
}

// Applies a named colour tint
type OpTint struct {
	ops.OpUnaryBase
	Name string `json:"name"`
}

func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpTintDefault() }) } // register the operator for JSON decoding

func NewOpTintDefault() *OpTint { return NewOpTint("yellow") }

func NewOpTint(name string) *OpTint {
	op := &OpTint{
		OpUnaryBase: ops.OpUnaryBase{OpBase: ops.OpBase{Type: "tint", Active: true}},
		Name:        name,
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpTint) UnmarshalJSON(data []byte) error {
	type defaults OpTint
	def := defaults(*NewOpTintDefault())
	err := json.Unmarshal(data, &def)
	if err != nil {
		return err
	}
	*op = OpTint(def)
	op.OpUnaryBase.Apply = op.Apply // make method receiver point to op, not def
	return nil
}

func (op *OpTint) Apply(f *ops.Frame, c *ops.Context) (fOut *ops.Frame, err error) {
	if !op.Active {
		return f, nil
	}
	fmt.Fprintf(c.Log, "%d: Applying %s tint\n", f.ID, op.Name)
	return ops.Transform(f, func(i *img.Image) (*img.Image, error) { return tonal.Tint(i, op.Name) })
}

// Inverts all intensities
type OpInvert struct {
	ops.OpUnaryBase
}

func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpInvertDefault() }) } // register the operator for JSON decoding

func NewOpInvertDefault() *OpInvert { return NewOpInvert(true) }

func NewOpInvert(active bool) *OpInvert {
	op := &OpInvert{
		OpUnaryBase: ops.OpUnaryBase{OpBase: ops.OpBase{Type: "invert", Active: active}},
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpInvert) UnmarshalJSON(data []byte) error {
	type defaults OpInvert
	def := defaults(*NewOpInvertDefault())
	err := json.Unmarshal(data, &def)
	if err != nil {
		return err
	}
	*op = OpInvert(def)
	op.OpUnaryBase.Apply = op.Apply // make method receiver point to op, not def
	return nil
}

func (op *OpInvert) Apply(f *ops.Frame, c *ops.Context) (fOut *ops.Frame, err error) {
	if !op.Active {
		return f, nil
	}
	fmt.Fprintf(c.Log, "%d: Inverting intensities\n", f.ID)
	return ops.Transform(f, tonal.Invert)
}

// Logarithmic brightness curve
type OpLog struct {
	ops.OpUnaryBase
}

func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpLogDefault() }) } // register the operator for JSON decoding

func NewOpLogDefault() *OpLog { return NewOpLog(true) }

func NewOpLog(active bool) *OpLog {
	op := &OpLog{
		OpUnaryBase: ops.OpUnaryBase{OpBase: ops.OpBase{Type: "log", Active: active}},
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpLog) UnmarshalJSON(data []byte) error {
	type defaults OpLog
	def := defaults(*NewOpLogDefault())
	err := json.Unmarshal(data, &def)
	if err != nil {
		return err
	}
	*op = OpLog(def)
	op.OpUnaryBase.Apply = op.Apply // make method receiver point to op, not def
	return nil
}

func (op *OpLog) Apply(f *ops.Frame, c *ops.Context) (fOut *ops.Frame, err error) {
	if !op.Active {
		return f, nil
	}
	fmt.Fprintf(c.Log, "%d: Applying logarithmic brightness\n", f.ID)
	return ops.Transform(f, tonal.LogBrightness)
}

// Gamma correction
type OpGamma struct {
	ops.OpUnaryBase
	Gamma float64 `json:"gamma"`
}

func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpGammaDefault() }) } // register the operator for JSON decoding

func NewOpGammaDefault() *OpGamma { return NewOpGamma(1) }

func NewOpGamma(gamma float64) *OpGamma {
	op := &OpGamma{
		OpUnaryBase: ops.OpUnaryBase{OpBase: ops.OpBase{Type: "gamma", Active: gamma != 1}},
		Gamma:       gamma,
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpGamma) UnmarshalJSON(data []byte) error {
	type defaults OpGamma
	def := defaults(*NewOpGammaDefault())
	def.Active = true
	err := json.Unmarshal(data, &def)
	if err != nil {
		return err
	}
	*op = OpGamma(def)
	op.OpUnaryBase.Apply = op.Apply // make method receiver point to op, not def
	return nil
}

func (op *OpGamma) Apply(f *ops.Frame, c *ops.Context) (fOut *ops.Frame, err error) {
	if !op.Active {
		return f, nil
	}
	fmt.Fprintf(c.Log, "%d: Applying gamma %.3g\n", f.ID, op.Gamma)
	return ops.Transform(f, func(i *img.Image) (*img.Image, error) { return tonal.Gamma(i, op.Gamma) })
}

// Linear brightness and contrast adjustment around mid gray
type OpBrightnessContrast struct {
	ops.OpUnaryBase
	Brightness float64 `json:"brightness"`
	Contrast   float64 `json:"contrast"`
}

func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpBrightnessContrastDefault() }) } // register the operator for JSON decoding

func NewOpBrightnessContrastDefault() *OpBrightnessContrast { return NewOpBrightnessContrast(0, 1) }

func NewOpBrightnessContrast(brightness, contrast float64) *OpBrightnessContrast {
	op := &OpBrightnessContrast{
		OpUnaryBase: ops.OpUnaryBase{OpBase: ops.OpBase{Type: "brightnessContrast", Active: brightness != 0 || contrast != 1}},
		Brightness:  brightness,
		Contrast:    contrast,
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpBrightnessContrast) UnmarshalJSON(data []byte) error {
	type defaults OpBrightnessContrast
	def := defaults(*NewOpBrightnessContrastDefault())
	def.Active = true
	err := json.Unmarshal(data, &def)
	if err != nil {
		return err
	}
	*op = OpBrightnessContrast(def)
	op.OpUnaryBase.Apply = op.Apply // make method receiver point to op, not def
	return nil
}

func (op *OpBrightnessContrast) Apply(f *ops.Frame, c *ops.Context) (fOut *ops.Frame, err error) {
	if !op.Active {
		return f, nil
	}
	fmt.Fprintf(c.Log, "%d: Applying brightness %+.1f and contrast %.3g\n", f.ID, op.Brightness, op.Contrast)
	return ops.Transform(f, func(i *img.Image) (*img.Image, error) {
		return tonal.BrightnessContrast(i, op.Brightness, op.Contrast)
	})
}

// Scales colour saturation in HSL space
type OpSaturation struct {
	ops.OpUnaryBase
	Factor float64 `json:"factor"`
}

func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpSaturationDefault() }) } // register the operator for JSON decoding

func NewOpSaturationDefault() *OpSaturation { return NewOpSaturation(1) }

func NewOpSaturation(factor float64) *OpSaturation {
	op := &OpSaturation{
		OpUnaryBase: ops.OpUnaryBase{OpBase: ops.OpBase{Type: "saturation", Active: factor != 1}},
		Factor:      factor,
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpSaturation) UnmarshalJSON(data []byte) error {
	type defaults OpSaturation
	def := defaults(*NewOpSaturationDefault())
	def.Active = true
	err := json.Unmarshal(data, &def)
	if err != nil {
		return err
	}
	*op = OpSaturation(def)
	op.OpUnaryBase.Apply = op.Apply // make method receiver point to op, not def
	return nil
}

func (op *OpSaturation) Apply(f *ops.Frame, c *ops.Context) (fOut *ops.Frame, err error) {
	if !op.Active {
		return f, nil
	}
	fmt.Fprintf(c.Log, "%d: Scaling saturation by %.3g\n", f.ID, op.Factor)
	return ops.Transform(f, func(i *img.Image) (*img.Image, error) { return tonal.Saturation(i, op.Factor) })
}

// Requantizes intensities to fewer bits per channel
type OpBitDepth struct {
	ops.OpUnaryBase
	Bits int `json:"bits"`
}

func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpBitDepthDefault() }) } // register the operator for JSON decoding

func NewOpBitDepthDefault() *OpBitDepth { return NewOpBitDepth(8) }

func NewOpBitDepth(bits int) *OpBitDepth {
	op := &OpBitDepth{
		OpUnaryBase: ops.OpUnaryBase{OpBase: ops.OpBase{Type: "bitDepth", Active: bits != 8}},
		Bits:        bits,
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpBitDepth) UnmarshalJSON(data []byte) error {
	type defaults OpBitDepth
	def := defaults(*NewOpBitDepthDefault())
	def.Active = true
	err := json.Unmarshal(data, &def)
	if err != nil {
		return err
	}
	*op = OpBitDepth(def)
	op.OpUnaryBase.Apply = op.Apply // make method receiver point to op, not def
	return nil
}

func (op *OpBitDepth) Apply(f *ops.Frame, c *ops.Context) (fOut *ops.Frame, err error) {
	if !op.Active {
		return f, nil
	}
	fmt.Fprintf(c.Log, "%d: Reducing to %d bits per channel\n", f.ID, op.Bits)
	return ops.Transform(f, func(i *img.Image) (*img.Image, error) { return quant.BitDepth(i, op.Bits) })
}
