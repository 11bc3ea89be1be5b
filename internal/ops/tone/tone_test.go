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
	"errors"
	"io"
	"testing"

	"github.com/mlnoga/citra/internal/img"
	"github.com/mlnoga/citra/internal/ops"
)

func runOp(t *testing.T, op ops.Operator, f *img.Image) (*img.Image, error) {
	c := ops.NewContext(io.Discard)
	outs, err := op.MakePromises([]ops.Promise{ops.PromiseOf(&ops.Frame{ID: 1, Image: f})}, c)
	if err != nil {
		return nil, err
	}
	res, err := outs[0]()
	if err != nil {
		return nil, err
	}
	return res.Image, nil
}

func rgbPixel(t *testing.T, r, g, b uint8) *img.Image {
	f, err := img.FromPix(1, 1, 3, []uint8{r, g, b})
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestOpGrayscaleModes(t *testing.T) {
	cases := []struct {
		mode string
		want uint8
	}{
		{GrayAverage, 117},
		{GrayLightness, 125},
		{GrayLuminance, 124},
	}
	for _, tc := range cases {
		res, err := runOp(t, NewOpGrayscale(tc.mode), rgbPixel(t, 200, 100, 50))
		if err != nil {
			t.Fatal(err)
		}
		if res.Channels != 1 || res.Pix[0] != tc.want {
			t.Errorf("mode %s: %v; want [%d]", tc.mode, res.Pix, tc.want)
		}
	}
	if _, err := runOp(t, NewOpGrayscale("bogus"), rgbPixel(t, 1, 2, 3)); !errors.Is(err, img.ErrInvalidParameter) {
		t.Errorf("err=%v; want invalid parameter", err)
	}
}

func TestOpJSONDefaults(t *testing.T) {
	var g OpGamma
	if err := json.Unmarshal([]byte(`{"type":"gamma","gamma":2}`), &g); err != nil {
		t.Fatal(err)
	}
	if !g.Active || g.Gamma != 2 || g.OpUnaryBase.Apply == nil {
		t.Errorf("gamma=%+v; want active, gamma 2, Apply set", g)
	}

	var bc OpBrightnessContrast
	if err := json.Unmarshal([]byte(`{"type":"brightnessContrast","brightness":10}`), &bc); err != nil {
		t.Fatal(err)
	}
	if bc.Brightness != 10 || bc.Contrast != 1 {
		t.Errorf("brightnessContrast=%+v; want brightness 10 contrast 1", bc)
	}

	var tint OpTint
	if err := json.Unmarshal([]byte(`{"type":"tint","active":false}`), &tint); err != nil {
		t.Fatal(err)
	}
	if tint.Active || tint.Name != "yellow" {
		t.Errorf("tint=%+v; want inactive yellow", tint)
	}
}

func TestOpFromRegistry(t *testing.T) {
	raw := `{"type":"seq","steps":[{"type":"invert"},{"type":"gamma","gamma":2},{"type":"bitDepth","bits":1}]}`
	op, err := ops.NewOperatorFromJSON([]byte(raw))
	if err != nil {
		t.Fatal(err)
	}
	f, _ := img.FromPix(1, 4, 1, []uint8{255, 191, 127, 0})
	res, err := runOp(t, op, f)
	if err != nil {
		t.Fatal(err)
	}
	// invert: 0 64 128 255; gamma 2: 0 16 64 255; one bit: 0 0 0 255
	want := []uint8{0, 0, 0, 255}
	for i := range want {
		if res.Pix[i] != want[i] {
			t.Errorf("pix=%v; want %v", res.Pix, want)
			break
		}
	}
}

func TestOpInactivePassesThrough(t *testing.T) {
	f := rgbPixel(t, 10, 20, 30)
	res, err := runOp(t, NewOpInvert(false), f)
	if err != nil {
		t.Fatal(err)
	}
	if res != f {
		t.Errorf("inactive operator returned a new image")
	}
}

func TestOpErrorsCarryFrameID(t *testing.T) {
	_, err := runOp(t, NewOpGamma(-1), rgbPixel(t, 1, 2, 3))
	if !errors.Is(err, img.ErrInvalidParameter) {
		t.Errorf("gamma err=%v; want invalid parameter", err)
	}
	_, err = runOp(t, NewOpTint("magenta"), rgbPixel(t, 1, 2, 3))
	if !errors.Is(err, img.ErrInvalidParameter) {
		t.Errorf("tint err=%v; want invalid parameter", err)
	}
	_, err = runOp(t, NewOpBitDepth(9), rgbPixel(t, 1, 2, 3))
	if !errors.Is(err, img.ErrInvalidParameter) {
		t.Errorf("bitDepth err=%v; want invalid parameter", err)
	}
}

func TestOpSaturationZeroIsGray(t *testing.T) {
	res, err := runOp(t, NewOpSaturation(0), rgbPixel(t, 200, 100, 50))
	if err != nil {
		t.Fatal(err)
	}
	if res.Pix[0] != res.Pix[1] || res.Pix[1] != res.Pix[2] {
		t.Errorf("pix=%v; want equal channels", res.Pix)
	}
}
