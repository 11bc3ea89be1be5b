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

package codec

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/mlnoga/citra/internal/img"
)

func testImage(t *testing.T, c int) *img.Image {
	f, err := img.New(5, 7, c)
	if err != nil {
		t.Fatal(err)
	}
	for i := range f.Pix {
		f.Pix[i] = uint8(i * 7)
	}
	return f
}

func TestLosslessRoundTrip(t *testing.T) {
	for _, format := range []string{FormatPNG, FormatTIFF, FormatBMP} {
		for _, c := range []int{1, 3} {
			f := testImage(t, c)
			var buf bytes.Buffer
			if err := Encode(&buf, f, format, 0); err != nil {
				t.Fatalf("%s: %v", format, err)
			}
			g, detected, err := Decode(&buf)
			if err != nil {
				t.Fatalf("%s: %v", format, err)
			}
			if detected != format {
				t.Errorf("detected format %s; want %s", detected, format)
			}
			if g.Height != f.Height || g.Width != f.Width {
				t.Fatalf("%s: shape %s; want %s", format, g.DimensionsToString(), f.DimensionsToString())
			}
			// BMP and TIFF may store gray as paletted or RGB, compare via RGB
			if !bytes.Equal(g.ExpandGray().Pix, f.ExpandGray().Pix) {
				t.Errorf("%s channels=%d: samples differ after round trip", format, c)
			}
		}
	}
}

func TestJPEGKeepsShape(t *testing.T) {
	f := testImage(t, 3)
	var buf bytes.Buffer
	if err := Encode(&buf, f, FormatJPEG, 90); err != nil {
		t.Fatal(err)
	}
	g, _, err := Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if g.Height != 5 || g.Width != 7 || g.Channels != 3 {
		t.Errorf("shape %dx%dx%d; want 5x7x3", g.Height, g.Width, g.Channels)
	}
}

func TestFromGoImageDropsAlpha(t *testing.T) {
	m := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	m.SetNRGBA(0, 0, color.NRGBA{10, 20, 30, 0})
	m.SetNRGBA(1, 0, color.NRGBA{40, 50, 60, 128})
	f, err := FromGoImage(m)
	if err != nil {
		t.Fatal(err)
	}
	want := []uint8{10, 20, 30, 40, 50, 60}
	if !bytes.Equal(f.Pix, want) {
		t.Errorf("pix=%v; want %v", f.Pix, want)
	}
}

func TestFormatFromName(t *testing.T) {
	tcs := map[string]string{"a.PNG": FormatPNG, "b.jpg": FormatJPEG, "c.jpeg": FormatJPEG, "d.tif": FormatTIFF, "e.bmp": FormatBMP}
	for name, want := range tcs {
		got, err := FormatFromName(name)
		if err != nil || got != want {
			t.Errorf("%s: %s %v; want %s", name, got, err, want)
		}
	}
	if _, err := FormatFromName("x.fits"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("err=%v; want ErrUnknownFormat", err)
	}
}

func TestWriteReadFile(t *testing.T) {
	f := testImage(t, 1)
	name := filepath.Join(t.TempDir(), "gray.png")
	if err := WriteFile(name, f, 0); err != nil {
		t.Fatal(err)
	}
	g, err := ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	if g.Channels != 1 || !bytes.Equal(g.Pix, f.Pix) {
		t.Errorf("read back %s; want identical gray image", g.DimensionsToString())
	}
}

func TestDecodeGray16KeepsHighByte(t *testing.T) {
	m := image.NewGray16(image.Rect(0, 0, 4, 2))
	values := []uint16{0, 0x00ff, 0x0100, 0x7fff, 0x8000, 0xabcd, 0xff00, 0xffff}
	for i, v := range values {
		m.SetGray16(i%4, i/4, color.Gray16{Y: v})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, m); err != nil {
		t.Fatal(err)
	}

	f, format, err := Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if format != FormatPNG || f.Channels != 1 || f.Height != 2 || f.Width != 4 {
		t.Fatalf("format=%s shape=%s; want png 4x2 mono", format, f.DimensionsToString())
	}
	for i, v := range values {
		if want := uint8(v >> 8); f.Pix[i] != want {
			t.Errorf("pix[%d]=%d for %#04x; want %d", i, f.Pix[i], v, want)
		}
	}
}
