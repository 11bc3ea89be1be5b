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

// Package img holds the canonical 8-bit image buffer which all pixel
// operations read and write.
package img

import (
	"fmt"
)

// An 8-bit image. Samples are stored row-major and interleaved, i.e. the
// sample for row y, column x and channel ch is at Pix[(y*Width+x)*Channels+ch].
// Channel order for color images is R,G,B. There is no alpha channel.
type Image struct {
	Height   int     // Number of rows, >0
	Width    int     // Number of columns, >0
	Channels int     // 1 for grayscale, 3 for RGB
	Pix      []uint8 // Samples, len(Pix)==Height*Width*Channels
}

// Creates a zero-initialized image of the given shape
func New(height, width, channels int) (*Image, error) {
	if err := checkShape(height, width, channels); err != nil {
		return nil, err
	}
	return &Image{
		Height:   height,
		Width:    width,
		Channels: channels,
		Pix:      make([]uint8, height*width*channels),
	}, nil
}

// Creates an image of the given shape from a copy of the given samples
func FromPix(height, width, channels int, pix []uint8) (*Image, error) {
	if err := checkShape(height, width, channels); err != nil {
		return nil, err
	}
	if len(pix) != height*width*channels {
		return nil, fmt.Errorf("%w: %d samples for %dx%dx%d", ErrInvalidShape, len(pix), height, width, channels)
	}
	return &Image{
		Height:   height,
		Width:    width,
		Channels: channels,
		Pix:      append([]uint8(nil), pix...),
	}, nil
}

// Allocates an image with the same shape as the given one, without copying samples
func NewLike(f *Image) *Image {
	return &Image{
		Height:   f.Height,
		Width:    f.Width,
		Channels: f.Channels,
		Pix:      make([]uint8, len(f.Pix)),
	}
}

func checkShape(height, width, channels int) error {
	if height <= 0 || width <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidShape, height, width)
	}
	if channels != 1 && channels != 3 {
		return fmt.Errorf("%w: %d channels", ErrInvalidShape, channels)
	}
	return nil
}

// Checks the shape and buffer length. Operations call this on their inputs, as
// images may be assembled by hand rather than with New or FromPix.
func (f *Image) Validate() error {
	if f == nil {
		return fmt.Errorf("%w: nil image", ErrInvalidShape)
	}
	if err := checkShape(f.Height, f.Width, f.Channels); err != nil {
		return err
	}
	if len(f.Pix) != f.Height*f.Width*f.Channels {
		return fmt.Errorf("%w: %d samples for %s", ErrInvalidShape, len(f.Pix), f.DimensionsToString())
	}
	return nil
}

// Returns a deep copy of the image
func (f *Image) Clone() *Image {
	return &Image{
		Height:   f.Height,
		Width:    f.Width,
		Channels: f.Channels,
		Pix:      append([]uint8(nil), f.Pix...),
	}
}

// Returns true if both images have identical height, width and channel count
func (f *Image) SameShape(g *Image) bool {
	return f.Height == g.Height && f.Width == g.Width && f.Channels == g.Channels
}

// Number of pixels, not samples
func (f *Image) Pixels() int { return f.Height * f.Width }

// Index of the first sample of the pixel at row y, column x
func (f *Image) Offset(y, x int) int { return (y*f.Width + x) * f.Channels }

func (f *Image) At(y, x, ch int) uint8 { return f.Pix[f.Offset(y, x)+ch] }

func (f *Image) Set(y, x, ch int, v uint8) { f.Pix[f.Offset(y, x)+ch] = v }

// Returns a copy of the samples of a single channel, in row-major order
func (f *Image) Channel(ch int) []uint8 {
	res := make([]uint8, f.Pixels())
	for i, j := ch, 0; i < len(f.Pix); i, j = i+f.Channels, j+1 {
		res[j] = f.Pix[i]
	}
	return res
}

// Returns a three-channel copy of the image. Grayscale samples are replicated
// into R, G and B. Color images are simply cloned.
func (f *Image) ExpandGray() *Image {
	if f.Channels == 3 {
		return f.Clone()
	}
	res := &Image{Height: f.Height, Width: f.Width, Channels: 3, Pix: make([]uint8, 3*len(f.Pix))}
	for i, v := range f.Pix {
		res.Pix[3*i], res.Pix[3*i+1], res.Pix[3*i+2] = v, v, v
	}
	return res
}

// Counts the number of distinct sample values across all channels
func (f *Image) DistinctValues() int {
	var seen [256]bool
	n := 0
	for _, v := range f.Pix {
		if !seen[v] {
			seen[v] = true
			n++
		}
	}
	return n
}

// Returns a human-readable description of the image dimensions
func (f *Image) DimensionsToString() string {
	if f.Channels == 1 {
		return fmt.Sprintf("%dx%d mono", f.Width, f.Height)
	}
	return fmt.Sprintf("%dx%d RGB", f.Width, f.Height)
}
