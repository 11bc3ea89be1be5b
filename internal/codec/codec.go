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

// Package codec converts between encoded image files and 8-bit image buffers.
// Decoding understands PNG, JPEG, GIF, TIFF, BMP and WebP; encoding writes
// PNG, JPEG, TIFF and BMP.
package codec

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif" // register decoder
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mlnoga/citra/internal/img"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp" // register decoder
)

// Output formats
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
	FormatTIFF = "tiff"
	FormatBMP  = "bmp"
)

// Default JPEG quality
const DefaultQuality = 95

var ErrUnknownFormat = errors.New("unknown image format")

// Determines the output format from the suffix of a file name
func FormatFromName(fileName string) (string, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".png":
		return FormatPNG, nil
	case ".jpg", ".jpeg":
		return FormatJPEG, nil
	case ".tif", ".tiff":
		return FormatTIFF, nil
	case ".bmp":
		return FormatBMP, nil
	}
	return "", fmt.Errorf("%w: suffix of %s", ErrUnknownFormat, fileName)
}

// Reads an image from a file
func ReadFile(fileName string) (*img.Image, error) {
	file, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	f, _, err := Decode(bufio.NewReader(file))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fileName, err)
	}
	return f, nil
}

// Decodes an image in any registered format. Returns the buffer and the format name
func Decode(r io.Reader) (*img.Image, string, error) {
	m, format, err := image.Decode(r)
	if err != nil {
		return nil, "", err
	}
	f, err := FromGoImage(m)
	return f, format, err
}

// Writes an image to a file, with the format chosen by the file name suffix
func WriteFile(fileName string, f *img.Image, quality int) error {
	format, err := FormatFromName(fileName)
	if err != nil {
		return err
	}
	file, err := os.Create(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if err := Encode(writer, f, format, quality); err != nil {
		return err
	}
	return writer.Flush()
}

// Encodes an image in the given format. Quality only applies to JPEG
func Encode(w io.Writer, f *img.Image, format string, quality int) error {
	if err := f.Validate(); err != nil {
		return err
	}
	m := ToGoImage(f)
	switch format {
	case FormatPNG:
		return png.Encode(w, m)
	case FormatJPEG:
		if quality <= 0 || quality > 100 {
			quality = DefaultQuality
		}
		return jpeg.Encode(w, m, &jpeg.Options{Quality: quality})
	case FormatTIFF:
		return tiff.Encode(w, m, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	case FormatBMP:
		return bmp.Encode(w, m)
	}
	return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
}

// Converts a Go image into a buffer. Gray images yield one channel, all others three.
// Alpha is dropped, colors are taken un-premultiplied
func FromGoImage(m image.Image) (*img.Image, error) {
	b := m.Bounds()
	width, height := b.Dx(), b.Dy()

	switch src := m.(type) {
	case *image.Gray:
		f, err := img.New(height, width, 1)
		if err != nil {
			return nil, err
		}
		for y := 0; y < height; y++ {
			o := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(f.Pix[y*width:(y+1)*width], src.Pix[o:o+width])
		}
		return f, nil

	case *image.Gray16:
		f, err := img.New(height, width, 1)
		if err != nil {
			return nil, err
		}
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				f.Pix[y*width+x] = uint8(src.Gray16At(b.Min.X+x, b.Min.Y+y).Y >> 8)
			}
		}
		return f, nil

	case *image.NRGBA:
		f, err := img.New(height, width, 3)
		if err != nil {
			return nil, err
		}
		for y := 0; y < height; y++ {
			row := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
			for x := 0; x < width; x++ {
				copy(f.Pix[(y*width+x)*3:(y*width+x)*3+3], row[4*x:4*x+3])
			}
		}
		return f, nil
	}

	f, err := img.New(height, width, 3)
	if err != nil {
		return nil, err
	}
	for y := 0; y < height; y++ {
		yoffset := y * width
		for x := 0; x < width; x++ {
			c := color.NRGBAModel.Convert(m.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			o := (yoffset + x) * 3
			f.Pix[o], f.Pix[o+1], f.Pix[o+2] = c.R, c.G, c.B
		}
	}
	return f, nil
}

// Converts a buffer into a Go image: image.Gray for one channel, opaque image.RGBA for three
func ToGoImage(f *img.Image) image.Image {
	rect := image.Rect(0, 0, f.Width, f.Height)
	if f.Channels == 1 {
		m := image.NewGray(rect)
		for y := 0; y < f.Height; y++ {
			copy(m.Pix[y*m.Stride:y*m.Stride+f.Width], f.Pix[y*f.Width:(y+1)*f.Width])
		}
		return m
	}
	m := image.NewRGBA(rect)
	for y := 0; y < f.Height; y++ {
		yoffset := y * f.Width
		for x := 0; x < f.Width; x++ {
			o := (yoffset + x) * 3
			m.SetRGBA(x, y, color.RGBA{f.Pix[o], f.Pix[o+1], f.Pix[o+2], 255})
		}
	}
	return m
}
