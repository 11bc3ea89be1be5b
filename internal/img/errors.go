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

package img

import (
	"errors"
	"fmt"
)

// Error kinds raised by pixel operations. Match with errors.Is.
var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrShapeMismatch    = errors.New("shape mismatch")
	ErrInvalidShape     = errors.New("invalid image shape")
)

// Returns an ErrInvalidParameter naming the parameter and its offending value
func InvalidParameter(name string, value interface{}, constraint string) error {
	return fmt.Errorf("%w: %s=%v, must be %s", ErrInvalidParameter, name, value, constraint)
}

// Returns an ErrShapeMismatch describing both operands, or nil if the shapes agree
func CheckSameShape(a, b *Image) error {
	if a.SameShape(b) {
		return nil
	}
	return fmt.Errorf("%w: %dx%dx%d vs %dx%dx%d", ErrShapeMismatch,
		a.Height, a.Width, a.Channels, b.Height, b.Width, b.Channels)
}
