/*
   CartFlash - cartridge flash save driver
   Copyright (c) 2021, Alexander Vollschwitz

   This file is part of CartFlash.

   CartFlash is free software: you can redistribute it and/or modify
   it under the terms of the GNU General Public License as published by
   the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   CartFlash is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
   GNU General Public License for more details.

   You should have received a copy of the GNU General Public License
   along with CartFlash. If not, see <http://www.gnu.org/licenses/>.
*/

package mmio

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is wrapped by every RangeError.
var ErrOutOfRange = errors.New("offset out of range")

// Region is a byte addressable, memory-mapped region. Every access is checked
// against [0, Size()). Reads and writes go straight to the device, nothing is
// cached.
type Region interface {
	Size() uint32
	Read8(off uint32) (byte, error)
	Write8(off uint32, v byte) error
}

// RangeError reports an access of Length bytes at Offset that does not fit
// into a region of Size bytes.
type RangeError struct {
	Offset uint32
	Length uint32
	Size   uint32
}

func (e *RangeError) Error() string {
	if e.Length > 1 {
		return fmt.Sprintf("range 0x%05x+%d exceeds region of size 0x%05x",
			e.Offset, e.Length, e.Size)
	}
	return fmt.Sprintf("offset 0x%05x exceeds region of size 0x%05x",
		e.Offset, e.Size)
}

func (e *RangeError) Unwrap() error { return ErrOutOfRange }

// CheckRange returns a RangeError if length bytes starting at off do not fit
// into a region of the given size.
func CheckRange(off, length, size uint32) error {
	if uint64(off)+uint64(length) > uint64(size) || (length == 0 && off >= size) {
		return &RangeError{Offset: off, Length: length, Size: size}
	}
	return nil
}

// ReadAt fills p with the bytes starting at off, one read per byte.
func ReadAt(r Region, p []byte, off uint32) error {
	if err := CheckRange(off, uint32(len(p)), r.Size()); err != nil {
		return err
	}
	for ix := range p {
		v, err := r.Read8(off + uint32(ix))
		if err != nil {
			return err
		}
		p[ix] = v
	}
	return nil
}

// NewWindow restricts parent to [base, base+size). Offsets into the window are
// relative to base.
func NewWindow(parent Region, base, size uint32) (*Window, error) {
	if parent == nil {
		return nil, errors.New("window needs a parent region")
	}
	if size == 0 {
		return nil, errors.New("window size must not be zero")
	}
	if err := CheckRange(base, size, parent.Size()); err != nil {
		return nil, fmt.Errorf("invalid window: %w", err)
	}
	return &Window{parent: parent, base: base, size: size}, nil
}

// Window is a bounds checked view into a parent region.
type Window struct {
	parent Region
	base   uint32
	size   uint32
}

//
func (w *Window) Size() uint32 {
	return w.size
}

//
func (w *Window) Base() uint32 {
	return w.base
}

//
func (w *Window) Read8(off uint32) (byte, error) {
	if off >= w.size {
		return 0, &RangeError{Offset: off, Length: 1, Size: w.size}
	}
	return w.parent.Read8(w.base + off)
}

//
func (w *Window) Write8(off uint32, v byte) error {
	if off >= w.size {
		return &RangeError{Offset: off, Length: 1, Size: w.size}
	}
	return w.parent.Write8(w.base+off, v)
}
