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

// NewMemory creates a RAM backed region of the given size. Like a freshly
// erased flash chip, it reads 0xff everywhere.
func NewMemory(size uint32) *Memory {
	m := &Memory{data: make([]byte, size)}
	fill(m.data, 0xff)
	return m
}

// Memory is a region backed by a byte slice.
type Memory struct {
	data []byte
}

//
func (m *Memory) Size() uint32 {
	return uint32(len(m.data))
}

//
func (m *Memory) Read8(off uint32) (byte, error) {
	if off >= m.Size() {
		return 0, &RangeError{Offset: off, Length: 1, Size: m.Size()}
	}
	return m.data[off], nil
}

//
func (m *Memory) Write8(off uint32, v byte) error {
	if off >= m.Size() {
		return &RangeError{Offset: off, Length: 1, Size: m.Size()}
	}
	m.data[off] = v
	return nil
}

// Bytes gives direct access to the backing slice.
func (m *Memory) Bytes() []byte {
	return m.data
}

//
func fill(b []byte, v byte) {
	for ix := range b {
		b[ix] = v
	}
}
