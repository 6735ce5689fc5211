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

//go:build !unix

package mmio

import "fmt"

// OpenMapped is only available on unix systems.
func OpenMapped(path string, size uint32) (*Mapped, error) {
	return nil, fmt.Errorf("mapped flash images are not supported on this platform")
}

// Mapped is a region backed by a memory-mapped image file.
type Mapped struct {
	Memory
}

//
func (m *Mapped) Sync() error {
	return nil
}

//
func (m *Mapped) Close() error {
	return nil
}
