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

//go:build unix

package mmio

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

/*
	OpenMapped maps the image file at path into memory and returns it as a
	region. The file is created and filled with 0xff if it does not exist yet.
	An existing image must have exactly the requested size. The mapping is
	shared, so everything written to the region ends up in the file, and the
	content survives restarts of the process.
*/
func OpenMapped(path string, size uint32) (*Mapped, error) {

	if size == 0 {
		return nil, fmt.Errorf("image size must not be zero")
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	fresh := fi.Size() == 0

	if fresh {
		log.WithFields(log.Fields{
			"image": path,
			"size":  size,
		}).Info("creating new flash image")
		if err := f.Truncate(int64(size)); err != nil {
			f.Close()
			return nil, err
		}

	} else if fi.Size() != int64(size) {
		f.Close()
		return nil, fmt.Errorf(
			"flash image %s has size %d, expected %d", path, fi.Size(), size)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("cannot map flash image %s: %w", path, err)
	}

	if fresh {
		fill(data, 0xff)
	}

	return &Mapped{file: f, data: data}, nil
}

// Mapped is a region backed by a memory-mapped image file.
type Mapped struct {
	file *os.File
	data []byte
}

//
func (m *Mapped) Size() uint32 {
	return uint32(len(m.data))
}

//
func (m *Mapped) Read8(off uint32) (byte, error) {
	if off >= m.Size() {
		return 0, &RangeError{Offset: off, Length: 1, Size: m.Size()}
	}
	return m.data[off], nil
}

//
func (m *Mapped) Write8(off uint32, v byte) error {
	if off >= m.Size() {
		return &RangeError{Offset: off, Length: 1, Size: m.Size()}
	}
	m.data[off] = v
	return nil
}

// Sync flushes the mapped image to disk.
func (m *Mapped) Sync() error {
	if m.data == nil {
		return nil
	}
	return unix.Msync(m.data, unix.MS_SYNC)
}

// Close flushes and unmaps the image. It is safe to call Close more than once.
func (m *Mapped) Close() error {

	if m.data == nil {
		return nil
	}

	if err := m.Sync(); err != nil {
		log.Errorf("error syncing flash image: %v", err)
	}

	err := unix.Munmap(m.data)
	m.data = nil

	if cerr := m.file.Close(); err == nil {
		err = cerr
	}
	return err
}
