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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {

	m := NewMemory(16)
	assert.Equal(t, uint32(16), m.Size())

	v, err := m.Read8(15)
	require.NoError(t, err)
	assert.Equal(t, byte(0xff), v)

	require.NoError(t, m.Write8(3, 0x42))
	v, err = m.Read8(3)
	require.NoError(t, err)
	assert.Equal(t, byte(0x42), v)
	assert.Equal(t, byte(0x42), m.Bytes()[3])

	_, err = m.Read8(16)
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.ErrorIs(t, m.Write8(16, 0), ErrOutOfRange)
}

func TestCheckRange(t *testing.T) {

	assert.NoError(t, CheckRange(0, 16, 16))
	assert.NoError(t, CheckRange(12, 4, 16))
	assert.NoError(t, CheckRange(15, 0, 16))
	assert.Error(t, CheckRange(13, 4, 16))
	assert.Error(t, CheckRange(16, 0, 16))
	assert.Error(t, CheckRange(0xffffffff, 2, 16))

	var rerr *RangeError
	require.ErrorAs(t, CheckRange(13, 4, 16), &rerr)
	assert.Equal(t, uint32(13), rerr.Offset)
	assert.Equal(t, uint32(4), rerr.Length)
	assert.Contains(t, rerr.Error(), "0x0000d+4")
}

func TestReadAt(t *testing.T) {

	m := NewMemory(8)
	copy(m.Bytes(), []byte{1, 2, 3, 4, 5, 6, 7, 8})

	buf := make([]byte, 3)
	require.NoError(t, ReadAt(m, buf, 5))
	assert.Equal(t, []byte{6, 7, 8}, buf)

	assert.ErrorIs(t, ReadAt(m, buf, 6), ErrOutOfRange)
}

func TestWindow(t *testing.T) {

	parent := NewMemory(0x100)

	_, err := NewWindow(parent, 0xf0, 0x20)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = NewWindow(parent, 0, 0)
	assert.Error(t, err)
	_, err = NewWindow(nil, 0, 1)
	assert.Error(t, err)

	w, err := NewWindow(parent, 0x80, 0x10)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x10), w.Size())
	assert.Equal(t, uint32(0x80), w.Base())

	require.NoError(t, w.Write8(0x01, 0x33))
	assert.Equal(t, byte(0x33), parent.Bytes()[0x81])

	v, err := w.Read8(0x01)
	require.NoError(t, err)
	assert.Equal(t, byte(0x33), v)

	_, err = w.Read8(0x10)
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.ErrorIs(t, w.Write8(0x10, 0), ErrOutOfRange)
}
