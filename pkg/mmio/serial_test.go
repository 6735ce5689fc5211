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
	"encoding/binary"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAdapter answers frames like a cartridge adapter would, with mem as the
// cartridge bus
func fakeAdapter(conn net.Conn, mem *Memory, hellos chan<- []byte) {

	defer conn.Close()

	if _, err := conn.Write([]byte("\x00xhloc")); err != nil {
		return
	}

	hello := make([]byte, 4)
	if _, err := io.ReadFull(conn, hello); err != nil {
		return
	}
	hellos <- hello

	frame := make([]byte, frameLength)
	for {
		if _, err := io.ReadFull(conn, frame); err != nil {
			return
		}
		off := binary.BigEndian.Uint32(frame[1:5])
		switch frame[0] {
		case frameRead:
			v, _ := mem.Read8(off)
			if _, err := conn.Write([]byte{v}); err != nil {
				return
			}
		case frameWrite:
			mem.Write8(off, frame[5])
		}
	}
}

func TestSerial(t *testing.T) {

	host, adapter := net.Pipe()
	mem := NewMemory(0x100)
	hellos := make(chan []byte, 1)
	go fakeAdapter(adapter, mem, hellos)

	s := NewSerial(host, mem.Size())
	require.NoError(t, s.Sync())
	assert.Equal(t, []byte("hlod"), <-hellos)
	assert.Equal(t, uint32(0x100), s.Size())

	require.NoError(t, s.Write8(0x42, 0x17))
	v, err := s.Read8(0x42)
	require.NoError(t, err)
	assert.Equal(t, byte(0x17), v)
	assert.Equal(t, byte(0x17), mem.Bytes()[0x42])

	_, err = s.Read8(0x100)
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.ErrorIs(t, s.Write8(0x100, 0), ErrOutOfRange)

	require.NoError(t, s.Close())
	_, err = s.Read8(0)
	assert.Error(t, err)
}
