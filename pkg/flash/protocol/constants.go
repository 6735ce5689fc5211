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

package protocol

// unlock sequence, written before every command
const (
	UnlockAddr1 uint32 = 0x5555
	UnlockAddr2 uint32 = 0x2aaa
	UnlockByte1 byte   = 0xaa
	UnlockByte2 byte   = 0x55
)

// command bytes, written to UnlockAddr1 after the unlock sequence
const (
	CmdEnterID    byte = 0x90 // manufacturer/device id read setup
	CmdExitID     byte = 0xf0 // back to read array mode
	CmdEraseSetup byte = 0x80
	CmdEraseChip  byte = 0x10 // erase confirm, only valid after CmdEraseSetup
	CmdProgram    byte = 0xa0 // next write programs a single byte
)

// id mode register offsets
const (
	ManufacturerOffset uint32 = 0x0000
	DeviceOffset       uint32 = 0x0001
)

// save layout
const (
	LengthOffset  uint32 = 0x0000
	LengthSize    uint32 = 4
	PayloadOffset uint32 = LengthOffset + LengthSize
	BackupOffset  uint32 = 0xfff0
	// StatusOffset is polled during erase until it reads Erased.
	StatusOffset uint32 = 0x0000
)

//
const (
	Erased   byte   = 0xff
	Sentinel uint32 = 0xffffffff
)

// address map
const (
	DefaultBase uint32 = 0x0e000000
	WindowSize  uint32 = 0x10000
	BusSize     uint32 = 0x10000000
)
