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

package flash

import (
	"errors"
	"fmt"
)

var (
	// ErrChipUnresponsive is returned when an erase does not complete within
	// its poll budget or timeout.
	ErrChipUnresponsive = errors.New("flash chip unresponsive")

	// ErrNoStructure is returned when reading from a chip that holds no
	// valid structure.
	ErrNoStructure = errors.New("no persisted structure")
)

// ProgramError indicates that a byte did not read back correctly after all
// program attempts.
type ProgramError struct {
	Offset   uint32
	Value    byte
	Actual   byte
	Attempts int
}

func (e *ProgramError) Error() string {
	return fmt.Sprintf(
		"programming 0x%02x at 0x%05x failed after %d attempts, reads 0x%02x",
		e.Value, e.Offset, e.Attempts, e.Actual)
}

// PayloadTooLargeError indicates a payload that would overlap the backup
// length field.
type PayloadTooLargeError struct {
	Length uint32
	Max    uint32
}

func (e *PayloadTooLargeError) Error() string {
	return fmt.Sprintf("payload of %d bytes exceeds maximum of %d bytes",
		e.Length, e.Max)
}
