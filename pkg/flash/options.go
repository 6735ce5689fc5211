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
	"time"

	"github.com/xelalexv/cartflash/pkg/codec"
	"github.com/xelalexv/cartflash/pkg/flash/protocol"
)

// Config holds the driver configuration.
type Config struct {
	// ProgramAttempts is the number of times a byte program is tried
	ProgramAttempts int
	// ProgramPolls is the number of readbacks per program attempt
	ProgramPolls int
	// EraseBudget is the maximum number of status polls while erasing
	EraseBudget int
	// EraseTimeout limits the wall-clock time spent erasing, 0 for no limit
	EraseTimeout time.Duration
	// BackupOffset is where the copy of the payload length lives
	BackupOffset uint32
	// Codec encodes and decodes the persisted structure
	Codec codec.Codec
}

//
func defaultConfig() Config {
	return Config{
		ProgramAttempts: 3,
		ProgramPolls:    128,
		EraseBudget:     1 << 20,
		EraseTimeout:    0,
		BackupOffset:    protocol.BackupOffset,
		Codec:           codec.Default,
	}
}

// Option is a functional option for configuring the Driver.
type Option func(*Config)

// WithProgramAttempts sets the number of program attempts per byte.
func WithProgramAttempts(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.ProgramAttempts = n
		}
	}
}

// WithProgramPolls sets the number of readbacks per program attempt.
func WithProgramPolls(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.ProgramPolls = n
		}
	}
}

// WithEraseBudget sets the maximum number of status polls while waiting for
// an erase to complete.
func WithEraseBudget(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.EraseBudget = n
		}
	}
}

// WithEraseTimeout limits the time an erase may take.
func WithEraseTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d >= 0 {
			c.EraseTimeout = d
		}
	}
}

// WithBackupOffset moves the backup length field. New validates the offset
// against the region.
func WithBackupOffset(off uint32) Option {
	return func(c *Config) {
		c.BackupOffset = off
	}
}

// WithCodec sets the structure codec.
func WithCodec(cd codec.Codec) Option {
	return func(c *Config) {
		if cd != nil {
			c.Codec = cd
		}
	}
}
