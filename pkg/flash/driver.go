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
	"context"
	"errors"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/cartflash/pkg/codec"
	"github.com/xelalexv/cartflash/pkg/flash/protocol"
	"github.com/xelalexv/cartflash/pkg/mmio"
)

// chunk size for dumping the region
const dumpChunkSize = 4096

/*
	New creates a driver for the flash chip behind region. Region offsets are
	chip offsets, so when the chip sits at some base address on a larger bus,
	pass an mmio.Window. An error is returned when the region cannot hold the
	save layout. This is an initialization error, callers should not retry.

	The driver is a handle to the chip, not a shared service. It is not safe
	for concurrent use: command sequences and program verification are multi
	step protocols that must not interleave. Whoever shares a driver has to
	serialize all calls.
*/
func New(region mmio.Region, opts ...Option) (*Driver, error) {

	if region == nil {
		return nil, errors.New("flash driver needs a region")
	}

	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	if cfg.BackupOffset <= protocol.PayloadOffset {
		return nil, fmt.Errorf(
			"backup offset 0x%05x overlaps length field", cfg.BackupOffset)
	}

	if err := mmio.CheckRange(
		cfg.BackupOffset, protocol.LengthSize, region.Size()); err != nil {
		return nil, fmt.Errorf("backup length field outside of region: %w", err)
	}

	for _, off := range []uint32{protocol.UnlockAddr1, protocol.UnlockAddr2} {
		if off >= region.Size() {
			return nil, fmt.Errorf(
				"unlock address 0x%05x outside of region", off)
		}
	}

	return &Driver{region: region, config: cfg}, nil
}

// Driver drives a cartridge flash chip to persist a single structure.
type Driver struct {
	region mmio.Region
	config Config
}

// Codec returns the codec used for the persisted structure.
func (d *Driver) Codec() codec.Codec {
	return d.config.Codec
}

// MaxPayload returns the largest payload that fits between the length field
// and the backup length field.
func (d *Driver) MaxPayload() uint32 {
	return d.config.BackupOffset - protocol.PayloadOffset
}

// Size returns the size of the flash region.
func (d *Driver) Size() uint32 {
	return d.region.Size()
}

// HavePersistedStructure tells whether the chip holds a valid structure. It
// only reads the length fields and never changes chip state.
func (d *Driver) HavePersistedStructure() bool {
	return d.hasValidStructure()
}

// Persist writes v to the chip, replacing whatever was stored before. It
// returns false on any failure, see PersistContext for details.
func (d *Driver) Persist(v interface{}) bool {
	if err := d.PersistContext(context.Background(), v); err != nil {
		log.Errorf("persisting structure failed: %v", err)
		return false
	}
	return true
}

/*
	PersistContext encodes v, erases the chip, and then programs the payload
	length at the primary and backup offset, followed by the payload bytes.
	Every byte goes through program/verify, and the first failing byte aborts
	with a ProgramError.

	A payload that would overlap the backup length field is rejected before
	the chip is touched, as are encoding errors. Any failure after that point
	leaves the chip erased with possibly partial content, and the persisted
	state is undefined until the next successful persist. There is no
	rollback.
*/
func (d *Driver) PersistContext(ctx context.Context, v interface{}) error {

	payload, err := d.config.Codec.Marshal(v)
	if err != nil {
		return fmt.Errorf("error encoding structure: %w", err)
	}

	if uint64(len(payload)) > uint64(d.MaxPayload()) {
		return &PayloadTooLargeError{
			Length: uint32(len(payload)), Max: d.MaxPayload()}
	}

	if err := d.eraseChip(ctx); err != nil {
		return err
	}

	length := encodeLength(uint32(len(payload)))

	log.WithFields(log.Fields{
		"length": len(payload),
		"codec":  d.config.Codec.Name(),
	}).Debug("persisting structure")

	if err := d.programBytes(protocol.LengthOffset, length); err != nil {
		return err
	}
	if err := d.programBytes(d.config.BackupOffset, length); err != nil {
		return err
	}
	if err := d.programBytes(protocol.PayloadOffset, payload); err != nil {
		return err
	}

	log.Debug("structure persisted")
	return nil
}

/*
	ReadPayload reads the stored payload bytes as indicated by the primary
	length field. It does not check presence, so on a chip without a valid
	structure, the result is whatever the length field says. Lengths that
	exceed the payload area yield an error.
*/
func (d *Driver) ReadPayload() ([]byte, error) {

	length, err := d.currentLength()
	if err != nil {
		return nil, err
	}

	if length > d.MaxPayload() {
		return nil, fmt.Errorf("%w: length field reads %d",
			ErrNoStructure, length)
	}

	ret := make([]byte, length)
	if err := mmio.ReadAt(d.region, ret, protocol.PayloadOffset); err != nil {
		return nil, err
	}
	return ret, nil
}

// RetrieveInto decodes the stored structure into v. Callers should check
// HavePersistedStructure first, without a valid structure this fails or
// yields meaningless data.
func (d *Driver) RetrieveInto(v interface{}) error {
	payload, err := d.ReadPayload()
	if err != nil {
		return err
	}
	if err := d.config.Codec.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("error decoding structure: %w", err)
	}
	return nil
}

// Retrieve decodes the stored structure as a T. ok is false when the stored
// bytes cannot be decoded.
func Retrieve[T any](d *Driver) (ret T, ok bool) {
	if err := d.RetrieveInto(&ret); err != nil {
		log.Debugf("retrieving structure failed: %v", err)
		var zero T
		return zero, false
	}
	return ret, true
}

// Erase erases the chip, removing any persisted structure.
func (d *Driver) Erase(ctx context.Context) error {
	return d.eraseChip(ctx)
}

// Dump writes the raw content of the flash region to w.
func (d *Driver) Dump(w io.Writer) error {

	buf := make([]byte, dumpChunkSize)

	for off := uint32(0); off < d.region.Size(); {
		n := d.region.Size() - off
		if n > dumpChunkSize {
			n = dumpChunkSize
		}
		if err := mmio.ReadAt(d.region, buf[:n], off); err != nil {
			return err
		}
		if _, err := w.Write(buf[:n]); err != nil {
			return err
		}
		off += n
	}

	return nil
}
