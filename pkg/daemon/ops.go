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

package daemon

import (
	"context"
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/cartflash/pkg/flash"
	"github.com/xelalexv/cartflash/pkg/flash/protocol"
)

// Status describes the state of the flash chip.
type Status struct {
	Device     string            `json:"device"`
	Chip       protocol.ChipInfo `json:"chip"`
	Codec      string            `json:"codec"`
	Size       uint32            `json:"size"`
	MaxPayload uint32            `json:"maxPayload"`
	Present    bool              `json:"present"`
	Length     int               `json:"length"`
}

// Status reports chip and presence state. It does not change chip state.
func (d *Daemon) Status(ctx context.Context) (*Status, error) {

	var ret *Status

	err := d.withDriver(ctx, func(drv *flash.Driver) error {
		ret = &Status{
			Device:     d.config.Device,
			Chip:       d.chip,
			Codec:      drv.Codec().Name(),
			Size:       drv.Size(),
			MaxPayload: drv.MaxPayload(),
			Present:    drv.HavePersistedStructure(),
		}
		if ret.Present {
			if payload, err := drv.ReadPayload(); err == nil {
				ret.Length = len(payload)
			} else {
				log.Warnf("cannot read payload: %v", err)
			}
		}
		return nil
	})

	return ret, err
}

// Identify returns the chip identified when opening the daemon.
func (d *Daemon) Identify(ctx context.Context) (protocol.ChipInfo, error) {
	var ret protocol.ChipInfo
	err := d.withDriver(ctx, func(*flash.Driver) error {
		ret = d.chip
		return nil
	})
	return ret, err
}

// Persist replaces the stored structure with v.
func (d *Daemon) Persist(ctx context.Context, v interface{}) error {
	return d.withDriver(ctx, func(drv *flash.Driver) error {
		defer d.backend.sync()
		if err := drv.PersistContext(ctx, v); err != nil {
			log.Errorf("persisting structure failed: %v", err)
			return err
		}
		log.Info("structure persisted")
		return nil
	})
}

// Retrieve returns the stored structure in generic form, i.e. maps, slices,
// and scalars. flash.ErrNoStructure is returned if there is none.
func (d *Daemon) Retrieve(ctx context.Context) (interface{}, error) {
	var ret interface{}
	err := d.RetrieveInto(ctx, &ret)
	return ret, err
}

// RetrieveInto decodes the stored structure into v. flash.ErrNoStructure is
// returned if there is none.
func (d *Daemon) RetrieveInto(ctx context.Context, v interface{}) error {
	return d.withDriver(ctx, func(drv *flash.Driver) error {
		if !drv.HavePersistedStructure() {
			return flash.ErrNoStructure
		}
		return drv.RetrieveInto(v)
	})
}

// Erase erases the chip.
func (d *Daemon) Erase(ctx context.Context) error {
	return d.withDriver(ctx, func(drv *flash.Driver) error {
		defer d.backend.sync()
		if err := drv.Erase(ctx); err != nil {
			return err
		}
		log.Info("flash chip erased")
		return nil
	})
}

// Dump writes the raw flash content to w.
func (d *Daemon) Dump(ctx context.Context, w io.Writer) error {
	return d.withDriver(ctx, func(drv *flash.Driver) error {
		return drv.Dump(w)
	})
}
