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
	"fmt"
	"io"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/cartflash/pkg/chip"
	"github.com/xelalexv/cartflash/pkg/flash/protocol"
	"github.com/xelalexv/cartflash/pkg/mmio"
)

// device prefixes
const (
	DeviceMemory = "mem"
	PrefixFile   = "file:"
	PrefixSerial = "serial:"
)

//
type backend struct {
	region mmio.Region
	closer io.Closer
	syncer syncer
}

//
type syncer interface {
	Sync() error
}

//
func (b *backend) close() error {
	if b.closer != nil {
		return b.closer.Close()
	}
	return nil
}

//
func (b *backend) sync() {
	if b.syncer != nil {
		if err := b.syncer.Sync(); err != nil {
			log.Errorf("error syncing flash image: %v", err)
		}
	}
}

/*
	openBackend opens the region for the configured device:

		mem             simulated chip in RAM, content is lost on exit
		file:{image}    simulated chip backed by a memory-mapped image file
		serial:{port}   real cartridge behind a serial adapter

	For a serial adapter, opening the port is retried with backoff until ctx
	is done.
*/
func openBackend(ctx context.Context, cfg *Config) (*backend, error) {

	dev := cfg.Device

	switch {

	case dev == DeviceMemory:
		log.Info("using simulated chip in memory")
		return &backend{region: chip.New(mmio.NewMemory(cfg.Size))}, nil

	case strings.HasPrefix(dev, PrefixFile):
		path := strings.TrimPrefix(dev, PrefixFile)
		log.WithField("image", path).Info("using simulated chip with image file")
		m, err := mmio.OpenMapped(path, cfg.Size)
		if err != nil {
			return nil, err
		}
		return &backend{region: chip.New(m), closer: m, syncer: m}, nil

	case strings.HasPrefix(dev, PrefixSerial):
		s, err := openSerial(ctx, strings.TrimPrefix(dev, PrefixSerial))
		if err != nil {
			return nil, err
		}
		win, err := mmio.NewWindow(s, cfg.Base, cfg.Size)
		if err != nil {
			s.Close()
			return nil, err
		}
		return &backend{region: win, closer: s}, nil

	default:
		return nil, fmt.Errorf("unsupported device: %s", dev)
	}
}

//
func openSerial(ctx context.Context, port string) (*mmio.Serial, error) {

	maxBackoff := 15 * time.Second

	for backoff := time.Second; ; {

		log.Infof("opening port %s", port)
		s, err := mmio.OpenSerial(port, protocol.BusSize)
		if err == nil {
			return s, nil
		}

		log.Errorf("cannot open serial port: %v", err)
		if backoff < maxBackoff {
			backoff *= 2
		}

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, fmt.Errorf("giving up on port %s: %w", port, err)
		}
	}
}
