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
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/xelalexv/cartflash/pkg/codec"
	"github.com/xelalexv/cartflash/pkg/flash"
	"github.com/xelalexv/cartflash/pkg/flash/protocol"
)

//
const defaultLockTimeout = 5 * time.Second

// ErrBusy is returned when the flash chip could not be locked in time.
var ErrBusy = errors.New("flash chip busy")

// ErrClosed is returned for operations on a daemon that is not open.
var ErrClosed = errors.New("daemon not open")

// Config configures the daemon's flash backend.
type Config struct {
	// Device selects the backend, see openBackend
	Device string
	// Base is the bus address of the flash chip, only used with serial adapters
	Base uint32
	// Size of the flash window
	Size uint32
	// Codec name, see codec.ByName
	Codec string
	// EraseTimeout limits the time a chip erase may take
	EraseTimeout time.Duration
	// LockTimeout limits waiting for the chip when another request holds it
	LockTimeout time.Duration
}

// DefaultConfig returns a config for a simulated chip in memory.
func DefaultConfig() Config {
	return Config{
		Device:       DeviceMemory,
		Base:         protocol.DefaultBase,
		Size:         protocol.WindowSize,
		Codec:        codec.Default.Name(),
		EraseTimeout: 10 * time.Second,
		LockTimeout:  defaultLockTimeout,
	}
}

/*
	NewDaemon creates a daemon for the given config. Call Open before using
	it. The daemon is the single owner of the flash driver. Requests may come
	in concurrently, so every access to the driver is serialized through the
	daemon's lock.
*/
func NewDaemon(cfg Config) *Daemon {
	return &Daemon{
		config: cfg,
		lock:   make(chan bool, 1),
	}
}

// Daemon manages access to a cartridge flash chip.
type Daemon struct {
	config  Config
	backend *backend
	driver  *flash.Driver
	chip    protocol.ChipInfo
	//
	lock chan bool
}

// Open opens the backend, creates the driver, and identifies the chip. Any
// error here is an initialization error and should abort startup.
func (d *Daemon) Open(ctx context.Context) error {

	cd, err := codec.ByName(d.config.Codec)
	if err != nil {
		return err
	}

	b, err := openBackend(ctx, &d.config)
	if err != nil {
		return fmt.Errorf("cannot open device %s: %w", d.config.Device, err)
	}

	drv, err := flash.New(b.region,
		flash.WithCodec(cd),
		flash.WithEraseTimeout(d.config.EraseTimeout))
	if err != nil {
		b.close()
		return err
	}

	info, err := drv.Identify()
	if err != nil {
		b.close()
		return fmt.Errorf("cannot identify flash chip: %w", err)
	}

	log.WithFields(log.Fields{
		"chip":    info.String(),
		"codec":   cd.Name(),
		"present": drv.HavePersistedStructure(),
	}).Info("flash chip ready")

	if info.Capacity != 0 && info.Capacity < d.config.Size {
		log.Warnf("window size %d exceeds chip capacity %d",
			d.config.Size, info.Capacity)
	}

	if !d.acquire(ctx) {
		b.close()
		return ErrBusy
	}
	defer d.release()

	d.backend = b
	d.driver = drv
	d.chip = info
	return nil
}

// Close releases the backend.
func (d *Daemon) Close() error {

	if !d.acquire(context.Background()) {
		return ErrBusy
	}
	defer d.release()

	if d.backend == nil {
		return nil
	}

	log.Info("closing flash backend")
	err := d.backend.close()
	d.backend = nil
	d.driver = nil
	return err
}

//
func (d *Daemon) acquire(ctx context.Context) bool {

	timeout := d.config.LockTimeout
	if timeout <= 0 {
		timeout = defaultLockTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case d.lock <- true:
		log.Trace("flash chip locked")
		return true
	case <-ctx.Done():
		log.Debug("flash chip lock timed out")
		return false
	}
}

//
func (d *Daemon) release() {
	select {
	case <-d.lock:
		log.Trace("flash chip unlocked")
	default:
		log.Debug("flash chip was already unlocked")
	}
}

// withDriver runs f with exclusive access to the driver.
func (d *Daemon) withDriver(ctx context.Context,
	f func(drv *flash.Driver) error) error {

	if !d.acquire(ctx) {
		return ErrBusy
	}
	defer d.release()

	if d.driver == nil {
		return ErrClosed
	}
	return f(d.driver)
}
