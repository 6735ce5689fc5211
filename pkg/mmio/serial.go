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
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/jacobsa/go-serial/serial"
	log "github.com/sirupsen/logrus"
)

// frame layout: command byte, 32 bit bus address (big endian), value
const frameLength = 6

//
const (
	frameRead  = 'r'
	frameWrite = 'w'
)

//
var helloHost = []byte("hlod")
var helloAdapter = []byte("hloc")

/*
	OpenSerial opens the serial port of a cartridge adapter and syncs with it.
	The returned region covers the whole cartridge bus of the given size. Use a
	Window to restrict it to the flash chip.
*/
func OpenSerial(port string, size uint32) (*Serial, error) {
	p, err := openPort(port)
	if err != nil {
		return nil, err
	}
	s := NewSerial(p, size)
	if err := s.Sync(); err != nil {
		p.Close()
		return nil, err
	}
	return s, nil
}

//
func openPort(p string) (io.ReadWriteCloser, error) {
	return serial.Open(serial.OpenOptions{
		PortName:        p,
		BaudRate:        1000000,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
	})
}

// NewSerial creates a region that talks to an adapter over port. Sync needs to
// be called before the first access.
func NewSerial(port io.ReadWriteCloser, size uint32) *Serial {
	return &Serial{
		port:  port,
		size:  size,
		frame: make([]byte, frameLength),
	}
}

// Serial is a region that forwards every access to a cartridge adapter
// connected via serial line. The adapter performs the actual bus cycles.
type Serial struct {
	port  io.ReadWriteCloser
	size  uint32
	frame []byte
}

//
func (s *Serial) Size() uint32 {
	return s.size
}

// Sync waits for the adapter's hello and answers it.
func (s *Serial) Sync() error {

	log.Info("syncing with cartridge adapter")
	hello := make([]byte, len(helloAdapter))
	start := time.Now()

	for !bytes.Equal(hello, helloAdapter) {
		shiftLeft(hello)
		if _, err := io.ReadFull(s.port, hello[len(hello)-1:]); err != nil {
			return fmt.Errorf("error waiting for adapter hello: %w", err)
		}
	}

	if _, err := s.port.Write(helloHost); err != nil {
		return fmt.Errorf("error sending host hello: %w", err)
	}

	log.WithField("duration", time.Since(start)).Info("synced with adapter")
	return nil
}

//
func (s *Serial) Read8(off uint32) (byte, error) {

	if off >= s.size {
		return 0, &RangeError{Offset: off, Length: 1, Size: s.size}
	}

	if err := s.send(frameRead, off, 0); err != nil {
		return 0, err
	}

	if _, err := io.ReadFull(s.port, s.frame[:1]); err != nil {
		return 0, fmt.Errorf("error reading from adapter: %w", err)
	}
	return s.frame[0], nil
}

//
func (s *Serial) Write8(off uint32, v byte) error {
	if off >= s.size {
		return &RangeError{Offset: off, Length: 1, Size: s.size}
	}
	return s.send(frameWrite, off, v)
}

//
func (s *Serial) send(cmd byte, off uint32, v byte) error {
	s.frame[0] = cmd
	binary.BigEndian.PutUint32(s.frame[1:5], off)
	s.frame[5] = v
	if _, err := s.port.Write(s.frame); err != nil {
		return fmt.Errorf("error sending to adapter: %w", err)
	}
	return nil
}

//
func (s *Serial) Close() error {
	log.Info("closing adapter port")
	return s.port.Close()
}

//
func shiftLeft(buf []byte) {
	if len(buf) > 1 {
		copy(buf, buf[1:])
	}
}
