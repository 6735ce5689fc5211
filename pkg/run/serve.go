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

package run

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/xelalexv/cartflash/pkg/control"
	"github.com/xelalexv/cartflash/pkg/daemon"
	"github.com/xelalexv/cartflash/pkg/flash/protocol"
)

//
func NewServe() *Serve {

	s := &Serve{}
	s.Runner = *NewRunner(
		`serve [-d|--device {mem|file:{image}|serial:{port}}] [-a|--address {address}]
      [-c|--codec {codec}] [-b|--base {bus address}] [-s|--size {window size}]
      [-w|--writes {writes per minute}] [-t|--erase-timeout {duration}]
      [-r|--repo {repo base folder}]`,
		"daemon & API server command",
		`Use the serve command for running the flash daemon and API server. The daemon
can drive a flash chip simulated in memory (mem), a simulated chip persisted in
an image file (file:{image}), or a cartridge attached via a serial adapter
(serial:{port}).

Supported codecs are go-json, lz4, and lz4+{inner codec}.`,
		"", loggingHelp+runnerHelpEpilogue, s.Run)

	s.AddBaseSettings()
	s.AddSetting(&s.Device, "device", "d", "CARTFLASH_DEVICE",
		daemon.DeviceMemory, "flash backend device", false)
	s.AddSetting(&s.Address, "address", "a", "CARTFLASH_LISTEN", "",
		"listen address of API server", false)
	s.AddSetting(&s.Codec, "codec", "c", "CARTFLASH_CODEC", "go-json",
		"structure codec", false)
	s.AddSetting(&s.Base, "base", "b", "", protocol.DefaultBase,
		"bus address of flash window, for serial adapters", false)
	s.AddSetting(&s.Size, "size", "s", "", protocol.WindowSize,
		"size of flash window", false)
	s.AddSetting(&s.Writes, "writes", "w", "CARTFLASH_WRITES", 30,
		"maximum writes & erases per minute, 0 for no limit", false)
	s.AddSetting(&s.EraseTimeout, "erase-timeout", "t", "", 10*time.Second,
		"maximum duration of a chip erase", false)
	s.AddSetting(&s.Repository, "repo", "r", "CARTFLASH_REPO", nil,
		`structure repo base folder; when omitted, persisting
structures from daemon host's file system is prohibited`, false)

	return s
}

//
type Serve struct {
	//
	Runner
	//
	Device       string
	Codec        string
	Base         uint32
	Size         uint32
	Writes       int
	EraseTimeout time.Duration
	Repository   string
}

//
func (s *Serve) config() daemon.Config {
	cfg := daemon.DefaultConfig()
	cfg.Device = s.Device
	cfg.Codec = s.Codec
	cfg.Base = s.Base
	cfg.Size = s.Size
	cfg.EraseTimeout = s.EraseTimeout
	return cfg
}

//
func (s *Serve) Run() error {

	if err := s.ParseSettings(); err != nil {
		return err
	}

	addr := s.Address
	if addr == "" {
		addr = "0.0.0.0"
	}
	if s.Port != 0 {
		addr = joinPort(addr, s.Port)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := daemon.NewDaemon(s.config())
	api := control.NewAPIServer(addr, s.Repository, d, s.Writes)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := d.Open(gctx); err != nil {
			log.Errorf("daemon could not start: %v", err)
			return err
		}
		<-gctx.Done()
		err := d.Close()
		log.Info("daemon stopped")
		return err
	})

	g.Go(func() error {
		if err := api.Serve(); err != nil {
			log.Errorf("API server closed with error: %v", err)
			return err
		}
		log.Info("API server stopped")
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return api.Stop()
	})

	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)
	sigCount := 0

	for {

		select {

		case sig := <-sigs: // interrupt signal
			log.WithField("signal", sig).Info("signal received")
			sigCount++

			switch sigCount {

			case 1:
				log.Info("shutting down, hit Ctrl-C twice to force exit...")
				cancel()

			case 2:
				log.Warn("shutdown in progress, hit Ctrl-C again to force exit")

			default:
				log.Warn("forcing daemon to stop immediately")
				os.Exit(1)
			}

		case err := <-done: // shutdown sequence complete
			log.Info("CartFlash stopped")
			return err
		}
	}
}
