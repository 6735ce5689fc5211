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
	"bytes"
	"context"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xelalexv/cartflash/pkg/flash"
	"github.com/xelalexv/cartflash/pkg/flash/protocol"
)

func openTestDaemon(t *testing.T, cfg Config) *Daemon {
	t.Helper()
	d := NewDaemon(cfg)
	require.NoError(t, d.Open(context.Background()))
	t.Cleanup(func() { d.Close() })
	return d
}

func TestPersistRetrieve(t *testing.T) {

	d := openTestDaemon(t, DefaultConfig())
	ctx := context.Background()

	stat, err := d.Status(ctx)
	require.NoError(t, err)
	assert.False(t, stat.Present)
	assert.Equal(t, "Macronix", stat.Chip.Vendor)
	assert.Equal(t, "go-json", stat.Codec)
	assert.Equal(t, protocol.WindowSize, stat.Size)

	_, err = d.Retrieve(ctx)
	assert.ErrorIs(t, err, flash.ErrNoStructure)

	obj := map[string]interface{}{"id": 1.0, "text": "Hello World!"}
	require.NoError(t, d.Persist(ctx, obj))

	got, err := d.Retrieve(ctx)
	require.NoError(t, err)
	assert.Equal(t, obj, got)

	stat, err = d.Status(ctx)
	require.NoError(t, err)
	assert.True(t, stat.Present)
	assert.Equal(t, len(`{"id":1,"text":"Hello World!"}`), stat.Length)

	require.NoError(t, d.Erase(ctx))
	stat, err = d.Status(ctx)
	require.NoError(t, err)
	assert.False(t, stat.Present)
}

func TestPersistTooLarge(t *testing.T) {

	d := openTestDaemon(t, DefaultConfig())

	err := d.Persist(context.Background(), string(make([]byte, 0x10000)))
	var perr *flash.PayloadTooLargeError
	assert.ErrorAs(t, err, &perr)
}

func TestDump(t *testing.T) {

	d := openTestDaemon(t, DefaultConfig())
	require.NoError(t, d.Persist(context.Background(), "dump"))

	var out bytes.Buffer
	require.NoError(t, d.Dump(context.Background(), &out))
	assert.Equal(t, int(protocol.WindowSize), out.Len())
	assert.Equal(t, []byte(`"dump"`), out.Bytes()[4:10])
}

func TestImageSurvivesRestart(t *testing.T) {

	if runtime.GOOS == "windows" {
		t.Skip("no mapped images on windows")
	}

	cfg := DefaultConfig()
	cfg.Device = PrefixFile + filepath.Join(t.TempDir(), "cart.sav")
	cfg.Codec = "lz4"

	d := NewDaemon(cfg)
	require.NoError(t, d.Open(context.Background()))
	require.NoError(t, d.Persist(context.Background(), []interface{}{"a", "b"}))
	require.NoError(t, d.Close())

	_, err := d.Retrieve(context.Background())
	assert.ErrorIs(t, err, ErrClosed)

	d = openTestDaemon(t, cfg)
	got, err := d.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"a", "b"}, got)
}

func TestBusy(t *testing.T) {

	cfg := DefaultConfig()
	cfg.LockTimeout = 20 * time.Millisecond
	d := openTestDaemon(t, cfg)

	require.True(t, d.acquire(context.Background()))
	_, err := d.Status(context.Background())
	assert.ErrorIs(t, err, ErrBusy)
	d.release()

	_, err = d.Status(context.Background())
	assert.NoError(t, err)
}

func TestStatusWhileOpening(t *testing.T) {

	d := NewDaemon(DefaultConfig())
	ctx := context.Background()

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			if _, err := d.Status(ctx); err != nil {
				assert.ErrorIs(t, err, ErrClosed)
			}
			if _, err := d.Identify(ctx); err != nil {
				assert.ErrorIs(t, err, ErrClosed)
			}
		}
	}()

	require.NoError(t, d.Open(ctx))
	close(done)
	wg.Wait()
	t.Cleanup(func() { d.Close() })

	stat, err := d.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, "MX29L010", stat.Chip.Part)

	info, err := d.Identify(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Macronix", info.Vendor)
}

func TestOpenErrors(t *testing.T) {

	cfg := DefaultConfig()
	cfg.Device = "floppy"
	assert.Error(t, NewDaemon(cfg).Open(context.Background()))

	cfg = DefaultConfig()
	cfg.Codec = "postcard"
	assert.Error(t, NewDaemon(cfg).Open(context.Background()))

	cfg = DefaultConfig()
	cfg.Size = 0x1000
	assert.Error(t, NewDaemon(cfg).Open(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	cfg = DefaultConfig()
	cfg.Device = PrefixSerial + filepath.Join(t.TempDir(), "no-such-port")
	assert.Error(t, NewDaemon(cfg).Open(ctx))
}
