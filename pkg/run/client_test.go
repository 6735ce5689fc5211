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
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDaemon is a stand-in for the daemon's API, keeping the last structure
// it was sent.
type fakeDaemon struct {
	structure []byte
	erased    bool
}

func (f *fakeDaemon) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	switch req.Method + " " + req.URL.Path {
	case "GET /status":
		if req.Header.Get("Accept") == "application/json" {
			io.WriteString(w, `{"present":true}`)
		} else {
			io.WriteString(w, "STATE    structure of 12 bytes")
		}
	case "GET /identify":
		io.WriteString(w, "Macronix MX29L010 (c2:09), 128 KiB")
	case "GET /structure":
		if f.structure == nil {
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, "no persisted structure\n")
			return
		}
		w.Write(f.structure)
	case "PUT /structure":
		if ref := req.URL.Query().Get("ref"); ref != "" {
			f.structure = []byte(`"` + ref + `"`)
		} else {
			f.structure, _ = io.ReadAll(req.Body)
		}
		io.WriteString(w, "structure persisted\n")
	case "PUT /erase":
		f.erased = true
		f.structure = nil
		io.WriteString(w, "flash chip erased\n")
	case "GET /dump":
		w.Write([]byte{0xff, 0xff, 0x00, 0x01})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func startFake(t *testing.T) (*fakeDaemon, []string) {
	t.Helper()
	f := &fakeDaemon{}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	return f, []string{"--address", u.Hostname(), "--port", u.Port()}
}

func TestStatusCommand(t *testing.T) {
	_, args := startFake(t)

	var out bytes.Buffer
	s := NewStatus()
	s.out = &out
	require.NoError(t, s.Execute(args))
	assert.Contains(t, out.String(), "structure of 12 bytes")

	out.Reset()
	s = NewStatus()
	s.out = &out
	require.NoError(t, s.Execute(append(args, "--json")))
	assert.Equal(t, "{\"present\":true}\n", out.String())
}

func TestIdentifyCommand(t *testing.T) {
	_, args := startFake(t)
	var out bytes.Buffer
	i := NewIdentify()
	i.out = &out
	require.NoError(t, i.Execute(args))
	assert.Contains(t, out.String(), "MX29L010")
}

func TestPutAndGet(t *testing.T) {
	f, args := startFake(t)
	dir := t.TempDir()

	in := filepath.Join(dir, "in.json")
	require.NoError(t, os.WriteFile(in, []byte(`{"id":1,"text":"Hello World!"}`), 0644))

	var out bytes.Buffer
	p := NewPut()
	p.out = &out
	require.NoError(t, p.Execute(append(args, "-i", in)))
	assert.Equal(t, "structure persisted\n", out.String())
	assert.JSONEq(t, `{"id":1,"text":"Hello World!"}`, string(f.structure))

	out.Reset()
	g := NewGet()
	g.out = &out
	require.NoError(t, g.Execute(args))
	assert.JSONEq(t, `{"id":1,"text":"Hello World!"}`, out.String())
	assert.Contains(t, out.String(), "\n  \"id\": 1")

	outFile := filepath.Join(dir, "out.json")
	out.Reset()
	g = NewGet()
	g.out = &out
	require.NoError(t, g.Execute(append(args, "-o", outFile, "-f")))
	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"text":"Hello World!"}`, string(data))
}

func TestPutFromStdin(t *testing.T) {
	f, args := startFake(t)
	p := NewPut()
	p.out = io.Discard
	p.stdin = strings.NewReader(`[1,2,3]`)
	require.NoError(t, p.Execute(append(args, "-i", "-")))
	assert.Equal(t, `[1,2,3]`, string(f.structure))
}

func TestPutRejectsInvalidJSON(t *testing.T) {
	f, args := startFake(t)
	p := NewPut()
	p.out = io.Discard
	p.stdin = strings.NewReader(`{"id":`)
	assert.Error(t, p.Execute(append(args, "-i", "-")))
	assert.Nil(t, f.structure)
}

func TestPutRequiresInput(t *testing.T) {
	_, args := startFake(t)
	p := NewPut()
	p.out = io.Discard
	err := p.Execute(args)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--input")
	assert.Contains(t, err.Error(), "--ref")
}

func TestPutByReference(t *testing.T) {
	f, args := startFake(t)
	p := NewPut()
	p.out = io.Discard
	require.NoError(t, p.Execute(append(args, "-r", "repo://games/save.json")))
	assert.Equal(t, `"repo://games/save.json"`, string(f.structure))

	p = NewPut()
	p.out = io.Discard
	assert.Error(t, p.Execute(append(args, "-r", "games/save.json")))

	p = NewPut()
	p.out = io.Discard
	assert.Error(t, p.Execute(append(args, "-r", "repo://a.json", "-i", "b.json")))
}

func TestGetWithoutStructure(t *testing.T) {
	_, args := startFake(t)
	g := NewGet()
	g.out = io.Discard
	err := g.Execute(args)
	require.Error(t, err)

	var apiErr *apiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.status)
	assert.Contains(t, err.Error(), "no persisted structure")
}

func TestEraseCommand(t *testing.T) {
	f, args := startFake(t)
	f.structure = []byte(`{}`)

	var out bytes.Buffer
	e := NewErase()
	e.out = &out
	require.NoError(t, e.Execute(append(args, "--force")))
	assert.True(t, f.erased)
	assert.Nil(t, f.structure)
	assert.Equal(t, "flash chip erased\n", out.String())
}

func TestDumpCommand(t *testing.T) {
	_, args := startFake(t)

	var out bytes.Buffer
	d := NewDump()
	d.out = &out
	require.NoError(t, d.Execute(args))
	assert.Contains(t, out.String(), "ff ff 00 01")

	file := filepath.Join(t.TempDir(), "image.bin")
	out.Reset()
	d = NewDump()
	d.out = &out
	require.NoError(t, d.Execute(append(args, "-o", file)))
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xff, 0x00, 0x01}, data)
	assert.Equal(t, "4 bytes saved\n", out.String())
}

func TestServeConfig(t *testing.T) {
	s := NewServe()
	s.Device = "file:/tmp/cart.img"
	s.Codec = "lz4"
	s.Size = 0x8000
	cfg := s.config()
	assert.Equal(t, "file:/tmp/cart.img", cfg.Device)
	assert.Equal(t, "lz4", cfg.Codec)
	assert.Equal(t, uint32(0x8000), cfg.Size)
}
