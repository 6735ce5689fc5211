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

package control

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xelalexv/cartflash/pkg/daemon"
	"github.com/xelalexv/cartflash/pkg/flash"
	"github.com/xelalexv/cartflash/pkg/flash/protocol"
)

func newTestServer(t *testing.T, writesPerMinute int) *httptest.Server {
	return newRepoTestServer(t, "", writesPerMinute)
}

func newRepoTestServer(t *testing.T, repo string,
	writesPerMinute int) *httptest.Server {
	t.Helper()
	d := daemon.NewDaemon(daemon.DefaultConfig())
	require.NoError(t, d.Open(context.Background()))
	a := NewAPIServer("", repo, d, writesPerMinute).(*api)
	srv := httptest.NewServer(a.router())
	t.Cleanup(func() {
		srv.Close()
		d.Close()
	})
	return srv
}

func call(t *testing.T, srv *httptest.Server, method, path string,
	body string, json bool) (int, string) {
	t.Helper()

	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if json {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(data)
}

func TestStructureLifecycle(t *testing.T) {

	srv := newTestServer(t, 0)

	code, _ := call(t, srv, "GET", "/structure", "", false)
	assert.Equal(t, http.StatusNotFound, code)

	code, body := call(t, srv, "GET", "/status", "", true)
	require.Equal(t, http.StatusOK, code)
	var stat daemon.Status
	require.NoError(t, json.Unmarshal([]byte(body), &stat))
	assert.False(t, stat.Present)

	code, _ = call(t, srv, "PUT", "/structure",
		`{"id": 1, "text": "Hello World!"}`, true)
	require.Equal(t, http.StatusOK, code)

	code, body = call(t, srv, "GET", "/structure", "", true)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"id":1,"text":"Hello World!"}`, body)

	code, body = call(t, srv, "GET", "/status", "", false)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "structure of 30 bytes")

	code, _ = call(t, srv, "PUT", "/erase", "", false)
	require.Equal(t, http.StatusOK, code)

	code, _ = call(t, srv, "GET", "/structure", "", false)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestPersistErrors(t *testing.T) {

	srv := newTestServer(t, 0)

	code, _ := call(t, srv, "PUT", "/structure", `{"id": `, true)
	assert.Equal(t, http.StatusBadRequest, code)

	big := `"` + strings.Repeat("x", int(protocol.WindowSize)) + `"`
	code, _ = call(t, srv, "PUT", "/structure", big, true)
	assert.Equal(t, http.StatusRequestEntityTooLarge, code)
}

func TestWearLimit(t *testing.T) {

	srv := newTestServer(t, 2)

	for ix := 0; ix < 2; ix++ {
		code, _ := call(t, srv, "PUT", "/structure", `[1, 2, 3]`, true)
		require.Equal(t, http.StatusOK, code)
	}

	code, _ := call(t, srv, "PUT", "/structure", `[1, 2, 3]`, true)
	assert.Equal(t, http.StatusTooManyRequests, code)

	code, _ = call(t, srv, "PUT", "/erase", "", false)
	assert.Equal(t, http.StatusTooManyRequests, code)
}

func TestIdentifyAndDump(t *testing.T) {

	srv := newTestServer(t, 0)

	code, body := call(t, srv, "GET", "/identify", "", true)
	require.Equal(t, http.StatusOK, code)
	var info protocol.ChipInfo
	require.NoError(t, json.Unmarshal([]byte(body), &info))
	assert.Equal(t, "MX29L010", info.Part)

	code, body = call(t, srv, "GET", "/identify", "", false)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Macronix MX29L010")

	code, body = call(t, srv, "GET", "/dump", "", false)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body, int(protocol.WindowSize))
}

func TestStatusCodes(t *testing.T) {
	assert.Equal(t, http.StatusLocked, statusCodeFor(daemon.ErrBusy))
	assert.Equal(t, http.StatusServiceUnavailable,
		statusCodeFor(flash.ErrChipUnresponsive))
	assert.Equal(t, http.StatusInternalServerError,
		statusCodeFor(&flash.ProgramError{}))
	assert.Equal(t, http.StatusNotFound, statusCodeFor(flash.ErrNoStructure))

	canceled := fmt.Errorf("%w: %w", flash.ErrChipUnresponsive, context.Canceled)
	assert.Equal(t, statusClientClosedRequest, statusCodeFor(canceled))
	assert.Equal(t, http.StatusGatewayTimeout,
		statusCodeFor(fmt.Errorf("%w: %w", flash.ErrChipUnresponsive,
			context.DeadlineExceeded)))
}

func TestLargeIntegersSurvive(t *testing.T) {

	srv := newTestServer(t, 0)

	const structure = `{"id":9007199254740993,"text":"Hello World!"}`
	code, _ := call(t, srv, "PUT", "/structure", structure, true)
	require.Equal(t, http.StatusOK, code)

	code, body := call(t, srv, "GET", "/structure", "", true)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "9007199254740993")
	assert.JSONEq(t, structure, body)

	code, _ = call(t, srv, "PUT", "/structure", `{"id":`, true)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestWantsJSON(t *testing.T) {

	for _, tc := range []struct {
		header, value string
		want          bool
	}{
		{"Content-Type", "application/json", true},
		{"Content-Type", "application/json; charset=UTF-8", true},
		{"Accept", "text/plain, application/json;q=0.9", true},
		{"Accept", "text/plain", false},
		{"Content-Type", "text/plain; charset=UTF-8", false},
	} {
		req := httptest.NewRequest("GET", "/status", nil)
		req.Header.Set(tc.header, tc.value)
		assert.Equal(t, tc.want, wantsJSON(req), "%s: %s", tc.header, tc.value)
	}

	req := httptest.NewRequest("GET", "/status?json=true", nil)
	assert.True(t, wantsJSON(req))
}

func TestStopBeforeServe(t *testing.T) {
	a := NewAPIServer("127.0.0.1:0", "",
		daemon.NewDaemon(daemon.DefaultConfig()), 0)
	require.NoError(t, a.Stop())
	assert.NoError(t, a.Serve())
}

func TestPersistFromRepository(t *testing.T) {

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "save.json"),
		[]byte(`{"id":1,"text":"Hello World!"}`), 0644))

	srv := newRepoTestServer(t, dir, 0)

	code, _ := call(t, srv, "PUT", "/structure?ref=repo://save.json", "", false)
	require.Equal(t, http.StatusOK, code)

	code, body := call(t, srv, "GET", "/structure", "", true)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"id":1,"text":"Hello World!"}`, body)

	code, _ = call(t, srv, "PUT", "/structure?ref=repo://missing.json", "", false)
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	noRepo := newTestServer(t, 0)
	code, _ = call(t, noRepo, "PUT", "/structure?ref=repo://save.json", "", false)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
}
