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
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

//
const runnerHelpPrologue = ""
const runnerHelpEpilogue = `- When a flag can be set via environment variable, the variable name is given
  in parenthesis at the end of the flag explanation. Note however that a flag,
  when specified overrides an environment variable.
`

/*
	NewRunner creates a base runner for commands to use. The parameters are
	passed to the base command wrapped by this runner.
*/
func NewRunner(use, short, long, helpPrologue, helpEpilogue string,
	exec func() error) *Runner {
	return &Runner{
		Command: *NewCommand(
			use, short, long, helpPrologue, helpEpilogue, exec),
	}
}

//
type Runner struct {
	//
	Command
	//
	Address string
	Port    int
	//
	client *http.Client
	out    io.Writer
}

// stdout returns where command output goes, os.Stdout unless set otherwise.
func (r *Runner) stdout() io.Writer {
	if r.out == nil {
		return os.Stdout
	}
	return r.out
}

//
func (r *Runner) AddBaseSettings() {
	// Implementation Note: This cannot be included in NewRunner, but rather has
	// to be called from the top level command type. Otherwise, we will confuse
	// Cobra/Viper and the settings will not be filled with their values.
	r.AddSetting(&r.Port, "port", "p", "CARTFLASH_PORT", 8888,
		"port of daemon's API server", false)
}

//
func (r *Runner) AddClientSettings() {
	r.AddBaseSettings()
	r.AddSetting(&r.Address, "address", "a", "CARTFLASH_ADDRESS", "127.0.0.1",
		"host of daemon's API server", false)
}

// apiCall sends a request to the daemon's API. Replies with a status code
// other than 2xx are turned into an error carrying the reply text.
func (r *Runner) apiCall(method, path string, json bool,
	body io.Reader) (io.ReadCloser, error) {

	if r.client == nil {
		r.client = &http.Client{}
	}

	host := r.Address
	if host == "" {
		host = "127.0.0.1"
	}

	req, err := http.NewRequest(
		method, fmt.Sprintf("http://%s:%d%s", host, r.Port, path), body)
	if err != nil {
		return nil, err
	}

	if json {
		req.Header.Add("Content-Type", "application/json")
		req.Header.Add("Accept", "application/json")
	} else {
		req.Header.Add("Content-Type", "text/plain")
		req.Header.Add("Accept", "text/plain")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &apiError{
			status: resp.StatusCode,
			msg:    strings.TrimSpace(string(msg)),
		}
	}

	return resp.Body, nil
}

//
type apiError struct {
	status int
	msg    string
}

//
func (e *apiError) Error() string {
	if e.msg == "" {
		return fmt.Sprintf("daemon replied with status %d", e.status)
	}
	return fmt.Sprintf("daemon replied with status %d: %s", e.status, e.msg)
}
