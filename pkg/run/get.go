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
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
)

//
func NewGet() *Get {

	g := &Get{}
	g.Runner = *NewRunner(
		"get [-o|--output {file}] [-f|--force] [-a|--address {host}] [-p|--port {port}]",
		"retrieve the persisted structure from the daemon",
		`
Use the get command to retrieve the structure persisted on the flash chip. The
structure is printed as JSON, or written to a file if one is given.`,
		"", runnerHelpEpilogue, g.Run)

	g.AddClientSettings()
	g.AddSetting(&g.File, "output", "o", "", nil, "structure output file", false)
	g.AddSetting(&g.Force, "force", "f", "", false,
		"force overwriting output file", false)

	return g
}

//
type Get struct {
	//
	Runner
	//
	File  string
	Force bool
}

//
func (g *Get) Run() error {

	if err := g.ParseSettings(); err != nil {
		return err
	}

	if g.File != "" && !g.Force {
		if _, err := os.Stat(g.File); err == nil &&
			!GetUserConfirmation("File exists, overwrite?") {
			return nil
		}
	}

	resp, err := g.apiCall("GET", "/structure", true, nil)
	if err != nil {
		return err
	}
	defer resp.Close()

	raw, err := io.ReadAll(resp)
	if err != nil {
		return err
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		return fmt.Errorf("daemon sent invalid JSON: %v", err)
	}
	pretty.WriteByte('\n')

	if g.File == "" {
		_, err = pretty.WriteTo(g.stdout())
		return err
	}

	f, err := os.Create(g.File)
	if err != nil {
		return err
	}
	defer f.Close()

	out := bufio.NewWriter(f)
	defer out.Flush()

	if _, err := pretty.WriteTo(out); err != nil {
		return err
	}

	fmt.Fprintln(g.stdout(), "structure saved")
	return nil
}
