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
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

//
func NewDump() *Dump {

	d := &Dump{}
	d.Runner = *NewRunner(
		"dump [-o|--output {file}] [-f|--force] [-a|--address {host}] [-p|--port {port}]",
		"dump the raw flash window",
		`
Use the dump command to get the raw content of the flash window from the daemon.
Without an output file, a hex dump is printed.`,
		"", runnerHelpEpilogue, d.Run)

	d.AddClientSettings()
	d.AddSetting(&d.File, "output", "o", "", nil, "image output file", false)
	d.AddSetting(&d.Force, "force", "f", "", false,
		"force overwriting output file", false)

	return d
}

//
type Dump struct {
	//
	Runner
	//
	File  string
	Force bool
}

//
func (d *Dump) Run() error {

	if err := d.ParseSettings(); err != nil {
		return err
	}

	if d.File != "" && !d.Force {
		if _, err := os.Stat(d.File); err == nil &&
			!GetUserConfirmation("File exists, overwrite?") {
			return nil
		}
	}

	resp, err := d.apiCall("GET", "/dump", false, nil)
	if err != nil {
		return err
	}
	defer resp.Close()

	if d.File == "" {
		dumper := hex.Dumper(d.stdout())
		defer dumper.Close()
		_, err := io.Copy(dumper, resp)
		return err
	}

	f, err := os.Create(d.File)
	if err != nil {
		return err
	}
	defer f.Close()

	out := bufio.NewWriter(f)
	defer out.Flush()

	n, err := io.Copy(out, resp)
	if err != nil {
		return err
	}

	fmt.Fprintf(d.stdout(), "%d bytes saved\n", n)
	return nil
}
