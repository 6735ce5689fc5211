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
)

//
func NewIdentify() *Identify {

	i := &Identify{}
	i.Runner = *NewRunner(
		"identify [-j|--json] [-a|--address {host}] [-p|--port {port}]",
		"get flash chip identification from daemon",
		`
Use the identify command to get manufacturer & device of the flash chip, as
read by the daemon when it started.`,
		"", runnerHelpEpilogue, i.Run)

	i.AddClientSettings()
	i.AddSetting(&i.JSON, "json", "j", "", false, "output as JSON", false)

	return i
}

//
type Identify struct {
	//
	Runner
	//
	JSON bool
}

//
func (i *Identify) Run() error {

	if err := i.ParseSettings(); err != nil {
		return err
	}

	resp, err := i.apiCall("GET", "/identify", i.JSON, nil)
	if err != nil {
		return err
	}
	defer resp.Close()

	info, err := io.ReadAll(resp)
	if err != nil {
		return err
	}

	fmt.Fprintf(i.stdout(), "%s\n", info)
	return nil
}
