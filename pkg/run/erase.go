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
func NewErase() *Erase {

	e := &Erase{}
	e.Runner = *NewRunner(
		"erase [-f|--force] [-a|--address {host}] [-p|--port {port}]",
		"erase the flash chip",
		`
Use the erase command to erase the whole flash chip. Any persisted structure is
lost afterwards.`,
		"", runnerHelpEpilogue, e.Run)

	e.AddClientSettings()
	e.AddSetting(&e.Force, "force", "f", "", false,
		"erase without asking for confirmation", false)

	return e
}

//
type Erase struct {
	//
	Runner
	//
	Force bool
}

//
func (e *Erase) Run() error {

	if err := e.ParseSettings(); err != nil {
		return err
	}

	if !e.Force && !GetUserConfirmation("Erase flash chip?") {
		return nil
	}

	resp, err := e.apiCall("PUT", "/erase", false, nil)
	if err != nil {
		return err
	}
	defer resp.Close()

	msg, err := io.ReadAll(resp)
	if err != nil {
		return err
	}

	fmt.Fprintf(e.stdout(), "%s", msg)
	return nil
}
