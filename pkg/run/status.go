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
func NewStatus() *Status {

	s := &Status{}
	s.Runner = *NewRunner(
		"status [-j|--json] [-a|--address {host}] [-p|--port {port}]",
		"get flash status from daemon",
		"\nUse the status command to get the state of the flash chip from the daemon.",
		"", runnerHelpEpilogue, s.Run)

	s.AddClientSettings()
	s.AddSetting(&s.JSON, "json", "j", "", false, "output as JSON", false)

	return s
}

//
type Status struct {
	//
	Runner
	//
	JSON bool
}

//
func (s *Status) Run() error {

	if err := s.ParseSettings(); err != nil {
		return err
	}

	resp, err := s.apiCall("GET", "/status", s.JSON, nil)
	if err != nil {
		return err
	}
	defer resp.Close()

	status, err := io.ReadAll(resp)
	if err != nil {
		return err
	}

	fmt.Fprintf(s.stdout(), "%s\n", status)
	return nil
}
