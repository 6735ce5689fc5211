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
	"fmt"
	"io"
	"net/url"
	"os"

	"github.com/goccy/go-json"

	"github.com/xelalexv/cartflash/pkg/repo"
)

//
func NewPut() *Put {

	p := &Put{}
	p.Runner = *NewRunner(
		"put -i|--input {file}|-r|--ref {reference} [-a|--address {host}] [-p|--port {port}]",
		"persist a structure via the daemon",
		`
Use the put command to persist a structure to the flash chip. The structure is
read from a JSON file, or from stdin when the file is given as '-'. Any
structure stored before gets replaced.

Alternatively, a reference of the form repo://{path} names a structure file in
the repository of the daemon.`,
		"", `- Persisting erases the flash chip first. Flash chips only endure a limited
  number of erase cycles, so the daemon may limit the number of writes.

`+runnerHelpEpilogue, p.Run)

	p.AddClientSettings()
	p.AddSetting(&p.File, "input", "i", "", nil, "structure input file", false)
	p.AddSetting(&p.Ref, "ref", "r", "", nil,
		"reference to structure in daemon's repository", false)

	return p
}

//
type Put struct {
	//
	Runner
	//
	File  string
	Ref   string
	stdin io.Reader
}

//
func (p *Put) Run() error {

	if err := p.ParseSettings(); err != nil {
		return err
	}

	var resp io.ReadCloser

	switch {

	case p.File != "" && p.Ref != "":
		return fmt.Errorf("input file and reference are mutually exclusive")

	case p.Ref != "":
		if !repo.IsReference(p.Ref) {
			return fmt.Errorf("not a repository reference: %s", p.Ref)
		}
		r, err := p.apiCall("PUT", fmt.Sprintf("/structure?ref=%s",
			url.QueryEscape(p.Ref)), false, nil)
		if err != nil {
			return err
		}
		resp = r

	case p.File != "":
		data, err := p.read()
		if err != nil {
			return err
		}
		if !json.Valid(data) {
			return fmt.Errorf("%s does not contain valid JSON", p.File)
		}
		r, err := p.apiCall("PUT", "/structure", true, bytes.NewReader(data))
		if err != nil {
			return err
		}
		resp = r

	default:
		return fmt.Errorf(
			"you need to specify either the --input or the --ref command line flag")
	}

	defer resp.Close()

	msg, err := io.ReadAll(resp)
	if err != nil {
		return err
	}

	fmt.Fprintf(p.stdout(), "%s", msg)
	return nil
}

//
func (p *Put) read() ([]byte, error) {
	if p.File != "-" {
		return os.ReadFile(p.File)
	}
	if p.stdin != nil {
		return io.ReadAll(p.stdin)
	}
	return io.ReadAll(os.Stdin)
}
