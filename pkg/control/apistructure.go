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
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/xelalexv/cartflash/pkg/repo"
)

//
func (a *api) retrieve(w http.ResponseWriter, req *http.Request) {
	var raw json.RawMessage
	err := a.daemon.RetrieveInto(req.Context(), &raw)
	if handleError(err, statusCodeFor(err), w) {
		return
	}
	sendJSONReply(raw, http.StatusOK, w)
}

//
func (a *api) persist(w http.ResponseWriter, req *http.Request) {

	if !a.wear.Allow() {
		handleError(fmt.Errorf("too many writes, try again later"),
			http.StatusTooManyRequests, w)
		return
	}

	in, err := a.getStructureSource(req)
	if handleError(err, http.StatusUnprocessableEntity, w) {
		return
	}

	// the structure is passed on as is, so numbers keep their precision
	data, err := io.ReadAll(io.LimitReader(in, maxBodySize+1))
	in.Close()
	if handleError(err, http.StatusBadRequest, w) {
		return
	}

	if len(data) > maxBodySize {
		handleError(fmt.Errorf("structure exceeds %d bytes", maxBodySize),
			http.StatusRequestEntityTooLarge, w)
		return
	}

	var structure bytes.Buffer
	if err := json.Compact(&structure, data); err != nil {
		handleError(fmt.Errorf("invalid structure: %v", err),
			http.StatusBadRequest, w)
		return
	}

	err = a.daemon.Persist(req.Context(), json.RawMessage(structure.Bytes()))
	if handleError(err, statusCodeFor(err), w) {
		return
	}

	sendReply([]byte("structure persisted"), http.StatusOK, w)
}

// getStructureSource returns the request body, or the repository file named
// by the ref parameter.
func (a *api) getStructureSource(req *http.Request) (io.ReadCloser, error) {

	ref, err := getArg(req, "ref")
	if err != nil {
		return nil, err
	}

	if ref == "" {
		return req.Body, nil
	}

	req.Body.Close()
	return repo.Resolve(ref, a.repository)
}

//
func (a *api) erase(w http.ResponseWriter, req *http.Request) {

	if !a.wear.Allow() {
		handleError(fmt.Errorf("too many writes, try again later"),
			http.StatusTooManyRequests, w)
		return
	}

	err := a.daemon.Erase(req.Context())
	if handleError(err, statusCodeFor(err), w) {
		return
	}

	sendReply([]byte("flash chip erased"), http.StatusOK, w)
}

//
func (a *api) dump(w http.ResponseWriter, req *http.Request) {

	var out bytes.Buffer
	err := a.daemon.Dump(req.Context(), &out)
	if handleError(err, statusCodeFor(err), w) {
		return
	}

	sendBinaryReply(&out, http.StatusOK, w)
}
