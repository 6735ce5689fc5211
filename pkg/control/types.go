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
	"errors"
	"fmt"
	"net/http"

	"github.com/xelalexv/cartflash/pkg/daemon"
	"github.com/xelalexv/cartflash/pkg/flash"
)

//
func statusText(s *daemon.Status) string {

	present := "no structure"
	if s.Present {
		present = fmt.Sprintf("structure of %d bytes", s.Length)
	}

	return fmt.Sprintf(`
DEVICE   %s
CHIP     %s
CODEC    %s
WINDOW   %d bytes, payload up to %d bytes
STATE    %s
`, s.Device, s.Chip, s.Codec, s.Size, s.MaxPayload, present)
}

// non-standard, used for requests whose client went away
const statusClientClosedRequest = 499

// statusCodeFor maps daemon & driver errors to HTTP status codes.
func statusCodeFor(err error) int {

	var tooLarge *flash.PayloadTooLargeError
	var program *flash.ProgramError

	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, daemon.ErrBusy):
		return http.StatusLocked
	case errors.Is(err, daemon.ErrClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, flash.ErrNoStructure):
		return http.StatusNotFound
	case errors.Is(err, flash.ErrChipUnresponsive):
		return http.StatusServiceUnavailable
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &program):
		return http.StatusInternalServerError
	default:
		return http.StatusUnprocessableEntity
	}
}
