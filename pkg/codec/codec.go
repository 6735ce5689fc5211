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

package codec

import (
	"fmt"
	"strings"
)

// Codec turns structures into byte sequences and back.
type Codec interface {
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte, v interface{}) error
	Name() string
}

// Default is the codec used when none is configured.
var Default Codec = GoJSON{}

// ByName returns the codec with the given name. Names of the form
// `lz4+{name}` wrap codec {name} in LZ4 compression.
func ByName(name string) (Codec, error) {

	if inner := strings.TrimPrefix(name, lz4Prefix); inner != name {
		c, err := ByName(inner)
		if err != nil {
			return nil, err
		}
		return NewLZ4(c), nil
	}

	switch name {

	case "", "go-json", "json":
		return GoJSON{}, nil

	case "lz4":
		return NewLZ4(GoJSON{}), nil

	default:
		return nil, fmt.Errorf("unsupported codec: %s", name)
	}
}
