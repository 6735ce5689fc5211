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
	"bytes"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

//
const lz4Prefix = "lz4+"

// NewLZ4 wraps inner such that its output gets LZ4 compressed. The frame
// format carries a content checksum, so corrupted data fails to decode.
func NewLZ4(inner Codec) *LZ4 {
	return &LZ4{inner: inner}
}

// LZ4 is a compressing codec wrapper.
type LZ4 struct {
	inner Codec
}

//
func (c *LZ4) Marshal(v interface{}) ([]byte, error) {

	data, err := c.inner.Marshal(v)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	w := lz4.NewWriter(&out)
	if err := w.Apply(lz4.ChecksumOption(true)); err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("error compressing: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("error compressing: %w", err)
	}

	return out.Bytes(), nil
}

//
func (c *LZ4) Unmarshal(data []byte, v interface{}) error {
	plain, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
	if err != nil {
		return fmt.Errorf("error decompressing: %w", err)
	}
	return c.inner.Unmarshal(plain, v)
}

//
func (c *LZ4) Name() string {
	return lz4Prefix + c.inner.Name()
}
