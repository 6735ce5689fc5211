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

package repo

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "games"), 0755))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "games", "save.json"), []byte(`{"id":1}`), 0644))

	r, err := Resolve("repo://games/save.json", dir)
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, `{"id":1}`, string(data))

	// cannot escape the repository
	r, err = Resolve("repo://../games/save.json", dir)
	require.NoError(t, err)
	r.Close()

	_, err = Resolve("repo://../../etc/passwd", filepath.Join(dir, "games"))
	assert.Error(t, err)
}

func TestResolveErrors(t *testing.T) {
	_, err := Resolve("repo://save.json", "")
	assert.Error(t, err)

	_, err = Resolve("http://example.com/save.json", t.TempDir())
	assert.Error(t, err)

	_, err = Resolve("repo://", t.TempDir())
	assert.Error(t, err)

	_, err = Resolve("repo://missing.json", t.TempDir())
	assert.Error(t, err)
}

func TestIsReference(t *testing.T) {
	assert.True(t, IsReference("repo://a.json"))
	assert.False(t, IsReference("a.json"))
}
