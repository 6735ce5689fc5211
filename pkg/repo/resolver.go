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
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
)

// PrefixRepoRef marks a structure reference into the daemon's repository.
const PrefixRepoRef = "repo://"

// fileSource is a buffered structure file.
type fileSource struct {
	*bufio.Reader
	file *os.File
}

//
func openFileSource(path string) (*fileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &fileSource{Reader: bufio.NewReader(f), file: f}, nil
}

//
func (fs *fileSource) Close() error {
	return fs.file.Close()
}

/*
	Resolve opens the structure file that ref points to. Only references into
	repo are supported, and they cannot point outside of it. An empty repo
	means the repository is disabled.
*/
func Resolve(ref, repo string) (io.ReadCloser, error) {

	log.WithFields(log.Fields{
		"reference":  ref,
		"repository": repo,
	}).Debug("resolving ref")

	if !IsReference(ref) {
		return nil, fmt.Errorf("unsupported reference: %s", ref)
	}

	if repo == "" {
		return nil, fmt.Errorf("structure repository is not enabled")
	}

	rel := filepath.Clean("/" + ref[len(PrefixRepoRef):])
	if rel == "/" {
		return nil, fmt.Errorf("empty reference")
	}

	return openFileSource(filepath.Join(repo, rel))
}

//
func IsReference(r string) bool {
	return strings.HasPrefix(r, PrefixRepoRef)
}
