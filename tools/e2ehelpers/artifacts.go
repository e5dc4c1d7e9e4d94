// Copyright (c) 2026 TTBT Enterprises LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package e2ehelpers

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// ArtifactStore writes test artifacts under a fixed directory.
type ArtifactStore struct {
	fs  afero.Fs
	dir string
}

// NewArtifactStore returns a store rooted at dir on fs. A nil fs means the
// OS filesystem.
func NewArtifactStore(fs afero.Fs, dir string) *ArtifactStore {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &ArtifactStore{fs: fs, dir: dir}
}

// Dir returns the root directory.
func (a *ArtifactStore) Dir() string { return a.dir }

// Path returns where name is stored. Names without an extension get ".png".
func (a *ArtifactStore) Path(name string) string {
	if filepath.Ext(name) == "" {
		name += ".png"
	}
	return filepath.Join(a.dir, filepath.Base(name))
}

// Save writes data as name, creating the directory if needed and replacing
// any previous file with the same name.
func (a *ArtifactStore) Save(name string, data []byte) (string, error) {
	path := a.Path(name)
	if err := a.fs.MkdirAll(a.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory for screenshot: %w", err)
	}
	if err := afero.WriteFile(a.fs, path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write screenshot to file: %w", err)
	}
	return path, nil
}
