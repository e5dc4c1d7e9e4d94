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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/c2FmZQ/storage"
)

// StepRecord is one named step of a run.
type StepRecord struct {
	Name  string    `json:"name"`
	Time  time.Time `json:"time"`
	Error string    `json:"error,omitempty"`
}

// RunRecord describes one session from launch to close.
type RunRecord struct {
	ID            string       `json:"id"`
	Browser       string       `json:"browser"`
	BaseURL       string       `json:"baseUrl"`
	Started       time.Time    `json:"started"`
	Finished      time.Time    `json:"finished"`
	Steps         []StepRecord `json:"steps,omitempty"`
	Screenshots   []string     `json:"screenshots,omitempty"`
	ConsoleErrors []string     `json:"consoleErrors,omitempty"`
}

// Failed reports whether any step failed.
func (r RunRecord) Failed() bool {
	for _, s := range r.Steps {
		if s.Error != "" {
			return true
		}
	}
	return false
}

// RunStore persists run records under <dir>/runs.
type RunStore struct {
	storage *storage.Storage
}

// NewRunStore returns a store rooted at dir.
func NewRunStore(dir string) *RunStore {
	return &RunStore{storage: storage.New(dir, nil)}
}

func runFile(id string) string {
	return filepath.Join("runs", fmt.Sprintf("%s.json", id))
}

// Save writes the record, replacing any previous record with the same ID.
func (s *RunStore) Save(r *RunRecord) error {
	if err := s.storage.SaveDataFile(runFile(r.ID), r); err != nil {
		return fmt.Errorf("storage.SaveDataFile: %w", err)
	}
	return nil
}

// Load reads the record with the given ID.
func (s *RunStore) Load(id string) (*RunRecord, error) {
	var r RunRecord
	if err := s.storage.ReadDataFile(runFile(id), &r); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, os.ErrNotExist
		}
		return nil, fmt.Errorf("ReadDataFile: %w", err)
	}
	return &r, nil
}
