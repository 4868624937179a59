/*
Copyright 2024 The polar-kb Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package kb

import (
	"fmt"
	"strings"
)

// Source is a unit of loaded policy text: the raw source and, usually, the
// filename it came from. Sources are write-once for the lifetime of a
// knowledge base — add_source never replaces an existing entry (spec §3
// "Lifecycles").
type Source struct {
	Src      string
	Filename *string
}

// Position resolves a byte offset within Src to a 1-based (line, column)
// pair, for rendering a human-readable diagnostic location. Computed
// lazily on demand rather than precomputed per term, per
// SPEC_FULL.md §12.3 (the original's offset-based approach).
func (s Source) Position(offset int) (line, column int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(s.Src) {
		offset = len(s.Src)
	}
	line = 1 + strings.Count(s.Src[:offset], "\n")
	if idx := strings.LastIndexByte(s.Src[:offset], '\n'); idx >= 0 {
		column = offset - idx
	} else {
		column = offset + 1
	}
	return line, column
}

type sourceRegistry struct {
	byID       map[uint64]Source
	byFilename map[string]uint64
	byContents map[string]string // contents -> filename
}

func newSourceRegistry() *sourceRegistry {
	return &sourceRegistry{
		byID:       map[uint64]Source{},
		byFilename: map[string]uint64{},
		byContents: map[string]string{},
	}
}

// AddSource registers a Source and returns its id. Sources without a
// filename bypass de-duplication (spec §4.2). Sources with a filename are
// rejected with a distinct FileLoading diagnostic for each of the three
// cases in spec §4.2.
func (k *KB) AddSource(s Source) (uint64, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.addSourceLocked(s)
}

func (k *KB) addSourceLocked(s Source) (uint64, error) {
	reg := k.sources
	if s.Filename != nil {
		filename := *s.Filename
		if existingID, ok := reg.byFilename[filename]; ok {
			existing := reg.byID[existingID]
			if existing.Src == s.Src {
				return 0, fileLoadingError(fmt.Sprintf("File %s has already been loaded.", filename))
			}
			return 0, fileLoadingError(fmt.Sprintf("A file with the name %s, but different contents has already been loaded.", filename))
		}
		if existingFilename, ok := reg.byContents[s.Src]; ok {
			return 0, fileLoadingError(fmt.Sprintf("A file with the same contents has already been loaded under the name %s.", existingFilename))
		}
	}
	id := k.NewID()
	reg.byID[id] = s
	if s.Filename != nil {
		reg.byFilename[*s.Filename] = id
		reg.byContents[s.Src] = *s.Filename
	}
	return id, nil
}

// GetSource returns the Source registered under id.
func (k *KB) GetSource(id uint64) (Source, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	s, ok := k.sources.byID[id]
	return s, ok
}

func (reg *sourceRegistry) clear() {
	reg.byID = map[uint64]Source{}
	reg.byFilename = map[string]uint64{}
	reg.byContents = map[string]string{}
}
