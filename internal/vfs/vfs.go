// Copyright 2024 The Rustbelt Authors
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

// Package vfs is the authoritative in-memory mirror of on-disk workspace
// contents, with a staged change set drained by the query layer's preamble.
package vfs

import (
	"sync"
	"unicode/utf8"

	"github.com/tenxhq/rustbelt/internal/logging"
	"github.com/tenxhq/rustbelt/internal/paths"
)

// FileID is an opaque, stable identity for a file within the current
// process lifetime. It is assigned on first introduction and never reused.
type FileID uint32

// ChangeKind enumerates the three ways a file can be staged.
type ChangeKind int

const (
	// Created indicates the path is new to the VFS.
	Created ChangeKind = iota
	// Modified indicates the path's content changed.
	Modified
	// Deleted indicates the path was removed; its FileID is tombstoned.
	Deleted
)

// Change is one staged mutation, keyed by FileID once known.
type Change struct {
	File    FileID
	Path    paths.AbsPath
	Kind    ChangeKind
	Content []byte // nil for Deleted or content-unavailable entries
	// UTF8 is false when Content is non-nil but not valid UTF-8: the VFS
	// still remembers the raw bytes, but downstream semantic-DB-facing
	// code must treat this entry as content-unavailable.
	UTF8 bool
}

type entry struct {
	path      paths.AbsPath
	content   []byte
	present   bool
	validUTF8 bool
}

// VFS is the bidirectional {AbsPath <-> FileID} map plus staged changes.
type VFS struct {
	log logging.Logger

	mu      sync.RWMutex
	byPath  map[paths.AbsPath]FileID
	entries map[FileID]*entry
	nextID  FileID
	staged  []Change
}

// Option configures a VFS at construction time.
type Option func(*VFS)

// WithLogger overrides the default no-op logger.
func WithLogger(l logging.Logger) Option {
	return func(v *VFS) { v.log = l }
}

// New constructs an empty VFS.
func New(opts ...Option) *VFS {
	v := &VFS{
		log:     logging.NewNop(),
		byPath:  make(map[paths.AbsPath]FileID),
		entries: make(map[FileID]*entry),
	}
	for _, o := range opts {
		o(v)
	}
	return v
}

// SetFileContents records a change against the staged set. Passing a nil
// content marks the path deleted. Idempotent when content equals the
// current content.
func (v *VFS) SetFileContents(path paths.AbsPath, content []byte) {
	v.mu.Lock()
	defer v.mu.Unlock()

	id, known := v.byPath[path]
	if !known {
		id = v.nextID
		v.nextID++
		v.byPath[path] = id
		v.entries[id] = &entry{path: path}
	}
	e := v.entries[id]

	if content == nil {
		if !e.present && known {
			return // already tombstoned, nothing changed
		}
		e.present = false
		e.content = nil
		e.validUTF8 = false
		v.staged = append(v.staged, Change{File: id, Path: path, Kind: Deleted})
		return
	}

	valid := utf8.Valid(content)
	if e.present && string(e.content) == string(content) {
		return // idempotent: no staged change for identical content
	}

	kind := Modified
	if !known || !e.present {
		kind = Created
	}
	e.present = true
	e.content = content
	e.validUTF8 = valid

	change := Change{File: id, Path: path, Kind: kind, UTF8: valid}
	if valid {
		change.Content = content
	} else {
		v.log.Warn("file content is not valid UTF-8, marking content-unavailable", "path", string(path))
	}
	v.staged = append(v.staged, change)
}

// FileID returns the id for path, if known.
func (v *VFS) FileID(path paths.AbsPath) (FileID, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	id, ok := v.byPath[path]
	return id, ok
}

// FilePath is the inverse lookup; it returns false for tombstoned or
// unknown ids.
func (v *VFS) FilePath(id FileID) (paths.AbsPath, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	e, ok := v.entries[id]
	if !ok || !e.present {
		return "", false
	}
	return e.path, true
}

// Exists reports whether id maps to a present (non-tombstoned) file.
func (v *VFS) Exists(id FileID) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	e, ok := v.entries[id]
	return ok && e.present
}

// Content returns the current raw bytes for id, and whether they are valid
// UTF-8 (the semantic-DB-visible view).
func (v *VFS) Content(id FileID) (content []byte, validUTF8 bool, ok bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	e, found := v.entries[id]
	if !found || !e.present {
		return nil, false, false
	}
	return e.content, e.validUTF8, true
}

// TakeChanges drains the staged set, transferring ownership of the delta to
// the caller. After this call the staged set is empty.
func (v *VFS) TakeChanges() []Change {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.staged) == 0 {
		return nil
	}
	out := v.staged
	v.staged = nil
	return out
}

// AllPaths returns every currently-present path known to the VFS.
func (v *VFS) AllPaths() []paths.AbsPath {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]paths.AbsPath, 0, len(v.entries))
	for _, e := range v.entries {
		if e.present {
			out = append(out, e.path)
		}
	}
	return out
}
