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

// Package engine implements the Query Layer: one public method per
// operation, each following the shared preamble (drain watched changes,
// resolve the target file, resolve and validate the cursor, dispatch to the
// semantic database, translate the result into the stable external
// schema), serialized behind a single coarse lock per the single-writer,
// multi-reader concurrency model.
package engine

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/tenxhq/rustbelt/internal/cursor"
	"github.com/tenxhq/rustbelt/internal/logging"
	"github.com/tenxhq/rustbelt/internal/manifest"
	"github.com/tenxhq/rustbelt/internal/paths"
	"github.com/tenxhq/rustbelt/internal/schema"
	"github.com/tenxhq/rustbelt/internal/semdb"
	"github.com/tenxhq/rustbelt/internal/text"
	"github.com/tenxhq/rustbelt/internal/vfs"
	"github.com/tenxhq/rustbelt/internal/watcher"
	"github.com/tenxhq/rustbelt/internal/workspace"
)

// Engine is the query-serving handle produced by a successful workspace
// load. The zero value is not usable; construct with New.
type Engine struct {
	log logging.Logger

	// mu serializes every public method: the engine is single-writer,
	// multi-reader at the goroutine level but treats every query as a
	// potential writer because drain-and-apply mutates the VFS and the DB
	// snapshot before any read proceeds.
	mu sync.Mutex

	vfs     *vfs.VFS
	watcher *watcher.Watcher
	db      semdb.DB
	graph   *manifest.Graph

	lineIndexes map[vfs.FileID]*text.LineIndex
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger overrides the default no-op logger.
func WithLogger(l logging.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// New builds an Engine from a completed workspace load.
func New(loaded *workspace.Loaded, db semdb.DB, opts ...Option) *Engine {
	e := &Engine{
		log:         logging.NewNop(),
		vfs:         loaded.VFS,
		watcher:     loaded.Watcher,
		db:          db,
		graph:       loaded.Graph,
		lineIndexes: make(map[vfs.FileID]*text.LineIndex),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Graph exposes the crate dependency graph discovered at load time.
func (e *Engine) Graph() *manifest.Graph { return e.graph }

// drainAndApply drains any pending watcher notifications into the VFS and
// forwards the delta to the semantic DB, invalidating any cached LineIndex
// for a changed file. It must be called with e.mu held.
func (e *Engine) drainAndApply() {
	changes := e.watcher.DrainAndApply(e.vfs)
	if len(changes) == 0 {
		return
	}
	cs := semdb.ChangeSet{Changed: map[vfs.FileID][]byte{}}
	for _, c := range changes {
		delete(e.lineIndexes, c.File)
		switch c.Kind {
		case vfs.Deleted:
			cs.Deleted = append(cs.Deleted, c.File)
		default:
			if c.UTF8 {
				cs.Changed[c.File] = c.Content
			} else {
				cs.Changed[c.File] = nil
			}
		}
	}
	e.db.ApplyChange(cs)
}

// preamble drains any pending watcher notifications (see drainAndApply),
// then resolves filePath to a FileID and its current LineIndex. It must be
// called with e.mu held.
func (e *Engine) preamble(filePath string) (vfs.FileID, *text.LineIndex, error) {
	e.drainAndApply()

	ap, err := paths.Canonicalize(filePath)
	if err != nil {
		return 0, nil, errors.Wrap(paths.ErrPathInvalid, err.Error())
	}
	id, ok := e.vfs.FileID(ap)
	if !ok || !e.vfs.Exists(id) {
		return 0, nil, ErrFileNotInWorkspace
	}

	li, err := e.lineIndexFor(id)
	if err != nil {
		return 0, nil, err
	}
	return id, li, nil
}

// lineIndexFor returns the cached LineIndex for id, building and caching it
// from current VFS content if absent. Must be called with e.mu held.
func (e *Engine) lineIndexFor(id vfs.FileID) (*text.LineIndex, error) {
	if li, ok := e.lineIndexes[id]; ok {
		return li, nil
	}
	content, valid, ok := e.vfs.Content(id)
	if !ok || !valid {
		return nil, ErrLineIndexUnavailable
	}
	li := text.NewLineIndex(string(content))
	e.lineIndexes[id] = li
	return li, nil
}

// pathFor is the inverse of preamble's lookup, for translating DB results
// that may reference a different file than the query target (e.g. a
// definition in another module).
func (e *Engine) pathFor(id vfs.FileID) (string, bool) {
	p, ok := e.vfs.FilePath(id)
	return p.String(), ok
}

// recoverPanic wraps a known-fragile DB call, demoting a panic to
// ErrDBQueryPanic instead of bringing down the engine.
func recoverPanic(label string, log logging.Logger) func(err *error) {
	return func(err *error) {
		if r := recover(); r != nil {
			log.Warn("recovered panic from semantic database call", "call", label, "panic", r)
			*err = errors.Wrapf(ErrDBQueryPanic, "%s: %v", label, r)
		}
	}
}

func resolve(li *text.LineIndex, coord schema.CursorCoordinates) (int, error) {
	symbol := ""
	if coord.Symbol != nil {
		symbol = *coord.Symbol
	}
	offset, _, _, err := cursor.ResolveOffset(li, coord.Line, coord.Column, symbol)
	return offset, err
}

func rangeFor(li *text.LineIndex, start, end int) (line, col, endLine, endCol uint32, err error) {
	line, col, err = li.LineCol(start)
	if err != nil {
		return 0, 0, 0, 0, errors.Wrap(ErrRangeOutOfBounds, err.Error())
	}
	endLine, endCol, err = li.LineCol(end)
	if err != nil {
		return 0, 0, 0, 0, errors.Wrap(ErrRangeOutOfBounds, err.Error())
	}
	return line, col, endLine, endCol, nil
}
