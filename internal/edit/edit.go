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

// Package edit applies a RenamePlan (or equivalently-shaped assist
// SourceChange) to disk: per file, read, validate every edit against a
// freshly built LineIndex, combine them with an EditBuilder, and write the
// result back atomically.
package edit

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/tenxhq/rustbelt/internal/logging"
	"github.com/tenxhq/rustbelt/internal/schema"
	"github.com/tenxhq/rustbelt/internal/text"
)

// ErrInvalidEditPosition is returned when an edit range does not map to a
// valid byte offset in the current file content.
var ErrInvalidEditPosition = errors.New("edit range does not map to a valid position in the file")

// ErrFileIO is returned when a file read or write fails.
var ErrFileIO = errors.New("file read/write failed")

// Applier writes SourceChanges to disk through an afero.Fs.
type Applier struct {
	fs  afero.Fs
	log logging.Logger
}

// Option configures an Applier.
type Option func(*Applier)

// WithFS overrides the default OS filesystem.
func WithFS(fs afero.Fs) Option {
	return func(a *Applier) { a.fs = fs }
}

// WithLogger overrides the default no-op logger.
func WithLogger(l logging.Logger) Option {
	return func(a *Applier) { a.log = l }
}

// New constructs an Applier.
func New(opts ...Option) *Applier {
	a := &Applier{fs: afero.NewOsFs(), log: logging.NewNop()}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Apply writes every file change in sc to disk, sequentially. A failure on
// one file does not roll back files already written earlier in the plan;
// re-applying the same plan to already-applied content is safe because each
// edit's current target range is checked against its recorded OldText before
// writing, and an edit whose target text no longer matches is skipped rather
// than applied at the wrong offset (see the edit idempotence property).
func (a *Applier) Apply(sc schema.SourceChange) error {
	for _, fc := range sc.FileChanges {
		if err := a.applyFile(fc); err != nil {
			return errors.Wrapf(err, "applying edits to %s", fc.FilePath)
		}
	}
	return nil
}

func (a *Applier) applyFile(fc schema.FileChange) error {
	content, err := afero.ReadFile(a.fs, fc.FilePath)
	if err != nil {
		return errors.Wrap(ErrFileIO, err.Error())
	}

	li := text.NewLineIndex(string(content))
	builder := text.NewEditBuilder(string(content))

	skipped := 0
	for _, e := range fc.Edits {
		start, serr := li.Offset(e.Line, e.Column)
		if serr != nil {
			return errors.Wrapf(ErrInvalidEditPosition, "start (%d,%d): %v", e.Line, e.Column, serr)
		}
		end, eerr := li.Offset(e.EndLine, e.EndColumn)
		if eerr != nil {
			return errors.Wrapf(ErrInvalidEditPosition, "end (%d,%d): %v", e.EndLine, e.EndColumn, eerr)
		}

		current, slerr := li.Slice(start, end)
		if slerr != nil {
			return errors.Wrapf(ErrInvalidEditPosition, "range (%d,%d)-(%d,%d): %v", e.Line, e.Column, e.EndLine, e.EndColumn, slerr)
		}
		if e.OldText != "" && current != e.OldText {
			a.log.Debug("skipping stale edit, target text no longer matches", "file", fc.FilePath, "line", e.Line, "column", e.Column)
			skipped++
			continue
		}

		builder.Add(start, end, e.NewText)
	}
	if skipped == len(fc.Edits) {
		return nil
	}

	result, ferr := builder.Finalize()
	if ferr != nil {
		return ferr
	}

	if err := afero.WriteFile(a.fs, fc.FilePath, []byte(result), os.ModePerm); err != nil {
		return errors.Wrap(ErrFileIO, err.Error())
	}
	a.log.Debug("applied edits", "file", fc.FilePath, "count", len(fc.Edits))
	return nil
}
