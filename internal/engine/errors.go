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

package engine

import "github.com/pkg/errors"

// The engine's sentinel error taxonomy. A sentinel reaches the caller either
// bare or wrapped with call-specific detail via github.com/pkg/errors;
// callers distinguish cases with errors.Is against these values.
var (
	// ErrFileNotInWorkspace is returned when a query names a path the VFS
	// has never observed, or one whose file has since been deleted.
	ErrFileNotInWorkspace = errors.New("file is not part of the loaded workspace")

	// ErrLineIndexUnavailable is returned when a file's content cannot be
	// indexed, typically because it failed UTF-8 validation.
	ErrLineIndexUnavailable = errors.New("line index unavailable for file")

	// ErrDBQueryFailure wraps a non-nil error returned by the semantic DB.
	ErrDBQueryFailure = errors.New("semantic database query failed")

	// ErrDBQueryPanic is substituted for a query result when the panic
	// containment shim recovers from a DB call.
	ErrDBQueryPanic = errors.New("semantic database query panicked")

	// ErrRenameFailed is returned when PrepareRename reports
	// semdb.RenameFailed.
	ErrRenameFailed = errors.New("rename is not valid at this position")

	// ErrRangeOutOfBounds is returned when a DB-reported offset range does
	// not fit within the current content of its file, and when an inlay-hint
	// line range is invalid for the rendered file.
	ErrRangeOutOfBounds = errors.New("database-reported range is out of bounds for current file content")

	// ErrNoReferences is returned when a find-references query resolves a
	// valid symbol but the DB reports no use sites at all (not even the
	// declaration).
	ErrNoReferences = errors.New("no references found at this position")
)
