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

// Package semdb models the out-of-scope semantic database (parser, name
// resolver, type inferencer, completion ranker) as a Go interface. Callers
// depend only on DB; internal/semdb/fake supplies a deterministic,
// hand-configured implementation for tests.
package semdb

import (
	"github.com/tenxhq/rustbelt/internal/vfs"
)

// LoadConfig enumerates the cargo-like toggles the workspace loader passes
// to DB.LoadWorkspace.
type LoadConfig struct {
	LoadAllTargets   bool `mapstructure:"load_all_targets"`
	SysrootDiscovery bool `mapstructure:"sysroot_discovery"`
	OutDirsFromCheck bool `mapstructure:"out_dirs_from_check"`
	ProcMacroServer  bool `mapstructure:"proc_macro_server"`
	PrefillCaches    bool `mapstructure:"prefill_caches"`
}

// DefaultLoadConfig matches the configuration the reference loader uses.
func DefaultLoadConfig() LoadConfig {
	return LoadConfig{
		LoadAllTargets:   true,
		SysrootDiscovery: true,
		OutDirsFromCheck: true,
		ProcMacroServer:  true,
		PrefillCaches:    false,
	}
}

// Offset is a byte offset within one file's UTF-8 content.
type Offset = int

// SymbolKind is a coarse symbol classification, e.g. "Struct", "Function".
type SymbolKind = string

// Hover is the result of a hover query at an offset.
type Hover struct {
	Markup         string
	CanonicalTypes []string
}

// NavigationTarget is one destination of a goto-definition query.
type NavigationTarget struct {
	FileID         vfs.FileID
	StartOffset    int
	EndOffset      int
	Name           string
	Kind           SymbolKind
	Moniker        string // preferred module path, empty if unavailable
	ContainerName  string // fallback module path
	Description    string
	FullRangeStart int
	FullRangeEnd   int
}

// Reference is one use site (or the declaration) of a symbol.
type Reference struct {
	FileID       vfs.FileID
	StartOffset  int
	EndOffset    int
	Name         string
	IsDefinition bool
}

// CompletionItem is one raw suggestion before schema normalization.
type CompletionItem struct {
	Name           string
	RequiredImport string
	Kind           string
	Signature      string
	Documentation  string
	Deprecated     bool
}

// RenameOutcome distinguishes "nothing to rename here" from a successful
// or failed rename attempt.
type RenameOutcome int

const (
	// RenameNotApplicable means no renameable symbol exists at the offset.
	RenameNotApplicable RenameOutcome = iota
	// RenameOK means the rename succeeded and produced a SourceChange.
	RenameOK
	// RenameFailed means a renameable symbol exists but the rename is
	// semantically invalid (e.g. a name collision).
	RenameFailed
)

// TextEdit is a DB-native half-open byte-offset edit.
type TextEdit struct {
	StartOffset int
	EndOffset   int
	NewText     string
}

// FileEdit bundles the edits targeting one file.
type FileEdit struct {
	FileID vfs.FileID
	Edits  []TextEdit
}

// SourceChange is a DB-native multi-file edit set.
type SourceChange struct {
	FileEdits []FileEdit
	IsSnippet bool
}

// InlayHint is one DB-native inlay hint.
type InlayHint struct {
	AnchorOffset int
	Before       bool
	Label        string
}

// Assist describes one available code action.
type Assist struct {
	ID     string
	Kind   string
	Label  string
	Target string
}

// WorkspaceSymbol is one hit from a workspace-wide symbol search.
type WorkspaceSymbol struct {
	Name          string
	Kind          string
	FileID        vfs.FileID
	Offset        int
	ContainerName string
}

// ChangeSet is what the Query Layer hands the DB at the end of a drain: the
// set of file content changes observed since the last apply.
type ChangeSet struct {
	Changed map[vfs.FileID][]byte // nil value means content-unavailable
	Deleted []vfs.FileID
}

// DB is the queryable incremental-computation library this engine treats
// as an external collaborator. A reimplementation may substitute any
// equivalently capable engine; only this method surface is assumed.
type DB interface {
	// LoadWorkspace performs the one-shot project load, returning the
	// initial file set to seed the VFS with.
	LoadWorkspace(root string, cfg LoadConfig) (initialFiles map[string][]byte, err error)

	// ApplyChange advances the DB's snapshot with a drained VFS delta.
	// This is the only way the DB observes edits.
	ApplyChange(cs ChangeSet)

	// PrimeCache evaluates one partition (by index, of partitionCount
	// total) of the cache-priming work queue. Called concurrently by the
	// workspace loader's worker pool.
	PrimeCache(partition, partitionCount int) error

	Hover(file vfs.FileID, offset Offset) (*Hover, error)
	GotoDefinition(file vfs.FileID, offset Offset) ([]NavigationTarget, error)
	Completions(file vfs.FileID, offset Offset) ([]CompletionItem, error)
	FindReferences(file vfs.FileID, offset Offset) ([]Reference, error)
	PrepareRename(file vfs.FileID, offset Offset, newName string) (RenameOutcome, *SourceChange, string, error)
	InlayHints(file vfs.FileID) ([]InlayHint, error)
	Assists(file vfs.FileID, offset Offset) ([]Assist, error)
	ResolveAssist(file vfs.FileID, offset Offset, id string) (*SourceChange, error)
	WorkspaceSymbols(query string) ([]WorkspaceSymbol, error)
}
