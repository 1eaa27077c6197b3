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

// Package fake provides a deterministic, hand-configured semdb.DB for
// tests, built in a functional-options style: every query result is
// programmed in advance by coordinate key rather than computed by a real
// resolver.
package fake

import (
	"sync"

	"github.com/tenxhq/rustbelt/internal/semdb"
	"github.com/tenxhq/rustbelt/internal/vfs"
)

type key struct {
	file   vfs.FileID
	offset int
}

// DB is a scripted semdb.DB. Construct it with New and program results with
// the With* options, either passed to New or applied to an existing DB
// (fake.WithHover(...)(db)). The zero value has nil maps, so applying an
// option to it panics.
type DB struct {
	mu sync.Mutex

	initialFiles map[string][]byte

	hovers      map[key]*semdb.Hover
	definitions map[key][]semdb.NavigationTarget
	completions map[key][]semdb.CompletionItem
	references  map[key][]semdb.Reference
	renames     map[key]renameEntry
	inlayHints  map[vfs.FileID][]semdb.InlayHint
	assists     map[key][]semdb.Assist
	resolved    map[key]*semdb.SourceChange
	symbols     []semdb.WorkspaceSymbol

	panicOn map[key]struct{}

	applied []semdb.ChangeSet
}

type renameEntry struct {
	outcome semdb.RenameOutcome
	change  *semdb.SourceChange
	message string
}

// Option programs a DB; pass it to New or call it on an existing DB.
type Option func(*DB)

// New builds a fake DB with the given options applied.
func New(opts ...Option) *DB {
	d := &DB{
		initialFiles: map[string][]byte{},
		hovers:       map[key]*semdb.Hover{},
		definitions:  map[key][]semdb.NavigationTarget{},
		completions:  map[key][]semdb.CompletionItem{},
		references:   map[key][]semdb.Reference{},
		renames:      map[key]renameEntry{},
		inlayHints:   map[vfs.FileID][]semdb.InlayHint{},
		assists:      map[key][]semdb.Assist{},
		resolved:     map[key]*semdb.SourceChange{},
		panicOn:      map[key]struct{}{},
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// WithInitialFiles seeds the files LoadWorkspace returns.
func WithInitialFiles(files map[string][]byte) Option {
	return func(d *DB) { d.initialFiles = files }
}

// WithHover programs the hover result at (file, offset).
func WithHover(file vfs.FileID, offset int, h *semdb.Hover) Option {
	return func(d *DB) { d.hovers[key{file, offset}] = h }
}

// WithDefinition programs the goto-definition result at (file, offset).
func WithDefinition(file vfs.FileID, offset int, targets []semdb.NavigationTarget) Option {
	return func(d *DB) { d.definitions[key{file, offset}] = targets }
}

// WithCompletions programs the completion result at (file, offset).
func WithCompletions(file vfs.FileID, offset int, items []semdb.CompletionItem) Option {
	return func(d *DB) { d.completions[key{file, offset}] = items }
}

// WithReferences programs the find-references result at (file, offset).
func WithReferences(file vfs.FileID, offset int, refs []semdb.Reference) Option {
	return func(d *DB) { d.references[key{file, offset}] = refs }
}

// WithRename programs the rename outcome at (file, offset).
func WithRename(file vfs.FileID, offset int, outcome semdb.RenameOutcome, change *semdb.SourceChange, message string) Option {
	return func(d *DB) {
		d.renames[key{file, offset}] = renameEntry{outcome: outcome, change: change, message: message}
	}
}

// WithInlayHints programs the inlay hints for a whole file.
func WithInlayHints(file vfs.FileID, hints []semdb.InlayHint) Option {
	return func(d *DB) { d.inlayHints[file] = hints }
}

// WithAssists programs the assist list at (file, offset).
func WithAssists(file vfs.FileID, offset int, assists []semdb.Assist) Option {
	return func(d *DB) { d.assists[key{file, offset}] = assists }
}

// WithResolvedAssist programs the resolved SourceChange for a given
// (file, offset). The assist id is not part of the key: a test fixture
// only ever resolves one assist per coordinate.
func WithResolvedAssist(file vfs.FileID, offset int, _ string, change *semdb.SourceChange) Option {
	return func(d *DB) { d.resolved[key{file, offset}] = change }
}

// WithWorkspaceSymbols programs the full workspace symbol index.
func WithWorkspaceSymbols(symbols []semdb.WorkspaceSymbol) Option {
	return func(d *DB) { d.symbols = symbols }
}

// WithPanicAt configures (file, offset) to panic when queried by
// GotoDefinition, exercising the Query Layer's panic-containment shim.
func WithPanicAt(file vfs.FileID, offset int) Option {
	return func(d *DB) { d.panicOn[key{file, offset}] = struct{}{} }
}

// LoadWorkspace returns the programmed initial file set.
func (d *DB) LoadWorkspace(_ string, _ semdb.LoadConfig) (map[string][]byte, error) {
	return d.initialFiles, nil
}

// ApplyChange records the change set for later assertion via Applied.
func (d *DB) ApplyChange(cs semdb.ChangeSet) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.applied = append(d.applied, cs)
}

// Applied returns every ChangeSet passed to ApplyChange so far, for tests
// asserting drain-monotonicity.
func (d *DB) Applied() []semdb.ChangeSet {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]semdb.ChangeSet(nil), d.applied...)
}

// PrimeCache is a no-op in the fake; it always succeeds.
func (d *DB) PrimeCache(_, _ int) error { return nil }

func (d *DB) Hover(file vfs.FileID, offset int) (*semdb.Hover, error) {
	return d.hovers[key{file, offset}], nil
}

func (d *DB) GotoDefinition(file vfs.FileID, offset int) ([]semdb.NavigationTarget, error) {
	if _, ok := d.panicOn[key{file, offset}]; ok {
		panic("simulated semantic-db panic at adversarial offset")
	}
	return d.definitions[key{file, offset}], nil
}

func (d *DB) Completions(file vfs.FileID, offset int) ([]semdb.CompletionItem, error) {
	return d.completions[key{file, offset}], nil
}

func (d *DB) FindReferences(file vfs.FileID, offset int) ([]semdb.Reference, error) {
	return d.references[key{file, offset}], nil
}

func (d *DB) PrepareRename(file vfs.FileID, offset int, _ string) (semdb.RenameOutcome, *semdb.SourceChange, string, error) {
	e, ok := d.renames[key{file, offset}]
	if !ok {
		return semdb.RenameNotApplicable, nil, "", nil
	}
	return e.outcome, e.change, e.message, nil
}

func (d *DB) InlayHints(file vfs.FileID) ([]semdb.InlayHint, error) {
	return d.inlayHints[file], nil
}

func (d *DB) Assists(file vfs.FileID, offset int) ([]semdb.Assist, error) {
	return d.assists[key{file, offset}], nil
}

func (d *DB) ResolveAssist(file vfs.FileID, offset int, _ string) (*semdb.SourceChange, error) {
	return d.resolved[key{file, offset}], nil
}

func (d *DB) WorkspaceSymbols(query string) ([]semdb.WorkspaceSymbol, error) {
	var out []semdb.WorkspaceSymbol
	for _, s := range d.symbols {
		if containsFold(s.Name, query) {
			out = append(out, s)
		}
	}
	return out, nil
}

func containsFold(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	hl, nl := []rune(toLower(haystack)), []rune(toLower(needle))
	if len(nl) > len(hl) {
		return false
	}
	for i := 0; i+len(nl) <= len(hl); i++ {
		match := true
		for j := range nl {
			if hl[i+j] != nl[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func toLower(s string) string {
	r := []rune(s)
	for i, c := range r {
		if c >= 'A' && c <= 'Z' {
			r[i] = c + ('a' - 'A')
		}
	}
	return string(r)
}
