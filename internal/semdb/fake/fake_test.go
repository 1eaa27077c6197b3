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

package fake

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tenxhq/rustbelt/internal/semdb"
	"github.com/tenxhq/rustbelt/internal/vfs"
)

func TestLoadWorkspaceReturnsProgrammedFiles(t *testing.T) {
	files := map[string][]byte{"src/lib.rs": []byte("fn main() {}\n")}
	d := New(WithInitialFiles(files))

	got, err := d.LoadWorkspace("/ws", semdb.DefaultLoadConfig())
	require.NoError(t, err)
	require.Equal(t, files, got)
}

func TestHoverReturnsProgrammedResult(t *testing.T) {
	h := &semdb.Hover{Markup: "fn main()", CanonicalTypes: []string{"()"}}
	d := New(WithHover(1, 5, h))

	got, err := d.Hover(1, 5)
	require.NoError(t, err)
	require.Equal(t, h, got)

	got, err = d.Hover(1, 6)
	require.NoError(t, err)
	require.Nil(t, got, "unprogrammed coordinates return nil, not an error")
}

func TestGotoDefinitionReturnsProgrammedTargets(t *testing.T) {
	targets := []semdb.NavigationTarget{{FileID: 1, StartOffset: 0, EndOffset: 2, Name: "x"}}
	d := New(WithDefinition(1, 10, targets))

	got, err := d.GotoDefinition(1, 10)
	require.NoError(t, err)
	require.Equal(t, targets, got)
}

func TestGotoDefinitionPanicsAtProgrammedOffset(t *testing.T) {
	d := New(WithPanicAt(1, 99))
	require.Panics(t, func() {
		_, _ = d.GotoDefinition(1, 99)
	})
}

func TestCompletionsReturnsProgrammedItems(t *testing.T) {
	items := []semdb.CompletionItem{{Name: "with_email", Kind: "Method"}}
	d := New(WithCompletions(1, 20, items))

	got, err := d.Completions(1, 20)
	require.NoError(t, err)
	require.Equal(t, items, got)
}

func TestFindReferencesReturnsProgrammedRefs(t *testing.T) {
	refs := []semdb.Reference{{FileID: 1, StartOffset: 0, EndOffset: 4, IsDefinition: true}}
	d := New(WithReferences(1, 0, refs))

	got, err := d.FindReferences(1, 0)
	require.NoError(t, err)
	require.Equal(t, refs, got)
}

func TestPrepareRenameUnprogrammedIsNotApplicable(t *testing.T) {
	d := New()
	outcome, change, msg, err := d.PrepareRename(1, 0, "new_name")
	require.NoError(t, err)
	require.Equal(t, semdb.RenameNotApplicable, outcome)
	require.Nil(t, change)
	require.Empty(t, msg)
}

func TestPrepareRenameProgrammedFailure(t *testing.T) {
	d := New(WithRename(1, 0, semdb.RenameFailed, nil, "name collides with an existing symbol"))

	outcome, change, msg, err := d.PrepareRename(1, 0, "new_name")
	require.NoError(t, err)
	require.Equal(t, semdb.RenameFailed, outcome)
	require.Nil(t, change)
	require.Equal(t, "name collides with an existing symbol", msg)
}

func TestPrepareRenameProgrammedSuccess(t *testing.T) {
	sc := &semdb.SourceChange{FileEdits: []semdb.FileEdit{{FileID: 1, Edits: []semdb.TextEdit{{StartOffset: 0, EndOffset: 1, NewText: "y"}}}}}
	d := New(WithRename(1, 0, semdb.RenameOK, sc, ""))

	outcome, change, msg, err := d.PrepareRename(1, 0, "y")
	require.NoError(t, err)
	require.Equal(t, semdb.RenameOK, outcome)
	require.Equal(t, sc, change)
	require.Empty(t, msg)
}

func TestInlayHintsReturnsProgrammedHints(t *testing.T) {
	hints := []semdb.InlayHint{{AnchorOffset: 3, Before: false, Label: ": i32"}}
	d := New(WithInlayHints(1, hints))

	got, err := d.InlayHints(1)
	require.NoError(t, err)
	require.Equal(t, hints, got)
}

func TestAssistsAndResolveAssist(t *testing.T) {
	assists := []semdb.Assist{{ID: "extract_fn", Kind: "refactor", Label: "Extract function"}}
	sc := &semdb.SourceChange{FileEdits: []semdb.FileEdit{{FileID: 1}}}
	d := New(WithAssists(1, 7, assists), WithResolvedAssist(1, 7, "extract_fn", sc))

	got, err := d.Assists(1, 7)
	require.NoError(t, err)
	require.Equal(t, assists, got)

	resolved, err := d.ResolveAssist(1, 7, "extract_fn")
	require.NoError(t, err)
	require.Equal(t, sc, resolved)
}

func TestWorkspaceSymbolsFiltersCaseInsensitively(t *testing.T) {
	symbols := []semdb.WorkspaceSymbol{
		{Name: "calculate_average_age", Kind: "Function", FileID: 1, Offset: 0},
		{Name: "Person", Kind: "Struct", FileID: 2, Offset: 0},
	}
	d := New(WithWorkspaceSymbols(symbols))

	got, err := d.WorkspaceSymbols("AVERAGE")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "calculate_average_age", got[0].Name)

	got, err = d.WorkspaceSymbols("")
	require.NoError(t, err)
	require.Len(t, got, 2, "empty query matches every symbol")

	got, err = d.WorkspaceSymbols("nonexistent")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestApplyChangeRecordsChangeSetsForAssertion(t *testing.T) {
	d := New()
	require.Empty(t, d.Applied())

	cs1 := semdb.ChangeSet{Changed: map[vfs.FileID][]byte{1: []byte("a")}}
	cs2 := semdb.ChangeSet{Deleted: []vfs.FileID{1}}
	d.ApplyChange(cs1)
	d.ApplyChange(cs2)

	got := d.Applied()
	require.Equal(t, []semdb.ChangeSet{cs1, cs2}, got)
}

func TestPrimeCacheAlwaysSucceeds(t *testing.T) {
	d := New()
	require.NoError(t, d.PrimeCache(0, 4))
	require.NoError(t, d.PrimeCache(3, 4))
}
