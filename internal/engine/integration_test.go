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

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tenxhq/rustbelt/internal/paths"
	"github.com/tenxhq/rustbelt/internal/schema"
	"github.com/tenxhq/rustbelt/internal/semdb"
	"github.com/tenxhq/rustbelt/internal/semdb/fake"
	"github.com/tenxhq/rustbelt/internal/text"
)

// fixtureSource is a small synthetic crate exercising every scenario below:
// a Person struct, a people map, a calculate_average_age function, a
// with_email builder method, and a numbers binding.
const fixtureSource = `use std::collections::HashMap;

#[derive(Clone)]
pub struct Person {
    name: String,
    email: Option<String>,
}

impl Person {
    pub fn new(name: String) -> Self {
        Person { name, email: None }
    }

    pub fn with_email(mut self, email: String) -> Self {
        self.email = Some(email);
        self
    }
}

fn calculate_average_age(people: &HashMap<String, Person>) -> f64 {
    0.0
}

fn main() {
    let mut people: HashMap<String, Person> = HashMap::new();
    people.insert("alice".to_string(), Person::new("Alice".to_string()));

    let doubled: Vec<i32> = vec![1, 2].iter().map(|x| x * 2).collect();
    let numbers: Vec<i32> = vec![1, 2, 3];
}
`

// findOffset locates the Nth (0-based) occurrence of needle within
// fixtureSource and returns its 1-based (line, column) via li.
func findOffset(t *testing.T, li *text.LineIndex, needle string, occurrence int) (int, uint32, uint32) {
	t.Helper()
	idx := -1
	rest := fixtureSource
	base := 0
	for i := 0; i <= occurrence; i++ {
		p := strings.Index(rest, needle)
		require.GreaterOrEqual(t, p, 0, "occurrence %d of %q not found", i, needle)
		idx = base + p
		base = idx + len(needle)
		rest = fixtureSource[base:]
	}
	line, col, err := li.LineCol(idx)
	require.NoError(t, err)
	return idx, line, col
}

func TestEndToEndFixtureScenario(t *testing.T) {
	db := fake.New()
	e, file := newTestEngine(t, db, fixtureSource)
	id, ok := e.vfs.FileID(paths.AbsPath(file))
	require.True(t, ok)

	li := text.NewLineIndex(fixtureSource)

	structOffset, structLine, _ := findOffset(t, li, "struct Person", 0)
	declEnd := strings.Index(fixtureSource, "}\n\nimpl Person") + 1

	peopleUsageOffset, peopleLine, peopleCol := findOffset(t, li, "people: HashMap", 0)
	personUsageOffset, personUsageLine, personUsageCol := findOffset(t, li, "Person>", 0)
	insertOffset, _, _ := findOffset(t, li, "insert(", 0)

	// Hover on `people` reports both the map and element canonical types.
	fake.WithHover(id, peopleUsageOffset, &semdb.Hover{
		Markup:         "let mut people: HashMap<String, Person>",
		CanonicalTypes: []string{"std::collections::HashMap", "crate::Person"},
	})(db)

	hint, err := e.GetTypeHint(schema.CursorCoordinates{FilePath: file, Line: peopleLine, Column: peopleCol})
	require.NoError(t, err)
	require.NotNil(t, hint)
	require.Contains(t, hint.CanonicalTypes, "std::collections::HashMap")
	require.Contains(t, hint.CanonicalTypes, "crate::Person")

	// Goto definition of Person resolves to the struct declaration.
	structKind := "Struct"
	fake.WithDefinition(id, personUsageOffset, []semdb.NavigationTarget{
		{
			FileID: id, StartOffset: structOffset + len("struct "), EndOffset: structOffset + len("struct Person"),
			Name: "Person", Kind: structKind, ContainerName: "fixture_crate",
			FullRangeStart: structOffset, FullRangeEnd: declEnd,
		},
	})(db)

	defs, err := e.GetDefinition(schema.CursorCoordinates{FilePath: file, Line: personUsageLine, Column: personUsageCol})
	require.NoError(t, err)
	require.Len(t, defs, 1)
	require.Equal(t, "Person", defs[0].Name)
	require.NotNil(t, defs[0].Kind)
	require.Equal(t, "Struct", *defs[0].Kind)
	require.True(t, strings.HasPrefix(defs[0].Content, "struct Person"))
	require.Contains(t, defs[0].Module, "fixture_crate")

	// Goto definition of an external `insert` call reports a description and
	// module path even though the declaration itself lives outside this
	// workspace's own files.
	insertDesc := "pub fn insert(&mut self, k: K, v: V) -> Option<V>"
	fake.WithDefinition(id, insertOffset, []semdb.NavigationTarget{
		{
			FileID: id, StartOffset: structOffset, EndOffset: structOffset + len("struct"),
			Name: "insert", Kind: "Function",
			Moniker:     "std::collections::hash::map::impl::HashMap<K, V, S>::insert",
			Description: insertDesc,
		},
	})(db)
	_, insertLine, insertCol := findOffset(t, li, "insert(", 0)
	insertDefs, err := e.GetDefinition(schema.CursorCoordinates{FilePath: file, Line: insertLine, Column: insertCol})
	require.NoError(t, err)
	require.Len(t, insertDefs, 1)
	require.NotNil(t, insertDefs[0].Description)
	require.Equal(t, insertDesc, *insertDefs[0].Description)
	require.Equal(t, "std::collections::hash::map::impl::HashMap<K, V, S>::insert", insertDefs[0].Module)

	// Find references to Person returns the declaration plus at least one
	// use site, with exactly one record marked as the definition.
	fake.WithReferences(id, personUsageOffset, []semdb.Reference{
		{FileID: id, StartOffset: structOffset + len("struct "), EndOffset: structOffset + len("struct Person"), Name: "Person", IsDefinition: true},
		{FileID: id, StartOffset: personUsageOffset, EndOffset: personUsageOffset + len("Person"), Name: "Person", IsDefinition: false},
	})(db)
	refs, err := e.FindReferences(schema.CursorCoordinates{FilePath: file, Line: personUsageLine, Column: personUsageCol})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(refs), 2)
	defCount := 0
	for _, r := range refs {
		require.Equal(t, "Person", r.Name)
		if r.IsDefinition {
			defCount++
			require.Equal(t, structLine, r.Line)
		}
	}
	require.Equal(t, 1, defCount)

	// Rename Person -> Individual produces a plan with at least two edits,
	// every one renaming to "Individual".
	renameChange := &semdb.SourceChange{FileEdits: []semdb.FileEdit{{
		FileID: id,
		Edits: []semdb.TextEdit{
			{StartOffset: structOffset + len("struct "), EndOffset: structOffset + len("struct Person"), NewText: "Individual"},
			{StartOffset: personUsageOffset, EndOffset: personUsageOffset + len("Person"), NewText: "Individual"},
		},
	}}}
	fake.WithRename(id, personUsageOffset, semdb.RenameOK, renameChange, "")(db)
	plan, err := e.RenameSymbol(schema.CursorCoordinates{FilePath: file, Line: personUsageLine, Column: personUsageCol}, "Individual")
	require.NoError(t, err)
	require.NotNil(t, plan)
	require.Len(t, plan.FileChanges, 1)
	require.GreaterOrEqual(t, len(plan.FileChanges[0].Edits), 2)
	for _, edit := range plan.FileChanges[0].Edits {
		require.Equal(t, "Individual", edit.NewText)
	}

	// Inlay hints for the whole file render the expected type annotations;
	// a hint is inserted even after the already-annotated `doubled` binding.
	_, peopleBindLine, peopleBindCol := findOffset(t, li, "let mut people", 0)
	peopleBindCol += uint32(len("let mut people"))
	_, numbersLine, numbersCol := findOffset(t, li, "let numbers", 0)
	numbersCol += uint32(len("let numbers"))
	_, doubledLine, doubledCol := findOffset(t, li, "let doubled", 0)
	doubledCol += uint32(len("let doubled"))

	peopleBindOffset, err := li.Offset(peopleBindLine, peopleBindCol)
	require.NoError(t, err)
	numbersOffset, err := li.Offset(numbersLine, numbersCol)
	require.NoError(t, err)
	doubledHintOffset, err := li.Offset(doubledLine, doubledCol)
	require.NoError(t, err)

	fake.WithInlayHints(id, []semdb.InlayHint{
		{AnchorOffset: peopleBindOffset, Before: false, Label: "HashMap<String, Person>"},
		{AnchorOffset: numbersOffset, Before: false, Label: "Vec<i32>"},
		{AnchorOffset: doubledHintOffset, Before: false, Label: "Vec<i32>"},
	})(db)
	annotated, err := e.ViewInlayHints(file, 0, 0)
	require.NoError(t, err)
	require.NotNil(t, annotated)
	require.Contains(t, annotated.Content, "let mut people: HashMap<String, Person>: HashMap<String, Person>")
	require.Contains(t, annotated.Content, "let numbers: Vec<i32>: Vec<i32>")
	require.Contains(t, annotated.Content, "let doubled: Vec<i32>: Vec<i32>")

	// Sliced to just the `numbers` binding's line.
	slicedAnnotated, err := e.ViewInlayHints(file, numbersLine, numbersLine)
	require.NoError(t, err)
	require.Equal(t, "    let numbers: Vec<i32>: Vec<i32> = vec![1, 2, 3];", slicedAnnotated.Content)

	// An inverted or out-of-bounds range is rejected.
	_, err = e.ViewInlayHints(file, numbersLine, numbersLine-1)
	require.ErrorIs(t, err, ErrRangeOutOfBounds)

	// Invalid-position robustness: a panic from the DB is contained and
	// demoted to a nil result, not an error.
	fake.WithPanicAt(id, 0)(db)
	nilDefs, err := e.GetDefinition(schema.CursorCoordinates{FilePath: file, Line: 1, Column: 1})
	require.NoError(t, err)
	require.Nil(t, nilDefs)

	// Changed-file pickup: an on-disk edit is observed and forwarded to the
	// DB on the very next query's preamble drain, without reloading the
	// workspace.
	updated := strings.Replace(fixtureSource, "fn main() {", "fn main() {\n    // updated", 1)
	require.NoError(t, os.WriteFile(file, []byte(updated), 0o644))

	require.Eventually(t, func() bool {
		_, _ = e.GetTypeHint(schema.CursorCoordinates{FilePath: file, Line: 1, Column: 1})
		applied := db.Applied()
		if len(applied) == 0 {
			return false
		}
		last := applied[len(applied)-1]
		content, ok := last.Changed[id]
		return ok && string(content) == updated
	}, time.Second, 10*time.Millisecond, "a modified file should be drained and applied with its new content")
}
