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

// Package schema defines the stable external result records returned by the
// Query Layer. All line/column fields are 1-based; end positions are
// exclusive: EndColumn is the column just past the last character of the
// range.
package schema

// CursorCoordinates identifies a position a query is anchored on.
type CursorCoordinates struct {
	FilePath string `json:"file_path"`
	Line     uint32 `json:"line"`
	Column   uint32 `json:"column"`
	// Symbol, when set, narrows resolution within a tolerance box around
	// (Line, Column); see the cursor package.
	Symbol *string `json:"symbol,omitempty"`
}

// TypeHint is the result of a hover query.
type TypeHint struct {
	File   string `json:"file"`
	Line   uint32 `json:"line"`
	Column uint32 `json:"column"`
	// Symbol holds the rendered hover markup text.
	Symbol string `json:"symbol"`
	// CanonicalTypes lists the module paths of any "go to type" actions
	// embedded in the hover payload.
	CanonicalTypes []string `json:"canonical_types"`
}

// DefinitionRecord is one navigation target from a goto-definition query.
type DefinitionRecord struct {
	File        string  `json:"file"`
	Line        uint32  `json:"line"`
	Column      uint32  `json:"column"`
	EndLine     uint32  `json:"end_line"`
	EndColumn   uint32  `json:"end_column"`
	Name        string  `json:"name"`
	Kind        *string `json:"kind,omitempty"`
	Content     string  `json:"content"`
	Module      string  `json:"module"`
	Description *string `json:"description,omitempty"`
}

// ReferenceRecord is one use site (or the declaration) from a
// find-references query.
type ReferenceRecord struct {
	File         string `json:"file"`
	Line         uint32 `json:"line"`
	Column       uint32 `json:"column"`
	EndLine      uint32 `json:"end_line"`
	EndColumn    uint32 `json:"end_column"`
	Name         string `json:"name"`
	Content      string `json:"content"`
	IsDefinition bool   `json:"is_definition"`
}

// CompletionRecord is one suggestion from a completions query.
type CompletionRecord struct {
	Name           string  `json:"name"`
	RequiredImport *string `json:"required_import,omitempty"`
	Kind           string  `json:"kind"`
	Signature      *string `json:"signature,omitempty"`
	Documentation  *string `json:"documentation,omitempty"`
	Deprecated     bool    `json:"deprecated"`
}

// Completion kind tags for completion items. The Query Layer copies each
// item's Kind from the semantic DB unchanged; it does not map or check it
// against these values.
const (
	KindBinding             = "Binding"
	KindBuiltinType         = "BuiltinType"
	KindInferredType        = "InferredType"
	KindKeyword             = "Keyword"
	KindSnippet             = "Snippet"
	KindUnresolvedReference = "UnresolvedReference"
	KindExpression          = "Expression"
)

// TextEdit is a half-open-in-end-position replacement of a single range.
// OldText, when set, is the source text spanning the range at the moment the
// edit was produced; the Edit Applier uses it to confirm the range still
// holds that text before writing, so re-applying an already-applied plan
// safely no-ops instead of corrupting the file.
type TextEdit struct {
	Line      uint32 `json:"line"`
	Column    uint32 `json:"column"`
	EndLine   uint32 `json:"end_line"`
	EndColumn uint32 `json:"end_column"`
	NewText   string `json:"new_text"`
	OldText   string `json:"old_text,omitempty"`
}

// FileChange bundles the edits targeting one file.
type FileChange struct {
	FilePath string     `json:"file_path"`
	Edits    []TextEdit `json:"edits"`
}

// SourceChange is a set of edits across possibly many files, optionally
// snippet-shaped (carrying tab-stop placeholders).
type SourceChange struct {
	FileChanges []FileChange `json:"file_changes"`
	IsSnippet   bool         `json:"is_snippet,omitempty"`
}

// RenamePlan is the SourceChange produced by a rename query.
type RenamePlan = SourceChange

// AssistRecord describes one available code action.
type AssistRecord struct {
	ID           string        `json:"id"`
	Kind         string        `json:"kind"`
	Label        string        `json:"label"`
	Target       string        `json:"target"`
	SourceChange *SourceChange `json:"source_change,omitempty"`
}

// WorkspaceSymbolRecord is one hit from a workspace symbol search.
type WorkspaceSymbolRecord struct {
	Name          string  `json:"name"`
	Kind          *string `json:"kind,omitempty"`
	File          string  `json:"file"`
	Line          uint32  `json:"line"`
	Column        uint32  `json:"column"`
	ContainerName *string `json:"container_name,omitempty"`
}

// InlayHintPosition flags whether a hint renders before or after its
// anchor range.
type InlayHintPosition int

const (
	// InlayHintAfter inserts ": <label>" at the range end.
	InlayHintAfter InlayHintPosition = iota
	// InlayHintBefore inserts "<label>: " at the range start.
	InlayHintBefore
)

// AnnotatedFile is the rendered result of an inlay-hints query: the file's
// source text with every hint's label inserted inline, optionally sliced to
// a requested line range.
type AnnotatedFile struct {
	Content string `json:"content"`
}
