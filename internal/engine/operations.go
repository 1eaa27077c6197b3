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
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/tenxhq/rustbelt/internal/schema"
	"github.com/tenxhq/rustbelt/internal/semdb"
	"github.com/tenxhq/rustbelt/internal/text"
	"github.com/tenxhq/rustbelt/internal/vfs"
)

// GetTypeHint serves a hover query.
func (e *Engine) GetTypeHint(coord schema.CursorCoordinates) (*schema.TypeHint, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id, li, err := e.preamble(coord.FilePath)
	if err != nil {
		return nil, err
	}
	offset, err := resolve(li, coord)
	if err != nil {
		return nil, err
	}

	h, err := e.db.Hover(id, offset)
	if err != nil {
		return nil, errors.Wrap(ErrDBQueryFailure, err.Error())
	}
	if h == nil {
		return nil, nil
	}

	line, col, err := li.LineCol(offset)
	if err != nil {
		return nil, errors.Wrap(ErrRangeOutOfBounds, err.Error())
	}
	return &schema.TypeHint{
		File:           coord.FilePath,
		Line:           line,
		Column:         col,
		Symbol:         h.Markup,
		CanonicalTypes: h.CanonicalTypes,
	}, nil
}

// GetDefinition serves a goto-definition query. GotoDefinition is the one
// DB call known to be fragile (see internal/semdb/fake's WithPanicAt), so
// it runs behind the panic containment shim: a panic demotes to a nil
// result rather than propagating.
func (e *Engine) GetDefinition(coord schema.CursorCoordinates) (out []schema.DefinitionRecord, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id, li, err := e.preamble(coord.FilePath)
	if err != nil {
		return nil, err
	}
	offset, err := resolve(li, coord)
	if err != nil {
		return nil, err
	}

	targets, derr := e.gotoDefinitionGuarded(id, offset)
	if derr != nil {
		if errors.Is(derr, ErrDBQueryPanic) {
			e.log.Debug("goto-definition panicked, returning empty result", "file", coord.FilePath, "offset", offset)
			return nil, nil
		}
		return nil, errors.Wrap(ErrDBQueryFailure, derr.Error())
	}

	for _, t := range targets {
		rec, rerr := e.translateDefinition(t)
		if rerr != nil {
			e.log.Debug("dropping definition target with unrenderable range", "error", rerr)
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// gotoDefinitionGuarded calls the DB's GotoDefinition behind a recover, so a
// panic inside the (out-of-scope) semantic database cannot bring the engine
// down; it surfaces as ErrDBQueryPanic instead.
func (e *Engine) gotoDefinitionGuarded(id vfs.FileID, offset int) (targets []semdb.NavigationTarget, err error) {
	defer recoverPanic("GotoDefinition", e.log)(&err)
	return e.db.GotoDefinition(id, offset)
}

// translateDefinition maps a DB-native NavigationTarget to the external
// schema, resolving the target's own file (which may differ from the query
// file) and its own LineIndex.
func (e *Engine) translateDefinition(t semdb.NavigationTarget) (schema.DefinitionRecord, error) {
	path, ok := e.pathFor(t.FileID)
	if !ok {
		return schema.DefinitionRecord{}, ErrFileNotInWorkspace
	}
	li, err := e.lineIndexFor(t.FileID)
	if err != nil {
		return schema.DefinitionRecord{}, err
	}
	line, col, endLine, endCol, err := rangeFor(li, t.StartOffset, t.EndOffset)
	if err != nil {
		return schema.DefinitionRecord{}, err
	}
	content, cerr := li.Slice(t.FullRangeStart, t.FullRangeEnd)
	if cerr != nil {
		content, _ = li.Slice(t.StartOffset, t.EndOffset)
	}

	rec := schema.DefinitionRecord{
		File:      path,
		Line:      line,
		Column:    col,
		EndLine:   endLine,
		EndColumn: endCol,
		Name:      t.Name,
		Content:   content,
		Module:    t.Moniker,
	}
	if t.Kind != "" {
		k := t.Kind
		rec.Kind = &k
	}
	if rec.Module == "" {
		rec.Module = t.ContainerName
	}
	if rec.Module == "" {
		rec.Module = "unknown"
	}
	if t.Description != "" {
		d := t.Description
		rec.Description = &d
	}
	return rec, nil
}

// GetCompletions serves a completions query.
func (e *Engine) GetCompletions(coord schema.CursorCoordinates) ([]schema.CompletionRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id, li, err := e.preamble(coord.FilePath)
	if err != nil {
		return nil, err
	}
	offset, err := resolve(li, coord)
	if err != nil {
		return nil, err
	}

	items, derr := e.db.Completions(id, offset)
	if derr != nil {
		return nil, errors.Wrap(ErrDBQueryFailure, derr.Error())
	}

	out := make([]schema.CompletionRecord, 0, len(items))
	for _, it := range items {
		rec := schema.CompletionRecord{
			Name:       it.Name,
			Kind:       it.Kind,
			Deprecated: it.Deprecated,
		}
		if it.RequiredImport != "" {
			v := it.RequiredImport
			rec.RequiredImport = &v
		}
		if it.Signature != "" {
			v := it.Signature
			rec.Signature = &v
		}
		if it.Documentation != "" {
			v := it.Documentation
			rec.Documentation = &v
		}
		out = append(out, rec)
	}
	return out, nil
}

// FindReferences serves a find-references query. A symbol that resolves
// but has no reported use sites (not even its own declaration) is
// ErrNoReferences rather than an empty, ambiguous success.
func (e *Engine) FindReferences(coord schema.CursorCoordinates) ([]schema.ReferenceRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id, li, err := e.preamble(coord.FilePath)
	if err != nil {
		return nil, err
	}
	offset, err := resolve(li, coord)
	if err != nil {
		return nil, err
	}

	refs, derr := e.db.FindReferences(id, offset)
	if derr != nil {
		return nil, errors.Wrap(ErrDBQueryFailure, derr.Error())
	}
	if len(refs) == 0 {
		return nil, ErrNoReferences
	}

	out := make([]schema.ReferenceRecord, 0, len(refs))
	for _, r := range refs {
		path, ok := e.pathFor(r.FileID)
		if !ok {
			continue
		}
		rli, lerr := e.lineIndexFor(r.FileID)
		if lerr != nil {
			continue
		}
		line, col, endLine, endCol, rerr := rangeFor(rli, r.StartOffset, r.EndOffset)
		if rerr != nil {
			continue
		}
		content, _ := rli.LineText(line)
		out = append(out, schema.ReferenceRecord{
			File:         path,
			Line:         line,
			Column:       col,
			EndLine:      endLine,
			EndColumn:    endCol,
			Name:         r.Name,
			Content:      strings.TrimSpace(content),
			IsDefinition: r.IsDefinition,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		if out[i].Line != out[j].Line {
			return out[i].Line < out[j].Line
		}
		return out[i].Column < out[j].Column
	})
	return out, nil
}

// RenameSymbol serves a rename query, returning the edit plan without
// applying it; the caller passes the plan to an edit.Applier.
func (e *Engine) RenameSymbol(coord schema.CursorCoordinates, newName string) (*schema.RenamePlan, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id, li, err := e.preamble(coord.FilePath)
	if err != nil {
		return nil, err
	}
	offset, err := resolve(li, coord)
	if err != nil {
		return nil, err
	}

	outcome, change, message, derr := e.db.PrepareRename(id, offset, newName)
	if derr != nil {
		return nil, errors.Wrap(ErrDBQueryFailure, derr.Error())
	}
	switch outcome {
	case semdb.RenameNotApplicable:
		return nil, nil
	case semdb.RenameFailed:
		if message != "" {
			return nil, errors.Wrap(ErrRenameFailed, message)
		}
		return nil, ErrRenameFailed
	}

	plan, terr := e.translateSourceChange(*change)
	if terr != nil {
		return nil, terr
	}
	return &plan, nil
}

// translateSourceChange maps a DB-native SourceChange to the external
// schema, resolving each file edit against that file's own LineIndex.
func (e *Engine) translateSourceChange(sc semdb.SourceChange) (schema.SourceChange, error) {
	out := schema.SourceChange{IsSnippet: sc.IsSnippet}
	for _, fe := range sc.FileEdits {
		path, ok := e.pathFor(fe.FileID)
		if !ok {
			return schema.SourceChange{}, ErrFileNotInWorkspace
		}
		li, err := e.lineIndexFor(fe.FileID)
		if err != nil {
			return schema.SourceChange{}, err
		}
		fc := schema.FileChange{FilePath: path}
		for _, te := range fe.Edits {
			line, col, endLine, endCol, rerr := rangeFor(li, te.StartOffset, te.EndOffset)
			if rerr != nil {
				return schema.SourceChange{}, rerr
			}
			oldText, _ := li.Slice(te.StartOffset, te.EndOffset)
			fc.Edits = append(fc.Edits, schema.TextEdit{
				Line: line, Column: col, EndLine: endLine, EndColumn: endCol, NewText: te.NewText, OldText: oldText,
			})
		}
		out.FileChanges = append(out.FileChanges, fc)
	}
	return out, nil
}

// ViewInlayHints serves an inlay-hints query: every hint's label is
// rendered inline into the file's source text via the text-edit builder,
// atomically, so the result is the fully annotated file rather than a list
// of positional edits. When startLine and endLine are both zero the whole
// annotated file is returned; otherwise the rendered output is sliced to
// that inclusive 1-based line range, and an out-of-range or inverted range
// is ErrRangeOutOfBounds.
func (e *Engine) ViewInlayHints(filePath string, startLine, endLine uint32) (*schema.AnnotatedFile, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id, li, err := e.preamble(filePath)
	if err != nil {
		return nil, err
	}

	hints, derr := e.db.InlayHints(id)
	if derr != nil {
		return nil, errors.Wrap(ErrDBQueryFailure, derr.Error())
	}

	base, serr := li.Slice(0, li.Len())
	if serr != nil {
		return nil, errors.Wrap(ErrRangeOutOfBounds, serr.Error())
	}
	builder := text.NewEditBuilder(base)
	for _, h := range hints {
		label := ": " + h.Label
		if h.Before {
			label = h.Label + ": "
		}
		builder.Add(h.AnchorOffset, h.AnchorOffset, label)
	}
	rendered, berr := builder.Finalize()
	if berr != nil {
		return nil, errors.Wrap(ErrRangeOutOfBounds, berr.Error())
	}

	if startLine == 0 && endLine == 0 {
		return &schema.AnnotatedFile{Content: rendered}, nil
	}
	if startLine < 1 || endLine < startLine {
		return nil, ErrRangeOutOfBounds
	}

	rli := text.NewLineIndex(rendered)
	if endLine > uint32(rli.LineCount()) {
		return nil, ErrRangeOutOfBounds
	}
	var sliced strings.Builder
	for ln := startLine; ln <= endLine; ln++ {
		lineText, lerr := rli.LineText(ln)
		if lerr != nil {
			return nil, errors.Wrap(ErrRangeOutOfBounds, lerr.Error())
		}
		if ln > startLine {
			sliced.WriteByte('\n')
		}
		sliced.WriteString(lineText)
	}
	return &schema.AnnotatedFile{Content: sliced.String()}, nil
}

// GetAssists serves an assists-list query.
func (e *Engine) GetAssists(coord schema.CursorCoordinates) ([]schema.AssistRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id, li, err := e.preamble(coord.FilePath)
	if err != nil {
		return nil, err
	}
	offset, err := resolve(li, coord)
	if err != nil {
		return nil, err
	}

	assists, derr := e.db.Assists(id, offset)
	if derr != nil {
		return nil, errors.Wrap(ErrDBQueryFailure, derr.Error())
	}

	out := make([]schema.AssistRecord, 0, len(assists))
	for _, a := range assists {
		out = append(out, schema.AssistRecord{ID: a.ID, Kind: a.Kind, Label: a.Label, Target: a.Target})
	}
	return out, nil
}

// ApplyAssist resolves a previously-listed assist id into its concrete
// edit plan, without applying it to disk.
func (e *Engine) ApplyAssist(coord schema.CursorCoordinates, assistID string) (*schema.SourceChange, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id, li, err := e.preamble(coord.FilePath)
	if err != nil {
		return nil, err
	}
	offset, err := resolve(li, coord)
	if err != nil {
		return nil, err
	}

	change, derr := e.db.ResolveAssist(id, offset, assistID)
	if derr != nil {
		return nil, errors.Wrap(ErrDBQueryFailure, derr.Error())
	}
	if change == nil {
		return nil, nil
	}

	sc, terr := e.translateSourceChange(*change)
	if terr != nil {
		return nil, terr
	}
	return &sc, nil
}

// GetWorkspaceSymbols serves a workspace-wide symbol search. It drains
// pending watcher notifications first, like every other operation, but
// needs no single target file to resolve a cursor against.
func (e *Engine) GetWorkspaceSymbols(query string) ([]schema.WorkspaceSymbolRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.drainAndApply()

	symbols, derr := e.db.WorkspaceSymbols(query)
	if derr != nil {
		return nil, errors.Wrap(ErrDBQueryFailure, derr.Error())
	}

	out := make([]schema.WorkspaceSymbolRecord, 0, len(symbols))
	for _, s := range symbols {
		path, ok := e.pathFor(s.FileID)
		if !ok {
			continue
		}
		li, lerr := e.lineIndexFor(s.FileID)
		if lerr != nil {
			continue
		}
		line, col, lcerr := li.LineCol(s.Offset)
		if lcerr != nil {
			continue
		}
		rec := schema.WorkspaceSymbolRecord{Name: s.Name, File: path, Line: line, Column: col}
		if s.Kind != "" {
			k := s.Kind
			rec.Kind = &k
		}
		if s.ContainerName != "" {
			c := s.ContainerName
			rec.ContainerName = &c
		}
		out = append(out, rec)
	}
	return out, nil
}
