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

package text

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// ErrOverlappingEdits is returned when two registered ranges overlap.
var ErrOverlappingEdits = errors.New("edit ranges overlap")

// ByteRange is a half-open [Start, End) byte range.
type ByteRange struct {
	Start, End int
}

// EditBuilder accumulates (byte range, replacement text) pairs against a
// single file's content and finalizes them into one atomic, non-overlapping
// multi-range replacement. Insertions at the same anchor (Start == End for
// both) are kept in the order they were registered, matching the order the
// caller supplied them -- this is the deterministic tie-break the inlay-hint
// insertion path relies on.
type EditBuilder struct {
	base  string
	edits []builderEdit
}

type builderEdit struct {
	rng ByteRange
	new string
	seq int
}

// NewEditBuilder creates a builder over the given base content.
func NewEditBuilder(base string) *EditBuilder {
	return &EditBuilder{base: base}
}

// Add registers a replacement of [start, end) with newText.
func (b *EditBuilder) Add(start, end int, newText string) {
	b.edits = append(b.edits, builderEdit{rng: ByteRange{Start: start, End: end}, new: newText, seq: len(b.edits)})
}

// Finalize sorts the registered edits, rejects any that overlap (distinct
// from sharing the same zero-width anchor), and returns the fully replaced
// content.
func (b *EditBuilder) Finalize() (string, error) {
	sorted := make([]builderEdit, len(b.edits))
	copy(sorted, b.edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].rng.Start != sorted[j].rng.Start {
			return sorted[i].rng.Start < sorted[j].rng.Start
		}
		if sorted[i].rng.End != sorted[j].rng.End {
			return sorted[i].rng.End < sorted[j].rng.End
		}
		return sorted[i].seq < sorted[j].seq
	})

	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if prev.rng.End > cur.rng.Start {
			return "", errors.Wrapf(ErrOverlappingEdits, "[%d,%d) overlaps [%d,%d)", prev.rng.Start, prev.rng.End, cur.rng.Start, cur.rng.End)
		}
	}

	var out strings.Builder
	cursor := 0
	for _, e := range sorted {
		if e.rng.Start < cursor || e.rng.End > len(b.base) {
			return "", errors.Wrap(ErrOutOfBounds, "edit range outside base content")
		}
		out.WriteString(b.base[cursor:e.rng.Start])
		out.WriteString(e.new)
		cursor = e.rng.End
	}
	out.WriteString(b.base[cursor:])
	return out.String(), nil
}
