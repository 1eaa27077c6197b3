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

// Package text implements the UTF-8-safe coordinate machinery shared by the
// cursor resolver and the edit applier: a per-file LineIndex mapping
// 1-based (line, column) to byte offsets, and an EditBuilder that combines
// multiple text edits into one atomic, non-overlapping replacement.
package text

import (
	"github.com/pkg/errors"
)

// ErrInvalidCoordinates is returned when line or column is less than 1.
var ErrInvalidCoordinates = errors.New("line and column must be >= 1")

// ErrOutOfBounds is returned when a coordinate lies beyond the file.
var ErrOutOfBounds = errors.New("coordinate is outside the file")

// LineIndex maps between 1-based (line, column) coordinates and absolute
// byte offsets within one file's content. Columns are byte offsets within
// the line, not UTF-16 code units or grapheme clusters. It is rebuilt
// whenever the file content changes.
type LineIndex struct {
	content   string
	lineStart []int // byte offset of the start of each line, 0-indexed
}

// NewLineIndex builds a LineIndex over content.
func NewLineIndex(content string) *LineIndex {
	starts := []int{0}
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{content: content, lineStart: starts}
}

// LineCount returns the number of lines in the file.
func (li *LineIndex) LineCount() int { return len(li.lineStart) }

// Len returns the byte length of the underlying content.
func (li *LineIndex) Len() int { return len(li.content) }

// Offset converts a 1-based (line, column) into an absolute byte offset.
func (li *LineIndex) Offset(line, column uint32) (int, error) {
	if line < 1 || column < 1 {
		return 0, ErrInvalidCoordinates
	}
	idx := int(line) - 1
	if idx >= len(li.lineStart) {
		return 0, ErrOutOfBounds
	}
	start := li.lineStart[idx]
	end := li.lineEnd(idx)
	offset := start + int(column) - 1
	if offset < start || offset > end {
		return 0, ErrOutOfBounds
	}
	return offset, nil
}

// LineCol converts an absolute byte offset into a 1-based (line, column).
func (li *LineIndex) LineCol(offset int) (line, column uint32, err error) {
	if offset < 0 || offset > len(li.content) {
		return 0, 0, ErrOutOfBounds
	}
	// binary search for the last lineStart <= offset
	lo, hi := 0, len(li.lineStart)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if li.lineStart[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return uint32(lo + 1), uint32(offset-li.lineStart[lo]) + 1, nil
}

// lineEnd returns the byte offset one past the last character of line idx,
// excluding its trailing newline.
func (li *LineIndex) lineEnd(idx int) int {
	var end int
	if idx+1 < len(li.lineStart) {
		end = li.lineStart[idx+1] - 1 // exclude the '\n'
	} else {
		end = len(li.content)
	}
	if end > li.lineStart[idx] && li.content[end-1] == '\r' {
		// tolerate CRLF line endings by not counting the trailing \r as a
		// valid column target boundary beyond the line itself.
		return end - 1
	}
	return end
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// LineText returns the content of the given 1-based line, without its
// trailing newline.
func (li *LineIndex) LineText(line uint32) (string, error) {
	idx := int(line) - 1
	if idx < 0 || idx >= len(li.lineStart) {
		return "", ErrOutOfBounds
	}
	return li.content[li.lineStart[idx]:li.lineEnd(idx)], nil
}

// Slice returns the substring of content between two byte offsets.
func (li *LineIndex) Slice(start, end int) (string, error) {
	if start < 0 || end > len(li.content) || start > end {
		return "", ErrOutOfBounds
	}
	return li.content[start:end], nil
}
