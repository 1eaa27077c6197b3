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

// Package cursor resolves caller-supplied (file, line, column, symbol?)
// coordinates into a validated byte offset, optionally refining the
// coordinates within a tolerance box when a symbol name is supplied.
package cursor

import (
	"strings"

	"github.com/tenxhq/rustbelt/internal/text"
)

// Tolerance is the ±T lines / ±T columns window used by symbol-assisted
// refinement.
const Tolerance = 5

// Refine implements the symbol-assisted coordinate refinement algorithm.
// When symbol is empty, the original (line, column) is returned unchanged.
func Refine(li *text.LineIndex, line, column uint32, symbol string) (uint32, uint32) {
	if symbol == "" {
		return line, column
	}

	for _, cand := range candidateLines(line, li.LineCount()) {
		lineText, err := li.LineText(cand)
		if err != nil {
			continue
		}
		cols := findStartColumns(lineText, symbol)
		if len(cols) == 0 {
			continue
		}
		if cand == line {
			best := cols[0]
			bestDist := absDiff(best, column)
			for _, c := range cols[1:] {
				if d := absDiff(c, column); d < bestDist {
					best, bestDist = c, d
				}
			}
			if bestDist <= Tolerance {
				return cand, best
			}
			return cand, cols[0]
		}
		return cand, cols[0]
	}
	return line, column
}

// candidateLines enumerates L, L+1, L-1, L+2, L-2, ..., L+T, L-T, bounded
// to [1, lineCount], in that priority order.
func candidateLines(l uint32, lineCount int) []uint32 {
	var out []uint32
	out = append(out, l)
	for d := uint32(1); d <= Tolerance; d++ {
		if l+d <= uint32(lineCount) {
			out = append(out, l+d)
		}
		if l > d {
			out = append(out, l-d)
		}
	}
	return out
}

// findStartColumns returns every 1-based byte-offset column at which
// symbol occurs in lineText, as a plain substring match.
func findStartColumns(lineText, symbol string) []uint32 {
	var out []uint32
	offset := 0
	for {
		idx := strings.Index(lineText[offset:], symbol)
		if idx < 0 {
			break
		}
		out = append(out, uint32(offset+idx)+1)
		offset += idx + 1
		if offset >= len(lineText) {
			break
		}
	}
	return out
}

func absDiff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}

// ResolveOffset validates (line, column) and converts to a byte offset via
// li, after optional symbol-assisted refinement.
func ResolveOffset(li *text.LineIndex, line, column uint32, symbol string) (offset int, resolvedLine, resolvedColumn uint32, err error) {
	if line == 0 || column == 0 {
		return 0, 0, 0, text.ErrInvalidCoordinates
	}
	rl, rc := Refine(li, line, column, symbol)
	off, err := li.Offset(rl, rc)
	if err != nil {
		return 0, 0, 0, err
	}
	return off, rl, rc, nil
}
