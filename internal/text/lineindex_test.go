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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLineIndexOffset(t *testing.T) {
	content := "fn main() {\n    let x = 1;\n}\n"
	li := NewLineIndex(content)

	cases := []struct {
		reason       string
		line, column uint32
		want         int
		wantErr      error
	}{
		{reason: "start of file is (1,1)", line: 1, column: 1, want: 0},
		{reason: "mid first line", line: 1, column: 4, want: 3},
		{reason: "start of second line", line: 2, column: 1, want: 12},
		{reason: "one past last real column is the newline slot", line: 1, column: 12, want: 11},
		{reason: "zero line is invalid", line: 0, column: 1, wantErr: ErrInvalidCoordinates},
		{reason: "zero column is invalid", line: 1, column: 0, wantErr: ErrInvalidCoordinates},
		{reason: "line beyond file is out of bounds", line: 100, column: 1, wantErr: ErrOutOfBounds},
		{reason: "column beyond line is out of bounds", line: 1, column: 500, wantErr: ErrOutOfBounds},
	}

	for _, tc := range cases {
		t.Run(tc.reason, func(t *testing.T) {
			got, err := li.Offset(tc.line, tc.column)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr, tc.reason)
				return
			}
			require.NoError(t, err, tc.reason)
			require.Equal(t, tc.want, got, tc.reason)
		})
	}
}

func TestLineIndexLineColRoundTrip(t *testing.T) {
	content := "one\ntwo\nthree\n"
	li := NewLineIndex(content)

	for line := uint32(1); line <= uint32(li.LineCount()); line++ {
		text, err := li.LineText(line)
		require.NoError(t, err)
		for col := uint32(1); col <= uint32(len(text))+1; col++ {
			offset, err := li.Offset(line, col)
			require.NoError(t, err, "line %d col %d", line, col)
			gotLine, gotCol, err := li.LineCol(offset)
			require.NoError(t, err)
			require.Equal(t, line, gotLine, "round trip line")
			require.Equal(t, col, gotCol, "round trip column")
		}
	}
}

func TestLineIndexLineText(t *testing.T) {
	li := NewLineIndex("abc\ndef\n")
	text, err := li.LineText(2)
	require.NoError(t, err)
	require.Equal(t, "def", text)

	_, err = li.LineText(10)
	require.ErrorIs(t, err, ErrOutOfBounds)
}

func TestLineIndexSlice(t *testing.T) {
	li := NewLineIndex("hello world")
	s, err := li.Slice(0, 5)
	require.NoError(t, err)
	require.Equal(t, "hello", s)

	_, err = li.Slice(5, 2)
	require.ErrorIs(t, err, ErrOutOfBounds)

	_, err = li.Slice(0, 100)
	require.ErrorIs(t, err, ErrOutOfBounds)
}
