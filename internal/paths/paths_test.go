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

package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiscoverProjectRootWalksUpToManifest(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ManifestFile), []byte("[package]\nname=\"x\"\n"), 0o644))

	nested := filepath.Join(root, "src", "bin")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	got, err := DiscoverProjectRoot(filepath.Join(nested, "main.rs"))
	require.NoError(t, err)

	wantRoot, err := Canonicalize(root)
	require.NoError(t, err)
	require.Equal(t, wantRoot, got, "discovery must stop at the nearest ancestor Cargo.toml")
}

func TestDiscoverProjectRootNoManifest(t *testing.T) {
	root := t.TempDir()
	_, err := DiscoverProjectRoot(root)
	require.ErrorIs(t, err, ErrNoManifest)
}

func TestCanonicalizeNonexistentPath(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "not-yet-created.rs")

	got, err := Canonicalize(target)
	require.NoError(t, err, "a not-yet-existing path is still a valid absolute path")
	require.Equal(t, filepath.Clean(target), got.String())
}

func TestAbsPathJoin(t *testing.T) {
	p := AbsPath("/workspace/crate")
	require.Equal(t, AbsPath("/workspace/crate/src/lib.rs"), p.Join("src", "lib.rs"))
}
