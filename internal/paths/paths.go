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

// Package paths canonicalizes filesystem paths and discovers a workspace
// root by walking up from a starting point looking for the manifest file.
package paths

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// ManifestFile is the fixed manifest file name a project root is
// identified by.
const ManifestFile = "Cargo.toml"

var (
	// ErrPathInvalid is returned when a path cannot be resolved.
	ErrPathInvalid = errors.New("path could not be resolved")
	// ErrNoManifest is returned when no ancestor directory contains the
	// manifest file.
	ErrNoManifest = errors.New("no Cargo.toml found in any ancestor directory")
)

// AbsPath is a canonicalized absolute filesystem path. Equality between two
// AbsPath values is byte-exact string equality.
type AbsPath string

// String returns the path as a string.
func (p AbsPath) String() string { return string(p) }

// Join joins additional elements onto p.
func (p AbsPath) Join(elem ...string) AbsPath {
	return AbsPath(filepath.Join(append([]string{string(p)}, elem...)...))
}

// Canonicalize resolves p to an absolute, symlink-free path.
func Canonicalize(p string) (AbsPath, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", errors.Wrap(ErrPathInvalid, err.Error())
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		// The path may legitimately not exist yet (e.g. a file about to be
		// created); fall back to the absolute, non-symlink-resolved form.
		if os.IsNotExist(err) {
			return AbsPath(filepath.Clean(abs)), nil
		}
		return "", errors.Wrap(ErrPathInvalid, err.Error())
	}
	return AbsPath(filepath.Clean(resolved)), nil
}

// DiscoverProjectRoot walks ancestor directories of p (or the current
// working directory joined with p, if p is relative) looking for
// ManifestFile. It returns the first ancestor containing it.
func DiscoverProjectRoot(p string) (AbsPath, error) {
	start, err := Canonicalize(p)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(start.String())
	dir := start.String()
	if err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}

	for {
		candidate := filepath.Join(dir, ManifestFile)
		if fi, err := os.Stat(candidate); err == nil && !fi.IsDir() {
			return AbsPath(dir), nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoManifest
		}
		dir = parent
	}
}
