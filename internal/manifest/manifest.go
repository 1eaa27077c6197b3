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

// Package manifest discovers and parses a Cargo-style package manifest
// into a crate dependency graph.
package manifest

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"

	"github.com/tenxhq/rustbelt/internal/paths"
)

// ErrInvalidManifest is returned when a Cargo.toml cannot be parsed.
var ErrInvalidManifest = errors.New("invalid manifest")

// rawManifest mirrors the subset of Cargo.toml this engine cares about.
type rawManifest struct {
	Package struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
	} `toml:"package"`
	Dependencies map[string]rawDependency `toml:"dependencies"`
	Workspace    struct {
		Members []string `toml:"members"`
	} `toml:"workspace"`
}

// rawDependency supports both the short `dep = "1.0"` form and the
// long `dep = { path = "...", version = "..." }` form.
type rawDependency struct {
	Version string
	Path    string
}

func (d *rawDependency) UnmarshalTOML(v interface{}) error {
	switch t := v.(type) {
	case string:
		d.Version = t
	case map[string]interface{}:
		if p, ok := t["path"].(string); ok {
			d.Path = p
		}
		if ver, ok := t["version"].(string); ok {
			d.Version = ver
		}
	}
	return nil
}

// CrateID is a stable, small integer identifying a crate within a Graph's
// arena. Crates reference each other by CrateID, not by pointer, so the
// dependency graph (which can contain cycles between path-dependencies in
// a workspace) never needs reference-cycle bookkeeping.
type CrateID int

// Crate is one node in the dependency graph.
type Crate struct {
	ID           CrateID
	Name         string
	Version      string
	ManifestPath paths.AbsPath
	Root         paths.AbsPath
	// Dependencies are CrateIDs this crate depends on, for dependencies
	// resolved to a sibling path within the workspace. Dependencies only
	// declared by version (resolved externally, e.g. from a registry) are
	// recorded in ExternalDependencies instead.
	Dependencies         []CrateID
	ExternalDependencies []ExternalDependency
}

// ExternalDependency is a dependency with no local path member, i.e. one
// the semantic DB's own loader is responsible for resolving.
type ExternalDependency struct {
	Name       string
	Constraint *semver.Constraints
}

// Graph is the crate dependency graph rooted at one workspace.
type Graph struct {
	Root   paths.AbsPath
	Crates []Crate
}

// ByName returns the crate with the given name, if present.
func (g *Graph) ByName(name string) (Crate, bool) {
	for _, c := range g.Crates {
		if c.Name == name {
			return c, true
		}
	}
	return Crate{}, false
}

// Load discovers the manifest at root (which must already contain
// Cargo.toml; use paths.DiscoverProjectRoot to find it) and parses it,
// along with every `[workspace] members` entry, into a Graph.
func Load(root paths.AbsPath) (*Graph, error) {
	g := &Graph{Root: root}
	rootManifest := root.Join(paths.ManifestFile)

	rootCrate, rootRaw, err := loadCrate(root, rootManifest, 0)
	if err != nil {
		return nil, err
	}
	g.Crates = append(g.Crates, rootCrate)

	memberPaths := rootRaw.Workspace.Members
	for _, m := range memberPaths {
		memberRoot, jerr := paths.Canonicalize(filepath.Join(root.String(), m))
		if jerr != nil {
			return nil, errors.Wrapf(ErrInvalidManifest, "workspace member %q: %v", m, jerr)
		}
		crate, _, lerr := loadCrate(memberRoot, memberRoot.Join(paths.ManifestFile), CrateID(len(g.Crates)))
		if lerr != nil {
			return nil, lerr
		}
		g.Crates = append(g.Crates, crate)
	}

	resolveDependencyEdges(g)
	return g, nil
}

func loadCrate(root, manifestPath paths.AbsPath, id CrateID) (Crate, rawManifest, error) {
	var raw rawManifest
	b, err := os.ReadFile(manifestPath.String())
	if err != nil {
		return Crate{}, raw, errors.Wrapf(ErrInvalidManifest, "reading %s: %v", manifestPath, err)
	}
	if _, err := toml.Decode(string(b), &raw); err != nil {
		return Crate{}, raw, errors.Wrapf(ErrInvalidManifest, "parsing %s: %v", manifestPath, err)
	}

	c := Crate{
		ID:           id,
		Name:         raw.Package.Name,
		Version:      raw.Package.Version,
		ManifestPath: manifestPath,
		Root:         root,
	}
	for name, dep := range raw.Dependencies {
		if dep.Path != "" {
			continue // resolved in resolveDependencyEdges
		}
		ext := ExternalDependency{Name: name}
		if dep.Version != "" {
			if c, cerr := semver.NewConstraint(dep.Version); cerr == nil {
				ext.Constraint = c
			}
		}
		c.ExternalDependencies = append(c.ExternalDependencies, ext)
	}
	return c, raw, nil
}

// resolveDependencyEdges re-parses each crate's raw manifest to wire up
// path-dependency edges now that every crate in the workspace has been
// assigned a CrateID. A second, cheap parse pass keeps loadCrate free of a
// forward reference to crates not yet loaded.
func resolveDependencyEdges(g *Graph) {
	for i := range g.Crates {
		c := &g.Crates[i]
		b, err := os.ReadFile(c.ManifestPath.String())
		if err != nil {
			continue
		}
		var raw rawManifest
		if _, err := toml.Decode(string(b), &raw); err != nil {
			continue
		}
		for _, dep := range raw.Dependencies {
			if dep.Path == "" {
				continue
			}
			depRoot, err := paths.Canonicalize(filepath.Join(c.Root.String(), dep.Path))
			if err != nil {
				continue
			}
			for _, other := range g.Crates {
				if other.Root == depRoot {
					c.Dependencies = append(c.Dependencies, other.ID)
					break
				}
			}
		}
	}
}
