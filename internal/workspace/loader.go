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

// Package workspace implements the one-shot Workspace Loader: discover the
// manifest, call the semantic DB's project loader, seed the VFS, start the
// file watcher, and prime the DB's derived caches in parallel.
package workspace

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/tenxhq/rustbelt/internal/logging"
	"github.com/tenxhq/rustbelt/internal/manifest"
	"github.com/tenxhq/rustbelt/internal/paths"
	"github.com/tenxhq/rustbelt/internal/semdb"
	"github.com/tenxhq/rustbelt/internal/vfs"
	"github.com/tenxhq/rustbelt/internal/watcher"
)

// ErrWorkspaceAlreadyLoaded is returned when Load is called a second time
// with a different root than the first successful load.
var ErrWorkspaceAlreadyLoaded = errors.New("workspace already loaded with a different root")

// ProgressFunc receives cache-priming progress reports.
type ProgressFunc func(done, total int)

// Loader owns the "load at most once" invariant for one engine instance.
type Loader struct {
	log           logging.Logger
	watchInterval time.Duration
	fs            afero.Fs

	mu     sync.Mutex
	loaded bool
	root   paths.AbsPath
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger overrides the default no-op logger.
func WithLogger(l logging.Logger) Option {
	return func(ld *Loader) { ld.log = l }
}

// WithWatchInterval overrides the default watch poll interval.
func WithWatchInterval(d time.Duration) Option {
	return func(ld *Loader) { ld.watchInterval = d }
}

// WithFS overrides the default OS filesystem used by the file watcher it
// starts.
func WithFS(fs afero.Fs) Option {
	return func(ld *Loader) { ld.fs = fs }
}

// New constructs a Loader.
func New(opts ...Option) *Loader {
	ld := &Loader{log: logging.NewNop(), watchInterval: 100 * time.Millisecond, fs: afero.NewOsFs()}
	for _, o := range opts {
		o(ld)
	}
	return ld
}

// Loaded is the result of a successful Load: the installed VFS, the
// started watcher, and the parsed crate dependency graph.
type Loaded struct {
	VFS     *vfs.VFS
	Watcher *watcher.Watcher
	Graph   *manifest.Graph
}

// Load performs the one-shot workspace initialization: discover the crate
// graph, load the project into the semantic DB, seed the VFS, start the
// file watcher, queue its initial scan, and prime derived caches. Calling it
// a second time with a different root fails ErrWorkspaceAlreadyLoaded.
// Calling it again with the same root succeeds but is not a no-op: it repeats
// the whole load and returns a new Loaded with its own VFS and a second
// running watcher; the first result is not reused.
func (ld *Loader) Load(ctx context.Context, root paths.AbsPath, db semdb.DB, progress ProgressFunc) (*Loaded, error) {
	ld.mu.Lock()
	if ld.loaded && ld.root != root {
		ld.mu.Unlock()
		return nil, ErrWorkspaceAlreadyLoaded
	}
	ld.loaded = true
	ld.root = root
	ld.mu.Unlock()

	graph, err := manifest.Load(root)
	if err != nil {
		return nil, errors.Wrap(err, "loading manifest")
	}

	initialFiles, err := db.LoadWorkspace(root.String(), semdb.DefaultLoadConfig())
	if err != nil {
		return nil, errors.Wrap(err, "loading workspace in semantic db")
	}

	v := vfs.New(vfs.WithLogger(ld.log))
	for path, content := range initialFiles {
		ap, cerr := paths.Canonicalize(path)
		if cerr != nil {
			ld.log.Warn("dropping uncanonicalizable initial file", "path", path, "error", cerr)
			continue
		}
		v.SetFileContents(ap, content)
	}
	v.TakeChanges() // these are the baseline, not a "drain delta" to report

	cfg := watcher.Config{
		Root:       root,
		Extensions: watcher.DefaultExtensions(),
		Exclude:    watcher.DefaultExcludes(root),
	}
	w, err := watcher.New(cfg, ld.watchInterval, ld.log, watcher.WithFS(ld.fs))
	if err != nil {
		return nil, errors.Wrap(err, "starting file watcher")
	}
	// Queue the files already on disk as a Loaded message for the first drain.
	w.InitialScan()

	if err := ld.primeCaches(ctx, db, progress); err != nil {
		return nil, errors.Wrap(err, "priming semantic db caches")
	}

	return &Loaded{VFS: v, Watcher: w, Graph: graph}, nil
}

// primeCaches spawns one worker per physical CPU (approximated by
// runtime.NumCPU, see DESIGN.md), each evaluating a disjoint partition of
// the priming work queue.
func (ld *Loader) primeCaches(ctx context.Context, db semdb.DB, progress ProgressFunc) error {
	workers := runtime.NumCPU()
	if workers < 1 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	var done int
	var mu sync.Mutex

	for i := 0; i < workers; i++ {
		partition := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := db.PrimeCache(partition, workers); err != nil {
				return err
			}
			mu.Lock()
			done++
			n := done
			mu.Unlock()
			if progress != nil {
				progress(n, workers)
			}
			return nil
		})
	}
	return g.Wait()
}
