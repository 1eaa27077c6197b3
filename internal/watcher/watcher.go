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

// Package watcher observes a workspace directory recursively, filters
// events by extension, coalesces bursts, and exposes a synchronous drain
// that applies accumulated notifications to a VFS.
package watcher

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	rwatcher "github.com/radovskyb/watcher"
	"github.com/spf13/afero"

	"github.com/tenxhq/rustbelt/internal/logging"
	"github.com/tenxhq/rustbelt/internal/paths"
	"github.com/tenxhq/rustbelt/internal/vfs"
)

// Config describes what a Watcher watches.
type Config struct {
	Root       paths.AbsPath
	Include    []paths.AbsPath
	Exclude    []paths.AbsPath
	Extensions map[string]struct{}
}

// DefaultExtensions is the fixed set of watched source and manifest
// extensions.
func DefaultExtensions() map[string]struct{} {
	return map[string]struct{}{".rs": {}, ".toml": {}}
}

// DefaultExcludes always excludes the build-output directory and
// version-control metadata directory beneath root.
func DefaultExcludes(root paths.AbsPath) []paths.AbsPath {
	return []paths.AbsPath{root.Join("target"), root.Join(".git")}
}

// MessageKind distinguishes the three message shapes the watcher emits.
type MessageKind int

const (
	// Progress reports initial-scan progress.
	Progress MessageKind = iota
	// Loaded reports files observed during the initial scan.
	Loaded
	// Changed reports files observed after the initial scan.
	Changed
)

// FileContent pairs a path with its bytes at the time of the event (nil for
// a deletion).
type FileContent struct {
	Path    paths.AbsPath
	Content []byte
}

// Message is one item delivered on the watcher's channel.
type Message struct {
	Kind  MessageKind
	Done  int
	Total int
	Files []FileContent
}

// Watcher runs a background goroutine that watches Config.Root recursively
// and delivers Messages on a bounded channel.
type Watcher struct {
	cfg Config
	log logging.Logger
	fs  afero.Fs

	inner    *rwatcher.Watcher
	messages chan Message
	stop     chan struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithFS overrides the default OS filesystem used for the initial scan and
// changed-file reads. Event detection itself still walks the real
// filesystem (radovskyb/watcher talks to the OS directly), but every file
// read the Watcher performs afterward goes through fs, matching the edit
// Applier's pattern.
func WithFS(fs afero.Fs) Option {
	return func(w *Watcher) { w.fs = fs }
}

// New constructs and starts a Watcher for cfg.
func New(cfg Config, interval time.Duration, log logging.Logger, opts ...Option) (*Watcher, error) {
	if log == nil {
		log = logging.NewNop()
	}
	if cfg.Extensions == nil {
		cfg.Extensions = DefaultExtensions()
	}

	w := &Watcher{
		cfg:      cfg,
		log:      log,
		fs:       afero.NewOsFs(),
		inner:    rwatcher.New(),
		messages: make(chan Message, 64),
		stop:     make(chan struct{}),
	}
	for _, o := range opts {
		o(w)
	}
	w.inner.SetMaxEvents(1)

	if err := w.inner.AddRecursive(cfg.Root.String()); err != nil {
		return nil, err
	}
	for _, ex := range cfg.Exclude {
		w.inner.Ignore(ex.String()) //nolint:errcheck
	}

	go w.loop()
	go func() {
		if err := w.inner.Start(interval); err != nil {
			w.log.Warn("watcher start failed", "error", err)
		}
	}()

	return w, nil
}

// InitialScan synthesizes a Loaded message for every currently-present
// matching file beneath the root, mirroring the one-shot scan rust-analyzer's
// vfs-notify performs before it starts delivering incremental Changed
// messages.
func (w *Watcher) InitialScan() {
	var files []FileContent
	_ = afero.Walk(w.fs, w.cfg.Root.String(), func(p string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil //nolint:nilerr
		}
		if w.excluded(p) || !w.matchesExtension(p) {
			return nil
		}
		ap, cerr := paths.Canonicalize(p)
		if cerr != nil {
			w.log.Trace("dropping event for uncanonicalizable path", "path", p, "error", cerr)
			return nil
		}
		content, rerr := afero.ReadFile(w.fs, p)
		if rerr != nil {
			return nil //nolint:nilerr
		}
		files = append(files, FileContent{Path: ap, Content: content})
		return nil
	})
	w.messages <- Message{Kind: Loaded, Done: len(files), Total: len(files), Files: files}
}

func (w *Watcher) matchesExtension(p string) bool {
	_, ok := w.cfg.Extensions[strings.ToLower(filepath.Ext(p))]
	return ok
}

func (w *Watcher) excluded(p string) bool {
	for _, ex := range w.cfg.Exclude {
		if strings.HasPrefix(p, ex.String()) {
			return true
		}
	}
	return false
}

func (w *Watcher) loop() {
	for {
		select {
		case ev := <-w.inner.Event:
			if w.excluded(ev.Path) || !w.matchesExtension(ev.Path) {
				continue
			}
			ap, err := paths.Canonicalize(ev.Path)
			if err != nil {
				w.log.Trace("dropping event for uncanonicalizable path", "path", ev.Path, "error", err)
				continue
			}
			var content []byte
			if ev.Op != rwatcher.Remove {
				b, rerr := afero.ReadFile(w.fs, ev.Path)
				if rerr != nil {
					w.log.Trace("dropping event for unreadable path", "path", ev.Path, "error", rerr)
					continue
				}
				content = b
			}
			select {
			case w.messages <- Message{Kind: Changed, Files: []FileContent{{Path: ap, Content: content}}}:
			default:
				w.log.Warn("watcher message channel full, dropping event", "path", ev.Path)
			}
		case err := <-w.inner.Error:
			w.log.Warn("watcher error", "error", err)
		case <-w.inner.Closed:
			return
		case <-w.stop:
			w.inner.Close()
			return
		}
	}
}

// Close stops the background goroutine; pending messages are discarded.
func (w *Watcher) Close() {
	close(w.stop)
}

// DrainAndApply repeatedly reads pending messages until none remain,
// staging each into vfs, then returns the drained VFS change set. This is
// the only point at which a caller should consider the snapshot advanced.
func (w *Watcher) DrainAndApply(v *vfs.VFS) []vfs.Change {
	for {
		select {
		case msg := <-w.messages:
			switch msg.Kind {
			case Progress:
				w.log.Trace("watch progress", "done", msg.Done, "total", msg.Total)
			case Loaded, Changed:
				for _, f := range msg.Files {
					v.SetFileContents(f.Path, f.Content)
				}
			}
		default:
			return v.TakeChanges()
		}
	}
}
