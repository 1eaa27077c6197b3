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

package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/tenxhq/rustbelt/internal/engine"
	"github.com/tenxhq/rustbelt/internal/logging"
	"github.com/tenxhq/rustbelt/internal/paths"
	"github.com/tenxhq/rustbelt/internal/schema"
	"github.com/tenxhq/rustbelt/internal/semdb/fake"
	"github.com/tenxhq/rustbelt/internal/workspace"
)

// newEngine discovers the workspace rooted at (or above) the --root flag,
// performs the one-shot load, and returns a ready-to-query Engine.
//
// The real semantic database is an out-of-scope external collaborator (see
// internal/semdb.DB); this harness has no production implementation to load,
// so it exercises the full engine wiring against the deterministic fake used
// by the test suite. A real deployment substitutes its own semdb.DB at this
// one call site.
func newEngine(cmd *cobra.Command) (*engine.Engine, error) {
	rootFlag, _ := cmd.Flags().GetString("root")
	logLevel, _ := cmd.Flags().GetString("log-level")
	logJSON, _ := cmd.Flags().GetBool("log-json")

	var log logging.Logger
	if logJSON {
		log = logging.NewZerolog(os.Stderr)
	} else {
		log = logging.NewDefault(logLevel)
	}
	log = log.WithValues("invocation_id", uuid.NewString())

	root, err := paths.DiscoverProjectRoot(rootFlag)
	if err != nil {
		return nil, errors.Wrap(err, "discovering workspace root")
	}

	db := fake.New()
	loader := workspace.New(workspace.WithLogger(log))
	loaded, err := loader.Load(context.Background(), root, db, nil)
	if err != nil {
		return nil, errors.Wrap(err, "loading workspace")
	}

	return engine.New(loaded, db, engine.WithLogger(log)), nil
}

// addCursorFlags registers the common --file/--line/--column/--symbol flags
// shared by every cursor-anchored subcommand.
func addCursorFlags(cmd *cobra.Command) {
	cmd.Flags().String("file", "", "path to the source file (required)")
	cmd.Flags().Uint32("line", 0, "1-based line number (required)")
	cmd.Flags().Uint32("column", 0, "1-based byte-offset column (required)")
	cmd.Flags().String("symbol", "", "symbol name to refine the cursor within a tolerance box")
	cmd.MarkFlagRequired("file")   //nolint:errcheck
	cmd.MarkFlagRequired("line")   //nolint:errcheck
	cmd.MarkFlagRequired("column") //nolint:errcheck
}

// cursorFromFlags builds a CursorCoordinates from the flags addCursorFlags
// registered.
func cursorFromFlags(cmd *cobra.Command) (schema.CursorCoordinates, error) {
	file, _ := cmd.Flags().GetString("file")
	line, _ := cmd.Flags().GetUint32("line")
	column, _ := cmd.Flags().GetUint32("column")
	symbol, _ := cmd.Flags().GetString("symbol")

	coord := schema.CursorCoordinates{FilePath: file, Line: line, Column: column}
	if symbol != "" {
		coord.Symbol = &symbol
	}
	return coord, nil
}

// printJSON marshals v with indentation and writes it to stdout.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, "encoding result")
	}
	return nil
}
