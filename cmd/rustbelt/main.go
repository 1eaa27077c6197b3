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

// Command rustbelt is a manual smoke-test harness over the engine's Go API.
// It is not a protocol server: it loads one workspace, runs one query, and
// prints the JSON-encoded result.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rustbelt",
		Short: "Smoke-test harness for the rustbelt semantic-analysis engine",
		Long: `rustbelt loads a Cargo workspace, runs a single query against the
engine, and prints the JSON-encoded result to stdout.

It is a manual test harness, not a language server: each invocation loads
the workspace fresh and exits after one query.`,
	}

	root.PersistentFlags().String("root", ".", "workspace root (or any path inside it)")
	root.PersistentFlags().String("log-level", "info", "log level (trace, debug, info, warn)")
	root.PersistentFlags().Bool("log-json", false, "emit logs as JSON instead of console-formatted")

	root.AddCommand(
		hoverCmd(),
		gotoDefCmd(),
		completionsCmd(),
		referencesCmd(),
		renameCmd(),
		inlayHintsCmd(),
		assistsCmd(),
		symbolsCmd(),
	)
	return root
}
