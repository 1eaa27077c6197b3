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

import "github.com/spf13/cobra"

func inlayHintsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inlay-hints",
		Short: "Print a file with its inlay hints inserted, optionally limited to a line range",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEngine(cmd)
			if err != nil {
				return err
			}
			file, _ := cmd.Flags().GetString("file")
			startLine, _ := cmd.Flags().GetUint32("start-line")
			endLine, _ := cmd.Flags().GetUint32("end-line")
			annotated, err := e.ViewInlayHints(file, startLine, endLine)
			if err != nil {
				return err
			}
			return printJSON(annotated)
		},
	}
	cmd.Flags().String("file", "", "path to the source file (required)")
	cmd.Flags().Uint32("start-line", 0, "1-based first line to render (requires --end-line); omit for the whole file")
	cmd.Flags().Uint32("end-line", 0, "1-based last line to render, inclusive (requires --start-line); omit for the whole file")
	cmd.MarkFlagRequired("file") //nolint:errcheck
	return cmd
}
